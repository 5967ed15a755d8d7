// Command gullibility fits the resampled least-squares classifier on two
// feature tables and writes the averaged weights and error counts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/gullibility"
	"github.com/YuminosukeSato/gullibility/config"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
	"github.com/YuminosukeSato/gullibility/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// path flags are bound below the "paths" key of config.Config.
var pathFlags = map[string]string{
	"positive":  "Feature table of users labeled 1",
	"negative":  "Feature table of users labeled 0",
	"assembled": "Output: aligned feature table",
	"weights":   "Output: averaged weight per feature (CSV)",
	"errors":    "Output: false positive / false negative report",
	"model":     "Output: model weights as JSON (optional)",
	"plot":      "Output: weight bar chart, format from extension (optional)",
	"chart":     "Output: interactive HTML charts (optional)",
	"metrics":   "Output: Prometheus textfile (optional)",
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "gullibility",
		Short:         "Fit a gullibility classifier from community membership tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, v)
			if err != nil {
				log.GetLogger().Error("Run failed", err)
			}
			return err
		},
	}

	def := config.Default()
	flags := cmd.Flags()
	flags.String("config", "", "Config file (yaml, json or toml)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("log-json", false, "Write JSON log lines instead of console output")
	flags.String("profile", "", "Write a cpu or mem profile to the working directory")

	flags.Int("support-floor", def.SupportFloor, "Drop features with fewer total members")
	flags.StringSlice("exclude", def.ExcludeFeatures, "Features removed before fitting")
	flags.String("label-column", def.LabelColumn, "Label column of the assembled table")
	flags.String("bias-column", def.BiasColumn, "Reserved bias column name")
	flags.Float64("test-fraction", def.TestFraction, "Share of samples held out in each resampling split")
	flags.Int("iterations", def.Iterations, "Number of fits averaged")
	flags.Int("workers", def.Workers, "Resampling goroutines (0: one per CPU)")
	flags.Uint64("seed", def.Seed, "Random seed (0: random)")
	flags.Float64("tolerance", def.Tolerance, "Relative singular value cutoff")
	flags.Bool("truncate", def.Truncate, "Drop tiny singular values instead of failing")
	flags.Float64("threshold", def.Threshold, "Decision threshold on normalized scores")
	flags.String("normalization", def.Normalization, "Score normalization bounds: batch or training")
	flags.Float64("holdout", def.Holdout, "Share of samples kept out of training for the final evaluation")

	defaults := map[string]string{
		"positive":  def.Paths.Positive,
		"negative":  def.Paths.Negative,
		"assembled": def.Paths.Assembled,
		"weights":   def.Paths.Weights,
		"errors":    def.Paths.Errors,
	}
	for name, usage := range pathFlags {
		flags.String(name, defaults[name], usage)
	}

	for _, f := range []string{
		"config", "log-level", "log-json", "profile",
		"support-floor", "exclude", "label-column", "bias-column",
		"test-fraction", "iterations", "workers", "seed",
		"tolerance", "truncate", "threshold", "normalization", "holdout",
	} {
		_ = v.BindPFlag(f, flags.Lookup(f))
	}
	for name := range pathFlags {
		_ = v.BindPFlag("paths."+name, flags.Lookup(name))
	}

	v.SetEnvPrefix("GULLIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper) error {
	if err := setupLogger(v); err != nil {
		return err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := config.Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "decode configuration")
	}

	switch mode := v.GetString("profile"); mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return errors.NewValidationError("profile", "must be cpu or mem", mode)
	}

	p, err := gullibility.New(cfg)
	if err != nil {
		return err
	}
	o, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d fits (%d skipped)\nFalse Positive = %d\nFalse negative = %d\n",
		o.RunID, o.Training.Iterations, o.Training.Skipped,
		o.Evaluation.FalsePositives, o.Evaluation.FalseNegatives)
	return err
}

func setupLogger(v *viper.Viper) error {
	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	if v.GetBool("log-json") {
		log.SetLogger(log.NewZerologLogger(os.Stderr, level))
	} else {
		log.SetLogger(log.NewConsoleLogger(level))
	}
	return nil
}
