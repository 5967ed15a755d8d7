// Package config holds the settings shared by every pipeline component.
//
// Components receive a Config at construction time; there is no package
// level mutable state.
package config

import (
	"runtime"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// Normalization modes for the evaluator.
const (
	// NormalizeBatch rescales scores with the min and max of the batch being scored.
	NormalizeBatch = "batch"
	// NormalizeTraining rescales scores with bounds taken from the training scores.
	NormalizeTraining = "training"
)

// Default values.
const (
	DefaultSupportFloor = 20
	DefaultTestFraction = 0.25
	DefaultIterations   = 100
	DefaultThreshold    = 0.5
	DefaultTolerance    = 1e-10
	DefaultLabelColumn  = "g_o_meter"
	DefaultBiasColumn   = "bias"
)

// Config configures a pipeline run.
type Config struct {
	// SupportFloor drops feature columns whose total count is below it.
	SupportFloor int `mapstructure:"support-floor"`
	// ExcludeFeatures are removed before fitting, e.g. the communities
	// used to select the two populations.
	ExcludeFeatures []string `mapstructure:"exclude"`
	// LabelColumn and BiasColumn name the reserved columns of the assembled table.
	LabelColumn string `mapstructure:"label-column"`
	BiasColumn  string `mapstructure:"bias-column"`

	// TestFraction is the share of samples held out in each resampling split.
	TestFraction float64 `mapstructure:"test-fraction"`
	// Iterations is the number of fits averaged into the model.
	Iterations int `mapstructure:"iterations"`
	// Workers bounds the resampling goroutines. 0 means runtime.NumCPU().
	Workers int `mapstructure:"workers"`
	// Seed seeds the split generator. 0 draws a random seed at run time.
	Seed uint64 `mapstructure:"seed"`

	// Tolerance is relative to the largest singular value.
	Tolerance float64 `mapstructure:"tolerance"`
	// Truncate zeroes the reciprocal of singular values below Tolerance
	// instead of failing with a singular matrix error.
	Truncate bool `mapstructure:"truncate"`

	// Threshold is the inclusive decision threshold on normalized scores.
	Threshold float64 `mapstructure:"threshold"`
	// Normalization is NormalizeBatch or NormalizeTraining.
	Normalization string `mapstructure:"normalization"`
	// Holdout is the share of samples kept out of training and used for the
	// final evaluation. 0 evaluates on the full assembled dataset.
	Holdout float64 `mapstructure:"holdout"`

	Paths Paths `mapstructure:"paths"`
}

// Paths lists the files read and written by a run. Empty optional paths are skipped.
type Paths struct {
	Positive  string `mapstructure:"positive"`
	Negative  string `mapstructure:"negative"`
	Assembled string `mapstructure:"assembled"`
	Weights   string `mapstructure:"weights"`
	Errors    string `mapstructure:"errors"`
	Model     string `mapstructure:"model"`
	Plot      string `mapstructure:"plot"`
	Chart     string `mapstructure:"chart"`
	Metrics   string `mapstructure:"metrics"`
}

// Default returns the stock configuration and file names.
func Default() Config {
	return Config{
		SupportFloor:  DefaultSupportFloor,
		LabelColumn:   DefaultLabelColumn,
		BiasColumn:    DefaultBiasColumn,
		TestFraction:  DefaultTestFraction,
		Iterations:    DefaultIterations,
		Tolerance:     DefaultTolerance,
		Threshold:     DefaultThreshold,
		Normalization: NormalizeBatch,
		Paths: Paths{
			Positive:  "anti_sub.csv",
			Negative:  "pro_sub.csv",
			Assembled: "good3.csv",
			Weights:   "Results4.csv",
			Errors:    "erroravg4.txt",
		},
	}
}

// WorkerCount resolves Workers to a positive number.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.SupportFloor < 0:
		return errors.NewValidationError("support-floor", "must be non-negative", c.SupportFloor)
	case c.LabelColumn == "":
		return errors.NewValidationError("label-column", "must not be empty", c.LabelColumn)
	case c.BiasColumn == "" || c.BiasColumn == c.LabelColumn:
		return errors.NewValidationError("bias-column", "must be non-empty and differ from the label column", c.BiasColumn)
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return errors.NewValidationError("test-fraction", "must be within (0, 1)", c.TestFraction)
	case c.Iterations < 1:
		return errors.NewValidationError("iterations", "must be at least 1", c.Iterations)
	case c.Workers < 0:
		return errors.NewValidationError("workers", "must be non-negative", c.Workers)
	case c.Tolerance < 0 || c.Tolerance >= 1:
		return errors.NewValidationError("tolerance", "must be within [0, 1)", c.Tolerance)
	case c.Threshold < 0 || c.Threshold > 1:
		return errors.NewValidationError("threshold", "must be within [0, 1]", c.Threshold)
	case c.Normalization != NormalizeBatch && c.Normalization != NormalizeTraining:
		return errors.NewValidationError("normalization", "must be \"batch\" or \"training\"", c.Normalization)
	case c.Holdout < 0 || c.Holdout >= 1:
		return errors.NewValidationError("holdout", "must be within [0, 1)", c.Holdout)
	}
	return nil
}
