// Package report persists the averaged model and its evaluation.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/gullibility/config"
	"github.com/YuminosukeSato/gullibility/core/model"
	"github.com/YuminosukeSato/gullibility/dataset"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
	"github.com/YuminosukeSato/gullibility/pkg/log"
	"github.com/YuminosukeSato/gullibility/resample"
)

// Report is everything a run produces.
type Report struct {
	RunID   string
	Weights *model.ModelWeights

	FalsePositives int
	FalseNegatives int

	// Assembled is the aligned feature table written for inspection. Optional.
	Assembled *dataset.Table
	// Training carries the per-iteration held-out counts. Optional.
	Training *resample.Result
	// Gatherer is exported to the metrics textfile. Optional.
	Gatherer prometheus.Gatherer
}

// Reporter writes a Report to the files named in config.Paths. Empty paths
// are skipped.
type Reporter struct {
	paths  config.Paths
	logger log.Logger
}

// NewReporter creates a reporter.
func NewReporter(paths config.Paths, logger log.Logger) *Reporter {
	if logger == nil {
		logger = log.GetLoggerWithName("report")
	}
	return &Reporter{paths: paths, logger: logger}
}

// Write persists every artifact in r. It is called once per run.
func (rp *Reporter) Write(r *Report) error {
	if r == nil || r.Weights == nil {
		return errors.NewValidationError("report", "weights are required", nil)
	}
	if err := r.Weights.Validate(); err != nil {
		return err
	}

	steps := []struct {
		path  string
		write func(io.Writer) error
		skip  bool
	}{
		{rp.paths.Weights, func(w io.Writer) error { return WriteWeights(w, r.Weights) }, false},
		{rp.paths.Errors, func(w io.Writer) error { return WriteErrors(w, r.FalsePositives, r.FalseNegatives) }, false},
		{rp.paths.Assembled, func(w io.Writer) error { return r.Assembled.WriteCSV(w) }, r.Assembled == nil},
		{rp.paths.Model, func(w io.Writer) error { return writeModel(w, r.Weights) }, false},
		{rp.paths.Plot, func(w io.Writer) error { return WritePlot(w, r.Weights, filepath.Ext(rp.paths.Plot)) }, false},
		{rp.paths.Chart, func(w io.Writer) error { return WriteChart(w, r.Weights, r.Training) }, false},
	}
	for _, s := range steps {
		if s.path == "" || s.skip {
			continue
		}
		if err := writeFile(s.path, s.write); err != nil {
			return err
		}
		rp.logger.Debug("Artifact written", log.OperationKey, log.OperationReport, log.PathKey, s.path)
	}

	if rp.paths.Metrics != "" && r.Gatherer != nil {
		if err := prometheus.WriteToTextfile(rp.paths.Metrics, r.Gatherer); err != nil {
			return errors.NewModelError("Reporter.Write", "write metrics textfile", err)
		}
	}

	rp.logger.Info("Report written",
		log.OperationKey, log.OperationReport,
		log.RunIDKey, r.RunID,
		log.FalsePositivesKey, r.FalsePositives,
		log.FalseNegativesKey, r.FalseNegatives,
	)
	return nil
}

// WriteWeights writes one "feature,weight" row per feature under a ",0" header.
func WriteWeights(w io.Writer, mw *model.ModelWeights) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"", "0"}); err != nil {
		return errors.Wrap(err, "write weights header")
	}
	for _, p := range mw.Pairs() {
		if err := cw.Write([]string{p.Feature, strconv.FormatFloat(p.Weight, 'g', -1, 64)}); err != nil {
			return errors.Wrap(err, "write weights")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush weights")
}

// WriteErrors writes the two error counts in the plain text report format.
func WriteErrors(w io.Writer, falsePositives, falseNegatives int) error {
	_, err := fmt.Fprintf(w, "False Positive = %d\nFalse negative = %d", falsePositives, falseNegatives)
	return errors.Wrap(err, "write error report")
}

func writeModel(w io.Writer, mw *model.ModelWeights) error {
	data, err := mw.ToJSON()
	if err != nil {
		return errors.Wrap(err, "encode model")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "write model")
}

// writeFile renders into memory first so a failed render leaves no partial file.
func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return errors.NewModelError("Reporter.Write", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.NewModelError("Reporter.Write", path, err)
	}
	return nil
}
