package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/config"
	"github.com/YuminosukeSato/gullibility/core/model"
	"github.com/YuminosukeSato/gullibility/dataset"
	"github.com/YuminosukeSato/gullibility/pkg/log"
	"github.com/YuminosukeSato/gullibility/resample"
)

func testWeights(t *testing.T) *model.ModelWeights {
	t.Helper()
	mw, err := model.NewModelWeights("resampled_least_squares",
		mat.NewVecDense(4, []float64{0.1, 0.5, -0.25, 1e-05}),
		[]string{"conspiracy", "science", "news"})
	require.NoError(t, err)
	return mw
}

func TestWriteWeights(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWeights(&buf, testWeights(t)))
	assert.Equal(t, ",0\nconspiracy,0.5\nscience,-0.25\nnews,1e-05\n", buf.String())
}

func TestWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteErrors(&buf, 3, 7))
	assert.Equal(t, "False Positive = 3\nFalse negative = 7", buf.String())
}

func TestWritePlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, testWeights(t), ".png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	buf.Reset()
	require.NoError(t, WritePlot(&buf, testWeights(t), "svg"))
	assert.Contains(t, buf.String(), "<svg")
}

func TestWriteChart(t *testing.T) {
	res := &resample.Result{Holdout: []resample.HoldoutErrors{
		{Iteration: 0, FalsePositives: 1, FalseNegatives: 2},
		{Iteration: 1, FalsePositives: 0, FalseNegatives: 1},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, testWeights(t), res))
	html := buf.String()
	assert.Contains(t, html, "Averaged feature weights")
	assert.Contains(t, html, "Held-out errors per iteration")
	assert.Contains(t, html, "conspiracy")
}

func TestReporterWrite(t *testing.T) {
	dir := t.TempDir()
	paths := config.Paths{
		Assembled: filepath.Join(dir, "good3.csv"),
		Weights:   filepath.Join(dir, "Results4.csv"),
		Errors:    filepath.Join(dir, "erroravg4.txt"),
		Model:     filepath.Join(dir, "model.json"),
		Plot:      filepath.Join(dir, "weights.png"),
		Chart:     filepath.Join(dir, "report.html"),
		Metrics:   filepath.Join(dir, "gullibility.prom"),
	}

	assembled := dataset.NewTable("", []string{"g_o_meter", "conspiracy"})
	require.NoError(t, assembled.AddRow("u1", []float64{1, 3}))

	in := resample.NewInstruments()
	in.Fits.WithLabelValues(resample.OutcomeFitted).Add(4)

	logger, _ := log.NewTestLogger(log.LevelDebug)
	r := &Report{
		RunID:          "run-1",
		Weights:        testWeights(t),
		FalsePositives: 2,
		FalseNegatives: 1,
		Assembled:      assembled,
		Gatherer:       in.Registry,
	}
	require.NoError(t, NewReporter(paths, logger).Write(r))

	weights, err := os.ReadFile(paths.Weights)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(weights), ",0\nconspiracy,0.5\n"))

	errs, err := os.ReadFile(paths.Errors)
	require.NoError(t, err)
	assert.Equal(t, "False Positive = 2\nFalse negative = 1", string(errs))

	back, err := dataset.ReadCSVFile(paths.Assembled)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, back.IDs)

	data, err := os.ReadFile(paths.Model)
	require.NoError(t, err)
	var mw model.ModelWeights
	require.NoError(t, mw.FromJSON(data))
	w, ok := mw.Weight("science")
	assert.True(t, ok)
	assert.Equal(t, -0.25, w)

	for _, p := range []string{paths.Plot, paths.Chart} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	prom, err := os.ReadFile(paths.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `gullibility_resample_fits_total{outcome="fitted"} 4`)

	assert.True(t, logger.ContainsMessage("Report written"))
	assert.True(t, logger.ContainsField(log.FalsePositivesKey, float64(2)))
}

func TestReporterSkipsEmptyPaths(t *testing.T) {
	dir := t.TempDir()
	paths := config.Paths{Errors: filepath.Join(dir, "errors.txt")}

	require.NoError(t, NewReporter(paths, nil).Write(&Report{Weights: testWeights(t)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReporterRejectsMissingWeights(t *testing.T) {
	assert.Error(t, NewReporter(config.Paths{}, nil).Write(&Report{}))
}

func TestReporterWrapsIOErrors(t *testing.T) {
	paths := config.Paths{Weights: filepath.Join(t.TempDir(), "missing", "weights.csv")}
	err := NewReporter(paths, nil).Write(&Report{Weights: testWeights(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights.csv")
}
