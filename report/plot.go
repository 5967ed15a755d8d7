package report

import (
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/gullibility/core/model"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// WritePlot renders the feature weights as a bar chart. format is a file
// extension understood by gonum/plot ("png", "svg", "pdf", ...); empty means png.
func WritePlot(w io.Writer, mw *model.ModelWeights, format string) error {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}

	pairs := mw.Pairs()
	if len(pairs) == 0 {
		return errors.NewInsufficientDataError("WritePlot", "no feature weights", 1, 0)
	}
	values := make(plotter.Values, len(pairs))
	names := make([]string, len(pairs))
	for i, p := range pairs {
		values[i] = p.Weight
		names[i] = p.Feature
	}

	p := plot.New()
	p.Title.Text = "Averaged feature weights"
	p.Y.Label.Text = "weight"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return errors.Wrap(err, "build bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight

	width := vg.Length(len(pairs)) * vg.Points(22)
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	wt, err := p.WriterTo(width, 4*vg.Inch, format)
	if err != nil {
		return errors.Wrap(err, "render plot")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "write plot")
}
