package report

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/YuminosukeSato/gullibility/core/model"
	"github.com/YuminosukeSato/gullibility/resample"
)

// BarWeights generates an echart bar chart of the feature weights.
func BarWeights(mw *model.ModelWeights) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Averaged feature weights",
				Subtitle: mw.ModelType,
			},
		),
	)

	pairs := mw.Pairs()
	names := make([]string, 0, len(pairs))
	data := make([]opts.BarData, 0, len(pairs))
	for _, p := range pairs {
		names = append(names, p.Feature)
		data = append(data, opts.BarData{Value: p.Weight})
	}
	bar.SetXAxis(names).AddSeries("weight", data)
	return bar
}

// LineHoldout generates an echart line chart of the held-out error counts of
// every resampling iteration.
func LineHoldout(res *resample.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Held-out errors per iteration",
			},
		),
	)

	iterations := make([]int, 0, len(res.Holdout))
	fp := make([]opts.LineData, 0, len(res.Holdout))
	fn := make([]opts.LineData, 0, len(res.Holdout))
	for _, h := range res.Holdout {
		iterations = append(iterations, h.Iteration)
		fp = append(fp, opts.LineData{Value: h.FalsePositives})
		fn = append(fn, opts.LineData{Value: h.FalseNegatives})
	}

	line.SetXAxis(iterations).
		AddSeries("False positives", fp).
		AddSeries("False negatives", fn)
	return line
}

// WriteChart renders an HTML page with the weight chart and, when training
// details are given, the held-out error chart.
func WriteChart(w io.Writer, mw *model.ModelWeights, res *resample.Result) error {
	page := components.NewPage()
	page.AddCharts(BarWeights(mw))
	if res != nil && len(res.Holdout) > 0 {
		page.AddCharts(LineHoldout(res))
	}
	return page.Render(w)
}
