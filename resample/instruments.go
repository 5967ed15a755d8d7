package resample

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fit outcomes used as the "outcome" label.
const (
	OutcomeFitted     = "fitted"
	OutcomeDegenerate = "degenerate"
	OutcomeFailed     = "failed"
)

// Instruments はTrainerが更新するPrometheusコレクタを保持する
// 専用のレジストリに登録するため、同一プロセスで複数のTrainerを使える
// レポーターはこれをテキストファイルとして出力する
type Instruments struct {
	Registry *prometheus.Registry

	Fits        *prometheus.CounterVec
	FitDuration prometheus.Histogram
	Holdout     *prometheus.CounterVec
}

// NewInstruments はコレクタを作成して登録する
func NewInstruments() *Instruments {
	in := &Instruments{
		Registry: prometheus.NewRegistry(),
		Fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gullibility",
			Subsystem: "resample",
			Name:      "fits_total",
			Help:      "Resampling fits by outcome.",
		}, []string{"outcome"}),
		FitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gullibility",
			Subsystem: "resample",
			Name:      "fit_duration_seconds",
			Help:      "Time spent splitting and solving one resampling iteration.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		Holdout: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gullibility",
			Subsystem: "resample",
			Name:      "holdout_errors_total",
			Help:      "Misclassified held-out samples summed over iterations.",
		}, []string{"kind"}),
	}
	in.Registry.MustRegister(in.Fits, in.FitDuration, in.Holdout)
	return in
}

func (in *Instruments) observeFit(outcome string, elapsed time.Duration) {
	if in == nil {
		return
	}
	in.Fits.WithLabelValues(outcome).Inc()
	in.FitDuration.Observe(elapsed.Seconds())
}

func (in *Instruments) observeHoldout(h HoldoutErrors) {
	if in == nil {
		return
	}
	in.Holdout.WithLabelValues("false_positive").Add(float64(h.FalsePositives))
	in.Holdout.WithLabelValues("false_negative").Add(float64(h.FalseNegatives))
}
