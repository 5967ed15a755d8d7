package gullibility

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/gullibility/config"
	"github.com/YuminosukeSato/gullibility/core/model"
	"github.com/YuminosukeSato/gullibility/dataset"
	"github.com/YuminosukeSato/gullibility/metrics"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
	"github.com/YuminosukeSato/gullibility/pkg/log"
	"github.com/YuminosukeSato/gullibility/report"
	"github.com/YuminosukeSato/gullibility/resample"
)

// ModelType identifies the estimator in serialized weights.
const ModelType = "resampled_least_squares"

// Outcome is the result of fitting and evaluating one run.
type Outcome struct {
	RunID      string
	Dataset    *dataset.Dataset
	Training   *resample.Result
	Weights    *model.ModelWeights
	Evaluation *metrics.Evaluation

	// Bounds fix the score normalization when Normalization is "training".
	Bounds *[2]float64
}

// Pipeline wires the builder, trainer, evaluator and reporter for one
// configuration. A Pipeline is used for a single run.
type Pipeline struct {
	cfg         config.Config
	runID       string
	logger      log.Logger
	instruments *resample.Instruments
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger. The run id is attached to it.
func WithLogger(l log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.runID = id
	}
}

// New validates cfg and creates a pipeline. A zero seed is replaced with a
// random one so that the holdout split and the trainer share it.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, instruments: resample.NewInstruments()}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	if p.logger == nil {
		p.logger = log.GetLogger()
	}
	p.logger = p.logger.With(log.RunIDKey, p.runID)
	if p.cfg.Seed == 0 {
		p.cfg.Seed = rand.Uint64()
	}
	return p, nil
}

// RunID returns the identifier attached to logs and model metadata.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Config returns the effective configuration, including the resolved seed.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Run reads both feature tables, fits and evaluates the model, then writes
// every configured artifact.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	positive, err := dataset.ReadCSVFile(p.cfg.Paths.Positive)
	if err != nil {
		return nil, err
	}
	negative, err := dataset.ReadCSVFile(p.cfg.Paths.Negative)
	if err != nil {
		return nil, err
	}

	o, err := p.Fit(ctx, positive, negative)
	if err != nil {
		return nil, err
	}
	if err := p.Report(o); err != nil {
		return nil, err
	}
	return o, nil
}

// Fit builds the design matrix, trains on it and evaluates the averaged
// coefficients. With Holdout > 0 a random share of the samples is kept out of
// training and used for the evaluation; otherwise every sample is evaluated.
func (p *Pipeline) Fit(ctx context.Context, positive, negative *dataset.Table) (*Outcome, error) {
	start := time.Now()

	builder := dataset.NewBuilder(p.cfg, dataset.WithLogger(p.component("dataset")))
	ds, err := builder.Build(positive, negative)
	if err != nil {
		return nil, err
	}

	trainDS, evalDS := ds, ds
	if p.cfg.Holdout > 0 {
		// stream id MaxUint64 keeps this split apart from the per-iteration streams
		trainIdx, evalIdx, err := resample.ChooseSet(ds.Samples(), p.cfg.Holdout, rand.NewPCG(p.cfg.Seed, math.MaxUint64))
		if err != nil {
			return nil, err
		}
		trainDS, evalDS = ds.Subset(trainIdx), ds.Subset(evalIdx)
	}

	trainer := resample.NewTrainer(p.cfg,
		resample.WithLogger(p.component("resample")),
		resample.WithInstruments(p.instruments),
	)
	res, err := trainer.Train(ctx, trainDS.Design())
	if err != nil {
		return nil, err
	}

	weights, err := model.NewModelWeights(ModelType, res.Mean, ds.Features)
	if err != nil {
		return nil, err
	}
	p.describe(weights, res)

	o := &Outcome{RunID: p.runID, Dataset: ds, Training: res, Weights: weights}
	if p.cfg.Normalization == config.NormalizeTraining {
		lo, hi, err := metrics.Bounds(trainDS.Inputs(), res.Mean)
		if err != nil {
			return nil, err
		}
		o.Bounds = &[2]float64{lo, hi}
	}

	o.Evaluation, err = p.evaluate(o, evalDS)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Model evaluated",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, evalDS.Samples(),
		log.ThresholdKey, p.cfg.Threshold,
		log.FalsePositivesKey, o.Evaluation.FalsePositives,
		log.FalseNegativesKey, o.Evaluation.FalseNegatives,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return o, nil
}

// Evaluate scores new labeled tables with a fitted outcome. The tables are
// aligned to the outcome's features; unknown columns are ignored.
func (p *Pipeline) Evaluate(o *Outcome, positive, negative *dataset.Table) (*metrics.Evaluation, error) {
	if o == nil || o.Weights == nil {
		return nil, errors.NewNotFittedError("Pipeline", "Evaluate")
	}
	builder := dataset.NewBuilder(p.cfg, dataset.WithLogger(p.component("dataset")))
	ds, err := builder.Align(o.Weights.Features, positive, negative)
	if err != nil {
		return nil, err
	}
	return p.evaluate(o, ds)
}

func (p *Pipeline) evaluate(o *Outcome, ds *dataset.Dataset) (*metrics.Evaluation, error) {
	opts := []metrics.PredictOption{metrics.WithThreshold(p.cfg.Threshold)}
	if o.Bounds != nil {
		opts = append(opts, metrics.WithBounds(o.Bounds[0], o.Bounds[1]))
	}
	return metrics.Predict(ds.Inputs(), o.Weights.Vector(), ds.Response(), opts...)
}

// Report writes the artifacts of o to the configured paths.
func (p *Pipeline) Report(o *Outcome) error {
	if o == nil || o.Evaluation == nil {
		return errors.NewNotFittedError("Pipeline", "Report")
	}
	r := &report.Report{
		RunID:          o.RunID,
		Weights:        o.Weights,
		FalsePositives: o.Evaluation.FalsePositives,
		FalseNegatives: o.Evaluation.FalseNegatives,
		Training:       o.Training,
		Gatherer:       p.instruments.Registry,
	}
	if o.Dataset != nil {
		r.Assembled = o.Dataset.Table(p.cfg.LabelColumn)
	}
	return report.NewReporter(p.cfg.Paths, p.component("report")).Write(r)
}

func (p *Pipeline) describe(mw *model.ModelWeights, res *resample.Result) {
	mw.Hyperparameters["iterations"] = p.cfg.Iterations
	mw.Hyperparameters["test_fraction"] = p.cfg.TestFraction
	mw.Hyperparameters["support_floor"] = p.cfg.SupportFloor
	mw.Hyperparameters["tolerance"] = p.cfg.Tolerance
	mw.Hyperparameters["truncate"] = p.cfg.Truncate
	mw.Hyperparameters["threshold"] = p.cfg.Threshold
	mw.Hyperparameters["normalization"] = p.cfg.Normalization
	mw.Hyperparameters["holdout"] = p.cfg.Holdout

	mw.Metadata["run_id"] = p.runID
	mw.Metadata["seed"] = res.Seed
	mw.Metadata["fits"] = res.Iterations
	mw.Metadata["skipped_fits"] = res.Skipped
}

func (p *Pipeline) component(name string) log.Logger {
	return p.logger.With(log.ComponentKey, name)
}
