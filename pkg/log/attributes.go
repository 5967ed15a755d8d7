package log

// Context keys identifying the run and the operation being performed.
const (
	// ModelNameKey identifies the estimator, e.g. "Solver" or "Trainer".
	ModelNameKey = "model.name"

	// RunIDKey carries the uuid assigned to one pipeline run.
	RunIDKey = "run.id"

	// OperationKey specifies the operation: "build", "fit", "predict", "report".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"
)

// Data shape keys.
const (
	// SamplesKey is the number of samples (design matrix columns).
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (design matrix rows, bias included).
	FeaturesKey = "data.features"

	// DroppedKey is the number of feature columns removed by the support floor.
	DroppedKey = "data.dropped_features"

	// PathKey is a file read or written by the pipeline.
	PathKey = "data.path"
)

// Training and evaluation keys.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey is the resampling iteration index.
	IterationKey = "training.iteration"

	// IterationsKey is the number of fits that contributed to the mean.
	IterationsKey = "training.iterations"

	// SkippedKey is the number of degenerate fits that were dropped.
	SkippedKey = "training.skipped"

	// WorkersKey is the number of goroutines used for resampling.
	WorkersKey = "training.workers"

	// SeedKey records the random seed for reproducibility.
	SeedKey = "config.random_seed"

	// ThresholdKey records the decision threshold.
	ThresholdKey = "preds.threshold"

	// FalsePositivesKey and FalseNegativesKey are the evaluation error counts.
	FalsePositivesKey = "metrics.false_positives"
	FalseNegativesKey = "metrics.false_negatives"

	// ConditionNumberKey is σmax/σmin of a fitted design matrix.
	ConditionNumberKey = "metrics.condition_number"
)

// Error keys.
const (
	// ErrAttrKey holds the error value passed to Logger.Error.
	ErrAttrKey = "error"

	// StacktraceKey holds the stack trace extracted from ErrAttrKey.
	StacktraceKey = "error.stacktrace"
)

// Standard operation values.
const (
	OperationBuild   = "build"
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationReport  = "report"
)
