package resample

import (
	"context"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/config"
	"github.com/YuminosukeSato/gullibility/core/parallel"
	"github.com/YuminosukeSato/gullibility/linear"
	"github.com/YuminosukeSato/gullibility/metrics"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
	"github.com/YuminosukeSato/gullibility/pkg/log"
)

// HoldoutErrors は各反復の係数をその反復の検証用分割に適用した誤り数
type HoldoutErrors struct {
	Iteration      int
	FalsePositives int
	FalseNegatives int
}

// Result は学習の結果として得られる平均モデル
type Result struct {
	// Mean は平均係数ベクトル。先頭がバイアス、続いて計画行列の特徴量行ごとの重み
	Mean *mat.VecDense
	// Iterations はMeanに寄与したフィット数
	Iterations int
	// Skipped は破棄された退化フィット数
	Skipped int
	// Holdout は検証バッチを正規化できたフィットごとに1件
	Holdout []HoldoutErrors
	// Seed で学習を再現できる
	Seed uint64
}

// Trainer はリサンプリング学習を実行する
type Trainer struct {
	cfg         config.Config
	solver      *linear.Solver
	logger      log.Logger
	instruments *Instruments
}

// Option はTrainerを設定する
type Option func(*Trainer)

// WithLogger はロガーを設定する
func WithLogger(l log.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

// WithSolver は設定から作られるソルバーを置き換える
func WithSolver(s *linear.Solver) Option {
	return func(t *Trainer) {
		t.solver = s
	}
}

// WithInstruments はフィット数と所要時間を記録する
func WithInstruments(in *Instruments) Option {
	return func(t *Trainer) {
		t.instruments = in
	}
}

// NewTrainer は新しいTrainerを作成する。cfg は検証済みであること
func NewTrainer(cfg config.Config, opts ...Option) *Trainer {
	t := &Trainer{cfg: cfg}
	for _, opt := range opts {
		opt(t)
	}
	if t.solver == nil {
		t.solver = linear.NewSolver(
			linear.WithTolerance(cfg.Tolerance),
			linear.WithTruncation(cfg.Truncate),
		)
	}
	if t.logger == nil {
		t.logger = log.GetLoggerWithName("resample")
	}
	return t
}

// TrainCycle はリサンプリングを1回行う
// design（ラベル行を含む）の列を分割し、学習用分割でフィットした係数を acc に加算する
// acc の長さは計画行列の行数からラベル行を除いた数
func (t *Trainer) TrainCycle(design mat.Matrix, acc *mat.VecDense, src rand.Source) error {
	rows, _ := design.Dims()
	if acc.Len() != rows-1 {
		return errors.NewShapeMismatchError("Trainer.TrainCycle", "accumulator length", rows-1, acc.Len())
	}
	c, err := t.cycle(design, src)
	if err != nil {
		return err
	}
	acc.AddVec(acc, c.w)
	return nil
}

type cycle struct {
	w     *mat.VecDense
	sigma []float64
	testX *mat.Dense
	testY []float64
}

func (t *Trainer) cycle(design mat.Matrix, src rand.Source) (*cycle, error) {
	_, n := design.Dims()
	trainIdx, testIdx, err := ChooseSet(n, t.cfg.TestFraction, src)
	if err != nil {
		return nil, err
	}

	trainX, trainY := partition(design, trainIdx)
	w, sigma, err := t.solver.Fit(trainX, trainY)
	if err != nil {
		return nil, err
	}
	testX, testY := partition(design, testIdx)
	return &cycle{w: w, sigma: sigma, testX: testX, testY: testY}, nil
}

type outcome struct {
	w       *mat.VecDense
	holdout *HoldoutErrors
	err     error
}

// Train は cfg.Iterations 回の反復を限られた数のgoroutineで実行し、
// 成功したフィットの係数ベクトルを平均する
//
// 反復 i は (Seed, i) で初期化したPCGストリームから分割を引くため、結果はワーカー数に依存しない
// 退化フィットは警告を出して破棄し、全て退化した場合は最後の特異行列エラーを返す
// それ以外の失敗は学習を中断する
func (t *Trainer) Train(ctx context.Context, design mat.Matrix) (*Result, error) {
	rows, n := design.Dims()
	if rows < 2 {
		return nil, errors.NewShapeMismatchError("Trainer.Train", "design rows", 2, rows)
	}
	if TestSize(n, t.cfg.TestFraction) == 0 {
		return nil, errors.NewInsufficientDataError("Trainer.Train",
			"too few samples for a non-empty train/test split", n+1, n)
	}

	seed := t.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	iterations := t.cfg.Iterations
	workers := t.cfg.WorkerCount()

	t.logger.Info("Resampling started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, rows-1,
		log.IterationsKey, iterations,
		log.WorkersKey, workers,
		log.SeedKey, seed,
	)
	start := time.Now()

	outcomes := make([]outcome, iterations)
	parallel.ParallelizeWorkers(iterations, workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if ctx.Err() != nil {
				return
			}
			outcomes[i] = t.iterate(design, seed, i)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "resampling cancelled")
	}

	acc := mat.NewVecDense(rows-1, nil)
	res := &Result{Seed: seed}
	var lastDegenerate error
	for i, o := range outcomes {
		switch {
		case o.err == nil:
			acc.AddVec(acc, o.w)
			res.Iterations++
			if o.holdout != nil {
				res.Holdout = append(res.Holdout, *o.holdout)
			}
		case errors.Is(o.err, errors.ErrSingularMatrix):
			res.Skipped++
			lastDegenerate = o.err
			t.logger.Warn("Resampling fit dropped",
				log.IterationKey, i,
				"warning", errors.NewDegenerateFitWarning(i, o.err.Error()),
			)
		default:
			t.logger.Error("Resampling failed", o.err, log.IterationKey, i)
			return nil, o.err
		}
	}
	if res.Iterations == 0 {
		return nil, lastDegenerate
	}
	acc.ScaleVec(1/float64(res.Iterations), acc)
	res.Mean = acc

	t.logger.Info("Resampling completed",
		log.OperationKey, log.OperationFit,
		log.IterationsKey, res.Iterations,
		log.SkippedKey, res.Skipped,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (t *Trainer) iterate(design mat.Matrix, seed uint64, i int) (o outcome) {
	defer errors.Recover(&o.err, "Trainer.iterate")

	start := time.Now()
	c, err := t.cycle(design, rand.NewPCG(seed, uint64(i)))
	if err != nil {
		status := OutcomeFailed
		if errors.Is(err, errors.ErrSingularMatrix) {
			status = OutcomeDegenerate
		}
		t.instruments.observeFit(status, time.Since(start))
		o.err = err
		return o
	}
	t.instruments.observeFit(OutcomeFitted, time.Since(start))
	o.w = c.w

	if t.logger.Enabled(context.Background(), log.LevelDebug) {
		t.logger.Debug("Resampling fit",
			log.IterationKey, i,
			log.ConditionNumberKey, linear.ConditionNumber(c.sigma),
		)
	}

	// A held-out batch with a single distinct score cannot be normalized.
	ev, err := metrics.Predict(c.testX, c.w, c.testY, metrics.WithThreshold(t.cfg.Threshold))
	if err == nil {
		o.holdout = &HoldoutErrors{
			Iteration:      i,
			FalsePositives: ev.FalsePositives,
			FalseNegatives: ev.FalseNegatives,
		}
		t.instruments.observeHoldout(*o.holdout)
	}
	return o
}
