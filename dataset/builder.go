// Package dataset assembles labeled feature tables into the features-by-samples
// design matrix consumed by the solver.
package dataset

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/config"
	"github.com/YuminosukeSato/gullibility/core/parallel"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
	"github.com/YuminosukeSato/gullibility/pkg/log"
)

// Fixed rows of the design matrix.
const (
	BiasRow         = 0
	LabelRow        = 1
	FirstFeatureRow = 2
)

// Label values.
const (
	Positive = 1.0
	Negative = 0.0
)

const parallelThreshold = 1000

// Dataset is the assembled design matrix. Columns are samples; row 0 is the
// bias, row 1 the label and the remaining rows follow Features.
type Dataset struct {
	Features []string
	IDs      []string
	design   *mat.Dense
}

// Design returns the full matrix including the label row.
func (d *Dataset) Design() *mat.Dense {
	return d.design
}

// Inputs returns the design matrix without the label row: bias then features.
func (d *Dataset) Inputs() *mat.Dense {
	return DropRow(d.design, LabelRow)
}

// Response returns the label row.
func (d *Dataset) Response() []float64 {
	return mat.Row(nil, LabelRow, d.design)
}

// Samples returns the number of samples.
func (d *Dataset) Samples() int {
	_, c := d.design.Dims()
	return c
}

// Subset returns the samples at the given column indices.
func (d *Dataset) Subset(cols []int) *Dataset {
	r, _ := d.design.Dims()
	sub := mat.NewDense(r, len(cols), nil)
	ids := make([]string, len(cols))
	for k, j := range cols {
		for i := 0; i < r; i++ {
			sub.Set(i, k, d.design.At(i, j))
		}
		ids[k] = d.IDs[j]
	}
	return &Dataset{Features: d.Features, IDs: ids, design: sub}
}

// Table returns the assembled table, label column first, without the bias.
// It is the artifact persisted between build time and report time.
func (d *Dataset) Table(labelColumn string) *Table {
	t := NewTable("", append([]string{labelColumn}, d.Features...))
	r, c := d.design.Dims()
	for j := 0; j < c; j++ {
		row := make([]float64, r-1)
		for i := LabelRow; i < r; i++ {
			row[i-LabelRow] = d.design.At(i, j)
		}
		t.IDs = append(t.IDs, d.IDs[j])
		t.Values = append(t.Values, row)
	}
	return t
}

// DropRow returns a copy of m without row i.
func DropRow(m mat.Matrix, row int) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r-1, c, nil)
	for i, k := 0, 0; i < r; i++ {
		if i == row {
			continue
		}
		for j := 0; j < c; j++ {
			out.Set(k, j, m.At(i, j))
		}
		k++
	}
	return out
}

// Builder turns a positive and a negative feature table into a Dataset.
type Builder struct {
	cfg    config.Config
	logger log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used by the builder.
func WithLogger(l log.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.GetLoggerWithName("dataset")
	}
	return b
}

// Build filters each table by the support floor, aligns both to the union of
// the surviving columns and stacks them, positive samples first.
func (b *Builder) Build(positive, negative *Table) (*Dataset, error) {
	for _, t := range []*Table{positive, negative} {
		if t == nil || t.Rows() == 0 {
			have := 0
			if t != nil {
				have = t.Rows()
			}
			return nil, errors.NewInsufficientDataError("Builder.Build", "feature table has no rows", 1, have)
		}
		if err := b.checkReserved(t); err != nil {
			return nil, err
		}
	}

	posCols, posDropped := b.surviving(positive)
	negCols, negDropped := b.surviving(negative)
	features := union(posCols, negCols)
	if len(features) == 0 {
		return nil, errors.NewInsufficientDataError("Builder.Build", "no feature reaches the support floor", 1, 0)
	}

	ds, err := b.assemble(features,
		[]*Table{positive, negative},
		[]float64{Positive, Negative},
		[][]string{posCols, negCols},
	)
	if err != nil {
		return nil, err
	}

	b.logger.Info("Design matrix assembled",
		log.OperationKey, log.OperationBuild,
		log.SamplesKey, ds.Samples(),
		log.FeaturesKey, len(features)+1,
		log.DroppedKey, posDropped+negDropped,
	)
	return ds, nil
}

// Project aligns t to an existing feature list, labeling every row with label.
// Columns missing from t are zero; columns not in features are ignored.
func (b *Builder) Project(t *Table, label float64, features []string) (*Dataset, error) {
	if t == nil || t.Rows() == 0 {
		return nil, errors.NewInsufficientDataError("Builder.Project", "feature table has no rows", 1, 0)
	}
	if label != Positive && label != Negative {
		return nil, errors.NewValidationError("label", "must be 0 or 1", label)
	}
	return b.assemble(features, []*Table{t}, []float64{label}, [][]string{features})
}

// Align stacks a positive and a negative table onto an existing feature list,
// for scoring new samples with a fitted model.
func (b *Builder) Align(features []string, positive, negative *Table) (*Dataset, error) {
	for _, t := range []*Table{positive, negative} {
		if t == nil || t.Rows() == 0 {
			return nil, errors.NewInsufficientDataError("Builder.Align", "feature table has no rows", 1, 0)
		}
	}
	return b.assemble(features,
		[]*Table{positive, negative},
		[]float64{Positive, Negative},
		[][]string{features, features},
	)
}

func (b *Builder) checkReserved(t *Table) error {
	for _, c := range t.Columns {
		if c == b.cfg.LabelColumn || c == b.cfg.BiasColumn {
			return errors.NewValidationError("columns", "feature table uses a reserved column name", c)
		}
	}
	return nil
}

// surviving returns the columns of t that reach the support floor and are not
// excluded, in table order, plus the number of columns removed.
func (b *Builder) surviving(t *Table) ([]string, int) {
	excluded := make(map[string]struct{}, len(b.cfg.ExcludeFeatures))
	for _, f := range b.cfg.ExcludeFeatures {
		excluded[f] = struct{}{}
	}

	floor := float64(b.cfg.SupportFloor)
	sums := t.ColumnSums()
	kept := make([]string, 0, len(t.Columns))
	for j, c := range t.Columns {
		if sums[j] < floor {
			continue
		}
		if _, ok := excluded[c]; ok {
			continue
		}
		kept = append(kept, c)
	}
	return kept, len(t.Columns) - len(kept)
}

// union keeps first-seen order.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// assemble stacks tables column-wise in the design matrix. Only the columns in
// kept[i] are read from tables[i]; every other feature is zero for its rows.
func (b *Builder) assemble(features []string, tables []*Table, labels []float64, kept [][]string) (*Dataset, error) {
	samples := 0
	for _, t := range tables {
		samples += t.Rows()
	}
	design := mat.NewDense(FirstFeatureRow+len(features), samples, nil)
	ids := make([]string, 0, samples)

	var (
		mu       sync.Mutex
		firstErr error
	)
	offset := 0
	for ti, t := range tables {
		allowed := make(map[string]struct{}, len(kept[ti]))
		for _, f := range kept[ti] {
			allowed[f] = struct{}{}
		}
		colMap := make([]int, len(features))
		for k, f := range features {
			colMap[k] = -1
			if _, ok := allowed[f]; ok {
				colMap[k] = t.ColumnIndex(f)
			}
		}
		label := labels[ti]
		base := offset

		parallel.ParallelizeWithThreshold(t.Rows(), parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				col := base + i
				design.Set(BiasRow, col, 1)
				design.Set(LabelRow, col, label)
				for k, src := range colMap {
					if src < 0 {
						continue
					}
					v := t.Values[i][src]
					if math.IsNaN(v) {
						continue
					}
					if v < 0 || math.IsInf(v, 0) {
						mu.Lock()
						if firstErr == nil {
							firstErr = errors.NewValidationError(features[k], "feature counts must be finite and non-negative", v)
						}
						mu.Unlock()
						return
					}
					design.Set(FirstFeatureRow+k, col, math.Trunc(v))
				}
			}
		})

		ids = append(ids, t.IDs...)
		offset += t.Rows()
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return &Dataset{Features: features, IDs: ids, design: design}, nil
}
