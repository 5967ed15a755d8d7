// Package metrics は係数ベクトルでサンプルをスコア付けし、既知のラベルに対する
// 分類誤りを数える。
package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/linear"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
	"github.com/YuminosukeSato/gullibility/preprocessing"
)

// DefaultThreshold は正規化スコアに対する判定閾値（閾値ちょうどは陽性）
const DefaultThreshold = 0.5

// Evaluation は1バッチをスコア付けした結果
type Evaluation struct {
	// Raw はスコア designᵀ·w
	Raw []float64
	// Scores はバッチ（または固定）の範囲で [0, 1] に変換したRaw
	Scores []float64
	// Predictions は0または1
	Predictions []float64

	FalsePositives int
	FalseNegatives int
}

// Errors は誤分類したサンプル数の合計を返す
func (e *Evaluation) Errors() int {
	return e.FalsePositives + e.FalseNegatives
}

type predictOptions struct {
	threshold float64
	bounds    *[2]float64
}

// PredictOption はPredictを設定する
type PredictOption func(*predictOptions)

// WithThreshold はDefaultThresholdを上書きする
func WithThreshold(threshold float64) PredictOption {
	return func(o *predictOptions) {
		o.threshold = threshold
	}
}

// WithBounds はバッチの最小値・最大値の代わりに固定の範囲で正規化する
// 範囲外のスコアはクリップしない
func WithBounds(lo, hi float64) PredictOption {
	return func(o *predictOptions) {
		o.bounds = &[2]float64{lo, hi}
	}
}

// Predict は design（サンプルごとに1列、ラベル行なし）の各サンプルをスコア付けし、
// 正規化と閾値判定を行ったうえで response に対する偽陽性と偽陰性を数える
func Predict(design mat.Matrix, w mat.Vector, response []float64, opts ...PredictOption) (*Evaluation, error) {
	o := predictOptions{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	_, n := design.Dims()
	if len(response) != n {
		return nil, errors.NewShapeMismatchError("Predict", "response length", n, len(response))
	}
	if n == 0 {
		return nil, errors.NewInsufficientDataError("Predict", "no samples to score", 1, 0)
	}

	raw, err := linear.Scores(design, w)
	if err != nil {
		return nil, err
	}

	scaler := preprocessing.NewMinMaxScalerDefault()
	column := mat.NewDense(n, 1, raw.RawVector().Data)
	if o.bounds != nil {
		err = scaler.FitRange([]float64{o.bounds[0]}, []float64{o.bounds[1]})
	} else {
		err = scaler.Fit(column)
	}
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(column)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		Raw:         raw.RawVector().Data,
		Scores:      mat.Col(nil, 0, scaled),
		Predictions: make([]float64, n),
	}
	for i, s := range ev.Scores {
		ev.Predictions[i] = Classify(s, o.threshold)
	}
	ev.FalsePositives, ev.FalseNegatives, err = Confusion(ev.Predictions, response)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Classify はスコアが閾値以上なら1、それ以外は0を返す
func Classify(score, threshold float64) float64 {
	if score >= threshold {
		return 1
	}
	return 0
}

// Confusion は偽陽性（予測1・実際0）と偽陰性（予測0・実際1）を数える
func Confusion(predicted, actual []float64) (falsePositives, falseNegatives int, err error) {
	if len(predicted) != len(actual) {
		return 0, 0, errors.NewShapeMismatchError("Confusion", "labels", len(actual), len(predicted))
	}
	for i, p := range predicted {
		switch {
		case p == 1 && actual[i] == 0:
			falsePositives++
		case p == 0 && actual[i] == 1:
			falseNegatives++
		}
	}
	return falsePositives, falseNegatives, nil
}

// Bounds は designᵀ·w の最小値と最大値を返す
// 学習サンプルなど基準となるバッチに正規化を固定するために使う
func Bounds(design mat.Matrix, w mat.Vector) (lo, hi float64, err error) {
	if _, n := design.Dims(); n == 0 {
		return 0, 0, errors.NewInsufficientDataError("Bounds", "no samples to score", 1, 0)
	}
	raw, err := linear.Scores(design, w)
	if err != nil {
		return 0, 0, err
	}
	data := raw.RawVector().Data
	return floats.Min(data), floats.Max(data), nil
}
