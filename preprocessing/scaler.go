// Package preprocessing はスコアの正規化を提供します。
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/core/model"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// MinMaxScaler は各列を指定した範囲（デフォルト[0,1]）に線形変換する
//
// 列の値がすべて等しい場合は範囲がゼロとなり、変換が定義できないため
// Fit は ValueError を返す。
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin は各列の最小値
	DataMin []float64

	// DataMax は各列の最大値
	DataMax []float64

	// Scale は各列の範囲 (max - min)
	Scale []float64

	// NFeatures は列の数
	NFeatures int

	// FeatureRange は変換後の範囲 [min, max]
	FeatureRange [2]float64
}

// NewMinMaxScaler は新しいMinMaxScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewMinMaxScaler([2]float64{0.0, 1.0})
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{
		FeatureRange: featureRange,
	}
}

// NewMinMaxScalerDefault は[0,1]範囲のMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit はデータ (n_samples × n_features) の列ごとの最小値・最大値を記録する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	lo := make([]float64, c)
	hi := make([]float64, c)
	for j := 0; j < c; j++ {
		lo[j] = X.At(0, j)
		hi[j] = X.At(0, j)
		for i := 1; i < r; i++ {
			v := X.At(i, j)
			if v < lo[j] {
				lo[j] = v
			}
			if v > hi[j] {
				hi[j] = v
			}
		}
	}
	return m.FitRange(lo, hi)
}

// FitRange は既知の最小値・最大値で学習する
// 学習データ以外（例えば訓練スコア）から境界を固定する場合に使う
func (m *MinMaxScaler) FitRange(dataMin, dataMax []float64) error {
	if len(dataMin) != len(dataMax) {
		return errors.NewShapeMismatchError("MinMaxScaler.FitRange", "bounds", len(dataMin), len(dataMax))
	}
	if len(dataMin) == 0 {
		return errors.NewModelError("MinMaxScaler.FitRange", "empty data", errors.ErrEmptyData)
	}
	if m.FeatureRange[1] <= m.FeatureRange[0] {
		return errors.NewValidationError("feature_range", "upper bound must exceed lower bound", m.FeatureRange)
	}

	scale := make([]float64, len(dataMin))
	for j := range dataMin {
		scale[j] = dataMax[j] - dataMin[j]
		if !(scale[j] > 0) {
			return errors.NewValueError("MinMaxScaler.Fit",
				fmt.Sprintf("column %d has zero range [%g, %g]; normalization is undefined", j, dataMin[j], dataMax[j]))
		}
	}

	m.NFeatures = len(dataMin)
	m.DataMin = append([]float64(nil), dataMin...)
	m.DataMax = append([]float64(nil), dataMax...)
	m.Scale = scale
	m.SetFitted()
	return nil
}

// Transform は学習済みの境界でデータをスケーリングする
// 境界の外側の値はクリップしない
func (m *MinMaxScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := m.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewShapeMismatchError("MinMaxScaler.Transform", "columns", m.NFeatures, c)
	}

	result := mat.NewDense(r, c, nil)
	width := m.FeatureRange[1] - m.FeatureRange[0]
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			// X_scaled = (X - X.min) / (X.max - X.min) * (max - min) + min
			result.Set(i, j, (X.At(i, j)-m.DataMin[j])/m.Scale[j]*width+m.FeatureRange[0])
		}
	}
	return result, nil
}

// FitTransform は学習と変換を同じデータで行う
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// String はスケーラーの文字列表現を返す
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}
