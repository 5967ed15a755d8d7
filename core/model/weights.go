package model

import (
	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// FeatureWeight は特徴量名とその平均化された重みの組
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// ModelWeights は平均化された係数ベクトルと特徴量名の対応（シリアライゼーション用）
//
// 係数は位置ではなく名前で特徴量に結び付けられる。Intercept はバイアス行の重み。
type ModelWeights struct {
	// ModelType はモデルの種類
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Coefficients はバイアスを除いた重み係数（Features と同じ順序）
	Coefficients []float64 `json:"coefficients"`

	// Intercept はバイアス項の重み
	Intercept float64 `json:"intercept"`

	// Features は特徴量の名前
	Features []string `json:"features"`

	// Hyperparameters は学習時の設定
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（実行ID、反復回数等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// CurrentVersion は ModelWeights のフォーマットバージョン
const CurrentVersion = "1.0"

// NewModelWeights は [bias, w_1, ..., w_k] の係数ベクトルと特徴量名から ModelWeights を作成する
func NewModelWeights(modelType string, coef mat.Vector, features []string) (*ModelWeights, error) {
	if coef == nil || coef.Len() != len(features)+1 {
		got := 0
		if coef != nil {
			got = coef.Len()
		}
		return nil, errors.NewShapeMismatchError("NewModelWeights", "coefficient length", len(features)+1, got)
	}

	mw := &ModelWeights{
		ModelType:       modelType,
		Version:         CurrentVersion,
		Intercept:       coef.AtVec(0),
		Coefficients:    make([]float64, len(features)),
		Features:        make([]string, len(features)),
		Hyperparameters: make(map[string]interface{}),
		Metadata:        make(map[string]interface{}),
		IsFitted:        true,
	}
	copy(mw.Features, features)
	for i := range features {
		mw.Coefficients[i] = coef.AtVec(i + 1)
	}
	return mw, nil
}

// Vector はバイアスを先頭にした係数ベクトルを返す
func (mw *ModelWeights) Vector() *mat.VecDense {
	v := mat.NewVecDense(len(mw.Coefficients)+1, nil)
	v.SetVec(0, mw.Intercept)
	for i, c := range mw.Coefficients {
		v.SetVec(i+1, c)
	}
	return v
}

// Pairs は特徴量名と重みの組を特徴量の順序で返す
func (mw *ModelWeights) Pairs() []FeatureWeight {
	pairs := make([]FeatureWeight, len(mw.Features))
	for i, f := range mw.Features {
		pairs[i] = FeatureWeight{Feature: f, Weight: mw.Coefficients[i]}
	}
	return pairs
}

// Weight は特徴量名に対応する重みを返す
func (mw *ModelWeights) Weight(feature string) (float64, bool) {
	for i, f := range mw.Features {
		if f == feature {
			return mw.Coefficients[i], true
		}
	}
	return 0, false
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "decode model weights")
	}
	return mw.Validate()
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}
	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}
	if len(mw.Coefficients) != len(mw.Features) {
		return errors.NewShapeMismatchError("ModelWeights.Validate", "coefficients per feature", len(mw.Features), len(mw.Coefficients))
	}
	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", 0)
	}
	return nil
}
