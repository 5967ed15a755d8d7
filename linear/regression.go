// Package linear はリサンプリング学習で使う最小二乗ソルバーを提供する。
// 特徴量×サンプルの計画行列を薄いSVDで分解して解き、正規方程式は使わない。
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// DefaultTolerance は特異値の相対閾値のデフォルト
const DefaultTolerance = 1e-10

// Solver は計画行列の擬似逆行列で designᵀ·w ≈ y を解く
// 状態を持たないため並行に使用できる
type Solver struct {
	tol      float64
	truncate bool
}

// NewSolver は新しいソルバーを作成する
// WithTruncation(true) を指定しない限り、ランク落ちした入力はエラーになる
func NewSolver(opts ...Option) *Solver {
	s := &Solver{tol: DefaultTolerance}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit は係数ベクトル（計画行列の行ごとに1つ）と特異値を返す
//
// パラメータ:
//   - design: p×n の計画行列（p 特徴量、n サンプル）
//   - response: 長さ n の目的変数
func (s *Solver) Fit(design mat.Matrix, response []float64) (*mat.VecDense, []float64, error) {
	p, n := design.Dims()
	if len(response) != n {
		return nil, nil, errors.NewShapeMismatchError("Solver.Fit", "response length", n, len(response))
	}

	pinvT, sigma, err := PseudoInverseT(design, s.tol, s.truncate)
	if err != nil {
		return nil, sigma, err
	}

	w := mat.NewVecDense(p, nil)
	w.MulVec(pinvT, mat.NewVecDense(n, response))

	if err := errors.CheckNumericalStability("Solver.Fit", w.RawVector().Data, 0); err != nil {
		return nil, sigma, err
	}
	return w, sigma, nil
}

// PseudoInverseT は design = U·Σ·Vᵀ に対して U·diag(1/σ)·Vᵀ と σ を返す
// これはMoore-Penrose擬似逆行列の転置である
//
// tol·σmax 以下の特異値は退化とみなし、SingularMatrixErrorを返す
// truncate が真の場合はその成分を0として扱う
func PseudoInverseT(design mat.Matrix, tol float64, truncate bool) (*mat.Dense, []float64, error) {
	p, n := design.Dims()
	if p == 0 || n == 0 {
		return nil, nil, errors.NewInsufficientDataError("PseudoInverseT", "empty design matrix", 1, 0)
	}
	if p > n {
		return nil, nil, errors.NewInsufficientDataError("PseudoInverseT", "fewer samples than features", p, n)
	}

	// NaNやInfを含むとSVDが収束しない
	if err := errors.CheckNumericalStability("PseudoInverseT", mat.DenseCopyOf(design).RawMatrix().Data, 0); err != nil {
		return nil, nil, err
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, nil, errors.NewModelError("PseudoInverseT", "SVD factorization failed", nil)
	}
	sigma := svd.Values(nil)

	threshold := tol * sigma[0]
	reciprocal := make([]float64, len(sigma))
	for i, v := range sigma {
		if v <= threshold || v == 0 {
			if !truncate {
				return nil, sigma, errors.NewSingularMatrixError("PseudoInverseT", i, v, threshold)
			}
			continue
		}
		reciprocal[i] = 1 / v
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// Uの各列を1/σでスケール
	for j, r := range reciprocal {
		col := u.ColView(j).(*mat.VecDense)
		col.ScaleVec(r, col)
	}

	var pinvT mat.Dense
	pinvT.Mul(&u, v.T())
	return &pinvT, sigma, nil
}

// ConditionNumber は条件数 σmax/σmin を返す。σmin が0なら+Inf
func ConditionNumber(sigma []float64) float64 {
	if len(sigma) == 0 {
		return math.Inf(1)
	}
	last := sigma[len(sigma)-1]
	if last == 0 {
		return math.Inf(1)
	}
	return sigma[0] / last
}

// Scores はサンプルごとのスコア designᵀ·w を返す
func Scores(design mat.Matrix, w mat.Vector) (*mat.VecDense, error) {
	p, n := design.Dims()
	if w.Len() != p {
		return nil, errors.NewShapeMismatchError("Scores", "coefficient length", p, w.Len())
	}
	scores := mat.NewVecDense(n, nil)
	scores.MulVec(design.T(), w)
	return scores, nil
}
