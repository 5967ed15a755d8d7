// Package resample はサンプル列の学習/検証分割を繰り返し、最小二乗フィットを
// 平均する。
package resample

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/YuminosukeSato/gullibility/dataset"
	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// sizeSlack は n·fraction の丸め誤差を吸収する（100·0.29 = 28.999… など）
const sizeSlack = 1e-9

// TestSize は検証用サンプル数 ⌊n·fraction⌋ を返す
func TestSize(n int, fraction float64) int {
	x := float64(n) * fraction
	return int(math.Floor(x + x*sizeSlack))
}

// ChooseSet は [0, n) から TestSize(n, fraction) 個の異なる添字を検証用に抽出する
// 残りの添字（端数を含む）が学習用となる。どちらも昇順で返す
func ChooseSet(n int, fraction float64, src rand.Source) (train, test []int, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errors.NewValidationError("test-fraction", "must be within (0, 1)", fraction)
	}
	size := TestSize(n, fraction)
	if size == 0 {
		return nil, nil, errors.NewInsufficientDataError("ChooseSet",
			"too few samples for a non-empty train/test split", int(math.Ceil(1/fraction)), n)
	}

	test = make([]int, size)
	sampleuv.WithoutReplacement(test, n, src)
	slices.Sort(test)

	train = make([]int, 0, n-size)
	k := 0
	for i := 0; i < n; i++ {
		if k < size && test[k] == i {
			k++
			continue
		}
		train = append(train, i)
	}
	return train, test, nil
}

// partition copies the given sample columns of design, dropping the label row,
// and returns them with their labels.
func partition(design mat.Matrix, cols []int) (*mat.Dense, []float64) {
	rows, _ := design.Dims()
	x := mat.NewDense(rows-1, len(cols), nil)
	y := make([]float64, len(cols))
	for k, j := range cols {
		y[k] = design.At(dataset.LabelRow, j)
		for i, r := 0, 0; i < rows; i++ {
			if i == dataset.LabelRow {
				continue
			}
			x.Set(r, k, design.At(i, j))
			r++
		}
	}
	return x, y
}
