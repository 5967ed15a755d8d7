package resample

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

func TestChooseSetPartitions(t *testing.T) {
	src := rand.NewPCG(7, 11)
	for n := 4; n <= 64; n++ {
		train, test, err := ChooseSet(n, 0.25, src)
		require.NoError(t, err, "n=%d", n)

		assert.Len(t, test, n/4, "n=%d", n)
		assert.Len(t, train, n-n/4, "n=%d", n)
		assert.True(t, slices.IsSorted(train))
		assert.True(t, slices.IsSorted(test))

		seen := make([]int, n)
		for _, i := range append(append([]int{}, train...), test...) {
			require.True(t, i >= 0 && i < n, "index %d out of range", i)
			seen[i]++
		}
		for i, c := range seen {
			assert.Equal(t, 1, c, "n=%d index %d", n, i)
		}
	}
}

func TestTestSize(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{n: 100, fraction: 0.25, want: 25},
		{n: 100, fraction: 0.29, want: 29},
		{n: 10, fraction: 0.33, want: 3},
		{n: 7, fraction: 0.25, want: 1},
		{n: 3, fraction: 0.25, want: 0},
		{n: 1000, fraction: 0.1, want: 100},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TestSize(tc.n, tc.fraction), "n=%d fraction=%v", tc.n, tc.fraction)
	}

	_, test, err := ChooseSet(100, 0.29, rand.NewPCG(5, 5))
	require.NoError(t, err)
	assert.Len(t, test, 29)
}

func TestChooseSetDeterministic(t *testing.T) {
	_, a, err := ChooseSet(40, 0.25, rand.NewPCG(3, 0))
	require.NoError(t, err)
	_, b, err := ChooseSet(40, 0.25, rand.NewPCG(3, 0))
	require.NoError(t, err)
	_, c, err := ChooseSet(40, 0.25, rand.NewPCG(3, 1))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestChooseSetErrors(t *testing.T) {
	tests := map[string]struct {
		n        int
		fraction float64
		empty    bool
	}{
		"three samples":  {n: 3, fraction: 0.25, empty: true},
		"no samples":     {n: 0, fraction: 0.25, empty: true},
		"zero fraction":  {n: 10, fraction: 0},
		"whole fraction": {n: 10, fraction: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ChooseSet(tc.n, tc.fraction, rand.NewPCG(1, 1))
			require.Error(t, err)
			assert.Equal(t, tc.empty, errors.Is(err, errors.ErrEmptyData))
		})
	}
}

func TestPartitionDropsLabelRow(t *testing.T) {
	design := mat.NewDense(3, 4, []float64{
		1, 1, 1, 1,
		1, 0, 1, 0,
		5, 6, 7, 8,
	})
	x, y := partition(design, []int{1, 3})

	r, c := x.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{0, 0}, y)
	assert.Equal(t, []float64{1, 1}, mat.Row(nil, 0, x))
	assert.Equal(t, []float64{6, 8}, mat.Row(nil, 1, x))
}
