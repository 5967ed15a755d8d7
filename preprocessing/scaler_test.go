package preprocessing

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

func TestMinMaxScaler(t *testing.T) {
	tests := []struct {
		name    string
		data    []float64
		want    []float64
		wantErr bool
	}{
		{
			name: "scores to unit range",
			data: []float64{-2, 0, 2},
			want: []float64{0, 0.5, 1},
		},
		{
			name: "already normalized",
			data: []float64{0, 0.25, 1},
			want: []float64{0, 0.25, 1},
		},
		{
			name:    "constant column",
			data:    []float64{3, 3, 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X := mat.NewDense(len(tt.data), 1, tt.data)
			scaler := NewMinMaxScalerDefault()

			got, err := scaler.FitTransform(X)
			if tt.wantErr {
				var ve *errors.ValueError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValueError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, w := range tt.want {
				if g := got.At(i, 0); g != w {
					t.Errorf("row %d: got %v, want %v", i, g, w)
				}
			}
		})
	}
}

func TestMinMaxScalerFitRange(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	if err := scaler.FitRange([]float64{0}, []float64{4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// values outside the fitted bounds are not clipped
	got, err := scaler.Transform(mat.NewDense(3, 1, []float64{-4, 2, 8}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{-1, 0.5, 2}
	for i, w := range want {
		if got.At(i, 0) != w {
			t.Errorf("row %d: got %v, want %v", i, got.At(i, 0), w)
		}
	}

	if err := scaler.FitRange([]float64{0, 1}, []float64{1}); err == nil {
		t.Error("expected shape mismatch error")
	}
}

func TestMinMaxScalerNotFitted(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))

	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if nfe.Method != "Transform" {
		t.Errorf("method = %q", nfe.Method)
	}
}

func TestMinMaxScalerColumnMismatch(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 1, []float64{0, 1})); err != nil {
		t.Fatal(err)
	}
	if _, err := scaler.Transform(mat.NewDense(1, 2, []float64{0, 1})); err == nil {
		t.Error("expected error for column mismatch")
	}
}
