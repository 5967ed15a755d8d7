package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Reporter.Write",
			kind:     "write weights",
			err:      fmt.Errorf("disk full"),
			wantMsg:  "gullibility: Reporter.Write: write weights: disk full",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Trainer.Train",
			kind:     "no usable fits",
			err:      nil,
			wantMsg:  "gullibility: Trainer.Train: no usable fits",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewSingularMatrixError(t *testing.T) {
	err := NewSingularMatrixError("Solver.Fit", 2, 1e-17, 3e-10)

	want := "gullibility: Solver.Fit: singular value 2 is 1e-17 (threshold 3e-10); design matrix is rank deficient"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var singErr *SingularMatrixError
	if !As(err, &singErr) {
		t.Fatal("Error should be castable to *SingularMatrixError")
	}
	if singErr.Index != 2 {
		t.Errorf("Index = %d, want 2", singErr.Index)
	}
	if !Is(err, ErrSingularMatrix) {
		t.Error("Error should match ErrSingularMatrix")
	}
	if !Is(Wrap(err, "iteration 7"), ErrSingularMatrix) {
		t.Error("Wrapped error should still match ErrSingularMatrix")
	}
}

func TestNewShapeMismatchError(t *testing.T) {
	err := NewShapeMismatchError("Solver.Fit", "response length", 10, 9)

	want := "gullibility: Solver.Fit: shape mismatch for response length. Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var shapeErr *ShapeMismatchError
	if !As(err, &shapeErr) {
		t.Error("Error should be castable to *ShapeMismatchError")
	}
	if Is(err, ErrSingularMatrix) {
		t.Error("Shape mismatch must not match ErrSingularMatrix")
	}
}

func TestNewInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("ChooseSet", "test partition is empty", 4, 3)

	want := "gullibility: ChooseSet: insufficient data: test partition is empty (need 4, have 3)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !Is(err, ErrEmptyData) {
		t.Error("Error should match ErrEmptyData")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("threshold", "must be within [0, 1]", 1.5)

	want := "gullibility: validation failed for parameter 'threshold': must be within [0, 1] (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewDegenerateFitWarning(3, "singular value 2 below threshold"))

	if len(got) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(got))
	}
	want := "resampling iteration 3 dropped: singular value 2 below threshold"
	if got[0].Error() != want {
		t.Errorf("Warning = %q, want %q", got[0].Error(), want)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("average", []float64{1, 2, 3}, 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err := CheckNumericalStability("average", []float64{1, math.NaN()}, 4)
	var instErr *NumericalInstabilityError
	if !As(err, &instErr) {
		t.Fatalf("Expected NumericalInstabilityError, got %v", err)
	}
	if instErr.Iteration != 4 {
		t.Errorf("Iteration = %d, want 4", instErr.Iteration)
	}
}
