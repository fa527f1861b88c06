package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", NewValidationError("alpha", "should be positive", 0.0), ErrInvalidParameter},
		{"param type", NewParamTypeError("d", "an integer", 1.5), ErrInvalidParameter},
		{"incompatible model", NewIncompatibleModelError("values in column `%s` cannot be negative", "n"), ErrIncompatibleModel},
		{"training input", NewTrainingInputError("training frame must have at least one column"), ErrInvalidTrainingInput},
		{"not fitted", NewNotFittedError("FTRL", "Predict"), ErrNotTrained},
		{"dimension", NewDimensionError("Predict", 1, 2, 1), ErrShapeMismatch},
	}

	kinds := []error{ErrInvalidParameter, ErrIncompatibleModel, ErrInvalidTrainingInput, ErrNotTrained, ErrShapeMismatch}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.kind) {
				t.Errorf("Is(%v, %v) = false, want true", tt.err, tt.kind)
			}
			// 標準ライブラリのerrors.Isでも判定できること
			if !stderrors.Is(tt.err, tt.kind) {
				t.Errorf("stdlib errors.Is(%v, %v) = false, want true", tt.err, tt.kind)
			}
			for _, other := range kinds {
				if other != tt.kind && Is(tt.err, other) {
					t.Errorf("error %v should not match kind %v", tt.err, other)
				}
			}

			formatted := fmt.Sprintf("%+v", tt.err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 1, 2, 1)

	want := "ftrl: Predict: dimension mismatch on axis 1 (features). Expected 1, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 1 || dimErr.Got != 2 {
		t.Errorf("got expected=%d got=%d", dimErr.Expected, dimErr.Got)
	}
}

func TestNewParamTypeError(t *testing.T) {
	err := NewParamTypeError("alpha", "a float", "1.0")
	want := "ftrl: parameter 'alpha' should be a float, instead got string"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrapKeepsKind(t *testing.T) {
	wrapped := Wrap(NewNotFittedError("FTRL", "Predict"), "scoring batch")
	if !Is(wrapped, ErrNotTrained) {
		t.Error("Expected Is(wrapped, ErrNotTrained) to be true")
	}
	if !strings.Contains(wrapped.Error(), "scoring batch") {
		t.Error("Expected wrapped error to contain wrapping message")
	}

	marked := Mark(New("bad magic"), ErrCorruptSnapshot)
	if !Is(Wrapf(marked, "reading %s", "model.ftrl"), ErrCorruptSnapshot) {
		t.Error("Expected marked error to match ErrCorruptSnapshot")
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewDataConversionWarning("bool", "skipped", "3 rows with missing target"))
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "3 rows with missing target") {
		t.Errorf("unexpected warning text %q", got[0].Error())
	}
}

func TestNumericalHelpers(t *testing.T) {
	if err := CheckScalar("score", math.NaN(), 3); err == nil {
		t.Error("expected error for NaN")
	}
	if err := CheckNumericalStability("z", []float64{1, math.Inf(1)}, 0); err == nil {
		t.Error("expected error for Inf")
	}
	if err := CheckNumericalStability("z", []float64{1, 2}, 0); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if got := ClipValue(50, -35, 35); got != 35 {
		t.Errorf("ClipValue = %v, want 35", got)
	}
	if got := StabilizeLog(0); math.IsInf(got, -1) {
		t.Error("StabilizeLog(0) should be finite")
	}
}
