package contracts

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "request level",
			err:  &ValidationError{Reason: "segments is empty"},
			want: "validation failed: segments is empty",
		},
		{
			name: "segment level",
			err:  &ValidationError{SegmentID: "seg_1", Reason: "samples is empty"},
			want: "validation failed for segment seg_1: samples is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	wrappedValidation := fmt.Errorf("ingest: %w", &ValidationError{Reason: "x"})
	wrappedConditioning := fmt.Errorf("segment: %w", &ConditioningError{SegmentID: "s", FiniteCount: 1})

	if !IsValidation(wrappedValidation) {
		t.Error("expected wrapped ValidationError to be detected")
	}
	if IsValidation(wrappedConditioning) {
		t.Error("ConditioningError must not classify as validation")
	}
	if !IsConditioning(wrappedConditioning) {
		t.Error("expected wrapped ConditioningError to be detected")
	}
	if IsConditioning(errors.New("other")) {
		t.Error("plain error must not classify as conditioning")
	}
}

func TestConditioningError_Unwrap(t *testing.T) {
	cause := errors.New("filter unstable")
	err := &ConditioningError{SegmentID: "s", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected ConditioningError to unwrap its cause")
	}
	if got := err.Error(); got != "conditioning failed for segment s: filter unstable" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestHRVMetrics_IsZero(t *testing.T) {
	if !(HRVMetrics{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	if (HRVMetrics{MeanHRBpm: 60}).IsZero() {
		t.Error("non-zero HR should not report IsZero")
	}
}
