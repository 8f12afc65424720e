package contracts

import (
	"errors"
	"fmt"
)

// ValidationError rejects the whole request (malformed or empty sample matrix,
// bad channel index, bad sampling rate). No partial result is produced.
type ValidationError struct {
	SegmentID string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.SegmentID == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for segment %s: %s", e.SegmentID, e.Reason)
}

// ConditioningError rejects one segment: there are not enough finite samples
// to reconstruct a waveform, or the conditioner refused the input.
type ConditioningError struct {
	SegmentID   string
	FiniteCount int
	Err         error // conditioner failure, nil for the finite-sample check
}

func (e *ConditioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conditioning failed for segment %s: %v", e.SegmentID, e.Err)
	}
	return fmt.Sprintf("conditioning failed for segment %s: only %d finite samples", e.SegmentID, e.FiniteCount)
}

func (e *ConditioningError) Unwrap() error {
	return e.Err
}

var (
	// ErrQualityComputation marks a quality scorer failure (recovered locally)
	ErrQualityComputation = errors.New("quality computation failed")

	// ErrPeakDetection marks a peak detector failure (segment becomes unreliable)
	ErrPeakDetection = errors.New("peak detection failed")

	// ErrNotFound is returned by repositories for unknown ids
	ErrNotFound = errors.New("not found")

	// ErrStoreDisabled is returned when no repository is configured
	ErrStoreDisabled = errors.New("summary store disabled")
)

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConditioning reports whether err is (or wraps) a ConditioningError
func IsConditioning(err error) bool {
	var ce *ConditioningError
	return errors.As(err, &ce)
}
