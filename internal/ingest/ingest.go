// Package ingest validates raw segments and prepares the analysis channel.
package ingest

import (
	"fmt"
	"math"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// Channel is the selected analysis channel of one segment
type Channel struct {
	SegmentID      string
	SamplingRateHz int
	Values         []float64 // copy; may contain non-finite values
	MissingRatio   float64   // fraction of non-finite values, before any repair
}

// Validate checks the structural shape of a segment.
// The sample matrix must be non-empty and rectangular.
func Validate(seg *contracts.RawSegment) error {
	if seg == nil {
		return &contracts.ValidationError{Reason: "segment is nil"}
	}
	if seg.SamplingRateHz < 1 {
		return &contracts.ValidationError{
			SegmentID: seg.SegmentID,
			Reason:    fmt.Sprintf("sampling_rate_hz must be >= 1, got %d", seg.SamplingRateHz),
		}
	}
	if seg.SchemaVersion != "" && seg.SchemaVersion != contracts.SchemaSegment {
		return &contracts.ValidationError{
			SegmentID: seg.SegmentID,
			Reason:    fmt.Sprintf("unsupported schema_version %q", seg.SchemaVersion),
		}
	}
	if len(seg.Samples) == 0 {
		return &contracts.ValidationError{SegmentID: seg.SegmentID, Reason: "samples is empty"}
	}

	width := len(seg.Samples[0])
	if width == 0 {
		return &contracts.ValidationError{SegmentID: seg.SegmentID, Reason: "samples has no channels"}
	}
	for i, row := range seg.Samples {
		if len(row) != width {
			return &contracts.ValidationError{
				SegmentID: seg.SegmentID,
				Reason:    fmt.Sprintf("samples row %d has %d values, expected %d", i, len(row), width),
			}
		}
	}
	return nil
}

// ValidateChannel checks the segment shape and the channel index bounds
func ValidateChannel(seg *contracts.RawSegment, index int) error {
	if err := Validate(seg); err != nil {
		return err
	}

	width := len(seg.Samples[0])
	if index < 0 || index >= width {
		return &contracts.ValidationError{
			SegmentID: seg.SegmentID,
			Reason:    fmt.Sprintf("channel index %d out of range [0, %d)", index, width),
		}
	}
	return nil
}

// SelectChannel validates the segment and extracts one channel by index
func SelectChannel(seg *contracts.RawSegment, index int) (*Channel, error) {
	if err := ValidateChannel(seg, index); err != nil {
		return nil, err
	}

	values := make([]float64, len(seg.Samples))
	for i, row := range seg.Samples {
		values[i] = row[index]
	}

	return &Channel{
		SegmentID:      seg.SegmentID,
		SamplingRateHz: seg.SamplingRateHz,
		Values:         values,
		MissingRatio:   MissingRatio(values),
	}, nil
}

// MissingRatio is the fraction of non-finite values; empty input counts as fully missing
func MissingRatio(values []float64) float64 {
	if len(values) == 0 {
		return 1
	}
	missing := 0
	for _, v := range values {
		if !isFinite(v) {
			missing++
		}
	}
	return float64(missing) / float64(len(values))
}

// Interpolate fills non-finite runs linearly from the surrounding finite samples.
// Leading and trailing runs hold the nearest finite value.
// Fewer than 2 finite samples returns a ConditioningError.
func Interpolate(segmentID string, values []float64) ([]float64, error) {
	finite := make([]int, 0, len(values))
	for i, v := range values {
		if isFinite(v) {
			finite = append(finite, i)
		}
	}
	if len(finite) < 2 {
		return nil, &contracts.ConditioningError{SegmentID: segmentID, FiniteCount: len(finite)}
	}

	out := make([]float64, len(values))
	copy(out, values)
	if len(finite) == len(values) {
		return out, nil
	}

	first, last := finite[0], finite[len(finite)-1]
	for i := 0; i < first; i++ {
		out[i] = values[first]
	}
	for i := last + 1; i < len(values); i++ {
		out[i] = values[last]
	}

	// 내부 결측 구간: 양 끝 유한값 사이 선형 보간
	for k := 0; k+1 < len(finite); k++ {
		lo, hi := finite[k], finite[k+1]
		if hi-lo < 2 {
			continue
		}
		span := float64(hi - lo)
		for i := lo + 1; i < hi; i++ {
			frac := float64(i-lo) / span
			out[i] = values[lo] + frac*(values[hi]-values[lo])
		}
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
