package segment

import (
	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/hrv"
)

// Status is the tagged result of one segment
type Status int

const (
	// StatusOK reached HRV with no diagnostic notes
	StatusOK Status = iota
	// StatusDegraded reached HRV but carries notes (missingness, quality failure)
	StatusDegraded
	// StatusUnreliable stopped early or failed the peaks policy
	StatusUnreliable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusUnreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}

// Stage is the last state reached by the builder
type Stage string

const (
	StageIngested      Stage = "ingested"
	StageConditioned   Stage = "conditioned"
	StageQualityScored Stage = "quality_scored"
	StagePeaksDetected Stage = "peaks_detected"
	StageRRComputed    Stage = "rr_computed"
	StageHRVComputed   Stage = "hrv_computed"

	// early exits
	StageTooShort            Stage = "too_short"
	StagePeakDetectionFailed Stage = "peak_detection_failed"
	StageInsufficientPeaks   Stage = "insufficient_peaks"
	StageRejected            Stage = "rejected" // conditioning error inside a session
)

// Outcome carries the raw (unrounded) per-segment results.
// RR is kept for session pooling; it never leaves the process.
type Outcome struct {
	Status          Status
	Stage           Stage
	SegmentID       string
	StartTimeUnixMs int64
	Method          string

	MissingRatio float64
	QualityIndex float64
	Peaks        []int
	RR           []float64
	HRV          contracts.HRVMetrics
	Notes        []string
}

// Reliable is the per-segment signal_ok flag
func (o *Outcome) Reliable() bool {
	return o.Status != StatusUnreliable
}

// Feature renders the outbound record; rounding happens here only
func (o *Outcome) Feature() *contracts.SegmentFeature {
	peaks := o.Peaks
	if peaks == nil {
		peaks = []int{}
	}

	return &contracts.SegmentFeature{
		SchemaVersion: contracts.SchemaFeature,
		SegmentID:     o.SegmentID,
		Quality:       o.Quality(),
		RPeaks: contracts.RPeaks{
			Method:  o.Method,
			Indices: peaks,
		},
		HRVTime: hrv.RoundMetrics(o.HRV),
	}
}

// Quality renders the rounded quality report
func (o *Outcome) Quality() contracts.QualityReport {
	return contracts.QualityReport{
		SignalOK:         o.Reliable(),
		MissingRatio:     hrv.Round(o.MissingRatio, 6),
		QualityIndexMean: hrv.Round(o.QualityIndex, 4),
		Notes:            NotesOrOK(o.Notes),
	}
}

// TrendPoint renders the per-segment snapshot at the given offset
func (o *Outcome) TrendPoint(offsetS int64) contracts.TrendPoint {
	m := hrv.RoundMetrics(o.HRV)
	return contracts.TrendPoint{
		TOffsetS:         offsetS,
		MeanHRBpm:        m.MeanHRBpm,
		RMSSDMs:          m.RMSSDMs,
		SDNNMs:           m.SDNNMs,
		QualityIndexMean: hrv.Round(o.QualityIndex, 4),
		SignalOK:         o.Reliable(),
	}
}

// Rejected builds the contribution of a segment that failed conditioning
func Rejected(seg *contracts.RawSegment, method string, missingRatio float64, err error) *Outcome {
	return &Outcome{
		Status:          StatusUnreliable,
		Stage:           StageRejected,
		SegmentID:       seg.SegmentID,
		StartTimeUnixMs: seg.StartTimeUnixMs,
		Method:          method,
		MissingRatio:    missingRatio,
		Peaks:           []int{},
		RR:              []float64{},
		Notes:           []string{"Segment rejected: " + err.Error() + "."},
	}
}
