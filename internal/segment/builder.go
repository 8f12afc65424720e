// Package segment turns one raw ECG segment into a reliability-scored feature.
package segment

import (
	"context"
	"fmt"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/hrv"
	"github.com/ecg-pomodoro/backend/internal/ingest"
	"github.com/ecg-pomodoro/backend/internal/pipelineconfig"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// Builder runs ingest → condition → quality → peaks → RR → HRV for one segment
// ⭐ SSOT: 세그먼트 신뢰도 정책은 여기서만
type Builder struct {
	conditioner contracts.Conditioner
	scorer      contracts.QualityScorer
	detector    contracts.PeakDetector
	cfg         pipelineconfig.SegmentConfig
	logger      *logger.Logger
}

// NewBuilder creates a new segment builder
func NewBuilder(
	conditioner contracts.Conditioner,
	scorer contracts.QualityScorer,
	detector contracts.PeakDetector,
	cfg pipelineconfig.SegmentConfig,
	log *logger.Logger,
) *Builder {
	return &Builder{
		conditioner: conditioner,
		scorer:      scorer,
		detector:    detector,
		cfg:         cfg,
		logger:      log.WithModule("segment"),
	}
}

// Method names the peak detector used for every record of this builder
func (b *Builder) Method() string {
	return b.detector.Method()
}

// Process implements contracts.SegmentProcessor
func (b *Builder) Process(ctx context.Context, seg *contracts.RawSegment) (*contracts.SegmentFeature, error) {
	out, err := b.Build(ctx, seg)
	if err != nil {
		return nil, err
	}
	return out.Feature(), nil
}

// Build runs the state machine.
// Only ValidationError and ConditioningError are returned as errors;
// every other degradation ends in an Outcome.
func (b *Builder) Build(ctx context.Context, seg *contracts.RawSegment) (*Outcome, error) {
	ch, err := ingest.SelectChannel(seg, b.cfg.ChannelIndex)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Status:          StatusOK,
		Stage:           StageIngested,
		SegmentID:       seg.SegmentID,
		StartTimeUnixMs: seg.StartTimeUnixMs,
		Method:          b.detector.Method(),
		MissingRatio:    ch.MissingRatio,
		Peaks:           []int{},
		RR:              []float64{},
	}

	if ch.MissingRatio > b.cfg.HighMissingRatio {
		out.addNote(fmt.Sprintf("High missing_ratio=%.3f (auto-interpolation applied).", ch.MissingRatio))
	}

	// 1. Too short → 이후 단계 생략
	if len(ch.Values) < b.cfg.MinSamples {
		out.addNote(fmt.Sprintf("Too short segment: n_samples=%d.", len(ch.Values)))
		return b.finish(out.unreliable(StageTooShort)), nil
	}

	// 2. Interpolate + condition
	filled, err := ingest.Interpolate(seg.SegmentID, ch.Values)
	if err != nil {
		return nil, err
	}
	cleaned, err := b.conditioner.Clean(ctx, filled, ch.SamplingRateHz)
	if err != nil {
		return nil, &contracts.ConditioningError{SegmentID: seg.SegmentID, FiniteCount: len(filled), Err: err}
	}
	out.Stage = StageConditioned

	// 3. Quality (advisory, never gating)
	out.QualityIndex = b.scoreQuality(ctx, out, cleaned, ch.SamplingRateHz)
	out.Stage = StageQualityScored

	// 4. R-peaks
	peaks, err := b.detector.Detect(ctx, cleaned, ch.SamplingRateHz)
	if err != nil {
		out.addNote(fmt.Sprintf("R-peak detection failed: %v", err))
		return b.finish(out.unreliable(StagePeakDetectionFailed)), nil
	}
	if !strictlyIncreasing(peaks) {
		out.addNote(fmt.Sprintf("R-peak detection failed: %v: indices not strictly increasing", contracts.ErrPeakDetection))
		return b.finish(out.unreliable(StagePeakDetectionFailed)), nil
	}
	out.Peaks = peaks
	out.Stage = StagePeaksDetected

	// 5. RR (pooled at session level even when HRV is withheld)
	out.RR = hrv.RRIntervals(peaks, ch.SamplingRateHz)
	out.Stage = StageRRComputed

	// 6. HRV policy
	metrics, ok := hrv.ComputeFromPeaks(peaks, ch.SamplingRateHz, b.cfg.MinPeaksForHRV)
	if !ok {
		out.addNote(fmt.Sprintf("Not enough R-peaks for HRV: n_peaks=%d.", len(peaks)))
		return b.finish(out.unreliable(StageInsufficientPeaks)), nil
	}
	out.HRV = metrics
	out.Stage = StageHRVComputed
	if len(out.Notes) > 0 {
		out.Status = StatusDegraded
	}

	return b.finish(out), nil
}

func (b *Builder) scoreQuality(ctx context.Context, out *Outcome, cleaned []float64, fs int) float64 {
	scores, err := b.scorer.Score(ctx, cleaned, fs)
	if err != nil {
		out.addNote(fmt.Sprintf("ecg_quality failed: %v", err))
		return 0
	}

	mean, ok := hrv.NanMean(scores)
	if !ok {
		return 0
	}
	return clamp01(mean)
}

func (b *Builder) finish(out *Outcome) *Outcome {
	fields := map[string]interface{}{
		"segment_id":    out.SegmentID,
		"status":        out.Status.String(),
		"stage":         string(out.Stage),
		"n_peaks":       len(out.Peaks),
		"missing_ratio": out.MissingRatio,
		"quality":       out.QualityIndex,
	}
	if out.Status == StatusUnreliable {
		fields["notes"] = out.Notes
		b.logger.WithFields(fields).Warn("Segment unreliable")
	} else {
		b.logger.WithFields(fields).Debug("Segment processed")
	}
	return out
}

func (o *Outcome) addNote(note string) {
	o.Notes = append(o.Notes, note)
}

func (o *Outcome) unreliable(stage Stage) *Outcome {
	o.Status = StatusUnreliable
	o.Stage = stage
	o.HRV = contracts.HRVMetrics{}
	return o
}

func strictlyIncreasing(idx []int) bool {
	for i := 1; i < len(idx); i++ {
		if idx[i] <= idx[i-1] {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
