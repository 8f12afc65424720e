package contracts

import "context"

// Conditioner denoises a waveform. It fails only on malformed input.
// ⭐ SSOT: 외부 신호 처리 인터페이스 (conditioner / quality / peaks)
type Conditioner interface {
	Clean(ctx context.Context, signal []float64, samplingRateHz int) ([]float64, error)
}

// QualityScorer returns per-sample quality scores in [0, 1]. It may fail.
type QualityScorer interface {
	Score(ctx context.Context, cleaned []float64, samplingRateHz int) ([]float64, error)
}

// PeakDetector returns strictly increasing beat indices. It may fail.
type PeakDetector interface {
	Detect(ctx context.Context, cleaned []float64, samplingRateHz int) ([]int, error)
	Method() string
}

// SegmentProcessor turns one raw segment into a feature record
type SegmentProcessor interface {
	Process(ctx context.Context, seg *RawSegment) (*SegmentFeature, error)
}

// SummaryRepository persists final session summaries and baselines
type SummaryRepository interface {
	SaveSummary(ctx context.Context, s *SessionSummary) error
	GetSummary(ctx context.Context, sessionID string) (*SessionSummary, error)
	ListSummaries(ctx context.Context, userID string, limit int) ([]SessionSummary, error)
	GetBaselines(ctx context.Context, userID string) ([]UserBaseline, error)
}

// SummaryPublisher pushes a finished summary to downstream consumers
type SummaryPublisher interface {
	Publish(ctx context.Context, s *SessionSummary) error
}
