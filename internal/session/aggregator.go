// Package session folds the segments of one work session into a summary.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/hrv"
	"github.com/ecg-pomodoro/backend/internal/ingest"
	"github.com/ecg-pomodoro/backend/internal/pipelineconfig"
	"github.com/ecg-pomodoro/backend/internal/segment"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// Aggregator builds one SessionSummary per WorkRequest
// ⭐ SSOT: 세션 집계(풀링/트렌드/신뢰도)는 여기서만
type Aggregator struct {
	builder *segment.Builder
	cfg     *pipelineconfig.Config
	workers int
	logger  *logger.Logger
}

// NewAggregator creates a new session aggregator
func NewAggregator(builder *segment.Builder, cfg *pipelineconfig.Config, workers int, log *logger.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		builder: builder,
		cfg:     cfg,
		workers: workers,
		logger:  log.WithModule("session"),
	}
}

type indexedOutcome struct {
	index   int
	outcome *segment.Outcome
	err     error
}

// Aggregate validates every segment, processes them in parallel and folds
// the results in chronological order. Only a ValidationError or a context
// error fails the call.
func (a *Aggregator) Aggregate(ctx context.Context, req *contracts.WorkRequest) (*contracts.SessionSummary, error) {
	if err := a.validate(req); err != nil {
		return nil, err
	}

	// 1. 시작 시각 기준 안정 정렬 (클라이언트 순서는 신뢰하지 않음)
	ordered := make([]*contracts.RawSegment, len(req.Segments))
	for i := range req.Segments {
		ordered[i] = &req.Segments[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTimeUnixMs < ordered[j].StartTimeUnixMs
	})

	a.logger.WithFields(map[string]interface{}{
		"session_id": req.SessionID,
		"user_id":    req.UserID,
		"segments":   len(ordered),
		"workers":    a.workers,
	}).Info("Starting session aggregation")

	// 2. Worker pool
	outcomes, err := a.processAll(ctx, ordered)
	if err != nil {
		return nil, err
	}

	// 3. Fold (chronological)
	summary := Fold(req, outcomes, a.cfg)

	a.logger.WithFields(map[string]interface{}{
		"session_id":  req.SessionID,
		"signal_ok":   summary.Quality.SignalOK,
		"rr_count":    summary.RRSummary.N,
		"mean_hr_bpm": summary.HRVTime.MeanHRBpm,
	}).Info("Session aggregation completed")

	return summary, nil
}

func (a *Aggregator) validate(req *contracts.WorkRequest) error {
	if req == nil {
		return &contracts.ValidationError{Reason: "request is nil"}
	}
	if req.SchemaVersion != "" && req.SchemaVersion != contracts.SchemaWork {
		return &contracts.ValidationError{Reason: fmt.Sprintf("unsupported schema_version %q", req.SchemaVersion)}
	}
	if req.SessionID == "" {
		return &contracts.ValidationError{Reason: "session_id is required"}
	}

	// 한 세그먼트라도 구조적으로 잘못되면 요청 전체 거부
	for i := range req.Segments {
		if err := ingest.ValidateChannel(&req.Segments[i], a.cfg.Segment.ChannelIndex); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) processAll(ctx context.Context, ordered []*contracts.RawSegment) ([]*segment.Outcome, error) {
	jobCh := make(chan int, len(ordered))
	resultCh := make(chan indexedOutcome, len(ordered))

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.worker(ctx, ordered, jobCh, resultCh)
		}()
	}

	for i := range ordered {
		jobCh <- i
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// 결과는 정렬된 인덱스 위치로 재동기화
	outcomes := make([]*segment.Outcome, len(ordered))
	var firstErr error
	for r := range resultCh {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		outcomes[r.index] = r.outcome
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return outcomes, nil
}

func (a *Aggregator) worker(ctx context.Context, ordered []*contracts.RawSegment, jobCh <-chan int, resultCh chan<- indexedOutcome) {
	for idx := range jobCh {
		select {
		case <-ctx.Done():
			resultCh <- indexedOutcome{index: idx, err: ctx.Err()}
			continue
		default:
		}

		seg := ordered[idx]
		out, err := a.builder.Build(ctx, seg)
		if err != nil {
			if !contracts.IsConditioning(err) {
				resultCh <- indexedOutcome{index: idx, err: err}
				continue
			}
			missing := 1.0
			if ch, chErr := ingest.SelectChannel(seg, a.cfg.Segment.ChannelIndex); chErr == nil {
				missing = ch.MissingRatio
			}
			a.logger.WithError(err).WithField("segment_id", seg.SegmentID).Warn("Segment rejected")
			out = segment.Rejected(seg, a.builder.Method(), missing, err)
		}
		resultCh <- indexedOutcome{index: idx, outcome: out}
	}
}

// Fold merges chronologically ordered outcomes into the session summary.
// RR values are pooled; session HRV and HR come from the pool, never from
// per-segment averages.
func Fold(req *contracts.WorkRequest, outcomes []*segment.Outcome, cfg *pipelineconfig.Config) *contracts.SessionSummary {
	var pool []float64
	var notes []string
	var qualitySum, missingSum float64
	reliable := 0
	trend := make([]contracts.TrendPoint, 0, len(outcomes))

	for _, o := range outcomes {
		pool = append(pool, o.RR...)
		qualitySum += o.QualityIndex
		missingSum += o.MissingRatio
		if o.Reliable() {
			reliable++
		}
		notes = append(notes, o.Notes...)
		trend = append(trend, o.TrendPoint(offsetSeconds(o.StartTimeUnixMs, req.WorkStartUnixMs)))
	}

	// 세그먼트가 없으면 최악값으로 (quality 0.0, missing 1.0)
	qualityMean, missingMean := 0.0, 1.0
	if len(outcomes) > 0 {
		qualityMean = qualitySum / float64(len(outcomes))
		missingMean = missingSum / float64(len(outcomes))
	}

	nSeg := len(outcomes)
	if nSeg < 1 {
		nSeg = 1
	}
	reliableRatio := float64(reliable) / float64(nSeg)
	signalOK := reliableRatio >= cfg.Session.MinReliableRatio && len(pool) >= cfg.Session.MinRRCount

	if pool == nil {
		pool = []float64{}
	}

	return &contracts.SessionSummary{
		SchemaVersion:   contracts.SchemaSummary,
		UserID:          req.UserID,
		SessionID:       req.SessionID,
		WorkStartUnixMs: req.WorkStartUnixMs,
		WorkEndUnixMs:   req.WorkEndUnixMs,
		DurationS:       offsetSeconds(req.WorkEndUnixMs, req.WorkStartUnixMs),
		Quality: contracts.QualityReport{
			SignalOK:         signalOK,
			MissingRatio:     hrv.Round(missingMean, 6),
			QualityIndexMean: hrv.Round(qualityMean, 4),
			Notes:            segment.NotesOrOK(notes),
		},
		HRSummary: hrv.RoundHeartRate(hrv.HeartRate(pool)),
		HRVTime:   hrv.RoundMetrics(hrv.Compute(pool)),
		RRSummary: hrv.RoundSummary(hrv.Summarize(pool, cfg.Segment.OutlierRelDeviation)),
		Trend:     trend,
	}
}

// offsetSeconds is floor((t - origin) / 1000) clamped at zero
func offsetSeconds(t, origin int64) int64 {
	d := t - origin
	if d <= 0 {
		return 0
	}
	return d / 1000
}
