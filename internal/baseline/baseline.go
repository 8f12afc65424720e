// Package baseline maintains per-user, per-hour-of-day HR/SDNN reference levels
// from stored reliable session summaries.
package baseline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/hrv"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// DefaultLookback is the window of summaries considered per run
const DefaultLookback = 30 * 24 * time.Hour

// Store is the persistence the job reads from and writes to
type Store interface {
	ReliableSummariesSince(ctx context.Context, sinceUnixMs int64) ([]contracts.SessionSummary, error)
	UpsertBaselines(ctx context.Context, baselines []contracts.UserBaseline) (int, error)
}

type bucketKey struct {
	userID string
	hour   int
}

// Compute groups reliable summaries by user and UTC hour of work start.
// Unreliable summaries are skipped. Output is ordered by user, then hour.
func Compute(summaries []contracts.SessionSummary, now time.Time) []contracts.UserBaseline {
	hr := make(map[bucketKey][]float64)
	sdnn := make(map[bucketKey][]float64)

	for _, s := range summaries {
		if !s.Quality.SignalOK || s.HRVTime.MeanHRBpm <= 0 {
			continue
		}
		key := bucketKey{
			userID: s.UserID,
			hour:   time.UnixMilli(s.WorkStartUnixMs).UTC().Hour(),
		}
		hr[key] = append(hr[key], s.HRVTime.MeanHRBpm)
		sdnn[key] = append(sdnn[key], s.HRVTime.SDNNMs)
	}

	out := make([]contracts.UserBaseline, 0, len(hr))
	for key, values := range hr {
		out = append(out, contracts.UserBaseline{
			UserID:          key.userID,
			PeriodStartHour: key.hour,
			AvgHR:           hrv.Round(hrv.Mean(values), 2),
			AvgSDNN:         hrv.Round(hrv.Mean(sdnn[key]), 2),
			SessionCount:    len(values),
			LastUpdated:     now.Unix(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].PeriodStartHour < out[j].PeriodStartHour
	})
	return out
}

// Job recomputes baselines on an hourly cron schedule
// ⭐ SSOT: 베이스라인 갱신 스케줄은 이 Job에서만
type Job struct {
	store    Store
	lookback time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// NewJob creates a baseline job over the given lookback window
func NewJob(store Store, lookback time.Duration, log *logger.Logger) *Job {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Job{
		store:    store,
		lookback: lookback,
		now:      time.Now,
		logger:   log.WithModule("baseline"),
	}
}

// Name returns the job name
func (j *Job) Name() string {
	return "user_baseline"
}

// Schedule returns the cron schedule (minute 5 of every hour, with seconds)
func (j *Job) Schedule() string {
	return "0 5 * * * *"
}

// Run recomputes and upserts every baseline inside the lookback window
func (j *Job) Run(ctx context.Context) error {
	now := j.now()
	since := now.Add(-j.lookback).UnixMilli()

	summaries, err := j.store.ReliableSummariesSince(ctx, since)
	if err != nil {
		return fmt.Errorf("load summaries: %w", err)
	}

	baselines := Compute(summaries, now)
	written, err := j.store.UpsertBaselines(ctx, baselines)
	if err != nil {
		return fmt.Errorf("upsert baselines: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"summaries": len(summaries),
		"baselines": written,
		"since_ms":  since,
	}).Info("Baselines refreshed")
	return nil
}
