package baseline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

func summaryAt(user string, start time.Time, ok bool, hr, sdnn float64) contracts.SessionSummary {
	return contracts.SessionSummary{
		UserID:          user,
		WorkStartUnixMs: start.UnixMilli(),
		Quality:         contracts.QualityReport{SignalOK: ok},
		HRVTime:         contracts.HRVMetrics{MeanHRBpm: hr, SDNNMs: sdnn},
	}
}

func TestCompute(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(48 * time.Hour)

	summaries := []contracts.SessionSummary{
		summaryAt("bob", day.Add(9*time.Hour+10*time.Minute), true, 70, 40),
		summaryAt("bob", day.Add(24*time.Hour+9*time.Hour+50*time.Minute), true, 74, 50),
		summaryAt("bob", day.Add(14*time.Hour), true, 80, 30),
		summaryAt("bob", day.Add(14*time.Hour), false, 200, 1), // unreliable
		summaryAt("amy", day.Add(9*time.Hour), true, 60, 60),
	}

	got := Compute(summaries, now)
	require.Len(t, got, 3)

	assert.Equal(t, "amy", got[0].UserID)
	assert.Equal(t, 9, got[0].PeriodStartHour)

	assert.Equal(t, "bob", got[1].UserID)
	assert.Equal(t, 9, got[1].PeriodStartHour)
	assert.Equal(t, 72.0, got[1].AvgHR)
	assert.Equal(t, 45.0, got[1].AvgSDNN)
	assert.Equal(t, 2, got[1].SessionCount)
	assert.Equal(t, now.Unix(), got[1].LastUpdated)

	assert.Equal(t, 14, got[2].PeriodStartHour)
	assert.Equal(t, 1, got[2].SessionCount)
}

func TestCompute_Empty(t *testing.T) {
	assert.Empty(t, Compute(nil, time.Now()))
}

type fakeStore struct {
	summaries []contracts.SessionSummary
	since     int64
	written   []contracts.UserBaseline
	loadErr   error
}

func (s *fakeStore) ReliableSummariesSince(_ context.Context, since int64) ([]contracts.SessionSummary, error) {
	s.since = since
	return s.summaries, s.loadErr
}

func (s *fakeStore) UpsertBaselines(_ context.Context, b []contracts.UserBaseline) (int, error) {
	s.written = b
	return len(b), nil
}

func TestJob_Run(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 5, 0, 0, time.UTC)
	store := &fakeStore{summaries: []contracts.SessionSummary{
		summaryAt("u", now.Add(-2*time.Hour), true, 66, 55),
	}}

	job := NewJob(store, 24*time.Hour, logger.Nop())
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour).UnixMilli(), store.since)
	require.Len(t, store.written, 1)
	assert.Equal(t, 10, store.written[0].PeriodStartHour)
	assert.Equal(t, "user_baseline", job.Name())
	assert.Equal(t, "0 5 * * * *", job.Schedule())
}

func TestJob_RunLoadError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("db down")}
	job := NewJob(store, 0, logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, DefaultLookback, job.lookback)
}
