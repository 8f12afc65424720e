package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/config"
	"github.com/ecg-pomodoro/backend/pkg/database"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultListLimit},
		{-3, DefaultListLimit},
		{1, 1},
		{50, 50},
		{1000, MaxListLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in), "limit %d", tt.in)
	}
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schemaSQL, "ecg.session_summaries")
	assert.Contains(t, schemaSQL, "ecg.user_baselines")
}

func newTestRepo(t *testing.T) *SummaryRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, EnsureSchema(context.Background(), db.Pool))
	return NewSummaryRepository(db.Pool)
}

func TestSummaryRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := fmt.Sprintf("test_%d", time.Now().UnixNano())
	summary := &contracts.SessionSummary{
		SchemaVersion:   contracts.SchemaSummary,
		UserID:          "store_test_user",
		SessionID:       id,
		WorkStartUnixMs: time.Now().UnixMilli(),
		Quality:         contracts.QualityReport{SignalOK: true, Notes: []string{"ok"}},
		HRVTime:         contracts.HRVMetrics{MeanHRBpm: 72.5, SDNNMs: 41.2, RMSSDMs: 30.1},
		Trend:           []contracts.TrendPoint{},
	}

	require.NoError(t, repo.SaveSummary(ctx, summary))
	// second save is ignored
	changed := *summary
	changed.HRVTime.MeanHRBpm = 99
	require.NoError(t, repo.SaveSummary(ctx, &changed))

	got, err := repo.GetSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 72.5, got.HRVTime.MeanHRBpm)

	list, err := repo.ListSummaries(ctx, "store_test_user", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	_, err = repo.GetSummary(ctx, "does-not-exist")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestSummaryRepository_Baselines(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := fmt.Sprintf("baseline_%d", time.Now().UnixNano())
	n, err := repo.UpsertBaselines(ctx, []contracts.UserBaseline{
		{UserID: user, PeriodStartHour: 9, AvgHR: 70, AvgSDNN: 45, SessionCount: 2, LastUpdated: time.Now().Unix()},
		{UserID: user, PeriodStartHour: 14, AvgHR: 76, AvgSDNN: 38, SessionCount: 1, LastUpdated: time.Now().Unix()},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.GetBaselines(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].PeriodStartHour)
}
