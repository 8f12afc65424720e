package broadcast

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

func endedAt(user, session string, end time.Time) *contracts.SessionSummary {
	s := summaryFor(user, session)
	s.WorkEndUnixMs = end.UnixMilli()
	return s
}

func TestLatestSummaries_KeepsNewest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLatestSummaries(time.Hour, logger.Nop())
	c.now = func() time.Time { return now }

	assert.True(t, c.Update(endedAt("u", "s-2", now.Add(-10*time.Minute))))
	assert.False(t, c.Update(endedAt("u", "s-1", now.Add(-20*time.Minute))), "older session must be rejected")
	assert.True(t, c.Update(endedAt("v", "s-3", now.Add(-2*time.Hour))))

	got, ok := c.Get("u")
	require.True(t, ok)
	assert.Equal(t, "s-2", got.SessionID)

	_, ok = c.Get("v")
	assert.False(t, ok, "stale entry must not be served")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.CleanStale())
	assert.Equal(t, 1, c.Len())
}

func TestHub_ReplaysLatestSummaryOnConnect(t *testing.T) {
	hub := NewHub(nil, logger.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	require.NoError(t, hub.Publish(context.Background(), endedAt("carol", "s-late", time.Now())))

	conn := dial(t, srv, "?user_id=carol")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var got contracts.SessionSummary
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "s-late", got.SessionID)
}
