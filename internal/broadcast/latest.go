package broadcast

import (
	"sync"
	"time"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// LatestSummaries keeps the newest summary per user in memory so a client that
// connects after a session ended still gets it
// ⭐ SSOT: 사용자별 최신 요약 캐싱은 이 구조체에서만
type LatestSummaries struct {
	mu        sync.RWMutex
	summaries map[string]*contracts.SessionSummary
	ttl       time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewLatestSummaries creates the cache; entries older than ttl (by work end) are stale
func NewLatestSummaries(ttl time.Duration, log *logger.Logger) *LatestSummaries {
	return &LatestSummaries{
		summaries: make(map[string]*contracts.SessionSummary),
		ttl:       ttl,
		now:       time.Now,
		logger:    log,
	}
}

// Update stores s unless a newer session of the same user is already cached
func (c *LatestSummaries) Update(s *contracts.SessionSummary) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.summaries[s.UserID]; ok {
		// Don't accept older sessions
		if s.WorkEndUnixMs < existing.WorkEndUnixMs {
			c.logger.WithFields(map[string]interface{}{
				"user_id":     s.UserID,
				"new_session": s.SessionID,
				"old_session": existing.SessionID,
			}).Debug("Rejected older summary")
			return false
		}
	}

	c.summaries[s.UserID] = s
	return true
}

// Get returns the cached summary of a user if it is still fresh
func (c *LatestSummaries) Get(userID string) (*contracts.SessionSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.summaries[userID]
	if !ok || c.stale(s) {
		return nil, false
	}
	return s, true
}

// Len returns the number of cached users
func (c *LatestSummaries) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.summaries)
}

// CleanStale removes stale entries and returns how many were removed
func (c *LatestSummaries) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for user, s := range c.summaries {
		if c.stale(s) {
			delete(c.summaries, user)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale summaries from cache")
	}
	return count
}

func (c *LatestSummaries) stale(s *contracts.SessionSummary) bool {
	return c.now().Sub(time.UnixMilli(s.WorkEndUnixMs)) > c.ttl
}
