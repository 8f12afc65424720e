package session

import (
	"context"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// Service runs the aggregator, then stores and publishes the summary.
// Storage and publishing are best-effort: failures are logged only.
type Service struct {
	aggregator *Aggregator
	repo       contracts.SummaryRepository
	publishers []contracts.SummaryPublisher
	logger     *logger.Logger
}

// NewService creates a session service; repo may be nil
func NewService(aggregator *Aggregator, repo contracts.SummaryRepository, log *logger.Logger, publishers ...contracts.SummaryPublisher) *Service {
	return &Service{
		aggregator: aggregator,
		repo:       repo,
		publishers: publishers,
		logger:     log.WithModule("session-service"),
	}
}

// EndSession closes a work session and returns its summary
func (s *Service) EndSession(ctx context.Context, req *contracts.WorkRequest) (*contracts.SessionSummary, error) {
	summary, err := s.aggregator.Aggregate(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.SaveSummary(ctx, summary); err != nil {
			s.logger.WithError(err).WithField("session_id", summary.SessionID).Error("Failed to save summary")
		}
	}

	for _, p := range s.publishers {
		if err := p.Publish(ctx, summary); err != nil {
			s.logger.WithError(err).WithField("session_id", summary.SessionID).Warn("Failed to publish summary")
		}
	}

	return summary, nil
}

// Summary returns a stored summary
func (s *Service) Summary(ctx context.Context, sessionID string) (*contracts.SessionSummary, error) {
	if s.repo == nil {
		return nil, contracts.ErrStoreDisabled
	}
	return s.repo.GetSummary(ctx, sessionID)
}

// ListSummaries returns the latest summaries of a user, newest first
func (s *Service) ListSummaries(ctx context.Context, userID string, limit int) ([]contracts.SessionSummary, error) {
	if s.repo == nil {
		return nil, contracts.ErrStoreDisabled
	}
	return s.repo.ListSummaries(ctx, userID, limit)
}

// Baselines returns the per-hour baselines of a user
func (s *Service) Baselines(ctx context.Context, userID string) ([]contracts.UserBaseline, error) {
	if s.repo == nil {
		return nil, contracts.ErrStoreDisabled
	}
	return s.repo.GetBaselines(ctx, userID)
}
