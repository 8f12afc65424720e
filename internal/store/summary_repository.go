// Package store persists session summaries and user baselines in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// List limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SummaryRepository implements contracts.SummaryRepository
// ⭐ SSOT: 세션 요약 저장소는 여기서만
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

// SaveSummary inserts a summary once; a second save of the same session is ignored
func (r *SummaryRepository) SaveSummary(ctx context.Context, s *contracts.SessionSummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	query := `
		INSERT INTO ecg.session_summaries (
			session_id, user_id, work_start_unix_ms, work_end_unix_ms, duration_s,
			signal_ok, mean_hr_bpm, sdnn_ms, rmssd_ms, rr_count, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		s.SessionID, s.UserID, s.WorkStartUnixMs, s.WorkEndUnixMs, s.DurationS,
		s.Quality.SignalOK, s.HRVTime.MeanHRBpm, s.HRVTime.SDNNMs, s.HRVTime.RMSSDMs, s.RRSummary.N,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert summary %s: %w", s.SessionID, err)
	}
	return nil
}

// GetSummary retrieves one summary by session id
func (r *SummaryRepository) GetSummary(ctx context.Context, sessionID string) (*contracts.SessionSummary, error) {
	query := `
		SELECT summary
		FROM ecg.session_summaries
		WHERE session_id = $1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s contracts.SessionSummary
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("unmarshal summary %s: %w", sessionID, err)
	}
	return &s, nil
}

// ListSummaries returns the latest summaries of a user, newest first
func (r *SummaryRepository) ListSummaries(ctx context.Context, userID string, limit int) ([]contracts.SessionSummary, error) {
	query := `
		SELECT summary
		FROM ecg.session_summaries
		WHERE user_id = $1
		ORDER BY work_start_unix_ms DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

// ReliableSummariesSince returns reliable summaries started at or after sinceUnixMs
func (r *SummaryRepository) ReliableSummariesSince(ctx context.Context, sinceUnixMs int64) ([]contracts.SessionSummary, error) {
	query := `
		SELECT summary
		FROM ecg.session_summaries
		WHERE signal_ok AND work_start_unix_ms >= $1
		ORDER BY work_start_unix_ms ASC
	`

	rows, err := r.pool.Query(ctx, query, sinceUnixMs)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]contracts.SessionSummary, error) {
	defer rows.Close()

	out := []contracts.SessionSummary{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var s contracts.SessionSummary
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ClampLimit maps a requested page size into [1, MaxListLimit]
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
