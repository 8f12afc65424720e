package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// GetBaselines returns the per-hour baselines of a user ordered by hour
func (r *SummaryRepository) GetBaselines(ctx context.Context, userID string) ([]contracts.UserBaseline, error) {
	query := `
		SELECT user_id, period_start_hour, avg_hr, avg_sdnn, session_count, last_updated
		FROM ecg.user_baselines
		WHERE user_id = $1
		ORDER BY period_start_hour ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []contracts.UserBaseline{}
	for rows.Next() {
		var b contracts.UserBaseline
		if err := rows.Scan(&b.UserID, &b.PeriodStartHour, &b.AvgHR, &b.AvgSDNN, &b.SessionCount, &b.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBaselines writes baselines in one batch
func (r *SummaryRepository) UpsertBaselines(ctx context.Context, baselines []contracts.UserBaseline) (int, error) {
	if len(baselines) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO ecg.user_baselines (
			user_id, period_start_hour, avg_hr, avg_sdnn, session_count, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, period_start_hour) DO UPDATE SET
			avg_hr = EXCLUDED.avg_hr,
			avg_sdnn = EXCLUDED.avg_sdnn,
			session_count = EXCLUDED.session_count,
			last_updated = EXCLUDED.last_updated
	`

	batch := &pgx.Batch{}
	for _, b := range baselines {
		batch.Queue(query, b.UserID, b.PeriodStartHour, b.AvgHR, b.AvgSDNN, b.SessionCount, b.LastUpdated)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range baselines {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert baseline %s/%d: %w", baselines[i].UserID, baselines[i].PeriodStartHour, err)
		}
	}
	return len(baselines), nil
}
