package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"arcade-dashboard/internal/model"
)

// ScoreEventRepository handles the score event log.
type ScoreEventRepository struct {
	pool *pgxpool.Pool
}

// NewScoreEventRepository creates a new ScoreEventRepository instance.
func NewScoreEventRepository(pool *pgxpool.Pool) *ScoreEventRepository {
	return &ScoreEventRepository{pool: pool}
}

// Create records a score event. ID and CreatedAt are filled in from the
// inserted row.
func (r *ScoreEventRepository) Create(ctx context.Context, ev *model.ScoreEvent) error {
	const query = `
		INSERT INTO score_events (player_id, session_id, game, reason, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		ev.PlayerID,
		ev.SessionID,
		ev.Game,
		ev.Reason,
		ev.Amount,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score event: %w", err)
	}
	return nil
}

// ListByPlayer retrieves a player's most recent score events, newest first.
func (r *ScoreEventRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]*model.ScoreEvent, error) {
	const query = `
		SELECT id, player_id, session_id, game, reason, amount, created_at
		FROM score_events
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list score events: %w", err)
	}
	defer rows.Close()

	var events []*model.ScoreEvent
	for rows.Next() {
		var ev model.ScoreEvent
		err := rows.Scan(
			&ev.ID,
			&ev.PlayerID,
			&ev.SessionID,
			&ev.Game,
			&ev.Reason,
			&ev.Amount,
			&ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score events: %w", err)
	}
	return events, nil
}

// TotalsByGame sums a player's score events per game, highest first.
func (r *ScoreEventRepository) TotalsByGame(ctx context.Context, playerID int64) ([]model.GameTotal, error) {
	const query = `
		SELECT game, COALESCE(SUM(amount), 0), COUNT(*)
		FROM score_events
		WHERE player_id = $1
		GROUP BY game
		ORDER BY SUM(amount) DESC, game ASC
	`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game totals: %w", err)
	}
	defer rows.Close()

	var totals []model.GameTotal
	for rows.Next() {
		var t model.GameTotal
		if err := rows.Scan(&t.Game, &t.Points, &t.Events); err != nil {
			return nil, fmt.Errorf("failed to scan game total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game totals: %w", err)
	}
	return totals, nil
}
