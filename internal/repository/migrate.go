package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "players table",
		sql: `
			CREATE TABLE IF NOT EXISTS players (
				telegram_id BIGINT PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				score BIGINT NOT NULL DEFAULT 0,
				logged_in BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_players_score ON players(score DESC);
		`,
	},
	{
		name: "score_events table",
		sql: `
			CREATE TABLE IF NOT EXISTS score_events (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL REFERENCES players(telegram_id) ON DELETE CASCADE,
				session_id VARCHAR(64),
				game VARCHAR(32) NOT NULL,
				reason VARCHAR(50) NOT NULL,
				amount BIGINT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_score_events_player_time ON score_events(player_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_score_events_game ON score_events(game);
		`,
	},
}

// Migrate creates the dashboard schema. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Msgf("Migration %d: %s created", i+1, m.name)
	}
	return nil
}
