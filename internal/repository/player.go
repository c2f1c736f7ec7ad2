// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arcade-dashboard/internal/model"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound = errors.New("player not found")
)

const playerColumns = `telegram_id, username, score, logged_in, created_at, updated_at`

// PlayerRepository handles player persistence.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.TelegramID,
		&p.Username,
		&p.Score,
		&p.LoggedIn,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new player with a zero score.
func (r *PlayerRepository) Create(ctx context.Context, telegramID int64, username string) (*model.Player, error) {
	const query = `
		INSERT INTO players (telegram_id, username, score, logged_in, created_at, updated_at)
		VALUES ($1, $2, 0, FALSE, NOW(), NOW())
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, telegramID, username))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// GetByID retrieves a player by Telegram ID.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) GetByID(ctx context.Context, telegramID int64) (*model.Player, error) {
	const query = `SELECT ` + playerColumns + ` FROM players WHERE telegram_id = $1`

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// GetOrCreate retrieves a player, creating one if it doesn't exist.
// The second result reports whether the player was created.
func (r *PlayerRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.Player, bool, error) {
	p, err := r.GetByID(ctx, telegramID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrPlayerNotFound) {
		return nil, false, err
	}

	p, err = r.Create(ctx, telegramID, username)
	if err != nil {
		// Another request may have created the player concurrently
		p, err = r.GetByID(ctx, telegramID)
		if err != nil {
			return nil, false, err
		}
		return p, false, nil
	}
	return p, true, nil
}

// AddScore adds amount to the player's score and returns the updated player.
func (r *PlayerRepository) AddScore(ctx context.Context, telegramID int64, amount int64) (*model.Player, error) {
	const query = `
		UPDATE players
		SET score = score + $2, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, telegramID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to add score: %w", err)
	}
	return p, nil
}

// SetSession marks the player logged in or out. Logging out also resets the
// score to zero.
func (r *PlayerRepository) SetSession(ctx context.Context, telegramID int64, loggedIn bool) (*model.Player, error) {
	const query = `
		UPDATE players
		SET logged_in = $2,
		    score = CASE WHEN $2 THEN score ELSE 0 END,
		    updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, telegramID, loggedIn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to set session: %w", err)
	}
	return p, nil
}

// UpdateUsername updates a player's username.
func (r *PlayerRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	const query = `
		UPDATE players
		SET username = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// GetTopPlayers retrieves the top N players by score.
func (r *PlayerRepository) GetTopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	const query = `
		SELECT ` + playerColumns + `
		FROM players
		ORDER BY score DESC, telegram_id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

// LogoutAll marks every player logged out and clears their scores. It runs
// at startup, since game hosts do not survive a restart.
func (r *PlayerRepository) LogoutAll(ctx context.Context) (int64, error) {
	const query = `
		UPDATE players
		SET logged_in = FALSE, score = 0, updated_at = NOW()
		WHERE logged_in
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to log out players: %w", err)
	}
	return result.RowsAffected(), nil
}
