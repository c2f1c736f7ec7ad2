// Package model defines the persisted dashboard data.
package model

import "time"

// Player is a dashboard account keyed by Telegram user ID.
// Score is the shared counter fed by every game; it is reset on logout.
type Player struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Score      int64     `db:"score"`
	LoggedIn   bool      `db:"logged_in"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ScoreEvent records one score delta applied to a player.
type ScoreEvent struct {
	ID        int64     `db:"id"`
	PlayerID  int64     `db:"player_id"`
	SessionID *string   `db:"session_id"`
	Game      string    `db:"game"`
	Reason    string    `db:"reason"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// GameTotal is a player's accumulated points for one game.
type GameTotal struct {
	Game   string `db:"game"`
	Points int64  `db:"points"`
	Events int64  `db:"events"`
}
