// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/model"
	"arcade-dashboard/internal/pkg/lock"
	"arcade-dashboard/internal/score"
)

// Common errors for score operations.
var (
	ErrNotLoggedIn = errors.New("player is not logged in")
)

// LockTimeout bounds how long a score operation waits for the player's lock.
const LockTimeout = 3 * time.Second

// PlayerStore persists players. It is implemented by
// repository.PlayerRepository.
type PlayerStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.Player, bool, error)
	GetByID(ctx context.Context, telegramID int64) (*model.Player, error)
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
	AddScore(ctx context.Context, telegramID int64, amount int64) (*model.Player, error)
	SetSession(ctx context.Context, telegramID int64, loggedIn bool) (*model.Player, error)
	GetTopPlayers(ctx context.Context, limit int) ([]*model.Player, error)
	LogoutAll(ctx context.Context) (int64, error)
}

// ScoreEventStore persists the score event log. It is implemented by
// repository.ScoreEventRepository.
type ScoreEventStore interface {
	Create(ctx context.Context, ev *model.ScoreEvent) error
	ListByPlayer(ctx context.Context, playerID int64, limit int) ([]*model.ScoreEvent, error)
	TotalsByGame(ctx context.Context, playerID int64) ([]model.GameTotal, error)
}

// ScoreService owns the dashboard score of every logged-in player.
// The in-memory counter is the source of truth for the running session and
// is written through to the stores.
type ScoreService struct {
	players PlayerStore
	events  ScoreEventStore
	locks   *lock.PlayerLock

	mu       sync.RWMutex
	counters map[int64]*score.Counter
}

// NewScoreService creates a new ScoreService instance.
func NewScoreService(players PlayerStore, events ScoreEventStore, locks *lock.PlayerLock) *ScoreService {
	if locks == nil {
		locks = lock.New()
	}
	return &ScoreService{
		players:  players,
		events:   events,
		locks:    locks,
		counters: make(map[int64]*score.Counter),
	}
}

// ResetSessions logs out every persisted session. Hosts live in memory only,
// so sessions left over from a previous run are stale.
func (s *ScoreService) ResetSessions(ctx context.Context) error {
	n, err := s.players.LogoutAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset sessions: %w", err)
	}
	if n > 0 {
		log.Info().Int64("players", n).Msg("Stale sessions logged out")
	}
	return nil
}

// Login marks the player logged in, creating the account on first use, and
// loads its score counter. Logging in twice keeps the running total.
func (s *ScoreService) Login(ctx context.Context, telegramID int64, username string) (*model.Player, error) {
	if err := s.locks.LockContext(ctx, telegramID, LockTimeout); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	defer s.locks.Unlock(telegramID)

	p, created, err := s.players.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure player: %w", err)
	}
	if !created && username != "" && p.Username != username {
		if err := s.players.UpdateUsername(ctx, telegramID, username); err != nil {
			log.Warn().Err(err).Int64("player_id", telegramID).Msg("Failed to update username")
		}
	}

	p, err = s.players.SetSession(ctx, telegramID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	s.mu.Lock()
	if _, ok := s.counters[telegramID]; !ok {
		s.counters[telegramID] = score.NewCounter(p.Score)
	}
	total := s.counters[telegramID].Total()
	s.mu.Unlock()

	p.Score = total
	log.Info().
		Int64("player_id", telegramID).
		Bool("created", created).
		Int64("score", total).
		Msg("Player logged in")
	return p, nil
}

// Logout resets the player's score and forgets its counter. The counter is
// kept when the stored session cannot be closed, so the logout can be retried.
func (s *ScoreService) Logout(ctx context.Context, telegramID int64) error {
	if err := s.locks.LockContext(ctx, telegramID, LockTimeout); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	defer s.locks.Unlock(telegramID)

	if !s.IsLoggedIn(telegramID) {
		return ErrNotLoggedIn
	}
	if _, err := s.players.SetSession(ctx, telegramID, false); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	s.mu.Lock()
	delete(s.counters, telegramID)
	s.mu.Unlock()
	log.Info().Int64("player_id", telegramID).Msg("Player logged out")
	return nil
}

// IsLoggedIn reports whether the player has a live session.
func (s *ScoreService) IsLoggedIn(telegramID int64) bool {
	return s.counter(telegramID) != nil
}

// Total returns the player's running score.
func (s *ScoreService) Total(telegramID int64) (int64, error) {
	c := s.counter(telegramID)
	if c == nil {
		return 0, ErrNotLoggedIn
	}
	return c.Total(), nil
}

// ApplyDelta adds amount to the player's score. The new total is visible to
// Total before ApplyDelta returns, even when persisting fails or the
// player's lock cannot be taken in time.
func (s *ScoreService) ApplyDelta(ctx context.Context, telegramID int64, amount int, reason game.Reason) error {
	c := s.counter(telegramID)
	if c == nil {
		return ErrNotLoggedIn
	}

	_ = c.ApplyDelta(ctx, amount, reason)

	// The counter already holds the delta; only persisting waits for the lock
	if err := s.locks.LockContext(ctx, telegramID, LockTimeout); err != nil {
		return fmt.Errorf("failed to persist score: %w", err)
	}
	defer s.locks.Unlock(telegramID)
	if s.counter(telegramID) != c {
		// Logged out while waiting; the stored score was already reset
		return ErrNotLoggedIn
	}

	play, _ := game.PlayFromContext(ctx)
	ev := &model.ScoreEvent{
		PlayerID: telegramID,
		Game:     string(play.Kind),
		Reason:   string(reason),
		Amount:   int64(amount),
	}
	if play.SessionID != "" {
		sid := play.SessionID
		ev.SessionID = &sid
	}

	if _, err := s.players.AddScore(ctx, telegramID, int64(amount)); err != nil {
		return fmt.Errorf("failed to persist score: %w", err)
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return fmt.Errorf("failed to record score event: %w", err)
	}

	log.Debug().
		Int64("player_id", telegramID).
		Str("game", ev.Game).
		Str("reason", ev.Reason).
		Int("amount", amount).
		Int64("total", c.Total()).
		Msg("Score applied")
	return nil
}

// Sink returns the player's score sink for a game host.
func (s *ScoreService) Sink(telegramID int64) game.ScoreSink {
	return playerSink{svc: s, playerID: telegramID}
}

// GetPlayer retrieves a player by Telegram ID.
func (s *ScoreService) GetPlayer(ctx context.Context, telegramID int64) (*model.Player, error) {
	return s.players.GetByID(ctx, telegramID)
}

// TopPlayers retrieves the top players by score.
func (s *ScoreService) TopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	return s.players.GetTopPlayers(ctx, limit)
}

// History retrieves the player's most recent score events.
func (s *ScoreService) History(ctx context.Context, telegramID int64, limit int) ([]*model.ScoreEvent, error) {
	return s.events.ListByPlayer(ctx, telegramID, limit)
}

// GameTotals retrieves the player's points per game.
func (s *ScoreService) GameTotals(ctx context.Context, telegramID int64) ([]model.GameTotal, error) {
	return s.events.TotalsByGame(ctx, telegramID)
}

func (s *ScoreService) counter(telegramID int64) *score.Counter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[telegramID]
}

type playerSink struct {
	svc      *ScoreService
	playerID int64
}

func (p playerSink) ApplyDelta(ctx context.Context, amount int, reason game.Reason) error {
	return p.svc.ApplyDelta(ctx, p.playerID, amount, reason)
}
