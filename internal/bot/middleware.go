package bot

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/config"
)

// WhitelistMiddleware drops updates from chats outside the whitelist.
// Private chats are always served.
func WhitelistMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || c.Sender() == nil {
				return nil
			}
			if chat.Type != tele.ChatPrivate && !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring update from non-whitelisted chat")
				return nil
			}
			return next(c)
		}
	}
}

// SessionChecker reports whether a player is logged in.
type SessionChecker interface {
	IsLoggedIn(playerID int64) bool
}

// RequireLoginMiddleware rejects updates from players without a session.
func RequireLoginMiddleware(sessions SessionChecker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if !sessions.IsLoggedIn(sender.ID) {
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: "Please /login first.", ShowAlert: true})
				}
				return c.Send("Please /login first.")
			}
			return next(c)
		}
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PlayerLimiter keeps one token bucket per player.
type PlayerLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[int64]*limiterEntry
	stop    chan struct{}
	once    sync.Once
}

// NewPlayerLimiter creates a limiter allowing perSecond events per player
// with the given burst. A non-positive perSecond disables limiting.
func NewPlayerLimiter(perSecond float64, burst int) *PlayerLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &PlayerLimiter{
		limit:   limit,
		burst:   burst,
		entries: make(map[int64]*limiterEntry),
		stop:    make(chan struct{}),
	}
}

// Allow reports whether the player may act now, consuming a token if so.
func (l *PlayerLimiter) Allow(playerID int64) bool {
	return l.AllowAt(playerID, time.Now())
}

// AllowAt is Allow at an explicit instant.
func (l *PlayerLimiter) AllowAt(playerID int64, now time.Time) bool {
	l.mu.Lock()
	e, ok := l.entries[playerID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[playerID] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.limiter.AllowN(now, 1)
}

// Prune forgets players idle since before cutoff and returns how many were
// removed.
func (l *PlayerLimiter) Prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of tracked players.
func (l *PlayerLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep prunes idle players every idle interval until Stop is called.
func (l *PlayerLimiter) Sweep(idle time.Duration) {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			if n := l.Prune(now.Add(-idle)); n > 0 {
				log.Debug().Int("players", n).Msg("Pruned idle rate limiters")
			}
		}
	}
}

// Stop ends Sweep.
func (l *PlayerLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// RateLimitMiddleware drops updates from players exceeding their rate.
func RateLimitMiddleware(l *PlayerLimiter) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if !l.Allow(sender.ID) {
				log.Debug().Int64("player_id", sender.ID).Msg("Rate limited")
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: "Slow down!"})
				}
				return nil
			}
			return next(c)
		}
	}
}

// LoggingMiddleware creates a middleware that logs all incoming updates.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug()
			if sender != nil {
				logEvent = logEvent.
					Int64("player_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			if cb := c.Callback(); cb != nil {
				logEvent = logEvent.Str("data", cb.Data)
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received update")

			return next(c)
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in handler")
					err = c.Send("❌ Internal error, please try again later")
				}
			}()
			return next(c)
		}
	}
}
