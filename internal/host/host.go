// Package host runs one player's dashboard: it owns the active game engine,
// serializes every input and timer fire through it, forwards score deltas to
// the player's sink and pushes snapshots to a renderer.
package host

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"arcade-dashboard/internal/game"
)

// Errors returned by Host.
var (
	ErrNoActiveGame = errors.New("no game selected")
	ErrClosed       = errors.New("host closed")
)

// Renderer receives a snapshot after every applied transition. It is called
// with the host locked, so it must not block or call back into the host.
type Renderer interface {
	Render(ctx context.Context, snap game.Snapshot, res game.Result)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx context.Context, snap game.Snapshot, res game.Result)

// Render calls f.
func (f RenderFunc) Render(ctx context.Context, snap game.Snapshot, res game.Result) {
	f(ctx, snap, res)
}

// DefaultSinkTimeout bounds a single score delta write.
const DefaultSinkTimeout = 5 * time.Second

// Options configures a Host.
type Options struct {
	PlayerID    int64
	Registry    *game.Registry
	RNG         game.RNG
	Sink        game.ScoreSink
	SinkTimeout time.Duration
	Scheduler   Scheduler
	Renderer    Renderer
}

// armed is the outstanding timer of one role. gen changes every time the
// role is armed so late fires of a replaced timer can be recognized.
type armed struct {
	timer Timer
	gen   uint64
}

// Host is the single-threaded game host of one player.
type Host struct {
	playerID    int64
	registry    *game.Registry
	rng         game.RNG
	sink        game.ScoreSink
	sinkTimeout time.Duration
	sched       Scheduler
	renderer    Renderer

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active game.Engine
	play   game.Play
	timers map[game.TimerRole]*armed
	gen    uint64
	closed bool
}

// New creates a host with no game selected.
func New(opts Options) *Host {
	if opts.RNG == nil {
		opts.RNG = game.NewRNG(0)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock()
	}
	if opts.Renderer == nil {
		opts.Renderer = RenderFunc(func(context.Context, game.Snapshot, game.Result) {})
	}
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = DefaultSinkTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		playerID:    opts.PlayerID,
		registry:    opts.Registry,
		rng:         opts.RNG,
		sink:        opts.Sink,
		sinkTimeout: opts.SinkTimeout,
		sched:       opts.Scheduler,
		renderer:    opts.Renderer,
		ctx:         ctx,
		cancel:      cancel,
		timers:      make(map[game.TimerRole]*armed),
	}
}

// Select makes kind the active game, discarding any game already active.
func (h *Host) Select(ctx context.Context, kind game.Kind) (game.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return game.Snapshot{}, ErrClosed
	}
	engine, err := h.registry.New(kind, h.rng)
	if err != nil {
		return game.Snapshot{}, err
	}

	h.discardLocked()
	h.active = engine
	h.play = game.Play{PlayerID: h.playerID, Kind: kind, SessionID: uuid.NewString()}

	log.Debug().
		Int64("player_id", h.playerID).
		Str("game", string(kind)).
		Str("session_id", h.play.SessionID).
		Msg("Game selected")

	h.handleLocked(ctx, engine.Start())
	return engine.Snapshot(), nil
}

// Back cancels the active game's timers and discards its state.
func (h *Host) Back() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.discardLocked()
}

// Input delivers one player event to the active game.
func (h *Host) Input(ctx context.Context, in game.Input) (game.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return game.Ignore(), ErrClosed
	}
	if h.active == nil {
		return game.Ignore(), ErrNoActiveGame
	}
	res := h.active.Apply(in)
	h.handleLocked(ctx, res)
	return res, nil
}

// Active returns the kind of the active game.
func (h *Host) Active() (game.Kind, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return "", false
	}
	return h.active.Kind(), true
}

// Snapshot returns the active game's snapshot.
func (h *Host) Snapshot() (game.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return game.Snapshot{}, false
	}
	return h.active.Snapshot(), true
}

// PendingTimers returns the number of armed timer roles.
func (h *Host) PendingTimers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.timers)
}

// Close tears the host down. Outstanding timers are cancelled and later
// calls fail with ErrClosed.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.discardLocked()
	h.closed = true
	h.cancel()
}

func (h *Host) discardLocked() {
	for role, a := range h.timers {
		a.timer.Stop()
		delete(h.timers, role)
	}
	if h.active != nil {
		log.Debug().
			Int64("player_id", h.playerID).
			Str("game", string(h.play.Kind)).
			Str("session_id", h.play.SessionID).
			Msg("Game discarded")
	}
	h.active = nil
	h.play = game.Play{}
}

// handleLocked applies the side effects of a transition: timers first, so a
// cancel in the result wins over a pending fire, then score deltas, then
// rendering.
func (h *Host) handleLocked(ctx context.Context, res game.Result) {
	if !res.Applied() {
		return
	}
	for _, t := range res.Timers {
		if t.Cancel {
			h.cancelLocked(t.Role)
			continue
		}
		h.armLocked(t.Role, t.After, t.Repeat)
	}

	if h.sink != nil && len(res.Deltas) > 0 {
		// The host stays locked while the sink writes
		sctx, cancel := context.WithTimeout(game.WithPlay(ctx, h.play), h.sinkTimeout)
		defer cancel()
		for _, d := range res.Deltas {
			if err := h.sink.ApplyDelta(sctx, d.Amount, d.Reason); err != nil {
				log.Error().Err(err).
					Int64("player_id", h.playerID).
					Str("game", string(h.play.Kind)).
					Str("reason", string(d.Reason)).
					Int("amount", d.Amount).
					Msg("Failed to apply score delta")
			}
		}
	}

	h.renderer.Render(ctx, h.active.Snapshot(), res)
}

func (h *Host) cancelLocked(role game.TimerRole) {
	if a, ok := h.timers[role]; ok {
		a.timer.Stop()
		delete(h.timers, role)
	}
}

func (h *Host) armLocked(role game.TimerRole, after time.Duration, repeat bool) {
	h.cancelLocked(role)
	h.gen++
	gen := h.gen
	a := &armed{gen: gen}
	a.timer = h.sched.AfterFunc(after, func() { h.fire(role, gen, after, repeat) })
	h.timers[role] = a
}

// fire delivers a timer event. Fires of cancelled or replaced timers, and
// fires arriving after Back or Close, are dropped.
func (h *Host) fire(role game.TimerRole, gen uint64, after time.Duration, repeat bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.timers[role]
	if h.closed || h.active == nil || !ok || a.gen != gen {
		return
	}
	if !repeat {
		delete(h.timers, role)
	}

	res := h.active.Apply(game.Fire(role))
	h.handleLocked(h.ctx, res)

	if repeat {
		if a, ok := h.timers[role]; ok && a.gen == gen {
			a.timer = h.sched.AfterFunc(after, func() { h.fire(role, gen, after, repeat) })
		}
	}
}
