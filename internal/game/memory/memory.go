// Package memory implements the memory card matching game: six symbol pairs
// shuffled face down, revealed two at a time.
package memory

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"arcade-dashboard/internal/game"
)

const (
	// CardCount is the number of cards on the table.
	CardCount = 12

	// MatchPoints is awarded for every matched pair.
	MatchPoints = 10
	// WinPoints is awarded once, after WinDelay, when every pair is matched.
	WinPoints = 50

	// DefaultHideDelay is how long a mismatched pair stays visible.
	DefaultHideDelay = time.Second
	// DefaultWinDelay is how long the solved table is shown before the bonus.
	DefaultWinDelay = 500 * time.Millisecond
)

// Symbols are the six card faces.
var Symbols = [CardCount / 2]string{"🎮", "⭐", "🎯", "🏆", "🎨", "🚀"}

// Config holds memory game timing.
type Config struct {
	HideDelay time.Duration
	WinDelay  time.Duration
}

func (c *Config) withDefaults() Config {
	out := Config{HideDelay: DefaultHideDelay, WinDelay: DefaultWinDelay}
	if c != nil {
		if c.HideDelay > 0 {
			out.HideDelay = c.HideDelay
		}
		if c.WinDelay > 0 {
			out.WinDelay = c.WinDelay
		}
	}
	return out
}

// Card is one card. ID equals its position on the table.
type Card struct {
	ID     int
	Symbol string
}

// State is an immutable memory table.
type State struct {
	Cards   [CardCount]Card
	Flipped []int
	Solved  []int
	Locked  bool
	// WinPending is set between the last match and the delayed bonus.
	WinPending bool
	Won        bool
}

// NewState deals the six pairs in an order drawn from rng.
func NewState(rng game.RNG) State {
	var symbols [CardCount]string
	for i, s := range Symbols {
		symbols[2*i] = s
		symbols[2*i+1] = s
	}
	game.Shuffle(rng, CardCount, func(i, j int) {
		symbols[i], symbols[j] = symbols[j], symbols[i]
	})

	var s State
	for i, sym := range symbols {
		s.Cards[i] = Card{ID: i, Symbol: sym}
	}
	return s
}

// IsFlipped reports whether id is currently face up and unsolved.
func (s State) IsFlipped(id int) bool { return lo.Contains(s.Flipped, id) }

// IsSolved reports whether id belongs to a matched pair.
func (s State) IsSolved(id int) bool { return lo.Contains(s.Solved, id) }

// Pairs returns the number of matched pairs.
func (s State) Pairs() int { return len(s.Solved) / 2 }

// Complete reports whether every card is matched.
func (s State) Complete() bool { return len(s.Solved) == CardCount }

// Reveal turns card id face up. When it is the second card of a turn the
// two symbols are compared: a match scores immediately, a mismatch locks the
// table until the hide timer fires.
func (s State) Reveal(id int, cfg Config) (State, game.Result) {
	if s.Locked || id < 0 || id >= CardCount || s.IsFlipped(id) || s.IsSolved(id) {
		return s, game.Ignore()
	}

	next := s
	next.Flipped = append(append([]int(nil), s.Flipped...), id)
	res := game.Apply()
	if len(next.Flipped) < 2 {
		return next, res
	}

	first, second := next.Flipped[0], next.Flipped[1]
	if next.Cards[first].Symbol != next.Cards[second].Symbol {
		next.Locked = true
		return next, res.WithTimer(game.Arm(game.TimerMemoryHide, cfg.HideDelay))
	}

	next.Solved = append(append([]int(nil), s.Solved...), first, second)
	next.Flipped = nil
	res = res.WithDelta(MatchPoints, game.ReasonPairMatched)
	if next.Complete() {
		next.Locked = true
		next.WinPending = true
		res = res.WithTimer(game.Arm(game.TimerMemoryWon, cfg.WinDelay))
	}
	return next, res
}

// Hide turns a mismatched pair back over and unlocks the table.
func (s State) Hide() (State, game.Result) {
	if !s.Locked || s.Complete() {
		return s, game.Ignore()
	}
	next := s
	next.Flipped = nil
	next.Locked = false
	return next, game.Apply()
}

// Win announces the win and pays the completion bonus after the win delay.
// It only applies once per deal.
func (s State) Win() (State, game.Result) {
	if !s.WinPending {
		return s, game.Ignore()
	}
	next := s
	next.WinPending = false
	next.Won = true
	return next, game.Apply().
		WithDelta(WinPoints, game.ReasonMemoryWon).
		WithEvent(game.EventWon)
}

// Game is the memory engine.
type Game struct {
	cfg   Config
	rng   game.RNG
	state State
}

// New creates a memory engine. A nil cfg uses the default delays.
func New(cfg *Config, rng game.RNG) *Game {
	g := &Game{cfg: cfg.withDefaults(), rng: rng}
	g.state = NewState(rng)
	return g
}

// Kind returns game.KindMemory.
func (g *Game) Kind() game.Kind { return game.KindMemory }

// State returns the current table.
func (g *Game) State() State { return g.state }

// Start deals a new table and cancels any pending reveal timers.
func (g *Game) Start() game.Result {
	g.state = NewState(g.rng)
	return game.Apply().
		WithTimer(game.Cancel(game.TimerMemoryHide)).
		WithTimer(game.Cancel(game.TimerMemoryWon))
}

// Apply handles reveal, reset and timer inputs.
func (g *Game) Apply(in game.Input) game.Result {
	var res game.Result
	switch in.Action {
	case game.ActionReveal:
		g.state, res = g.state.Reveal(in.Index, g.cfg)
	case game.ActionReset:
		res = g.Start()
	case game.ActionTimer:
		switch in.Role {
		case game.TimerMemoryHide:
			g.state, res = g.state.Hide()
		case game.TimerMemoryWon:
			g.state, res = g.state.Win()
		default:
			res = game.Ignore()
		}
	default:
		res = game.Ignore()
	}
	return res
}

// Snapshot renders face-up symbols and face-down backs.
func (g *Game) Snapshot() game.Snapshot {
	s := g.state
	cells := make([]game.Cell, CardCount)
	for i, c := range s.Cards {
		up := s.IsFlipped(i) || s.IsSolved(i)
		label := "❔"
		if up {
			label = c.Symbol
		}
		cells[i] = game.Cell{Label: label, Index: i, Enabled: !up && !s.Locked}
	}

	status := fmt.Sprintf("Pairs: %d/%d", s.Pairs(), CardCount/2)
	if s.Won {
		status = fmt.Sprintf("🎉 You won! +%d points", WinPoints)
	}

	return game.Snapshot{
		Kind:     game.KindMemory,
		Title:    "🎴 Memory Cards",
		Status:   status,
		Columns:  4,
		Cells:    cells,
		Controls: []game.Control{{Label: "🔄 New game", Input: game.Reset()}},
		Score:    s.Pairs() * MatchPoints,
		Terminal: s.Won,
	}
}
