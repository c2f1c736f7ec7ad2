// Package dice implements the dice roll game: a short animated roll of one
// die whose final face is added to a running total.
package dice

import (
	"fmt"
	"time"

	"arcade-dashboard/internal/game"
)

const (
	// DefaultInterval is the cadence of the roll animation.
	DefaultInterval = 100 * time.Millisecond

	// DefaultIntermediateRolls is how many throwaway faces are shown before
	// the final face.
	DefaultIntermediateRolls = 10

	// SixPoints is awarded when the final face is a six.
	SixPoints = 10
)

// Config holds the roll animation settings.
type Config struct {
	Interval          time.Duration
	IntermediateRolls int
}

func (c *Config) withDefaults() Config {
	out := Config{Interval: DefaultInterval, IntermediateRolls: DefaultIntermediateRolls}
	if c != nil {
		if c.Interval > 0 {
			out.Interval = c.Interval
		}
		if c.IntermediateRolls > 0 {
			out.IntermediateRolls = c.IntermediateRolls
		}
	}
	return out
}

// Bonus returns the score delta earned by a final face.
//   - face = 6: SixPoints
//   - otherwise: 0
func Bonus(face int) int {
	if face == 6 {
		return SixPoints
	}
	return 0
}

// Throw returns a uniform face in [1,6].
func Throw(rng game.RNG) int {
	return rng.Intn(6) + 1
}

// State is an immutable die.
type State struct {
	Face    int
	Rolling bool
	Total   int
	Ticks   int
	Rolls   int
}

// NewState returns a die showing 1 with nothing rolled.
func NewState() State {
	return State{Face: 1}
}

// Roll starts the animation. A roll in progress must finish first.
func (s State) Roll(cfg Config) (State, game.Result) {
	if s.Rolling {
		return s, game.Ignore()
	}
	next := s
	next.Rolling = true
	next.Ticks = 0
	return next, game.Apply().WithTimer(game.Every(game.TimerDiceRoll, cfg.Interval))
}

// Tick shows the next animation face; the tick after the last intermediate
// face settles the roll.
func (s State) Tick(rng game.RNG, cfg Config) (State, game.Result) {
	if !s.Rolling {
		return s, game.Ignore()
	}

	next := s
	next.Ticks++
	next.Face = Throw(rng)
	if next.Ticks <= cfg.IntermediateRolls {
		return next, game.Apply()
	}

	next.Rolling = false
	next.Ticks = 0
	next.Total += next.Face
	next.Rolls++
	res := game.Apply().
		WithTimer(game.Cancel(game.TimerDiceRoll)).
		WithEvent(game.EventRolled)
	if bonus := Bonus(next.Face); bonus > 0 {
		res = res.WithDelta(bonus, game.ReasonRolledSix)
	}
	return next, res
}

// Game is the dice engine.
type Game struct {
	cfg   Config
	rng   game.RNG
	state State
}

// New creates a dice engine. A nil cfg uses ten 100ms animation frames.
func New(cfg *Config, rng game.RNG) *Game {
	return &Game{cfg: cfg.withDefaults(), rng: rng, state: NewState()}
}

// Kind returns game.KindDice.
func (g *Game) Kind() game.Kind { return game.KindDice }

// State returns the current die.
func (g *Game) State() State { return g.state }

// Start resets the die and total, cancelling an unfinished roll.
func (g *Game) Start() game.Result {
	g.state = NewState()
	return game.Apply().WithTimer(game.Cancel(game.TimerDiceRoll))
}

// Apply handles roll, reset and animation tick inputs.
func (g *Game) Apply(in game.Input) game.Result {
	var res game.Result
	switch in.Action {
	case game.ActionRoll:
		g.state, res = g.state.Roll(g.cfg)
	case game.ActionReset:
		res = g.Start()
	case game.ActionTimer:
		if in.Role != game.TimerDiceRoll {
			return game.Ignore()
		}
		g.state, res = g.state.Tick(g.rng, g.cfg)
	default:
		res = game.Ignore()
	}
	return res
}

var faces = [7]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// Snapshot renders the die face and total.
func (g *Game) Snapshot() game.Snapshot {
	s := g.state
	status := fmt.Sprintf("Total: %d · Roll a 6 to earn %d points!", s.Total, SixPoints)
	label := "🎲 Roll Dice"
	if s.Rolling {
		status = "Rolling..."
		label = "⏳ Rolling..."
	}
	return game.Snapshot{
		Kind:     game.KindDice,
		Title:    "🎲 Dice Roll",
		Status:   status,
		Columns:  1,
		Cells:    []game.Cell{{Label: fmt.Sprintf("%s %d", faces[s.Face], s.Face)}},
		Controls: []game.Control{{Label: label, Input: game.Roll()}},
		Score:    s.Total,
	}
}
