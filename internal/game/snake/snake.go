// Package snake implements the classic snake game on a square grid. The
// engine is a pure step function; the host drives it with a repeating tick.
package snake

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"arcade-dashboard/internal/game"
)

const (
	// DefaultGridSize is the width and height of the board.
	DefaultGridSize = 15
	// DefaultInterval is the movement cadence.
	DefaultInterval = 200 * time.Millisecond
	// FoodPoints is awarded for every food eaten.
	FoodPoints = 10
)

var (
	// StartHead is where a new snake spawns.
	StartHead = Point{X: 8, Y: 8}
	// StartFood is the first food position.
	StartFood = Point{X: 5, Y: 5}
)

// Config holds snake board size and speed.
type Config struct {
	GridSize int
	Interval time.Duration
}

func (c *Config) withDefaults() Config {
	out := Config{GridSize: DefaultGridSize, Interval: DefaultInterval}
	if c != nil {
		if c.GridSize > StartHead.X && c.GridSize > StartHead.Y {
			out.GridSize = c.GridSize
		}
		if c.Interval > 0 {
			out.Interval = c.Interval
		}
	}
	return out
}

// Point is a grid cell; X grows right and Y grows down.
type Point struct {
	X int
	Y int
}

// Step returns the neighbor of p along d.
func (p Point) Step(d game.Direction) Point {
	switch d {
	case game.Up:
		p.Y--
	case game.Down:
		p.Y++
	case game.Left:
		p.X--
	case game.Right:
		p.X++
	}
	return p
}

// In reports whether p lies on a size x size board.
func (p Point) In(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// State is an immutable snake board.
type State struct {
	Segments []Point // head first
	Food     Point
	Heading  game.Direction
	Alive    bool
	Score    int
	Eaten    int
}

// NewState returns a one-segment snake heading right.
func NewState() State {
	return State{
		Segments: []Point{StartHead},
		Food:     StartFood,
		Heading:  game.Right,
		Alive:    true,
	}
}

// Head returns the first segment.
func (s State) Head() Point { return s.Segments[0] }

// Occupies reports whether any segment covers p.
func (s State) Occupies(p Point) bool { return lo.Contains(s.Segments, p) }

// SetHeading records the heading used by the next tick. Reversing onto the
// body is allowed; the collision happens on that tick.
func (s State) SetHeading(d game.Direction) (State, game.Result) {
	if !s.Alive || !d.Valid() {
		return s, game.Ignore()
	}
	next := s
	next.Heading = d
	return next, game.Apply()
}

// Tick advances the snake one cell.
func (s State) Tick(rng game.RNG, size int) (State, game.Result) {
	if !s.Alive {
		return s, game.Ignore()
	}

	head := s.Head().Step(s.Heading)
	if !head.In(size) || s.Occupies(head) {
		next := s
		next.Alive = false
		return next, game.Apply().
			WithEvent(game.EventGameOver).
			WithTimer(game.Cancel(game.TimerSnakeTick))
	}

	next := s
	next.Segments = make([]Point, 0, len(s.Segments)+1)
	next.Segments = append(next.Segments, head)
	next.Segments = append(next.Segments, s.Segments...)

	if head != s.Food {
		next.Segments = next.Segments[:len(next.Segments)-1]
		return next, game.Apply()
	}

	next.Score += FoodPoints
	next.Eaten++
	res := game.Apply().WithDelta(FoodPoints, game.ReasonFoodEaten)

	free := FreeCells(next.Segments, size)
	if len(free) == 0 {
		next.Alive = false
		return next, res.WithEvent(game.EventWon).WithTimer(game.Cancel(game.TimerSnakeTick))
	}
	next.Food = free[rng.Intn(len(free))]
	return next, res
}

// FreeCells lists every cell not covered by segments, row by row.
func FreeCells(segments []Point, size int) []Point {
	all := make([]Point, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			all = append(all, Point{X: x, Y: y})
		}
	}
	taken := lo.SliceToMap(segments, func(p Point) (Point, struct{}) { return p, struct{}{} })
	return lo.Filter(all, func(p Point, _ int) bool {
		_, ok := taken[p]
		return !ok
	})
}

// Game is the snake engine.
type Game struct {
	cfg   Config
	rng   game.RNG
	state State
}

// New creates a snake engine. A nil cfg uses a 15x15 board at 200ms.
func New(cfg *Config, rng game.RNG) *Game {
	return &Game{cfg: cfg.withDefaults(), rng: rng, state: NewState()}
}

// Kind returns game.KindSnake.
func (g *Game) Kind() game.Kind { return game.KindSnake }

// State returns the current board.
func (g *Game) State() State { return g.state }

// GridSize returns the board size in use.
func (g *Game) GridSize() int { return g.cfg.GridSize }

// Start resets the snake and arms the movement tick.
func (g *Game) Start() game.Result {
	g.state = NewState()
	return game.Apply().WithTimer(game.Every(game.TimerSnakeTick, g.cfg.Interval))
}

// Apply handles heading, reset and tick inputs.
func (g *Game) Apply(in game.Input) game.Result {
	var res game.Result
	switch in.Action {
	case game.ActionHeading:
		g.state, res = g.state.SetHeading(in.Direction)
	case game.ActionReset:
		res = g.Start()
	case game.ActionTimer:
		if in.Role != game.TimerSnakeTick {
			return game.Ignore()
		}
		g.state, res = g.state.Tick(g.rng, g.cfg.GridSize)
	default:
		res = game.Ignore()
	}
	return res
}

// Snapshot renders the board row by row. Cells are not pressable; the
// heading is changed through the arrow controls.
func (g *Game) Snapshot() game.Snapshot {
	s := g.state
	size := g.cfg.GridSize
	cells := make([]game.Cell, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := Point{X: x, Y: y}
			label := "⬜"
			switch {
			case p == s.Head():
				label = "🟢"
			case s.Occupies(p):
				label = "🟩"
			case p == s.Food:
				label = "🍎"
			}
			cells = append(cells, game.Cell{Label: label, Index: y*size + x})
		}
	}

	status := fmt.Sprintf("Score: %d", s.Score)
	controls := []game.Control{
		{Label: "⬆️", Input: game.Heading(game.Up)},
		{Label: "⬅️", Input: game.Heading(game.Left)},
		{Label: "➡️", Input: game.Heading(game.Right)},
		{Label: "⬇️", Input: game.Heading(game.Down)},
	}
	if !s.Alive {
		status = fmt.Sprintf("Game Over! Final Score: %d", s.Score)
		controls = []game.Control{{Label: "🔄 Play again", Input: game.Reset()}}
	}

	return game.Snapshot{
		Kind:     game.KindSnake,
		Title:    "🐍 Snake Game",
		Status:   status,
		Columns:  size,
		Cells:    cells,
		Controls: controls,
		Score:    s.Score,
		Terminal: !s.Alive,
	}
}
