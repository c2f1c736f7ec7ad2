// Package puzzle implements the 3x3 sliding number puzzle.
//
// Shuffles are uniform over all permutations and are not checked for
// solvability, so about half of the deals cannot be solved.
package puzzle

import (
	"fmt"
	"strconv"

	"arcade-dashboard/internal/game"
)

const (
	// Size is the board width and height.
	Size = 3
	// CellCount is the number of cells, including the blank.
	CellCount = Size * Size
	// Blank marks the empty cell.
	Blank = 0

	// SolvedPoints is awarded on the move that solves the board.
	SolvedPoints = 30
)

// Board holds tiles 1..8 and one Blank in row-major order.
type Board [CellCount]int

// SolvedBoard is the goal arrangement.
var SolvedBoard = Board{1, 2, 3, 4, 5, 6, 7, 8, Blank}

// IsSolved reports whether tiles 1..8 sit in cells 0..7.
func IsSolved(b Board) bool {
	for i := 0; i < CellCount-1; i++ {
		if b[i] != i+1 {
			return false
		}
	}
	return true
}

// Adjacent reports whether cells a and b share an edge.
func Adjacent(a, b int) bool {
	ra, ca := a/Size, a%Size
	rb, cb := b/Size, b%Size
	dr, dc := ra-rb, ca-cb
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// IndexOf returns the cell holding tile, or -1.
func IndexOf(b Board, tile int) int {
	for i, v := range b {
		if v == tile {
			return i
		}
	}
	return -1
}

// State is an immutable puzzle position.
type State struct {
	Board  Board
	Blank  int
	Solved bool
}

// FromBoard builds a state for an arbitrary arrangement.
func FromBoard(b Board) State {
	return State{Board: b, Blank: IndexOf(b, Blank), Solved: IsSolved(b)}
}

// Shuffle deals a uniformly random arrangement. A deal that happens to be
// solved is marked solved without scoring.
func Shuffle(rng game.RNG) State {
	b := SolvedBoard
	game.Shuffle(rng, CellCount, func(i, j int) {
		b[i], b[j] = b[j], b[i]
	})
	return FromBoard(b)
}

// Move slides the tile at cell into the blank. Only the move that turns an
// unsolved board into a solved one scores.
func (s State) Move(cell int) (State, game.Result) {
	if cell < 0 || cell >= CellCount || !Adjacent(cell, s.Blank) {
		return s, game.Ignore()
	}

	next := s
	next.Board[s.Blank], next.Board[cell] = next.Board[cell], next.Board[s.Blank]
	next.Blank = cell
	next.Solved = IsSolved(next.Board)

	res := game.Apply()
	if next.Solved && !s.Solved {
		res = res.WithDelta(SolvedPoints, game.ReasonPuzzleSolved).WithEvent(game.EventSolved)
	}
	return next, res
}

// Game is the puzzle engine.
type Game struct {
	rng   game.RNG
	state State
}

// New creates a puzzle engine with a shuffled board.
func New(rng game.RNG) *Game {
	return &Game{rng: rng, state: Shuffle(rng)}
}

// Kind returns game.KindPuzzle.
func (g *Game) Kind() game.Kind { return game.KindPuzzle }

// State returns the current position.
func (g *Game) State() State { return g.state }

// Start reshuffles the board.
func (g *Game) Start() game.Result {
	g.state = Shuffle(g.rng)
	return game.Apply()
}

// Apply handles move and reshuffle inputs.
func (g *Game) Apply(in game.Input) game.Result {
	switch in.Action {
	case game.ActionMove:
		var res game.Result
		g.state, res = g.state.Move(in.Index)
		return res
	case game.ActionReset:
		return g.Start()
	default:
		return game.Ignore()
	}
}

// Snapshot renders the tiles; only tiles next to the blank are pressable.
func (g *Game) Snapshot() game.Snapshot {
	s := g.state
	cells := make([]game.Cell, CellCount)
	for i, v := range s.Board {
		label := " "
		if v != Blank {
			label = strconv.Itoa(v)
		}
		cells[i] = game.Cell{Label: label, Index: i, Enabled: v != Blank && Adjacent(i, s.Blank)}
	}

	status := "Slide tiles to arrange numbers 1-8 in order"
	if s.Solved {
		status = fmt.Sprintf("🎉 Puzzle Solved! +%d points", SolvedPoints)
	}
	return game.Snapshot{
		Kind:     game.KindPuzzle,
		Title:    "🧩 Number Puzzle",
		Status:   status,
		Columns:  Size,
		Cells:    cells,
		Controls: []game.Control{{Label: "🔀 Shuffle", Input: game.Reset()}},
	}
}
