// Package tictactoe implements the two-player-at-one-keyboard tic-tac-toe game.
package tictactoe

import (
	"arcade-dashboard/internal/game"
)

const (
	// WinPoints is awarded when either mark completes a line.
	WinPoints = 20
	// DrawPoints is awarded when the board fills without a winner.
	DrawPoints = 5
)

// Mark is the content of a cell.
type Mark string

// Cell marks.
const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Board is the 3x3 grid in row-major order.
type Board [9]Mark

// lines are the 3 rows, 3 columns and 2 diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the mark filling any line, or Empty.
func Winner(b Board) Mark {
	for _, l := range lines {
		a := b[l[0]]
		if a != Empty && a == b[l[1]] && a == b[l[2]] {
			return a
		}
	}
	return Empty
}

// Full reports whether no cell is empty.
func Full(b Board) bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// State is an immutable tic-tac-toe position.
type State struct {
	Board Board
	XNext bool
}

// NewState returns an empty board with X to move.
func NewState() State {
	return State{XNext: true}
}

// Next returns the mark that moves next.
func (s State) Next() Mark {
	if s.XNext {
		return X
	}
	return O
}

// Winner returns the winning mark of the position, if any.
func (s State) Winner() Mark { return Winner(s.Board) }

// Draw reports a full board without a winner.
func (s State) Draw() bool { return s.Winner() == Empty && Full(s.Board) }

// Terminal reports whether further placements are ignored.
func (s State) Terminal() bool { return s.Winner() != Empty || Full(s.Board) }

// Place marks cell for the player to move. The terminal score delta is
// emitted on the move that reaches the terminal position and never again.
func (s State) Place(cell int) (State, game.Result) {
	if cell < 0 || cell >= len(s.Board) || s.Board[cell] != Empty || s.Terminal() {
		return s, game.Ignore()
	}

	next := s
	next.Board[cell] = s.Next()
	next.XNext = !s.XNext

	res := game.Apply()
	switch {
	case next.Winner() != Empty:
		res = res.WithDelta(WinPoints, game.ReasonTicTacToeWin).WithEvent(game.EventWon)
	case Full(next.Board):
		res = res.WithDelta(DrawPoints, game.ReasonTicTacToeDraw).WithEvent(game.EventDraw)
	}
	return next, res
}

// Game is the tic-tac-toe engine.
type Game struct {
	state State
}

// New creates a tic-tac-toe engine with an empty board.
func New() *Game {
	return &Game{state: NewState()}
}

// Kind returns game.KindTicTacToe.
func (g *Game) Kind() game.Kind { return game.KindTicTacToe }

// State returns the current position.
func (g *Game) State() State { return g.state }

// Start clears the board; X moves first.
func (g *Game) Start() game.Result {
	g.state = NewState()
	return game.Apply()
}

// Apply handles place and reset inputs.
func (g *Game) Apply(in game.Input) game.Result {
	switch in.Action {
	case game.ActionPlace:
		var res game.Result
		g.state, res = g.state.Place(in.Index)
		return res
	case game.ActionReset:
		return g.Start()
	default:
		return game.Ignore()
	}
}

// Snapshot renders the board.
func (g *Game) Snapshot() game.Snapshot {
	s := g.state
	cells := make([]game.Cell, len(s.Board))
	for i, m := range s.Board {
		label := string(m)
		if m == Empty {
			label = "·"
		}
		cells[i] = game.Cell{Label: label, Index: i, Enabled: m == Empty && !s.Terminal()}
	}

	var status string
	switch {
	case s.Winner() != Empty:
		status = "Winner: " + string(s.Winner())
	case s.Draw():
		status = "It's a draw!"
	default:
		status = "Next player: " + string(s.Next())
	}

	return game.Snapshot{
		Kind:     game.KindTicTacToe,
		Title:    "⭕ Tic Tac Toe",
		Status:   status,
		Columns:  3,
		Cells:    cells,
		Controls: []game.Control{{Label: "🔄 New game", Input: game.Reset()}},
		Terminal: s.Terminal(),
	}
}
