// Package game defines the engine contract shared by every dashboard game,
// the input/result types that flow between engines and their host, and the
// registry used to look engines up by kind.
package game

import (
	"context"
	"time"
)

// Kind identifies a game.
type Kind string

// Game kinds available on the dashboard.
const (
	KindMemory    Kind = "memory"
	KindTicTacToe Kind = "tictactoe"
	KindSnake     Kind = "snake"
	KindDice      Kind = "dice"
	KindQuiz      Kind = "quiz"
	KindPuzzle    Kind = "puzzle"
)

// Kinds returns every game kind in dashboard order.
func Kinds() []Kind {
	return []Kind{KindMemory, KindTicTacToe, KindSnake, KindDice, KindQuiz, KindPuzzle}
}

// Action tags the variant carried by an Input.
type Action string

// Input actions. Each engine accepts the subset that applies to it and
// ignores the rest.
const (
	ActionReveal  Action = "reveal"  // memory: flip card Index
	ActionPlace   Action = "place"   // tictactoe: mark cell Index
	ActionHeading Action = "heading" // snake: change Direction
	ActionRoll    Action = "roll"    // dice
	ActionAnswer  Action = "answer"  // quiz: choose option Index
	ActionMove    Action = "move"    // puzzle: slide tile Index
	ActionReset   Action = "reset"   // any: restart / reshuffle
	ActionTimer   Action = "timer"   // synthetic: timer Role fired
)

// Direction is a snake heading.
type Direction string

// Snake headings.
const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Input is a single event delivered to an engine.
type Input struct {
	Action    Action
	Index     int
	Direction Direction
	Role      TimerRole
}

// Reveal builds a memory reveal input.
func Reveal(id int) Input { return Input{Action: ActionReveal, Index: id} }

// Place builds a tic-tac-toe input.
func Place(cell int) Input { return Input{Action: ActionPlace, Index: cell} }

// Heading builds a snake heading input.
func Heading(d Direction) Input { return Input{Action: ActionHeading, Direction: d} }

// Roll builds a dice roll input.
func Roll() Input { return Input{Action: ActionRoll} }

// Answer builds a quiz answer input.
func Answer(option int) Input { return Input{Action: ActionAnswer, Index: option} }

// Move builds a puzzle move input.
func Move(cell int) Input { return Input{Action: ActionMove, Index: cell} }

// Reset builds a restart input.
func Reset() Input { return Input{Action: ActionReset} }

// Fire builds the synthetic input delivered when a timer role fires.
func Fire(role TimerRole) Input { return Input{Action: ActionTimer, Role: role} }

// Outcome tells whether an input changed state.
type Outcome int

const (
	// Ignored means the input was rejected and the state is unchanged.
	Ignored Outcome = iota
	// Applied means the state transitioned.
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "ignored"
}

// Reason explains a score delta.
type Reason string

// Score delta reasons.
const (
	ReasonPairMatched   Reason = "pair_matched"
	ReasonMemoryWon     Reason = "memory_won"
	ReasonTicTacToeWin  Reason = "tictactoe_win"
	ReasonTicTacToeDraw Reason = "tictactoe_draw"
	ReasonFoodEaten     Reason = "food_eaten"
	ReasonRolledSix     Reason = "rolled_six"
	ReasonQuizCompleted Reason = "quiz_completed"
	ReasonPuzzleSolved  Reason = "puzzle_solved"
)

// ScoreDelta is a point adjustment emitted by an engine.
type ScoreDelta struct {
	Amount int
	Reason Reason
}

// Event is a notable, non-score occurrence the renderer may announce.
type Event string

// Engine events.
const (
	EventWon      Event = "won"
	EventDraw     Event = "draw"
	EventGameOver Event = "game_over"
	EventSolved   Event = "solved"
	EventComplete Event = "completed"
	EventRolled   Event = "rolled"
)

// TimerRole names a logical timer owned by an engine. A host keeps at most
// one outstanding timer per role.
type TimerRole string

// Timer roles.
const (
	TimerMemoryHide TimerRole = "memory_hide"
	TimerMemoryWon  TimerRole = "memory_won"
	TimerDiceRoll   TimerRole = "dice_roll"
	TimerSnakeTick  TimerRole = "snake_tick"
)

// TimerRequest asks the host to arm or cancel a timer.
type TimerRequest struct {
	Role   TimerRole
	After  time.Duration
	Repeat bool
	Cancel bool
}

// Arm requests a one-shot timer.
func Arm(role TimerRole, after time.Duration) TimerRequest {
	return TimerRequest{Role: role, After: after}
}

// Every requests a repeating timer.
func Every(role TimerRole, interval time.Duration) TimerRequest {
	return TimerRequest{Role: role, After: interval, Repeat: true}
}

// Cancel requests cancellation of a timer role.
func Cancel(role TimerRole) TimerRequest {
	return TimerRequest{Role: role, Cancel: true}
}

// Result is what an engine returns from a transition.
type Result struct {
	Outcome Outcome
	Deltas  []ScoreDelta
	Timers  []TimerRequest
	Events  []Event
}

// Ignore is the result of a rejected input.
func Ignore() Result { return Result{Outcome: Ignored} }

// Apply is the result of an accepted input with no side effects.
func Apply() Result { return Result{Outcome: Applied} }

// Applied reports whether the transition happened.
func (r Result) Applied() bool { return r.Outcome == Applied }

// Points sums the score deltas.
func (r Result) Points() int {
	total := 0
	for _, d := range r.Deltas {
		total += d.Amount
	}
	return total
}

// WithDelta appends a score delta.
func (r Result) WithDelta(amount int, reason Reason) Result {
	r.Deltas = append(r.Deltas, ScoreDelta{Amount: amount, Reason: reason})
	return r
}

// WithTimer appends a timer request.
func (r Result) WithTimer(t TimerRequest) Result {
	r.Timers = append(r.Timers, t)
	return r
}

// WithEvent appends an event.
func (r Result) WithEvent(e Event) Result {
	r.Events = append(r.Events, e)
	return r
}

// Cell is one renderable board cell. Index is the value fed back as
// Input.Index when the cell is pressed.
type Cell struct {
	Label   string
	Index   int
	Enabled bool
}

// Control is a renderable button outside the board.
type Control struct {
	Label string
	Input Input
}

// Snapshot is the externally visible state of an engine. It carries no
// behavior.
type Snapshot struct {
	Kind     Kind
	Title    string
	Status   string
	Columns  int
	Cells    []Cell
	Controls []Control
	Score    int
	Terminal bool
}

// Engine is the deterministic state machine of one game.
type Engine interface {
	// Kind returns the game kind.
	Kind() Kind

	// Start (re)initializes the state. It is called when the game is
	// selected and may request timers.
	Start() Result

	// Apply delivers one input event and returns the transition result.
	Apply(in Input) Result

	// Snapshot returns the current state for rendering.
	Snapshot() Snapshot
}

// ScoreSink accumulates score deltas emitted by engines.
type ScoreSink interface {
	ApplyDelta(ctx context.Context, amount int, reason Reason) error
}
