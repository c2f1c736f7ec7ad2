// Package quiz implements the quick quiz: a fixed list of multiple-choice
// questions answered in order.
package quiz

import (
	"fmt"

	"github.com/samber/lo"

	"arcade-dashboard/internal/game"
)

// CorrectPoints is added to the session score for each correct answer.
const CorrectPoints = 10

// OptionCount is the number of choices per question.
const OptionCount = 4

// Question is one quiz question.
type Question struct {
	Text    string
	Options [OptionCount]string
	Correct int
}

// DefaultQuestions is the dashboard question list.
var DefaultQuestions = []Question{
	{
		Text:    "What is React?",
		Options: [OptionCount]string{"A JavaScript library", "A programming language", "A database", "An operating system"},
		Correct: 0,
	},
	{
		Text:    "Which company created React?",
		Options: [OptionCount]string{"Google", "Facebook", "Microsoft", "Apple"},
		Correct: 1,
	},
	{
		Text:    "What is JSX?",
		Options: [OptionCount]string{"A database", "A syntax extension for JavaScript", "A CSS framework", "A testing tool"},
		Correct: 1,
	},
}

// State is an immutable quiz session. Questions is shared configuration and
// is never modified.
type State struct {
	Questions []Question
	Index     int
	Score     int
	Completed bool
}

// NewState starts a session at the first question.
func NewState(questions []Question) State {
	return State{Questions: questions}
}

// MaxScore is the score of an all-correct session.
func (s State) MaxScore() int { return len(s.Questions) * CorrectPoints }

// Current returns the question being asked.
func (s State) Current() (Question, bool) {
	if s.Completed || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Answer scores option against the current question and advances. The
// session total, including this answer, is emitted once when the last
// question is answered, even when it is zero.
func (s State) Answer(option int) (State, game.Result) {
	q, ok := s.Current()
	if !ok || option < 0 || option >= OptionCount {
		return s, game.Ignore()
	}

	next := s
	if option == q.Correct {
		next.Score += CorrectPoints
	}

	if next.Index+1 < len(next.Questions) {
		next.Index++
		return next, game.Apply()
	}

	next.Index = len(next.Questions)
	next.Completed = true
	return next, game.Apply().
		WithDelta(next.Score, game.ReasonQuizCompleted).
		WithEvent(game.EventComplete)
}

// Game is the quiz engine.
type Game struct {
	questions []Question
	state     State
}

// New creates a quiz engine. An empty list uses DefaultQuestions.
func New(questions []Question) *Game {
	if len(questions) == 0 {
		questions = DefaultQuestions
	}
	return &Game{questions: questions, state: NewState(questions)}
}

// Kind returns game.KindQuiz.
func (g *Game) Kind() game.Kind { return game.KindQuiz }

// State returns the current session.
func (g *Game) State() State { return g.state }

// Start restarts the session.
func (g *Game) Start() game.Result {
	g.state = NewState(g.questions)
	return game.Apply()
}

// Apply handles answer and restart inputs.
func (g *Game) Apply(in game.Input) game.Result {
	switch in.Action {
	case game.ActionAnswer:
		var res game.Result
		g.state, res = g.state.Answer(in.Index)
		return res
	case game.ActionReset:
		return g.Start()
	default:
		return game.Ignore()
	}
}

// Snapshot renders the current question with one option per row.
func (g *Game) Snapshot() game.Snapshot {
	s := g.state
	snap := game.Snapshot{
		Kind:    game.KindQuiz,
		Title:   "❓ Quick Quiz",
		Columns: 1,
		Score:   s.Score,
	}

	q, ok := s.Current()
	if !ok {
		snap.Status = fmt.Sprintf("Quiz Completed! 🎉 Your score: %d/%d", s.Score, s.MaxScore())
		snap.Controls = []game.Control{{Label: "🔄 Play again", Input: game.Reset()}}
		snap.Terminal = true
		return snap
	}

	snap.Status = fmt.Sprintf("Question %d of %d\n%s", s.Index+1, len(s.Questions), q.Text)
	snap.Cells = lo.Map(q.Options[:], func(opt string, i int) game.Cell {
		return game.Cell{Label: opt, Index: i, Enabled: true}
	})
	return snap
}
