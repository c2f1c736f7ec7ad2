// Package arcade registers the six dashboard games with a game.Registry.
package arcade

import (
	"fmt"

	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/game/dice"
	"arcade-dashboard/internal/game/memory"
	"arcade-dashboard/internal/game/puzzle"
	"arcade-dashboard/internal/game/quiz"
	"arcade-dashboard/internal/game/snake"
	"arcade-dashboard/internal/game/tictactoe"
)

// Config carries per-game settings. Nil members use package defaults.
type Config struct {
	Memory    *memory.Config
	Snake     *snake.Config
	Dice      *dice.Config
	Questions []quiz.Question
}

// Catalogue is the dashboard game list, in display order.
var Catalogue = []game.Info{
	{Kind: game.KindMemory, Name: "Memory Cards", Icon: "🎴", Description: "Test your memory with matching cards"},
	{Kind: game.KindTicTacToe, Name: "Tic Tac Toe", Icon: "⭕", Description: "Classic X and O game"},
	{Kind: game.KindSnake, Name: "Snake Game", Icon: "🐍", Description: "Classic snake adventure"},
	{Kind: game.KindDice, Name: "Dice Roll", Icon: "🎲", Description: "Roll the dice and test your luck"},
	{Kind: game.KindQuiz, Name: "Quick Quiz", Icon: "❓", Description: "Challenge your knowledge"},
	{Kind: game.KindPuzzle, Name: "Number Puzzle", Icon: "🧩", Description: "Slide numbers to solve the puzzle"},
}

// Factories returns an engine factory per kind built from cfg.
func Factories(cfg Config) map[game.Kind]game.Factory {
	return map[game.Kind]game.Factory{
		game.KindMemory:    func(rng game.RNG) game.Engine { return memory.New(cfg.Memory, rng) },
		game.KindTicTacToe: func(game.RNG) game.Engine { return tictactoe.New() },
		game.KindSnake:     func(rng game.RNG) game.Engine { return snake.New(cfg.Snake, rng) },
		game.KindDice:      func(rng game.RNG) game.Engine { return dice.New(cfg.Dice, rng) },
		game.KindQuiz:      func(game.RNG) game.Engine { return quiz.New(cfg.Questions) },
		game.KindPuzzle:    func(rng game.RNG) game.Engine { return puzzle.New(rng) },
	}
}

// Register adds every catalogue game to r.
func Register(r *game.Registry, cfg Config) error {
	factories := Factories(cfg)
	for _, info := range Catalogue {
		if err := r.Register(info, factories[info.Kind]); err != nil {
			return fmt.Errorf("failed to register %s: %w", info.Kind, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every catalogue game.
func NewRegistry(cfg Config) (*game.Registry, error) {
	r := game.NewRegistry()
	if err := Register(r, cfg); err != nil {
		return nil, err
	}
	return r, nil
}
