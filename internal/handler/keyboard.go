package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/game"
)

// CallbackPrefix is the prefix for all dashboard callback data.
const CallbackPrefix = "arc_"

// Navigation callback actions. Game inputs are encoded with their
// game.Action name.
const (
	ActionSelect = "game"
	ActionBack   = "back"
	ActionMenu   = "menu"
	ActionNoop   = "noop"
)

// ErrBadCallback is returned for callback data that does not decode to an
// input.
var ErrBadCallback = errors.New("malformed callback data")

// EncodeCallback encodes an action and parameter into callback data.
func EncodeCallback(action string, param string) string {
	if param != "" {
		return fmt.Sprintf("%s%s_%s", CallbackPrefix, action, param)
	}
	return CallbackPrefix + action
}

// DecodeCallback decodes callback data into action and parameter.
// Telebot may prefix data with \f; it is stripped.
func DecodeCallback(data string) (action string, param string) {
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", ""
	}

	content := strings.TrimPrefix(data, CallbackPrefix)
	parts := strings.SplitN(content, "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		param = parts[1]
	}
	return action, param
}

// EncodeInput encodes a game input as callback data.
func EncodeInput(in game.Input) string {
	switch in.Action {
	case game.ActionReveal, game.ActionPlace, game.ActionAnswer, game.ActionMove:
		return EncodeCallback(string(in.Action), strconv.Itoa(in.Index))
	case game.ActionHeading:
		return EncodeCallback(string(in.Action), string(in.Direction))
	default:
		return EncodeCallback(string(in.Action), "")
	}
}

// DecodeInput turns a decoded callback back into a game input. Timer inputs
// are never accepted from the outside.
func DecodeInput(action, param string) (game.Input, error) {
	index := func() (int, error) {
		i, err := strconv.Atoi(param)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadCallback, param)
		}
		return i, nil
	}

	switch game.Action(action) {
	case game.ActionReveal:
		i, err := index()
		return game.Reveal(i), err
	case game.ActionPlace:
		i, err := index()
		return game.Place(i), err
	case game.ActionAnswer:
		i, err := index()
		return game.Answer(i), err
	case game.ActionMove:
		i, err := index()
		return game.Move(i), err
	case game.ActionHeading:
		d := game.Direction(param)
		if !d.Valid() {
			return game.Input{}, fmt.Errorf("%w: heading %q", ErrBadCallback, param)
		}
		return game.Heading(d), nil
	case game.ActionRoll:
		return game.Roll(), nil
	case game.ActionReset:
		return game.Reset(), nil
	}
	return game.Input{}, fmt.Errorf("%w: action %q", ErrBadCallback, action)
}

// CellInput returns the input a board cell press sends for kind. Games whose
// board is display-only report false.
func CellInput(kind game.Kind, index int) (game.Input, bool) {
	switch kind {
	case game.KindMemory:
		return game.Reveal(index), true
	case game.KindTicTacToe:
		return game.Place(index), true
	case game.KindQuiz:
		return game.Answer(index), true
	case game.KindPuzzle:
		return game.Move(index), true
	}
	return game.Input{}, false
}

// pressable reports whether the snapshot's cells are rendered as buttons.
func pressable(kind game.Kind) bool {
	_, ok := CellInput(kind, 0)
	return ok
}

// BuildCatalogue builds the game selection keyboard, two games per row.
func BuildCatalogue(games []game.Info) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	buttons := lo.Map(games, func(info game.Info, _ int) tele.InlineButton {
		return tele.InlineButton{
			Text: fmt.Sprintf("%s %s", info.Icon, info.Name),
			Data: EncodeCallback(ActionSelect, string(info.Kind)),
		}
	})
	markup.InlineKeyboard = lo.Chunk(buttons, 2)
	return markup
}

// BuildBoard builds the keyboard of a running game: the board (when
// pressable), the game controls, and a back button.
func BuildBoard(snap game.Snapshot) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton

	if pressable(snap.Kind) && len(snap.Cells) > 0 {
		cells := lo.Map(snap.Cells, func(c game.Cell, _ int) tele.InlineButton {
			data := EncodeCallback(ActionNoop, "")
			if in, ok := CellInput(snap.Kind, c.Index); ok && c.Enabled {
				data = EncodeInput(in)
			}
			return tele.InlineButton{Text: c.Label, Data: data}
		})
		rows = append(rows, lo.Chunk(cells, max(snap.Columns, 1))...)
	}

	if len(snap.Controls) > 0 {
		controls := lo.Map(snap.Controls, func(c game.Control, _ int) tele.InlineButton {
			return tele.InlineButton{Text: c.Label, Data: EncodeInput(c.Input)}
		})
		rows = append(rows, controls)
	}

	rows = append(rows, []tele.InlineButton{{Text: "⬅️ Back to games", Data: EncodeCallback(ActionBack, "")}})
	markup.InlineKeyboard = rows
	return markup
}

// FormatSnapshot renders the message text of a running game. Boards that
// are not pressable are drawn into the text.
func FormatSnapshot(snap game.Snapshot, total int64) string {
	var sb strings.Builder
	sb.WriteString(snap.Title)
	sb.WriteString("\n\n")
	if !pressable(snap.Kind) && len(snap.Cells) > 0 {
		cols := max(snap.Columns, 1)
		for i, c := range snap.Cells {
			sb.WriteString(c.Label)
			if (i+1)%cols == 0 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(snap.Status)
	sb.WriteString(fmt.Sprintf("\n\n🏅 Dashboard score: %d", total))
	return sb.String()
}

// FormatCatalogue renders the game selection message.
func FormatCatalogue(username string, total int64) string {
	var sb strings.Builder
	if username != "" {
		sb.WriteString(fmt.Sprintf("👋 Welcome, %s!\n", username))
	}
	sb.WriteString(fmt.Sprintf("🏅 Score: %d\n\n", total))
	sb.WriteString("Choose a game:")
	return sb.String()
}
