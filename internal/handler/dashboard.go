// Package handler provides Telegram command and callback handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/host"
	"arcade-dashboard/internal/service"
)

// Messenger sends and edits messages. *tele.Bot implements it.
type Messenger interface {
	Editor
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

const (
	topLimit     = 10
	historyLimit = 10
)

// DashboardHandler serves the dashboard commands and button presses.
type DashboardHandler struct {
	scores   *service.ScoreService
	manager  *host.Manager
	registry *game.Registry
	bot      Messenger
	editRate float64

	mu    sync.Mutex
	views map[int64]*View
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(
	scores *service.ScoreService,
	manager *host.Manager,
	registry *game.Registry,
	bot Messenger,
	editRate float64,
) *DashboardHandler {
	return &DashboardHandler{
		scores:   scores,
		manager:  manager,
		registry: registry,
		bot:      bot,
		editRate: editRate,
		views:    make(map[int64]*View),
	}
}

// HandleStart handles the /start command.
func (h *DashboardHandler) HandleStart(c tele.Context) error {
	var sb strings.Builder
	sb.WriteString("🕹 Arcade Dashboard\n\n")
	sb.WriteString(fmt.Sprintf("%d games, one score.\n\n", h.registry.Count()))
	sb.WriteString("/login - start a session\n")
	sb.WriteString("/games - choose a game\n")
	sb.WriteString("/score - show your score\n")
	sb.WriteString("/top - leaderboard\n")
	sb.WriteString("/history - recent activity\n")
	sb.WriteString("/back - leave the current game\n")
	sb.WriteString("/logout - end the session and reset your score")
	return c.Send(sb.String())
}

// HandleLogin handles the /login command.
func (h *DashboardHandler) HandleLogin(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	username := sender.Username
	if username == "" {
		username = sender.FirstName
	}

	text, err := h.Login(context.Background(), sender.ID, username)
	if err != nil {
		log.Error().Err(err).Int64("player_id", sender.ID).Msg("Login failed")
		return c.Send("❌ Login failed, please try again later")
	}
	return h.sendCatalogue(c.Recipient(), sender.ID, text)
}

// Login starts the player's session and returns the catalogue text.
func (h *DashboardHandler) Login(ctx context.Context, playerID int64, username string) (string, error) {
	p, err := h.scores.Login(ctx, playerID, username)
	if err != nil {
		return "", err
	}
	h.open(playerID)
	return FormatCatalogue(p.Username, p.Score), nil
}

// HandleLogout handles the /logout command.
func (h *DashboardHandler) HandleLogout(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	err := h.Logout(context.Background(), sender.ID)
	if errors.Is(err, service.ErrNotLoggedIn) {
		return c.Send("You are not logged in.")
	}
	if err != nil {
		log.Error().Err(err).Int64("player_id", sender.ID).Msg("Logout failed")
		return c.Send("❌ Logout failed, please try again later")
	}
	return c.Send("👋 Logged out. Your score was reset.")
}

// Logout tears down the player's host, cancelling its timers, then ends the
// session.
func (h *DashboardHandler) Logout(ctx context.Context, playerID int64) error {
	h.manager.Close(playerID)

	h.mu.Lock()
	v, ok := h.views[playerID]
	delete(h.views, playerID)
	h.mu.Unlock()
	if ok {
		v.Close()
	}

	return h.scores.Logout(ctx, playerID)
}

// HandleGames handles the /games command.
func (h *DashboardHandler) HandleGames(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	total, err := h.scores.Total(sender.ID)
	if err != nil {
		return c.Send("Please /login first.")
	}
	return h.sendCatalogue(c.Recipient(), sender.ID, FormatCatalogue("", total))
}

// HandleBack handles the /back command.
func (h *DashboardHandler) HandleBack(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	hst, ok := h.manager.Get(sender.ID)
	if !ok {
		return c.Send("Please /login first.")
	}
	hst.Back()
	total, _ := h.scores.Total(sender.ID)
	return h.sendCatalogue(c.Recipient(), sender.ID, FormatCatalogue("", total))
}

// HandleScore handles the /score command.
func (h *DashboardHandler) HandleScore(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	text, err := h.ScoreText(context.Background(), sender.ID)
	if errors.Is(err, service.ErrNotLoggedIn) {
		return c.Send("Please /login first.")
	}
	if err != nil {
		log.Error().Err(err).Int64("player_id", sender.ID).Msg("Failed to load score")
		return c.Send("❌ Failed to load your score")
	}
	return c.Send(text)
}

// ScoreText renders the player's running total and per-game breakdown.
func (h *DashboardHandler) ScoreText(ctx context.Context, playerID int64) (string, error) {
	total, err := h.scores.Total(playerID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏅 Score: %d\n", total))

	totals, err := h.scores.GameTotals(ctx, playerID)
	if err != nil {
		return "", err
	}
	if len(totals) > 0 {
		sb.WriteString("\nAll-time points by game:\n")
		for _, t := range totals {
			sb.WriteString(fmt.Sprintf("%s: %d\n", h.gameLabel(t.Game), t.Points))
		}
	}
	return sb.String(), nil
}

// HandleHistory handles the /history command.
func (h *DashboardHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	text, err := h.HistoryText(context.Background(), sender.ID)
	if errors.Is(err, service.ErrNotLoggedIn) {
		return c.Send("Please /login first.")
	}
	if err != nil {
		log.Error().Err(err).Int64("player_id", sender.ID).Msg("Failed to load history")
		return c.Send("❌ Failed to load your history")
	}
	return c.Send(text)
}

// HistoryText renders the player's most recent score events, newest first.
func (h *DashboardHandler) HistoryText(ctx context.Context, playerID int64) (string, error) {
	if !h.scores.IsLoggedIn(playerID) {
		return "", service.ErrNotLoggedIn
	}
	events, err := h.scores.History(ctx, playerID, historyLimit)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "📜 No activity yet. Pick a game with /games.", nil
	}

	var sb strings.Builder
	sb.WriteString("📜 Recent Activity\n\n")
	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("%s %s  %s %+d\n",
			ev.CreatedAt.Format("01-02 15:04"), h.gameLabel(ev.Game), ev.Reason, ev.Amount))
	}
	return sb.String(), nil
}

func (h *DashboardHandler) gameLabel(kind string) string {
	if info, ok := h.registry.Info(game.Kind(kind)); ok {
		return info.Icon + " " + info.Name
	}
	return kind
}

// HandleTop handles the /top command.
func (h *DashboardHandler) HandleTop(c tele.Context) error {
	players, err := h.scores.TopPlayers(context.Background(), topLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load leaderboard")
		return c.Send("❌ Failed to load the leaderboard")
	}
	if len(players) == 0 {
		return c.Send("No players yet.")
	}

	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard\n\n")
	for i, p := range players {
		sb.WriteString(fmt.Sprintf("%d. %s - %d\n", i+1, p.Username, p.Score))
	}
	return c.Send(sb.String())
}

// HandleCallback handles every dashboard button press.
func (h *DashboardHandler) HandleCallback(c tele.Context) error {
	cb := c.Callback()
	sender := c.Sender()
	if cb == nil || sender == nil {
		return nil
	}

	notice, err := h.Press(context.Background(), sender.ID, cb.Message, cb.Data)
	if err != nil {
		log.Debug().Err(err).Int64("player_id", sender.ID).Str("data", cb.Data).Msg("Callback rejected")
	}
	return c.Respond(&tele.CallbackResponse{Text: notice})
}

// Press applies one button press for the player. msg is the message holding
// the pressed keyboard; the game is redrawn there. The returned notice, if
// any, is shown as a toast.
func (h *DashboardHandler) Press(ctx context.Context, playerID int64, msg tele.Editable, data string) (string, error) {
	hst, ok := h.manager.Get(playerID)
	if !ok {
		return "Please /login first.", service.ErrNotLoggedIn
	}
	v := h.view(playerID)
	if v == nil {
		return "Please /login first.", service.ErrNotLoggedIn
	}
	if msg != nil {
		v.SetTarget(msg)
	}

	action, param := DecodeCallback(data)
	switch action {
	case ActionNoop:
		return "", nil
	case ActionMenu, ActionBack:
		if action == ActionBack {
			hst.Back()
		}
		h.showMenu(playerID, v)
		return "", nil
	case ActionSelect:
		snap, err := hst.Select(ctx, game.Kind(param))
		if err != nil {
			return "Unknown game", err
		}
		v.Render(ctx, snap, game.Apply())
		return "", nil
	}

	in, err := DecodeInput(action, param)
	if err != nil {
		return "", err
	}
	res, err := hst.Input(ctx, in)
	if errors.Is(err, host.ErrNoActiveGame) {
		h.showMenu(playerID, v)
		return "Choose a game first", err
	}
	if err != nil {
		return "", err
	}
	if pts := res.Points(); pts > 0 {
		return fmt.Sprintf("+%d points", pts), nil
	}
	return "", nil
}

// Close tears down every view. Hosts are closed by the manager.
func (h *DashboardHandler) Close() {
	h.mu.Lock()
	views := h.views
	h.views = make(map[int64]*View)
	h.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
}

func (h *DashboardHandler) open(playerID int64) *View {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.views[playerID]; ok {
		return v
	}
	v := NewView(h.bot, func() int64 {
		total, _ := h.scores.Total(playerID)
		return total
	}, h.editRate)
	h.views[playerID] = v
	h.manager.Open(playerID, h.scores.Sink(playerID), v)
	return v
}

func (h *DashboardHandler) view(playerID int64) *View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.views[playerID]
}

func (h *DashboardHandler) showMenu(playerID int64, v *View) {
	total, _ := h.scores.Total(playerID)
	v.ShowMenu(FormatCatalogue("", total), BuildCatalogue(h.registry.List()))
}

// sendCatalogue posts a fresh catalogue message and makes it the player's
// dashboard message.
func (h *DashboardHandler) sendCatalogue(to tele.Recipient, playerID int64, text string) error {
	msg, err := h.bot.Send(to, text, BuildCatalogue(h.registry.List()))
	if err != nil {
		return err
	}
	if v := h.view(playerID); v != nil {
		v.SetTarget(msg)
	}
	return nil
}
