package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/game/arcade"
	"arcade-dashboard/internal/host"
	"arcade-dashboard/internal/model"
	"arcade-dashboard/internal/repository"
	"arcade-dashboard/internal/service"
)

// store is a map-backed PlayerStore and ScoreEventStore.
type store struct {
	mu      sync.Mutex
	players map[int64]*model.Player
	events  []model.ScoreEvent
}

func newStore() *store { return &store{players: make(map[int64]*model.Player)} }

func (s *store) GetOrCreate(_ context.Context, id int64, username string) (*model.Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		cp := *p
		return &cp, false, nil
	}
	s.players[id] = &model.Player{TelegramID: id, Username: username}
	cp := *s.players[id]
	return &cp, true, nil
}

func (s *store) GetByID(_ context.Context, id int64) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *store) UpdateUsername(_ context.Context, id int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[id].Username = username
	return nil
}

func (s *store) AddScore(_ context.Context, id int64, amount int64) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[id].Score += amount
	cp := *s.players[id]
	return &cp, nil
}

func (s *store) SetSession(_ context.Context, id int64, loggedIn bool) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.players[id]
	p.LoggedIn = loggedIn
	if !loggedIn {
		p.Score = 0
	}
	cp := *p
	return &cp, nil
}

func (s *store) GetTopPlayers(context.Context, int) ([]*model.Player, error) { return nil, nil }
func (s *store) LogoutAll(context.Context) (int64, error) { return 0, nil }

func (s *store) Create(_ context.Context, ev *model.ScoreEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
	return nil
}

func (s *store) ListByPlayer(_ context.Context, id int64, limit int) ([]*model.ScoreEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ScoreEvent
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.events[i].PlayerID == id {
			ev := s.events[i]
			out = append(out, &ev)
		}
	}
	return out, nil
}

func (s *store) TotalsByGame(_ context.Context, id int64) ([]model.GameTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GameTotal
	for _, ev := range s.events {
		if ev.PlayerID != id {
			continue
		}
		if len(out) > 0 && out[len(out)-1].Game == ev.Game {
			out[len(out)-1].Points += ev.Amount
			out[len(out)-1].Events++
			continue
		}
		out = append(out, model.GameTotal{Game: ev.Game, Points: ev.Amount, Events: 1})
	}
	return out, nil
}

type dashboardFixture struct {
	handler *DashboardHandler
	manager *host.Manager
	scores  *service.ScoreService
	bot     *fakeMessenger
	store   *store
}

func newDashboard(t *testing.T) *dashboardFixture {
	t.Helper()
	registry, err := arcade.NewRegistry(arcade.Config{})
	require.NoError(t, err)

	st := newStore()
	scores := service.NewScoreService(st, st, nil)
	manager := host.NewManager(registry, nil, 1)
	bot := &fakeMessenger{}
	h := NewDashboardHandler(scores, manager, registry, bot, 0)
	t.Cleanup(func() {
		manager.CloseAll()
		h.Close()
	})
	return &dashboardFixture{handler: h, manager: manager, scores: scores, bot: bot, store: st}
}

func TestDashboard_PressBeforeLogin(t *testing.T) {
	f := newDashboard(t)
	notice, err := f.handler.Press(context.Background(), 1, nil, EncodeCallback(ActionSelect, "dice"))
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)
	assert.Equal(t, "Please /login first.", notice)
}

func TestDashboard_PlayTicTacToe(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()

	text, err := f.handler.Login(ctx, 1, "alice")
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome, alice")

	msg := &tele.Message{ID: 10, Chat: &tele.Chat{ID: 1}}
	notice, err := f.handler.Press(ctx, 1, msg, EncodeCallback(ActionSelect, string(game.KindTicTacToe)))
	require.NoError(t, err)
	assert.Empty(t, notice)
	require.Eventually(t, func() bool { return len(f.bot.Edits()) > 0 }, time.Second, 5*time.Millisecond)

	for _, cell := range []int{0, 3, 1, 4} {
		notice, err = f.handler.Press(ctx, 1, msg, EncodeInput(game.Place(cell)))
		require.NoError(t, err)
		assert.Empty(t, notice)
	}
	notice, err = f.handler.Press(ctx, 1, msg, EncodeInput(game.Place(2)))
	require.NoError(t, err)
	assert.Equal(t, "+20 points", notice)

	total, err := f.scores.Total(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)

	text, err = f.handler.ScoreText(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, text, "🏅 Score: 20")
	assert.Contains(t, text, "⭕ Tic Tac Toe: 20")

	require.Len(t, f.store.events, 1)
	assert.Equal(t, "tictactoe", f.store.events[0].Game)
	assert.NotNil(t, f.store.events[0].SessionID)
}

func TestDashboard_BackAndNoGame(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	_, err := f.handler.Login(ctx, 1, "bob")
	require.NoError(t, err)

	_, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionSelect, string(game.KindSnake)))
	require.NoError(t, err)
	hst, ok := f.manager.Get(1)
	require.True(t, ok)
	assert.Equal(t, 1, hst.PendingTimers())

	_, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionBack, ""))
	require.NoError(t, err)
	_, active := hst.Active()
	assert.False(t, active)
	assert.Equal(t, 0, hst.PendingTimers())

	notice, err := f.handler.Press(ctx, 1, nil, EncodeInput(game.Roll()))
	assert.ErrorIs(t, err, host.ErrNoActiveGame)
	assert.Equal(t, "Choose a game first", notice)

	notice, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionNoop, ""))
	assert.NoError(t, err)
	assert.Empty(t, notice)
}

func TestDashboard_RejectsBadCallbacks(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	_, err := f.handler.Login(ctx, 1, "carol")
	require.NoError(t, err)

	_, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionSelect, "chess"))
	assert.ErrorIs(t, err, game.ErrUnknownGame)

	_, err = f.handler.Press(ctx, 1, nil, "arc_timer_snake_tick")
	assert.ErrorIs(t, err, ErrBadCallback)
}

func TestDashboard_Logout(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()
	_, err := f.handler.Login(ctx, 1, "dave")
	require.NoError(t, err)
	_, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionSelect, string(game.KindSnake)))
	require.NoError(t, err)
	hst, _ := f.manager.Get(1)

	require.NoError(t, f.handler.Logout(ctx, 1))
	_, ok := f.manager.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, hst.PendingTimers())

	_, err = f.scores.Total(1)
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)
	_, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionSelect, "dice"))
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)

	assert.ErrorIs(t, f.handler.Logout(ctx, 1), service.ErrNotLoggedIn)
}

func TestDashboard_History(t *testing.T) {
	f := newDashboard(t)
	ctx := context.Background()

	_, err := f.handler.HistoryText(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)

	_, err = f.handler.Login(ctx, 1, "erin")
	require.NoError(t, err)
	text, err := f.handler.HistoryText(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, text, "No activity yet")

	_, err = f.handler.Press(ctx, 1, nil, EncodeCallback(ActionSelect, string(game.KindTicTacToe)))
	require.NoError(t, err)
	for _, cell := range []int{0, 3, 1, 4, 2} {
		_, err = f.handler.Press(ctx, 1, nil, EncodeInput(game.Place(cell)))
		require.NoError(t, err)
	}

	text, err = f.handler.HistoryText(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, text, "Recent Activity")
	assert.Contains(t, text, "⭕ Tic Tac Toe  tictactoe_win +20")
}
