package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/game/arcade"
	"arcade-dashboard/internal/score"
)

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	registry, err := arcade.NewRegistry(arcade.Config{})
	require.NoError(t, err)
	clock := &fakeClock{}
	return NewManager(registry, clock, 99), clock
}

func TestManager_OpenOncePerPlayer(t *testing.T) {
	m, _ := newTestManager(t)

	h1, created := m.Open(1, score.NewCounter(0), nil)
	assert.True(t, created)
	h2, created := m.Open(1, score.NewCounter(0), nil)
	assert.False(t, created)
	assert.Same(t, h1, h2)

	_, created = m.Open(2, nil, nil)
	assert.True(t, created)
	assert.Equal(t, 2, m.Count())

	got, ok := m.Get(1)
	assert.True(t, ok)
	assert.Same(t, h1, got)
	_, ok = m.Get(3)
	assert.False(t, ok)
}

func TestManager_SeededRNG(t *testing.T) {
	a, _ := newTestManager(t)
	b, _ := newTestManager(t)
	ctx := context.Background()

	ha, _ := a.Open(5, nil, nil)
	hb, _ := b.Open(5, nil, nil)
	sa, err := ha.Select(ctx, game.KindPuzzle)
	require.NoError(t, err)
	sb, err := hb.Select(ctx, game.KindPuzzle)
	require.NoError(t, err)
	assert.Equal(t, sa.Cells, sb.Cells, "same seed and player deal the same board")
}

func TestManager_Close(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()

	h, _ := m.Open(1, nil, nil)
	_, err := h.Select(ctx, game.KindSnake)
	require.NoError(t, err)

	assert.True(t, m.Close(1))
	assert.False(t, m.Close(1))
	assert.Equal(t, 0, clock.Pending())
	_, err = h.Select(ctx, game.KindDice)
	assert.ErrorIs(t, err, ErrClosed)

	h2, created := m.Open(1, nil, nil)
	assert.True(t, created)
	assert.NotSame(t, h, h2)
}

func TestManager_CloseAll(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		h, _ := m.Open(id, nil, nil)
		_, err := h.Select(ctx, game.KindSnake)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, clock.Pending())

	m.CloseAll()
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, clock.Pending())
}
