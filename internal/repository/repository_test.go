// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"arcade-dashboard/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB creates a migrated PostgreSQL container and returns a pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, pool))
	// Migrations must be re-runnable on every start
	require.NoError(t, Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return pool, cleanup
}

func TestPlayerRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	p, err := repo.Create(ctx, 12345, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), p.TelegramID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, int64(0), p.Score)
	assert.False(t, p.LoggedIn)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPlayerRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "alice")
	require.NoError(t, err)

	p, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	_, err = repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_GetOrCreate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	p, created, err := repo.GetOrCreate(ctx, 12345, "alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(12345), p.TelegramID)

	p, created, err = repo.GetOrCreate(ctx, 12345, "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(12345), p.TelegramID)
}

func TestPlayerRepository_AddScore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "alice")
	require.NoError(t, err)

	p, err := repo.AddScore(ctx, 12345, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Score)

	p, err = repo.AddScore(ctx, 12345, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(60), p.Score)

	_, err = repo.AddScore(ctx, 99999, 10)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_SetSession(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "alice")
	require.NoError(t, err)

	p, err := repo.SetSession(ctx, 12345, true)
	require.NoError(t, err)
	assert.True(t, p.LoggedIn)

	_, err = repo.AddScore(ctx, 12345, 30)
	require.NoError(t, err)

	// Logging in again keeps the score
	p, err = repo.SetSession(ctx, 12345, true)
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.Score)

	p, err = repo.SetSession(ctx, 12345, false)
	require.NoError(t, err)
	assert.False(t, p.LoggedIn)
	assert.Equal(t, int64(0), p.Score)

	_, err = repo.SetSession(ctx, 99999, true)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_UpdateUsername(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "alice")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateUsername(ctx, 12345, "alice2"))
	p, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username)

	assert.ErrorIs(t, repo.UpdateUsername(ctx, 99999, "nobody"), ErrPlayerNotFound)
}

func TestPlayerRepository_GetTopPlayers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	for id, score := range map[int64]int64{1: 30, 2: 10, 3: 50} {
		_, err := repo.Create(ctx, id, "player")
		require.NoError(t, err)
		_, err = repo.AddScore(ctx, id, score)
		require.NoError(t, err)
	}

	players, err := repo.GetTopPlayers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, int64(3), players[0].TelegramID)
	assert.Equal(t, int64(1), players[1].TelegramID)
}

func TestPlayerRepository_LogoutAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := repo.Create(ctx, id, "player")
		require.NoError(t, err)
	}
	_, err := repo.SetSession(ctx, 1, true)
	require.NoError(t, err)
	_, err = repo.SetSession(ctx, 2, true)
	require.NoError(t, err)
	_, err = repo.AddScore(ctx, 2, 20)
	require.NoError(t, err)

	n, err := repo.LogoutAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	p, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, p.LoggedIn)
	assert.Equal(t, int64(0), p.Score)
}

func TestScoreEventRepository_CreateAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	repo := NewScoreEventRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 12345, "alice")
	require.NoError(t, err)

	session := "0b6c6a5e-7d0f-4e58-8d5c-8f0d1f1c1a11"
	first := &model.ScoreEvent{PlayerID: 12345, SessionID: &session, Game: "memory", Reason: "pair_matched", Amount: 10}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &model.ScoreEvent{PlayerID: 12345, Game: "tictactoe", Reason: "tictactoe_win", Amount: 20}
	require.NoError(t, repo.Create(ctx, second))

	events, err := repo.ListByPlayer(ctx, 12345, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID)
	assert.Nil(t, events[0].SessionID)
	require.NotNil(t, events[1].SessionID)
	assert.Equal(t, session, *events[1].SessionID)

	events, err = repo.ListByPlayer(ctx, 12345, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// Events reference an existing player
	err = repo.Create(ctx, &model.ScoreEvent{PlayerID: 99999, Game: "dice", Reason: "rolled_six", Amount: 10})
	assert.Error(t, err)
}

func TestScoreEventRepository_TotalsByGame(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	repo := NewScoreEventRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 12345, "alice")
	require.NoError(t, err)

	for _, ev := range []model.ScoreEvent{
		{Game: "memory", Reason: "pair_matched", Amount: 10},
		{Game: "memory", Reason: "memory_won", Amount: 50},
		{Game: "dice", Reason: "rolled_six", Amount: 10},
	} {
		ev.PlayerID = 12345
		require.NoError(t, repo.Create(ctx, &ev))
	}

	totals, err := repo.TotalsByGame(ctx, 12345)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, model.GameTotal{Game: "memory", Points: 60, Events: 2}, totals[0])
	assert.Equal(t, model.GameTotal{Game: "dice", Points: 10, Events: 1}, totals[1])

	totals, err = repo.TotalsByGame(ctx, 99999)
	require.NoError(t, err)
	assert.Empty(t, totals)
}
