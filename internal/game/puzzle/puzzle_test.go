package puzzle

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"arcade-dashboard/internal/game"
)

func TestIsSolved(t *testing.T) {
	assert.True(t, IsSolved(SolvedBoard))
	assert.False(t, IsSolved(Board{1, 2, 3, 4, 5, 6, 7, Blank, 8}))
	assert.False(t, IsSolved(Board{2, 1, 3, 4, 5, 6, 7, 8, Blank}))
}

func TestAdjacent(t *testing.T) {
	tests := []struct {
		a, b int
		want bool
	}{
		{0, 1, true},
		{0, 3, true},
		{4, 1, true},
		{4, 7, true},
		{2, 3, false}, // row wrap
		{0, 4, false}, // diagonal
		{0, 0, false},
		{0, 2, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Adjacent(tt.a, tt.b), "Adjacent(%d, %d)", tt.a, tt.b)
	}
}

func TestMove_SolvingScoresOnce(t *testing.T) {
	s := FromBoard(Board{1, 2, 3, 4, 5, 6, 7, Blank, 8})
	require.False(t, s.Solved)
	assert.Equal(t, 7, s.Blank)

	s, res := s.Move(8)
	require.True(t, res.Applied())
	assert.True(t, s.Solved)
	assert.Equal(t, []game.ScoreDelta{{Amount: SolvedPoints, Reason: game.ReasonPuzzleSolved}}, res.Deltas)
	assert.Equal(t, []game.Event{game.EventSolved}, res.Events)

	// Leaving the solved arrangement scores nothing
	s, res = s.Move(5)
	require.True(t, res.Applied())
	assert.False(t, s.Solved)
	assert.Empty(t, res.Deltas)

	// Coming back is a new solve
	s, res = s.Move(8)
	assert.True(t, s.Solved)
	assert.Equal(t, SolvedPoints, res.Points())
}

func TestMove_Ignored(t *testing.T) {
	s := FromBoard(Board{1, 2, 3, 4, Blank, 5, 6, 7, 8})
	for _, cell := range []int{-1, 9, 0, 2, 6, 8, 4} {
		next, res := s.Move(cell)
		assert.False(t, res.Applied(), "cell %d", cell)
		assert.Equal(t, s, next)
	}
}

func TestShuffle_SolvedDealDoesNotScore(t *testing.T) {
	// j == i at every step leaves the board untouched
	rng := &game.Sequence{Values: []int{8, 7, 6, 5, 4, 3, 2, 1}}
	g := New(rng)
	assert.True(t, g.State().Solved)
	assert.Equal(t, SolvedBoard, g.State().Board)
}

func TestGame_ResetReshuffles(t *testing.T) {
	g := New(game.NewRNG(3))
	res := g.Apply(game.Reset())
	assert.True(t, res.Applied())
	assert.Empty(t, res.Deltas)
	assert.False(t, g.Apply(game.Reveal(0)).Applied())
}

func TestSnapshot(t *testing.T) {
	g := &Game{rng: game.NewRNG(1), state: FromBoard(Board{1, 2, 3, 4, Blank, 5, 6, 7, 8})}
	snap := g.Snapshot()

	assert.Equal(t, Size, snap.Columns)
	require.Len(t, snap.Cells, CellCount)
	assert.Equal(t, " ", snap.Cells[4].Label)
	assert.Equal(t, "5", snap.Cells[5].Label)

	var enabled []int
	for _, c := range snap.Cells {
		if c.Enabled {
			enabled = append(enabled, c.Index)
		}
	}
	assert.Equal(t, []int{1, 3, 5, 7}, enabled)
}

// Every reachable board is a permutation of 0..8, the blank index tracks the
// blank tile, and points are emitted exactly on unsolved to solved moves.
func TestMoveProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64Range(1, 1<<40).Draw(t, "seed")
		s := Shuffle(game.NewRNG(seed))

		moves := rapid.SliceOfN(rapid.IntRange(-1, CellCount), 0, 60).Draw(t, "moves")
		for _, m := range moves {
			before := s
			var res game.Result
			s, res = s.Move(m)

			if res.Applied() != (m >= 0 && m < CellCount && Adjacent(m, before.Blank)) {
				t.Fatalf("move %d from blank %d applied=%v", m, before.Blank, res.Applied())
			}
			if s.Board[s.Blank] != Blank {
				t.Fatalf("blank index %d holds %d", s.Blank, s.Board[s.Blank])
			}
			tiles := s.Board[:]
			sorted := append([]int(nil), tiles...)
			sort.Ints(sorted)
			for i, v := range sorted {
				if v != i {
					t.Fatalf("board %v is not a permutation", s.Board)
				}
			}
			scored := res.Points() > 0
			if scored != (s.Solved && !before.Solved) {
				t.Fatalf("scored=%v solved %v -> %v", scored, before.Solved, s.Solved)
			}
		}
	})
}
