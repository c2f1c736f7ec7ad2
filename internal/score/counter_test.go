package score

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"arcade-dashboard/internal/game"
)

func TestCounter_ApplyDelta(t *testing.T) {
	c := NewCounter(5)
	assert.NoError(t, c.ApplyDelta(context.Background(), 10, game.ReasonFoodEaten))
	assert.Equal(t, int64(15), c.Total(), "visible immediately")
	assert.Equal(t, int64(15), c.Add(0))
}

func TestCounter_ZeroValue(t *testing.T) {
	var c Counter
	assert.Equal(t, int64(20), c.Add(20))
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.ApplyDelta(context.Background(), 10, game.ReasonFoodEaten)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(500), c.Total())
}

// The total is the sum of every applied delta.
func TestCounterSumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 1000).Draw(t, "initial")
		deltas := rapid.SliceOf(rapid.IntRange(0, 100)).Draw(t, "deltas")

		c := NewCounter(initial)
		want := initial
		for _, d := range deltas {
			_ = c.ApplyDelta(context.Background(), d, game.ReasonPairMatched)
			want += int64(d)
		}
		if c.Total() != want {
			t.Fatalf("total %d, want %d", c.Total(), want)
		}
	})
}
