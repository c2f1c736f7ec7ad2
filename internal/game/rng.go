package game

import (
	"math/rand"
	"sync"
	"time"
)

// RNG is the randomness source consumed by engines.
type RNG interface {
	// Intn returns a uniform int in [0, n). It panics if n <= 0.
	Intn(n int) int
}

// lockedRand is a math/rand source safe for use from timer goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRNG returns a seeded RNG. A zero seed uses the current time.
func NewRNG(seed int64) RNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Shuffle permutes n elements uniformly (Fisher-Yates) using rng.
func Shuffle(rng RNG, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		swap(i, j)
	}
}

// Sequence is an RNG that replays fixed values, each reduced modulo n.
// It is meant for tests and replays.
type Sequence struct {
	Values []int
	pos    int
}

// Intn returns the next value modulo n. Once exhausted it returns 0.
func (s *Sequence) Intn(n int) int {
	if s.pos >= len(s.Values) {
		return 0
	}
	v := s.Values[s.pos] % n
	s.pos++
	if v < 0 {
		v += n
	}
	return v
}
