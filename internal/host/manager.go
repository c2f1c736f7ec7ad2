package host

import (
	"sync"

	"arcade-dashboard/internal/game"
)

// Manager keeps one Host per logged-in player.
type Manager struct {
	registry *game.Registry
	sched    Scheduler
	seed     int64

	hosts map[int64]*Host
	mu    sync.RWMutex
}

// NewManager creates a manager building hosts over registry. A non-zero
// seed makes each player's RNG deterministic (seed + player ID).
func NewManager(registry *game.Registry, sched Scheduler, seed int64) *Manager {
	if sched == nil {
		sched = WallClock()
	}
	return &Manager{
		registry: registry,
		sched:    sched,
		seed:     seed,
		hosts:    make(map[int64]*Host),
	}
}

// Open returns the player's host, creating it with sink and renderer if the
// player has none. The second result reports whether a host was created.
func (m *Manager) Open(playerID int64, sink game.ScoreSink, renderer Renderer) (*Host, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.hosts[playerID]; ok {
		return h, false
	}

	var rng game.RNG
	if m.seed != 0 {
		rng = game.NewRNG(m.seed + playerID)
	} else {
		rng = game.NewRNG(0)
	}
	h := New(Options{
		PlayerID:  playerID,
		Registry:  m.registry,
		RNG:       rng,
		Sink:      sink,
		Scheduler: m.sched,
		Renderer:  renderer,
	})
	m.hosts[playerID] = h
	return h, true
}

// Get returns the player's host.
func (m *Manager) Get(playerID int64) (*Host, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hosts[playerID]
	return h, ok
}

// Close tears down and forgets the player's host. It reports whether the
// player had one.
func (m *Manager) Close(playerID int64) bool {
	m.mu.Lock()
	h, ok := m.hosts[playerID]
	delete(m.hosts, playerID)
	m.mu.Unlock()

	if ok {
		h.Close()
	}
	return ok
}

// CloseAll tears down every host.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	hosts := m.hosts
	m.hosts = make(map[int64]*Host)
	m.mu.Unlock()

	for _, h := range hosts {
		h.Close()
	}
}

// Count returns the number of open hosts.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hosts)
}
