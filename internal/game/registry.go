package game

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownGame is returned when a kind has no registered factory.
var ErrUnknownGame = errors.New("unknown game")

// Info describes a game on the dashboard.
type Info struct {
	Kind        Kind
	Name        string
	Icon        string
	Description string
}

// Factory builds a fresh engine drawing randomness from rng.
type Factory func(rng RNG) Engine

type entry struct {
	info    Info
	factory Factory
}

// Registry manages game registration and lookup.
// It is safe for concurrent use.
type Registry struct {
	games map[Kind]entry
	order []Kind
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[Kind]entry),
	}
}

// Register adds a game. Registering the same kind again replaces the
// factory but keeps the original catalogue position.
func (r *Registry) Register(info Info, factory Factory) error {
	if info.Kind == "" {
		return fmt.Errorf("game kind cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for %s", info.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[info.Kind]; !ok {
		r.order = append(r.order, info.Kind)
	}
	r.games[info.Kind] = entry{info: info, factory: factory}
	return nil
}

// New builds a fresh engine for kind.
func (r *Registry) New(kind Kind, rng RNG) (Engine, error) {
	r.mu.RLock()
	e, ok := r.games[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, kind)
	}
	return e.factory(rng), nil
}

// Info returns the catalogue entry for kind.
func (r *Registry) Info(kind Kind) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[kind]
	return e.info, ok
}

// List returns catalogue entries in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, k := range r.order {
		infos = append(infos, r.games[k].info)
	}
	return infos
}

// Kinds returns the registered kinds as strings, for logging.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.order))
	for _, k := range r.order {
		kinds = append(kinds, string(k))
	}
	return kinds
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
