package relay

import "sync"

// EvolutionStore maps surface names to their last observed evolution factor.
// It is written by the engine's structured-event handling and read on demand
// by whoever answers evolution queries; entries live for the process
// lifetime. Safe for concurrent use.
type EvolutionStore struct {
	mu      sync.RWMutex
	factors map[string]float64
}

// NewEvolutionStore returns an empty store.
func NewEvolutionStore() *EvolutionStore {
	return &EvolutionStore{factors: make(map[string]float64)}
}

// Set records the latest factor for a surface, replacing any prior sample.
func (s *EvolutionStore) Set(surface string, factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factors[surface] = factor
}

// Snapshot returns a copy of the current surface→factor mapping. An empty
// map means no data has arrived yet.
func (s *EvolutionStore) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.factors))
	for k, v := range s.factors {
		out[k] = v
	}
	return out
}
