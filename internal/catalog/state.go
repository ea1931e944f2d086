package catalog

import (
	"fmt"
	"sync"
)

// State holds the last known upper bound of the catalog. The zero value is
// "unknown". Once known, the bound only grows.
type State struct {
	mu    sync.RWMutex
	count int
}

// Count returns the bound and whether it is known.
func (s *State) Count() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, s.count > 0
}

// Observe records a bound reported by the catalog. Non-positive values are
// rejected. A value below the current bound is ignored so the bound never
// shrinks. changed reports whether the stored bound moved.
func (s *State) Observe(n int) (changed bool, err error) {
	if n <= 0 {
		return false, fmt.Errorf("catalog bound %d: must be positive", n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= s.count {
		return false, nil
	}
	s.count = n
	return true, nil
}

// Clamp limits n to [1, count]. ok is false when the bound is unknown.
func (s *State) Clamp(n int) (clamped int, ok bool) {
	count, known := s.Count()
	if !known {
		return 0, false
	}
	return max(1, min(n, count)), true
}
