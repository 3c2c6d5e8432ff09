package adjust

import (
	"sync"
)

// Store maps face keys to adjustments. It is safe for concurrent use; a render
// pass reads from a Snapshot so edits made meanwhile do not affect it.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]Adjustment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]Adjustment)}
}

// Get returns the stored adjustment or Default when absent.
func (s *Store) Get(k Key) Adjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.entries[k]; ok {
		return a
	}
	return Default()
}

// Lookup returns the stored adjustment and whether one exists.
func (s *Store) Lookup(k Key) (Adjustment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.entries[k]
	return a, ok
}

// Set stores a clamped adjustment.
func (s *Store) Set(k Key, a Adjustment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = a.Clamp()
}

// CoverFit sets the key's zoom to the cover-fit zoom for an image of the given
// size, keeping existing offsets. Returns the stored adjustment.
func (s *Store) CoverFit(k Key, width, height int) Adjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.entries[k]
	if !ok {
		a = Default()
	}
	a.Zoom = CoverZoom(width, height)
	a = a.Clamp()
	s.entries[k] = a
	return a
}

// Reset removes the key so it reverts to Default.
func (s *Store) Reset(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, k)
}

// Len returns the number of stored adjustments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[Key]Adjustment, len(s.entries))
	for k, v := range s.entries {
		cp[k] = v
	}
	return Snapshot{entries: cp}
}

// Legacy returns the entries keyed by the saved-template string format.
func (s *Store) Legacy() map[string]Adjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Adjustment, len(s.entries))
	for k, v := range s.entries {
		out[k.Legacy()] = v
	}
	return out
}

// Snapshot is a read-only view of a Store taken at one point in time.
type Snapshot struct {
	entries map[Key]Adjustment
}

// Get returns the adjustment for k, or Default when absent.
func (s Snapshot) Get(k Key) Adjustment {
	if a, ok := s.entries[k]; ok {
		return a
	}
	return Default()
}

// Len returns the number of stored adjustments.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// LoadLegacy stores entries keyed by the saved-template string format.
// Keys that do not parse are returned and otherwise ignored.
func (s *Store) LoadLegacy(m map[string]Adjustment) []string {
	var skipped []string
	for raw, a := range m {
		k, err := ParseLegacyKey(raw)
		if err != nil {
			skipped = append(skipped, raw)
			continue
		}
		s.Set(k, a)
	}
	return skipped
}
