package templates

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a template id does not exist.
var ErrNotFound = errors.New("template not found")

// Store persists template configurations.
type Store interface {
	List(ctx context.Context) ([]Config, error)
	Get(ctx context.Context, id string) (Config, error)
	// Save creates or replaces a template. An empty ID creates a new one.
	Save(ctx context.Context, cfg Config) (Config, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps templates in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]Config
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]Config),
		now:       time.Now,
	}
}

// List returns all templates ordered by creation time.
func (m *MemoryStore) List(_ context.Context) ([]Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Config, 0, len(m.templates))
	for _, c := range m.templates {
		out = append(out, c)
	}
	SortByCreated(out)
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.templates[id]
	if !ok {
		return Config{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) Save(_ context.Context, cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var existing *Config
	if prev, ok := m.templates[cfg.ID]; ok && cfg.ID != "" {
		existing = &prev
	}
	saved := Stamp(cfg, existing, m.now().UTC())
	m.templates[saved.ID] = saved
	return saved, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// SortByCreated orders templates oldest first, breaking ties by id.
func SortByCreated(cs []Config) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}
