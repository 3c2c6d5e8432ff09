package templates

import "sync"

var (
	backendMu       sync.RWMutex
	postgresBackend func() Store
	memoryBackend   = NewMemoryStore()
)

// RegisterPostgresBackend registers the PostgreSQL store constructor.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(f func() Store) {
	backendMu.Lock()
	defer backendMu.Unlock()
	postgresBackend = f
}

// IsPersistent reports whether templates survive a restart.
func IsPersistent() bool {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return postgresBackend != nil
}

// GetStore returns the PostgreSQL store when one is registered and the
// process-wide memory store otherwise.
func GetStore() Store {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if postgresBackend != nil {
		return postgresBackend()
	}
	return memoryBackend
}
