// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Render job constants
const (
	// JobRetention is how long finished render jobs keep their pages in memory
	JobRetention = 30 * time.Minute

	// JobPruneInterval is how often finished render jobs are swept
	JobPruneInterval = 5 * time.Minute

	// RenderJobTimeout bounds a single generation run
	RenderJobTimeout = 10 * time.Minute
)

// Back design preview constants
const (
	// MaxPreviewSize is the largest edge accepted for back design previews
	MaxPreviewSize = 1200
)

// Catalog proxy constants
const (
	// CatalogRequestTimeout bounds proxied catalog searches
	CatalogRequestTimeout = 15 * time.Second
)
