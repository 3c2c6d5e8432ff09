// Package constants provides shared constants used across the codebase.
package constants

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// Request body constants
const (
	// MaxJSONBodySize caps JSON request bodies; templates may embed custom backs as data URLs (32MB)
	MaxJSONBodySize = 32 << 20

	// MaxUploadSize is the maximum image upload size in bytes (25MB)
	MaxUploadSize = 25 << 20
)
