package domain

import "encoding/json"

// CacheEntry is a single versioned cache record. Entries are immutable once
// written; a write replaces, never merges.
type CacheEntry struct {
	Data     json.RawMessage `json:"data"`
	StoredAt int64           `json:"stored_at"`
	// ExpiresAt is a unix-nano deadline. Zero means the entry never expires.
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Version   string `json:"version"`
}
