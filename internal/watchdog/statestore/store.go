// Package statestore persists small per-instrument status maps across
// process restarts. Trackers read the whole map for their key at the start
// of a poll and write it back when something changed.
package statestore

// Store is the key/value persistence surface the trackers use to remember
// per-instrument status. Implementations must serialize writes when a store
// is shared across trackers.
type Store interface {
	// Get returns the status map stored under key. A key that was never
	// written yields an empty (non-nil) map.
	Get(key string) (map[string]string, error)
	// Set replaces the status map stored under key.
	Set(key string, value map[string]string) error
}
