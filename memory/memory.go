// Package memory holds the bounded, expiring window of prior conversation
// turns per session.
package memory

import "context"

// Turn is one (input, output) exchange. The JSON field names are the
// persisted-state contract shared with any pre-existing store.
type Turn struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Timestamp string `json:"timestamp"`
}

// Store persists session history. Callers treat failures as fail-open:
// a failed Append degrades to stateless behavior and a failed Load reads
// as empty history; neither should abort the user-visible turn.
type Store interface {
	// Append adds a turn, truncates the session to the configured window,
	// and resets the expiry clock.
	Append(ctx context.Context, sessionID string, turn Turn) error
	// Load returns the session's turns oldest-first, empty when the
	// session is absent or expired.
	Load(ctx context.Context, sessionID string) ([]Turn, error)
}

const keyPrefix = "conversation:"

// sessionKey namespaces session ids to avoid collisions with other uses
// of the same store.
func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}
