// Package store provides the persistence backends behind the session
// manager: a TokenStore for the opaque session token and a StateCache
// for last-known-good user/cart snapshots. Implementations must treat
// absence as a normal condition, not an error.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// TokenStore persists the session token so it survives a restart.
type TokenStore interface {
	// Save stores the token, replacing any previous value.
	Save(ctx context.Context, token string) error
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// Clear removes the stored token. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}

// Snapshot is a cached copy of the session's user and cart. It is a
// fallback for when the network is unavailable and is never treated as
// authoritative.
type Snapshot struct {
	User    json.RawMessage `json:"user,omitempty"`
	Items   json.RawMessage `json:"items,omitempty"`
	Count   int             `json:"count"`
	SavedAt time.Time       `json:"saved_at"`
}

// StateCache stores and retrieves the latest Snapshot.
type StateCache interface {
	Put(ctx context.Context, s Snapshot) error
	// Get returns nil when no snapshot is cached.
	Get(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}
