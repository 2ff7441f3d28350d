// Package session persists conversation state as an expiring key-value
// record. The store is the only shared mutable resource in the pipeline;
// concurrent turns on one session resolve last-writer-wins.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

// DefaultTTL is the session time-to-live from last write.
const DefaultTTL = 24 * time.Hour

// ErrNotFound marks an absent or expired session. Callers treat it as "start
// a fresh session", never as a request failure.
var ErrNotFound = errors.New("session not found")

// Store is the session persistence contract. Implementations must make Get
// after TTL expiry return ErrNotFound; eviction itself belongs to the store,
// the pipeline never sweeps.
type Store interface {
	Get(ctx context.Context, sessionID string) (*chat.Session, error)
	Put(ctx context.Context, sess *chat.Session, ttl time.Duration) error
}
