// Package store mirrors live session state into Redis. The in-memory
// registry stays authoritative; the mirror exists so operators and
// sibling processes can list active matches without touching the
// server's internals.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a session id.
var ErrNotFound = errors.New("session snapshot not found")

// Snapshot is the externally visible summary of one session.
type Snapshot struct {
	ID         string    `json:"id"`
	FEN        string    `json:"fen"`
	TurnOwner  string    `json:"turn_owner"`
	Status     string    `json:"status"`
	Result     string    `json:"result,omitempty"`
	MoveCount  int       `json:"move_count"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SnapshotStore persists session summaries keyed by session id.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, id string) (Snapshot, error)
	List(ctx context.Context) ([]Snapshot, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
