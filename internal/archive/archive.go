// Package archive persists finished games. Live sessions never touch
// it; the manager writes a record once when a session reaches a
// terminal state.
package archive

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no archived game matches the query.
var ErrNotFound = errors.New("archived game not found")

// Record is one finished game.
type Record struct {
	SessionID  string
	WhiteKind  string
	BlackKind  string
	Level      int
	Result     string
	Method     string
	MovesUCI   []string
	MovesSAN   []string
	PGN        string
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMS int64
}

// Archive stores finished games. SaveGame upserts on session id, so
// replays of the same terminal event are harmless.
type Archive interface {
	SaveGame(ctx context.Context, rec *Record) error
	RecentGames(ctx context.Context, limit int) ([]*Record, error)
	GameBySession(ctx context.Context, sessionID string) (*Record, error)
	Close() error
}
