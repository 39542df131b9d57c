package match

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkarhu/chessmatch/internal/rules"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrNotYourTurn     = errors.New("not your turn to move")
	ErrGameFinished    = errors.New("game already finished")
	ErrTooManySessions = errors.New("session limit reached")
)

// MoveError is the actionable illegal-move rejection: what was
// attempted, why it failed, and a few currently legal alternatives so
// the caller can self-correct without another round trip.
type MoveError struct {
	Attempted string
	Reason    string
	Examples  []string
}

func (e *MoveError) Error() string {
	if len(e.Examples) == 0 {
		return fmt.Sprintf("illegal move %q: %s", e.Attempted, e.Reason)
	}
	return fmt.Sprintf("illegal move %q: %s (try one of: %s)",
		e.Attempted, e.Reason, strings.Join(e.Examples, ", "))
}

// PlayerKind classifies who controls a seat.
type PlayerKind string

const (
	KindHuman     PlayerKind = "human"
	KindAutomated PlayerKind = "automated"
	KindAgent     PlayerKind = "agent"
)

// ParsePlayerKind converts a textual kind token.
func ParsePlayerKind(s string) (PlayerKind, error) {
	switch PlayerKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindHuman:
		return KindHuman, nil
	case KindAutomated:
		return KindAutomated, nil
	case KindAgent:
		return KindAgent, nil
	default:
		return "", fmt.Errorf("unknown player kind: %q", s)
	}
}

// Participant describes one seat of a session.
type Participant struct {
	Kind   PlayerKind
	Level  int // difficulty tier, automated seats only
	Joined bool
}

// Status is the session lifecycle state. Once terminal it never
// changes again.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCheckmate  Status = "CHECKMATE"
	StatusStalemate  Status = "STALEMATE"
	StatusDraw       Status = "DRAW"
	StatusResigned   Status = "RESIGNED"
	StatusError      Status = "ERROR"
)

func (s Status) Terminal() bool {
	return s != StatusInProgress
}

// HistoryEntry is one accepted move. The history slice is append-only
// and never reordered.
type HistoryEntry struct {
	Ply       int
	Color     rules.Color
	UCI       string
	SAN       string
	Automated bool
	PlayedAt  time.Time
}

// ParticipantView is the caller-facing seat description.
type ParticipantView struct {
	Kind  PlayerKind
	Level int
}

// View is a consistent snapshot of a session. It carries everything a
// caller needs to act without remembering prior state, including the
// synchronizer generation for long-poll waits.
type View struct {
	ID         string
	FEN        string
	TurnOwner  string
	Status     Status
	Result     string // "white", "black" or "draw" once finished
	MovesUCI   []string
	MovesSAN   []string
	MoveCount  int
	Generation uint64
	White      ParticipantView
	Black      ParticipantView
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MovePlayed reports one committed move in both notations.
type MovePlayed struct {
	Color rules.Color
	UCI   string
	SAN   string
}

// MoveResult is the outcome of an accepted ApplyMove. ClaimRejected
// means the move committed but the asserted checkmate did not hold.
type MoveResult struct {
	Player        MovePlayed
	Replies       []MovePlayed
	ClaimRejected bool
	View          View
}

// TurnEvent is the outcome of AwaitTurn. A timeout is an expected
// result, not an error; the caller simply polls again.
type TurnEvent string

const (
	TurnAdvanced TurnEvent = "advanced"
	TurnTimedOut TurnEvent = "timeout"
	TurnGameOver TurnEvent = "game_over"
)
