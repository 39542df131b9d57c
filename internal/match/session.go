package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkarhu/chessmatch/internal/engine"
	"github.com/mkarhu/chessmatch/internal/rules"
)

// maxAutomatedPlies caps the synchronous reply chain inside one call.
// Automatic draw detection ends well-formed games long before this;
// hitting the cap means something is wrong and the session is failed
// rather than left spinning.
const maxAutomatedPlies = 600

// Session is one match. All mutation goes through the session mutex,
// which is held across the full move transaction including the
// automated reply, so observers never see a half-applied turn.
type Session struct {
	id     string
	engine *engine.Engine
	logger *zap.Logger

	mu           sync.Mutex
	board        *rules.Board
	participants map[rules.Color]Participant
	status       Status
	result       string
	history      []HistoryEntry
	syncer       *turnSynchronizer
	createdAt    time.Time
	updatedAt    time.Time
}

func newSession(id string, eng *engine.Engine, white, black Participant, logger *zap.Logger) *Session {
	now := time.Now()
	return &Session{
		id:     id,
		engine: eng,
		logger: logger,
		board:  rules.NewBoard(),
		participants: map[rules.Color]Participant{
			rules.White: white,
			rules.Black: black,
		},
		status:    StatusInProgress,
		syncer:    newTurnSynchronizer(),
		createdAt: now,
		updatedAt: now,
	}
}

// ID is immutable and safe to read without the lock.
func (s *Session) ID() string { return s.id }

// View returns a consistent snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	uci := make([]string, len(s.history))
	san := make([]string, len(s.history))
	for i, h := range s.history {
		uci[i] = h.UCI
		san[i] = h.SAN
	}
	white := s.participants[rules.White]
	black := s.participants[rules.Black]
	return View{
		ID:         s.id,
		FEN:        s.board.FEN(),
		TurnOwner:  s.board.Position().SideToMove().String(),
		Status:     s.status,
		Result:     s.result,
		MovesUCI:   uci,
		MovesSAN:   san,
		MoveCount:  len(s.history),
		Generation: s.syncer.generation(),
		White:      ParticipantView{Kind: white.Kind, Level: white.Level},
		Black:      ParticipantView{Kind: black.Kind, Level: black.Level},
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *Session) turnOwnerLocked() rules.Color {
	return s.board.Position().SideToMove()
}

// ApplyMove runs the full move transaction for one caller turn:
// validate ownership, parse and commit the move, settle any win claim,
// then play automated replies until a non-automated seat is to move or
// the game ends. The result reflects everything that happened before
// control returns.
func (s *Session) ApplyMove(ctx context.Context, color rules.Color, moveText string, claimWin bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return nil, fmt.Errorf("session %s: %w", s.id, ErrGameFinished)
	}
	if s.turnOwnerLocked() != color {
		return nil, fmt.Errorf("session %s: %s to move: %w", s.id, s.turnOwnerLocked(), ErrNotYourTurn)
	}

	mv, err := s.board.ParseMove(moveText)
	if err != nil {
		return nil, &MoveError{
			Attempted: moveText,
			Reason:    err.Error(),
			Examples:  s.sampleLegalLocked(3),
		}
	}

	played, err := s.commitLocked(mv, false)
	if err != nil {
		return nil, err
	}

	claimRejected := false
	if claimWin && s.status != StatusCheckmate {
		claimRejected = true
		s.logger.Info("win_claim_rejected",
			zap.String("session_id", s.id),
			zap.String("move", played.UCI),
			zap.String("status", string(s.status)))
	}

	result := &MoveResult{Player: played, ClaimRejected: claimRejected}
	result.Replies = s.playAutomatedLocked(ctx)
	result.View = s.viewLocked()
	return result, nil
}

// sampleLegalLocked returns up to n legal moves in UCI as correction
// hints for a rejected move.
func (s *Session) sampleLegalLocked(n int) []string {
	legal := s.board.Position().LegalMoves()
	if len(legal) < n {
		n = len(legal)
	}
	out := make([]string, 0, n)
	for _, mv := range legal[:n] {
		out = append(out, mv.UCI())
	}
	return out
}

// commitLocked pushes a parsed move, appends history, refreshes the
// terminal status and wakes waiters. The generation advances exactly
// once per accepted move.
func (s *Session) commitLocked(mv rules.Move, automated bool) (MovePlayed, error) {
	pos := s.board.Position()
	played := MovePlayed{
		Color: pos.SideToMove(),
		UCI:   mv.UCI(),
		SAN:   pos.SAN(mv),
	}
	if err := s.board.Push(mv); err != nil {
		return MovePlayed{}, fmt.Errorf("session %s: %w", s.id, err)
	}

	s.history = append(s.history, HistoryEntry{
		Ply:       len(s.history) + 1,
		Color:     played.Color,
		UCI:       played.UCI,
		SAN:       played.SAN,
		Automated: automated,
		PlayedAt:  time.Now(),
	})
	s.updatedAt = time.Now()
	s.refreshStatusLocked()
	s.syncer.advance()
	if s.status.Terminal() {
		s.syncer.shut()
	}
	return played, nil
}

func (s *Session) refreshStatusLocked() {
	switch s.board.Termination() {
	case rules.NotFinished:
		return
	case rules.TerminationCheckmate:
		s.status = StatusCheckmate
	case rules.TerminationStalemate:
		s.status = StatusStalemate
	case rules.TerminationResigned:
		s.status = StatusResigned
	default:
		s.status = StatusDraw
	}
	if winner, ok := s.board.Winner(); ok {
		s.result = winner.String()
	} else {
		s.result = "draw"
	}
}

// playAutomatedLocked moves for automated seats until the turn reaches
// a non-automated participant or the game ends. An engine failure is
// fatal to the session; callers observe StatusError, never a stalled
// in-progress game.
func (s *Session) playAutomatedLocked(ctx context.Context) []MovePlayed {
	var replies []MovePlayed
	for !s.status.Terminal() {
		seat := s.participants[s.turnOwnerLocked()]
		if seat.Kind != KindAutomated {
			return replies
		}
		if len(s.history) >= maxAutomatedPlies {
			s.failLocked(fmt.Errorf("automated reply chain exceeded %d plies", maxAutomatedPlies))
			return replies
		}
		if err := ctx.Err(); err != nil {
			s.failLocked(fmt.Errorf("move transaction canceled: %w", err))
			return replies
		}

		mv, err := s.engine.SelectMove(s.board.Position(), seat.Level)
		if err != nil {
			s.failLocked(fmt.Errorf("select move at level %d: %w", seat.Level, err))
			return replies
		}
		played, err := s.commitLocked(mv, true)
		if err != nil {
			s.failLocked(err)
			return replies
		}
		replies = append(replies, played)
	}
	return replies
}

// failLocked marks the session broken. The error status is terminal
// like any other and wakes every waiter.
func (s *Session) failLocked(err error) {
	s.logger.Error("session_failed",
		zap.String("session_id", s.id),
		zap.Error(err))
	s.status = StatusError
	s.updatedAt = time.Now()
	s.syncer.advance()
	s.syncer.shut()
}

// Resign ends the game in favor of the opponent. Resigning is allowed
// off-turn; it only fails once the game is already over.
func (s *Session) Resign(color rules.Color) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return View{}, fmt.Errorf("session %s: %w", s.id, ErrGameFinished)
	}
	s.board.Resign(color)
	s.status = StatusResigned
	s.result = color.Other().String()
	s.updatedAt = time.Now()
	s.syncer.advance()
	s.syncer.shut()
	return s.viewLocked(), nil
}

// Join marks a pending seat as taken. Joining an already joined seat
// is idempotent.
func (s *Session) Join(color rules.Color) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.participants[color]
	if !ok {
		return View{}, fmt.Errorf("session %s: no %s seat", s.id, color)
	}
	seat.Joined = true
	s.participants[color] = seat
	s.updatedAt = time.Now()
	return s.viewLocked(), nil
}

// AwaitTurn blocks until the session generation passes since, the
// timeout elapses or the game ends. A stale generation returns
// immediately with the current view; a timeout is a normal outcome.
func (s *Session) AwaitTurn(ctx context.Context, since uint64, timeout time.Duration) (View, TurnEvent) {
	_, outcome := s.syncer.wait(ctx, since, timeout)
	view := s.View()
	if view.Status.Terminal() || outcome == WaitClosed {
		return view, TurnGameOver
	}
	if outcome == WaitAdvanced {
		return view, TurnAdvanced
	}
	return view, TurnTimedOut
}

// PGN renders the game record so far.
func (s *Session) PGN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.PGN()
}

// History returns a copy of the accepted-move log.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// close evicts the session: waiters wake with a game-over event.
func (s *Session) close() {
	s.syncer.shut()
}

// startAutomated plays the opening automated moves of a fresh session,
// covering the case where the automated seat holds White.
func (s *Session) startAutomated(ctx context.Context) []MovePlayed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playAutomatedLocked(ctx)
}
