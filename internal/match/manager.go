package match

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkarhu/chessmatch/internal/archive"
	"github.com/mkarhu/chessmatch/internal/engine"
	"github.com/mkarhu/chessmatch/internal/rules"
	"github.com/mkarhu/chessmatch/internal/store"
)

// ManagerConfig tunes the registry.
type ManagerConfig struct {
	DefaultLevel int
	WaitTimeout  time.Duration
	MaxSessions  int
}

// Manager owns the live session registry. Lookups take a read lock on
// the map only; per-session work happens under each session's own
// mutex, so load on one match never blocks the others.
type Manager struct {
	engine *engine.Engine
	logger *zap.Logger
	cfg    ManagerConfig

	mu       sync.RWMutex
	sessions map[string]*Session

	snapshots store.SnapshotStore
	games     archive.Archive
}

func NewManager(eng *engine.Engine, logger *zap.Logger, cfg ManagerConfig) (*Manager, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLevel == 0 {
		cfg.DefaultLevel = engine.DefaultLevel
	}
	if _, err := engine.LevelSettings(cfg.DefaultLevel); err != nil {
		return nil, fmt.Errorf("default level: %w", err)
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	return &Manager{
		engine:   eng,
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}, nil
}

// AttachSnapshots enables the Redis mirror. Mirror writes are
// best-effort; a failed write logs a warning and the match plays on.
func (m *Manager) AttachSnapshots(s store.SnapshotStore) { m.snapshots = s }

// AttachArchive enables persistence of finished games.
func (m *Manager) AttachArchive(a archive.Archive) { m.games = a }

// CreateParams describes a new match. A zero Level means the default
// difficulty; explicit out-of-range levels are rejected.
type CreateParams struct {
	CallerKind   PlayerKind
	CallerColor  rules.Color
	OpponentKind PlayerKind
	Level        int
}

// Create registers a new session. When the automated seat holds White
// its opening moves are played before Create returns, so the caller
// always receives a position where it is their turn or the game is
// over.
func (m *Manager) Create(ctx context.Context, p CreateParams) (View, error) {
	if p.CallerKind == "" {
		p.CallerKind = KindHuman
	}
	if p.OpponentKind == "" {
		p.OpponentKind = KindAutomated
	}

	level := p.Level
	if p.OpponentKind == KindAutomated {
		if level == 0 {
			level = m.cfg.DefaultLevel
		}
		if _, err := engine.LevelSettings(level); err != nil {
			return View{}, err
		}
	} else {
		level = 0
	}

	caller := Participant{Kind: p.CallerKind, Joined: true}
	opponent := Participant{Kind: p.OpponentKind, Level: level, Joined: p.OpponentKind == KindAutomated}

	var white, black Participant
	if p.CallerColor == rules.White {
		white, black = caller, opponent
	} else {
		white, black = opponent, caller
	}

	id := uuid.NewString()
	s := newSession(id, m.engine, white, black, m.logger)

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return View{}, ErrTooManySessions
	}
	m.sessions[id] = s
	m.mu.Unlock()

	opening := s.startAutomated(ctx)
	view := s.View()
	m.mirror(ctx, view)

	m.logger.Info("session_created",
		zap.String("session_id", id),
		zap.String("caller_color", p.CallerColor.String()),
		zap.String("opponent_kind", string(p.OpponentKind)),
		zap.Int("level", level),
		zap.Int("opening_plies", len(opening)))
	return view, nil
}

func (m *Manager) session(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Get returns the current view of a session.
func (m *Manager) Get(_ context.Context, id string) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// Join claims the open seat of a session created against a human or
// remote-agent opponent.
func (m *Manager) Join(ctx context.Context, id string, color rules.Color) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	view, err := s.Join(color)
	if err != nil {
		return View{}, err
	}
	m.mirror(ctx, view)
	return view, nil
}

// SubmitMove plays one caller move, including any synchronous
// automated reply, then mirrors and archives the resulting state.
func (m *Manager) SubmitMove(ctx context.Context, id string, color rules.Color, moveText string, claimWin bool) (*MoveResult, error) {
	s, err := m.session(id)
	if err != nil {
		return nil, err
	}
	res, err := s.ApplyMove(ctx, color, moveText, claimWin)
	if err != nil {
		return nil, err
	}

	m.mirror(ctx, res.View)
	m.archiveIfFinished(ctx, s, res.View)

	m.logger.Info("move_applied",
		zap.String("session_id", id),
		zap.String("color", color.String()),
		zap.String("move", res.Player.UCI),
		zap.Int("replies", len(res.Replies)),
		zap.Bool("claim_rejected", res.ClaimRejected),
		zap.String("status", string(res.View.Status)))
	return res, nil
}

// AwaitTurn long-polls for the next accepted move. since is the
// generation from the caller's last view; a stale value returns
// immediately.
func (m *Manager) AwaitTurn(ctx context.Context, id string, since uint64, timeout time.Duration) (View, TurnEvent, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, "", err
	}
	if timeout <= 0 {
		timeout = m.cfg.WaitTimeout
	}
	view, event := s.AwaitTurn(ctx, since, timeout)
	return view, event, nil
}

// Resign forfeits the game for the given color.
func (m *Manager) Resign(ctx context.Context, id string, color rules.Color) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	view, err := s.Resign(color)
	if err != nil {
		return View{}, err
	}

	m.mirror(ctx, view)
	m.archiveIfFinished(ctx, s, view)

	m.logger.Info("session_resigned",
		zap.String("session_id", id),
		zap.String("color", color.String()))
	return view, nil
}

// List snapshots every live session. Order is unspecified.
func (m *Manager) List(_ context.Context) []View {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	views := make([]View, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, s.View())
	}
	return views
}

// Evict drops a session from the registry and wakes its waiters.
func (m *Manager) Evict(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	s.close()
	if m.snapshots != nil {
		if err := m.snapshots.Delete(ctx, id); err != nil {
			m.logger.Warn("snapshot_delete_failed",
				zap.String("session_id", id), zap.Error(err))
		}
	}
	m.logger.Info("session_evicted", zap.String("session_id", id))
	return nil
}

func (m *Manager) mirror(ctx context.Context, view View) {
	if m.snapshots == nil {
		return
	}
	snap := store.Snapshot{
		ID:         view.ID,
		FEN:        view.FEN,
		TurnOwner:  view.TurnOwner,
		Status:     string(view.Status),
		Result:     view.Result,
		MoveCount:  view.MoveCount,
		Generation: view.Generation,
		UpdatedAt:  view.UpdatedAt,
	}
	if err := m.snapshots.Save(ctx, snap); err != nil {
		m.logger.Warn("snapshot_save_failed",
			zap.String("session_id", view.ID), zap.Error(err))
	}
}

func (m *Manager) archiveIfFinished(ctx context.Context, s *Session, view View) {
	if m.games == nil || !view.Status.Terminal() || view.Status == StatusError {
		return
	}

	level := 0
	if view.White.Kind == KindAutomated {
		level = view.White.Level
	} else if view.Black.Kind == KindAutomated {
		level = view.Black.Level
	}

	duration := view.UpdatedAt.Sub(view.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	rec := &archive.Record{
		SessionID:  view.ID,
		WhiteKind:  string(view.White.Kind),
		BlackKind:  string(view.Black.Kind),
		Level:      level,
		Result:     view.Result,
		Method:     strings.ToLower(string(view.Status)),
		MovesUCI:   view.MovesUCI,
		MovesSAN:   view.MovesSAN,
		PGN:        s.PGN(),
		StartedAt:  view.CreatedAt,
		EndedAt:    view.UpdatedAt,
		DurationMS: duration,
	}
	if err := m.games.SaveGame(ctx, rec); err != nil {
		m.logger.Warn("archive_save_failed",
			zap.String("session_id", view.ID), zap.Error(err))
	}
}
