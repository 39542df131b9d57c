package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresArchive keeps finished games in a single table. Move lists
// are stored as JSON text columns.
type PostgresArchive struct {
	db *sql.DB
}

func NewPostgresArchive(databaseURL string) (*PostgresArchive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresArchive{db: db}, nil
}

// EnsureSchema creates the games table if it does not exist yet.
func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS finished_games (
        session_id  TEXT PRIMARY KEY,
        white_kind  TEXT NOT NULL,
        black_kind  TEXT NOT NULL,
        level       INT NOT NULL DEFAULT 0,
        result      TEXT NOT NULL,
        method      TEXT NOT NULL,
        moves_uci   TEXT NOT NULL,
        moves_san   TEXT NOT NULL,
        pgn         TEXT NOT NULL,
        started_at  TIMESTAMPTZ NOT NULL,
        ended_at    TIMESTAMPTZ NOT NULL,
        duration_ms BIGINT NOT NULL DEFAULT 0
    )`
	if _, err := a.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (a *PostgresArchive) SaveGame(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	movesUCIRaw, _ := json.Marshal(rec.MovesUCI)
	movesSANRaw, _ := json.Marshal(rec.MovesSAN)

	q := `INSERT INTO finished_games (
        session_id, white_kind, black_kind, level,
        result, method, moves_uci, moves_san, pgn,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
      ) ON CONFLICT (session_id) DO UPDATE SET
        result=EXCLUDED.result,
        method=EXCLUDED.method,
        moves_uci=EXCLUDED.moves_uci,
        moves_san=EXCLUDED.moves_san,
        pgn=EXCLUDED.pgn,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := a.db.ExecContext(ctx, q,
		rec.SessionID, rec.WhiteKind, rec.BlackKind, rec.Level,
		rec.Result, rec.Method, string(movesUCIRaw), string(movesSANRaw), rec.PGN,
		rec.StartedAt, rec.EndedAt, rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", rec.SessionID, err)
	}
	return nil
}

func (a *PostgresArchive) RecentGames(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT session_id, white_kind, black_kind, level,
               result, method, moves_uci, moves_san, pgn,
               started_at, ended_at, duration_ms
          FROM finished_games ORDER BY ended_at DESC LIMIT $1`
	rows, err := a.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent games: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *PostgresArchive) GameBySession(ctx context.Context, sessionID string) (*Record, error) {
	q := `SELECT session_id, white_kind, black_kind, level,
               result, method, moves_uci, moves_san, pgn,
               started_at, ended_at, duration_ms
          FROM finished_games WHERE session_id = $1`
	row := a.db.QueryRowContext(ctx, q, sessionID)
	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("game by session %s: %w", sessionID, err)
	}
	return rec, nil
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var rec Record
	var movesUCIRaw, movesSANRaw string
	err := scan(
		&rec.SessionID, &rec.WhiteKind, &rec.BlackKind, &rec.Level,
		&rec.Result, &rec.Method, &movesUCIRaw, &movesSANRaw, &rec.PGN,
		&rec.StartedAt, &rec.EndedAt, &rec.DurationMS,
	)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(movesUCIRaw), &rec.MovesUCI)
	_ = json.Unmarshal([]byte(movesSANRaw), &rec.MovesSAN)
	return &rec, nil
}

func (a *PostgresArchive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
