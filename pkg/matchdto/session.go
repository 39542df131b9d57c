package matchdto

import "time"

// ParticipantState describes one seat.
type ParticipantState struct {
	Kind  string `json:"kind"`
	Level int    `json:"level,omitempty"`
}

// SessionState is the caller-facing session snapshot. Generation is
// the token to pass back when long-polling for the next turn.
type SessionState struct {
	SessionID  string           `json:"session_id"`
	FEN        string           `json:"fen"`
	TurnOwner  string           `json:"turn_owner"`
	Status     string           `json:"status"`
	Result     string           `json:"result,omitempty"`
	MovesUCI   []string         `json:"moves_uci"`
	MovesSAN   []string         `json:"moves_san"`
	MoveCount  int              `json:"move_count"`
	Generation uint64           `json:"generation"`
	White      ParticipantState `json:"white"`
	Black      ParticipantState `json:"black"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// MoveState reports one committed move in both notations.
type MoveState struct {
	Color string `json:"color"`
	UCI   string `json:"uci"`
	SAN   string `json:"san"`
}

// GameRecord is an archived finished game.
type GameRecord struct {
	SessionID  string    `json:"session_id"`
	WhiteKind  string    `json:"white_kind"`
	BlackKind  string    `json:"black_kind"`
	Level      int       `json:"level,omitempty"`
	Result     string    `json:"result"`
	Method     string    `json:"method"`
	MovesUCI   []string  `json:"moves_uci"`
	MovesSAN   []string  `json:"moves_san"`
	PGN        string    `json:"pgn"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMS int64     `json:"duration_ms"`
}
