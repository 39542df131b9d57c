package matchdto

// CreateSessionRequest starts a match. Color is the caller's side;
// a zero Level selects the server default for automated opponents.
type CreateSessionRequest struct {
	Color        string `json:"color"`
	OpponentKind string `json:"opponent_kind,omitempty"`
	CallerKind   string `json:"caller_kind,omitempty"`
	Level        int    `json:"level,omitempty"`
}

type CreateSessionResponse struct {
	State SessionState `json:"state"`
}

// MoveRequest plays one move. ClaimWin asserts the move delivers
// checkmate; a wrong claim is reported but the move still stands.
type MoveRequest struct {
	Color    string `json:"color"`
	Move     string `json:"move"`
	ClaimWin bool   `json:"claim_win,omitempty"`
}

// MoveResponse outcome values.
const (
	MoveAccepted      = "accepted"
	MoveClaimRejected = "claim_rejected"
)

type MoveResponse struct {
	Outcome string       `json:"outcome"`
	Player  MoveState    `json:"player"`
	Replies []MoveState  `json:"replies,omitempty"`
	State   SessionState `json:"state"`
}

// TurnResponse outcome values mirror the synchronizer events.
const (
	TurnAdvanced = "advanced"
	TurnTimedOut = "timeout"
	TurnGameOver = "game_over"
)

type TurnResponse struct {
	Outcome string       `json:"outcome"`
	State   SessionState `json:"state"`
}

type JoinRequest struct {
	Color string `json:"color"`
}

type ResignRequest struct {
	Color string `json:"color"`
}

type ListSessionsResponse struct {
	Sessions []SessionState `json:"sessions"`
}

type ListGamesResponse struct {
	Games []GameRecord `json:"games"`
}
