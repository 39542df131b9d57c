package matchdto

// DomainError is the wire-level error envelope. Retryable tells the
// caller whether the same request can simply be sent again.
type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "match service error"
}

// Error codes returned by the HTTP surface.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeNotYourTurn     = "NOT_YOUR_TURN"
	CodeGameFinished    = "GAME_FINISHED"
	CodeIllegalMove     = "ILLEGAL_MOVE"
	CodeInvalidLevel    = "INVALID_LEVEL"
	CodeSessionLimit    = "SESSION_LIMIT"
	CodeInternal        = "INTERNAL"
)

// IllegalMoveDetails accompanies an ILLEGAL_MOVE error so the caller
// can correct itself without probing.
type IllegalMoveDetails struct {
	Attempted  string   `json:"attempted"`
	Reason     string   `json:"reason"`
	LegalMoves []string `json:"legal_moves,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error       DomainError         `json:"error"`
	IllegalMove *IllegalMoveDetails `json:"illegal_move,omitempty"`
}
