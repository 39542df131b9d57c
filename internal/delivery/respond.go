package delivery

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mkarhu/chessmatch/internal/archive"
	"github.com/mkarhu/chessmatch/internal/engine"
	"github.com/mkarhu/chessmatch/internal/match"
	"github.com/mkarhu/chessmatch/pkg/matchdto"
)

func (s *Server) decode(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.badRequest(ctx, "malformed json body")
		return false
	}
	return true
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("response_encode_failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, derr matchdto.DomainError, illegal *matchdto.IllegalMoveDetails) {
	s.writeJSON(ctx, status, matchdto.ErrorResponse{Error: derr, IllegalMove: illegal})
}

func (s *Server) badRequest(ctx *fasthttp.RequestCtx, msg string) {
	s.writeError(ctx, fasthttp.StatusBadRequest, matchdto.DomainError{
		Code: matchdto.CodeBadRequest, Message: msg,
	}, nil)
}

// writeMatchError maps service errors onto HTTP statuses and stable
// error codes.
func (s *Server) writeMatchError(ctx *fasthttp.RequestCtx, err error) {
	var moveErr *match.MoveError
	switch {
	case errors.As(err, &moveErr):
		s.writeError(ctx, fasthttp.StatusUnprocessableEntity, matchdto.DomainError{
			Code: matchdto.CodeIllegalMove, Message: moveErr.Error(), Retryable: true,
		}, &matchdto.IllegalMoveDetails{
			Attempted:  moveErr.Attempted,
			Reason:     moveErr.Reason,
			LegalMoves: moveErr.Examples,
		})
	case errors.Is(err, match.ErrSessionNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, matchdto.DomainError{
			Code: matchdto.CodeSessionNotFound, Message: err.Error(),
		}, nil)
	case errors.Is(err, match.ErrNotYourTurn):
		s.writeError(ctx, fasthttp.StatusConflict, matchdto.DomainError{
			Code: matchdto.CodeNotYourTurn, Message: err.Error(), Retryable: true,
		}, nil)
	case errors.Is(err, match.ErrGameFinished):
		s.writeError(ctx, fasthttp.StatusConflict, matchdto.DomainError{
			Code: matchdto.CodeGameFinished, Message: err.Error(),
		}, nil)
	case errors.Is(err, engine.ErrInvalidLevel):
		s.writeError(ctx, fasthttp.StatusBadRequest, matchdto.DomainError{
			Code: matchdto.CodeInvalidLevel, Message: err.Error(),
		}, nil)
	case errors.Is(err, match.ErrTooManySessions):
		s.writeError(ctx, fasthttp.StatusServiceUnavailable, matchdto.DomainError{
			Code: matchdto.CodeSessionLimit, Message: err.Error(), Retryable: true,
		}, nil)
	default:
		s.logger.Error("request_failed", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, matchdto.DomainError{
			Code: matchdto.CodeInternal, Message: "internal error", Retryable: true,
		}, nil)
	}
}

func toSessionState(v match.View) matchdto.SessionState {
	return matchdto.SessionState{
		SessionID:  v.ID,
		FEN:        v.FEN,
		TurnOwner:  v.TurnOwner,
		Status:     string(v.Status),
		Result:     v.Result,
		MovesUCI:   v.MovesUCI,
		MovesSAN:   v.MovesSAN,
		MoveCount:  v.MoveCount,
		Generation: v.Generation,
		White:      matchdto.ParticipantState{Kind: string(v.White.Kind), Level: v.White.Level},
		Black:      matchdto.ParticipantState{Kind: string(v.Black.Kind), Level: v.Black.Level},
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func toMoveState(m match.MovePlayed) matchdto.MoveState {
	return matchdto.MoveState{Color: m.Color.String(), UCI: m.UCI, SAN: m.SAN}
}

func toGameRecord(rec *archive.Record) matchdto.GameRecord {
	return matchdto.GameRecord{
		SessionID:  rec.SessionID,
		WhiteKind:  rec.WhiteKind,
		BlackKind:  rec.BlackKind,
		Level:      rec.Level,
		Result:     rec.Result,
		Method:     rec.Method,
		MovesUCI:   rec.MovesUCI,
		MovesSAN:   rec.MovesSAN,
		PGN:        rec.PGN,
		StartedAt:  rec.StartedAt,
		EndedAt:    rec.EndedAt,
		DurationMS: rec.DurationMS,
	}
}
