// Package delivery exposes the match service over HTTP with JSON
// bodies. It translates between wire DTOs and the match package and
// holds no game logic of its own.
package delivery

import (
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mkarhu/chessmatch/internal/archive"
	"github.com/mkarhu/chessmatch/internal/match"
	"github.com/mkarhu/chessmatch/internal/rules"
	"github.com/mkarhu/chessmatch/pkg/matchdto"
)

type Server struct {
	manager *match.Manager
	games   archive.Archive
	logger  *zap.Logger
}

func NewServer(manager *match.Manager, games archive.Archive, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{manager: manager, games: games, logger: logger}
}

// Handler routes requests. Layout:
//
//	POST   /v1/sessions              create a match
//	GET    /v1/sessions              list live matches
//	GET    /v1/sessions/{id}         fetch one match
//	POST   /v1/sessions/{id}/join    claim the open seat
//	POST   /v1/sessions/{id}/moves   play a move
//	GET    /v1/sessions/{id}/turn    long-poll for the next turn
//	POST   /v1/sessions/{id}/resign  forfeit
//	DELETE /v1/sessions/{id}         evict
//	GET    /v1/games                 recent finished games
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/healthz" && method == fasthttp.MethodGet:
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case path == "/v1/sessions" && method == fasthttp.MethodPost:
		s.handleCreate(ctx)
	case path == "/v1/sessions" && method == fasthttp.MethodGet:
		s.handleList(ctx)
	case path == "/v1/games" && method == fasthttp.MethodGet:
		s.handleRecentGames(ctx)
	case strings.HasPrefix(path, "/v1/sessions/"):
		s.routeSession(ctx, method, strings.TrimPrefix(path, "/v1/sessions/"))
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, matchdto.DomainError{
			Code: matchdto.CodeBadRequest, Message: "unknown route",
		}, nil)
	}
}

func (s *Server) routeSession(ctx *fasthttp.RequestCtx, method, rest string) {
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && method == fasthttp.MethodGet:
		s.handleGet(ctx, id)
	case action == "" && method == fasthttp.MethodDelete:
		s.handleEvict(ctx, id)
	case action == "join" && method == fasthttp.MethodPost:
		s.handleJoin(ctx, id)
	case action == "moves" && method == fasthttp.MethodPost:
		s.handleMove(ctx, id)
	case action == "turn" && method == fasthttp.MethodGet:
		s.handleAwaitTurn(ctx, id)
	case action == "resign" && method == fasthttp.MethodPost:
		s.handleResign(ctx, id)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, matchdto.DomainError{
			Code: matchdto.CodeBadRequest, Message: "unknown route",
		}, nil)
	}
}

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	var req matchdto.CreateSessionRequest
	if !s.decode(ctx, &req) {
		return
	}

	color := rules.White
	if strings.TrimSpace(req.Color) != "" {
		c, err := rules.ParseColor(req.Color)
		if err != nil {
			s.badRequest(ctx, err.Error())
			return
		}
		color = c
	}

	params := match.CreateParams{CallerColor: color, Level: req.Level}
	if req.OpponentKind != "" {
		kind, err := match.ParsePlayerKind(req.OpponentKind)
		if err != nil {
			s.badRequest(ctx, err.Error())
			return
		}
		params.OpponentKind = kind
	}
	if req.CallerKind != "" {
		kind, err := match.ParsePlayerKind(req.CallerKind)
		if err != nil {
			s.badRequest(ctx, err.Error())
			return
		}
		params.CallerKind = kind
	}

	view, err := s.manager.Create(ctx, params)
	if err != nil {
		s.writeMatchError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, matchdto.CreateSessionResponse{State: toSessionState(view)})
}

func (s *Server) handleList(ctx *fasthttp.RequestCtx) {
	views := s.manager.List(ctx)
	resp := matchdto.ListSessionsResponse{Sessions: make([]matchdto.SessionState, 0, len(views))}
	for _, v := range views {
		resp.Sessions = append(resp.Sessions, toSessionState(v))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleGet(ctx *fasthttp.RequestCtx, id string) {
	view, err := s.manager.Get(ctx, id)
	if err != nil {
		s.writeMatchError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, matchdto.CreateSessionResponse{State: toSessionState(view)})
}

func (s *Server) handleJoin(ctx *fasthttp.RequestCtx, id string) {
	var req matchdto.JoinRequest
	if !s.decode(ctx, &req) {
		return
	}
	color, err := rules.ParseColor(req.Color)
	if err != nil {
		s.badRequest(ctx, err.Error())
		return
	}
	view, err := s.manager.Join(ctx, id, color)
	if err != nil {
		s.writeMatchError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, matchdto.CreateSessionResponse{State: toSessionState(view)})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx, id string) {
	var req matchdto.MoveRequest
	if !s.decode(ctx, &req) {
		return
	}
	color, err := rules.ParseColor(req.Color)
	if err != nil {
		s.badRequest(ctx, err.Error())
		return
	}

	res, err := s.manager.SubmitMove(ctx, id, color, req.Move, req.ClaimWin)
	if err != nil {
		s.writeMatchError(ctx, err)
		return
	}

	outcome := matchdto.MoveAccepted
	if res.ClaimRejected {
		outcome = matchdto.MoveClaimRejected
	}
	resp := matchdto.MoveResponse{
		Outcome: outcome,
		Player:  toMoveState(res.Player),
		State:   toSessionState(res.View),
	}
	for _, r := range res.Replies {
		resp.Replies = append(resp.Replies, toMoveState(r))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleAwaitTurn(ctx *fasthttp.RequestCtx, id string) {
	since := uint64(0)
	if v := ctx.QueryArgs().Peek("since"); len(v) > 0 {
		n, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			s.badRequest(ctx, "since must be a non-negative integer")
			return
		}
		since = n
	}
	var timeout time.Duration
	if v := ctx.QueryArgs().Peek("timeout_sec"); len(v) > 0 {
		n, err := strconv.Atoi(string(v))
		if err != nil || n < 0 {
			s.badRequest(ctx, "timeout_sec must be a non-negative integer")
			return
		}
		timeout = time.Duration(n) * time.Second
	}

	view, event, err := s.manager.AwaitTurn(ctx, id, since, timeout)
	if err != nil {
		s.writeMatchError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, matchdto.TurnResponse{
		Outcome: string(event),
		State:   toSessionState(view),
	})
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx, id string) {
	var req matchdto.ResignRequest
	if !s.decode(ctx, &req) {
		return
	}
	color, err := rules.ParseColor(req.Color)
	if err != nil {
		s.badRequest(ctx, err.Error())
		return
	}
	view, err := s.manager.Resign(ctx, id, color)
	if err != nil {
		s.writeMatchError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, matchdto.CreateSessionResponse{State: toSessionState(view)})
}

func (s *Server) handleEvict(ctx *fasthttp.RequestCtx, id string) {
	if err := s.manager.Evict(ctx, id); err != nil {
		s.writeMatchError(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) handleRecentGames(ctx *fasthttp.RequestCtx) {
	if s.games == nil {
		s.writeJSON(ctx, fasthttp.StatusOK, matchdto.ListGamesResponse{})
		return
	}
	limit := 20
	if v := ctx.QueryArgs().Peek("limit"); len(v) > 0 {
		if n, err := strconv.Atoi(string(v)); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.games.RecentGames(ctx, limit)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusInternalServerError, matchdto.DomainError{
			Code: matchdto.CodeInternal, Message: "archive unavailable", Retryable: true,
		}, nil)
		return
	}
	resp := matchdto.ListGamesResponse{Games: make([]matchdto.GameRecord, 0, len(records))}
	for _, rec := range records {
		resp.Games = append(resp.Games, toGameRecord(rec))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}
