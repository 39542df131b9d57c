// Package rules wraps the external chess rules library behind a small
// oracle surface. It is the only package that imports chess/v2; the
// rest of the server treats positions as opaque values.
package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Color identifies a chess side.
type Color int8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// ParseColor converts a textual color token.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("unknown color: %q", s)
	}
}

func colorFrom(c nchess.Color) Color {
	if c == nchess.Black {
		return Black
	}
	return White
}

// Move is a legal-move handle produced by this package. The zero value
// is not a playable move.
type Move struct {
	inner *nchess.Move
	uci   string
}

func wrapMove(mv *nchess.Move) Move {
	return Move{inner: mv, uci: strings.ToLower(mv.String())}
}

// UCI returns the coordinate notation, e.g. "e2e4" or "a7a8q".
func (m Move) UCI() string { return m.uci }

func (m Move) IsZero() bool { return m.inner == nil }

// Position is an immutable snapshot of a game position. Apply returns
// a new Position and never mutates the receiver, which makes it safe
// to fan out during search.
type Position struct {
	pos *nchess.Position
}

// StartingPosition returns the standard initial position.
func StartingPosition() Position {
	return Position{pos: nchess.NewGame().Position()}
}

// PositionFromFEN builds a position from Forsyth-Edwards notation.
func PositionFromFEN(fen string) (Position, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return Position{}, fmt.Errorf("parse fen: %w", err)
	}
	return Position{pos: nchess.NewGame(opt).Position()}, nil
}

// LegalMoves enumerates every legal move in the position.
func (p Position) LegalMoves() []Move {
	valid := p.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, mv := range valid {
		moves = append(moves, wrapMove(&mv))
	}
	return moves
}

// Apply plays a move obtained from this position. Moves from other
// positions produce undefined results; callers only pass moves from
// LegalMoves or ParseMove on the same position.
func (p Position) Apply(m Move) Position {
	return Position{pos: p.pos.Update(m.inner)}
}

func (p Position) IsCheckmate() bool {
	return p.pos.Status() == nchess.Checkmate
}

func (p Position) IsStalemate() bool {
	return p.pos.Status() == nchess.Stalemate
}

// InsufficientMaterial reports positions where neither side can force
// mate: bare kings, king and single minor piece, or same-colored
// bishops only.
func (p Position) InsufficientMaterial() bool {
	var knights, bishops int
	var bishopParity int
	bishopParitySet := false

	board := p.pos.Board()
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			sq := nchess.NewSquare(file, rank)
			piece := board.Piece(sq)
			if piece == nchess.NoPiece {
				continue
			}
			switch piece.Type() {
			case nchess.Pawn, nchess.Rook, nchess.Queen:
				return false
			case nchess.Knight:
				knights++
			case nchess.Bishop:
				parity := (int(file) + int(rank)) % 2
				if bishopParitySet && parity != bishopParity {
					return false
				}
				bishopParity = parity
				bishopParitySet = true
				bishops++
			}
		}
	}

	if knights == 0 {
		return true // kings alone, or bishops all on one color
	}
	return knights == 1 && bishops == 0
}

func (p Position) SideToMove() Color {
	return colorFrom(p.pos.Turn())
}

// FEN renders the position in Forsyth-Edwards notation.
func (p Position) FEN() string {
	return p.pos.String()
}

// SAN encodes a move of this position in standard algebraic notation.
func (p Position) SAN(m Move) string {
	return nchess.AlgebraicNotation{}.Encode(p.pos, m.inner)
}

// ParseMove decodes UCI first and falls back to SAN, then checks the
// result against the legal-move set so an illegal-but-parseable move
// is rejected here rather than downstream.
func (p Position) ParseMove(text string) (Move, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Move{}, fmt.Errorf("empty move text")
	}

	var decoded *nchess.Move
	if mv, err := (nchess.UCINotation{}).Decode(p.pos, strings.ToLower(raw)); err == nil {
		decoded = mv
	} else if mv, err := (nchess.AlgebraicNotation{}).Decode(p.pos, raw); err == nil {
		decoded = mv
	} else {
		return Move{}, fmt.Errorf("unparseable move %q: expected coordinate notation like e2e4", raw)
	}

	want := strings.ToLower(decoded.String())
	for _, legal := range p.pos.ValidMoves() {
		if strings.ToLower(legal.String()) == want {
			return wrapMove(&legal), nil
		}
	}
	return Move{}, fmt.Errorf("move %q is not legal in this position", raw)
}

// PieceKind identifies a piece type independent of color.
type PieceKind int8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is an occupied square reported by Pieces.
type Piece struct {
	Kind  PieceKind
	Color Color
}

var pieceKindFrom = map[nchess.PieceType]PieceKind{
	nchess.Pawn:   Pawn,
	nchess.Knight: Knight,
	nchess.Bishop: Bishop,
	nchess.Rook:   Rook,
	nchess.Queen:  Queen,
	nchess.King:   King,
}

// Pieces lists every piece on the board, in no particular order.
func (p Position) Pieces() []Piece {
	pieces := make([]Piece, 0, 32)
	board := p.pos.Board()
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			kind, ok := pieceKindFrom[piece.Type()]
			if !ok {
				continue
			}
			pieces = append(pieces, Piece{Kind: kind, Color: colorFrom(piece.Color())})
		}
	}
	return pieces
}

// Termination classifies how a finished game ended.
type Termination int

const (
	NotFinished Termination = iota
	TerminationCheckmate
	TerminationStalemate
	TerminationDraw
	TerminationResigned
)

// Board is the session-owned stateful game. Unlike Position it tracks
// full move history, which lets the library detect automatic draws
// (insufficient material, fivefold repetition, the 75-move rule).
type Board struct {
	game *nchess.Game
}

func NewBoard() *Board {
	return &Board{game: nchess.NewGame()}
}

func (b *Board) Position() Position {
	return Position{pos: b.game.Position()}
}

func (b *Board) ParseMove(text string) (Move, error) {
	return b.Position().ParseMove(text)
}

// Push applies a legal move to the board.
func (b *Board) Push(m Move) error {
	if m.IsZero() {
		return fmt.Errorf("cannot push zero move")
	}
	if err := b.game.Move(m.inner, nil); err != nil {
		return fmt.Errorf("apply move %s: %w", m.UCI(), err)
	}
	return nil
}

// Resign ends the game with a loss for the given color.
func (b *Board) Resign(c Color) {
	if c == White {
		b.game.Resign(nchess.White)
	} else {
		b.game.Resign(nchess.Black)
	}
}

func (b *Board) FEN() string {
	return b.game.FEN()
}

// PGN renders the full game record.
func (b *Board) PGN() string {
	return b.game.String()
}

// Termination reports the terminal state of the board, NotFinished
// while play continues.
func (b *Board) Termination() Termination {
	if b.game.Outcome() == nchess.NoOutcome {
		return NotFinished
	}
	switch b.game.Method() {
	case nchess.Checkmate:
		return TerminationCheckmate
	case nchess.Stalemate:
		return TerminationStalemate
	case nchess.Resignation:
		return TerminationResigned
	default:
		return TerminationDraw
	}
}

// Winner returns the winning color for decisive terminations.
func (b *Board) Winner() (Color, bool) {
	switch b.game.Outcome() {
	case nchess.WhiteWon:
		return White, true
	case nchess.BlackWon:
		return Black, true
	default:
		return White, false
	}
}
