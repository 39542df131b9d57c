package engine

import (
	"errors"
	"math/rand"

	"github.com/mkarhu/chessmatch/internal/rules"
)

// ErrNoLegalMoves is returned when the position has no moves to pick
// from (the game is already over).
var ErrNoLegalMoves = errors.New("no legal moves available")

// mateScore is the checkmate sentinel, far above any material sum.
const mateScore = 9999

var pieceValues = map[rules.PieceKind]int{
	rules.Pawn:   10,
	rules.Knight: 30,
	rules.Bishop: 30,
	rules.Rook:   50,
	rules.Queen:  90,
	rules.King:   900,
}

// Evaluate scores a position, White positive. Checkmate collapses to
// the mate sentinel against the side to move, dead draws to zero,
// anything else to the material balance.
func Evaluate(p rules.Position) int {
	if p.IsCheckmate() {
		if p.SideToMove() == rules.White {
			return -mateScore
		}
		return mateScore
	}
	if p.IsStalemate() || p.InsufficientMaterial() {
		return 0
	}

	score := 0
	for _, piece := range p.Pieces() {
		value := pieceValues[piece.Kind]
		if piece.Color == rules.White {
			score += value
		} else {
			score -= value
		}
	}
	return score
}

// Score runs the depth-bounded alpha-beta search and returns the
// minimax value of the position. Pruning only discards branches that
// cannot affect the root value, so the result is identical to an
// unpruned minimax at the same depth.
func Score(p rules.Position, depth int) int {
	return alphabeta(p, depth, -2*mateScore, 2*mateScore)
}

func alphabeta(p rules.Position, depth, alpha, beta int) int {
	if depth == 0 || p.IsCheckmate() || p.IsStalemate() || p.InsufficientMaterial() {
		return Evaluate(p)
	}

	moves := p.LegalMoves()
	if len(moves) == 0 {
		return Evaluate(p)
	}

	if p.SideToMove() == rules.White {
		best := -2 * mateScore
		for _, mv := range moves {
			value := alphabeta(p.Apply(mv), depth-1, alpha, beta)
			if value > best {
				best = value
			}
			if value > alpha {
				alpha = value
			}
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := 2 * mateScore
	for _, mv := range moves {
		value := alphabeta(p.Apply(mv), depth-1, alpha, beta)
		if value < best {
			best = value
		}
		if value < beta {
			beta = value
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

// SearchBestMove picks the move with the optimal minimax value at the
// given depth. Root order is shuffled before the search so ties among
// equally scored moves vary between games; the shuffle never changes
// the returned score.
func SearchBestMove(p rules.Position, depth int, r *rand.Rand) (rules.Move, int, error) {
	moves := p.LegalMoves()
	if len(moves) == 0 {
		return rules.Move{}, 0, ErrNoLegalMoves
	}
	if r != nil {
		r.Shuffle(len(moves), func(i, j int) {
			moves[i], moves[j] = moves[j], moves[i]
		})
	}

	maximizing := p.SideToMove() == rules.White
	alpha, beta := -2*mateScore, 2*mateScore
	best := moves[0]
	bestValue := 2 * mateScore
	if maximizing {
		bestValue = -2 * mateScore
	}

	for _, mv := range moves {
		value := alphabeta(p.Apply(mv), depth-1, alpha, beta)
		if maximizing {
			if value > bestValue {
				bestValue = value
				best = mv
			}
			if bestValue > alpha {
				alpha = bestValue
			}
		} else {
			if value < bestValue {
				bestValue = value
				best = mv
			}
			if bestValue < beta {
				beta = bestValue
			}
		}
	}
	return best, bestValue, nil
}
