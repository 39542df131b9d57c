// Package engine implements the difficulty-graded move selector: a
// depth-bounded alpha-beta search blended with calibrated random
// blunders per difficulty tier.
package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mkarhu/chessmatch/internal/rules"
)

// Engine selects moves for automated participants. The random source
// is owned by the engine and can be reseeded for deterministic tests.
type Engine struct {
	randMu sync.Mutex
	rand   *rand.Rand
}

func NewEngine() *Engine {
	return &Engine{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// SetRandomSeed pins the random stream, used by tests to make blunder
// rolls and root shuffles reproducible.
func (e *Engine) SetRandomSeed(seed int64) {
	e.randMu.Lock()
	e.rand = rand.New(rand.NewSource(seed))
	e.randMu.Unlock()
}

// random hands out a child generator so concurrent selections never
// contend on one rand.Rand.
func (e *Engine) random() *rand.Rand {
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// SelectMove produces the automated side's move for the position. A
// roll under the tier's blunder probability substitutes a uniformly
// random legal move; this is deliberate error injection, not a search
// failure.
func (e *Engine) SelectMove(p rules.Position, level int) (rules.Move, error) {
	settings, err := LevelSettings(level)
	if err != nil {
		return rules.Move{}, err
	}

	moves := p.LegalMoves()
	if len(moves) == 0 {
		return rules.Move{}, ErrNoLegalMoves
	}

	r := e.random()
	if r.Float64() < settings.BlunderProbability {
		return moves[r.Intn(len(moves))], nil
	}

	mv, _, err := SearchBestMove(p, settings.Depth, r)
	if err != nil {
		return rules.Move{}, fmt.Errorf("search at depth %d: %w", settings.Depth, err)
	}
	return mv, nil
}
