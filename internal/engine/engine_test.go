package engine

import (
	"errors"
	"testing"

	"github.com/mkarhu/chessmatch/internal/rules"
)

func TestSelectMoveInvalidLevel(t *testing.T) {
	e := NewEngine()
	_, err := e.SelectMove(rules.StartingPosition(), 0)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestSelectMoveNoLegalMoves(t *testing.T) {
	e := NewEngine()
	p, err := rules.PositionFromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("fen: %v", err)
	}
	if _, err := e.SelectMove(p, 5); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves, got %v", err)
	}
}

func TestSelectMoveBlunderFreeTakesHangingQueen(t *testing.T) {
	// Level 8 never blunders, so the rook must capture the queen.
	p, err := rules.PositionFromFEN("k7/8/8/3q4/8/8/3R4/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("fen: %v", err)
	}
	e := NewEngine()
	for seed := int64(0); seed < 5; seed++ {
		e.SetRandomSeed(seed)
		mv, err := e.SelectMove(p, 8)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if mv.UCI() != "d2d5" {
			t.Fatalf("seed %d: expected d2d5, got %s", seed, mv.UCI())
		}
	}
}

func TestSelectMoveAlwaysLegal(t *testing.T) {
	// Level 1 blunders 60% of the time; the result must still be a
	// legal move.
	p := rules.StartingPosition()
	legal := map[string]bool{}
	for _, mv := range p.LegalMoves() {
		legal[mv.UCI()] = true
	}

	e := NewEngine()
	e.SetRandomSeed(42)
	for i := 0; i < 20; i++ {
		mv, err := e.SelectMove(p, 1)
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if !legal[mv.UCI()] {
			t.Fatalf("select %d: %s is not a legal move", i, mv.UCI())
		}
	}
}

func TestSeededEngineIsDeterministic(t *testing.T) {
	p := rules.StartingPosition()

	run := func() []string {
		e := NewEngine()
		e.SetRandomSeed(7)
		var out []string
		for i := 0; i < 10; i++ {
			mv, err := e.SelectMove(p, 3)
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			out = append(out, mv.UCI())
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded runs diverged at %d: %s vs %s", i, first[i], second[i])
		}
	}
}
