package engine

import (
	"errors"
	"testing"
)

func TestLevelTable(t *testing.T) {
	want := []struct {
		level   int
		depth   int
		blunder float64
	}{
		{1, 1, 0.60},
		{2, 1, 0.40},
		{3, 1, 0.20},
		{4, 2, 0.20},
		{5, 2, 0.10},
		{6, 3, 0.10},
		{7, 3, 0.05},
		{8, 3, 0.00},
		{9, 4, 0.05},
		{10, 4, 0.00},
	}
	for _, w := range want {
		got, err := LevelSettings(w.level)
		if err != nil {
			t.Fatalf("level %d: %v", w.level, err)
		}
		if got.Depth != w.depth || got.BlunderProbability != w.blunder {
			t.Fatalf("level %d: got depth=%d blunder=%v, want depth=%d blunder=%v",
				w.level, got.Depth, got.BlunderProbability, w.depth, w.blunder)
		}
	}
}

func TestLevelOutOfRange(t *testing.T) {
	for _, level := range []int{0, -1, 11, 100} {
		_, err := LevelSettings(level)
		if !errors.Is(err, ErrInvalidLevel) {
			t.Fatalf("level %d: expected ErrInvalidLevel, got %v", level, err)
		}
	}
}
