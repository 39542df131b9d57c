package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel is returned for difficulty levels outside 1-10.
var ErrInvalidLevel = errors.New("difficulty level out of range 1-10")

// MinLevel and MaxLevel bound the difficulty scale.
const (
	MinLevel     = 1
	MaxLevel     = 10
	DefaultLevel = 5
)

// Level is one difficulty tier: how deep the search looks and how
// often the engine deliberately plays a random legal move instead.
type Level struct {
	Depth              int
	BlunderProbability float64
}

// The tier table is a compatibility contract; changing a single cell
// changes observed playing strength for existing callers.
var levels = map[int]Level{
	1:  {Depth: 1, BlunderProbability: 0.60},
	2:  {Depth: 1, BlunderProbability: 0.40},
	3:  {Depth: 1, BlunderProbability: 0.20},
	4:  {Depth: 2, BlunderProbability: 0.20},
	5:  {Depth: 2, BlunderProbability: 0.10},
	6:  {Depth: 3, BlunderProbability: 0.10},
	7:  {Depth: 3, BlunderProbability: 0.05},
	8:  {Depth: 3, BlunderProbability: 0.00},
	9:  {Depth: 4, BlunderProbability: 0.05},
	10: {Depth: 4, BlunderProbability: 0.00},
}

// LevelSettings resolves a difficulty tier.
func LevelSettings(level int) (Level, error) {
	l, ok := levels[level]
	if !ok {
		return Level{}, fmt.Errorf("level %d: %w", level, ErrInvalidLevel)
	}
	return l, nil
}
