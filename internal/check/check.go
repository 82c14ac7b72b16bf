// Package check implements the 2d6 skill-check mechanics the interaction
// resolver delegates to. Rolls are deterministic with respect to the
// rand.Rand the caller supplies; the package holds no state of its own.
package check

import (
	"errors"
	"math/rand"
)

// ErrInvalidTarget indicates a non-positive target number.
var ErrInvalidTarget = errors.New("target number must be positive")

// Request describes one skill check.
type Request struct {
	Skill    int // Character's skill level.
	Modifier int // Situational modifier, may be negative.
	Target   int // Target number the total must meet or beat.
}

// Result captures a resolved skill check.
type Result struct {
	Dice    [2]int // The two d6 values, in roll order.
	Total   int    // Dice + skill + modifier.
	Margin  int    // Total − target; negative on failure.
	Success bool
}

// Roll resolves a skill check with the supplied rng. Given the same rng
// state and request, the result is identical.
func Roll(rng *rand.Rand, req Request) (Result, error) {
	if req.Target <= 0 {
		return Result{}, ErrInvalidTarget
	}
	d1 := rng.Intn(6) + 1
	d2 := rng.Intn(6) + 1
	total := d1 + d2 + req.Skill + req.Modifier
	margin := total - req.Target
	return Result{
		Dice:    [2]int{d1, d2},
		Total:   total,
		Margin:  margin,
		Success: margin >= 0,
	}, nil
}
