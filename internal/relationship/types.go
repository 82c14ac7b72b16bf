// Package relationship owns all relationship state: the three pair axes
// (through the axis registry), sentiments, time-bound flags, and roles.
// State changes only in response to triggers accepted by the intake; no
// other component may set relationship state directly.
package relationship

import (
	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
)

// Pair is a canonical unordered character pair. Build with NewPair so
// that (A, B) and (B, A) address the same stored state.
type Pair struct {
	A campaign.CharacterID `json:"a"`
	B campaign.CharacterID `json:"b"`
}

// NewPair canonicalizes the pair ordering.
func NewPair(a, b campaign.CharacterID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Key returns the axis registry subject key for the pair.
func (p Pair) Key() axis.SubjectKey {
	return axis.PairKey(p.A, p.B)
}

// Trigger is the named payload crossing from the event pipeline into the
// relationship engine. Subject order is significant for directional
// handlers and role assignment; storage canonicalizes internally.
type Trigger struct {
	Kind     string                 `json:"kind"`
	Source   string                 `json:"source"`
	Subjects []campaign.CharacterID `json:"subjects"`
	Params   map[string]any         `json:"params,omitempty"`
}

// Pair returns the canonical pair for the trigger's first two subjects.
func (t Trigger) Pair() Pair {
	return NewPair(t.Subjects[0], t.Subjects[1])
}

// State is the non-axis relationship state for one pair.
type State struct {
	Sentiments map[string]int                  `json:"sentiments"` // Name → strength.
	Flags      map[string]int                  `json:"flags"`      // Name → remaining days.
	Roles      map[string]campaign.CharacterID `json:"roles"`      // Role name → holder.
}

func newState() *State {
	return &State{
		Sentiments: make(map[string]int),
		Flags:      make(map[string]int),
		Roles:      make(map[string]campaign.CharacterID),
	}
}

func (s *State) clone() *State {
	cp := newState()
	for k, v := range s.Sentiments {
		cp.Sentiments[k] = v
	}
	for k, v := range s.Flags {
		cp.Flags[k] = v
	}
	for k, v := range s.Roles {
		cp.Roles[k] = v
	}
	return cp
}

// empty reports whether the state carries nothing worth persisting.
func (s *State) empty() bool {
	return len(s.Sentiments) == 0 && len(s.Flags) == 0 && len(s.Roles) == 0
}
