package relationship

import (
	"sort"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
)

// Query is the read-only facade over relationship state. The event
// pipeline consults it to gate or weight its own decisions; nothing on
// this type mutates anything. It satisfies the resolvers' RelationState
// interface.
type Query struct {
	engine   *Engine
	registry *axis.Registry
}

// NewQuery builds the read facade.
func NewQuery(e *Engine, reg *axis.Registry) *Query {
	return &Query{engine: e, registry: reg}
}

// GetAxis returns the pair's value on a relationship axis. Unregistered
// axes are a configuration error.
func (q *Query) GetAxis(a, b campaign.CharacterID, axisName string) (int, error) {
	return q.registry.Get(axis.PairKey(a, b), axisName)
}

// Flags returns a copy of the pair's flags with remaining durations.
func (q *Query) Flags(a, b campaign.CharacterID) map[string]int {
	st := q.engine.readState(NewPair(a, b))
	out := make(map[string]int)
	if st == nil {
		return out
	}
	for name, days := range st.Flags {
		out[name] = days
	}
	return out
}

// Sentiments returns a copy of the pair's sentiments.
func (q *Query) Sentiments(a, b campaign.CharacterID) map[string]int {
	st := q.engine.readState(NewPair(a, b))
	out := make(map[string]int)
	if st == nil {
		return out
	}
	for name, strength := range st.Sentiments {
		out[name] = strength
	}
	return out
}

// Roles returns a copy of the pair's role assignments.
func (q *Query) Roles(a, b campaign.CharacterID) map[string]campaign.CharacterID {
	st := q.engine.readState(NewPair(a, b))
	out := make(map[string]campaign.CharacterID)
	if st == nil {
		return out
	}
	for name, id := range st.Roles {
		out[name] = id
	}
	return out
}

// HasFlag reports whether the pair currently carries the flag.
func (q *Query) HasFlag(a, b campaign.CharacterID, flag string) bool {
	st := q.engine.readState(NewPair(a, b))
	if st == nil {
		return false
	}
	_, ok := st.Flags[flag]
	return ok
}

// HasAnyFlag reports whether the pair carries any of the flags.
func (q *Query) HasAnyFlag(a, b campaign.CharacterID, flags ...string) bool {
	for _, f := range flags {
		if q.HasFlag(a, b, f) {
			return true
		}
	}
	return false
}

// IsAwkward is the gating convenience the event pipeline uses most.
func (q *Query) IsAwkward(a, b campaign.CharacterID) bool {
	return q.HasFlag(a, b, "awkward")
}

// RolePartners returns every character holding the given role in a
// relationship with id.
func (q *Query) RolePartners(id campaign.CharacterID, role string) []campaign.CharacterID {
	var out []campaign.CharacterID
	for pair, st := range q.engine.states {
		if pair.A != id && pair.B != id {
			continue
		}
		holder, ok := st.Roles[role]
		if !ok || holder == id {
			continue
		}
		out = append(out, holder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
