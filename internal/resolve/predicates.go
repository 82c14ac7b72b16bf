package resolve

import (
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
)

// EvalPairPredicate evaluates the named pair predicate for (a, b).
// Unknown predicate names or node types warn and evaluate to false.
func (r *Resolvers) EvalPairPredicate(eventID int, name string, a, b campaign.CharacterID, ps PairState) bool {
	pred, ok := r.maps.PairPredicates[name]
	if !ok {
		r.warn(eventID, name, "pair predicate not in resolver map")
		return false
	}
	return r.evalPredicate(eventID, pred, a, b, ps)
}

func (r *Resolvers) evalPredicate(eventID int, p config.Predicate, a, b campaign.CharacterID, ps PairState) bool {
	switch p.Type {
	case "has_flag":
		return ps.HasFlag(a, b, p.Flag)
	case "has_any_flag":
		return ps.HasAnyFlag(a, b, p.Flags...)
	case "not":
		if p.Of == nil {
			return false
		}
		return !r.evalPredicate(eventID, *p.Of, a, b, ps)
	case "and":
		for _, sub := range p.All {
			if !r.evalPredicate(eventID, sub, a, b, ps) {
				return false
			}
		}
		return len(p.All) > 0
	case "or":
		for _, sub := range p.Any {
			if r.evalPredicate(eventID, sub, a, b, ps) {
				return true
			}
		}
		return false
	default:
		r.warn(eventID, p.Type, "predicate type not implemented")
		return false
	}
}
