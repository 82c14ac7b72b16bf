package resolve

import (
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
)

// RelationState extends PairState with the role lookups the derived
// relation types need.
type RelationState interface {
	PairState
	RolePartners(id campaign.CharacterID, role string) []campaign.CharacterID
}

// DerivedParticipants resolves a derived-participant rule relative to the
// primary selection. Primaries are never duplicated into the result.
// Unknown rule kinds warn and contribute nothing.
func (r *Resolvers) DerivedParticipants(eventID int, rule config.DerivedRule, primaries []campaign.CharacterID, roster *campaign.Roster, rs RelationState) []campaign.CharacterID {
	taken := make(map[campaign.CharacterID]bool, len(primaries))
	for _, id := range primaries {
		taken[id] = true
	}

	switch rule.Kind {
	case "role_group_pick":
		return r.roleGroupPick(eventID, rule.Role, taken, roster)
	case "person_set":
		return r.personSet(eventID, rule.PersonSet, taken, roster)
	case "composite_first_supported":
		return r.compositeFirstSupported(eventID, rule.Relations, primaries, taken, rs)
	default:
		r.warn(eventID, rule.Kind, "derived-participant kind not implemented")
		return nil
	}
}

// roleGroupPick picks one character satisfying the role, in roster
// order. No qualifying character is a logged degradation, not an error.
func (r *Resolvers) roleGroupPick(eventID int, role string, taken map[campaign.CharacterID]bool, roster *campaign.Roster) []campaign.CharacterID {
	var pick []campaign.CharacterID
	roster.Each(func(c *campaign.Character) {
		if len(pick) > 0 || taken[c.ID] {
			return
		}
		if r.MatchesRole(eventID, c, role) {
			pick = append(pick, c.ID)
		}
	})
	if len(pick) == 0 {
		r.journal.Warning(eventID, role, "role_group_pick found no qualifying character")
	}
	return pick
}

// personSet includes every character passing all filters of the named
// reusable combination.
func (r *Resolvers) personSet(eventID int, name string, taken map[campaign.CharacterID]bool, roster *campaign.Roster) []campaign.CharacterID {
	filters, ok := r.maps.PersonSets[name]
	if !ok {
		r.warn(eventID, name, "person set not in resolver map")
		return nil
	}
	var out []campaign.CharacterID
	roster.Each(func(c *campaign.Character) {
		if taken[c.ID] {
			return
		}
		for _, f := range filters {
			if !r.PassesFilter(eventID, c, f) {
				return
			}
		}
		out = append(out, c.ID)
	})
	return out
}

// compositeFirstSupported walks the relation list in order and resolves
// the first relation type with an implementation. Unsupported relation
// names warn and are skipped.
func (r *Resolvers) compositeFirstSupported(eventID int, relations []string, primaries []campaign.CharacterID, taken map[campaign.CharacterID]bool, rs RelationState) []campaign.CharacterID {
	if rs == nil {
		return nil
	}
	for _, rel := range relations {
		role, supported := relationRole(rel)
		if !supported {
			r.warn(eventID, rel, "relation type not implemented")
			continue
		}
		var out []campaign.CharacterID
		for _, primary := range primaries {
			for _, partner := range rs.RolePartners(primary, role) {
				if taken[partner] {
					continue
				}
				taken[partner] = true
				out = append(out, partner)
			}
		}
		return out
	}
	return nil
}

// relationRole maps a relation type to the relationship role held by the
// derived participant.
func relationRole(relation string) (string, bool) {
	switch relation {
	case "mentor_of":
		return "MENTOR", true
	case "apprentice_of":
		return "APPRENTICE", true
	default:
		return "", false
	}
}
