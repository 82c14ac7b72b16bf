// Package resolve interprets the declarative selection DSL used by event
// rules: abstract roles, status filters, age groups, relationship
// predicates, and derived-participant rules.
//
// Unknown-token contract: a role, filter, age-group, predicate type, or
// relation type missing from the loaded maps is never an error. Every
// occurrence is journaled with the originating event id and the token,
// and resolution returns a safe default: an empty participant list for
// selection, false for predicates. An event rule referencing a concept
// that is not implemented yet degrades to "unavailable".
package resolve

import (
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/journal"
)

// PairState is the read-only relationship view the resolvers consult for
// pair predicates. Satisfied by the relationship state query.
type PairState interface {
	HasFlag(a, b campaign.CharacterID, flag string) bool
	HasAnyFlag(a, b campaign.CharacterID, flags ...string) bool
}

// Resolvers evaluates DSL tokens against a roster and pair state.
type Resolvers struct {
	maps    config.ResolverMaps
	journal *journal.Journal
}

// New builds resolvers over the loaded resolver maps.
func New(maps config.ResolverMaps, j *journal.Journal) *Resolvers {
	return &Resolvers{maps: maps, journal: j}
}

func (r *Resolvers) warn(eventID int, token, detail string) {
	r.journal.UnknownToken(eventID, token, detail)
}

// RoleTags maps an abstract role name to its concrete profession tags.
// Unknown roles warn and return nil.
func (r *Resolvers) RoleTags(eventID int, role string) []string {
	tags, ok := r.maps.Roles[role]
	if !ok {
		r.warn(eventID, role, "role not in resolver map")
		return nil
	}
	return tags
}

// MatchesRole reports whether the character carries any concrete tag the
// role resolves to.
func (r *Resolvers) MatchesRole(eventID int, c *campaign.Character, role string) bool {
	for _, tag := range r.RoleTags(eventID, role) {
		if c.HasProfession(tag) {
			return true
		}
	}
	return false
}

// PassesFilter evaluates a named filter against a character, following
// aliases. Unknown filters warn and exclude the character.
func (r *Resolvers) PassesFilter(eventID int, c *campaign.Character, name string) bool {
	if target, ok := r.maps.FilterAliases[name]; ok {
		name = target
	}
	if def, ok := r.maps.Filters[name]; ok {
		return evalFilter(def, c)
	}
	if pass, ok := builtinFilter(name, c); ok {
		return pass
	}
	r.warn(eventID, name, "filter not in resolver map")
	return false
}

func evalFilter(def config.FilterDef, c *campaign.Character) bool {
	// "status" is the only filterable field for now.
	if def.Field != "" && def.Field != "status" {
		return false
	}
	status := string(c.Status)
	if len(def.In) > 0 {
		found := false
		for _, v := range def.In {
			if v == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, v := range def.NotIn {
		if v == status {
			return false
		}
	}
	return true
}

// builtinFilter covers the placeholder filters that predate deployment
// and death tracking. They are conservative stand-ins, not finished
// semantics.
func builtinFilter(name string, c *campaign.Character) (pass, ok bool) {
	switch name {
	case "present":
		// TODO: consult deployment tracking once the host reports it;
		// until then anyone not explicitly away counts as present.
		return c.Status != campaign.StatusAbsent && c.Status != campaign.StatusDeceased, true
	case "alive":
		// TODO: replace with the host's death ledger when available.
		return c.Status != campaign.StatusDeceased, true
	}
	return false, false
}

// InAgeGroup reports whether the character falls in the named age band.
// Unknown groups warn and exclude the character.
func (r *Resolvers) InAgeGroup(eventID int, c *campaign.Character, group string) bool {
	rng, ok := r.maps.AgeGroups[group]
	if !ok {
		r.warn(eventID, group, "age group not in resolver map")
		return false
	}
	return c.Age >= rng.Min && c.Age <= rng.Max
}

// Candidates returns the ids of every roster character satisfying the
// selection rule's role, filters, and age group, in roster order.
func (r *Resolvers) Candidates(eventID int, rule config.SelectionRule, roster *campaign.Roster) []campaign.CharacterID {
	var out []campaign.CharacterID
	roster.Each(func(c *campaign.Character) {
		if rule.Role != "" && !r.MatchesRole(eventID, c, rule.Role) {
			return
		}
		for _, f := range rule.Filters {
			if !r.PassesFilter(eventID, c, f) {
				return
			}
		}
		if rule.AgeGroup != "" && !r.InAgeGroup(eventID, c, rule.AgeGroup) {
			return
		}
		out = append(out, c.ID)
	})
	return out
}

// MeetsRequirement counts roster characters satisfying a headcount
// requirement and reports whether the minimum is met.
func (r *Resolvers) MeetsRequirement(eventID int, req config.Requirement, roster *campaign.Roster) (int, bool) {
	count := 0
	roster.Each(func(c *campaign.Character) {
		if req.Role != "" && !r.MatchesRole(eventID, c, req.Role) {
			return
		}
		if req.Filter != "" && !r.PassesFilter(eventID, c, req.Filter) {
			return
		}
		if req.AgeGroup != "" && !r.InAgeGroup(eventID, c, req.AgeGroup) {
			return
		}
		count++
	})
	return count, count >= req.Min
}
