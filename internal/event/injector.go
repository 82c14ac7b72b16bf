package event

import (
	"fmt"
	"math/rand"

	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/resolve"
)

// Injector is Layer 1: it decides whether an event can occur and selects
// its primary participants. It performs no skill checks and mutates no
// state.
type Injector struct {
	catalog   *config.Catalog
	resolvers *resolve.Resolvers
	journal   *journal.Journal
}

// NewInjector builds the injector over the loaded catalog.
func NewInjector(cat *config.Catalog, r *resolve.Resolvers, j *journal.Journal) *Injector {
	return &Injector{catalog: cat, resolvers: r, journal: j}
}

// CheckAvailability evaluates the event's availability requirements and
// returns human-readable reasons on failure. An id missing from the
// catalog is reported as a reason, not an error: the event is simply
// unavailable.
func (i *Injector) CheckAvailability(eventID int, roster *campaign.Roster) (bool, []string) {
	def, ok := i.catalog.Event(eventID)
	if !ok {
		return false, []string{fmt.Sprintf("event %d is not in the catalog", eventID)}
	}

	var reasons []string
	for _, req := range def.Availability {
		count, met := i.resolvers.MeetsRequirement(eventID, req, roster)
		if met {
			continue
		}
		what := req.Role
		if what == "" {
			what = req.Filter
		}
		if req.AgeGroup != "" {
			what += " (" + req.AgeGroup + ")"
		}
		reasons = append(reasons, fmt.Sprintf("needs %d characters matching %s, have %d", req.Min, what, count))
	}
	// The selection rule itself must also be satisfiable.
	if eligible := i.EligibleCandidates(eventID, roster); len(eligible) < def.Selection.Count {
		reasons = append(reasons, fmt.Sprintf("needs %d eligible participants, have %d", def.Selection.Count, len(eligible)))
	}
	return len(reasons) == 0, reasons
}

// EligibleCandidates returns the full candidate pool for the event's
// primary-selection rule, before count limits, in roster order.
func (i *Injector) EligibleCandidates(eventID int, roster *campaign.Roster) []campaign.CharacterID {
	def, ok := i.catalog.Event(eventID)
	if !ok {
		return nil
	}
	return i.resolvers.Candidates(eventID, def.Selection, roster)
}

// SelectParticipants applies the primary-selection rule. With a date the
// candidate pool is shuffled under a seed derived from (date, event id),
// so the same date and event always yield the same selection while
// different dates vary. Without a date, selection is the first N
// eligible candidates.
func (i *Injector) SelectParticipants(eventID int, roster *campaign.Roster, date *campaign.Date) []campaign.CharacterID {
	def, ok := i.catalog.Event(eventID)
	if !ok {
		return nil
	}
	candidates := i.EligibleCandidates(eventID, roster)
	if len(candidates) < def.Selection.Count {
		return nil
	}
	if date != nil {
		rng := rand.New(rand.NewSource(date.Seed(fmt.Sprintf("select:%d", eventID))))
		rng.Shuffle(len(candidates), func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
	}
	return candidates[:def.Selection.Count]
}

// DeriveParticipants resolves the event's derived-participant rules
// against the primary selection.
func (i *Injector) DeriveParticipants(def config.EventDef, primaries []campaign.CharacterID, roster *campaign.Roster, rs resolve.RelationState) []campaign.CharacterID {
	var derived []campaign.CharacterID
	seen := make(map[campaign.CharacterID]bool, len(primaries))
	for _, id := range primaries {
		seen[id] = true
	}
	for _, rule := range def.Derived {
		for _, id := range i.resolvers.DerivedParticipants(def.ID, rule, primaries, roster, rs) {
			if seen[id] {
				continue
			}
			seen[id] = true
			derived = append(derived, id)
		}
	}
	return derived
}
