package event

import (
	"math/rand"

	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/fault"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/resolve"
)

// Selector is Layer 2: it picks one concrete interaction from the
// event's domain catalog by weighted random choice. Weights are the
// interaction's base weight scaled by tone, environment, and pair
// predicate multipliers. It resolves no mechanics and applies nothing.
type Selector struct {
	domains   map[string][]config.InteractionDef
	resolvers *resolve.Resolvers
	journal   *journal.Journal
}

// NewSelector builds the selector over the domain catalogs.
func NewSelector(domains map[string][]config.InteractionDef, r *resolve.Resolvers, j *journal.Journal) *Selector {
	return &Selector{domains: domains, resolvers: r, journal: j}
}

// Select chooses an interaction for the instance under the given tone
// and environment. An empty or missing domain catalog is a
// configuration error.
func (s *Selector) Select(inst *Instance, tone, environment string, ps resolve.PairState, rng *rand.Rand) (*SelectedInteraction, error) {
	defs := s.domains[inst.Def.Domain]
	if len(defs) == 0 {
		return nil, fault.Config(inst.Def.Domain, "event %d domain has no interactions", inst.EventID)
	}

	weights := make([]float64, len(defs))
	total := 0.0
	for idx, def := range defs {
		w := def.BaseWeight
		if w <= 0 {
			w = 1
		}
		if m, ok := def.ToneWeights[tone]; ok {
			w *= m
		}
		if m, ok := def.EnvWeights[environment]; ok {
			w *= m
		}
		if len(inst.Participants) >= 2 && ps != nil {
			a, b := inst.Participants[0], inst.Participants[1]
			for pred, m := range def.PairWeights {
				if s.resolvers.EvalPairPredicate(inst.EventID, pred, a, b, ps) {
					w *= m
				}
			}
		}
		if w < 0 {
			w = 0
		}
		weights[idx] = w
		total += w
	}
	if total <= 0 {
		return nil, fault.Config(inst.Def.Domain, "event %d interaction weights sum to zero", inst.EventID)
	}

	pick := rng.Float64() * total
	chosen := len(defs) - 1
	for idx, w := range weights {
		pick -= w
		if pick < 0 {
			chosen = idx
			break
		}
	}

	sel := &SelectedInteraction{
		Instance:    inst,
		Def:         defs[chosen],
		Tone:        tone,
		Environment: environment,
		Weight:      weights[chosen],
	}
	s.journal.Cycle(inst.EventID, "selected interaction "+sel.Def.ID)
	return sel, nil
}
