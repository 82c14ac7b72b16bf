package event

import (
	"fmt"
	"math/rand"

	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/check"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/journal"
)

// Resolver is Layer 3: it executes the interaction's staged skill checks
// through the check collaborator, tracks the cumulative margin, and
// classifies the result into exactly one outcome tier. It applies no
// outcomes.
type Resolver struct {
	journal *journal.Journal
}

// NewResolver builds the mechanics resolver.
func NewResolver(j *journal.Journal) *Resolver {
	return &Resolver{journal: j}
}

// Resolve runs every stage in order. Each stage's actor is the
// participant at the stage's actor index (wrapping, so single-participant
// interactions still work). Classification:
// cumulative margin ≥ great threshold → great success; ≥ 0 → success;
// otherwise failure.
func (r *Resolver) Resolve(sel *SelectedInteraction, roster *campaign.Roster, rng *rand.Rand) (*ResolutionResult, error) {
	participants := sel.Instance.All()
	if len(participants) == 0 {
		return nil, fmt.Errorf("resolve %s: no participants", sel.Def.ID)
	}

	res := &ResolutionResult{Interaction: sel}
	for _, stage := range sel.Def.Resolution.Stages {
		actorID := participants[stage.Actor%len(participants)]
		actor := roster.Get(actorID)
		skill := 0
		if actor != nil {
			skill = actor.Skill(stage.Skill)
		}
		cr, err := check.Roll(rng, check.Request{
			Skill:    skill,
			Modifier: stage.Modifier,
			Target:   stage.Target,
		})
		if err != nil {
			return nil, fmt.Errorf("resolve %s stage %s: %w", sel.Def.ID, stage.Skill, err)
		}
		res.Stages = append(res.Stages, StageResult{Stage: stage, Actor: actorID, Check: cr})
		res.TotalMargin += cr.Margin
	}

	threshold := sel.Def.Resolution.GreatThreshold
	if threshold <= 0 {
		threshold = 4
	}
	switch {
	case res.TotalMargin >= threshold:
		res.Tier = config.TierGreatSuccess
	case res.TotalMargin >= 0:
		res.Tier = config.TierSuccess
	default:
		res.Tier = config.TierFailure
	}

	r.journal.Cycle(sel.Instance.EventID,
		fmt.Sprintf("resolved %s: margin %+d, %s", sel.Def.ID, res.TotalMargin, res.Tier))
	return res, nil
}
