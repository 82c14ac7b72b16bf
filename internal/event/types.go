// Package event implements the four-layer deterministic event pipeline:
// injection (participant selection), interaction selection, mechanical
// resolution, and outcome application. Each layer is a synchronous
// function over the caller-supplied roster and date; only the final
// layer mutates state, and only through its axis writer and the trigger
// intake.
package event

import (
	"github.com/google/uuid"

	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/check"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/relationship"
)

// Instance binds an event definition to concrete participants and a date.
type Instance struct {
	ID           string                 `json:"id"` // Unique per occurrence.
	Def          config.EventDef        `json:"-"`
	EventID      int                    `json:"event_id"`
	Date         campaign.Date          `json:"date"`
	Participants []campaign.CharacterID `json:"participants"` // Primary selection, ordered.
	Derived      []campaign.CharacterID `json:"derived,omitempty"`
}

// NewInstance creates an instance for the definition.
func NewInstance(def config.EventDef, date campaign.Date, participants, derived []campaign.CharacterID) *Instance {
	return &Instance{
		ID:           uuid.NewString(),
		Def:          def,
		EventID:      def.ID,
		Date:         date,
		Participants: participants,
		Derived:      derived,
	}
}

// All returns primary then derived participants.
func (in *Instance) All() []campaign.CharacterID {
	out := make([]campaign.CharacterID, 0, len(in.Participants)+len(in.Derived))
	out = append(out, in.Participants...)
	out = append(out, in.Derived...)
	return out
}

// SelectedInteraction is the Layer-2 value object: the chosen interaction
// plus the context that weighted it.
type SelectedInteraction struct {
	Instance    *Instance
	Def         config.InteractionDef
	Tone        string
	Environment string
	Weight      float64 // Final weight the pick was made under.
}

// StageResult is one resolved skill check within an interaction.
type StageResult struct {
	Stage config.StageDef
	Actor campaign.CharacterID
	Check check.Result
}

// ResolutionResult is the Layer-3 value object: staged check results and
// the classified outcome tier.
type ResolutionResult struct {
	Interaction *SelectedInteraction
	Stages      []StageResult
	TotalMargin int
	Tier        string // config.TierGreatSuccess | TierSuccess | TierFailure.
}

// AppliedEffect records one committed effect for display and audit.
type AppliedEffect struct {
	Kind     string `json:"kind"`    // axis_delta | xp_delta | fatigue_delta | confidence_delta | reputation_pool_delta
	Subject  string `json:"subject"` // Axis registry subject key.
	Axis     string `json:"axis"`
	Delta    int    `json:"delta"`
	NewValue int    `json:"new_value"`
}

// AppliedOutcome is the Layer-4 value object: what was actually applied
// and the triggers emitted across the relationship boundary.
type AppliedOutcome struct {
	Instance    *Instance
	Interaction string
	Tier        string
	Effects     []AppliedEffect
	Triggers    []relationship.Trigger
}
