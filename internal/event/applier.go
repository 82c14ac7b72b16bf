package event

import (
	"fmt"
	"sort"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/fault"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/relationship"
)

// SourceApplier is the declared source on every trigger this layer emits.
const SourceApplier = "outcome_applier"

// Applier is Layer 4 and the only event-pipeline component permitted to
// write the axis registry. It applies exactly the effect keys declared
// on the resolved tier's outcome definition, nothing inferred or
// defaulted, and emits validated triggers to the intake as its final
// step. All effects for one outcome commit atomically: every declared
// effect and trigger is validated before the first write.
type Applier struct {
	axes    *axis.Writer
	intake  *relationship.Intake
	journal *journal.Journal
}

// NewApplier builds the applier over its axis writer capability.
func NewApplier(w *axis.Writer, intake *relationship.Intake, j *journal.Journal) *Applier {
	return &Applier{axes: w, intake: intake, journal: j}
}

// plannedWrite is one validated axis mutation awaiting commit.
type plannedWrite struct {
	kind    string
	subject axis.SubjectKey
	axis    string
	delta   int
}

// Apply looks up the outcome declared for the result's tier and commits
// its effects. A tier with no declared outcome applies nothing and is
// still a successful, empty application.
func (a *Applier) Apply(res *ResolutionResult) (*AppliedOutcome, error) {
	inst := res.Interaction.Instance
	out := &AppliedOutcome{
		Instance:    inst,
		Interaction: res.Interaction.Def.ID,
		Tier:        res.Tier,
	}

	def, declared := res.Interaction.Def.Outcomes[res.Tier]
	if !declared {
		a.journal.Append(journal.Record{
			Kind:    journal.KindOutcome,
			EventID: inst.EventID,
			Message: fmt.Sprintf("%s %s: no effects declared", res.Interaction.Def.ID, res.Tier),
		})
		return out, nil
	}

	writes, triggers, err := a.plan(inst, def)
	if err != nil {
		return nil, err
	}

	// Validation passed for everything; commit.
	for _, w := range writes {
		nv, err := a.axes.Modify(w.subject, w.axis, w.delta)
		if err != nil {
			// Unreachable after planning; surfacing it loudly beats
			// guessing at recovery.
			return nil, fault.Invariant("planned axis write failed: %v", err)
		}
		out.Effects = append(out.Effects, AppliedEffect{
			Kind:     w.kind,
			Subject:  string(w.subject),
			Axis:     w.axis,
			Delta:    w.delta,
			NewValue: nv,
		})
	}
	for _, t := range triggers {
		if err := a.intake.Submit(t); err != nil {
			return nil, fmt.Errorf("submit trigger %s: %w", t.Kind, err)
		}
		out.Triggers = append(out.Triggers, t)
	}

	a.journal.Append(journal.Record{
		Kind:    journal.KindOutcome,
		EventID: inst.EventID,
		Message: fmt.Sprintf("%s %s: %d effects, %d triggers", res.Interaction.Def.ID, res.Tier, len(out.Effects), len(out.Triggers)),
	})
	return out, nil
}

// plan expands the declared effect keys into axis writes and triggers,
// validating everything. No state is touched here. Pair effects bind to
// the first two participants, counting derived ones, so a one-primary
// event with a derived reviewer still forms a pair.
func (a *Applier) plan(inst *Instance, def config.OutcomeDef) ([]plannedWrite, []relationship.Trigger, error) {
	var writes []plannedWrite
	var triggers []relationship.Trigger
	everyone := inst.All()

	if len(def.AxisDelta) > 0 {
		if len(everyone) < 2 {
			return nil, nil, fault.Config("axis_delta", "event %d outcome needs a participant pair", inst.EventID)
		}
		pairKey := axis.PairKey(everyone[0], everyone[1])
		for _, name := range sortedKeys(def.AxisDelta) {
			if !a.axes.Registered(name) {
				return nil, nil, fault.Config(name, "outcome axis_delta references axis with no registered bounds")
			}
			writes = append(writes, plannedWrite{kind: "axis_delta", subject: pairKey, axis: name, delta: def.AxisDelta[name]})
		}
	}

	perParticipant := []struct {
		kind string
		axis string
		val  *int
	}{
		{"xp_delta", "xp", def.XPDelta},
		{"fatigue_delta", "fatigue", def.FatigueDelta},
		{"confidence_delta", "confidence", def.ConfidenceDelta},
	}
	for _, eff := range perParticipant {
		if eff.val == nil {
			continue
		}
		if !a.axes.Registered(eff.axis) {
			return nil, nil, fault.Config(eff.axis, "outcome %s references axis with no registered bounds", eff.kind)
		}
		for _, id := range everyone {
			writes = append(writes, plannedWrite{
				kind:    eff.kind,
				subject: axis.CharacterKey(id),
				axis:    eff.axis,
				delta:   *eff.val,
			})
		}
	}

	if def.ReputationPoolDelta != nil {
		if !a.axes.Registered("reputation_pool") {
			return nil, nil, fault.Config("reputation_pool", "outcome reputation_pool_delta references axis with no registered bounds")
		}
		writes = append(writes, plannedWrite{
			kind:    "reputation_pool_delta",
			subject: axis.CampaignKey,
			axis:    "reputation_pool",
			delta:   *def.ReputationPoolDelta,
		})
	}

	// set_flags routes through the built-in set_flag trigger so the
	// relationship engine stays the only flag writer.
	if len(def.SetFlags) > 0 {
		if len(everyone) < 2 {
			return nil, nil, fault.Config("set_flags", "event %d outcome needs a participant pair", inst.EventID)
		}
		for _, name := range sortedKeys(def.SetFlags) {
			triggers = append(triggers, relationship.Trigger{
				Kind:     relationship.KindSetFlag,
				Source:   SourceApplier,
				Subjects: everyone[:2],
				Params:   map[string]any{"flag": name, "duration": def.SetFlags[name]},
			})
		}
	}

	for _, td := range def.EmitTriggers {
		if len(everyone) < 2 {
			return nil, nil, fault.Config("emit_triggers", "event %d outcome needs a participant pair", inst.EventID)
		}
		triggers = append(triggers, relationship.Trigger{
			Kind:     td.Kind,
			Source:   SourceApplier,
			Subjects: everyone[:2],
			Params:   bindParams(td.Params, everyone),
		})
	}

	// Vet covers handler effects as well as the schema, so a declared
	// trigger that would fail inside the relationship engine aborts the
	// outcome before the first axis write.
	for _, t := range triggers {
		if err := a.intake.Vet(t); err != nil {
			return nil, nil, fmt.Errorf("outcome declares invalid trigger: %w", err)
		}
	}
	return writes, triggers, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// bindParams substitutes participant placeholders in declared trigger
// params: "$first" and "$second" become the corresponding participant id.
func bindParams(params map[string]any, participants []campaign.CharacterID) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		switch v {
		case "$first":
			out[k] = string(participants[0])
		case "$second":
			out[k] = string(participants[1])
		default:
			out[k] = v
		}
	}
	return out
}
