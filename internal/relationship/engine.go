package relationship

import (
	"fmt"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/fault"
	"github.com/voxhall/muster/internal/journal"
)

// KindSetFlag is the built-in trigger kind the outcome applier uses for
// declared set_flags effects, so flag writes stay inside this engine.
const KindSetFlag = "set_flag"

// Engine is the sole owner and mutator of relationship state. Handlers
// are a closed set built from the validated config at startup; a trigger
// kind with no handler degrades to a journaled no-op.
type Engine struct {
	axes     *axis.Writer
	handlers map[string]config.HandlerSpec
	states   map[Pair]*State
	journal  *journal.Journal
}

// NewEngine builds the engine over its axis writer capability and the
// configured handler table.
func NewEngine(w *axis.Writer, handlers map[string]config.HandlerSpec, j *journal.Journal) *Engine {
	h := make(map[string]config.HandlerSpec, len(handlers))
	for kind, spec := range handlers {
		h[kind] = spec
	}
	return &Engine{
		axes:     w,
		handlers: h,
		states:   make(map[Pair]*State),
		journal:  j,
	}
}

func (e *Engine) state(p Pair) *State {
	st, ok := e.states[p]
	if !ok {
		st = newState()
		e.states[p] = st
	}
	return st
}

// Vet reports whether Process would accept the trigger, without applying
// anything. Every failure mode Process has is checked here, so a vetted
// trigger cannot fail mid-application. The outcome applier vets all
// declared triggers before committing any effect.
func (e *Engine) Vet(t Trigger) error {
	if len(t.Subjects) < 2 {
		return fault.RejectTrigger(t.Kind, "requires two subjects, got %d", len(t.Subjects))
	}
	if t.Kind == KindSetFlag {
		if name, _ := t.Params["flag"].(string); name == "" {
			return fault.RejectTrigger(t.Kind, "missing flag name")
		}
		return nil
	}
	spec, ok := e.handlers[t.Kind]
	if !ok {
		// Unknown kinds are a journaled no-op in Process, not a failure.
		return nil
	}
	for name := range spec.Axes {
		if !e.axes.Registered(name) {
			return fault.Config(name, "trigger handler %q references axis with no registered bounds", t.Kind)
		}
	}
	return nil
}

// Process applies one accepted trigger. The built-in set_flag kind and
// the configured handler table are the only mutation paths. Vet runs
// first, so a misconfigured handler leaves state untouched.
func (e *Engine) Process(t Trigger) error {
	if err := e.Vet(t); err != nil {
		return err
	}

	if t.Kind == KindSetFlag {
		return e.processSetFlag(t)
	}

	spec, ok := e.handlers[t.Kind]
	if !ok {
		// Closed-variant fallback: unknown kinds are journaled, never fatal.
		e.journal.UnknownToken(0, t.Kind, "no relationship handler for trigger kind")
		return nil
	}

	pair := t.Pair()
	st := e.state(pair)
	intensity := paramInt(t.Params, "intensity", 1)

	for name, eff := range spec.Axes {
		delta := eff.Base + eff.PerIntensity*intensity
		// Pair axes are stored once per canonical pair, so mutual axes
		// like friendship update both directions identically by
		// construction.
		if _, err := e.axes.Modify(pair.Key(), name, delta); err != nil {
			return fmt.Errorf("apply trigger %s: %w", t.Kind, err)
		}
	}
	for name, duration := range spec.SetFlags {
		if duration < 0 {
			duration = 0
		}
		st.Flags[name] = duration
	}
	for _, name := range spec.ClearFlags {
		delete(st.Flags, name)
	}
	for name, delta := range spec.Sentiments {
		key := name
		if spec.Directional {
			if toward, ok := t.Params["toward"].(string); ok && toward != "" {
				key = name + ":" + toward
			}
		}
		st.Sentiments[key] += delta
	}
	if ra := spec.AssignRole; ra != nil {
		if ra.First != "" {
			st.Roles[ra.First] = t.Subjects[0]
		}
		if ra.Second != "" {
			st.Roles[ra.Second] = t.Subjects[1]
		}
	}

	e.journal.Append(journal.Record{
		Kind:    journal.KindRelationship,
		Message: fmt.Sprintf("trigger %s applied to %s/%s", t.Kind, pair.A, pair.B),
	})
	return nil
}

func (e *Engine) processSetFlag(t Trigger) error {
	name, _ := t.Params["flag"].(string)
	if name == "" {
		return fault.RejectTrigger(t.Kind, "missing flag name")
	}
	duration := paramInt(t.Params, "duration", 1)
	if duration < 0 {
		duration = 0
	}
	pair := t.Pair()
	e.state(pair).Flags[name] = duration
	e.journal.Append(journal.Record{
		Kind:    journal.KindRelationship,
		Message: fmt.Sprintf("flag %s set on %s/%s for %d days", name, pair.A, pair.B, duration),
	})
	return nil
}

// AdvanceDay decrements every flag's remaining duration and removes
// flags reaching zero. Durations never go negative.
func (e *Engine) AdvanceDay() {
	for _, st := range e.states {
		for name, days := range st.Flags {
			days--
			if days <= 0 {
				delete(st.Flags, name)
			} else {
				st.Flags[name] = days
			}
		}
	}
}

// paramInt reads an integer trigger parameter, tolerating the float64
// that JSON decoding produces.
func paramInt(params map[string]any, name string, def int) int {
	switch v := params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Snapshot is the serializable whole of the engine's non-axis state.
type Snapshot struct {
	Pairs map[string]*State `json:"pairs"` // "a|b" canonical key → state.
}

// Snapshot copies all pair states. Empty states are omitted.
func (e *Engine) Snapshot() Snapshot {
	out := Snapshot{Pairs: make(map[string]*State, len(e.states))}
	for pair, st := range e.states {
		if st.empty() {
			continue
		}
		out.Pairs[string(pair.Key())] = st.clone()
	}
	return out
}

// Restore replaces the engine's state with the snapshot.
func (e *Engine) Restore(snap Snapshot) {
	states := make(map[Pair]*State, len(snap.Pairs))
	for key, st := range snap.Pairs {
		pair, ok := pairFromKey(key)
		if !ok {
			continue
		}
		states[pair] = st.clone()
	}
	e.states = states
}

func pairFromKey(key string) (Pair, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return NewPair(campaign.CharacterID(key[:i]), campaign.CharacterID(key[i+1:])), true
		}
	}
	return Pair{}, false
}

// readState returns the stored state for a pair, or nil. Read-only
// accessors on Query go through here.
func (e *Engine) readState(p Pair) *State {
	return e.states[p]
}
