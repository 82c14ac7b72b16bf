package relationship

import (
	"fmt"

	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/fault"
	"github.com/voxhall/muster/internal/journal"
)

// Intake is the single authorized crossing point from the event pipeline
// into relationship state. Every trigger is validated against its
// registered schema before the engine sees it; rejection is a structured
// error, never a silent drop.
type Intake struct {
	schemas map[string]config.TriggerSchema
	engine  *Engine
	journal *journal.Journal
}

// NewIntake builds the intake over the registered trigger schemas.
func NewIntake(schemas map[string]config.TriggerSchema, e *Engine, j *journal.Journal) *Intake {
	s := make(map[string]config.TriggerSchema, len(schemas)+1)
	for kind, schema := range schemas {
		s[kind] = schema
	}
	// The applier's flag bridge is always registered.
	if _, ok := s[KindSetFlag]; !ok {
		s[KindSetFlag] = config.TriggerSchema{
			Params:         map[string]string{"flag": "string"},
			OptionalParams: map[string]string{"duration": "int"},
		}
	}
	return &Intake{schemas: s, engine: e, journal: j}
}

// Validate checks the trigger against its schema without forwarding it.
// The outcome applier prevalidates declared triggers through this before
// committing any effect.
func (in *Intake) Validate(t Trigger) error {
	schema, ok := in.schemas[t.Kind]
	if !ok {
		return fault.RejectTrigger(t.Kind, "kind is not registered")
	}

	if len(schema.Sources) > 0 {
		allowed := false
		for _, src := range schema.Sources {
			if src == t.Source {
				allowed = true
				break
			}
		}
		if !allowed {
			return fault.RejectTrigger(t.Kind, "source %q is not allowed", t.Source)
		}
	}

	want := schema.Subjects
	if want == 0 {
		want = 2
	}
	if len(t.Subjects) != want {
		return fault.RejectTrigger(t.Kind, "expected %d subjects, got %d", want, len(t.Subjects))
	}
	for i, id := range t.Subjects {
		if id == "" {
			return fault.RejectTrigger(t.Kind, "subject %d is empty", i)
		}
	}

	for name, typ := range schema.Params {
		v, present := t.Params[name]
		if !present {
			return fault.RejectTrigger(t.Kind, "missing required param %q", name)
		}
		if !paramTypeOK(typ, v) {
			return fault.RejectTrigger(t.Kind, "param %q is not a %s", name, typ)
		}
	}
	for name, typ := range schema.OptionalParams {
		if v, present := t.Params[name]; present && !paramTypeOK(typ, v) {
			return fault.RejectTrigger(t.Kind, "param %q is not a %s", name, typ)
		}
	}
	return nil
}

// Vet runs schema validation plus the engine's own precheck, without
// forwarding the trigger. A trigger that passes Vet cannot fail at
// Submit time, which is what lets the outcome applier commit a whole
// outcome atomically.
func (in *Intake) Vet(t Trigger) error {
	if err := in.Validate(t); err != nil {
		return err
	}
	return in.engine.Vet(t)
}

// Submit validates the trigger and, if accepted, forwards it unchanged
// to the relationship engine. A rejected trigger leaves all state
// untouched and is journaled with its reason.
func (in *Intake) Submit(t Trigger) error {
	if err := in.Validate(t); err != nil {
		in.journal.Append(journal.Record{
			Kind:    journal.KindTrigger,
			Token:   t.Kind,
			Message: fmt.Sprintf("rejected: %v", err),
		})
		return err
	}
	if err := in.engine.Process(t); err != nil {
		return err
	}
	in.journal.Append(journal.Record{
		Kind:    journal.KindTrigger,
		Token:   t.Kind,
		Message: "accepted",
	})
	return nil
}

func paramTypeOK(typ string, v any) bool {
	switch typ {
	case "int":
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int(n))
		default:
			return false
		}
	case "string", "id":
		s, ok := v.(string)
		return ok && (typ == "string" || s != "")
	default:
		// An unknown declared type can never match; reject loudly at
		// validation rather than guessing.
		return false
	}
}
