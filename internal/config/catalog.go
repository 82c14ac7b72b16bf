package config

import (
	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/fault"
)

// Catalog is the full loaded configuration set.
type Catalog struct {
	Axes      map[string]axis.Bounds      `json:"axes"`
	Resolvers ResolverMaps                `json:"resolvers"`
	Events    []EventDef                  `json:"events"`
	Domains   map[string][]InteractionDef `json:"domains"`
}

// ResolverMaps is the declarative DSL configuration: how abstract tokens
// in event rules map to concrete checks.
type ResolverMaps struct {
	Roles           map[string][]string       `json:"roles"`            // Abstract role → concrete profession tags.
	Filters         map[string]FilterDef      `json:"filters"`
	FilterAliases   map[string]string         `json:"filter_aliases"`
	AgeGroups       map[string]AgeRange       `json:"age_groups"`
	PairPredicates  map[string]Predicate      `json:"pair_predicates"`
	PersonSets      map[string][]string       `json:"person_sets"`      // Named reusable filter combinations.
	TriggerSchemas  map[string]TriggerSchema  `json:"trigger_schemas"`
	TriggerHandlers map[string]HandlerSpec    `json:"trigger_handlers"`
}

// FilterDef is a named predicate over character fields.
type FilterDef struct {
	Field string   `json:"field"` // "status" is the only field currently defined.
	In    []string `json:"in"`
	NotIn []string `json:"not_in"`
}

// AgeRange is an inclusive age band.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Predicate is a boolean expression over relationship flags.
type Predicate struct {
	Type  string      `json:"type"` // has_flag | has_any_flag | not | and | or
	Flag  string      `json:"flag"`
	Flags []string    `json:"flags"`
	Of    *Predicate  `json:"of"`
	All   []Predicate `json:"all"`
	Any   []Predicate `json:"any"`
}

// TriggerSchema declares the shape a trigger kind must have at the intake.
type TriggerSchema struct {
	Sources        []string          `json:"sources"`  // Allowed declared sources.
	Subjects       int               `json:"subjects"` // Required subject count; 0 means the default of 2.
	Params         map[string]string `json:"params"`   // Required param name → type (int|string|id).
	OptionalParams map[string]string `json:"optional_params"`
}

// AxisEffect scales a relationship-axis delta applied by a trigger handler.
type AxisEffect struct {
	Base         int `json:"base"`
	PerIntensity int `json:"per_intensity"` // Multiplied by the trigger's intensity param.
}

// RoleAssignment maps the trigger's two subjects onto relationship roles.
type RoleAssignment struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// HandlerSpec is the declarative body of a relationship trigger handler.
type HandlerSpec struct {
	Axes        map[string]AxisEffect `json:"axes"`
	SetFlags    map[string]int        `json:"set_flags"` // Flag name → duration in days.
	ClearFlags  []string              `json:"clear_flags"`
	Sentiments  map[string]int        `json:"sentiments"` // Sentiment name → strength delta.
	AssignRole  *RoleAssignment       `json:"assign_role"`
	Directional bool                  `json:"directional"` // Sentiments keyed toward the "toward" param subject.
}

// EventDef is one static event catalog entry.
type EventDef struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Category     string        `json:"category"`
	Domain       string        `json:"domain"`
	Weight       int           `json:"weight"` // Random-injection weight; 0 excludes the event.
	Availability []Requirement `json:"availability"`
	Selection    SelectionRule `json:"selection"`
	Derived      []DerivedRule `json:"derived"`
}

// Requirement is a minimum headcount the roster must satisfy for the
// event to be available.
type Requirement struct {
	Role     string `json:"role"`
	Filter   string `json:"filter"`
	AgeGroup string `json:"age_group"`
	Min      int    `json:"min"`
}

// SelectionRule picks the event's primary participants.
type SelectionRule struct {
	Role     string   `json:"role"`
	Filters  []string `json:"filters"`
	AgeGroup string   `json:"age_group"`
	Count    int      `json:"count"`
}

// DerivedRule adds participants relative to the primary selection.
type DerivedRule struct {
	Kind      string   `json:"kind"` // role_group_pick | person_set | composite_first_supported
	Role      string   `json:"role"`
	PersonSet string   `json:"person_set"`
	Relations []string `json:"relations"`
}

// InteractionDef is one concrete interaction in a domain catalog.
type InteractionDef struct {
	ID          string                `json:"id"`
	BaseWeight  float64               `json:"base_weight"`
	ToneWeights map[string]float64    `json:"tone_weights"`        // Tone name → multiplier.
	EnvWeights  map[string]float64    `json:"environment_weights"` // Environment name → multiplier.
	PairWeights map[string]float64    `json:"pair_weights"`        // Pair predicate name → multiplier.
	Resolution  ResolutionDef         `json:"resolution"`
	Outcomes    map[string]OutcomeDef `json:"outcomes"`
}

// Outcome tier keys. An interaction declares effects per tier; a tier
// with no entry applies nothing.
const (
	TierGreatSuccess = "on_great_success"
	TierSuccess      = "on_success"
	TierFailure      = "on_failure"
)

// ResolutionDef describes the staged skill checks for an interaction.
type ResolutionDef struct {
	Stages         []StageDef `json:"stages"`
	GreatThreshold int        `json:"great_threshold"` // Cumulative margin at or above → great success.
}

// StageDef is a single skill check within a resolution.
type StageDef struct {
	Skill    string `json:"skill"`
	Target   int    `json:"target"`
	Modifier int    `json:"modifier"`
	Actor    int    `json:"actor"` // Participant index performing the check.
}

// OutcomeDef lists the effects declared for one tier. Pointer and
// map/slice fields distinguish "absent" from "zero": an outcome with no
// axis_delta key changes no axis.
type OutcomeDef struct {
	AxisDelta           map[string]int `json:"axis_delta"` // Relationship axis → delta on the primary pair.
	XPDelta             *int           `json:"xp_delta"`
	FatigueDelta        *int           `json:"fatigue_delta"`
	ConfidenceDelta     *int           `json:"confidence_delta"`
	ReputationPoolDelta *int           `json:"reputation_pool_delta"`
	SetFlags            map[string]int `json:"set_flags"` // Flag name → duration; routed through a trigger.
	EmitTriggers        []TriggerDef   `json:"emit_triggers"`
}

// TriggerDef is a trigger declared by an outcome. Subject ids are bound
// at apply time from the event's participants.
type TriggerDef struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params"`
}

// Event returns the event definition with the given id.
func (c *Catalog) Event(id int) (EventDef, bool) {
	for _, def := range c.Events {
		if def.ID == id {
			return def, true
		}
	}
	return EventDef{}, false
}

// Validate checks structural integrity: duplicate event ids, events
// bound to missing domains, unknown outcome tier keys, and stage-less
// resolutions. Unknown DSL tokens are deliberately not load errors; they
// degrade at resolution time instead.
func (c *Catalog) Validate() error {
	seen := make(map[int]bool, len(c.Events))
	for _, def := range c.Events {
		if seen[def.ID] {
			return fault.ConfigFile("events.json", def.Name, "duplicate event id %d", def.ID)
		}
		seen[def.ID] = true
		if def.Domain == "" {
			return fault.ConfigFile("events.json", def.Name, "event %d has no domain", def.ID)
		}
		if _, ok := c.Domains[def.Domain]; !ok {
			return fault.ConfigFile("events.json", def.Name, "event %d references missing domain %q", def.ID, def.Domain)
		}
		if def.Selection.Count <= 0 {
			return fault.ConfigFile("events.json", def.Name, "event %d selection count must be positive", def.ID)
		}
	}
	for domain, defs := range c.Domains {
		for _, in := range defs {
			if len(in.Resolution.Stages) == 0 {
				return fault.ConfigFile("interactions.json", in.ID, "interaction in domain %q has no resolution stages", domain)
			}
			for tier := range in.Outcomes {
				switch tier {
				case TierGreatSuccess, TierSuccess, TierFailure:
				default:
					return fault.ConfigFile("interactions.json", in.ID, "unknown outcome tier %q", tier)
				}
			}
		}
	}
	// A handler referencing an unregistered axis would otherwise surface
	// mid-outcome; catch it at load, where the operator can act on it.
	for kind, h := range c.Resolvers.TriggerHandlers {
		for axisName := range h.Axes {
			if _, ok := c.Axes[axisName]; !ok {
				return fault.ConfigFile("resolvers.json", kind, "trigger handler references unregistered axis %q", axisName)
			}
		}
	}
	return nil
}
