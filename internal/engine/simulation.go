// Package engine wires the event pipeline and the relationship engine
// into the simulation facade the host application calls. Every entry
// point is synchronous: a cycle either completes fully or fails with a
// structured error before any mutation.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/event"
	"github.com/voxhall/muster/internal/fault"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/relationship"
	"github.com/voxhall/muster/internal/resolve"
)

// ErrUnavailable reports an event whose availability rule failed. The
// reasons travel in the wrapping error text.
var ErrUnavailable = errors.New("event unavailable")

// Simulation owns the long-lived registries and pipeline components.
// Construct one per campaign and pass it by reference; there are no
// package-level statics. The core applies no internal locking; hosts
// running cycles concurrently must serialize externally.
type Simulation struct {
	Catalog  *config.Catalog
	Roster   *campaign.Roster
	Registry *axis.Registry
	Journal  *journal.Journal
	Date     campaign.Date

	resolvers  *resolve.Resolvers
	injector   *event.Injector
	selector   *event.Selector
	resolver   *event.Resolver
	applier    *event.Applier
	relEngine  *relationship.Engine
	intake     *relationship.Intake
	query      *relationship.Query
	atmosphere *Atmosphere
}

// New builds a simulation over the loaded catalog and host roster.
// Exactly two axis writer capabilities are minted, the relationship
// engine's and the outcome applier's, then the registry is sealed.
func New(cat *config.Catalog, roster *campaign.Roster, start campaign.Date, seed int64, j *journal.Journal) (*Simulation, error) {
	for _, id := range roster.IDs() {
		if err := axis.CheckSubjectID(id); err != nil {
			return nil, err
		}
	}

	registry := axis.NewRegistry(cat.Axes)

	relWriter, err := registry.NewWriter("relationship_engine")
	if err != nil {
		return nil, err
	}
	applierWriter, err := registry.NewWriter("outcome_applier")
	if err != nil {
		return nil, err
	}
	registry.Seal()

	resolvers := resolve.New(cat.Resolvers, j)
	relEngine := relationship.NewEngine(relWriter, cat.Resolvers.TriggerHandlers, j)
	intake := relationship.NewIntake(cat.Resolvers.TriggerSchemas, relEngine, j)
	query := relationship.NewQuery(relEngine, registry)

	s := &Simulation{
		Catalog:    cat,
		Roster:     roster,
		Registry:   registry,
		Journal:    j,
		Date:       start,
		resolvers:  resolvers,
		injector:   event.NewInjector(cat, resolvers, j),
		selector:   event.NewSelector(cat.Domains, resolvers, j),
		resolver:   event.NewResolver(j),
		applier:    event.NewApplier(applierWriter, intake, j),
		relEngine:  relEngine,
		intake:     intake,
		query:      query,
		atmosphere: NewAtmosphere(seed),
	}
	j.SetDay(start.String())
	return s, nil
}

// Query returns the read-only relationship state facade.
func (s *Simulation) Query() *relationship.Query {
	return s.query
}

// Intake returns the trigger intake, for hosts that feed triggers from
// outside the event pipeline (e.g. scripted story beats).
func (s *Simulation) Intake() *relationship.Intake {
	return s.intake
}

// CheckAvailability evaluates an event's availability rule against the
// current roster.
func (s *Simulation) CheckAvailability(eventID int) (bool, []string) {
	return s.injector.CheckAvailability(eventID, s.Roster)
}

// EligibleCandidates returns the full candidate pool for an event.
func (s *Simulation) EligibleCandidates(eventID int) []campaign.CharacterID {
	return s.injector.EligibleCandidates(eventID, s.Roster)
}

// SelectParticipants applies the event's primary-selection rule. Pass a
// nil date for the fully deterministic first-N selection.
func (s *Simulation) SelectParticipants(eventID int, date *campaign.Date) []campaign.CharacterID {
	return s.injector.SelectParticipants(eventID, s.Roster, date)
}

// RunEventCycle executes the full four-layer pipeline for one event on
// one date. On any failure the error surfaces before state changed.
func (s *Simulation) RunEventCycle(eventID int, date campaign.Date) (*event.AppliedOutcome, error) {
	def, ok := s.Catalog.Event(eventID)
	if !ok {
		return nil, fault.ConfigFile("events.json", fmt.Sprintf("%d", eventID), "event is not in the catalog")
	}

	available, reasons := s.injector.CheckAvailability(eventID, s.Roster)
	if !available {
		return nil, fmt.Errorf("event %d: %w: %s", eventID, ErrUnavailable, strings.Join(reasons, "; "))
	}

	primaries := s.injector.SelectParticipants(eventID, s.Roster, &date)
	if len(primaries) == 0 {
		return nil, fmt.Errorf("event %d: %w: no participants selected", eventID, ErrUnavailable)
	}
	derived := s.injector.DeriveParticipants(def, primaries, s.Roster, s.query)
	inst := event.NewInstance(def, date, primaries, derived)
	s.Journal.Cycle(eventID, fmt.Sprintf("cycle %s: %d primary, %d derived", inst.ID, len(primaries), len(derived)))

	tone := s.atmosphere.Tone(date)
	environment := s.atmosphere.Environment(date)
	rng := rand.New(rand.NewSource(date.Seed(fmt.Sprintf("cycle:%d", eventID))))

	sel, err := s.selector.Select(inst, tone, environment, s.query, rng)
	if err != nil {
		return nil, err
	}
	res, err := s.resolver.Resolve(sel, s.Roster, rng)
	if err != nil {
		return nil, err
	}
	return s.applier.Apply(res)
}

// InjectRandomEvent picks one available event by catalog weight and runs
// its cycle. The pick is deterministic per date; distinct dates vary.
// With no available weighted events it returns (nil, nil).
func (s *Simulation) InjectRandomEvent(date campaign.Date) (*event.AppliedOutcome, error) {
	type candidate struct {
		id     int
		weight int
	}
	var pool []candidate
	total := 0
	for _, def := range s.Catalog.Events {
		if def.Weight <= 0 {
			continue
		}
		if ok, _ := s.injector.CheckAvailability(def.ID, s.Roster); !ok {
			continue
		}
		pool = append(pool, candidate{id: def.ID, weight: def.Weight})
		total += def.Weight
	}
	if total == 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(date.Seed("inject")))
	pick := rng.Intn(total)
	chosen := pool[len(pool)-1].id
	for _, c := range pool {
		pick -= c.weight
		if pick < 0 {
			chosen = c.id
			break
		}
	}
	return s.RunEventCycle(chosen, date)
}

// AdvanceDay moves the calendar forward one day and decays relationship
// flags. Returns the new date.
func (s *Simulation) AdvanceDay() campaign.Date {
	s.relEngine.AdvanceDay()
	s.Date = s.Date.Next()
	s.Journal.SetDay(s.Date.String())
	s.Journal.Append(journal.Record{Kind: journal.KindDay, Message: "day advanced"})
	return s.Date
}

// AxisState returns a copy of every stored axis value.
func (s *Simulation) AxisState() axis.Snapshot {
	return s.Registry.Snapshot()
}

// State is the whole-state snapshot hosts persist between cycles.
type State struct {
	Date          campaign.Date         `json:"date"`
	Axes          axis.Snapshot         `json:"axes"`
	Relationships relationship.Snapshot `json:"relationships"`
}

// SnapshotState captures the full persistent state.
func (s *Simulation) SnapshotState() State {
	return State{
		Date:          s.Date,
		Axes:          s.Registry.Snapshot(),
		Relationships: s.relEngine.Snapshot(),
	}
}

// RestoreState replaces the persistent state with the snapshot. The
// axis restore validates bounds first, so a stale snapshot cannot leave
// the registry half-written.
func (s *Simulation) RestoreState(st State) error {
	if err := s.Registry.Restore(st.Axes); err != nil {
		return fmt.Errorf("restore axes: %w", err)
	}
	s.relEngine.Restore(st.Relationships)
	s.Date = st.Date
	s.Journal.SetDay(s.Date.String())
	return nil
}
