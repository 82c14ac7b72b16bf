package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/fault"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/relationship"
)

func intPtr(v int) *int { return &v }

// simCatalog declares one guaranteed-great-success training event (skill
// 10 vs target 2 cannot miss by less than the default threshold) plus an
// event that can never become available.
func simCatalog() *config.Catalog {
	return &config.Catalog{
		Axes: map[string]axis.Bounds{
			"friendship": {Min: -100, Max: 100},
			"xp":         {Min: 0, Max: 10000},
		},
		Resolvers: config.ResolverMaps{
			Roles: map[string][]string{"MEKWARRIOR": {"mekwarrior"}},
			TriggerSchemas: map[string]config.TriggerSchema{
				"shared_triumph": {
					Sources: []string{"outcome_applier"},
					Params:  map[string]string{"intensity": "int"},
				},
			},
			TriggerHandlers: map[string]config.HandlerSpec{
				"shared_triumph": {
					Axes:       map[string]config.AxisEffect{"friendship": {Base: 1, PerIntensity: 1}},
					Sentiments: map[string]int{"camaraderie": 1},
				},
			},
		},
		Events: []config.EventDef{
			{
				ID:        1,
				Name:      "lance_training",
				Domain:    "training",
				Weight:    5,
				Selection: config.SelectionRule{Role: "MEKWARRIOR", Count: 2},
			},
			{
				ID:     2,
				Name:   "grand_parade",
				Domain: "training",
				Weight: 5,
				Availability: []config.Requirement{
					{Role: "MEKWARRIOR", Min: 99},
				},
				Selection: config.SelectionRule{Role: "MEKWARRIOR", Count: 2},
			},
		},
		Domains: map[string][]config.InteractionDef{
			"training": {
				{
					ID: "drill",
					Resolution: config.ResolutionDef{
						Stages: []config.StageDef{{Skill: "gunnery", Target: 2}},
					},
					Outcomes: map[string]config.OutcomeDef{
						config.TierGreatSuccess: {
							AxisDelta: map[string]int{"friendship": 2},
							XPDelta:   intPtr(3),
							SetFlags:  map[string]int{"drilled_together": 2},
							EmitTriggers: []config.TriggerDef{
								{Kind: "shared_triumph", Params: map[string]any{"intensity": 1}},
							},
						},
					},
				},
			},
		},
	}
}

func simRoster() *campaign.Roster {
	mk := func(id string) *campaign.Character {
		return &campaign.Character{
			ID:          campaign.CharacterID(id),
			Professions: []string{"mekwarrior"},
			Status:      campaign.StatusActive,
			Age:         30,
			Skills:      map[string]int{"gunnery": 10},
		}
	}
	return campaign.NewRoster([]*campaign.Character{mk("w1"), mk("w2"), mk("w3")})
}

func newSim(t *testing.T) *Simulation {
	t.Helper()
	s, err := New(simCatalog(), simRoster(), campaign.Date{Year: 3042, Day: 1}, 99, journal.New())
	require.NoError(t, err)
	return s
}

func TestRunEventCycleAppliesDeclaredOutcome(t *testing.T) {
	s := newSim(t)
	date := campaign.Date{Year: 3042, Day: 10}

	out, err := s.RunEventCycle(1, date)
	require.NoError(t, err)
	assert.Equal(t, config.TierGreatSuccess, out.Tier)
	assert.Equal(t, "drill", out.Interaction)
	require.Len(t, out.Instance.Participants, 2)

	a, b := out.Instance.Participants[0], out.Instance.Participants[1]

	// friendship: declared +2 plus the shared_triumph handler's 1+1×1.
	v, err := s.Query().GetAxis(a, b, "friendship")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	for _, id := range out.Instance.Participants {
		xp, err := s.Registry.Get(axis.CharacterKey(id), "xp")
		require.NoError(t, err)
		assert.Equal(t, 3, xp)
	}

	assert.True(t, s.Query().HasFlag(a, b, "drilled_together"))
	assert.Equal(t, 1, s.Query().Sentiments(a, b)["camaraderie"])
}

func TestRunEventCycleDeterministicPerDate(t *testing.T) {
	date := campaign.Date{Year: 3042, Day: 10}

	outA, err := newSim(t).RunEventCycle(1, date)
	require.NoError(t, err)
	outB, err := newSim(t).RunEventCycle(1, date)
	require.NoError(t, err)

	assert.Equal(t, outA.Instance.Participants, outB.Instance.Participants)
	assert.Equal(t, outA.Tier, outB.Tier)
	assert.Equal(t, outA.Effects, outB.Effects)
}

func TestRunEventCycleUnknownEvent(t *testing.T) {
	_, err := newSim(t).RunEventCycle(404, campaign.Date{Year: 3042, Day: 1})
	assert.True(t, fault.IsConfig(err))
}

func TestRunEventCycleUnavailable(t *testing.T) {
	_, err := newSim(t).RunEventCycle(2, campaign.Date{Year: 3042, Day: 1})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "needs 99 characters")
}

func TestAdvanceDayDecaysFlagsAndMovesDate(t *testing.T) {
	s := newSim(t)

	require.NoError(t, s.Intake().Submit(relationship.Trigger{
		Kind:     relationship.KindSetFlag,
		Source:   "host",
		Subjects: []campaign.CharacterID{"w1", "w2"},
		Params:   map[string]any{"flag": "awkward", "duration": 2},
	}))
	require.True(t, s.Query().IsAwkward("w1", "w2"))

	assert.Equal(t, campaign.Date{Year: 3042, Day: 2}, s.AdvanceDay())
	assert.True(t, s.Query().IsAwkward("w1", "w2"), "one day left")
	s.AdvanceDay()
	assert.False(t, s.Query().IsAwkward("w1", "w2"))
	assert.Equal(t, campaign.Date{Year: 3042, Day: 3}, s.Date)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := newSim(t)
	date := campaign.Date{Year: 3042, Day: 10}
	out, err := s.RunEventCycle(1, date)
	require.NoError(t, err)
	s.Date = date
	a, b := out.Instance.Participants[0], out.Instance.Participants[1]

	snap := s.SnapshotState()

	restored := newSim(t)
	require.NoError(t, restored.RestoreState(snap))

	assert.Equal(t, date, restored.Date)
	assert.Equal(t, s.AxisState(), restored.AxisState())
	assert.Equal(t, s.Query().Flags(a, b), restored.Query().Flags(a, b))
	assert.Equal(t, s.Query().Sentiments(a, b), restored.Query().Sentiments(a, b))
}

func TestRestoreRejectsUnknownAxis(t *testing.T) {
	s := newSim(t)
	snap := s.SnapshotState()
	snap.Axes.Values = map[axis.SubjectKey]map[string]int{
		"w1": {"charisma": 3},
	}
	err := s.RestoreState(snap)
	assert.True(t, fault.IsConfig(err))
}

func TestInjectRandomEventDeterministic(t *testing.T) {
	date := campaign.Date{Year: 3042, Day: 20}

	outA, err := newSim(t).InjectRandomEvent(date)
	require.NoError(t, err)
	require.NotNil(t, outA)
	assert.Equal(t, 1, outA.Instance.EventID, "only event 1 is ever available")

	outB, err := newSim(t).InjectRandomEvent(date)
	require.NoError(t, err)
	assert.Equal(t, outA.Instance.Participants, outB.Instance.Participants)
}

func TestNewRejectsCollidingCharacterIDs(t *testing.T) {
	roster := campaign.NewRoster([]*campaign.Character{
		{ID: "a|b", Status: campaign.StatusActive},
	})
	_, err := New(simCatalog(), roster, campaign.Date{Year: 3042, Day: 1}, 1, journal.New())
	assert.True(t, fault.IsConfig(err), "pair separator in a character id")

	roster = campaign.NewRoster([]*campaign.Character{
		{ID: "campaign", Status: campaign.StatusActive},
	})
	_, err = New(simCatalog(), roster, campaign.Date{Year: 3042, Day: 1}, 1, journal.New())
	assert.True(t, fault.IsConfig(err), "reserved campaign subject as a character id")
}

func TestInjectRandomEventNoneAvailable(t *testing.T) {
	cat := simCatalog()
	for i := range cat.Events {
		cat.Events[i].Weight = 0
	}
	s, err := New(cat, simRoster(), campaign.Date{Year: 3042, Day: 1}, 1, journal.New())
	require.NoError(t, err)

	out, err := s.InjectRandomEvent(campaign.Date{Year: 3042, Day: 5})
	require.NoError(t, err)
	assert.Nil(t, out)
}
