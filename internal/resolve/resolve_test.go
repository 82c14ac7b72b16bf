package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/journal"
)

func testMaps() config.ResolverMaps {
	return config.ResolverMaps{
		Roles: map[string][]string{
			"MEKWARRIOR": {"mekwarrior"},
			"HR":         {"admin_hr"},
		},
		Filters: map[string]config.FilterDef{
			"active_duty": {Field: "status", In: []string{"active"}},
		},
		FilterAliases: map[string]string{"on_duty": "active_duty"},
		AgeGroups: map[string]config.AgeRange{
			"adult": {Min: 18, Max: 54},
		},
		PairPredicates: map[string]config.Predicate{
			"awkward_pair": {Type: "has_flag", Flag: "awkward"},
			"comfortable":  {Type: "not", Of: &config.Predicate{Type: "has_any_flag", Flags: []string{"awkward", "grudge"}}},
			"both": {Type: "and", All: []config.Predicate{
				{Type: "has_flag", Flag: "awkward"},
				{Type: "has_flag", Flag: "grudge"},
			}},
			"either": {Type: "or", Any: []config.Predicate{
				{Type: "has_flag", Flag: "awkward"},
				{Type: "has_flag", Flag: "grudge"},
			}},
			"novel": {Type: "soul_bond"},
		},
		PersonSets: map[string][]string{
			"available_adults": {"present", "active_duty"},
		},
	}
}

func testRoster() *campaign.Roster {
	return campaign.NewRoster([]*campaign.Character{
		{ID: "w1", Professions: []string{"mekwarrior"}, Status: "active", Age: 30},
		{ID: "w2", Professions: []string{"mekwarrior"}, Status: "active", Age: 17},
		{ID: "w3", Professions: []string{"mekwarrior"}, Status: "absent", Age: 40},
		{ID: "t1", Professions: []string{"tech"}, Status: "active", Age: 25},
	})
}

func newResolvers() (*Resolvers, *journal.Journal) {
	j := journal.New()
	return New(testMaps(), j), j
}

// fakePairState flags exactly one pair.
type fakePairState struct {
	flags map[string]bool
}

func (f *fakePairState) HasFlag(a, b campaign.CharacterID, flag string) bool {
	return f.flags[flag]
}

func (f *fakePairState) HasAnyFlag(a, b campaign.CharacterID, flags ...string) bool {
	for _, fl := range flags {
		if f.flags[fl] {
			return true
		}
	}
	return false
}

func (f *fakePairState) RolePartners(id campaign.CharacterID, role string) []campaign.CharacterID {
	return nil
}

func countKind(j *journal.Journal, kind journal.Kind) int {
	n := 0
	for _, rec := range j.Records() {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

func TestCandidatesRoleFilterAge(t *testing.T) {
	r, _ := newResolvers()
	ids := r.Candidates(1001, config.SelectionRule{
		Role:     "MEKWARRIOR",
		Filters:  []string{"on_duty"},
		AgeGroup: "adult",
	}, testRoster())
	assert.Equal(t, []campaign.CharacterID{"w1"}, ids)
}

func TestUnknownRoleWarnsAndReturnsEmpty(t *testing.T) {
	r, j := newResolvers()
	ids := r.Candidates(1001, config.SelectionRule{Role: "QUARTERMASTER"}, testRoster())
	assert.Empty(t, ids)
	assert.GreaterOrEqual(t, countKind(j, journal.KindUnknownToken), 1)

	rec := j.Records()[0]
	assert.Equal(t, 1001, rec.EventID)
	assert.Equal(t, "QUARTERMASTER", rec.Token)
}

func TestUnknownFilterAndAgeGroupWarn(t *testing.T) {
	r, j := newResolvers()
	c := testRoster().Get("w1")

	assert.False(t, r.PassesFilter(7, c, "deployed"))
	assert.False(t, r.InAgeGroup(7, c, "elder"))
	assert.Equal(t, 2, countKind(j, journal.KindUnknownToken))
}

func TestBuiltinPlaceholderFilters(t *testing.T) {
	r, j := newResolvers()
	roster := testRoster()

	assert.True(t, r.PassesFilter(1, roster.Get("w1"), "present"))
	assert.False(t, r.PassesFilter(1, roster.Get("w3"), "present"), "absent is not present")
	assert.True(t, r.PassesFilter(1, roster.Get("w1"), "alive"))
	assert.Zero(t, countKind(j, journal.KindUnknownToken), "placeholders are not unknown tokens")
}

func TestPairPredicates(t *testing.T) {
	r, _ := newResolvers()
	ps := &fakePairState{flags: map[string]bool{"awkward": true}}

	assert.True(t, r.EvalPairPredicate(1, "awkward_pair", "a", "b", ps))
	assert.False(t, r.EvalPairPredicate(1, "comfortable", "a", "b", ps))
	assert.False(t, r.EvalPairPredicate(1, "both", "a", "b", ps))
	assert.True(t, r.EvalPairPredicate(1, "either", "a", "b", ps))

	calm := &fakePairState{flags: map[string]bool{}}
	assert.True(t, r.EvalPairPredicate(1, "comfortable", "a", "b", calm))
}

func TestUnknownPredicateIsFalseWithWarning(t *testing.T) {
	r, j := newResolvers()
	ps := &fakePairState{flags: map[string]bool{"awkward": true}}

	assert.False(t, r.EvalPairPredicate(9, "untracked", "a", "b", ps), "unknown name")
	assert.False(t, r.EvalPairPredicate(9, "novel", "a", "b", ps), "unknown node type")
	assert.Equal(t, 2, countKind(j, journal.KindUnknownToken))
}

func TestRoleGroupPickTakesOne(t *testing.T) {
	r, _ := newResolvers()
	roster := campaign.NewRoster([]*campaign.Character{
		{ID: "h1", Professions: []string{"admin_hr"}, Status: "active", Age: 40},
		{ID: "h2", Professions: []string{"admin_hr"}, Status: "active", Age: 50},
	})
	ids := r.DerivedParticipants(3001, config.DerivedRule{Kind: "role_group_pick", Role: "HR"}, nil, roster, nil)
	assert.Equal(t, []campaign.CharacterID{"h1"}, ids)
}

func TestRoleGroupPickEmptyWarnsOnce(t *testing.T) {
	r, j := newResolvers()
	ids := r.DerivedParticipants(3001, config.DerivedRule{Kind: "role_group_pick", Role: "HR"}, nil, testRoster(), nil)
	assert.Empty(t, ids)

	require.Equal(t, 1, countKind(j, journal.KindWarning))
	for _, rec := range j.Records() {
		if rec.Kind == journal.KindWarning {
			assert.Equal(t, 3001, rec.EventID)
			assert.Equal(t, "HR", rec.Token)
		}
	}
}

func TestRoleGroupPickExcludesPrimaries(t *testing.T) {
	r, _ := newResolvers()
	roster := campaign.NewRoster([]*campaign.Character{
		{ID: "h1", Professions: []string{"admin_hr"}, Status: "active", Age: 40},
		{ID: "h2", Professions: []string{"admin_hr"}, Status: "active", Age: 50},
	})
	ids := r.DerivedParticipants(3001, config.DerivedRule{Kind: "role_group_pick", Role: "HR"},
		[]campaign.CharacterID{"h1"}, roster, nil)
	assert.Equal(t, []campaign.CharacterID{"h2"}, ids)
}

func TestPersonSet(t *testing.T) {
	r, _ := newResolvers()
	ids := r.DerivedParticipants(1, config.DerivedRule{Kind: "person_set", PersonSet: "available_adults"},
		nil, testRoster(), nil)
	assert.Equal(t, []campaign.CharacterID{"w1", "w2", "t1"}, ids, "absent w3 excluded; age not part of the set")
}

// roleState answers RolePartners from a fixed table.
type roleState struct {
	fakePairState
	partners map[string][]campaign.CharacterID
}

func (r *roleState) RolePartners(id campaign.CharacterID, role string) []campaign.CharacterID {
	return r.partners[string(id)+"/"+role]
}

func TestCompositeFirstSupported(t *testing.T) {
	r, j := newResolvers()
	rs := &roleState{partners: map[string][]campaign.CharacterID{
		"w1/MENTOR": {"m1"},
	}}

	ids := r.DerivedParticipants(5, config.DerivedRule{
		Kind:      "composite_first_supported",
		Relations: []string{"patron_of", "mentor_of"},
	}, []campaign.CharacterID{"w1"}, testRoster(), rs)

	assert.Equal(t, []campaign.CharacterID{"m1"}, ids, "skips unsupported relation, resolves mentor")
	assert.Equal(t, 1, countKind(j, journal.KindUnknownToken), "patron_of warned")
}

func TestUnknownDerivedKindWarns(t *testing.T) {
	r, j := newResolvers()
	ids := r.DerivedParticipants(5, config.DerivedRule{Kind: "summon_reinforcements"}, nil, testRoster(), nil)
	assert.Empty(t, ids)
	assert.Equal(t, 1, countKind(j, journal.KindUnknownToken))
}
