package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/fault"
)

func TestStripComments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "{\n// note\n\"a\": 1\n}", "{\n\n\"a\": 1\n}"},
		{"block comment", `{"a": /* mid */ 1}`, `{"a":  1}`},
		{"slashes inside string", `{"url": "http://x/y"}`, `{"url": "http://x/y"}`},
		{"trailing comma object", "{\"a\": 1,\n}", "{\"a\": 1\n}"},
		{"trailing comma array", `[1, 2, ]`, `[1, 2 ]`},
		{"comma then commented entry", "{\"a\": 1,\n// \"b\": 2\n}", "{\"a\": 1\n\n}"},
		{"escaped quote in string", `{"a": "he said \"hi\" // not a comment"}`, `{"a": "he said \"hi\" // not a comment"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(StripComments([]byte(tc.in))))
		})
	}
}

func TestDecodeLenientJSON(t *testing.T) {
	src := []byte(`{
		// friendship is the main social axis
		"friendship": { "min": -100, "max": 100 },
		"xp": { "min": 0, "max": 10000 }, /* trailing comma below */
	}`)
	var bounds map[string]axis.Bounds
	require.NoError(t, Decode("axes.json", src, &bounds))
	assert.Equal(t, axis.Bounds{Min: -100, Max: 100}, bounds["friendship"])
}

func TestDecodeReportsFile(t *testing.T) {
	var out map[string]int
	err := Decode("events.json", []byte("{nope"), &out)
	require.Error(t, err)
	var ce *fault.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "events.json", ce.File)
}

func validCatalog() *Catalog {
	return &Catalog{
		Events: []EventDef{
			{ID: 1, Name: "a", Domain: "d", Selection: SelectionRule{Count: 2}},
		},
		Domains: map[string][]InteractionDef{
			"d": {{
				ID:         "x",
				Resolution: ResolutionDef{Stages: []StageDef{{Skill: "gunnery", Target: 7}}},
				Outcomes:   map[string]OutcomeDef{TierSuccess: {}},
			}},
		},
	}
}

func TestCatalogValidate(t *testing.T) {
	require.NoError(t, validCatalog().Validate())

	dup := validCatalog()
	dup.Events = append(dup.Events, EventDef{ID: 1, Domain: "d", Selection: SelectionRule{Count: 1}})
	assert.True(t, fault.IsConfig(dup.Validate()), "duplicate id")

	missing := validCatalog()
	missing.Events[0].Domain = "nope"
	assert.True(t, fault.IsConfig(missing.Validate()), "missing domain")

	badTier := validCatalog()
	badTier.Domains["d"][0].Outcomes["on_mediocre"] = OutcomeDef{}
	assert.True(t, fault.IsConfig(badTier.Validate()), "unknown tier")

	noStages := validCatalog()
	noStages.Domains["d"][0].Resolution.Stages = nil
	assert.True(t, fault.IsConfig(noStages.Validate()), "stage-less resolution")

	badHandler := validCatalog()
	badHandler.Resolvers.TriggerHandlers = map[string]HandlerSpec{
		"jinx": {Axes: map[string]AxisEffect{"doom": {Base: 1}}},
	}
	assert.True(t, fault.IsConfig(badHandler.Validate()), "handler axis unregistered")

	okHandler := validCatalog()
	okHandler.Axes = map[string]axis.Bounds{"doom": {Min: 0, Max: 10}}
	okHandler.Resolvers.TriggerHandlers = map[string]HandlerSpec{
		"jinx": {Axes: map[string]AxisEffect{"doom": {Base: 1}}},
	}
	require.NoError(t, okHandler.Validate())
}

// TestOutcomeDefAbsentVsZero pins the declared-effects contract: a key
// not present decodes to nil, a key present with 0 decodes to a zero
// pointer, and the two must be distinguishable.
func TestOutcomeDefAbsentVsZero(t *testing.T) {
	var def OutcomeDef
	require.NoError(t, Decode("interactions.json", []byte(`{"xp_delta": 0}`), &def))
	require.NotNil(t, def.XPDelta)
	assert.Equal(t, 0, *def.XPDelta)
	assert.Nil(t, def.FatigueDelta)
	assert.Nil(t, def.AxisDelta)
}
