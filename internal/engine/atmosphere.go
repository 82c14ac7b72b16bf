package engine

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/voxhall/muster/internal/campaign"
)

// Atmosphere models the camp's day-to-day mood as two smooth noise
// fields seeded by the campaign seed. Tone and environment feed the
// interaction selector's weight multipliers; the same date always reads
// the same values, while consecutive days drift rather than jump.
type Atmosphere struct {
	tone opensimplex.Noise
	env  opensimplex.Noise
}

// Tone labels, from low to high noise value.
const (
	ToneCalm    = "calm"
	ToneTense   = "tense"
	ToneFestive = "festive"
)

// Environment labels.
const (
	EnvGarrison = "garrison"
	EnvField    = "field"
	EnvTransit  = "transit"
)

// NewAtmosphere seeds the noise fields.
func NewAtmosphere(seed int64) *Atmosphere {
	return &Atmosphere{
		tone: opensimplex.NewNormalized(seed),
		env:  opensimplex.NewNormalized(seed + 1),
	}
}

// Tone returns the day's tone label.
func (a *Atmosphere) Tone(d campaign.Date) string {
	v := a.tone.Eval2(float64(d.Ordinal())*0.05, 0)
	switch {
	case v < 0.45:
		return ToneCalm
	case v < 0.8:
		return ToneTense
	default:
		return ToneFestive
	}
}

// Environment returns the day's environment label. It drifts slower
// than tone: deployments change over weeks, moods over days.
func (a *Atmosphere) Environment(d campaign.Date) string {
	v := a.env.Eval2(float64(d.Ordinal())*0.01, 0)
	switch {
	case v < 0.5:
		return EnvGarrison
	case v < 0.85:
		return EnvField
	default:
		return EnvTransit
	}
}
