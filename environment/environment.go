// Package environment models the ambient growth conditions and the
// species growth-factor function.
package environment

import (
	"github.com/mycolab/mycelium/config"
	"github.com/mycolab/mycelium/species"
)

// Environment holds the ambient parameters shared by every organism.
// It is an explicit value owned by the engine and passed by parameter,
// never accessed as global state.
type Environment struct {
	PH          float64
	Temperature float64
	Humidity    float64
	Substrate   string // active substrate name
	Speed       int    // viewer ticks per update, presentation only
}

// Bounds holds the valid ranges for the mutable environment axes.
type Bounds struct {
	PHMin, PHMax             float64
	TempMin, TempMax         float64
	HumidityMin, HumidityMax float64
}

// Update is a partial environment change; nil fields keep their prior value.
type Update struct {
	PH          *float64
	Temperature *float64
	Humidity    *float64
	Speed       *int
}

// FromConfig builds the startup environment and its bounds.
func FromConfig(ec *config.EnvConfig) (Environment, Bounds) {
	b := Bounds{
		PHMin: ec.PHMin, PHMax: ec.PHMax,
		TempMin: ec.TempMin, TempMax: ec.TempMax,
		HumidityMin: ec.HumidityMin, HumidityMax: ec.HumidityMax,
	}
	env := Environment{
		PH:          clamp(ec.PH, b.PHMin, b.PHMax),
		Temperature: clamp(ec.Temperature, b.TempMin, b.TempMax),
		Humidity:    clamp(ec.Humidity, b.HumidityMin, b.HumidityMax),
		Substrate:   ec.Substrate,
		Speed:       ec.Speed,
	}
	if env.Speed < 1 {
		env.Speed = 1
	}
	return env, b
}

// Apply merges a partial update into the environment, clamping to bounds.
func (e *Environment) Apply(u Update, b Bounds) {
	if u.PH != nil {
		e.PH = clamp(*u.PH, b.PHMin, b.PHMax)
	}
	if u.Temperature != nil {
		e.Temperature = clamp(*u.Temperature, b.TempMin, b.TempMax)
	}
	if u.Humidity != nil {
		e.Humidity = clamp(*u.Humidity, b.HumidityMin, b.HumidityMax)
	}
	if u.Speed != nil && *u.Speed >= 1 {
		e.Speed = *u.Speed
	}
}

// GrowthFactor returns a [0,1] multiplier describing how well the current
// conditions suit a species. It is the product of three independent axis
// suitability terms and is a pure function: identical inputs always yield
// identical output.
func GrowthFactor(p *species.Profile, env Environment) float64 {
	ph := suitability(env.PH, p.OptimalPH, p.PHTolerance)
	temp := suitability(env.Temperature, p.OptimalTemp, p.TempTolerance)
	hum := suitability(env.Humidity, p.OptimalHumidity, p.HumidityTolerance)
	return ph * temp * hum
}

// suitability is max(0, 1 - |actual-optimal|/tolerance).
func suitability(actual, optimal, tolerance float64) float64 {
	d := actual - optimal
	if d < 0 {
		d = -d
	}
	s := 1 - d/tolerance
	if s < 0 {
		return 0
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
