package main

import (
	"github.com/pthm-cable/veldt/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of all optimizable parameters. Per-class
// cost tables are searched through shared scale factors rather than one
// dimension per class; this keeps the search space small while still
// shifting the whole energy economy.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Vegetation economy
			{Name: "veg_capacity", Min: 0.5, Max: 3.0, Default: 1.0},
			{Name: "veg_regen_rate", Min: 0.01, Max: 0.15, Default: 0.04},
			{Name: "graze_rate", Min: 6.0, Max: 30.0, Default: 14.0},
			// Cross-class energy transfer
			{Name: "kill_conversion", Min: 0.4, Max: 0.8, Default: 0.6},
			{Name: "carrion_conversion", Min: 0.2, Max: 0.6, Default: 0.4},
			{Name: "carcass_decay", Min: 0.2, Max: 2.0, Default: 0.8},
			{Name: "parasite_drain", Min: 0.5, Max: 4.0, Default: 1.5},
			// Class-table scale factors
			{Name: "base_cost_scale", Min: 0.5, Max: 2.0, Default: 1.0},
			{Name: "move_cost_scale", Min: 0.5, Max: 2.0, Default: 1.0},
			{Name: "repro_cost_scale", Min: 0.5, Max: 1.5, Default: 1.0},
			{Name: "repro_cooldown_scale", Min: 0.5, Max: 2.0, Default: 1.0},
			// Balancer
			{Name: "batch_size", Min: 1, Max: 12, Default: 5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to a config and
// recomputes its derived tables. Order must match Specs order. Scale
// factors multiply the config's own class values, so a hand-tuned base
// config keeps its per-class shape.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	i := 0

	cfg.Vegetation.Capacity = clamped[i]
	i++
	cfg.Vegetation.RegenRate = clamped[i]
	i++
	cfg.Vegetation.GrazeRate = clamped[i]
	i++

	cfg.Energy.KillConversion = clamped[i]
	i++
	cfg.Energy.CarrionConversion = clamped[i]
	i++
	cfg.Energy.CarcassDecay = clamped[i]
	i++
	cfg.Energy.ParasiteDrain = clamped[i]
	i++

	baseScale := clamped[i]
	i++
	moveScale := clamped[i]
	i++
	reproCostScale := clamped[i]
	i++
	cooldownScale := clamped[i]
	i++
	for c := range cfg.Classes {
		cfg.Classes[c].BaseCost *= baseScale
		cfg.Classes[c].MoveCost *= moveScale
		cfg.Classes[c].ReproCost *= reproCostScale
		cfg.Classes[c].ReproCooldown *= cooldownScale
	}

	cfg.Population.BatchSize = int(clamped[i] + 0.5)

	return cfg.Refresh()
}
