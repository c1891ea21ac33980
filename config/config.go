// Package config provides configuration loading and validation for the
// simulation core. The core never reads configuration ambiently: Load
// returns a *Config that is injected once at construction.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/veldt/traits"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Grid       GridConfig       `yaml:"grid"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Vegetation VegetationConfig `yaml:"vegetation"`
	Genetics   GeneticsConfig   `yaml:"genetics"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
	Energy     EnergyConfig     `yaml:"energy"`
	Population PopulationConfig `yaml:"population"`
	Classes    []ClassConfig    `yaml:"classes"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions. The world is centered on the
// origin: x spans [-width/2, +width/2], z spans [-depth/2, +depth/2].
type WorldConfig struct {
	Width float64 `yaml:"width"`
	Depth float64 `yaml:"depth"`
}

// GridConfig holds spatial index dimensions.
type GridConfig struct {
	Size int `yaml:"size"` // cells per axis (Size x Size grid)
}

// TerrainConfig holds heightfield generation parameters.
type TerrainConfig struct {
	Scale      float64 `yaml:"scale"`       // noise frequency
	Amplitude  float64 `yaml:"amplitude"`   // height range
	WaterLevel float64 `yaml:"water_level"` // heights below this are water
}

// VegetationConfig holds the plant-food field parameters.
type VegetationConfig struct {
	Resolution int     `yaml:"resolution"` // field cells per axis
	Capacity   float64 `yaml:"capacity"`   // max food per cell
	RegenRate  float64 `yaml:"regen_rate"` // regrowth per second toward capacity
	GrazeRate  float64 `yaml:"graze_rate"` // intake per second at full efficiency
}

// GeneticsConfig holds mutation and speciation parameters.
type GeneticsConfig struct {
	MutationRate        float64            `yaml:"mutation_rate"`        // per-trait mutation probability
	MutationStrength    float64            `yaml:"mutation_strength"`    // sigma as fraction of trait range
	SpeciationThreshold float64            `yaml:"speciation_threshold"` // max genome distance for interbreeding
	Diploid             bool               `yaml:"diploid"`              // two-allele genomes with dominance blending
	TraitBounds         []TraitBoundConfig `yaml:"trait_bounds"`         // overrides for built-in trait ranges
}

// TraitBoundConfig overrides the valid range of a named genome trait.
type TraitBoundConfig struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// BehaviorConfig holds steering and decision-blend parameters.
type BehaviorConfig struct {
	MaxAccel         float64 `yaml:"max_accel"`         // steering acceleration cap
	Drag             float64 `yaml:"drag"`              // velocity damping per second
	MaxNetTurnBias   float64 `yaml:"max_net_turn_bias"` // radians the network may shift the steering heading
	WanderJitter     float64 `yaml:"wander_jitter"`     // wander heading drift per second
	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	FlockRadius      float64 `yaml:"flock_radius"`      // neighbor radius for flocking, capped by vision
	PackRadius       float64 `yaml:"pack_radius"`       // conspecific radius for pack coordination
}

// EnergyConfig holds cross-class energy transfer parameters.
type EnergyConfig struct {
	KillConversion    float64 `yaml:"kill_conversion"`     // fraction of victim energy gained by the killer
	CarrionConversion float64 `yaml:"carrion_conversion"`  // fraction of carcass energy gained per bite
	CarcassDecay      float64 `yaml:"carcass_decay"`       // carcass energy lost per second
	ParasiteDrain     float64 `yaml:"parasite_drain"`      // energy per second drained from an attached host
	SprintFraction    float64 `yaml:"sprint_fraction"`     // speed ratio above which sprint cost applies
}

// PopulationConfig holds the balancer parameters. Target and band are
// herbivore:carnivore ratios.
type PopulationConfig struct {
	TargetRatio     float64 `yaml:"target_ratio"`
	BandLow         float64 `yaml:"band_low"`
	BandHigh        float64 `yaml:"band_high"`
	BalanceInterval int     `yaml:"balance_interval"` // ticks between balancer passes
	BatchSize       int     `yaml:"batch_size"`       // spawns per corrective pass
	MaxTotal        int     `yaml:"max_total"`        // hard cap across all classes
}

// ClassConfig holds the per-class energy/reproduction/lifespan table.
type ClassConfig struct {
	Name            string  `yaml:"name"`
	Initial         int     `yaml:"initial"`          // creatures at simulation start
	Min             int     `yaml:"min"`              // respawn floor
	Max             int     `yaml:"max"`              // hard spawn ceiling
	MaxEnergy       float64 `yaml:"max_energy"`
	InitialEnergy   float64 `yaml:"initial_energy"`
	BaseCost        float64 `yaml:"base_cost"`        // metabolism per second
	MoveCost        float64 `yaml:"move_cost"`        // per unit of speed per second
	SprintCost      float64 `yaml:"sprint_cost"`      // extra per second while sprinting
	MaxLifespan     float64 `yaml:"max_lifespan"`     // seconds
	ReproThreshold  float64 `yaml:"repro_threshold"`  // minimum energy to breed
	ReproCost       float64 `yaml:"repro_cost"`
	ReproCooldown   float64 `yaml:"repro_cooldown"`   // seconds
	MaturityAge     float64 `yaml:"maturity_age"`     // seconds
	MinKills        int     `yaml:"min_kills"`        // hunter gate; ignored for other classes
	FearThreshold   float64 `yaml:"fear_threshold"`   // normalized threat distance below which flight wins
	HungerThreshold float64 `yaml:"hunger_threshold"` // energy fraction below which feeding wins
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // samples per perf rolling window
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	WorldW32   float32
	WorldD32   float32
	ClassIndex map[string]traits.Class
	ClassTable [8]ClassConfig // indexed by traits.Class
}

// Load reads configuration from a YAML file, merging over the embedded
// defaults. An empty path uses defaults only. The returned config has
// been validated; a malformed file fails here, before any tick runs.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Refresh revalidates and recomputes derived values after in-place
// modification of a loaded config.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Depth <= 0 {
		return fmt.Errorf("config: world extent must be positive, got %gx%g", c.World.Width, c.World.Depth)
	}
	if c.Grid.Size <= 0 {
		return fmt.Errorf("config: grid size must be positive, got %d", c.Grid.Size)
	}
	if c.Vegetation.Resolution <= 0 {
		return fmt.Errorf("config: vegetation resolution must be positive, got %d", c.Vegetation.Resolution)
	}
	if c.Genetics.MutationRate < 0 || c.Genetics.MutationRate > 1 {
		return fmt.Errorf("config: mutation rate must be in [0,1], got %g", c.Genetics.MutationRate)
	}
	if c.Genetics.SpeciationThreshold <= 0 {
		return fmt.Errorf("config: speciation threshold must be positive, got %g", c.Genetics.SpeciationThreshold)
	}
	for _, tb := range c.Genetics.TraitBounds {
		if tb.Min >= tb.Max {
			return fmt.Errorf("config: trait %q has inverted bounds [%g, %g]", tb.Name, tb.Min, tb.Max)
		}
	}
	if c.Population.BandLow > c.Population.TargetRatio || c.Population.TargetRatio > c.Population.BandHigh {
		return fmt.Errorf("config: population target ratio %g outside band [%g, %g]",
			c.Population.TargetRatio, c.Population.BandLow, c.Population.BandHigh)
	}
	if c.Population.BalanceInterval <= 0 {
		return fmt.Errorf("config: balance interval must be positive, got %d", c.Population.BalanceInterval)
	}
	if len(c.Classes) == 0 {
		return fmt.Errorf("config: no creature classes defined")
	}
	seen := make(map[string]bool, len(c.Classes))
	for _, cc := range c.Classes {
		if _, err := traits.Parse(cc.Name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if seen[cc.Name] {
			return fmt.Errorf("config: class %q defined twice", cc.Name)
		}
		seen[cc.Name] = true
		if cc.MaxEnergy <= 0 {
			return fmt.Errorf("config: class %q max energy must be positive, got %g", cc.Name, cc.MaxEnergy)
		}
		if cc.InitialEnergy <= 0 || cc.InitialEnergy > cc.MaxEnergy {
			return fmt.Errorf("config: class %q initial energy %g outside (0, %g]", cc.Name, cc.InitialEnergy, cc.MaxEnergy)
		}
		if cc.MaxLifespan <= 0 {
			return fmt.Errorf("config: class %q lifespan must be positive, got %g", cc.Name, cc.MaxLifespan)
		}
		if cc.Min > cc.Max {
			return fmt.Errorf("config: class %q min %d exceeds max %d", cc.Name, cc.Min, cc.Max)
		}
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("config: stats window must be positive, got %d", c.Telemetry.StatsWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldD32 = float32(c.World.Depth)

	c.Derived.ClassIndex = make(map[string]traits.Class, len(c.Classes))
	for _, cc := range c.Classes {
		class, _ := traits.Parse(cc.Name) // validated above
		c.Derived.ClassIndex[cc.Name] = class
		c.Derived.ClassTable[class] = cc
	}
}

// Class returns the parameter table entry for a class.
func (c *Config) Class(class traits.Class) *ClassConfig {
	return &c.Derived.ClassTable[class]
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
