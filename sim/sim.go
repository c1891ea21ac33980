// Package sim wires the world together: the ECS arena, terrain and
// vegetation, the spatial index, genetics, behavior, and telemetry,
// advanced one fixed-dt tick at a time.
package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/config"
	"github.com/pthm-cable/veldt/genome"
	"github.com/pthm-cable/veldt/neural"
	"github.com/pthm-cable/veldt/systems"
	"github.com/pthm-cable/veldt/telemetry"
	"github.com/pthm-cable/veldt/traits"
)

const (
	// spawnAttempts bounds the terrain rejection-sampling loop for one
	// creature. A world that is mostly water will still converge; a
	// fully submerged one fails the spawn instead of spinning.
	spawnAttempts = 16

	// camouflageMissScale converts a victim's camouflage trait into a
	// strike miss probability.
	camouflageMissScale = 0.6
)

type creatureMapper = ecs.Map6[
	components.Position,
	components.Velocity,
	components.Rotation,
	components.Energy,
	components.Phenotype,
	components.Creature,
]

type creatureFilter = ecs.Filter6[
	components.Position,
	components.Velocity,
	components.Rotation,
	components.Energy,
	components.Phenotype,
	components.Creature,
]

// Simulation holds the complete headless world state.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand
	dt  float32

	world  *ecs.World
	mapper *creatureMapper
	filter *creatureFilter

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	energyMap *ecs.Map1[components.Energy]
	phenMap   *ecs.Map1[components.Phenotype]
	creMap    *ecs.Map1[components.Creature]

	// Genotypes and decision networks live beside the arena, keyed by
	// Creature.ID. They are reference-heavy and never iterated, so
	// keeping them out of the component store keeps queries tight.
	genomes map[uint32]genome.Genotype
	nets    map[uint32]*neural.DecisionNet

	bounds  genome.Bounds
	species *genome.Registry

	index     *systems.SpatialIndex
	terrain   systems.Terrain
	veg       *systems.Vegetation
	balancer  *systems.PopulationManager
	carcasses carcassField

	behaviorCtx systems.BehaviorContext
	scratch     []systems.Neighbor

	// Deferred event queues, drained within the same tick
	bites  []biteEvent
	drains []drainEvent
	births []birthEvent
	dead   []deadInfo
	bred   map[uint32]bool

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	statsFn   func(telemetry.WindowStats)
	LogStats  bool

	tick   int64
	nextID uint32
	counts systems.ClassCounts
}

type biteEvent struct {
	attacker ecs.Entity
	victim   ecs.Entity
}

type drainEvent struct {
	parasite ecs.Entity
	host     ecs.Entity
}

type birthEvent struct {
	a ecs.Entity
	b ecs.Entity
}

type deadInfo struct {
	entity ecs.Entity
	id     uint32
	class  traits.Class
	spec   int
}

// New builds a simulation from a validated config. seed drives every
// random decision; two simulations built with the same config and seed
// produce identical tick sequences. dt is seconds per tick.
func New(cfg *config.Config, seed int64, dt float32) (*Simulation, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("sim: dt must be positive, got %g", dt)
	}

	bounds := genome.DefaultBounds()
	for _, tb := range cfg.Genetics.TraitBounds {
		id, err := genome.ParseTrait(tb.Name)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		bounds[id] = genome.Bound{Min: float32(tb.Min), Max: float32(tb.Max)}
	}
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(seed))

	worldW := cfg.Derived.WorldW32
	worldD := cfg.Derived.WorldD32

	s := &Simulation{
		cfg:    cfg,
		rng:    rng,
		dt:     dt,
		world:  world,
		nextID: 1,

		mapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Energy,
			components.Phenotype,
			components.Creature,
		](world),
		filter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Energy,
			components.Phenotype,
			components.Creature,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		phenMap:   ecs.NewMap1[components.Phenotype](world),
		creMap:    ecs.NewMap1[components.Creature](world),

		genomes: make(map[uint32]genome.Genotype),
		nets:    make(map[uint32]*neural.DecisionNet),
		bounds:  bounds,
		species: genome.NewRegistry(&bounds, float32(cfg.Genetics.SpeciationThreshold)),
		bred:    make(map[uint32]bool),

		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, dt),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}

	s.index = systems.NewSpatialIndex(worldW, worldD, cfg.Grid.Size)
	s.terrain = systems.NewHeightfield(worldW, worldD,
		float32(cfg.Terrain.Scale), float32(cfg.Terrain.Amplitude),
		float32(cfg.Terrain.WaterLevel), seed)
	s.veg = systems.NewVegetation(worldW, worldD,
		cfg.Vegetation.Resolution, float32(cfg.Vegetation.Capacity),
		float32(cfg.Vegetation.RegenRate), s.terrain)
	s.balancer = systems.NewPopulationManager(cfg)

	s.behaviorCtx = systems.BehaviorContext{
		Cfg:   &cfg.Behavior,
		Index: s.index,
		Rng:   rng,
		// Resolve target velocities from the index snapshot, not the
		// live components: creatures updated earlier in the same tick
		// must not leak their new velocity into later decisions.
		VelOf: s.index.Velocity,
	}

	s.spawnInitialPopulation()

	return s, nil
}

// SetOutput attaches a CSV output manager. Passing nil disables output.
func (s *Simulation) SetOutput(om *telemetry.OutputManager) {
	s.output = om
}

// SetStatsFunc registers a callback invoked with each completed stats
// window. Used by headless drivers that consume stats in process.
func (s *Simulation) SetStatsFunc(fn func(telemetry.WindowStats)) {
	s.statsFn = fn
}

// Tick returns the current tick number.
func (s *Simulation) Tick() int64 { return s.tick }

// DT returns seconds per tick.
func (s *Simulation) DT() float32 { return s.dt }

// Counts returns the live population by class.
func (s *Simulation) Counts() systems.ClassCounts { return s.counts }

// SpeciesCount returns the number of living species.
func (s *Simulation) SpeciesCount() int { return s.species.Count() }

// CarcassCount returns the number of decaying carcasses.
func (s *Simulation) CarcassCount() int { return s.carcasses.Count() }

// Vegetation returns the total plant food currently in the world.
func (s *Simulation) Vegetation() float64 { return s.veg.Total() }

// spawnInitialPopulation seeds each class at its configured count.
func (s *Simulation) spawnInitialPopulation() {
	for _, class := range traits.All() {
		cc := s.cfg.Class(class)
		for i := 0; i < cc.Initial; i++ {
			if !s.spawnRandom(class) {
				slog.Warn("initial spawn failed", "class", class.String())
			}
		}
	}
}

// spawnRandom places a fresh creature of the class at a random valid
// land position. Returns false when no valid position was found.
func (s *Simulation) spawnRandom(class traits.Class) bool {
	halfW := s.cfg.Derived.WorldW32 / 2
	halfD := s.cfg.Derived.WorldD32 / 2

	for i := 0; i < spawnAttempts; i++ {
		x := (s.rng.Float32()*2 - 1) * halfW
		z := (s.rng.Float32()*2 - 1) * halfD
		if !s.terrain.IsValidSpawnPosition(x, z) {
			continue
		}
		var gt genome.Genotype
		if s.cfg.Genetics.Diploid {
			gt = genome.NewRandomDiploid(s.rng, &s.bounds)
		} else {
			gt = genome.NewRandom(s.rng, &s.bounds)
		}
		s.spawnCreature(class, x, z, s.rng.Float32()*2*math.Pi, gt)
		return true
	}
	s.collector.RecordSpawnRejection()
	return false
}

// spawnCreature creates one entity with its genotype, decision network,
// and species assignment.
func (s *Simulation) spawnCreature(class traits.Class, x, z, heading float32, gt genome.Genotype) ecs.Entity {
	cc := s.cfg.Class(class)

	id := s.nextID
	s.nextID++

	expressed := gt.Phenotype(&s.bounds)
	phen := components.Phenotype{
		Size:       expressed.Traits[genome.Size],
		MaxSpeed:   expressed.Traits[genome.Speed],
		CostScale:  1 / expressed.Traits[genome.Efficiency],
		Vision:     expressed.Traits[genome.VisionRange],
		Hearing:    expressed.Traits[genome.HearingRange],
		Smell:      expressed.Traits[genome.SmellRange],
		Camouflage: expressed.Traits[genome.Camouflage],
	}

	pos := components.Position{X: x, Z: z}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: heading}
	energy := components.Energy{
		Value: float32(cc.InitialEnergy),
		Max:   float32(cc.MaxEnergy),
		Alive: true,
	}
	cre := components.Creature{
		ID:            id,
		Class:         class,
		SpeciesID:     s.species.Assign(expressed),
		WanderHeading: heading,
	}

	s.genomes[id] = gt
	s.nets[id] = neural.FromWeights(expressed.Weights[:])

	entity := s.mapper.NewEntity(&pos, &vel, &rot, &energy, &phen, &cre)
	s.counts[class]++
	return entity
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
