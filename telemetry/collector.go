package telemetry

import "github.com/pthm-cable/veldt/traits"

// DeathCause mirrors the simulation's death taxonomy for counting.
type DeathCause uint8

const (
	DeathStarvation DeathCause = iota
	DeathOldAge
	DeathPredation
)

// Collector accumulates events within stats windows and produces
// WindowStats. It never reads simulation state itself; the caller
// supplies population and environment snapshots at flush time.
type Collector struct {
	windowTicks int64
	dt          float32

	windowStartTick int64

	births          [8]int
	deaths          [3]int
	balancerSpawns  int
	spawnRejections int
	bitesAttempted  int
	bitesHit        int
	kills           int
}

// NewCollector creates a stats collector flushing every windowTicks
// ticks. dt is seconds per tick, used for tick-to-time conversion.
func NewCollector(windowTicks int, dt float32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int64(windowTicks),
		dt:          dt,
	}
}

// RecordBirth records a birth event for the class.
func (c *Collector) RecordBirth(class traits.Class) {
	c.births[class]++
}

// RecordDeath records a death event by cause.
func (c *Collector) RecordDeath(cause DeathCause) {
	c.deaths[cause]++
}

// RecordBalancerSpawn records a creature injected by the population
// balancer or minimum-floor enforcement.
func (c *Collector) RecordBalancerSpawn() {
	c.balancerSpawns++
}

// RecordSpawnRejection records a spawn attempt that found no valid
// terrain position.
func (c *Collector) RecordSpawnRejection() {
	c.spawnRejections++
}

// RecordBiteAttempt records a strike attempt by a hunter.
func (c *Collector) RecordBiteAttempt() {
	c.bitesAttempted++
}

// RecordBiteHit records a strike that connected.
func (c *Collector) RecordBiteHit() {
	c.bitesHit++
}

// RecordKill records a kill.
func (c *Collector) RecordKill() {
	c.kills++
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}

// Snapshot carries the state sampled by the caller at flush time.
type Snapshot struct {
	Counts          [8]int
	Species         int
	Carcasses       int
	Energies        []float64 // living creatures, any order
	TotalVegetation float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, snap Snapshot) WindowStats {
	var hitRate float64
	if c.bitesAttempted > 0 {
		hitRate = float64(c.bitesHit) / float64(c.bitesAttempted)
	}

	births := 0
	for _, b := range c.births {
		births += b
	}

	herb := snap.Counts[traits.Grazer] + snap.Counts[traits.Browser] + snap.Counts[traits.Frugivore]
	carn := snap.Counts[traits.Pursuit] + snap.Counts[traits.Ambush]
	total := 0
	for _, n := range snap.Counts {
		total += n
	}
	var ratio float64
	if carn > 0 {
		ratio = float64(herb) / float64(carn)
	}

	mean, std, p10, p50, p90 := EnergyDist(snap.Energies)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Herbivores: herb,
		Hunters:    carn,
		Scavengers: snap.Counts[traits.Scavenger],
		Parasites:  snap.Counts[traits.Parasite],
		Cleaners:   snap.Counts[traits.Cleaner],
		Total:      total,
		Species:    snap.Species,
		Carcasses:  snap.Carcasses,

		Births:           births,
		StarvationDeaths: c.deaths[DeathStarvation],
		OldAgeDeaths:     c.deaths[DeathOldAge],
		PredationDeaths:  c.deaths[DeathPredation],
		BalancerSpawns:   c.balancerSpawns,
		SpawnRejections:  c.spawnRejections,

		BitesAttempted: c.bitesAttempted,
		BitesHit:       c.bitesHit,
		Kills:          c.kills,
		HitRate:        hitRate,

		EnergyMean: mean,
		EnergyStd:  std,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		TotalVegetation: snap.TotalVegetation,
		HerbCarnRatio:   ratio,
	}

	c.windowStartTick = currentTick
	c.births = [8]int{}
	c.deaths = [3]int{}
	c.balancerSpawns = 0
	c.spawnRejections = 0
	c.bitesAttempted = 0
	c.bitesHit = 0
	c.kills = 0

	return stats
}
