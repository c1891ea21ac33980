package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/veldt/traits"
)

func TestShouldFlushWindowBoundary(t *testing.T) {
	c := NewCollector(100, 1.0/30)

	if c.ShouldFlush(99) {
		t.Error("must not flush before the window completes")
	}
	if !c.ShouldFlush(100) {
		t.Error("must flush at the window boundary")
	}

	c.Flush(100, Snapshot{})
	if c.ShouldFlush(199) {
		t.Error("flush must start the next window")
	}
	if !c.ShouldFlush(200) {
		t.Error("second window must complete at tick 200")
	}
}

func TestFlushAggregatesAndResets(t *testing.T) {
	c := NewCollector(10, 0.5)

	c.RecordBirth(traits.Grazer)
	c.RecordBirth(traits.Grazer)
	c.RecordBirth(traits.Pursuit)
	c.RecordDeath(DeathStarvation)
	c.RecordDeath(DeathOldAge)
	c.RecordDeath(DeathPredation)
	c.RecordDeath(DeathPredation)
	c.RecordBalancerSpawn()
	c.RecordSpawnRejection()
	for i := 0; i < 4; i++ {
		c.RecordBiteAttempt()
	}
	c.RecordBiteHit()
	c.RecordBiteHit()
	c.RecordBiteHit()
	c.RecordKill()

	snap := Snapshot{
		Counts:          [8]int{40, 8, 2, 7, 3, 4, 2, 1},
		Species:         6,
		Carcasses:       5,
		TotalVegetation: 123.5,
	}
	stats := c.Flush(10, snap)

	if stats.Births != 3 {
		t.Errorf("Births = %d, want 3", stats.Births)
	}
	if stats.StarvationDeaths != 1 || stats.OldAgeDeaths != 1 || stats.PredationDeaths != 2 {
		t.Errorf("deaths = %d/%d/%d, want 1/1/2",
			stats.StarvationDeaths, stats.OldAgeDeaths, stats.PredationDeaths)
	}
	if stats.Herbivores != 50 { // grazer+browser+frugivore
		t.Errorf("Herbivores = %d, want 50", stats.Herbivores)
	}
	if stats.Hunters != 10 { // pursuit+ambush
		t.Errorf("Hunters = %d, want 10", stats.Hunters)
	}
	if stats.Total != 67 {
		t.Errorf("Total = %d, want 67", stats.Total)
	}
	if stats.HerbCarnRatio != 5 {
		t.Errorf("HerbCarnRatio = %g, want 5", stats.HerbCarnRatio)
	}
	if stats.HitRate != 0.75 {
		t.Errorf("HitRate = %g, want 0.75", stats.HitRate)
	}
	if stats.Kills != 1 || stats.BalancerSpawns != 1 || stats.SpawnRejections != 1 {
		t.Errorf("kills/spawns/rejections = %d/%d/%d, want 1/1/1",
			stats.Kills, stats.BalancerSpawns, stats.SpawnRejections)
	}
	if stats.SimTimeSec != 5 {
		t.Errorf("SimTimeSec = %g, want 5", stats.SimTimeSec)
	}

	// Second flush must see fresh counters.
	next := c.Flush(20, Snapshot{})
	if next.Births != 0 || next.Kills != 0 || next.BitesAttempted != 0 {
		t.Error("flush did not reset counters")
	}
	if next.WindowStartTick != 10 {
		t.Errorf("WindowStartTick = %d, want 10", next.WindowStartTick)
	}
}

func TestFlushNoHuntersLeavesRatioZero(t *testing.T) {
	c := NewCollector(10, 1)
	stats := c.Flush(10, Snapshot{Counts: [8]int{20}})
	if stats.HerbCarnRatio != 0 {
		t.Errorf("HerbCarnRatio = %g with no hunters, want 0", stats.HerbCarnRatio)
	}
	if stats.HitRate != 0 {
		t.Errorf("HitRate = %g with no bites, want 0", stats.HitRate)
	}
}

func TestCollectorClampsWindow(t *testing.T) {
	c := NewCollector(0, 1)
	if c.WindowTicks() != 1 {
		t.Errorf("WindowTicks() = %d, want clamp to 1", c.WindowTicks())
	}
}

func TestEnergyDist(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	mean, std, p10, p50, p90 := EnergyDist(values)

	if mean != 55 {
		t.Errorf("mean = %g, want 55", mean)
	}
	if math.Abs(std-30.2765) > 0.001 {
		t.Errorf("std = %g, want 30.2765", std)
	}
	if p10 != 10 {
		t.Errorf("p10 = %g, want 10", p10)
	}
	if p50 != 50 {
		t.Errorf("p50 = %g, want 50", p50)
	}
	if p90 != 90 {
		t.Errorf("p90 = %g, want 90", p90)
	}
}

func TestEnergyDistEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := EnergyDist(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("empty distribution = %g/%g/%g/%g/%g, want zeros", mean, std, p10, p50, p90)
	}
}

func TestEnergyDistSortsUnorderedInput(t *testing.T) {
	values := []float64{50, 10, 90, 30, 70}
	_, _, p10, _, p90 := EnergyDist(values)
	if p10 > p90 {
		t.Errorf("percentiles inverted: p10 %g > p90 %g", p10, p90)
	}
}
