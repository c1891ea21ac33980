package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/veldt/config"
	"github.com/pthm-cable/veldt/sim"
	"github.com/pthm-cable/veldt/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	dt         float32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, dt float32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		dt:         dt,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Functional extinction: if herbivores or hunters stay below this count
// for extinctionGraceSec of sim time, the ecosystem has collapsed even
// when the balancer keeps a trickle alive.
const (
	minViablePop       = 3
	extinctionGraceSec = 30.0
	warmupSec          = 5.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64
	windowStats   []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks scaled by ecosystem quality, so
// longer and healthier runs minimize.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	type seedResult struct {
		fitness float64
		quality float64
	}
	results := make([]seedResult, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := fe.computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: -(float64(result.survivalTicks) * (1.0 + 0.2*quality)),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes one headless run until functional extinction
// or maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		// A parameter combination the config layer rejects scores as an
		// immediate collapse.
		return &runResult{}
	}

	result := &runResult{}
	s, err := sim.New(cfg, seed, fe.dt)
	if err != nil {
		return result
	}
	s.SetStatsFunc(func(stats telemetry.WindowStats) {
		result.windowStats = append(result.windowStats, stats)
	})

	graceTicks := int64(extinctionGraceSec / float64(fe.dt))
	warmupTicks := int64(warmupSec / float64(fe.dt))
	var herbBelow, huntBelow int64

	for s.Tick() < fe.maxTicks {
		s.Step()
		if s.Tick() < warmupTicks {
			continue
		}

		counts := s.Counts()
		herb := counts.Herbivores()
		hunt := counts.Hunters()

		if herb == 0 || hunt == 0 {
			result.survivalTicks = s.Tick()
			return result
		}

		if herb < minViablePop {
			herbBelow++
		} else {
			herbBelow = 0
		}
		if hunt < minViablePop {
			huntBelow++
		} else {
			huntBelow = 0
		}
		if herbBelow >= graceTicks || huntBelow >= graceTicks {
			result.survivalTicks = s.Tick()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// copyConfig creates a deep copy of the base config so parallel seed
// runs can mutate their own class tables.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Classes = append([]config.ClassConfig(nil), fe.baseConfig.Classes...)
	cfg.Genetics.TraitBounds = append([]config.TraitBoundConfig(nil), fe.baseConfig.Genetics.TraitBounds...)
	cfg.Derived = config.DerivedConfig{}
	return &cfg
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.35
	qualityWeightHunting   = 0.25

	qualityWarmupWindows = 3
)

// computeQuality scores ecosystem health in [0, 1] from window stats:
// how close the herbivore:hunter ratio tracks the configured target,
// how stable both populations are, and whether hunters actually hunt.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]
	target := fe.baseConfig.Population.TargetRatio

	var ratioSum, huntSum float64
	var ratioCount, huntCount int
	herbCounts := make([]float64, 0, len(valid))
	huntCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Herbivores < minViablePop || w.Hunters < minViablePop {
			continue
		}

		herbCounts = append(herbCounts, float64(w.Herbivores))
		huntCounts = append(huntCounts, float64(w.Hunters))

		logErr := math.Log(w.HerbCarnRatio / target)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		if w.BitesAttempted > 0 {
			// Misses come only from camouflage, so a healthy hit rate
			// sits well above ambush-predator territory.
			hrScore := math.Exp(-math.Pow((w.HitRate-0.7)/0.2, 2))
			bitesPerHunter := float64(w.BitesAttempted) / float64(w.Hunters)
			activityScore := 1.0 - math.Exp(-bitesPerHunter/3.0)
			huntSum += 0.6*hrScore + 0.4*activityScore
			huntCount++
		}
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	stabilityScore := 0.0
	if len(herbCounts) >= 2 {
		cvHerb := cv(herbCounts)
		cvHunt := cv(huntCounts)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvHunt*cvHunt))
	}

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntScore
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean).
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
