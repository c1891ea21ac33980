package systems

import (
	"github.com/pthm-cable/veldt/config"
	"github.com/pthm-cable/veldt/traits"
)

// ClassCounts holds live creature counts indexed by trophic class.
type ClassCounts [8]int

// Herbivores sums the vegetation-feeding classes.
func (c ClassCounts) Herbivores() int {
	return c[traits.Grazer] + c[traits.Browser] + c[traits.Frugivore]
}

// Hunters sums the predator classes.
func (c ClassCounts) Hunters() int {
	return c[traits.Pursuit] + c[traits.Ambush]
}

// Total sums all classes.
func (c ClassCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// SpawnFunc places one fresh creature of the class at a valid terrain
// position. It returns false when no valid position was found; the
// balancer skips that spawn rather than failing the pass.
type SpawnFunc func(class traits.Class) bool

// PopulationManager nudges the herbivore:hunter ratio back toward the
// configured band. It is a control loop, not a hard constraint: it
// spawns small corrective batches and never culls. Hard minimums are
// enforced separately by EnforceMinimums on the death path.
type PopulationManager struct {
	cfg          *config.PopulationConfig
	classes      *[8]config.ClassConfig
	sinceBalance int
}

// NewPopulationManager creates the balancer from the injected config.
func NewPopulationManager(cfg *config.Config) *PopulationManager {
	return &PopulationManager{
		cfg:     &cfg.Population,
		classes: &cfg.Derived.ClassTable,
	}
}

// Tick runs the balancer every balance_interval calls. Returns the
// number of creatures spawned this call.
func (pm *PopulationManager) Tick(counts *ClassCounts, spawn SpawnFunc) int {
	pm.sinceBalance++
	if pm.sinceBalance < pm.cfg.BalanceInterval {
		return 0
	}
	pm.sinceBalance = 0
	return pm.balance(counts, spawn)
}

func (pm *PopulationManager) balance(counts *ClassCounts, spawn SpawnFunc) int {
	herb := counts.Herbivores()
	carn := counts.Hunters()
	if herb == 0 && carn == 0 {
		return 0
	}

	var deficient []traits.Class
	switch {
	case carn == 0 && herb > 0:
		deficient = []traits.Class{traits.Pursuit, traits.Ambush}
	case carn > 0 && float64(herb)/float64(carn) > pm.cfg.BandHigh:
		deficient = []traits.Class{traits.Pursuit, traits.Ambush}
	case carn > 0 && float64(herb)/float64(carn) < pm.cfg.BandLow:
		deficient = []traits.Class{traits.Grazer, traits.Browser, traits.Frugivore}
	default:
		return 0
	}

	spawned := 0
	for i := 0; i < pm.cfg.BatchSize; i++ {
		if counts.Total() >= pm.cfg.MaxTotal {
			break
		}
		class, ok := pm.pickEmptiest(counts, deficient)
		if !ok {
			break
		}
		if !spawn(class) {
			continue
		}
		counts[class]++
		spawned++
	}
	return spawned
}

// pickEmptiest selects the deficient class with the lowest fill ratio
// against its configured maximum, skipping classes at their cap or not
// configured at all.
func (pm *PopulationManager) pickEmptiest(counts *ClassCounts, candidates []traits.Class) (traits.Class, bool) {
	var best traits.Class
	bestFill := float64(2)
	found := false
	for _, class := range candidates {
		cc := &pm.classes[class]
		if cc.Max <= 0 || counts[class] >= cc.Max {
			continue
		}
		fill := float64(counts[class]) / float64(cc.Max)
		if fill < bestFill {
			bestFill = fill
			best = class
			found = true
		}
	}
	return best, found
}

// EnforceMinimums tops every class up to its configured floor. Called
// from the death sweep, not the balancer, so a collapsed class recovers
// even when the ratio band is satisfied.
func (pm *PopulationManager) EnforceMinimums(counts *ClassCounts, spawn SpawnFunc) int {
	spawned := 0
	for class := traits.Class(0); int(class) < traits.Count(); class++ {
		cc := &pm.classes[class]
		for counts[class] < cc.Min && counts.Total() < pm.cfg.MaxTotal {
			if !spawn(class) {
				break
			}
			counts[class]++
			spawned++
		}
	}
	return spawned
}
