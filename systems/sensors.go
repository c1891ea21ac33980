package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/neural"
	"github.com/pthm-cable/veldt/traits"
)

// minForageValue is the smallest vegetation amount worth steering for.
const minForageValue = 0.05

// CarcassSource answers nearest-carcass queries for scavengers. The
// simulation owns the carcass list; sensing only reads it.
type CarcassSource interface {
	NearestCarcass(x, z, radius float32) (cx, cz, dist float32, ok bool)
}

// Target is a sensed entity or position a goal can steer toward.
type Target struct {
	E    ecs.Entity // zero for field targets (vegetation, carcasses)
	X, Z float32
	Dist float32
	OK   bool
}

// SenseResult holds the normalized decision-network inputs plus the
// concrete targets behind them, so the behavior stack can steer without
// re-querying.
type SenseResult struct {
	Inputs [neural.NumInputs]float32
	Food   Target
	Threat Target
	Mate   Target
}

// Sense builds one creature's sensory frame from the spatial index,
// vegetation field and carcass list. Query radii come from the
// creature's own sensory traits: vision for threats and hunted food,
// smell for forage and carrion, hearing for mates. Each input is the
// target distance normalized by its range and clamped to [0,1]; a
// missing target reads as 1.0, so "nothing in range" sits next to "at
// the edge of range" rather than opposite it.
func Sense(
	self ecs.Entity,
	pos components.Position,
	class traits.Class,
	phen *components.Phenotype,
	energy *components.Energy,
	index *SpatialIndex,
	veg *Vegetation,
	carcasses CarcassSource,
) SenseResult {
	var r SenseResult

	// Food, by diet
	foodRange := phen.Smell
	switch {
	case class.IsHerbivore():
		if fx, fz, dist, ok := veg.BestNearby(pos.X, pos.Z, phen.Smell, minForageValue); ok {
			r.Food = Target{X: fx, Z: fz, Dist: dist, OK: true}
		}
	case class.IsHunter(), class == traits.Cleaner:
		foodRange = phen.Vision
		if n, ok := index.FindNearest(pos.X, pos.Z, phen.Vision, self, class.Prey()); ok {
			r.Food = Target{E: n.E, X: n.X, Z: n.Z, Dist: sqrtf(n.DistSq), OK: true}
		}
	case class == traits.Scavenger:
		if cx, cz, dist, ok := carcasses.NearestCarcass(pos.X, pos.Z, phen.Smell); ok {
			r.Food = Target{X: cx, Z: cz, Dist: dist, OK: true}
		}
	case class == traits.Parasite:
		if n, ok := index.FindNearest(pos.X, pos.Z, phen.Smell, self, class.Hosts()); ok {
			r.Food = Target{E: n.E, X: n.X, Z: n.Z, Dist: sqrtf(n.DistSq), OK: true}
		}
	}

	// Threats within vision
	if threats := class.Threats(); threats != 0 {
		if n, ok := index.FindNearest(pos.X, pos.Z, phen.Vision, self, threats); ok {
			r.Threat = Target{E: n.E, X: n.X, Z: n.Z, Dist: sqrtf(n.DistSq), OK: true}
		}
	}

	// Conspecific mates within hearing
	if n, ok := index.FindNearest(pos.X, pos.Z, phen.Hearing, self, class.Peers()); ok {
		r.Mate = Target{E: n.E, X: n.X, Z: n.Z, Dist: sqrtf(n.DistSq), OK: true}
	}

	r.Inputs[0] = normalizedDistance(r.Food, foodRange)
	r.Inputs[1] = normalizedDistance(r.Threat, phen.Vision)
	r.Inputs[2] = energy.Fraction()
	r.Inputs[3] = normalizedDistance(r.Mate, phen.Hearing)

	return r
}

func normalizedDistance(t Target, rng float32) float32 {
	if !t.OK || rng <= 0 {
		return 1
	}
	return clamp01(t.Dist / rng)
}
