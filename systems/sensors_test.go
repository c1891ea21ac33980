package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/traits"
)

// noCarrion is a CarcassSource with nothing in it.
type noCarrion struct{}

func (noCarrion) NearestCarcass(x, z, radius float32) (float32, float32, float32, bool) {
	return 0, 0, 0, false
}

// fixedCarrion reports a single carcass position.
type fixedCarrion struct{ x, z float32 }

func (c fixedCarrion) NearestCarcass(x, z, radius float32) (float32, float32, float32, bool) {
	dx := c.x - x
	dz := c.z - z
	dist := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	if dist > radius {
		return 0, 0, 0, false
	}
	return c.x, c.z, dist, true
}

func grazerPhenotype() *components.Phenotype {
	return &components.Phenotype{
		Size: 1, MaxSpeed: 30, CostScale: 1,
		Vision: 30, Hearing: 25, Smell: 35,
	}
}

func emptyVegetation() *Vegetation {
	// Zero regen, then drain every cell so no forage target exists.
	v := NewVegetation(300, 300, 30, 1, 0, FlatTerrain{HalfW: 150, HalfD: 150})
	for x := float32(-145); x <= 145; x += 10 {
		for z := float32(-145); z <= 145; z += 10 {
			v.Graze(x, z, 10)
		}
	}
	return v
}

func TestSenseThreatDistanceNormalized(t *testing.T) {
	entities := testEntities(2)
	herb, hunter := entities[0], entities[1]

	idx := NewSpatialIndex(300, 300, 20)
	idx.Insert(herb, traits.Grazer, 0, 0, 0, 0)
	idx.Insert(hunter, traits.Pursuit, 20, 0, 0, 0)

	energy := components.Energy{Value: 80, Max: 100, Alive: true}
	sense := Sense(herb, components.Position{}, traits.Grazer, grazerPhenotype(), &energy,
		idx, emptyVegetation(), noCarrion{})

	if !sense.Threat.OK {
		t.Fatal("hunter at distance 20 inside vision 30 must be sensed")
	}
	if sense.Threat.E != hunter {
		t.Error("threat target is not the hunter")
	}
	want := float32(20.0 / 30.0)
	if absf(sense.Inputs[1]-want) > 1e-4 {
		t.Errorf("threat input: got %g, want %g", sense.Inputs[1], want)
	}
}

func TestSenseMissingTargetsReadAsOne(t *testing.T) {
	entities := testEntities(1)
	idx := NewSpatialIndex(300, 300, 20)
	idx.Insert(entities[0], traits.Grazer, 0, 0, 0, 0)

	energy := components.Energy{Value: 60, Max: 100, Alive: true}
	sense := Sense(entities[0], components.Position{}, traits.Grazer, grazerPhenotype(), &energy,
		idx, emptyVegetation(), noCarrion{})

	if sense.Food.OK || sense.Threat.OK || sense.Mate.OK {
		t.Fatal("no targets should be sensed in an empty world")
	}
	if sense.Inputs[0] != 1 || sense.Inputs[1] != 1 || sense.Inputs[3] != 1 {
		t.Errorf("missing targets must read 1.0, got %v", sense.Inputs)
	}
	if sense.Inputs[2] != 0.6 {
		t.Errorf("energy input: got %g, want 0.6", sense.Inputs[2])
	}
}

func TestSenseThreatOutsideVisionIgnored(t *testing.T) {
	entities := testEntities(2)
	idx := NewSpatialIndex(300, 300, 20)
	idx.Insert(entities[0], traits.Grazer, 0, 0, 0, 0)
	idx.Insert(entities[1], traits.Pursuit, 50, 0, 0, 0)

	energy := components.Energy{Value: 80, Max: 100, Alive: true}
	sense := Sense(entities[0], components.Position{}, traits.Grazer, grazerPhenotype(), &energy,
		idx, emptyVegetation(), noCarrion{})

	if sense.Threat.OK {
		t.Error("hunter at distance 50 outside vision 30 must not be sensed")
	}
}

func TestSenseHerbivoreFindsForage(t *testing.T) {
	entities := testEntities(1)
	idx := NewSpatialIndex(300, 300, 20)

	veg := NewVegetation(300, 300, 30, 1, 0, FlatTerrain{HalfW: 150, HalfD: 150})
	energy := components.Energy{Value: 30, Max: 100, Alive: true}
	sense := Sense(entities[0], components.Position{}, traits.Grazer, grazerPhenotype(), &energy,
		idx, veg, noCarrion{})

	if !sense.Food.OK {
		t.Fatal("herbivore on a full vegetation field must sense food")
	}
	if sense.Food.E != (ecs.Entity{}) {
		t.Error("forage target must not carry an entity handle")
	}
}

func TestSenseHunterTargetsPreyNotPeers(t *testing.T) {
	entities := testEntities(3)
	hunter, peer, prey := entities[0], entities[1], entities[2]

	idx := NewSpatialIndex(300, 300, 20)
	idx.Insert(hunter, traits.Pursuit, 0, 0, 0, 0)
	idx.Insert(peer, traits.Pursuit, 5, 0, 0, 0)
	idx.Insert(prey, traits.Grazer, 15, 0, 0, 0)

	phen := grazerPhenotype()
	energy := components.Energy{Value: 30, Max: 100, Alive: true}
	sense := Sense(hunter, components.Position{}, traits.Pursuit, phen, &energy,
		idx, emptyVegetation(), noCarrion{})

	if !sense.Food.OK {
		t.Fatal("grazer inside vision must be sensed as food")
	}
	if sense.Food.E != prey {
		t.Error("hunter food target must be the prey, not the closer packmate")
	}
	if sense.Mate.E != peer {
		t.Error("hunter mate target must be the conspecific")
	}
}

func TestSenseScavengerSmellsCarrion(t *testing.T) {
	entities := testEntities(1)
	idx := NewSpatialIndex(300, 300, 20)

	energy := components.Energy{Value: 30, Max: 100, Alive: true}
	sense := Sense(entities[0], components.Position{}, traits.Scavenger, grazerPhenotype(), &energy,
		idx, emptyVegetation(), fixedCarrion{x: 20, z: 0})

	if !sense.Food.OK {
		t.Fatal("carcass at distance 20 inside smell 35 must be sensed")
	}
	if sense.Food.Dist != 20 {
		t.Errorf("carcass distance: got %g, want 20", sense.Food.Dist)
	}
}

func TestSenseParasiteSmellsHosts(t *testing.T) {
	entities := testEntities(2)
	idx := NewSpatialIndex(300, 300, 20)
	idx.Insert(entities[0], traits.Parasite, 0, 0, 0, 0)
	idx.Insert(entities[1], traits.Browser, 10, 0, 0, 0)

	energy := components.Energy{Value: 30, Max: 100, Alive: true}
	sense := Sense(entities[0], components.Position{}, traits.Parasite, grazerPhenotype(), &energy,
		idx, emptyVegetation(), noCarrion{})

	if !sense.Food.OK || sense.Food.E != entities[1] {
		t.Error("parasite must sense the browser as a host")
	}
}
