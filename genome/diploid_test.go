package genome

import (
	"math"
	"math/rand"
	"testing"
)

func TestExpressTraitDominance(t *testing.T) {
	bound := Bound{Min: 0, Max: 100}

	tests := []struct {
		name     string
		maternal Allele
		paternal Allele
		want     float32
	}{
		{
			name:     "complete dominance picks the dominant allele",
			maternal: Allele{Effect: 80, Dominance: 1},
			paternal: Allele{Effect: 20, Dominance: 0},
			want:     80,
		},
		{
			name:     "codominance averages",
			maternal: Allele{Effect: 80, Dominance: 0.5},
			paternal: Allele{Effect: 20, Dominance: 0.5},
			want:     50,
		},
		{
			name:     "incomplete dominance blends toward the stronger allele",
			maternal: Allele{Effect: 90, Dominance: 0.75},
			paternal: Allele{Effect: 10, Dominance: 0.25},
			want:     70,
		},
		{
			name:     "zero dominance falls back to the mean",
			maternal: Allele{Effect: 40, Dominance: 0},
			paternal: Allele{Effect: 60, Dominance: 0},
			want:     50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expressTrait(tt.maternal, tt.paternal, bound)
			if math.Abs(float64(got-tt.want)) > 1e-4 {
				t.Errorf("expressed %g, want %g", got, tt.want)
			}
		})
	}
}

func TestExpressTraitClampsToBound(t *testing.T) {
	bound := Bound{Min: 10, Max: 20}
	m := Allele{Effect: 200, Dominance: 1}
	p := Allele{Effect: 200, Dominance: 1}
	if got := expressTrait(m, p, bound); got != 20 {
		t.Errorf("expressed %g, want clamp to 20", got)
	}
}

func TestDiploidPhenotypeWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := DefaultBounds()

	for i := 0; i < 50; i++ {
		d := NewRandomDiploid(rng, &b)
		checkInBounds(t, d.Phenotype(&b), &b, "diploid phenotype")
	}
}

func TestGameteAllelesComeFromParentPair(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	b := DefaultBounds()
	d := NewRandomDiploid(rng, &b)

	for trial := 0; trial < 20; trial++ {
		g := d.gamete(rng)
		for i := range g {
			if g[i] != d.Maternal[i] && g[i] != d.Paternal[i] {
				t.Fatalf("gamete allele %s matches neither parent copy", TraitID(i))
			}
		}
	}
}

func TestDiploidCrossoverInheritsOneGametePerParent(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	b := DefaultBounds()
	a := NewRandomDiploid(rng, &b)
	p := NewRandomDiploid(rng, &b)

	for trial := 0; trial < 20; trial++ {
		child := DiploidCrossover(a, p, rng)
		for i := range child.Maternal {
			if child.Maternal[i] != a.Maternal[i] && child.Maternal[i] != a.Paternal[i] {
				t.Fatalf("maternal allele %s not from first parent", TraitID(i))
			}
			if child.Paternal[i] != p.Maternal[i] && child.Paternal[i] != p.Paternal[i] {
				t.Fatalf("paternal allele %s not from second parent", TraitID(i))
			}
		}
		for i := range child.Weights {
			if child.Weights[i] != a.Weights[i] && child.Weights[i] != p.Weights[i] {
				t.Fatalf("weight %d matches neither parent", i)
			}
		}
	}
}

func TestDiploidMutateKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	b := DefaultBounds()
	d := NewRandomDiploid(rng, &b)

	for i := 0; i < 200; i++ {
		d.Mutate(rng, &b, 1.0, 0.5)
		for j := range d.Maternal {
			for _, a := range [2]Allele{d.Maternal[j], d.Paternal[j]} {
				bound := b[j]
				if a.Effect < bound.Min || a.Effect > bound.Max {
					t.Fatalf("allele effect %g for %s escaped [%g, %g]",
						a.Effect, TraitID(j), bound.Min, bound.Max)
				}
				if a.Dominance < 0 || a.Dominance > 1 {
					t.Fatalf("dominance %g for %s escaped [0, 1]", a.Dominance, TraitID(j))
				}
			}
		}
	}
}

func TestBreedDiploidParentsProduceDiploidChild(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	b := DefaultBounds()
	a := NewRandomDiploid(rng, &b)
	p := NewRandomDiploid(rng, &b)

	child := Breed(a, p, rng, &b, 0.1, 0.05)
	d, ok := child.(*DiploidGenome)
	if !ok {
		t.Fatalf("diploid parents must produce a diploid child, got %T", child)
	}
	checkInBounds(t, d.Phenotype(&b), &b, "diploid child phenotype")
}

func TestBreedMixedPloidyFallsBackToPhenotypes(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	b := DefaultBounds()
	a := NewRandomDiploid(rng, &b)
	p := NewRandom(rng, &b)

	child := Breed(a, p, rng, &b, 0.1, 0.05)
	g, ok := child.(*Genome)
	if !ok {
		t.Fatalf("mixed parents must produce a haploid child, got %T", child)
	}
	checkInBounds(t, g, &b, "mixed-parent child")
}
