// Package genome implements bounded trait vectors, neural weight
// inheritance, and speciation distance for the population core.
package genome

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/veldt/neural"
)

// TraitID indexes a named trait in a genome.
type TraitID uint8

const (
	Size TraitID = iota
	Speed
	Efficiency
	VisionRange
	HearingRange
	SmellRange
	Camouflage
	NumTraits
)

var traitNames = [NumTraits]string{
	"size", "speed", "efficiency", "vision_range",
	"hearing_range", "smell_range", "camouflage",
}

func (t TraitID) String() string {
	if t >= NumTraits {
		return fmt.Sprintf("trait(%d)", uint8(t))
	}
	return traitNames[t]
}

// ParseTrait returns the trait named by s.
func ParseTrait(s string) (TraitID, error) {
	for i, name := range traitNames {
		if name == s {
			return TraitID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trait %q", s)
}

// Bound is the valid range of one trait.
type Bound struct {
	Min, Max float32
}

// Range returns max-min.
func (b Bound) Range() float32 { return b.Max - b.Min }

// Clamp forces v into the bound.
func (b Bound) Clamp(v float32) float32 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Bounds holds the valid range of every trait.
type Bounds [NumTraits]Bound

// DefaultBounds returns the built-in trait ranges.
func DefaultBounds() Bounds {
	return Bounds{
		Size:         {0.5, 2.0},
		Speed:        {10, 60},
		Efficiency:   {0.6, 1.4},
		VisionRange:  {15, 90},
		HearingRange: {10, 60},
		SmellRange:   {10, 70},
		Camouflage:   {0, 1},
	}
}

// Validate rejects inverted ranges.
func (b *Bounds) Validate() error {
	for i, bound := range b {
		if bound.Min >= bound.Max {
			return fmt.Errorf("genome: trait %s has inverted bounds [%g, %g]",
				TraitID(i), bound.Min, bound.Max)
		}
	}
	return nil
}

// weightDistanceScale weighs the neural-weight term of the distance
// metric relative to the trait term.
const weightDistanceScale = 0.25

// Genome is a haploid genome: one bounded value per trait plus the flat
// decision-network weight vector. Owned exclusively by one creature.
type Genome struct {
	Traits  [NumTraits]float32
	Weights [neural.WeightCount]float32
}

// NewRandom creates a genome with traits uniform within bounds and
// normally distributed network weights.
func NewRandom(rng *rand.Rand, b *Bounds) *Genome {
	g := &Genome{}
	for i := range g.Traits {
		bound := b[i]
		g.Traits[i] = bound.Min + rng.Float32()*bound.Range()
	}
	for i := range g.Weights {
		g.Weights[i] = float32(rng.NormFloat64()) * neural.InitWeightScale
	}
	return g
}

// Clone returns a deep copy.
func (g *Genome) Clone() *Genome {
	c := *g
	return &c
}

// Crossover builds a child genome: each trait and each weight is taken
// from either parent with independent probability 0.5.
func Crossover(a, b *Genome, rng *rand.Rand) *Genome {
	child := &Genome{}
	for i := range child.Traits {
		if rng.Float32() < 0.5 {
			child.Traits[i] = a.Traits[i]
		} else {
			child.Traits[i] = b.Traits[i]
		}
	}
	for i := range child.Weights {
		if rng.Float32() < 0.5 {
			child.Weights[i] = a.Weights[i]
		} else {
			child.Weights[i] = b.Weights[i]
		}
	}
	return child
}

// Mutate perturbs each trait with probability rate by Gaussian noise
// scaled to strength x the trait's range, clamping to bounds. Weights
// perturb at the same rate with sigma = strength, unclamped.
func (g *Genome) Mutate(rng *rand.Rand, b *Bounds, rate, strength float32) {
	for i := range g.Traits {
		if rng.Float32() < rate {
			bound := b[i]
			g.Traits[i] = bound.Clamp(g.Traits[i] + float32(rng.NormFloat64())*strength*bound.Range())
		}
	}
	for i := range g.Weights {
		if rng.Float32() < rate {
			g.Weights[i] += float32(rng.NormFloat64()) * strength
		}
	}
}

// DistanceTo is the normalized genetic distance: mean squared
// range-normalized trait difference plus a scaled mean squared weight
// difference. Symmetric, zero for identical genomes.
func (g *Genome) DistanceTo(o *Genome, b *Bounds) float32 {
	var traitSum float32
	for i := range g.Traits {
		d := (g.Traits[i] - o.Traits[i]) / b[i].Range()
		traitSum += d * d
	}
	var weightSum float32
	for i := range g.Weights {
		d := g.Weights[i] - o.Weights[i]
		weightSum += d * d
	}
	return traitSum/float32(NumTraits) + weightDistanceScale*weightSum/float32(neural.WeightCount)
}

// CanInterbreed reports whether two genomes are within the speciation
// threshold of each other.
func CanInterbreed(a, b *Genome, bounds *Bounds, threshold float32) bool {
	return a.DistanceTo(b, bounds) < threshold
}

// Genotype is the heritable material behind a creature. Haploid Genome
// and DiploidGenome both satisfy it; the expressed phenotype is always a
// plain Genome.
type Genotype interface {
	// Phenotype returns the expressed trait values and weights.
	// For haploid genomes this is the genome itself.
	Phenotype(b *Bounds) *Genome

	// Distance is the speciation metric between two genotypes of the
	// same ploidy, computed on expressed phenotypes.
	Distance(other Genotype, b *Bounds) float32
}

// Phenotype implements Genotype: a haploid genome expresses itself.
func (g *Genome) Phenotype(*Bounds) *Genome { return g }

// Distance implements Genotype.
func (g *Genome) Distance(other Genotype, b *Bounds) float32 {
	return g.DistanceTo(other.Phenotype(b), b)
}

// Breed produces an offspring genotype from two parents via crossover
// followed by mutation. Parents of mixed ploidy (should not happen in a
// configured run) breed through their expressed phenotypes.
func Breed(a, b Genotype, rng *rand.Rand, bounds *Bounds, rate, strength float32) Genotype {
	if da, ok := a.(*DiploidGenome); ok {
		if db, ok := b.(*DiploidGenome); ok {
			child := DiploidCrossover(da, db, rng)
			child.Mutate(rng, bounds, rate, strength)
			return child
		}
	}
	child := Crossover(a.Phenotype(bounds), b.Phenotype(bounds), rng)
	child.Mutate(rng, bounds, rate, strength)
	return child
}
