package genome

import (
	"math/rand"

	"github.com/pthm-cable/veldt/neural"
)

// Allele is one of the two copies behind a diploid trait. Effect is the
// raw trait value it codes for; Dominance weighs how strongly it shows
// in the expressed phenotype.
type Allele struct {
	Effect    float32
	Dominance float32 // [0,1]
}

// DiploidGenome carries two alleles per trait. The expressed value is a
// dominance-weighted blend, so allele pairs can model complete dominance
// (1 vs 0), codominance (equal weights), or incomplete dominance
// (intermediate weights). Network weights stay haploid; dominance at the
// level of individual synapse weights has no observable phenotype here.
type DiploidGenome struct {
	Maternal [NumTraits]Allele
	Paternal [NumTraits]Allele
	Weights  [neural.WeightCount]float32
}

// NewRandomDiploid creates a diploid genome with allele effects uniform
// within bounds and dominance uniform in [0,1].
func NewRandomDiploid(rng *rand.Rand, b *Bounds) *DiploidGenome {
	d := &DiploidGenome{}
	for i := range d.Maternal {
		bound := b[i]
		d.Maternal[i] = Allele{
			Effect:    bound.Min + rng.Float32()*bound.Range(),
			Dominance: rng.Float32(),
		}
		d.Paternal[i] = Allele{
			Effect:    bound.Min + rng.Float32()*bound.Range(),
			Dominance: rng.Float32(),
		}
	}
	hap := NewRandom(rng, b)
	d.Weights = hap.Weights
	return d
}

// expressTrait blends the two alleles by dominance weight. Equal
// dominance averages; a zero-dominance pair falls back to a plain mean.
func expressTrait(m, p Allele, bound Bound) float32 {
	total := m.Dominance + p.Dominance
	if total <= 0 {
		return bound.Clamp((m.Effect + p.Effect) / 2)
	}
	return bound.Clamp((m.Effect*m.Dominance + p.Effect*p.Dominance) / total)
}

// Phenotype expresses the diploid genome into trait values and weights.
func (d *DiploidGenome) Phenotype(b *Bounds) *Genome {
	g := &Genome{Weights: d.Weights}
	for i := range g.Traits {
		g.Traits[i] = expressTrait(d.Maternal[i], d.Paternal[i], b[i])
	}
	return g
}

// Distance implements Genotype on expressed phenotypes.
func (d *DiploidGenome) Distance(other Genotype, b *Bounds) float32 {
	return d.Phenotype(b).DistanceTo(other.Phenotype(b), b)
}

// gamete picks one allele per trait at random from the parent's pair.
func (d *DiploidGenome) gamete(rng *rand.Rand) [NumTraits]Allele {
	var g [NumTraits]Allele
	for i := range g {
		if rng.Float32() < 0.5 {
			g[i] = d.Maternal[i]
		} else {
			g[i] = d.Paternal[i]
		}
	}
	return g
}

// DiploidCrossover fuses one gamete from each parent. Weights follow the
// haploid rule: each taken from either parent with probability 0.5.
func DiploidCrossover(a, b *DiploidGenome, rng *rand.Rand) *DiploidGenome {
	child := &DiploidGenome{
		Maternal: a.gamete(rng),
		Paternal: b.gamete(rng),
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

// Mutate perturbs allele effects the way haploid traits mutate, clamped
// to bounds; dominance coefficients drift at a quarter of the rate,
// clamped to [0,1]. Weights mutate as in the haploid genome.
func (d *DiploidGenome) Mutate(rng *rand.Rand, b *Bounds, rate, strength float32) {
	dominanceBound := Bound{0, 1}
	mutatePair := func(alleles *[NumTraits]Allele) {
		for i := range alleles {
			bound := b[i]
			if rng.Float32() < rate {
				alleles[i].Effect = bound.Clamp(alleles[i].Effect + float32(rng.NormFloat64())*strength*bound.Range())
			}
			if rng.Float32() < rate*0.25 {
				alleles[i].Dominance = dominanceBound.Clamp(alleles[i].Dominance + float32(rng.NormFloat64())*strength)
			}
		}
	}
	mutatePair(&d.Maternal)
	mutatePair(&d.Paternal)
	for i := range d.Weights {
		if rng.Float32() < rate {
			d.Weights[i] += float32(rng.NormFloat64()) * strength
		}
	}
}
