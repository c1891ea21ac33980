package genome

// Species groups genetically similar creatures around a representative
// genome.
type Species struct {
	ID             int
	Representative *Genome
	Members        int
	Age            int // balancer passes since creation
}

// Registry assigns species IDs by genetic distance to each species'
// representative, in the order species were created.
type Registry struct {
	Species   []*Species
	bounds    *Bounds
	threshold float32
	nextID    int
}

// NewRegistry creates a species registry with the given speciation
// threshold.
func NewRegistry(bounds *Bounds, threshold float32) *Registry {
	return &Registry{
		bounds:    bounds,
		threshold: threshold,
		nextID:    1,
	}
}

// Assign finds the first species whose representative is within the
// speciation threshold of g, creating a new species if none matches.
// Increments the member count and returns the species ID.
func (r *Registry) Assign(g *Genome) int {
	for _, sp := range r.Species {
		if g.DistanceTo(sp.Representative, r.bounds) < r.threshold {
			sp.Members++
			return sp.ID
		}
	}
	sp := &Species{
		ID:             r.nextID,
		Representative: g.Clone(),
		Members:        1,
	}
	r.nextID++
	r.Species = append(r.Species, sp)
	return sp.ID
}

// Release decrements the member count for a species when a creature
// dies. Unknown IDs are ignored.
func (r *Registry) Release(id int) {
	for _, sp := range r.Species {
		if sp.ID == id {
			if sp.Members > 0 {
				sp.Members--
			}
			return
		}
	}
}

// Prune drops species with no living members and ages the rest.
func (r *Registry) Prune() {
	active := r.Species[:0]
	for _, sp := range r.Species {
		if sp.Members > 0 {
			sp.Age++
			active = append(active, sp)
		}
	}
	r.Species = active
}

// Count returns the number of species with living members.
func (r *Registry) Count() int {
	n := 0
	for _, sp := range r.Species {
		if sp.Members > 0 {
			n++
		}
	}
	return n
}

// Largest returns the member count of the biggest species, 0 if none.
func (r *Registry) Largest() int {
	best := 0
	for _, sp := range r.Species {
		if sp.Members > best {
			best = sp.Members
		}
	}
	return best
}
