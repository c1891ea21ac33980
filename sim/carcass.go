package sim

// Carcass is the remains left by a predation or drain death. It sits at
// a fixed position and decays until empty.
type Carcass struct {
	X, Z   float32
	Energy float32
}

// carcassField owns the carcass list. It implements
// systems.CarcassSource for scavenger sensing.
type carcassField struct {
	items []Carcass
}

func (f *carcassField) Add(x, z, energy float32) {
	if energy <= 0 {
		return
	}
	f.items = append(f.items, Carcass{X: x, Z: z, Energy: energy})
}

func (f *carcassField) Count() int { return len(f.items) }

// NearestCarcass returns the closest carcass within radius.
func (f *carcassField) NearestCarcass(x, z, radius float32) (cx, cz, dist float32, ok bool) {
	radiusSq := radius * radius
	bestSq := radiusSq
	for i := range f.items {
		dx := f.items[i].X - x
		dz := f.items[i].Z - z
		dsq := dx*dx + dz*dz
		if dsq <= radiusSq && (!ok || dsq < bestSq) {
			bestSq = dsq
			cx, cz = f.items[i].X, f.items[i].Z
			ok = true
		}
	}
	if !ok {
		return 0, 0, 0, false
	}
	return cx, cz, sqrt32(bestSq), true
}

// Feed removes up to bite energy from the nearest carcass within
// radius, returning the amount actually taken.
func (f *carcassField) Feed(x, z, radius, bite float32) float32 {
	radiusSq := radius * radius
	best := -1
	bestSq := radiusSq
	for i := range f.items {
		dx := f.items[i].X - x
		dz := f.items[i].Z - z
		dsq := dx*dx + dz*dz
		if dsq <= radiusSq && (best < 0 || dsq < bestSq) {
			bestSq = dsq
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	taken := bite
	if taken > f.items[best].Energy {
		taken = f.items[best].Energy
	}
	f.items[best].Energy -= taken
	return taken
}

// Decay drains every carcass and drops the empty ones.
func (f *carcassField) Decay(rate, dt float32) {
	out := f.items[:0]
	for _, c := range f.items {
		c.Energy -= rate * dt
		if c.Energy > 0 {
			out = append(out, c)
		}
	}
	f.items = out
}
