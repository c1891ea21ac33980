package systems

// Vegetation is the plant-food field herbivores graze. It is a coarse
// grid over the world; cells under water hold no capacity. Grazing and
// regrowth are the only writers, and both run in the sequential phase
// of a tick.
type Vegetation struct {
	resolution int
	worldW     float32
	worldD     float32
	capacity   []float32 // per-cell max, 0 for water cells
	value      []float32
	regenRate  float32
}

// NewVegetation creates the field and seeds every land cell at full
// capacity.
func NewVegetation(worldW, worldD float32, resolution int, capacity, regenRate float32, terrain Terrain) *Vegetation {
	v := &Vegetation{
		resolution: resolution,
		worldW:     worldW,
		worldD:     worldD,
		capacity:   make([]float32, resolution*resolution),
		value:      make([]float32, resolution*resolution),
		regenRate:  regenRate,
	}
	cellW := worldW / float32(resolution)
	cellD := worldD / float32(resolution)
	for cz := 0; cz < resolution; cz++ {
		for cx := 0; cx < resolution; cx++ {
			x := -worldW/2 + (float32(cx)+0.5)*cellW
			z := -worldD/2 + (float32(cz)+0.5)*cellD
			idx := cz*resolution + cx
			if terrain.IsValidSpawnPosition(x, z) {
				v.capacity[idx] = capacity
				v.value[idx] = capacity
			}
		}
	}
	return v
}

func (v *Vegetation) cellIndex(x, z float32) int {
	cx := int((x + v.worldW/2) / v.worldW * float32(v.resolution))
	cz := int((z + v.worldD/2) / v.worldD * float32(v.resolution))
	if cx < 0 {
		cx = 0
	} else if cx >= v.resolution {
		cx = v.resolution - 1
	}
	if cz < 0 {
		cz = 0
	} else if cz >= v.resolution {
		cz = v.resolution - 1
	}
	return cz*v.resolution + cx
}

// Sample returns the food available at a position.
func (v *Vegetation) Sample(x, z float32) float32 {
	return v.value[v.cellIndex(x, z)]
}

// Graze removes up to amount from the cell at the position and returns
// what was actually taken.
func (v *Vegetation) Graze(x, z, amount float32) float32 {
	idx := v.cellIndex(x, z)
	taken := minf(amount, v.value[idx])
	v.value[idx] -= taken
	return taken
}

// Regen grows every cell toward its capacity.
func (v *Vegetation) Regen(dt float32) {
	for i, cap := range v.capacity {
		if v.value[i] < cap {
			v.value[i] += v.regenRate * cap * dt
			if v.value[i] > cap {
				v.value[i] = cap
			}
		}
	}
}

// Total returns the summed food in the field, for telemetry.
func (v *Vegetation) Total() float64 {
	var sum float64
	for _, val := range v.value {
		sum += float64(val)
	}
	return sum
}

// BestNearby scans field cells within radius of (x, z) and returns the
// center of the richest cell holding at least minValue. Ties prefer the
// nearer cell. Used as the herbivore "nearest food" sense.
func (v *Vegetation) BestNearby(x, z, radius, minValue float32) (fx, fz, dist float32, ok bool) {
	cellW := v.worldW / float32(v.resolution)
	cellD := v.worldD / float32(v.resolution)

	minCX := int((x - radius + v.worldW/2) / cellW)
	maxCX := int((x + radius + v.worldW/2) / cellW)
	minCZ := int((z - radius + v.worldD/2) / cellD)
	maxCZ := int((z + radius + v.worldD/2) / cellD)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= v.resolution {
		maxCX = v.resolution - 1
	}
	if minCZ < 0 {
		minCZ = 0
	}
	if maxCZ >= v.resolution {
		maxCZ = v.resolution - 1
	}

	radiusSq := radius * radius
	var bestVal, bestDistSq float32
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			val := v.value[cz*v.resolution+cx]
			if val < minValue || val < bestVal {
				continue
			}
			px := -v.worldW/2 + (float32(cx)+0.5)*cellW
			pz := -v.worldD/2 + (float32(cz)+0.5)*cellD
			dx := px - x
			dz := pz - z
			distSq := dx*dx + dz*dz
			if distSq > radiusSq {
				continue
			}
			if val > bestVal || distSq < bestDistSq {
				bestVal = val
				bestDistSq = distSq
				fx, fz = px, pz
				ok = true
			}
		}
	}
	if !ok {
		return 0, 0, 0, false
	}
	return fx, fz, sqrtf(bestDistSq), true
}
