// Package systems provides the per-tick simulation systems: spatial
// index, terrain and vegetation collaborators, sensing, steering,
// behavior selection, energy accounting, and population balancing.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/veldt/traits"
)

// Entry is one spatial index record: an entity handle plus the
// position, velocity, and class captured at insert time. The index is
// rebuilt every tick and read-only in between, so readers see every
// creature's state from the start of the tick regardless of update
// order.
type Entry struct {
	E      ecs.Entity
	Class  traits.Class
	X, Z   float32
	VX, VZ float32
}

// Neighbor is a query result with precomputed delta and squared
// distance, so sensors don't recompute them in the hot path.
type Neighbor struct {
	Entry
	DX, DZ float32 // delta from query origin
	DistSq float32
}

// SpatialIndex is a uniform grid over the world extent. The world is
// centered on the origin: x in [-worldW/2, +worldW/2], z likewise with
// worldD. Positions outside the extent clamp into the edge cells, so
// every inserted entry lands in exactly one cell.
type SpatialIndex struct {
	gridSize int
	worldW   float32
	worldD   float32
	cells    [][]Entry
	vels     map[ecs.Entity][2]float32
}

// NewSpatialIndex creates a gridSize x gridSize index covering the
// given world extent. Dimensions are fixed for the simulation lifetime.
func NewSpatialIndex(worldW, worldD float32, gridSize int) *SpatialIndex {
	cells := make([][]Entry, gridSize*gridSize)
	for i := range cells {
		cells[i] = make([]Entry, 0, 8)
	}
	return &SpatialIndex{
		gridSize: gridSize,
		worldW:   worldW,
		worldD:   worldD,
		cells:    cells,
		vels:     make(map[ecs.Entity][2]float32),
	}
}

// Clear empties all cells, keeping their backing arrays.
func (s *SpatialIndex) Clear() {
	for i := range s.cells {
		s.cells[i] = s.cells[i][:0]
	}
	clear(s.vels)
}

// cellCoord maps a world coordinate to a cell index along one axis:
// clamp(floor((v + extent/2) / extent * gridSize), 0, gridSize-1).
func (s *SpatialIndex) cellCoord(v, extent float32) int {
	c := int((v + extent/2) / extent * float32(s.gridSize))
	if c < 0 {
		return 0
	}
	if c >= s.gridSize {
		return s.gridSize - 1
	}
	return c
}

// Insert records an entity at the given position and velocity.
func (s *SpatialIndex) Insert(e ecs.Entity, class traits.Class, x, z, vx, vz float32) {
	cx := s.cellCoord(x, s.worldW)
	cz := s.cellCoord(z, s.worldD)
	idx := cz*s.gridSize + cx
	s.cells[idx] = append(s.cells[idx], Entry{E: e, Class: class, X: x, Z: z, VX: vx, VZ: vz})
	s.vels[e] = [2]float32{vx, vz}
}

// Velocity returns the velocity captured for an entity at insert time.
// Entities not in the index report ok=false.
func (s *SpatialIndex) Velocity(e ecs.Entity) (vx, vz float32, ok bool) {
	v, ok := s.vels[e]
	return v[0], v[1], ok
}

// QueryRadiusInto appends every entry within radius of (x, z) whose
// class is in filter, excluding the given entity, and returns the
// updated slice. Results are unordered; membership is equivalent to a
// brute-force scan. Reuse dst across calls to avoid allocations.
func (s *SpatialIndex) QueryRadiusInto(dst []Neighbor, x, z, radius float32, exclude ecs.Entity, filter traits.Mask) []Neighbor {
	if radius <= 0 {
		return dst
	}
	minCX := s.cellCoord(x-radius, s.worldW)
	maxCX := s.cellCoord(x+radius, s.worldW)
	minCZ := s.cellCoord(z-radius, s.worldD)
	maxCZ := s.cellCoord(z+radius, s.worldD)
	radiusSq := radius * radius

	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, entry := range s.cells[cz*s.gridSize+cx] {
				if entry.E == exclude || !filter.Has(entry.Class) {
					continue
				}
				dx := entry.X - x
				dz := entry.Z - z
				distSq := dx*dx + dz*dz
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Entry: entry, DX: dx, DZ: dz, DistSq: distSq})
				}
			}
		}
	}
	return dst
}

// QueryRadius returns all entries within radius of the position.
func (s *SpatialIndex) QueryRadius(x, z, radius float32, exclude ecs.Entity) []Neighbor {
	return s.QueryRadiusInto(nil, x, z, radius, exclude, traits.AllMask)
}

// QueryRadiusByType is QueryRadius restricted to the classes in filter.
func (s *SpatialIndex) QueryRadiusByType(x, z, radius float32, exclude ecs.Entity, filter traits.Mask) []Neighbor {
	return s.QueryRadiusInto(nil, x, z, radius, exclude, filter)
}

// FindNearest returns the closest matching entry within maxRadius.
// Ties at identical distance break by scan order (cell row-major, then
// insertion order within a cell): first found wins. That non-determinism
// under identical positions is accepted and relied on nowhere.
func (s *SpatialIndex) FindNearest(x, z, maxRadius float32, exclude ecs.Entity, filter traits.Mask) (Neighbor, bool) {
	if maxRadius <= 0 {
		return Neighbor{}, false
	}
	minCX := s.cellCoord(x-maxRadius, s.worldW)
	maxCX := s.cellCoord(x+maxRadius, s.worldW)
	minCZ := s.cellCoord(z-maxRadius, s.worldD)
	maxCZ := s.cellCoord(z+maxRadius, s.worldD)

	radiusSq := maxRadius * maxRadius
	var best Neighbor
	found := false

	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, entry := range s.cells[cz*s.gridSize+cx] {
				if entry.E == exclude || !filter.Has(entry.Class) {
					continue
				}
				dx := entry.X - x
				dz := entry.Z - z
				distSq := dx*dx + dz*dz
				if distSq <= radiusSq && (!found || distSq < best.DistSq) {
					best = Neighbor{Entry: entry, DX: dx, DZ: dz, DistSq: distSq}
					found = true
				}
			}
		}
	}
	return best, found
}

// CountNearby returns the number of entries within radius whose class
// is in filter.
func (s *SpatialIndex) CountNearby(x, z, radius float32, exclude ecs.Entity, filter traits.Mask) int {
	if radius <= 0 {
		return 0
	}
	minCX := s.cellCoord(x-radius, s.worldW)
	maxCX := s.cellCoord(x+radius, s.worldW)
	minCZ := s.cellCoord(z-radius, s.worldD)
	maxCZ := s.cellCoord(z+radius, s.worldD)
	radiusSq := radius * radius

	count := 0
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, entry := range s.cells[cz*s.gridSize+cx] {
				if entry.E == exclude || !filter.Has(entry.Class) {
					continue
				}
				dx := entry.X - x
				dz := entry.Z - z
				if dx*dx+dz*dz <= radiusSq {
					count++
				}
			}
		}
	}
	return count
}
