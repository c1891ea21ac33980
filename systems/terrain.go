package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain is the collaborator the core queries for placement. The core
// never generates terrain itself; it only asks for heights and spawn
// validity.
type Terrain interface {
	// HeightAt returns the surface height at a ground position.
	HeightAt(x, z float32) float32

	// IsValidSpawnPosition reports whether a creature may be placed at
	// the position. Out-of-bounds and underwater positions are invalid.
	IsValidSpawnPosition(x, z float32) bool
}

// Heightfield is a noise-backed Terrain implementation.
type Heightfield struct {
	noise      opensimplex.Noise
	scale      float32
	amplitude  float32
	waterLevel float32
	halfW      float32
	halfD      float32
}

// NewHeightfield creates a terrain heightfield over the centered world
// extent, generated from seeded simplex noise.
func NewHeightfield(worldW, worldD float32, scale, amplitude, waterLevel float32, seed int64) *Heightfield {
	return &Heightfield{
		noise:      opensimplex.New(seed),
		scale:      scale,
		amplitude:  amplitude,
		waterLevel: waterLevel,
		halfW:      worldW / 2,
		halfD:      worldD / 2,
	}
}

// HeightAt returns the surface height at (x, z).
func (h *Heightfield) HeightAt(x, z float32) float32 {
	n := h.noise.Eval2(float64(x*h.scale), float64(z*h.scale))
	return float32(n) * h.amplitude
}

// IsValidSpawnPosition reports whether (x, z) is inside the world and
// above water.
func (h *Heightfield) IsValidSpawnPosition(x, z float32) bool {
	if x < -h.halfW || x > h.halfW || z < -h.halfD || z > h.halfD {
		return false
	}
	return h.HeightAt(x, z) > h.waterLevel
}

// FlatTerrain is an all-land Terrain for tests.
type FlatTerrain struct {
	HalfW, HalfD float32
}

func (t FlatTerrain) HeightAt(x, z float32) float32 { return 0 }

func (t FlatTerrain) IsValidSpawnPosition(x, z float32) bool {
	return x >= -t.HalfW && x <= t.HalfW && z >= -t.HalfD && z <= t.HalfD
}
