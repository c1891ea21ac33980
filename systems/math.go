package systems

import "math"

// clampf forces v into [lo, hi].
func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(x float32) float32 { return clampf(x, 0, 1) }

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func sincosf(a float32) (sin, cos float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

func atan2f(z, x float32) float32 {
	return float32(math.Atan2(float64(z), float64(x)))
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// limitVec caps the length of (x, z) at max.
func limitVec(x, z, max float32) (float32, float32) {
	lenSq := x*x + z*z
	if lenSq <= max*max || lenSq == 0 {
		return x, z
	}
	scale := max / sqrtf(lenSq)
	return x * scale, z * scale
}
