package systems

import (
	"github.com/mlange-42/ark/ecs"
)

// Steering primitives. Each returns an acceleration contribution using
// the usual desired-velocity formulation: accel = desired - current,
// capped by the caller's combined limit. Positions and velocities are
// ground-plane components.

// Seek accelerates toward a target point at full speed.
func Seek(px, pz, tx, tz, vx, vz, maxSpeed float32) (ax, az float32) {
	dx := tx - px
	dz := tz - pz
	dist := sqrtf(dx*dx + dz*dz)
	if dist < 1e-5 {
		return -vx, -vz
	}
	dvx := dx / dist * maxSpeed
	dvz := dz / dist * maxSpeed
	return dvx - vx, dvz - vz
}

// Flee accelerates directly away from a point at full speed.
func Flee(px, pz, tx, tz, vx, vz, maxSpeed float32) (ax, az float32) {
	dx := px - tx
	dz := pz - tz
	dist := sqrtf(dx*dx + dz*dz)
	if dist < 1e-5 {
		// On top of the threat: any direction beats standing still.
		return maxSpeed - vx, -vz
	}
	dvx := dx / dist * maxSpeed
	dvz := dz / dist * maxSpeed
	return dvx - vx, dvz - vz
}

// Arrive seeks a point but ramps the desired speed down inside
// slowRadius so the creature settles instead of orbiting.
func Arrive(px, pz, tx, tz, vx, vz, maxSpeed, slowRadius float32) (ax, az float32) {
	dx := tx - px
	dz := tz - pz
	dist := sqrtf(dx*dx + dz*dz)
	if dist < 1e-5 {
		return -vx, -vz
	}
	speed := maxSpeed
	if dist < slowRadius {
		speed = maxSpeed * dist / slowRadius
	}
	dvx := dx / dist * speed
	dvz := dz / dist * speed
	return dvx - vx, dvz - vz
}

// Pursuit seeks the target's predicted position, leading it by its
// velocity over the estimated intercept time.
func Pursuit(px, pz, tx, tz, tvx, tvz, vx, vz, maxSpeed float32) (ax, az float32) {
	dx := tx - px
	dz := tz - pz
	lead := sqrtf(dx*dx+dz*dz) / maxf(maxSpeed, 1e-5)
	return Seek(px, pz, tx+tvx*lead, tz+tvz*lead, vx, vz, maxSpeed)
}

// Evade flees the target's predicted position.
func Evade(px, pz, tx, tz, tvx, tvz, vx, vz, maxSpeed float32) (ax, az float32) {
	dx := tx - px
	dz := tz - pz
	lead := sqrtf(dx*dx+dz*dz) / maxf(maxSpeed, 1e-5)
	return Flee(px, pz, tx+tvx*lead, tz+tvz*lead, vx, vz, maxSpeed)
}

// Wander accelerates along the creature's persistent wander heading.
// The heading itself drifts in the behavior step; this only converts it
// to a desired velocity.
func Wander(wanderHeading, vx, vz, maxSpeed float32) (ax, az float32) {
	sin, cos := sincosf(wanderHeading)
	return cos*maxSpeed - vx, sin*maxSpeed - vz
}

// VelocityLookup resolves an entity's velocity as captured in the
// spatial index at the start of the tick.
type VelocityLookup func(e ecs.Entity) (vx, vz float32, ok bool)

// Flock combines separation, alignment and cohesion over same-class
// neighbors with the given weights. Alignment reads the neighbor
// velocities captured in the index entries, so the result does not
// depend on how many neighbors already moved this tick.
func Flock(
	px, pz, vx, vz, maxSpeed float32,
	neighbors []Neighbor,
	sepW, alignW, cohW float32,
) (ax, az float32) {
	if len(neighbors) == 0 {
		return 0, 0
	}

	var sepX, sepZ float32
	var avgVX, avgVZ float32
	var centerX, centerZ float32

	for i := range neighbors {
		n := &neighbors[i]
		// Separation: push away, weighted by inverse distance.
		if n.DistSq > 1e-6 {
			inv := 1 / n.DistSq
			sepX -= n.DX * inv
			sepZ -= n.DZ * inv
		}
		centerX += n.X
		centerZ += n.Z
		avgVX += n.VX
		avgVZ += n.VZ
	}

	count := float32(len(neighbors))

	// Separation toward desired velocity
	if sepX != 0 || sepZ != 0 {
		mag := sqrtf(sepX*sepX + sepZ*sepZ)
		sepX = sepX / mag * maxSpeed
		sepZ = sepZ / mag * maxSpeed
	}
	ax += (sepX - vx) * sepW
	az += (sepZ - vz) * sepW

	// Alignment with the average neighbor velocity
	avgVX /= count
	avgVZ /= count
	ax += (avgVX - vx) * alignW
	az += (avgVZ - vz) * alignW

	// Cohesion toward the neighbor centroid
	cx, cz := Seek(px, pz, centerX/count, centerZ/count, vx, vz, maxSpeed)
	ax += cx * cohW
	az += cz * cohW

	return ax, az
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
