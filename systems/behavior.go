package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/config"
	"github.com/pthm-cable/veldt/traits"
)

// Interaction ranges.
const (
	// StrikeRange is how close a hunter (or cleaner) must be to land a
	// bite; bites are queued and resolved in the deferred transfer pass.
	StrikeRange = 4.0

	// AttachRange is how close a parasite must be to drain its host.
	AttachRange = 3.0

	// MateRange is how close two ready conspecifics must be to breed.
	MateRange = 10.0

	// arriveSlowRadius ramps approach speed down near food and mates.
	arriveSlowRadius = 8.0
)

// Per-goal desired-speed factors relative to the creature's max speed.
var goalSpeed = map[components.Goal]float32{
	components.GoalFlee:     1.0,
	components.GoalHunt:     1.0,
	components.GoalPack:     0.9,
	components.GoalSeekFood: 0.8,
	components.GoalSeekHost: 0.8,
	components.GoalSeekMate: 0.7,
	components.GoalFlock:    0.6,
	components.GoalPatrol:   0.6,
	components.GoalWander:   0.5,
	components.GoalDrain:    0.4,
	components.GoalRest:     0,
}

// BehaviorContext bundles the read-only collaborators Decide needs.
type BehaviorContext struct {
	Cfg   *config.BehaviorConfig
	Index *SpatialIndex
	VelOf VelocityLookup
	Rng   *rand.Rand
}

// Decision is the movement intent for one creature this tick.
type Decision struct {
	Goal   components.Goal
	AX, AZ float32
	Sprint bool
}

// BreedingReady reports whether a creature satisfies the self-side
// reproduction conditions: energy at threshold, mature, cooldown
// elapsed, and (hunters only) the kill-count gate.
func BreedingReady(cre *components.Creature, energy *components.Energy, cc *config.ClassConfig) bool {
	if energy.Value < float32(cc.ReproThreshold) {
		return false
	}
	if energy.Age < float32(cc.MaturityAge) {
		return false
	}
	if cre.ReproCooldown > 0 {
		return false
	}
	if cre.Class.IsHunter() && cre.Kills < int32(cc.MinKills) {
		return false
	}
	return true
}

// Decide runs the priority stack for one creature and blends the
// decision-network output into the selected steering.
//
// Blend rule: the stack's steering yields a desired heading and speed;
// the network shifts the heading by (turn/pi) x max_net_turn_bias
// radians and scales the speed by 0.5 + 0.5 x speedFactor. A zeroed
// network therefore reduces to pure priority-stack steering at half
// throttle.
//
// scratch is a reusable neighbor buffer; the (possibly grown) buffer is
// returned for the next call.
func Decide(
	ctx *BehaviorContext,
	self ecs.Entity,
	cc *config.ClassConfig,
	pos components.Position,
	vel components.Velocity,
	phen *components.Phenotype,
	energy *components.Energy,
	cre *components.Creature,
	sense *SenseResult,
	netTurn, netSpeed float32,
	dt float32,
	scratch []Neighbor,
) (Decision, []Neighbor) {
	// Wander heading drifts continuously; it lives on the creature so
	// replay and a future parallel update stay correct.
	cre.WanderHeading = normalizeAngle(cre.WanderHeading +
		(ctx.Rng.Float32()*2-1)*float32(ctx.Cfg.WanderJitter)*dt)

	goal, scratch := selectGoal(ctx, self, cc, pos, phen, energy, cre, sense, scratch)
	cre.Goal = goal

	ax, az, scratch := steerForGoal(ctx, goal, self, pos, vel, phen, cre, sense, scratch)

	// Provisional desired velocity from the stack's steering.
	maxSpeed := phen.MaxSpeed * goalSpeed[goal]
	dvx, dvz := limitVec(vel.X+ax, vel.Z+az, maxSpeed)

	speed := sqrtf(dvx*dvx + dvz*dvz)
	heading := cre.WanderHeading
	if speed > 1e-4 {
		heading = atan2f(dvz, dvx)
	}

	// Network modulation.
	heading += netTurn / math.Pi * float32(ctx.Cfg.MaxNetTurnBias)
	speed *= 0.5 + 0.5*netSpeed

	sin, cos := sincosf(heading)
	ax = cos*speed - vel.X
	az = sin*speed - vel.Z
	ax, az = limitVec(ax, az, float32(ctx.Cfg.MaxAccel))

	sprint := goal == components.GoalFlee || goal == components.GoalHunt || goal == components.GoalPack
	return Decision{Goal: goal, AX: ax, AZ: az, Sprint: sprint}, scratch
}

// selectGoal evaluates the class's priority stack top-down; the first
// applicable condition wins.
func selectGoal(
	ctx *BehaviorContext,
	self ecs.Entity,
	cc *config.ClassConfig,
	pos components.Position,
	phen *components.Phenotype,
	energy *components.Energy,
	cre *components.Creature,
	sense *SenseResult,
	scratch []Neighbor,
) (components.Goal, []Neighbor) {
	frac := energy.Fraction()
	hungry := frac < float32(cc.HungerThreshold)
	threatened := sense.Threat.OK && sense.Inputs[1] < float32(cc.FearThreshold)
	mateable := BreedingReady(cre, energy, cc) && sense.Mate.OK

	switch {
	case cre.Class.IsHerbivore():
		if threatened {
			return components.GoalFlee, scratch
		}
		if hungry && sense.Food.OK {
			return components.GoalSeekFood, scratch
		}
		if mateable {
			return components.GoalSeekMate, scratch
		}
		scratch = scratch[:0]
		scratch = ctx.Index.QueryRadiusInto(scratch, pos.X, pos.Z,
			minf(float32(ctx.Cfg.FlockRadius), phen.Vision), self, cre.Class.Peers())
		if len(scratch) > 0 {
			return components.GoalFlock, scratch
		}
		return components.GoalWander, scratch

	case cre.Class.IsHunter():
		if hungry && sense.Food.OK {
			return components.GoalHunt, scratch
		}
		if sense.Food.OK {
			packmates := ctx.Index.CountNearby(pos.X, pos.Z, float32(ctx.Cfg.PackRadius), self, cre.Class.Peers())
			if packmates > 0 {
				return components.GoalPack, scratch
			}
		}
		if mateable {
			return components.GoalSeekMate, scratch
		}
		if frac < 0.85 {
			return components.GoalPatrol, scratch
		}
		return components.GoalRest, scratch

	case cre.Class == traits.Parasite:
		if threatened {
			return components.GoalFlee, scratch
		}
		if sense.Food.OK && sense.Food.Dist <= AttachRange {
			return components.GoalDrain, scratch
		}
		if sense.Food.OK {
			return components.GoalSeekHost, scratch
		}
		return components.GoalWander, scratch

	default: // scavenger, cleaner
		if threatened {
			return components.GoalFlee, scratch
		}
		if sense.Food.OK && (hungry || cre.Class == traits.Scavenger) {
			return components.GoalSeekFood, scratch
		}
		if mateable {
			return components.GoalSeekMate, scratch
		}
		return components.GoalWander, scratch
	}
}

// steerForGoal translates the selected goal into a steering
// acceleration using the primitives in steering.go.
func steerForGoal(
	ctx *BehaviorContext,
	goal components.Goal,
	self ecs.Entity,
	pos components.Position,
	vel components.Velocity,
	phen *components.Phenotype,
	cre *components.Creature,
	sense *SenseResult,
	scratch []Neighbor,
) (ax, az float32, out []Neighbor) {
	maxSpeed := phen.MaxSpeed

	switch goal {
	case components.GoalFlee:
		tvx, tvz, _ := ctx.VelOf(sense.Threat.E)
		ax, az = Evade(pos.X, pos.Z, sense.Threat.X, sense.Threat.Z, tvx, tvz, vel.X, vel.Z, maxSpeed)

	case components.GoalHunt:
		tvx, tvz, _ := ctx.VelOf(sense.Food.E)
		ax, az = Pursuit(pos.X, pos.Z, sense.Food.X, sense.Food.Z, tvx, tvz, vel.X, vel.Z, maxSpeed)

	case components.GoalPack:
		// Pursue the prey while holding loose formation with packmates.
		tvx, tvz, _ := ctx.VelOf(sense.Food.E)
		ax, az = Pursuit(pos.X, pos.Z, sense.Food.X, sense.Food.Z, tvx, tvz, vel.X, vel.Z, maxSpeed)
		scratch = scratch[:0]
		scratch = ctx.Index.QueryRadiusInto(scratch, pos.X, pos.Z,
			float32(ctx.Cfg.PackRadius), self, cre.Class.Peers())
		fx, fz := Flock(pos.X, pos.Z, vel.X, vel.Z, maxSpeed, scratch,
			float32(ctx.Cfg.SeparationWeight), float32(ctx.Cfg.AlignmentWeight), 0)
		ax += fx * 0.5
		az += fz * 0.5

	case components.GoalSeekFood, components.GoalSeekHost:
		ax, az = Arrive(pos.X, pos.Z, sense.Food.X, sense.Food.Z, vel.X, vel.Z, maxSpeed, arriveSlowRadius)

	case components.GoalDrain:
		ax, az = Arrive(pos.X, pos.Z, sense.Food.X, sense.Food.Z, vel.X, vel.Z, maxSpeed, AttachRange*2)

	case components.GoalSeekMate:
		ax, az = Arrive(pos.X, pos.Z, sense.Mate.X, sense.Mate.Z, vel.X, vel.Z, maxSpeed, arriveSlowRadius)

	case components.GoalFlock:
		// scratch still holds the flock neighbors from goal selection.
		ax, az = Flock(pos.X, pos.Z, vel.X, vel.Z, maxSpeed, scratch,
			float32(ctx.Cfg.SeparationWeight), float32(ctx.Cfg.AlignmentWeight), float32(ctx.Cfg.CohesionWeight))

	case components.GoalWander, components.GoalPatrol:
		ax, az = Wander(cre.WanderHeading, vel.X, vel.Z, maxSpeed)

	case components.GoalRest:
		ax, az = -vel.X, -vel.Z
	}

	return ax, az, scratch
}
