// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/veldt/traits"

// Position is a creature's world position on the x/z ground plane.
type Position struct {
	X, Z float32
}

// Velocity is a creature's velocity on the ground plane.
type Velocity struct {
	X, Z float32
}

// Rotation holds the heading in radians (0 = +x, counterclockwise).
type Rotation struct {
	Heading float32
}

// Energy holds life state. A creature whose Value reaches 0 is marked
// dead in the same tick; removal happens in the death sweep.
type Energy struct {
	Value float32
	Max   float32
	Age   float32 // seconds
	Alive bool
}

// Fraction returns Value/Max in [0,1].
func (e *Energy) Fraction() float32 {
	if e.Max <= 0 {
		return 0
	}
	f := e.Value / e.Max
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Goal is the active behavior selected by the priority stack this tick.
type Goal uint8

const (
	GoalWander Goal = iota
	GoalFlee
	GoalSeekFood
	GoalSeekMate
	GoalFlock
	GoalHunt
	GoalPack
	GoalPatrol
	GoalRest
	GoalSeekHost
	GoalDrain
)

var goalNames = [...]string{
	"wander", "flee", "seek_food", "seek_mate", "flock",
	"hunt", "pack", "patrol", "rest", "seek_host", "drain",
}

func (g Goal) String() string {
	if int(g) < len(goalNames) {
		return goalNames[g]
	}
	return "unknown"
}

// Creature holds per-individual state that is not kinematics or energy.
type Creature struct {
	ID        uint32
	Class     traits.Class
	SpeciesID int

	// Reproduction state
	ReproCooldown float32 // seconds until breeding is possible again
	Kills         int32   // lifetime kills; gates hunter reproduction
	Offspring     int32   // lifetime offspring, for fitness stats

	// Behavior state. WanderHeading persists across ticks so wandering
	// drifts instead of resampling; it must live here, never in the
	// behavior system, so parallel updates and replay stay correct.
	WanderHeading float32
	Goal          Goal
	Sprinting     bool
	HostID        uint32 // parasite attachment target, 0 = none

	// AnimPhase advances with distance traveled, for render consumers.
	AnimPhase float32
}

// Phenotype caches the expressed genome traits a creature is built
// with. Derived once at birth; the genotype itself lives beside the
// arena keyed by Creature.ID.
type Phenotype struct {
	Size       float32
	MaxSpeed   float32
	CostScale  float32 // 1/efficiency; scales all metabolic costs
	Vision     float32
	Hearing    float32
	Smell      float32
	Camouflage float32
}
