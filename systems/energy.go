package systems

import (
	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/config"
)

// DeathCause tags why a creature died, for telemetry.
type DeathCause uint8

const (
	DeathNone DeathCause = iota
	DeathStarvation
	DeathOldAge
	DeathPredation
)

func (c DeathCause) String() string {
	switch c {
	case DeathStarvation:
		return "starvation"
	case DeathOldAge:
		return "old_age"
	case DeathPredation:
		return "predation"
	}
	return "none"
}

// UpdateEnergy applies one tick of metabolic cost and checks the
// non-predation death conditions, in order: starvation first, then old
// age. A creature hitting exactly zero energy dies in this same tick.
// Costs scale by the phenotype's efficiency-derived CostScale.
func UpdateEnergy(
	energy *components.Energy,
	vel components.Velocity,
	phen *components.Phenotype,
	cc *config.ClassConfig,
	sprinting bool,
	sprintFraction float32,
	dt float32,
) DeathCause {
	if !energy.Alive {
		return DeathNone
	}

	energy.Age += dt

	speed := sqrtf(vel.X*vel.X + vel.Z*vel.Z)
	cost := float32(cc.BaseCost) + speed*float32(cc.MoveCost)
	if sprinting && speed > sprintFraction*phen.MaxSpeed {
		cost += float32(cc.SprintCost)
	}
	energy.Value -= cost * phen.CostScale * dt

	if energy.Value > energy.Max {
		energy.Value = energy.Max
	}
	if energy.Value <= 0 {
		energy.Value = 0
		energy.Alive = false
		return DeathStarvation
	}
	if energy.Age >= float32(cc.MaxLifespan) {
		energy.Alive = false
		return DeathOldAge
	}
	return DeathNone
}

// Gain adds energy, clamped to the creature's capacity.
func Gain(energy *components.Energy, amount float32) {
	if !energy.Alive {
		return
	}
	energy.Value += amount
	if energy.Value > energy.Max {
		energy.Value = energy.Max
	}
}

// TransferKill resolves a lethal bite: the victim is marked dead
// immediately and the attacker gains a fixed fraction of the victim's
// remaining energy. The unconverted remainder is returned for carcass
// accounting, so a kill never creates energy.
func TransferKill(attacker, victim *components.Energy, conversion float32) (gained, remains float32) {
	if !attacker.Alive || !victim.Alive {
		return 0, 0
	}
	gained = victim.Value * conversion
	remains = victim.Value - gained
	victim.Value = 0
	victim.Alive = false
	Gain(attacker, gained)
	return gained, remains
}

// Drain moves a sub-lethal amount of energy from a host to an attached
// parasite. The host can be drained to death; the caller records that
// as a predation death.
func Drain(host, parasite *components.Energy, amount, conversion float32) (drained float32, hostDied bool) {
	if !host.Alive || !parasite.Alive {
		return 0, false
	}
	drained = minf(amount, host.Value)
	host.Value -= drained
	Gain(parasite, drained*conversion)
	if host.Value <= 0 {
		host.Value = 0
		host.Alive = false
		hostDied = true
	}
	return drained, hostDied
}
