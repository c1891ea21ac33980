package sim

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/genome"
	"github.com/pthm-cable/veldt/systems"
	"github.com/pthm-cable/veldt/telemetry"
	"github.com/pthm-cable/veldt/traits"
)

// Step advances the simulation one tick. All cross-creature effects
// (strikes, drains, births, deaths) are queued during iteration and
// applied in deferred passes, so within a tick every creature reads the
// same world state.
func (s *Simulation) Step() {
	dt := s.dt
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseSpatialGrid)
	s.rebuildIndex()

	s.perf.StartPhase(telemetry.PhaseBehavior)
	s.updateBehavior(dt)

	s.perf.StartPhase(telemetry.PhaseEnergy)
	s.updateEnergy(dt)

	s.perf.StartPhase(telemetry.PhaseCombat)
	s.applyBites()
	s.applyDrains(dt)

	s.perf.StartPhase(telemetry.PhaseReproduction)
	s.applyBirths()

	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.cleanupDead()

	s.perf.StartPhase(telemetry.PhaseBalancer)
	s.runBalancer()

	s.perf.StartPhase(telemetry.PhaseVegetation)
	s.veg.Regen(dt)
	s.carcasses.Decay(float32(s.cfg.Energy.CarcassDecay), dt)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndTick()
	s.tick++
}

// rebuildIndex repopulates the spatial index from living creatures.
func (s *Simulation) rebuildIndex() {
	s.index.Clear()

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, _, energy, _, cre := query.Get()
		if energy.Alive {
			s.index.Insert(entity, cre.Class, pos.X, pos.Z, vel.X, vel.Z)
		}
	}
}

// updateBehavior runs sensing, the decision network, the priority
// stack, and movement integration, queueing strike, drain, and mating
// events for the deferred passes.
func (s *Simulation) updateBehavior(dt float32) {
	halfW := s.cfg.Derived.WorldW32 / 2
	halfD := s.cfg.Derived.WorldD32 / 2
	drag := float32(math.Exp(-s.cfg.Behavior.Drag * float64(dt)))

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, rot, energy, phen, cre := query.Get()

		if !energy.Alive {
			continue
		}

		net, ok := s.nets[cre.ID]
		if !ok {
			continue
		}
		cc := s.cfg.Class(cre.Class)

		sense := systems.Sense(entity, *pos, cre.Class, phen, energy, s.index, s.veg, &s.carcasses)
		netTurn, netSpeed := net.Forward(&sense.Inputs)

		var decision systems.Decision
		decision, s.scratch = systems.Decide(&s.behaviorCtx, entity, cc,
			*pos, *vel, phen, energy, cre, &sense, netTurn, netSpeed, dt, s.scratch)

		// Integrate
		vel.X += decision.AX * dt
		vel.Z += decision.AZ * dt
		vel.X *= drag
		vel.Z *= drag

		speed := sqrt32(vel.X*vel.X + vel.Z*vel.Z)
		if speed > phen.MaxSpeed {
			scale := phen.MaxSpeed / speed
			vel.X *= scale
			vel.Z *= scale
			speed = phen.MaxSpeed
		}

		pos.X += vel.X * dt
		pos.Z += vel.Z * dt
		if pos.X < -halfW {
			pos.X = -halfW
		} else if pos.X > halfW {
			pos.X = halfW
		}
		if pos.Z < -halfD {
			pos.Z = -halfD
		} else if pos.Z > halfD {
			pos.Z = halfD
		}

		if speed > 1e-4 {
			rot.Heading = float32(math.Atan2(float64(vel.Z), float64(vel.X)))
		}
		cre.Sprinting = decision.Sprint
		cre.AnimPhase += speed * dt

		// Queue cross-creature events using this tick's sensed world
		switch {
		case cre.Class.IsHunter() || cre.Class == traits.Cleaner:
			striking := decision.Goal == components.GoalHunt ||
				(cre.Class == traits.Cleaner && decision.Goal == components.GoalSeekFood)
			if striking && sense.Food.OK && sense.Food.Dist <= systems.StrikeRange {
				s.bites = append(s.bites, biteEvent{attacker: entity, victim: sense.Food.E})
			}
		case cre.Class == traits.Parasite:
			if decision.Goal == components.GoalDrain && sense.Food.OK && sense.Food.Dist <= systems.AttachRange {
				s.drains = append(s.drains, drainEvent{parasite: entity, host: sense.Food.E})
			} else {
				cre.HostID = 0
			}
		}
		if decision.Goal == components.GoalSeekMate && sense.Mate.OK &&
			sense.Mate.Dist <= systems.MateRange && systems.BreedingReady(cre, energy, cc) {
			s.births = append(s.births, birthEvent{a: entity, b: sense.Mate.E})
		}
	}
}

// updateEnergy applies feeding gains, metabolic costs, death checks,
// and cooldowns.
func (s *Simulation) updateEnergy(dt float32) {
	grazeBite := float32(s.cfg.Vegetation.GrazeRate) * dt
	carrionConv := float32(s.cfg.Energy.CarrionConversion)
	sprintFraction := float32(s.cfg.Energy.SprintFraction)

	query := s.filter.Query()
	for query.Next() {
		pos, vel, _, energy, phen, cre := query.Get()

		if !energy.Alive {
			continue
		}
		cc := s.cfg.Class(cre.Class)

		switch {
		case cre.Class.IsHerbivore():
			if taken := s.veg.Graze(pos.X, pos.Z, grazeBite); taken > 0 {
				systems.Gain(energy, taken)
			}
		case cre.Class == traits.Scavenger:
			if cre.Goal == components.GoalSeekFood {
				if taken := s.carcasses.Feed(pos.X, pos.Z, systems.StrikeRange, grazeBite); taken > 0 {
					systems.Gain(energy, taken*carrionConv)
				}
			}
		}

		cause := systems.UpdateEnergy(energy, *vel, phen, cc, cre.Sprinting, sprintFraction, dt)
		switch cause {
		case systems.DeathStarvation:
			s.collector.RecordDeath(telemetry.DeathStarvation)
		case systems.DeathOldAge:
			s.collector.RecordDeath(telemetry.DeathOldAge)
			// Natural deaths leave whatever energy remained for the
			// scavengers.
			if energy.Value > 0 {
				s.carcasses.Add(pos.X, pos.Z, energy.Value)
			}
		}

		if cre.ReproCooldown > 0 {
			cre.ReproCooldown -= dt
			if cre.ReproCooldown < 0 {
				cre.ReproCooldown = 0
			}
		}
	}
}

// applyBites resolves the queued strikes. A victim already dead from an
// earlier strike this tick is skipped, so two hunters cannot both feed
// on one kill.
func (s *Simulation) applyBites() {
	conversion := float32(s.cfg.Energy.KillConversion)

	for _, b := range s.bites {
		if !s.world.Alive(b.attacker) || !s.world.Alive(b.victim) {
			continue
		}
		aEnergy := s.energyMap.Get(b.attacker)
		vEnergy := s.energyMap.Get(b.victim)
		if !aEnergy.Alive || !vEnergy.Alive {
			continue
		}

		s.collector.RecordBiteAttempt()

		vPhen := s.phenMap.Get(b.victim)
		if s.rng.Float32() < vPhen.Camouflage*camouflageMissScale {
			continue
		}
		s.collector.RecordBiteHit()

		_, remains := systems.TransferKill(aEnergy, vEnergy, conversion)
		s.creMap.Get(b.attacker).Kills++
		s.collector.RecordKill()
		s.collector.RecordDeath(telemetry.DeathPredation)

		if remains > 0 {
			vPos := s.posMap.Get(b.victim)
			s.carcasses.Add(vPos.X, vPos.Z, remains)
		}
	}
	s.bites = s.bites[:0]
}

// applyDrains resolves queued parasite attachments.
func (s *Simulation) applyDrains(dt float32) {
	amount := float32(s.cfg.Energy.ParasiteDrain) * dt
	conversion := float32(s.cfg.Energy.KillConversion)

	for _, d := range s.drains {
		if !s.world.Alive(d.parasite) || !s.world.Alive(d.host) {
			continue
		}
		pEnergy := s.energyMap.Get(d.parasite)
		hEnergy := s.energyMap.Get(d.host)
		if !pEnergy.Alive || !hEnergy.Alive {
			continue
		}

		_, hostDied := systems.Drain(hEnergy, pEnergy, amount, conversion)
		pCre := s.creMap.Get(d.parasite)
		pCre.HostID = s.creMap.Get(d.host).ID
		if hostDied {
			s.collector.RecordDeath(telemetry.DeathPredation)
			pCre.HostID = 0
		}
	}
	s.drains = s.drains[:0]
}

// applyBirths pairs the queued mating events and spawns offspring. Each
// creature breeds at most once per tick.
func (s *Simulation) applyBirths() {
	threshold := float32(s.cfg.Genetics.SpeciationThreshold)
	rate := float32(s.cfg.Genetics.MutationRate)
	strength := float32(s.cfg.Genetics.MutationStrength)

	for k := range s.bred {
		delete(s.bred, k)
	}

	for _, ev := range s.births {
		if !s.world.Alive(ev.a) || !s.world.Alive(ev.b) {
			continue
		}
		aEnergy := s.energyMap.Get(ev.a)
		bEnergy := s.energyMap.Get(ev.b)
		if !aEnergy.Alive || !bEnergy.Alive {
			continue
		}
		aCre := s.creMap.Get(ev.a)
		bCre := s.creMap.Get(ev.b)
		if aCre.Class != bCre.Class {
			continue
		}
		if s.bred[aCre.ID] || s.bred[bCre.ID] {
			continue
		}
		cc := s.cfg.Class(aCre.Class)
		if !systems.BreedingReady(aCre, aEnergy, cc) || !systems.BreedingReady(bCre, bEnergy, cc) {
			continue
		}

		aPos := s.posMap.Get(ev.a)
		bPos := s.posMap.Get(ev.b)
		dx := bPos.X - aPos.X
		dz := bPos.Z - aPos.Z
		if dx*dx+dz*dz > systems.MateRange*systems.MateRange {
			continue
		}

		ga := s.genomes[aCre.ID]
		gb := s.genomes[bCre.ID]
		if ga == nil || gb == nil {
			continue
		}
		if ga.Distance(gb, &s.bounds) > threshold {
			continue
		}

		cost := float32(cc.ReproCost) / 2
		aEnergy.Value -= cost
		bEnergy.Value -= cost
		aCre.ReproCooldown = float32(cc.ReproCooldown)
		bCre.ReproCooldown = float32(cc.ReproCooldown)
		aCre.Offspring++
		bCre.Offspring++
		s.bred[aCre.ID] = true
		s.bred[bCre.ID] = true

		child := genome.Breed(ga, gb, s.rng, &s.bounds, rate, strength)

		cx := (aPos.X+bPos.X)/2 + (s.rng.Float32()*2-1)*5
		cz := (aPos.Z+bPos.Z)/2 + (s.rng.Float32()*2-1)*5
		if !s.terrain.IsValidSpawnPosition(cx, cz) {
			cx, cz = aPos.X, aPos.Z
		}
		s.spawnCreature(aCre.Class, cx, cz, s.rng.Float32()*2*math.Pi, child)
		s.collector.RecordBirth(aCre.Class)
	}
	s.births = s.births[:0]
}

// cleanupDead removes dead entities after all passes, in two phases:
// collect during iteration, remove after.
func (s *Simulation) cleanupDead() {
	s.dead = s.dead[:0]

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		_, _, _, energy, _, cre := query.Get()
		if !energy.Alive {
			s.dead = append(s.dead, deadInfo{
				entity: entity,
				id:     cre.ID,
				class:  cre.Class,
				spec:   cre.SpeciesID,
			})
		}
	}

	for _, d := range s.dead {
		s.species.Release(d.spec)
		s.mapper.Remove(d.entity)
		delete(s.genomes, d.id)
		delete(s.nets, d.id)
		s.counts[d.class]--
	}
	if len(s.dead) > 0 {
		s.species.Prune()
	}

	// Per-class floors recover a collapsed class immediately, outside
	// the ratio balancer's schedule.
	counts := s.counts
	n := s.balancer.EnforceMinimums(&counts, s.spawnRandom)
	for i := 0; i < n; i++ {
		s.collector.RecordBalancerSpawn()
	}
}

// runBalancer lets the population manager nudge the herbivore:hunter
// ratio. It operates on a copy of the counts; real bookkeeping happens
// in spawnCreature.
func (s *Simulation) runBalancer() {
	counts := s.counts
	n := s.balancer.Tick(&counts, s.spawnRandom)
	for i := 0; i < n; i++ {
		s.collector.RecordBalancerSpawn()
	}
}

// flushTelemetry closes a stats window when due.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	snap := telemetry.Snapshot{
		Counts:          [8]int(s.counts),
		Species:         s.species.Count(),
		Carcasses:       s.carcasses.Count(),
		TotalVegetation: s.veg.Total(),
	}

	query := s.filter.Query()
	for query.Next() {
		_, _, _, energy, _, _ := query.Get()
		if energy.Alive {
			snap.Energies = append(snap.Energies, float64(energy.Value))
		}
	}

	stats := s.collector.Flush(s.tick, snap)
	perfStats := s.perf.Stats()

	if s.statsFn != nil {
		s.statsFn(stats)
	}
	if s.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
