package sim

import (
	"github.com/pthm-cable/veldt/components"
	"github.com/pthm-cable/veldt/traits"
)

// CreatureView is a read-only copy of one living creature, for render
// and inspection consumers outside the tick loop.
type CreatureView struct {
	ID        uint32
	Class     traits.Class
	SpeciesID int
	X, Z      float32
	Heading   float32
	Size      float32
	Energy    float32
	MaxEnergy float32
	Age       float32
	Goal      components.Goal
	Sprinting bool
	AnimPhase float32
	R, G, B   uint8
}

// Creatures appends a view of every living creature to dst and returns
// it. Camouflaged creatures fade toward a neutral ground tone.
func (s *Simulation) Creatures(dst []CreatureView) []CreatureView {
	const groundR, groundG, groundB = 110, 104, 92

	query := s.filter.Query()
	for query.Next() {
		pos, _, rot, energy, phen, cre := query.Get()
		if !energy.Alive {
			continue
		}

		r, g, b := cre.Class.BaseColor()
		f := phen.Camouflage
		r = uint8(float32(r) + (groundR-float32(r))*f)
		g = uint8(float32(g) + (groundG-float32(g))*f)
		b = uint8(float32(b) + (groundB-float32(b))*f)

		dst = append(dst, CreatureView{
			ID:        cre.ID,
			Class:     cre.Class,
			SpeciesID: cre.SpeciesID,
			X:         pos.X,
			Z:         pos.Z,
			Heading:   rot.Heading,
			Size:      phen.Size,
			Energy:    energy.Value,
			MaxEnergy: energy.Max,
			Age:       energy.Age,
			Goal:      cre.Goal,
			Sprinting: cre.Sprinting,
			AnimPhase: cre.AnimPhase,
			R:         r, G: g, B: b,
		})
	}
	return dst
}

// Carcasses returns a copy of the current carcass list.
func (s *Simulation) Carcasses() []Carcass {
	out := make([]Carcass, len(s.carcasses.items))
	copy(out, s.carcasses.items)
	return out
}
