// Package traits defines the closed set of trophic classes and their
// static relations. Per-class numeric parameters live in config; this
// package only knows who is what and who eats whom.
package traits

import "fmt"

// Class is a creature's trophic/diet role.
type Class uint8

const (
	Grazer    Class = iota // eats ground vegetation
	Browser                // eats tall vegetation, slower metabolism
	Frugivore              // eats fruit patches, fast but fragile
	Pursuit                // chase predator
	Ambush                 // lie-in-wait predator
	Scavenger              // eats carcasses
	Parasite               // drains energy from a live host
	Cleaner                // eats parasites off hosts
	numClasses
)

// Count returns the number of trophic classes.
func Count() int { return int(numClasses) }

// All lists every class in tag order.
func All() []Class {
	out := make([]Class, numClasses)
	for i := range out {
		out[i] = Class(i)
	}
	return out
}

var classNames = [numClasses]string{
	"grazer", "browser", "frugivore", "pursuit", "ambush",
	"scavenger", "parasite", "cleaner",
}

func (c Class) String() string {
	if c >= numClasses {
		return fmt.Sprintf("class(%d)", uint8(c))
	}
	return classNames[c]
}

// Parse returns the class named by s.
func Parse(s string) (Class, error) {
	for i, name := range classNames {
		if name == s {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trophic class %q", s)
}

// IsHerbivore reports whether the class feeds on vegetation.
func (c Class) IsHerbivore() bool {
	return c == Grazer || c == Browser || c == Frugivore
}

// IsHunter reports whether the class kills prey for food.
// Hunters carry the kill-count reproduction gate.
func (c Class) IsHunter() bool {
	return c == Pursuit || c == Ambush
}

// Mask is a bitset over classes, used for typed spatial queries.
type Mask uint16

// Bit returns the mask with only c set.
func (c Class) Bit() Mask { return 1 << c }

// Has checks whether the mask contains c.
func (m Mask) Has(c Class) bool { return m&c.Bit() != 0 }

// AllMask matches every class.
const AllMask = Mask(1<<numClasses) - 1

// preyOf[c] is the set of classes c feeds on directly.
var preyOf = [numClasses]Mask{
	Pursuit: Grazer.Bit() | Browser.Bit() | Frugivore.Bit() | Scavenger.Bit(),
	Ambush:  Grazer.Bit() | Frugivore.Bit(),
	Cleaner: Parasite.Bit(),
}

// Prey returns the classes c hunts. Empty for non-hunting classes.
func (c Class) Prey() Mask { return preyOf[c] }

// hostOf[c] is the set of classes c attaches to without killing.
var hostOf = [numClasses]Mask{
	Parasite: Grazer.Bit() | Browser.Bit() | Frugivore.Bit(),
}

// Hosts returns the classes a parasite-type class attaches to.
func (c Class) Hosts() Mask { return hostOf[c] }

// Threats returns the classes that hunt c. Parasites are not threats in
// the fear sense; their drain is too slow to trigger flight.
func (c Class) Threats() Mask {
	var m Mask
	for hunter := Class(0); hunter < numClasses; hunter++ {
		if preyOf[hunter].Has(c) {
			m |= hunter.Bit()
		}
	}
	return m
}

// Peers returns the mask for flocking/pack queries: same class only.
func (c Class) Peers() Mask { return c.Bit() }

// BaseColor returns the class base color for render snapshots.
// Camouflage darkens it toward the terrain tone at snapshot time.
func (c Class) BaseColor() (r, g, b uint8) {
	switch c {
	case Grazer:
		return 80, 150, 200
	case Browser:
		return 70, 120, 180
	case Frugivore:
		return 120, 160, 90
	case Pursuit:
		return 200, 80, 80
	case Ambush:
		return 160, 60, 110
	case Scavenger:
		return 120, 100, 80
	case Parasite:
		return 180, 170, 60
	case Cleaner:
		return 90, 190, 170
	}
	return 150, 150, 150
}
