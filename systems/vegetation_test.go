package systems

import (
	"testing"
)

func fullField() *Vegetation {
	return NewVegetation(100, 100, 10, 2, 0.5, FlatTerrain{HalfW: 50, HalfD: 50})
}

func TestVegetationSeedsAtCapacity(t *testing.T) {
	v := fullField()
	if got := v.Sample(0, 0); got != 2 {
		t.Errorf("fresh field should be at capacity 2, got %g", got)
	}
	if want := float64(2 * 100); v.Total() != want {
		t.Errorf("total: got %g, want %g", v.Total(), want)
	}
}

func TestGrazeRemovesAndClamps(t *testing.T) {
	v := fullField()

	taken := v.Graze(0, 0, 1.5)
	if taken != 1.5 {
		t.Errorf("graze: got %g, want 1.5", taken)
	}
	if got := v.Sample(0, 0); absf(got-0.5) > 1e-5 {
		t.Errorf("remaining: got %g, want 0.5", got)
	}

	// Second graze asks for more than remains.
	taken = v.Graze(0, 0, 1.5)
	if absf(taken-0.5) > 1e-5 {
		t.Errorf("overdraw graze: got %g, want 0.5", taken)
	}
	if got := v.Sample(0, 0); got != 0 {
		t.Errorf("cell should be empty, got %g", got)
	}
}

func TestRegenApproachesCapacity(t *testing.T) {
	v := fullField()
	v.Graze(0, 0, 2)

	v.Regen(1)
	mid := v.Sample(0, 0)
	if mid <= 0 || mid >= 2 {
		t.Fatalf("after 1s regen value should be between 0 and capacity, got %g", mid)
	}

	for i := 0; i < 100; i++ {
		v.Regen(1)
	}
	if got := v.Sample(0, 0); got > 2 {
		t.Errorf("regen must not exceed capacity, got %g", got)
	}
}

func TestWaterCellsHoldNoFood(t *testing.T) {
	// Terrain valid only in the +x half: cells at negative x are "water".
	land := halfWorldTerrain{}
	v := NewVegetation(100, 100, 10, 2, 0.5, land)

	if got := v.Sample(-40, 0); got != 0 {
		t.Errorf("water cell should hold no food, got %g", got)
	}
	v.Regen(100)
	if got := v.Sample(-40, 0); got != 0 {
		t.Errorf("water cell must not regrow, got %g", got)
	}
	if got := v.Sample(40, 0); got != 2 {
		t.Errorf("land cell should hold food, got %g", got)
	}
}

type halfWorldTerrain struct{}

func (halfWorldTerrain) HeightAt(x, z float32) float32 { return x }

func (halfWorldTerrain) IsValidSpawnPosition(x, z float32) bool { return x > 0 }

func TestBestNearbyPrefersRichest(t *testing.T) {
	v := fullField()
	// Thin out the cell at the query position so a farther, richer cell
	// should win.
	v.Graze(0, 0, 1.9)

	fx, fz, _, ok := v.BestNearby(0, 0, 30, 0.05)
	if !ok {
		t.Fatal("expected a forage target")
	}
	if got := v.Sample(fx, fz); got < 1.9 {
		t.Errorf("BestNearby returned a cell holding %g over full neighbors", got)
	}
}

func TestBestNearbyIgnoresTrace(t *testing.T) {
	v := NewVegetation(100, 100, 10, 2, 0, FlatTerrain{HalfW: 50, HalfD: 50})
	// Drain everything below the threshold.
	for x := float32(-45); x <= 45; x += 10 {
		for z := float32(-45); z <= 45; z += 10 {
			v.Graze(x, z, 1.99)
		}
	}

	if _, _, _, ok := v.BestNearby(0, 0, 30, 0.05); ok {
		t.Error("trace vegetation below minValue should not attract foragers")
	}
}

func TestHeightfieldDeterministicBySeed(t *testing.T) {
	a := NewHeightfield(600, 600, 0.008, 40, -6, 42)
	b := NewHeightfield(600, 600, 0.008, 40, -6, 42)
	c := NewHeightfield(600, 600, 0.008, 40, -6, 43)

	same := true
	differs := false
	for x := float32(-300); x <= 300; x += 60 {
		if a.HeightAt(x, x/2) != b.HeightAt(x, x/2) {
			same = false
		}
		if a.HeightAt(x, x/2) != c.HeightAt(x, x/2) {
			differs = true
		}
	}
	if !same {
		t.Error("same seed must produce identical terrain")
	}
	if !differs {
		t.Error("different seeds should produce different terrain")
	}
}

func TestHeightfieldRejectsOutOfBounds(t *testing.T) {
	h := NewHeightfield(100, 100, 0.01, 10, -100, 1)
	// Water level far below any height: only bounds can reject.
	if !h.IsValidSpawnPosition(0, 0) {
		t.Error("center of an all-land world must be valid")
	}
	if h.IsValidSpawnPosition(51, 0) {
		t.Error("outside the world extent must be invalid")
	}
	if h.IsValidSpawnPosition(0, -51) {
		t.Error("outside the world extent must be invalid")
	}
}
