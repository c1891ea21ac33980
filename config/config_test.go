package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/veldt/traits"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.World.Width <= 0 || cfg.World.Depth <= 0 {
		t.Errorf("defaults carry world extent %gx%g", cfg.World.Width, cfg.World.Depth)
	}
	if len(cfg.Classes) == 0 {
		t.Fatal("defaults define no creature classes")
	}
	if cfg.Derived.WorldW32 != float32(cfg.World.Width) {
		t.Error("derived float32 width not computed")
	}
	if len(cfg.Derived.ClassIndex) != len(cfg.Classes) {
		t.Errorf("class index has %d entries for %d classes",
			len(cfg.Derived.ClassIndex), len(cfg.Classes))
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("world:\n  width: 1234\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.World.Width != 1234 {
		t.Errorf("width = %g, want override 1234", cfg.World.Width)
	}
	if cfg.World.Depth <= 0 {
		t.Error("unset depth must keep the default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing config file must error")
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"zero world width", func(c *Config) { c.World.Width = 0 }, "world extent"},
		{"zero grid size", func(c *Config) { c.Grid.Size = 0 }, "grid size"},
		{"zero vegetation resolution", func(c *Config) { c.Vegetation.Resolution = 0 }, "vegetation resolution"},
		{"mutation rate above one", func(c *Config) { c.Genetics.MutationRate = 1.5 }, "mutation rate"},
		{"zero speciation threshold", func(c *Config) { c.Genetics.SpeciationThreshold = 0 }, "speciation threshold"},
		{
			"inverted trait bounds",
			func(c *Config) {
				c.Genetics.TraitBounds = []TraitBoundConfig{{Name: "speed", Min: 50, Max: 10}}
			},
			"inverted bounds",
		},
		{
			"target ratio outside band",
			func(c *Config) { c.Population.TargetRatio = c.Population.BandHigh + 1 },
			"outside band",
		},
		{"zero balance interval", func(c *Config) { c.Population.BalanceInterval = 0 }, "balance interval"},
		{"no classes", func(c *Config) { c.Classes = nil }, "no creature classes"},
		{
			"unknown class name",
			func(c *Config) { c.Classes[0].Name = "dragon" },
			"dragon",
		},
		{
			"duplicate class",
			func(c *Config) { c.Classes[1].Name = c.Classes[0].Name },
			"defined twice",
		},
		{"zero max energy", func(c *Config) { c.Classes[0].MaxEnergy = 0 }, "max energy"},
		{
			"initial energy above max",
			func(c *Config) { c.Classes[0].InitialEnergy = c.Classes[0].MaxEnergy + 1 },
			"initial energy",
		},
		{"zero lifespan", func(c *Config) { c.Classes[0].MaxLifespan = 0 }, "lifespan"},
		{
			"min above max count",
			func(c *Config) { c.Classes[0].Min = c.Classes[0].Max + 1 },
			"exceeds max",
		},
		{"zero stats window", func(c *Config) { c.Telemetry.StatsWindow = 0 }, "stats window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load(\"\") failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted a broken config")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func TestClassLookup(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	for _, cc := range cfg.Classes {
		class, err := traits.Parse(cc.Name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", cc.Name, err)
		}
		got := cfg.Class(class)
		if got.Name != cc.Name {
			t.Errorf("Class(%v).Name = %q, want %q", class, got.Name, cc.Name)
		}
		if cfg.Derived.ClassIndex[cc.Name] != class {
			t.Errorf("ClassIndex[%q] = %v, want %v", cc.Name, cfg.Derived.ClassIndex[cc.Name], class)
		}
	}
}

func TestRefreshRecomputesDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	cfg.World.Width = 900
	cfg.Classes[0].Initial = 123
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if cfg.Derived.WorldW32 != 900 {
		t.Errorf("WorldW32 = %g, want 900", cfg.Derived.WorldW32)
	}
	class := cfg.Derived.ClassIndex[cfg.Classes[0].Name]
	if cfg.Class(class).Initial != 123 {
		t.Errorf("class table Initial = %d, want 123", cfg.Class(class).Initial)
	}

	cfg.Grid.Size = 0
	if err := cfg.Refresh(); err == nil {
		t.Error("Refresh must reject a broken config")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	cfg.World.Width = 777

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config failed: %v", err)
	}
	if reloaded.World.Width != 777 {
		t.Errorf("reloaded width = %g, want 777", reloaded.World.Width)
	}
}
