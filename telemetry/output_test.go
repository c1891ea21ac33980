package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/veldt/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("empty dir must not error: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir must disable output")
	}

	// Every method must be safe on the nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil WriteTelemetry: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("nil WritePerf: %v", err)
	}
	if err := om.WriteConfig(nil); err != nil {
		t.Errorf("nil WriteConfig: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("nil Dir() = %q, want empty", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManagerWritesCSVs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	defer om.Close()

	if om.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", om.Dir(), dir)
	}

	stats := WindowStats{WindowEndTick: 100, Total: 50, Kills: 3}
	if err := om.WriteTelemetry(stats); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	stats.WindowEndTick = 200
	if err := om.WriteTelemetry(stats); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}

	perf := PerfStats{AvgTickDuration: time.Millisecond}
	if err := om.WritePerf(perf, 100); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header plus 2 rows", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") || !strings.Contains(lines[0], "kills") {
		t.Errorf("header missing expected columns: %q", lines[0])
	}
	if strings.Contains(lines[1], "window_end") {
		t.Error("second write must not repeat the header")
	}

	data, err = os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if !strings.Contains(string(data), "avg_tick_us") {
		t.Errorf("perf.csv missing header: %q", data)
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}
