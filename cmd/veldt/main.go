package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/veldt/config"
	"github.com/pthm-cable/veldt/sim"
	"github.com/pthm-cable/veldt/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	ticks := flag.Int("ticks", 0, "Stop after N ticks (0 = unlimited)")
	dt := flag.Float64("dt", 1.0/30.0, "Seconds of simulated time per tick")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", true, "Output window stats via slog")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, rngSeed, float32(*dt))
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	s.LogStats = *logStats

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	if output != nil {
		defer output.Close()
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
			os.Exit(1)
		}
		s.SetOutput(output)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"ticks", *ticks,
		"dt", *dt,
		"population", s.Counts().Total(),
		"output_dir", output.Dir(),
	)

	start := time.Now()
	for {
		s.Step()

		if s.Counts().Total() == 0 {
			slog.Warn("population extinct", "tick", s.Tick())
			break
		}
		if *ticks > 0 && int(s.Tick()) >= *ticks {
			break
		}
	}

	counts := s.Counts()
	slog.Info("simulation finished",
		"tick", s.Tick(),
		"wall_time", time.Since(start).Round(time.Millisecond).String(),
		"population", counts.Total(),
		"herbivores", counts.Herbivores(),
		"hunters", counts.Hunters(),
		"species", s.SpeciesCount(),
	)
}
