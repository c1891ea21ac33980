// Package telemetry provides windowed ecosystem stats, per-phase
// performance timing, and CSV export for headless runs.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Herbivores int `csv:"herbivores"`
	Hunters    int `csv:"hunters"`
	Scavengers int `csv:"scavengers"`
	Parasites  int `csv:"parasites"`
	Cleaners   int `csv:"cleaners"`
	Total      int `csv:"total"`
	Species    int `csv:"species"`
	Carcasses  int `csv:"carcasses"`

	// Events during window
	Births           int `csv:"births"`
	StarvationDeaths int `csv:"deaths_starvation"`
	OldAgeDeaths     int `csv:"deaths_old_age"`
	PredationDeaths  int `csv:"deaths_predation"`
	BalancerSpawns   int `csv:"balancer_spawns"`
	SpawnRejections  int `csv:"spawn_rejections"`

	// Hunting
	BitesAttempted int     `csv:"bites_attempted"`
	BitesHit       int     `csv:"bites_hit"`
	Kills          int     `csv:"kills"`
	HitRate        float64 `csv:"hit_rate"`

	// Energy distribution at window end, all living creatures
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Environment
	TotalVegetation float64 `csv:"total_vegetation"`
	HerbCarnRatio   float64 `csv:"herb_carn_ratio"`
}

// EnergyDist summarizes a sample of energy values. The input slice is
// sorted in place.
func EnergyDist(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Float64s(values)
	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	p10 = stat.Quantile(0.10, stat.Empirical, values, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, values, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("hunters", s.Hunters),
		slog.Int("scavengers", s.Scavengers),
		slog.Int("parasites", s.Parasites),
		slog.Int("cleaners", s.Cleaners),
		slog.Int("total", s.Total),
		slog.Int("species", s.Species),
		slog.Int("carcasses", s.Carcasses),
		slog.Int("births", s.Births),
		slog.Int("deaths_starvation", s.StarvationDeaths),
		slog.Int("deaths_old_age", s.OldAgeDeaths),
		slog.Int("deaths_predation", s.PredationDeaths),
		slog.Int("balancer_spawns", s.BalancerSpawns),
		slog.Int("spawn_rejections", s.SpawnRejections),
		slog.Int("bites_attempted", s.BitesAttempted),
		slog.Int("bites_hit", s.BitesHit),
		slog.Int("kills", s.Kills),
		slog.Float64("hit_rate", s.HitRate),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("total_vegetation", s.TotalVegetation),
		slog.Float64("herb_carn_ratio", s.HerbCarnRatio),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"herbivores", s.Herbivores,
		"hunters", s.Hunters,
		"total", s.Total,
		"species", s.Species,
		"births", s.Births,
		"deaths_starvation", s.StarvationDeaths,
		"deaths_old_age", s.OldAgeDeaths,
		"deaths_predation", s.PredationDeaths,
		"kills", s.Kills,
		"hit_rate", s.HitRate,
		"energy_mean", s.EnergyMean,
		"herb_carn_ratio", s.HerbCarnRatio,
	)
}
