package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mycolab/mycelium/engine"
)

// WindowStats holds aggregated statistics for a stats window.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Population at window end
	Colonies       int `csv:"colonies"`
	Contaminants   int `csv:"contaminants"`
	ColonyBranches int `csv:"colony_branches"`
	ContamBranches int `csv:"contam_branches"`

	// Events during the window
	Advanced   int `csv:"advanced"`
	Spawned    int `csv:"spawned"`
	Starved    int `csv:"starved"`
	Removed    int `csv:"removed"`
	Fruiting   int `csv:"fruiting"`
	Placements int `csv:"placements"`

	// Field levels over in-bounds cells at window end
	NutrientMin  float64 `csv:"nutrient_min"`
	NutrientMax  float64 `csv:"nutrient_max"`
	NutrientMean float64 `csv:"nutrient_mean"`
	GlucoseMean  float64 `csv:"glucose_mean"`

	// Colony spread: branch tip distance from the dish center
	RadiusMean float64 `csv:"radius_mean"`
	RadiusStd  float64 `csv:"radius_std"`
	RadiusP50  float64 `csv:"radius_p50"`
	RadiusP90  float64 `csv:"radius_p90"`
}

// computeWindowStats derives the population and distribution fields from
// a snapshot.
func computeWindowStats(snap engine.Snapshot, centerX, centerY float64) WindowStats {
	var s WindowStats

	var radii []float64
	for _, org := range snap.Organisms {
		if org.Contaminant {
			s.Contaminants++
			s.ContamBranches += len(org.Branches)
		} else {
			s.Colonies++
			s.ColonyBranches += len(org.Branches)
		}
		for _, b := range org.Branches {
			dx := float64(b.X) - centerX
			dy := float64(b.Y) - centerY
			radii = append(radii, math.Sqrt(dx*dx+dy*dy))
		}
	}

	s.NutrientMin = float64(snap.Fields.Nutrient.Min)
	s.NutrientMax = float64(snap.Fields.Nutrient.Max)
	s.NutrientMean = float64(snap.Fields.Nutrient.Mean)
	for _, ch := range snap.Fields.Chemicals {
		if ch.Name == "glucose" {
			s.GlucoseMean = float64(ch.Range.Mean)
		}
	}

	if len(radii) > 0 {
		s.RadiusMean = stat.Mean(radii, nil)
		s.RadiusStd = stat.StdDev(radii, nil)
		sort.Float64s(radii)
		s.RadiusP50 = stat.Quantile(0.50, stat.Empirical, radii, nil)
		s.RadiusP90 = stat.Quantile(0.90, stat.Empirical, radii, nil)
	}

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("colonies", s.Colonies),
		slog.Int("contaminants", s.Contaminants),
		slog.Int("colony_branches", s.ColonyBranches),
		slog.Int("contam_branches", s.ContamBranches),
		slog.Int("advanced", s.Advanced),
		slog.Int("spawned", s.Spawned),
		slog.Int("starved", s.Starved),
		slog.Int("removed", s.Removed),
		slog.Int("fruiting", s.Fruiting),
		slog.Int("placements", s.Placements),
		slog.Float64("nutrient_min", s.NutrientMin),
		slog.Float64("nutrient_max", s.NutrientMax),
		slog.Float64("nutrient_mean", s.NutrientMean),
		slog.Float64("glucose_mean", s.GlucoseMean),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_std", s.RadiusStd),
		slog.Float64("radius_p50", s.RadiusP50),
		slog.Float64("radius_p90", s.RadiusP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
