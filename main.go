package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mycolab/mycelium/config"
	"github.com/mycolab/mycelium/engine"
	"github.com/mycolab/mycelium/telemetry"
	"github.com/mycolab/mycelium/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	scenario := flag.String("scenario", "", "Headless scenario: species to inoculate at the dish center")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	windowTicks := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		windowTicks = *statsWindow
	}

	eng, err := engine.New(cfg, rngSeed)
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	collector := telemetry.NewCollector(cfg.Derived.Center, cfg.Derived.Center)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if *headless {
		runHeadless(eng, cfg, collector, output, *scenario, *logStats, windowTicks, *maxTicks, rngSeed)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Mycelium")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := viewer.New(eng, cfg)
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()

		if !eng.Paused() {
			speed := eng.Environment().Speed
			for i := 0; i < speed; i++ {
				report := eng.Step()
				collector.Record(report)
				if err := output.WriteFruiting(report.Fruiting); err != nil {
					slog.Error("failed to write events", "error", err)
				}
				v.Stamp(eng.Snapshot())
			}
		}

		snap := eng.Snapshot()
		v.Draw(snap)

		if snap.Tick > 0 && snap.Tick%int64(windowTicks) == 0 && !eng.Paused() {
			stats := collector.Flush(snap)
			if *logStats {
				stats.LogStats()
			}
			if err := output.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
		}

		if *maxTicks > 0 && snap.Tick >= *maxTicks {
			break
		}
	}
}

// runHeadless drives the engine without graphics. With a scenario species
// named, one organism is inoculated at the dish center before the run.
func runHeadless(
	eng *engine.Engine,
	cfg *config.Config,
	collector *telemetry.Collector,
	output *telemetry.OutputManager,
	scenario string,
	logStats bool,
	windowTicks int,
	maxTicks int64,
	seed int64,
) {
	slog.Info("starting headless simulation",
		"seed", seed,
		"stats_window", windowTicks,
		"max_ticks", maxTicks,
		"substrate", cfg.Environment.Substrate,
	)

	if scenario != "" {
		center := float32(cfg.Derived.Center)
		id, err := eng.PlaceOrganism(center, center, scenario, false)
		if err != nil {
			slog.Error("failed to inoculate", "species", scenario, "error", err)
			os.Exit(1)
		}
		collector.RecordPlacement()
		slog.Info("inoculated", "species", scenario, "organism", uint32(id))
	} else {
		// Nothing to grow without a placement, so keep the clock running
		// anyway; callers drive placements via the scenario flag.
		eng.SetPaused(false)
	}

	for {
		report := eng.Step()
		collector.Record(report)
		if err := output.WriteFruiting(report.Fruiting); err != nil {
			slog.Error("failed to write events", "error", err)
		}

		if report.Tick > 0 && report.Tick%int64(windowTicks) == 0 {
			stats := collector.Flush(eng.Snapshot())
			if logStats {
				stats.LogStats()
			}
			if err := output.WriteStats(stats); err != nil {
				slog.Error("failed to write stats", "error", err)
			}
		}

		if maxTicks > 0 && report.Tick >= maxTicks {
			slog.Info("max ticks reached", "tick", report.Tick)
			return
		}
	}
}
