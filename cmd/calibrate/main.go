// Package main searches for the incubation environment that best suits a
// set of species, using Nelder-Mead over the pH, temperature, and humidity
// axes. The growth-factor function is deterministic, so no simulation runs
// are needed to score a candidate.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/optimize"

	"github.com/mycolab/mycelium/config"
	"github.com/mycolab/mycelium/environment"
	"github.com/mycolab/mycelium/species"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	speciesList := flag.String("species", "", "Comma-separated species to calibrate for (empty = all colonies)")
	maxEvals := flag.Int("max-evals", 500, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	registry, err := species.NewRegistry(species.KindColony, cfg.Species, cfg.Derived.SubstrateIndex)
	if err != nil {
		log.Fatalf("failed to build species registry: %v", err)
	}

	// Resolve the target profiles
	names := registry.Names()
	if *speciesList != "" {
		names = strings.Split(*speciesList, ",")
	}
	profiles := make([]*species.Profile, 0, len(names))
	for _, name := range names {
		p, ok := registry.Get(strings.TrimSpace(name))
		if !ok {
			log.Fatalf("unknown species: %q", name)
		}
		profiles = append(profiles, p)
	}

	_, bounds := environment.FromConfig(&cfg.Environment)

	// Score = negated mean growth factor, so Minimize maximizes suitability.
	// Candidates are clamped to the environment bounds the way the engine
	// clamps host commands.
	score := func(x []float64) float64 {
		env := environment.Environment{
			PH:          clamp(x[0], bounds.PHMin, bounds.PHMax),
			Temperature: clamp(x[1], bounds.TempMin, bounds.TempMax),
			Humidity:    clamp(x[2], bounds.HumidityMin, bounds.HumidityMax),
		}
		total := 0.0
		for _, p := range profiles {
			total += environment.GrowthFactor(p, env)
		}
		return -total / float64(len(profiles))
	}

	// Open eval log
	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()
	logWriter.Write([]string{"eval", "mean_growth_factor", "ph", "temperature", "humidity"})

	evalCount := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			fitness := score(x)
			evalCount++
			logWriter.Write([]string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.6f", -fitness),
				fmt.Sprintf("%.3f", x[0]),
				fmt.Sprintf("%.3f", x[1]),
				fmt.Sprintf("%.3f", x[2]),
			})
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
	}

	initX := []float64{cfg.Environment.PH, cfg.Environment.Temperature, cfg.Environment.Humidity}

	fmt.Printf("Calibrating environment for %d species, max_evals=%d\n", len(profiles), *maxEvals)

	result, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{})
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := result.X
	bestEnv := environment.Environment{
		PH:          clamp(best[0], bounds.PHMin, bounds.PHMax),
		Temperature: clamp(best[1], bounds.TempMin, bounds.TempMax),
		Humidity:    clamp(best[2], bounds.HumidityMin, bounds.HumidityMax),
	}

	fmt.Printf("\nBest environment after %d evaluations:\n", evalCount)
	fmt.Printf("  ph: %.2f\n", bestEnv.PH)
	fmt.Printf("  temperature: %.1f\n", bestEnv.Temperature)
	fmt.Printf("  humidity: %.1f\n", bestEnv.Humidity)
	fmt.Printf("  mean growth factor: %.4f\n", -result.F)
	for _, p := range profiles {
		fmt.Printf("  %s: %.4f\n", p.Name, environment.GrowthFactor(p, bestEnv))
	}

	// Save calibrated config
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	bestCfg.Environment.PH = bestEnv.PH
	bestCfg.Environment.Temperature = bestEnv.Temperature
	bestCfg.Environment.Humidity = bestEnv.Humidity

	configOutPath := filepath.Join(*outputDir, "calibrated_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write calibrated config: %v", err)
	} else {
		fmt.Printf("\nCalibrated config saved to: %s\n", configOutPath)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
