// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig      `yaml:"screen"`
	Dish         DishConfig        `yaml:"dish"`
	Growth       GrowthConfig      `yaml:"growth"`
	Environment  EnvConfig         `yaml:"environment"`
	Chemicals    ChemicalsConfig   `yaml:"chemicals"`
	Telemetry    TelemetryConfig   `yaml:"telemetry"`
	Species      []SpeciesConfig   `yaml:"species"`
	Contaminants []SpeciesConfig   `yaml:"contaminants"`
	Substrates   []SubstrateConfig `yaml:"substrates"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds viewer display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DishConfig holds the substrate dish geometry.
// The dish is a disk of the given radius centered in a square bounding
// box of Size cells; only cells inside the disk are valid substrate.
type DishConfig struct {
	Size   int     `yaml:"size"`   // Bounding box side length in cells
	Radius float64 `yaml:"radius"` // Disk radius in cells (0 = Size/2 - 10)
}

// GrowthConfig holds the tick-algorithm tuning parameters.
type GrowthConfig struct {
	InitialTips        int     `yaml:"initial_tips"`         // Branch tips per placed organism
	PlacementJitter    float64 `yaml:"placement_jitter"`     // Angular jitter on initial tips (radians)
	HeadingJitter      float64 `yaml:"heading_jitter"`       // Angular jitter per advancement (radians)
	BranchJitter       float64 `yaml:"branch_jitter"`        // Angular jitter on spawned siblings (radians)
	Depletion          float64 `yaml:"depletion"`            // Nutrient/glucose removed per advancing tip
	SubstrateBonus     float64 `yaml:"substrate_bonus"`      // Growth multiplier on preferred substrate
	BranchNutrientNorm float64 `yaml:"branch_nutrient_norm"` // Branch probability scales by nutrient/this
	BoundaryThreshold  int     `yaml:"boundary_threshold"`   // Boundary-contact ticks before fruiting candidate
}

// EnvConfig holds the ambient environment defaults and bounds.
type EnvConfig struct {
	PH          float64 `yaml:"ph"`
	PHMin       float64 `yaml:"ph_min"`
	PHMax       float64 `yaml:"ph_max"`
	Temperature float64 `yaml:"temperature"`
	TempMin     float64 `yaml:"temp_min"`
	TempMax     float64 `yaml:"temp_max"`
	Humidity    float64 `yaml:"humidity"`
	HumidityMin float64 `yaml:"humidity_min"`
	HumidityMax float64 `yaml:"humidity_max"`
	Substrate   string  `yaml:"substrate"` // Active substrate at startup
	Speed       int     `yaml:"speed"`     // Ticks per update in the viewer (presentation only)

	// Fallback optima used when a species profile leaves an axis unset
	DefaultPH            float64 `yaml:"default_ph"`
	DefaultPHTolerance   float64 `yaml:"default_ph_tolerance"`
	DefaultTemp          float64 `yaml:"default_temp"`
	DefaultTempTolerance float64 `yaml:"default_temp_tolerance"`
	DefaultHumidity      float64 `yaml:"default_humidity"`
	DefaultHumTolerance  float64 `yaml:"default_humidity_tolerance"`
}

// ChemicalsConfig holds the named chemical field set.
// Glucose tracks the nutrient field; oxygen starts at a constant; any
// extra chemicals initialize to zero and are only touched by commands.
type ChemicalsConfig struct {
	OxygenInit float64  `yaml:"oxygen_init"`
	Extra      []string `yaml:"extra"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
}

// SpeciesConfig defines one species profile (colony or contaminant).
type SpeciesConfig struct {
	Name               string  `yaml:"name"`
	GrowthRate         float64 `yaml:"growth_rate"`         // Units advanced per tick at ideal conditions
	Thickness          float64 `yaml:"thickness"`           // Filament thickness (output attribute only)
	BranchProbability  float64 `yaml:"branch_probability"`  // Chance per advancing tip to spawn a sibling
	PreferredSubstrate string  `yaml:"preferred_substrate"` // Substrate name, or "any"
	MergeProbability   float64 `yaml:"merge_probability"`   // Reserved for colony merging
	AntifungalPotency  float64 `yaml:"antifungal_potency"`  // Reserved for inhibitor mechanics
	OptimalPH          float64 `yaml:"optimal_ph"`
	PHTolerance        float64 `yaml:"ph_tolerance"`
	OptimalTemp        float64 `yaml:"optimal_temp"`
	TempTolerance      float64 `yaml:"temp_tolerance"`
	OptimalHumidity    float64 `yaml:"optimal_humidity"`
	HumidityTolerance  float64 `yaml:"humidity_tolerance"`
}

// SubstrateConfig defines one growth medium.
type SubstrateConfig struct {
	Name     string  `yaml:"name"`
	Nutrient float64 `yaml:"nutrient"` // Initial nutrient level per cell
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Center           float64        // Dish center coordinate (Size/2)
	Radius           float64        // Effective disk radius
	SpeciesIndex     map[string]int // name -> index into Species
	ContaminantIndex map[string]int // name -> index into Contaminants
	SubstrateIndex   map[string]int // name -> index into Substrates
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// Disk radius defaults to a margin inside the bounding box
	radius := c.Dish.Radius
	if radius == 0 {
		radius = float64(c.Dish.Size)/2 - 10
	}
	c.Derived.Center = float64(c.Dish.Size) / 2
	c.Derived.Radius = radius

	// Synthesize a minimal catalog if none specified
	if len(c.Species) == 0 {
		c.Species = []SpeciesConfig{
			{
				Name:               "oyster",
				GrowthRate:         1.2,
				Thickness:          2.0,
				BranchProbability:  0.15,
				PreferredSubstrate: "straw",
				OptimalPH:          6.5,
				OptimalTemp:        70,
				TempTolerance:      15,
				OptimalHumidity:    85,
				HumidityTolerance:  15,
			},
		}
	}
	if len(c.Contaminants) == 0 {
		c.Contaminants = []SpeciesConfig{
			{
				Name:               "trichoderma",
				GrowthRate:         1.6,
				Thickness:          1.0,
				BranchProbability:  0.25,
				PreferredSubstrate: "any",
				OptimalPH:          5.5,
				OptimalTemp:        78,
				TempTolerance:      20,
				OptimalHumidity:    90,
				HumidityTolerance:  20,
			},
		}
	}
	if len(c.Substrates) == 0 {
		c.Substrates = []SubstrateConfig{
			{Name: "agar", Nutrient: 100},
		}
	}

	// Apply per-profile defaults for unset fields
	applyProfileDefaults(c.Species, &c.Environment)
	applyProfileDefaults(c.Contaminants, &c.Environment)

	// Build lookup indexes
	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i, s := range c.Species {
		c.Derived.SpeciesIndex[s.Name] = i
	}
	c.Derived.ContaminantIndex = make(map[string]int, len(c.Contaminants))
	for i, s := range c.Contaminants {
		c.Derived.ContaminantIndex[s.Name] = i
	}
	c.Derived.SubstrateIndex = make(map[string]int, len(c.Substrates))
	for i, s := range c.Substrates {
		c.Derived.SubstrateIndex[s.Name] = i
	}
}

// applyProfileDefaults fills unset optima from the environment fallbacks.
func applyProfileDefaults(profiles []SpeciesConfig, env *EnvConfig) {
	for i := range profiles {
		p := &profiles[i]
		if p.GrowthRate == 0 {
			p.GrowthRate = 1.0
		}
		if p.Thickness == 0 {
			p.Thickness = 1.0
		}
		if p.PreferredSubstrate == "" {
			p.PreferredSubstrate = "any"
		}
		if p.OptimalPH == 0 {
			p.OptimalPH = env.DefaultPH
		}
		if p.PHTolerance == 0 {
			p.PHTolerance = env.DefaultPHTolerance
		}
		if p.OptimalTemp == 0 {
			p.OptimalTemp = env.DefaultTemp
		}
		if p.TempTolerance == 0 {
			p.TempTolerance = env.DefaultTempTolerance
		}
		if p.OptimalHumidity == 0 {
			p.OptimalHumidity = env.DefaultHumidity
		}
		if p.HumidityTolerance == 0 {
			p.HumidityTolerance = env.DefaultHumTolerance
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
