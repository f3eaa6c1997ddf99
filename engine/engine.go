// Package engine implements the tick-driven mycelium growth simulation:
// organisms as sets of branch tips competing for nutrients on a circular
// substrate dish, modulated by ambient environment parameters.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/mycolab/mycelium/components"
	"github.com/mycolab/mycelium/config"
	"github.com/mycolab/mycelium/dish"
	"github.com/mycolab/mycelium/environment"
	"github.com/mycolab/mycelium/field"
	"github.com/mycolab/mycelium/species"
)

// Command errors. Out-of-bounds placement is deliberately NOT an error:
// it is a silent no-op, matching the edge-avoidance semantics of growth.
var (
	ErrUnknownSpecies   = errors.New("unknown species")
	ErrUnknownSubstrate = errors.New("unknown substrate")
)

// organism is one colony or contaminant: an ordered list of branch tip
// entities plus immutable species data. Owned exclusively by the engine.
type organism struct {
	id          OrganismID
	profile     *species.Profile
	contaminant bool
	nutrients   float32 // accumulated nutrient consumed
	branches    []ecs.Entity
}

// Engine owns the simulation state and exposes the command/query surface.
// All methods serialize on an internal mutex, so commands issued while a
// tick is running apply strictly between ticks.
type Engine struct {
	mu  sync.Mutex
	cfg *config.Config

	world     *ecs.World
	tipMapper *ecs.Map3[components.Position, components.Heading, components.Tip]
	tipFilter *ecs.Filter3[components.Position, components.Heading, components.Tip]
	posMap    *ecs.Map1[components.Position]
	headMap   *ecs.Map1[components.Heading]
	tipMap    *ecs.Map1[components.Tip]

	dish   dish.Dish
	fields *field.Store
	env    environment.Environment
	bounds environment.Bounds

	colonies     *species.Registry
	contaminants *species.Registry

	// Processing order is placement order, colonies before contaminants.
	colonyOrgs []*organism
	contamOrgs []*organism

	rng    *rand.Rand
	tick   int64
	paused bool
	nextID OrganismID

	// Cumulative fruiting-candidate log, cleared by Reset.
	events []FruitingEvent
}

// New creates an engine from configuration with a seeded random source.
func New(cfg *config.Config, seed int64) (*Engine, error) {
	colonies, err := species.NewRegistry(species.KindColony, cfg.Species, cfg.Derived.SubstrateIndex)
	if err != nil {
		return nil, fmt.Errorf("building colony registry: %w", err)
	}
	contaminants, err := species.NewRegistry(species.KindContaminant, cfg.Contaminants, cfg.Derived.SubstrateIndex)
	if err != nil {
		return nil, fmt.Errorf("building contaminant registry: %w", err)
	}

	idx, ok := cfg.Derived.SubstrateIndex[cfg.Environment.Substrate]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubstrate, cfg.Environment.Substrate)
	}

	d := dish.New(cfg.Dish.Size, cfg.Derived.Radius)
	env, bounds := environment.FromConfig(&cfg.Environment)

	world := ecs.NewWorld()
	e := &Engine{
		cfg:   cfg,
		world: world,
		tipMapper: ecs.NewMap3[
			components.Position,
			components.Heading,
			components.Tip,
		](world),
		tipFilter: ecs.NewFilter3[
			components.Position,
			components.Heading,
			components.Tip,
		](world),
		posMap:  ecs.NewMap1[components.Position](world),
		headMap: ecs.NewMap1[components.Heading](world),
		tipMap:  ecs.NewMap1[components.Tip](world),

		dish:         d,
		fields:       field.NewStore(d, cfg.Chemicals.Extra, cfg.Chemicals.OxygenInit),
		env:          env,
		bounds:       bounds,
		colonies:     colonies,
		contaminants: contaminants,
		rng:          rand.New(rand.NewSource(seed)),
		nextID:       1,
	}
	e.fields.Reinitialize(cfg.Substrates[idx].Nutrient)

	return e, nil
}

// PlaceOrganism creates a new organism at (x, y) with the configured
// number of tips radiating at evenly spaced, jittered angles. Placement
// outside the dish is silently ignored and returns a zero ID. Placing an
// organism resumes a paused clock.
func (e *Engine) PlaceOrganism(x, y float32, name string, contaminant bool) (OrganismID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dish.InBounds(x, y) {
		return 0, nil
	}

	registry := e.colonies
	if contaminant {
		registry = e.contaminants
	}
	profile, ok := registry.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q (%s)", ErrUnknownSpecies, name, registry.Kind())
	}

	tips := e.cfg.Growth.InitialTips
	org := &organism{
		id:          e.nextID,
		profile:     profile,
		contaminant: contaminant,
		branches:    make([]ecs.Entity, 0, tips),
	}
	e.nextID++

	for i := 0; i < tips; i++ {
		angle := 2*math.Pi*float64(i)/float64(tips) + e.jitter(e.cfg.Growth.PlacementJitter)
		pos := components.Position{X: x, Y: y}
		head := components.Heading{Angle: float32(angle)}
		tip := components.Tip{}
		org.branches = append(org.branches, e.tipMapper.NewEntity(&pos, &head, &tip))
	}

	if contaminant {
		e.contamOrgs = append(e.contamOrgs, org)
	} else {
		e.colonyOrgs = append(e.colonyOrgs, org)
	}

	// Placing an organism resumes the clock.
	e.paused = false

	return org.id, nil
}

// SetEnvironment applies a partial environment update; nil fields keep
// their prior value. Values are clamped to the configured bounds.
func (e *Engine) SetEnvironment(u environment.Update) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env.Apply(u, e.bounds)
}

// SetSubstrate switches the active growth medium. The field store is
// reinitialized from the substrate's nutrient level and all organisms
// are cleared; the tick counter is preserved.
func (e *Engine) SetSubstrate(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, ok := e.cfg.Derived.SubstrateIndex[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSubstrate, name)
	}
	e.env.Substrate = name
	e.fields.Reinitialize(e.cfg.Substrates[idx].Nutrient)
	e.clearOrganisms()
	return nil
}

// Reset reinitializes the fields for the active substrate, clears all
// organisms, and zeroes the tick counter and event log.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.cfg.Derived.SubstrateIndex[e.env.Substrate]
	e.fields.Reinitialize(e.cfg.Substrates[idx].Nutrient)
	e.clearOrganisms()
	e.tick = 0
	e.events = nil
}

// SetPaused pauses or resumes the clock. While paused, Step is a no-op.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = paused
}

// Paused reports whether the clock is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Tick returns the current tick count.
func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Environment returns the current ambient parameters.
func (e *Engine) Environment() environment.Environment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.env
}

// TipCount returns the number of live branch tips across all organisms.
func (e *Engine) TipCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	query := e.tipFilter.Query()
	for query.Next() {
		count++
	}
	return count
}

// clearOrganisms removes every branch entity and empties both collections.
func (e *Engine) clearOrganisms() {
	for _, org := range e.colonyOrgs {
		e.removeBranches(org)
	}
	for _, org := range e.contamOrgs {
		e.removeBranches(org)
	}
	e.colonyOrgs = e.colonyOrgs[:0]
	e.contamOrgs = e.contamOrgs[:0]
}

func (e *Engine) removeBranches(org *organism) {
	for _, ent := range org.branches {
		e.tipMapper.Remove(ent)
	}
	org.branches = org.branches[:0]
}

// jitter returns a uniform random value in [-r, r].
func (e *Engine) jitter(r float64) float64 {
	return (e.rng.Float64()*2 - 1) * r
}
