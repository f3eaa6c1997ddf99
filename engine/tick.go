package engine

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/mycolab/mycelium/components"
	"github.com/mycolab/mycelium/environment"
	"github.com/mycolab/mycelium/species"
)

// Step advances the simulation by exactly one tick. While paused it
// leaves all state untouched and returns an empty report.
//
// Per organism, per branch:
//  1. age increments;
//  2. the organism's growth rate is profile rate x growth factor x
//     substrate affinity bonus; at zero or below every branch stalls in
//     place and survives;
//  3. a candidate tip position is computed along the branch heading;
//  4. out-of-bounds candidates keep the branch at the edge and increment
//     its boundary counter - sustained contact past the threshold emits
//     a fruiting-candidate event for colony organisms;
//  5. in-bounds candidates starve (branch dropped) on an exhausted cell,
//     otherwise deplete nutrient and glucose there, advance with a
//     jittered heading, and possibly spawn a sibling branch.
//
// Survivors of a tick are the advanced, spawned, stalled, and boundary
// branches; starved branches are dropped, and an organism losing its
// last branch is removed from the live collection.
func (e *Engine) Step() TickReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return TickReport{Tick: e.tick}
	}

	e.tick++
	report := TickReport{Tick: e.tick}

	// Colony organisms are processed before contaminants, each group in
	// placement order. Within a tick the last writer wins on any shared
	// cell; the fixed ordering keeps replays deterministic.
	for _, org := range e.colonyOrgs {
		e.growOrganism(org, &report)
	}
	for _, org := range e.contamOrgs {
		e.growOrganism(org, &report)
	}

	e.colonyOrgs = removeExhausted(e.colonyOrgs, &report)
	e.contamOrgs = removeExhausted(e.contamOrgs, &report)

	for _, org := range e.colonyOrgs {
		report.BranchCounts = append(report.BranchCounts, BranchCount{
			Organism: org.id, Species: org.profile.Name, Count: len(org.branches),
		})
	}
	for _, org := range e.contamOrgs {
		report.BranchCounts = append(report.BranchCounts, BranchCount{
			Organism: org.id, Species: org.profile.Name, Contaminant: true, Count: len(org.branches),
		})
	}

	e.events = append(e.events, report.Fruiting...)

	return report
}

// growOrganism advances all branches of one organism for this tick,
// building the surviving branch list in a separate buffer and swapping
// it in at the end.
func (e *Engine) growOrganism(org *organism, report *TickReport) {
	growth := e.growthRate(org.profile)

	next := make([]ecs.Entity, 0, len(org.branches))
	var dropped []ecs.Entity

	for _, ent := range org.branches {
		pos := e.posMap.Get(ent)
		head := e.headMap.Get(ent)
		tip := e.tipMap.Get(ent)

		tip.Age++

		// A hostile environment stalls the branch; it neither advances
		// nor dies from a single bad tick.
		if growth <= 0 {
			next = append(next, ent)
			continue
		}

		nx := pos.X + float32(math.Cos(float64(head.Angle))*growth)
		ny := pos.Y + float32(math.Sin(float64(head.Angle))*growth)

		if !e.dish.InBounds(nx, ny) {
			tip.BoundaryTicks++
			if !org.contaminant && int(tip.BoundaryTicks) == e.cfg.Growth.BoundaryThreshold+1 {
				report.Fruiting = append(report.Fruiting, FruitingEvent{
					Organism: org.id,
					Species:  org.profile.Name,
					X:        pos.X,
					Y:        pos.Y,
					Tick:     e.tick,
				})
			}
			next = append(next, ent)
			continue
		}

		cx, cy := e.dish.Cell(nx, ny)
		nutrient := e.fields.NutrientAt(cx, cy)
		if nutrient <= 0 {
			// Starved: the tip is dropped. Organisms shrink and die
			// through this path, never through a hostile environment.
			tip.Starved = true
			report.Starved++
			dropped = append(dropped, ent)
			continue
		}

		org.nutrients += e.fields.Deplete(cx, cy, float32(e.cfg.Growth.Depletion))

		pos.X, pos.Y = nx, ny
		head.Angle += float32(e.jitter(e.cfg.Growth.HeadingJitter))
		tip.Starved = false
		tip.BoundaryTicks = 0
		next = append(next, ent)
		report.Advanced++

		// Branching scales with local nutrient abundance.
		p := org.profile.BranchProbability * float64(nutrient) / e.cfg.Growth.BranchNutrientNorm
		if p > 0 && e.rng.Float64() < p {
			sibPos := components.Position{X: nx, Y: ny}
			sibHead := components.Heading{Angle: head.Angle + float32(e.jitter(e.cfg.Growth.BranchJitter))}
			sibTip := components.Tip{}
			next = append(next, e.tipMapper.NewEntity(&sibPos, &sibHead, &sibTip))
			report.Spawned++
		}
	}

	for _, ent := range dropped {
		e.tipMapper.Remove(ent)
	}
	org.branches = next
}

// growthRate computes the per-tick advance distance for a species under
// the current environment and active substrate.
func (e *Engine) growthRate(p *species.Profile) float64 {
	bonus := 1.0
	if p.PreferredSubstrate == species.AnySubstrate || p.PreferredSubstrate == e.env.Substrate {
		bonus = e.cfg.Growth.SubstrateBonus
	}
	return p.GrowthRate * environment.GrowthFactor(p, e.env) * bonus
}

// removeExhausted drops organisms whose branch list emptied this tick.
func removeExhausted(orgs []*organism, report *TickReport) []*organism {
	live := orgs[:0]
	for _, org := range orgs {
		if len(org.branches) == 0 {
			report.Removed = append(report.Removed, org.id)
			continue
		}
		live = append(live, org)
	}
	return live
}
