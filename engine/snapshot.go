package engine

import (
	"github.com/mycolab/mycelium/environment"
	"github.com/mycolab/mycelium/field"
)

// BranchState is a read-only projection of one branch tip.
type BranchState struct {
	X, Y          float32
	Angle         float32
	Age           int32
	BoundaryTicks int32
	Starved       bool
}

// OrganismState is a read-only projection of one live organism.
type OrganismState struct {
	ID          OrganismID
	Species     string
	Contaminant bool
	Thickness   float64 // filament thickness from the species profile
	Nutrients   float32 // accumulated nutrient consumed
	Branches    []BranchState
}

// Snapshot is the queryable engine state emitted for renderers and
// exporters. It is a deep copy: holding one across ticks is safe, and
// two snapshots taken without an intervening command are identical.
type Snapshot struct {
	Tick        int64
	Paused      bool
	Environment environment.Environment
	Fields      field.Summary
	Organisms   []OrganismState
	Fruiting    []FruitingEvent // cumulative since the last reset
}

// Snapshot returns a read-only projection of the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Tick:        e.tick,
		Paused:      e.paused,
		Environment: e.env,
		Fields:      e.fields.Summarize(),
		Organisms:   make([]OrganismState, 0, len(e.colonyOrgs)+len(e.contamOrgs)),
	}

	for _, org := range e.colonyOrgs {
		snap.Organisms = append(snap.Organisms, e.organismState(org))
	}
	for _, org := range e.contamOrgs {
		snap.Organisms = append(snap.Organisms, e.organismState(org))
	}

	if len(e.events) > 0 {
		snap.Fruiting = make([]FruitingEvent, len(e.events))
		copy(snap.Fruiting, e.events)
	}

	return snap
}

func (e *Engine) organismState(org *organism) OrganismState {
	state := OrganismState{
		ID:          org.id,
		Species:     org.profile.Name,
		Contaminant: org.contaminant,
		Thickness:   org.profile.Thickness,
		Nutrients:   org.nutrients,
		Branches:    make([]BranchState, 0, len(org.branches)),
	}
	for _, ent := range org.branches {
		pos := e.posMap.Get(ent)
		head := e.headMap.Get(ent)
		tip := e.tipMap.Get(ent)
		state.Branches = append(state.Branches, BranchState{
			X:             pos.X,
			Y:             pos.Y,
			Angle:         head.Angle,
			Age:           tip.Age,
			BoundaryTicks: tip.BoundaryTicks,
			Starved:       tip.Starved,
		})
	}
	return state
}
