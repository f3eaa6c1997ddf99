// Package field implements the dense 2D nutrient, antifungal, and
// chemical concentration grids covering the dish bounding box.
package field

import (
	"github.com/mycolab/mycelium/dish"
)

// Canonical chemical names. Glucose is depleted in lockstep with the
// nutrient field; oxygen initializes to a constant.
const (
	Glucose = "glucose"
	Oxygen  = "oxygen"
)

// Store holds one scalar grid per field over the dish bounding box.
// Cells outside the disk exist in the arrays but are not valid substrate.
type Store struct {
	Size int

	Nutrient   []float32
	Antifungal []float32

	// Chemical grids in a fixed name order for deterministic iteration
	chemNames []string
	chems     map[string][]float32

	dish            dish.Dish
	oxygenInit      float32
	initialNutrient float32 // active substrate's nutrient level
}

// NewStore creates a field store for the given dish. extra lists chemical
// names beyond glucose and oxygen; they initialize to zero.
func NewStore(d dish.Dish, extra []string, oxygenInit float64) *Store {
	n := d.Size * d.Size
	s := &Store{
		Size:       d.Size,
		Nutrient:   make([]float32, n),
		Antifungal: make([]float32, n),
		chemNames:  make([]string, 0, 2+len(extra)),
		chems:      make(map[string][]float32, 2+len(extra)),
		dish:       d,
		oxygenInit: float32(oxygenInit),
	}
	for _, name := range append([]string{Glucose, Oxygen}, extra...) {
		if _, dup := s.chems[name]; dup {
			continue
		}
		s.chemNames = append(s.chemNames, name)
		s.chems[name] = make([]float32, n)
	}
	return s
}

// Reinitialize resets every grid for a new substrate: nutrient and glucose
// to the substrate's nutrient level, oxygen to its constant, everything
// else to zero.
func (s *Store) Reinitialize(nutrient float64) {
	s.initialNutrient = float32(nutrient)

	fill(s.Nutrient, s.initialNutrient)
	fill(s.Antifungal, 0)
	for _, name := range s.chemNames {
		switch name {
		case Glucose:
			fill(s.chems[name], s.initialNutrient)
		case Oxygen:
			fill(s.chems[name], s.oxygenInit)
		default:
			fill(s.chems[name], 0)
		}
	}
}

// InitialNutrient returns the active substrate's per-cell nutrient level.
func (s *Store) InitialNutrient() float32 {
	return s.initialNutrient
}

// NutrientAt returns the nutrient level of a cell.
func (s *Store) NutrientAt(cx, cy int) float32 {
	return s.Nutrient[cy*s.Size+cx]
}

// Deplete removes up to amount from the nutrient and glucose grids at a
// cell, clamped at zero, and returns the nutrient actually removed.
func (s *Store) Deplete(cx, cy int, amount float32) float32 {
	i := cy*s.Size + cx

	removed := amount
	if removed > s.Nutrient[i] {
		removed = s.Nutrient[i]
	}
	s.Nutrient[i] -= removed

	if g, ok := s.chems[Glucose]; ok {
		take := amount
		if take > g[i] {
			take = g[i]
		}
		g[i] -= take
	}
	return removed
}

// Chemical returns the grid for a chemical name.
func (s *Store) Chemical(name string) ([]float32, bool) {
	g, ok := s.chems[name]
	return g, ok
}

// ChemicalNames returns the chemical names in their fixed order.
func (s *Store) ChemicalNames() []string {
	return s.chemNames
}

// AddChemical deposits amount of a named chemical at a cell, clamped at
// zero. Unknown names are ignored. Used by explicit commands only; the
// growth algorithm itself touches nutrient and glucose alone.
func (s *Store) AddChemical(name string, cx, cy int, amount float32) {
	g, ok := s.chems[name]
	if !ok {
		return
	}
	i := cy*s.Size + cx
	g[i] += amount
	if g[i] < 0 {
		g[i] = 0
	}
}

// Range holds the in-bounds minimum and maximum of one grid, with the
// mean for overlay scaling.
type Range struct {
	Min  float32
	Max  float32
	Mean float32
}

// ChemicalRange pairs a chemical name with its in-bounds range.
type ChemicalRange struct {
	Name  string
	Range Range
}

// Summary is the read-only field projection exposed through snapshots.
type Summary struct {
	Nutrient          Range
	Antifungal        Range
	Chemicals         []ChemicalRange
	SubstrateNutrient float32 // active substrate's initial nutrient level
}

// Summarize computes per-grid ranges over in-bounds cells only.
func (s *Store) Summarize() Summary {
	sum := Summary{
		Nutrient:          s.rangeOf(s.Nutrient),
		Antifungal:        s.rangeOf(s.Antifungal),
		Chemicals:         make([]ChemicalRange, 0, len(s.chemNames)),
		SubstrateNutrient: s.initialNutrient,
	}
	for _, name := range s.chemNames {
		sum.Chemicals = append(sum.Chemicals, ChemicalRange{
			Name:  name,
			Range: s.rangeOf(s.chems[name]),
		})
	}
	return sum
}

// rangeOf scans a grid's in-bounds cells for min, max, and mean.
func (s *Store) rangeOf(grid []float32) Range {
	var (
		r     Range
		total float64
		count int
		first = true
	)
	for cy := 0; cy < s.Size; cy++ {
		for cx := 0; cx < s.Size; cx++ {
			if !s.dish.CellInBounds(cx, cy) {
				continue
			}
			v := grid[cy*s.Size+cx]
			if first {
				r.Min, r.Max = v, v
				first = false
			} else {
				if v < r.Min {
					r.Min = v
				}
				if v > r.Max {
					r.Max = v
				}
			}
			total += float64(v)
			count++
		}
	}
	if count > 0 {
		r.Mean = float32(total / float64(count))
	}
	return r
}

func fill(grid []float32, v float32) {
	for i := range grid {
		grid[i] = v
	}
}
