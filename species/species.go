// Package species defines organism growth profiles and their registries.
package species

import (
	"fmt"

	"github.com/mycolab/mycelium/config"
)

// AnySubstrate is the preferred-substrate sentinel matching every medium.
const AnySubstrate = "any"

// Kind distinguishes cultivated colonies from contaminants.
type Kind uint8

const (
	KindColony Kind = iota
	KindContaminant
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	if k == KindContaminant {
		return "contaminant"
	}
	return "colony"
}

// Profile holds the immutable growth characteristics of one species.
type Profile struct {
	Name               string
	Kind               Kind
	GrowthRate         float64 // units advanced per tick at ideal conditions
	Thickness          float64 // filament thickness, output attribute only
	BranchProbability  float64
	PreferredSubstrate string
	MergeProbability   float64 // reserved for colony merging
	AntifungalPotency  float64 // reserved for inhibitor mechanics

	OptimalPH         float64
	PHTolerance       float64
	OptimalTemp       float64
	TempTolerance     float64
	OptimalHumidity   float64
	HumidityTolerance float64
}

// Registry holds the validated profiles of one kind.
// Lookups never fault at tick time: every profile is checked at startup.
type Registry struct {
	kind     Kind
	profiles []Profile
	byName   map[string]*Profile
}

// NewRegistry builds a registry from config entries, validating each profile.
// substrates is the set of known substrate names used to check preferences.
func NewRegistry(kind Kind, cfgs []config.SpeciesConfig, substrates map[string]int) (*Registry, error) {
	r := &Registry{
		kind:     kind,
		profiles: make([]Profile, 0, len(cfgs)),
		byName:   make(map[string]*Profile, len(cfgs)),
	}
	for _, sc := range cfgs {
		if sc.Name == "" {
			return nil, fmt.Errorf("%s profile with empty name", kind)
		}
		if _, dup := r.byName[sc.Name]; dup {
			return nil, fmt.Errorf("duplicate %s species %q", kind, sc.Name)
		}
		if sc.GrowthRate < 0 {
			return nil, fmt.Errorf("%s species %q: negative growth rate", kind, sc.Name)
		}
		if sc.PHTolerance <= 0 || sc.TempTolerance <= 0 || sc.HumidityTolerance <= 0 {
			return nil, fmt.Errorf("%s species %q: tolerances must be positive", kind, sc.Name)
		}
		if sc.PreferredSubstrate != AnySubstrate {
			if _, ok := substrates[sc.PreferredSubstrate]; !ok {
				return nil, fmt.Errorf("%s species %q: unknown preferred substrate %q",
					kind, sc.Name, sc.PreferredSubstrate)
			}
		}
		r.profiles = append(r.profiles, Profile{
			Name:               sc.Name,
			Kind:               kind,
			GrowthRate:         sc.GrowthRate,
			Thickness:          sc.Thickness,
			BranchProbability:  sc.BranchProbability,
			PreferredSubstrate: sc.PreferredSubstrate,
			MergeProbability:   sc.MergeProbability,
			AntifungalPotency:  sc.AntifungalPotency,
			OptimalPH:          sc.OptimalPH,
			PHTolerance:        sc.PHTolerance,
			OptimalTemp:        sc.OptimalTemp,
			TempTolerance:      sc.TempTolerance,
			OptimalHumidity:    sc.OptimalHumidity,
			HumidityTolerance:  sc.HumidityTolerance,
		})
	}
	for i := range r.profiles {
		r.byName[r.profiles[i].Name] = &r.profiles[i]
	}
	return r, nil
}

// Kind returns the registry's kind.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Get returns the profile for a species name.
func (r *Registry) Get(name string) (*Profile, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Names returns all species names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.profiles))
	for i := range r.profiles {
		names[i] = r.profiles[i].Name
	}
	return names
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}
