package config

import (
	"sort"

	"github.com/san-kum/mcsim/internal/core"
)

func saltAtoms() []core.Record {
	return []core.Record{
		{"name": "NA", "q": 1.0, "sigma": 4.0, "eps": 0.05, "dp": 3.0},
		{"name": "CL", "q": -1.0, "sigma": 4.0, "eps": 0.05, "dp": 3.0},
	}
}

func saltEnergy() []core.Record {
	return []core.Record{
		{"coulomb": core.Record{"epsr": 80.0}},
		{"wca": core.Record{"mixing": "LB"}},
	}
}

var Presets = map[string]map[string]*Config{
	"salt": {
		"canonical": {
			Name: "salt/canonical", Seed: 1, Macro: 10, Micro: 2000,
			Geometry: core.Record{"type": "cuboid", "length": 50.0},
			Atoms:    saltAtoms(),
			Molecules: []core.Record{
				{"name": "Na", "atoms": []any{"NA"}, "atomic": true, "ninit": 30},
				{"name": "Cl", "atoms": []any{"CL"}, "atomic": true, "ninit": 30},
			},
			Energy: saltEnergy(),
			Moves:  []core.Record{{"type": "translate", "runfraction": 1.0}},
		},
		"bath": {
			Name: "salt/bath", Seed: 1, Macro: 10, Micro: 2000,
			Geometry: core.Record{"type": "cuboid", "length": 50.0},
			Atoms:    saltAtoms(),
			Molecules: []core.Record{
				{"name": "Na", "atoms": []any{"NA"}, "atomic": true, "ninit": 20, "reserve": 80},
				{"name": "Cl", "atoms": []any{"CL"}, "atomic": true, "ninit": 20, "reserve": 80},
			},
			Energy: saltEnergy(),
			Moves: []core.Record{
				{"type": "translate", "runfraction": 1.0},
				{"type": "bath", "mu": -18.0, "k": 8, "polymer": []any{"NA"}, "counter": []any{"CL"}, "runfraction": 0.2},
			},
		},
		"sphere": {
			Name: "salt/sphere", Seed: 1, Macro: 10, Micro: 2000,
			Geometry: core.Record{"type": "sphere", "radius": 40.0},
			Atoms:    saltAtoms(),
			Molecules: []core.Record{
				{"name": "Na", "atoms": []any{"NA"}, "atomic": true, "ninit": 25},
				{"name": "Cl", "atoms": []any{"CL"}, "atomic": true, "ninit": 25},
			},
			Energy: []core.Record{
				{"coulomb": core.Record{"epsr": 80.0}},
				{"hardsphere": core.Record{}},
			},
			Moves: []core.Record{{"type": "translate", "runfraction": 1.0}},
		},
	},
	"lj": {
		"fluid": {
			Name: "lj/fluid", Seed: 1, Macro: 10, Micro: 5000,
			Geometry: core.Record{"type": "cuboid", "length": 20.0},
			Atoms:    []core.Record{{"name": "LJ", "sigma": 3.0, "eps": 1.0, "dp": 1.0}},
			Molecules: []core.Record{
				{"name": "fluid", "atoms": []any{"LJ"}, "atomic": true, "ninit": 100},
			},
			Energy: []core.Record{{"lennardjones": core.Record{"mixing": "LB"}}},
			Moves:  []core.Record{{"type": "translate", "runfraction": 1.0}},
		},
	},
	"polymer": {
		"dimers": {
			Name: "polymer/dimers", Seed: 1, Macro: 10, Micro: 2000,
			Geometry: core.Record{"type": "cuboid", "length": 40.0},
			Atoms: []core.Record{
				{"name": "M", "q": -1.0, "sigma": 4.0, "eps": 0.1, "dp": 1.0},
				{"name": "CI", "q": 1.0, "sigma": 4.0, "eps": 0.1, "dp": 3.0},
			},
			Molecules: []core.Record{
				{
					"name": "dimer", "atoms": []any{"M", "M"}, "ninit": 10,
					"bonds": []any{map[string]any{"type": "harmonic", "index": []any{0, 1}, "k": 1.0, "req": 5.0}},
				},
				{"name": "ions", "atoms": []any{"CI"}, "atomic": true, "ninit": 20},
			},
			Energy: saltEnergy(),
			Moves: []core.Record{
				{"type": "moltranslate", "molecule": "dimer", "dp": 2.0, "runfraction": 0.5},
				{"type": "translate", "runfraction": 1.0},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the sorted preset names of system.
func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListSystems returns the sorted preset system names.
func ListSystems() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
