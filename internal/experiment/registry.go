package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/geometry"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/metrics"
	"github.com/san-kum/mcsim/internal/space"
)

// MoveFunc builds a move from its record. The space is the populated
// accepted state.
type MoveFunc func(rec core.Record, cat *atoms.Catalog, s *space.Space) (mc.Move, error)

type Registry struct {
	geometries map[string]func(core.Record) (geometry.Geometry, error)
	moves      map[string]MoveFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		geometries: make(map[string]func(core.Record) (geometry.Geometry, error)),
		moves:      make(map[string]MoveFunc),
	}

	r.geometries["cuboid"] = geometry.Parse
	r.geometries["sphere"] = geometry.Parse

	r.moves["translate"] = func(rec core.Record, cat *atoms.Catalog, _ *space.Space) (mc.Move, error) {
		return mc.ParseTranslate(rec, cat)
	}
	r.moves["moltranslate"] = func(rec core.Record, cat *atoms.Catalog, _ *space.Space) (mc.Move, error) {
		return mc.ParseMoleculeTranslate(rec, cat)
	}
	r.moves["bath"] = func(rec core.Record, cat *atoms.Catalog, s *space.Space) (mc.Move, error) {
		return mc.ParseBath(rec, cat, s)
	}

	return r
}

func (r *Registry) GetGeometry(rec core.Record) (geometry.Geometry, error) {
	name, err := rec.String("type")
	if err != nil {
		return nil, err
	}
	fn, ok := r.geometries[name]
	if !ok {
		return nil, fmt.Errorf("unknown geometry: %s", name)
	}
	return fn(rec)
}

func (r *Registry) GetMove(rec core.Record, cat *atoms.Catalog, s *space.Space) (mc.Move, error) {
	name, err := rec.String("type")
	if err != nil {
		return nil, err
	}
	fn, ok := r.moves[name]
	if !ok {
		return nil, fmt.Errorf("unknown move: %s", name)
	}
	m, err := fn(rec, cat, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

func (r *Registry) ListGeometries() []string { return sortedKeys(r.geometries) }
func (r *Registry) ListMoves() []string      { return sortedKeys(r.moves) }

// DefaultMetrics observes the energy, its drift, the acceptance of every
// move and the particle count of every molecule type.
func (r *Registry) DefaultMetrics(cat *atoms.Catalog, moves []mc.Move) []mc.Metric {
	ms := []mc.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewAcceptance(""),
	}
	seen := make(map[string]bool)
	for _, m := range moves {
		if seen[m.Name()] {
			continue
		}
		seen[m.Name()] = true
		ms = append(ms, metrics.NewAcceptance(m.Name()))
	}
	for _, m := range cat.Molecules() {
		ms = append(ms, metrics.NewParticleCount(m.ID, m.Name))
	}
	return ms
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
