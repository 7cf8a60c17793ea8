package mc

import (
	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/space"
)

// ParseTranslate reads {atom: NA, dp: 0.5, runfraction: 1}. Both atom and dp
// are optional.
func ParseTranslate(rec core.Record, cat *atoms.Catalog) (*Translate, error) {
	atom := AnyAtom
	if rec.Has("atom") {
		name, err := rec.String("atom")
		if err != nil {
			return nil, err
		}
		a, ok := cat.AtomByName(name)
		if !ok {
			return nil, core.Errorf("atom", core.ErrUnknownName, "atom %q", name)
		}
		atom = a.ID
	}
	dp, err := rec.FloatOr("dp", 0)
	if err != nil {
		return nil, err
	}
	rf, err := parseRunFraction(rec)
	if err != nil {
		return nil, err
	}
	return NewTranslate(atom, dp, rf), nil
}

// ParseMoleculeTranslate reads {molecule: dimer, dp: 1, runfraction: 1}.
func ParseMoleculeTranslate(rec core.Record, cat *atoms.Catalog) (*MoleculeTranslate, error) {
	name, err := rec.String("molecule")
	if err != nil {
		return nil, err
	}
	m, ok := cat.MoleculeByName(name)
	if !ok {
		return nil, core.Errorf("molecule", core.ErrUnknownName, "molecule %q", name)
	}
	if m.Atomic {
		return nil, core.Errorf("molecule", core.ErrInvalidValue, "%q is atomic, use translate", name)
	}
	dp, err := rec.Float("dp")
	if err != nil {
		return nil, err
	}
	rf, err := parseRunFraction(rec)
	if err != nil {
		return nil, err
	}
	return NewMoleculeTranslate(m.ID, dp, rf), nil
}

// ParseBath reads {index, mu, k, polymer, counter, bond, runfraction}.
// Without mu the move is disabled.
func ParseBath(rec core.Record, cat *atoms.Catalog, s *space.Space) (*Bath, error) {
	cfg := DefaultBathConfig()
	var err error
	if cfg.Index, err = rec.IntOr("index", 0); err != nil {
		return nil, err
	}
	if rec.Has("mu") {
		mu, err := rec.Float("mu")
		if err != nil {
			return nil, err
		}
		cfg.Mu = &mu
	}
	if cfg.K, err = rec.IntOr("k", cfg.K); err != nil {
		return nil, err
	}
	if rec.Has("polymer") {
		if cfg.Polymer, err = rec.Strings("polymer"); err != nil {
			return nil, err
		}
	}
	if rec.Has("counter") {
		if cfg.Counter, err = rec.Strings("counter"); err != nil {
			return nil, err
		}
	}
	if cfg.Bond, err = rec.StringOr("bond", cfg.Bond); err != nil {
		return nil, err
	}
	if cfg.RunFraction, err = parseRunFraction(rec); err != nil {
		return nil, err
	}
	return NewBath(cfg, cat, s)
}

func parseRunFraction(rec core.Record) (float64, error) {
	rf, err := rec.FloatOr("runfraction", 1)
	if err != nil {
		return 0, err
	}
	if rf < 0 {
		return 0, core.Errorf("runfraction", core.ErrInvalidValue, "must not be negative, got %g", rf)
	}
	return rf, nil
}
