package potential

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func testCatalog(t *testing.T) *atoms.Catalog {
	t.Helper()
	cat, err := atoms.NewCatalog([]atoms.AtomType{
		{Name: "A", Charge: 1, Sigma: 2, Eps: 1},
		{Name: "B", Charge: -1, Sigma: 4, Eps: 0.5},
	}, nil)
	require.NoError(t, err)
	return cat
}

func particles(cat *atoms.Catalog, a, b string) (*space.Particle, *space.Particle) {
	ta, _ := cat.AtomByName(a)
	tb, _ := cat.AtomByName(b)
	pa := space.NewParticle(ta, r3.Vec{})
	pb := space.NewParticle(tb, r3.Vec{})
	return &pa, &pb
}

var direction = r3.Unit(r3.Vec{X: 1, Y: -2, Z: 0.5})

// numericForce is -dU/dr by central differences along each axis.
func numericForce(p interface {
	Energy(a, b *space.Particle, r r3.Vec) float64
}, a, b *space.Particle, r r3.Vec) r3.Vec {
	const h = 1e-6
	d := func(e r3.Vec) float64 {
		return -(p.Energy(a, b, r3.Add(r, r3.Scale(h, e))) - p.Energy(a, b, r3.Sub(r, r3.Scale(h, e)))) / (2 * h)
	}
	return r3.Vec{X: d(r3.Vec{X: 1}), Y: d(r3.Vec{Y: 1}), Z: d(r3.Vec{Z: 1})}
}

func assertForceMatchesEnergy(t *testing.T, p Pair, a, b *space.Particle, seps []float64) {
	t.Helper()
	for _, s := range seps {
		r := r3.Scale(s, direction)
		want := numericForce(p, a, b, r)
		got := p.Force(a, b, r)
		tol := 1e-5 * math.Max(1, r3.Norm(want))
		assert.InDelta(t, want.X, got.X, tol, "%s r=%g x", p.Name(), s)
		assert.InDelta(t, want.Y, got.Y, tol, "%s r=%g y", p.Name(), s)
		assert.InDelta(t, want.Z, got.Z, tol, "%s r=%g z", p.Name(), s)
	}
}

func TestMixingTable(t *testing.T) {
	cat := testCatalog(t)
	m, err := NewMixingTable(cat, LorentzBerthelot)
	require.NoError(t, err)

	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.Sigma(i, j), m.Sigma(j, i))
			assert.Equal(t, m.Eps(i, j), m.Eps(j, i))
			assert.Equal(t, m.SigmaSq(i, j), m.SigmaSq(j, i))
			assert.Equal(t, m.FourEps(i, j), m.FourEps(j, i))
		}
	}
	assert.Equal(t, 3.0, m.Sigma(0, 1))
	assert.InDelta(t, math.Sqrt(0.5), m.Eps(0, 1), 1e-15)
	assert.Equal(t, 9.0, m.SigmaSq(1, 0))
	assert.InDelta(t, 4*math.Sqrt(0.5), m.FourEps(1, 0), 1e-15)
}

func TestParseMixing(t *testing.T) {
	cat := testCatalog(t)

	m, err := ParseMixing(core.Record{
		"custom": core.Record{"B A": core.Record{"sigma": 5.0, "eps": 0.1}},
	}, cat)
	require.NoError(t, err)
	assert.Equal(t, 5.0, m.Sigma(0, 1))
	assert.Equal(t, 25.0, m.SigmaSq(1, 0))
	assert.InDelta(t, 0.4, m.FourEps(0, 1), 1e-15)
	assert.Equal(t, 2.0, m.Sigma(0, 0), "other pairs keep the mixed values")

	tests := []struct {
		name    string
		rec     core.Record
		key     string
		wantErr error
	}{
		{"unknown rule", core.Record{"mixing": "geometric"}, "mixing", core.ErrUnknownVariant},
		{"one name", core.Record{"custom": core.Record{"A": core.Record{"sigma": 1.0, "eps": 1.0}}}, "custom.A", core.ErrInvalidValue},
		{"unknown atom", core.Record{"custom": core.Record{"A C": core.Record{"sigma": 1.0, "eps": 1.0}}}, "custom.A C", core.ErrUnknownName},
		{"missing eps", core.Record{"custom": core.Record{"A B": core.Record{"sigma": 1.0}}}, "custom.A B", core.ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMixing(tt.rec, cat)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			var pe *core.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.key, pe.Key)
		})
	}
}

func TestPairRoundTrip(t *testing.T) {
	cat := testCatalog(t)
	recs := []core.Record{
		{"dummy": core.Record{}},
		{"lennardjones": core.Record{"mixing": "LB"}},
		{"wca": core.Record{"custom": core.Record{"A B": core.Record{"sigma": 2.5, "eps": 0.3}}}},
		{"coulomb": core.Record{"lB": 7.1}},
		{"coulomb": core.Record{"epsr": 80.0, "temperature": 300.0}},
		{"hardsphere": nil},
	}
	for _, rec := range recs {
		p, err := ParsePair(rec, cat)
		require.NoError(t, err, "%v", rec)

		q, err := ParsePair(p.Record(), cat)
		require.NoError(t, err)
		assert.Equal(t, p, q, "%s", p.Name())
		assert.Equal(t, p.Record(), q.Record())
	}
}

func TestParsePairErrors(t *testing.T) {
	cat := testCatalog(t)
	tests := []struct {
		name    string
		rec     core.Record
		key     string
		wantErr error
	}{
		{"unknown", core.Record{"yukawa": core.Record{}}, "yukawa", core.ErrUnknownVariant},
		{"two names", core.Record{"wca": nil, "coulomb": nil}, "potential", core.ErrInvalidValue},
		{"coulomb without epsr", core.Record{"coulomb": core.Record{}}, "coulomb", core.ErrMissingField},
		{"coulomb negative epsr", core.Record{"coulomb": core.Record{"epsr": -1.0}}, "coulomb", core.ErrInvalidValue},
		{"lj bad rule", core.Record{"lennardjones": core.Record{"mixing": "XY"}}, "lennardjones", core.ErrUnknownVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePair(tt.rec, cat)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var pe *core.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.key, pe.Key)
		})
	}
}

func TestLennardJones(t *testing.T) {
	cat := testCatalog(t)
	m, err := NewMixingTable(cat, LorentzBerthelot)
	require.NoError(t, err)
	lj := NewLennardJones(m)
	a, b := particles(cat, "A", "B")

	rmin := 3 * math.Pow(2, 1.0/6.0)
	assert.InDelta(t, -math.Sqrt(0.5), lj.Energy(a, b, r3.Scale(rmin, direction)), 1e-12)
	assert.InDelta(t, 0, lj.Energy(a, b, r3.Scale(3, direction)), 1e-12)
	assert.InDelta(t, 0, r3.Norm(lj.Force(a, b, r3.Scale(rmin, direction))), 1e-12)

	assertForceMatchesEnergy(t, lj, a, b, []float64{2.8, 3.0, 3.2, 3.6, 4.5, 6.0})
	aa, _ := particles(cat, "A", "A")
	assertForceMatchesEnergy(t, lj, aa, aa, []float64{1.9, 2.1, 2.4, 3.0, 4.0})
}

func TestWCA(t *testing.T) {
	cat := testCatalog(t)
	m, err := NewMixingTable(cat, LorentzBerthelot)
	require.NoError(t, err)
	wca := NewWCA(m)
	lj := NewLennardJones(m)
	a, b := particles(cat, "A", "B")

	rc := 3 * math.Pow(2, 1.0/6.0)
	for _, s := range []float64{rc * (1 + 1e-9), rc * 1.01, 4, 10} {
		r := r3.Scale(s, direction)
		assert.Equal(t, 0.0, wca.Energy(a, b, r), "r=%g", s)
		assert.Equal(t, r3.Vec{}, wca.Force(a, b, r), "r=%g", s)
	}
	assert.InDelta(t, 0, wca.Energy(a, b, r3.Scale(rc, direction)), 1e-9)

	for _, s := range []float64{2.7, 2.9, 3.0, 3.2, 3.3} {
		r := r3.Scale(s, direction)
		assert.InDelta(t, lj.Energy(a, b, r)+m.Eps(0, 1), wca.Energy(a, b, r), 1e-12, "shifted LJ at r=%g", s)
		assert.Greater(t, wca.Energy(a, b, r), 0.0)
	}

	assertForceMatchesEnergy(t, wca, a, b, []float64{2.7, 2.8, 2.9, 3.0, 3.2, 3.3})
}

func TestCoulomb(t *testing.T) {
	cat := testCatalog(t)
	a, b := particles(cat, "A", "B")

	assert.InDelta(t, 7.006, BjerrumLength(80, DefaultTemperature), 0.01)

	p, err := ParsePair(core.Record{"coulomb": core.Record{"epsr": 80.0}}, cat)
	require.NoError(t, err)
	assert.Equal(t, BjerrumLength(80, DefaultTemperature), p.Bjerrum)
	assert.Equal(t, DefaultTemperature, p.Temperature)

	c := NewCoulomb(7)
	assert.InDelta(t, -3.5, c.Energy(a, b, r3.Scale(2, direction)), 1e-12)
	assertForceMatchesEnergy(t, c, a, b, []float64{1, 2, 3, 5, 8})
	f := c.Force(a, b, r3.Scale(2, direction))
	assert.Less(t, r3.Dot(f, direction), 0.0, "opposite charges attract")
}

func TestHardSphere(t *testing.T) {
	cat := testCatalog(t)
	hs := NewHardSphere(cat)
	a, b := particles(cat, "A", "B")

	assert.True(t, math.IsInf(hs.Energy(a, b, r3.Scale(2.9, direction)), 1))
	assert.Equal(t, 0.0, hs.Energy(a, b, r3.Scale(3.1, direction)))
	assert.Equal(t, r3.Vec{}, hs.Force(a, b, r3.Scale(2.9, direction)))

	aa, _ := particles(cat, "A", "A")
	assert.True(t, math.IsInf(hs.Energy(aa, aa, r3.Scale(1.9, direction)), 1))
	assert.Equal(t, 0.0, hs.Energy(aa, aa, r3.Scale(2.1, direction)))
}

func TestCombined(t *testing.T) {
	cat := testCatalog(t)
	m, err := NewMixingTable(cat, LorentzBerthelot)
	require.NoError(t, err)
	lj, el, hs := NewLennardJones(m), NewCoulomb(7), NewHardSphere(cat)
	dummy := Pair{Kind: Dummy}
	a, b := particles(cat, "A", "B")
	r := r3.Scale(3.5, direction)

	assert.Empty(t, Add(dummy))
	assert.Equal(t, 0.0, Add(dummy).Energy(a, b, r))
	assert.Equal(t, "dummy", Add(dummy).Name())
	assert.Equal(t, Add(lj), Add(dummy, lj))
	assert.Equal(t, Add(lj), Add(lj).Add(dummy))

	assert.Equal(t, Add(lj, el).Add(hs), Add(lj, el, hs))
	assert.Equal(t, Add(lj).Add(el, hs), Add(lj, el, hs))
	assert.Equal(t, Join(Add(lj), Add(el, hs)), Add(lj, el, hs))

	c := Add(lj, el)
	assert.Equal(t, "lennardjones+coulomb", c.Name())
	assert.InDelta(t, lj.Energy(a, b, r)+el.Energy(a, b, r), c.Energy(a, b, r), 1e-12)
	want := r3.Add(lj.Force(a, b, r), el.Force(a, b, r))
	assert.InDelta(t, want.X, c.Force(a, b, r).X, 1e-12)

	parsed, err := ParseCombined(c.Records(), cat)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)

	_, err = ParseCombined([]core.Record{{"nope": nil}}, cat)
	assert.ErrorIs(t, err, core.ErrUnknownVariant)
}
