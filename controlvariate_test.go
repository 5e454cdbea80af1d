package uqstat_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	. "github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/bench"
	"github.com/uqlab/uqstat/uspace"
)

// For a linear model the first-order surrogate is the model itself:
// the correlation is perfect and the control-variate mean is exact at any
// sample size, with zero residual variance.
func TestControlVariateExactForLinearModel(t *testing.T) {
	model := bench.Linear{A: []float64{2}, B: []float64{3}, C: 1}
	mu := 0.4
	space := uspace.New(uspace.Normal("u", mu, 1, uspace.Seeded(21)))
	x := []float64{1.5}
	exact := 1 + 2*1.5 + 3*mu

	for _, n := range []int{1, 2, 5, 50} {
		form, err := NewControlVariate(model, model, space, n)
		require.NoError(t, err)
		session := NewSession(form)
		v, err := session.NewFunction("f", Mean()).Value(x)
		require.NoError(t, err)
		assert.InDelta(t, exact, v[0], 1e-9, "n=%d", n)
	}
}

// The nonlinear quadratic keeps some residual variance, but the surrogate
// must not bias the estimate: with many draws the CV mean lands on the
// closed form E[(x+u)^2] = x^2 + sigma^2.
func TestControlVariateUnbiasedForQuadratic(t *testing.T) {
	space := uspace.New(uspace.Normal("u", 0, 1, uspace.Seeded(33)))
	form, err := NewControlVariate(bench.Quadratic{}, bench.Quadratic{}, space, 2000)
	require.NoError(t, err)
	session := NewSession(form)

	v, err := session.NewFunction("f", Mean()).Value([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v[0], 0.2)
}

func TestControlVariateConfig(t *testing.T) {
	var cfg *ConfigError
	_, err := NewControlVariate(bench.Quadratic{}, bench.Quadratic{}, testSpace(1), 0)
	require.ErrorAs(t, err, &cfg)
	_, err = NewControlVariate(bench.Quadratic{}, nil, testSpace(1), 5)
	require.ErrorAs(t, err, &cfg)
}

func TestCvAlphaFloorsConstantSurrogate(t *testing.T) {
	f := []float64{1, 2, 3}
	g := []float64{5, 5, 5}
	alpha := CVAlpha(f, g)
	assert.False(t, math.IsNaN(alpha))
}

// With a single control variate the linear solve reduces to the scalar
// formula cov(f,g)/var(g).
func TestControlVariateCoeffsScalarCase(t *testing.T) {
	f := []float64{1, 2, 3, 4}
	g := []float64{2, 4, 6, 8}
	alpha := ControlVariateCoeffs(f, [][]float64{g})
	require.Len(t, alpha, 1)
	assert.InDelta(t, 0.5, alpha[0], 1e-12)
}

// Two variates, one of which is pure noise with no correlation to f, should
// load the entire correction onto the informative one.
func TestControlVariateCoeffsMultivariate(t *testing.T) {
	f := []float64{1, 2, 3, 4, 5, 6}
	g1 := []float64{2, 4, 6, 8, 10, 12}
	g2 := []float64{1, -1, 1, -1, 1, -1}
	alpha := ControlVariateCoeffs(f, [][]float64{g1, g2})
	require.Len(t, alpha, 2)
	assert.InDelta(t, 0.5, alpha[0], 1e-9)
	assert.InDelta(t, 0.0, alpha[1], 1e-9)
}

func TestCvEstimateIdentity(t *testing.T) {
	// Hand numbers: f = g + noise with known means.
	outputs := mat.NewDense(4, 1, []float64{1.1, 2.0, 2.9, 4.0})
	preds := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	got := CVEstimate(outputs, preds, []float64{2.5})
	// mean(g) equals g(mu) here, so the correction vanishes and the estimate
	// is the crude mean of f.
	assert.InDelta(t, 2.5, got[0], 1e-12)
}
