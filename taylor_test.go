package uqstat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/bench"
	"github.com/uqlab/uqstat/uspace"
)

// For f(x,u) = (x+u)^2 with u ~ N(0, sigma^2) the closed-form mean is
// x^2 + sigma^2. The second-order expansion recovers it exactly; the
// first-order one returns x^2 and misses the sigma^2 term by construction.
func TestTaylorMeanOrders(t *testing.T) {
	sigma := 0.7
	space := uspace.New(uspace.Normal("u", 0, sigma, nil))
	x := []float64{1.3}

	second := NewSession(NewTaylorPolynomial(bench.Quadratic{}, space, true))
	v, err := second.NewFunction("f", Mean()).Value(x)
	require.NoError(t, err)
	assert.InDelta(t, 1.3*1.3+sigma*sigma, v[0], 1e-12)

	first := NewSession(NewTaylorPolynomial(bench.Quadratic{}, space, false))
	v, err = first.NewFunction("f", Mean()).Value(x)
	require.NoError(t, err)
	assert.InDelta(t, 1.3*1.3, v[0], 1e-12)
}

// First-order variance propagation: Var ≈ (df/du)^2 sigma^2 = (2(x+mu))^2
// sigma^2.
func TestTaylorVariance(t *testing.T) {
	sigma := 0.5
	space := uspace.New(uspace.Normal("u", 0, sigma, nil))
	session := NewSession(NewTaylorPolynomial(bench.Quadratic{}, space, false))

	v, err := session.NewFunction("f", Variance()).Value([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 16*sigma*sigma, v[0], 1e-12)

	sd, err := session.NewFunction("sd", StandardDeviation()).Value([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 4*sigma, sd[0], 1e-12)

	m, err := session.NewFunction("m", Margin(2)).Value([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 4+2*4*sigma, m[0], 1e-12)
}

func TestTaylorProbabilityRejected(t *testing.T) {
	space := uspace.New(uspace.Normal("u", 0, 1, nil))
	session := NewSession(NewTaylorPolynomial(bench.Quadratic{}, space, false))
	_, err := session.NewFunction("p", Probability(1, true)).Value([]float64{0})
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
}

// dMean/dx = 2(x+mu) at first order; dVar/dx = 8(x+mu) sigma^2 through the
// expansion gradient.
func TestTaylorJacobians(t *testing.T) {
	sigma := 0.5
	space := uspace.New(uspace.Normal("u", 0.2, sigma, nil))
	session := NewSession(NewTaylorPolynomial(bench.Quadratic{}, space, false))
	x := []float64{1}

	jac, err := session.NewFunction("f", Mean()).Jacobian(x)
	require.NoError(t, err)
	assert.InDelta(t, 2*(1+0.2), jac.At(0, 0), 1e-12)

	vj, err := session.NewFunction("v", Variance()).Jacobian(x)
	require.NoError(t, err)
	assert.InDelta(t, 8*(1+0.2)*sigma*sigma, vj.At(0, 0), 1e-12)
}

// A model without an expansion gradient can still serve values; the first
// Jacobian request is what fails.
func TestTaylorJacobianNeedsGradExpansion(t *testing.T) {
	space := uspace.New(uspace.Normal("u", 0, 1, nil))
	model := bench.Linear{A: []float64{1}, B: []float64{1}}
	session := NewSession(NewTaylorPolynomial(model, space, false))
	fn := session.NewFunction("f", Mean())

	_, err := fn.Value([]float64{0})
	require.NoError(t, err)
	_, err = fn.Jacobian([]float64{0})
	var de *DifferentiabilityError
	require.ErrorAs(t, err, &de)
}

// Second order requested but the model returned no Hessian.
func TestTaylorMissingHessian(t *testing.T) {
	space := uspace.New(uspace.Normal("u", 0, 1, nil))
	data := &TaylorData{Value: []float64{1}}
	_, err := TaylorEstimate(Mean(), data, space.StdDev(), true)
	var ma *MissingArtifactError
	require.ErrorAs(t, err, &ma)
	assert.Equal(t, ArtifactHessian, ma.Artifact)
}
