package surrogate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPolyTermerLayout(t *testing.T) {
	termer := PolyTermer{Order: 2}
	assert.Equal(t, 5, termer.NumTerms(2))

	terms := make([]float64, 5)
	termer.Terms(terms, []float64{2, 3})
	assert.Equal(t, []float64{1, 2, 3, 4, 9}, terms)
}

// Fitting samples of an order-2 polynomial recovers its coefficients and
// predicts exactly everywhere.
func TestPolynomialExactRecovery(t *testing.T) {
	target := func(u float64) float64 { return 1 + 2*u + 3*u*u }
	xs := mat.NewDense(6, 1, []float64{-2, -1, -0.5, 0.5, 1, 2})
	fs := make([]float64, 6)
	for i := range fs {
		fs[i] = target(xs.At(i, 0))
	}

	p := &Polynomial{Order: 2}
	pred, err := p.Fit(xs, fs)
	require.NoError(t, err)

	pp := pred.(*PolyPred)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, pp.Beta, 1e-10)
	assert.InDelta(t, target(0.3), pred.Predict([]float64{0.3}), 1e-10)
	assert.InDelta(t, target(-4), pred.Predict([]float64{-4}), 1e-9)
}

func TestPolynomialOrderValidation(t *testing.T) {
	p := &Polynomial{Order: 0}
	_, err := p.Fit(mat.NewDense(2, 1, []float64{0, 1}), []float64{0, 1})
	require.Error(t, err)
}
