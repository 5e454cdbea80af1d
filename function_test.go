package uqstat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	. "github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/uspace"
)

// countingModel is a differentiating model that counts how often it is
// evaluated: f(x, u) = x_0 + u_0.
type countingModel struct {
	evals *int
}

func (m countingModel) Evaluate(x, u []float64) ([]float64, error) {
	*m.evals++
	return []float64{x[0] + u[0]}, nil
}

func (m countingModel) EvaluateBatch(x []float64, us mat.Matrix) (*mat.Dense, error) {
	n, _ := us.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		row, err := m.Evaluate(x, []float64{us.At(i, 0)})
		if err != nil {
			return nil, err
		}
		out.SetRow(i, row)
	}
	return out, nil
}

func (m countingModel) EvaluateWithJac(x, u []float64) ([]float64, *mat.Dense, error) {
	out, err := m.Evaluate(x, u)
	if err != nil {
		return nil, nil, err
	}
	return out, mat.NewDense(1, 1, []float64{1}), nil
}

func testSpace(seed uint64) *uspace.Space {
	return uspace.New(uspace.Normal("u", 0, 1, uspace.Seeded(seed)))
}

// One design point triggers exactly one model production, no matter how many
// functions and how many value/Jacobian requests share the session.
func TestSessionSingleFlight(t *testing.T) {
	var evals int
	form, err := NewSampling(countingModel{evals: &evals}, testSpace(1), 20)
	require.NoError(t, err)
	session := NewSession(form)

	mean := session.NewFunction("mass", Mean())
	sd := session.NewFunction("mass_sd", StandardDeviation())

	x := []float64{1.5}
	v1, err := mean.Value(x)
	require.NoError(t, err)
	assert.Equal(t, 20, evals)

	_, err = mean.Jacobian(x)
	require.NoError(t, err)
	_, err = sd.Value(x)
	require.NoError(t, err)
	_, err = sd.Jacobian(x)
	require.NoError(t, err)
	assert.Equal(t, 20, evals, "all requests at one point share one production")

	// Asking the same value again replays the cached estimate.
	v2, err := mean.Value(x)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 20, evals)

	// A new point produces again; returning to the old one does too, since
	// the cache holds a single fresh point.
	_, err = mean.Value([]float64{2})
	require.NoError(t, err)
	assert.Equal(t, 40, evals)
	_, err = mean.Value(x)
	require.NoError(t, err)
	assert.Equal(t, 60, evals)
}

func TestFunctionJacobianFillsFunctionName(t *testing.T) {
	var evals int
	form, err := NewSampling(countingModel{evals: &evals}, testSpace(2), 5)
	require.NoError(t, err)
	session := NewSession(form)
	prob := session.NewFunction("exceedance", Probability(0, true))

	_, err = prob.Jacobian([]float64{0})
	var de *DifferentiabilityError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "exceedance", de.Function)
	assert.Contains(t, err.Error(), "exceedance")
}
