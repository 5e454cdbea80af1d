package mlmc

import (
	"math"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/uspace"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.ErrorLevel)
	os.Exit(m.Run())
}

func normalSpace(seed uint64) *uspace.Space {
	return uspace.New(uspace.Normal("u", 0, 1, uspace.Seeded(seed)))
}

func constLevel(v, cost float64) Level {
	return Level{
		Model:         func(u []float64) float64 { return v },
		Cost:          cost,
		NInitial:      4,
		SamplingRatio: 2,
	}
}

func TestEngineValidation(t *testing.T) {
	space := normalSpace(1)
	var cfg *uqstat.ConfigError

	_, err := (&Engine{Space: space, Budget: 10}).Execute()
	require.ErrorAs(t, err, &cfg)

	_, err = (&Engine{Levels: []Level{constLevel(1, 1)}, Budget: 10}).Execute()
	require.ErrorAs(t, err, &cfg)

	_, err = (&Engine{Levels: []Level{constLevel(1, 1)}, Space: space}).Execute()
	require.ErrorAs(t, err, &cfg)

	bad := constLevel(1, 1)
	bad.SamplingRatio = 1
	_, err = (&Engine{Levels: []Level{bad}, Space: space, Budget: 10}).Execute()
	require.ErrorAs(t, err, &cfg)

	bad = constLevel(1, 1)
	bad.NInitial = 1
	_, err = (&Engine{Levels: []Level{bad}, Space: space, Budget: 10}).Execute()
	require.ErrorAs(t, err, &cfg)
}

func TestEngineMinimumBudget(t *testing.T) {
	// Initial draws cost 4*1 + 4*(1+1) = 12 units; a budget of 10 cannot
	// cover them.
	e := &Engine{
		Levels: []Level{constLevel(1, 1), constLevel(1.5, 1)},
		Space:  normalSpace(2),
		Budget: 10,
	}
	_, err := e.Execute()
	var cfg *uqstat.ConfigError
	require.ErrorAs(t, err, &cfg)
}

// Constant level models make the telescoping deterministic: the estimate is
// the mean of the finest model, exactly, from the first iteration on.
func TestEngineDeterministicTelescoping(t *testing.T) {
	e := &Engine{
		Levels: []Level{constLevel(1, 1), constLevel(1.5, 1)},
		Space:  normalSpace(3),
		Budget: 60,
	}
	result, err := e.Execute()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, result.Estimate, 1e-12)
	for _, it := range result.Iterations {
		assert.InDelta(t, 1.5, it.Estimate, 1e-12)
	}
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "Mean", result.Pilot)
}

// The remaining budget never increases, and the run stops only when one
// more growth step would overdraw it.
func TestEngineBudgetMonotone(t *testing.T) {
	fine := func(u []float64) float64 { return 0.9 * u[0] * u[0] }
	coarse := func(u []float64) float64 { return 0.85 * u[0] * u[0] }
	e := &Engine{
		Levels: []Level{
			{Model: coarse, Cost: 0.2, NInitial: 10, SamplingRatio: 2},
			{Model: fine, Cost: 1, NInitial: 10, SamplingRatio: 2},
		},
		Space:  normalSpace(4),
		Budget: 500,
	}
	result, err := e.Execute()
	require.NoError(t, err)

	require.NotEmpty(t, result.BudgetHistory)
	prev := e.Budget
	for _, b := range result.BudgetHistory {
		assert.LessOrEqual(t, b, prev)
		prev = b
	}
	assert.GreaterOrEqual(t, prev, 0.0)
}

// E[0.9 u^2] = 0.9 for u ~ N(0,1). The cheap coarse level absorbs most of
// the budget: it carries nearly all the variance at a fifth of the cost.
func TestEngineTwoLevelEstimate(t *testing.T) {
	fine := func(u []float64) float64 { return 0.9 * u[0] * u[0] }
	coarse := func(u []float64) float64 { return 0.85 * u[0] * u[0] }
	e := &Engine{
		Levels: []Level{
			{Model: coarse, Cost: 0.2, NInitial: 20, SamplingRatio: 2},
			{Model: fine, Cost: 1, NInitial: 20, SamplingRatio: 2},
		},
		Space:  normalSpace(5),
		Budget: 3000,
	}
	result, err := e.Execute()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, result.Estimate, 0.1)
	require.Len(t, result.NSamples, 2)
	assert.Greater(t, result.NSamples[1], 0)
	assert.GreaterOrEqual(t, result.NSamples[0], result.NSamples[1])
}

// With the variance pilot the telescoped quantity is Var of the finest
// model: Var[u] = 1.
func TestEngineVariancePilot(t *testing.T) {
	fine := func(u []float64) float64 { return u[0] }
	coarse := func(u []float64) float64 { return 0.5 * u[0] }
	e := &Engine{
		Levels: []Level{
			{Model: coarse, Cost: 0.5, NInitial: 30, SamplingRatio: 2},
			{Model: fine, Cost: 1, NInitial: 30, SamplingRatio: 2},
		},
		Space:  normalSpace(6),
		Budget: 2000,
		Pilot:  VariancePilot{},
	}
	result, err := e.Execute()
	require.NoError(t, err)
	assert.Equal(t, "Variance", result.Pilot)
	assert.InDelta(t, 1.0, result.Estimate, 0.25)
}

// Unknown costs switch the run to empirical timing; the run still
// terminates on the measured budget without error.
func TestEngineEmpiricalCosts(t *testing.T) {
	e := &Engine{
		Levels: []Level{constLevel(2, math.NaN()), constLevel(2.5, 1)},
		Space:  normalSpace(7),
		Budget: 100,
	}
	result, err := e.Execute()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, result.Estimate, 1e-12)
	assert.Greater(t, result.NSamples[0], 0)
}

func TestResultSummary(t *testing.T) {
	e := &Engine{
		Levels: []Level{constLevel(1, 1), constLevel(2, 1)},
		Space:  normalSpace(8),
		Budget: 60,
	}
	result, err := e.Execute()
	require.NoError(t, err)
	s := result.Summary()
	assert.Contains(t, s, result.RunID)
	assert.Contains(t, s, "level 0")
	assert.Contains(t, s, "level 1")
}
