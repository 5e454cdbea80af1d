package mlmc

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/uqlab/uqstat"
)

// Engine runs one adaptive multilevel estimation. Levels and Budget are
// read-only during Execute; all run state lives inside the call and only the
// Result survives it.
type Engine struct {
	Levels []Level
	Space  uqstat.UncertainSpace
	// Budget is the total sampling budget in units of equivalent
	// finest-model evaluations.
	Budget float64
	// Pilot defaults to MeanPilot.
	Pilot Pilot
	// Variant selects the control-variate scheme; VariantNone is plain
	// MLMC.
	Variant Variant
}

// Execute runs the estimation until the budget is exhausted. Exhaustion is
// a normal terminal state, not an error.
func (e *Engine) Execute() (*Result, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	pilot := e.Pilot
	if pilot == nil {
		pilot = MeanPilot{}
	}

	st := &runState{
		engine:  e,
		pilot:   pilot,
		data:    make([]*levelData, len(e.Levels)),
		costs:   make([]float64, len(e.Levels)),
		evals:   make([]int, len(e.Levels)),
		elapsed: make([]time.Duration, len(e.Levels)),
		budget:  e.Budget,
	}
	for l := range st.data {
		st.data[l] = &levelData{}
	}
	st.initCosts()
	if err := st.checkMinimumBudget(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
		Pilot: pilot.Name(),
	}
	logrus.Infof("mlmc: run %s: %d levels, budget %g, pilot %s",
		result.RunID, len(e.Levels), e.Budget, pilot.Name())

	// First iteration samples every level at its initial count.
	for l := range e.Levels {
		st.sampleLevel(l, e.Levels[l].NInitial)
	}
	st.refreshCosts()
	st.iterate(result)

	// Each later iteration grows exactly one level, the one selected by the
	// pilot criterion, until the remaining budget cannot afford a single
	// further sample there.
	for {
		l := st.selected
		grow := int(math.Floor((e.Levels[l].SamplingRatio - 1) * float64(st.data[l].n())))
		if grow < 1 {
			grow = 1
		}
		unit := st.pairCost(l)
		if float64(grow)*unit > st.budget {
			grow = int(math.Floor(st.budget / unit))
		}
		if grow < 1 {
			logrus.Infof("mlmc: run %s: budget exhausted after %d iterations, estimate %g",
				result.RunID, len(result.Iterations), result.Estimate)
			break
		}
		st.sampleLevel(l, grow)
		st.refreshCosts()
		st.iterate(result)
	}

	result.NSamples = make([]int, len(e.Levels))
	for l, ld := range st.data {
		result.NSamples[l] = ld.n()
	}
	result.Costs = append([]float64(nil), st.costs...)
	return result, nil
}

func (e *Engine) validate() error {
	if len(e.Levels) == 0 {
		return &uqstat.ConfigError{Component: "mlmc", Reason: "no levels"}
	}
	if e.Space == nil {
		return &uqstat.ConfigError{Component: "mlmc", Reason: "nil uncertain space"}
	}
	if !(e.Budget > 0) {
		return &uqstat.ConfigError{Component: "mlmc", Reason: "budget must be positive"}
	}
	for i := range e.Levels {
		if err := e.Levels[i].validate(i); err != nil {
			return err
		}
	}
	if e.Variant != VariantNone {
		if _, ok := e.pilotOrDefault().(MeanPilot); !ok {
			return &uqstat.ConfigError{Component: "mlmc", Reason: "control variates support the Mean pilot only"}
		}
		if err := e.validateSurrogates(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pilotOrDefault() Pilot {
	if e.Pilot == nil {
		return MeanPilot{}
	}
	return e.Pilot
}

// runState is the per-execution mutable state. It is destroyed when Execute
// returns; the Result is the only retained output.
type runState struct {
	engine  *Engine
	pilot   Pilot
	data    []*levelData
	costs   []float64 // per-level unit cost, normalized so the finest is 1
	evals   []int
	elapsed []time.Duration
	budget  float64

	empirical bool // any configured cost was NaN: measured costs take over
	selected  int
	estimate  float64
}

// initCosts normalizes the configured costs so the finest level costs 1.
// Any NaN switches the run to empirical cost estimation for every level,
// permanently.
func (st *runState) initCosts() {
	levels := st.engine.Levels
	ref := levels[len(levels)-1].Cost
	for l := range levels {
		if math.IsNaN(levels[l].Cost) {
			st.empirical = true
		}
	}
	if st.empirical || math.IsNaN(ref) {
		st.empirical = true
		for l := range st.costs {
			st.costs[l] = math.NaN()
		}
		return
	}
	for l := range levels {
		st.costs[l] = levels[l].Cost / ref
	}
}

// refreshCosts re-derives the normalized per-level costs from measured
// wall-clock time when running empirically.
func (st *runState) refreshCosts() {
	if !st.empirical {
		return
	}
	last := len(st.costs) - 1
	refPer := st.perEval(last)
	if refPer <= 0 {
		return
	}
	for l := range st.costs {
		if per := st.perEval(l); per > 0 {
			st.costs[l] = per / refPer
		}
	}
}

func (st *runState) perEval(l int) float64 {
	if st.evals[l] == 0 {
		return 0
	}
	return st.elapsed[l].Seconds() / float64(st.evals[l])
}

// pairCost is the cost of one paired draw at level l: one fine evaluation
// plus one coarse evaluation (C_{-1} = 0).
func (st *runState) pairCost(l int) float64 {
	c := st.costs[l]
	if l > 0 {
		c += st.costs[l-1]
	}
	if math.IsNaN(c) || c <= 0 {
		// Costs not measured yet; a paired draw cannot be cheaper than a
		// single finest evaluation at the top level.
		return 1
	}
	return c
}

func (st *runState) checkMinimumBudget() error {
	if st.empirical {
		// Unknown costs cannot imply a minimum; the loop terminates on the
		// measured budget instead.
		return nil
	}
	var min float64
	for l := range st.engine.Levels {
		min += float64(st.engine.Levels[l].NInitial) * st.pairCost(l)
	}
	if min > st.engine.Budget {
		return &uqstat.ConfigError{
			Component: "mlmc",
			Reason:    fmt.Sprintf("initial sample counts imply a minimum budget of %g, above the total budget %g", min, st.engine.Budget),
		}
	}
	return nil
}

// sampleLevel draws n paired realizations at level l: the level model and
// its coarser neighbor are evaluated at the same draws, which is what makes
// the telescoping difference low-variance. Level 0 pairs against the zero
// function. Wall-clock time is accumulated per model for empirical costs.
func (st *runState) sampleLevel(l, n int) {
	levels := st.engine.Levels
	us := st.engine.Space.Sample(n)
	ld := st.data[l]
	active := activeSurrogates(st.engine.Variant, l, levels)
	if ld.surr == nil && len(active) > 0 {
		ld.surr = make([][]float64, len(active))
	}
	for i := 0; i < n; i++ {
		u := us.RawRowView(i)

		start := time.Now()
		fine := levels[l].Model(u)
		st.elapsed[l] += time.Since(start)
		st.evals[l]++

		var coarse float64
		if l > 0 {
			start = time.Now()
			coarse = levels[l-1].Model(u)
			st.elapsed[l-1] += time.Since(start)
			st.evals[l-1]++
		}
		ld.fine = append(ld.fine, fine)
		ld.coarse = append(ld.coarse, coarse)
		for j, s := range active {
			ld.surr[j] = append(ld.surr[j], s.Predict(u))
		}
	}
	st.budget -= float64(n) * st.pairCost(l)
}

// iterate recomputes the pilot quantities, the current estimate, and the
// next level to grow, and appends the iteration record.
func (st *runState) iterate(result *Result) {
	levels := st.engine.Levels
	best := -1
	bestScore := math.Inf(-1)
	variances := make([]float64, len(levels))
	for l, ld := range st.data {
		variances[l] = st.pilot.VarianceProxy(ld)
		nl := float64(ld.n())
		score := variances[l] / (levels[l].SamplingRatio * nl * nl * st.pairCost(l))
		if score > bestScore {
			bestScore = score
			best = l
		}
	}
	st.selected = best
	st.estimate = st.assembleEstimate()
	result.Estimate = st.estimate
	result.Iterations = append(result.Iterations, Iteration{
		Level:     best,
		NSamples:  st.data[best].n(),
		Budget:    st.budget,
		Estimate:  st.estimate,
		Variances: variances,
	})
	result.BudgetHistory = append(result.BudgetHistory, st.budget)
	logrus.Debugf("mlmc: iter %03d: estimate %g, next level %d, budget %g",
		len(result.Iterations), st.estimate, best, st.budget)
}

// assembleEstimate telescopes the per-level contributions, with the
// control-variate correction per level when a variant is active.
func (st *runState) assembleEstimate() float64 {
	var sum float64
	for l, ld := range st.data {
		contrib := st.pilot.Contribution(ld)
		if len(ld.surr) > 0 {
			contrib -= cvCorrection(ld, st.activeMeans(l))
		}
		sum += contrib
	}
	return sum
}

func (st *runState) activeMeans(l int) []float64 {
	active := activeSurrogates(st.engine.Variant, l, st.engine.Levels)
	means := make([]float64, len(active))
	for i, s := range active {
		means[i] = s.Mean
	}
	return means
}

// cvCorrection is the multivariate control-variate term
// sum_j alpha_j (mean(g_j) - E[g_j]) with alpha solved from the covariance
// system of the telescoping difference against the active surrogates.
func cvCorrection(ld *levelData, surrMeans []float64) float64 {
	alpha := uqstat.ControlVariateCoeffs(ld.diffs(), ld.surr)
	var corr float64
	for j, g := range ld.surr {
		var mean float64
		for _, v := range g {
			mean += v
		}
		mean /= float64(len(g))
		corr += alpha[j] * (mean - surrMeans[j])
	}
	return corr
}
