package uqstat

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Sequential is the streaming Monte Carlo formulation. The sample count
// grows by a fixed increment every time the optimizer moves to a new design
// point, and the accumulated estimate is updated from the new draws only:
// already-consumed samples are never re-processed, so memory stays O(k) in
// the estimator state.
type Sequential struct {
	model     Evaluator
	space     UncertainSpace
	nInitial  int
	increment int

	target int
	accums map[Statistic]*Accumulator
}

// NewSequential returns a streaming formulation that consumes nInitial draws
// at the first design point and increment more at each subsequent one.
func NewSequential(model Evaluator, space UncertainSpace, nInitial, increment int) (*Sequential, error) {
	if nInitial < 1 {
		return nil, &ConfigError{Component: "Sequential", Reason: "need at least one initial sample"}
	}
	if increment < 1 {
		return nil, &ConfigError{Component: "Sequential", Reason: "sample increment must be positive"}
	}
	return &Sequential{
		model:     model,
		space:     space,
		nInitial:  nInitial,
		increment: increment,
		target:    nInitial,
		accums:    make(map[Statistic]*Accumulator),
	}, nil
}

func (s *Sequential) Name() string { return "Sequential" }

// OnNewPoint advances the sampling schedule; the Session calls it through
// the cache-invalidation hook when the optimizer supplies a new point.
func (s *Sequential) OnNewPoint() {
	if len(s.accums) == 0 {
		return // first point keeps the initial target
	}
	s.target += s.increment
	logrus.Debugf("uqstat: Sequential: sample target now %d", s.target)
}

// Produce draws only the samples still missing to reach the current target.
func (s *Sequential) Produce(x []float64) (*SampleBatch, error) {
	draw := s.target
	for _, a := range s.accums {
		if got := a.Count(); s.target-got < draw {
			draw = s.target - got
		}
	}
	if draw < 1 {
		draw = s.increment
	}
	us := s.space.Sample(draw)
	return evaluateOverSamples(s.model, x, us)
}

// Estimate feeds the fresh draws into the persistent accumulator for the
// statistic and returns the running estimate over everything consumed so
// far.
func (s *Sequential) Estimate(b *SampleBatch, stat Statistic) ([]float64, error) {
	a := s.accumFor(stat, b)
	s.feed(a, b)
	return a.Estimate(), nil
}

func (s *Sequential) EstimateJacobian(b *SampleBatch, stat Statistic) (*mat.Dense, error) {
	if !b.HasJac() {
		return nil, &DifferentiabilityError{Statistic: stat.String(), Reason: "the model does not differentiate"}
	}
	a := s.accumFor(stat, b)
	s.feed(a, b)
	return a.EstimateJacobian()
}

func (s *Sequential) accumFor(stat Statistic, b *SampleBatch) *Accumulator {
	a, ok := s.accums[stat]
	if !ok {
		a = NewAccumulator(stat, b.OutDim())
		s.accums[stat] = a
	}
	return a
}

// feed pushes the batch rows the accumulator has not seen yet. Value and
// Jacobian requests at one point share the same produced batch, so only the
// rows beyond the accumulator's count are new.
func (s *Sequential) feed(a *Accumulator, b *SampleBatch) {
	have := a.Count()
	if have >= s.target {
		return
	}
	n := b.Len()
	start := n - (s.target - have)
	if start < 0 {
		start = 0
	}
	for i := start; i < n; i++ {
		row := mat.Row(nil, i, b.Outputs)
		if b.HasJac() {
			a.UpdateWithJac(row, b.Jac[i])
		} else {
			a.Update(row)
		}
	}
}
