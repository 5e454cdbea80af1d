package uqstat

import (
	"gonum.org/v1/gonum/mat"
)

// Sampling is the crude Monte Carlo formulation: a fixed number of
// independent draws from the uncertain space per design point, batch
// estimators over the materialized sample matrix.
type Sampling struct {
	model Evaluator
	space UncertainSpace
	n     int
}

// NewSampling returns a crude Monte Carlo formulation with nSamples draws
// per design point.
func NewSampling(model Evaluator, space UncertainSpace, nSamples int) (*Sampling, error) {
	if nSamples < 1 {
		return nil, &ConfigError{Component: "Sampling", Reason: "need at least one sample"}
	}
	return &Sampling{model: model, space: space, n: nSamples}, nil
}

func (s *Sampling) Name() string { return "Sampling" }

// Produce draws the realizations and evaluates the model over them. When the
// model differentiates, per-sample Jacobians are produced in the same pass
// so a later Jacobian request does not trigger a second evaluation.
func (s *Sampling) Produce(x []float64) (*SampleBatch, error) {
	us := s.space.Sample(s.n)
	return evaluateOverSamples(s.model, x, us)
}

func (s *Sampling) Estimate(b *SampleBatch, stat Statistic) ([]float64, error) {
	return stat.Estimate(b)
}

func (s *Sampling) EstimateJacobian(b *SampleBatch, stat Statistic) (*mat.Dense, error) {
	return stat.EstimateJacobian(b)
}

// evaluateOverSamples runs the model over every row of us at design point x.
// A GradEvaluator is evaluated row-wise with Jacobians; a plain Evaluator
// goes through the batched entry point.
func evaluateOverSamples(model Evaluator, x []float64, us *mat.Dense) (*SampleBatch, error) {
	n, _ := us.Dims()
	grad, hasGrad := model.(GradEvaluator)
	if !hasGrad {
		outputs, err := model.EvaluateBatch(x, us)
		if err != nil {
			return nil, err
		}
		return &SampleBatch{Point: append([]float64(nil), x...), Outputs: outputs, Inputs: us}, nil
	}
	var outputs *mat.Dense
	jacs := make([]*mat.Dense, n)
	for i := 0; i < n; i++ {
		out, jac, err := grad.EvaluateWithJac(x, us.RawRowView(i))
		if err != nil {
			return nil, err
		}
		if outputs == nil {
			outputs = mat.NewDense(n, len(out), nil)
		}
		outputs.SetRow(i, out)
		jacs[i] = jac
	}
	return &SampleBatch{Point: append([]float64(nil), x...), Outputs: outputs, Jac: jacs, Inputs: us}, nil
}
