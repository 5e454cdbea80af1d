package uqstat

import (
	"gonum.org/v1/gonum/mat"
)

// TaylorPolynomial estimates statistics from the expansion of the model
// around the mean of the uncertain variables instead of from samples. The
// first-order variant linearizes; the second-order variant adds the Hessian
// correction to the mean, at the cost of one Hessian evaluation.
type TaylorPolynomial struct {
	model       TaylorEvaluator
	space       UncertainSpace
	secondOrder bool
}

// NewTaylorPolynomial returns the expansion-based formulation.
func NewTaylorPolynomial(model TaylorEvaluator, space UncertainSpace, secondOrder bool) *TaylorPolynomial {
	return &TaylorPolynomial{model: model, space: space, secondOrder: secondOrder}
}

func (t *TaylorPolynomial) Name() string { return "TaylorPolynomial" }

// Produce evaluates the expansion at u = mu. The returned batch holds the
// model value at the mean as its single row, with the derivative data
// alongside.
func (t *TaylorPolynomial) Produce(x []float64) (*SampleBatch, error) {
	mu := t.space.Mean()
	data, err := t.model.ExpandAtMean(x, mu, t.secondOrder)
	if err != nil {
		return nil, err
	}
	outputs := mat.NewDense(1, len(data.Value), nil)
	outputs.SetRow(0, data.Value)
	return &SampleBatch{Point: append([]float64(nil), x...), Outputs: outputs, Taylor: data}, nil
}

func (t *TaylorPolynomial) Estimate(b *SampleBatch, stat Statistic) ([]float64, error) {
	if b.Taylor == nil {
		return nil, &MissingArtifactError{Function: stat.String(), Artifact: "taylor expansion"}
	}
	return taylorEstimate(stat, b.Taylor, t.space.StdDev(), t.secondOrder)
}

func (t *TaylorPolynomial) EstimateJacobian(b *SampleBatch, stat Statistic) (*mat.Dense, error) {
	grad, ok := t.model.(TaylorGradEvaluator)
	if !ok {
		return nil, &DifferentiabilityError{
			Statistic: stat.String(),
			Reason:    "the model does not differentiate its expansion",
		}
	}
	xJac, xuJac, err := grad.ExpandGradAtMean(b.Point, t.space.Mean())
	if err != nil {
		return nil, err
	}
	return taylorEstimateJac(stat, b.Taylor, t.space.StdDev(), xJac, xuJac)
}
