package uqstat

import (
	"gonum.org/v1/gonum/mat"
)

// ControlVariate combines real model samples with a cheap surrogate whose
// mean under the uncertain space is known exactly. By default the surrogate
// is the first-order Taylor polynomial of the model at the mean,
//
//	g(x, u) = f(x, mu) + (u - mu) . df/du(x, mu)
//
// whose expectation is f(x, mu). The paired evaluations (same realizations
// through f and g) feed the control-variate estimator, which subtracts the
// correlated surrogate fluctuation from the crude Monte Carlo mean.
type ControlVariate struct {
	model  Evaluator
	taylor TaylorEvaluator
	space  UncertainSpace
	n      int
}

// NewControlVariate returns the control-variate formulation with nSamples
// paired draws per design point. The model must expose its expansion at the
// mean, which builds the linear surrogate.
func NewControlVariate(model Evaluator, taylor TaylorEvaluator, space UncertainSpace, nSamples int) (*ControlVariate, error) {
	if nSamples < 1 {
		return nil, &ConfigError{Component: "ControlVariate", Reason: "need at least one sample"}
	}
	if taylor == nil {
		return nil, &ConfigError{Component: "ControlVariate", Reason: "nil expansion evaluator"}
	}
	return &ControlVariate{model: model, taylor: taylor, space: space, n: nSamples}, nil
}

func (c *ControlVariate) Name() string { return "ControlVariate" }

// Produce draws the realizations, runs the real model over them, and pairs
// every row with the linear-surrogate prediction at the same realization.
func (c *ControlVariate) Produce(x []float64) (*SampleBatch, error) {
	us := c.space.Sample(c.n)
	b, err := evaluateOverSamples(c.model, x, us)
	if err != nil {
		return nil, err
	}
	mu := c.space.Mean()
	data, err := c.taylor.ExpandAtMean(x, mu, false)
	if err != nil {
		return nil, err
	}
	k := len(data.Value)
	dim := len(mu)
	preds := mat.NewDense(c.n, k, nil)
	for i := 0; i < c.n; i++ {
		u := us.RawRowView(i)
		for j := 0; j < k; j++ {
			g := data.Value[j]
			for d := 0; d < dim; d++ {
				g += (u[d] - mu[d]) * data.UJac.At(j, d)
			}
			preds.Set(i, j, g)
		}
	}
	b.SurrogatePreds = preds
	b.SurrogateAtMean = data.Value
	return b, nil
}

// Estimate applies the control-variate identity for the mean; other
// statistics reduce over the variance-corrected sample set.
func (c *ControlVariate) Estimate(b *SampleBatch, stat Statistic) ([]float64, error) {
	if b.SurrogatePreds == nil {
		return nil, &MissingArtifactError{Function: stat.String(), Artifact: "surrogate predictions"}
	}
	switch stat.Kind {
	case KindMean:
		return cvEstimate(b.Outputs, b.SurrogatePreds, b.SurrogateAtMean), nil
	case KindMargin:
		m := cvEstimate(b.Outputs, b.SurrogatePreds, b.SurrogateAtMean)
		sd, err := StandardDeviation().Estimate(b)
		if err != nil {
			return nil, err
		}
		for j := range m {
			m[j] += stat.Factor * sd[j]
		}
		return m, nil
	default:
		// Variance, StandardDeviation and Probability fall back to the
		// plain sampling estimators over the real-model draws.
		return stat.Estimate(b)
	}
}

func (c *ControlVariate) EstimateJacobian(b *SampleBatch, stat Statistic) (*mat.Dense, error) {
	return stat.EstimateJacobian(b)
}
