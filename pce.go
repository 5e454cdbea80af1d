package uqstat

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/uqlab/uqstat/surrogate"
	"github.com/uqlab/uqstat/uspace"
)

// PCE is the polynomial-chaos formulation: it regresses a chaos expansion on
// the sampled outputs and reads the statistics in closed form off the
// orthonormal coefficients. When the model differentiates, the Jacobian
// samples are regressed the same way, giving closed-form statistic
// Jacobians.
type PCE struct {
	model Evaluator
	space *uspace.Space
	n     int
	order int
}

// NewPCE returns the chaos-regression formulation with nSamples training
// draws and the given expansion order.
func NewPCE(model Evaluator, space *uspace.Space, nSamples, order int) (*PCE, error) {
	if order < 1 {
		return nil, &ConfigError{Component: "PCE", Reason: "expansion order must be at least 1"}
	}
	min := 1 + order*space.Dim()
	if nSamples < min {
		return nil, &ConfigError{Component: "PCE", Reason: "fewer samples than expansion terms"}
	}
	return &PCE{model: model, space: space, n: nSamples, order: order}, nil
}

func (p *PCE) Name() string { return "PCE" }

func (p *PCE) Produce(x []float64) (*SampleBatch, error) {
	us := p.space.Sample(p.n)
	return evaluateOverSamples(p.model, x, us)
}

func (p *PCE) Estimate(b *SampleBatch, stat Statistic) ([]float64, error) {
	exps, err := p.expansions(b)
	if err != nil {
		return nil, err
	}
	k := len(exps)
	out := make([]float64, k)
	for j, e := range exps {
		switch stat.Kind {
		case KindMean:
			out[j] = e.Mean()
		case KindVariance:
			out[j] = e.Variance()
		case KindStandardDeviation:
			out[j] = math.Sqrt(e.Variance())
		case KindMargin:
			out[j] = e.Mean() + stat.Factor*math.Sqrt(e.Variance())
		case KindProbability:
			// The indicator has no spectral closed form; resample the
			// cheap expansion instead of the real model.
			out[j] = p.exceedanceFromExpansion(e, stat)
		default:
			return nil, &ConfigError{Component: "PCE", Reason: "unknown kind " + stat.Kind.String()}
		}
	}
	return out, nil
}

// EstimateJacobian regresses each design-variable derivative onto the same
// basis. The constant coefficients give the mean Jacobian; the variance
// Jacobian is 2*sum_i c_i c'_i over the non-constant coefficients.
func (p *PCE) EstimateJacobian(b *SampleBatch, stat Statistic) (*mat.Dense, error) {
	if !b.HasJac() {
		return nil, &DifferentiabilityError{Statistic: stat.String(), Reason: "the model does not differentiate"}
	}
	if stat.Kind == KindProbability {
		return nil, &DifferentiabilityError{Statistic: stat.String(), Reason: "the exceedance indicator has no closed-form derivative"}
	}
	exps, err := p.expansions(b)
	if err != nil {
		return nil, err
	}
	k, dx := b.Jac[0].Dims()
	n := b.Len()
	chaos := &surrogate.Chaos{Order: p.order, Space: p.space}
	out := mat.NewDense(k, dx, nil)
	fs := make([]float64, n)
	for j := 0; j < k; j++ {
		for m := 0; m < dx; m++ {
			for i := 0; i < n; i++ {
				fs[i] = b.Jac[i].At(j, m)
			}
			de, err := chaos.Fit(b.Inputs, fs)
			if err != nil {
				return nil, err
			}
			v, err := pceJacEntry(stat, exps[j], de)
			if err != nil {
				return nil, err
			}
			out.Set(j, m, v)
		}
	}
	return out, nil
}

func pceJacEntry(stat Statistic, e, de *surrogate.Expansion) (float64, error) {
	var varJac float64
	for i := 1; i < len(e.Coeffs); i++ {
		varJac += 2 * e.Coeffs[i] * de.Coeffs[i]
	}
	switch stat.Kind {
	case KindMean:
		return de.Mean(), nil
	case KindVariance:
		return varJac, nil
	case KindStandardDeviation:
		return varJac / flooredStdDen(e.Variance()), nil
	case KindMargin:
		return de.Mean() + stat.Factor*varJac/flooredStdDen(e.Variance()), nil
	}
	return 0, &ConfigError{Component: "PCE", Reason: "unknown kind " + stat.Kind.String()}
}

func flooredStdDen(variance float64) float64 {
	den := 2 * math.Sqrt(variance)
	if den < epsDenominator {
		den = epsDenominator
	}
	return den
}

func (p *PCE) expansions(b *SampleBatch) ([]*surrogate.Expansion, error) {
	k := b.OutDim()
	n := b.Len()
	chaos := &surrogate.Chaos{Order: p.order, Space: p.space}
	exps := make([]*surrogate.Expansion, k)
	fs := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(fs, j, b.Outputs)
		e, err := chaos.Fit(b.Inputs, fs)
		if err != nil {
			return nil, err
		}
		exps[j] = e
	}
	return exps, nil
}

const pceResampleFactor = 100

func (p *PCE) exceedanceFromExpansion(e *surrogate.Expansion, stat Statistic) float64 {
	n := p.n * pceResampleFactor
	us := p.space.Sample(n)
	var hits float64
	for i := 0; i < n; i++ {
		if stat.exceeds(e.Predict(us.RawRowView(i))) {
			hits++
		}
	}
	return hits / float64(n)
}
