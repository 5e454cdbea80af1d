package uqstat

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// taylorEstimate evaluates the statistic from the local expansion of the
// model at the mean of the uncertain variables, rather than from samples.
//
// With J = df/du and per-output Hessian H at u = mu, and sigma the
// standard deviations of the uncertain variables:
//
//	Mean     ≈ f(x, mu) + 1/2 * sigma' H sigma   (second order; the first
//	           order variant drops the Hessian term)
//	Variance ≈ diag(J diag(sigma²) J')           (first-order propagation)
//
// StandardDeviation and Margin derive from the two as usual.
func taylorEstimate(s Statistic, d *TaylorData, sigma []float64, secondOrder bool) ([]float64, error) {
	k := len(d.Value)
	switch s.Kind {
	case KindMean:
		out := make([]float64, k)
		copy(out, d.Value)
		if secondOrder {
			if d.UHess == nil {
				return nil, &MissingArtifactError{Function: s.String(), Artifact: ArtifactHessian}
			}
			for j := 0; j < k; j++ {
				out[j] += 0.5 * quadForm(d.UHess[j], sigma)
			}
		}
		return out, nil
	case KindVariance:
		return taylorVariance(d, sigma), nil
	case KindStandardDeviation:
		v := taylorVariance(d, sigma)
		for j := range v {
			v[j] = math.Sqrt(v[j])
		}
		return v, nil
	case KindMargin:
		m, err := taylorEstimate(Mean(), d, sigma, secondOrder)
		if err != nil {
			return nil, err
		}
		v := taylorVariance(d, sigma)
		for j := range m {
			m[j] += s.Factor * math.Sqrt(v[j])
		}
		return m, nil
	case KindProbability:
		return nil, &ConfigError{
			Component: "TaylorPolynomial",
			Reason:    "Probability is not estimable from a local expansion",
		}
	}
	return nil, &ConfigError{Component: "statistic", Reason: "unknown kind " + s.Kind.String()}
}

// taylorEstimateJac differentiates the Taylor statistics with respect to the
// design variables. xJac is the k×dx Jacobian of f(x, mu); xuJac holds per
// output the d×dx derivative of the u-gradient.
func taylorEstimateJac(s Statistic, d *TaylorData, sigma []float64, xJac *mat.Dense, xuJac []*mat.Dense) (*mat.Dense, error) {
	k, dx := xJac.Dims()
	switch s.Kind {
	case KindMean:
		// First order: the Hessian correction is held fixed with respect
		// to x, so the mean Jacobian is the plain design-variable Jacobian.
		out := mat.NewDense(k, dx, nil)
		out.CloneFrom(xJac)
		return out, nil
	case KindVariance:
		return taylorVarianceJac(d, sigma, xuJac)
	case KindStandardDeviation:
		vj, err := taylorVarianceJac(d, sigma, xuJac)
		if err != nil {
			return nil, err
		}
		v := taylorVariance(d, sigma)
		for j := 0; j < k; j++ {
			den := 2 * math.Sqrt(v[j])
			if den < epsDenominator {
				den = epsDenominator
			}
			for m := 0; m < dx; m++ {
				vj.Set(j, m, vj.At(j, m)/den)
			}
		}
		return vj, nil
	case KindMargin:
		sj, err := taylorEstimateJac(StandardDeviation(), d, sigma, xJac, xuJac)
		if err != nil {
			return nil, err
		}
		out := mat.NewDense(k, dx, nil)
		for j := 0; j < k; j++ {
			for m := 0; m < dx; m++ {
				out.Set(j, m, xJac.At(j, m)+s.Factor*sj.At(j, m))
			}
		}
		return out, nil
	case KindProbability:
		return nil, &DifferentiabilityError{Statistic: s.String(), Reason: "not estimable from a local expansion"}
	}
	return nil, &ConfigError{Component: "statistic", Reason: "unknown kind " + s.Kind.String()}
}

func taylorVariance(d *TaylorData, sigma []float64) []float64 {
	k, dim := d.UJac.Dims()
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		for i := 0; i < dim; i++ {
			g := d.UJac.At(j, i) * sigma[i]
			out[j] += g * g
		}
	}
	return out
}

// taylorVarianceJac: dVar_j/dx_m = 2 * sum_i sigma_i² J_ji dJ_ji/dx_m.
func taylorVarianceJac(d *TaylorData, sigma []float64, xuJac []*mat.Dense) (*mat.Dense, error) {
	if xuJac == nil {
		return nil, &DifferentiabilityError{
			Statistic: "Variance",
			Reason:    "the model does not differentiate its uncertain-variable gradient",
		}
	}
	k, dim := d.UJac.Dims()
	_, dx := xuJac[0].Dims()
	out := mat.NewDense(k, dx, nil)
	for j := 0; j < k; j++ {
		for m := 0; m < dx; m++ {
			var sum float64
			for i := 0; i < dim; i++ {
				sum += sigma[i] * sigma[i] * d.UJac.At(j, i) * xuJac[j].At(i, m)
			}
			out.Set(j, m, 2*sum)
		}
	}
	return out, nil
}

func quadForm(h *mat.SymDense, sigma []float64) float64 {
	var sum float64
	for i := range sigma {
		for j := range sigma {
			sum += sigma[i] * h.At(i, j) * sigma[j]
		}
	}
	return sum
}
