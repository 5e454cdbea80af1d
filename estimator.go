package uqstat

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// epsDenominator floors denominators that legitimately underflow to zero at
// degenerate sample sets (constant outputs). Flooring keeps the outer
// optimization alive with a less informative gradient instead of crashing.
const epsDenominator = 0x1p-52

// Estimate applies the batch estimator for s to the sample batch, returning
// one value per output component.
func (s Statistic) Estimate(b *SampleBatch) ([]float64, error) {
	n := b.Len()
	k := b.OutDim()
	switch s.Kind {
	case KindMean:
		return columnMeans(b.Outputs), nil
	case KindVariance:
		return columnVariances(b.Outputs), nil
	case KindStandardDeviation:
		v := columnVariances(b.Outputs)
		for i := range v {
			v[i] = math.Sqrt(v[i])
		}
		return v, nil
	case KindMargin:
		m := columnMeans(b.Outputs)
		v := columnVariances(b.Outputs)
		for i := range m {
			m[i] += s.Factor * math.Sqrt(v[i])
		}
		return m, nil
	case KindProbability:
		p := make([]float64, k)
		for i := 0; i < n; i++ {
			for j := 0; j < k; j++ {
				if s.exceeds(b.Outputs.At(i, j)) {
					p[j]++
				}
			}
		}
		for j := range p {
			p[j] /= float64(n)
		}
		return p, nil
	}
	return nil, &ConfigError{Component: "statistic", Reason: "unknown kind " + s.Kind.String()}
}

// EstimateJacobian applies the batch Jacobian estimator for s, returning a
// k×dx matrix. The batch must carry per-sample Jacobians.
func (s Statistic) EstimateJacobian(b *SampleBatch) (*mat.Dense, error) {
	if !b.HasJac() {
		return nil, &MissingArtifactError{Function: s.String(), Artifact: ArtifactJacSamples}
	}
	switch s.Kind {
	case KindMean:
		// Linearity of expectation: the Jacobian of the mean is the mean of
		// the per-sample Jacobians.
		return meanJac(b.Jac), nil
	case KindVariance:
		return varianceJac(b, 1), nil
	case KindStandardDeviation:
		return stdDevJac(b), nil
	case KindMargin:
		mj := meanJac(b.Jac)
		sj := stdDevJac(b)
		mj.Apply(func(i, j int, v float64) float64 {
			return v + s.Factor*sj.At(i, j)
		}, mj)
		return mj, nil
	case KindProbability:
		return nil, &DifferentiabilityError{
			Statistic: s.String(),
			Reason:    "the exceedance indicator has no closed-form derivative",
		}
	}
	return nil, &ConfigError{Component: "statistic", Reason: "unknown kind " + s.Kind.String()}
}

func (s Statistic) exceeds(v float64) bool {
	if s.Greater {
		return v >= s.Threshold
	}
	return v <= s.Threshold
}

func columnMeans(m *mat.Dense) []float64 {
	n, k := m.Dims()
	out := make([]float64, k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out[j] += m.At(i, j)
		}
	}
	for j := range out {
		out[j] /= float64(n)
	}
	return out
}

// columnVariances computes the population variance (divide by n) of each
// column. The iterative Jacobian path applies its own n/(n-1) correction.
func columnVariances(m *mat.Dense) []float64 {
	n, k := m.Dims()
	mean := columnMeans(m)
	out := make([]float64, k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			d := m.At(i, j) - mean[j]
			out[j] += d * d
		}
	}
	for j := range out {
		out[j] /= float64(n)
	}
	return out
}

func meanJac(jacs []*mat.Dense) *mat.Dense {
	k, dx := jacs[0].Dims()
	out := mat.NewDense(k, dx, nil)
	for _, j := range jacs {
		out.Add(out, j)
	}
	out.Scale(1/float64(len(jacs)), out)
	return out
}

// varianceJac is d/dx of the per-component variance:
//
//	dVar_j/dx = 2*( mean(f_j * df_j/dx) - mean(f_j)*mean(df_j/dx) )
//
// scale multiplies the result; the iterative estimator passes n/(n-1).
func varianceJac(b *SampleBatch, scale float64) *mat.Dense {
	n := b.Len()
	k, dx := b.Jac[0].Dims()
	meanF := columnMeans(b.Outputs)
	mJac := meanJac(b.Jac)
	out := mat.NewDense(k, dx, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			f := b.Outputs.At(i, j)
			for m := 0; m < dx; m++ {
				out.Set(j, m, out.At(j, m)+f*b.Jac[i].At(j, m))
			}
		}
	}
	for j := 0; j < k; j++ {
		for m := 0; m < dx; m++ {
			cross := out.At(j, m)/float64(n) - meanF[j]*mJac.At(j, m)
			out.Set(j, m, 2*scale*cross)
		}
	}
	return out
}

// stdDevJac applies the chain rule dStd/dx = dVar/dx / (2*sqrt(Var)), with
// the denominator floored against variance underflow.
func stdDevJac(b *SampleBatch) *mat.Dense {
	vj := varianceJac(b, 1)
	v := columnVariances(b.Outputs)
	k, dx := vj.Dims()
	for j := 0; j < k; j++ {
		den := 2 * math.Sqrt(v[j])
		if den < epsDenominator {
			den = epsDenominator
		}
		for m := 0; m < dx; m++ {
			vj.Set(j, m, vj.At(j, m)/den)
		}
	}
	return vj
}
