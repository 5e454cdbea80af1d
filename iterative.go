package uqstat

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Accumulator is the streaming counterpart of the batch estimators: it is fed
// one sample row at a time and keeps O(k) state regardless of the number of
// updates. After n updates the estimate matches the batch estimator applied
// to the same n rows to floating-point tolerance.
//
// Mean and variance use Welford's one-pass recurrence; the variance reported
// is the population variance (m2/n) to agree with the batch path. The
// exceedance probability keeps a running counter.
type Accumulator struct {
	stat  Statistic
	count int

	mean []float64
	m2   []float64
	hits []float64

	// Jacobian state, allocated on the first UpdateWithJac.
	meanJac  *mat.Dense // running mean of per-sample Jacobians
	crossJac *mat.Dense // running mean of f_j * dF_j/dx
}

// NewAccumulator returns a streaming estimator for the statistic, sized for
// k output components.
func NewAccumulator(stat Statistic, k int) *Accumulator {
	a := &Accumulator{stat: stat}
	a.Reset(k)
	return a
}

// Reset discards all accumulated state and re-sizes for k output components.
func (a *Accumulator) Reset(k int) {
	a.count = 0
	a.mean = make([]float64, k)
	a.m2 = make([]float64, k)
	a.hits = make([]float64, k)
	a.meanJac = nil
	a.crossJac = nil
}

// Count returns the number of samples consumed since the last Reset.
func (a *Accumulator) Count() int { return a.count }

// Update consumes one sample row and returns the current estimate.
func (a *Accumulator) Update(sample []float64) []float64 {
	a.consume(sample)
	return a.Estimate()
}

// UpdateWithJac consumes one sample row and its k×dx Jacobian.
func (a *Accumulator) UpdateWithJac(sample []float64, jac *mat.Dense) {
	a.consume(sample)
	if a.meanJac == nil {
		k, dx := jac.Dims()
		a.meanJac = mat.NewDense(k, dx, nil)
		a.crossJac = mat.NewDense(k, dx, nil)
	}
	inv := 1 / float64(a.count)
	k, dx := jac.Dims()
	for j := 0; j < k; j++ {
		for m := 0; m < dx; m++ {
			a.meanJac.Set(j, m, a.meanJac.At(j, m)+(jac.At(j, m)-a.meanJac.At(j, m))*inv)
			cross := sample[j] * jac.At(j, m)
			a.crossJac.Set(j, m, a.crossJac.At(j, m)+(cross-a.crossJac.At(j, m))*inv)
		}
	}
}

func (a *Accumulator) consume(sample []float64) {
	a.count++
	for j, v := range sample {
		delta := v - a.mean[j]
		a.mean[j] += delta / float64(a.count)
		a.m2[j] += delta * (v - a.mean[j])
		if a.stat.Kind == KindProbability && a.stat.exceeds(v) {
			a.hits[j]++
		}
	}
}

// Estimate returns the statistic over everything consumed so far.
func (a *Accumulator) Estimate() []float64 {
	k := len(a.mean)
	out := make([]float64, k)
	n := float64(a.count)
	for j := 0; j < k; j++ {
		switch a.stat.Kind {
		case KindMean:
			out[j] = a.mean[j]
		case KindVariance:
			out[j] = a.m2[j] / n
		case KindStandardDeviation:
			out[j] = math.Sqrt(a.m2[j] / n)
		case KindMargin:
			out[j] = a.mean[j] + a.stat.Factor*math.Sqrt(a.m2[j]/n)
		case KindProbability:
			out[j] = a.hits[j] / n
		}
	}
	return out
}

// EstimateJacobian returns the Jacobian of the statistic over everything
// consumed so far. The variance path carries the n/(n-1) correction once
// more than one sample has been seen; this intentionally differs from the
// uncorrected batch formula.
func (a *Accumulator) EstimateJacobian() (*mat.Dense, error) {
	if a.stat.Kind == KindProbability {
		return nil, &DifferentiabilityError{
			Statistic: a.stat.String(),
			Reason:    "the exceedance indicator has no closed-form derivative",
		}
	}
	if a.meanJac == nil {
		return nil, &MissingArtifactError{Function: a.stat.String(), Artifact: ArtifactJacSamples}
	}
	k, dx := a.meanJac.Dims()
	if a.stat.Kind == KindMean {
		out := mat.NewDense(k, dx, nil)
		out.CloneFrom(a.meanJac)
		return out, nil
	}

	scale := 1.0
	if a.count > 1 {
		scale = float64(a.count) / float64(a.count-1)
	}
	vj := mat.NewDense(k, dx, nil)
	for j := 0; j < k; j++ {
		for m := 0; m < dx; m++ {
			cross := a.crossJac.At(j, m) - a.mean[j]*a.meanJac.At(j, m)
			vj.Set(j, m, 2*scale*cross)
		}
	}
	if a.stat.Kind == KindVariance {
		return vj, nil
	}

	// StandardDeviation and Margin chain through sqrt(Var).
	n := float64(a.count)
	sj := mat.NewDense(k, dx, nil)
	for j := 0; j < k; j++ {
		den := 2 * math.Sqrt(a.m2[j]/n)
		if den < epsDenominator {
			den = epsDenominator
		}
		for m := 0; m < dx; m++ {
			sj.Set(j, m, vj.At(j, m)/den)
		}
	}
	if a.stat.Kind == KindStandardDeviation {
		return sj, nil
	}
	// Margin.
	out := mat.NewDense(k, dx, nil)
	for j := 0; j < k; j++ {
		for m := 0; m < dx; m++ {
			out.Set(j, m, a.meanJac.At(j, m)+a.stat.Factor*sj.At(j, m))
		}
	}
	return out, nil
}
