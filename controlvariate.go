package uqstat

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// cvEstimate is the classical control-variate identity, per output
// component:
//
//	estimate_j = mean(f_j) + alpha_j * ( mean(g_j) - g_j(mu) )
//	alpha_j    = -cov(f_j, g_j) / var(g_j)
//
// Because E[g] equals g(mu) exactly for the first-order surrogate, the
// correction has zero expectation: the estimate stays unbiased while the
// correlated surrogate cancels variance. The denominator is floored against
// zero-variance (constant) surrogates.
//
// outputs and preds are n×k: paired evaluations of the real model and the
// surrogate at the same uncertain realizations. predAtMean is g(mu).
func cvEstimate(outputs, preds *mat.Dense, predAtMean []float64) []float64 {
	n, k := outputs.Dims()
	out := make([]float64, k)
	f := make([]float64, n)
	g := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(f, j, outputs)
		mat.Col(g, j, preds)
		alpha := cvAlpha(f, g)
		out[j] = stat.Mean(f, nil) + alpha*(stat.Mean(g, nil)-predAtMean[j])
	}
	return out
}

func cvAlpha(f, g []float64) float64 {
	// A single paired draw cannot estimate the covariance; full subtraction
	// is the right coefficient when the surrogate mean is exact.
	if len(f) < 2 {
		return -1
	}
	den := stat.Variance(g, nil)
	if den < epsDenominator {
		den = epsDenominator
	}
	return -stat.Covariance(f, g, nil) / den
}

// ControlVariateCoeffs solves for the coefficient vector of several
// simultaneous control variates:
//
//	Cov(g) alpha = Cov(f, g)
//
// fs is the real-model sample vector; gs holds one equal-length sample
// vector per control variate. When the covariance system is singular
// (degenerate surrogates) the solve falls back to per-variate scalar
// coefficients with floored denominators rather than failing.
func ControlVariateCoeffs(fs []float64, gs [][]float64) []float64 {
	nCV := len(gs)
	n := len(fs)
	// First column holds f, the rest the control variates, so the covariance
	// matrix carries both the cross terms and the variate covariances.
	data := mat.NewDense(n, nCV+1, nil)
	for i := 0; i < n; i++ {
		data.Set(i, 0, fs[i])
		for j, g := range gs {
			data.Set(i, j+1, g[i])
		}
	}
	covmat := mat.NewSymDense(nCV+1, nil)
	stat.CovarianceMatrix(covmat, data, nil)

	covWithF := mat.NewVecDense(nCV, nil)
	for i := 0; i < nCV; i++ {
		covWithF.SetVec(i, covmat.At(0, i+1))
	}
	cvCov := covmat.SliceSym(1, nCV+1).(*mat.SymDense)

	alpha := make([]float64, nCV)
	alphaVec := mat.NewVecDense(nCV, alpha)
	if err := alphaVec.SolveVec(cvCov, covWithF); err != nil {
		for i, g := range gs {
			alpha[i] = -cvAlpha(fs, g)
		}
	}
	return alpha
}
