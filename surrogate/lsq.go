// Package surrogate fits cheap regression models to (uncertain input,
// model output) samples. The least-squares machinery assumes the functional
// approximation
//
//	f(u) ≈ β_0*t_0(u) + β_1*t_1(u) + ... + β_n*t_n(u)
//
// where the t_i are basis functions set by a Termer and the β_i minimize the
// squared error over the training rows.
package surrogate

import (
	"gonum.org/v1/gonum/mat"
)

// Termer sets the basis functions from a particular input.
type Termer interface {
	// NumTerms returns the number of terms as a function of the input
	// dimension.
	NumTerms(dim int) int
	// Terms computes the basis terms for x, in place into terms.
	Terms(terms, x []float64)
}

// Coeffs finds the optimal coefficients for the given samples and Termer.
func Coeffs(xs mat.Matrix, fs []float64, t Termer) ([]float64, error) {
	n, dim := xs.Dims()
	nTerms := t.NumTerms(dim)
	A := mat.NewDense(n, nTerms, nil)
	terms := make([]float64, nTerms)
	row := make([]float64, dim)
	for i := 0; i < n; i++ {
		mat.Row(row, i, xs)
		t.Terms(terms, row)
		A.SetRow(i, terms)
	}

	b := mat.NewVecDense(n, fs)

	beta := make([]float64, nTerms)
	betaVec := mat.NewVecDense(nTerms, beta)
	if err := betaVec.SolveVec(A, b); err != nil {
		return nil, err
	}
	return beta, nil
}

// Fitter produces a Predictor from training samples.
type Fitter interface {
	Fit(xs mat.Matrix, fs []float64) (Predictor, error)
}

// Predictor predicts the function value at an input location.
type Predictor interface {
	Predict(x []float64) float64
}
