package uqstat

import "gonum.org/v1/gonum/mat"

// SampleBatch holds the model-output evaluations for one design point.
// Outputs is n×k (row per draw, column per output). Jac, when present, holds
// one k×dx Jacobian per draw (derivatives with respect to the design
// variables). Inputs, when present, is the n×d matrix of uncertain-variable
// realizations the rows of Outputs were evaluated at.
//
// A batch is immutable once handed to an estimator. The row count is
// consistent between Inputs, Outputs and Jac.
type SampleBatch struct {
	// Point is the design point the batch was produced at.
	Point   []float64
	Outputs *mat.Dense
	Jac     []*mat.Dense
	Inputs  *mat.Dense

	// Taylor carries the local expansion at u = mu for the Taylor-polynomial
	// technique, which consumes derivatives at the mean instead of raw draws.
	Taylor *TaylorData
	// SurrogatePreds and SurrogateAtMean carry the control-variate pairing:
	// surrogate predictions at the same realizations as Outputs, and the
	// surrogate value at the mean of the uncertain variables.
	SurrogatePreds  *mat.Dense
	SurrogateAtMean []float64
}

// Len returns the number of samples in the batch.
func (b *SampleBatch) Len() int {
	n, _ := b.Outputs.Dims()
	return n
}

// OutDim returns the output dimension k.
func (b *SampleBatch) OutDim() int {
	_, k := b.Outputs.Dims()
	return k
}

// HasJac reports whether per-sample Jacobians were recorded.
func (b *SampleBatch) HasJac() bool { return len(b.Jac) > 0 }
