package uqstat

import "gonum.org/v1/gonum/mat"

// Evaluator is the opaque multidisciplinary model. The coupling solver behind
// it (MDA, discipline execution) is outside this package; uqstat only needs
// outputs from (design, uncertain) input pairs.
type Evaluator interface {
	// Evaluate runs the model at design values x and uncertain values u.
	Evaluate(x, u []float64) ([]float64, error)
	// EvaluateBatch runs the model at x over every row of us, returning one
	// output row per input row. Vectorization across rows is the evaluator's
	// concern, not uqstat's.
	EvaluateBatch(x []float64, us mat.Matrix) (*mat.Dense, error)
}

// GradEvaluator is an Evaluator that also differentiates its outputs with
// respect to the design variables.
type GradEvaluator interface {
	Evaluator
	// EvaluateWithJac returns the outputs and the k×dx Jacobian at (x, u).
	EvaluateWithJac(x, u []float64) ([]float64, *mat.Dense, error)
}

// TaylorEvaluator supplies the local expansion of the model around the mean
// of the uncertain variables, for the Taylor-polynomial technique: the value
// f(x, mu), the k×d Jacobian with respect to u, and optionally the per-output
// d×d Hessians with respect to u.
type TaylorEvaluator interface {
	ExpandAtMean(x, mu []float64, withHessian bool) (*TaylorData, error)
}

// TaylorGradEvaluator additionally differentiates the expansion with respect
// to the design variables, enabling Jacobians of Taylor statistics.
type TaylorGradEvaluator interface {
	TaylorEvaluator
	// ExpandGradAtMean returns the k×dx Jacobian of f(x, mu) with respect to
	// x, and per output a d×dx matrix holding the derivative of each
	// u-gradient component with respect to each design variable.
	ExpandGradAtMean(x, mu []float64) (xJac *mat.Dense, xuJac []*mat.Dense, err error)
}

// TaylorData is the expansion of the model at u = mu.
type TaylorData struct {
	Value []float64       // f(x, mu), length k
	UJac  *mat.Dense      // k×d, df/du at mu
	UHess []*mat.SymDense // optional, one d×d Hessian per output
}

// UncertainSpace describes the random variables the samples are drawn over.
// The variable order is fixed and defines the column order of all sample
// matrices. Implementations are immutable during a statistic estimation; the
// uspace subpackage provides independent-marginal spaces over gonum distuv.
type UncertainSpace interface {
	Dim() int
	Mean() []float64
	StdDev() []float64
	// Sample draws n independent realizations, one per row of the returned
	// n×Dim matrix.
	Sample(n int) *mat.Dense
}
