package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Polynomial fits a polynomial using all of the individual terms up to
// Order, but none of the cross-terms:
//
//	f(x) ≈ β_0
//	       + β_0,1 * x_0 + ... + β_n,1 * x_n
//	       + β_0,2 * x_0^2 + ... + β_n,2 * x_n^2
//	       + ...
type Polynomial struct {
	Order int
}

// Fit fits the polynomial to the data samples.
func (p *Polynomial) Fit(xs mat.Matrix, fs []float64) (Predictor, error) {
	if p.Order < 1 {
		return nil, fmt.Errorf("surrogate: polynomial order must be at least 1, got %d", p.Order)
	}
	_, dim := xs.Dims()
	t := PolyTermer{Order: p.Order}
	beta, err := Coeffs(xs, fs, t)
	if err != nil {
		return nil, err
	}
	return &PolyPred{Beta: beta, Order: p.Order, Dim: dim}, nil
}

// PolyPred is a fitted polynomial.
type PolyPred struct {
	Beta  []float64
	Order int
	Dim   int
}

func (p *PolyPred) Predict(x []float64) float64 {
	if len(x) != p.Dim {
		panic("surrogate: length mismatch")
	}
	terms := make([]float64, len(p.Beta))
	PolyTermer{Order: p.Order}.Terms(terms, x)
	return floats.Dot(terms, p.Beta)
}

// PolyTermer lays the terms out as
// 1, x_1, ..., x_n, x_1^2, ..., x_n^2, ..., x_1^order, ..., x_n^order.
type PolyTermer struct {
	Order int
}

func (p PolyTermer) NumTerms(dim int) int {
	return 1 + p.Order*dim
}

func (p PolyTermer) Terms(terms, x []float64) {
	dim := len(x)
	terms[0] = 1
	for i := 0; i < p.Order; i++ {
		for j, v := range x {
			terms[1+j+dim*i] = math.Pow(v, float64(i)+1)
		}
	}
}
