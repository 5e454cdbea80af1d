package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/uqlab/uqstat/uspace"
)

// Chaos fits a polynomial chaos expansion by regression: an orthonormal
// polynomial basis matched to each marginal (probabilists' Hermite for
// Gaussian variables, Legendre for uniform ones), individual terms up to
// Order per dimension, no cross-terms. Orthonormality gives the statistics
// in closed form from the coefficients: the mean is c_0 and the variance is
// the sum of the squared remaining coefficients.
type Chaos struct {
	Order int
	Space *uspace.Space
}

// Fit regresses the expansion coefficients on the samples. us rows are
// realizations of the space's variables in column order.
func (c *Chaos) Fit(us mat.Matrix, fs []float64) (*Expansion, error) {
	if c.Order < 1 {
		return nil, fmt.Errorf("surrogate: chaos order must be at least 1, got %d", c.Order)
	}
	t, err := newChaosTermer(c.Order, c.Space)
	if err != nil {
		return nil, err
	}
	coeffs, err := Coeffs(us, fs, t)
	if err != nil {
		return nil, err
	}
	e := &Expansion{Coeffs: coeffs, termer: t}
	e.r2 = rSquared(us, fs, e)
	return e, nil
}

// Expansion is a fitted polynomial chaos expansion.
type Expansion struct {
	Coeffs []float64
	termer *chaosTermer
	r2     float64
}

// Predict evaluates the expansion at a realization.
func (e *Expansion) Predict(u []float64) float64 {
	terms := make([]float64, len(e.Coeffs))
	e.termer.Terms(terms, u)
	return floats.Dot(terms, e.Coeffs)
}

// Mean is the closed-form expectation of the expansion: the constant
// coefficient.
func (e *Expansion) Mean() float64 { return e.Coeffs[0] }

// Variance is the closed-form variance: the squared norm of the
// non-constant coefficients, by orthonormality of the basis.
func (e *Expansion) Variance() float64 {
	var v float64
	for _, c := range e.Coeffs[1:] {
		v += c * c
	}
	return v
}

// R2 is the coefficient of determination of the regression over its own
// training samples, a quality diagnostic for the truncation order.
func (e *Expansion) R2() float64 { return e.r2 }

func rSquared(us mat.Matrix, fs []float64, e *Expansion) float64 {
	n, dim := us.Dims()
	mean := stat.Mean(fs, nil)
	row := make([]float64, dim)
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		mat.Row(row, i, us)
		r := fs[i] - e.Predict(row)
		d := fs[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

// chaosTermer builds the per-variable orthonormal univariate polynomials.
// Layout matches PolyTermer: 1, then degree-1 terms per dimension, then
// degree-2 terms, and so on.
type chaosTermer struct {
	order int
	vars  []basis1D
}

type basisFamily int

const (
	hermiteBasis basisFamily = iota
	legendreBasis
)

type basis1D struct {
	family basisFamily
	// standardization: z = (u - shift) / scale maps the variable to the
	// reference support of the family.
	shift, scale float64
}

func newChaosTermer(order int, space *uspace.Space) (*chaosTermer, error) {
	vars := make([]basis1D, space.Dim())
	for i := range vars {
		rv := space.Variable(i)
		switch d := rv.Dist.(type) {
		case distuv.Normal:
			vars[i] = basis1D{family: hermiteBasis, shift: d.Mu, scale: d.Sigma}
		case distuv.Uniform:
			vars[i] = basis1D{
				family: legendreBasis,
				shift:  (d.Max + d.Min) / 2,
				scale:  (d.Max - d.Min) / 2,
			}
		default:
			return nil, fmt.Errorf("surrogate: no chaos basis for the distribution of %q", rv.Name)
		}
	}
	return &chaosTermer{order: order, vars: vars}, nil
}

func (t *chaosTermer) NumTerms(dim int) int {
	return 1 + t.order*dim
}

func (t *chaosTermer) Terms(terms, u []float64) {
	dim := len(u)
	terms[0] = 1
	for j, b := range t.vars {
		z := (u[j] - b.shift) / b.scale
		polys := b.eval(z, t.order)
		for i := 0; i < t.order; i++ {
			terms[1+j+dim*i] = polys[i]
		}
	}
}

// eval returns the orthonormal polynomials of degree 1..order at z.
func (b basis1D) eval(z float64, order int) []float64 {
	out := make([]float64, order)
	switch b.family {
	case hermiteBasis:
		// He_{n+1} = z*He_n - n*He_{n-1}; orthonormal under the standard
		// Gaussian after dividing by sqrt(n!).
		prev, cur := 1.0, z
		fact := 1.0
		for n := 1; n <= order; n++ {
			fact *= float64(n)
			out[n-1] = cur / math.Sqrt(fact)
			prev, cur = cur, z*cur-float64(n)*prev
		}
	case legendreBasis:
		// (n+1)P_{n+1} = (2n+1)z*P_n - n*P_{n-1}; orthonormal under the
		// uniform measure on [-1, 1] after multiplying by sqrt(2n+1).
		prev, cur := 1.0, z
		for n := 1; n <= order; n++ {
			out[n-1] = cur * math.Sqrt(2*float64(n)+1)
			prev, cur = cur, ((2*float64(n)+1)*z*cur-float64(n)*prev)/float64(n+1)
		}
	}
	return out
}
