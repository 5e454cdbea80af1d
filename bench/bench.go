// Package bench provides small analytic models used by the command-line
// tool and the test suite. Each model maps a design point x and an
// uncertain realization u to one output.
package bench

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/functions"

	"github.com/uqlab/uqstat"
)

// Quadratic is f(x, u) = sum_i (x_i + u_i)^2. Its expansion around the
// uncertain mean is exact, so Taylor estimates with Hessians reproduce the
// true mean under independent marginals.
type Quadratic struct{}

func (Quadratic) Evaluate(x, u []float64) ([]float64, error) {
	var s float64
	for i := range x {
		z := x[i] + u[i]
		s += z * z
	}
	return []float64{s}, nil
}

func (q Quadratic) EvaluateBatch(x []float64, us mat.Matrix) (*mat.Dense, error) {
	return evaluateRows(q, x, us)
}

func (Quadratic) EvaluateWithJac(x, u []float64) ([]float64, *mat.Dense, error) {
	jac := mat.NewDense(1, len(x), nil)
	var s float64
	for i := range x {
		z := x[i] + u[i]
		s += z * z
		jac.Set(0, i, 2*z)
	}
	return []float64{s}, jac, nil
}

func (Quadratic) ExpandAtMean(x, mu []float64, withHessian bool) (*uqstat.TaylorData, error) {
	d := len(mu)
	data := &uqstat.TaylorData{UJac: mat.NewDense(1, d, nil)}
	var s float64
	for i := range x {
		z := x[i] + mu[i]
		s += z * z
		data.UJac.Set(0, i, 2*z)
	}
	data.Value = []float64{s}
	if withHessian {
		h := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			h.SetSym(i, i, 2)
		}
		data.UHess = []*mat.SymDense{h}
	}
	return data, nil
}

func (Quadratic) ExpandGradAtMean(x, mu []float64) (*mat.Dense, []*mat.Dense, error) {
	d := len(mu)
	xJac := mat.NewDense(1, d, nil)
	xu := mat.NewDense(d, d, nil)
	for i := range x {
		xJac.Set(0, i, 2*(x[i]+mu[i]))
		xu.Set(i, i, 2)
	}
	return xJac, []*mat.Dense{xu}, nil
}

// Linear is f(x, u) = A.x + B.u + C. A first-order expansion in u is exact,
// which makes it the reference case for control-variate estimators.
type Linear struct {
	A, B []float64
	C    float64
}

func (l Linear) Evaluate(x, u []float64) ([]float64, error) {
	s := l.C
	for i, a := range l.A {
		s += a * x[i]
	}
	for i, b := range l.B {
		s += b * u[i]
	}
	return []float64{s}, nil
}

func (l Linear) EvaluateBatch(x []float64, us mat.Matrix) (*mat.Dense, error) {
	return evaluateRows(l, x, us)
}

func (l Linear) EvaluateWithJac(x, u []float64) ([]float64, *mat.Dense, error) {
	out, err := l.Evaluate(x, u)
	if err != nil {
		return nil, nil, err
	}
	jac := mat.NewDense(1, len(l.A), nil)
	for i, a := range l.A {
		jac.Set(0, i, a)
	}
	return out, jac, nil
}

func (l Linear) ExpandAtMean(x, mu []float64, withHessian bool) (*uqstat.TaylorData, error) {
	out, err := l.Evaluate(x, mu)
	if err != nil {
		return nil, err
	}
	d := len(mu)
	data := &uqstat.TaylorData{Value: out, UJac: mat.NewDense(1, d, nil)}
	for i, b := range l.B {
		data.UJac.Set(0, i, b)
	}
	if withHessian {
		data.UHess = []*mat.SymDense{mat.NewSymDense(d, nil)}
	}
	return data, nil
}

// Rosenbrock evaluates the extended Rosenbrock function at x + u. It has
// no analytic expansion here, so only sampling techniques apply.
type Rosenbrock struct{}

func (Rosenbrock) Evaluate(x, u []float64) ([]float64, error) {
	z := make([]float64, len(x))
	for i := range x {
		z[i] = x[i] + u[i]
	}
	return []float64{functions.ExtendedRosenbrock{}.Func(z)}, nil
}

func (r Rosenbrock) EvaluateBatch(x []float64, us mat.Matrix) (*mat.Dense, error) {
	return evaluateRows(r, x, us)
}

func evaluateRows(ev uqstat.Evaluator, x []float64, us mat.Matrix) (*mat.Dense, error) {
	n, d := us.Dims()
	var out *mat.Dense
	u := make([]float64, d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			u[j] = us.At(i, j)
		}
		row, err := ev.Evaluate(x, u)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = mat.NewDense(n, len(row), nil)
		}
		out.SetRow(i, row)
	}
	return out, nil
}
