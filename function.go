package uqstat

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Formulation is an estimation technique: it knows how to turn a design
// point into a sample batch (or expansion data) and how to reduce a batch to
// a statistic and its Jacobian. Implementations are composed into Functions
// by a Session; they never call the underlying model outside Produce.
type Formulation interface {
	Name() string
	// Produce evaluates the underlying model at x and returns every artifact
	// a statistic at x can need. It is called at most once per design point.
	Produce(x []float64) (*SampleBatch, error)
	// Estimate reduces the batch to the statistic value, one entry per
	// output component.
	Estimate(b *SampleBatch, s Statistic) ([]float64, error)
	// EstimateJacobian reduces the batch to the k×dx statistic Jacobian.
	EstimateJacobian(b *SampleBatch, s Statistic) (*mat.Dense, error)
}

// Session owns one Formulation and its memoization cache, and hands out the
// statistic Functions the optimizer calls. Every Function registered on the
// same Session shares the single model evaluation per design point: the
// first Value or Jacobian request at a new point triggers Produce, and all
// later requests at that point read the cached batch.
type Session struct {
	form  Formulation
	cache *Cache
	funcs []*Function
}

// NewSession wraps a formulation for consumption by the optimizer.
func NewSession(form Formulation) *Session {
	s := &Session{form: form, cache: NewCache()}
	if r, ok := form.(interface{ OnNewPoint() }); ok {
		s.cache.OnClear(r.OnNewPoint)
	}
	return s
}

// NewFunction registers a statistic function on the session. The returned
// Function carries the optimizer-facing Value/Jacobian contract.
func (s *Session) NewFunction(name string, stat Statistic) *Function {
	f := &Function{Name: name, Statistic: stat, session: s}
	s.funcs = append(s.funcs, f)
	return f
}

// batchAt returns the sample batch for x, producing it on a cache miss.
func (s *Session) batchAt(x []float64) (*SampleBatch, error) {
	if s.cache.Switch(x) {
		logrus.Debugf("uqstat: %s: new design point, cache cleared", s.form.Name())
	}
	if b, ok := s.cache.Batch(ArtifactSamples); ok {
		return b, nil
	}
	logrus.Debugf("uqstat: %s: producing samples", s.form.Name())
	b, err := s.form.Produce(s.cache.Point())
	if err != nil {
		return nil, err
	}
	s.cache.SetBatch(ArtifactSamples, b)
	return b, nil
}

// Function exposes one statistic of one model output set to the optimizer:
// Value returns the current estimate at a design point, Jacobian its
// derivative with respect to the design variables. Both may trigger model
// evaluation as a side effect on a cache miss.
type Function struct {
	Name      string
	Statistic Statistic
	session   *Session
}

// Value returns the statistic estimate at x.
func (f *Function) Value(x []float64) ([]float64, error) {
	s := f.session
	b, err := s.batchAt(x)
	if err != nil {
		return nil, err
	}
	name := ValuePrefix + f.Name
	if v, ok := s.cache.Value(name); ok {
		return v, nil
	}
	v, err := s.form.Estimate(b, f.Statistic)
	if err != nil {
		return nil, err
	}
	s.cache.SetValue(name, v)
	return v, nil
}

// Jacobian returns the derivative of the statistic estimate at x with
// respect to the design variables. It returns a DifferentiabilityError when
// the formulation or statistic cannot produce one.
func (f *Function) Jacobian(x []float64) (*mat.Dense, error) {
	s := f.session
	b, err := s.batchAt(x)
	if err != nil {
		return nil, err
	}
	name := JacobianPrefix + f.Name
	if m, ok := s.cache.Matrix(name); ok {
		return m, nil
	}
	m, err := s.form.EstimateJacobian(b, f.Statistic)
	if err != nil {
		if de, ok := err.(*DifferentiabilityError); ok && de.Function == "" {
			de.Function = f.Name
		}
		return nil, err
	}
	s.cache.SetMatrix(name, m)
	return m, nil
}
