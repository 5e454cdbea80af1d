package uqstat

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Reserved artifact names. Value and Jacobian artifacts for a statistic
// function are stored under these prefixes followed by the function name.
const (
	ArtifactSamples    = "samples"
	ArtifactJacSamples = "jac_samples"
	ArtifactHessian    = "hessian"
	ValuePrefix        = "value:"
	JacobianPrefix     = "jacobian:"
)

// PointKey identifies a design point by the exact bit patterns of its
// values. Two points compare equal only bit for bit.
type PointKey string

// KeyFor derives the key of a design vector.
func KeyFor(x []float64) PointKey {
	buf := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return PointKey(buf)
}

// Cache memoizes the artifacts computed at the current design point. It
// holds a single fresh point: switching to any different point discards
// everything. The outer optimizer works one design point at a time, so
// there is nothing to gain from keeping more.
type Cache struct {
	key   PointKey
	point []float64

	values  map[string][]float64
	mats    map[string]*mat.Dense
	batches map[string]*SampleBatch

	// onClear runs whenever the point changes, letting formulations reset
	// nested evaluation sub-problems.
	onClear []func()
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.clear()
	return c
}

// OnClear registers a hook invoked every time the cache is invalidated.
func (c *Cache) OnClear(f func()) { c.onClear = append(c.onClear, f) }

// Switch points the cache at x. If x differs from the cached point, the
// entire cache is cleared and Switch reports true.
func (c *Cache) Switch(x []float64) bool {
	key := KeyFor(x)
	if key == c.key && c.point != nil {
		return false
	}
	c.clear()
	c.key = key
	c.point = append([]float64(nil), x...)
	for _, f := range c.onClear {
		f()
	}
	return true
}

// Point returns the design point the cache currently holds artifacts for.
func (c *Cache) Point() []float64 { return c.point }

func (c *Cache) clear() {
	c.key = ""
	c.point = nil
	c.values = make(map[string][]float64)
	c.mats = make(map[string]*mat.Dense)
	c.batches = make(map[string]*SampleBatch)
}

// Value returns the named vector artifact, if computed at the current point.
func (c *Cache) Value(name string) ([]float64, bool) {
	v, ok := c.values[name]
	return v, ok
}

// SetValue stores a vector artifact at the current point.
func (c *Cache) SetValue(name string, v []float64) { c.values[name] = v }

// Matrix returns the named matrix artifact.
func (c *Cache) Matrix(name string) (*mat.Dense, bool) {
	m, ok := c.mats[name]
	return m, ok
}

// SetMatrix stores a matrix artifact at the current point.
func (c *Cache) SetMatrix(name string, m *mat.Dense) { c.mats[name] = m }

// Batch returns the named sample batch.
func (c *Cache) Batch(name string) (*SampleBatch, bool) {
	b, ok := c.batches[name]
	return b, ok
}

// SetBatch stores a sample batch at the current point.
func (c *Cache) SetBatch(name string, b *SampleBatch) { c.batches[name] = b }
