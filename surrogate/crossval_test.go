package surrogate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestKFoldPartition(t *testing.T) {
	folds := KFold(10, 3, rand.NewPCG(1, 1))
	require.Len(t, folds, 3)

	seen := make(map[int]int)
	for _, f := range folds {
		assert.Equal(t, 10, len(f.Train)+len(f.Assess))
		for _, idx := range f.Assess {
			seen[idx]++
		}
		// No index appears on both sides of one fold.
		held := make(map[int]bool)
		for _, idx := range f.Assess {
			held[idx] = true
		}
		for _, idx := range f.Train {
			assert.False(t, held[idx])
		}
	}
	// Every index is held out exactly once across the folds.
	require.Len(t, seen, 10)
	for idx, n := range seen {
		assert.Equal(t, 1, n, "index %d", idx)
	}
}

func TestKFoldMoreFoldsThanSamples(t *testing.T) {
	folds := KFold(2, 5, rand.NewPCG(1, 1))
	assert.Len(t, folds, 2)
}

// A family that contains the target generalizes perfectly: zero holdout
// error up to solver precision.
func TestCrossValidateExactFamily(t *testing.T) {
	xs := mat.NewDense(8, 1, []float64{-3, -2, -1, -0.5, 0.5, 1, 2, 3})
	fs := make([]float64, 8)
	for i := range fs {
		u := xs.At(i, 0)
		fs[i] = 1 + 2*u + 3*u*u
	}
	folds := KFold(8, 4, rand.NewPCG(2, 2))
	rmse, err := CrossValidate(&Polynomial{Order: 2}, xs, fs, folds)
	require.NoError(t, err)
	assert.InDelta(t, 0, rmse, 1e-8)
}

// An underparameterized family shows its bias in the holdout error.
func TestCrossValidateUnderfit(t *testing.T) {
	xs := mat.NewDense(8, 1, []float64{-3, -2, -1, -0.5, 0.5, 1, 2, 3})
	fs := make([]float64, 8)
	for i := range fs {
		u := xs.At(i, 0)
		fs[i] = u * u * u
	}
	folds := KFold(8, 4, rand.NewPCG(3, 3))
	rmse, err := CrossValidate(&Polynomial{Order: 1}, xs, fs, folds)
	require.NoError(t, err)
	assert.Greater(t, rmse, 1.0)
}
