package surrogate

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Fold is one train/assess split of the sample indices.
type Fold struct {
	Train  []int
	Assess []int
}

// KFold partitions n sample indices into k folds: each fold assesses on its
// held-out block and trains on the rest. The assignment is shuffled so
// ordered sample matrices do not bias the splits.
func KFold(n, k int, src rand.Source) []Fold {
	if k > n {
		k = n
	}
	perm := rand.New(src).Perm(n)
	folds := make([]Fold, k)
	for i, idx := range perm {
		f := i % k
		folds[f].Assess = append(folds[f].Assess, idx)
	}
	for f := range folds {
		held := make(map[int]bool, len(folds[f].Assess))
		for _, idx := range folds[f].Assess {
			held[idx] = true
		}
		for idx := 0; idx < n; idx++ {
			if !held[idx] {
				folds[f].Train = append(folds[f].Train, idx)
			}
		}
	}
	return folds
}

// CrossValidate refits the surrogate on each fold's training rows and
// returns the root-mean-square prediction error over the held-out rows, a
// generalization diagnostic for the fitted model family.
func CrossValidate(fitter Fitter, xs mat.Matrix, fs []float64, folds []Fold) (float64, error) {
	_, dim := xs.Dims()
	row := make([]float64, dim)
	var sse float64
	var count int
	for _, fold := range folds {
		trainX := mat.NewDense(len(fold.Train), dim, nil)
		trainF := make([]float64, len(fold.Train))
		for i, idx := range fold.Train {
			mat.Row(row, idx, xs)
			trainX.SetRow(i, row)
			trainF[i] = fs[idx]
		}
		pred, err := fitter.Fit(trainX, trainF)
		if err != nil {
			return 0, err
		}
		for _, idx := range fold.Assess {
			mat.Row(row, idx, xs)
			r := fs[idx] - pred.Predict(row)
			sse += r * r
			count++
		}
	}
	return math.Sqrt(sse / float64(count)), nil
}
