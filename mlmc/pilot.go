package mlmc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// levelData accumulates the paired draws of one level across iterations.
// fine holds Y_l, coarse holds Y_{l-1} at the same realizations (zero at
// level 0). surr holds the sampled active control variates, one series per
// surrogate, paired with fine/coarse.
type levelData struct {
	fine   []float64
	coarse []float64
	surr   [][]float64
}

func (ld *levelData) n() int { return len(ld.fine) }

func (ld *levelData) diffs() []float64 {
	d := make([]float64, len(ld.fine))
	for i := range d {
		d[i] = ld.fine[i] - ld.coarse[i]
	}
	return d
}

func (ld *levelData) sums() []float64 {
	s := make([]float64, len(ld.fine))
	for i := range s {
		s[i] = ld.fine[i] + ld.coarse[i]
	}
	return s
}

// Pilot is the statistic whose variance-per-cost ratio drives the adaptive
// level selection, and whose telescoping formula assembles the final
// estimate.
type Pilot interface {
	Name() string
	// VarianceProxy computes V_l from everything sampled at the level so
	// far.
	VarianceProxy(ld *levelData) float64
	// Contribution computes the level's term of the telescoping estimate.
	Contribution(ld *levelData) float64
}

// MeanPilot targets the mean of the finest model: V_l is the variance of
// the telescoping difference, and the estimate is the telescoping sum of
// difference means.
type MeanPilot struct{}

func (MeanPilot) Name() string { return "Mean" }

func (MeanPilot) VarianceProxy(ld *levelData) float64 {
	return popVariance(ld.diffs())
}

func (MeanPilot) Contribution(ld *levelData) float64 {
	return stat.Mean(ld.diffs(), nil)
}

// VariancePilot targets the variance of the finest model. The proxy follows
// Mycek and De Lozzo: the geometric mean of the fourth central moments of
// the difference D_l = Y_l - Y_{l-1} and the sum S_l = Y_l + Y_{l-1}. The
// level contribution telescopes the variance as
// Var[(D+S)/2] - Var[(S-D)/2], i.e. Var[Y_l] - Var[Y_{l-1}] on paired
// draws.
type VariancePilot struct{}

func (VariancePilot) Name() string { return "Variance" }

func (VariancePilot) VarianceProxy(ld *levelData) float64 {
	return math.Sqrt(fourthCentralMoment(ld.diffs()) * fourthCentralMoment(ld.sums()))
}

func (VariancePilot) Contribution(ld *levelData) float64 {
	d := ld.diffs()
	s := ld.sums()
	hi := make([]float64, len(d))
	lo := make([]float64, len(d))
	for i := range d {
		hi[i] = (d[i] + s[i]) / 2
		lo[i] = (s[i] - d[i]) / 2
	}
	return popVariance(hi) - popVariance(lo)
}

func popVariance(xs []float64) float64 {
	mean := stat.Mean(xs, nil)
	var v float64
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}

func fourthCentralMoment(xs []float64) float64 {
	mean := stat.Mean(xs, nil)
	var m4 float64
	for _, x := range xs {
		d := x - mean
		m4 += d * d * d * d
	}
	return m4 / float64(len(xs))
}
