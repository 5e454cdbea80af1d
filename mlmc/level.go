// Package mlmc implements adaptive Multilevel Monte Carlo estimation over a
// hierarchy of model fidelities, optionally with per-level control variates
// (MLMC-MLCV, after Mycek and De Lozzo).
//
// The target statistic of the finest model f_L is decomposed into the
// telescoping sum over levels of E[Y_l - Y_{l-1}] (with Y_{-1} = 0), each
// term estimated from paired draws of the two adjacent models at the same
// uncertain realizations. A pilot statistic drives the allocation of a fixed
// computational budget across levels: each iteration grows the sample count
// of the level with the best variance reduction per unit of additional cost.
package mlmc

import (
	"fmt"
	"math"

	"github.com/uqlab/uqstat"
)

// Model is one rung of the fidelity hierarchy, mapping an uncertain
// realization to a scalar output.
type Model func(u []float64) float64

// Surrogate is a cheap approximation with an analytically known mean under
// the uncertain space, usable as a control variate.
type Surrogate struct {
	Predict func(u []float64) float64
	Mean    float64
}

// Level configures one rung l of the hierarchy f_0 (cheapest) .. f_L
// (target).
type Level struct {
	Model Model
	// Cost is the evaluation cost relative to the other levels. NaN means
	// unknown: the engine then times the model calls and re-estimates every
	// level's cost empirically for the rest of the run.
	Cost float64
	// NInitial is the sample count drawn at this level on the first
	// iteration.
	NInitial int
	// SamplingRatio r > 1 controls the growth of this level's sample count
	// when the level is selected: n grows by floor((r-1)*n).
	SamplingRatio float64
	// Surrogate approximates f_l directly (g-type, used at level 0).
	Surrogate *Surrogate
	// DiffSurrogate approximates the difference f_l - f_{l-1} (h-type,
	// used at levels above 0).
	DiffSurrogate *Surrogate
}

func (l *Level) validate(idx int) error {
	if l.Model == nil {
		return &uqstat.ConfigError{Component: "mlmc", Reason: fmt.Sprintf("nil model at level %d", idx)}
	}
	if l.NInitial < 2 {
		return &uqstat.ConfigError{Component: "mlmc", Reason: fmt.Sprintf("need at least two initial samples at level %d", idx)}
	}
	if !(l.SamplingRatio > 1) {
		return &uqstat.ConfigError{Component: "mlmc", Reason: fmt.Sprintf("sampling ratio must exceed 1 at level %d", idx)}
	}
	if !math.IsNaN(l.Cost) && l.Cost <= 0 {
		return &uqstat.ConfigError{Component: "mlmc", Reason: fmt.Sprintf("cost must be positive or NaN at level %d", idx)}
	}
	return nil
}

