package mlmc

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// Iteration records the state of the engine after one adaptive step:
// the level chosen for growth, its sample count after growing, the budget
// left, and the per-level variance proxies that drove the choice.
type Iteration struct {
	Level     int
	NSamples  int
	Budget    float64
	Estimate  float64
	Variances []float64
}

// Result is the outcome of an adaptive run. NSamples and Costs are indexed
// by level; BudgetHistory holds the remaining budget after each iteration.
type Result struct {
	RunID         string
	Pilot         string
	Estimate      float64
	NSamples      []int
	Costs         []float64
	BudgetHistory []float64
	Iterations    []Iteration
}

// Summary renders a short human-readable account of the run, including
// descriptive statistics of the estimate trajectory across iterations.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s): estimate %g after %d iterations\n",
		r.RunID, r.Pilot, r.Estimate, len(r.Iterations))
	for l, n := range r.NSamples {
		fmt.Fprintf(&b, "  level %d: %d samples, cost %g\n", l, n, r.Costs[l])
	}
	if len(r.Iterations) > 1 {
		traj := make([]float64, len(r.Iterations))
		for i, it := range r.Iterations {
			traj[i] = it.Estimate
		}
		med, _ := stats.Median(traj)
		sd, _ := stats.StandardDeviation(traj)
		lo, _ := stats.Min(traj)
		hi, _ := stats.Max(traj)
		fmt.Fprintf(&b, "  trajectory: median %g, stddev %g, range [%g, %g]\n", med, sd, lo, hi)
	}
	return b.String()
}
