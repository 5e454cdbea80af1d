package main

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/mlmc"
	"github.com/uqlab/uqstat/uspace"
)

// runStudy estimates the configured statistic at the study design point and
// prints the result.
func runStudy(path string, withJacobian bool) error {
	cfg, err := LoadStudy(path)
	if err != nil {
		return err
	}
	space, err := cfg.BuildSpace()
	if err != nil {
		return err
	}
	model, err := cfg.BuildModel()
	if err != nil {
		return err
	}
	stat, err := cfg.BuildStatistic()
	if err != nil {
		return err
	}
	form, err := cfg.BuildFormulation(model, space)
	if err != nil {
		return err
	}

	point := cfg.Study.Point
	if len(point) == 0 {
		point = make([]float64, space.Dim())
	}
	logrus.Infof("study %s: %s of %s via %s at %v",
		cfg.Study.Name, stat, cfg.Model, form.Name(), point)

	session := uqstat.NewSession(form)
	fn := session.NewFunction(cfg.Study.Name, stat)
	value, err := fn.Value(point)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %v\n", stat, value)

	if withJacobian {
		jac, err := fn.Jacobian(point)
		if err != nil {
			return err
		}
		fmt.Printf("jacobian = %v\n", mat.Formatted(jac, mat.Prefix("           ")))
	}
	return nil
}

// runMultilevel runs the adaptive multilevel engine over the built-in level
// hierarchy for the configured model.
func runMultilevel(path string) error {
	cfg, err := LoadStudy(path)
	if err != nil {
		return err
	}
	if len(cfg.Levels) < 2 {
		return fmt.Errorf("mlmc needs at least two levels, got %d", len(cfg.Levels))
	}
	space, err := cfg.BuildSpace()
	if err != nil {
		return err
	}
	variant, err := parseVariant(cfg.Multilevel.Variant)
	if err != nil {
		return err
	}
	pilot, err := parsePilot(cfg.Multilevel.Pilot)
	if err != nil {
		return err
	}

	model, err := cfg.BuildModel()
	if err != nil {
		return err
	}
	point := cfg.Study.Point
	if len(point) == 0 {
		point = make([]float64, space.Dim())
	}
	levels := buildLevels(cfg, model, space, point, variant)

	engine := &mlmc.Engine{
		Levels:  levels,
		Space:   space,
		Budget:  cfg.Multilevel.Budget,
		Pilot:   pilot,
		Variant: variant,
	}
	result, err := engine.Execute()
	if err != nil {
		return err
	}
	fmt.Print(result.Summary())
	return nil
}

// buildLevels constructs the hierarchy f_l(u) = f(u) + 2^-(l+1) cos(sum u)
// over the configured base model at the study design point. The perturbation
// shrinks geometrically toward the finest level, which evaluates the model
// exactly, so level differences decay the way a discretization hierarchy
// does.
func buildLevels(cfg *StudyConfig, model uqstat.Evaluator, space *uspace.Space, point []float64, variant mlmc.Variant) []mlmc.Level {
	exact := func(u []float64) float64 {
		out, err := model.Evaluate(point, u)
		if err != nil {
			logrus.Fatalf("model evaluation failed: %v", err)
		}
		return out[0]
	}

	nLevels := len(cfg.Levels)
	levels := make([]mlmc.Level, nLevels)
	for l := range levels {
		bias := perturbation(l, nLevels)
		lm := func(u []float64) float64 {
			return exact(u) + bias*cosSum(u)
		}
		levels[l] = mlmc.Level{
			Model:         lm,
			Cost:          cfg.Levels[l].Cost,
			NInitial:      cfg.Levels[l].Initial,
			SamplingRatio: cfg.Levels[l].SamplingRatio,
		}
	}
	if variant == mlmc.VariantNone {
		return levels
	}

	// Control-variate surrogates: at level 0 the unperturbed base model
	// stands in for f_0, above it the analytic difference of the cosine
	// perturbations stands in for f_l - f_{l-1}. Surrogate means are
	// precomputed by plain Monte Carlo over the cheap surrogate itself.
	levels[0].Surrogate = precomputedSurrogate(exact, space)
	for l := 1; l < nLevels; l++ {
		shift := perturbation(l, nLevels) - perturbation(l-1, nLevels)
		diff := func(u []float64) float64 { return shift * cosSum(u) }
		levels[l].DiffSurrogate = precomputedSurrogate(diff, space)
	}
	return levels
}

func perturbation(l, nLevels int) float64 {
	if l == nLevels-1 {
		return 0
	}
	return math.Pow(2, -float64(l+1))
}

func cosSum(u []float64) float64 {
	var s float64
	for _, v := range u {
		s += v
	}
	return math.Cos(s)
}

// precomputedSurrogate wraps pred with its Monte Carlo mean over the space.
func precomputedSurrogate(pred func(u []float64) float64, space *uspace.Space) *mlmc.Surrogate {
	const n = 100000
	us := space.Sample(n)
	var sum float64
	for i := 0; i < n; i++ {
		sum += pred(us.RawRowView(i))
	}
	return &mlmc.Surrogate{Predict: pred, Mean: sum / n}
}

func parseVariant(name string) (mlmc.Variant, error) {
	switch name {
	case "", "none":
		return mlmc.VariantNone, nil
	case "mlcv":
		return mlmc.VariantMLCV, nil
	case "cv":
		return mlmc.VariantCV, nil
	case "cv0":
		return mlmc.VariantCV0, nil
	case "hybrid":
		return mlmc.VariantHybrid, nil
	}
	return 0, fmt.Errorf("unknown variant %q", name)
}

func parsePilot(name string) (mlmc.Pilot, error) {
	switch name {
	case "", "mean":
		return mlmc.MeanPilot{}, nil
	case "variance":
		return mlmc.VariancePilot{}, nil
	}
	return nil, fmt.Errorf("unknown pilot %q", name)
}
