package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/bench"
	"github.com/uqlab/uqstat/surrogate"
	"github.com/uqlab/uqstat/uspace"
)

// StudyConfig is the YAML study description.
type StudyConfig struct {
	Study      Study            `yaml:"study"`
	Model      string           `yaml:"model"`
	Variables  []VariableConfig `yaml:"variables"`
	Levels     []LevelConfig    `yaml:"levels"`
	Multilevel MultilevelConfig `yaml:"multilevel"`
}

type Study struct {
	Name        string    `yaml:"name"`
	Point       []float64 `yaml:"point"`
	Statistic   string    `yaml:"statistic"`
	Factor      float64   `yaml:"factor"`
	Threshold   float64   `yaml:"threshold"`
	Greater     bool      `yaml:"greater"`
	Formulation string    `yaml:"formulation"`
	Samples     int       `yaml:"samples"`
	Initial     int       `yaml:"initial"`
	Increment   int       `yaml:"increment"`
	Order       int       `yaml:"order"`
	Resample    int       `yaml:"resample"`
	SecondOrder bool      `yaml:"second_order"`
	Seed        uint64    `yaml:"seed"`
}

type VariableConfig struct {
	Name   string  `yaml:"name"`
	Dist   string  `yaml:"dist"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Mode   float64 `yaml:"mode"`
}

type LevelConfig struct {
	Cost          float64 `yaml:"cost"`
	Initial       int     `yaml:"initial"`
	SamplingRatio float64 `yaml:"sampling_ratio"`
}

type MultilevelConfig struct {
	Budget  float64 `yaml:"budget"`
	Pilot   string  `yaml:"pilot"`
	Variant string  `yaml:"variant"`
}

// LoadStudy reads and parses a YAML study file.
func LoadStudy(path string) (*StudyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg StudyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// BuildSpace assembles the uncertain space from the variable section, with
// every marginal drawing from one seeded source.
func (c *StudyConfig) BuildSpace() (*uspace.Space, error) {
	if len(c.Variables) == 0 {
		return nil, fmt.Errorf("study declares no uncertain variables")
	}
	src := uspace.Seeded(c.Study.Seed)
	vars := make([]uspace.RandomVariable, len(c.Variables))
	for i, v := range c.Variables {
		switch v.Dist {
		case "normal":
			vars[i] = uspace.Normal(v.Name, v.Mean, v.StdDev, src)
		case "uniform":
			vars[i] = uspace.Uniform(v.Name, v.Min, v.Max, src)
		case "triangular":
			vars[i] = uspace.Triangular(v.Name, v.Min, v.Max, v.Mode, src)
		default:
			return nil, fmt.Errorf("variable %s: unknown distribution %q", v.Name, v.Dist)
		}
	}
	return uspace.New(vars...), nil
}

// BuildStatistic maps the statistic section to a Statistic value.
func (c *StudyConfig) BuildStatistic() (uqstat.Statistic, error) {
	kind, err := uqstat.ParseKind(c.Study.Statistic)
	if err != nil {
		return uqstat.Statistic{}, err
	}
	switch kind {
	case uqstat.KindMargin:
		return uqstat.Margin(c.Study.Factor), nil
	case uqstat.KindProbability:
		return uqstat.Probability(c.Study.Threshold, c.Study.Greater), nil
	default:
		return uqstat.Statistic{Kind: kind}, nil
	}
}

// BuildModel resolves the named built-in benchmark model.
func (c *StudyConfig) BuildModel() (uqstat.Evaluator, error) {
	switch c.Model {
	case "quadratic", "":
		return bench.Quadratic{}, nil
	case "linear":
		d := len(c.Variables)
		a := make([]float64, d)
		b := make([]float64, d)
		for i := range a {
			a[i] = 1
			b[i] = 1
		}
		return bench.Linear{A: a, B: b}, nil
	case "rosenbrock":
		return bench.Rosenbrock{}, nil
	}
	return nil, fmt.Errorf("unknown model %q", c.Model)
}

// BuildFormulation constructs the configured estimation technique.
func (c *StudyConfig) BuildFormulation(model uqstat.Evaluator, space *uspace.Space) (uqstat.Formulation, error) {
	switch c.Study.Formulation {
	case "sampling", "":
		return uqstat.NewSampling(model, space, c.Study.Samples)
	case "sequential":
		return uqstat.NewSequential(model, space, c.Study.Initial, c.Study.Increment)
	case "taylor":
		taylor, ok := model.(uqstat.TaylorEvaluator)
		if !ok {
			return nil, fmt.Errorf("model %q has no analytic expansion", c.Model)
		}
		return uqstat.NewTaylorPolynomial(taylor, space, c.Study.SecondOrder), nil
	case "control_variate":
		taylor, ok := model.(uqstat.TaylorEvaluator)
		if !ok {
			return nil, fmt.Errorf("model %q has no analytic expansion", c.Model)
		}
		return uqstat.NewControlVariate(model, taylor, space, c.Study.Samples)
	case "pce":
		return uqstat.NewPCE(model, space, c.Study.Samples, c.Study.Order)
	case "surrogate":
		fitter := &surrogate.Polynomial{Order: c.Study.Order}
		return uqstat.NewSurrogate(model, space, fitter, c.Study.Samples, c.Study.Resample)
	}
	return nil, fmt.Errorf("unknown formulation %q", c.Study.Formulation)
}
