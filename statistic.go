package uqstat

import "fmt"

// Kind enumerates the statistics the estimators can produce. The set is
// closed: picking an estimator "by name" at configuration time goes through
// ParseKind and NewStatistic rather than a runtime registry.
type Kind int

const (
	KindMean Kind = iota
	KindVariance
	KindStandardDeviation
	KindMargin
	KindProbability
)

func (k Kind) String() string {
	switch k {
	case KindMean:
		return "Mean"
	case KindVariance:
		return "Variance"
	case KindStandardDeviation:
		return "StandardDeviation"
	case KindMargin:
		return "Margin"
	case KindProbability:
		return "Probability"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a configuration-time name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "Mean":
		return KindMean, nil
	case "Variance":
		return KindVariance, nil
	case "StandardDeviation":
		return KindStandardDeviation, nil
	case "Margin":
		return KindMargin, nil
	case "Probability":
		return KindProbability, nil
	}
	return 0, &ConfigError{Component: "statistic", Reason: fmt.Sprintf("unknown kind %q", name)}
}

// Statistic is a statistic kind together with its parameters. Factor applies
// to Margin (mean + Factor*stddev); Threshold and Greater apply to
// Probability (P[f >= Threshold] if Greater, else P[f <= Threshold]).
type Statistic struct {
	Kind      Kind
	Factor    float64
	Threshold float64
	Greater   bool
}

// Mean returns the mean statistic.
func Mean() Statistic { return Statistic{Kind: KindMean} }

// Variance returns the population-variance statistic.
func Variance() Statistic { return Statistic{Kind: KindVariance} }

// StandardDeviation returns the standard-deviation statistic.
func StandardDeviation() Statistic { return Statistic{Kind: KindStandardDeviation} }

// Margin returns the mean + factor*stddev statistic. Negative factors are
// allowed.
func Margin(factor float64) Statistic {
	return Statistic{Kind: KindMargin, Factor: factor}
}

// Probability returns the exceedance-probability statistic.
func Probability(threshold float64, greater bool) Statistic {
	return Statistic{Kind: KindProbability, Threshold: threshold, Greater: greater}
}

func (s Statistic) String() string {
	switch s.Kind {
	case KindMargin:
		return fmt.Sprintf("Margin[%g]", s.Factor)
	case KindProbability:
		op := "<="
		if s.Greater {
			op = ">="
		}
		return fmt.Sprintf("Probability[%s %g]", op, s.Threshold)
	}
	return s.Kind.String()
}
