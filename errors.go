package uqstat

import "fmt"

// ConfigError reports an invalid estimator or formulation configuration. It
// is returned at construction time, never deferred to first evaluation.
type ConfigError struct {
	Component string // the formulation or estimator being configured
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("uqstat: invalid configuration of %s: %s", e.Component, e.Reason)
}

// DifferentiabilityError reports a Jacobian request that the chosen
// formulation or statistic cannot serve. It is returned at the first
// Jacobian call, since value-only use is legitimate.
type DifferentiabilityError struct {
	Function  string // name of the statistic function being differentiated
	Statistic string
	Reason    string
}

func (e *DifferentiabilityError) Error() string {
	return fmt.Sprintf("uqstat: Jacobian of %s[%s] is not supported: %s",
		e.Statistic, e.Function, e.Reason)
}

// MissingArtifactError reports an artifact that is still absent after the
// producing evaluation ran, e.g. a Jacobian requested from a model that does
// not differentiate. Finite-difference substitution is a caller policy, not
// performed here.
type MissingArtifactError struct {
	Function string
	Artifact string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("uqstat: artifact %q missing for %s after evaluation", e.Artifact, e.Function)
}
