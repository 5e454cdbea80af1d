package mlmc

import (
	"fmt"

	"github.com/uqlab/uqstat"
)

// Variant selects which surrogate models act as control variates at which
// level. Level 0 always uses the g-type surrogate approximating f_0
// directly; levels above 0 use h-type surrogates approximating the
// difference f_l - f_{l-1}, except where the variant says otherwise.
type Variant int

const (
	// VariantNone disables control variates: plain MLMC.
	VariantNone Variant = iota
	// VariantMLCV uses every available surrogate at every level: the
	// g-type at level 0 and the difference surrogates above it.
	VariantMLCV
	// VariantCV uses a single surrogate per level: g-type at level 0, the
	// level's own difference surrogate above.
	VariantCV
	// VariantCV0 uses the g-type surrogate at level 0 only and falls back
	// to plain MLMC differences at every other level.
	VariantCV0
	// VariantHybrid uses the g-type surrogate at level 0 and the finest
	// level's difference surrogate everywhere above.
	VariantHybrid
)

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "MLMC"
	case VariantMLCV:
		return "MLMC-MLCV"
	case VariantCV:
		return "MLMC-CV"
	case VariantCV0:
		return "MLMC-CV0"
	case VariantHybrid:
		return "MLMC-MLCV-H"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// activeSurrogates is the lookup giving the control variates participating
// at one level under a variant. Level 0 always gets the g-type surrogate;
// above it MLCV stacks every difference surrogate up to the level
// (multivariate coefficients), CV uses the level's own, Hybrid the finest
// level's, and CV0 none.
func activeSurrogates(v Variant, l int, levels []Level) []*Surrogate {
	if v == VariantNone {
		return nil
	}
	if l == 0 {
		if levels[0].Surrogate == nil {
			return nil
		}
		return []*Surrogate{levels[0].Surrogate}
	}
	switch v {
	case VariantCV0:
		return nil
	case VariantCV:
		if levels[l].DiffSurrogate == nil {
			return nil
		}
		return []*Surrogate{levels[l].DiffSurrogate}
	case VariantHybrid:
		top := levels[len(levels)-1].DiffSurrogate
		if top == nil {
			return nil
		}
		return []*Surrogate{top}
	case VariantMLCV:
		var active []*Surrogate
		for i := 1; i <= l; i++ {
			if levels[i].DiffSurrogate != nil {
				active = append(active, levels[i].DiffSurrogate)
			}
		}
		return active
	}
	return nil
}

// validateSurrogates checks that the variant's lookup finds the surrogates
// it needs.
func (e *Engine) validateSurrogates() error {
	if e.Levels[0].Surrogate == nil {
		return &uqstat.ConfigError{Component: "mlmc", Reason: e.Variant.String() + " requires a surrogate at level 0"}
	}
	switch e.Variant {
	case VariantCV0:
		return nil
	case VariantHybrid:
		if len(e.Levels) > 1 && e.Levels[len(e.Levels)-1].DiffSurrogate == nil {
			return &uqstat.ConfigError{
				Component: "mlmc",
				Reason:    fmt.Sprintf("%s requires a difference surrogate at the finest level", e.Variant),
			}
		}
		return nil
	}
	for l := 1; l < len(e.Levels); l++ {
		if e.Levels[l].DiffSurrogate == nil {
			return &uqstat.ConfigError{
				Component: "mlmc",
				Reason:    fmt.Sprintf("%s requires a difference surrogate at level %d", e.Variant, l),
			}
		}
	}
	return nil
}
