package uqstat

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/uqlab/uqstat/surrogate"
)

// Surrogate is the general regression formulation: fit an arbitrary
// surrogate to the sampled outputs, then estimate the statistics by sampling
// the cheap prediction heavily instead of the real model.
type Surrogate struct {
	model    Evaluator
	space    UncertainSpace
	fitter   surrogate.Fitter
	n        int
	resample int
}

// NewSurrogate returns the regression formulation: nSamples real-model
// training draws, nResample cheap prediction draws for the statistics.
func NewSurrogate(model Evaluator, space UncertainSpace, fitter surrogate.Fitter, nSamples, nResample int) (*Surrogate, error) {
	if nSamples < 1 {
		return nil, &ConfigError{Component: "Surrogate", Reason: "need at least one training sample"}
	}
	if nResample < 1 {
		return nil, &ConfigError{Component: "Surrogate", Reason: "need at least one resampling draw"}
	}
	if fitter == nil {
		return nil, &ConfigError{Component: "Surrogate", Reason: "nil fitter"}
	}
	return &Surrogate{model: model, space: space, fitter: fitter, n: nSamples, resample: nResample}, nil
}

func (s *Surrogate) Name() string { return "Surrogate" }

func (s *Surrogate) Produce(x []float64) (*SampleBatch, error) {
	us := s.space.Sample(s.n)
	return evaluateOverSamples(s.model, x, us)
}

// Estimate fits one surrogate per output component and reduces the
// resampled predictions with the batch estimators.
func (s *Surrogate) Estimate(b *SampleBatch, stat Statistic) ([]float64, error) {
	k := b.OutDim()
	n := b.Len()
	fs := make([]float64, n)
	us := s.space.Sample(s.resample)
	preds := mat.NewDense(s.resample, k, nil)
	for j := 0; j < k; j++ {
		mat.Col(fs, j, b.Outputs)
		pred, err := s.fitter.Fit(b.Inputs, fs)
		if err != nil {
			return nil, err
		}
		if logrus.IsLevelEnabled(logrus.DebugLevel) && n >= 4 {
			folds := surrogate.KFold(n, 4, rand.NewPCG(0, uint64(j)))
			if rmse, err := surrogate.CrossValidate(s.fitter, b.Inputs, fs, folds); err == nil {
				logrus.Debugf("uqstat: Surrogate: output %d holdout rmse %g", j, rmse)
			}
		}
		for i := 0; i < s.resample; i++ {
			preds.Set(i, j, pred.Predict(us.RawRowView(i)))
		}
	}
	return stat.Estimate(&SampleBatch{Outputs: preds})
}

// EstimateJacobian is unsupported: the regression does not carry design
// derivatives through the fit.
func (s *Surrogate) EstimateJacobian(b *SampleBatch, stat Statistic) (*mat.Dense, error) {
	return nil, &DifferentiabilityError{
		Statistic: stat.String(),
		Reason:    "surrogate regression does not propagate design derivatives",
	}
}
