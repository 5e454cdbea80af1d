package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uqlab/uqstat"
	"github.com/uqlab/uqstat/mlmc"
)

func TestLoadStudy(t *testing.T) {
	cfg, err := LoadStudy("testdata/study.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mass", cfg.Study.Name)
	assert.Equal(t, []float64{0}, cfg.Study.Point)
	assert.Equal(t, 200, cfg.Study.Samples)
	assert.Equal(t, "quadratic", cfg.Model)
	require.Len(t, cfg.Variables, 1)
	assert.Equal(t, "normal", cfg.Variables[0].Dist)
	require.Len(t, cfg.Levels, 2)
	assert.InDelta(t, 0.2, cfg.Levels[0].Cost, 1e-15)
	assert.InDelta(t, 500, cfg.Multilevel.Budget, 1e-15)
}

func TestLoadStudyMissingFile(t *testing.T) {
	_, err := LoadStudy("testdata/absent.yaml")
	require.Error(t, err)
}

func TestBuildSpace(t *testing.T) {
	cfg, err := LoadStudy("testdata/study.yaml")
	require.NoError(t, err)
	space, err := cfg.BuildSpace()
	require.NoError(t, err)
	assert.Equal(t, 1, space.Dim())
	assert.Equal(t, []string{"u1"}, space.Names())

	cfg.Variables[0].Dist = "cauchy"
	_, err = cfg.BuildSpace()
	require.Error(t, err)

	cfg.Variables = nil
	_, err = cfg.BuildSpace()
	require.Error(t, err)
}

func TestBuildStatistic(t *testing.T) {
	cfg := &StudyConfig{}
	cfg.Study.Statistic = "Margin"
	cfg.Study.Factor = 2
	stat, err := cfg.BuildStatistic()
	require.NoError(t, err)
	assert.Equal(t, uqstat.KindMargin, stat.Kind)
	assert.InDelta(t, 2, stat.Factor, 1e-15)

	cfg.Study.Statistic = "Probability"
	cfg.Study.Threshold = 1.5
	cfg.Study.Greater = true
	stat, err = cfg.BuildStatistic()
	require.NoError(t, err)
	assert.Equal(t, uqstat.KindProbability, stat.Kind)

	cfg.Study.Statistic = "Mode"
	_, err = cfg.BuildStatistic()
	require.Error(t, err)
}

func TestBuildFormulations(t *testing.T) {
	cfg, err := LoadStudy("testdata/study.yaml")
	require.NoError(t, err)
	space, err := cfg.BuildSpace()
	require.NoError(t, err)
	model, err := cfg.BuildModel()
	require.NoError(t, err)

	cfg.Study.Order = 2
	cfg.Study.Initial = 10
	cfg.Study.Increment = 5
	cfg.Study.Resample = 1000
	for name, ok := range map[string]bool{
		"sampling":        true,
		"sequential":      true,
		"taylor":          true,
		"control_variate": true,
		"pce":             true,
		"surrogate":       true,
		"fancy":           false,
	} {
		cfg.Study.Formulation = name
		_, err := cfg.BuildFormulation(model, space)
		if ok {
			assert.NoError(t, err, name)
		} else {
			assert.Error(t, err, name)
		}
	}
}

func TestParseVariantAndPilot(t *testing.T) {
	v, err := parseVariant("mlcv")
	require.NoError(t, err)
	assert.Equal(t, mlmc.VariantMLCV, v)
	v, err = parseVariant("")
	require.NoError(t, err)
	assert.Equal(t, mlmc.VariantNone, v)
	_, err = parseVariant("bogus")
	require.Error(t, err)

	p, err := parsePilot("variance")
	require.NoError(t, err)
	assert.Equal(t, "Variance", p.Name())
	_, err = parsePilot("median")
	require.Error(t, err)
}

func TestRunStudyEndToEnd(t *testing.T) {
	require.NoError(t, runStudy("testdata/study.yaml", true))
	require.NoError(t, runMultilevel("testdata/study.yaml"))
}
