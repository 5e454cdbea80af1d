package uqstat

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.ErrorLevel)
	os.Exit(m.Run())
}

func TestParseKind(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Kind
	}{
		{"Mean", KindMean},
		{"Variance", KindVariance},
		{"StandardDeviation", KindStandardDeviation},
		{"Margin", KindMargin},
		{"Probability", KindProbability},
	} {
		kind, err := ParseKind(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.want, kind)
		assert.Equal(t, tc.name, kind.String())
	}

	_, err := ParseKind("Median")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "statistic", cfgErr.Component)
}

func TestStatisticString(t *testing.T) {
	assert.Equal(t, "Mean", Mean().String())
	assert.Equal(t, "Margin[3]", Margin(3).String())
	assert.Equal(t, "Probability[>= 1.5]", Probability(1.5, true).String())
	assert.Equal(t, "Probability[<= -2]", Probability(-2, false).String())
}

func TestStatisticExceeds(t *testing.T) {
	ge := Probability(1, true)
	assert.True(t, ge.exceeds(1))
	assert.True(t, ge.exceeds(2))
	assert.False(t, ge.exceeds(0.5))

	le := Probability(1, false)
	assert.True(t, le.exceeds(1))
	assert.False(t, le.exceeds(2))
}
