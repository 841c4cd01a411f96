package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

func TestStatisticsBasicGroupValues(t *testing.T) {
	series := pipeline.Series{1, 2, 3, 4, 5}
	out, err := Statistics(series, pipeline.Params{"statistical_features": []any{"basic"}})
	require.NoError(t, err)
	require.Len(t, out, basicFeatureCount)

	assert.InDelta(t, 3.0, out[0], 1e-9, "mean")
	assert.InDelta(t, math.Sqrt(2), out[1], 1e-9, "std")
	assert.InDelta(t, 5.0, out[2], 1e-9, "max")
	assert.InDelta(t, 1.0, out[3], 1e-9, "min")
	assert.InDelta(t, 3.0, out[4], 1e-9, "median")
	assert.InDelta(t, 4.0, out[5], 1e-9, "peak to peak")
	assert.InDelta(t, 2.0, out[6], 1e-9, "p25")
	assert.InDelta(t, 4.0, out[7], 1e-9, "p75")
	assert.InDelta(t, 2.0, out[8], 1e-9, "iqr")
	assert.InDelta(t, 0.0, out[9], 1e-9, "skewness")
	assert.InDelta(t, -1.3, out[10], 1e-9, "excess kurtosis")
	assert.InDelta(t, math.Sqrt(11), out[11], 1e-9, "rms")
	assert.InDelta(t, 55.0, out[12], 1e-9, "energy")
	assert.InDelta(t, 15.0, out[13], 1e-9, "abs energy")
}

func TestStatisticsConstantSeriesEnergy(t *testing.T) {
	out, err := Statistics(pipeline.Series{2, 2, 2, 2}, pipeline.Params{"statistical_features": []any{"basic"}})
	require.NoError(t, err)
	require.Len(t, out, basicFeatureCount)

	assert.InDelta(t, 16.0, out[12], 1e-9, "energy of a constant series is n*v^2")
	assert.InDelta(t, 8.0, out[13], 1e-9, "abs energy is the sum of magnitudes")
}

func TestStatisticsConstantSeriesStaysFinite(t *testing.T) {
	series := pipeline.Series{2, 2, 2, 2}
	out, err := Statistics(series, nil)
	require.NoError(t, err)
	require.Len(t, out, basicFeatureCount+timeFeatureCount+frequencyFeatureCount)
	for i, v := range out {
		assert.Falsef(t, math.IsNaN(v), "feature %d is NaN", i)
	}
	// Constant series: zero std, skew and kurtosis, crest factor of 1.
	assert.InDelta(t, 0.0, out[1], 1e-9)
	assert.InDelta(t, 0.0, out[9], 1e-9)
	assert.InDelta(t, 0.0, out[10], 1e-9)
	assert.InDelta(t, 1.0, out[basicFeatureCount+2], 1e-9)
}

func TestStatisticsTimeGroupValues(t *testing.T) {
	series := pipeline.Series{1, -1, 1, -1, 1}
	out, err := Statistics(series, pipeline.Params{"statistical_features": []any{"time"}})
	require.NoError(t, err)
	require.Len(t, out, timeFeatureCount)

	assert.InDelta(t, 1.0, out[0], 1e-9, "every pair crosses zero")
	assert.InDelta(t, 2.0, out[1], 1e-9, "peak to peak")
	assert.InDelta(t, 1.0, out[2], 1e-9, "crest factor of a square wave")
}

func TestStatisticsFrequencyGroupPicksDominantFrequency(t *testing.T) {
	// Four samples per cycle puts the dominant bin at 0.25 cycles/sample.
	series := make(pipeline.Series, 128)
	for i := range series {
		series[i] = math.Sin(2 * math.Pi * 0.25 * float64(i))
	}
	out, err := Statistics(series, pipeline.Params{"statistical_features": []any{"frequency"}})
	require.NoError(t, err)
	require.Len(t, out, frequencyFeatureCount)

	assert.InDelta(t, 0.25, out[0], 0.02, "dominant frequency")
	assert.Greater(t, out[3], 0.0, "total power")
}

func TestStatisticsEmptySeriesYieldsZeros(t *testing.T) {
	out, err := Statistics(pipeline.Series{}, nil)
	require.NoError(t, err)
	require.Len(t, out, basicFeatureCount+timeFeatureCount+frequencyFeatureCount)
	for _, v := range out {
		assert.Zero(t, v)
	}
}

func TestStatisticsUnknownGroupIsSkipped(t *testing.T) {
	series := pipeline.Series{1, 2, 3}
	out, err := Statistics(series, pipeline.Params{"statistical_features": []any{"basic", "wavelet"}})
	require.NoError(t, err)
	require.Len(t, out, basicFeatureCount, "known groups survive an unknown name")
	assert.InDelta(t, 2.0, out[0], 1e-9, "mean")

	out, err = Statistics(series, pipeline.Params{"statistical_features": []any{"wavelet"}})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStatisticsZeroRMSCrestFactorIsInfinite(t *testing.T) {
	out, err := Statistics(pipeline.Series{0, 0, 0, 0}, pipeline.Params{"statistical_features": []any{"time"}})
	require.NoError(t, err)
	require.Len(t, out, timeFeatureCount)
	assert.True(t, math.IsInf(out[2], 1), "crest factor")
}

func TestStatisticsSingleSampleTimeGroupIsZero(t *testing.T) {
	out, err := Statistics(pipeline.Series{5}, pipeline.Params{"statistical_features": []any{"time"}})
	require.NoError(t, err)
	require.Len(t, out, timeFeatureCount)
	for i, v := range out {
		assert.Zerof(t, v, "time feature %d", i)
	}
}

func TestStatisticsGroupOrderFollowsRequest(t *testing.T) {
	series := pipeline.Series{1, 2, 3, 4}
	out, err := Statistics(series, pipeline.Params{"statistical_features": []any{"time", "basic"}})
	require.NoError(t, err)
	require.Len(t, out, timeFeatureCount+basicFeatureCount)
	// The mean shows up after the time group when basic comes second.
	assert.InDelta(t, 2.5, out[timeFeatureCount], 1e-9)
}
