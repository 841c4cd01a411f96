package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

func TestTSFreshTierCardinalities(t *testing.T) {
	series := make(pipeline.Series, 50)
	for i := range series {
		series[i] = math.Sin(float64(i) / 3)
	}

	for tier, want := range tsfreshTierSizes {
		out, err := TSFresh(series, pipeline.Params{"tsfresh_feature_set": tier})
		require.NoError(t, err, tier)
		assert.Lenf(t, out, want, "tier %s", tier)
		for i, v := range out {
			assert.Falsef(t, math.IsNaN(v), "tier %s feature %d is NaN", tier, i)
		}
	}
}

func TestTSFreshMinimalValues(t *testing.T) {
	out, err := TSFresh(pipeline.Series{1, 2, 3, 4, 5}, pipeline.Params{"tsfresh_feature_set": TierMinimal})
	require.NoError(t, err)
	require.Len(t, out, 20)

	assert.InDelta(t, 3.0, out[0], 1e-9, "mean")
	assert.InDelta(t, 15.0, out[7], 1e-9, "sum")
	assert.InDelta(t, 5.0, out[9], 1e-9, "length")
	assert.InDelta(t, 1.0, out[11], 1e-9, "first")
	assert.InDelta(t, 5.0, out[12], 1e-9, "last")
	assert.InDelta(t, 1.0, out[13], 1e-9, "mean abs change")
	assert.InDelta(t, 1.0, out[14], 1e-9, "mean change")
	assert.InDelta(t, 2.0, out[15], 1e-9, "count above mean")
	assert.InDelta(t, 2.0, out[16], 1e-9, "count below mean")
}

func TestTSFreshDefaultsToEfficientTier(t *testing.T) {
	out, err := TSFresh(pipeline.Series{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	assert.Len(t, out, tsfreshTierSizes[TierEfficient])
}

func TestTSFreshSingleSampleFillsVector(t *testing.T) {
	out, err := TSFresh(pipeline.Series{7}, pipeline.Params{"tsfresh_feature_set": TierMinimal})
	require.NoError(t, err)
	require.Len(t, out, 20)
	for _, v := range out {
		assert.Equal(t, 7.0, v)
	}
}

func TestTSFreshEmptySeriesYieldsZeros(t *testing.T) {
	out, err := TSFresh(pipeline.Series{}, pipeline.Params{"tsfresh_feature_set": TierMinimal})
	require.NoError(t, err)
	require.Len(t, out, 20)
	for _, v := range out {
		assert.Zero(t, v)
	}
}

func TestTSFreshRejectsUnknownTier(t *testing.T) {
	_, err := TSFresh(pipeline.Series{1, 2}, pipeline.Params{"tsfresh_feature_set": "gigantic"})
	assert.Error(t, err)
}
