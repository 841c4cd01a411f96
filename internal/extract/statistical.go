package extract

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Feature group names accepted by the statistics method.
const (
	GroupBasic     = "basic"
	GroupTime      = "time"
	GroupFrequency = "frequency"
)

// Feature counts per group. The overall vector shape depends only on the
// requested group list, never on the input data.
const (
	basicFeatureCount     = 14
	timeFeatureCount      = 5
	frequencyFeatureCount = 5
)

var statisticGroups = map[string]struct {
	size int
	fn   func(x []float64) []float64
}{
	GroupBasic:     {basicFeatureCount, basicFeatures},
	GroupTime:      {timeFeatureCount, timeFeatures},
	GroupFrequency: {frequencyFeatureCount, frequencyFeatures},
}

// Statistics concatenates the requested feature groups. The parameter
// statistical_features lists group names; when absent all three groups are
// computed in the order basic, time, frequency.
func Statistics(series pipeline.Series, params pipeline.Params) ([]float64, error) {
	groups := params.Strings("statistical_features")
	if len(groups) == 0 {
		groups = []string{GroupBasic, GroupTime, GroupFrequency}
	}

	var out []float64
	for _, name := range groups {
		group, ok := statisticGroups[name]
		if !ok {
			logger.Warn("unknown statistical feature group, skipping", "group", name)
			continue
		}
		if len(series) == 0 {
			out = append(out, zeros(group.size)...)
			continue
		}
		out = append(out, sanitize(group.fn(series))...)
	}
	return out, nil
}

// basicFeatures: mean, std, max, min, median, peak-to-peak, 25th percentile,
// 75th percentile, interquartile range, skewness, excess kurtosis, RMS,
// energy (sum of squares), absolute energy (sum of magnitudes).
func basicFeatures(x []float64) []float64 {
	maxV := floats.Max(x)
	minV := floats.Min(x)
	p25 := percentile(x, 25)
	p75 := percentile(x, 75)
	return []float64{
		meanOf(x),
		popStd(x),
		maxV,
		minV,
		percentile(x, 50),
		maxV - minV,
		p25,
		p75,
		p75 - p25,
		skewness(x),
		excessKurtosis(x),
		rms(x),
		energy(x),
		absEnergy(x),
	}
}

// timeFeatures: zero-crossing rate, peak-to-peak, crest factor, lag-1
// autocorrelation, linear trend slope. A zero-RMS series has an infinite
// crest factor; a single sample carries no temporal structure and yields
// all zeros.
func timeFeatures(x []float64) []float64 {
	if len(x) == 1 {
		return zeros(timeFeatureCount)
	}
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	crest := math.Inf(1)
	if r := rms(x); r > 0 {
		crest = peak / r
	}
	return []float64{
		zeroCrossingRate(x),
		floats.Max(x) - floats.Min(x),
		crest,
		autocorrelation(x, 1),
		linearSlope(x),
	}
}

// frequencyFeatures: dominant frequency, spectral centroid, spectral entropy,
// total spectral power, excess kurtosis of the power distribution. A series
// too short for Welch's method yields zeros except for its total power.
func frequencyFeatures(x []float64) []float64 {
	freqs, psd := welchPSD(x)
	if psd == nil {
		out := zeros(frequencyFeatureCount)
		out[3] = energy(x)
		return out
	}
	var total float64
	for _, p := range psd {
		total += p
	}
	return []float64{
		dominantFrequency(freqs, psd),
		spectralCentroid(freqs, psd),
		spectralEntropy(psd),
		total,
		excessKurtosis(psd),
	}
}
