package extract

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Feature set tiers of the tsfresh method, smallest to largest.
const (
	TierMinimal       = "minimal"
	TierEfficient     = "efficient"
	TierComprehensive = "comprehensive"
)

// DefaultTSFreshTier is used when tsfresh_feature_set is not configured.
const DefaultTSFreshTier = TierEfficient

var tsfreshTierSizes = map[string]int{
	TierMinimal:       20,
	TierEfficient:     100,
	TierComprehensive: 800,
}

// TSFresh computes a tiered bank of time-series characteristics. The output
// cardinality is fixed per tier regardless of the input: any computation
// failure yields an all-zero vector and a single sample yields a vector
// filled with that value, so downstream feature matrices keep their shape.
func TSFresh(series pipeline.Series, params pipeline.Params) (out []float64, err error) {
	tier := params.String("tsfresh_feature_set", DefaultTSFreshTier)
	size, ok := tsfreshTierSizes[tier]
	if !ok {
		return nil, fmt.Errorf("unknown tsfresh_feature_set %q", tier)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = zeros(size), nil
		}
	}()

	n := len(series)
	if n == 0 {
		return zeros(size), nil
	}
	if n == 1 {
		out = make([]float64, size)
		for i := range out {
			out[i] = series[0]
		}
		return out, nil
	}

	switch tier {
	case TierMinimal:
		out = tsfreshBase(series)
	case TierEfficient:
		out = tsfreshEfficient(series)
	default:
		out = tsfreshComprehensive(series)
	}
	return sanitize(out), nil
}

// tsfreshBase is the 20-feature core shared by every tier.
func tsfreshBase(x []float64) []float64 {
	var sum, meanAbsChange, meanChange float64
	for _, v := range x {
		sum += v
	}
	for i := 0; i < len(x)-1; i++ {
		d := x[i+1] - x[i]
		if d < 0 {
			meanAbsChange -= d
		} else {
			meanAbsChange += d
		}
		meanChange += d
	}
	pairs := float64(len(x) - 1)
	meanAbsChange /= pairs
	meanChange /= pairs

	mu := stat.Mean(x, nil)
	above, below := 0, 0
	for _, v := range x {
		if v > mu {
			above++
		} else if v < mu {
			below++
		}
	}

	return []float64{
		mu,
		popStd(x),
		popVariance(x),
		rms(x),
		floats.Max(x),
		floats.Min(x),
		percentile(x, 50),
		sum,
		energy(x),
		float64(len(x)),
		floats.Max(x) - floats.Min(x),
		x[0],
		x[len(x)-1],
		meanAbsChange,
		meanChange,
		float64(above),
		float64(below),
		skewness(x),
		excessKurtosis(x),
		zeroCrossingRate(x),
	}
}

// tsfreshEfficient extends the base with autocorrelations, quantiles,
// chunked aggregates and leading FFT magnitudes, 100 features total.
func tsfreshEfficient(x []float64) []float64 {
	out := tsfreshBase(x)
	out = append(out, autocorrelationBank(x, 20)...)
	out = append(out, quantileBank(x, 19)...)
	out = append(out, chunkedMeans(x, 10)...)
	out = append(out, chunkedStds(x, 10)...)
	out = append(out, fftMagnitudes(x, 21)...)
	return out
}

// tsfreshComprehensive widens every efficient bank, 800 features total.
func tsfreshComprehensive(x []float64) []float64 {
	out := tsfreshEfficient(x)
	out = append(out, autocorrelationBank(x, 200)...)
	out = append(out, quantileBank(x, 199)...)
	out = append(out, chunkedMeans(x, 50)...)
	out = append(out, chunkedStds(x, 50)...)
	out = append(out, fftMagnitudes(x, 201)...)
	return out
}

// autocorrelationBank computes autocorrelation at lags 1..count; lags that
// exceed the series length come out as 0.
func autocorrelationBank(x []float64, count int) []float64 {
	out := make([]float64, count)
	for lag := 1; lag <= count; lag++ {
		out[lag-1] = autocorrelation(x, lag)
	}
	return out
}

// quantileBank evaluates count evenly spaced interior quantiles.
func quantileBank(x []float64, count int) []float64 {
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		p := 100 * float64(i+1) / float64(count+1)
		out[i] = percentile(x, p)
	}
	return out
}

// chunkedMeans splits the series into count contiguous chunks and takes the
// mean of each; chunks past the end of a short series stay 0.
func chunkedMeans(x []float64, count int) []float64 {
	return chunkedAggregate(x, count, func(c []float64) float64 { return stat.Mean(c, nil) })
}

func chunkedStds(x []float64, count int) []float64 {
	return chunkedAggregate(x, count, popStd)
}

func chunkedAggregate(x []float64, count int, agg func([]float64) float64) []float64 {
	out := make([]float64, count)
	size := float64(len(x)) / float64(count)
	for i := 0; i < count; i++ {
		start := int(float64(i) * size)
		end := int(float64(i+1) * size)
		if i == count-1 {
			end = len(x)
		}
		if start >= len(x) || end <= start {
			continue
		}
		out[i] = agg(x[start:end])
	}
	return out
}

// fftMagnitudes returns the magnitudes of the first count Fourier
// coefficients, zero-padded when the series has fewer bins.
func fftMagnitudes(x []float64, count int) []float64 {
	out := make([]float64, count)
	fft := fourier.NewFFT(len(x))
	coeffs := fft.Coefficients(nil, x)
	for k := 0; k < len(coeffs) && k < count; k++ {
		out[k] = cmplx.Abs(coeffs[k])
	}
	return out
}
