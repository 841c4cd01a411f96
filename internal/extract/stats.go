package extract

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Descriptive kernels shared by the statistics, tsfresh and catch22 methods.
// All of them tolerate short inputs and return 0 where a moment is undefined
// instead of NaN, so feature vectors stay finite for constant series.

func meanOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// popVariance is the population variance (divisor n, not n-1).
func popVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.MomentAbout(2, x, stat.Mean(x, nil), nil)
}

func popStd(x []float64) float64 {
	return math.Sqrt(popVariance(x))
}

// skewness and excessKurtosis use population central moments and return 0
// for constant series, where the second moment vanishes.
func skewness(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mu := stat.Mean(x, nil)
	m2 := stat.MomentAbout(2, x, mu, nil)
	if m2 == 0 {
		return 0
	}
	m3 := stat.MomentAbout(3, x, mu, nil)
	return m3 / math.Pow(m2, 1.5)
}

func excessKurtosis(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mu := stat.Mean(x, nil)
	m2 := stat.MomentAbout(2, x, mu, nil)
	if m2 == 0 {
		return 0
	}
	m4 := stat.MomentAbout(4, x, mu, nil)
	return m4/(m2*m2) - 3
}

// percentile interpolates linearly between order statistics, matching the
// default behavior of most numeric stacks. p is in [0, 100].
func percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	norm := floats.Norm(x, 2)
	return norm / math.Sqrt(float64(len(x)))
}

// energy is the sum of squares, absEnergy the sum of absolute values.
func energy(x []float64) float64 {
	norm := floats.Norm(x, 2)
	return norm * norm
}

func absEnergy(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += math.Abs(v)
	}
	return sum
}

// zeroCrossingRate counts sign changes between consecutive samples,
// normalized by the number of sample pairs.
func zeroCrossingRate(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	crossings := 0
	for i := 0; i < len(x)-1; i++ {
		if x[i]*x[i+1] < 0 {
			crossings++
		}
	}
	return float64(crossings) / float64(len(x)-1)
}

// autocorrelation at the given positive lag; 0 when the lag does not fit or
// the series is constant.
func autocorrelation(x []float64, lag int) float64 {
	if lag <= 0 || lag >= len(x) {
		return 0
	}
	mu := stat.Mean(x, nil)
	variance := popVariance(x)
	if variance == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(x)-lag; i++ {
		sum += (x[i] - mu) * (x[i+lag] - mu)
	}
	return sum / (float64(len(x)) * variance)
}

// linearSlope fits x against its sample index and returns the slope.
func linearSlope(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	idx := make([]float64, len(x))
	floats.Span(idx, 0, float64(len(x)-1))
	_, slope := stat.LinearRegression(idx, x, nil, false)
	return slope
}

// sanitize replaces NaN entries in place with 0 and returns the slice.
// Infinities are kept; they carry information (a zero-RMS crest factor).
func sanitize(v []float64) []float64 {
	for i, f := range v {
		if math.IsNaN(f) {
			v[i] = 0
		}
	}
	return v
}

func zeros(n int) []float64 {
	return make([]float64, n)
}
