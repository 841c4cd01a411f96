package extract

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// catch22FeatureCount is the size of the canonical feature set; enabling
// use_catch24 appends the series mean and standard deviation.
const catch22FeatureCount = 22

// catch22Features lists the feature functions in their canonical order. Each
// receives the raw series and returns one scalar.
var catch22Features = []func(x []float64) float64{
	histogramMode5,
	histogramMode10,
	longestStretchAboveMean,
	longestStretchDecreasing,
	firstACFCrossing,
	firstACFMinimum,
	autoMutualInfoLag2,
	timeReversalAsymmetry,
	proportionHighDiffs,
	transitionMatrixTrace,
	firstACFPeak,
	embeddingDistanceMean,
	firstMutualInfoMinimum,
	localMeanForecastError,
	outlierTimingPositive,
	outlierTimingNegative,
	lowFrequencyPowerRatio,
	welchCentroid,
	symbolSequenceEntropy,
	rangeFitFluctuation,
	detrendedFluctuation,
	meanCrossingIrregularity,
}

// Catch22 computes the canonical catch22 characteristics, optionally widened
// to catch24 with the mean and standard deviation. Like tsfresh, the shape
// is fixed: failures produce zeros and a single sample fills the vector with
// its value.
func Catch22(series pipeline.Series, params pipeline.Params) (out []float64, err error) {
	size := catch22FeatureCount
	catch24 := params.Bool("use_catch24", false)
	if catch24 {
		size += 2
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

	out = make([]float64, 0, size)
	for _, fn := range catch22Features {
		out = append(out, fn(series))
	}
	if catch24 {
		out = append(out, meanOf(series), popStd(series))
	}
	return sanitize(out), nil
}

// zscored returns a standardized copy; a constant series comes back all zero.
func zscored(x []float64) []float64 {
	out := make([]float64, len(x))
	mu := stat.Mean(x, nil)
	sigma := popStd(x)
	if sigma == 0 {
		return out
	}
	for i, v := range x {
		out[i] = (v - mu) / sigma
	}
	return out
}

// histogramMode returns the center of the fullest of nbins equal-width bins
// over the z-scored series.
func histogramMode(x []float64, nbins int) float64 {
	z := zscored(x)
	lo, hi := z[0], z[0]
	for _, v := range z {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return lo
	}
	width := (hi - lo) / float64(nbins)
	counts := make([]int, nbins)
	for _, v := range z {
		bin := int((v - lo) / width)
		if bin >= nbins {
			bin = nbins - 1
		}
		counts[bin]++
	}
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return lo + (float64(best)+0.5)*width
}

func histogramMode5(x []float64) float64  { return histogramMode(x, 5) }
func histogramMode10(x []float64) float64 { return histogramMode(x, 10) }

// longestStretchAboveMean is the longest run of consecutive samples above
// the series mean.
func longestStretchAboveMean(x []float64) float64 {
	mu := stat.Mean(x, nil)
	longest, run := 0, 0
	for _, v := range x {
		if v > mu {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return float64(longest)
}

// longestStretchDecreasing is the longest run of consecutive negative first
// differences.
func longestStretchDecreasing(x []float64) float64 {
	longest, run := 0, 0
	for i := 1; i < len(x); i++ {
		if x[i] < x[i-1] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return float64(longest)
}

// firstACFCrossing is the first lag where the autocorrelation drops below
// 1/e, a classic correlation-length estimate.
func firstACFCrossing(x []float64) float64 {
	threshold := 1 / math.E
	for lag := 1; lag < len(x); lag++ {
		if autocorrelation(x, lag) < threshold {
			return float64(lag)
		}
	}
	return float64(len(x))
}

// firstACFMinimum is the first lag at which the autocorrelation stops
// decreasing.
func firstACFMinimum(x []float64) float64 {
	prev := autocorrelation(x, 1)
	for lag := 2; lag < len(x); lag++ {
		cur := autocorrelation(x, lag)
		if cur > prev {
			return float64(lag - 1)
		}
		prev = cur
	}
	return float64(len(x) - 1)
}

// autoMutualInfoLag2 is the Gaussian automutual information at lag 2,
// -0.5 ln(1 - r^2).
func autoMutualInfoLag2(x []float64) float64 {
	r := autocorrelation(x, 2)
	if r*r >= 1 {
		return 0
	}
	return -0.5 * math.Log(1-r*r)
}

// timeReversalAsymmetry is the mean cubed first difference, zero for
// statistically time-reversible signals.
func timeReversalAsymmetry(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < len(x)-1; i++ {
		d := x[i+1] - x[i]
		sum += d * d * d
	}
	return sum / float64(len(x)-1)
}

// proportionHighDiffs is the fraction of successive differences exceeding
// 4% of the series standard deviation.
func proportionHighDiffs(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	threshold := 0.04 * popStd(x)
	count := 0
	for i := 0; i < len(x)-1; i++ {
		if math.Abs(x[i+1]-x[i]) > threshold {
			count++
		}
	}
	return float64(count) / float64(len(x)-1)
}

// transitionMatrixTrace symbolizes the series into terciles and returns the
// trace of the 3x3 symbol transition probability matrix, i.e. the tendency
// to stay in the same regime.
func transitionMatrixTrace(x []float64) float64 {
	symbols := tercileSymbols(x)
	if len(symbols) < 2 {
		return 0
	}
	var counts [3][3]int
	for i := 0; i < len(symbols)-1; i++ {
		counts[symbols[i]][symbols[i+1]]++
	}
	total := float64(len(symbols) - 1)
	return (float64(counts[0][0]) + float64(counts[1][1]) + float64(counts[2][2])) / total
}

// firstACFPeak is the first lag whose autocorrelation exceeds both of its
// neighbors, a crude periodicity detector.
func firstACFPeak(x []float64) float64 {
	prev := autocorrelation(x, 1)
	cur := autocorrelation(x, 2)
	for lag := 3; lag < len(x); lag++ {
		next := autocorrelation(x, lag)
		if cur > prev && cur > next && cur > 0.01 {
			return float64(lag - 1)
		}
		prev, cur = cur, next
	}
	return 0
}

// embeddingDistanceMean is the mean Euclidean step length in the (x_t,
// x_{t+1}) embedding plane.
func embeddingDistanceMean(x []float64) float64 {
	if len(x) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(x)-2; i++ {
		dx := x[i+1] - x[i]
		dy := x[i+2] - x[i+1]
		sum += math.Hypot(dx, dy)
	}
	return sum / float64(len(x)-2)
}

// firstMutualInfoMinimum scans Gaussian automutual information over the
// first 40 lags and returns the lag of its first minimum.
func firstMutualInfoMinimum(x []float64) float64 {
	maxLag := 40
	if maxLag >= len(x) {
		maxLag = len(x) - 1
	}
	ami := func(lag int) float64 {
		r := autocorrelation(x, lag)
		if r*r >= 1 {
			return 0
		}
		return -0.5 * math.Log(1-r*r)
	}
	prev := ami(1)
	for lag := 2; lag <= maxLag; lag++ {
		cur := ami(lag)
		if cur > prev {
			return float64(lag - 1)
		}
		prev = cur
	}
	return float64(maxLag)
}

// localMeanForecastError is the RMS error of predicting each sample by the
// mean of its three predecessors, normalized by the series deviation.
func localMeanForecastError(x []float64) float64 {
	const lookback = 3
	if len(x) <= lookback {
		return 0
	}
	var sum float64
	for i := lookback; i < len(x); i++ {
		pred := (x[i-1] + x[i-2] + x[i-3]) / lookback
		d := x[i] - pred
		sum += d * d
	}
	sigma := popStd(x)
	if sigma == 0 {
		return 0
	}
	return math.Sqrt(sum/float64(len(x)-lookback)) / sigma
}

// outlierTiming measures where extreme deviations sit in time: the median
// relative position of samples beyond one standard deviation on the given
// side, centered so 0 means evenly spread.
func outlierTiming(x []float64, sign float64) float64 {
	mu := stat.Mean(x, nil)
	sigma := popStd(x)
	if sigma == 0 {
		return 0
	}
	var positions []float64
	for i, v := range x {
		if sign*(v-mu) > sigma {
			positions = append(positions, float64(i)/float64(len(x)-1))
		}
	}
	if len(positions) == 0 {
		return 0
	}
	return percentile(positions, 50) - 0.5
}

func outlierTimingPositive(x []float64) float64 { return outlierTiming(x, 1) }
func outlierTimingNegative(x []float64) float64 { return outlierTiming(x, -1) }

// lowFrequencyPowerRatio is the fraction of Welch spectral power in the
// lowest fifth of the frequency range.
func lowFrequencyPowerRatio(x []float64) float64 {
	_, psd := welchPSD(x)
	if psd == nil {
		return 0
	}
	var total, low float64
	cutoff := len(psd) / 5
	for k, p := range psd {
		total += p
		if k <= cutoff {
			low += p
		}
	}
	if total == 0 {
		return 0
	}
	return low / total
}

// welchCentroid is the spectral centroid of the Welch PSD.
func welchCentroid(x []float64) float64 {
	freqs, psd := welchPSD(x)
	if psd == nil {
		return 0
	}
	return spectralCentroid(freqs, psd)
}

// symbolSequenceEntropy is the Shannon entropy (natural log) of successive
// tercile-symbol pairs.
func symbolSequenceEntropy(x []float64) float64 {
	symbols := tercileSymbols(x)
	if len(symbols) < 2 {
		return 0
	}
	counts := make(map[[2]int]int)
	for i := 0; i < len(symbols)-1; i++ {
		counts[[2]int{symbols[i], symbols[i+1]}]++
	}
	total := float64(len(symbols) - 1)
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log(p)
	}
	return h
}

// fluctuationExponent fits log window size against log fluctuation over
// dyadic windows. detrend selects per-window linear detrending (DFA) versus
// plain range scaling.
func fluctuationExponent(x []float64, detrend bool) float64 {
	n := len(x)
	if n < 8 {
		return 0
	}
	// Cumulative profile of the mean-removed series.
	mu := stat.Mean(x, nil)
	profile := make([]float64, n)
	var acc float64
	for i, v := range x {
		acc += v - mu
		profile[i] = acc
	}

	var logSizes, logFlucts []float64
	for size := 4; size <= n/2; size *= 2 {
		var sum float64
		windows := 0
		for start := 0; start+size <= n; start += size {
			w := profile[start : start+size]
			var f float64
			if detrend {
				f = residualStd(w)
			} else {
				lo, hi := w[0], w[0]
				for _, v := range w {
					if v < lo {
						lo = v
					}
					if v > hi {
						hi = v
					}
				}
				f = hi - lo
			}
			sum += f
			windows++
		}
		if windows == 0 || sum == 0 {
			continue
		}
		logSizes = append(logSizes, math.Log(float64(size)))
		logFlucts = append(logFlucts, math.Log(sum/float64(windows)))
	}
	if len(logSizes) < 2 {
		return 0
	}
	_, slope := stat.LinearRegression(logSizes, logFlucts, nil, false)
	return slope
}

func rangeFitFluctuation(x []float64) float64  { return fluctuationExponent(x, false) }
func detrendedFluctuation(x []float64) float64 { return fluctuationExponent(x, true) }

// residualStd is the standard deviation of a window after removing its
// least-squares linear trend.
func residualStd(w []float64) float64 {
	idx := make([]float64, len(w))
	for i := range idx {
		idx[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(idx, w, nil, false)
	var sum float64
	for i, v := range w {
		d := v - (alpha + beta*idx[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(w)))
}

// meanCrossingIrregularity is the coefficient of variation of the intervals
// between mean crossings.
func meanCrossingIrregularity(x []float64) float64 {
	mu := stat.Mean(x, nil)
	var crossings []int
	for i := 0; i < len(x)-1; i++ {
		if (x[i]-mu)*(x[i+1]-mu) < 0 {
			crossings = append(crossings, i)
		}
	}
	if len(crossings) < 2 {
		return 0
	}
	intervals := make([]float64, len(crossings)-1)
	for i := 1; i < len(crossings); i++ {
		intervals[i-1] = float64(crossings[i] - crossings[i-1])
	}
	m := stat.Mean(intervals, nil)
	if m == 0 {
		return 0
	}
	return popStd(intervals) / m
}

// tercileSymbols maps each sample to 0, 1 or 2 by its tercile.
func tercileSymbols(x []float64) []int {
	t1 := percentile(x, 100.0/3)
	t2 := percentile(x, 200.0/3)
	symbols := make([]int, len(x))
	for i, v := range x {
		switch {
		case v <= t1:
			symbols[i] = 0
		case v <= t2:
			symbols[i] = 1
		default:
			symbols[i] = 2
		}
	}
	return symbols
}
