package steps

import (
	"math"

	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// gridPrecision rounds grid timestamps to 4 decimal places to avoid
// accumulating floating-point drift across many grid steps.
const gridPrecision = 1e4

// ResampleUniformTimes resamples an irregularly-timed series onto a uniform
// grid with spacing target_distance, using linear interpolation between the
// bracketing samples. The grid starts at the first timestamp, is rounded to
// 4 decimal places per point, and is clipped to the last timestamp.
//
// Conditions that make resampling impossible return the input unchanged
// (a warning, not a failure): missing or empty time axis, length mismatch
// between series and time axis, fewer than 2 points, non-positive
// target_distance, or a resulting grid of one point or fewer.
func ResampleUniformTimes(series, timeAxis pipeline.Series, params pipeline.Params) (pipeline.Series, error) {
	if len(timeAxis) == 0 {
		logger.Warn("resample_uniform_times: no time axis, returning series unchanged")
		return series.Copy(), nil
	}
	if len(series) != len(timeAxis) {
		logger.Warn("resample_uniform_times: series/time length mismatch, returning series unchanged",
			"series_len", len(series), "time_len", len(timeAxis))
		return series.Copy(), nil
	}
	if len(series) < 2 {
		return series.Copy(), nil
	}

	targetDistance := params.Float("target_distance", 0)
	if targetDistance <= 0 {
		logger.Warn("resample_uniform_times: invalid target_distance, returning series unchanged",
			"target_distance", targetDistance)
		return series.Copy(), nil
	}

	start := timeAxis[0]
	end := timeAxis[len(timeAxis)-1]

	numPoints := int((end-start)/targetDistance) + 1
	grid := make([]float64, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		t := math.Round((start+float64(i)*targetDistance)*gridPrecision) / gridPrecision
		if t > end {
			break
		}
		grid = append(grid, t)
	}

	if len(grid) <= 1 {
		return series.Copy(), nil
	}

	out := make(pipeline.Series, len(grid))
	cursor := 0
	for i, target := range grid {
		out[i], cursor = interpolateAt(series, timeAxis, target, cursor)
	}
	return out, nil
}

// interpolateAt linearly interpolates the series value at target time. The
// cursor carries the bracket search position between successive grid points;
// the grid is increasing, so the whole resample is a single forward sweep.
func interpolateAt(series, timeAxis pipeline.Series, target float64, cursor int) (float64, int) {
	n := len(timeAxis)
	if target <= timeAxis[0] {
		return series[0], cursor
	}
	if target >= timeAxis[n-1] {
		return series[n-1], cursor
	}

	i := cursor
	for i < n-2 && timeAxis[i+1] < target {
		i++
	}

	t0, t1 := timeAxis[i], timeAxis[i+1]
	y0, y1 := series[i], series[i+1]
	if t1 == t0 {
		return y0, i
	}
	weight := (target - t0) / (t1 - t0)
	return y0 + (y1-y0)*weight, i
}
