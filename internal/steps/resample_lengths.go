package steps

import (
	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Truncation/padding position values.
const (
	PositionPre  = "pre"
	PositionPost = "post"
)

// ResampleEqualLengths forces a series to exactly target_length samples.
// Longer series are truncated: cutoff_position "post" keeps the first
// target_length samples, "pre" keeps the last. Shorter series are padded
// with padding_val: padding_pos "post" appends at the end, "pre" prepends at
// the start. Already-exact, empty, and non-positive-target inputs pass
// through unchanged.
//
// The time axis is accepted but ignored. This step must never be configured
// for the time series itself: truncating or padding timestamps desynchronizes
// them from the samples of every other series in the bundle.
func ResampleEqualLengths(series, _ pipeline.Series, params pipeline.Params) (pipeline.Series, error) {
	targetLength := params.Int("target_length", 0)
	if len(series) == 0 || targetLength <= 0 {
		if targetLength <= 0 {
			logger.Warn("resample_equal_lengths: invalid target_length, returning series unchanged",
				"target_length", targetLength)
		}
		return series.Copy(), nil
	}

	current := len(series)
	if current == targetLength {
		return series.Copy(), nil
	}

	if current > targetLength {
		return truncateSeries(series, targetLength, params.String("cutoff_position", PositionPost)), nil
	}
	return padSeries(series, targetLength,
		params.Float("padding_val", 0.0),
		params.String("padding_pos", PositionPost)), nil
}

// truncateSeries shortens a series that exceeds the target length.
// Unrecognized cutoff positions default to "post".
func truncateSeries(series pipeline.Series, targetLength int, cutoffPosition string) pipeline.Series {
	out := make(pipeline.Series, targetLength)
	if cutoffPosition == PositionPre {
		// Keep last target_length values (drop the head)
		copy(out, series[len(series)-targetLength:])
	} else {
		// Keep first target_length values (drop the tail)
		copy(out, series[:targetLength])
	}
	return out
}

// padSeries extends a series that is shorter than the target length.
// Unrecognized padding positions default to "post".
func padSeries(series pipeline.Series, targetLength int, paddingVal float64, paddingPos string) pipeline.Series {
	out := make(pipeline.Series, targetLength)
	padding := targetLength - len(series)

	if paddingPos == PositionPre {
		for i := 0; i < padding; i++ {
			out[i] = paddingVal
		}
		copy(out[padding:], series)
	} else {
		copy(out, series)
		for i := len(series); i < targetLength; i++ {
			out[i] = paddingVal
		}
	}
	return out
}
