// Package steps provides implementations for processing steps.
// Processing steps clean and normalize a raw series given the recording's
// time axis as read-only context. Every step is a pure function: it never
// mutates its inputs and returns a fresh series.
//
// A step signals failure by returning an error or a nil series; the
// processing stage then reverts the affected series to its original,
// pre-pipeline samples. Conditions the original pipeline treats as "nothing
// to do" (missing time axis, too few points, invalid parameters) return the
// input unchanged instead.
package steps

import "github.com/nikolaiwest/cpc-data/pkg/pipeline"

// Step names as they appear in processing settings.
const (
	NameRemoveNegativeValues = "remove_negative_values"
	NameResampleUniformTimes = "resample_uniform_times"
	NameResampleEqualLengths = "resample_equal_lengths"
	NameScript               = "script"
)

// Func is the transform signature all processing steps share. The time axis
// may be nil for steps that do not need temporal context; params carries the
// step's configuration record.
type Func func(series, timeAxis pipeline.Series, params pipeline.Params) (pipeline.Series, error)
