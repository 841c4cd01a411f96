package steps

import (
	"fmt"
	"math"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// ReplaceKeep is the replacement_value literal that disables replacement.
const ReplaceKeep = "keep"

// RemoveNegativeValues replaces every sample below zero according to the
// replacement_value parameter:
//
//   - a number replaces negatives with that value
//   - null replaces negatives with the NaN gap sentinel
//   - the literal string "keep" leaves the series unchanged
//
// Zero and positive samples always pass through. The time axis is accepted
// for signature consistency but not used. Runs in O(n).
func RemoveNegativeValues(series, _ pipeline.Series, params pipeline.Params) (pipeline.Series, error) {
	replacement, keep, err := parseReplacement(params)
	if err != nil {
		return nil, err
	}
	if keep {
		return series.Copy(), nil
	}

	out := make(pipeline.Series, len(series))
	for i, v := range series {
		if v < 0 {
			out[i] = replacement
		} else {
			out[i] = v
		}
	}
	return out, nil
}

// parseReplacement resolves the replacement_value parameter. Absent defaults
// to 0.0; the second return is true for the "keep" strategy.
func parseReplacement(params pipeline.Params) (float64, bool, error) {
	raw, ok := params.Get("replacement_value")
	if !ok {
		return 0.0, false, nil
	}
	switch v := raw.(type) {
	case nil:
		return math.NaN(), false, nil
	case string:
		if v == ReplaceKeep {
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("invalid replacement_value %q: want a number, null, or %q", v, ReplaceKeep)
	default:
		f, err := params.FloatErr("replacement_value")
		if err != nil {
			return 0, false, err
		}
		return f, false, nil
	}
}
