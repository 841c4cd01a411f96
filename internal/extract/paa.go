package extract

import (
	"fmt"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"

	"gonum.org/v1/gonum/stat"
)

// DefaultPAATargetLength is used when paa_target_length is not configured.
const DefaultPAATargetLength = 10

// PAA performs piecewise aggregate approximation: the series is divided into
// paa_target_length contiguous segments of (fractionally) equal width and
// each segment is replaced by its mean. The output length is always exactly
// the target:
//   - an empty series yields all zeros,
//   - a single sample is repeated target times,
//   - a series shorter than the target is passed through zero-padded.
func PAA(series pipeline.Series, params pipeline.Params) ([]float64, error) {
	target := params.Int("paa_target_length", DefaultPAATargetLength)
	if target <= 0 {
		return nil, fmt.Errorf("paa_target_length must be positive, got %d", target)
	}

	n := len(series)
	out := make([]float64, target)
	switch {
	case n == 0:
		return out, nil
	case n == 1:
		for i := range out {
			out[i] = series[0]
		}
		return out, nil
	case n <= target:
		copy(out, series)
		return out, nil
	}

	// Fractional segment boundaries keep segment widths balanced when the
	// length is not a multiple of the target.
	segmentSize := float64(n) / float64(target)
	for i := 0; i < target; i++ {
		start := int(float64(i) * segmentSize)
		end := int(float64(i+1) * segmentSize)
		if i == target-1 {
			end = n
		}
		if end <= start {
			end = start + 1
		}
		out[i] = stat.Mean(series[start:end], nil)
	}
	return out, nil
}
