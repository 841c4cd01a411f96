package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

func TestResampleEqualLengths_Truncation(t *testing.T) {
	input := pipeline.Series{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		cutoff string
		want   pipeline.Series
	}{
		{"post keeps head", "post", pipeline.Series{1, 2, 3}},
		{"pre keeps tail", "pre", pipeline.Series{3, 4, 5}},
		{"unknown defaults to post", "middle", pipeline.Series{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResampleEqualLengths(input, nil, pipeline.Params{
				"target_length":   3,
				"cutoff_position": tt.cutoff,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResampleEqualLengths_Padding(t *testing.T) {
	input := pipeline.Series{1, 2}

	tests := []struct {
		name string
		pos  string
		val  float64
		want pipeline.Series
	}{
		{"post appends", "post", 0.0, pipeline.Series{1, 2, 0, 0}},
		{"pre prepends", "pre", 0.0, pipeline.Series{0, 0, 1, 2}},
		{"custom value", "post", -1.0, pipeline.Series{1, 2, -1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResampleEqualLengths(input, nil, pipeline.Params{
				"target_length": 4,
				"padding_val":   tt.val,
				"padding_pos":   tt.pos,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResampleEqualLengths_NoOps(t *testing.T) {
	tests := []struct {
		name   string
		series pipeline.Series
		params pipeline.Params
	}{
		{"exact length", pipeline.Series{1, 2, 3}, pipeline.Params{"target_length": 3}},
		{"empty input", pipeline.Series{}, pipeline.Params{"target_length": 5}},
		{"zero target", pipeline.Series{1, 2}, pipeline.Params{"target_length": 0}},
		{"negative target", pipeline.Series{1, 2}, pipeline.Params{"target_length": -3}},
		{"missing target", pipeline.Series{1, 2}, pipeline.Params{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResampleEqualLengths(tt.series, nil, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.series, got)
		})
	}
}

// Shape law: truncate-then-pad restores the original length (not the
// original values; the dropped tail is gone).
func TestResampleEqualLengths_ShapeRoundTrip(t *testing.T) {
	input := pipeline.Series{1, 2, 3, 4, 5, 6}

	shortened, err := ResampleEqualLengths(input, nil, pipeline.Params{
		"target_length":   4,
		"cutoff_position": "post",
	})
	require.NoError(t, err)

	restored, err := ResampleEqualLengths(shortened, nil, pipeline.Params{
		"target_length": len(input),
		"padding_pos":   "pre",
	})
	require.NoError(t, err)
	assert.Len(t, restored, len(input))
}

func TestResampleEqualLengths_AlwaysExactLength(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		input := make(pipeline.Series, n)
		for i := range input {
			input[i] = float64(i)
		}
		for _, target := range []int{1, 5, 10, 100} {
			got, err := ResampleEqualLengths(input, nil, pipeline.Params{"target_length": target})
			require.NoError(t, err)
			assert.Len(t, got, target, "n=%d target=%d", n, target)
		}
	}
}
