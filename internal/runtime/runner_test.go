package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolaiwest/cpc-data/internal/config"
	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/internal/registry"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// fakeRecording is a minimal pipeline.Recording for runner tests.
type fakeRecording struct {
	class  string
	bundle pipeline.SeriesBundle
}

func (f *fakeRecording) ClassName() string                { return f.class }
func (f *fakeRecording) SerialData() pipeline.SeriesBundle { return f.bundle }

func testRunCtx() logger.RunContext {
	return logger.RunContext{RunID: "test-run", ClassName: "test.class"}
}

func init() {
	// Steps with controlled failure modes, registered once for the package.
	registry.RegisterStep("test_double", func(series, _ pipeline.Series, _ pipeline.Params) (pipeline.Series, error) {
		out := series.Copy()
		for i := range out {
			out[i] *= 2
		}
		return out, nil
	})
	registry.RegisterStep("test_fail", func(_, _ pipeline.Series, _ pipeline.Params) (pipeline.Series, error) {
		return nil, errors.New("deliberate failure")
	})
	registry.RegisterStep("test_nil_result", func(_, _ pipeline.Series, _ pipeline.Params) (pipeline.Series, error) {
		return nil, nil
	})
	registry.RegisterStep("test_panic", func(_, _ pipeline.Series, _ pipeline.Params) (pipeline.Series, error) {
		panic("deliberate panic")
	})
	registry.RegisterStep("test_hang", func(series, _ pipeline.Series, _ pipeline.Params) (pipeline.Series, error) {
		time.Sleep(10 * time.Second)
		return series, nil
	})
	registry.RegisterStep("test_sum_with_time", func(series, timeAxis pipeline.Series, _ pipeline.Params) (pipeline.Series, error) {
		out := series.Copy()
		for i := range out {
			out[i] += timeAxis[i]
		}
		return out, nil
	})

	registry.RegisterMethod("test_first", func(series pipeline.Series, _ pipeline.Params) ([]float64, error) {
		return []float64{series[0]}, nil
	})
	registry.RegisterMethod("test_fail", func(_ pipeline.Series, _ pipeline.Params) ([]float64, error) {
		return nil, errors.New("deliberate failure")
	})
	registry.RegisterMethod("test_nil", func(_ pipeline.Series, _ pipeline.Params) ([]float64, error) {
		return nil, nil
	})
}

func singleStep(name string) config.StepSequence {
	return config.StepSequence{{Name: name}}
}

func TestProcessBundleAppliesStepsInOrder(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{
		pipeline.TimeKey: {0, 1, 2},
		"torque":         {1, 2, 3},
	}
	cfg := map[string]config.StepSequence{
		"torque": {{Name: "test_double"}, {Name: "test_double"}},
	}

	out, statuses := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	require.Contains(t, out, "torque")
	assert.Equal(t, pipeline.Series{4, 8, 12}, out["torque"])
	assert.Equal(t, pipeline.SeriesProcessed, statuses["torque"])
}

func TestProcessBundleExcludesTimeFromOutput(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{
		pipeline.TimeKey: {0, 1, 2},
		"angle":          {1, 1, 1},
	}

	out, _ := r.ProcessBundle(context.Background(), testRunCtx(), bundle, nil)

	assert.NotContains(t, out, pipeline.TimeKey)
	assert.Contains(t, out, "angle")
}

func TestProcessBundleStepsSeeTimeAxis(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{
		pipeline.TimeKey: {10, 20, 30},
		"torque":         {1, 2, 3},
	}
	cfg := map[string]config.StepSequence{"torque": singleStep("test_sum_with_time")}

	out, _ := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, pipeline.Series{11, 22, 33}, out["torque"])
}

func TestProcessBundleRevertsToOriginalOnFailure(t *testing.T) {
	tests := []struct {
		name string
		step string
	}{
		{"step returns error", "test_fail"},
		{"step returns nil series", "test_nil_result"},
		{"step panics", "test_panic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(&config.Settings{})
			bundle := pipeline.SeriesBundle{
				pipeline.TimeKey: {0, 1, 2},
				"torque":         {1, 2, 3},
			}
			// A transform runs first so a failed unit must revert past it.
			cfg := map[string]config.StepSequence{
				"torque": {{Name: "test_double"}, {Name: tt.step}},
			}

			out, statuses := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

			assert.Equal(t, pipeline.Series{1, 2, 3}, out["torque"], "reverts to original samples")
			assert.Equal(t, pipeline.SeriesReverted, statuses["torque"])
		})
	}
}

func TestProcessBundleRevertsOnTimeout(t *testing.T) {
	r := NewRunner(&config.Settings{}, WithUnitTimeout(20*time.Millisecond))
	bundle := pipeline.SeriesBundle{"torque": {1, 2, 3}}
	cfg := map[string]config.StepSequence{"torque": singleStep("test_hang")}

	out, statuses := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, pipeline.Series{1, 2, 3}, out["torque"])
	assert.Equal(t, pipeline.SeriesReverted, statuses["torque"])
}

func TestProcessBundleFailureIsolation(t *testing.T) {
	// One failing series must not disturb its siblings.
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{
		"good": {1, 2},
		"bad":  {3, 4},
	}
	cfg := map[string]config.StepSequence{
		"good": singleStep("test_double"),
		"bad":  singleStep("test_fail"),
	}

	out, statuses := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, pipeline.Series{2, 4}, out["good"])
	assert.Equal(t, pipeline.Series{3, 4}, out["bad"])
	assert.Equal(t, pipeline.SeriesProcessed, statuses["good"])
	assert.Equal(t, pipeline.SeriesReverted, statuses["bad"])
}

func TestProcessBundleSkipsDisabledAndUnknownSteps(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{"torque": {1, 2}}
	cfg := map[string]config.StepSequence{
		"torque": {
			{Name: "test_double", Disabled: true},
			{Name: "no_such_step"},
			{Name: "test_double"},
		},
	}

	out, statuses := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, pipeline.Series{2, 4}, out["torque"], "only the enabled known step ran")
	assert.Equal(t, pipeline.SeriesProcessed, statuses["torque"])
}

func TestProcessBundleDoesNotMutateInput(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{"torque": {1, 2, 3}}
	cfg := map[string]config.StepSequence{"torque": singleStep("test_double")}

	_, _ = r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, pipeline.Series{1, 2, 3}, bundle["torque"])
}

func TestProcessBundleDropsEmptySeries(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{"torque": {}, "angle": {1, 2}}
	cfg := map[string]config.StepSequence{"torque": singleStep("test_double")}

	out, statuses := r.ProcessBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.NotContains(t, out, "torque", "empty series are dropped, not carried")
	assert.Contains(t, out, "angle")
	assert.Equal(t, pipeline.SeriesSkipped, statuses["torque"])
}

func TestExtractBundleHonorsUseSeries(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{"torque": {5, 6}, "angle": {7, 8}}
	cfg := map[string]config.ExtractionSpec{
		"torque": {UseSeries: true, Method: "test_first"},
		"angle":  {UseSeries: false, Method: "test_first"},
	}

	features, _ := r.ExtractBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, []float64{5}, features["torque"])
	assert.NotContains(t, features, "angle")
}

func TestExtractBundleOmitsFailedSeries(t *testing.T) {
	tests := []struct {
		name   string
		method string
		bundle pipeline.SeriesBundle
	}{
		{"method fails", "test_fail", pipeline.SeriesBundle{"s": {1}}},
		{"method returns nil", "test_nil", pipeline.SeriesBundle{"s": {1}}},
		{"unknown method", "no_such_method", pipeline.SeriesBundle{"s": {1}}},
		{"missing series data", "test_first", pipeline.SeriesBundle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(&config.Settings{})
			cfg := map[string]config.ExtractionSpec{
				"s": {UseSeries: true, Method: tt.method},
			}

			features, statuses := r.ExtractBundle(context.Background(), testRunCtx(), tt.bundle, cfg)

			assert.NotContains(t, features, "s", "failed series are omitted, never placeholders")
			assert.Equal(t, pipeline.SeriesSkipped, statuses["s"])
		})
	}
}

func TestExtractBundleDefaultsToRawMethod(t *testing.T) {
	r := NewRunner(&config.Settings{})
	bundle := pipeline.SeriesBundle{"torque": {1, 2, 3}}
	cfg := map[string]config.ExtractionSpec{"torque": {UseSeries: true}}

	features, _ := r.ExtractBundle(context.Background(), testRunCtx(), bundle, cfg)

	assert.Equal(t, []float64{1, 2, 3}, features["torque"])
}

func TestRunNilRecordingFails(t *testing.T) {
	r := NewRunner(&config.Settings{})
	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilRecording)
}

func TestRunWithoutSerialDataYieldsNothing(t *testing.T) {
	r := NewRunner(&config.Settings{})
	result, err := r.Run(context.Background(), &fakeRecording{class: "test.class"})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRunEndToEnd(t *testing.T) {
	settings := &config.Settings{
		Processing: map[string]map[string]config.StepSequence{
			"test.class": {
				"torque": singleStep("test_double"),
				"angle":  singleStep("test_fail"),
			},
		},
		Extraction: map[string]map[string]config.ExtractionSpec{
			"test.class": {
				"torque": {UseSeries: true, Method: "test_first"},
				"angle":  {UseSeries: true, Method: "test_first"},
			},
		},
	}
	r := NewRunner(settings, WithWorkers(2))
	rec := &fakeRecording{
		class: "test.class",
		bundle: pipeline.SeriesBundle{
			pipeline.TimeKey: {0, 1},
			"torque":         {3, 4},
			"angle":          {5, 6},
		},
	}

	result, err := r.Run(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "test.class", result.ClassName)
	assert.Equal(t, []float64{6}, result.Features["torque"], "doubled then extracted")
	assert.Equal(t, []float64{5}, result.Features["angle"], "reverted then extracted")
	assert.Equal(t, 1, result.SeriesProcessed)
	assert.Equal(t, 1, result.SeriesReverted)
	assert.Equal(t, 0, result.SeriesSkipped)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
}

func TestRunUnknownClassSkipsEverything(t *testing.T) {
	r := NewRunner(&config.Settings{})
	rec := &fakeRecording{
		class:  "never.configured",
		bundle: pipeline.SeriesBundle{"torque": {1, 2}},
	}

	result, err := r.Run(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Empty(t, result.Features)
	assert.Equal(t, 1, result.SeriesProcessed, "unconfigured series passes through processing")
}
