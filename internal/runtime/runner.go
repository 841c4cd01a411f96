// Package runtime provides the pipeline execution engine.
// It orchestrates the processing and extraction stages over one recording.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikolaiwest/cpc-data/internal/config"
	"github.com/nikolaiwest/cpc-data/internal/errhandling"
	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/internal/registry"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Pipeline stage names used in logs.
const (
	StageProcessing = "processing"
	StageExtraction = "extraction"
)

// DefaultUnitTimeout bounds a single (series, stage) unit of work. Scripted
// steps can loop forever; the timeout turns that into an ordinary unit
// failure.
const DefaultUnitTimeout = 30 * time.Second

// ErrNilRecording is returned when a nil recording is passed to Run.
var ErrNilRecording = errors.New("recording is nil")

// unitOutcome carries one series' result out of a stage worker.
type unitOutcome struct {
	name     string
	status   string
	series   pipeline.Series
	features []float64
	err      error
}

// Runner executes the two pipeline stages for recordings. Series are
// independent units of work: a Runner fans them out over a bounded worker
// pool and applies the per-stage failure policy, reverting failed processing
// to the original samples and omitting failed extractions.
//
// The Runner only reaches steps and methods through the registry, so the
// stages stay decoupled from the concrete transform implementations.
type Runner struct {
	settings    *config.Settings
	workers     int
	unitTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker pool size. Values below one fall back to the
// default of one worker per CPU.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithUnitTimeout bounds each (series, stage) unit of work. A zero or
// negative duration disables the bound.
func WithUnitTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.unitTimeout = d
	}
}

// NewRunner creates a pipeline runner for the given settings.
func NewRunner(settings *config.Settings, opts ...Option) *Runner {
	r := &Runner{
		settings:    settings,
		workers:     runtime.NumCPU(),
		unitTimeout: DefaultUnitTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes both stages for one recording and returns the run result.
//
// Execution flow:
//  1. Resolve the recording's class settings by its class name
//  2. Processing stage: apply the configured step sequence per series
//  3. Extraction stage: reduce each opted-in series to a feature vector
//  4. Return a RunResult with features and per-series counters
//
// A recording without serial data produces no result and no error; there is
// simply nothing to transform. Per-series failures never fail the run: a
// failed processing unit reverts to its original samples and a failed
// extraction unit is omitted from the feature bundle.
func (r *Runner) Run(ctx context.Context, recording pipeline.Recording) (*pipeline.RunResult, error) {
	if recording == nil {
		return nil, ErrNilRecording
	}
	bundle := recording.SerialData()
	if bundle == nil {
		logger.Debug("recording has no serial data",
			slog.String("class_name", recording.ClassName()),
		)
		return nil, nil
	}

	startedAt := time.Now()
	className := recording.ClassName()
	runCtx := logger.RunContext{
		RunID:     uuid.NewString(),
		ClassName: className,
	}
	classCfg := r.settings.ForClass(className)
	logger.LogRunStart(runCtx, len(bundle))

	processed, procOutcomes := r.ProcessBundle(ctx, runCtx, bundle, classCfg.Processing)
	features, extOutcomes := r.ExtractBundle(ctx, runCtx, processed, classCfg.Extraction)

	result := &pipeline.RunResult{
		RunID:       runCtx.RunID,
		ClassName:   className,
		Features:    features,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	}
	for _, status := range procOutcomes {
		switch status {
		case pipeline.SeriesProcessed:
			result.SeriesProcessed++
		case pipeline.SeriesReverted:
			result.SeriesReverted++
		case pipeline.SeriesSkipped:
			result.SeriesSkipped++
		}
	}
	for _, status := range extOutcomes {
		if status == pipeline.SeriesSkipped {
			result.SeriesSkipped++
		}
	}

	logger.LogRunEnd(runCtx, result.SeriesProcessed, result.SeriesReverted,
		result.SeriesSkipped, time.Since(startedAt))
	return result, nil
}

// ProcessBundle runs the processing stage: each non-time series gets the
// configured step sequence applied in order, against a private copy. Any
// unit failure reverts that series to its original samples; the rest of the
// bundle is unaffected. The reserved time series is read-only context for
// the steps and is not part of the returned bundle. Empty series are dropped
// from the bundle entirely.
//
// The returned status map holds one entry per input series (time excluded).
func (r *Runner) ProcessBundle(ctx context.Context, runCtx logger.RunContext, bundle pipeline.SeriesBundle, cfg map[string]config.StepSequence) (pipeline.SeriesBundle, map[string]string) {
	runCtx.Stage = StageProcessing
	stageStart := time.Now()
	timeAxis := bundle.TimeAxis()

	names := make([]string, 0, len(bundle))
	for name := range bundle {
		if name == pipeline.TimeKey {
			continue
		}
		names = append(names, name)
	}
	logger.LogStageStart(runCtx, len(names))

	out := make(pipeline.SeriesBundle, len(names))
	statuses := make(map[string]string, len(names))
	var mu sync.Mutex

	r.forEachUnit(names, func(name string) {
		original := bundle[name]
		status := pipeline.SeriesProcessed

		if len(original) == 0 {
			// Absent or empty data is dropped from the output bundle;
			// there is nothing for the steps to work on.
			logger.LogSeriesFailure(seriesCtx(runCtx, name), "",
				"skipped", errhandling.ErrEmptySeries)
			mu.Lock()
			statuses[name] = pipeline.SeriesSkipped
			mu.Unlock()
			return
		}

		processed, unit, err := r.runStepSequence(ctx, runCtx, name, original, timeAxis, cfg[name])
		if err != nil {
			logger.LogSeriesFailure(seriesCtx(runCtx, name), unit, "reverted", err)
			processed = original.Copy()
			status = pipeline.SeriesReverted
		}

		mu.Lock()
		out[name] = processed
		statuses[name] = status
		mu.Unlock()
	})

	logger.LogStageEnd(runCtx, len(out), time.Since(stageStart))
	return out, statuses
}

// runStepSequence applies the configured steps to one series. It returns the
// transformed series, or on failure the name of the failing step and the
// classified error. Disabled and unregistered steps are skipped.
func (r *Runner) runStepSequence(ctx context.Context, runCtx logger.RunContext, name string, original, timeAxis pipeline.Series, seq config.StepSequence) (pipeline.Series, string, error) {
	current := original.Copy()
	for _, step := range seq {
		if step.Disabled {
			logger.Debug("step disabled",
				slog.String("run_id", runCtx.RunID),
				slog.String("series", name),
				slog.String("step", step.Name),
			)
			continue
		}
		fn := registry.GetStep(step.Name)
		if fn == nil {
			logger.LogSeriesFailure(seriesCtx(runCtx, name), step.Name,
				"skipped", errhandling.ErrUnknownStep)
			continue
		}

		next, err := callUnit(r, ctx, func() (pipeline.Series, error) {
			return fn(current, timeAxis, step.Params)
		})
		if err != nil {
			return nil, step.Name, errhandling.NewComputeError(runCtx.ClassName, name, step.Name, err)
		}
		if len(next) == 0 {
			return nil, step.Name, errhandling.NewDataError(runCtx.ClassName, name, errhandling.ErrNilResult)
		}
		current = next
	}
	return current, "", nil
}

// ExtractBundle runs the extraction stage: each series opted in through
// use_series is reduced to a feature vector by its configured method. Failed
// or unknown methods omit the series from the output instead of carrying a
// placeholder.
//
// The returned status map holds one entry per opted-in series.
func (r *Runner) ExtractBundle(ctx context.Context, runCtx logger.RunContext, bundle pipeline.SeriesBundle, cfg map[string]config.ExtractionSpec) (pipeline.FeatureBundle, map[string]string) {
	runCtx.Stage = StageExtraction
	stageStart := time.Now()

	names := make([]string, 0, len(cfg))
	for name, spec := range cfg {
		if spec.UseSeries {
			names = append(names, name)
		}
	}
	logger.LogStageStart(runCtx, len(names))

	features := make(pipeline.FeatureBundle, len(names))
	statuses := make(map[string]string, len(names))
	var mu sync.Mutex

	r.forEachUnit(names, func(name string) {
		spec := cfg[name]
		vector, unit, err := r.extractSeries(ctx, runCtx, name, bundle[name], spec)
		status := pipeline.SeriesProcessed
		if err != nil {
			logger.LogSeriesFailure(seriesCtx(runCtx, name), unit, "omitted", err)
			status = pipeline.SeriesSkipped
		}

		mu.Lock()
		if err == nil {
			features[name] = vector
		}
		statuses[name] = status
		mu.Unlock()
	})

	logger.LogStageEnd(runCtx, len(features), time.Since(stageStart))
	return features, statuses
}

// extractSeries reduces one series with its configured method. The unit name
// returned on failure is the method name.
func (r *Runner) extractSeries(ctx context.Context, runCtx logger.RunContext, name string, series pipeline.Series, spec config.ExtractionSpec) ([]float64, string, error) {
	method := spec.Method
	if method == "" {
		method = config.DefaultMethod
	}
	if len(series) == 0 {
		return nil, method, errhandling.NewDataError(runCtx.ClassName, name, errhandling.ErrEmptySeries)
	}
	fn := registry.GetMethod(method)
	if fn == nil {
		return nil, method, errhandling.NewConfigError(runCtx.ClassName, name, method, errhandling.ErrUnknownMethod)
	}

	vector, err := callUnit(r, ctx, func() ([]float64, error) {
		return fn(series, spec.Params)
	})
	if err != nil {
		return nil, method, errhandling.NewComputeError(runCtx.ClassName, name, method, err)
	}
	if vector == nil {
		return nil, method, errhandling.NewDataError(runCtx.ClassName, name, errhandling.ErrNilResult)
	}
	return vector, "", nil
}

// forEachUnit fans the given series names out over the worker pool and
// waits for all units to finish.
func (r *Runner) forEachUnit(names []string, unit func(name string)) {
	workers := r.workers
	if workers > len(names) {
		workers = len(names)
	}
	if workers <= 1 {
		for _, name := range names {
			unit(name)
		}
		return
	}

	work := make(chan string)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for name := range work {
				unit(name)
			}
		}()
	}
	for _, name := range names {
		work <- name
	}
	close(work)
	wg.Wait()
}

// callUnit invokes one transform with panic recovery and the per-unit
// timeout. The transform runs in its own goroutine; on timeout the result is
// abandoned and the unit reports errhandling.ErrUnitTimeout. T is the
// stage-specific result type.
func callUnit[T any](r *Runner, ctx context.Context, fn func() (T, error)) (T, error) {
	type unitResult struct {
		value T
		err   error
	}
	done := make(chan unitResult, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				var zero T
				done <- unitResult{zero, fmt.Errorf("transform panicked: %v", rec)}
			}
		}()
		value, err := fn()
		done <- unitResult{value, err}
	}()

	var timeout <-chan time.Time
	if r.unitTimeout > 0 {
		timer := time.NewTimer(r.unitTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var zero T
	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timeout:
		return zero, errhandling.ErrUnitTimeout
	}
}

// seriesCtx copies the run context with the series filled in.
func seriesCtx(runCtx logger.RunContext, series string) logger.RunContext {
	runCtx.Series = series
	return runCtx
}
