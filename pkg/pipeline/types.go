// Package pipeline provides public types and interfaces for the cpc-data
// transform pipeline. This package is intended to be importable by external
// projects that need to feed recordings into the runtime or consume its
// feature output.
package pipeline

import "time"

// TimeKey is the reserved series name holding the time axis of a bundle.
// The time axis is consumed as read-only context by processing steps and is
// never part of the pipeline output.
const TimeKey = "time"

// Series is an ordered sequence of floating-point samples. Gaps are
// represented by NaN sentinels; samples are never reordered.
type Series []float64

// Copy returns an independent copy of the series. A nil series copies to nil.
func (s Series) Copy() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// SeriesBundle maps series names to their samples for one recording.
// A bundle entering the pipeline holds exactly one reserved "time" key with
// the time axis; every other series has the same length as the time axis.
type SeriesBundle map[string]Series

// TimeAxis returns the bundle's time axis, or nil if absent.
func (b SeriesBundle) TimeAxis() Series {
	if b == nil {
		return nil
	}
	return b[TimeKey]
}

// FeatureBundle maps series names to their extracted feature vectors.
// Scalar features are one-element vectors. Only series configured with
// use_series=true appear; series whose extraction failed are omitted.
type FeatureBundle map[string][]float64

// Recording is the capability interface the orchestrator needs from one
// manufacturing experiment's process stream. It replaces the per-position
// class hierarchy of earlier generations: configuration lookup needs a class
// name, and the pipeline needs the raw series.
type Recording interface {
	// ClassName returns the dot-separated settings path for this recording
	// kind, e.g. "screw_driving.left" or "injection_molding.upper_workpiece".
	ClassName() string

	// SerialData returns the recording's named time series, including the
	// reserved "time" axis. A nil bundle means the recording has no serial
	// data at all; the pipeline then yields no features for it.
	SerialData() SeriesBundle
}

// Run status values reported per series.
const (
	SeriesProcessed = "processed"
	SeriesReverted  = "reverted"
	SeriesSkipped   = "skipped"
)

// RunResult describes the outcome of one recording's pipeline run.
type RunResult struct {
	// RunID uniquely identifies this pipeline invocation.
	RunID string `json:"runId"`

	// ClassName is the recording class the settings were resolved for.
	ClassName string `json:"className"`

	// Features holds the extracted feature vectors per series.
	Features FeatureBundle `json:"features"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when the run completed.
	CompletedAt time.Time `json:"completedAt"`

	// SeriesProcessed counts series that passed through processing unchanged
	// or transformed.
	SeriesProcessed int `json:"seriesProcessed"`

	// SeriesReverted counts series whose processing failed and reverted to
	// the original samples.
	SeriesReverted int `json:"seriesReverted"`

	// SeriesSkipped counts series dropped before or during extraction
	// (missing data, unknown method, extraction failure).
	SeriesSkipped int `json:"seriesSkipped"`
}
