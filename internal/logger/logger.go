// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across the
// pipeline runtime.
//
// This package provides run context helpers for consistent pipeline logging,
// including helpers for run start/end, stage start/end, and per-series
// warnings. All helpers use structured logging with consistent field names
// (snake_case).
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

func init() {
	// Initialize with JSON handler for structured logging
	Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetLevel configures the logging level.
func SetLevel(level slog.Level) {
	Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// SetOutput redirects logging to the given writer at the given level.
// Intended for tests that want to capture or silence log output.
func SetOutput(w io.Writer, level slog.Level) {
	Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithRun returns a logger with run context.
func WithRun(runID, className string) *slog.Logger {
	return Logger.With("run_id", runID, "class_name", className)
}

// WithSeries returns a logger with series context.
func WithSeries(seriesName string) *slog.Logger {
	return Logger.With("series", seriesName)
}

// RunContext contains context information for pipeline run logging.
// Use this struct with LogRunStart() and the other run logging helpers.
type RunContext struct {
	// RunID is the unique identifier for the pipeline run (required)
	RunID string
	// ClassName is the recording class the settings were resolved for
	ClassName string
	// Stage is the current pipeline stage (processing, extraction)
	Stage string
	// Series is the series currently being worked on
	Series string
}

func buildContextAttrs(ctx RunContext) []any {
	attrs := make([]any, 0, 8)
	attrs = append(attrs, slog.String("run_id", ctx.RunID))
	if ctx.ClassName != "" {
		attrs = append(attrs, slog.String("class_name", ctx.ClassName))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.Series != "" {
		attrs = append(attrs, slog.String("series", ctx.Series))
	}
	return attrs
}

// LogRunStart logs the start of a recording's pipeline run.
func LogRunStart(ctx RunContext, seriesCount int) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs, slog.Int("series_count", seriesCount))
	Logger.Info("pipeline run started", attrs...)
}

// LogRunEnd logs the completion of a recording's pipeline run.
func LogRunEnd(ctx RunContext, processed, reverted, skipped int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("series_processed", processed),
		slog.Int("series_reverted", reverted),
		slog.Int("series_skipped", skipped),
		slog.Duration("duration", duration),
	)
	Logger.Info("pipeline run completed", attrs...)
}

// LogStageStart logs the start of a pipeline stage (processing, extraction).
func LogStageStart(ctx RunContext, seriesCount int) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs, slog.Int("series_count", seriesCount))
	Logger.Debug("stage started", attrs...)
}

// LogStageEnd logs the completion of a pipeline stage.
func LogStageEnd(ctx RunContext, seriesCount int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("series_count", seriesCount),
		slog.Duration("duration", duration),
	)
	Logger.Debug("stage completed", attrs...)
}

// LogSeriesFailure logs a per-series unit failure with its recovery action
// ("reverted" for processing, "omitted" for extraction).
func LogSeriesFailure(ctx RunContext, unit string, action string, err error) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("unit", unit),
		slog.String("action", action),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	Logger.Warn("series unit failed", attrs...)
}
