// Package errhandling provides error types and classification for the
// pipeline runtime. It defines error categories and typed error values so
// callers can distinguish configuration errors, data errors, and computation
// errors without string matching, while preserving the runtime's
// non-fatal/skip policy.
package errhandling

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the type/category of an error.
// Categories determine the recovery action the runtime takes.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryConfig represents configuration errors (unknown step or method
	// name, malformed parameters). Config errors skip the affected unit only.
	CategoryConfig ErrorCategory = "config"

	// CategoryData represents missing or empty data (series absent from the
	// bundle, nil content). Data errors exclude the series with a warning.
	CategoryData ErrorCategory = "data"

	// CategoryCompute represents transform execution failures (returned
	// error, nil result, panic, timeout). Compute errors revert the series
	// during processing and omit it during extraction.
	CategoryCompute ErrorCategory = "compute"
)

// Common sentinel errors.
var (
	// ErrUnknownStep is returned when a processing step name is not
	// registered.
	ErrUnknownStep = errors.New("unknown processing step")

	// ErrUnknownMethod is returned when an extraction method name is not
	// registered.
	ErrUnknownMethod = errors.New("unknown extraction method")

	// ErrEmptySeries is returned when a transform received no samples to
	// work on.
	ErrEmptySeries = errors.New("series is empty")

	// ErrNilResult is returned when a transform produced the null/empty
	// sentinel instead of a series.
	ErrNilResult = errors.New("transform returned no result")

	// ErrUnitTimeout is returned when a per-series unit exceeded its
	// deadline. Treated exactly like any other compute failure.
	ErrUnitTimeout = errors.New("series unit timed out")
)

// PipelineError wraps an error with pipeline location metadata: which class,
// series, and step/method the error belongs to.
type PipelineError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Class is the recording class the settings were resolved for.
	Class string

	// Series is the series the unit was operating on.
	Series string

	// Unit is the step or method name, empty for series-level errors.
	Unit string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	switch {
	case e.Series != "" && e.Unit != "":
		return fmt.Sprintf("%s error in %s/%s: %v", e.Category, e.Series, e.Unit, e.Err)
	case e.Series != "":
		return fmt.Sprintf("%s error in %s: %v", e.Category, e.Series, e.Err)
	default:
		return fmt.Sprintf("%s error: %v", e.Category, e.Err)
	}
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration-category pipeline error.
func NewConfigError(class, series, unit string, err error) *PipelineError {
	return &PipelineError{Category: CategoryConfig, Class: class, Series: series, Unit: unit, Err: err}
}

// NewDataError creates a data-category pipeline error.
func NewDataError(class, series string, err error) *PipelineError {
	return &PipelineError{Category: CategoryData, Class: class, Series: series, Err: err}
}

// NewComputeError creates a compute-category pipeline error.
func NewComputeError(class, series, unit string, err error) *PipelineError {
	return &PipelineError{Category: CategoryCompute, Class: class, Series: series, Unit: unit, Err: err}
}

// CategoryOf returns the category of an error, or CategoryCompute if the
// error carries no classification. Errors are compute-category by default
// because an unclassified failure inside a transform is the common case.
func CategoryOf(err error) ErrorCategory {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryCompute
}

// IsConfig reports whether the error is configuration-category.
func IsConfig(err error) bool { return CategoryOf(err) == CategoryConfig }

// IsData reports whether the error is data-category.
func IsData(err error) bool { return CategoryOf(err) == CategoryData }

// IsCompute reports whether the error is compute-category. Unclassified
// errors count as compute, matching CategoryOf.
func IsCompute(err error) bool { return CategoryOf(err) == CategoryCompute }
