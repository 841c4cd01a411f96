package steps

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/nikolaiwest/cpc-data/internal/pathutil"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB).
const MaxScriptLength = 100 * 1024

// Common errors for the script step.
var (
	// ErrScriptEmpty is returned when the script parameter is missing or
	// whitespace-only.
	ErrScriptEmpty = errors.New("script cannot be empty")
	// ErrScriptTooLong is returned when the script exceeds MaxScriptLength.
	ErrScriptTooLong = errors.New("script exceeds maximum length")
	// ErrMissingTransformFunc is returned when the script doesn't define a
	// transform function.
	ErrMissingTransformFunc = errors.New("transform function not found in script")
)

// Script runs a user-supplied JavaScript transform over the series, for
// one-off cleaning experiments that don't warrant a built-in step. The
// script parameter must define a function
//
//	transform(series, time)
//
// returning an array of numbers. Any script error, a non-array result, or a
// non-numeric element fails the step, so the stage reverts the series.
//
// The script comes either inline through the script parameter or from disk
// through script_file; the file variant exists for transforms too long to
// inline in YAML. File paths are validated against traversal because they
// originate in settings files, not on the command line.
//
// Goja provides sandboxed execution: scripts have no file system or network
// access and cannot touch Go runtime internals. A fresh runtime is created
// per invocation, so per-series units remain independently schedulable.
func Script(series, timeAxis pipeline.Series, params pipeline.Params) (pipeline.Series, error) {
	source, err := scriptSource(params)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, ErrScriptEmpty
	}
	if len(source) > MaxScriptLength {
		return nil, ErrScriptTooLong
	}

	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, fmt.Errorf("script compilation failed: %w", err)
	}

	transformVal := vm.Get("transform")
	if transformVal == nil || goja.IsUndefined(transformVal) || goja.IsNull(transformVal) {
		return nil, ErrMissingTransformFunc
	}
	transform, ok := goja.AssertFunction(transformVal)
	if !ok {
		return nil, errors.New("transform is not a function")
	}

	result, err := transform(goja.Undefined(),
		vm.ToValue([]float64(series)),
		vm.ToValue([]float64(timeAxis)),
	)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	return exportSeries(result)
}

// scriptSource resolves the script text from the inline parameter or the
// configured file. Inline and file are mutually exclusive.
func scriptSource(params pipeline.Params) (string, error) {
	inline := params.String("script", "")
	file := params.String("script_file", "")
	switch {
	case inline != "" && file != "":
		return "", errors.New("script and script_file are mutually exclusive")
	case file != "":
		if err := pathutil.ValidateFilePath(file); err != nil {
			return "", fmt.Errorf("invalid script_file: %w", err)
		}
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading script_file: %w", err)
		}
		return string(raw), nil
	default:
		return inline, nil
	}
}

// exportSeries converts the script's return value into a series.
func exportSeries(value goja.Value) (pipeline.Series, error) {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, errors.New("transform returned no value")
	}

	exported := value.Export()
	switch v := exported.(type) {
	case []float64:
		return pipeline.Series(v), nil
	case []any:
		out := make(pipeline.Series, len(v))
		for i, item := range v {
			f, ok := toNumber(item)
			if !ok {
				return nil, fmt.Errorf("transform result element %d is not a number (got %T)", i, item)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("transform must return an array, got %T", exported)
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
