package extract

import (
	"fmt"

	"github.com/expr-lang/expr"
	"gonum.org/v1/gonum/floats"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Expression evaluates a user-supplied scalar expression over precomputed
// aggregates of the series and returns it as a single-element vector. The
// expression sees mean, std, min, max, median, rms, energy, length, first,
// last and sum as variables, e.g. "(max - min) / rms".
func Expression(series pipeline.Series, params pipeline.Params) ([]float64, error) {
	source := params.String("expression", "")
	if source == "" {
		return nil, fmt.Errorf("expression method requires a non-empty %q parameter", "expression")
	}

	env := expressionEnv(series)
	opts := []expr.Option{expr.Env(env), expr.AsFloat64()}
	// Several aggregate names shadow expr builtins; the variables win.
	for _, name := range []string{"min", "max", "sum", "mean", "median", "first", "last"} {
		opts = append(opts, expr.DisableBuiltin(name))
	}
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, fmt.Errorf("compiling expression: %w", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluating expression: %w", err)
	}
	value, ok := out.(float64)
	if !ok {
		return nil, fmt.Errorf("expression produced %T, want float64", out)
	}
	return []float64{value}, nil
}

func expressionEnv(series pipeline.Series) map[string]any {
	env := map[string]any{
		"mean":   0.0,
		"std":    0.0,
		"min":    0.0,
		"max":    0.0,
		"median": 0.0,
		"rms":    0.0,
		"energy": 0.0,
		"length": float64(len(series)),
		"first":  0.0,
		"last":   0.0,
		"sum":    0.0,
	}
	if len(series) == 0 {
		return env
	}
	env["mean"] = meanOf(series)
	env["std"] = popStd(series)
	env["min"] = floats.Min(series)
	env["max"] = floats.Max(series)
	env["median"] = percentile(series, 50)
	env["rms"] = rms(series)
	env["energy"] = energy(series)
	env["first"] = series[0]
	env["last"] = series[len(series)-1]
	env["sum"] = floats.Sum(series)
	return env
}
