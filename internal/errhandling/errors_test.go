package errhandling

import (
	"errors"
	"fmt"
	"testing"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{
			name: "series and unit",
			err:  NewComputeError("screw_driving.left", "torque", "resample_uniform_times", errors.New("boom")),
			want: "compute error in torque/resample_uniform_times: boom",
		},
		{
			name: "series only",
			err:  NewDataError("screw_driving.left", "angle", ErrEmptySeries),
			want: "data error in angle: series is empty",
		},
		{
			name: "bare",
			err:  &PipelineError{Category: CategoryConfig, Err: ErrUnknownStep},
			want: "config error: unknown processing step",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapAndCategory(t *testing.T) {
	cause := errors.New("bad parameter")
	err := NewConfigError("injection_molding.upper_workpiece", "pressure", "remove_negative_values", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !IsConfig(err) {
		t.Error("IsConfig should be true")
	}
	if IsCompute(err) {
		t.Error("IsCompute should be false for a config error")
	}

	wrapped := fmt.Errorf("stage failed: %w", err)
	if CategoryOf(wrapped) != CategoryConfig {
		t.Errorf("CategoryOf(wrapped) = %s, want config", CategoryOf(wrapped))
	}
}

func TestCategoryOf_Default(t *testing.T) {
	plain := errors.New("plain")
	if got := CategoryOf(plain); got != CategoryCompute {
		t.Errorf("CategoryOf(plain) = %s, want compute", got)
	}
	if !IsCompute(plain) {
		t.Error("IsCompute should agree with CategoryOf for unclassified errors")
	}
	if IsConfig(plain) || IsData(plain) {
		t.Error("unclassified errors are neither config nor data")
	}
}
