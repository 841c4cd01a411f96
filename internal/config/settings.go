package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Default settings file names inside a settings directory.
const (
	ProcessingFileName = "processing.yml"
	ExtractionFileName = "extraction.yml"
)

// DefaultMethod is the extraction method used when a series config names
// none.
const DefaultMethod = "raw"

// Step is one named processing step with its parameters. A step whose config
// was the literal `false` is disabled: the stage skips it without treating it
// as an error.
type Step struct {
	Name     string
	Disabled bool
	Params   pipeline.Params
}

// StepSequence is the ordered list of processing steps for one series.
// Order is semantically meaningful (clean-then-resample), so the sequence is
// decoded from the YAML mapping node directly to preserve key order.
type StepSequence []Step

// UnmarshalYAML implements yaml.Unmarshaler, walking the mapping node's
// key/value pairs in document order.
func (s *StepSequence) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step configuration must be a mapping, got %s",
			value.Line, nodeKindName(value.Kind))
	}

	steps := make(StepSequence, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]

		step := Step{Name: keyNode.Value}
		switch valNode.Kind {
		case yaml.ScalarNode:
			// `step_name: false` disables the step. Any other scalar is a
			// malformed config.
			var b bool
			if err := valNode.Decode(&b); err != nil {
				return fmt.Errorf("line %d: step %q config must be a mapping or false",
					valNode.Line, step.Name)
			}
			step.Disabled = !b
			step.Params = pipeline.Params{}
		case yaml.MappingNode:
			var params map[string]any
			if err := valNode.Decode(&params); err != nil {
				return fmt.Errorf("line %d: step %q parameters: %w", valNode.Line, step.Name, err)
			}
			step.Params = pipeline.Params(params)
		default:
			return fmt.Errorf("line %d: step %q config must be a mapping or false",
				valNode.Line, step.Name)
		}
		steps = append(steps, step)
	}

	*s = steps
	return nil
}

// ExtractionSpec is the single method descriptor configured for one series.
type ExtractionSpec struct {
	// UseSeries marks the series for extraction; series with use_series
	// false (or unset) never appear in the feature bundle.
	UseSeries bool
	// Method is the extraction method name ("raw" when unset).
	Method string
	// Params holds the method-specific parameters (everything except
	// use_series and method).
	Params pipeline.Params
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *ExtractionSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: extraction config must be a mapping: %w", value.Line, err)
	}

	spec := ExtractionSpec{
		Method: DefaultMethod,
		Params: pipeline.Params{},
	}
	for k, v := range raw {
		switch k {
		case "use_series":
			if b, ok := v.(bool); ok {
				spec.UseSeries = b
			}
		case "method":
			if s, ok := v.(string); ok && s != "" {
				spec.Method = s
			}
		default:
			spec.Params[k] = v
		}
	}

	*e = spec
	return nil
}

// ClassConfig bundles the processing and extraction configuration for one
// recording class, keyed by series name.
type ClassConfig struct {
	Processing map[string]StepSequence
	Extraction map[string]ExtractionSpec
}

// Settings holds the full, immutable configuration for all recording
// classes, keyed by dot-separated class path (e.g. "screw_driving.left").
// It is loaded once by the caller and passed to the orchestrator at
// construction time; the runtime never reloads it.
type Settings struct {
	Processing map[string]map[string]StepSequence
	Extraction map[string]map[string]ExtractionSpec
}

// ForClass returns the configuration for the given class path. Unknown
// classes yield empty maps, so every series is skipped downstream rather
// than failing the run.
func (s *Settings) ForClass(className string) ClassConfig {
	cfg := ClassConfig{
		Processing: map[string]StepSequence{},
		Extraction: map[string]ExtractionSpec{},
	}
	if s == nil {
		return cfg
	}
	if p, ok := s.Processing[className]; ok {
		cfg.Processing = p
	}
	if e, ok := s.Extraction[className]; ok {
		cfg.Extraction = e
	}
	return cfg
}

// Classes returns the union of class paths present in either settings file.
func (s *Settings) Classes() []string {
	seen := map[string]bool{}
	var out []string
	for c := range s.Processing {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for c := range s.Extraction {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// The settings files nest two levels (process, position) above the series
// maps; the loaders flatten them to "process.position" class paths.
type processingFile map[string]map[string]map[string]StepSequence

type extractionFile map[string]map[string]map[string]ExtractionSpec

// Load reads, validates, and decodes processing.yml and extraction.yml from
// the given settings directory.
func Load(dir string) (*Settings, error) {
	procPath := filepath.Join(dir, ProcessingFileName)
	extPath := filepath.Join(dir, ExtractionFileName)
	return LoadFiles(procPath, extPath)
}

// LoadFiles reads, validates, and decodes the given processing and
// extraction settings files.
func LoadFiles(processingPath, extractionPath string) (*Settings, error) {
	settings := &Settings{
		Processing: map[string]map[string]StepSequence{},
		Extraction: map[string]map[string]ExtractionSpec{},
	}

	procNode, err := parseAndValidate(processingPath, ValidateProcessing)
	if err != nil {
		return nil, err
	}
	var proc processingFile
	if err := procNode.Decode(&proc); err != nil {
		return nil, fmt.Errorf("%s: %w", processingPath, err)
	}
	for process, positions := range proc {
		for position, series := range positions {
			settings.Processing[classPath(process, position)] = series
		}
	}

	extNode, err := parseAndValidate(extractionPath, ValidateExtraction)
	if err != nil {
		return nil, err
	}
	var ext extractionFile
	if err := extNode.Decode(&ext); err != nil {
		return nil, fmt.Errorf("%s: %w", extractionPath, err)
	}
	for process, positions := range ext {
		for position, series := range positions {
			settings.Extraction[classPath(process, position)] = series
		}
	}

	return settings, nil
}

// parseAndValidate parses one settings file and validates it against its
// schema, collapsing all problems into a single error.
func parseAndValidate(path string, validate func(any) *ValidationResult) (*yaml.Node, error) {
	parsed, node := ParseFile(path)
	if !parsed.IsValid() {
		return nil, errors.Join(toErrors(parsed.Errors)...)
	}

	result := validate(parsed.Data)
	if !result.Valid {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("%s: schema validation failed: %s", path, strings.Join(msgs, "; "))
	}
	return node, nil
}

func toErrors(parseErrors []ParseError) []error {
	out := make([]error, len(parseErrors))
	for i, e := range parseErrors {
		out[i] = e
	}
	return out
}

func classPath(process, position string) string {
	return process + "." + position
}
