package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/processing-schema.json
var processingSchemaJSON []byte

//go:embed schema/extraction-schema.json
var extractionSchemaJSON []byte

// compiledSchemas caches the compiled schemas, initialized once.
type compiledSchemas struct {
	once       sync.Once
	processing *jsonschema.Schema
	extraction *jsonschema.Schema
	err        error
}

var schemas compiledSchemas

func getSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemas.once.Do(func() {
		schemas.processing, schemas.err = compileSchema(
			"https://github.com/nikolaiwest/cpc-data/schemas/processing-settings.json",
			processingSchemaJSON,
		)
		if schemas.err != nil {
			return
		}
		schemas.extraction, schemas.err = compileSchema(
			"https://github.com/nikolaiwest/cpc-data/schemas/extraction-settings.json",
			extractionSchemaJSON,
		)
	})
	return schemas.processing, schemas.extraction, schemas.err
}

func compileSchema(url string, raw []byte) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// ValidateProcessing validates a parsed processing settings document against
// the embedded schema.
func ValidateProcessing(data any) *ValidationResult {
	proc, _, err := getSchemas()
	return validateWith(proc, err, data)
}

// ValidateExtraction validates a parsed extraction settings document against
// the embedded schema.
func ValidateExtraction(data any) *ValidationResult {
	_, ext, err := getSchemas()
	return validateWith(ext, err, data)
}

func validateWith(schema *jsonschema.Schema, initErr error, data any) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if initErr != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "schema",
			Message: fmt.Sprintf("failed to load schema: %v", initErr),
		})
		return result
	}

	if data == nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "required",
			Message: "settings document is empty",
		})
		return result
	}

	if err := schema.Validate(data); err != nil {
		result.Valid = false
		if detailed, ok := err.(*jsonschema.ValidationError); ok {
			result.Errors = convertValidationErrors(detailed)
		} else {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "/",
				Type:    "validation",
				Message: err.Error(),
			})
		}
	}
	return result
}

// convertValidationErrors converts jsonschema validation errors to our
// format, flattening the cause tree.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	var errs []ValidationError

	if err.ErrorKind != nil {
		errs = append(errs, ValidationError{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    extractErrorType(err),
			Message: err.Error(),
		})
	}
	for _, cause := range err.Causes {
		errs = append(errs, convertValidationErrors(cause)...)
	}
	return errs
}

// formatInstanceLocation formats the instance location as a JSON path.
func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// extractErrorType extracts a simplified error type from the validation
// error message.
func extractErrorType(err *jsonschema.ValidationError) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "required"):
		return "required"
	case strings.Contains(msg, "type"):
		return "type"
	case strings.Contains(msg, "enum"):
		return "enum"
	case strings.Contains(msg, "minimum") || strings.Contains(msg, "maximum"):
		return "range"
	case strings.Contains(msg, "additionalproperties"):
		return "additionalProperties"
	default:
		return "validation"
	}
}
