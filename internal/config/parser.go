package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile parses a settings file from the given path. Both YAML and JSON
// are accepted; YAML is a superset of JSON, so a single decoder handles both
// and the format label is derived from the file extension.
//
// The returned ParseResult carries the document twice: as plain Go values
// (Data, for schema validation) and as the yaml.Node tree kept by the caller
// for order-preserving decoding of step sequences.
func ParseFile(path string) (*ParseResult, *yaml.Node) {
	result := &ParseResult{
		FilePath: path,
		Format:   detectFormat(path),
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Path:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result, nil
	}

	parsed, node := ParseString(string(content))
	result.Data = parsed.Data
	result.Errors = parsed.Errors
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = path
		}
	}
	return result, node
}

// ParseString parses settings content from a string.
func ParseString(content string) (*ParseResult, *yaml.Node) {
	result := &ParseResult{Format: "yaml"}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected a settings mapping",
			Type:    ErrorTypeSyntax,
		})
		return result, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result, nil
	}

	// Document node wraps the actual mapping.
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty document: expected a settings mapping",
			Type:    ErrorTypeFormat,
		})
		return result, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		result.Errors = append(result.Errors, ParseError{
			Line:    doc.Line,
			Message: fmt.Sprintf("invalid settings: expected a mapping, got %s", nodeKindName(doc.Kind)),
			Type:    ErrorTypeFormat,
		})
		return result, nil
	}

	var data any
	if err := doc.Decode(&data); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result, nil
	}

	result.Data = data
	return result, doc
}

// detectFormat derives the format label from the file extension.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// parseYAMLError extracts line information from a yaml.v3 error when present.
func parseYAMLError(err error) ParseError {
	pe := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}
	// yaml.v3 type errors aggregate per-line messages
	if typeErr, ok := err.(*yaml.TypeError); ok {
		pe.Message = strings.Join(typeErr.Errors, "; ")
	}
	return pe
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
