package config

import (
	"testing"
)

func TestParseString_ValidYAML(t *testing.T) {
	result, node := ParseString("a:\n  b: 1\n")
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if node == nil {
		t.Fatal("expected a document node")
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data is %T, want map", result.Data)
	}
	if _, ok := data["a"]; !ok {
		t.Error("missing key a")
	}
}

func TestParseString_ValidJSON(t *testing.T) {
	// YAML is a superset of JSON; the same parser handles both.
	result, _ := ParseString(`{"a": {"b": 1}}`)
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestParseString_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "   \n"},
		{"scalar document", "just a string"},
		{"broken yaml", "a: [1, 2\nb: }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := ParseString(tt.content)
			if result.IsValid() {
				t.Errorf("expected parse errors for %q", tt.content)
			}
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	result, _ := ParseFile("/nonexistent/processing.yml")
	if result.IsValid() {
		t.Fatal("expected io error")
	}
	if result.Errors[0].Type != ErrorTypeIO {
		t.Errorf("error type = %s, want io", result.Errors[0].Type)
	}
}
