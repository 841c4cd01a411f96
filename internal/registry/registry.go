// Package registry provides name-keyed registries for processing steps and
// extraction methods.
//
// # Overview
//
// Pipeline configurations refer to steps and methods by string name. Instead
// of hard-coded switch statements, implementations register themselves by
// name, so new steps and methods can be added without touching the runtime.
//
// # Adding a New Step
//
// Implement the steps.Func signature and register it in an init() function:
//
//	func init() {
//	    registry.RegisterStep("detrend", Detrend)
//	}
//
// Extraction methods work the same way through RegisterMethod.
//
// # Unknown Names
//
// The registries never resolve unknown names to fallbacks. The runtime
// treats a missing step or method as a skip condition for the series at
// hand, logs it, and carries on with the rest of the recording.
package registry

import (
	"sort"
	"sync"

	"github.com/nikolaiwest/cpc-data/internal/extract"
	"github.com/nikolaiwest/cpc-data/internal/steps"
)

// stepRegistry holds registered processing step functions.
var (
	stepMu       sync.RWMutex
	stepRegistry = make(map[string]steps.Func)
)

// methodRegistry holds registered extraction method functions.
var (
	methodMu       sync.RWMutex
	methodRegistry = make(map[string]extract.Func)
)

// RegisterStep registers a processing step function by name. Registering an
// already registered name overwrites the previous function.
//
// Safe for concurrent use; typically called from init() functions.
func RegisterStep(name string, fn steps.Func) {
	stepMu.Lock()
	defer stepMu.Unlock()
	stepRegistry[name] = fn
}

// RegisterMethod registers an extraction method function by name.
// Registering an already registered name overwrites the previous function.
//
// Safe for concurrent use; typically called from init() functions.
func RegisterMethod(name string, fn extract.Func) {
	methodMu.Lock()
	defer methodMu.Unlock()
	methodRegistry[name] = fn
}

// GetStep returns the registered step function for the given name.
// Returns nil if no step is registered under that name.
func GetStep(name string) steps.Func {
	stepMu.RLock()
	defer stepMu.RUnlock()
	return stepRegistry[name]
}

// GetMethod returns the registered method function for the given name.
// Returns nil if no method is registered under that name.
func GetMethod(name string) extract.Func {
	methodMu.RLock()
	defer methodMu.RUnlock()
	return methodRegistry[name]
}

// ListSteps returns all registered step names in sorted order.
func ListSteps() []string {
	stepMu.RLock()
	defer stepMu.RUnlock()
	names := make([]string, 0, len(stepRegistry))
	for name := range stepRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListMethods returns all registered method names in sorted order.
func ListMethods() []string {
	methodMu.RLock()
	defer methodMu.RUnlock()
	names := make([]string, 0, len(methodRegistry))
	for name := range methodRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearRegistries removes all registered steps and methods.
// This is intended for testing purposes only.
func ClearRegistries() {
	stepMu.Lock()
	stepRegistry = make(map[string]steps.Func)
	stepMu.Unlock()

	methodMu.Lock()
	methodRegistry = make(map[string]extract.Func)
	methodMu.Unlock()
}
