package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
}

// PrintRunResult displays the outcome of one recording's pipeline run.
func PrintRunResult(source string, result *pipeline.RunResult, err error, opts OutputOptions) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s: pipeline run failed: %v\n", source, err)
		return
	}
	if result == nil {
		if !opts.Quiet {
			fmt.Printf("- %s: no serial data, nothing extracted\n", source)
		}
		return
	}

	if opts.Quiet {
		return
	}

	fmt.Printf("✓ %s: %d series extracted\n", source, len(result.Features))
	fmt.Printf("  Class: %s\n", result.ClassName)
	fmt.Printf("  Series processed: %d\n", result.SeriesProcessed)
	if result.SeriesReverted > 0 {
		fmt.Printf("  Series reverted: %d\n", result.SeriesReverted)
	}
	if result.SeriesSkipped > 0 {
		fmt.Printf("  Series skipped: %d\n", result.SeriesSkipped)
	}
	if opts.Verbose {
		fmt.Printf("  Run ID: %s\n", result.RunID)
		fmt.Printf("  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
		for _, name := range sortedNames(result.Features) {
			fmt.Printf("  %s: %d feature values\n", name, len(result.Features[name]))
		}
	}
}

// PrintNameList displays registered step or method names under a heading.
func PrintNameList(heading string, names []string) {
	fmt.Printf("%s:\n", heading)
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}

func sortedNames(features pipeline.FeatureBundle) []string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
