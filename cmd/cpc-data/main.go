// Package main provides the CLI entry point for the cpc-data pipeline.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolaiwest/cpc-data/internal/cli"
	"github.com/nikolaiwest/cpc-data/internal/config"
	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/internal/recordings"
	"github.com/nikolaiwest/cpc-data/internal/registry"
	"github.com/nikolaiwest/cpc-data/internal/runtime"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Extract command flags
	settingsDir string
	className   string
	outPath     string
	workers     int

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cpc-data",
	Short: "cpc-data - Manufacturing sensor feature extraction pipeline",
	Long: `cpc-data transforms raw manufacturing sensor recordings into
fixed-shape feature vectors, driven by per-class settings files.

A run applies the configured processing steps to every series of a
recording, then reduces each opted-in series to features with its
configured extraction method.

Examples:
  # Validate the settings directory
  cpc-data validate ./settings

  # Extract features from screw driving recordings
  cpc-data extract --settings ./settings --class screw_driving.left run1.json run2.json

  # List registered steps and methods
  cpc-data methods`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Configure logger level based on flags
		if verbose {
			logger.SetLevel(slog.LevelDebug)
		} else if quiet {
			logger.SetLevel(slog.LevelError)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <settings-dir>",
	Short: "Validate the processing and extraction settings files",
	Long: `Validate processing.yml and extraction.yml in the settings
directory against their schemas.

Exit codes:
  0 - Settings are valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  cpc-data validate ./settings
  cpc-data validate --verbose ./settings`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var extractCmd = &cobra.Command{
	Use:   "extract --settings <dir> --class <process.position> <recording-file>...",
	Short: "Run the pipeline over recording files",
	Long: `Run the processing and extraction stages over the given recording
files and write the extracted features as a JSON document.

The recording loader is chosen by the class name: screw_driving classes
read JSON sample arrays, injection_molding classes read CSV channel
tables. Recordings without serial data yield no features and no error.

Exit codes:
  0 - All recordings ran
  1 - Validation errors in the settings
  2 - Parse errors in the settings
  3 - Runtime errors

Examples:
  cpc-data extract --settings ./settings --class screw_driving.left run1.json
  cpc-data extract --settings ./settings --class injection_molding.upper_workpiece --out features.json cycle1.csv`,
	Args: cobra.MinimumNArgs(1),
	Run:  runExtract,
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List registered processing steps and extraction methods",
	Run:   runMethods,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	// Extract command flags
	extractCmd.Flags().StringVar(&settingsDir, "settings", ".", "Directory holding processing.yml and extraction.yml")
	extractCmd.Flags().StringVar(&className, "class", "", "Recording class, e.g. screw_driving.left")
	extractCmd.Flags().StringVar(&outPath, "out", "", "Write features JSON to this file instead of stdout")
	extractCmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (default: number of CPUs)")
	_ = extractCmd.MarkFlagRequired("class")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(versionCmd)
}

func runValidate(_ *cobra.Command, args []string) {
	dir := args[0]

	files := []struct {
		path     string
		validate func(any) *config.ValidationResult
	}{
		{filepath.Join(dir, config.ProcessingFileName), config.ValidateProcessing},
		{filepath.Join(dir, config.ExtractionFileName), config.ValidateExtraction},
	}

	exitCode := ExitSuccess
	for _, file := range files {
		if !quiet {
			fmt.Printf("Validating settings: %s\n", file.path)
		}

		result, _ := config.ParseFile(file.path)
		if len(result.Errors) > 0 {
			cli.PrintParseErrors(result.Errors, verbose)
			// Parse errors dominate validation errors in the exit code.
			exitCode = ExitParseError
			continue
		}

		validation := file.validate(result.Data)
		if !validation.Valid {
			cli.PrintValidationErrors(validation.Errors, verbose, quiet)
			if exitCode == ExitSuccess {
				exitCode = ExitValidationError
			}
			continue
		}

		if !quiet {
			fmt.Printf("✓ Settings are valid (format: %s)\n", result.Format)
		}
	}

	os.Exit(exitCode)
}

func runExtract(_ *cobra.Command, args []string) {
	settings, err := config.Load(settingsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to load settings: %v\n", err)
		os.Exit(exitCodeForSettingsError(err))
	}

	opts := []runtime.Option{}
	if workers > 0 {
		opts = append(opts, runtime.WithWorkers(workers))
	}
	runner := runtime.NewRunner(settings, opts...)
	outOpts := cli.OutputOptions{Verbose: verbose, Quiet: quiet}

	document := make(map[string]pipeline.FeatureBundle, len(args))
	failed := false
	for _, path := range args {
		recording, err := loadRecording(path, className)
		if err != nil {
			cli.PrintRunResult(path, nil, err, outOpts)
			failed = true
			continue
		}

		result, err := runner.Run(context.Background(), recording)
		cli.PrintRunResult(path, result, err, outOpts)
		if err != nil {
			failed = true
			continue
		}
		if result != nil {
			document[path] = result.Features
		}
	}

	if err := writeFeatureDocument(document, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to write features: %v\n", err)
		failed = true
	}

	if failed {
		os.Exit(ExitRuntimeError)
	}
	os.Exit(ExitSuccess)
}

func runMethods(_ *cobra.Command, _ []string) {
	cli.PrintNameList("Processing steps", registry.ListSteps())
	fmt.Println()
	cli.PrintNameList("Extraction methods", registry.ListMethods())
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// loadRecording picks the loader matching the class name's process part.
func loadRecording(path, class string) (pipeline.Recording, error) {
	process, position, err := splitClass(class)
	if err != nil {
		return nil, err
	}
	switch process {
	case "screw_driving":
		return recordings.LoadScrewDriving(path, position)
	case "injection_molding":
		return recordings.LoadInjectionMolding(path, position)
	default:
		return nil, fmt.Errorf("unknown recording process %q", process)
	}
}

// splitClass splits "process.position" into its two parts.
func splitClass(class string) (process, position string, err error) {
	process, position, ok := strings.Cut(class, ".")
	if !ok || process == "" || position == "" {
		return "", "", fmt.Errorf("class must be process.position, got %q", class)
	}
	return process, position, nil
}

// writeFeatureDocument marshals the per-file feature bundles to path, or to
// stdout when path is empty.
func writeFeatureDocument(document map[string]pipeline.FeatureBundle, path string) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// exitCodeForSettingsError maps settings loading failures to exit codes.
func exitCodeForSettingsError(err error) int {
	var parseErr config.ParseError
	switch {
	case errors.As(err, &parseErr):
		return ExitParseError
	case strings.Contains(err.Error(), "schema validation failed"):
		return ExitValidationError
	default:
		return ExitRuntimeError
	}
}
