package recordings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Injection molding workpiece positions.
const (
	PositionUpperWorkpiece = "upper_workpiece"
	PositionLowerWorkpiece = "lower_workpiece"
)

// injectionMoldingProcess is the class path prefix for injection molding
// recordings.
const injectionMoldingProcess = "injection_molding"

// InjectionMolding is one molding cycle exported by the machine as a CSV
// table: a header row naming the channels (one of them the time column)
// followed by one row per sample. Both semicolon and comma delimiters occur
// in the field.
type InjectionMolding struct {
	position string
	bundle   pipeline.SeriesBundle
}

var _ pipeline.Recording = (*InjectionMolding)(nil)

// NewInjectionMolding creates an injection molding recording from already
// loaded serial data.
func NewInjectionMolding(position string, bundle pipeline.SeriesBundle) *InjectionMolding {
	return &InjectionMolding{position: position, bundle: bundle}
}

// LoadInjectionMolding reads an injection molding recording from a CSV file.
// A missing file or a table without data rows results in a recording with no
// serial data.
func LoadInjectionMolding(path, position string) (*InjectionMolding, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("injection molding file missing",
				slog.String("path", path),
				slog.String("position", position),
			)
			return NewInjectionMolding(position, nil), nil
		}
		return nil, fmt.Errorf("opening injection molding file: %w", err)
	}
	defer f.Close()

	bundle, err := decodeChannelTable(f)
	if err != nil {
		return nil, fmt.Errorf("parsing injection molding file %s: %w", path, err)
	}
	if len(bundle) == 0 {
		logger.Warn("injection molding file has no data rows",
			slog.String("path", path),
			slog.String("position", position),
		)
		return NewInjectionMolding(position, nil), nil
	}
	return NewInjectionMolding(position, bundle), nil
}

// ClassName implements pipeline.Recording.
func (m *InjectionMolding) ClassName() string {
	return injectionMoldingProcess + "." + m.position
}

// SerialData implements pipeline.Recording.
func (m *InjectionMolding) SerialData() pipeline.SeriesBundle {
	return m.bundle
}

// decodeChannelTable parses a delimited channel table into a bundle, one
// series per column. Unparseable and empty cells become NaN gaps.
func decodeChannelTable(r io.Reader) (pipeline.SeriesBundle, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := string(raw)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	bundle := pipeline.SeriesBundle{}
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		series := make(pipeline.Series, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if col >= len(row) {
				series = append(series, math.NaN())
				continue
			}
			series = append(series, parseSample(row[col]))
		}
		bundle[name] = series
	}
	return bundle, nil
}

// detectDelimiter picks the column separator from the header line. Exported
// tables use semicolons on German-locale machines and commas elsewhere.
func detectDelimiter(content string) rune {
	header := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		header = content[:idx]
	}
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// parseSample converts one cell to a sample, tolerating decimal commas in
// semicolon-delimited exports.
func parseSample(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		v, err = strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
		if err != nil {
			return math.NaN()
		}
	}
	return v
}
