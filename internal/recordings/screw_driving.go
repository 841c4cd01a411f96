// Package recordings implements the recording kinds the pipeline can
// consume. Each kind loads one experiment's serial data from disk and
// exposes it through the pipeline.Recording interface; a missing or empty
// source file yields a recording without serial data rather than an error.
package recordings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/nikolaiwest/cpc-data/internal/logger"
	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// Screw driving workpiece positions.
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// screwDrivingProcess is the class path prefix for screw driving recordings.
const screwDrivingProcess = "screw_driving"

// ScrewDriving is one screw driving run recorded by the station controller:
// a JSON document of equally long sample arrays (time, torque, angle,
// gradient and the reduced channels).
type ScrewDriving struct {
	position string
	bundle   pipeline.SeriesBundle
}

var _ pipeline.Recording = (*ScrewDriving)(nil)

// NewScrewDriving creates a screw driving recording from already loaded
// serial data.
func NewScrewDriving(position string, bundle pipeline.SeriesBundle) *ScrewDriving {
	return &ScrewDriving{position: position, bundle: bundle}
}

// LoadScrewDriving reads a screw driving recording from a JSON file. A
// missing file or a document without sample arrays results in a recording
// with no serial data.
func LoadScrewDriving(path, position string) (*ScrewDriving, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("screw driving file missing",
				slog.String("path", path),
				slog.String("position", position),
			)
			return NewScrewDriving(position, nil), nil
		}
		return nil, fmt.Errorf("reading screw driving file: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing screw driving file %s: %w", path, err)
	}

	bundle := decodeSampleArrays(doc)
	if len(bundle) == 0 {
		logger.Warn("screw driving file has no sample arrays",
			slog.String("path", path),
			slog.String("position", position),
		)
		return NewScrewDriving(position, nil), nil
	}
	return NewScrewDriving(position, bundle), nil
}

// ClassName implements pipeline.Recording.
func (s *ScrewDriving) ClassName() string {
	return screwDrivingProcess + "." + s.position
}

// SerialData implements pipeline.Recording.
func (s *ScrewDriving) SerialData() pipeline.SeriesBundle {
	return s.bundle
}

// decodeSampleArrays keeps the document entries that are arrays of numbers.
// Scalar metadata fields (class labels, operator notes) are ignored; null
// samples inside an array become NaN gaps.
func decodeSampleArrays(doc map[string]json.RawMessage) pipeline.SeriesBundle {
	bundle := pipeline.SeriesBundle{}
	for name, raw := range doc {
		var values []*float64
		if err := json.Unmarshal(raw, &values); err != nil {
			continue
		}
		if len(values) == 0 {
			continue
		}
		series := make(pipeline.Series, len(values))
		for i, v := range values {
			if v == nil {
				series[i] = math.NaN()
			} else {
				series[i] = *v
			}
		}
		bundle[name] = series
	}
	return bundle
}
