// Package extract provides implementations for extraction methods.
// An extraction method reduces one cleaned series to a fixed-shape feature
// vector. Methods are pure functions over immutable inputs; failure (error,
// nil result, panic) causes the runtime to omit the series from the feature
// bundle rather than aborting the recording.
package extract

import "github.com/nikolaiwest/cpc-data/pkg/pipeline"

// Method names as they appear in extraction settings.
const (
	NameRaw        = "raw"
	NamePAA        = "paa"
	NameStatistics = "statistics"
	NamePCA        = "pca"
	NameTSFresh    = "tsfresh"
	NameCatch22    = "catch22"
	NameExpression = "expression"
)

// Func is the transform signature all extraction methods share.
type Func func(series pipeline.Series, params pipeline.Params) ([]float64, error)

// Raw is the identity passthrough: the cleaned series itself becomes the
// feature vector, for callers that do their own feature engineering later.
func Raw(series pipeline.Series, _ pipeline.Params) ([]float64, error) {
	return series.Copy(), nil
}
