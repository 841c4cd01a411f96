// This file registers all built-in steps and methods during initialization.
package registry

import (
	"github.com/nikolaiwest/cpc-data/internal/extract"
	"github.com/nikolaiwest/cpc-data/internal/steps"
)

func init() {
	registerBuiltinSteps()
	registerBuiltinMethods()
}

// registerBuiltinSteps registers the built-in processing steps.
func registerBuiltinSteps() {
	RegisterStep(steps.NameRemoveNegativeValues, steps.RemoveNegativeValues)
	RegisterStep(steps.NameResampleUniformTimes, steps.ResampleUniformTimes)
	RegisterStep(steps.NameResampleEqualLengths, steps.ResampleEqualLengths)
	RegisterStep(steps.NameScript, steps.Script)
}

// registerBuiltinMethods registers the built-in extraction methods.
func registerBuiltinMethods() {
	RegisterMethod(extract.NameRaw, extract.Raw)
	RegisterMethod(extract.NamePAA, extract.PAA)
	RegisterMethod(extract.NameStatistics, extract.Statistics)
	RegisterMethod(extract.NamePCA, extract.PCA)
	RegisterMethod(extract.NameTSFresh, extract.TSFresh)
	RegisterMethod(extract.NameCatch22, extract.Catch22)
	RegisterMethod(extract.NameExpression, extract.Expression)
}
