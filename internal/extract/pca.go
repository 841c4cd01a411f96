package extract

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nikolaiwest/cpc-data/pkg/pipeline"
)

// DefaultPCAComponents is used when pca_n_components is not configured.
const DefaultPCAComponents = 24

// pcaRankTolerance is the threshold below which a singular value counts as
// numerically zero.
const pcaRankTolerance = 1e-12

// PCA reduces the series to pca_n_components values. The series is treated
// as a single observation, so the centered data matrix is rank deficient and
// the decomposition degenerates; in that case the method falls back to the
// leading raw samples, zero-padded to the requested width. The SVD path is
// kept for the general shape so batched inputs decompose properly.
func PCA(series pipeline.Series, params pipeline.Params) ([]float64, error) {
	components := params.Int("pca_n_components", DefaultPCAComponents)
	if components <= 0 {
		return nil, fmt.Errorf("pca_n_components must be positive, got %d", components)
	}

	n := len(series)
	if n == 0 {
		return []float64{}, nil
	}
	if components > n {
		components = n
	}
	if n == 1 {
		return []float64{series[0]}, nil
	}

	// Columns are features, rows are observations. Centering each column
	// over its observations zeroes a single-observation matrix, so the
	// decomposition below degenerates and the fallback applies; batched
	// observations would decompose normally.
	rows := 1
	data := mat.NewDense(rows, n, nil)
	data.SetRow(0, series)
	centered := mat.NewDense(rows, n, nil)
	col := make([]float64, rows)
	for j := 0; j < n; j++ {
		mat.Col(col, j, data)
		mu := meanOf(col)
		for i := range col {
			centered.Set(i, j, col[i]-mu)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); ok {
		values := svd.Values(nil)
		if len(values) > 0 && values[0] > pcaRankTolerance {
			var v mat.Dense
			svd.VTo(&v)
			var projected mat.Dense
			projected.Mul(centered, v.Slice(0, n, 0, min(components, len(values))))
			out := make([]float64, components)
			copy(out, projected.RawRowView(0))
			return out, nil
		}
	}

	// Degenerate decomposition: pass the leading samples through.
	out := make([]float64, components)
	copy(out, series[:components])
	return out, nil
}
