// Package stats holds the diagnostic statistics shared by the model fitting
// pipeline: the overdispersion test driving family selection, variance
// inflation factors for collinearity checks, and outlier detection over
// count columns.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
	ErrObsLenMismatch     = errors.New("observed and fitted have different lengths")
	ErrNoResidualDf       = errors.New("no residual degrees of freedom")
)

// Dispersion carries the result of a Pearson overdispersion test. The
// statistic is the Pearson chi-square divided by the residual degrees of
// freedom and sits near 1.0 for equidispersed Poisson data.
type Dispersion struct {
	Statistic float64 `json:"statistic"`
	ChiSquare float64 `json:"chi_square"`
	Df        int     `json:"df"`
	PValue    float64 `json:"p_value"`
}

// Overdispersed reports whether the test rejects equidispersion at the given
// significance level.
func (d Dispersion) Overdispersed(level float64) bool {
	return d.PValue < level
}

// Overdispersion runs a Pearson chi-square test of observed counts y against
// fitted Poisson means mu, with params the number of estimated coefficients.
// A small p-value indicates the variance significantly exceeds the mean.
func Overdispersion(y, mu []float64, params int) (Dispersion, error) {
	if len(y) != len(mu) {
		return Dispersion{}, ErrObsLenMismatch
	}
	df := len(y) - params
	if df <= 0 {
		return Dispersion{}, ErrNoResidualDf
	}

	var chi2 float64
	for i := 0; i < len(y); i++ {
		m := math.Max(mu[i], 1e-10)
		resid := y[i] - m
		chi2 += resid * resid / m
	}

	dist := distuv.ChiSquared{K: float64(df)}
	return Dispersion{
		Statistic: chi2 / float64(df),
		ChiSquare: chi2,
		Df:        df,
		PValue:    dist.Survival(chi2),
	}, nil
}

// VarianceInflationFactor computes the variance inflation factor of each
// predictor, 1/(1-R2) from regressing the predictor on all of the others
// with an intercept. Exactly collinear predictors report +Inf.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	n := len(features)
	var m int
	for _, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(feature)
			continue
		}
		if m != len(feature) {
			return nil, ErrFeatureLenMismatch
		}
	}

	labels := make([]string, 0, n)
	for label := range features {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	vif := make(map[string]float64)
	x := mat.NewDense(m, n, nil)

	ones := make([]float64, m)
	floats.AddConst(1.0, ones)
	x.SetCol(0, ones)

	for _, label := range labels {
		c := 1
		for _, otherLabel := range labels {
			if otherLabel == label {
				continue
			}
			x.SetCol(c, features[otherLabel])
			c++
		}

		predicted, err := olsPredict(x, features[label])
		if err != nil {
			// the other predictors are themselves collinear, the
			// regression cannot separate them
			vif[label] = math.Inf(1)
			continue
		}

		r2 := stat.RSquaredFrom(predicted, features[label], nil)
		if r2 >= 1.0 {
			vif[label] = math.Inf(1)
			continue
		}
		vif[label] = 1.0 / (1.0 - r2)
	}
	return vif, nil
}

// olsPredict solves the least squares fit of y on x and returns the fitted
// values.
func olsPredict(x *mat.Dense, y []float64) ([]float64, error) {
	m, n := x.Dims()

	qr := new(mat.QR)
	qr.Factorize(x)

	yMx := mat.NewDense(m, 1, nil)
	yMx.SetCol(0, y)

	beta := mat.NewDense(n, 1, nil)
	if err := qr.SolveTo(beta, false, yMx); err != nil {
		return nil, err
	}

	var predictedMx mat.Dense
	predictedMx.Mul(x, beta)
	return mat.Col(nil, 0, &predictedMx), nil
}

// DetectOutliers returns the indices of y falling outside the Tukey fences
// built from the given lower and upper percentiles.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)) * upperPerc))
	if upperIdx >= len(yCopy) {
		upperIdx = len(yCopy) - 1
	}

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] >= upper || y[i] <= lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
