package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdispersion(t *testing.T) {
	testData := map[string]struct {
		y      []float64
		mu     []float64
		params int
		err    error
		over   bool
	}{
		"equidispersed": {
			y:      []float64{3, 2, 4, 3, 2, 4, 3, 3, 2, 4},
			mu:     []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
			params: 1,
			over:   false,
		},
		"overdispersed": {
			y:      []float64{0, 0, 0, 0, 30, 0, 0, 28, 0, 35},
			mu:     []float64{9.3, 9.3, 9.3, 9.3, 9.3, 9.3, 9.3, 9.3, 9.3, 9.3},
			params: 1,
			over:   true,
		},
		"length mismatch": {
			y:      []float64{1, 2, 3},
			mu:     []float64{1, 2},
			params: 1,
			err:    ErrObsLenMismatch,
		},
		"no residual df": {
			y:      []float64{1, 2},
			mu:     []float64{1, 2},
			params: 2,
			err:    ErrNoResidualDf,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			disp, err := Overdispersion(td.y, td.mu, td.params)
			if td.err != nil {
				assert.ErrorAs(t, err, &td.err)
				return
			}
			require.Nil(t, err)

			assert.Equal(t, len(td.y)-td.params, disp.Df)
			assert.GreaterOrEqual(t, disp.PValue, 0.0)
			assert.LessOrEqual(t, disp.PValue, 1.0)
			assert.Equal(t, td.over, disp.Overdispersed(0.05))
		})
	}
}

func TestVarianceInflationFactor(t *testing.T) {
	n := 200
	rnd := rand.New(rand.NewSource(7))

	indep1 := make([]float64, n)
	indep2 := make([]float64, n)
	collinear := make([]float64, n)
	for i := 0; i < n; i++ {
		indep1[i] = rnd.NormFloat64()
		indep2[i] = rnd.NormFloat64()
		collinear[i] = 2.0*indep1[i] + 1.0
	}

	t.Run("independent predictors stay near 1", func(t *testing.T) {
		vif, err := VarianceInflationFactor(map[string][]float64{
			"a": indep1,
			"b": indep2,
		})
		require.Nil(t, err)
		require.Len(t, vif, 2)
		assert.InDelta(t, 1.0, vif["a"], 0.2)
		assert.InDelta(t, 1.0, vif["b"], 0.2)
	})

	t.Run("exact collinearity is infinite", func(t *testing.T) {
		vif, err := VarianceInflationFactor(map[string][]float64{
			"a":      indep1,
			"b":      indep2,
			"copy_a": collinear,
		})
		require.Nil(t, err)
		assert.True(t, math.IsInf(vif["a"], 1), "a")
		assert.True(t, math.IsInf(vif["copy_a"], 1), "copy_a")
		assert.False(t, math.IsInf(vif["b"], 1), "b")
	})
}

func TestVarianceInflationFactorErrors(t *testing.T) {
	testData := map[string]struct {
		features map[string][]float64
		err      error
	}{
		"single feature": {
			map[string][]float64{"a": {1, 2, 3}},
			ErrMinimumFeatures,
		},
		"short feature": {
			map[string][]float64{"a": {1}, "b": {2}},
			ErrFeatureLen,
		},
		"length mismatch": {
			map[string][]float64{"a": {1, 2, 3}, "b": {1, 2}},
			ErrFeatureLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := VarianceInflationFactor(td.features)
			assert.ErrorAs(t, err, &td.err)
		})
	}
}

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		expected []int
	}{
		"no outliers": {
			y:        []float64{3, 4, 3, 4, 3, 4, 3, 4, 3, 4},
			expected: nil,
		},
		"single spike": {
			y:        []float64{3, 4, 3, 4, 3, 120, 3, 4, 3, 4},
			expected: []int{5},
		},
		"spike and dip": {
			y:        []float64{3, 4, 3, 4, -80, 120, 3, 4, 3, 4},
			expected: []int{4, 5},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			idx := DetectOutliers(td.y, 0.1, 0.9, 1.0)
			assert.Equal(t, td.expected, idx)
		})
	}
}
