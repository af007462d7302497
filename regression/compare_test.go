package regression

import (
	"strings"
	"testing"

	"github.com/jverbeke/go-crashstats/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitTestModels(t *testing.T) (*Model, *Model) {
	t.Helper()

	d := twoGroupDataset(t, []int{2, 4, 3, 2, 4}, []int{6, 12, 9, 8, 10})

	reduced, err := Fit(d, &Spec{
		Name:       "reduced",
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.BuiltUp},
		Family:     FamilyPoisson,
	}, nil)
	require.Nil(t, err)

	full, err := Fit(d, &Spec{
		Name:       "full",
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.BuiltUp, dataset.Hour},
		Family:     FamilyPoisson,
	}, nil)
	require.Nil(t, err)

	return reduced, full
}

func TestCompareAIC(t *testing.T) {
	reduced, full := fitTestModels(t)

	entries, err := CompareAIC(reduced, full)
	require.Nil(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Best)
	assert.False(t, entries[1].Best)
	assert.LessOrEqual(t, entries[0].AIC, entries[1].AIC)

	_, err = CompareAIC(reduced)
	assert.ErrorAs(t, err, &ErrTooFewModels)
}

func TestLikelihoodRatioTest(t *testing.T) {
	reduced, full := fitTestModels(t)

	res, err := LikelihoodRatioTest(reduced, full)
	require.Nil(t, err)

	assert.Equal(t, 1, res.Df)
	assert.GreaterOrEqual(t, res.Statistic, 0.0)
	assert.GreaterOrEqual(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 1.0)

	_, err = LikelihoodRatioTest(full, reduced)
	assert.ErrorAs(t, err, &ErrNotNested)

	_, err = LikelihoodRatioTest(nil, full)
	assert.ErrorAs(t, err, &ErrNilModel)
}

func TestPseudoR2(t *testing.T) {
	reduced, full := fitTestModels(t)

	r2Reduced, err := PseudoR2(reduced)
	require.Nil(t, err)
	r2Full, err := PseudoR2(full)
	require.Nil(t, err)

	assert.NotZero(t, r2Reduced.McFadden)
	assert.NotZero(t, r2Reduced.CraggUhler)
	assert.NotEqual(t, r2Reduced.McFadden, r2Full.McFadden)

	_, err = PseudoR2(nil)
	assert.ErrorAs(t, err, &ErrNilModel)
}

func TestModelTablePrintAndEq(t *testing.T) {
	reduced, _ := fitTestModels(t)

	var sb strings.Builder
	require.Nil(t, reduced.TablePrint(&sb, "", "  "))
	out := sb.String()
	assert.Contains(t, out, "Model: reduced (poisson)")
	assert.Contains(t, out, "num_built_up_area")
	assert.Contains(t, out, "AIC")

	eq := reduced.Eq()
	assert.Contains(t, eq, "log(casualties) ~ ")
	assert.Contains(t, eq, "num_built_up_area")
}
