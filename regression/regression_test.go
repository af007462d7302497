package regression

import (
	"math"
	"testing"
	"time"

	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/jverbeke/go-crashstats/glm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoGroupDataset builds records split between urban daylight rows and
// highway night rows, with the given casualty counts per group.
func twoGroupDataset(t *testing.T, urbanCounts, highwayCounts []int) *dataset.Dataset {
	t.Helper()

	day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)
	var records []dataset.AccidentRecord
	for i, c := range urbanCounts {
		records = append(records, dataset.AccidentRecord{
			ID:        "urban",
			Timestamp: day.Add(time.Duration(i) * time.Hour),
			Hour:      8 + i%5,
			Weekday:   dataset.Weekday(i % 7),
			RoadType:  dataset.Urban,
			Lighting:  dataset.Daylight,

			Casualties:      c,
			SlightlyInjured: c,
		})
	}
	for i, c := range highwayCounts {
		records = append(records, dataset.AccidentRecord{
			ID:          "highway",
			Timestamp:   day.Add(time.Duration(i+len(urbanCounts)) * time.Hour),
			Hour:        17 + i%5,
			Weekday:     dataset.Weekday(i % 7),
			RoadType:    dataset.Highway,
			Lighting:    dataset.NightUnlit,
			BuiltUpArea: true,

			Casualties: c,
			Dead:       1,
		})
	}

	d, err := dataset.New(records, nil)
	require.Nil(t, err)
	return d
}

func TestSpecValidate(t *testing.T) {
	testData := map[string]struct {
		spec     *Spec
		err      error
		expected *Spec
	}{
		"nil":           {nil, ErrNoOutcome, nil},
		"no outcome":    {&Spec{Predictors: []string{"a"}}, ErrNoOutcome, nil},
		"no predictors": {&Spec{Outcome: "casualties"}, ErrNoPredictors, nil},
		"duplicate":     {&Spec{Outcome: "y", Predictors: []string{"a", "a"}}, ErrDuplicatePredictor, nil},
		"outcome as predictor": {
			&Spec{Outcome: "y", Predictors: []string{"y"}}, ErrOutcomePredictor, nil,
		},
		"bad family": {
			&Spec{Outcome: "y", Predictors: []string{"a"}, Family: Family("weibull")}, ErrUnknownSpecFamily, nil,
		},
		"defaults": {
			&Spec{Outcome: "casualties", Predictors: []string{"built_up_area"}}, nil,
			&Spec{Name: "casualties", Outcome: "casualties", Predictors: []string{"built_up_area"}, Family: FamilyAuto},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			spec, err := td.spec.Validate()
			if td.err != nil {
				assert.ErrorAs(t, err, &td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, spec)
		})
	}
}

func TestParseSpecFamily(t *testing.T) {
	testData := map[string]struct {
		name     string
		expected Family
		err      error
	}{
		"empty is auto": {name: "", expected: FamilyAuto},
		"poisson":       {name: "poisson", expected: FamilyPoisson},
		"nb alias":      {name: "negbinomial", expected: FamilyNegBinomial},
		"logit alias":   {name: "logit", expected: FamilyLogistic},
		"unknown":       {name: "weibull", err: ErrUnknownSpecFamily},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := ParseSpecFamily(td.name)
			if td.err != nil {
				assert.ErrorAs(t, err, &td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, f)
		})
	}
}

func TestFitPoissonRecoversGroupMeans(t *testing.T) {
	d := twoGroupDataset(t, []int{2, 4}, []int{6, 12})

	m, err := Fit(d, &Spec{
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.BuiltUp},
		Family:     FamilyPoisson,
	}, nil)
	require.Nil(t, err)

	assert.Equal(t, glm.Poisson, m.Summary.Family)

	// closed form: intercept log(3), group effect log(9/3)
	assert.InDelta(t, math.Log(3.0), m.Intercept.Estimate, 1e-6)
	coef, exists := m.Coefficients["num_built_up_area"]
	require.True(t, exists)
	assert.InDelta(t, math.Log(3.0), coef.Estimate, 1e-6)
	assert.Greater(t, coef.StdErr, 0.0)

	fitted := m.Fitted()
	require.Len(t, fitted, 4)
	assert.InDelta(t, 3.0, fitted[0], 1e-6)
	assert.InDelta(t, 9.0, fitted[2], 1e-6)
}

func TestFitSignMatchesRelationship(t *testing.T) {
	// 3 records with a known positive relationship between the binary
	// predictor and the count outcome
	d := twoGroupDataset(t, []int{1, 1}, []int{5})

	m, err := Fit(d, &Spec{
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.BuiltUp},
		Family:     FamilyPoisson,
	}, nil)
	require.Nil(t, err)
	assert.Greater(t, m.Coefficients["num_built_up_area"].Estimate, 0.0)

	flipped := twoGroupDataset(t, []int{5, 5}, []int{1})
	m, err = Fit(flipped, &Spec{
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.BuiltUp},
		Family:     FamilyPoisson,
	}, nil)
	require.Nil(t, err)
	assert.Less(t, m.Coefficients["num_built_up_area"].Estimate, 0.0)
}

func TestFitDeterminism(t *testing.T) {
	d := twoGroupDataset(t, []int{2, 4, 3, 2}, []int{6, 12, 9, 8})
	spec := &Spec{
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.BuiltUp, dataset.RoadTypeCol},
	}

	first, err := Fit(d, spec, nil)
	require.Nil(t, err)
	second, err := Fit(d, spec, nil)
	require.Nil(t, err)

	assert.Equal(t, first.Intercept, second.Intercept)
	assert.Equal(t, first.Coefficients, second.Coefficients)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestFitDummyExpansion(t *testing.T) {
	d := twoGroupDataset(t, []int{2, 4, 3}, []int{6, 12, 9})

	m, err := Fit(d, &Spec{
		Outcome:    dataset.Casualties,
		Predictors: []string{dataset.LightingCol},
		Family:     FamilyPoisson,
	}, nil)
	require.Nil(t, err)

	// daylight is the reference level and carries no dummy, and levels the
	// data never takes are dropped
	assert.NotContains(t, m.Coefficients, "dum_lighting_daylight")
	assert.NotContains(t, m.Coefficients, "dum_lighting_dusk")
	assert.Contains(t, m.Coefficients, "dum_lighting_night_unlit")
}

func TestFitAutoFamilySelection(t *testing.T) {
	t.Run("fatal outcome selects logistic", func(t *testing.T) {
		// both groups carry both outcomes so the slope stays finite
		day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)
		var records []dataset.AccidentRecord
		fatal := []int{0, 0, 1, 1, 1, 0}
		for i, f := range fatal {
			records = append(records, dataset.AccidentRecord{
				ID:          "rec",
				Timestamp:   day.Add(time.Duration(i) * time.Hour),
				Hour:        12,
				BuiltUpArea: i >= 3,
				Casualties:  1,
				Dead:        f,
			})
		}
		d, err := dataset.New(records, nil)
		require.Nil(t, err)

		m, err := Fit(d, &Spec{
			Outcome:    dataset.Fatal,
			Predictors: []string{dataset.BuiltUp},
		}, nil)
		require.Nil(t, err)
		assert.Equal(t, glm.Binomial, m.Summary.Family)
		// the built-up rows are mostly fatal, the others mostly not
		assert.Greater(t, m.Coefficients["num_built_up_area"].Estimate, 0.0)
	})

	t.Run("equidispersed counts stay poisson", func(t *testing.T) {
		d := twoGroupDataset(t, []int{3, 2, 4, 3, 2, 4, 3, 3}, []int{6, 5, 7, 6, 5, 7, 6, 6})
		m, err := Fit(d, &Spec{
			Outcome:    dataset.Casualties,
			Predictors: []string{dataset.BuiltUp},
		}, nil)
		require.Nil(t, err)
		assert.Equal(t, glm.Poisson, m.Summary.Family)
		require.NotNil(t, m.Dispersion)
		assert.False(t, m.Dispersion.Overdispersed(DispersionSignificance))
	})

	t.Run("overdispersed counts switch to negative binomial", func(t *testing.T) {
		d := twoGroupDataset(t,
			[]int{0, 0, 0, 0, 0, 30, 0, 28, 0, 35},
			[]int{0, 0, 0, 60, 0, 0, 0, 55, 0, 70},
		)
		m, err := Fit(d, &Spec{
			Outcome:    dataset.Casualties,
			Predictors: []string{dataset.BuiltUp},
		}, nil)
		require.Nil(t, err)
		assert.Equal(t, glm.NegativeBinomial, m.Summary.Family)
		require.NotNil(t, m.Dispersion)
		assert.True(t, m.Dispersion.Overdispersed(DispersionSignificance))
		assert.Greater(t, m.Summary.Alpha, 0.0)
	})
}

func TestFitErrors(t *testing.T) {
	d := twoGroupDataset(t, []int{2, 4, 3}, []int{6, 12, 9})

	t.Run("nil dataset", func(t *testing.T) {
		_, err := Fit(nil, &Spec{Outcome: dataset.Casualties, Predictors: []string{dataset.BuiltUp}}, nil)
		assert.ErrorAs(t, err, &ErrNoDataset)
	})

	t.Run("unknown predictor", func(t *testing.T) {
		_, err := Fit(d, &Spec{Outcome: dataset.Casualties, Predictors: []string{"nope"}}, nil)
		assert.ErrorAs(t, err, &ErrUnknownPredictor)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := Fit(d, &Spec{Outcome: "nope", Predictors: []string{dataset.BuiltUp}}, nil)
		assert.ErrorAs(t, err, &ErrUnknownOutcome)
	})

	t.Run("zero variance predictor", func(t *testing.T) {
		// every record is a holiday non-event, the column is constant
		_, err := Fit(d, &Spec{
			Outcome:    dataset.Casualties,
			Predictors: []string{dataset.Holiday},
			Family:     FamilyPoisson,
		}, nil)
		var insufficient *glm.InsufficientDataError
		assert.ErrorAs(t, err, &insufficient)
	})

	t.Run("single level categorical", func(t *testing.T) {
		day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)
		var records []dataset.AccidentRecord
		for i, c := range []int{2, 4, 3} {
			records = append(records, dataset.AccidentRecord{
				ID:         "rec",
				Timestamp:  day.Add(time.Duration(i) * time.Hour),
				Hour:       8 + i,
				RoadType:   dataset.Urban,
				Casualties: c,
			})
		}
		single, err := dataset.New(records, nil)
		require.Nil(t, err)

		_, err = Fit(single, &Spec{
			Outcome:    dataset.Casualties,
			Predictors: []string{dataset.RoadTypeCol},
			Family:     FamilyPoisson,
		}, nil)
		var insufficient *glm.InsufficientDataError
		assert.ErrorAs(t, err, &insufficient)
	})

	t.Run("iteration budget exhausted", func(t *testing.T) {
		_, err := Fit(d, &Spec{
			Outcome:    dataset.Casualties,
			Predictors: []string{dataset.BuiltUp},
			Family:     FamilyPoisson,
		}, &glm.Options{MaxIterations: 1})
		var convergence *glm.ConvergenceError
		assert.ErrorAs(t, err, &convergence)
	})
}

func TestDesignColumns(t *testing.T) {
	d := twoGroupDataset(t, []int{2, 4}, []int{6, 12})

	cols, err := DesignColumns(d, []string{dataset.BuiltUp, dataset.RoadTypeCol})
	require.Nil(t, err)

	assert.Contains(t, cols, "num_built_up_area")
	assert.Contains(t, cols, "dum_road_type_urban")
	assert.NotContains(t, cols, "dum_road_type_highway", "reference level")
	for label, col := range cols {
		assert.Len(t, col, 4, label)
	}
}
