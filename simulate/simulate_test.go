package simulate

import (
	"testing"
	"time"

	"github.com/jverbeke/go-crashstats/glm"
	"github.com/jverbeke/go-crashstats/regression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg, err := (*Config)(nil).Validate()
	require.Nil(t, err)
	assert.Equal(t, DefaultRecords, cfg.Records)
	assert.Equal(t, DefaultBaseRate, cfg.BaseRate)

	_, err = (&Config{Records: -1}).Validate()
	assert.ErrorAs(t, err, &ErrNoRecords)
}

func TestGenerateReproducible(t *testing.T) {
	cfg := func() *Config {
		return &Config{
			Records: 200,
			Seed:    7,
			Start:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	d1, err := Generate(cfg())
	require.Nil(t, err)
	d2, err := Generate(cfg())
	require.Nil(t, err)

	require.Equal(t, d1.Len(), d2.Len())
	r1, r2 := d1.Records(), d2.Records()
	for i := range r1 {
		assert.Equal(t, r1[i].Timestamp, r2[i].Timestamp)
		assert.Equal(t, r1[i].Casualties, r2[i].Casualties)
		assert.Equal(t, r1[i].RoadType, r2[i].RoadType)
		assert.Equal(t, r1[i].Lighting, r2[i].Lighting)
		assert.Equal(t, r1[i].Municipality, r2[i].Municipality)
	}
}

func TestGenerateRecords(t *testing.T) {
	var calls int
	d, err := Generate(&Config{
		Records:  150,
		Seed:     3,
		Progress: func(n int) { calls = n },
	})
	require.Nil(t, err)
	assert.Equal(t, 150, d.Len())
	assert.Equal(t, 150, calls)

	year := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range d.Records() {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Municipality)
		assert.GreaterOrEqual(t, r.Hour, 1)
		assert.LessOrEqual(t, r.Hour, 24)
		assert.False(t, r.Timestamp.Before(year))
		assert.GreaterOrEqual(t, r.Casualties, 0)
		assert.Equal(t, r.Casualties, r.Dead+r.SeriouslyInjured+r.SlightlyInjured)
	}
}

func TestGenerateRecoversEffectSigns(t *testing.T) {
	d, err := Generate(&Config{
		Records:       2000,
		Seed:          11,
		BaseRate:      1.5,
		HighwayEffect: 0.8,
		NightEffect:   0.5,
	})
	require.Nil(t, err)

	m, err := regression.Fit(d, &regression.Spec{
		Outcome:    "casualties",
		Predictors: []string{"road_type", "lighting"},
		Family:     regression.FamilyPoisson,
	}, glm.NewDefaultOptions())
	require.Nil(t, err)

	// highway is the reference road type, so the other road types carry
	// the negative of the highway effect
	urban, ok := m.Coefficients["dum_road_type_urban"]
	require.True(t, ok)
	assert.Negative(t, urban.Estimate)

	night, ok := m.Coefficients["dum_lighting_night_unlit"]
	require.True(t, ok)
	assert.Positive(t, night.Estimate)
}
