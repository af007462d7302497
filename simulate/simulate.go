// Package simulate generates synthetic accident datasets with a known
// log-linear ground truth, for demos and for exercising the pipeline end to
// end. With a fixed seed the output is reproducible and a Poisson fit on the
// generated data recovers the configured effect signs.
package simulate

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/lucsky/cuid"
)

var ErrNoRecords = errors.New("must simulate at least 1 record")

const (
	DefaultRecords       = 1000
	DefaultBaseRate      = 1.2
	DefaultHighwayEffect = 0.8
	DefaultNightEffect   = 0.5
	DefaultFatalRate     = 0.05
)

// Config controls the generator. Effects are additive on the log casualty
// rate, so positive values raise expected counts.
type Config struct {
	// Records is the number of accident rows to generate.
	Records int

	// Seed fixes the random stream. The same seed yields the same accident
	// stream, only the record IDs differ.
	Seed int64

	// Start is the first day of the simulated year of accidents.
	Start time.Time

	// BaseRate is the expected casualty count of an urban daylight
	// accident.
	BaseRate float64

	// HighwayEffect is the log-rate increase of highway accidents.
	HighwayEffect float64

	// NightEffect is the log-rate increase of unlit night accidents.
	NightEffect float64

	// FatalRate is the probability that an accident with casualties has a
	// death.
	FatalRate float64

	// Progress, when set, is called with the running record number.
	Progress func(n int)
}

// NewDefaultConfig returns the default generator configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Records:       DefaultRecords,
		Seed:          42,
		Start:         time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseRate:      DefaultBaseRate,
		HighwayEffect: DefaultHighwayEffect,
		NightEffect:   DefaultNightEffect,
		FatalRate:     DefaultFatalRate,
	}
}

// Validate runs basic validation on the generator configuration and fills
// the defaulted fields.
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		return NewDefaultConfig(), nil
	}
	if c.Records < 0 {
		return nil, ErrNoRecords
	}
	if c.Records == 0 {
		c.Records = DefaultRecords
	}
	if c.Start.IsZero() {
		c.Start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.BaseRate <= 0 {
		c.BaseRate = DefaultBaseRate
	}
	if c.FatalRate <= 0 {
		c.FatalRate = DefaultFatalRate
	}
	return c, nil
}

// Generate builds a synthetic accident dataset under the configured ground
// truth.
func Generate(cfg *Config) (*dataset.Dataset, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(cfg.Seed))
	fake := faker.NewWithSeed(rand.NewSource(cfg.Seed + 1))

	records := make([]dataset.AccidentRecord, 0, cfg.Records)
	for i := 0; i < cfg.Records; i++ {
		if cfg.Progress != nil {
			cfg.Progress(i + 1)
		}

		day := cfg.Start.AddDate(0, 0, rnd.Intn(365))
		hour := 1 + rnd.Intn(24)
		ts := day.Add(time.Duration(hour-1) * time.Hour)

		roadType := dataset.Urban
		switch rnd.Intn(3) {
		case 0:
			roadType = dataset.Highway
		case 1:
			roadType = dataset.Regional
		}

		lighting := dataset.Daylight
		if hour <= 6 || hour >= 21 {
			lighting = dataset.NightLit
			if rnd.Float64() < 0.4 {
				lighting = dataset.NightUnlit
			}
		} else if hour == 7 || hour == 20 {
			lighting = dataset.Dusk
		}

		logRate := math.Log(cfg.BaseRate)
		if roadType == dataset.Highway {
			logRate += cfg.HighwayEffect
		}
		if lighting == dataset.NightUnlit {
			logRate += cfg.NightEffect
		}
		casualties := poissonDraw(rnd, math.Exp(logRate))

		weather := dataset.Dry
		switch {
		case rnd.Float64() < 0.15:
			weather = dataset.Rain
		case rnd.Float64() < 0.03:
			weather = dataset.Fog
		}

		collision := dataset.CollisionTypes()[rnd.Intn(len(dataset.CollisionTypes()))]

		var impairment dataset.Impairment
		if rnd.Float64() < 0.08 {
			impairment.Alcohol = true
		}

		var dead, serious, slight int
		if casualties > 0 {
			if rnd.Float64() < cfg.FatalRate {
				dead = 1
			}
			serious = rnd.Intn(casualties + 1 - dead)
			slight = casualties - dead - serious
		}

		records = append(records, dataset.AccidentRecord{
			ID:               cuid.Slug(),
			Timestamp:        ts,
			Hour:             hour,
			Weekday:          dataset.Weekday((int(day.Weekday()) + 6) % 7),
			Municipality:     fake.Address().City(),
			RoadType:         roadType,
			Weather:          weather,
			CollisionType:    collision,
			Lighting:         lighting,
			BuiltUpArea:      roadType == dataset.Urban && rnd.Float64() < 0.7,
			Impairment:       impairment,
			Casualties:       casualties,
			Dead:             dead,
			SeriouslyInjured: serious,
			SlightlyInjured:  slight,
		})
	}

	return dataset.New(records, nil)
}

// poissonDraw samples a Poisson count by inversion of the exponential
// product, fine for the small rates of this generator.
func poissonDraw(rnd *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rnd.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
