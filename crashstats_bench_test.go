package crashstats

import (
	"testing"

	"github.com/jverbeke/go-crashstats/simulate"

	"github.com/pkg/profile"
)

func BenchmarkRunDataset(b *testing.B) {
	d, err := simulate.Generate(&simulate.Config{
		Records: 5000,
		Seed:    42,
	})
	if err != nil {
		panic(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, err := New(&Options{Specs: testSpecs()})
		if err != nil {
			panic(err)
		}
		if err := a.RunDataset(d); err != nil {
			panic(err)
		}
	}
}

func BenchmarkRunDatasetProfile(b *testing.B) {
	d, err := simulate.Generate(&simulate.Config{
		Records: 5000,
		Seed:    42,
	})
	if err != nil {
		panic(err)
	}

	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, err := New(&Options{Specs: testSpecs()})
		if err != nil {
			panic(err)
		}
		if err := a.RunDataset(d); err != nil {
			panic(err)
		}
	}
}
