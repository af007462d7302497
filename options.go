package crashstats

import (
	"fmt"

	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/jverbeke/go-crashstats/glm"
	"github.com/jverbeke/go-crashstats/regression"
)

// DefaultSignificance is the level used for coefficient significance and the
// likelihood ratio test in the report.
const DefaultSignificance = 0.05

// Options represents input options to run the accident analysis.
type Options struct {
	// Source is the dataset location: a local path, an http(s) URL or an
	// s3:// URI.
	Source string

	// Load configures the CSV loader.
	Load *dataset.LoadOptions

	// GLM configures the model fitter.
	GLM *glm.Options

	// Specs are the models to fit. Defaults to the standard casualty and
	// fatality models.
	Specs []*regression.Spec

	// Significance is the level for significance flags in the report.
	Significance float64
}

// NewDefaultOptions returns a default set of analysis options.
func NewDefaultOptions() *Options {
	return &Options{
		Load:         dataset.NewDefaultLoadOptions(),
		GLM:          glm.NewDefaultOptions(),
		Specs:        DefaultSpecs(),
		Significance: DefaultSignificance,
	}
}

// DefaultSpecs returns the standard model set: a reduced and a full casualty
// count model plus a fatality model. The count models are nested so the
// report can run a likelihood ratio test between them.
func DefaultSpecs() []*regression.Spec {
	return []*regression.Spec{
		{
			Name:       "casualties_reduced",
			Outcome:    dataset.Casualties,
			Predictors: []string{dataset.RoadTypeCol, dataset.LightingCol},
		},
		{
			Name:    "casualties_full",
			Outcome: dataset.Casualties,
			Predictors: []string{
				dataset.RoadTypeCol,
				dataset.LightingCol,
				dataset.BuiltUp,
				dataset.Weekend,
			},
		},
		{
			Name:       "fatal",
			Outcome:    dataset.Fatal,
			Predictors: []string{dataset.RoadTypeCol, dataset.LightingCol},
		},
	}
}

// Validate runs basic validation on the analysis options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	if o.Load == nil {
		o.Load = dataset.NewDefaultLoadOptions()
	}
	if o.GLM == nil {
		o.GLM = glm.NewDefaultOptions()
	}
	if len(o.Specs) == 0 {
		o.Specs = DefaultSpecs()
	}
	if o.Significance == 0 {
		o.Significance = DefaultSignificance
	}

	for i, spec := range o.Specs {
		spec, err := spec.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid spec %d, %w", i, err)
		}
		o.Specs[i] = spec
	}
	return o, nil
}
