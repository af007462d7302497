package glm

import (
	"errors"
)

const (
	DefaultMaxIterations = 25
	DefaultTolerance     = 1e-8
	DefaultAlpha         = 1.0
)

var (
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
	ErrNegativeAlpha      = errors.New("negative dispersion alpha")
)

// Options represents input options to fit a generalized linear model.
type Options struct {
	// MaxIterations is the iteration budget of the reweighted least squares
	// loop. The fit fails with a ConvergenceError once exhausted.
	MaxIterations int

	// Tolerance is the relative deviance change between iterations below
	// which the fit is considered converged.
	Tolerance float64

	// Alpha is the negative binomial dispersion parameter of the NB2
	// variance mu + alpha*mu^2. Ignored by the other families. 0 selects
	// DefaultAlpha.
	Alpha float64

	// FitIntercept adds a constant 1.0 column as the first column if set
	// to true.
	FitIntercept bool
}

// NewDefaultOptions returns a default set of generalized linear model options.
func NewDefaultOptions() *Options {
	return &Options{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		Alpha:         DefaultAlpha,
		FitIntercept:  true,
	}
}

// Validate runs basic validation on the model options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	if o.MaxIterations < 0 {
		return nil, ErrNegativeIterations
	}
	if o.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if o.Alpha < 0 {
		return nil, ErrNegativeAlpha
	}

	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	return o, nil
}
