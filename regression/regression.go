// Package regression fits accident regression models against a loaded
// dataset. A Spec names the outcome, the predictors and the family; the
// fitter assembles the design matrix through the term package, resolves the
// family selection policy and returns a Model with coefficient significance
// and fit diagnostics.
package regression

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/jverbeke/go-crashstats/glm"
	"github.com/jverbeke/go-crashstats/stats"
	"github.com/jverbeke/go-crashstats/term"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoDataset        = errors.New("no dataset")
	ErrUnknownPredictor = errors.New("predictor is neither a numeric nor a categorical column")
	ErrUnknownOutcome   = errors.New("outcome is not a numeric column")
)

// DispersionSignificance is the level at which the automatic family policy
// switches from Poisson to negative binomial.
const DispersionSignificance = 0.05

// MinAlpha floors the estimated negative binomial dispersion away from the
// Poisson limit.
const MinAlpha = 1e-3

// Fit estimates the model a Spec describes over the dataset. Fitting the
// same dataset and spec twice yields identical coefficients.
func Fit(d *dataset.Dataset, spec *Spec, opt *glm.Options) (*Model, error) {
	if d == nil || d.Len() == 0 {
		return nil, ErrNoDataset
	}
	spec, err := spec.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid spec, %w", err)
	}
	opt, err = opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options, %w", err)
	}
	opt.FitIntercept = true

	set, err := buildTerms(d, spec.Predictors)
	if err != nil {
		return nil, err
	}
	x := set.Matrix(false)

	y, err := d.Column(spec.Outcome)
	if err != nil {
		return nil, fmt.Errorf("%q, %w", spec.Outcome, ErrUnknownOutcome)
	}
	yMx := mat.NewDense(len(y), 1, y)

	family, dispersion, err := resolveFamily(spec, x, yMx, y, opt)
	if err != nil {
		return nil, err
	}

	reg, err := glm.NewRegression(family, opt)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(x, yMx); err != nil {
		return nil, fmt.Errorf("unable to fit %s, %w", spec.Name, err)
	}

	return newModel(spec, set, reg, y, dispersion), nil
}

// resolveFamily applies the family selection policy. Explicit families map
// directly; FamilyAuto uses logistic for the binarized fatal outcome and
// Poisson for counts, switching to negative binomial when the dispersion
// test of the Poisson fit rejects equidispersion.
func resolveFamily(spec *Spec, x mat.Matrix, yMx mat.Matrix, y []float64, opt *glm.Options) (glm.Family, *stats.Dispersion, error) {
	if spec.Family != FamilyAuto {
		family, err := spec.Family.glmFamily()
		if err != nil {
			return 0, nil, err
		}
		if family == glm.NegativeBinomial {
			alpha, disp, err := estimateAlpha(x, yMx, y, opt)
			if err != nil {
				return 0, nil, err
			}
			opt.Alpha = alpha
			return glm.NegativeBinomial, disp, nil
		}
		return family, nil, nil
	}

	if spec.Outcome == dataset.Fatal {
		return glm.Binomial, nil, nil
	}

	alpha, disp, err := estimateAlpha(x, yMx, y, opt)
	if err != nil {
		return 0, nil, err
	}
	if !disp.Overdispersed(DispersionSignificance) {
		return glm.Poisson, disp, nil
	}

	slog.Info("dispersion test rejects equidispersion, switching to negative binomial",
		"outcome", spec.Outcome,
		"dispersion", disp.Statistic,
		"p_value", disp.PValue,
		"alpha", alpha,
	)
	opt.Alpha = alpha
	return glm.NegativeBinomial, disp, nil
}

// estimateAlpha fits the Poisson pilot model and derives the negative
// binomial dispersion parameter from its Pearson residuals with the NB2
// moment relation, variance = mu + alpha*mu^2. The alpha is then held fixed
// during the negative binomial fit.
func estimateAlpha(x mat.Matrix, yMx mat.Matrix, y []float64, opt *glm.Options) (float64, *stats.Dispersion, error) {
	pilotOpt := *opt
	pilot, err := glm.NewRegression(glm.Poisson, &pilotOpt)
	if err != nil {
		return 0, nil, err
	}
	if err := pilot.Fit(x, yMx); err != nil {
		return 0, nil, fmt.Errorf("unable to fit poisson pilot model, %w", err)
	}

	mu := pilot.Fitted()
	summary := pilot.Summary()
	disp, err := stats.Overdispersion(y, mu, summary.Params)
	if err != nil {
		return 0, nil, err
	}

	muBar := stat.Mean(mu, nil)
	alpha := (disp.Statistic - 1.0) / muBar
	if alpha < MinAlpha {
		alpha = MinAlpha
	}
	return alpha, &disp, nil
}

// buildTerms expands the predictor columns into design matrix terms. Numeric
// columns become continuous terms, categorical columns one dummy per
// observed non-reference level. The reference is the first observed level
// and is absorbed by the intercept; levels the data never takes would be
// zero-variance columns and are dropped.
func buildTerms(d *dataset.Dataset, predictors []string) (term.Set, error) {
	set := term.NewSet()
	for _, p := range predictors {
		if col, err := d.Column(p); err == nil {
			set.Set(term.NewContinuous(p), col)
			continue
		}

		levels, err := d.Levels(p)
		if err != nil {
			return nil, fmt.Errorf("%q, %w", p, ErrUnknownPredictor)
		}

		var observed []string
		indicators := make(map[string][]float64, len(levels))
		for _, level := range levels {
			col, err := d.Indicator(p, level)
			if err != nil {
				return nil, err
			}
			if floats.Max(col) > 0 {
				observed = append(observed, level)
				indicators[level] = col
			}
		}
		if len(observed) < 2 {
			return nil, &glm.InsufficientDataError{
				Column: -1,
				Reason: fmt.Sprintf("categorical predictor %s takes a single level", p),
			}
		}
		for _, level := range observed[1:] {
			set.Set(term.NewDummy(p, level), indicators[level])
		}
	}
	return set, nil
}

// DesignColumns returns the expanded design matrix columns of the given
// predictors keyed by term label, for collinearity diagnostics.
func DesignColumns(d *dataset.Dataset, predictors []string) (map[string][]float64, error) {
	set, err := buildTerms(d, predictors)
	if err != nil {
		return nil, err
	}
	cols := make(map[string][]float64, len(set))
	for label, data := range set {
		cols[label] = data.Data
	}
	return cols, nil
}

func newModel(spec *Spec, set term.Set, reg *glm.Regression, y []float64, dispersion *stats.Dispersion) *Model {
	coef := reg.Coef()
	stderrs := reg.StdErrs()

	// stderrs leads with the intercept, coefficients follow in sorted term
	// label order matching the design matrix
	coefficients := make(map[string]Coefficient, len(coef))
	for i, t := range set.Labels().Labels() {
		coefficients[t.String()] = newCoefficient(coef[i], stderrs[i+1])
	}

	observed := make([]float64, len(y))
	copy(observed, y)

	return &Model{
		Name:         spec.Name,
		Spec:         *spec,
		Intercept:    newCoefficient(reg.Intercept(), stderrs[0]),
		Coefficients: coefficients,
		Summary:      reg.Summary(),
		Dispersion:   dispersion,
		observed:     observed,
		fitted:       reg.Fitted(),
	}
}
