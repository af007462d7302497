package regression

import (
	"errors"
	"fmt"

	"github.com/jverbeke/go-crashstats/glm"
)

var (
	ErrNoOutcome          = errors.New("no outcome variable")
	ErrNoPredictors       = errors.New("no predictor variables")
	ErrDuplicatePredictor = errors.New("duplicate predictor variable")
	ErrOutcomePredictor   = errors.New("outcome cannot also be a predictor")
	ErrUnknownSpecFamily  = errors.New("unknown spec family")
)

// Family selects the model family of a spec. FamilyAuto applies the
// selection policy: Poisson for count outcomes, switching to negative
// binomial when the dispersion test rejects equidispersion, and logistic for
// the binarized fatal outcome.
type Family string

const (
	FamilyAuto        Family = "auto"
	FamilyPoisson     Family = "poisson"
	FamilyNegBinomial Family = "negative_binomial"
	FamilyLogistic    Family = "logistic"
)

func ParseSpecFamily(name string) (Family, error) {
	switch Family(name) {
	case FamilyAuto, "":
		return FamilyAuto, nil
	case FamilyPoisson:
		return FamilyPoisson, nil
	case FamilyNegBinomial, "negbinomial", "nb":
		return FamilyNegBinomial, nil
	case FamilyLogistic, "binomial", "logit":
		return FamilyLogistic, nil
	}
	return "", fmt.Errorf("%q, %w", name, ErrUnknownSpecFamily)
}

// glmFamily maps an explicit spec family onto the fitting family.
func (f Family) glmFamily() (glm.Family, error) {
	switch f {
	case FamilyPoisson:
		return glm.Poisson, nil
	case FamilyNegBinomial:
		return glm.NegativeBinomial, nil
	case FamilyLogistic:
		return glm.Binomial, nil
	}
	return 0, fmt.Errorf("%q, %w", string(f), ErrUnknownSpecFamily)
}

// Spec describes one model to fit: the outcome variable, the predictor
// variables and the model family.
type Spec struct {
	// Name labels the fitted model in reports. Defaults to the outcome
	// variable.
	Name string `json:"name"`

	// Outcome is the dataset column to model.
	Outcome string `json:"outcome"`

	// Predictors are the dataset columns explaining the outcome.
	// Categorical columns expand into dummy terms with the first level as
	// reference.
	Predictors []string `json:"predictors"`

	// Family is the model family. Empty defaults to FamilyAuto.
	Family Family `json:"family"`
}

// Validate runs basic validation on the spec and fills the defaulted fields.
func (s *Spec) Validate() (*Spec, error) {
	if s == nil {
		return nil, ErrNoOutcome
	}
	if s.Outcome == "" {
		return nil, ErrNoOutcome
	}
	if len(s.Predictors) == 0 {
		return nil, ErrNoPredictors
	}

	seen := make(map[string]struct{}, len(s.Predictors))
	for _, p := range s.Predictors {
		if p == s.Outcome {
			return nil, fmt.Errorf("%q, %w", p, ErrOutcomePredictor)
		}
		if _, exists := seen[p]; exists {
			return nil, fmt.Errorf("%q, %w", p, ErrDuplicatePredictor)
		}
		seen[p] = struct{}{}
	}

	if s.Family == "" {
		s.Family = FamilyAuto
	}
	switch s.Family {
	case FamilyAuto, FamilyPoisson, FamilyNegBinomial, FamilyLogistic:
	default:
		return nil, fmt.Errorf("%q, %w", string(s.Family), ErrUnknownSpecFamily)
	}

	if s.Name == "" {
		s.Name = s.Outcome
	}
	return s, nil
}
