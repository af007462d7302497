package regression

import (
	"errors"
	"sort"

	"github.com/jverbeke/go-crashstats/glm"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrTooFewModels = errors.New("need at least 2 models to compare")
	ErrNotNested    = errors.New("models are not nested")
	ErrNilModel     = errors.New("nil model")
)

// AICEntry ranks one model in an AIC comparison.
type AICEntry struct {
	Name   string     `json:"name"`
	Family glm.Family `json:"family"`
	AIC    float64    `json:"aic"`
	Best   bool       `json:"best"`
}

// CompareAIC ranks fitted models by ascending AIC and flags the preferred
// one.
func CompareAIC(models ...*Model) ([]AICEntry, error) {
	if len(models) < 2 {
		return nil, ErrTooFewModels
	}

	entries := make([]AICEntry, 0, len(models))
	for _, m := range models {
		if m == nil {
			return nil, ErrNilModel
		}
		entries = append(entries, AICEntry{
			Name:   m.Name,
			Family: m.Summary.Family,
			AIC:    m.Summary.AIC,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AIC < entries[j].AIC
	})
	entries[0].Best = true
	return entries, nil
}

// LRTResult is the outcome of a likelihood ratio test between two nested
// models.
type LRTResult struct {
	Statistic float64 `json:"statistic"`
	Df        int     `json:"df"`
	PValue    float64 `json:"p_value"`
}

// Significant reports whether the full model improves fit at the given
// level.
func (r LRTResult) Significant(level float64) bool {
	return r.PValue < level
}

// LikelihoodRatioTest compares a reduced model against a nested full model,
// LR = 2*(ll_full - ll_reduced) with the extra parameter count as degrees of
// freedom. The negative binomial dispersion parameter counts as one extra
// parameter over a Poisson fit.
func LikelihoodRatioTest(reduced, full *Model) (LRTResult, error) {
	if reduced == nil || full == nil {
		return LRTResult{}, ErrNilModel
	}

	df := effectiveParams(full) - effectiveParams(reduced)
	if df < 1 {
		return LRTResult{}, ErrNotNested
	}

	lr := 2.0 * (full.Summary.LogLikelihood - reduced.Summary.LogLikelihood)
	if lr < 0 {
		lr = 0
	}

	dist := distuv.ChiSquared{K: float64(df)}
	return LRTResult{
		Statistic: lr,
		Df:        df,
		PValue:    dist.Survival(lr),
	}, nil
}

func effectiveParams(m *Model) int {
	params := m.Summary.Params
	if m.Summary.Family == glm.NegativeBinomial {
		params++
	}
	return params
}

// PseudoR2Result carries the pseudo R-squared variants of a fitted model.
type PseudoR2Result struct {
	McFadden   float64 `json:"mcfadden"`
	CraggUhler float64 `json:"cragg_uhler"`
}

// PseudoR2 computes McFadden's and Cragg & Uhler's pseudo R-squared from the
// fitted log-likelihood and the null deviance.
func PseudoR2(m *Model) (PseudoR2Result, error) {
	if m == nil {
		return PseudoR2Result{}, ErrNilModel
	}

	llh := m.Summary.LogLikelihood
	llhNull := m.Summary.NullDeviance / -2.0

	r2ML := 1.0 - llhNull/llh
	r2CU := r2ML / (1.0 - llhNull/float64(m.Summary.Observations))
	return PseudoR2Result{
		McFadden:   r2ML,
		CraggUhler: r2CU,
	}, nil
}
