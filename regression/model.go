package regression

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/jverbeke/go-crashstats/glm"
	"github.com/jverbeke/go-crashstats/stats"
)

// Coefficient is one estimated model coefficient with its significance.
type Coefficient struct {
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	ZValue   float64 `json:"z_value"`
	PValue   float64 `json:"p_value"`
}

// Significant reports whether the coefficient differs from zero at the given
// level.
func (c Coefficient) Significant(level float64) bool {
	return c.PValue < level
}

// Model is a fitted regression model: the resolved family, the coefficient
// estimates keyed by term label and the fit diagnostics. It serializes to
// JSON and prints as an aligned table.
type Model struct {
	Name         string                 `json:"name"`
	Spec         Spec                   `json:"spec"`
	Intercept    Coefficient            `json:"intercept"`
	Coefficients map[string]Coefficient `json:"coefficients"`
	Summary      glm.Summary            `json:"summary"`

	// Dispersion carries the Pearson overdispersion test of the initial
	// Poisson fit when the family was selected automatically.
	Dispersion *stats.Dispersion `json:"dispersion,omitempty"`

	observed []float64
	fitted   []float64
}

// Observed returns the outcome values the model was fit on.
func (m *Model) Observed() []float64 {
	if m == nil {
		return nil
	}
	obs := make([]float64, len(m.observed))
	copy(obs, m.observed)
	return obs
}

// Fitted returns the fitted means of the training observations.
func (m *Model) Fitted() []float64 {
	if m == nil {
		return nil
	}
	fitted := make([]float64, len(m.fitted))
	copy(fitted, m.fitted)
	return fitted
}

// Labels returns the coefficient labels in sorted order, matching the design
// matrix column order.
func (m *Model) Labels() []string {
	if m == nil {
		return nil
	}
	labels := make([]string, 0, len(m.Coefficients))
	for label := range m.Coefficients {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Eq renders the linear predictor equation of the fitted model.
func (m *Model) Eq() string {
	if m == nil {
		return ""
	}
	eq := fmt.Sprintf("%s(%s) ~ %.3f", linkName(m.Summary.Family), m.Spec.Outcome, m.Intercept.Estimate)
	for _, label := range m.Labels() {
		c := m.Coefficients[label]
		if c.Estimate == 0 {
			continue
		}
		eq += fmt.Sprintf("%+.3f*%s", c.Estimate, label)
	}
	return eq
}

func linkName(f glm.Family) string {
	if f == glm.Binomial {
		return "logit"
	}
	return "log"
}

// TablePrint writes the model coefficients and diagnostics as an aligned
// table.
func (m *Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sModel: %s (%s)\n", prefix, m.Name, m.Summary.Family); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sObservations: %d    Iterations: %d\n",
		prefix, indent, m.Summary.Observations, m.Summary.Iterations); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sDeviance: %.3f    Null Deviance: %.3f    AIC: %.3f\n",
		prefix, indent, m.Summary.Deviance, m.Summary.NullDeviance, m.Summary.AIC); err != nil {
		return err
	}
	if m.Dispersion != nil {
		if _, err := fmt.Fprintf(w, "%s%sDispersion: %.3f (p=%.4f)\n",
			prefix, indent, m.Dispersion.Statistic, m.Dispersion.PValue); err != nil {
			return err
		}
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sTerm\tEstimate\tStdErr\tz\tp\t\n", prefix, indent); err != nil {
		return err
	}
	printCoef := func(label string, c Coefficient) error {
		p := fmt.Sprintf("%.4f", c.PValue)
		if c.PValue < 1e-4 {
			p = "<0.0001"
		}
		_, err := fmt.Fprintf(tbl, "%s%s%s\t%.4f\t%.4f\t%.2f\t%s\t\n",
			prefix, indent, label, c.Estimate, c.StdErr, c.ZValue, p)
		return err
	}
	if err := printCoef("intercept", m.Intercept); err != nil {
		return err
	}
	for _, label := range m.Labels() {
		if err := printCoef(label, m.Coefficients[label]); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// newCoefficient builds a coefficient with its two-sided normal test.
func newCoefficient(estimate, stderr float64) Coefficient {
	z := 0.0
	p := 1.0
	if stderr > 0 {
		z = estimate / stderr
		p = 2.0 * normalSurvival(math.Abs(z))
	}
	return Coefficient{
		Estimate: estimate,
		StdErr:   stderr,
		ZValue:   z,
		PValue:   p,
	}
}

// normalSurvival is the upper tail of the standard normal distribution.
func normalSurvival(z float64) float64 {
	return 0.5 * math.Erfc(z/math.Sqrt2)
}
