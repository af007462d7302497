// Package crashstats analyzes the Belgian open road accident dataset. An
// Analyzer loads a TF_ACCIDENTS_2023 extract, computes the descriptive
// exploration tables and fits the configured regression models, producing a
// report with coefficient significance, goodness of fit and model comparison
// diagnostics.
package crashstats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/jverbeke/go-crashstats/explore"
	"github.com/jverbeke/go-crashstats/regression"
	"github.com/jverbeke/go-crashstats/stats"
	"github.com/lucsky/cuid"
)

var (
	ErrNotRun       = errors.New("analyzer has not been run")
	ErrEmptyDataset = errors.New("no dataset or uninitialized")
	ErrUnknownModel = errors.New("unknown model name")
)

// Exploration bundles the descriptive aggregations of one dataset.
type Exploration struct {
	Info     dataset.Info                `json:"info"`
	Weekday  []explore.Bucket            `json:"weekday"`
	Hour     []explore.Bucket            `json:"hour"`
	RoadType []explore.Bucket            `json:"road_type"`
	Lighting []explore.Bucket            `json:"lighting"`
	Weekend  explore.Split               `json:"weekend"`
	Severity []explore.SeverityBreakdown `json:"severity"`
}

// Analyzer runs the accident analysis pipeline and holds its results.
type Analyzer struct {
	opt *Options

	data        *dataset.Dataset
	exploration *Exploration
	models      []*regression.Model
	runAt       time.Time
}

// New creates a new instance of an Analyzer using the provided options. If no
// options are provided a default is used.
func New(opt *Options) (*Analyzer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options, %w", err)
	}
	return &Analyzer{opt: opt}, nil
}

// Run loads the configured source and analyzes it.
func (a *Analyzer) Run(ctx context.Context) error {
	d, err := dataset.Load(ctx, a.opt.Source, a.opt.Load)
	if err != nil {
		return fmt.Errorf("unable to load %s, %w", a.opt.Source, err)
	}
	if rej := len(d.Rejected()); rej > 0 {
		slog.Warn("rejected malformed rows", "source", a.opt.Source, "rows", rej)
	}
	return a.RunDataset(d)
}

// RunDataset analyzes an already loaded dataset: exploration tables first,
// then one fit per configured spec.
func (a *Analyzer) RunDataset(d *dataset.Dataset) error {
	if d == nil || d.Len() == 0 {
		return ErrEmptyDataset
	}
	a.data = d
	a.runAt = time.Now().UTC()

	exploration, err := NewExploration(d)
	if err != nil {
		return fmt.Errorf("unable to explore dataset, %w", err)
	}
	a.exploration = exploration

	models := make([]*regression.Model, 0, len(a.opt.Specs))
	for _, spec := range a.opt.Specs {
		m, err := regression.Fit(d, spec, a.opt.GLM)
		if err != nil {
			return fmt.Errorf("unable to fit %s, %w", spec.Name, err)
		}
		slog.Info("fitted model",
			"name", m.Name,
			"family", m.Summary.Family.String(),
			"observations", m.Summary.Observations,
			"aic", m.Summary.AIC,
		)
		models = append(models, m)
	}
	a.models = models
	return nil
}

// Dataset returns the analyzed dataset.
func (a *Analyzer) Dataset() *dataset.Dataset {
	return a.data
}

// Exploration returns the descriptive aggregation results.
func (a *Analyzer) Exploration() *Exploration {
	return a.exploration
}

// Models returns the fitted models in spec order.
func (a *Analyzer) Models() []*regression.Model {
	return a.models
}

// Model returns the fitted model with the given name.
func (a *Analyzer) Model(name string) (*regression.Model, error) {
	for _, m := range a.models {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%q, %w", name, ErrUnknownModel)
}

// Report assembles the analysis report: exploration tables, coefficient
// tables and the model comparison block.
func (a *Analyzer) Report() (*Report, error) {
	if a.exploration == nil || len(a.models) == 0 {
		return nil, ErrNotRun
	}

	r := &Report{
		ID:          cuid.New(),
		CreatedAt:   a.runAt,
		Source:      a.opt.Source,
		Rows:        a.data.Len(),
		Rejected:    a.data.Rejected(),
		Exploration: a.exploration,
		Models:      a.models,
	}

	comparison, err := a.compareModels()
	if err != nil {
		return nil, err
	}
	r.Comparison = comparison
	return r, nil
}

// compareModels builds the comparison block: AIC ranking across all models,
// pseudo R-squared per model, a likelihood ratio test for the first nested
// pair sharing an outcome, and variance inflation factors of the widest
// predictor set.
func (a *Analyzer) compareModels() (*Comparison, error) {
	c := &Comparison{
		PseudoR2: make(map[string]regression.PseudoR2Result, len(a.models)),
	}

	if len(a.models) >= 2 {
		entries, err := regression.CompareAIC(a.models...)
		if err != nil {
			return nil, fmt.Errorf("unable to rank models, %w", err)
		}
		c.AIC = entries
	}

	for _, m := range a.models {
		r2, err := regression.PseudoR2(m)
		if err != nil {
			return nil, err
		}
		c.PseudoR2[m.Name] = r2
	}

	if reduced, full := nestedPair(a.models); reduced != nil {
		lrt, err := regression.LikelihoodRatioTest(reduced, full)
		if err == nil {
			c.LRT = &LRTEntry{
				Reduced:   reduced.Name,
				Full:      full.Name,
				LRTResult: lrt,
			}
		}
	}

	widest := a.models[0]
	for _, m := range a.models[1:] {
		if len(m.Spec.Predictors) > len(widest.Spec.Predictors) {
			widest = m
		}
	}
	cols, err := regression.DesignColumns(a.data, widest.Spec.Predictors)
	if err != nil {
		return nil, err
	}
	vif, err := stats.VarianceInflationFactor(cols)
	if err == nil {
		c.VIF = vif
	}
	return c, nil
}

// nestedPair finds the first model pair with the same outcome and same family
// where one predictor set contains the other.
func nestedPair(models []*regression.Model) (reduced, full *regression.Model) {
	for i := 0; i < len(models); i++ {
		for j := i + 1; j < len(models); j++ {
			m1, m2 := models[i], models[j]
			if m1.Spec.Outcome != m2.Spec.Outcome || m1.Summary.Family != m2.Summary.Family {
				continue
			}
			switch {
			case containsAll(m2.Spec.Predictors, m1.Spec.Predictors):
				return m1, m2
			case containsAll(m1.Spec.Predictors, m2.Spec.Predictors):
				return m2, m1
			}
		}
	}
	return nil, nil
}

func containsAll(haystack, needles []string) bool {
	if len(needles) >= len(haystack) {
		return false
	}
	set := make(map[string]struct{}, len(haystack))
	for _, p := range haystack {
		set[p] = struct{}{}
	}
	for _, p := range needles {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

// NewExploration computes the descriptive aggregations of a dataset.
func NewExploration(d *dataset.Dataset) (*Exploration, error) {
	weekday, err := explore.ByWeekday(d)
	if err != nil {
		return nil, err
	}
	hour, err := explore.ByHour(d)
	if err != nil {
		return nil, err
	}
	roadType, err := explore.ByRoadType(d)
	if err != nil {
		return nil, err
	}
	lighting, err := explore.ByLighting(d)
	if err != nil {
		return nil, err
	}
	weekend, err := explore.WeekendSplit(d)
	if err != nil {
		return nil, err
	}
	severity, err := explore.SeverityShares(d)
	if err != nil {
		return nil, err
	}
	return &Exploration{
		Info:     d.Info(),
		Weekday:  weekday,
		Hour:     hour,
		RoadType: roadType,
		Lighting: lighting,
		Weekend:  weekend,
		Severity: severity,
	}, nil
}
