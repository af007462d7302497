package crashstats

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/jverbeke/go-crashstats/explore"
	"github.com/jverbeke/go-crashstats/regression"
)

// LRTEntry is a likelihood ratio test between two named nested models.
type LRTEntry struct {
	Reduced string `json:"reduced"`
	Full    string `json:"full"`
	regression.LRTResult
}

// Comparison is the model comparison block of a report.
type Comparison struct {
	AIC      []regression.AICEntry                `json:"aic,omitempty"`
	LRT      *LRTEntry                            `json:"lrt,omitempty"`
	PseudoR2 map[string]regression.PseudoR2Result `json:"pseudo_r2"`
	VIF      map[string]float64                   `json:"vif,omitempty"`
}

// Report is the full analysis output: run metadata, loader accounting,
// exploration tables, the fitted models and the comparison block.
type Report struct {
	ID          string                `json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	Source      string                `json:"source,omitempty"`
	Rows        int                   `json:"rows"`
	Rejected    []dataset.RejectedRow `json:"rejected,omitempty"`
	Exploration *Exploration          `json:"exploration"`
	Models      []*regression.Model   `json:"models"`
	Comparison  *Comparison           `json:"comparison"`
}

// JSON writes the report as indented JSON.
func (r *Report) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// TablePrint writes the report as aligned text tables.
func (r *Report) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Run: %s    %s\n", r.ID, r.CreatedAt.Format(time.RFC3339)); err != nil {
		return err
	}
	if r.Source != "" {
		if _, err := fmt.Fprintf(w, "Source: %s\n", r.Source); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Records: %d    Rejected: %d\n\n", r.Rows, len(r.Rejected)); err != nil {
		return err
	}

	if err := r.printExploration(w); err != nil {
		return err
	}

	for _, m := range r.Models {
		if err := m.TablePrint(w, "", "  "); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return r.printComparison(w)
}

func (r *Report) printExploration(w io.Writer) error {
	if r.Exploration == nil {
		return nil
	}
	return r.Exploration.TablePrint(w)
}

// TablePrint writes the exploration tables as aligned text.
func (e *Exploration) TablePrint(w io.Writer) error {
	if err := printBuckets(w, "Casualties by weekday", e.Weekday); err != nil {
		return err
	}
	if err := printBuckets(w, "Casualties by road type", e.RoadType); err != nil {
		return err
	}
	if err := printBuckets(w, "Casualties by lighting", e.Lighting); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Avg casualties per day: weekday %.2f    weekend %.2f\n\n",
		e.Weekend.WeekdayAvg, e.Weekend.WeekendAvg)
	return err
}

func (r *Report) printComparison(w io.Writer) error {
	c := r.Comparison
	if c == nil {
		return nil
	}

	if len(c.AIC) > 0 {
		tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
		if _, err := fmt.Fprintf(tbl, "Model\tFamily\tAIC\tBest\t\n"); err != nil {
			return err
		}
		for _, e := range c.AIC {
			best := ""
			if e.Best {
				best = "*"
			}
			if _, err := fmt.Fprintf(tbl, "%s\t%s\t%.3f\t%s\t\n", e.Name, e.Family, e.AIC, best); err != nil {
				return err
			}
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
	}

	if c.LRT != nil {
		if _, err := fmt.Fprintf(w, "LRT %s vs %s: LR=%.3f df=%d p=%.4f\n",
			c.LRT.Reduced, c.LRT.Full, c.LRT.Statistic, c.LRT.Df, c.LRT.PValue); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(c.PseudoR2))
	for name := range c.PseudoR2 {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r2 := c.PseudoR2[name]
		if _, err := fmt.Fprintf(w, "Pseudo R2 %s: McFadden=%.4f CraggUhler=%.4f\n",
			name, r2.McFadden, r2.CraggUhler); err != nil {
			return err
		}
	}

	if len(c.VIF) > 0 {
		labels := make([]string, 0, len(c.VIF))
		for label := range c.VIF {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
		if _, err := fmt.Fprintf(tbl, "Term\tVIF\t\n"); err != nil {
			return err
		}
		for _, label := range labels {
			if _, err := fmt.Fprintf(tbl, "%s\t%.2f\t\n", label, c.VIF[label]); err != nil {
				return err
			}
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printBuckets(w io.Writer, title string, buckets []explore.Bucket) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, b := range buckets {
		if _, err := fmt.Fprintf(tbl, "%s\t%.0f\t%.1f%%\t\n", b.Label, b.Value, b.Share*100); err != nil {
			return err
		}
	}
	if err := tbl.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
