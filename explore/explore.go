// Package explore computes the descriptive aggregations of the accident
// analysis: accident and casualty totals by weekday, hour, road type and
// lighting, the weekday against weekend split, and severity shares.
package explore

import (
	"errors"
	"sort"
	"strconv"

	"github.com/jverbeke/go-crashstats/dataset"
)

var ErrNoDataset = errors.New("no dataset")

// Bucket is one ordered label of an aggregation with its total and its share
// of the overall total.
type Bucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// ByWeekday totals casualties per weekday in Monday through Sunday order.
func ByWeekday(d *dataset.Dataset) ([]Bucket, error) {
	if d == nil || d.Len() == 0 {
		return nil, ErrNoDataset
	}

	totals := make(map[dataset.Weekday]float64, 7)
	for _, r := range d.Records() {
		totals[r.Weekday] += float64(r.Casualties)
	}

	buckets := make([]Bucket, 0, 7)
	for w := dataset.Monday; w <= dataset.Sunday; w++ {
		buckets = append(buckets, Bucket{Label: w.String(), Value: totals[w]})
	}
	return withShares(buckets), nil
}

// ByHour totals casualties per published hour slot 1 through 24.
func ByHour(d *dataset.Dataset) ([]Bucket, error) {
	if d == nil || d.Len() == 0 {
		return nil, ErrNoDataset
	}

	totals := make(map[int]float64, 24)
	for _, r := range d.Records() {
		totals[r.Hour] += float64(r.Casualties)
	}

	buckets := make([]Bucket, 0, 24)
	for h := 1; h <= 24; h++ {
		buckets = append(buckets, Bucket{Label: strconv.Itoa(h), Value: totals[h]})
	}
	return withShares(buckets), nil
}

// ByRoadType totals casualties per road type, in descending total order.
func ByRoadType(d *dataset.Dataset) ([]Bucket, error) {
	if d == nil || d.Len() == 0 {
		return nil, ErrNoDataset
	}

	totals := make(map[dataset.RoadType]float64, 3)
	for _, r := range d.Records() {
		totals[r.RoadType] += float64(r.Casualties)
	}

	buckets := make([]Bucket, 0, 3)
	for _, rt := range dataset.RoadTypes() {
		buckets = append(buckets, Bucket{Label: rt.String(), Value: totals[rt]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})
	return withShares(buckets), nil
}

// ByLighting totals casualties per lighting condition in declaration order.
func ByLighting(d *dataset.Dataset) ([]Bucket, error) {
	if d == nil || d.Len() == 0 {
		return nil, ErrNoDataset
	}

	totals := make(map[dataset.Lighting]float64, 4)
	for _, r := range d.Records() {
		totals[r.Lighting] += float64(r.Casualties)
	}

	buckets := make([]Bucket, 0, 4)
	for _, l := range dataset.Lightings() {
		buckets = append(buckets, Bucket{Label: l.String(), Value: totals[l]})
	}
	return withShares(buckets), nil
}

// Split compares the average casualties per weekday day against per weekend
// day, weekend being Saturday and Sunday.
type Split struct {
	WeekdayAvg float64 `json:"weekday_avg"`
	WeekendAvg float64 `json:"weekend_avg"`
}

// WeekendSplit averages the per-day casualty totals across the five weekday
// days and the two weekend days.
func WeekendSplit(d *dataset.Dataset) (Split, error) {
	if d == nil || d.Len() == 0 {
		return Split{}, ErrNoDataset
	}

	byDay, err := ByWeekday(d)
	if err != nil {
		return Split{}, err
	}

	var weekday, weekend float64
	for i, b := range byDay {
		if dataset.Weekday(i).Weekend() {
			weekend += b.Value
			continue
		}
		weekday += b.Value
	}
	return Split{
		WeekdayAvg: weekday / 5.0,
		WeekendAvg: weekend / 2.0,
	}, nil
}

// Severity share display names, following the published column meanings.
const (
	ShareFatal      = "Fatal accidents"
	ShareFatal30    = "Accidents with fatal injuries (30 days)"
	ShareSeriousInj = "Accidents with serious injuries"
	ShareSlightInj  = "Accidents with minor injury"
)

// severityOrder fixes the stacked display order.
var severityOrder = []string{ShareFatal, ShareFatal30, ShareSeriousInj, ShareSlightInj}

// SeverityBreakdown carries the severity shares of one lighting condition or
// of the whole dataset.
type SeverityBreakdown struct {
	Label  string   `json:"label"`
	Shares []Bucket `json:"shares"`
}

// SeverityShares computes the share of fatal, fatal-within-30-days,
// seriously injured and slightly injured accidents, overall and per lighting
// condition.
func SeverityShares(d *dataset.Dataset) ([]SeverityBreakdown, error) {
	if d == nil || d.Len() == 0 {
		return nil, ErrNoDataset
	}

	recs := d.Records()
	breakdowns := make([]SeverityBreakdown, 0, 5)
	breakdowns = append(breakdowns, severityBreakdown("overall", recs))
	for _, l := range dataset.Lightings() {
		var sub []dataset.AccidentRecord
		for _, r := range recs {
			if r.Lighting == l {
				sub = append(sub, r)
			}
		}
		if len(sub) == 0 {
			continue
		}
		breakdowns = append(breakdowns, severityBreakdown(l.String(), sub))
	}
	return breakdowns, nil
}

func severityBreakdown(label string, recs []dataset.AccidentRecord) SeverityBreakdown {
	totals := map[string]float64{}
	for _, r := range recs {
		totals[ShareFatal] += float64(r.Dead)
		totals[ShareFatal30] += float64(r.Dead30Days)
		totals[ShareSeriousInj] += float64(r.SeriouslyInjured)
		totals[ShareSlightInj] += float64(r.SlightlyInjured)
	}

	buckets := make([]Bucket, 0, len(severityOrder))
	for _, name := range severityOrder {
		buckets = append(buckets, Bucket{Label: name, Value: totals[name]})
	}
	return SeverityBreakdown{Label: label, Shares: withShares(buckets)}
}

// Describe returns the dataset shape summary.
func Describe(d *dataset.Dataset) (dataset.Info, error) {
	if d == nil || d.Len() == 0 {
		return dataset.Info{}, ErrNoDataset
	}
	return d.Info(), nil
}

// withShares fills each bucket's share of the total. Shares sum to 1 when
// the total is positive.
func withShares(buckets []Bucket) []Bucket {
	var total float64
	for _, b := range buckets {
		total += b.Value
	}
	if total == 0 {
		return buckets
	}
	for i := range buckets {
		buckets[i].Share = buckets[i].Value / total
	}
	return buckets
}
