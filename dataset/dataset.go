// Package dataset loads the TF_ACCIDENTS_2023 accident publication into an
// immutable in-memory dataset. The loader validates the source schema,
// rejects malformed rows and exposes numeric column views for model fitting.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	ErrNoRecords      = errors.New("no records in dataset")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrNotCategorical = errors.New("column is not categorical")
	ErrUnknownLevel   = errors.New("unknown level for column")
)

// Dataset is an ordered sequence of accident records, loaded once and not
// mutated after load.
type Dataset struct {
	records  []AccidentRecord
	rejected []RejectedRow
}

// New wraps a slice of records into a Dataset. The slice is copied so later
// mutation of the input cannot reach the dataset.
func New(records []AccidentRecord, rejected []RejectedRow) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	recs := make([]AccidentRecord, len(records))
	copy(recs, records)
	rej := make([]RejectedRow, len(rejected))
	copy(rej, rejected)
	return &Dataset{records: recs, rejected: rej}, nil
}

// Len returns the number of loaded records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of the loaded records.
func (d *Dataset) Records() []AccidentRecord {
	if d == nil {
		return nil
	}
	recs := make([]AccidentRecord, len(d.records))
	copy(recs, d.records)
	return recs
}

// Rejected returns the rows dropped during load with their row number,
// offending column and reason.
func (d *Dataset) Rejected() []RejectedRow {
	if d == nil {
		return nil
	}
	rej := make([]RejectedRow, len(d.rejected))
	copy(rej, d.rejected)
	return rej
}

// Numeric column names exposed by Column.
const (
	Casualties       = "casualties"
	Dead             = "dead"
	Dead30Days       = "dead_30_days"
	SeriouslyInjured = "seriously_injured"
	SlightlyInjured  = "slightly_injured"
	Hour             = "hour"
	BuiltUp          = "built_up_area"
	Holiday          = "holiday"
	Weekend          = "weekend"
	Fatal            = "fatal"
	AnyImpairment    = "impairment"
	Alcohol          = "alcohol"
)

// Categorical column names exposed by Levels and Indicator.
const (
	RoadTypeCol  = "road_type"
	LightingCol  = "lighting"
	WeatherCol   = "weather"
	CollisionCol = "collision_type"
	WeekdayCol   = "weekday"
)

// Column returns a numeric view of a variable, one value per record. Counts
// coerce to their float value and flags to 0/1.
func (d *Dataset) Column(name string) ([]float64, error) {
	if d == nil {
		return nil, ErrNoRecords
	}

	col := make([]float64, len(d.records))
	for i, r := range d.records {
		switch name {
		case Casualties:
			col[i] = float64(r.Casualties)
		case Dead:
			col[i] = float64(r.Dead)
		case Dead30Days:
			col[i] = float64(r.Dead30Days)
		case SeriouslyInjured:
			col[i] = float64(r.SeriouslyInjured)
		case SlightlyInjured:
			col[i] = float64(r.SlightlyInjured)
		case Hour:
			col[i] = float64(r.Hour)
		case BuiltUp:
			col[i] = boolToFloat(r.BuiltUpArea)
		case Holiday:
			col[i] = boolToFloat(r.Holiday)
		case Weekend:
			col[i] = boolToFloat(r.Weekday.Weekend())
		case Fatal:
			col[i] = boolToFloat(r.Severity().Fatal())
		case AnyImpairment:
			col[i] = boolToFloat(r.Impairment.Any())
		case Alcohol:
			col[i] = boolToFloat(r.Impairment.Alcohol)
		default:
			return nil, fmt.Errorf("no numeric column %q, %w", name, ErrUnknownColumn)
		}
	}
	return col, nil
}

// Levels returns the levels of a categorical column in declaration order.
// The first level is the dummy coding reference.
func (d *Dataset) Levels(name string) ([]string, error) {
	switch name {
	case RoadTypeCol:
		return levelLabels(RoadTypes()), nil
	case LightingCol:
		return levelLabels(Lightings()), nil
	case WeatherCol:
		return levelLabels(Weathers()), nil
	case CollisionCol:
		return levelLabels(CollisionTypes()), nil
	case WeekdayCol:
		labels := make([]string, 0, 7)
		for w := Monday; w <= Sunday; w++ {
			labels = append(labels, w.String())
		}
		return labels, nil
	}
	return nil, fmt.Errorf("no categorical column %q, %w", name, ErrNotCategorical)
}

// Indicator returns the 0/1 indicator column for one level of a categorical
// column.
func (d *Dataset) Indicator(name, level string) ([]float64, error) {
	if d == nil {
		return nil, ErrNoRecords
	}
	levels, err := d.Levels(name)
	if err != nil {
		return nil, err
	}
	known := false
	for _, l := range levels {
		if l == level {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("no level %q in column %s, %w", level, name, ErrUnknownLevel)
	}

	col := make([]float64, len(d.records))
	for i, r := range d.records {
		var val string
		switch name {
		case RoadTypeCol:
			val = r.RoadType.String()
		case LightingCol:
			val = r.Lighting.String()
		case WeatherCol:
			val = r.Weather.String()
		case CollisionCol:
			val = r.CollisionType.String()
		case WeekdayCol:
			val = r.Weekday.String()
		}
		col[i] = boolToFloat(val == level)
	}
	return col, nil
}

// ColumnInfo describes one exposed column of the dataset.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Info summarizes the shape of the dataset: row count and the exposed
// columns with their kinds.
type Info struct {
	Rows     int          `json:"rows"`
	Rejected int          `json:"rejected"`
	Columns  []ColumnInfo `json:"columns"`
}

// Info returns the dataset shape summary.
func (d *Dataset) Info() Info {
	return Info{
		Rows:     d.Len(),
		Rejected: len(d.rejected),
		Columns: []ColumnInfo{
			{Name: Casualties, Kind: "count"},
			{Name: Dead, Kind: "count"},
			{Name: Dead30Days, Kind: "count"},
			{Name: SeriouslyInjured, Kind: "count"},
			{Name: SlightlyInjured, Kind: "count"},
			{Name: Hour, Kind: "count"},
			{Name: BuiltUp, Kind: "flag"},
			{Name: Holiday, Kind: "flag"},
			{Name: Weekend, Kind: "flag"},
			{Name: Fatal, Kind: "flag"},
			{Name: AnyImpairment, Kind: "flag"},
			{Name: Alcohol, Kind: "flag"},
			{Name: RoadTypeCol, Kind: "categorical"},
			{Name: LightingCol, Kind: "categorical"},
			{Name: WeatherCol, Kind: "categorical"},
			{Name: CollisionCol, Kind: "categorical"},
			{Name: WeekdayCol, Kind: "categorical"},
		},
	}
}

// WriteCSV writes the dataset back out in the canonical source schema so a
// written file can be loaded again.
func (d *Dataset) WriteCSV(w io.Writer) error {
	if d == nil || len(d.records) == 0 {
		return ErrNoRecords
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(RequiredColumns)+len(OptionalColumns))
	header = append(header, RequiredColumns...)
	header = append(header, OptionalColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("unable to write header, %w", err)
	}

	for _, r := range d.records {
		builtUp := "2"
		if r.BuiltUpArea {
			builtUp = "1"
		}
		var impairment string
		if r.Impairment.Alcohol {
			impairment = "Alcool"
		} else if r.Impairment.Drugs {
			impairment = "Drogue"
		} else if r.Impairment.Fatigue {
			impairment = "Fatigue"
		}
		row := []string{
			r.Timestamp.Format("2006-01-02"),
			strconv.Itoa(r.Hour),
			r.Weekday.French(),
			r.RoadType.French(),
			r.Lighting.French(),
			r.CollisionType.French(),
			builtUp,
			strconv.Itoa(r.Casualties),
			strconv.Itoa(r.Dead),
			strconv.Itoa(r.Dead30Days),
			strconv.Itoa(r.SeriouslyInjured),
			strconv.Itoa(r.SlightlyInjured),
			r.Weather.French(),
			impairment,
			r.Municipality,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("unable to write record %s, %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func levelLabels[T fmt.Stringer](levels []T) []string {
	labels := make([]string, 0, len(levels))
	for _, l := range levels {
		labels = append(labels, l.String())
	}
	return labels
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
