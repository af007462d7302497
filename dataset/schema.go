package dataset

import (
	"fmt"
	"strings"
)

// Column names of the TF_ACCIDENTS_2023 open data publication.
const (
	ColDay          = "DT_DAY"
	ColHour         = "DT_HOUR"
	ColWeekday      = "TX_DAY_OF_WEEK_DESCR_FR"
	ColRoadType     = "TX_ROAD_TYPE_DESCR_FR"
	ColLighting     = "TX_LIGHT_COND_DESCR_FR"
	ColCollision    = "TX_COLL_TYPE_DESCR_FR"
	ColBuiltUp      = "CD_BUILD_UP_AREA"
	ColCasualties   = "MS_ACCT"
	ColDead         = "MS_ACCT_WITH_DEAD"
	ColDead30       = "MS_ACCT_WITH_DEAD_30_DAYS"
	ColSeriousInj   = "MS_ACCT_WITH_SERLY_INJ"
	ColSlightInj    = "MS_ACCT_WITH_SLY_INJ"
	ColWeather      = "TX_WEATHER_DESCR_FR"
	ColImpairment   = "TX_IMPAIRMENT_DESCR_FR"
	ColMunicipality = "TX_MUNTY_DESCR_FR"
)

// RequiredColumns must all be present in the source header. Loading fails
// with a SchemaError listing every absent one.
var RequiredColumns = []string{
	ColDay,
	ColHour,
	ColWeekday,
	ColRoadType,
	ColLighting,
	ColCollision,
	ColBuiltUp,
	ColCasualties,
	ColDead,
	ColDead30,
	ColSeriousInj,
	ColSlightInj,
}

// OptionalColumns are absent in some vintages of the publication. Missing
// values default to WeatherOther, no impairment and no municipality.
var OptionalColumns = []string{
	ColWeather,
	ColImpairment,
	ColMunicipality,
}

// SchemaError reports required columns absent from the source header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ParseError reports a field that could not be coerced to its expected type,
// identifying the source row, column and offending value. Rows are counted
// from 1 starting at the first data row below the header.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q in column %s at row %d, %s", e.Value, e.Column, e.Row, e.Reason)
}

// RejectedRow records a malformed row dropped during a non-strict load.
type RejectedRow struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// headerIndex maps the canonical column names onto their positions in the
// source header. Header matching is case-insensitive and ignores surrounding
// whitespace.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, exists := idx[col]; !exists {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}
