package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/be"
)

const (
	dayLayout    = "2006-01-02"
	dayLayoutAlt = "02/01/2006"
)

// LoadOptions controls how the source is read.
type LoadOptions struct {
	// Strict aborts the load with the first ParseError instead of rejecting
	// the malformed row.
	Strict bool

	// Comma is the field delimiter. 0 sniffs the header line for the
	// pipe, semicolon or comma variants of the publication.
	Comma rune

	// Progress, when set, is called with the running data row number.
	Progress func(row int)
}

// NewDefaultLoadOptions returns the default load options: reject malformed
// rows and sniff the delimiter.
func NewDefaultLoadOptions() *LoadOptions {
	return &LoadOptions{}
}

// belgianCalendar reports public holidays for the holiday covariate.
var belgianCalendar = func() *cal.Calendar {
	c := &cal.Calendar{Name: "Belgium"}
	c.AddHoliday(be.Holidays...)
	return c
}()

// Load reads the accident dataset from a local path, http(s) URL or
// s3://bucket/key URI.
func Load(ctx context.Context, uri string, opt *LoadOptions) (*Dataset, error) {
	r, err := Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("unable to open source %s, %w", uri, err)
	}
	defer r.Close()

	return LoadReader(r, opt)
}

// LoadReader reads the accident dataset from an open delimited text stream.
// The first line must be the header carrying all required columns.
func LoadReader(r io.Reader, opt *LoadOptions) (*Dataset, error) {
	if opt == nil {
		opt = NewDefaultLoadOptions()
	}

	br := bufio.NewReader(r)
	comma := opt.Comma
	if comma == 0 {
		headerLine, err := br.Peek(4096)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("unable to read header, %w", err)
		}
		comma = sniffDelimiter(string(headerLine))
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []AccidentRecord
	var rejected []RejectedRow
	row := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read row %d, %w", row+1, err)
		}
		row++
		if opt.Progress != nil {
			opt.Progress(row)
		}

		rec, perr := parseRecord(row, fields, idx)
		if perr != nil {
			if opt.Strict {
				return nil, perr
			}
			rejected = append(rejected, RejectedRow{
				Row:    perr.Row,
				Column: perr.Column,
				Reason: perr.Reason,
			})
			continue
		}
		records = append(records, rec)
	}

	d, err := New(records, rejected)
	if err != nil {
		return nil, fmt.Errorf("source has no loadable rows, %w", err)
	}
	return d, nil
}

// sniffDelimiter picks the delimiter the header line uses most. The
// publication has shipped with pipe, semicolon and comma separators.
func sniffDelimiter(headerLine string) rune {
	if i := strings.IndexByte(headerLine, '\n'); i >= 0 {
		headerLine = headerLine[:i]
	}
	best := ','
	bestCnt := strings.Count(headerLine, ",")
	if cnt := strings.Count(headerLine, "|"); cnt > bestCnt {
		best, bestCnt = '|', cnt
	}
	if cnt := strings.Count(headerLine, ";"); cnt > bestCnt {
		best = ';'
	}
	return best
}

func parseRecord(row int, fields []string, idx map[string]int) (AccidentRecord, *ParseError) {
	var rec AccidentRecord

	field := func(col string) (string, bool) {
		i, exists := idx[col]
		if !exists || i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}

	dayStr, _ := field(ColDay)
	day, err := parseDay(dayStr)
	if err != nil {
		return rec, &ParseError{Row: row, Column: ColDay, Value: dayStr, Reason: "expected a date"}
	}

	hourStr, _ := field(ColHour)
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 24 {
		return rec, &ParseError{Row: row, Column: ColHour, Value: hourStr, Reason: "expected an hour in 1..24"}
	}

	weekdayStr, _ := field(ColWeekday)
	weekday, err := ParseWeekday(weekdayStr)
	if err != nil {
		return rec, &ParseError{Row: row, Column: ColWeekday, Value: weekdayStr, Reason: err.Error()}
	}

	roadStr, _ := field(ColRoadType)
	roadType, err := ParseRoadType(roadStr)
	if err != nil {
		return rec, &ParseError{Row: row, Column: ColRoadType, Value: roadStr, Reason: err.Error()}
	}

	lightStr, _ := field(ColLighting)
	lighting, err := ParseLighting(lightStr)
	if err != nil {
		return rec, &ParseError{Row: row, Column: ColLighting, Value: lightStr, Reason: err.Error()}
	}

	collStr, _ := field(ColCollision)
	collision := ParseCollisionType(collStr)

	builtUpStr, _ := field(ColBuiltUp)
	builtUp, err := parseBuiltUp(builtUpStr)
	if err != nil {
		return rec, &ParseError{Row: row, Column: ColBuiltUp, Value: builtUpStr, Reason: "expected a built-up area code"}
	}

	counts := make(map[string]int, 5)
	for _, col := range []string{ColCasualties, ColDead, ColDead30, ColSeriousInj, ColSlightInj} {
		valStr, _ := field(col)
		val, err := strconv.Atoi(valStr)
		if err != nil || val < 0 {
			return rec, &ParseError{Row: row, Column: col, Value: valStr, Reason: "expected a non-negative count"}
		}
		counts[col] = val
	}

	weather := WeatherOther
	if weatherStr, exists := field(ColWeather); exists && weatherStr != "" {
		weather = ParseWeather(weatherStr)
	}
	var impairment Impairment
	if impairmentStr, exists := field(ColImpairment); exists {
		impairment = ParseImpairment(impairmentStr)
	}
	municipality, _ := field(ColMunicipality)

	ts := timestampFor(day, hour)
	actual, _, _ := belgianCalendar.IsHoliday(ts)

	rec = AccidentRecord{
		ID:               fmt.Sprintf("row_%d", row),
		Timestamp:        ts,
		Hour:             hour,
		Weekday:          weekday,
		Municipality:     municipality,
		RoadType:         roadType,
		Weather:          weather,
		CollisionType:    collision,
		Lighting:         lighting,
		BuiltUpArea:      builtUp,
		Impairment:       impairment,
		Holiday:          actual,
		Casualties:       counts[ColCasualties],
		Dead:             counts[ColDead],
		Dead30Days:       counts[ColDead30],
		SeriouslyInjured: counts[ColSeriousInj],
		SlightlyInjured:  counts[ColSlightInj],
	}
	return rec, nil
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(dayLayoutAlt, s)
}

// timestampFor derives the record timestamp from the published day and hour
// slot. The publication counts hours 1..24 where slot h covers h-1:00 to
// h:00, so slot 24 maps onto 23:00 of the same day.
func timestampFor(day time.Time, hour int) time.Time {
	return day.Add(time.Duration(hour-1) * time.Hour)
}

// parseBuiltUp reads the CD_BUILD_UP_AREA code where 1 means inside a
// built-up area.
func parseBuiltUp(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return false, err
	}
	return code == 1, nil
}
