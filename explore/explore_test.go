package explore

import (
	"testing"
	"time"

	"github.com/jverbeke/go-crashstats/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)
	records := []dataset.AccidentRecord{
		{
			ID: "row_1", Timestamp: day.Add(7 * time.Hour), Hour: 8,
			Weekday: dataset.Monday, RoadType: dataset.Urban, Lighting: dataset.Daylight,
			Casualties: 3, SlightlyInjured: 2, SeriouslyInjured: 1,
		},
		{
			ID: "row_2", Timestamp: day.Add(32 * time.Hour), Hour: 8,
			Weekday: dataset.Tuesday, RoadType: dataset.Highway, Lighting: dataset.Daylight,
			Casualties: 5, SlightlyInjured: 4,
		},
		{
			ID: "row_3", Timestamp: day.Add(5*24*time.Hour + 22*time.Hour), Hour: 23,
			Weekday: dataset.Saturday, RoadType: dataset.Highway, Lighting: dataset.NightUnlit,
			Casualties: 4, Dead: 1, SeriouslyInjured: 1,
		},
		{
			ID: "row_4", Timestamp: day.Add(6*24*time.Hour + 2*time.Hour), Hour: 3,
			Weekday: dataset.Sunday, RoadType: dataset.Urban, Lighting: dataset.NightLit,
			Casualties: 2, Dead30Days: 1,
		},
	}
	d, err := dataset.New(records, nil)
	require.Nil(t, err)
	return d
}

func TestByWeekday(t *testing.T) {
	d := testDataset(t)

	buckets, err := ByWeekday(d)
	require.Nil(t, err)
	require.Len(t, buckets, 7)

	// canonical Monday..Sunday ordering
	assert.Equal(t, "monday", buckets[0].Label)
	assert.Equal(t, "sunday", buckets[6].Label)

	assert.Equal(t, 3.0, buckets[0].Value)
	assert.Equal(t, 5.0, buckets[1].Value)
	assert.Equal(t, 0.0, buckets[2].Value)
	assert.Equal(t, 4.0, buckets[5].Value)
	assert.Equal(t, 2.0, buckets[6].Value)

	assertSharesSumToOne(t, buckets)
}

func TestByHour(t *testing.T) {
	d := testDataset(t)

	buckets, err := ByHour(d)
	require.Nil(t, err)
	require.Len(t, buckets, 24)

	assert.Equal(t, "1", buckets[0].Label)
	assert.Equal(t, "24", buckets[23].Label)

	assert.Equal(t, 8.0, buckets[7].Value, "hour 8")
	assert.Equal(t, 4.0, buckets[22].Value, "hour 23")
	assert.Equal(t, 2.0, buckets[2].Value, "hour 3")

	assertSharesSumToOne(t, buckets)
}

func TestByRoadType(t *testing.T) {
	d := testDataset(t)

	buckets, err := ByRoadType(d)
	require.Nil(t, err)
	require.Len(t, buckets, 3)

	// descending totals: highway 9, urban 5, regional 0
	assert.Equal(t, "highway", buckets[0].Label)
	assert.Equal(t, 9.0, buckets[0].Value)
	assert.Equal(t, "urban", buckets[1].Label)
	assert.Equal(t, 5.0, buckets[1].Value)
	assert.Equal(t, "regional", buckets[2].Label)

	assertSharesSumToOne(t, buckets)
}

func TestByLighting(t *testing.T) {
	d := testDataset(t)

	buckets, err := ByLighting(d)
	require.Nil(t, err)
	require.Len(t, buckets, 4)

	assert.Equal(t, "daylight", buckets[0].Label)
	assert.Equal(t, 8.0, buckets[0].Value)
	assert.Equal(t, 4.0, buckets[3].Value, "night_unlit")

	assertSharesSumToOne(t, buckets)
}

func TestWeekendSplit(t *testing.T) {
	d := testDataset(t)

	split, err := WeekendSplit(d)
	require.Nil(t, err)

	// weekday total 8 across 5 days, weekend total 6 across 2 days
	assert.InDelta(t, 8.0/5.0, split.WeekdayAvg, 1e-9)
	assert.InDelta(t, 6.0/2.0, split.WeekendAvg, 1e-9)
}

func TestSeverityShares(t *testing.T) {
	d := testDataset(t)

	breakdowns, err := SeverityShares(d)
	require.Nil(t, err)

	require.NotEmpty(t, breakdowns)
	overall := breakdowns[0]
	assert.Equal(t, "overall", overall.Label)
	require.Len(t, overall.Shares, 4)

	assert.Equal(t, ShareFatal, overall.Shares[0].Label)
	assert.Equal(t, 1.0, overall.Shares[0].Value)
	assert.Equal(t, ShareSlightInj, overall.Shares[3].Label)
	assert.Equal(t, 6.0, overall.Shares[3].Value)
	assertSharesSumToOne(t, overall.Shares)

	labels := make([]string, 0, len(breakdowns))
	for _, b := range breakdowns {
		labels = append(labels, b.Label)
	}
	assert.Contains(t, labels, "daylight")
	assert.Contains(t, labels, "night_unlit")
	assert.NotContains(t, labels, "dusk", "no dusk records")
}

func TestDescribe(t *testing.T) {
	d := testDataset(t)

	info, err := Describe(d)
	require.Nil(t, err)
	assert.Equal(t, 4, info.Rows)
	assert.NotEmpty(t, info.Columns)

	_, err = Describe(nil)
	assert.ErrorAs(t, err, &ErrNoDataset)
}

func assertSharesSumToOne(t *testing.T, buckets []Bucket) {
	t.Helper()
	var total float64
	for _, b := range buckets {
		assert.GreaterOrEqual(t, b.Share, 0.0)
		total += b.Share
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}
