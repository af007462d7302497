package dataset

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

type parquetRecord struct {
	ID               string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp        int64  `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Hour             int32  `parquet:"name=hour, type=INT32"`
	Weekday          string `parquet:"name=weekday, type=BYTE_ARRAY, convertedtype=UTF8"`
	Municipality     string `parquet:"name=municipality, type=BYTE_ARRAY, convertedtype=UTF8"`
	RoadType         string `parquet:"name=road_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Weather          string `parquet:"name=weather, type=BYTE_ARRAY, convertedtype=UTF8"`
	CollisionType    string `parquet:"name=collision_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Lighting         string `parquet:"name=lighting, type=BYTE_ARRAY, convertedtype=UTF8"`
	Severity         string `parquet:"name=severity, type=BYTE_ARRAY, convertedtype=UTF8"`
	BuiltUpArea      bool   `parquet:"name=built_up_area, type=BOOLEAN"`
	Holiday          bool   `parquet:"name=holiday, type=BOOLEAN"`
	Alcohol          bool   `parquet:"name=alcohol, type=BOOLEAN"`
	Drugs            bool   `parquet:"name=drugs, type=BOOLEAN"`
	Fatigue          bool   `parquet:"name=fatigue, type=BOOLEAN"`
	Casualties       int32  `parquet:"name=casualties, type=INT32"`
	Dead             int32  `parquet:"name=dead, type=INT32"`
	Dead30Days       int32  `parquet:"name=dead_30_days, type=INT32"`
	SeriouslyInjured int32  `parquet:"name=seriously_injured, type=INT32"`
	SlightlyInjured  int32  `parquet:"name=slightly_injured, type=INT32"`
}

// WriteParquet writes the clean dataset as a parquet file at the given path.
// This is an output encoding of the in-memory dataset, not a store.
func (d *Dataset) WriteParquet(path string) error {
	if d == nil || len(d.records) == 0 {
		return ErrNoRecords
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("unable to create parquet file %s, %w", path, err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), 4)
	if err != nil {
		return fmt.Errorf("unable to create parquet writer, %w", err)
	}

	for _, r := range d.records {
		row := parquetRecord{
			ID:               r.ID,
			Timestamp:        r.Timestamp.UnixMilli(),
			Hour:             int32(r.Hour),
			Weekday:          r.Weekday.String(),
			Municipality:     r.Municipality,
			RoadType:         r.RoadType.String(),
			Weather:          r.Weather.String(),
			CollisionType:    r.CollisionType.String(),
			Lighting:         r.Lighting.String(),
			Severity:         r.Severity().String(),
			BuiltUpArea:      r.BuiltUpArea,
			Holiday:          r.Holiday,
			Alcohol:          r.Impairment.Alcohol,
			Drugs:            r.Impairment.Drugs,
			Fatigue:          r.Impairment.Fatigue,
			Casualties:       int32(r.Casualties),
			Dead:             int32(r.Dead),
			Dead30Days:       int32(r.Dead30Days),
			SeriouslyInjured: int32(r.SeriouslyInjured),
			SlightlyInjured:  int32(r.SlightlyInjured),
		}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("unable to write record %s, %w", r.ID, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("unable to finalize parquet file, %w", err)
	}
	return nil
}
