package crashstats

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jverbeke/go-crashstats/explore"
	"github.com/jverbeke/go-crashstats/regression"
)

// PlotHTML renders the exploration charts and the observed against fitted
// series of the first model as a single HTML page.
func (a *Analyzer) PlotHTML(w io.Writer) error {
	if a.exploration == nil || len(a.models) == 0 {
		return ErrNotRun
	}

	page := components.NewPage()
	page.AddCharts(
		bucketBar("Casualties by weekday", a.exploration.Weekday),
		bucketBar("Casualties by hour", a.exploration.Hour),
		bucketBar("Casualties by road type", a.exploration.RoadType),
		lightingPie(a.exploration.Lighting),
		severityBar(a.exploration.Severity),
		fittedLine(a.models[0]),
	)
	return page.Render(io.MultiWriter(w))
}

// PlotFile renders the charts of PlotHTML to the given path.
func (a *Analyzer) PlotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create plot file, %w", err)
	}
	defer f.Close()
	return a.PlotHTML(f)
}

func bucketBar(title string, buckets []explore.Bucket) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	labels := make([]string, 0, len(buckets))
	data := make([]opts.BarData, 0, len(buckets))
	for _, b := range buckets {
		labels = append(labels, b.Label)
		data = append(data, opts.BarData{Value: b.Value})
	}
	bar.SetXAxis(labels).AddSeries("casualties", data)
	return bar
}

func lightingPie(buckets []explore.Bucket) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Casualties by lighting",
			},
		),
	)

	data := make([]opts.PieData, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, opts.PieData{Name: b.Label, Value: b.Value})
	}
	pie.AddSeries("lighting", data)
	return pie
}

func severityBar(breakdowns []explore.SeverityBreakdown) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Severity shares by lighting",
			},
		),
	)

	labels := make([]string, 0, len(breakdowns))
	for _, b := range breakdowns {
		labels = append(labels, b.Label)
	}
	bar.SetXAxis(labels)

	if len(breakdowns) == 0 {
		return bar
	}
	for i, share := range breakdowns[0].Shares {
		data := make([]opts.BarData, 0, len(breakdowns))
		for _, b := range breakdowns {
			data = append(data, opts.BarData{Value: b.Shares[i].Share})
		}
		bar.AddSeries(share.Label, data)
	}
	bar.SetSeriesOptions(
		charts.WithBarChartOpts(
			opts.BarChart{
				Stack: "severity",
			},
		),
	)
	return bar
}

func fittedLine(m *regression.Model) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Observed vs Fitted",
				Subtitle: m.Name,
			},
		),
	)

	observed := m.Observed()
	fitted := m.Fitted()

	labels := make([]string, 0, len(observed))
	obsData := make([]opts.LineData, 0, len(observed))
	fitData := make([]opts.LineData, 0, len(fitted))
	for i := range observed {
		labels = append(labels, strconv.Itoa(i))
		obsData = append(obsData, opts.LineData{Value: observed[i]})
		fitData = append(fitData, opts.LineData{Value: fitted[i]})
	}
	line.SetXAxis(labels).
		AddSeries("observed", obsData).
		AddSeries("fitted", fitData)
	return line
}
