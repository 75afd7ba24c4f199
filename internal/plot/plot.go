package plot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"urap-polar/internal/domain"
)

// ErrNoData no sensor matched, or the session has no sensors
var ErrNoData = errors.New("no sensor data to plot")

// ErrUnknownKind Render was asked for something other than all, hr or rr
var ErrUnknownKind = errors.New("kind must be all, hr or rr")

const (
	heartRateColor = "coral"
	rrColor        = "steelblue"
)

// Options chart rendering options. Zero values use the go-echarts defaults.
type Options struct {
	SensorID   string // restrict to one sensor
	Width      string
	Height     string
	AssetsHost string // serve echarts.js from somewhere other than the CDN
}

type series struct {
	title  string
	yName  string
	color  string
	points []opts.LineData
}

// Render dispatches on kind: "" or "all", "hr", "rr".
func Render(w io.Writer, s *domain.Session, kind string, opt Options) error {
	switch kind {
	case "", "all":
		return RenderSession(w, s, opt)
	case "hr":
		return RenderHeartRate(w, s, opt)
	case "rr":
		return RenderRRIntervals(w, s, opt)
	default:
		return fmt.Errorf("%w, got %q", ErrUnknownKind, kind)
	}
}

// RenderSession writes an HTML page with one HR and one RR chart per sensor.
func RenderSession(w io.Writer, s *domain.Session, opt Options) error {
	sensors, err := selectSensors(s, opt.SensorID)
	if err != nil {
		return err
	}
	page := newPage("Recording: "+displayName(s), opt)
	for _, sr := range sensors {
		label := sensorLabel(sr)
		page.AddCharts(
			lineChart(s, heartRateSeries(sr, "Heart rate: "+label), opt),
			lineChart(s, rrSeries(sr, "RR intervals: "+label), opt),
		)
	}
	return render(page, w)
}

// RenderHeartRate HR chart per sensor.
func RenderHeartRate(w io.Writer, s *domain.Session, opt Options) error {
	sensors, err := selectSensors(s, opt.SensorID)
	if err != nil {
		return err
	}
	page := newPage("Heart rate: "+displayName(s), opt)
	for _, sr := range sensors {
		page.AddCharts(lineChart(s, heartRateSeries(sr, sensorLabel(sr)), opt))
	}
	return render(page, w)
}

// RenderRRIntervals RR chart per sensor.
func RenderRRIntervals(w io.Writer, s *domain.Session, opt Options) error {
	sensors, err := selectSensors(s, opt.SensorID)
	if err != nil {
		return err
	}
	page := newPage("RR intervals: "+displayName(s), opt)
	for _, sr := range sensors {
		page.AddCharts(lineChart(s, rrSeries(sr, sensorLabel(sr)), opt))
	}
	return render(page, w)
}

func selectSensors(s *domain.Session, sensorID string) ([]*domain.SensorRecording, error) {
	if sensorID != "" {
		sr, ok := s.Sensor(sensorID)
		if !ok {
			return nil, fmt.Errorf("sensor %s: %w", sensorID, ErrNoData)
		}
		return []*domain.SensorRecording{sr}, nil
	}
	sensors := s.Sensors()
	if len(sensors) == 0 {
		return nil, ErrNoData
	}
	return sensors, nil
}

func newPage(title string, opt Options) *components.Page {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetLayout(components.PageFlexLayout)
	if opt.AssetsHost != "" {
		page.SetAssetsHost(opt.AssetsHost)
	}
	return page
}

func lineChart(s *domain.Session, data series, opt Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:      "macarons",
			Width:      opt.Width,
			Height:     opt.Height,
			AssetsHost: opt.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    data.title,
			Subtitle: displayName(s),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "time",
			AxisLabel: &opts.AxisLabel{Rotate: 15},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         data.yName,
			NameLocation: "middle",
			NameGap:      50,
			Scale:        opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	)
	line.AddSeries(data.title, data.points,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: data.color, Width: 0.8}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: data.color}),
	)
	return line
}

func heartRateSeries(sr *domain.SensorRecording, title string) series {
	points := sr.HeartRatePoints()
	items := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		if p.Timestamp.IsZero() {
			continue
		}
		items = append(items, opts.LineData{Value: []any{p.Timestamp.UnixMilli(), p.Value}})
	}
	return series{title: title, yName: "Heart rate (BPM)", color: heartRateColor, points: items}
}

func rrSeries(sr *domain.SensorRecording, title string) series {
	points := sr.RRPoints()
	items := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		if p.Timestamp.IsZero() {
			continue
		}
		items = append(items, opts.LineData{Value: []any{p.Timestamp.UnixMilli(), p.Value}})
	}
	return series{title: title, yName: "RR interval (ms)", color: rrColor, points: items}
}

func render(page *components.Page, w io.Writer) error {
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}
	return nil
}

func displayName(s *domain.Session) string {
	if s.Name() != "" {
		return s.Name()
	}
	return "Unknown"
}

func sensorLabel(sr *domain.SensorRecording) string {
	if sr.SensorName() != "" {
		return sr.SensorName()
	}
	return sr.SensorID()
}
