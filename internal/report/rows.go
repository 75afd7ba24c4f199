package report

import (
	"strconv"

	"urap-polar/internal/domain"
)

// CSVHeader column order of the per-sensor report
var CSVHeader = []string{
	"sensor_id",
	"sensor_name",
	"duration_seconds",
	"data_points",
	"hr_min",
	"hr_max",
	"hr_avg",
	"rr_min",
	"rr_max",
	"rr_avg",
	"sdnn",
	"rmssd",
}

// sensorRow one sensor formatted the way every report shows it
type sensorRow struct {
	sensor *domain.SensorRecording
}

func sensorRows(s *domain.Session) []sensorRow {
	sensors := s.Sensors()
	rows := make([]sensorRow, 0, len(sensors))
	for _, sr := range sensors {
		rows = append(rows, sensorRow{sensor: sr})
	}
	return rows
}

func (r sensorRow) strings() []string {
	sr := r.sensor
	return []string{
		sr.SensorID(),
		sr.SensorName(),
		fixed(sr.DurationSeconds(), 1),
		strconv.Itoa(sr.DataPointCount()),
		strconv.Itoa(sr.HeartRateMin()),
		strconv.Itoa(sr.HeartRateMax()),
		strconv.Itoa(sr.HeartRateAvg()),
		strconv.Itoa(sr.RRMin()),
		strconv.Itoa(sr.RRMax()),
		fixed(sr.RRAvg(), 1),
		fixed(sr.SDNN(), 2),
		fixed(sr.RMSSD(), 2),
	}
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
