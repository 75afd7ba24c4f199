package ingest

import (
	"strings"

	"urap-polar/internal/domain"
)

// parseStatisticsCSV reads the Metric,Value rows of
// sensor_<n>_<id>_statistics.csv. Metrics that do not parse stay zero.
func parseStatisticsCSV(file, content string, diag *diagnostics) domain.SensorStatistics {
	var stats domain.SensorStatistics

	lines := splitLines(strings.TrimSpace(stripBOM(content)))
	if len(lines) < 2 {
		return stats
	}

	for i, line := range lines[1:] {
		lineNo := i + 2
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}

		setInt := func(dst *int) {
			if v, ok := parseInt(value); ok {
				*dst = v
				return
			}
			diag.add(file, lineNo, "%s %q is not an integer", key, value)
		}
		setFloat := func(dst *float64) {
			if v, ok := parseFloat(value); ok {
				*dst = v
				return
			}
			diag.add(file, lineNo, "%s %q is not a number", key, value)
		}

		switch key {
		case "Sensor ID":
			stats.SensorID = value
		case "Sensor Name":
			stats.SensorName = value
		case "Duration (seconds)":
			setFloat(&stats.Duration)
		case "Heart Rate Samples":
			setInt(&stats.HeartRateSamples)
		case "RR Interval Samples":
			setInt(&stats.RRIntervalSamples)
		case "Min Heart Rate (BPM)":
			setInt(&stats.MinHeartRate)
		case "Max Heart Rate (BPM)":
			setInt(&stats.MaxHeartRate)
		case "Average Heart Rate (BPM)":
			setInt(&stats.AverageHeartRate)
		case "SDNN (ms)":
			setFloat(&stats.SDNN)
		case "RMSSD (ms)":
			setFloat(&stats.RMSSD)
		case "HRV Window":
			stats.HRVWindow = value
		case "HRV Sample Count":
			setInt(&stats.HRVSampleCount)
		}
	}
	return stats
}

// synthesizeStatistics stands in for a missing statistics file: HR bounds
// come from the samples, the rest from the Sensors table row.
func synthesizeStatistics(hr []domain.PointDocument, row sensorRow) domain.SensorStatistics {
	stats := domain.SensorStatistics{
		AverageHeartRate: int(row.avgHR),
		SDNN:             row.sdnn,
		RMSSD:            row.rmssd,
	}
	for i, p := range hr {
		if i == 0 || p.Value < stats.MinHeartRate {
			stats.MinHeartRate = p.Value
		}
		if i == 0 || p.Value > stats.MaxHeartRate {
			stats.MaxHeartRate = p.Value
		}
	}
	return stats
}
