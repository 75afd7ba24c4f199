package ingest

import (
	"encoding/csv"
	"strings"
	"time"

	"urap-polar/internal/domain"
)

const (
	sessionInfoFile = "session_info.csv"
	sensorsMarker   = "Sensors"

	// Sensor ID, Sensor Name, HR Samples, RR Samples, Avg HR, SDNN, RMSSD
	sensorRowMinFields = 7
	sensorRowTailSize  = 5
)

// sessionMeta key/value block of session_info.csv
type sessionMeta struct {
	id      string
	hasID   bool
	name    string
	hasName bool

	startDate *time.Time
	endDate   *time.Time

	duration         float64
	sensorCount      int
	totalDataPoints  int
	averageHeartRate float64
	averageSDNN      float64
	averageRMSSD     float64
}

// sensorRow one row of the Sensors table, or one discovered sensor. index is
// the number taken from the file name during discovery, 0 for table rows.
type sensorRow struct {
	index      int
	sensorID   string
	sensorName string
	hrSamples  int
	rrSamples  int
	avgHR      float64
	sdnn       float64
	rmssd      float64
}

// parseSessionInfo reads the metadata block and the optional sensor table.
// Nothing in here fails; unusable lines are reported to diag.
func parseSessionInfo(file, content string, diag *diagnostics) (sessionMeta, []sensorRow) {
	var (
		meta      sessionMeta
		rows      []sensorRow
		inSensors bool
	)

	for i, line := range splitLines(stripBOM(content)) {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == sensorsMarker {
			inSensors = true
			continue
		}

		if inSensors {
			if strings.Contains(line, "Sensor ID") && strings.Contains(line, "Sensor Name") {
				continue
			}
			row, ok := parseSensorRow(file, lineNo, line, diag)
			if ok {
				rows = append(rows, row)
			}
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		applySessionField(&meta, key, value, file, lineNo, diag)
	}

	return meta, rows
}

func applySessionField(meta *sessionMeta, key, value, file string, line int, diag *diagnostics) {
	switch key {
	case "Session ID":
		meta.id, meta.hasID = value, true
	case "Recording Name":
		meta.name, meta.hasName = value, true
	case "Start Time":
		meta.startDate = parseSessionTime(key, value, file, line, diag)
	case "End Time":
		meta.endDate = parseSessionTime(key, value, file, line, diag)
	case "Duration (seconds)":
		meta.duration = floatOrZero(key, value, file, line, diag)
	case "Number of Sensors":
		meta.sensorCount = intOrZero(key, value, file, line, diag)
	case "Total Data Points":
		meta.totalDataPoints = intOrZero(key, value, file, line, diag)
	case "Average Heart Rate (BPM)":
		meta.averageHeartRate = floatOrZero(key, value, file, line, diag)
	case "Average SDNN (ms)":
		meta.averageSDNN = floatOrZero(key, value, file, line, diag)
	case "Average RMSSD (ms)":
		meta.averageRMSSD = floatOrZero(key, value, file, line, diag)
	}
}

// parseSensorRow tokenizes a Sensors table row. The last five fields are
// positional so a sensor name containing commas still lands in one piece.
func parseSensorRow(file string, line int, text string, diag *diagnostics) (sensorRow, bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		diag.add(file, line, "sensor row not tokenizable: %v", err)
		return sensorRow{}, false
	}
	if len(fields) == 0 || fields[0] == "" {
		return sensorRow{}, false
	}
	if len(fields) < sensorRowMinFields {
		diag.add(file, line, "sensor row has %d fields, need %d", len(fields), sensorRowMinFields)
		return sensorRow{}, false
	}

	n := len(fields)
	tail := fields[n-sensorRowTailSize:]
	name := strings.TrimSpace(fields[1])
	if n > sensorRowMinFields {
		name = strings.TrimSpace(strings.Join(fields[1:n-sensorRowTailSize], ","))
	}

	row := sensorRow{
		sensorID:   strings.TrimSpace(fields[0]),
		sensorName: name,
		hrSamples:  intOrZero("HR Samples", tail[0], file, line, diag),
		rrSamples:  intOrZero("RR Samples", tail[1], file, line, diag),
		avgHR:      floatOrZero("Avg HR", tail[2], file, line, diag),
		sdnn:       floatOrZero("SDNN", tail[3], file, line, diag),
		rmssd:      floatOrZero("RMSSD", tail[4], file, line, diag),
	}
	return row, true
}

func parseSessionTime(key, value, file string, line int, diag *diagnostics) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, ok := domain.ParseISO(value)
	if !ok {
		diag.add(file, line, "%s %q is not an ISO-8601 timestamp", key, value)
		return nil
	}
	return &t
}

func intOrZero(key, value, file string, line int, diag *diagnostics) int {
	v, ok := parseInt(value)
	if !ok {
		diag.add(file, line, "%s %q is not an integer, using 0", key, value)
	}
	return v
}

func floatOrZero(key, value, file string, line int, diag *diagnostics) float64 {
	v, ok := parseFloat(value)
	if !ok {
		diag.add(file, line, "%s %q is not a number, using 0", key, value)
	}
	return v
}
