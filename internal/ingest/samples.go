package ingest

import (
	"strings"
	"time"

	"urap-polar/internal/domain"
)

// Timestamp, Unix Time, Monotonic Time, <value>
const sampleMinFields = 4

// parseHeartRateCSV reads sensor_<n>_<id>_hr.csv (value column is BPM).
func parseHeartRateCSV(file, content string, diag *diagnostics) []domain.PointDocument {
	return parseSampleCSV(file, content, "heart rate", diag)
}

// parseRRIntervalCSV reads sensor_<n>_<id>_rr.csv (value column is ms).
func parseRRIntervalCSV(file, content string, diag *diagnostics) []domain.PointDocument {
	return parseSampleCSV(file, content, "RR interval", diag)
}

// parseSampleCSV the HR and RR files share one layout. A row is kept only
// when both time columns are numbers and the value is an integer; a bad
// timestamp alone keeps the row with a zero time.
func parseSampleCSV(file, content, valueName string, diag *diagnostics) []domain.PointDocument {
	lines := splitLines(strings.TrimSpace(stripBOM(content)))
	if len(lines) < 2 {
		return nil
	}

	points := make([]domain.PointDocument, 0, len(lines)-1)
	for i, line := range lines[1:] {
		lineNo := i + 2
		parts := strings.Split(line, ",")
		if len(parts) < sampleMinFields {
			diag.add(file, lineNo, "row has %d fields, need %d", len(parts), sampleMinFields)
			continue
		}
		if _, ok := parseFloat(parts[1]); !ok {
			diag.add(file, lineNo, "unix time %q is not a number, row dropped", strings.TrimSpace(parts[1]))
			continue
		}
		mono, ok := parseFloat(parts[2])
		if !ok {
			diag.add(file, lineNo, "monotonic time %q is not a number, row dropped", strings.TrimSpace(parts[2]))
			continue
		}
		value, ok := parseInt(parts[3])
		if !ok {
			diag.add(file, lineNo, "%s %q is not an integer, row dropped", valueName, strings.TrimSpace(parts[3]))
			continue
		}

		var ts time.Time
		if raw := strings.TrimSpace(parts[0]); raw != "" {
			parsed, ok := domain.ParseISO(raw)
			if ok {
				ts = parsed
			} else {
				diag.add(file, lineNo, "timestamp %q is not ISO-8601, kept without time", raw)
			}
		}

		points = append(points, domain.PointDocument{
			Timestamp:          ts,
			Value:              value,
			MonotonicTimestamp: mono,
		})
	}
	return points
}
