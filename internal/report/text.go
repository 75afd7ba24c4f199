package report

import (
	"bufio"
	"fmt"
	"io"

	"urap-polar/internal/domain"
)

// WriteSummary prints the session header followed by one block per sensor.
func WriteSummary(w io.Writer, s *domain.Session) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Recording: %s\n", s.Name())
	fmt.Fprintf(bw, "ID: %s\n", s.ID())
	fmt.Fprintf(bw, "Duration: %.1f s\n", s.DurationSeconds())
	fmt.Fprintf(bw, "Sensors: %d\n", s.SensorCount())
	fmt.Fprintf(bw, "Total data points: %d\n", s.TotalDataPoints())
	fmt.Fprintf(bw, "Average HR (session): %.1f BPM\n", s.AverageHeartRate())
	fmt.Fprintf(bw, "Average SDNN: %.2f ms\n", s.AverageSDNN())
	fmt.Fprintf(bw, "Average RMSSD: %.2f ms\n", s.AverageRMSSD())
	fmt.Fprintln(bw)

	for _, sr := range s.Sensors() {
		fmt.Fprintf(bw, "Sensor: %s (id: %s)\n", sr.SensorName(), sr.SensorID())
		fmt.Fprintf(bw, "  Duration: %.1f s\n", sr.DurationSeconds())
		fmt.Fprintf(bw, "  Data points: %d (HR: %d, RR: %d)\n",
			sr.DataPointCount(), len(sr.HeartRatePoints()), len(sr.RRPoints()))
		fmt.Fprintf(bw, "  Heart rate: min=%d max=%d avg=%d BPM\n",
			sr.HeartRateMin(), sr.HeartRateMax(), sr.HeartRateAvg())
		fmt.Fprintf(bw, "  RR intervals: min=%d max=%d avg=%.1f ms\n", sr.RRMin(), sr.RRMax(), sr.RRAvg())
		fmt.Fprintf(bw, "  SDNN: %.2f ms  RMSSD: %.2f ms\n", sr.SDNN(), sr.RMSSD())
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// WriteRecordingList one line per recording summary, as `list` prints it.
func WriteRecordingList(w io.Writer, list []domain.RecordingSummary) error {
	bw := bufio.NewWriter(w)
	if len(list) == 0 {
		fmt.Fprintln(bw, "No recordings found. Start a recording in the app first.")
		return bw.Flush()
	}
	for _, r := range list {
		start := ""
		if r.StartDate != nil {
			start = domain.FormatISO(*r.StartDate)
		}
		fmt.Fprintf(bw, "%s  %-24s  %s  %.1f s  %d sensor(s)  avg HR %.1f\n",
			r.ID, r.Name, start, r.DurationSeconds, r.SensorCount, r.AverageHeartRate)
	}
	return bw.Flush()
}
