package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"math"

	"urap-polar/internal/domain"
)

// ReferenceFolder folder name used by the reference export.
const ReferenceFolder = "recording_testid123_csv"

// referenceFiles one session, one sensor, in the layout the mobile app writes.
var referenceFiles = []struct {
	name string
	body string
}{
	{"session_info.csv", `Recording Information

Session ID,testid123
Recording Name,Test Recording
Start Time,2024-05-15T19:30:00.000Z
End Time,2024-05-15T19:35:00.000Z
Duration (seconds),300.0
Number of Sensors,1
Total Data Points,120
Average Heart Rate (BPM),72.5
Average SDNN (ms),45.20
Average RMSSD (ms),38.70

Sensors
Sensor ID,Sensor Name,HR Samples,RR Samples,Avg HR,SDNN,RMSSD
ABC123,Polar H10 ABC123,60,60,72,45.20,38.70
`},
	{"sensor_1_ABC123_hr.csv", `Timestamp,Unix Time,Monotonic Time,Heart Rate (BPM)
2024-05-15T19:30:00.100Z,1715796600.1,100.1,70
2024-05-15T19:30:01.100Z,1715796601.1,101.1,72
`},
	{"sensor_1_ABC123_rr.csv", `Timestamp,Unix Time,Monotonic Time,RR Interval (ms)
2024-05-15T19:30:00.150Z,1715796600.15,100.15,820
2024-05-15T19:30:01.150Z,1715796601.15,101.15,815
`},
	{"sensor_1_ABC123_statistics.csv", `Metric,Value
Sensor ID,ABC123
Sensor Name,Polar H10 ABC123
Duration (seconds),300.0
Heart Rate Samples,60
RR Interval Samples,60
Min Heart Rate (BPM),65
Max Heart Rate (BPM),85
Average Heart Rate (BPM),72
SDNN (ms),45.20
RMSSD (ms),38.70
HRV Window,5 Minutes
HRV Sample Count,60
`},
}

// ReferenceArchive builds the reference export in memory.
func ReferenceArchive() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range referenceFiles {
		w, err := zw.Create(ReferenceFolder + "/" + f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish reference archive: %w", err)
	}
	return buf.Bytes(), nil
}

// CheckReference compares a session loaded from ReferenceArchive with the
// values the export was written with. It returns every mismatch.
func CheckReference(s *domain.Session) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(s.ID() == "testid123", "session id: got %q", s.ID())
	check(s.Name() == "Test Recording", "session name: got %q", s.Name())
	check(s.SensorCount() == 1, "sensor count: got %d", s.SensorCount())
	check(s.DurationSeconds() == 300, "duration: got %v", s.DurationSeconds())
	check(s.AverageHeartRate() > 0, "average heart rate: got %v", s.AverageHeartRate())

	sensors := s.Sensors()
	if len(sensors) != 1 {
		return errors.Join(errs...)
	}
	sr := sensors[0]
	check(sr.SensorID() == "ABC123", "sensor id: got %q", sr.SensorID())
	check(sr.SensorName() == "Polar H10 ABC123", "sensor name: got %q", sr.SensorName())
	check(len(sr.HeartRatePoints()) == 2, "heart rate points: got %d", len(sr.HeartRatePoints()))
	check(len(sr.RRPoints()) == 2, "rr points: got %d", len(sr.RRPoints()))
	check(sr.HeartRateAvg() == 72, "sensor avg HR: got %d", sr.HeartRateAvg())
	check(math.Abs(sr.SDNN()-45.2) < 0.01, "sdnn: got %v", sr.SDNN())
	check(math.Abs(sr.RMSSD()-38.7) < 0.01, "rmssd: got %v", sr.RMSSD())
	if p, ok := sr.HeartRatePoint(0); ok {
		check(p.Value == 70, "first HR value: got %d", p.Value)
	}
	if p, ok := sr.RRPoint(0); ok {
		check(p.Value == 820, "first RR value: got %d", p.Value)
	}
	return errors.Join(errs...)
}
