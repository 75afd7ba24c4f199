package domain

import (
	"encoding/json"
	"time"
)

// Session full recording session with all sensor data. Both acquisition
// paths (API JSON, CSV zip) build it through NewSession; it is read-only
// afterwards.
type Session struct {
	id        string
	name      string
	startDate *time.Time
	endDate   *time.Time
	sensors   []*SensorRecording
	reported  Reported
}

// Reported values the source claimed about the session. They are kept for
// display and never substituted for the derived aggregates.
type Reported struct {
	Duration         float64
	SensorCount      int
	TotalDataPoints  int
	AverageHeartRate float64
	AverageSDNN      float64
	AverageRMSSD     float64
}

func NewSession(doc SessionDocument) *Session {
	s := &Session{
		id:        doc.ID,
		name:      doc.Name,
		startDate: copyTime(doc.StartDate),
		endDate:   copyTime(doc.EndDate),
		sensors:   make([]*SensorRecording, 0, len(doc.SensorRecordings)),
		reported: Reported{
			Duration:         doc.Duration,
			SensorCount:      doc.SensorCount,
			TotalDataPoints:  doc.TotalDataPoints,
			AverageHeartRate: doc.AverageHeartRate,
			AverageSDNN:      doc.AverageSDNN,
			AverageRMSSD:     doc.AverageRMSSD,
		},
	}
	for _, sd := range doc.SensorRecordings {
		s.sensors = append(s.sensors, NewSensorRecording(sd))
	}
	return s
}

func (s *Session) ID() string   { return s.id }
func (s *Session) Name() string { return s.name }

func (s *Session) StartDate() (time.Time, bool) {
	if s.startDate == nil {
		return time.Time{}, false
	}
	return *s.startDate, true
}

func (s *Session) EndDate() (time.Time, bool) {
	if s.endDate == nil {
		return time.Time{}, false
	}
	return *s.endDate, true
}

func (s *Session) Reported() Reported { return s.reported }

// DurationSeconds end - start, or 0 unless both are known. Independent of
// the per-sensor durations.
func (s *Session) DurationSeconds() float64 {
	if s.startDate == nil || s.endDate == nil {
		return 0
	}
	return s.endDate.Sub(*s.startDate).Seconds()
}

func (s *Session) SensorCount() int { return len(s.sensors) }

func (s *Session) TotalDataPoints() int {
	n := 0
	for _, sr := range s.sensors {
		n += sr.DataPointCount()
	}
	return n
}

// AverageHeartRate mean of per-sensor average HR over all sensors; sensors
// reporting 0 still count.
func (s *Session) AverageHeartRate() float64 {
	if len(s.sensors) == 0 {
		return 0
	}
	sum := 0
	for _, sr := range s.sensors {
		sum += sr.HeartRateAvg()
	}
	return float64(sum) / float64(len(s.sensors))
}

// AverageSDNN mean over sensors with SDNN > 0.
func (s *Session) AverageSDNN() float64 {
	return positiveMean(s.sensors, (*SensorRecording).SDNN)
}

// AverageRMSSD mean over sensors with RMSSD > 0.
func (s *Session) AverageRMSSD() float64 {
	return positiveMean(s.sensors, (*SensorRecording).RMSSD)
}

func positiveMean(sensors []*SensorRecording, metric func(*SensorRecording) float64) float64 {
	sum, n := 0.0, 0
	for _, sr := range sensors {
		if v := metric(sr); v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Sensors returns the sensors in recording order.
func (s *Session) Sensors() []*SensorRecording {
	return append([]*SensorRecording(nil), s.sensors...)
}

// Sensor finds a sensor by ID; IDs are unique within a session only.
func (s *Session) Sensor(sensorID string) (*SensorRecording, bool) {
	for _, sr := range s.sensors {
		if sr.sensorID == sensorID {
			return sr, true
		}
	}
	return nil, false
}

// Document converts the session to its canonical wire shape, with the
// aggregate fields filled from the derived values.
func (s *Session) Document() SessionDocument {
	doc := SessionDocument{
		ID:               s.id,
		Name:             s.name,
		StartDate:        copyTime(s.startDate),
		EndDate:          copyTime(s.endDate),
		Duration:         s.DurationSeconds(),
		SensorCount:      s.SensorCount(),
		TotalDataPoints:  s.TotalDataPoints(),
		AverageHeartRate: s.AverageHeartRate(),
		AverageSDNN:      s.AverageSDNN(),
		AverageRMSSD:     s.AverageRMSSD(),
		SensorRecordings: make([]SensorDocument, 0, len(s.sensors)),
	}
	for _, sr := range s.sensors {
		doc.SensorRecordings = append(doc.SensorRecordings, sr.Document())
	}
	return doc
}

func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
