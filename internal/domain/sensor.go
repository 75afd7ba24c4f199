package domain

import "time"

// SensorRecording data from one sensor in a recording session. Built once by
// NewSensorRecording and read-only afterwards.
type SensorRecording struct {
	sensorID   string
	sensorName string
	heartRate  []HeartRatePoint
	rr         []RRIntervalPoint
	stats      SensorStatistics
}

func NewSensorRecording(doc SensorDocument) *SensorRecording {
	s := &SensorRecording{
		sensorID:   doc.SensorID,
		sensorName: doc.SensorName,
		heartRate:  make([]HeartRatePoint, 0, len(doc.HeartRateData)),
		rr:         make([]RRIntervalPoint, 0, len(doc.RRIntervalData)),
		stats:      doc.Statistics,
	}
	for _, p := range doc.HeartRateData {
		s.heartRate = append(s.heartRate, heartRatePointFromDoc(p))
	}
	for _, p := range doc.RRIntervalData {
		s.rr = append(s.rr, rrPointFromDoc(p))
	}
	return s
}

func (s *SensorRecording) SensorID() string   { return s.sensorID }
func (s *SensorRecording) SensorName() string { return s.sensorName }

// Statistics returns the statistics block as ingested.
func (s *SensorRecording) Statistics() SensorStatistics { return s.stats }

func (s *SensorRecording) HeartRateMin() int   { return s.stats.MinHeartRate }
func (s *SensorRecording) HeartRateMax() int   { return s.stats.MaxHeartRate }
func (s *SensorRecording) HeartRateAvg() int   { return s.stats.AverageHeartRate }
func (s *SensorRecording) SDNN() float64       { return s.stats.SDNN }
func (s *SensorRecording) RMSSD() float64      { return s.stats.RMSSD }
func (s *SensorRecording) HRVWindow() string   { return s.stats.HRVWindow }
func (s *SensorRecording) HRVSampleCount() int { return s.stats.HRVSampleCount }

// HeartRatePoints returns a copy of the heart rate samples.
func (s *SensorRecording) HeartRatePoints() []HeartRatePoint {
	return append([]HeartRatePoint(nil), s.heartRate...)
}

// RRPoints returns a copy of the RR interval samples.
func (s *SensorRecording) RRPoints() []RRIntervalPoint {
	return append([]RRIntervalPoint(nil), s.rr...)
}

func (s *SensorRecording) HeartRatePoint(i int) (HeartRatePoint, bool) {
	if i < 0 || i >= len(s.heartRate) {
		return HeartRatePoint{}, false
	}
	return s.heartRate[i], true
}

func (s *SensorRecording) RRPoint(i int) (RRIntervalPoint, bool) {
	if i < 0 || i >= len(s.rr) {
		return RRIntervalPoint{}, false
	}
	return s.rr[i], true
}

// DataPointCount HR samples + RR samples
func (s *SensorRecording) DataPointCount() int {
	return len(s.heartRate) + len(s.rr)
}

// DurationSeconds is the span between the earliest and latest sample across
// both sequences. Samples whose timestamp did not parse are ignored.
func (s *SensorRecording) DurationSeconds() float64 {
	var first, last time.Time
	observe := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
	}
	for _, p := range s.heartRate {
		observe(p.Timestamp)
	}
	for _, p := range s.rr {
		observe(p.Timestamp)
	}
	if first.IsZero() {
		return 0
	}
	return last.Sub(first).Seconds()
}

func (s *SensorRecording) RRMin() int {
	if len(s.rr) == 0 {
		return 0
	}
	m := s.rr[0].Value
	for _, p := range s.rr[1:] {
		if p.Value < m {
			m = p.Value
		}
	}
	return m
}

func (s *SensorRecording) RRMax() int {
	if len(s.rr) == 0 {
		return 0
	}
	m := s.rr[0].Value
	for _, p := range s.rr[1:] {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

func (s *SensorRecording) RRAvg() float64 {
	if len(s.rr) == 0 {
		return 0
	}
	sum := 0
	for _, p := range s.rr {
		sum += p.Value
	}
	return float64(sum) / float64(len(s.rr))
}

// Document converts the record back to its wire shape.
func (s *SensorRecording) Document() SensorDocument {
	doc := SensorDocument{
		SensorID:       s.sensorID,
		SensorName:     s.sensorName,
		HeartRateData:  make([]PointDocument, 0, len(s.heartRate)),
		RRIntervalData: make([]PointDocument, 0, len(s.rr)),
		Statistics:     s.stats,
	}
	for _, p := range s.heartRate {
		doc.HeartRateData = append(doc.HeartRateData, PointDocument{p.Timestamp, p.Value, p.MonotonicTimestamp})
	}
	for _, p := range s.rr {
		doc.RRIntervalData = append(doc.RRIntervalData, PointDocument{p.Timestamp, p.Value, p.MonotonicTimestamp})
	}
	return doc
}
