package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionDocument canonical session shape shared by the JSON API and the zip
// export. Both camelCase and snake_case keys are accepted on decode; aliases
// are resolved once here so accessors never look keys up again.
type SessionDocument struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	StartDate        *time.Time       `json:"startDate"`
	EndDate          *time.Time       `json:"endDate"`
	Duration         float64          `json:"duration"`
	SensorCount      int              `json:"sensorCount"`
	TotalDataPoints  int              `json:"totalDataPoints,omitempty"`
	AverageHeartRate float64          `json:"averageHeartRate"`
	AverageSDNN      float64          `json:"averageSDNN"`
	AverageRMSSD     float64          `json:"averageRMSSD"`
	SensorRecordings []SensorDocument `json:"sensorRecordings"`
}

// SensorDocument one entry of sensorRecordings
type SensorDocument struct {
	SensorID       string           `json:"sensorId"`
	SensorName     string           `json:"sensorName"`
	HeartRateData  []PointDocument  `json:"heartRateData"`
	RRIntervalData []PointDocument  `json:"rrIntervalData"`
	Statistics     SensorStatistics `json:"statistics"`
}

// PointDocument one heartRateData / rrIntervalData sample
type PointDocument struct {
	Timestamp          time.Time
	Value              int
	MonotonicTimestamp float64
}

// DecodeSession parses a session JSON body (GET /recordings/{id}).
func DecodeSession(data []byte) (SessionDocument, error) {
	var doc SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return SessionDocument{}, fmt.Errorf("failed to decode session document: %w", err)
	}
	return doc, nil
}

func (d *SessionDocument) UnmarshalJSON(data []byte) error {
	var w struct {
		ID                    *string          `json:"id"`
		Name                  *string          `json:"name"`
		StartDate             *string          `json:"startDate"`
		StartDateSnake        *string          `json:"start_date"`
		EndDate               *string          `json:"endDate"`
		EndDateSnake          *string          `json:"end_date"`
		Duration              *flexNumber      `json:"duration"`
		DurationSnake         *flexNumber      `json:"duration_seconds"`
		SensorCount           *flexNumber      `json:"sensorCount"`
		SensorCountSnake      *flexNumber      `json:"sensor_count"`
		TotalDataPoints       *flexNumber      `json:"totalDataPoints"`
		TotalDataPointsSnake  *flexNumber      `json:"total_data_points"`
		AverageHeartRate      *flexNumber      `json:"averageHeartRate"`
		AverageHeartRateSnake *flexNumber      `json:"average_heart_rate"`
		AverageSDNN           *flexNumber      `json:"averageSDNN"`
		AverageSDNNSnake      *flexNumber      `json:"average_sdnn"`
		AverageRMSSD          *flexNumber      `json:"averageRMSSD"`
		AverageRMSSDSnake     *flexNumber      `json:"average_rmssd"`
		SensorRecordings      []SensorDocument `json:"sensorRecordings"`
		SensorRecordingsSnake []SensorDocument `json:"sensor_recordings"`
	}
	if err := unmarshalObject(data, &w); err != nil {
		return err
	}
	sensors := w.SensorRecordings
	if sensors == nil {
		sensors = w.SensorRecordingsSnake
	}
	*d = SessionDocument{
		ID:               pickString(w.ID),
		Name:             pickString(w.Name),
		StartDate:        pickTime(w.StartDate, w.StartDateSnake),
		EndDate:          pickTime(w.EndDate, w.EndDateSnake),
		Duration:         pickNumber(w.Duration, w.DurationSnake).Float(),
		SensorCount:      pickNumber(w.SensorCount, w.SensorCountSnake).Int(),
		TotalDataPoints:  pickNumber(w.TotalDataPoints, w.TotalDataPointsSnake).Int(),
		AverageHeartRate: pickNumber(w.AverageHeartRate, w.AverageHeartRateSnake).Float(),
		AverageSDNN:      pickNumber(w.AverageSDNN, w.AverageSDNNSnake).Float(),
		AverageRMSSD:     pickNumber(w.AverageRMSSD, w.AverageRMSSDSnake).Float(),
		SensorRecordings: sensors,
	}
	return nil
}

func (d *SensorDocument) UnmarshalJSON(data []byte) error {
	var w struct {
		SensorID            *string           `json:"sensorId"`
		SensorIDSnake       *string           `json:"sensor_id"`
		SensorName          *string           `json:"sensorName"`
		SensorNameSnake     *string           `json:"sensor_name"`
		HeartRateData       []PointDocument   `json:"heartRateData"`
		HeartRateDataSnake  []PointDocument   `json:"heart_rate_data"`
		RRIntervalData      []PointDocument   `json:"rrIntervalData"`
		RRIntervalDataSnake []PointDocument   `json:"rr_interval_data"`
		Statistics          *SensorStatistics `json:"statistics"`
	}
	if err := unmarshalObject(data, &w); err != nil {
		return err
	}
	hr := w.HeartRateData
	if hr == nil {
		hr = w.HeartRateDataSnake
	}
	rr := w.RRIntervalData
	if rr == nil {
		rr = w.RRIntervalDataSnake
	}
	*d = SensorDocument{
		SensorID:       pickString(w.SensorID, w.SensorIDSnake),
		SensorName:     pickString(w.SensorName, w.SensorNameSnake),
		HeartRateData:  hr,
		RRIntervalData: rr,
	}
	if w.Statistics != nil {
		d.Statistics = *w.Statistics
	}
	return nil
}

func (p *PointDocument) UnmarshalJSON(data []byte) error {
	var w struct {
		Timestamp      *string     `json:"timestamp"`
		Value          *flexNumber `json:"value"`
		Monotonic      *flexNumber `json:"monotonicTimestamp"`
		MonotonicSnake *flexNumber `json:"monotonic_timestamp"`
	}
	if err := unmarshalObject(data, &w); err != nil {
		return err
	}
	ts, _ := ParseISO(pickString(w.Timestamp))
	*p = PointDocument{
		Timestamp:          ts,
		Value:              pickNumber(w.Value).Int(),
		MonotonicTimestamp: pickNumber(w.Monotonic, w.MonotonicSnake).Float(),
	}
	return nil
}

func (p PointDocument) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp          string  `json:"timestamp"`
		Value              int     `json:"value"`
		MonotonicTimestamp float64 `json:"monotonicTimestamp"`
	}{FormatISO(p.Timestamp), p.Value, p.MonotonicTimestamp})
}

// flexNumber lenient JSON number: accepts numbers and numeric strings,
// anything else decodes as 0.
type flexNumber struct {
	v float64
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	if f, err := strconv.ParseFloat(string(b), 64); err == nil {
		n.v = f
	}
	return nil
}

func (n flexNumber) Float() float64 { return n.v }

// Int truncates toward zero.
func (n flexNumber) Int() int { return int(n.v) }

func pickNumber(ns ...*flexNumber) flexNumber {
	for _, n := range ns {
		if n != nil {
			return *n
		}
	}
	return flexNumber{}
}

func pickString(ss ...*string) string {
	for _, s := range ss {
		if s != nil {
			return *s
		}
	}
	return ""
}

// pickTime takes the first alias that parses.
func pickTime(ss ...*string) *time.Time {
	for _, s := range ss {
		if s == nil {
			continue
		}
		if t, ok := ParseISO(*s); ok {
			return &t
		}
	}
	return nil
}

// unmarshalObject decodes into w, treating a JSON null as an empty object.
func unmarshalObject(data []byte, w any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, w)
}
