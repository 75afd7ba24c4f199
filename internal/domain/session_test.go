package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const camelSessionJSON = `{
  "id": "testid123",
  "name": "Test Recording",
  "startDate": "2024-05-15T19:30:00.000Z",
  "endDate": "2024-05-15T19:35:00.000Z",
  "duration": 300,
  "sensorCount": 2,
  "averageHeartRate": 72.5,
  "averageSDNN": 45.2,
  "averageRMSSD": 38.7,
  "sensorRecordings": [
    {
      "sensorId": "ABC123",
      "sensorName": "Polar H10 ABC123",
      "heartRateData": [
        {"timestamp": "2024-05-15T19:30:00.100Z", "value": 70, "monotonicTimestamp": 100.1},
        {"timestamp": "2024-05-15T19:30:01.100Z", "value": 72, "monotonicTimestamp": 101.1}
      ],
      "rrIntervalData": [
        {"timestamp": "2024-05-15T19:30:00.150Z", "value": 820, "monotonicTimestamp": 100.15},
        {"timestamp": "2024-05-15T19:30:01.150Z", "value": 815, "monotonicTimestamp": 101.15}
      ],
      "statistics": {"minHeartRate": 65, "maxHeartRate": 85, "averageHeartRate": 72,
                     "sdnn": 45.2, "rmssd": 38.7, "hrvWindow": "5 Minutes", "hrvSampleCount": 60}
    },
    {
      "sensorId": "DEF456",
      "sensorName": "Chest strap",
      "heartRateData": [],
      "rrIntervalData": [],
      "statistics": {"averageHeartRate": 0, "sdnn": 0, "rmssd": 0}
    }
  ]
}`

const snakeSessionJSON = `{
  "id": "testid123",
  "name": "Test Recording",
  "start_date": "2024-05-15T19:30:00.000Z",
  "end_date": "2024-05-15T19:35:00.000Z",
  "duration_seconds": 300,
  "sensor_count": 2,
  "sensor_recordings": [
    {
      "sensor_id": "ABC123",
      "sensor_name": "Polar H10 ABC123",
      "heart_rate_data": [
        {"timestamp": "2024-05-15T19:30:00.100Z", "value": 70, "monotonic_timestamp": 100.1},
        {"timestamp": "2024-05-15T19:30:01.100Z", "value": 72, "monotonic_timestamp": 101.1}
      ],
      "rr_interval_data": [
        {"timestamp": "2024-05-15T19:30:00.150Z", "value": 820, "monotonic_timestamp": 100.15},
        {"timestamp": "2024-05-15T19:30:01.150Z", "value": 815, "monotonic_timestamp": 101.15}
      ],
      "statistics": {"min_heart_rate": 65, "max_heart_rate": 85, "average_heart_rate": 72,
                     "sdnn": 45.2, "rmssd": 38.7, "hrv_window": "5 Minutes", "hrv_sample_count": 60}
    },
    {
      "sensor_id": "DEF456",
      "sensor_name": "Chest strap",
      "statistics": {}
    }
  ]
}`

func decode(t *testing.T, body string) *Session {
	t.Helper()
	doc, err := DecodeSession([]byte(body))
	require.NoError(t, err)
	return NewSession(doc)
}

func TestDecodeSession_CamelCase(t *testing.T) {
	s := decode(t, camelSessionJSON)

	require.Equal(t, "testid123", s.ID())
	require.Equal(t, "Test Recording", s.Name())
	require.Equal(t, 2, s.SensorCount())
	require.Equal(t, 300.0, s.DurationSeconds())
	require.Equal(t, 4, s.TotalDataPoints())

	// 72 and 0 both count toward the mean
	require.Equal(t, 36.0, s.AverageHeartRate())
	// zero SDNN/RMSSD are excluded, not averaged in
	require.InDelta(t, 45.2, s.AverageSDNN(), 1e-9)
	require.InDelta(t, 38.7, s.AverageRMSSD(), 1e-9)

	sr, ok := s.Sensor("ABC123")
	require.True(t, ok)
	require.Equal(t, "Polar H10 ABC123", sr.SensorName())
	require.Equal(t, 65, sr.HeartRateMin())
	require.Equal(t, 85, sr.HeartRateMax())
	require.Equal(t, 72, sr.HeartRateAvg())
	require.Equal(t, "5 Minutes", sr.HRVWindow())
	require.Equal(t, 60, sr.HRVSampleCount())

	p, ok := sr.HeartRatePoint(0)
	require.True(t, ok)
	require.Equal(t, 70, p.Value)
	require.Equal(t, 100.1, p.MonotonicTimestamp)
	_, ok = sr.HeartRatePoint(2)
	require.False(t, ok)

	require.Equal(t, 815, sr.RRMin())
	require.Equal(t, 820, sr.RRMax())
	require.Equal(t, 817.5, sr.RRAvg())
	require.InDelta(t, 1.05, sr.DurationSeconds(), 1e-9)

	rep := s.Reported()
	require.Equal(t, 72.5, rep.AverageHeartRate)
	require.Equal(t, 2, rep.SensorCount)
}

func TestDecodeSession_SnakeCaseMatchesCamelCase(t *testing.T) {
	camel := decode(t, camelSessionJSON)
	snake := decode(t, snakeSessionJSON)

	require.Equal(t, camel.SensorCount(), snake.SensorCount())
	require.Equal(t, camel.DurationSeconds(), snake.DurationSeconds())
	require.Equal(t, camel.AverageHeartRate(), snake.AverageHeartRate())
	require.Equal(t, camel.AverageSDNN(), snake.AverageSDNN())
	require.Equal(t, camel.AverageRMSSD(), snake.AverageRMSSD())
	require.Equal(t, camel.Sensors()[0].HeartRatePoints(), snake.Sensors()[0].HeartRatePoints())
	require.Equal(t, camel.Sensors()[0].RRPoints(), snake.Sensors()[0].RRPoints())
	require.Equal(t, camel.Sensors()[0].Statistics(), snake.Sensors()[0].Statistics())
	require.Equal(t, 300.0, snake.Reported().Duration)
}

func TestSession_AverageSDNNExcludesZero(t *testing.T) {
	s := NewSession(SessionDocument{SensorRecordings: []SensorDocument{
		{SensorID: "a", Statistics: SensorStatistics{SDNN: 45.2, RMSSD: 0}},
		{SensorID: "b", Statistics: SensorStatistics{SDNN: 0, RMSSD: 0}},
	}})
	require.InDelta(t, 45.2, s.AverageSDNN(), 1e-9)
	require.Equal(t, 0.0, s.AverageRMSSD())
}

func TestSession_EmptyAndMissingDates(t *testing.T) {
	start := time.Date(2024, 5, 15, 19, 30, 0, 0, time.UTC)
	s := NewSession(SessionDocument{ID: "x", StartDate: &start, Duration: 120})

	require.Equal(t, 0.0, s.DurationSeconds())
	require.Equal(t, 0.0, s.AverageHeartRate())
	require.Equal(t, 0.0, s.AverageSDNN())
	require.Equal(t, 0, s.TotalDataPoints())
	_, ok := s.EndDate()
	require.False(t, ok)
	_, ok = s.Sensor("nope")
	require.False(t, ok)
}

func TestSession_AccessorsReturnCopies(t *testing.T) {
	s := decode(t, camelSessionJSON)
	sr := s.Sensors()[0]

	pts := sr.HeartRatePoints()
	pts[0].Value = 999
	p, _ := sr.HeartRatePoint(0)
	require.Equal(t, 70, p.Value)

	sensors := s.Sensors()
	sensors[0] = nil
	require.NotNil(t, s.Sensors()[0])
}

func TestSensor_DurationIgnoresUnparsableTimestamps(t *testing.T) {
	sr := NewSensorRecording(SensorDocument{
		HeartRateData: []PointDocument{
			{Timestamp: time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC), Value: 60},
			{Value: 61},
		},
		RRIntervalData: []PointDocument{
			{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 900},
		},
	})
	require.Equal(t, 10.0, sr.DurationSeconds())
	require.Equal(t, 3, sr.DataPointCount())

	require.Equal(t, 0.0, NewSensorRecording(SensorDocument{}).DurationSeconds())
}

func TestSession_MarshalJSONRoundTrip(t *testing.T) {
	s := decode(t, camelSessionJSON)

	body, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	require.Equal(t, "testid123", raw["id"])
	require.EqualValues(t, 2, raw["sensorCount"])
	require.Contains(t, raw, "sensorRecordings")

	back := decode(t, string(body))
	require.Equal(t, s.AverageHeartRate(), back.AverageHeartRate())
	require.Equal(t, s.AverageSDNN(), back.AverageSDNN())
	require.Equal(t, s.DurationSeconds(), back.DurationSeconds())
	require.Equal(t, s.Sensors()[0].HeartRatePoints(), back.Sensors()[0].HeartRatePoints())
}

func TestDecodeSession_LenientNumbers(t *testing.T) {
	s := decode(t, `{"id":"n","sensorRecordings":[{"sensorId":"a",
	  "heartRateData":[{"timestamp":"garbage","value":"71","monotonicTimestamp":null}],
	  "statistics":{"averageHeartRate":72.9,"sdnn":"bad"}}]}`)

	sr := s.Sensors()[0]
	p, ok := sr.HeartRatePoint(0)
	require.True(t, ok)
	require.Equal(t, 71, p.Value)
	require.True(t, p.Timestamp.IsZero())
	require.Equal(t, 72, sr.HeartRateAvg())
	require.Equal(t, 0.0, sr.SDNN())
}

func TestDecodeSummaries(t *testing.T) {
	list, err := DecodeSummaries([]byte(`[
	  {"id":"a","name":"First","startDate":"2024-05-15T19:30:00Z","duration":300,"sensorCount":1,"averageHeartRate":72.5},
	  {"id":"b","name":"Second","sensor_count":2,"average_sdnn":40.1}
	]`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].ID)
	require.Equal(t, 300.0, list[0].DurationSeconds)
	require.NotNil(t, list[0].StartDate)
	require.Nil(t, list[0].EndDate)
	require.Equal(t, 2, list[1].SensorCount)
	require.Equal(t, 40.1, list[1].AverageSDNN)

	_, err = DecodeSummaries([]byte(`{"not":"a list"}`))
	require.Error(t, err)
}
