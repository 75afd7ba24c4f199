package domain

// SensorStatistics per-sensor summary block, either as reported by the app
// (API statistics object / _statistics.csv) or synthesized from raw samples.
type SensorStatistics struct {
	MinHeartRate     int     `json:"minHeartRate"`
	MaxHeartRate     int     `json:"maxHeartRate"`
	AverageHeartRate int     `json:"averageHeartRate"`
	SDNN             float64 `json:"sdnn"`  // ms
	RMSSD            float64 `json:"rmssd"` // ms
	HRVWindow        string  `json:"hrvWindow"`
	HRVSampleCount   int     `json:"hrvSampleCount"`

	// Informational rows of _statistics.csv; not used by any aggregate.
	SensorID          string  `json:"sensorId,omitempty"`
	SensorName        string  `json:"sensorName,omitempty"`
	Duration          float64 `json:"duration,omitempty"`
	HeartRateSamples  int     `json:"heartRateSamples,omitempty"`
	RRIntervalSamples int     `json:"rrIntervalSamples,omitempty"`
}

// UnmarshalJSON accepts camelCase and snake_case keys.
func (s *SensorStatistics) UnmarshalJSON(data []byte) error {
	var w struct {
		MinHeartRate           *flexNumber `json:"minHeartRate"`
		MinHeartRateSnake      *flexNumber `json:"min_heart_rate"`
		MaxHeartRate           *flexNumber `json:"maxHeartRate"`
		MaxHeartRateSnake      *flexNumber `json:"max_heart_rate"`
		AverageHeartRate       *flexNumber `json:"averageHeartRate"`
		AverageHeartRateSnake  *flexNumber `json:"average_heart_rate"`
		SDNN                   *flexNumber `json:"sdnn"`
		RMSSD                  *flexNumber `json:"rmssd"`
		HRVWindow              *string     `json:"hrvWindow"`
		HRVWindowSnake         *string     `json:"hrv_window"`
		HRVSampleCount         *flexNumber `json:"hrvSampleCount"`
		HRVSampleCountSnake    *flexNumber `json:"hrv_sample_count"`
		SensorID               *string     `json:"sensorId"`
		SensorIDSnake          *string     `json:"sensor_id"`
		SensorName             *string     `json:"sensorName"`
		SensorNameSnake        *string     `json:"sensor_name"`
		Duration               *flexNumber `json:"duration"`
		HeartRateSamples       *flexNumber `json:"heartRateSamples"`
		HeartRateSamplesSnake  *flexNumber `json:"heart_rate_samples"`
		RRIntervalSamples      *flexNumber `json:"rrIntervalSamples"`
		RRIntervalSamplesSnake *flexNumber `json:"rr_interval_samples"`
	}
	if err := unmarshalObject(data, &w); err != nil {
		return err
	}
	*s = SensorStatistics{
		MinHeartRate:      pickNumber(w.MinHeartRate, w.MinHeartRateSnake).Int(),
		MaxHeartRate:      pickNumber(w.MaxHeartRate, w.MaxHeartRateSnake).Int(),
		AverageHeartRate:  pickNumber(w.AverageHeartRate, w.AverageHeartRateSnake).Int(),
		SDNN:              pickNumber(w.SDNN).Float(),
		RMSSD:             pickNumber(w.RMSSD).Float(),
		HRVWindow:         pickString(w.HRVWindow, w.HRVWindowSnake),
		HRVSampleCount:    pickNumber(w.HRVSampleCount, w.HRVSampleCountSnake).Int(),
		SensorID:          pickString(w.SensorID, w.SensorIDSnake),
		SensorName:        pickString(w.SensorName, w.SensorNameSnake),
		Duration:          pickNumber(w.Duration).Float(),
		HeartRateSamples:  pickNumber(w.HeartRateSamples, w.HeartRateSamplesSnake).Int(),
		RRIntervalSamples: pickNumber(w.RRIntervalSamples, w.RRIntervalSamplesSnake).Int(),
	}
	return nil
}
