package domain

import "time"

// HeartRatePoint single heart rate sample (Value in BPM)
type HeartRatePoint struct {
	Timestamp          time.Time
	Value              int
	MonotonicTimestamp float64
}

// RRIntervalPoint single RR interval sample (Value in milliseconds)
type RRIntervalPoint struct {
	Timestamp          time.Time
	Value              int
	MonotonicTimestamp float64
}

func heartRatePointFromDoc(d PointDocument) HeartRatePoint {
	return HeartRatePoint{Timestamp: d.Timestamp, Value: d.Value, MonotonicTimestamp: d.MonotonicTimestamp}
}

func rrPointFromDoc(d PointDocument) RRIntervalPoint {
	return RRIntervalPoint{Timestamp: d.Timestamp, Value: d.Value, MonotonicTimestamp: d.MonotonicTimestamp}
}
