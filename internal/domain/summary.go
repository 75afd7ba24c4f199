package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordingSummary item of GET /recordings
type RecordingSummary struct {
	ID               string
	Name             string
	StartDate        *time.Time
	EndDate          *time.Time
	DurationSeconds  float64
	SensorCount      int
	AverageHeartRate float64
	AverageSDNN      float64
	AverageRMSSD     float64
}

// SummaryFromDocument takes the values as reported; nothing is derived
// because list items carry no sensor data.
func SummaryFromDocument(doc SessionDocument) RecordingSummary {
	return RecordingSummary{
		ID:               doc.ID,
		Name:             doc.Name,
		StartDate:        copyTime(doc.StartDate),
		EndDate:          copyTime(doc.EndDate),
		DurationSeconds:  doc.Duration,
		SensorCount:      doc.SensorCount,
		AverageHeartRate: doc.AverageHeartRate,
		AverageSDNN:      doc.AverageSDNN,
		AverageRMSSD:     doc.AverageRMSSD,
	}
}

// DecodeSummaries parses the GET /recordings body.
func DecodeSummaries(data []byte) ([]RecordingSummary, error) {
	var docs []SessionDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode recording list: %w", err)
	}
	out := make([]RecordingSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, SummaryFromDocument(d))
	}
	return out, nil
}
