package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"urap-polar/internal/domain"
)

const (
	summarySheet = "Summary"
	sensorsSheet = "Sensors"
)

// SampleHeader columns of the per-sensor HR and RR sheets
var SampleHeader = []string{"Timestamp", "Monotonic Time", "Value"}

// ExcelWorkbook session summary, per-sensor table and one HR and RR sheet
// per sensor, as .xlsx bytes.
func ExcelWorkbook(s *domain.Session) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; every return path closes it.

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummarySheet(f, s, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSensorsSheet(f, s, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, sr := range s.Sensors() {
		if err := writeSampleSheet(f, fmt.Sprintf("HR %d", i+1), heartRateRows(sr), headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSampleSheet(f, fmt.Sprintf("RR %d", i+1), rrRows(sr), headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, s *domain.Session, headerStyle int) error {
	start, end := "", ""
	if t, ok := s.StartDate(); ok {
		start = domain.FormatISO(t)
	}
	if t, ok := s.EndDate(); ok {
		end = domain.FormatISO(t)
	}

	rows := [][]any{
		{"Field", "Value"},
		{"Recording", s.Name()},
		{"ID", s.ID()},
		{"Start Time", start},
		{"End Time", end},
		{"Duration (seconds)", s.DurationSeconds()},
		{"Sensors", s.SensorCount()},
		{"Total Data Points", s.TotalDataPoints()},
		{"Average Heart Rate (BPM)", s.AverageHeartRate()},
		{"Average SDNN (ms)", s.AverageSDNN()},
		{"Average RMSSD (ms)", s.AverageRMSSD()},
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(summarySheet, "B", "B", 30)
}

func writeSensorsSheet(f *excelize.File, s *domain.Session, headerStyle int) error {
	if _, err := f.NewSheet(sensorsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	rows := [][]any{header}
	for _, sr := range s.Sensors() {
		rows = append(rows, []any{
			sr.SensorID(),
			sr.SensorName(),
			sr.DurationSeconds(),
			sr.DataPointCount(),
			sr.HeartRateMin(),
			sr.HeartRateMax(),
			sr.HeartRateAvg(),
			sr.RRMin(),
			sr.RRMax(),
			sr.RRAvg(),
			sr.SDNN(),
			sr.RMSSD(),
		})
	}
	if err := writeRows(f, sensorsSheet, rows); err != nil {
		return err
	}
	return styleHeader(f, sensorsSheet, len(CSVHeader), headerStyle)
}

func heartRateRows(sr *domain.SensorRecording) [][]any {
	points := sr.HeartRatePoints()
	rows := make([][]any, 0, len(points)+1)
	rows = append(rows, []any{SampleHeader[0], SampleHeader[1], "Heart Rate (BPM)"})
	for _, p := range points {
		rows = append(rows, []any{domain.FormatISO(p.Timestamp), p.MonotonicTimestamp, p.Value})
	}
	return rows
}

func rrRows(sr *domain.SensorRecording) [][]any {
	points := sr.RRPoints()
	rows := make([][]any, 0, len(points)+1)
	rows = append(rows, []any{SampleHeader[0], SampleHeader[1], "RR Interval (ms)"})
	for _, p := range points {
		rows = append(rows, []any{domain.FormatISO(p.Timestamp), p.MonotonicTimestamp, p.Value})
	}
	return rows
}

func writeSampleSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return styleHeader(f, sheet, len(SampleHeader), headerStyle)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// styleHeader bolds row 1 and freezes it.
func styleHeader(f *excelize.File, sheet string, cols, headerStyle int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}
