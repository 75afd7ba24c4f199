package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"urap-polar/internal/domain"
	"urap-polar/internal/ingest"
)

func referenceSession(t *testing.T) *domain.Session {
	t.Helper()
	data, err := ingest.ReferenceArchive()
	require.NoError(t, err)
	res, err := ingest.NewLoader(nil).LoadReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return res.Session
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, referenceSession(t)))

	out := buf.String()
	require.Contains(t, out, "Recording: Test Recording\n")
	require.Contains(t, out, "ID: testid123\n")
	require.Contains(t, out, "Duration: 300.0 s\n")
	require.Contains(t, out, "Average HR (session): 72.0 BPM\n")
	require.Contains(t, out, "Average SDNN: 45.20 ms\n")
	require.Contains(t, out, "Sensor: Polar H10 ABC123 (id: ABC123)\n")
	require.Contains(t, out, "  Data points: 4 (HR: 2, RR: 2)\n")
	require.Contains(t, out, "  Heart rate: min=65 max=85 avg=72 BPM\n")
	require.Contains(t, out, "  RR intervals: min=815 max=820 avg=817.5 ms\n")
	require.Contains(t, out, "  SDNN: 45.20 ms  RMSSD: 38.70 ms\n")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, referenceSession(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, CSVHeader, records[0])
	require.Equal(t, []string{
		"ABC123", "Polar H10 ABC123", "1.1", "4", "65", "85", "72", "815", "820", "817.5", "45.20", "38.70",
	}, records[1])
}

func TestWriteCSV_NameWithComma(t *testing.T) {
	s := domain.NewSession(domain.SessionDocument{
		ID: "x",
		SensorRecordings: []domain.SensorDocument{
			{SensorID: "A", SensorName: "My, Polar Strap"},
		},
	})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))
	require.Contains(t, buf.String(), `A,"My, Polar Strap",0.0,0`)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, referenceSession(t))

	out := buf.String()
	require.Contains(t, out, "sensor_id")
	require.Contains(t, out, "Polar H10 ABC123")
	require.Contains(t, out, "817.5")
	require.Equal(t, 1, strings.Count(out, "Polar H10 ABC123"))
}

func TestWriteRecordingList(t *testing.T) {
	start := time.Date(2024, 5, 15, 19, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteRecordingList(&buf, []domain.RecordingSummary{
		{ID: "rec1", Name: "Morning", StartDate: &start, DurationSeconds: 300, SensorCount: 1, AverageHeartRate: 72},
	}))
	require.Contains(t, buf.String(), "rec1  Morning")
	require.Contains(t, buf.String(), "2024-05-15T19:30:00Z")

	buf.Reset()
	require.NoError(t, WriteRecordingList(&buf, nil))
	require.Contains(t, buf.String(), "No recordings found")
}

func TestExcelWorkbook(t *testing.T) {
	data, err := ExcelWorkbook(referenceSession(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Summary", "Sensors", "HR 1", "RR 1"}, f.GetSheetList())

	name, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	require.Equal(t, "Test Recording", name)

	sensors, err := f.GetRows("Sensors")
	require.NoError(t, err)
	require.Len(t, sensors, 2)
	require.Equal(t, CSVHeader, sensors[0])
	require.Equal(t, "ABC123", sensors[1][0])

	hr, err := f.GetRows("HR 1")
	require.NoError(t, err)
	require.Len(t, hr, 3)
	require.Equal(t, "Heart Rate (BPM)", hr[0][2])
	require.Equal(t, "70", hr[1][2])

	rr, err := f.GetRows("RR 1")
	require.NoError(t, err)
	require.Equal(t, "820", rr[1][2])
}

func TestExcelWorkbook_EmptySession(t *testing.T) {
	data, err := ExcelWorkbook(domain.NewSession(domain.SessionDocument{}))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Summary", "Sensors"}, f.GetSheetList())
}
