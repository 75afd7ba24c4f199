package plot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

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

func TestRenderSession(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSession(&buf, referenceSession(t), Options{}))

	out := buf.String()
	require.Contains(t, out, "<title>Recording: Test Recording</title>")
	require.Contains(t, out, "Heart rate: Polar H10 ABC123")
	require.Contains(t, out, "RR intervals: Polar H10 ABC123")
	require.Contains(t, out, "820")
	require.Contains(t, out, "steelblue")
	require.Contains(t, out, "coral")
}

func TestRenderHeartRate_SensorFilter(t *testing.T) {
	s := referenceSession(t)

	var buf bytes.Buffer
	require.NoError(t, RenderHeartRate(&buf, s, Options{SensorID: "ABC123"}))
	require.Contains(t, buf.String(), "<title>Heart rate: Test Recording</title>")
	require.NotContains(t, buf.String(), "steelblue")

	buf.Reset()
	err := RenderHeartRate(&buf, s, Options{SensorID: "nope"})
	require.ErrorIs(t, err, ErrNoData)
	require.Zero(t, buf.Len())
}

func TestRenderRRIntervals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRRIntervals(&buf, referenceSession(t), Options{AssetsHost: "http://localhost/assets/"}))
	require.Contains(t, buf.String(), "<title>RR intervals: Test Recording</title>")
	require.Contains(t, buf.String(), "http://localhost/assets/echarts.min.js")
}

func TestRender_NoSensors(t *testing.T) {
	s := domain.NewSession(domain.SessionDocument{ID: "empty"})

	var buf bytes.Buffer
	require.ErrorIs(t, RenderSession(&buf, s, Options{}), ErrNoData)
	require.ErrorIs(t, RenderRRIntervals(&buf, s, Options{}), ErrNoData)
}

func TestHeartRateSeries_SkipsUntimedPoints(t *testing.T) {
	doc, err := domain.DecodeSession([]byte(`{"sensorRecordings": [{"sensorId": "A",
	  "heartRateData": [{"timestamp": "", "value": 60}, {"timestamp": "2024-05-15T19:30:00Z", "value": 61}]}]}`))
	require.NoError(t, err)
	sr := domain.NewSession(doc).Sensors()[0]

	got := heartRateSeries(sr, "x")
	require.Len(t, got.points, 1)
	require.Equal(t, []any{int64(1715801400000), 61}, got.points[0].Value)
	require.Equal(t, "A", sensorLabel(sr))
}

func TestRender_Kind(t *testing.T) {
	s := referenceSession(t)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, "hr", Options{}))
	require.Contains(t, buf.String(), "<title>Heart rate: Test Recording</title>")

	buf.Reset()
	require.NoError(t, Render(&buf, s, "", Options{}))
	require.Contains(t, buf.String(), "<title>Recording: Test Recording</title>")

	buf.Reset()
	require.ErrorIs(t, Render(&buf, s, "spo2", Options{}), ErrUnknownKind)
}
