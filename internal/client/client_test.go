package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"urap-polar/internal/client"
	"urap-polar/internal/config"
	"urap-polar/internal/store"
)

const listBody = `[
  {"id": "rec1", "name": "Morning", "startDate": "2024-05-15T07:00:00Z", "endDate": "2024-05-15T07:10:00Z", "duration": 600,
   "sensorCount": 1, "averageHeartRate": 64.5, "averageSDNN": 50.1, "averageRMSSD": 40.2},
  {"id": "rec2", "name": "Evening", "start_date": "2024-05-15T19:30:00Z", "sensor_count": 2}
]`

const sessionBody = `{
  "id": "rec1", "name": "Morning",
  "startDate": "2024-05-15T07:00:00Z", "endDate": "2024-05-15T07:10:00Z",
  "sensorRecordings": [{
    "sensorId": "ABC123", "sensorName": "Polar H10 ABC123",
    "heartRateData": [{"timestamp": "2024-05-15T07:00:01Z", "value": 62, "monotonicTimestamp": 1.0}],
    "rrIntervalData": [{"timestamp": "2024-05-15T07:00:01Z", "value": 950, "monotonicTimestamp": 1.0}],
    "statistics": {"minHeartRate": 60, "maxHeartRate": 70, "averageHeartRate": 64,
                   "sdnn": 50.1, "rmssd": 40.2, "hrvWindow": "5 Minutes", "hrvSampleCount": 30}
  }]
}`

type apiStub struct {
	server    *httptest.Server
	getCalls  atomic.Int32
	requestID atomic.Value
}

func newAPIStub(t *testing.T) *apiStub {
	t.Helper()
	stub := &apiStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/recordings", func(w http.ResponseWriter, r *http.Request) {
		stub.requestID.Store(r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listBody))
	})
	mux.HandleFunc("/recordings/rec1", func(w http.ResponseWriter, r *http.Request) {
		stub.getCalls.Add(1)
		_, _ = w.Write([]byte(sessionBody))
	})
	mux.HandleFunc("/recordings/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": `))
	})
	mux.HandleFunc("/recordings/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/recordings/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "recording not found", http.StatusNotFound)
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func newClient(baseURL string) *client.Client {
	return client.New(config.APIConfig{
		BaseURL:     baseURL + "/",
		ListTimeout: time.Second,
		GetTimeout:  200 * time.Millisecond,
	}, zap.NewNop())
}

func TestClient_ListRecordings(t *testing.T) {
	stub := newAPIStub(t)
	c := newClient(stub.server.URL)
	require.Equal(t, stub.server.URL, c.BaseURL())

	list, err := c.ListRecordings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "rec1", list[0].ID)
	require.Equal(t, 64.5, list[0].AverageHeartRate)
	require.Equal(t, 600.0, list[0].DurationSeconds)
	require.Equal(t, 2, list[1].SensorCount)
	require.NotNil(t, list[1].StartDate)
	require.Nil(t, list[1].EndDate)

	requestID, _ := stub.requestID.Load().(string)
	require.Len(t, requestID, 36)
}

func TestClient_GetRecording(t *testing.T) {
	stub := newAPIStub(t)
	c := newClient(stub.server.URL)

	s, err := c.GetRecording(context.Background(), "rec1")
	require.NoError(t, err)
	require.Equal(t, "Morning", s.Name())
	require.Equal(t, 600.0, s.DurationSeconds())
	require.Equal(t, 64.0, s.AverageHeartRate())
	sr, ok := s.Sensor("ABC123")
	require.True(t, ok)
	require.Equal(t, 950, sr.RRMin())
}

func TestClient_StatusError(t *testing.T) {
	stub := newAPIStub(t)
	c := newClient(stub.server.URL)

	_, err := c.GetRecording(context.Background(), "missing")
	require.Error(t, err)
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.StatusCode)
	require.Contains(t, se.Body, "recording not found")
	require.True(t, client.IsNotFound(err))
	require.False(t, errors.Is(err, client.ErrUnreachable))
}

func TestClient_DecodeError(t *testing.T) {
	stub := newAPIStub(t)
	c := newClient(stub.server.URL)

	_, err := c.GetRecording(context.Background(), "broken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "recording broken")
}

func TestClient_EmptyID(t *testing.T) {
	c := newClient("http://127.0.0.1:1")
	_, err := c.GetRecording(context.Background(), " ")
	require.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	stub := newAPIStub(t)
	url := stub.server.URL
	stub.server.Close()

	c := newClient(url)
	_, err := c.ListRecordings(context.Background())
	require.ErrorIs(t, err, client.ErrUnreachable)
	var ce *client.ConnectivityError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, url+"/recordings", ce.URL)
}

func TestClient_Timeout(t *testing.T) {
	stub := newAPIStub(t)
	c := newClient(stub.server.URL)

	_, err := c.GetRecording(context.Background(), "slow")
	require.ErrorIs(t, err, client.ErrUnreachable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCachedClient_GetRecording(t *testing.T) {
	stub := newAPIStub(t)
	kv := newFakeKVStore()
	cc := client.NewCachedClient(newClient(stub.server.URL), kv, 10*time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := cc.GetRecording(ctx, "rec1")
	require.NoError(t, err)
	second, err := cc.GetRecording(ctx, "rec1")
	require.NoError(t, err)

	require.Equal(t, int32(1), stub.getCalls.Load())
	require.Equal(t, first.Document(), second.Document())
	require.Equal(t, 10*time.Minute, kv.ttls["urap:recording:rec1"])

	ids, err := cc.CachedIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"rec1"}, ids)

	list, err := cc.ListRecordings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestCachedClient_CorruptEntryRefetched(t *testing.T) {
	stub := newAPIStub(t)
	kv := newFakeKVStore()
	kv.data["urap:recording:rec1"] = "{not json"
	cc := client.NewCachedClient(newClient(stub.server.URL), kv, time.Minute, nil)

	s, err := cc.GetRecording(context.Background(), "rec1")
	require.NoError(t, err)
	require.Equal(t, "rec1", s.ID())
	require.Equal(t, int32(1), stub.getCalls.Load())
	require.Equal(t, sessionBody, kv.data["urap:recording:rec1"])
}

func TestCachedClient_KVFailureFallsThrough(t *testing.T) {
	stub := newAPIStub(t)
	kv := newFakeKVStore()
	kv.failing = true
	cc := client.NewCachedClient(newClient(stub.server.URL), kv, time.Minute, zap.NewNop())

	s, err := cc.GetRecording(context.Background(), "rec1")
	require.NoError(t, err)
	require.Equal(t, "Morning", s.Name())

	_, err = cc.CachedIDs(context.Background())
	require.Error(t, err)
}

func TestCachedClient_WithMemoryKV(t *testing.T) {
	stub := newAPIStub(t)
	cc := client.NewCachedClient(newClient(stub.server.URL), store.NewMemoryKV(), time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := cc.GetRecording(context.Background(), "rec1")
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), stub.getCalls.Load())
}
