package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFearGreed(t *testing.T, handler http.HandlerFunc) *FearGreedService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewFearGreedService(time.Second)
	s.endpoint = srv.URL
	return s
}

func TestFearGreedFetch(t *testing.T) {
	s := newTestFearGreed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[
			{"value":"72","value_classification":"Greed","timestamp":"1700006400"},
			{"value":"48","value_classification":"Neutral","timestamp":"1699920000"},
			{"value":"junk","value_classification":"Broken","timestamp":"0"}
		],"metadata":{"error":null}}`))
	})

	points, err := s.Fetch(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, points, 2, "unparseable entries are dropped")
	assert.Equal(t, 72, points[0].Value)
	assert.Equal(t, "Greed", points[0].Classification)
	assert.Equal(t, int64(1700006400), points[0].Timestamp.Unix())
}

func TestFearGreedFetchAPIError(t *testing.T) {
	s := newTestFearGreed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"metadata":{"error":"rate limited"}}`))
	})
	_, err := s.Fetch(context.Background(), 10)
	assert.Error(t, err)
}

func TestFearGreedFetchEmptyData(t *testing.T) {
	s := newTestFearGreed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"metadata":{"error":null}}`))
	})
	_, err := s.Fetch(context.Background(), 10)
	assert.Error(t, err)
}

func TestFormatFearGreed(t *testing.T) {
	text := FormatFearGreed([]FearGreedPoint{
		{Value: 72, Classification: "Greed", Timestamp: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)},
		{Value: 48, Classification: "Neutral", Timestamp: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)},
	})
	assert.Equal(t,
		"{value: 72, classification: Greed, date: 2026-08-15}\n{value: 48, classification: Neutral, date: 2026-08-14}",
		text)
}
