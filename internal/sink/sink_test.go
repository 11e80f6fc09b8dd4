package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/errors"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	settings := &conf.SinkSettings{URL: url, Timeout: 5}
	return New(settings)
}

func sampleEntries() []Entry {
	zone := "Z01"
	class := "elephant"
	probability := 0.92
	imageURL := "media/camera_zones/Z01/2024-03-15_06-30-00.jpg"
	ts := FormatTimestamp(time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC))
	return []Entry{
		{
			AnimalID:    "A1",
			Species:     "elephant",
			Datetime:    ts,
			Timestamp:   ts,
			Latitude:    -22.12,
			Longitude:   32.32,
			Prediction:  "poacher",
			Zone:        &zone,
			ImageURL:    &imageURL,
			ClassName:   &class,
			Probability: &probability,
		},
		{
			AnimalID:   "A2",
			Species:    "rhino",
			Datetime:   ts,
			Timestamp:  ts,
			Latitude:   -22.01,
			Longitude:  32.16,
			Prediction: "normal",
		},
	}
}

func TestDeliver(t *testing.T) {
	var received []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.NoError(t, client.Deliver(context.Background(), sampleEntries()))

	require.Len(t, received, 2, "payload must be one JSON array")

	first := received[0]
	assert.Equal(t, "A1", first["animal_id"])
	assert.Equal(t, "poacher", first["prediction"])
	assert.Equal(t, "Z01", first["zone"])
	assert.Equal(t, "elephant", first["class_name"])
	assert.InDelta(t, 0.92, first["probability"].(float64), 1e-9)
	assert.Equal(t, first["datetime"], first["timestamp"], "timestamp is sent under both keys")
	assert.Contains(t, first, "longtitude", "historical longitude key is part of the wire contract")

	second := received[1]
	assert.Equal(t, "normal", second["prediction"])
	assert.Nil(t, second["zone"], "absent zone serializes as null")
	assert.Nil(t, second["class_name"])
	assert.Nil(t, second["probability"])
}

func TestDeliverNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "downstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Deliver(context.Background(), sampleEntries())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryDelivery, errors.CategoryOf(err))
}

func TestDeliverNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(t, server.URL)
	err := client.Deliver(context.Background(), sampleEntries())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNetwork, errors.CategoryOf(err))
}

func TestDeliverEmptyPayloadIsNoop(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.NoError(t, client.Deliver(context.Background(), nil))
	assert.Zero(t, calls, "empty payloads are never posted")
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 15, 6, 30, 45, 0, time.UTC)
	assert.Equal(t, "2024-03-15 06:30:45", FormatTimestamp(ts))
}
