// Package sink implements the client that republishes consolidated batch
// verdicts to the downstream results API.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/errors"
	"github.com/ecoguard/ecoguard-go/internal/httpclient"
	"github.com/ecoguard/ecoguard-go/internal/logging"
)

// payloadTimeLayout matches the datetime rendering the downstream receiver
// was built against.
const payloadTimeLayout = "2006-01-02 15:04:05"

// Entry is one per-record verdict in a batch payload. The timestamp is
// deliberately sent under two keys and longitude keeps its historical
// spelling; both are part of the receiver's wire contract.
type Entry struct {
	AnimalID    string   `json:"animal_id"`
	Species     string   `json:"species"`
	Datetime    string   `json:"datetime"`
	Timestamp   string   `json:"timestamp"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longtitude"`
	Prediction  string   `json:"prediction"`
	Zone        *string  `json:"zone"`
	ImageURL    *string  `json:"image_url"`
	ClassName   *string  `json:"class_name"`
	Probability *float64 `json:"probability"`
}

// FormatTimestamp renders a batch timestamp for the payload.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(payloadTimeLayout)
}

// Client delivers batch payloads with a bounded timeout. One Deliver call
// is made per non-empty batch; failures are reported to the caller, which
// logs and moves on without retrying.
type Client struct {
	url        string
	httpClient *httpclient.Client
	logger     *slog.Logger
}

// New creates a sink client for the configured endpoint.
func New(settings *conf.SinkSettings) *Client {
	logger, _, err := logging.NewFileLogger("logs/sink.log", "sink", slog.LevelDebug)
	if err != nil {
		logging.Warn("Failed to initialize sink file logger, using default", "error", err)
		logger = slog.Default().With("service", "sink")
	}

	cfg := httpclient.DefaultConfig()
	cfg.DefaultTimeout = time.Duration(settings.Timeout) * time.Second

	return &Client{
		url:        settings.URL,
		httpClient: httpclient.New(&cfg),
		logger:     logger,
	}
}

// Deliver posts the payload as one JSON array. HTTP 200 and 201 count as
// success; any other status or transport failure is returned as a delivery
// error.
func (c *Client) Deliver(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return errors.New(fmt.Errorf("marshaling batch payload: %w", err)).
			Component("sink").
			Category(errors.CategoryDelivery).
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.New(fmt.Errorf("building delivery request: %w", err)).
			Component("sink").
			Category(errors.CategoryDelivery).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return errors.New(fmt.Errorf("posting batch payload: %w", err)).
			Component("sink").
			Category(errors.CategoryNetwork).
			Timing("batch-delivery", time.Since(start)).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		// Read a little of the body for the log, the payload is gone either way.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("batch delivery rejected",
			"status", resp.StatusCode,
			"entries", len(entries),
			"response", string(snippet))
		return errors.Newf("sink returned status %d", resp.StatusCode).
			Component("sink").
			Category(errors.CategoryDelivery).
			Context("status", resp.StatusCode).
			Context("entries", len(entries)).
			Build()
	}

	c.logger.Debug("batch delivered",
		"entries", len(entries),
		"duration", time.Since(start))
	return nil
}
