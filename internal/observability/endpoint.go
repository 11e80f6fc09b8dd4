package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/logging"
	metricspkg "github.com/ecoguard/ecoguard-go/internal/observability/metrics"
)

// Endpoint serves the Prometheus scrape endpoint.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	metrics       *Metrics
}

// NewEndpoint creates a metrics endpoint for the configured listen address.
// Returns an error when metrics are disabled in the settings.
func NewEndpoint(settings *conf.MetricsSettings, metrics *Metrics) (*Endpoint, error) {
	if !settings.Enabled {
		return nil, errors.New("metrics endpoint not enabled in settings")
	}
	return &Endpoint{
		listenAddress: settings.Listen,
		metrics:       metrics,
	}, nil
}

// Start runs the HTTP server in a goroutine and shuts it down when ctx is
// cancelled.
func (e *Endpoint) Start(ctx context.Context) {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	e.server = &http.Server{
		Addr:    e.listenAddress,
		Handler: mux,
	}

	go func() {
		logging.Info("Metrics endpoint starting", "address", e.listenAddress)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics HTTP server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
		defer cancel()
		if err := e.server.Shutdown(shutdownCtx); err != nil {
			logging.Error("Metrics server shutdown error", "error", err)
		}
	}()
}
