// Package monitor assembles the detection cascade from the settings and runs
// the polling loop until the process is told to stop.
package monitor

import (
	"context"
	"fmt"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/errors"
	"github.com/ecoguard/ecoguard-go/internal/geozone"
	"github.com/ecoguard/ecoguard-go/internal/imageclass"
	"github.com/ecoguard/ecoguard-go/internal/logging"
	"github.com/ecoguard/ecoguard-go/internal/notify"
	"github.com/ecoguard/ecoguard-go/internal/observability"
	metricspkg "github.com/ecoguard/ecoguard-go/internal/observability/metrics"
	"github.com/ecoguard/ecoguard-go/internal/pipeline"
	"github.com/ecoguard/ecoguard-go/internal/sink"
	"github.com/ecoguard/ecoguard-go/internal/tabular"
)

// Run wires up the store, the two classifiers, zone resolution, delivery and
// alerting, then drives polling cycles until ctx is cancelled.
func Run(ctx context.Context, settings *conf.Settings) error {
	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database backend enabled in settings")
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Failed to close database", "error", err)
		}
	}()

	movement, err := tabular.New(&settings.Models.Movement)
	if err != nil {
		return err
	}
	camera, err := imageclass.New(&settings.Models.Camera)
	if err != nil {
		return err
	}

	resolver := geozone.New(settings.Zones)
	logging.Info("Zone table loaded", "zones", resolver.Zones())

	sinkClient := sink.New(&settings.Monitor.Sink)

	var notifier notify.Notifier
	if settings.Monitor.Notify.Enabled {
		notifier = notify.New(&settings.Monitor.Notify, settings.Main.Name)
		if err := notifier.Connect(ctx); err != nil {
			// The paho client retries in the background, alerts start
			// flowing once the broker is reachable.
			logging.Warn("Alert broker not reachable at startup", "error", err)
		}
		defer notifier.Disconnect()
	}

	var pipelineMetrics *metricspkg.PipelineMetrics
	if settings.Monitor.Metrics.Enabled {
		metrics, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		endpoint, err := observability.NewEndpoint(&settings.Monitor.Metrics, metrics)
		if err != nil {
			return err
		}
		endpoint.Start(ctx)
		pipelineMetrics = metrics.Pipeline
	}

	processor := pipeline.NewProcessor(store, movement, camera, resolver,
		sinkClient, notifier, pipelineMetrics)
	loop := pipeline.NewMonitor(&settings.Monitor, processor, store, pipelineMetrics)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info("Monitor stopped")
	return nil
}
