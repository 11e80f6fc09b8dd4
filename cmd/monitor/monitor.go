// Package monitor implements the command running the detection pipeline.
package monitor

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/monitor"
)

// Command creates the command that runs the polling monitor.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the movement monitor",
		Long:  "Poll the movement database on a fixed interval, classify each batch and deliver the results downstream.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return monitor.Run(ctx, settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	return cmd
}

// setupFlags configures flags specific to the monitor command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().IntVar(&settings.Monitor.Interval, "interval", viper.GetInt("monitor.interval"), "Seconds between polling cycles")
	cmd.Flags().BoolVar(&settings.Monitor.Watermark, "watermark", viper.GetBool("monitor.watermark"), "Skip batches processed in earlier cycles")
	cmd.Flags().StringVar(&settings.Monitor.Sink.URL, "sinkurl", viper.GetString("monitor.sink.url"), "Endpoint receiving prediction batches")
	cmd.Flags().BoolVar(&settings.Monitor.Notify.Enabled, "notify", viper.GetBool("monitor.notify.enabled"), "Enable MQTT poacher alerts")
	cmd.Flags().StringVar(&settings.Monitor.Notify.Broker, "broker", viper.GetString("monitor.notify.broker"), "MQTT broker URL for alerts")
	cmd.Flags().BoolVar(&settings.Monitor.Metrics.Enabled, "metrics", viper.GetBool("monitor.metrics.enabled"), "Enable Prometheus metrics endpoint")
	cmd.Flags().StringVar(&settings.Monitor.Metrics.Listen, "listen", viper.GetString("monitor.metrics.listen"), "Listen address and port of the metrics endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
