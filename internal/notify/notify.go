// Package notify publishes poacher alerts to an MQTT broker so ranger and
// admin dashboards can subscribe to confirmed detections.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/errors"
	"github.com/ecoguard/ecoguard-go/internal/logging"
)

// Alert is the message published for a confirmed poacher detection.
type Alert struct {
	AnimalID    string  `json:"animal_id"`
	Species     string  `json:"species"`
	Timestamp   string  `json:"timestamp"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Zone        string  `json:"zone,omitempty"`
	ClassName   string  `json:"class_name"`
	Probability float64 `json:"probability"`
}

// Notifier defines the alert publishing operations the pipeline needs.
type Notifier interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, alert *Alert) error
	IsConnected() bool
	Disconnect()
}

const (
	connectTimeout    = 30 * time.Second
	publishTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds passed to paho Disconnect
)

// client implements Notifier over paho MQTT.
type client struct {
	settings       conf.NotifySettings
	clientID       string
	internalClient mqtt.Client
	logger         *slog.Logger
	mu             sync.Mutex
}

// New creates an MQTT-backed notifier. The connection is established
// separately via Connect.
func New(settings *conf.NotifySettings, clientID string) Notifier {
	logger, _, err := logging.NewFileLogger("logs/notify.log", "notify", slog.LevelInfo)
	if err != nil {
		logging.Warn("Failed to initialize notify file logger, using default", "error", err)
		logger = slog.Default().With("service", "notify")
	}

	return &client{
		settings: *settings,
		clientID: clientID,
		logger:   logger,
	}
}

// Connect attempts to establish a connection to the MQTT broker.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.settings.Broker)
	opts.SetClientID(c.clientID)
	opts.SetUsername(c.settings.Username)
	opts.SetPassword(c.settings.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)

	c.internalClient = mqtt.NewClient(opts)

	token := c.internalClient.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.Newf("connection timeout to broker %s", c.settings.Broker).
			Component("notify").
			Category(errors.CategoryMQTTConnection).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(fmt.Errorf("connection error: %w", err)).
			Component("notify").
			Category(errors.CategoryMQTTConnection).
			Context("broker", c.settings.Broker).
			Build()
	}

	c.logger.Info("connected to alert broker", "broker", c.settings.Broker, "topic", c.settings.Topic)
	return nil
}

// Publish sends one alert to the configured topic.
func (c *client) Publish(ctx context.Context, alert *Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil || !c.internalClient.IsConnected() {
		return errors.Newf("not connected to MQTT broker").
			Component("notify").
			Category(errors.CategoryMQTTPublish).
			Build()
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return errors.New(fmt.Errorf("marshaling alert: %w", err)).
			Component("notify").
			Category(errors.CategoryMQTTPublish).
			Build()
	}

	token := c.internalClient.Publish(c.settings.Topic, 0, c.settings.Retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Newf("publish timeout on topic %s", c.settings.Topic).
			Component("notify").
			Category(errors.CategoryMQTTPublish).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(fmt.Errorf("publish error: %w", err)).
			Component("notify").
			Category(errors.CategoryMQTTPublish).
			Context("topic", c.settings.Topic).
			Build()
	}

	c.logger.Debug("alert published",
		"topic", c.settings.Topic,
		"animal_id", alert.AnimalID,
		"zone", alert.Zone)
	return nil
}

// IsConnected returns true if the client is currently connected.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.internalClient != nil {
		c.internalClient.Disconnect(disconnectQuiesce)
	}
}
