// Package conf loads and validates the EcoGuard monitor configuration.
package conf

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"

	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// LogConfig defines the configuration for log rotation.
type LogConfig struct {
	Enabled bool   // true to enable logging to file
	Path    string // path to log file
}

// SQLiteSettings contains the settings for the SQLite database.
type SQLiteSettings struct {
	Enabled bool   // true to enable the SQLite output
	Path    string // path to the SQLite database file
}

// MySQLSettings contains the settings for the MySQL database.
type MySQLSettings struct {
	Enabled  bool   // true to enable the MySQL output
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL server host
	Port     string // MySQL server port
}

// OutputSettings selects the database backend used for movement records and
// prediction results.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// MovementModelSettings configures the stage-1 movement classifier.
type MovementModelSettings struct {
	ModelPath    string  // path to the TensorFlow Lite movement model
	MappingsPath string  // path to the JSON scaler/encoder mappings file
	Threshold    float64 // sigmoid output above this counts as a poacher label
	Threads      int     // interpreter threads, 0 = number of CPUs
}

// CameraModelSettings configures the stage-2 camera-trap image classifier.
type CameraModelSettings struct {
	ModelPath string // path to the TensorFlow Lite image model
	ImageRoot string // root directory of camera-trap images, one subdirectory per zone
	InputSize int    // square model input size in pixels
}

// SinkSettings configures delivery of batch results to the downstream API.
type SinkSettings struct {
	URL     string // endpoint receiving the prediction batches
	Timeout int    // request timeout in seconds
}

// NotifySettings configures MQTT alerting for confirmed poacher detections.
type NotifySettings struct {
	Enabled  bool   // true to enable MQTT alerts
	Broker   string // MQTT broker URL, e.g. tcp://localhost:1883
	Topic    string // topic poacher alerts are published to
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // true to retain alert messages at the broker
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   // true to expose Prometheus metrics
	Listen  string // listen address and port of the metrics endpoint
}

// MonitorSettings contains the settings for the batch monitor loop.
type MonitorSettings struct {
	Interval  int  // seconds between polling cycles
	Watermark bool // true to persist a watermark and skip already processed batches
	Sink      SinkSettings
	Notify    NotifySettings
	Metrics   MetricsSettings
}

// ZoneBox is a named rectangular geographic region covered by a camera trap.
type ZoneBox struct {
	ID           string  // zone identifier, e.g. "Z01"
	MinLatitude  float64 `mapstructure:"minlatitude"`
	MaxLatitude  float64 `mapstructure:"maxlatitude"`
	MinLongitude float64 `mapstructure:"minlongitude"`
	MaxLongitude float64 `mapstructure:"maxlongitude"`
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug bool // true to enable debug level logging

	Main struct {
		Name string    // node name for logs and MQTT client id
		Log  LogConfig // log settings
	}

	Output  OutputSettings
	Monitor MonitorSettings

	Models struct {
		Movement MovementModelSettings
		Camera   CameraModelSettings
	}

	// Zones are evaluated in declaration order; the first box containing a
	// coordinate wins.
	Zones []ZoneBox
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration from file and environment and returns the
// validated settings.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	// The zone table has no viper default because declaration order matters;
	// fall back to the built-in reserve layout when the config omits it.
	if len(settings.Zones) == 0 {
		settings.Zones = DefaultZones()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/ecoguard")
	viper.AddConfigPath("/etc/ecoguard")

	viper.SetEnvPrefix("ecoguard")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file is fine, defaults plus environment apply.
	}

	return nil
}

// Setting returns the current settings instance, or nil before Load.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
