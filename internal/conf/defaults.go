// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "EcoGuard")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/ecoguard.log")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "ecoguard.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "ecoguard")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "ecoguard")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("models.movement.modelpath", "models/movement_poacher_fp32.tflite")
	viper.SetDefault("models.movement.mappingspath", "models/movement_mappings.json")
	viper.SetDefault("models.movement.threshold", 0.5)
	viper.SetDefault("models.movement.threads", 0)

	viper.SetDefault("models.camera.modelpath", "models/camera_ensemble_fp32.tflite")
	viper.SetDefault("models.camera.imageroot", "media/camera_zones")
	viper.SetDefault("models.camera.inputsize", 224)

	viper.SetDefault("monitor.interval", 60)
	viper.SetDefault("monitor.watermark", false)

	viper.SetDefault("monitor.sink.url", "http://127.0.0.1:8000/api/receive-prediction/")
	viper.SetDefault("monitor.sink.timeout", 30)

	viper.SetDefault("monitor.notify.enabled", false)
	viper.SetDefault("monitor.notify.broker", "tcp://localhost:1883")
	viper.SetDefault("monitor.notify.topic", "ecoguard/alerts")
	viper.SetDefault("monitor.notify.username", "")
	viper.SetDefault("monitor.notify.password", "")
	viper.SetDefault("monitor.notify.retain", false)

	viper.SetDefault("monitor.metrics.enabled", false)
	viper.SetDefault("monitor.metrics.listen", "0.0.0.0:8090")
}

// DefaultZones returns the built-in camera-trap zone table for the reserve.
// Order is significant: resolution picks the first matching box.
func DefaultZones() []ZoneBox {
	return []ZoneBox{
		{ID: "Z01", MinLatitude: -22.15, MaxLatitude: -22.10, MinLongitude: 32.30, MaxLongitude: 32.35},
		{ID: "Z02", MinLatitude: -22.15, MaxLatitude: -22.10, MinLongitude: 32.15, MaxLongitude: 32.20},
		{ID: "Z03", MinLatitude: -22.10, MaxLatitude: -22.05, MinLongitude: 32.30, MaxLongitude: 32.35},
		{ID: "Z04", MinLatitude: -22.10, MaxLatitude: -22.05, MinLongitude: 32.15, MaxLongitude: 32.20},
		{ID: "Z05", MinLatitude: -22.05, MaxLatitude: -22.00, MinLongitude: 32.30, MaxLongitude: 32.35},
		{ID: "Z06", MinLatitude: -22.05, MaxLatitude: -22.00, MinLongitude: 32.15, MaxLongitude: 32.20},
		{ID: "Z07", MinLatitude: -21.2, MaxLatitude: -21.1, MinLongitude: 31.6, MaxLongitude: 31.7},
		{ID: "Z08", MinLatitude: -21.1, MaxLatitude: -21.0, MinLongitude: 31.7, MaxLongitude: 31.8},
		{ID: "Z09", MinLatitude: -21.0, MaxLatitude: -20.9, MinLongitude: 31.8, MaxLongitude: 31.9},
		{ID: "Z10", MinLatitude: -20.9, MaxLatitude: -20.8, MinLongitude: 31.9, MaxLongitude: 32.0},
	}
}
