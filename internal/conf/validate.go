package conf

import (
	"fmt"
	"net/url"

	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// ValidateSettings checks that the loaded settings describe a runnable
// monitor. Configuration errors are the only failures allowed to stop the
// process at startup.
func ValidateSettings(settings *Settings) error {
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return validationError("no database output enabled, enable output.sqlite or output.mysql")
	}
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return validationError("only one database output may be enabled at a time")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return validationError("output.sqlite.path must not be empty")
	}

	if settings.Monitor.Interval <= 0 {
		return validationError(fmt.Sprintf("monitor.interval must be positive, got %d", settings.Monitor.Interval))
	}
	if settings.Monitor.Sink.Timeout <= 0 {
		return validationError(fmt.Sprintf("monitor.sink.timeout must be positive, got %d", settings.Monitor.Sink.Timeout))
	}
	if settings.Monitor.Sink.URL == "" {
		return validationError("monitor.sink.url must not be empty")
	}
	if u, err := url.Parse(settings.Monitor.Sink.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return validationError(fmt.Sprintf("monitor.sink.url %q is not a valid URL", settings.Monitor.Sink.URL))
	}

	if settings.Models.Movement.ModelPath == "" {
		return validationError("models.movement.modelpath must not be empty")
	}
	if settings.Models.Movement.MappingsPath == "" {
		return validationError("models.movement.mappingspath must not be empty")
	}
	if settings.Models.Movement.Threshold <= 0 || settings.Models.Movement.Threshold >= 1 {
		return validationError(fmt.Sprintf("models.movement.threshold must be in (0, 1), got %g", settings.Models.Movement.Threshold))
	}
	if settings.Models.Camera.ModelPath == "" {
		return validationError("models.camera.modelpath must not be empty")
	}
	if settings.Models.Camera.InputSize <= 0 {
		return validationError(fmt.Sprintf("models.camera.inputsize must be positive, got %d", settings.Models.Camera.InputSize))
	}

	if settings.Monitor.Notify.Enabled {
		if settings.Monitor.Notify.Broker == "" {
			return validationError("monitor.notify.broker must not be empty when alerts are enabled")
		}
		if settings.Monitor.Notify.Topic == "" {
			return validationError("monitor.notify.topic must not be empty when alerts are enabled")
		}
	}

	return validateZones(settings.Zones)
}

func validateZones(zones []ZoneBox) error {
	if len(zones) == 0 {
		return validationError("at least one zone must be configured")
	}
	seen := make(map[string]struct{}, len(zones))
	for i := range zones {
		z := &zones[i]
		if z.ID == "" {
			return validationError(fmt.Sprintf("zone %d has an empty id", i))
		}
		if _, dup := seen[z.ID]; dup {
			return validationError(fmt.Sprintf("duplicate zone id %q", z.ID))
		}
		seen[z.ID] = struct{}{}
		if z.MinLatitude > z.MaxLatitude {
			return validationError(fmt.Sprintf("zone %s: minlatitude %g greater than maxlatitude %g", z.ID, z.MinLatitude, z.MaxLatitude))
		}
		if z.MinLongitude > z.MaxLongitude {
			return validationError(fmt.Sprintf("zone %s: minlongitude %g greater than maxlongitude %g", z.ID, z.MinLongitude, z.MaxLongitude))
		}
	}
	return nil
}

func validationError(msg string) error {
	return errors.Newf("%s", msg).
		Component("conf").
		Category(errors.CategoryValidation).
		Build()
}
