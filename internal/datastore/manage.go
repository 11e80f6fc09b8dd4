package datastore

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ecoguard/ecoguard-go/internal/logging"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow by the GORM logger.
const DefaultSlowQueryThreshold = 1 * time.Second

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		slogWriter{logger: datastoreLogger()},
		gormlogger.Config{
			SlowThreshold:             DefaultSlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// slogWriter adapts a slog.Logger to GORM's Printf-style logger writer.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Warn(fmt.Sprintf(format, args...))
}

func datastoreLogger() *slog.Logger {
	if l := logging.ForService("datastore"); l != nil {
		return l
	}
	return slog.Default().With("service", "datastore")
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()
	log := datastoreLogger().With("db_type", dbType)

	tableMappings := []struct {
		model any
		name  string
	}{
		{&MovementRecord{}, "movement_records"},
		{&PredictionResult{}, "prediction_results"},
		{&ProcessingWatermark{}, "processing_watermarks"},
	}

	for _, table := range tableMappings {
		if err := db.AutoMigrate(table.model); err != nil {
			return fmt.Errorf("failed to auto-migrate %s table for %s database %s: %w",
				table.name, dbType, connectionInfo, err)
		}
	}

	if debug {
		log.Debug("Database migration completed",
			"duration", time.Since(migrationStart),
			"tables_migrated", len(tableMappings))
	}

	return nil
}
