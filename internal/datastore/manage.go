package datastore

import (
	"fmt"
	"time"

	"github.com/skaiser/staffcast/internal/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow. One second accommodates migration batch queries.
const DefaultSlowQueryThreshold = 1 * time.Second

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		slogWriter{},
		gormlogger.Config{
			SlowThreshold:             DefaultSlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// slogWriter adapts the shared structured logger to GORM's logger interface.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	logging.Warn(fmt.Sprintf(format, args...))
}

// performAutoMigration runs GORM auto-migration for every table the engine
// reads and writes.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&WeatherDaily{},
		&WeatherForecast{},
		&BookingSnapshot{},
		&WalkinForecast{},
		&StaffingPlan{},
		&ShiftAssignment{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		logging.Debug("Database connection initialized",
			"db_type", dbType,
			"connection", connectionInfo)
	}

	return nil
}
