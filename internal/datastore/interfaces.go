// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the
// operations the forecasting pipeline and the dashboard API depend on.
type Interface interface {
	Open() error
	Close() error

	// weather data
	SaveWeatherDaily(day *WeatherDaily) error
	GetWeatherDaily(date string) (WeatherDaily, error)
	SaveWeatherForecasts(forecasts []WeatherForecast) error
	LatestWeatherForecast(targetDate string) (*WeatherForecast, error)
	LatestWeatherForecastsBetween(start, end string) ([]WeatherForecast, error)

	// booking snapshots
	SaveBookingSnapshots(snapshots []BookingSnapshot) error
	LatestBookingSnapshot(targetDate string) (*BookingSnapshot, error)
	LatestBookingSnapshotsBetween(start, end string) ([]BookingSnapshot, error)
	WalkInHistoryBetween(start, end string) ([]BookingSnapshot, error)

	// walk-in forecasts
	SaveWalkinForecast(forecast *WalkinForecast) error
	WalkinForecastsForDate(targetDate string) ([]WalkinForecast, error)
	LatestWalkinForecastsBetween(start, end string) ([]WalkinForecast, error)

	// staffing plans
	SaveStaffingPlan(plan *StaffingPlan) error
	StaffingPlansForDate(date string) ([]StaffingPlan, error)
	LatestStaffingPlan(date string) (*StaffingPlan, error)
	LatestStaffingPlansBetween(start, end string) ([]StaffingPlan, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveWeatherDaily inserts an archived weather day. Historical rows are
// immutable, so an existing row for the same date is left untouched.
func (ds *DataStore) SaveWeatherDaily(day *WeatherDaily) error {
	var existing WeatherDaily
	err := ds.DB.Where("date = ?", day.Date).First(&existing).Error
	switch {
	case err == nil:
		// Row exists, keep it as recorded.
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := ds.DB.Create(day).Error; err != nil {
			return errors.New(fmt.Errorf("saving weather day: %w", err)).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("date", day.Date).
				Build()
		}
		return nil
	default:
		return errors.New(fmt.Errorf("checking weather day: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("date", day.Date).
			Build()
	}
}

// GetWeatherDaily retrieves an archived weather day by date.
func (ds *DataStore) GetWeatherDaily(date string) (WeatherDaily, error) {
	var day WeatherDaily
	if err := ds.DB.Where("date = ?", date).First(&day).Error; err != nil {
		return WeatherDaily{}, fmt.Errorf("getting weather day %s: %w", date, err)
	}
	return day, nil
}

// SaveWeatherForecasts appends a batch of forecast rows in one transaction.
func (ds *DataStore) SaveWeatherForecasts(forecasts []WeatherForecast) error {
	if len(forecasts) == 0 {
		return nil
	}
	if err := ds.DB.Create(&forecasts).Error; err != nil {
		return errors.New(fmt.Errorf("saving weather forecasts: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("count", len(forecasts)).
			Build()
	}
	return nil
}

// LatestWeatherForecast returns the newest forecast row for a target date.
func (ds *DataStore) LatestWeatherForecast(targetDate string) (*WeatherForecast, error) {
	var forecast WeatherForecast
	err := ds.DB.Where("forecast_date = ?", targetDate).
		Order("created_at DESC").
		First(&forecast).Error
	if err != nil {
		return nil, fmt.Errorf("getting latest weather forecast for %s: %w", targetDate, err)
	}
	return &forecast, nil
}

// LatestWeatherForecastsBetween returns the newest forecast row per target
// date within the inclusive date range.
func (ds *DataStore) LatestWeatherForecastsBetween(start, end string) ([]WeatherForecast, error) {
	var forecasts []WeatherForecast
	// Newest row per target date: rows whose id matches the max id of the
	// newest created_at for that date.
	subQuery := ds.DB.Model(&WeatherForecast{}).
		Select("MAX(id)").
		Where("forecast_date BETWEEN ? AND ?", start, end).
		Group("forecast_date")
	err := ds.DB.Where("id IN (?)", subQuery).
		Order("forecast_date ASC").
		Find(&forecasts).Error
	if err != nil {
		return nil, fmt.Errorf("getting weather forecasts between %s and %s: %w", start, end, err)
	}
	return forecasts, nil
}

// SaveBookingSnapshots appends a batch of booking snapshots.
func (ds *DataStore) SaveBookingSnapshots(snapshots []BookingSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if err := ds.DB.Create(&snapshots).Error; err != nil {
		return errors.New(fmt.Errorf("saving booking snapshots: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("count", len(snapshots)).
			Build()
	}
	return nil
}

// LatestBookingSnapshot returns the newest snapshot for a target date.
func (ds *DataStore) LatestBookingSnapshot(targetDate string) (*BookingSnapshot, error) {
	var snapshot BookingSnapshot
	err := ds.DB.Where("target_date = ?", targetDate).
		Order("snapshot_date DESC, id DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, fmt.Errorf("getting booking snapshot for %s: %w", targetDate, err)
	}
	return &snapshot, nil
}

// LatestBookingSnapshotsBetween returns the newest snapshot per target date
// within the inclusive date range.
func (ds *DataStore) LatestBookingSnapshotsBetween(start, end string) ([]BookingSnapshot, error) {
	var snapshots []BookingSnapshot
	subQuery := ds.DB.Model(&BookingSnapshot{}).
		Select("MAX(id)").
		Where("target_date BETWEEN ? AND ?", start, end).
		Group("target_date")
	err := ds.DB.Where("id IN (?)", subQuery).
		Order("target_date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("getting booking snapshots between %s and %s: %w", start, end, err)
	}
	return snapshots, nil
}

// WalkInHistoryBetween returns the newest snapshot per past target date so
// callers can compute rolling walk-in averages from recorded history.
func (ds *DataStore) WalkInHistoryBetween(start, end string) ([]BookingSnapshot, error) {
	snapshots, err := ds.LatestBookingSnapshotsBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("getting walk-in history: %w", err)
	}
	return snapshots, nil
}

// SaveWalkinForecast appends one walk-in forecast snapshot.
func (ds *DataStore) SaveWalkinForecast(forecast *WalkinForecast) error {
	if err := ds.DB.Create(forecast).Error; err != nil {
		return errors.New(fmt.Errorf("saving walk-in forecast: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("target_date", forecast.TargetDate).
			Context("run_id", forecast.RunID).
			Build()
	}
	return nil
}

// WalkinForecastsForDate returns every forecast snapshot recorded for a
// target date, oldest first, so forecast drift can be inspected.
func (ds *DataStore) WalkinForecastsForDate(targetDate string) ([]WalkinForecast, error) {
	var forecasts []WalkinForecast
	err := ds.DB.Where("target_date = ?", targetDate).
		Order("run_at ASC").
		Find(&forecasts).Error
	if err != nil {
		return nil, fmt.Errorf("getting walk-in forecasts for %s: %w", targetDate, err)
	}
	return forecasts, nil
}

// LatestWalkinForecastsBetween returns the newest forecast per target date
// within the inclusive date range.
func (ds *DataStore) LatestWalkinForecastsBetween(start, end string) ([]WalkinForecast, error) {
	var forecasts []WalkinForecast
	subQuery := ds.DB.Model(&WalkinForecast{}).
		Select("MAX(id)").
		Where("target_date BETWEEN ? AND ?", start, end).
		Group("target_date")
	err := ds.DB.Where("id IN (?)", subQuery).
		Order("target_date ASC").
		Find(&forecasts).Error
	if err != nil {
		return nil, fmt.Errorf("getting walk-in forecasts between %s and %s: %w", start, end, err)
	}
	return forecasts, nil
}

// SaveStaffingPlan stores a plan and its shift assignments as a single
// transaction so a failed run never leaves a partially committed plan.
func (ds *DataStore) SaveStaffingPlan(plan *StaffingPlan) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		assignments := plan.Assignments
		plan.Assignments = nil

		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("saving staffing plan: %w", err)
		}

		for i := range assignments {
			assignments[i].StaffingPlanID = plan.ID
			if err := tx.Create(&assignments[i]).Error; err != nil {
				return fmt.Errorf("saving shift assignment: %w", err)
			}
		}

		plan.Assignments = assignments
		return nil
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("date", plan.Date).
			Context("run_id", plan.RunID).
			Build()
	}
	return nil
}

// StaffingPlansForDate returns every plan snapshot recorded for a date,
// oldest first.
func (ds *DataStore) StaffingPlansForDate(date string) ([]StaffingPlan, error) {
	var plans []StaffingPlan
	err := ds.DB.Preload("Assignments").
		Where("date = ?", date).
		Order("run_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("getting staffing plans for %s: %w", date, err)
	}
	return plans, nil
}

// LatestStaffingPlan returns the newest plan for a date including its
// shift assignments.
func (ds *DataStore) LatestStaffingPlan(date string) (*StaffingPlan, error) {
	var plan StaffingPlan
	err := ds.DB.Preload("Assignments").
		Where("date = ?", date).
		Order("run_at DESC, id DESC").
		First(&plan).Error
	if err != nil {
		return nil, fmt.Errorf("getting latest staffing plan for %s: %w", date, err)
	}
	return &plan, nil
}

// LatestStaffingPlansBetween returns the newest plan per date within the
// inclusive date range.
func (ds *DataStore) LatestStaffingPlansBetween(start, end string) ([]StaffingPlan, error) {
	var plans []StaffingPlan
	subQuery := ds.DB.Model(&StaffingPlan{}).
		Select("MAX(id)").
		Where("date BETWEEN ? AND ?", start, end).
		Group("date")
	err := ds.DB.Preload("Assignments").
		Where("id IN (?)", subQuery).
		Order("date ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("getting staffing plans between %s and %s: %w", start, end, err)
	}
	return plans, nil
}
