// model.go this code defines the data model for the application
package datastore

import "time"

// WeatherDaily represents one archived day of observed weather.
// Historical rows never mutate once recorded.
type WeatherDaily struct {
	ID            uint   `gorm:"primaryKey"`
	Date          string `gorm:"uniqueIndex:idx_weatherdaily_date"`
	TempMax       float64
	TempMin       float64
	PrecipSum     float64
	PrecipHours   float64
	SunshineHours float64
	WindSpeedMax  float64
	CloudCover    float64
	WeatherCode   int
	Source        string
	CreatedAt     time.Time
}

// WeatherForecast represents one forecast row for a target date.
// Rows are append-only; readers take the newest row per target date
// so that forecast updates win without mutating history.
type WeatherForecast struct {
	ID            uint   `gorm:"primaryKey"`
	ForecastDate  string `gorm:"index:idx_weatherforecast_target"`
	DaysAhead     int
	TempMax       float64
	TempMin       float64
	PrecipSum     float64
	PrecipProb    float64
	SunshineHours float64
	WindSpeedMax  float64
	CloudCover    float64
	WeatherCode   int
	CreatedAt     time.Time `gorm:"index:idx_weatherforecast_created"`
}

// BookingSnapshot represents the daily booking state for a target date as
// seen on the snapshot date. Snapshots accumulate over time so demand
// velocity can be measured; they are never updated in place.
type BookingSnapshot struct {
	ID              uint   `gorm:"primaryKey"`
	SnapshotDate    string `gorm:"index:idx_bookingsnapshot_snapshot"`
	TargetDate      string `gorm:"index:idx_bookingsnapshot_target"`
	Reservations    int
	ConfirmedCovers int
	CancelledCovers int
	OnlineCovers    int
	InternalCovers  int
	WalkInCovers    int
	CreatedAt       time.Time
}

// WalkinForecast represents one walk-in guest prediction snapshot for a
// target date. Multiple rows per target date accumulate across pipeline
// runs, keyed by run ID; rows are immutable once created.
type WalkinForecast struct {
	ID            uint   `gorm:"primaryKey"`
	RunID         string `gorm:"index:idx_walkinforecast_run"`
	RunAt         time.Time
	TargetDate    string `gorm:"index:idx_walkinforecast_target"`
	HorizonDays   int
	Prediction    float64
	LowerBound    float64
	UpperBound    float64
	ModelVersion  string
	LowConfidence bool
}

// StaffingPlan represents one staffing recommendation snapshot for a date.
// A new pipeline run appends a new plan; the newest plan per date wins.
type StaffingPlan struct {
	ID               uint   `gorm:"primaryKey"`
	RunID            string `gorm:"index:idx_staffingplan_run"`
	RunAt            time.Time
	Date             string `gorm:"index:idx_staffingplan_date"`
	GuestLoad        int
	ReservedCovers   int
	PredictedWalkins int
	TotalLaborHours  float64
	Flags            string            // comma-separated plan flags, e.g. "no_ai_forecast"
	Assignments      []ShiftAssignment `gorm:"foreignKey:StaffingPlanID;constraint:OnDelete:CASCADE"`
}

// ShiftAssignment represents one shift of a staffing plan.
type ShiftAssignment struct {
	ID             uint   `gorm:"primaryKey"`
	StaffingPlanID uint   `gorm:"index;not null"`
	Role           string `gorm:"index"`
	ShiftType      string `gorm:"type:varchar(8)"` // "FULL" or "SPLIT"
	StartTime      string // "HH:MM"
	EndTime        string // "HH:MM"
	Headcount      int
}

// Copy creates a deep copy of the ShiftAssignment struct
func (sa ShiftAssignment) Copy() ShiftAssignment {
	return ShiftAssignment{
		ID:             sa.ID,
		StaffingPlanID: sa.StaffingPlanID,
		Role:           sa.Role,
		ShiftType:      sa.ShiftType,
		StartTime:      sa.StartTime,
		EndTime:        sa.EndTime,
		Headcount:      sa.Headcount,
	}
}
