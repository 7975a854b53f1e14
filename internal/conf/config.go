// config.go: This file contains the configuration for the staffcast application. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // Path to the log file
	Rotation RotationType // Type of log rotation
	MaxSize  int64        // Max size in bytes for RotationSize
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of this staffcast node
	Log  LogConfig // main log file settings
}

// RestaurantSettings describes the location the engine plans for.
type RestaurantSettings struct {
	Name           string   // display name of the restaurant
	Latitude       float64  // location latitude for weather lookups
	Longitude      float64  // location longitude for weather lookups
	Timezone       string   // IANA timezone, e.g. "Europe/Berlin"
	Capacity       int      // maximum covers per day, used for utilization
	HolidayRegions []string // holiday calendars to consult: "de", "de-sh", "de-hh", "dk"
}

// ScoreSettings parameterizes the 1-5 weather quality score.
// The interpolation between the perfect and poor bands is policy, not physics,
// so every boundary is configurable.
type ScoreSettings struct {
	IdealTempMin    float64 // lower bound of the ideal patio temperature band (deg C)
	IdealTempMax    float64 // upper bound of the ideal patio temperature band (deg C)
	PerfectMaxRain  float64 // max precipitation for a perfect day (mm)
	PerfectMaxCloud float64 // max cloud cover for a perfect day (percent)
	PoorTempBelow   float64 // temperatures below this are a poor day (deg C)
	PoorTempAbove   float64 // temperatures above this are a poor day (deg C)
	PoorRainAbove   float64 // precipitation above this is a poor day (mm)
	StormWindSpeed  float64 // wind speed above this is a storm (km/h)
	TempFalloff     float64 // score penalty per deg C outside the ideal band
	RainFalloff     float64 // score penalty per mm of precipitation
}

// BandSettings parameterizes the uncertainty band of walk-in forecasts.
// Width at horizon h is BaseWidth * (1 + Growth*h), so the band is never zero
// and widens monotonically with the horizon.
type BandSettings struct {
	BaseWidth float64 // band half-width at horizon zero, in guests
	Growth    float64 // relative widening per day of horizon
}

// NeutralWeather defines the documented fallback used when weather data is
// missing for a target date. Forecasts built on these values are flagged
// low-confidence.
type NeutralWeather struct {
	Score          int       // neutral weather score
	MonthlyTempMax []float64 // climatological mean max temperature per month, Jan..Dec
	CloudCover     float64   // neutral cloud cover percent
	WindSpeed      float64   // neutral wind speed km/h
}

// ForecastSettings contains settings for the walk-in forecaster.
type ForecastSettings struct {
	Horizon   int            // rolling horizon in days
	ModelPath string         // path to the regression model artifact
	Band      BandSettings   // uncertainty band parameters
	Neutral   NeutralWeather // fallback weather used when observations are missing
}

// OpenMeteoSettings contains settings for the Open-Meteo integration.
type OpenMeteoSettings struct {
	Endpoint        string // forecast API endpoint
	ArchiveEndpoint string // historical archive API endpoint
	ForecastDays    int    // number of days to request per forecast sync
}

// WeatherSettings contains all weather-related settings.
type WeatherSettings struct {
	Provider  string            // "openmeteo"
	Debug     bool              // true to enable debug mode
	OpenMeteo OpenMeteoSettings // Open-Meteo integration settings
	Score     ScoreSettings     // weather score policy
}

// BookingSyncSettings contains settings for the reservation platform sync.
type BookingSyncSettings struct {
	Endpoint     string // GraphQL endpoint of the reservation platform
	LocationID   string // location identifier at the platform
	Token        string // account token for API access
	HorizonDays  int    // how far ahead to snapshot bookings
	CacheMinutes int    // TTL for cached API responses, 0 disables caching
}

// BucketSettings defines one time bucket of the operating day.
type BucketSettings struct {
	Name      string  // bucket name, e.g. "lunch"
	Start     string  // start time "HH:MM"
	End       string  // end time "HH:MM"
	LoadShare float64 // share of the day's guest load landing in this bucket
}

// ShiftSettings constrains the shapes of generated shifts.
type ShiftSettings struct {
	FullStart     string  // start of a full shift "HH:MM"
	FullEnd       string  // end of a full shift "HH:MM"
	MinSplitHours float64 // minimum length of a split/peak shift
}

// RoleSettings parameterizes one role's staffing policy.
type RoleSettings struct {
	Min              int            // minimum headcount whenever the restaurant is open
	Max              int            // hard headcount cap, 0 means unlimited
	StepThreshold    int            // guest load at which stepwise scaling starts (pizza)
	StepSize         int            // additional guests per extra head above the threshold (pizza)
	Baseline         int            // weekday baseline headcount (bar)
	LowGuestMax      int            // guest load below which the low baseline applies (bar)
	WeekendPressure  int            // weekend guest load above which an extra head is added (bar)
	CoversPerServer  int            // guests per server (service)
	WeekdayOverrides map[string]int // per-weekday covers-per-server overrides, keys "monday".."sunday"
	GuestsPerHead    int            // proportional scaling divisor (kitchen, runner)
}

// StaffingSettings contains the full staffing policy configuration.
type StaffingSettings struct {
	Buckets []BucketSettings        // time buckets of the operating day
	Shifts  ShiftSettings           // shift shape constraints
	Roles   map[string]RoleSettings // per-role policy parameters, keys "kitchen", "pizza", "bar", "service", "runner"
}

// SQLiteSettings contains settings for the SQLite database.
type SQLiteSettings struct {
	Enabled bool   // true to enable the SQLite datastore
	Path    string // path to the database file
}

// MySQLSettings contains settings for the MySQL database.
type MySQLSettings struct {
	Enabled  bool   // true to enable the MySQL datastore
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// OutputSettings contains the datastore configuration.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// WebServerSettings contains settings for the dashboard API server.
type WebServerSettings struct {
	Enabled bool      // true to enable the API server
	Port    string    // port to listen on
	Log     LogConfig // API server log settings
}

// Settings contains all application settings
type Settings struct {
	Debug bool // true to enable debug mode

	Version   string // build version, set by the build process
	BuildDate string // build date, set by the build process

	Main       MainSettings
	Restaurant RestaurantSettings
	Weather    WeatherSettings
	Booking    BookingSyncSettings
	Forecast   ForecastSettings
	Staffing   StaffingSettings
	Output     OutputSettings
	WebServer  WebServerSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	// Create a new settings struct
	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	// Save settings instance
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Get OS specific config paths
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	// Assign config paths to Viper
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Read configuration file
	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	// Create directories for config file
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	// Write default config file
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
