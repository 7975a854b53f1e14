package forecast

import (
	"math"
	"strconv"
	"time"

	"github.com/skaiser/staffcast/internal/calendar"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
	"github.com/skaiser/staffcast/internal/weather"
)

// ErrFeatureSchemaMismatch indicates that the loaded model expects a
// feature the builder does not produce. Failing hard beats silently
// predicting from a wrong vector.
var ErrFeatureSchemaMismatch = errors.NewStd("feature schema mismatch")

// defaultHumidity approximates coastal humidity; the forecast source has
// no humidity column.
const defaultHumidity = 75.0

// Thresholds for the binary weather regime features.
const (
	cozyTempMax     = 10.0 // below this with rain, guests prefer indoors
	cozyRainMin     = 2.0
	touristTempMin  = 20.0 // above this with sun, tourist traffic picks up
	touristSunHours = 5.0
)

// Inputs collects everything known about one target date before feature
// engineering.
type Inputs struct {
	Date time.Time
	Day  calendar.DayInfo

	// Weather is nil when no observation or forecast is available; the
	// builder then degrades to the configured neutral weather.
	Weather *weather.Observation

	ReservedCovers    int
	Reservations7dAvg float64
	Walkin7dAvg       float64
}

// FeatureSet holds engineered features by name. The model's feature column
// list selects and orders them into the final vector.
type FeatureSet struct {
	values map[string]float64

	// LowConfidence is set when the features were built on neutral
	// fallback weather instead of real data.
	LowConfidence bool
}

// Value returns a single feature by name.
func (fs *FeatureSet) Value(name string) (float64, bool) {
	v, ok := fs.values[name]
	return v, ok
}

// Vector assembles the feature vector in the exact order the model
// expects. A feature the builder cannot produce fails the whole vector.
func (fs *FeatureSet) Vector(cols []string) ([]float64, error) {
	vec := make([]float64, len(cols))
	for i, col := range cols {
		v, ok := fs.values[col]
		if !ok {
			return nil, errors.New(ErrFeatureSchemaMismatch).
				Component("forecast").
				Category(errors.CategoryFeatureSchema).
				Context("feature", col).
				Build()
		}
		vec[i] = v
	}
	return vec, nil
}

// FeatureBuilder engineers the model's input features for a target date.
type FeatureBuilder struct {
	scorer  *weather.Scorer
	neutral conf.NeutralWeather
}

// NewFeatureBuilder creates a feature builder.
func NewFeatureBuilder(scorer *weather.Scorer, neutral conf.NeutralWeather) *FeatureBuilder {
	return &FeatureBuilder{scorer: scorer, neutral: neutral}
}

// neutralObservation builds the documented fallback weather for a date:
// the climatological mean temperature for its month and neutral cloud and
// wind values.
func (b *FeatureBuilder) neutralObservation(date time.Time) weather.Observation {
	tempMax := 15.0
	if len(b.neutral.MonthlyTempMax) == 12 {
		tempMax = b.neutral.MonthlyTempMax[int(date.Month())-1]
	}
	return weather.Observation{
		Date:         date.Format("2006-01-02"),
		TempMax:      tempMax,
		TempMin:      tempMax - 5,
		CloudCover:   b.neutral.CloudCover,
		WindSpeedMax: b.neutral.WindSpeed,
	}
}

// Build engineers all features for one target date. Missing or invalid
// weather degrades to neutral values and marks the set low-confidence.
func (b *FeatureBuilder) Build(in Inputs) *FeatureSet {
	fs := &FeatureSet{values: make(map[string]float64, 64)}

	obs := in.Weather
	scoreValue := float64(b.neutral.Score)
	if obs == nil {
		neutral := b.neutralObservation(in.Date)
		obs = &neutral
		fs.LowConfidence = true
	} else if score, err := b.scorer.Score(*obs); err != nil {
		neutral := b.neutralObservation(in.Date)
		obs = &neutral
		fs.LowConfidence = true
	} else {
		scoreValue = float64(score.Value)
	}

	precipHours := obs.PrecipHours
	if precipHours == 0 && obs.PrecipSum > 0 {
		// Forecasts carry no precipitation hours; estimate at 2 mm/h,
		// capped at a full day.
		precipHours = math.Min(24, obs.PrecipSum*2)
	}

	set := func(name string, v float64) { fs.values[name] = v }
	setBool := func(name string, v bool) {
		if v {
			fs.values[name] = 1
		} else {
			fs.values[name] = 0
		}
	}

	// Weather
	set("temp_max", obs.TempMax)
	set("temp_min", obs.TempMin)
	set("precipitation_sum", obs.PrecipSum)
	set("precipitation_hours", precipHours)
	set("humidity", defaultHumidity)
	set("sunshine_duration", obs.SunshineHours)
	set("windspeed_max", obs.WindSpeedMax)
	set("cloudcover_mean", obs.CloudCover)
	set("weather_score", scoreValue)

	setBool("is_cozy_weather", obs.TempMax < cozyTempMax && obs.PrecipSum > cozyRainMin)
	setBool("is_tourist_weather", obs.TempMax > touristTempMin && obs.SunshineHours > touristSunHours)

	// Bookings
	set("reservations_people", float64(in.ReservedCovers))
	set("reservations_7d_avg", in.Reservations7dAvg)
	set("walkin_7d_avg", in.Walkin7dAvg)

	// Date
	weekday := in.Day.Weekday
	month := int(in.Date.Month())
	set("weekday", float64(weekday))
	set("month", float64(month))
	setBool("is_weekend", in.Day.IsWeekend)
	set("month_sin", math.Sin(float64(month-1)*(2*math.Pi/12)))
	set("month_cos", math.Cos(float64(month-1)*(2*math.Pi/12)))

	// Monday (weekday 0) is the dropped one-hot reference.
	for i := 1; i <= 6; i++ {
		setBool("wd_"+strconv.Itoa(i), weekday == i)
	}

	// Holidays
	setBool("is_holiday_de", in.Day.HolidayDE)
	setBool("is_holiday_sh", in.Day.HolidaySH)
	setBool("is_holiday_hh", in.Day.HolidayHH)
	setBool("is_holiday_dk", in.Day.HolidayDK)
	// School vacation data has no reliable source yet; the model was
	// trained with these columns zeroed.
	set("is_ferien_sh", 0)
	set("is_ferien_hh", 0)
	setBool("next_day_holiday", in.Day.DayBeforeHoliday)
	setBool("prev_day_holiday", in.Day.DayAfterHoliday)
	setBool("day_before_holiday", in.Day.DayBeforeHoliday)
	setBool("day_after_holiday", in.Day.DayAfterHoliday)
	setBool("bridge_day", in.Day.BridgeDay)

	// Squares
	for _, name := range []string{
		"temp_max", "temp_min", "precipitation_sum", "precipitation_hours",
		"humidity", "sunshine_duration", "windspeed_max", "cloudcover_mean",
	} {
		set(name+"_sq", fs.values[name]*fs.values[name])
	}

	// Interactions
	set("temp_x_weekend", fs.values["temp_max"]*fs.values["is_weekend"])
	set("reservations_x_weekend", fs.values["reservations_people"]*fs.values["is_weekend"])
	set("reservations_x_temp", fs.values["reservations_people"]*fs.values["temp_max"])
	set("rain_x_clouds", fs.values["precipitation_sum"]*fs.values["cloudcover_mean"])

	return fs
}
