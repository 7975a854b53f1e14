// conf/validate.go settings validation
package conf

import (
	"fmt"
	"strings"
	"time"
)

// ValidateSettings checks the loaded settings for values that would make the
// engine misbehave in ways that are hard to diagnose at runtime.
func ValidateSettings(settings *Settings) error {
	var errs []string

	if err := validateRestaurant(&settings.Restaurant); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWeatherScore(&settings.Weather.Score); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateForecast(&settings.Forecast); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStaffing(&settings.Staffing); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRestaurant(r *RestaurantSettings) error {
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("restaurant latitude must be between -90 and 90, got %f", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("restaurant longitude must be between -180 and 180, got %f", r.Longitude)
	}
	if r.Capacity < 0 {
		return fmt.Errorf("restaurant capacity cannot be negative, got %d", r.Capacity)
	}
	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return fmt.Errorf("invalid restaurant timezone %q: %w", r.Timezone, err)
		}
	}
	return nil
}

func validateWeatherScore(s *ScoreSettings) error {
	if s.IdealTempMin >= s.IdealTempMax {
		return fmt.Errorf("weather score ideal temperature band is empty: min %f >= max %f", s.IdealTempMin, s.IdealTempMax)
	}
	if s.PoorTempBelow >= s.IdealTempMin {
		return fmt.Errorf("weather score poor temperature threshold %f overlaps ideal band start %f", s.PoorTempBelow, s.IdealTempMin)
	}
	if s.PoorTempAbove <= s.IdealTempMax {
		return fmt.Errorf("weather score poor temperature threshold %f overlaps ideal band end %f", s.PoorTempAbove, s.IdealTempMax)
	}
	if s.TempFalloff < 0 || s.RainFalloff < 0 {
		return fmt.Errorf("weather score falloffs must be non-negative")
	}
	return nil
}

func validateForecast(f *ForecastSettings) error {
	if f.Horizon < 1 {
		return fmt.Errorf("forecast horizon must be at least 1 day, got %d", f.Horizon)
	}
	if f.Band.BaseWidth <= 0 {
		// A zero-width band would present point estimates as certain.
		return fmt.Errorf("forecast band base width must be positive, got %f", f.Band.BaseWidth)
	}
	if f.Band.Growth < 0 {
		return fmt.Errorf("forecast band growth must be non-negative, got %f", f.Band.Growth)
	}
	if n := len(f.Neutral.MonthlyTempMax); n != 0 && n != 12 {
		return fmt.Errorf("forecast neutral monthly temperatures must list 12 months, got %d", n)
	}
	return nil
}

func validateStaffing(s *StaffingSettings) error {
	var shareSum float64
	for i := range s.Buckets {
		b := &s.Buckets[i]
		if b.LoadShare < 0 {
			return fmt.Errorf("staffing bucket %q has negative load share", b.Name)
		}
		shareSum += b.LoadShare
	}
	if len(s.Buckets) > 0 && (shareSum < 0.99 || shareSum > 1.01) {
		return fmt.Errorf("staffing bucket load shares must sum to 1.0, got %.2f", shareSum)
	}
	if s.Shifts.MinSplitHours < 0 {
		return fmt.Errorf("minimum split shift length cannot be negative")
	}
	for name, role := range s.Roles {
		if role.Min < 0 {
			return fmt.Errorf("role %q minimum headcount cannot be negative", name)
		}
		if role.Max > 0 && role.Max < role.Min {
			return fmt.Errorf("role %q headcount cap %d is below its minimum %d", name, role.Max, role.Min)
		}
	}
	return nil
}
