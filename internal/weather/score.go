package weather

import (
	"math"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
)

// Score categories in business language.
const (
	CategoryPerfectPatio = "Perfect Patio"
	CategoryGood         = "Good"
	CategoryAverage      = "Average"
	CategoryCozyIndoor   = "Cozy Indoor"
	CategoryPoor         = "Poor"
	CategoryStorm        = "Storm"
)

// cozyIndoorTempMax marks days cold enough that rain pushes guests inside
// rather than away.
const cozyIndoorTempMax = 10.0

// ErrInvalidObservation indicates an observation with missing temperature
// or precipitation. Callers must supply complete observations or accept an
// unavailable score instead of guessing.
var ErrInvalidObservation = errors.NewStd("invalid weather observation")

// Score is the 1-5 weather quality rating with its business category.
type Score struct {
	Value    int
	Category string
}

// Scorer maps daily weather observations to a quality score.
// Scoring is pure: the same observation always yields the same score.
type Scorer struct {
	cfg conf.ScoreSettings
}

// NewScorer creates a scorer with the given policy settings.
func NewScorer(cfg conf.ScoreSettings) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score rates one observation on the 1-5 scale.
//
// Band edges come from configuration. Between the perfect and poor bands
// the score falls off linearly with temperature distance from the ideal
// band and with precipitation beyond the perfect threshold, so more rain
// or a worse temperature never raises the score.
func (s *Scorer) Score(obs Observation) (Score, error) {
	if math.IsNaN(obs.TempMax) || math.IsNaN(obs.PrecipSum) {
		return Score{}, errors.New(ErrInvalidObservation).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("date", obs.Date).
			Build()
	}

	cfg := &s.cfg
	storm := obs.WindSpeedMax > cfg.StormWindSpeed
	poorTemp := obs.TempMax < cfg.PoorTempBelow || obs.TempMax > cfg.PoorTempAbove
	poorRain := obs.PrecipSum > cfg.PoorRainAbove

	switch {
	case storm && (poorTemp || poorRain):
		return Score{Value: 1, Category: CategoryStorm}, nil
	case storm:
		return Score{Value: 2, Category: CategoryStorm}, nil
	case poorTemp || poorRain:
		return Score{Value: 2, Category: CategoryPoor}, nil
	}

	if obs.TempMax >= cfg.IdealTempMin && obs.TempMax <= cfg.IdealTempMax &&
		obs.PrecipSum < cfg.PerfectMaxRain && obs.CloudCover < cfg.PerfectMaxCloud {
		return Score{Value: 5, Category: CategoryPerfectPatio}, nil
	}

	var tempDist float64
	switch {
	case obs.TempMax < cfg.IdealTempMin:
		tempDist = cfg.IdealTempMin - obs.TempMax
	case obs.TempMax > cfg.IdealTempMax:
		tempDist = obs.TempMax - cfg.IdealTempMax
	}
	rainExcess := math.Max(0, obs.PrecipSum-cfg.PerfectMaxRain)

	penalty := cfg.TempFalloff*tempDist + cfg.RainFalloff*rainExcess
	if obs.CloudCover >= cfg.PerfectMaxCloud {
		penalty += 0.5
	}

	value := int(math.Round(5 - penalty))
	if value > 4 {
		value = 4
	}
	if value < 3 {
		value = 3
	}

	category := CategoryGood
	if value == 3 {
		category = CategoryAverage
		if obs.TempMax < cozyIndoorTempMax && obs.PrecipSum > cfg.PerfectMaxRain {
			category = CategoryCozyIndoor
		}
	}

	return Score{Value: value, Category: category}, nil
}
