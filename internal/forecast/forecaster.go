package forecast

import (
	"math"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/errors"
)

// Prediction is one walk-in guest forecast for a target date.
type Prediction struct {
	Point         float64
	Lower         float64
	Upper         float64
	HorizonDays   int
	ModelVersion  string
	LowConfidence bool
}

// Forecaster predicts daily walk-in counts from a linear model artifact.
// The model handle is injected at construction; there is no ambient model
// state.
type Forecaster struct {
	model *ModelArtifact
	band  conf.BandSettings
}

// New creates a forecaster around a loaded model artifact.
func New(model *ModelArtifact, band conf.BandSettings) *Forecaster {
	return &Forecaster{model: model, band: band}
}

// Version returns the loaded model's version identifier.
func (f *Forecaster) Version() string {
	if f == nil || f.model == nil {
		return ""
	}
	return f.model.Version
}

// BandWidth is the uncertainty band half-width at the given horizon.
// Width grows linearly with the horizon and is never zero, so a point
// estimate is never presented as certain.
func (f *Forecaster) BandWidth(horizonDays int) float64 {
	if horizonDays < 0 {
		horizonDays = 0
	}
	return f.band.BaseWidth * (1 + f.band.Growth*float64(horizonDays))
}

// Predict computes the walk-in forecast for one target date.
func (f *Forecaster) Predict(features *FeatureSet, horizonDays int) (*Prediction, error) {
	if f == nil || f.model == nil {
		return nil, errors.New(ErrModelUnavailable).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}

	vec, err := features.Vector(f.model.FeatureCols)
	if err != nil {
		return nil, err
	}

	sum := f.model.Intercept
	for i, coef := range f.model.Coefficients {
		sum += coef * vec[i]
	}

	// Walk-in counts cannot be negative.
	point := math.Max(0, math.Round(sum))
	width := f.BandWidth(horizonDays)

	return &Prediction{
		Point:         point,
		Lower:         math.Max(0, point-width),
		Upper:         point + width,
		HorizonDays:   horizonDays,
		ModelVersion:  f.model.Version,
		LowConfidence: features.LowConfidence,
	}, nil
}
