// Package forecast predicts daily walk-in guest counts from a trained
// ridge regression artifact and engineered features.
package forecast

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skaiser/staffcast/internal/errors"
)

// ErrModelUnavailable indicates that no model artifact could be loaded.
// The forecasting phase fails but staffing can still run on reservation
// data alone.
var ErrModelUnavailable = errors.NewStd("walk-in model unavailable")

// ModelArtifact is a trained linear regression exported for inference.
// The feature column order defines the feature vector contract.
type ModelArtifact struct {
	Version      string    `json:"version"`
	FeatureCols  []string  `json:"feature_cols"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LoadArtifact reads a model artifact from a JSON file. The artifact is an
// explicit handle passed to the forecaster, never ambient state.
func LoadArtifact(path string) (*ModelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("%w: %w", ErrModelUnavailable, err)).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Context("path", path).
			Build()
	}

	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, errors.New(fmt.Errorf("%w: parsing artifact: %w", ErrModelUnavailable, err)).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Context("path", path).
			Build()
	}

	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Validate checks the internal consistency of the artifact.
func (m *ModelArtifact) Validate() error {
	if m.Version == "" {
		return errors.Newf("model artifact has no version").
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	if len(m.FeatureCols) == 0 {
		return errors.Newf("model artifact %s lists no feature columns", m.Version).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	if len(m.FeatureCols) != len(m.Coefficients) {
		return errors.Newf("model artifact %s has %d feature columns but %d coefficients",
			m.Version, len(m.FeatureCols), len(m.Coefficients)).
			Component("forecast").
			Category(errors.CategoryModelLoad).
			Build()
	}
	return nil
}
