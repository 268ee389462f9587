package analytics

import (
	"encoding/json"
	"fmt"
	"os"

	"RegimeWatch/internal/domain/models"
)

// ModelMetadata describes the trained classifier: window dimensions, feature
// ordering, the output-index-to-regime mapping, and the per-feature standard
// scaler. Loaded once at process start and never recomputed.
type ModelMetadata struct {
	TimeSteps int            `json:"time_steps"`
	Features  []string       `json:"features"`
	RegimeMap map[string]int `json:"regime_map"`
	Scaler    ScalerParams   `json:"scaler"`
}

// ScalerParams holds the per-feature standardization vectors.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadMetadata reads and validates model metadata from a JSON file.
func LoadMetadata(path string) (*ModelMetadata, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model metadata: %w", err)
	}

	var m ModelMetadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model metadata: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate model metadata: %w", err)
	}
	return &m, nil
}

// Validate checks internal consistency of the metadata.
func (m *ModelMetadata) Validate() error {
	if m.TimeSteps <= 0 {
		return fmt.Errorf("time_steps must be positive, got %d", m.TimeSteps)
	}
	if len(m.Features) == 0 {
		return fmt.Errorf("features cannot be empty")
	}
	if len(m.Scaler.Mean) != len(m.Features) || len(m.Scaler.Scale) != len(m.Features) {
		return fmt.Errorf("scaler vectors must match feature count %d (mean=%d scale=%d)",
			len(m.Features), len(m.Scaler.Mean), len(m.Scaler.Scale))
	}
	if len(m.RegimeMap) == 0 {
		return fmt.Errorf("regime_map cannot be empty")
	}

	seen := make(map[int]bool, len(m.RegimeMap))
	for name, idx := range m.RegimeMap {
		if _, ok := models.ParseRegime(name); !ok {
			return fmt.Errorf("regime_map contains unknown regime %q", name)
		}
		if idx < 0 || idx >= len(m.RegimeMap) {
			return fmt.Errorf("regime_map index %d for %q out of range", idx, name)
		}
		if seen[idx] {
			return fmt.Errorf("regime_map index %d assigned twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

// IndexToRegime returns the model-output-index to regime label mapping.
func (m *ModelMetadata) IndexToRegime() []models.Regime {
	out := make([]models.Regime, len(m.RegimeMap))
	for name, idx := range m.RegimeMap {
		out[idx] = models.Regime(name)
	}
	return out
}
