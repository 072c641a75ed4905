// Package assets deserializes the artifacts produced by the training
// pipeline into their in-memory forms. Everything here is read-only after
// load; corrupt input fails at parse time, never at request time.
package assets

import (
	"encoding/json"
	"fmt"
	"math"
)

// ModelBundle is the scoring model exported at training time: a logistic
// model over the listed features plus the tuned decision threshold.
type ModelBundle struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    float64   `json:"threshold"`
	// Per-feature fill values used when a customer's cell is missing.
	// Optional; zero fill when absent.
	Imputes []float64 `json:"imputes,omitempty"`
}

// ParseModel decodes and validates a model bundle.
func ParseModel(b []byte) (*ModelBundle, error) {
	var m ModelBundle
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("model bundle has no features")
	}
	if len(m.Coefficients) != len(m.Features) {
		return nil, fmt.Errorf("model bundle: %d coefficients for %d features", len(m.Coefficients), len(m.Features))
	}
	if m.Imputes != nil && len(m.Imputes) != len(m.Features) {
		return nil, fmt.Errorf("model bundle: %d imputes for %d features", len(m.Imputes), len(m.Features))
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		m.Threshold = 0.5
	}
	return &m, nil
}

// Score returns the default probability for one feature vector aligned to
// m.Features. Missing values (NaN) take the impute fill.
func (m *ModelBundle) Score(row []float64) float64 {
	z := m.Intercept
	for i, v := range row {
		if i >= len(m.Coefficients) {
			break
		}
		if math.IsNaN(v) {
			if m.Imputes != nil {
				v = m.Imputes[i]
			} else {
				v = 0
			}
		}
		z += m.Coefficients[i] * v
	}
	return 1 / (1 + math.Exp(-z))
}
