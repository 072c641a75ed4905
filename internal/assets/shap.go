package assets

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Explanation holds precomputed SHAP attributions: one vector per customer,
// aligned to FeatureNames (the model's column order).
type Explanation struct {
	FeatureNames []string
	BaseValue    float64
	rows         map[int64][]float64
}

type explanationJSON struct {
	FeatureNames []string             `json:"feature_names"`
	BaseValue    float64              `json:"base_value"`
	Rows         map[string][]float64 `json:"rows"`
}

// ParseExplanation decodes a SHAP explanation object and validates that
// every attribution vector matches the feature count.
func ParseExplanation(b []byte) (*Explanation, error) {
	var raw explanationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode shap explanation: %w", err)
	}
	if len(raw.FeatureNames) == 0 {
		return nil, fmt.Errorf("shap explanation has no feature names")
	}
	if len(raw.Rows) == 0 {
		return nil, fmt.Errorf("shap explanation has no rows")
	}
	e := &Explanation{
		FeatureNames: raw.FeatureNames,
		BaseValue:    raw.BaseValue,
		rows:         make(map[int64][]float64, len(raw.Rows)),
	}
	for k, v := range raw.Rows {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("shap explanation: bad customer id %q", k)
		}
		if len(v) != len(raw.FeatureNames) {
			return nil, fmt.Errorf("shap explanation: customer %d has %d values for %d features", id, len(v), len(raw.FeatureNames))
		}
		e.rows[id] = v
	}
	return e, nil
}

// Vector returns the attribution vector for one customer.
// Callers must not mutate the returned slice.
func (e *Explanation) Vector(id int64) ([]float64, bool) {
	v, ok := e.rows[id]
	return v, ok
}

// Missing returns the subset of ids with no attribution vector. A non-empty
// result means the coverage invariant does not hold for this generation.
func (e *Explanation) Missing(ids []int64) []int64 {
	var out []int64
	for _, id := range ids {
		if _, ok := e.rows[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
