package assets

import (
	"encoding/json"
	"fmt"
)

// Histogram is a precomputed per-feature distribution snapshot.
type Histogram struct {
	BinEdges []float64 `json:"bin_edges"`
	Counts   []int64   `json:"counts"`
}

// ParseHistogram decodes one distribution snapshot.
func ParseHistogram(b []byte) (*Histogram, error) {
	var h Histogram
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, fmt.Errorf("decode histogram: %w", err)
	}
	if len(h.Counts) == 0 {
		return nil, fmt.Errorf("histogram has no bins")
	}
	if len(h.BinEdges) != len(h.Counts)+1 {
		return nil, fmt.Errorf("histogram: %d edges for %d bins", len(h.BinEdges), len(h.Counts))
	}
	return &h, nil
}
