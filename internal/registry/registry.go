// Package registry holds the single loaded generation of model and data
// artifacts. One writer (bootstrap) publishes exactly once; after that the
// registry is logically frozen and readers share the generation without
// further locking concerns.
package registry

import (
	"errors"
	"sync"
	"time"

	"riskd/internal/assets"
	"riskd/pkg/types"
)

// ErrNotReady is returned by Current before a generation is published.
var ErrNotReady = errors.New("no generation published")

// ErrAlreadyPublished is returned when Publish is called twice.
var ErrAlreadyPublished = errors.New("generation already published")

// Generation is one complete, internally consistent set of loaded
// artifacts. All fields are immutable after Publish; optional artifacts
// that failed to load are nil (or absent from Distributions).
type Generation struct {
	ID       string
	LoadedAt time.Time

	Model *assets.ModelBundle
	Table *assets.FeatureTable

	// Optional artifacts; nil/absent when degraded.
	Shap          *assets.Explanation
	GlobalImage   []byte
	Distributions map[string]*assets.Histogram

	// Scores for every customer in Table, computed during bootstrap so
	// request handling never runs the model.
	Scores map[int64]float64

	// Load outcome per artifact, for /status.
	Artifacts []types.ArtifactHealth
}

// Registry exposes atomic access to the current generation.
type Registry struct {
	mu  sync.RWMutex
	gen *Generation
}

// New returns an empty, unpublished registry.
func New() *Registry { return &Registry{} }

// Publish installs g as the current generation. It succeeds exactly once;
// readers never observe a partially assigned generation.
func (r *Registry) Publish(g *Generation) error {
	if g == nil {
		return errors.New("nil generation")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != nil {
		return ErrAlreadyPublished
	}
	r.gen = g
	return nil
}

// Current returns the published generation, or ErrNotReady before publish.
// Never blocks once published.
func (r *Registry) Current() (*Generation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.gen == nil {
		return nil, ErrNotReady
	}
	return r.gen, nil
}

// Ready reports whether a generation has been published.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gen != nil
}
