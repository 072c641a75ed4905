// Package bootstrap turns remote artifacts into one in-memory generation.
// It runs exactly once at process start, before the service accepts
// traffic: resolve cache placement, download what is missing, deserialize,
// warm up scores, publish.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"riskd/internal/assets"
	"riskd/internal/common/fsutil"
	"riskd/internal/hub"
	"riskd/internal/registry"
	"riskd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultAttempts    = 4
	defaultBackoff     = 500 * time.Millisecond
	defaultConcurrency = 4
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Client    hub.Client
	CacheRoot string
	// Attempts is the total fetch attempt ceiling per artifact; Backoff is
	// the first retry delay and doubles per attempt.
	Attempts int
	Backoff  time.Duration
	IDColumn string
	Logger   zerolog.Logger
}

// Manager orchestrates the startup download and load of all artifacts.
type Manager struct {
	client    hub.Client
	cacheRoot string
	attempts  int
	backoff   time.Duration
	idColumn  string
	log       zerolog.Logger
}

// New constructs a Manager from Config, applying defaults.
func New(cfg Config) *Manager {
	m := &Manager{
		client:    cfg.Client,
		cacheRoot: cfg.CacheRoot,
		attempts:  cfg.Attempts,
		backoff:   cfg.Backoff,
		idColumn:  cfg.IDColumn,
		log:       cfg.Logger,
	}
	if m.attempts <= 0 {
		m.attempts = defaultAttempts
	}
	if m.backoff <= 0 {
		m.backoff = defaultBackoff
	}
	if m.idColumn == "" {
		m.idColumn = "SK_ID_CURR"
	}
	return m
}

// localArtifact is the on-disk outcome for one spec.
type localArtifact struct {
	spec   ArtifactSpec
	path   string
	cached bool
	err    error
}

// Run bootstraps and publishes the generation into reg. On any mandatory
// failure nothing is published and the registry stays unreadable.
func (m *Manager) Run(ctx context.Context, reg *registry.Registry, specs []ArtifactSpec) (*registry.Generation, error) {
	gen, err := m.Bootstrap(ctx, specs)
	if err != nil {
		return nil, err
	}
	if err := reg.Publish(gen); err != nil {
		return nil, err
	}
	m.log.Info().
		Str("generation", gen.ID).
		Int("customers", gen.Table.Len()).
		Int("features", len(gen.Model.Features)).
		Msg("generation published")
	return gen, nil
}

// Bootstrap downloads missing artifacts into the cache, deserializes them,
// computes all customer scores, and assembles a Generation. Mandatory
// failures abort; optional failures degrade only their artifact.
func (m *Manager) Bootstrap(ctx context.Context, specs []ArtifactSpec) (*registry.Generation, error) {
	start := time.Now()
	results := make([]localArtifact, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultConcurrency)
	for i, spec := range specs {
		g.Go(func() error {
			path, cached, err := m.ensure(gctx, spec)
			results[i] = localArtifact{spec: spec, path: path, cached: cached, err: err}
			if err != nil {
				if spec.Mandatory {
					return ErrFailure(spec.Name, err)
				}
				m.log.Warn().Str("artifact", spec.Name).Err(err).Msg("optional artifact unavailable, degrading")
				return nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gen, err := m.assemble(results)
	if err != nil {
		return nil, err
	}
	m.log.Info().
		Dur("elapsed", time.Since(start)).
		Int("artifacts", len(specs)).
		Msg("bootstrap complete")
	return gen, nil
}

// Prefetch downloads all artifacts into the cache without loading them.
// Used by the ops CLI to warm a persistent mount ahead of a deploy.
func (m *Manager) Prefetch(ctx context.Context, specs []ArtifactSpec) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultConcurrency)
	for _, spec := range specs {
		g.Go(func() error {
			_, cached, err := m.ensure(gctx, spec)
			if err != nil {
				if spec.Mandatory {
					return ErrFailure(spec.Name, err)
				}
				m.log.Warn().Str("artifact", spec.Name).Err(err).Msg("optional artifact unavailable")
				return nil
			}
			m.log.Info().Str("artifact", spec.Name).Bool("cache_hit", cached).Msg("artifact in cache")
			return nil
		})
	}
	return g.Wait()
}

// ensure places one artifact on local disk, honoring the cache. Artifacts
// are immutable per path, so a non-empty cached file is trusted as-is.
func (m *Manager) ensure(ctx context.Context, spec ArtifactSpec) (string, bool, error) {
	local := spec.LocalPath(m.cacheRoot)
	if fsutil.NonEmptyFile(local) {
		cacheHitsTotal.WithLabelValues(spec.Name).Inc()
		m.log.Debug().Str("artifact", spec.Name).Str("path", local).Msg("cache hit")
		return local, true, nil
	}
	b, err := m.fetchWithRetry(ctx, spec)
	if err != nil {
		fetchesTotal.WithLabelValues(spec.Name, "error").Inc()
		return "", false, err
	}
	fetchesTotal.WithLabelValues(spec.Name, "ok").Inc()
	if err := fsutil.WriteFileAtomic(local, b, 0o644); err != nil {
		return "", false, fmt.Errorf("cache write %s: %w", spec.Name, err)
	}
	m.log.Info().Str("artifact", spec.Name).Int("bytes", len(b)).Msg("artifact fetched")
	return local, false, nil
}

// fetchWithRetry retries only transient (Unavailable) failures, with
// doubling backoff up to the attempt ceiling. NotFound and Unauthorized
// fail immediately; retrying them cannot help.
func (m *Manager) fetchWithRetry(ctx context.Context, spec ArtifactSpec) ([]byte, error) {
	delay := m.backoff
	for attempt := 1; ; attempt++ {
		b, err := m.client.Fetch(ctx, spec.RepoID, spec.RemotePath)
		if err == nil {
			return b, nil
		}
		if !hub.IsUnavailable(err) || attempt >= m.attempts {
			return nil, err
		}
		retriesTotal.WithLabelValues(spec.Name).Inc()
		m.log.Warn().
			Str("artifact", spec.Name).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Err(err).
			Msg("transient fetch failure, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// assemble deserializes the on-disk artifacts into one Generation and
// computes every customer's score so request handling never touches the
// model or disk.
func (m *Manager) assemble(results []localArtifact) (*registry.Generation, error) {
	gen := &registry.Generation{
		ID:            uuid.NewString(),
		LoadedAt:      time.Now().UTC(),
		Distributions: make(map[string]*assets.Histogram),
	}

	for _, res := range results {
		health := types.ArtifactHealth{Name: res.spec.Name, Loaded: res.err == nil}
		if res.err == nil {
			if err := m.load(gen, res); err != nil {
				if res.spec.Mandatory {
					return nil, ErrFailure(res.spec.Name, err)
				}
				health.Loaded = false
				health.Error = err.Error()
				m.log.Warn().Str("artifact", res.spec.Name).Err(err).Msg("optional artifact corrupt, degrading")
			}
		} else {
			health.Error = res.err.Error()
		}
		gen.Artifacts = append(gen.Artifacts, health)
	}

	if gen.Model == nil {
		return nil, ErrFailure(NameModel, fmt.Errorf("spec list did not include the model bundle"))
	}
	if gen.Table == nil {
		return nil, ErrFailure(NameTable, fmt.Errorf("spec list did not include the feature table"))
	}

	if gen.Shap != nil {
		if missing := gen.Shap.Missing(gen.Table.IDs()); len(missing) > 0 {
			m.log.Warn().
				Int("customers", len(missing)).
				Msg("shap explanation does not cover every customer; those lookups report unavailable")
		}
	}

	// Warmup: score every customer now.
	gen.Scores = make(map[int64]float64, gen.Table.Len())
	for _, id := range gen.Table.IDs() {
		row, _ := gen.Table.Select(id, gen.Model.Features)
		gen.Scores[id] = gen.Model.Score(row)
	}
	return gen, nil
}

// load parses one on-disk artifact into its slot on gen.
func (m *Manager) load(gen *registry.Generation, res localArtifact) error {
	b, err := os.ReadFile(res.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", res.path, err)
	}
	switch {
	case res.spec.Name == NameModel:
		mdl, err := assets.ParseModel(b)
		if err != nil {
			return err
		}
		gen.Model = mdl
	case res.spec.Name == NameTable:
		tab, err := assets.ParseTable(b, m.idColumn)
		if err != nil {
			return err
		}
		gen.Table = tab
	case res.spec.Name == NameShap:
		ex, err := assets.ParseExplanation(b)
		if err != nil {
			return err
		}
		gen.Shap = ex
	case res.spec.Name == NameBeeswarm:
		if len(b) == 0 {
			return fmt.Errorf("empty image")
		}
		gen.GlobalImage = b
	case res.spec.Feature != "":
		h, err := assets.ParseHistogram(b)
		if err != nil {
			return err
		}
		gen.Distributions[res.spec.Feature] = h
	default:
		return fmt.Errorf("unknown artifact %q", res.spec.Name)
	}
	return nil
}
