package bootstrap

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"riskd/internal/config"
	"riskd/internal/hub"
	"riskd/internal/registry"
)

// fakeHub serves artifacts from memory and counts fetches.
type fakeHub struct {
	mu        sync.Mutex
	files     map[string][]byte
	errs      map[string]error
	transient map[string]int // remaining Unavailable failures before success
	perKey    map[string]int
	calls     int
}

func (f *fakeHub) key(repo, path string) string { return repo + "/" + path }

func (f *fakeHub) Fetch(ctx context.Context, repoID, remotePath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := f.key(repoID, remotePath)
	if f.perKey == nil {
		f.perKey = make(map[string]int)
	}
	f.perKey[k]++
	if n := f.transient[k]; n > 0 {
		f.transient[k] = n - 1
		return nil, hub.ErrUnavailable("fake outage", nil)
	}
	if err, ok := f.errs[k]; ok {
		return nil, err
	}
	b, ok := f.files[k]
	if !ok {
		return nil, hub.ErrNotFound(repoID, remotePath)
	}
	return b, nil
}

func (f *fakeHub) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const testModel = `{
	"features": ["EXT_SOURCE_3", "EXT_SOURCE_2"],
	"coefficients": [-2.0, -1.0],
	"intercept": 0.3,
	"threshold": 0.48
}`

const testCSV = "SK_ID_CURR,EXT_SOURCE_3,EXT_SOURCE_2,DAYS_EMPLOYED\n" +
	"100001,0.5,0.7,-1200\n" +
	"100002,0.9,0.8,365243\n"

const testShap = `{
	"feature_names": ["EXT_SOURCE_3", "EXT_SOURCE_2"],
	"base_value": 0.3,
	"rows": {"100001": [-1.0, -0.7], "100002": [-1.8, -0.8]}
}`

const testHist = `{"bin_edges":[0,0.5,1],"counts":[4,6]}`

func testConfig() config.Config {
	cfg := config.Config{
		ModelRepo:            "acme/models",
		DataRepo:             "acme/data",
		DistributionFeatures: []string{"EXT_SOURCE_3"},
	}
	return cfg
}

func fullHub() *fakeHub {
	return &fakeHub{files: map[string][]byte{
		"acme/models/model/model.json":              []byte(testModel),
		"acme/data/customers.csv":                   []byte(testCSV),
		"acme/data/shap/shap_explanation.json":      []byte(testShap),
		"acme/data/shap/shap_beeswarm.png":          []byte("PNGBYTES"),
		"acme/data/plots/EXT_SOURCE_3_hist_data.json": []byte(testHist),
	}}
}

func newManager(t *testing.T, client hub.Client) *Manager {
	t.Helper()
	return New(Config{
		Client:    client,
		CacheRoot: t.TempDir(),
		Attempts:  3,
		Backoff:   time.Millisecond,
		Logger:    zerolog.Nop(),
	})
}

func TestBootstrapHappyPath(t *testing.T) {
	fh := fullHub()
	m := newManager(t, fh)
	gen, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if gen.ID == "" || gen.Model == nil || gen.Table == nil || gen.Shap == nil {
		t.Fatalf("incomplete generation: %+v", gen)
	}
	if string(gen.GlobalImage) != "PNGBYTES" {
		t.Fatalf("image bytes: %q", gen.GlobalImage)
	}
	if _, ok := gen.Distributions["EXT_SOURCE_3"]; !ok {
		t.Fatalf("distribution missing")
	}
	// warmup scored every customer with a real probability
	if len(gen.Scores) != 2 {
		t.Fatalf("scores: %v", gen.Scores)
	}
	for id, s := range gen.Scores {
		if math.IsNaN(s) || s <= 0 || s >= 1 {
			t.Fatalf("score for %d out of range: %v", id, s)
		}
	}
	// z = 0.3 - 2*0.5 - 1*0.7 = -1.4
	want := 1 / (1 + math.Exp(1.4))
	if math.Abs(gen.Scores[100001]-want) > 1e-9 {
		t.Fatalf("score 100001 = %v, want %v", gen.Scores[100001], want)
	}
	for _, a := range gen.Artifacts {
		if !a.Loaded {
			t.Fatalf("artifact %s unexpectedly degraded: %s", a.Name, a.Error)
		}
	}
}

func TestBootstrapIdempotentAgainstWarmCache(t *testing.T) {
	fh := fullHub()
	root := t.TempDir()
	mk := func() *Manager {
		return New(Config{Client: fh, CacheRoot: root, Backoff: time.Millisecond, Logger: zerolog.Nop()})
	}
	gen1, err := mk().Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	first := fh.fetchCount()
	if first == 0 {
		t.Fatalf("expected fetches on cold cache")
	}
	gen2, err := mk().Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if fh.fetchCount() != first {
		t.Fatalf("second bootstrap fetched from network: %d -> %d", first, fh.fetchCount())
	}
	// equivalent generations (ids differ, content matches)
	if gen1.Table.Len() != gen2.Table.Len() || len(gen1.Scores) != len(gen2.Scores) {
		t.Fatalf("generations differ")
	}
	if gen1.Scores[100001] != gen2.Scores[100001] {
		t.Fatalf("scores differ across idempotent bootstraps")
	}
}

func TestBootstrapMandatoryFetchFails(t *testing.T) {
	fh := fullHub()
	delete(fh.files, "acme/models/model/model.json")
	m := newManager(t, fh)
	reg := registry.New()
	_, err := m.Run(context.Background(), reg, DefaultSpecs(testConfig()))
	if err == nil || !IsFailure(err) {
		t.Fatalf("expected bootstrap failure, got %v", err)
	}
	if reg.Ready() {
		t.Fatalf("registry published despite mandatory failure")
	}
}

func TestBootstrapMandatoryUnavailableExhaustsRetries(t *testing.T) {
	fh := fullHub()
	fh.transient = map[string]int{"acme/data/customers.csv": 99}
	m := newManager(t, fh) // 3 attempts
	_, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err == nil || !IsFailure(err) {
		t.Fatalf("expected bootstrap failure, got %v", err)
	}
}

func TestBootstrapTransientFailureRecovers(t *testing.T) {
	fh := fullHub()
	fh.transient = map[string]int{"acme/data/customers.csv": 2}
	m := newManager(t, fh) // 3 attempts: two outages then success
	gen, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err != nil {
		t.Fatalf("bootstrap should survive transient outages: %v", err)
	}
	if gen.Table.Len() != 2 {
		t.Fatalf("table not loaded after retry")
	}
}

func TestBootstrapOptionalMissingDegrades(t *testing.T) {
	fh := fullHub()
	delete(fh.files, "acme/data/plots/EXT_SOURCE_3_hist_data.json")
	delete(fh.files, "acme/data/shap/shap_explanation.json")
	m := newManager(t, fh)
	gen, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err != nil {
		t.Fatalf("optional artifacts must not fail bootstrap: %v", err)
	}
	if gen.Shap != nil {
		t.Fatalf("shap should be degraded")
	}
	if _, ok := gen.Distributions["EXT_SOURCE_3"]; ok {
		t.Fatalf("distribution should be degraded")
	}
	degraded := 0
	for _, a := range gen.Artifacts {
		if !a.Loaded {
			degraded++
			if a.Error == "" {
				t.Fatalf("degraded artifact %s missing error detail", a.Name)
			}
		}
	}
	if degraded != 2 {
		t.Fatalf("expected 2 degraded artifacts, got %d", degraded)
	}
}

func TestBootstrapCorruptMandatoryFatal(t *testing.T) {
	fh := fullHub()
	fh.files["acme/models/model/model.json"] = []byte("not json")
	m := newManager(t, fh)
	_, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err == nil || !IsFailure(err) {
		t.Fatalf("expected failure on corrupt model, got %v", err)
	}
}

func TestBootstrapCorruptOptionalDegrades(t *testing.T) {
	fh := fullHub()
	fh.files["acme/data/shap/shap_explanation.json"] = []byte("{")
	m := newManager(t, fh)
	gen, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err != nil {
		t.Fatalf("corrupt optional artifact must degrade, not fail: %v", err)
	}
	if gen.Shap != nil {
		t.Fatalf("corrupt shap should not load")
	}
}

func TestBootstrapUnauthorizedNotRetried(t *testing.T) {
	fh := fullHub()
	fh.errs = map[string]error{"acme/models/model/model.json": hub.ErrUnauthorized("acme/models")}
	m := newManager(t, fh)
	_, err := m.Bootstrap(context.Background(), DefaultSpecs(testConfig()))
	if err == nil || !IsFailure(err) {
		t.Fatalf("expected failure, got %v", err)
	}
	fh.mu.Lock()
	attempts := fh.perKey["acme/models/model/model.json"]
	fh.mu.Unlock()
	if attempts != 1 {
		t.Fatalf("unauthorized fetch attempted %d times, want 1", attempts)
	}
}

func TestPrefetchPopulatesCache(t *testing.T) {
	fh := fullHub()
	root := t.TempDir()
	m := New(Config{Client: fh, CacheRoot: root, Backoff: time.Millisecond, Logger: zerolog.Nop()})
	specs := DefaultSpecs(testConfig())
	if err := m.Prefetch(context.Background(), specs); err != nil {
		t.Fatalf("prefetch: %v", err)
	}
	for _, s := range specs {
		if fi, err := os.Stat(s.LocalPath(root)); err != nil || fi.Size() == 0 {
			t.Fatalf("artifact %s not cached: %v", s.Name, err)
		}
	}
	// a bootstrap after prefetch performs zero fetches
	n := fh.fetchCount()
	if _, err := m.Bootstrap(context.Background(), specs); err != nil {
		t.Fatalf("bootstrap after prefetch: %v", err)
	}
	if fh.fetchCount() != n {
		t.Fatalf("bootstrap fetched despite warm cache")
	}
}

func TestDefaultSpecs(t *testing.T) {
	cfg := testConfig()
	cfg.DistributionFeatures = []string{"A", "B"}
	specs := DefaultSpecs(cfg)
	if len(specs) != 6 {
		t.Fatalf("specs: %d", len(specs))
	}
	mandatory := 0
	for _, s := range specs {
		if s.Mandatory {
			mandatory++
		}
	}
	if mandatory != 2 {
		t.Fatalf("mandatory specs: %d", mandatory)
	}
	// deterministic local paths
	a := specs[0].LocalPath("/root")
	b := specs[0].LocalPath("/root")
	if a != b {
		t.Fatalf("local path not deterministic")
	}
}
