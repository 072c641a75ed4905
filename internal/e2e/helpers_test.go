package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"riskd/internal/bootstrap"
	"riskd/internal/config"
	"riskd/internal/httpapi"
	"riskd/internal/hub"
	"riskd/internal/inference"
	"riskd/internal/registry"
)

const (
	modelRepo = "acme/credit-model"
	dataRepo  = "acme/credit-data"
)

// fixtureRepo serves a complete artifact layout over HTTP, standing in for
// the remote hub. Keys are "<repo-id>/<remote-path>".
func fixtureRepo() map[string][]byte {
	return map[string][]byte{
		modelRepo + "/model/model.json": []byte(`{
			"features": ["EXT_SOURCE_2", "EXT_SOURCE_3"],
			"coefficients": [1.0, -1.0],
			"intercept": 0,
			"threshold": 0.48
		}`),
		dataRepo + "/customers.csv": []byte(
			"SK_ID_CURR,EXT_SOURCE_2,EXT_SOURCE_3,DAYS_EMPLOYED,OWN_CAR_AGE\n" +
				"100001,0.5,0.7,-1200,12\n" +
				"100002,0.9,0.1,365243,\n" +
				"100003,0.4,0.4,-300,3\n"),
		dataRepo + "/shap/shap_explanation.json": []byte(`{
			"feature_names": ["EXT_SOURCE_2", "EXT_SOURCE_3"],
			"base_value": 0.08,
			"rows": {
				"100001": [0.11, -0.32],
				"100002": [0.41, 0.02],
				"100003": [0.05, -0.06]
			}
		}`),
		dataRepo + "/shap/shap_beeswarm.png": []byte("\x89PNG fake image bytes"),
		dataRepo + "/plots/EXT_SOURCE_3_hist_data.json": []byte(`{
			"bin_edges": [0, 0.25, 0.5, 0.75, 1],
			"counts": [4, 9, 12, 5]
		}`),
	}
}

// newHubServer exposes the fixture map at /<repo-id>/<remote-path>.
func newHubServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		b, ok := files[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(b)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(hubURL, cacheDir string) config.Config {
	cfg := config.Config{
		HubBackend:           "https",
		HubEndpoint:          hubURL,
		ModelRepo:            modelRepo,
		DataRepo:             dataRepo,
		PersistentDir:        cacheDir,
		FetchAttempts:        2,
		FetchBackoffMS:       1,
		DistributionFeatures: []string{"EXT_SOURCE_3"},
	}
	cfg.ApplyDefaults()
	return cfg
}

// bootServer runs a full bootstrap against the hub at cfg.HubEndpoint and
// returns an HTTP server over the resulting service.
func bootServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	client, err := hub.NewHTTP(cfg.HubEndpoint, "")
	if err != nil {
		t.Fatalf("hub client: %v", err)
	}
	mgr := bootstrap.New(bootstrap.Config{
		Client:    client,
		CacheRoot: cfg.PersistentDir,
		Attempts:  cfg.FetchAttempts,
		Backoff:   time.Duration(cfg.FetchBackoffMS) * time.Millisecond,
		IDColumn:  cfg.IDColumn,
		Logger:    zerolog.Nop(),
	})
	reg := registry.New()
	if _, err := mgr.Run(context.Background(), reg, bootstrap.DefaultSpecs(cfg)); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	svc := inference.New(reg, cfg.DashboardFeatures)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(b, out); err != nil {
			t.Fatalf("decode %s: %v (body=%s)", url, err, b)
		}
	}
	return resp.StatusCode
}
