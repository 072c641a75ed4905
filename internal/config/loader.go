package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Artifact hub connection. Backend is "s3" or "https".
	HubBackend  string `json:"hub_backend" yaml:"hub_backend" toml:"hub_backend"`
	HubEndpoint string `json:"hub_endpoint" yaml:"hub_endpoint" toml:"hub_endpoint"`
	HubUseSSL   bool   `json:"hub_use_ssl" yaml:"hub_use_ssl" toml:"hub_use_ssl"`

	// Logical repos the artifacts are pulled from.
	ModelRepo string `json:"model_repo" yaml:"model_repo" toml:"model_repo"`
	DataRepo  string `json:"data_repo" yaml:"data_repo" toml:"data_repo"`

	// Cache placement. PersistentDir is preferred when present and writable;
	// ScratchDir is the fallback (re-downloaded after restart).
	PersistentDir string `json:"persistent_dir" yaml:"persistent_dir" toml:"persistent_dir"`
	ScratchDir    string `json:"scratch_dir" yaml:"scratch_dir" toml:"scratch_dir"`

	// Retry policy for transient fetch failures.
	FetchAttempts  int `json:"fetch_attempts" yaml:"fetch_attempts" toml:"fetch_attempts"`
	FetchBackoffMS int `json:"fetch_backoff_ms" yaml:"fetch_backoff_ms" toml:"fetch_backoff_ms"`

	// Feature table shape.
	IDColumn             string   `json:"id_column" yaml:"id_column" toml:"id_column"`
	DashboardFeatures    []string `json:"dashboard_features" yaml:"dashboard_features" toml:"dashboard_features"`
	DistributionFeatures []string `json:"distribution_features" yaml:"distribution_features" toml:"distribution_features"`

	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultAddr           = ":8080"
	DefaultHubBackend     = "s3"
	DefaultPersistentDir  = "/data/riskd"
	DefaultFetchAttempts  = 4
	DefaultFetchBackoffMS = 500
	DefaultIDColumn       = "SK_ID_CURR"
	DefaultLogLevel       = "info"
)

// DefaultDashboardFeatures mirrors the dashboard's fixed top-feature widgets.
func DefaultDashboardFeatures() []string {
	return []string{"EXT_SOURCE_3", "EXT_SOURCE_2", "DAYS_EMPLOYED", "OWN_CAR_AGE"}
}

// DefaultDistributionFeatures lists features with precomputed histograms.
func DefaultDistributionFeatures() []string {
	return []string{"EXT_SOURCE_3", "EXT_SOURCE_2", "DAYS_EMPLOYED", "OWN_CAR_AGE"}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with package defaults.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.HubBackend == "" {
		c.HubBackend = DefaultHubBackend
	}
	if c.PersistentDir == "" {
		c.PersistentDir = DefaultPersistentDir
	}
	if c.ScratchDir == "" {
		c.ScratchDir = filepath.Join(os.TempDir(), "riskd-cache")
	}
	if c.FetchAttempts <= 0 {
		c.FetchAttempts = DefaultFetchAttempts
	}
	if c.FetchBackoffMS <= 0 {
		c.FetchBackoffMS = DefaultFetchBackoffMS
	}
	if c.IDColumn == "" {
		c.IDColumn = DefaultIDColumn
	}
	if len(c.DashboardFeatures) == 0 {
		c.DashboardFeatures = DefaultDashboardFeatures()
	}
	if len(c.DistributionFeatures) == 0 {
		c.DistributionFeatures = DefaultDistributionFeatures()
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	switch c.HubBackend {
	case "s3", "https":
	default:
		return fmt.Errorf("unknown hub backend: %q", c.HubBackend)
	}
	if c.HubEndpoint == "" {
		return fmt.Errorf("hub_endpoint is required")
	}
	if c.ModelRepo == "" {
		return fmt.Errorf("model_repo is required")
	}
	if c.DataRepo == "" {
		return fmt.Errorf("data_repo is required")
	}
	return nil
}
