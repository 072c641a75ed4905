package bootstrap

import (
	"riskd/internal/cache"
	"riskd/internal/config"
)

// Remote layout of the artifact repos, as produced by the training pipeline.
const (
	modelBundlePath  = "model/model.json"
	featureTablePath = "customers.csv"
	shapPath         = "shap/shap_explanation.json"
	beeswarmPath     = "shap/shap_beeswarm.png"
)

// Logical artifact names used in specs, logs, and status reports.
const (
	NameModel    = "model_bundle"
	NameTable    = "feature_table"
	NameShap     = "shap_explanation"
	NameBeeswarm = "shap_beeswarm"
)

// ArtifactSpec identifies one downloadable unit and whether bootstrap may
// proceed without it.
type ArtifactSpec struct {
	Name       string
	RepoID     string
	RemotePath string
	Mandatory  bool
	// Feature is set for per-feature distribution snapshots.
	Feature string
}

// LocalPath returns the deterministic cache location for this spec, so
// repeated bootstraps against the same root are idempotent.
func (s ArtifactSpec) LocalPath(root string) string {
	return cache.PathFor(root, s.RepoID, s.RemotePath)
}

// DistName returns the logical name for a feature's distribution snapshot.
func DistName(feature string) string { return "dist_" + feature }

// DefaultSpecs builds the full artifact set for one bootstrap: the model
// bundle and feature table are mandatory; explanation objects and
// distribution snapshots degrade their endpoints instead of failing boot.
func DefaultSpecs(cfg config.Config) []ArtifactSpec {
	specs := []ArtifactSpec{
		{Name: NameModel, RepoID: cfg.ModelRepo, RemotePath: modelBundlePath, Mandatory: true},
		{Name: NameTable, RepoID: cfg.DataRepo, RemotePath: featureTablePath, Mandatory: true},
		{Name: NameShap, RepoID: cfg.DataRepo, RemotePath: shapPath},
		{Name: NameBeeswarm, RepoID: cfg.DataRepo, RemotePath: beeswarmPath},
	}
	for _, f := range cfg.DistributionFeatures {
		specs = append(specs, ArtifactSpec{
			Name:       DistName(f),
			RepoID:     cfg.DataRepo,
			RemotePath: "plots/" + f + "_hist_data.json",
			Feature:    f,
		})
	}
	return specs
}
