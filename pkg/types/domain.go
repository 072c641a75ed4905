package types

// Artifact identifies one downloadable unit in a remote artifact repo.
type Artifact struct {
	// Logical name used in logs and status reports.
	// example: shap_explanation
	Name string `json:"name" example:"shap_explanation"`
	// Remote repository the artifact lives in.
	// example: acme/credit-risk-data
	RepoID string `json:"repo_id" example:"acme/credit-risk-data"`
	// Path within the repository.
	// example: shap/shap_explanation.json
	RemotePath string `json:"remote_path" example:"shap/shap_explanation.json"`
	// Whether bootstrap fails fatally when the artifact cannot be obtained.
	// example: true
	Mandatory bool `json:"mandatory" example:"true"`
}

// ArtifactHealth reports the load outcome of one artifact for /status.
type ArtifactHealth struct {
	// Logical artifact name.
	// example: dist_EXT_SOURCE_3
	Name string `json:"name" example:"dist_EXT_SOURCE_3"`
	// True when the artifact was fetched (or found cached) and deserialized.
	// example: true
	Loaded bool `json:"loaded" example:"true"`
	// Error message for degraded optional artifacts.
	Error string `json:"error,omitempty"`
}
