package types

// CustomersResponse wraps the list of customer ids returned by GET /customers.
type CustomersResponse struct {
	// All customer ids present in the loaded feature table, in table order.
	CustomerIDs []int64 `json:"customer_ids"`
}

// ScoreData is the payload for the score gauge widget.
type ScoreData struct {
	// Probability of default predicted by the loaded model.
	// example: 0.23
	Probability float64 `json:"probability_pos" example:"0.23"`
	// Decision threshold baked into the model bundle at training time.
	// example: 0.48
	Threshold float64 `json:"threshold" example:"0.48"`
	// Decision derived from probability vs threshold: accepted or refused.
	// example: accepted
	Decision string `json:"decision" example:"accepted"`
}

// ShapData is a per-customer local explanation.
type ShapData struct {
	// Model base value the attributions are relative to.
	// example: -2.19
	BaseValue float64 `json:"base_value" example:"-2.19"`
	// Per-feature attribution values, aligned to FeatureNames.
	Values []float64 `json:"values"`
	// Modeled feature names, in model column order.
	FeatureNames []string `json:"feature_names"`
}

// BivariateData holds paired value series for a scatter plot. Rows where
// either feature is missing are dropped, so both series have equal length.
type BivariateData struct {
	X []float64 `json:"x_data"`
	Y []float64 `json:"y_data"`
}

// DistributionData is a precomputed histogram for one feature.
type DistributionData struct {
	// Feature the histogram describes.
	// example: EXT_SOURCE_3
	Feature string `json:"feature" example:"EXT_SOURCE_3"`
	// Bin edges; one more entry than Counts.
	BinEdges []float64 `json:"bin_edges"`
	// Per-bin counts.
	Counts []int64 `json:"counts"`
}

// DashboardMeta carries response metadata for the composite endpoint.
type DashboardMeta struct {
	// Server timestamp in RFC 3339 (UTC).
	// example: 2026-01-02T15:04:05Z
	Timestamp string `json:"timestamp" example:"2026-01-02T15:04:05Z"`
	// Generation that served the request.
	// example: 0b7f9a6e-8f1f-4c8e-9a44-2f1d4c9b8f10
	GenerationID string `json:"generation_id" example:"0b7f9a6e-8f1f-4c8e-9a44-2f1d4c9b8f10"`
}

// DashboardResponse is the composite payload returned by
// GET /customer/{id}/dashboard.
type DashboardResponse struct {
	Score ScoreData `json:"score"`
	// Top dashboard feature values; missing values are null.
	Features map[string]*float64 `json:"features"`
	// Local explanation; omitted when the SHAP artifact is degraded.
	Shap *ShapData `json:"shap,omitempty"`
	Meta DashboardMeta `json:"metadata"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: customer not found: 999999
	Error string `json:"error" example:"customer not found: 999999"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall service state: loading or ready.
	// example: ready
	State string `json:"state" example:"ready"`
	// Identifier of the published generation, empty before publish.
	// example: 0b7f9a6e-8f1f-4c8e-9a44-2f1d4c9b8f10
	GenerationID string `json:"generation_id,omitempty"`
	// Unix seconds at which the generation was published.
	// example: 1700000000
	LoadedAtUnix int64 `json:"loaded_at_unix,omitempty"`
	// Number of customers in the loaded feature table.
	// example: 10000
	Customers int `json:"customers"`
	// Number of modeled features.
	// example: 16
	Features int `json:"features"`
	// Per-artifact load outcomes, including degraded optional artifacts.
	Artifacts []ArtifactHealth `json:"artifacts,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
