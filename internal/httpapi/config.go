package httpapi

// staticCacheControl is applied to precomputed static artifact responses;
// they only change when a new generation ships, which means a restart.
const staticCacheControl = "public, max-age=86400"

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
}
