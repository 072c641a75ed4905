// Package hub pulls artifacts from a remote versioned blob repository.
// Transport only: retry policy lives in the bootstrap manager.
package hub

import (
	"context"
	"fmt"
	"strings"
)

// Client fetches one artifact from a repo. Implementations return the typed
// errors of this package (NotFound, Unauthorized, Unavailable) so callers can
// distinguish user error from transient failure.
type Client interface {
	// Fetch returns the full content at remotePath within repoID. Small
	// config files and large binaries go through the same call; callers
	// never special-case by size.
	Fetch(ctx context.Context, repoID, remotePath string) ([]byte, error)
}

// Credentials are supplied externally (environment), never from config files.
type Credentials struct {
	AccessKey string // s3 backend
	SecretKey string // s3 backend
	Token     string // https backend bearer token
}

// New constructs a Client for the given backend ("s3" or "https").
func New(backend, endpoint string, creds Credentials, useSSL bool) (Client, error) {
	switch backend {
	case "s3":
		return NewS3(endpoint, creds.AccessKey, creds.SecretKey, useSSL)
	case "https":
		return NewHTTP(endpoint, creds.Token)
	default:
		return nil, fmt.Errorf("unknown hub backend: %q", backend)
	}
}

// splitRepo splits a repo id like "acme/credit-risk-data" into its bucket
// ("acme") and key prefix ("credit-risk-data"). Ids without a slash map to a
// bare bucket.
func splitRepo(repoID string) (bucket, prefix string) {
	if i := strings.IndexByte(repoID, '/'); i >= 0 {
		return repoID[:i], repoID[i+1:]
	}
	return repoID, ""
}
