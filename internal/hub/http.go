package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	httpMaxIdleConns = 10
	httpTimeout      = 60 * time.Second
)

// HTTPClient pulls artifacts over plain HTTPS from a repository that lays
// objects out as <base>/<repo-id>/<remote-path>. An optional bearer token
// authenticates private repos.
type HTTPClient struct {
	base  string
	token string
	hc    *http.Client
}

// NewHTTP builds an HTTPClient for the given base URL. Token may be empty
// for public repos.
func NewHTTP(base, token string) (*HTTPClient, error) {
	if base == "" {
		return nil, fmt.Errorf("empty hub base URL")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &HTTPClient{
		base:  strings.TrimRight(base, "/"),
		token: token,
		hc: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          httpMaxIdleConns,
				IdleConnTimeout:       httpTimeout,
				ResponseHeaderTimeout: httpTimeout,
			},
		},
	}, nil
}

// Fetch implements Client.
func (c *HTTPClient) Fetch(ctx context.Context, repoID, remotePath string) ([]byte, error) {
	url := c.base + "/" + repoID + "/" + strings.TrimLeft(remotePath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, ErrUnavailable("http fetch "+repoID+"/"+remotePath, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound(repoID, remotePath)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized(repoID)
	case resp.StatusCode != http.StatusOK:
		return nil, ErrUnavailable(fmt.Sprintf("http fetch %s/%s: status %d", repoID, remotePath, resp.StatusCode), nil)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrUnavailable("http read "+repoID+"/"+remotePath, err)
	}
	return b, nil
}
