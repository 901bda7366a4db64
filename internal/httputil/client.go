// Package httputil configures the HTTP client shared by the snapshot and
// boundary-file fetchers.
package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single download from the government data portals
// and the boundary gist; retries are the fetcher's concern.
const DefaultTimeout = 30 * time.Second

// NewClient returns the client the fetchers use.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
