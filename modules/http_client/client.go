package http_client

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 30 * time.Second

// newHttpClient returns the client shared by every request of the module.
func newHttpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
