// ABOUTME: Connectivity probe consulted before dispatching remote calls
// ABOUTME: Any HTTP response from the server counts as online, even an auth error

package netcheck

import (
	"net/http"
	"time"
)

// Probe answers whether the remote server is reachable right now.
type Probe interface {
	Online() bool
}

// HTTPProbe checks reachability with a short HEAD request against the
// configured server. A response of any status means the network path works;
// only transport errors count as offline.
type HTTPProbe struct {
	url    string
	client *http.Client
}

// NewHTTPProbe creates a probe for the given server URL.
func NewHTTPProbe(serverURL string, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{
		url:    serverURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Online reports whether the server answered at all.
func (p *HTTPProbe) Online() bool {
	if p.url == "" {
		return false
	}
	resp, err := p.client.Head(p.url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Static is a fixed-answer probe for tests and forced-offline operation.
type Static bool

// Online returns the fixed answer.
func (s Static) Online() bool {
	return bool(s)
}
