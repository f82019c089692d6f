package voice

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober measures reachability of a lightweight endpoint. No payload
// semantics; only latency and success matter.
type Prober interface {
	Probe(ctx context.Context) (time.Duration, error)
}

// HTTPProber issues HEAD requests against a health endpoint.
type HTTPProber struct {
	url    string
	client *http.Client
}

func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *HTTPProber) Probe(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("probe request: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return 0, fmt.Errorf("probe target unhealthy: status %d", resp.StatusCode)
	}

	return time.Since(start), nil
}
