package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProberHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.URL, time.Second)
	latency, err := prober.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if latency <= 0 {
		t.Errorf("Expected positive latency, got %s", latency)
	}
}

func TestHTTPProberServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.URL, time.Second)
	if _, err := prober.Probe(context.Background()); err == nil {
		t.Error("Expected a 5xx response to count as unhealthy")
	}
}

func TestHTTPProberUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	prober := NewHTTPProber(srv.URL, 100*time.Millisecond)
	if _, err := prober.Probe(context.Background()); err == nil {
		t.Error("Expected probe against a closed server to fail")
	}
}
