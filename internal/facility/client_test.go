package facility

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aidra-health/aidra/pkg/Logger"
)

func facilityServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Path != "/facilities" {
			t.Errorf("Expected /facilities path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lng") == "" {
			t.Error("Expected lat and lng query parameters")
		}
		json.NewEncoder(w).Encode(map[string][]Facility{
			"facilities": {
				{
					ID:         "f1",
					Name:       "Central Emergency Clinic",
					Latitude:   37.5665,
					Longitude:  126.978,
					DistanceKM: 1.2,
					Rating:     4.6,
				},
				{
					ID:          "f2",
					Name:        "Night Pharmacy",
					DistanceKM:  2.8,
					Open24Hours: true,
				},
			},
		})
	}))
}

func TestFindNearby(t *testing.T) {
	var calls int
	srv := facilityServer(t, &calls)
	defer srv.Close()

	client := NewClient(srv.URL, "", 5, nil, time.Minute, Logger.Nop())
	facilities, err := client.FindNearby(context.Background(), 37.5665, 126.978, 3)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}

	if len(facilities) != 2 {
		t.Fatalf("Expected 2 facilities, got %d", len(facilities))
	}
	if facilities[0].Name != "Central Emergency Clinic" {
		t.Errorf("Expected closest facility first, got %q", facilities[0].Name)
	}
	if !facilities[1].Open24Hours {
		t.Error("Expected second facility to be 24h")
	}
}

func TestFindNearbyDefaultRadius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("radius_km"); got != "5.0" {
			t.Errorf("Expected default radius 5.0, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string][]Facility{"facilities": {}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5, nil, time.Minute, Logger.Nop())
	// Radius 0 falls back to the configured default.
	if _, err := client.FindNearby(context.Background(), 1, 2, 0); err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
}

func TestFindNearbyAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-key" {
			t.Errorf("Expected bearer auth header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string][]Facility{"facilities": {}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", 5, nil, time.Minute, Logger.Nop())
	if _, err := client.FindNearby(context.Background(), 1, 2, 3); err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
}

func TestFindNearbyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5, nil, time.Minute, Logger.Nop())
	if _, err := client.FindNearby(context.Background(), 1, 2, 3); err == nil {
		t.Error("Expected an error for a non-200 response")
	}
}

func TestCacheKeyRounding(t *testing.T) {
	// Coordinates within ~100m share one cache entry.
	a := cacheKey(37.5661, 126.9781, 5)
	b := cacheKey(37.5663, 126.9779, 5)
	if a != b {
		t.Errorf("Expected nearby coordinates to share a key: %s vs %s", a, b)
	}

	c := cacheKey(37.58, 126.9781, 5)
	if a == c {
		t.Error("Expected distinct keys for distant coordinates")
	}
}
