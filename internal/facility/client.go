package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-redis/redis"

	"github.com/aidra-health/aidra/pkg/Logger"
)

// Client queries the facility-lookup service for medical facilities near a
// coordinate. Results are cached in redis so repeated lookups around the
// same spot skip the upstream call.
type Client struct {
	baseURL       string
	apiKey        string
	defaultRadius float64
	httpClient    *http.Client
	rc            *redis.Client // nil disables caching
	cacheTTL      time.Duration
	logger        *Logger.Logger
}

func NewClient(
	baseURL, apiKey string,
	defaultRadiusKM float64,
	rc *redis.Client,
	cacheTTL time.Duration,
	logger *Logger.Logger,
) *Client {
	if defaultRadiusKM <= 0 {
		defaultRadiusKM = 5
	}
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		defaultRadius: defaultRadiusKM,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rc:       rc,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// FindNearby returns facilities within radiusKM of the coordinate, closest
// first. A radius of 0 uses the configured default.
func (c *Client) FindNearby(ctx context.Context, lat, lng, radiusKM float64) ([]Facility, error) {
	if radiusKM <= 0 {
		radiusKM = c.defaultRadius
	}

	key := cacheKey(lat, lng, radiusKM)
	if cached, ok := c.fromCache(key); ok {
		return cached, nil
	}

	u, err := url.Parse(c.baseURL + "/facilities")
	if err != nil {
		return nil, fmt.Errorf("facility: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	q.Set("radius_km", fmt.Sprintf("%.1f", radiusKM))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("facility: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facility: lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("facility: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facility: lookup returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Facilities []Facility `json:"facilities"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("facility: decode response: %w", err)
	}

	c.toCache(key, result.Facilities)
	return result.Facilities, nil
}

// cacheKey rounds coordinates to ~100m so nearby requests share an entry.
func cacheKey(lat, lng, radiusKM float64) string {
	return fmt.Sprintf("facility:%.3f:%.3f:%.1f", lat, lng, radiusKM)
}

func (c *Client) fromCache(key string) ([]Facility, bool) {
	if c.rc == nil {
		return nil, false
	}
	raw, err := c.rc.Get(key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warnf("facility cache read failed: %v", err)
		return nil, false
	}
	var facilities []Facility
	if err := json.Unmarshal([]byte(raw), &facilities); err != nil {
		c.logger.Warnf("facility cache entry corrupt, ignoring: %v", err)
		return nil, false
	}
	return facilities, true
}

func (c *Client) toCache(key string, facilities []Facility) {
	if c.rc == nil {
		return
	}
	raw, err := json.Marshal(facilities)
	if err != nil {
		return
	}
	if err := c.rc.Set(key, raw, c.cacheTTL).Err(); err != nil {
		c.logger.Warnf("facility cache write failed: %v", err)
	}
}
