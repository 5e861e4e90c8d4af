package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Coordinates is a resolved address.
type Coordinates struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// ErrNoResult is returned when the geocoder has no match for an address.
var ErrNoResult = fmt.Errorf("geocoder: no result")

// Client queries a Nominatim-compatible geocoding endpoint. Nominatim's usage
// policy caps clients at one request per second, so all lookups must go
// through a Service, which serializes them behind a ticker.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a geocoding client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves one address.
func (c *Client) Search(ctx context.Context, address string) (*Coordinates, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("geocoder base url required")
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim requires an identifying User-Agent
	req.Header.Set("User-Agent", "palengke-admin/1.0")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("geocoder response %d: %s", resp.StatusCode, string(data))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon: %w", err)
	}
	return &Coordinates{Lat: lat, Lon: lon, DisplayName: results[0].DisplayName}, nil
}
