package openstates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// ErrNoCredential is returned when a request is attempted without an API key.
var ErrNoCredential = errors.New("openstates: no API key configured")

// ErrNoChambers is returned when the metadata response carries no chamber
// data for the region. Recipients still resolve, just without titles.
var ErrNoChambers = errors.New("openstates: region metadata has no chambers")

// httpDoer is satisfied by both httpclient.Client and httpclient.CircuitBreakerClient.
type httpDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client queries the legislator directory and region metadata APIs.
type Client struct {
	baseURL string
	apiKey  string
	client  httpDoer
	logger  *slog.Logger
}

// New creates an OpenStates API client.
func New(baseURL, apiKey string, client httpDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// LegislatorsByLocation fetches the officials whose districts contain the
// given coordinate. One request is issued per resolution.
func (c *Client) LegislatorsByLocation(ctx context.Context, coord domain.GeoCoordinate) ([]domain.LegislatorRecord, error) {
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	q.Set("long", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	q.Set("apikey", c.apiKey)

	reqURL := c.baseURL + "/legislators/geo/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create directory request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory API returned status %d", resp.StatusCode)
	}

	var records []domain.LegislatorRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}

	c.logger.DebugContext(ctx, "directory lookup complete",
		slog.Float64("latitude", coord.Latitude),
		slog.Float64("longitude", coord.Longitude),
		slog.Int("records", len(records)),
	)

	return records, nil
}

type metadataResponse struct {
	Chambers map[string]struct {
		Title string `json:"title"`
	} `json:"chambers"`
}

// RegionMetadata fetches the chamber-to-title mapping for a region. Chambers
// with an empty title are omitted from the result.
func (c *Client) RegionMetadata(ctx context.Context, region string) (map[string]string, error) {
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)

	reqURL := c.baseURL + "/metadata/" + url.PathEscape(region) + "/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create metadata request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata API returned status %d", resp.StatusCode)
	}

	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata response: %w", err)
	}

	if len(meta.Chambers) == 0 {
		return nil, ErrNoChambers
	}

	titles := make(map[string]string, len(meta.Chambers))
	for chamber, info := range meta.Chambers {
		if info.Title == "" {
			continue
		}
		titles[chamber] = info.Title
	}

	return titles, nil
}
