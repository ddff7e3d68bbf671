package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// httpDoer is satisfied by both httpclient.Client and httpclient.CircuitBreakerClient.
type httpDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// NominatimGeocoder resolves addresses against a Nominatim-compatible
// structured search endpoint.
type NominatimGeocoder struct {
	baseURL string
	country string
	email   string
	client  httpDoer
	logger  *slog.Logger
}

// NewNominatimGeocoder creates a geocoder for the given base URL. The country
// parameter is sent with every query; the email identifies this service to
// the backend operator as their usage policy requires.
func NewNominatimGeocoder(baseURL, country, email string, client httpDoer, logger *slog.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: baseURL,
		country: country,
		email:   email,
		client:  client,
		logger:  logger,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode performs a structured search for the address. A miss (no results)
// returns ErrNotFound; transport and decode failures are returned as-is so
// the caller can distinguish them.
func (g *NominatimGeocoder) Geocode(ctx context.Context, addr domain.AddressRecord) (domain.GeoCoordinate, error) {
	q := url.Values{}
	q.Set("street", addr.Street)
	q.Set("city", addr.City)
	q.Set("state", addr.Region)
	q.Set("postalcode", addr.PostalCode)
	q.Set("country", g.country)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if g.email != "" {
		q.Set("email", g.email)
	}

	reqURL := g.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return domain.GeoCoordinate{}, fmt.Errorf("create geocode request: %w", err)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return domain.GeoCoordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.GeoCoordinate{}, fmt.Errorf("geocode backend returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.GeoCoordinate{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(results) == 0 {
		return domain.GeoCoordinate{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.GeoCoordinate{}, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.GeoCoordinate{}, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	g.logger.DebugContext(ctx, "address geocoded",
		slog.String("region", addr.Region),
		slog.String("postal_code", addr.PostalCode),
		slog.Float64("latitude", lat),
		slog.Float64("longitude", lon),
	)

	return domain.GeoCoordinate{Latitude: lat, Longitude: lon}, nil
}
