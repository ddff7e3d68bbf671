package geocode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/httpclient"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAddress(t *testing.T) domain.AddressRecord {
	t.Helper()
	addr, err := domain.NewAddressRecord("1 Main St", "Concord", "NH", "03301")
	require.NoError(t, err)
	return addr
}

func newClient() *httpclient.Client {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return httpclient.New(cfg)
}

func TestNominatimGeocoder_Success(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"street":     r.URL.Query().Get("street"),
			"city":       r.URL.Query().Get("city"),
			"state":      r.URL.Query().Get("state"),
			"postalcode": r.URL.Query().Get("postalcode"),
			"country":    r.URL.Query().Get("country"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"43.2","lon":"-71.5"}]`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.URL, "United States", "ops@example.org", newClient(), newTestLogger())

	coord, err := g.Geocode(context.Background(), testAddress(t))
	require.NoError(t, err)
	assert.InDelta(t, 43.2, coord.Latitude, 0.0001)
	assert.InDelta(t, -71.5, coord.Longitude, 0.0001)

	assert.Equal(t, "1 Main St", gotQuery["street"])
	assert.Equal(t, "Concord", gotQuery["city"])
	assert.Equal(t, "nh", gotQuery["state"])
	assert.Equal(t, "03301", gotQuery["postalcode"])
	assert.Equal(t, "United States", gotQuery["country"])
}

func TestNominatimGeocoder_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.URL, "United States", "", newClient(), newTestLogger())

	_, err := g.Geocode(context.Background(), testAddress(t))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNominatimGeocoder_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.URL, "United States", "", newClient(), newTestLogger())

	_, err := g.Geocode(context.Background(), testAddress(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestNominatimGeocoder_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.URL, "United States", "", newClient(), newTestLogger())

	_, err := g.Geocode(context.Background(), testAddress(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
