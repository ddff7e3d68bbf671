package openstates

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

func newClient() *httpclient.Client {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return httpclient.New(cfg)
}

func TestLegislatorsByLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/legislators/geo/", r.URL.Path)
		assert.Equal(t, "43.2", r.URL.Query().Get("lat"))
		assert.Equal(t, "-71.5", r.URL.Query().Get("long"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"email":"a@x.gov","full_name":"Jane Doe","chamber":"upper","state":"nh","photo_url":"http://img/a.jpg"},
			{"email":"","full_name":"No Email","chamber":"lower","state":"nh"}
		]`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", newClient(), newTestLogger())

	records, err := c.LegislatorsByLocation(context.Background(), domain.GeoCoordinate{Latitude: 43.2, Longitude: -71.5})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jane Doe", records[0].FullName)
	assert.Equal(t, "a@x.gov", records[0].Email)
	assert.Equal(t, "upper", records[0].Chamber)
	assert.Equal(t, "nh", records[0].Region)
	assert.Equal(t, "http://img/a.jpg", records[0].PhotoURL)
	assert.False(t, records[1].Usable())
}

func TestLegislatorsByLocation_NoCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued without a credential")
	}))
	defer server.Close()

	c := New(server.URL, "", newClient(), newTestLogger())

	_, err := c.LegislatorsByLocation(context.Background(), domain.GeoCoordinate{})
	assert.True(t, errors.Is(err, ErrNoCredential))
}

func TestLegislatorsByLocation_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL, "bad-key", newClient(), newTestLogger())

	_, err := c.LegislatorsByLocation(context.Background(), domain.GeoCoordinate{})
	require.Error(t, err)
}

func TestLegislatorsByLocation_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"object"}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", newClient(), newTestLogger())

	_, err := c.LegislatorsByLocation(context.Background(), domain.GeoCoordinate{})
	require.Error(t, err)
}

func TestRegionMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/nh/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chambers":{"upper":{"title":"Senator"},"lower":{"title":"Representative"},"other":{"title":""}}}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", newClient(), newTestLogger())

	titles, err := c.RegionMetadata(context.Background(), "nh")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"upper": "Senator",
		"lower": "Representative",
	}, titles)
}

func TestRegionMetadata_NoChambers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"New Hampshire"}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", newClient(), newTestLogger())

	_, err := c.RegionMetadata(context.Background(), "nh")
	assert.True(t, errors.Is(err, ErrNoChambers))
}

func TestRegionMetadata_NoCredential(t *testing.T) {
	c := New("http://unused", "", newClient(), newTestLogger())

	_, err := c.RegionMetadata(context.Background(), "nh")
	assert.True(t, errors.Is(err, ErrNoCredential))
}
