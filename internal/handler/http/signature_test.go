package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/health"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/event"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/service"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubResolver struct {
	recipients []domain.Recipient
}

func (s *stubResolver) Resolve(_ context.Context, _ domain.AddressRecord) []domain.Recipient {
	return s.recipients
}

type stubDispatcher struct{}

func (s *stubDispatcher) Dispatch(_ context.Context, _, _, _ string, recipients []domain.Recipient) []domain.NotificationOutcome {
	outcomes := make([]domain.NotificationOutcome, len(recipients))
	for i, r := range recipients {
		outcomes[i] = domain.NotificationOutcome{Recipient: r, Sent: true}
	}
	return outcomes
}

type stubRegions struct {
	cfg domain.RegionConfig
	ok  bool
}

func (s *stubRegions) Lookup(_ context.Context, _ string) (domain.RegionConfig, bool) {
	return s.cfg, s.ok
}

func newTestRouter(res *stubResolver, regions *stubRegions) http.Handler {
	logger := newTestLogger()
	svc := service.NewPetitionService(res, &stubDispatcher{}, regions, event.NewProducer(nil, logger), logger)
	return NewRouter(svc, health.NewHandler(), logger)
}

func TestProcessSignatureEndpoint(t *testing.T) {
	router := newTestRouter(&stubResolver{
		recipients: []domain.Recipient{{Email: "a@x.gov", Name: "Senator Jane Doe"}},
	}, &stubRegions{})

	body := map[string]string{
		"signer_name":  "Pat Signer",
		"signer_email": "pat@example.org",
		"street":       "1 Main St",
		"city":         "Concord",
		"region":       "NH",
		"postal_code":  "03301",
		"subject":      "Save the river",
		"message":      "Please act.",
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data service.SignatureResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Recipients, 1)
	assert.Equal(t, "Senator Jane Doe", resp.Data.Recipients[0].Name)
	require.Len(t, resp.Data.Outcomes, 1)
	assert.True(t, resp.Data.Outcomes[0].Sent)
}

func TestProcessSignatureEndpoint_ValidationFailure(t *testing.T) {
	router := newTestRouter(&stubResolver{}, &stubRegions{})

	// Missing subject and region.
	payload := []byte(`{"signer_email":"pat@example.org","postal_code":"03301","message":"Please act."}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Region")
	assert.Contains(t, resp.Error.Fields, "Subject")
}

func TestProcessSignatureEndpoint_EmptyMessage(t *testing.T) {
	router := newTestRouter(&stubResolver{}, &stubRegions{})

	payload := []byte(`{
		"signer_email":"pat@example.org",
		"region":"NH",
		"postal_code":"03301",
		"subject":"Save the river",
		"message":""
	}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessSignatureEndpoint_MalformedJSON(t *testing.T) {
	router := newTestRouter(&stubResolver{}, &stubRegions{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signatures", bytes.NewReader([]byte(`{`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveRecipientsEndpoint(t *testing.T) {
	router := newTestRouter(&stubResolver{
		recipients: []domain.Recipient{{Email: "a@x.gov", Name: "Jane Doe"}},
	}, &stubRegions{})

	payload := []byte(`{"street":"1 Main St","city":"Concord","region":"NH","postal_code":"03301"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipients/resolve", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Recipient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a@x.gov", resp.Data[0].Email)
}

func TestResolveRecipientsEndpoint_IncompleteAddress(t *testing.T) {
	router := newTestRouter(&stubResolver{}, &stubRegions{})

	payload := []byte(`{"street":"1 Main St","city":"Concord"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipients/resolve", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Recipient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}

func TestGetRegionConfigEndpoint(t *testing.T) {
	router := newTestRouter(&stubResolver{}, &stubRegions{
		cfg: domain.RegionConfig{Region: "nh", Titles: map[string]string{"upper": "Senator"}},
		ok:  true,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/regions/NH/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.RegionConfig `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "nh", resp.Data.Region)
	assert.Equal(t, "Senator", resp.Data.Titles["upper"])
}

func TestGetRegionConfigEndpoint_NotFound(t *testing.T) {
	router := newTestRouter(&stubResolver{}, &stubRegions{ok: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/regions/zz/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
