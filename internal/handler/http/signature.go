package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/httputil"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/validator"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/service"
)

// SignatureHandler handles HTTP requests for the signature pipeline.
type SignatureHandler struct {
	service *service.PetitionService
	logger  *slog.Logger
}

// NewSignatureHandler creates a new signature HTTP handler.
func NewSignatureHandler(svc *service.PetitionService, logger *slog.Logger) *SignatureHandler {
	return &SignatureHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ProcessSignatureRequest is the JSON request body for processing a signature.
type ProcessSignatureRequest struct {
	SignerName     string `json:"signer_name"`
	SignerEmail    string `json:"signer_email" validate:"required,email"`
	Street         string `json:"street"`
	City           string `json:"city"`
	Region         string `json:"region" validate:"required"`
	PostalCode     string `json:"postal_code" validate:"required"`
	Subject        string `json:"subject" validate:"required"`
	Message        string `json:"message"`
	DefaultMessage string `json:"default_message"`
}

// ResolveRecipientsRequest is the JSON request body for a dry-run resolution.
// Fields are unvalidated on purpose: an incomplete address resolves to an
// empty recipient list, matching how the signature form previews recipients.
type ResolveRecipientsRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// --- Handlers ---

// ProcessSignature handles POST /api/v1/signatures
func (h *SignatureHandler) ProcessSignature(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1 MB to prevent abuse.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ProcessSignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.ProcessSignatureInput{
		SignerName:     req.SignerName,
		SignerEmail:    req.SignerEmail,
		Street:         req.Street,
		City:           req.City,
		Region:         req.Region,
		PostalCode:     req.PostalCode,
		Subject:        req.Subject,
		Message:        req.Message,
		DefaultMessage: req.DefaultMessage,
	}

	result, err := h.service.ProcessSignature(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// ResolveRecipients handles POST /api/v1/recipients/resolve
func (h *SignatureHandler) ResolveRecipients(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ResolveRecipientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	recipients := h.service.ResolveRecipients(r.Context(), req.Street, req.City, req.Region, req.PostalCode)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: recipients})
}

// GetRegionConfig handles GET /api/v1/regions/{region}/config
func (h *SignatureHandler) GetRegionConfig(w http.ResponseWriter, r *http.Request) {
	region := strings.ToLower(chi.URLParam(r, "region"))

	cfg, err := h.service.RegionConfig(r.Context(), region)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cfg})
}
