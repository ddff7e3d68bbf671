package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/health"
	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/middleware"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/service"
)

// NewRouter creates a chi router with all service routes registered.
func NewRouter(
	petitionService *service.PetitionService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("statelegemail"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// API endpoints
	signatureHandler := NewSignatureHandler(petitionService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/signatures", signatureHandler.ProcessSignature)
		r.Post("/recipients/resolve", signatureHandler.ResolveRecipients)
		r.Get("/regions/{region}/config", signatureHandler.GetRegionConfig)
	})

	return r
}

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
