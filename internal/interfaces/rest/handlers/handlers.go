// Package handlers exposes the consent and data-fetch operations over HTTP.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/aa-data-gateway/internal/application/services"
)

type Handlers struct {
	consentService *services.ConsentService
	fetchService   *services.FetchService
	logger         *slog.Logger
}

func NewHandlers(
	consentService *services.ConsentService,
	fetchService *services.FetchService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		consentService: consentService,
		fetchService:   fetchService,
		logger:         logger,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /data-collection/consent/initiate", h.InitiateConsent)
	mux.HandleFunc("POST /data-collection/consent/status", h.ConsentStatus)
	mux.HandleFunc("POST /data-collection/fi-data/request", h.RequestFIData)
	mux.HandleFunc("GET /data-collection/fi-data/fetch/{session_id}", h.FetchFIData)
	mux.HandleFunc("POST /webhook/consent", h.ConsentWebhook)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
