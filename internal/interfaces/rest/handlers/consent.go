package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/application/services"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/interfaces/rest"
)

type initiateConsentRequest struct {
	SubjectID    string   `json:"subject_id"`
	Categories   []string `json:"categories"`
	Purpose      string   `json:"purpose"`
	DurationDays int      `json:"duration_days"`
}

type consentResponse struct {
	Success     bool      `json:"success"`
	Handle      string    `json:"consent_handle"`
	RemoteID    string    `json:"consent_id,omitempty"`
	ApprovalURL string    `json:"consent_url,omitempty"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toConsentResponse(c *domain.ConsentRequest) consentResponse {
	resp := consentResponse{
		Success:   true,
		Handle:    c.Handle,
		Status:    string(c.Status),
		ExpiresAt: c.ExpiresAt,
	}
	if c.RemoteID != nil {
		resp.RemoteID = *c.RemoteID
	}
	if c.ApprovalURL != nil {
		resp.ApprovalURL = *c.ApprovalURL
	}
	return resp
}

func (h *Handlers) InitiateConsent(w http.ResponseWriter, r *http.Request) {
	var req initiateConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}
	if req.DurationDays < 0 {
		rest.WriteError(w, application.NewInvalidInputError(errors.New("duration_days must not be negative")))
		return
	}

	consent, err := h.consentService.CreateConsent(r.Context(), services.CreateConsentCommand{
		SubjectID:  req.SubjectID,
		Categories: req.Categories,
		Purpose:    req.Purpose,
		Duration:   time.Duration(req.DurationDays) * 24 * time.Hour,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, toConsentResponse(consent))
}

type consentStatusRequest struct {
	Handle string `json:"consent_handle"`
}

func (h *Handlers) ConsentStatus(w http.ResponseWriter, r *http.Request) {
	var req consentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	consent, err := h.consentService.GetStatus(r.Context(), req.Handle)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toConsentResponse(consent))
}
