package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/interfaces/rest"
)

var errMissingConsentID = errors.New("consent_id is required")

type webhookPayload struct {
	ConsentID string `json:"consent_id"`
	Status    string `json:"status"`
}

// ConsentWebhook ingests asynchronous status notifications from the network.
// Notifications for unknown consent ids are acknowledged anyway: the network
// retries on non-2xx, and a consent we never created is not something a retry
// will fix.
func (h *Handlers) ConsentWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}
	if payload.ConsentID == "" {
		rest.WriteError(w, application.NewInvalidInputError(errMissingConsentID))
		return
	}

	consent, err := h.consentService.IngestWebhook(r.Context(), payload.ConsentID, payload.Status)
	if err != nil {
		if svcErr, ok := application.IsServiceError(err); ok && svcErr.Code == application.ErrCodeNotFound {
			h.logger.Warn("webhook for unknown consent discarded",
				"consent_id", payload.ConsentID,
				"status", payload.Status)
			rest.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, map[string]string{"consent_handle": consent.Handle, "status": string(consent.Status)})
}
