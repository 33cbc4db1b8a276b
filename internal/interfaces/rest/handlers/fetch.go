package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application"
	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/interfaces/rest"
)

type fiDataRequest struct {
	Handle string `json:"consent_handle"`
}

type fiDataResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Handle    string `json:"consent_handle"`
}

func (h *Handlers) RequestFIData(w http.ResponseWriter, r *http.Request) {
	var req fiDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	session, err := h.fetchService.RequestData(r.Context(), req.Handle)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, fiDataResponse{
		Success:   true,
		SessionID: session.SessionID,
		Handle:    session.ConsentHandle,
	})
}

type recordResponse struct {
	AccountID           string     `json:"account_id"`
	AccountType         string     `json:"account_type"`
	MaskedAccountNumber string     `json:"masked_account_number"`
	Currency            string     `json:"currency"`
	CurrentBalance      string     `json:"current_balance"`
	TransactionID       *string    `json:"transaction_id"`
	TransactionDate     *time.Time `json:"transaction_date"`
	Amount              *string    `json:"amount"`
	TransactionType     *string    `json:"transaction_type"`
	Description         *string    `json:"description"`
}

type fetchDataResponse struct {
	Success bool             `json:"success"`
	Records []recordResponse `json:"records"`
}

func (h *Handlers) FetchFIData(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	records, err := h.fetchService.FetchData(r.Context(), sessionID)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	resp := fetchDataResponse{
		Success: true,
		Records: make([]recordResponse, 0, len(records)),
	}
	for _, record := range records {
		resp.Records = append(resp.Records, toRecordResponse(record))
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}

func toRecordResponse(record domain.NormalizedRecord) recordResponse {
	out := recordResponse{
		AccountID:           record.AccountID,
		AccountType:         record.AccountType,
		MaskedAccountNumber: record.MaskedAccountNumber,
		Currency:            record.Currency,
		CurrentBalance:      record.CurrentBalance.String(),
		TransactionID:       record.TransactionID,
		TransactionDate:     record.TransactionDate,
		TransactionType:     record.TransactionType,
		Description:         record.Description,
	}
	if record.Amount != nil {
		amount := record.Amount.String()
		out.Amount = &amount
	}
	return out
}
