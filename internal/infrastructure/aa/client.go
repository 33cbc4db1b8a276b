// Package aa implements the HTTP client for the account aggregator network.
// It is a pure transport boundary: it signs requests, shuttles JSON, and maps
// failures into typed errors. Interpreting statuses is the caller's job.
package aa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/config"
)

// Client is the port for the aggregator network.
type Client interface {
	CreateConsent(ctx context.Context, req ConsentCreateRequest) (*ConsentCreateResponse, error)
	GetConsentStatus(ctx context.Context, remoteID string) (string, error)
	RequestFetch(ctx context.Context, remoteID string, from, to time.Time) (string, error)
	FetchSession(ctx context.Context, sessionID string) (*FIPayload, error)
}

const (
	consentMode     = "STORE"
	fetchType       = "PERIODIC"
	purposeRefURI   = "https://api.rebit.org.in/aa/purpose/%s.xml"
	providerID      = "SETU-FIP"
	encryptionCurve = "Curve25519"
)

var consentTypes = []string{"TRANSACTIONS", "PROFILE", "SUMMARY"}

type HTTPClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	webhookURL   string
	httpClient   *http.Client
}

func NewClient(cfg config.AAConfig) Client {
	return &HTTPClient{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		webhookURL:   cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPClient) CreateConsent(ctx context.Context, req ConsentCreateRequest) (*ConsentCreateResponse, error) {
	artefact := consentArtefact{
		ConsentStart:  req.Start.Format(time.RFC3339),
		ConsentExpiry: req.Expiry.Format(time.RFC3339),
		ConsentMode:   consentMode,
		FetchType:     fetchType,
		ConsentTypes:  consentTypes,
		FITypes:       req.Categories,
		DataConsumer:  consentParty{ID: c.clientID, Type: "FIU"},
		DataProvider:  consentParty{ID: providerID, Type: "FIP"},
		Customer:      consentCustomer{ID: req.SubjectID},
		Purpose: consentPurpose{
			Code:   req.PurposeCode,
			RefURI: fmt.Sprintf(purposeRefURI, req.PurposeCode),
			Text:   req.PurposeText,
		},
		FIDataRange: consentDateRange{
			From: req.RangeFrom.Format(time.RFC3339),
			To:   req.RangeTo.Format(time.RFC3339),
		},
		Frequency: consentPeriod{Unit: "MONTH", Value: 1},
		DataLife:  consentPeriod{Unit: "MONTH", Value: 3},
	}
	if c.webhookURL != "" {
		artefact.Notifier = &consentNotifier{Type: "WEBHOOK", URL: c.webhookURL}
	}

	url := fmt.Sprintf("%s/consents", c.baseURL)
	resp, err := sendRequest[consentArtefact, consentCreateResponse](c, ctx, http.MethodPost, url, &artefact)
	if err != nil {
		return nil, err
	}
	return &ConsentCreateResponse{RemoteID: resp.ID, ApprovalURL: resp.URL}, nil
}

func (c *HTTPClient) GetConsentStatus(ctx context.Context, remoteID string) (string, error) {
	url := fmt.Sprintf("%s/Consent/handle/%s", c.baseURL, remoteID)
	resp, err := sendRequest[any, consentStatusResponse](c, ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *HTTPClient) RequestFetch(ctx context.Context, remoteID string, from, to time.Time) (string, error) {
	body := fetchRequest{
		ConsentID: remoteID,
		From:      from.Format(time.RFC3339),
		To:        to.Format(time.RFC3339),
		Curve:     encryptionCurve,
		Format:    "json",
	}

	url := fmt.Sprintf("%s/FI/request", c.baseURL)
	resp, err := sendRequest[fetchRequest, fetchRequestResponse](c, ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (c *HTTPClient) FetchSession(ctx context.Context, sessionID string) (*FIPayload, error) {
	url := fmt.Sprintf("%s/FI/fetch/%s", c.baseURL, sessionID)
	return sendRequest[any, FIPayload](c, ctx, http.MethodGet, url, nil)
}

func sendRequest[Req any, Resp any](c *HTTPClient, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("x-client-id", c.clientID)
	httpReq.Header.Set("x-client-secret", c.clientSecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Op: method + " " + url, Err: err}
	}
	defer resp.Body.Close()

	// The network answers 202 while a fetch session is still being
	// assembled by the provider.
	if resp.StatusCode == http.StatusAccepted {
		var pending Resp
		if payload, ok := any(&pending).(*FIPayload); ok {
			payload.Status = "PENDING"
			return &pending, nil
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, &ProtocolError{
				StatusCode: resp.StatusCode,
				Body:       string(body),
				Message:    fmt.Sprintf("network returned status %d", resp.StatusCode),
			}
		}
		return nil, &ProtocolError{
			Code:       errResp.Code,
			Message:    errResp.Message,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var networkResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&networkResp); err != nil {
		return nil, &TransportError{Op: method + " " + url, Err: fmt.Errorf("error decoding json response: %w", err)}
	}

	return &networkResp, nil
}
