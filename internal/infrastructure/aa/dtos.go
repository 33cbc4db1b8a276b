package aa

import (
	"bytes"
	"encoding/json"
	"time"
)

// ConsentCreateRequest carries everything the client needs to register a
// consent artefact with the network.
type ConsentCreateRequest struct {
	SubjectID   string
	Categories  []string
	PurposeText string
	PurposeCode string
	Start       time.Time
	Expiry      time.Time
	RangeFrom   time.Time
	RangeTo     time.Time
}

// ConsentCreateResponse is the network's acknowledgment of a new consent.
type ConsentCreateResponse struct {
	RemoteID    string
	ApprovalURL string
}

// consentArtefact is the wire shape of a consent registration. Field names
// follow the network's schema, which mixes casing conventions.
type consentArtefact struct {
	ConsentStart  string            `json:"consentStart"`
	ConsentExpiry string            `json:"consentExpiry"`
	ConsentMode   string            `json:"consentMode"`
	FetchType     string            `json:"fetchType"`
	ConsentTypes  []string          `json:"consentTypes"`
	FITypes       []string          `json:"fiTypes"`
	DataConsumer  consentParty      `json:"DataConsumer"`
	DataProvider  consentParty      `json:"DataProvider"`
	Customer      consentCustomer   `json:"Customer"`
	Purpose       consentPurpose    `json:"Purpose"`
	FIDataRange   consentDateRange  `json:"FIDataRange"`
	Frequency     consentPeriod     `json:"Frequency"`
	DataLife      consentPeriod     `json:"DataLife"`
	Notifier      *consentNotifier  `json:"ConsentNotifier,omitempty"`
}

type consentParty struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type consentCustomer struct {
	ID string `json:"id"`
}

type consentPurpose struct {
	Code   string `json:"code"`
	RefURI string `json:"refUri"`
	Text   string `json:"text"`
}

type consentDateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type consentPeriod struct {
	Unit  string `json:"unit"`
	Value int    `json:"value"`
}

type consentNotifier struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type consentCreateResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type consentStatusResponse struct {
	Status string `json:"status"`
}

type fetchRequest struct {
	ConsentID string `json:"consentId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Curve     string `json:"curve"`
	Format    string `json:"format"`
}

type fetchRequestResponse struct {
	SessionID string `json:"sessionId"`
}

// FIPayload is the raw result of a fetch session. Status values other than
// READY/COMPLETED mean the provider is still assembling the data.
type FIPayload struct {
	Status   string      `json:"status"`
	Accounts []FIAccount `json:"Accounts"`
}

func (p *FIPayload) Ready() bool {
	switch p.Status {
	case "", "READY", "COMPLETED":
		return true
	default:
		return false
	}
}

type FIAccount struct {
	Account      FIAccountInfo   `json:"account"`
	Transactions []FITransaction `json:"transactions"`
}

type FIAccountInfo struct {
	AccountID           string    `json:"accountId"`
	Type                string    `json:"type"`
	Name                string    `json:"name"`
	MaskedAccountNumber string    `json:"maskedAccountNumber"`
	CurrentBalance      RawNumber `json:"currentBalance"`
	AvailableBalance    RawNumber `json:"availableBalance"`
	OpeningDate         string    `json:"openingDate"`
	Currency            string    `json:"currency"`
}

type FITransaction struct {
	TransactionID   string    `json:"transactionId"`
	TransactionDate string    `json:"transactionDate"`
	Amount          RawNumber `json:"amount"`
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	CurrentBalance  RawNumber `json:"currentBalance"`
	ValueDate       string    `json:"valueDate"`
	Reference       string    `json:"reference"`
}

// RawNumber tolerates numeric fields arriving either as JSON numbers or as
// quoted strings; providers on the network are not consistent about it.
// Interpretation is deferred to the normalizer.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		// Covers quoted values and literal null; some providers quote
		// the word null too.
		if s == "null" {
			s = ""
		}
		*n = RawNumber(s)
		return nil
	}
	*n = RawNumber(bytes.TrimSpace(b))
	return nil
}

func (n RawNumber) String() string {
	return string(n)
}
