package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NormalizedRecord is the canonical output row produced from a fetch session.
// One row is emitted per transaction, with the owning account's fields copied
// onto it. An account with no transactions yields a single summary row whose
// transaction fields are nil, so accounts are never silently dropped.
type NormalizedRecord struct {
	AccountID           string
	AccountType         string
	MaskedAccountNumber string
	Currency            string
	CurrentBalance      decimal.Decimal

	TransactionID   *string
	TransactionDate *time.Time
	Amount          *decimal.Decimal
	TransactionType *string
	Description     *string
}

// IsSummary reports whether the record is an account-summary row rather than
// a transaction row.
func (r *NormalizedRecord) IsSummary() bool {
	return r.TransactionID == nil
}
