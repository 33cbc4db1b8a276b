package services

import (
	"log/slog"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
	"github.com/shopspring/decimal"
)

// date layouts seen across providers on the network
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeFIPayload flattens a raw fetch payload into canonical records: one
// row per transaction with the owning account's fields copied on, and a
// single summary row for an account with no transactions. A malformed amount
// or date in one transaction never fails the batch; amounts fall back to zero
// and dates to nil.
func NormalizeFIPayload(payload *aa.FIPayload, logger *slog.Logger) []domain.NormalizedRecord {
	records := make([]domain.NormalizedRecord, 0, len(payload.Accounts))

	for _, account := range payload.Accounts {
		info := account.Account
		base := domain.NormalizedRecord{
			AccountID:           info.AccountID,
			AccountType:         info.Type,
			MaskedAccountNumber: info.MaskedAccountNumber,
			Currency:            info.Currency,
			CurrentBalance:      parseAmount(info.CurrentBalance, logger, "current_balance", info.AccountID),
		}

		if len(account.Transactions) == 0 {
			records = append(records, base)
			continue
		}

		for _, txn := range account.Transactions {
			record := base
			record.TransactionID = ptr(txn.TransactionID)
			record.TransactionDate = parseDate(txn.TransactionDate)
			record.TransactionType = ptr(txn.Type)
			record.Description = ptr(txn.Description)

			amount := parseAmount(txn.Amount, logger, "amount", txn.TransactionID)
			record.Amount = &amount

			records = append(records, record)
		}
	}

	return records
}

func parseAmount(raw aa.RawNumber, logger *slog.Logger, field, id string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(raw.String())
	if err != nil {
		logger.Warn("malformed numeric field, defaulting to zero",
			"field", field,
			"id", id,
			"value", raw.String())
		return decimal.Zero
	}
	return amount
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func ptr(s string) *string {
	return &s
}
