package postgres

import (
	"strings"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/domain"
)

type consentModel struct {
	Handle      string
	SubjectID   string
	Categories  string
	PurposeText string
	PurposeCode string
	Status      string
	RemoteID    *string
	ApprovalURL *string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}

func toConsentModel(c *domain.ConsentRequest) consentModel {
	return consentModel{
		Handle:      c.Handle,
		SubjectID:   c.SubjectID,
		Categories:  strings.Join(c.Categories, ","),
		PurposeText: c.PurposeText,
		PurposeCode: c.PurposeCode,
		Status:      string(c.Status),
		RemoteID:    c.RemoteID,
		ApprovalURL: c.ApprovalURL,
		CreatedAt:   c.CreatedAt,
		ExpiresAt:   c.ExpiresAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m consentModel) toDomain() *domain.ConsentRequest {
	var categories []string
	if m.Categories != "" {
		categories = strings.Split(m.Categories, ",")
	}
	return &domain.ConsentRequest{
		Handle:      m.Handle,
		SubjectID:   m.SubjectID,
		Categories:  categories,
		PurposeText: m.PurposeText,
		PurposeCode: m.PurposeCode,
		Status:      domain.ConsentStatus(m.Status),
		RemoteID:    m.RemoteID,
		ApprovalURL: m.ApprovalURL,
		CreatedAt:   m.CreatedAt,
		ExpiresAt:   m.ExpiresAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
