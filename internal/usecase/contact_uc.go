package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/domain"
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactUC struct {
	Messages domain.ContactRepo
}

func (uc *ContactUC) Submit(ctx context.Context, req ContactRequest) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  domain.MessageNew,
	}
	if m.Name == "" || m.Email == "" || m.Subject == "" || m.Message == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "name, email, subject and message are required")
	}
	if !domain.ValidEmail(m.Email) {
		return nil, domain.Errorf(domain.ErrInvalid, "invalid email")
	}
	if err := uc.Messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *ContactUC) List(ctx context.Context, status string, limit int) ([]domain.ContactMessage, error) {
	st := domain.MessageStatus(strings.TrimSpace(status))
	switch st {
	case "", domain.MessageNew, domain.MessageRead, domain.MessageArchived:
	default:
		return nil, domain.Errorf(domain.ErrInvalid, "invalid status: %s", status)
	}
	if limit < 0 {
		limit = 0
	}
	return uc.Messages.List(ctx, st, limit)
}

func (uc *ContactUC) UnreadCount(ctx context.Context) (int64, error) {
	return uc.Messages.CountByStatus(ctx, domain.MessageNew)
}

func (uc *ContactUC) MarkRead(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error) {
	return uc.Messages.SetStatus(ctx, id, domain.MessageRead)
}

func (uc *ContactUC) Archive(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error) {
	return uc.Messages.SetStatus(ctx, id, domain.MessageArchived)
}
