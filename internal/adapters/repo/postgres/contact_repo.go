package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

type ContactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Create(ctx context.Context, m *domain.ContactMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = domain.MessageNew
	}
	return translate(r.db.WithContext(ctx).Create(m).Error, "contact message")
}

func (r *ContactRepo) List(ctx context.Context, status domain.MessageStatus, limit int) ([]domain.ContactMessage, error) {
	list := []domain.ContactMessage{}
	q := r.db.WithContext(ctx).Model(&domain.ContactMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, translate(err, "contact messages")
	}
	return list, nil
}

func (r *ContactRepo) CountByStatus(ctx context.Context, status domain.MessageStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.ContactMessage{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, translate(err, "contact messages")
	}
	return n, nil
}

// SetStatus marca read_at la primera vez que el mensaje se lee. Un archivado no vuelve a read.
func (r *ContactRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return translate(err, "contact message")
		}
		if status == domain.MessageRead && m.Status == domain.MessageArchived {
			return nil
		}
		now := time.Now()
		upd := map[string]any{"status": status, "updated_at": now}
		if status == domain.MessageRead && m.ReadAt == nil {
			upd["read_at"] = now
			m.ReadAt = &now
		}
		m.Status = status
		return tx.Model(&domain.ContactMessage{}).Where("id = ?", id).Updates(upd).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}
