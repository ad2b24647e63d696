package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageNew      MessageStatus = "new"
	MessageRead     MessageStatus = "read"
	MessageArchived MessageStatus = "archived"
)

type ContactMessage struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string        `gorm:"size:140;not null" json:"name"`
	Email     string        `gorm:"size:140;not null" json:"email"`
	Phone     string        `gorm:"size:60" json:"phone"`
	Subject   string        `gorm:"size:200;not null" json:"subject"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    MessageStatus `gorm:"type:varchar(20);index;default:new" json:"status"`
	ReadAt    *time.Time    `json:"readAt"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type ContactRepo interface {
	Create(ctx context.Context, m *ContactMessage) error
	List(ctx context.Context, status MessageStatus, limit int) ([]ContactMessage, error)
	CountByStatus(ctx context.Context, status MessageStatus) (int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status MessageStatus) (*ContactMessage, error)
}
