package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AttributeCategory struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string           `gorm:"size:80;uniqueIndex;not null" json:"name"`
	DisplayName string           `gorm:"size:140" json:"displayName"`
	Description string           `gorm:"type:text" json:"description"`
	Values      []AttributeValue `gorm:"foreignKey:CategoryID" json:"values"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type AttributeValue struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attr_cat_value" json:"categoryId"`
	Value        string    `gorm:"size:140;not null;uniqueIndex:idx_attr_cat_value" json:"value"`
	DisplayName  string    `gorm:"size:140" json:"displayName"`
	Description  string    `gorm:"type:text" json:"description"`
	DisplayOrder int       `gorm:"default:0" json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AttributeCategoryPatch struct {
	Name        *string
	DisplayName *string
	Description *string
}

type AttributeValuePatch struct {
	Value        *string
	DisplayName  *string
	Description  *string
	DisplayOrder *int
}

type AttributeRepo interface {
	Categories(ctx context.Context) ([]AttributeCategory, error)
	CategoryByName(ctx context.Context, name string) (*AttributeCategory, error)
	CreateCategory(ctx context.Context, c *AttributeCategory) error
	UpdateCategory(ctx context.Context, id uuid.UUID, patch AttributeCategoryPatch) (*AttributeCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateValue(ctx context.Context, v *AttributeValue) error
	UpdateValue(ctx context.Context, id uuid.UUID, patch AttributeValuePatch) (*AttributeValue, error)
	DeleteValue(ctx context.Context, id uuid.UUID) error
}
