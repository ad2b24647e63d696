package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/domain"
)

type AttributeUC struct {
	Attributes domain.AttributeRepo
}

func (uc *AttributeUC) Categories(ctx context.Context) ([]domain.AttributeCategory, error) {
	return uc.Attributes.Categories(ctx)
}

func (uc *AttributeUC) Values(ctx context.Context, categoryName string) ([]domain.AttributeValue, error) {
	c, err := uc.Attributes.CategoryByName(ctx, strings.TrimSpace(categoryName))
	if err != nil {
		return nil, err
	}
	if c.Values == nil {
		return []domain.AttributeValue{}, nil
	}
	return c.Values, nil
}

func (uc *AttributeUC) CreateCategory(ctx context.Context, c *domain.AttributeCategory) error {
	c.Name = strings.TrimSpace(c.Name)
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	if c.Name == "" {
		return domain.Errorf(domain.ErrInvalid, "name is required")
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}
	return uc.Attributes.CreateCategory(ctx, c)
}

func (uc *AttributeUC) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.AttributeCategoryPatch) (*domain.AttributeCategory, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "name cannot be empty")
	}
	return uc.Attributes.UpdateCategory(ctx, id, patch)
}

func (uc *AttributeUC) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return uc.Attributes.DeleteCategory(ctx, id)
}

func (uc *AttributeUC) CreateValue(ctx context.Context, v *domain.AttributeValue) error {
	v.Value = strings.TrimSpace(v.Value)
	v.DisplayName = strings.TrimSpace(v.DisplayName)
	if v.CategoryID == uuid.Nil || v.Value == "" || v.DisplayName == "" {
		return domain.Errorf(domain.ErrInvalid, "categoryId, value and displayName are required")
	}
	return uc.Attributes.CreateValue(ctx, v)
}

func (uc *AttributeUC) UpdateValue(ctx context.Context, id uuid.UUID, patch domain.AttributeValuePatch) (*domain.AttributeValue, error) {
	if patch.Value != nil && strings.TrimSpace(*patch.Value) == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "value cannot be empty")
	}
	return uc.Attributes.UpdateValue(ctx, id, patch)
}

func (uc *AttributeUC) DeleteValue(ctx context.Context, id uuid.UUID) error {
	return uc.Attributes.DeleteValue(ctx, id)
}
