package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

type AttributeRepo struct{ db *gorm.DB }

func NewAttributeRepo(db *gorm.DB) *AttributeRepo { return &AttributeRepo{db: db} }

func valuesOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order asc, display_name asc")
}

func (r *AttributeRepo) Categories(ctx context.Context) ([]domain.AttributeCategory, error) {
	list := []domain.AttributeCategory{}
	if err := r.db.WithContext(ctx).Preload("Values", valuesOrder).Order("display_name asc").Find(&list).Error; err != nil {
		return nil, translate(err, "attribute categories")
	}
	return list, nil
}

func (r *AttributeRepo) CategoryByName(ctx context.Context, name string) (*domain.AttributeCategory, error) {
	var c domain.AttributeCategory
	if err := r.db.WithContext(ctx).Preload("Values", valuesOrder).First(&c, "name = ?", name).Error; err != nil {
		return nil, translate(err, "attribute category")
	}
	return &c, nil
}

func (r *AttributeRepo) CreateCategory(ctx context.Context, c *domain.AttributeCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.AttributeCategory{}).Where("name = ?", c.Name).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return domain.Errorf(domain.ErrDuplicate, "attribute category already exists")
	}
	c.Values = nil
	return translate(r.db.WithContext(ctx).Create(c).Error, "attribute category")
}

func (r *AttributeRepo) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.AttributeCategoryPatch) (*domain.AttributeCategory, error) {
	var c domain.AttributeCategory
	db := r.db.WithContext(ctx)
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "attribute category")
	}
	if patch.Name != nil && *patch.Name != c.Name {
		var n int64
		if err := db.Model(&domain.AttributeCategory{}).Where("name = ? AND id <> ?", *patch.Name, id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, domain.Errorf(domain.ErrDuplicate, "attribute category already exists")
		}
		c.Name = *patch.Name
	}
	if patch.DisplayName != nil {
		c.DisplayName = *patch.DisplayName
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if err := db.Model(&c).Select("name", "display_name", "description", "updated_at").Updates(&c).Error; err != nil {
		return nil, translate(err, "attribute category")
	}
	return r.CategoryByName(ctx, c.Name)
}

// DeleteCategory borra la categoría junto con sus valores.
func (r *AttributeRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&domain.AttributeValue{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.AttributeCategory{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Errorf(domain.ErrNotFound, "attribute category not found")
		}
		return nil
	})
}

func (r *AttributeRepo) CreateValue(ctx context.Context, v *domain.AttributeValue) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	db := r.db.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.AttributeCategory{}).Where("id = ?", v.CategoryID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.Errorf(domain.ErrNotFound, "attribute category not found")
	}
	if err := ensureValueFree(db, v.CategoryID, v.Value, uuid.Nil); err != nil {
		return err
	}
	return translateValue(db.Create(v).Error)
}

func (r *AttributeRepo) UpdateValue(ctx context.Context, id uuid.UUID, patch domain.AttributeValuePatch) (*domain.AttributeValue, error) {
	db := r.db.WithContext(ctx)
	var v domain.AttributeValue
	if err := db.First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err, "attribute value")
	}
	if patch.Value != nil && *patch.Value != v.Value {
		if err := ensureValueFree(db, v.CategoryID, *patch.Value, id); err != nil {
			return nil, err
		}
		v.Value = *patch.Value
	}
	if patch.DisplayName != nil {
		v.DisplayName = *patch.DisplayName
	}
	if patch.Description != nil {
		v.Description = *patch.Description
	}
	if patch.DisplayOrder != nil {
		v.DisplayOrder = *patch.DisplayOrder
	}
	if err := db.Model(&v).Select("value", "display_name", "description", "display_order", "updated_at").Updates(&v).Error; err != nil {
		return nil, translateValue(err)
	}
	return &v, nil
}

func (r *AttributeRepo) DeleteValue(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.AttributeValue{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Errorf(domain.ErrNotFound, "attribute value not found")
	}
	return nil
}

func ensureValueFree(db *gorm.DB, categoryID uuid.UUID, value string, self uuid.UUID) error {
	var n int64
	if err := db.Model(&domain.AttributeValue{}).Where("category_id = ? AND value = ? AND id <> ?", categoryID, value, self).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return domain.Errorf(domain.ErrDuplicate, "value already exists in this category")
	}
	return nil
}

func translateValue(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Errorf(domain.ErrDuplicate, "value already exists in this category")
	}
	return translate(err, "attribute value")
}
