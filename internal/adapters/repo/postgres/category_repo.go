package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCountSelect = "categories.*, (SELECT COUNT(*) FROM products WHERE products.category_id = categories.id) AS product_count"

func (r *CategoryRepo) ListCategories(ctx context.Context, search string) ([]domain.Category, error) {
	list := []domain.Category{}
	q := r.db.WithContext(ctx).Model(&domain.Category{}).Select(categoryCountSelect)
	if search != "" {
		like := likePattern(search)
		q = q.Where("(LOWER(categories.name) LIKE ? ESCAPE '\\' OR LOWER(categories.slug) LIKE ? ESCAPE '\\' OR LOWER(categories.description) LIKE ? ESCAPE '\\')", like, like, like)
	}
	if err := q.Order("categories.name asc").Find(&list).Error; err != nil {
		return nil, translate(err, "categories")
	}
	return list, nil
}

func (r *CategoryRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Select(categoryCountSelect).First(&c, "categories.id = ?", id).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *CategoryRepo) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Select(categoryCountSelect).First(&c, "categories.slug = ?", slug).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *CategoryRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Slug == "" {
		c.Slug = domain.Slugify(c.Name)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx, c.Slug, uuid.Nil); err != nil {
			return err
		}
		if c.ParentID != nil {
			if err := ensureCategoryExists(tx, *c.ParentID); err != nil {
				return err
			}
		}
		if err := tx.Create(c).Error; err != nil {
			return translateSlug(err)
		}
		return nil
	})
}

func (r *CategoryRepo) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Category
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return translate(err, "category")
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Slug != nil {
			c.Slug = *patch.Slug
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.Image != nil {
			c.Image = *patch.Image
		}
		if patch.ClearParent {
			c.ParentID = nil
		} else if patch.ParentID != nil {
			if *patch.ParentID == id {
				return domain.Errorf(domain.ErrInvalid, "category cannot be its own parent")
			}
			if err := ensureCategoryExists(tx, *patch.ParentID); err != nil {
				return err
			}
			c.ParentID = patch.ParentID
		}
		if err := ensureSlugFree(tx, c.Slug, id); err != nil {
			return err
		}
		if err := tx.Model(&c).Select("name", "slug", "description", "image", "parent_id", "updated_at").Updates(&c).Error; err != nil {
			return translateSlug(err)
		}
		// el slug denormalizado de los productos sigue al de la categoría
		return tx.Model(&domain.Product{}).Where("category_id = ?", id).Update("category_slug", c.Slug).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindCategoryByID(ctx, id)
}

func (r *CategoryRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategoryExists(tx, id); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.Errorf(domain.ErrInUse, "category contains %d products", n)
		}
		if err := tx.Model(&domain.Category{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Category{}, "id = ?", id).Error
	})
}

func ensureCategoryExists(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&domain.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.Errorf(domain.ErrNotFound, "category not found")
	}
	return nil
}

func ensureSlugFree(tx *gorm.DB, slug string, self uuid.UUID) error {
	if slug == "" {
		return domain.Errorf(domain.ErrInvalid, "category slug is required")
	}
	var n int64
	if err := tx.Model(&domain.Category{}).Where("slug = ? AND id <> ?", slug, self).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return domain.Errorf(domain.ErrDuplicate, "category slug already exists")
	}
	return nil
}

func translateSlug(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Errorf(domain.ErrDuplicate, "category slug already exists")
	}
	return translate(err, "category")
}
