package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/storefront/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func galleryOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order asc, created_at asc")
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	list := []domain.Product{}
	q := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("products.*").
		Joins("LEFT JOIN categories c ON c.id = products.category_id")
	if s := strings.TrimSpace(f.Search); s != "" {
		like := likePattern(s)
		q = q.Where("(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(products.description) LIKE ? ESCAPE '\\' OR LOWER(c.name) LIKE ? ESCAPE '\\')", like, like, like)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.CategorySlug != "" {
		q = q.Where("(c.slug = ? OR products.category_slug = ?)", f.CategorySlug, f.CategorySlug)
	}
	if f.Availability != "" {
		q = q.Where("products.availability = ?", f.Availability)
	}
	if f.Sortiment != "" {
		q = q.Where(`products.id IN (SELECT psc.product_id FROM product_sortiment_categories psc
			JOIN sortiment_categories sc ON sc.id = psc.sortiment_category_id WHERE sc.slug = ?)`, f.Sortiment)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Order("products.name asc").
		Preload("Category").
		Preload("Sortiment").
		Preload("Images", galleryOrder).
		Find(&list).Error
	if err != nil {
		return nil, translate(err, "products")
	}
	if err := loadAttributes(r.db.WithContext(ctx), list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return findProduct(r.db.WithContext(ctx), id)
}

func findProduct(db *gorm.DB, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := db.Preload("Category").
		Preload("Sortiment").
		Preload("Images", galleryOrder).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	list := []domain.Product{p}
	if err := loadAttributes(db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// loadAttributes trae los atributos de todos los productos en una sola consulta.
func loadAttributes(db *gorm.DB, list []domain.Product) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(list))
	idx := make(map[uuid.UUID]int, len(list))
	for i := range list {
		ids = append(ids, list[i].ID)
		idx[list[i].ID] = i
		list[i].Attributes = map[string]domain.AttributeEntry{}
	}
	var rows []domain.ProductAttribute
	if err := db.Where("product_id IN ?", ids).Order("name asc").Find(&rows).Error; err != nil {
		return translate(err, "product attributes")
	}
	for _, a := range rows {
		if i, ok := idx[a.ProductID]; ok {
			list[i].Attributes[a.Name] = domain.AttributeEntry{Value: a.Value, Type: a.Type}
		}
	}
	return nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product, sortiment []string) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Availability == "" {
		p.Availability = domain.AvailabilityInStock
	}
	attrs := p.Attributes
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.CategoryID != nil || p.CategorySlug != "" {
			ref := p.CategorySlug
			if p.CategoryID != nil {
				ref = p.CategoryID.String()
			}
			cat, err := resolveCategory(tx, ref)
			if err != nil {
				return err
			}
			p.CategoryID, p.CategorySlug = &cat.ID, cat.Slug
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return translate(err, "product")
		}
		if err := replaceAttributes(tx, p.ID, attrs); err != nil {
			return err
		}
		return replaceSortiment(tx, p, sortiment)
	})
	if err != nil {
		return err
	}
	saved, err := r.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *saved
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return translate(err, "product")
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Image != nil {
			p.Image = *patch.Image
		}
		if patch.Availability != nil {
			p.Availability = *patch.Availability
		}
		if patch.Category != nil {
			if *patch.Category == "" {
				p.CategoryID, p.CategorySlug = nil, ""
			} else {
				cat, err := resolveCategory(tx, *patch.Category)
				if err != nil {
					return err
				}
				p.CategoryID, p.CategorySlug = &cat.ID, cat.Slug
			}
		}
		err := tx.Model(&p).
			Select("name", "description", "price", "image", "availability", "category_id", "category_slug", "updated_at").
			Updates(&p).Error
		if err != nil {
			return translate(err, "product")
		}
		if patch.Attributes != nil {
			if err := replaceAttributes(tx, id, patch.Attributes); err != nil {
				return err
			}
		}
		if patch.Sortiment != nil {
			return replaceSortiment(tx, &p, patch.Sortiment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.Errorf(domain.ErrNotFound, "product not found")
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_sortiment_categories WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		// los order_items conservan su copia; product_id queda solo como referencia
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
}

// --- Galería ---

func (r *ProductRepo) ListImages(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error) {
	list := []domain.ProductImage{}
	if err := galleryOrder(r.db.WithContext(ctx)).Where("product_id = ?", productID).Find(&list).Error; err != nil {
		return nil, translate(err, "product images")
	}
	return list, nil
}

func (r *ProductRepo) AddImage(ctx context.Context, productID uuid.UUID, url string, order *int) (*domain.ProductImage, error) {
	img := &domain.ProductImage{ID: uuid.New(), ProductID: productID, URL: url, CreatedAt: time.Now()}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.Select("id", "image").First(&p, "id = ?", productID).Error; err != nil {
			return translate(err, "product")
		}
		if order != nil {
			img.DisplayOrder = *order
		} else {
			var next int
			if err := tx.Model(&domain.ProductImage{}).Where("product_id = ?", productID).
				Select("COALESCE(MAX(display_order), -1) + 1").Row().Scan(&next); err != nil {
				return err
			}
			img.DisplayOrder = next
		}
		if err := tx.Create(img).Error; err != nil {
			return translate(err, "product image")
		}
		if p.Image == "" {
			return tx.Model(&domain.Product{}).Where("id = ?", productID).Update("image", url).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *ProductRepo) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).Delete(&domain.ProductImage{})
	if res.Error != nil {
		return translate(res.Error, "product image")
	}
	if res.RowsAffected == 0 {
		return domain.Errorf(domain.ErrNotFound, "image not found")
	}
	return nil
}

func (r *ProductRepo) UpdateImageOrder(ctx context.Context, productID, imageID uuid.UUID, order int) error {
	res := r.db.WithContext(ctx).Model(&domain.ProductImage{}).
		Where("id = ? AND product_id = ?", imageID, productID).
		Update("display_order", order)
	if res.Error != nil {
		return translate(res.Error, "product image")
	}
	if res.RowsAffected == 0 {
		return domain.Errorf(domain.ErrNotFound, "image not found")
	}
	return nil
}

// resolveCategory acepta un id o un slug.
func resolveCategory(tx *gorm.DB, ref string) (*domain.Category, error) {
	var c domain.Category
	q := tx.Model(&domain.Category{})
	if id, err := uuid.Parse(ref); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", ref)
	}
	if err := q.First(&c).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.Errorf(domain.ErrInvalid, "unknown category: %s", ref)
		}
		return nil, err
	}
	return &c, nil
}

func replaceAttributes(tx *gorm.DB, productID uuid.UUID, attrs map[string]domain.AttributeEntry) error {
	if err := tx.Where("product_id = ?", productID).Delete(&domain.ProductAttribute{}).Error; err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}
	rows := make([]domain.ProductAttribute, 0, len(attrs))
	for name, a := range attrs {
		typ := a.Type
		if typ == "" {
			typ = "text"
		}
		rows = append(rows, domain.ProductAttribute{ID: uuid.New(), ProductID: productID, Name: name, Value: a.Value, Type: typ})
	}
	return tx.Create(&rows).Error
}

func replaceSortiment(tx *gorm.DB, p *domain.Product, slugs []string) error {
	assoc := tx.Model(p).Association("Sortiment")
	if len(slugs) == 0 {
		return assoc.Clear()
	}
	var tags []domain.SortimentCategory
	if err := tx.Where("slug IN ?", slugs).Find(&tags).Error; err != nil {
		return err
	}
	if len(tags) != len(uniqueStrings(slugs)) {
		return domain.Errorf(domain.ErrInvalid, "unknown sortiment category")
	}
	return assoc.Replace(tags)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
