package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/domain"
)

type CategoryUC struct {
	Categories domain.CategoryRepo
}

func (uc *CategoryUC) List(ctx context.Context, search string) ([]domain.Category, error) {
	return uc.Categories.ListCategories(ctx, strings.TrimSpace(search))
}

func (uc *CategoryUC) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if slug == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "slug is required")
	}
	return uc.Categories.FindCategoryBySlug(ctx, slug)
}

func (uc *CategoryUC) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return uc.Categories.FindCategoryByID(ctx, id)
}

func (uc *CategoryUC) Create(ctx context.Context, c *domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Errorf(domain.ErrInvalid, "name is required")
	}
	c.Slug = domain.Slugify(c.Slug)
	if c.Slug == "" {
		c.Slug = domain.Slugify(c.Name)
	}
	return uc.Categories.CreateCategory(ctx, c)
}

func (uc *CategoryUC) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return nil, domain.Errorf(domain.ErrInvalid, "name cannot be empty")
		}
		patch.Name = &n
	}
	if patch.Slug != nil {
		s := domain.Slugify(*patch.Slug)
		if s == "" {
			return nil, domain.Errorf(domain.ErrInvalid, "slug cannot be empty")
		}
		patch.Slug = &s
	}
	return uc.Categories.UpdateCategory(ctx, id, patch)
}

func (uc *CategoryUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Categories.DeleteCategory(ctx, id)
}

type ProductUC struct {
	Products  domain.ProductRepo
	Sortiment domain.SortimentRepo
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.Availability != "" && !f.Availability.Valid() {
		return nil, domain.Errorf(domain.ErrInvalid, "invalid availability: %s", f.Availability)
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product, sortiment []string) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Errorf(domain.ErrInvalid, "name is required")
	}
	if p.Price.IsNegative() {
		return domain.Errorf(domain.ErrInvalid, "price cannot be negative")
	}
	if p.Availability != "" && !p.Availability.Valid() {
		return domain.Errorf(domain.ErrInvalid, "invalid availability: %s", p.Availability)
	}
	if err := validateAttributes(p.Attributes); err != nil {
		return err
	}
	p.Price = p.Price.Round(2)
	return uc.Products.Create(ctx, p, sortiment)
}

func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return nil, domain.Errorf(domain.ErrInvalid, "name cannot be empty")
		}
		patch.Name = &n
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, domain.Errorf(domain.ErrInvalid, "price cannot be negative")
		}
		rounded := patch.Price.Round(2)
		patch.Price = &rounded
	}
	if patch.Availability != nil && !patch.Availability.Valid() {
		return nil, domain.Errorf(domain.ErrInvalid, "invalid availability: %s", *patch.Availability)
	}
	if err := validateAttributes(patch.Attributes); err != nil {
		return nil, err
	}
	return uc.Products.Update(ctx, id, patch)
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Products.Delete(ctx, id)
}

func validateAttributes(attrs map[string]domain.AttributeEntry) error {
	for name := range attrs {
		if strings.TrimSpace(name) == "" {
			return domain.Errorf(domain.ErrInvalid, "attribute name cannot be empty")
		}
	}
	return nil
}

// --- Galería ---

func (uc *ProductUC) Images(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error) {
	if _, err := uc.Products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return uc.Products.ListImages(ctx, productID)
}

func (uc *ProductUC) AddImage(ctx context.Context, productID uuid.UUID, url string, order *int) (*domain.ProductImage, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "image url is required")
	}
	return uc.Products.AddImage(ctx, productID, url, order)
}

func (uc *ProductUC) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	return uc.Products.DeleteImage(ctx, productID, imageID)
}

func (uc *ProductUC) ReorderImage(ctx context.Context, productID, imageID uuid.UUID, order int) error {
	return uc.Products.UpdateImageOrder(ctx, productID, imageID, order)
}

// --- Sortimento ---

func (uc *ProductUC) SortimentTags(ctx context.Context) ([]domain.SortimentCategory, error) {
	return uc.Sortiment.List(ctx)
}

func (uc *ProductUC) SortimentProducts(ctx context.Context, slug string) ([]domain.Product, error) {
	if slug == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "sortiment slug is required")
	}
	return uc.Sortiment.Products(ctx, slug)
}
