package domain

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityOnOrder    Availability = "on_order"
	AvailabilityOutOfStock Availability = "out_of_stock"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityInStock, AvailabilityOnOrder, AvailabilityOutOfStock:
		return true
	}
	return false
}

type Category struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:140;not null" json:"name"`
	Slug         string     `gorm:"size:140;uniqueIndex;not null" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	Image        string     `gorm:"size:255" json:"image"`
	ParentID     *uuid.UUID `gorm:"type:uuid;index" json:"parentId"`
	ProductCount int64      `gorm:"->;-:migration" json:"productCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Product struct {
	ID           uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                    `gorm:"size:180;not null;index" json:"name"`
	Description  string                    `gorm:"type:text" json:"description"`
	Price        decimal.Decimal           `gorm:"type:decimal(12,2);not null" json:"price"`
	Image        string                    `gorm:"size:255" json:"image"`
	CategoryID   *uuid.UUID                `gorm:"type:uuid;index" json:"categoryId"`
	CategorySlug string                    `gorm:"size:140;index" json:"categorySlug"`
	Category     *Category                 `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Availability Availability              `gorm:"type:varchar(20);default:in_stock;index" json:"availabilityStatus"`
	Sortiment    []SortimentCategory       `gorm:"many2many:product_sortiment_categories" json:"sortiment"`
	Images       []ProductImage            `json:"images"`
	Attributes   map[string]AttributeEntry `gorm:"-" json:"attributes"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

// SortimentCategory es una etiqueta de merchandising (bestseller, en stock...), independiente de la categoría técnica.
type SortimentCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug         string    `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	Name         string    `gorm:"size:140" json:"name"`
	DisplayOrder int       `gorm:"default:0" json:"displayOrder"`
}

type ProductImage struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	URL          string    `gorm:"size:255;not null" json:"url"`
	DisplayOrder int       `gorm:"default:0" json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductAttribute struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_product_attr_name"`
	Name      string    `gorm:"size:120;uniqueIndex:idx_product_attr_name"`
	Value     string    `gorm:"type:text"`
	Type      string    `gorm:"size:30;default:text"`
}

type AttributeEntry struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type ProductFilter struct {
	Search       string
	CategoryID   *uuid.UUID
	CategorySlug string
	Availability Availability
	Sortiment    string
	Limit        int
}

// ProductPatch: los campos nil no se tocan.
type ProductPatch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Image        *string
	Category     *string
	Availability *Availability
	Attributes   map[string]AttributeEntry
	Sortiment    []string
}

type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	Image       *string
	ParentID    *uuid.UUID
	ClearParent bool
}

type CategoryRepo interface {
	ListCategories(ctx context.Context, search string) ([]Category, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type ProductRepo interface {
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, p *Product, sortiment []string) error
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListImages(ctx context.Context, productID uuid.UUID) ([]ProductImage, error)
	AddImage(ctx context.Context, productID uuid.UUID, url string, order *int) (*ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
	UpdateImageOrder(ctx context.Context, productID, imageID uuid.UUID, order int) error
}

type SortimentRepo interface {
	List(ctx context.Context) ([]SortimentCategory, error)
	Products(ctx context.Context, slug string) ([]Product, error)
	Ensure(ctx context.Context, defaults []SortimentCategory) error
}

var DefaultSortiment = []SortimentCategory{
	{Slug: "bestseller", Name: "Bestseller", DisplayOrder: 1},
	{Slug: "in-stock", Name: "Skladem", DisplayOrder: 2},
	{Slug: "discounted", Name: "Zlevněné", DisplayOrder: 3},
}

// Slugify arma un slug URL-safe: minúsculas, sin diacríticos, guiones.
func Slugify(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	dash := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
