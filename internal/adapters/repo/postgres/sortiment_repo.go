package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/storefront/internal/domain"
)

type SortimentRepo struct{ db *gorm.DB }

func NewSortimentRepo(db *gorm.DB) *SortimentRepo {
	return &SortimentRepo{db: db}
}

// List devuelve las etiquetas de sortimento ordenadas por DisplayOrder
func (r *SortimentRepo) List(ctx context.Context) ([]domain.SortimentCategory, error) {
	list := []domain.SortimentCategory{}
	if err := r.db.WithContext(ctx).Order("display_order asc, name asc").Find(&list).Error; err != nil {
		return nil, translate(err, "sortiment")
	}
	return list, nil
}

// Products devuelve los productos etiquetados con el slug dado.
func (r *SortimentRepo) Products(ctx context.Context, slug string) ([]domain.Product, error) {
	var tag domain.SortimentCategory
	if err := r.db.WithContext(ctx).First(&tag, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, "sortiment category")
	}
	return NewProductRepo(r.db).List(ctx, domain.ProductFilter{Sortiment: tag.Slug})
}

// Ensure crea las etiquetas que falten; las existentes no se tocan.
func (r *SortimentRepo) Ensure(ctx context.Context, defaults []domain.SortimentCategory) error {
	if len(defaults) == 0 {
		return nil
	}
	rows := make([]domain.SortimentCategory, len(defaults))
	copy(rows, defaults)
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&rows).Error
}
