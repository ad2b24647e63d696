package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/storefront/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

// Lines une el carrito con los productos vivos; las líneas de productos borrados no aparecen.
func (r *CartRepo) Lines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	return cartLines(r.db.WithContext(ctx), userID)
}

func cartLines(db *gorm.DB, userID uuid.UUID) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	err := db.Table("cart_items").
		Select("cart_items.product_id AS product_id, products.name AS name, products.price AS price, products.image AS image, cart_items.quantity AS quantity").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at asc").
		Scan(&lines).Error
	if err != nil {
		return nil, translate(err, "cart")
	}
	return lines, nil
}

// Add suma qty a la línea existente o la crea.
func (r *CartRepo) Add(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	db := r.db.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return translate(err, "product")
	}
	if n == 0 {
		return domain.Errorf(domain.ErrNotFound, "product not found")
	}
	now := time.Now()
	item := domain.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: qty, CreatedAt: now, UpdatedAt: now}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": now,
		}),
	}).Create(&item).Error
	return translate(err, "cart item")
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now()}).Error
	return translate(err, "cart item")
}

func (r *CartRepo) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&domain.CartItem{}).Error
	return translate(err, "cart item")
}

func (r *CartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error, "cart")
}

func (r *CartRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Row().Scan(&n)
	if err != nil {
		return 0, translate(err, "cart")
	}
	return n, nil
}
