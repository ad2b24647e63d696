package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product;index"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine es una línea del carrito con el precio vivo del producto.
type CartLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Cart struct {
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func NewCart(lines []CartLine) Cart {
	c := Cart{Items: lines, Total: decimal.Zero}
	if c.Items == nil {
		c.Items = []CartLine{}
	}
	for i := range c.Items {
		l := &c.Items[i]
		l.LineTotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		c.Total = c.Total.Add(l.LineTotal)
		c.ItemCount += l.Quantity
	}
	return c
}

type CartRepo interface {
	Lines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}
