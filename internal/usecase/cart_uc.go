package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/domain"
)

type CartUC struct {
	Carts domain.CartRepo
}

func (uc *CartUC) Get(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	lines, err := uc.Carts.Lines(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(lines), nil
}

// Add suma qty (1 si viene en 0) a la línea del producto.
func (uc *CartUC) Add(ctx context.Context, userID, productID uuid.UUID, qty int) (domain.Cart, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return domain.Cart{}, domain.Errorf(domain.ErrInvalid, "quantity must be positive")
	}
	if productID == uuid.Nil {
		return domain.Cart{}, domain.Errorf(domain.ErrInvalid, "productId is required")
	}
	if err := uc.Carts.Add(ctx, userID, productID, qty); err != nil {
		return domain.Cart{}, err
	}
	return uc.Get(ctx, userID)
}

// Update fija la cantidad; qty <= 0 equivale a quitar la línea.
func (uc *CartUC) Update(ctx context.Context, userID, productID uuid.UUID, qty int) (domain.Cart, error) {
	if productID == uuid.Nil {
		return domain.Cart{}, domain.Errorf(domain.ErrInvalid, "productId is required")
	}
	if err := uc.Carts.SetQuantity(ctx, userID, productID, qty); err != nil {
		return domain.Cart{}, err
	}
	return uc.Get(ctx, userID)
}

func (uc *CartUC) Remove(ctx context.Context, userID, productID uuid.UUID) (domain.Cart, error) {
	if err := uc.Carts.Remove(ctx, userID, productID); err != nil {
		return domain.Cart{}, err
	}
	return uc.Get(ctx, userID)
}

func (uc *CartUC) Clear(ctx context.Context, userID uuid.UUID) error {
	return uc.Carts.Clear(ctx, userID)
}

func (uc *CartUC) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	return uc.Carts.Count(ctx, userID)
}
