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

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func itemsOrder(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, name asc") }

func (r *OrderRepo) PlaceFromCart(ctx context.Context, userID uuid.UUID, in domain.CheckoutInput) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// bloquea las líneas para que dos checkouts no consuman el mismo carrito
		locked := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "cart_items"}})
		lines, err := cartLines(locked, userID)
		if err != nil {
			return err
		}
		o, err := domain.NewOrder(userID, lines, in)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return translate(err, "order")
		}
		if err := tx.Create(&o.Items).Error; err != nil {
			return translate(err, "order items")
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items", itemsOrder).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "order")
	}
	list := []domain.Order{o}
	if err := r.attachUsers(ctx, list, true); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	list := []domain.Order{}
	err := r.db.WithContext(ctx).Preload("Items", itemsOrder).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error
	if err != nil {
		return nil, translate(err, "orders")
	}
	return list, nil
}

// List es la vista de administración: busca por id, cliente o nombre de ítem.
func (r *OrderRepo) List(ctx context.Context, search string, limit int) ([]domain.Order, error) {
	list := []domain.Order{}
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Preload("Items", itemsOrder)
	if strings.TrimSpace(search) != "" {
		like := likePattern(search)
		q = q.Where(`(LOWER(CAST(orders.id AS TEXT)) LIKE ? ESCAPE '\'
			OR LOWER(orders.contact_email) LIKE ? ESCAPE '\' OR LOWER(orders.contact_first_name) LIKE ? ESCAPE '\' OR LOWER(orders.contact_last_name) LIKE ? ESCAPE '\'
			OR orders.user_id IN (SELECT id FROM users WHERE LOWER(email) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')
			OR orders.id IN (SELECT order_id FROM order_items WHERE LOWER(name) LIKE ? ESCAPE '\'))`,
			like, like, like, like, like, like, like, like)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("orders.created_at desc").Find(&list).Error; err != nil {
		return nil, translate(err, "orders")
	}
	if err := r.attachUsers(ctx, list, false); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.Select("id", "status").First(&o, "id = ?", id).Error; err != nil {
			return translate(err, "order")
		}
		if !o.Status.CanTransitionTo(status) {
			return domain.Errorf(domain.ErrInvalid, "cannot change status from %s to %s", o.Status, status)
		}
		if o.Status == status {
			return nil
		}
		return tx.Model(&domain.Order{}).Where("id = ?", id).
			Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
	})
}

func (r *OrderRepo) attachUsers(ctx context.Context, list []domain.Order, withPhone bool) error {
	ids := []uuid.UUID{}
	for _, o := range list {
		if o.UserID != nil {
			ids = append(ids, *o.UserID)
		}
	}
	users, err := NewUserRepo(r.db).FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].UserID == nil {
			continue
		}
		u, ok := users[*list[i].UserID]
		if !ok {
			continue
		}
		s := &domain.UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
		if withPhone {
			s.Phone = u.Phone
		}
		list[i].User = s
	}
	return nil
}
