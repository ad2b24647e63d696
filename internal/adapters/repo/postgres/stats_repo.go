package postgres

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

type StatsRepo struct{ db *gorm.DB }

func NewStatsRepo(db *gorm.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	st := &domain.DashboardStats{}
	counts := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&st.Products, &domain.Product{}, nil},
		{&st.Categories, &domain.Category{}, nil},
		{&st.Users, &domain.User{}, nil},
		{&st.Orders, &domain.Order{}, nil},
		{&st.PendingOrders, &domain.Order{}, []any{"status = ?", domain.OrderStatusPending}},
		{&st.UnreadMessages, &domain.ContactMessage{}, []any{"status = ?", domain.MessageNew}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, translate(err, "stats")
		}
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&domain.Order{}).Where("status <> ?", domain.OrderStatusCancelled).
		Select("SUM(total)").Row().Scan(&revenue); err != nil {
		return nil, translate(err, "stats")
	}
	st.Revenue = decimal.Zero
	if revenue.Valid {
		st.Revenue = revenue.Decimal.Round(2)
	}

	recent, err := NewOrderRepo(r.db).List(ctx, "", 5)
	if err != nil {
		return nil, err
	}
	st.RecentOrders = recent
	return st, nil
}
