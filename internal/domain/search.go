package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const SearchLimit = 10

type SearchHit struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Slug     string           `json:"slug,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Status   string           `json:"status,omitempty"`
	Image    string           `json:"image,omitempty"`
	Date     *time.Time       `json:"date,omitempty"`
	URL      string           `json:"url"`
}

type SearchResults struct {
	Products   []SearchHit `json:"products"`
	Orders     []SearchHit `json:"orders"`
	Users      []SearchHit `json:"users"`
	Categories []SearchHit `json:"categories"`
}

func EmptySearchResults() SearchResults {
	return SearchResults{Products: []SearchHit{}, Orders: []SearchHit{}, Users: []SearchHit{}, Categories: []SearchHit{}}
}

type DashboardStats struct {
	Products       int64           `json:"products"`
	Categories     int64           `json:"categories"`
	Users          int64           `json:"users"`
	Orders         int64           `json:"orders"`
	PendingOrders  int64           `json:"pendingOrders"`
	UnreadMessages int64           `json:"unreadMessages"`
	Revenue        decimal.Decimal `json:"revenue"`
	RecentOrders   []Order         `json:"recentOrders"`
}

type StatsRepo interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}
