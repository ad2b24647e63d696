package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/storefront/internal/domain"
)

const minSearchLen = 2

type SearchUC struct {
	Products   domain.ProductRepo
	Categories domain.CategoryRepo
	Users      domain.UserRepo
	Orders     domain.OrderRepo
}

// Global busca en paralelo; si una fuente falla, su lista vuelve vacía y el resto sigue.
func (uc *SearchUC) Global(ctx context.Context, q string) domain.SearchResults {
	res := domain.EmptySearchResults()
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSearchLen {
		return res
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := uc.Products.List(gctx, domain.ProductFilter{Search: q, Limit: domain.SearchLimit})
		if err != nil {
			log.Error().Err(err).Str("source", "products").Msg("global search")
			return nil
		}
		res.Products = productHits(list)
		return nil
	})
	g.Go(func() error {
		list, err := uc.Orders.List(gctx, q, domain.SearchLimit)
		if err != nil {
			log.Error().Err(err).Str("source", "orders").Msg("global search")
			return nil
		}
		res.Orders = orderHits(list)
		return nil
	})
	g.Go(func() error {
		list, err := uc.Users.List(gctx, q, domain.SearchLimit)
		if err != nil {
			log.Error().Err(err).Str("source", "users").Msg("global search")
			return nil
		}
		res.Users = userHits(list)
		return nil
	})
	g.Go(func() error {
		list, err := uc.Categories.ListCategories(gctx, q)
		if err != nil {
			log.Error().Err(err).Str("source", "categories").Msg("global search")
			return nil
		}
		if len(list) > domain.SearchLimit {
			list = list[:domain.SearchLimit]
		}
		res.Categories = categoryHits(list)
		return nil
	})
	_ = g.Wait()
	return res
}

func productHits(list []domain.Product) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(list))
	for _, p := range list {
		sub := "Bez kategorie"
		if p.Category != nil && p.Category.Name != "" {
			sub = p.Category.Name
		}
		price := p.Price
		hits = append(hits, domain.SearchHit{
			ID: p.ID.String(), Type: "product", Title: p.Name, Subtitle: sub,
			Price: &price, Image: p.Image, URL: "/admin/products",
		})
	}
	return hits
}

func orderHits(list []domain.Order) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(list))
	for _, o := range list {
		sub, url := "Unknown user", "/admin/orders"
		if o.User != nil {
			sub = strings.TrimSpace(o.User.FirstName+" "+o.User.LastName) + " (" + o.User.Email + ")"
			url = "/admin/orders#order-" + o.ID.String()
		}
		total, created := o.Total, o.CreatedAt
		hits = append(hits, domain.SearchHit{
			ID: o.ID.String(), Type: "order", Title: "Order #" + o.ID.String(), Subtitle: sub,
			Amount: &total, Status: string(o.Status), Date: &created, URL: url,
		})
	}
	return hits
}

func userHits(list []domain.User) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(list))
	for _, u := range list {
		title := u.FullName()
		if title == "" {
			title = "No name"
		}
		created := u.CreatedAt
		hits = append(hits, domain.SearchHit{
			ID: u.ID.String(), Type: "user", Title: title, Subtitle: u.Email, Date: &created, URL: "/admin/users",
		})
	}
	return hits
}

func categoryHits(list []domain.Category) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(list))
	for _, c := range list {
		hits = append(hits, domain.SearchHit{
			ID: c.ID.String(), Type: "category", Title: c.Name, Subtitle: c.Description,
			Slug: c.Slug, URL: "/admin/products?category=" + c.Slug,
		})
	}
	return hits
}

type DashboardUC struct {
	Stats domain.StatsRepo
}

func (uc *DashboardUC) Overview(ctx context.Context) (*domain.DashboardStats, error) {
	return uc.Stats.Dashboard(ctx)
}
