package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/adapters/export/xlsx"
	"github.com/phenrril/storefront/internal/adapters/httpserver"
	"github.com/phenrril/storefront/internal/adapters/oauth/google"
	"github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/config"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB

	Categories *usecase.CategoryUC
	Products   *usecase.ProductUC
	Carts      *usecase.CartUC
	Orders     *usecase.OrderUC
	Attributes *usecase.AttributeUC
	Auth       *usecase.AuthUC
	Contact    *usecase.ContactUC
	Search     *usecase.SearchUC
	Dashboard  *usecase.DashboardUC

	Sortiment *postgres.SortimentRepo
	Exporter  *xlsx.Exporter
	Tokens    *httpserver.Tokens
	Google    *google.Provider
}

func NewApp(cfg *config.Config, db *gorm.DB) *App {
	catRepo := postgres.NewCategoryRepo(db)
	prodRepo := postgres.NewProductRepo(db)
	sortRepo := postgres.NewSortimentRepo(db)
	userRepo := postgres.NewUserRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	cartRepo := postgres.NewCartRepo(db)

	return &App{
		Config:     cfg,
		DB:         db,
		Categories: &usecase.CategoryUC{Categories: catRepo},
		Products:   &usecase.ProductUC{Products: prodRepo, Sortiment: sortRepo},
		Carts:      &usecase.CartUC{Carts: cartRepo},
		Orders:     &usecase.OrderUC{Orders: orderRepo, Carts: cartRepo},
		Attributes: &usecase.AttributeUC{Attributes: postgres.NewAttributeRepo(db)},
		Auth:       &usecase.AuthUC{Users: userRepo, AdminUser: cfg.AdminUser, AdminPass: cfg.AdminPass},
		Contact:    &usecase.ContactUC{Messages: postgres.NewContactRepo(db)},
		Search:     &usecase.SearchUC{Products: prodRepo, Categories: catRepo, Users: userRepo, Orders: orderRepo},
		Dashboard:  &usecase.DashboardUC{Stats: postgres.NewStatsRepo(db)},
		Sortiment:  sortRepo,
		Exporter:   &xlsx.Exporter{Catalog: prodRepo, Sales: orderRepo},
		Tokens:     httpserver.NewTokens(cfg.SessionSecret, cfg.SessionTTL, cfg.AdminTokenTTL),
		Google:     google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL),
	}
}

func (a *App) HTTPHandler() http.Handler {
	d := httpserver.Deps{
		Categories:         a.Categories,
		Products:           a.Products,
		Carts:              a.Carts,
		Orders:             a.Orders,
		Attributes:         a.Attributes,
		Auth:               a.Auth,
		Contact:            a.Contact,
		Search:             a.Search,
		Dashboard:          a.Dashboard,
		Export:             a.Exporter,
		Tokens:             a.Tokens,
		Ping:               a.ping,
		RateLimitPerMinute: a.Config.RateLimitPerMinute,
	}
	// un *Provider nil dentro de la interfaz no sería nil
	if a.Google != nil {
		d.Google = a.Google
	}
	return httpserver.New(d)
}

func (a *App) ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Migrate(ctx context.Context) error {
	if err := postgres.Migrate(a.DB.WithContext(ctx)); err != nil {
		return err
	}
	return a.Sortiment.Ensure(ctx, domain.DefaultSortiment)
}

type seedProduct struct {
	name, category, description string
	price                       int64
	availability                domain.Availability
	sortiment                   []string
}

var seedCategories = []domain.Category{
	{Name: "Trubky", Description: "Měděné, plastové a ocelové trubky"},
	{Name: "Ventily", Description: "Kulové a zpětné ventily"},
	{Name: "Fitinky", Description: "Kolena, spojky a redukce"},
}

var seedProducts = []seedProduct{
	{"Měděná trubka 15 mm", "trubky", "Tvrdá měděná trubka, 5 m", 420, domain.AvailabilityInStock, []string{"bestseller", "in-stock"}},
	{"PPR trubka 20 mm", "trubky", "Plastová trubka pro rozvody vody, 4 m", 95, domain.AvailabilityInStock, []string{"in-stock"}},
	{"Kulový ventil 1/2\"", "ventily", "Mosazný kulový ventil s pákou", 189, domain.AvailabilityInStock, []string{"bestseller"}},
	{"Zpětný ventil 3/4\"", "ventily", "Pružinový zpětný ventil", 245, domain.AvailabilityOnOrder, nil},
	{"Koleno 90° 15 mm", "fitinky", "Měděné pájecí koleno", 18, domain.AvailabilityInStock, []string{"discounted"}},
	{"Redukce 3/4\" - 1/2\"", "fitinky", "Mosazná redukce", 42, domain.AvailabilityOutOfStock, nil},
}

// Seed carga un catálogo de ejemplo si la base no tiene productos.
func (a *App) Seed(ctx context.Context) error {
	existing, err := a.Products.List(ctx, domain.ProductFilter{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info().Msg("seed skipped, catalog not empty")
		return nil
	}
	for _, c := range seedCategories {
		c := c
		if _, err := a.Categories.GetBySlug(ctx, domain.Slugify(c.Name)); err == nil {
			continue
		}
		if err := a.Categories.Create(ctx, &c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	for _, sp := range seedProducts {
		p := &domain.Product{
			Name:         sp.name,
			Description:  sp.description,
			Price:        decimal.NewFromInt(sp.price),
			CategorySlug: sp.category,
			Availability: sp.availability,
			Image:        "/images/products/" + domain.Slugify(sp.name) + ".jpg",
		}
		if err := a.Products.Create(ctx, p, sp.sortiment); err != nil {
			return fmt.Errorf("seed product %s: %w", sp.name, err)
		}
	}
	log.Info().Int("categories", len(seedCategories)).Int("products", len(seedProducts)).Msg("catalog seeded")
	return nil
}
