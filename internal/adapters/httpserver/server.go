package httpserver

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phenrril/storefront/internal/usecase"
)

// GoogleAuth es el flujo OAuth de Google; nil deshabilita las rutas.
type GoogleAuth interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (usecase.GoogleProfile, error)
}

type Exporter interface {
	WriteProducts(ctx context.Context, w io.Writer) error
	WriteOrders(ctx context.Context, w io.Writer) error
}

type Deps struct {
	Categories *usecase.CategoryUC
	Products   *usecase.ProductUC
	Carts      *usecase.CartUC
	Orders     *usecase.OrderUC
	Attributes *usecase.AttributeUC
	Auth       *usecase.AuthUC
	Contact    *usecase.ContactUC
	Search     *usecase.SearchUC
	Dashboard  *usecase.DashboardUC
	Export     Exporter
	Google     GoogleAuth
	Tokens     *Tokens
	Ping       func(ctx context.Context) error

	RateLimitPerMinute int
}

type Server struct {
	router     chi.Router
	categories *usecase.CategoryUC
	products   *usecase.ProductUC
	carts      *usecase.CartUC
	orders     *usecase.OrderUC
	attributes *usecase.AttributeUC
	auth       *usecase.AuthUC
	contact    *usecase.ContactUC
	search     *usecase.SearchUC
	dashboard  *usecase.DashboardUC
	export     Exporter
	google     GoogleAuth
	tokens     *Tokens
	ping       func(ctx context.Context) error
	metrics    *metrics
	limiter    *ipLimiter
}

func New(d Deps) http.Handler {
	s := &Server{
		router:     chi.NewRouter(),
		categories: d.Categories,
		products:   d.Products,
		carts:      d.Carts,
		orders:     d.Orders,
		attributes: d.Attributes,
		auth:       d.Auth,
		contact:    d.Contact,
		search:     d.Search,
		dashboard:  d.Dashboard,
		export:     d.Export,
		google:     d.Google,
		tokens:     d.Tokens,
		ping:       d.Ping,
		metrics:    newMetrics(),
		limiter:    newIPLimiter(d.RateLimitPerMinute),
	}
	s.routes()
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recovery)
	r.Use(s.metrics.instrument)
	r.Use(s.limiter.middleware)
	r.Use(s.sessionUser)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
	})

	r.Handle("/metrics", s.metrics.handler())
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/categories", s.apiCategories)
		r.Get("/categories/{slug}", s.apiCategoryBySlug)
		r.Get("/products", s.apiProducts)
		r.Get("/products/{id}", s.apiProduct)
		r.Get("/sortiment", s.apiSortiment)
		r.Get("/sortiment/{slug}/products", s.apiSortimentProducts)
		r.Get("/attributes/{categoryName}", s.apiAttributeValues)

		r.Get("/cart/count", s.apiCartCount)
		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/cart", s.apiCart)
			r.Post("/cart/add", s.apiCartAdd)
			r.Put("/cart/update", s.apiCartUpdate)
			r.Delete("/cart/remove/{productId}", s.apiCartRemove)
			r.Delete("/cart/clear", s.apiCartClear)

			r.Post("/checkout", s.apiCheckout)
			r.Get("/orders", s.apiOrders)
			r.Get("/orders/{id}", s.apiOrder)

			r.Get("/auth/verify", s.apiVerify)
			r.Get("/auth/me", s.apiMe)
			r.Put("/auth/me", s.apiUpdateMe)
		})

		r.Post("/auth/register", s.apiRegister)
		r.Post("/auth/login", s.apiLogin)
		r.Post("/auth/logout", s.apiLogout)
		r.Get("/auth/google/login", s.handleGoogleLogin)
		r.Get("/auth/google/callback", s.handleGoogleCallback)

		r.Post("/contact", s.apiContact)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/auth/login", s.adminLogin)
		r.Post("/auth/logout", s.adminLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/auth/verify", s.adminVerify)
			r.Get("/dashboard", s.adminDashboard)
			r.Get("/search", s.adminSearch)

			r.Get("/categories", s.apiCategories)
			r.Post("/categories", s.adminCreateCategory)
			r.Get("/categories/{id}", s.adminCategory)
			r.Put("/categories/{id}", s.adminUpdateCategory)
			r.Delete("/categories/{id}", s.adminDeleteCategory)

			r.Get("/products", s.apiProducts)
			r.Post("/products", s.adminCreateProduct)
			r.Get("/products/{id}", s.apiProduct)
			r.Put("/products/{id}", s.adminUpdateProduct)
			r.Delete("/products/{id}", s.adminDeleteProduct)
			r.Get("/products/{id}/images", s.adminImages)
			r.Post("/products/{id}/images", s.adminAddImage)
			r.Put("/products/{id}/images/{imageId}", s.adminReorderImage)
			r.Delete("/products/{id}/images/{imageId}", s.adminDeleteImage)
			r.Get("/sortiment", s.apiSortiment)

			r.Get("/attributes/categories", s.adminAttributeCategories)
			r.Post("/attributes/categories", s.adminCreateAttributeCategory)
			r.Put("/attributes/categories/{id}", s.adminUpdateAttributeCategory)
			r.Delete("/attributes/categories/{id}", s.adminDeleteAttributeCategory)
			r.Get("/attributes/values/{categoryName}", s.apiAttributeValues)
			r.Post("/attributes/values", s.adminCreateAttributeValue)
			r.Put("/attributes/values/{id}", s.adminUpdateAttributeValue)
			r.Delete("/attributes/values/{id}", s.adminDeleteAttributeValue)

			r.Get("/orders", s.adminOrders)
			r.Get("/orders/{id}", s.adminOrder)
			r.Put("/orders/{id}/status", s.adminOrderStatus)

			r.Get("/users", s.adminUsers)
			r.Get("/users/{id}", s.adminUser)
			r.Put("/users/{id}/password", s.adminResetPassword)
			r.Delete("/users/{id}", s.adminDeleteUser)

			r.Get("/messages", s.adminMessages)
			r.Get("/messages/unread-count", s.adminUnreadCount)
			r.Put("/messages/{id}/read", s.adminMarkRead)
			r.Put("/messages/{id}/archive", s.adminArchive)

			r.Get("/export/products.xlsx", s.adminExportProducts)
			r.Get("/export/orders.xlsx", s.adminExportOrders)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "database unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
}
