package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/domain"
)

type CheckoutRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	Shipping    string `json:"shipping"`
	Payment     string `json:"payment"`
	Note        string `json:"note"`
	IsCompany   bool   `json:"isCompany"`
	CompanyName string `json:"companyName"`
	ICO         string `json:"ico"`
	DIC         string `json:"dic"`
}

func (r CheckoutRequest) normalize() CheckoutRequest {
	for _, f := range []*string{&r.FirstName, &r.LastName, &r.Email, &r.Phone, &r.Street, &r.City, &r.PostalCode,
		&r.Country, &r.Shipping, &r.Payment, &r.Note, &r.CompanyName, &r.ICO, &r.DIC} {
		*f = strings.TrimSpace(*f)
	}
	r.Email = strings.ToLower(r.Email)
	r.Shipping = strings.ToLower(r.Shipping)
	return r
}

// Validate devuelve el primer campo obligatorio que falte.
func (r CheckoutRequest) Validate() error {
	required := []struct{ name, val string }{
		{"firstName", r.FirstName}, {"lastName", r.LastName}, {"email", r.Email}, {"phone", r.Phone},
		{"street", r.Street}, {"city", r.City}, {"postalCode", r.PostalCode}, {"country", r.Country},
		{"shipping", r.Shipping}, {"payment", r.Payment},
	}
	if r.IsCompany {
		required = append(required, struct{ name, val string }{"companyName", r.CompanyName}, struct{ name, val string }{"ico", r.ICO})
	}
	for _, f := range required {
		if f.val == "" {
			return domain.Errorf(domain.ErrInvalid, "missing required field: %s", f.name)
		}
	}
	if !domain.ValidEmail(r.Email) {
		return domain.Errorf(domain.ErrInvalid, "invalid email")
	}
	if _, ok := domain.ShippingPrice(domain.ShippingMethod(r.Shipping)); !ok {
		return domain.Errorf(domain.ErrInvalid, "unknown shipping method: %s", r.Shipping)
	}
	return nil
}

func (r CheckoutRequest) input() domain.CheckoutInput {
	in := domain.CheckoutInput{
		Contact:         domain.Contact{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone},
		ShippingAddress: domain.Address{Street: r.Street, City: r.City, PostalCode: r.PostalCode, Country: r.Country},
		ShippingMethod:  domain.ShippingMethod(r.Shipping),
		PaymentMethod:   r.Payment,
		Note:            r.Note,
		IsCompany:       r.IsCompany,
	}
	if r.IsCompany {
		in.Company = domain.Company{Name: r.CompanyName, ICO: r.ICO, DIC: r.DIC}
	}
	return in
}

type OrderUC struct {
	Orders domain.OrderRepo
	Carts  domain.CartRepo
}

// Checkout convierte el carrito del usuario en un pedido pending.
func (uc *OrderUC) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*domain.Order, error) {
	if userID == uuid.Nil {
		return nil, domain.Errorf(domain.ErrUnauthorized, "login required")
	}
	// carrito vacío primero; PlaceFromCart lo vuelve a verificar
	n, err := uc.Carts.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.Errorf(domain.ErrEmptyCart, "cart is empty")
	}
	req = req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	o, err := uc.Orders.PlaceFromCart(ctx, userID, req.input())
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", o.ID.String()).Str("user_id", userID.String()).Str("total", o.Total.StringFixed(2)).Msg("order created")
	return o, nil
}

func (uc *OrderUC) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return uc.Orders.ListByUser(ctx, userID)
}

// GetForUser devuelve el pedido solo si pertenece al usuario.
func (uc *OrderUC) GetForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, domain.Errorf(domain.ErrForbidden, "access denied")
	}
	return o, nil
}

func (uc *OrderUC) List(ctx context.Context, search string) ([]domain.Order, error) {
	return uc.Orders.List(ctx, strings.TrimSpace(search), 0)
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	st, err := domain.ParseOrderStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}
	if err := uc.Orders.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	return uc.Orders.FindByID(ctx, id)
}
