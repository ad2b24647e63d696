package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// transiciones permitidas; delivered y cancelled son terminales
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	switch st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", Errorf(ErrInvalid, "invalid status: %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingPickup   ShippingMethod = "pickup"
)

var shippingPrices = map[ShippingMethod]decimal.Decimal{
	ShippingStandard: decimal.NewFromInt(150),
	ShippingExpress:  decimal.NewFromInt(250),
	ShippingPickup:   decimal.Zero,
}

func ShippingPrice(m ShippingMethod) (decimal.Decimal, bool) {
	p, ok := shippingPrices[m]
	return p, ok
}

type Contact struct {
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Email     string `gorm:"size:140" json:"email"`
	Phone     string `gorm:"size:60" json:"phone"`
}

type Company struct {
	Name string `gorm:"size:200" json:"name"`
	ICO  string `gorm:"size:20" json:"ico"`
	DIC  string `gorm:"size:20" json:"dic"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index" json:"userId"`
	Status          OrderStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingPrice"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Contact         Contact         `gorm:"embedded;embeddedPrefix:contact_" json:"contact"`
	ShippingMethod  ShippingMethod  `gorm:"size:30" json:"shippingMethod"`
	PaymentMethod   string          `gorm:"size:30" json:"paymentMethod"`
	Note            string          `gorm:"type:text" json:"note"`
	IsCompany       bool            `gorm:"default:false" json:"isCompany"`
	Company         Company         `gorm:"embedded;embeddedPrefix:company_" json:"company"`
	User            *UserSummary    `gorm:"-" json:"user,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem es una foto fija del producto al momento de la compra.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index" json:"orderId"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index" json:"productId"`
	Name      string          `gorm:"size:180" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image     string          `gorm:"size:255" json:"image"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
}

type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
}

type CheckoutInput struct {
	Contact         Contact
	ShippingAddress Address
	ShippingMethod  ShippingMethod
	PaymentMethod   string
	Note            string
	IsCompany       bool
	Company         Company
}

// NewOrder arma un pedido pending a partir de las líneas del carrito.
// Los precios quedan congelados en los ítems.
func NewOrder(userID uuid.UUID, lines []CartLine, in CheckoutInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, Errorf(ErrEmptyCart, "cart is empty")
	}
	shipping, ok := ShippingPrice(in.ShippingMethod)
	if !ok {
		return nil, Errorf(ErrInvalid, "unknown shipping method: %s", in.ShippingMethod)
	}
	cart := NewCart(lines)
	now := time.Now()
	uid := userID
	o := &Order{
		ID:              uuid.New(),
		UserID:          &uid,
		Status:          OrderStatusPending,
		Subtotal:        cart.Total,
		ShippingPrice:   shipping,
		Total:           cart.Total.Add(shipping),
		ShippingAddress: in.ShippingAddress,
		Contact:         in.Contact,
		ShippingMethod:  in.ShippingMethod,
		PaymentMethod:   in.PaymentMethod,
		Note:            in.Note,
		IsCompany:       in.IsCompany,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.IsCompany {
		o.Company = in.Company
	}
	for _, l := range cart.Items {
		pid := l.ProductID
		o.Items = append(o.Items, OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: &pid,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
			CreatedAt: now,
		})
	}
	return o, nil
}

type OrderRepo interface {
	// PlaceFromCart crea el pedido con los ítems del carrito y vacía el carrito, todo en una transacción.
	PlaceFromCart(ctx context.Context, userID uuid.UUID, in CheckoutInput) (*Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	List(ctx context.Context, search string, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}
