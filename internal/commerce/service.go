// Package commerce manages direct customers and their orders.
package commerce

import (
	"context"
	"math"
	"strings"
	"time"

	"retail-crm/internal/apperr"

	"github.com/google/uuid"
)

// Store persists customers and orders. Listings are newest first.
type Store interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, id string, in CustomerUpdate, at time.Time) (Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	OrdersByCustomer(ctx context.Context, customerID string) ([]Order, error)
	CreateOrder(ctx context.Context, o Order) (Order, error)
	UpdateOrder(ctx context.Context, id string, in OrderUpdate, at time.Time) (Order, error)
}

type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service { return &Service{store: store, clock: time.Now} }

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	out, err := s.store.ListCustomers(ctx)
	return out, apperr.Persistence(err)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (Customer, error) {
	c, err := s.store.GetCustomer(ctx, id)
	return c, apperr.Persistence(err)
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return Customer{}, apperr.Invalid("email is required")
	}
	now := s.clock().UTC()
	c, err := s.store.CreateCustomer(ctx, Customer{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Phone:     in.Phone,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return c, apperr.Persistence(err)
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, in CustomerUpdate) (Customer, error) {
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		if v == "" {
			return Customer{}, apperr.Invalid("email cannot be empty")
		}
		in.Email = &v
	}
	c, err := s.store.UpdateCustomer(ctx, id, in, s.clock().UTC())
	return c, apperr.Persistence(err)
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return apperr.Persistence(s.store.DeleteCustomer(ctx, id))
}

func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	out, err := s.store.ListOrders(ctx)
	return out, apperr.Persistence(err)
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	return o, apperr.Persistence(err)
}

func (s *Service) OrdersByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	out, err := s.store.OrdersByCustomer(ctx, customerID)
	return out, apperr.Persistence(err)
}

// CreateOrder stores a pending order whose total is computed from its items.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (Order, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return Order{}, apperr.Invalid("customer_id is required")
	}
	if len(in.Items) == 0 {
		return Order{}, apperr.Invalid("order has no items")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return Order{}, apperr.Invalid("item product_name is required")
		}
		if it.Quantity <= 0 {
			return Order{}, apperr.Invalid("item quantity must be positive")
		}
		if it.UnitPrice < 0 {
			return Order{}, apperr.Invalid("item unit_price cannot be negative")
		}
	}

	now := s.clock().UTC()
	o, err := s.store.CreateOrder(ctx, Order{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		Status:     OrderPending,
		Total:      OrderTotal(in.Items),
		Items:      in.Items,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	return o, apperr.Persistence(err)
}

func (s *Service) UpdateOrder(ctx context.Context, id string, in OrderUpdate) (Order, error) {
	if in.Status != nil && !in.Status.Valid() {
		return Order{}, apperr.Invalid("invalid order status")
	}
	o, err := s.store.UpdateOrder(ctx, id, in, s.clock().UTC())
	return o, apperr.Persistence(err)
}

// OrderTotal sums quantity times unit price, rounded to cents.
func OrderTotal(items Items) float64 {
	var sum float64
	for _, it := range items {
		sum += float64(it.Quantity) * it.UnitPrice
	}
	return math.Round(sum*100) / 100
}
