package commerce

import (
	"context"
	"sort"
	"sync"
	"time"

	"retail-crm/internal/apperr"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu        sync.Mutex
	customers map[string]Customer
	orders    map[string]Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{customers: make(map[string]Customer), orders: make(map[string]Order)}
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return Customer{}, apperr.NotFound("customer " + id)
	}
	return c, nil
}

func (s *MemoryStore) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.customers {
		if existing.Email == c.Email {
			return Customer{}, apperr.ErrConflict
		}
	}
	s.customers[c.ID] = c
	return c, nil
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, id string, in CustomerUpdate, at time.Time) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return Customer{}, apperr.NotFound("customer " + id)
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	assign(&c.Phone, in.Phone)
	assign(&c.Address, in.Address)
	assign(&c.City, in.City)
	assign(&c.State, in.State)
	assign(&c.Zip, in.Zip)
	assign(&c.Notes, in.Notes)
	c.UpdatedAt = at
	s.customers[id] = c
	return c, nil
}

func assign(dst **string, v *string) {
	if v != nil {
		*dst = v
	}
}

func (s *MemoryStore) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return apperr.NotFound("customer " + id)
	}
	delete(s.customers, id)
	return nil
}

func (s *MemoryStore) ordersWhere(keep func(Order) bool) []Order {
	out := make([]Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) ListOrders(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersWhere(func(Order) bool { return true }), nil
}

func (s *MemoryStore) OrdersByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersWhere(func(o Order) bool { return o.CustomerID == customerID }), nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, apperr.NotFound("order " + id)
	}
	return o, nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return o, nil
}

func (s *MemoryStore) UpdateOrder(ctx context.Context, id string, in OrderUpdate, at time.Time) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, apperr.NotFound("order " + id)
	}
	if in.Status != nil {
		o.Status = *in.Status
	}
	if in.Notes != nil {
		o.Notes = in.Notes
	}
	o.UpdatedAt = at
	s.orders[id] = o
	return o, nil
}
