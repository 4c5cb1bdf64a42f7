package commerce

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-crm/internal/apperr"
)

func newTestService() *Service {
	svc := NewService(NewMemoryStore())
	svc.clock = func() time.Time { return time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestOrderTotal(t *testing.T) {
	got := OrderTotal(Items{
		{ProductName: "Whey 5lb", Quantity: 3, UnitPrice: 39.99},
		{ProductName: "Shaker", Quantity: 10, UnitPrice: 2.1},
	})
	if got != 140.97 {
		t.Fatalf("expected 140.97, got %v", got)
	}
}

func TestCreateOrder_ComputesTotalAndPending(t *testing.T) {
	svc := newTestService()

	o, err := svc.CreateOrder(context.Background(), OrderInput{
		CustomerID: "cust-1",
		Items:      Items{{ProductName: "Creatine", Quantity: 2, UnitPrice: 24.5}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if o.Status != OrderPending || o.Total != 49 {
		t.Fatalf("unexpected order: %+v", o)
	}

	byCustomer, err := svc.OrdersByCustomer(context.Background(), "cust-1")
	if err != nil || len(byCustomer) != 1 {
		t.Fatalf("expected one order for customer, got %d %v", len(byCustomer), err)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	svc := newTestService()
	cases := map[string]OrderInput{
		"no customer": {Items: Items{{ProductName: "x", Quantity: 1}}},
		"no items":    {CustomerID: "c"},
		"zero qty":    {CustomerID: "c", Items: Items{{ProductName: "x", Quantity: 0}}},
		"neg price":   {CustomerID: "c", Items: Items{{ProductName: "x", Quantity: 1, UnitPrice: -1}}},
		"no name":     {CustomerID: "c", Items: Items{{Quantity: 1}}},
	}
	for name, in := range cases {
		if _, err := svc.CreateOrder(context.Background(), in); !errors.Is(err, apperr.ErrInvalidRequest) {
			t.Fatalf("%s: expected invalid request, got %v", name, err)
		}
	}
}

func TestUpdateOrder_ValidatesStatus(t *testing.T) {
	svc := newTestService()
	o, _ := svc.CreateOrder(context.Background(), OrderInput{CustomerID: "c", Items: Items{{ProductName: "x", Quantity: 1, UnitPrice: 1}}})

	bad := OrderStatus("lost")
	if _, err := svc.UpdateOrder(context.Background(), o.ID, OrderUpdate{Status: &bad}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	shipped := OrderShipped
	got, err := svc.UpdateOrder(context.Background(), o.ID, OrderUpdate{Status: &shipped})
	if err != nil || got.Status != OrderShipped {
		t.Fatalf("expected shipped, got %+v %v", got, err)
	}
	if _, err := svc.UpdateOrder(context.Background(), "missing", OrderUpdate{Status: &shipped}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustomerLifecycle(t *testing.T) {
	svc := newTestService()

	if _, err := svc.CreateCustomer(context.Background(), CustomerInput{FirstName: "Ana"}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected email required, got %v", err)
	}

	c, err := svc.CreateCustomer(context.Background(), CustomerInput{FirstName: "Ana", LastName: "Ruiz", Email: " ana@example.com "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Email != "ana@example.com" {
		t.Fatalf("expected trimmed email, got %q", c.Email)
	}
	if _, err := svc.CreateCustomer(context.Background(), CustomerInput{Email: "ana@example.com"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	city := "Austin"
	updated, err := svc.UpdateCustomer(context.Background(), c.ID, CustomerUpdate{City: &city})
	if err != nil || updated.City == nil || *updated.City != "Austin" || updated.FirstName != "Ana" {
		t.Fatalf("unexpected update: %+v %v", updated, err)
	}

	if err := svc.DeleteCustomer(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetCustomer(context.Background(), c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestItems_ScanAndValue(t *testing.T) {
	var it Items
	if err := it.Scan([]byte(`[{"product_name":"Bars","quantity":12,"unit_price":1.5}]`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(it) != 1 || it[0].Quantity != 12 {
		t.Fatalf("unexpected items: %+v", it)
	}

	var empty Items
	if err := empty.Scan(nil); err != nil || empty == nil {
		t.Fatalf("expected empty non-nil items, got %v %v", empty, err)
	}

	v, err := Items(nil).Value()
	if err != nil || string(v.([]byte)) != "[]" {
		t.Fatalf("expected [] for nil items, got %v %v", v, err)
	}
	if err := it.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
}
