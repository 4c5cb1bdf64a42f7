package commerce

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"retail-crm/internal/apperr"
	"retail-crm/pkg/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore keeps customers and orders in Postgres through gorm, sharing the
// service's connection pool.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open pool. gorm's own logger is silenced; failures
// surface as errors and are logged by the request logger.
func NewGormStore(pool *sql.DB) (*GormStore, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: pool}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	return &GormStore{db: db}, nil
}

type customerModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	FirstName string    `gorm:"column:first_name"`
	LastName  string    `gorm:"column:last_name"`
	Email     string    `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	Address   *string   `gorm:"column:address"`
	City      *string   `gorm:"column:city"`
	State     *string   `gorm:"column:state"`
	Zip       *string   `gorm:"column:zip"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (customerModel) TableName() string { return "customers" }

func (m customerModel) toCustomer() Customer { return Customer(m) }

type orderModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	CustomerID string    `gorm:"column:customer_id"`
	Status     string    `gorm:"column:status"`
	Total      float64   `gorm:"column:total"`
	Items      Items     `gorm:"column:items;type:jsonb"`
	Notes      *string   `gorm:"column:notes"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

func (m orderModel) toOrder() Order {
	return Order{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Status:     OrderStatus(m.Status),
		Total:      m.Total,
		Items:      m.Items,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func mapGormErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what)
	case utils.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s already exists", apperr.ErrConflict, what)
	default:
		return err
	}
}

func (s *GormStore) ListCustomers(ctx context.Context) ([]Customer, error) {
	var rows []customerModel
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCustomer())
	}
	return out, nil
}

func (s *GormStore) GetCustomer(ctx context.Context, id string) (Customer, error) {
	var row customerModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return Customer{}, mapGormErr(err, "customer "+id)
	}
	return row.toCustomer(), nil
}

func (s *GormStore) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	row := customerModel(c)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Customer{}, mapGormErr(err, "customer "+c.Email)
	}
	return row.toCustomer(), nil
}

func (s *GormStore) UpdateCustomer(ctx context.Context, id string, in CustomerUpdate, at time.Time) (Customer, error) {
	updates := map[string]any{"updated_at": at}
	setIf(updates, "first_name", in.FirstName)
	setIf(updates, "last_name", in.LastName)
	setIf(updates, "email", in.Email)
	setIf(updates, "phone", in.Phone)
	setIf(updates, "address", in.Address)
	setIf(updates, "city", in.City)
	setIf(updates, "state", in.State)
	setIf(updates, "zip", in.Zip)
	setIf(updates, "notes", in.Notes)

	res := s.db.WithContext(ctx).Model(&customerModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return Customer{}, mapGormErr(res.Error, "customer "+id)
	}
	if res.RowsAffected == 0 {
		return Customer{}, apperr.NotFound("customer " + id)
	}
	return s.GetCustomer(ctx, id)
}

func setIf(m map[string]any, col string, v *string) {
	if v != nil {
		m[col] = *v
	}
}

func (s *GormStore) DeleteCustomer(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&customerModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("customer " + id)
	}
	return nil
}

func (s *GormStore) listOrders(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]Order, error) {
	var rows []orderModel
	if err := scope(s.db.WithContext(ctx)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toOrder())
	}
	return out, nil
}

func (s *GormStore) ListOrders(ctx context.Context) ([]Order, error) {
	return s.listOrders(ctx, func(tx *gorm.DB) *gorm.DB { return tx })
}

func (s *GormStore) OrdersByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.listOrders(ctx, func(tx *gorm.DB) *gorm.DB { return tx.Where("customer_id = ?", customerID) })
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (Order, error) {
	var row orderModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return Order{}, mapGormErr(err, "order "+id)
	}
	return row.toOrder(), nil
}

func (s *GormStore) CreateOrder(ctx context.Context, o Order) (Order, error) {
	row := orderModel{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Total:      o.Total,
		Items:      o.Items,
		Notes:      o.Notes,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Order{}, mapGormErr(err, "order "+o.ID)
	}
	return row.toOrder(), nil
}

func (s *GormStore) UpdateOrder(ctx context.Context, id string, in OrderUpdate, at time.Time) (Order, error) {
	updates := map[string]any{"updated_at": at}
	if in.Status != nil {
		updates["status"] = string(*in.Status)
	}
	setIf(updates, "notes", in.Notes)

	res := s.db.WithContext(ctx).Model(&orderModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return Order{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Order{}, apperr.NotFound("order " + id)
	}
	return s.GetOrder(ctx, id)
}
