package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/identity"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"gorm.io/gorm"
)

var (
	baseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	faker    = gofakeit.New(0)
)

func seedProduct(t *testing.T, db *gorm.DB, name, brand, category string, price int64, sizes ...string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, brand, category, decimal.NewFromInt(price))
	require.NoError(t, err)
	p.Sizes = sizes
	p.Images = []string{"https://cdn.example.com/" + p.ID.String() + ".jpg"}
	p.Description = faker.Company() + " " + name
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB) *identity.Customer {
	t.Helper()
	c, err := identity.NewCustomer(faker.Email(), "s3cret-pass", faker.Name())
	require.NoError(t, err)
	c.Phone = "08123456789"
	c.Address = faker.Street()
	require.NoError(t, NewGormCustomerRepository(db).Save(context.Background(), c))
	return c
}

type orderOption func(*order.Order)

func withStatus(status order.Status) orderOption {
	return func(o *order.Order) { o.Status = status }
}

func withCreatedAt(at time.Time) orderOption {
	return func(o *order.Order) {
		o.CreatedAt = at
		o.UpdatedAt = at
	}
}

func withEstimate(hours int) orderOption {
	return func(o *order.Order) { o.EstimatedDeliveryHours = &hours }
}

func withArrivedAt(at time.Time) orderOption {
	return func(o *order.Order) { o.ArrivedAt = &at }
}

// seedOrder stores a bank transfer order for two products
func seedOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, number string, opts ...orderOption) *order.Order {
	t.Helper()
	shoe, err := order.NewItem(uuid.New(), "Mercurial Vapor", "shoe.jpg", "42", 2, decimal.NewFromInt(100000))
	require.NoError(t, err)
	ball, err := order.NewItem(uuid.New(), "Match Ball", "ball.jpg", "", 1, decimal.NewFromInt(50000))
	require.NoError(t, err)
	jne, err := order.LookupShippingOption("JNE")
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		CustomerID:     customerID,
		OrderNumber:    number,
		Items:          []order.Item{shoe, ball},
		Shipping:       jne,
		PaymentMethod:  order.PaymentMethodBankTransfer,
		Address:        order.ShippingAddress{Name: faker.Name(), Phone: "08123456789", Address: faker.Street()},
		VirtualAccount: order.FormatVirtualAccount("8808", 1),
		Now:            baseTime,
	})
	require.NoError(t, err)
	for _, opt := range opts {
		opt(o)
	}
	require.NoError(t, NewGormOrderRepository(db).Create(context.Background(), o))
	return o
}
