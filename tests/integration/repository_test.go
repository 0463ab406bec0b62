package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/catalog"
	"github.com/tungtungsport/storefront/internal/domain/identity"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"github.com/tungtungsport/storefront/internal/infrastructure/migration"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createCustomer(t *testing.T, db *gorm.DB, email string) *identity.Customer {
	t.Helper()
	c, err := identity.NewCustomer(email, "s3cret-pass", "Budi Santoso")
	require.NoError(t, err)
	require.NoError(t, c.UpdateProfile("Budi Santoso", "081234567890", "Jl. Merdeka 17, Bandung"))
	require.NoError(t, persistence.NewGormCustomerRepository(db).Save(context.Background(), c))
	return c
}

func createOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, number string) *order.Order {
	t.Helper()
	item, err := order.NewItem(uuid.New(), "Copa Pure.3 TF", "/products/copa.jpg", "42", 1, decimal.NewFromInt(900000))
	require.NoError(t, err)
	jne, err := order.LookupShippingOption("JNE")
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		CustomerID:     customerID,
		OrderNumber:    number,
		Items:          []order.Item{item},
		Shipping:       jne,
		PaymentMethod:  order.PaymentMethodBankTransfer,
		Address:        order.ShippingAddress{Name: "Budi", Phone: "081234567890", Address: "Jl. Merdeka 17"},
		VirtualAccount: order.FormatVirtualAccount("39358", 1),
		Now:            time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormOrderRepository(db).Create(context.Background(), o))
	return o
}

func TestMigrations_SeedCatalog(t *testing.T) {
	tdb := NewSharedTestDB(t)
	repo := persistence.NewGormProductRepository(tdb.DB)
	ctx := context.Background()

	products, total, err := repo.List(ctx, catalog.ProductFilter{Filter: shared.Filter{Page: 1, PageSize: 50}})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(8))
	assert.GreaterOrEqual(t, len(products), 8)

	brands, err := repo.Brands(ctx)
	require.NoError(t, err)
	assert.Subset(t, brands, []string{"Adidas", "Nike", "Puma", "Specs"})

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Subset(t, categories, []string{"Football", "Futsal"})

	phantom, err := repo.FindByID(ctx, uuid.MustParse("5b1d3c2e-8f4a-4d6b-9a01-000000000001"))
	require.NoError(t, err)
	assert.Equal(t, "Nike", phantom.Brand)
	assert.True(t, phantom.Price.Equal(decimal.NewFromInt(3500000)))
	assert.True(t, phantom.OriginalPrice.Equal(decimal.NewFromInt(4200000)))
	assert.True(t, phantom.IsNew)
	assert.Contains(t, phantom.Sizes, "42")
}

func TestMigrations_DownAndUpAgain(t *testing.T) {
	tdb := NewTestDB(t)

	m, err := migration.New(tdb.SqlDB, zap.NewNop())
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, m.Steps(-1))
	var count int64
	require.NoError(t, tdb.DB.Table("products").Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, m.Down())
	var exists bool
	require.NoError(t, tdb.DB.Raw(`SELECT EXISTS (SELECT 1 FROM pg_tables WHERE tablename = 'orders')`).Scan(&exists).Error)
	assert.False(t, exists)

	require.NoError(t, m.Up())
	require.NoError(t, tdb.DB.Table("products").Count(&count).Error)
	assert.Equal(t, int64(8), count)
}

func TestOrderRepository_SequencesAreUniqueUnderConcurrency(t *testing.T) {
	tdb := NewSharedTestDB(t)
	repo := persistence.NewGormOrderRepository(tdb.DB)
	day := time.Date(2031, 1, 2, 9, 0, 0, 0, time.UTC)

	const workers = 20
	numbers := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numbers[i], errs[i] = repo.GenerateOrderNumber(context.Background(), day)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := range numbers {
		require.NoError(t, errs[i])
		assert.Regexp(t, `^ORD-20310102-\d{5}$`, numbers[i])
		assert.False(t, seen[numbers[i]], "duplicate order number %s", numbers[i])
		seen[numbers[i]] = true
	}
}

func TestOrderRepository_SaveWithLockDetectsStaleVersion(t *testing.T) {
	tdb := NewSharedTestDB(t)
	customer := createCustomer(t, tdb.DB, "lock-"+uuid.NewString()[:8]+"@example.com")
	created := createOrder(t, tdb.DB, customer.ID, "ORD-LOCK-"+uuid.NewString()[:8])
	repo := persistence.NewGormOrderRepository(tdb.DB)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, first.MarkPaymentSubmitted(now))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.Cancel(customer.ID, "changed my mind", now))
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAwaitingPaymentConfirmation, stored.Status)
}

func TestSchema_RejectsInvalidValues(t *testing.T) {
	tdb := NewSharedTestDB(t)
	customer := createCustomer(t, tdb.DB, "schema-"+uuid.NewString()[:8]+"@example.com")
	created := createOrder(t, tdb.DB, customer.ID, "ORD-SCHEMA-"+uuid.NewString()[:8])

	tdb.WithTransaction(func(tx *gorm.DB) {
		err := tx.Exec(`UPDATE orders SET status = 'LOST' WHERE id = ?`, created.ID).Error
		assert.Error(t, err, "status outside the lifecycle must be rejected")
	})
	tdb.WithTransaction(func(tx *gorm.DB) {
		err := tx.Exec(`UPDATE orders SET total = total + 1 WHERE id = ?`, created.ID).Error
		assert.Error(t, err, "total must stay subtotal plus shipping")
	})
	tdb.WithTransaction(func(tx *gorm.DB) {
		err := tx.Exec(`UPDATE customers SET role = 'root' WHERE id = ?`, customer.ID).Error
		assert.Error(t, err)
	})
}
