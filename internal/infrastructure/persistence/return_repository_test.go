package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

func TestGormReturnRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormReturnRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	arrived := baseTime.Add(72 * time.Hour)
	now := arrived.Add(3 * time.Hour)

	o := seedOrder(t, db, customerID, "ORD-1", withStatus(order.StatusArrived), withArrivedAt(arrived))
	req, err := o.RequestReturn(customerID, "Ukuran tidak pas", []order.ReturnSelection{
		{OrderItemID: o.Items[0].ID, Quantity: 1},
	}, now, order.DefaultPolicy())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, req))

	found, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReturnStatusPending, found.Status)
	assert.Equal(t, "Ukuran tidak pas", found.Reason)
	require.Len(t, found.Items, 1)
	assert.Equal(t, o.Items[0].ID, found.Items[0].OrderItemID)
	assert.Equal(t, "42", found.Items[0].Size)
	assert.Equal(t, 1, found.TotalQuantity())

	byOrder, err := repo.FindByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, byOrder, 1)

	t.Run("review with optimistic lock", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, req.ID)
		require.NoError(t, err)

		require.NoError(t, found.Approve("ok", now.Add(time.Hour)))
		require.NoError(t, repo.SaveWithLock(ctx, found))
		assert.Equal(t, 2, found.Version)

		require.NoError(t, stale.Reject("no", now.Add(time.Hour)))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

		reloaded, err := repo.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ReturnStatusApproved, reloaded.Status)
		assert.Equal(t, "ok", reloaded.AdminNotes)
		require.NotNil(t, reloaded.ReviewedAt)
	})

	t.Run("list by customer with status filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(order.ReturnStatusApproved)
		list, err := repo.FindByCustomer(ctx, customerID, filter)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		filter.Filters["status"] = string(order.ReturnStatusRejected)
		list, err = repo.FindByCustomer(ctx, customerID, filter)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, order.ErrReturnNotFound)
	})
}

func TestGormPaymentProofRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormPaymentProofRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	o := seedOrder(t, db, customerID, "ORD-1")
	upload := func(at time.Time) *order.PaymentProof {
		key, err := order.ProofObjectKey(customerID, o.ID, "image/png", at)
		require.NoError(t, err)
		p, err := o.SubmitPaymentProof(customerID, key, "image/png", 1024, at)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))
		return p
	}

	first := upload(baseTime.Add(time.Hour))
	second := upload(baseTime.Add(2 * time.Hour))

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ImageKey, found.ImageKey)
	assert.Equal(t, int64(1024), found.Size)
	assert.Equal(t, order.ProofStatusPending, found.Status)

	byOrder, err := repo.FindByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, byOrder, 2)
	assert.Equal(t, second.ID, byOrder[0].ID, "newest first")

	require.NoError(t, found.Reject("blurry photo", baseTime.Add(3*time.Hour)))
	require.NoError(t, repo.SaveWithLock(ctx, found))

	pending, err := repo.FindPending(ctx, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	rejected, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ProofStatusRejected, rejected.Status)
	assert.Equal(t, "blurry photo", rejected.AdminNotes)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, order.ErrProofNotFound)
}
