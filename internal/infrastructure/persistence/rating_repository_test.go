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

func TestGormRatingRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormRatingRepository(db)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	aliceOrder := seedOrder(t, db, alice, "ORD-1", withStatus(order.StatusCompleted))
	bobOrder := seedOrder(t, db, bob, "ORD-2", withStatus(order.StatusCompleted))
	// both orders carry fresh product ids, so rate the same product through
	// bob's order by pointing its first item at alice's product
	shoeID := aliceOrder.Items[0].ProductID
	bobOrder.Items[0].ProductID = shoeID

	rate := func(o *order.Order, customerID, productID uuid.UUID, stars int, at time.Time) error {
		r, err := o.Rate(customerID, productID, stars, "  mantap  ", at)
		require.NoError(t, err)
		return repo.Create(ctx, r)
	}

	require.NoError(t, rate(aliceOrder, alice, shoeID, 5, baseTime))
	require.NoError(t, rate(aliceOrder, alice, aliceOrder.Items[1].ProductID, 3, baseTime.Add(time.Minute)))
	require.NoError(t, rate(bobOrder, bob, shoeID, 4, baseTime.Add(time.Hour)))

	t.Run("one rating per customer order and product", func(t *testing.T) {
		err := rate(aliceOrder, alice, shoeID, 1, baseTime.Add(2*time.Hour))
		assert.ErrorIs(t, err, order.ErrAlreadyRated)
	})

	t.Run("by order", func(t *testing.T) {
		ratings, err := repo.FindByOrder(ctx, aliceOrder.ID)
		require.NoError(t, err)
		require.Len(t, ratings, 2)
		assert.Equal(t, 5, ratings[0].Stars)
		assert.Equal(t, "mantap", ratings[0].Review)
	})

	t.Run("by product newest first", func(t *testing.T) {
		ratings, err := repo.FindByProduct(ctx, shoeID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, ratings, 2)
		assert.Equal(t, bob, ratings[0].CustomerID)
	})

	t.Run("summaries", func(t *testing.T) {
		unrated := uuid.New()
		summaries, err := repo.Summaries(ctx, []uuid.UUID{shoeID, aliceOrder.Items[1].ProductID, unrated})
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.InDelta(t, 4.5, summaries[shoeID].Average, 0.001)
		assert.Equal(t, int64(2), summaries[shoeID].Count)
		assert.Equal(t, int64(1), summaries[aliceOrder.Items[1].ProductID].Count)
		assert.NotContains(t, summaries, unrated)

		empty, err := repo.Summaries(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}
