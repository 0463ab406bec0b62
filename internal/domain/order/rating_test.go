package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

func TestOrder_Rate(t *testing.T) {
	completed := func(t *testing.T) *Order {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusCompleted, baseTime)
		return o
	}

	t.Run("rates a product of a completed order", func(t *testing.T) {
		o := completed(t)
		r, err := o.Rate(o.CustomerID, o.Items[0].ProductID, 5, " mantap ", baseTime)
		require.NoError(t, err)
		assert.Equal(t, 5, r.Stars)
		assert.Equal(t, "mantap", r.Review)
		assert.Equal(t, o.ID, r.OrderID)
	})

	t.Run("only completed orders", func(t *testing.T) {
		o := createTestOrder(t, PaymentMethodCOD)
		advanceTo(t, o, StatusArrived, baseTime)
		_, err := o.Rate(o.CustomerID, o.Items[0].ProductID, 5, "", baseTime)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("star bounds", func(t *testing.T) {
		o := completed(t)
		for _, stars := range []int{0, 6, -1} {
			_, err := o.Rate(o.CustomerID, o.Items[0].ProductID, stars, "", baseTime)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		}
	})

	t.Run("product must be in the order", func(t *testing.T) {
		o := completed(t)
		_, err := o.Rate(o.CustomerID, uuid.New(), 4, "", baseTime)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("owner only", func(t *testing.T) {
		o := completed(t)
		_, err := o.Rate(uuid.New(), o.Items[0].ProductID, 4, "", baseTime)
		assert.ErrorIs(t, err, shared.ErrNotAuthorized)
	})
}

func TestOrder_ProductIDs(t *testing.T) {
	o := createTestOrder(t, PaymentMethodCOD)
	dup := o.Items[0]
	dup.Size = "43"
	o.Items = append(o.Items, dup)

	assert.Len(t, o.ProductIDs(), 2)
}
