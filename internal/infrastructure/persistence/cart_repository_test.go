package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/cart"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

func TestGormCartRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCartRepository(db)
	repo.now = func() time.Time { return baseTime }
	ctx := context.Background()
	customerID := uuid.New()
	shoe, ball, socks := uuid.New(), uuid.New(), uuid.New()

	empty, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := cart.New(customerID)
	_, err = c.AddItem(shoe, "42", 2, baseTime)
	require.NoError(t, err)
	_, err = c.AddItem(ball, "", 1, baseTime)
	require.NoError(t, err)
	_, err = c.AddItem(socks, "M", 3, baseTime)
	require.NoError(t, err)
	require.NoError(t, c.SetSelected(cart.NewLineKey(shoe, "42"), true))
	require.NoError(t, c.SetSelected(cart.NewLineKey(ball, ""), true))
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	lines := loaded.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, cart.NewLineKey(shoe, "42"), lines[0].Key, "insertion order is kept")
	assert.Equal(t, cart.DefaultSize, lines[1].Key.Size)
	assert.Equal(t, cart.NewLineKey(socks, "M"), lines[2].Key)
	assert.Equal(t, []cart.LineKey{cart.NewLineKey(shoe, "42"), cart.NewLineKey(ball, "")}, loaded.SelectedKeys())

	t.Run("save writes the changed lines", func(t *testing.T) {
		_, err := loaded.ChangeSize(cart.NewLineKey(socks, "M"), "L")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, loaded))

		again, err := repo.Load(ctx, customerID)
		require.NoError(t, err)
		_, hasOld := again.Line(cart.NewLineKey(socks, "M"))
		line, hasNew := again.Line(cart.NewLineKey(socks, "L"))
		assert.False(t, hasOld)
		assert.True(t, hasNew)
		assert.Equal(t, 3, line.Quantity)
	})

	t.Run("remove lines keeps the rest", func(t *testing.T) {
		require.NoError(t, repo.RemoveLines(ctx, customerID, []cart.LineKey{
			cart.NewLineKey(shoe, "42"),
			cart.NewLineKey(ball, "default"),
		}))

		rest, err := repo.Load(ctx, customerID)
		require.NoError(t, err)
		require.Len(t, rest.Lines(), 1)
		assert.Equal(t, socks, rest.Lines()[0].Key.ProductID)
		assert.Empty(t, rest.SelectedKeys())
	})

	t.Run("carts are per customer", func(t *testing.T) {
		other := cart.New(uuid.New())
		_, err := other.AddItem(shoe, "41", 1, baseTime)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, other))

		require.NoError(t, repo.Clear(ctx, customerID))
		cleared, err := repo.Load(ctx, customerID)
		require.NoError(t, err)
		assert.True(t, cleared.IsEmpty())

		kept, err := repo.Load(ctx, other.CustomerID)
		require.NoError(t, err)
		assert.Len(t, kept.Lines(), 1)
	})
}

func TestGormCartRepository_StaleSaveKeepsCheckedOutLinesRemoved(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	initial := cart.New(customerID)
	for _, p := range []uuid.UUID{a, b, c} {
		_, err := initial.AddItem(p, "42", 1, baseTime)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(ctx, initial))

	stale, err := repo.Load(ctx, customerID)
	require.NoError(t, err)

	// a checkout commits between the other request's load and save
	require.NoError(t, repo.RemoveLines(ctx, customerID, []cart.LineKey{
		cart.NewLineKey(a, "42"),
		cart.NewLineKey(b, "42"),
	}))

	_, err = stale.ToggleSelection(cart.NewLineKey(c, "42"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, stale))

	after, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, after.Lines(), 1)
	assert.Equal(t, c, after.Lines()[0].Key.ProductID)
	assert.True(t, after.IsSelected(cart.NewLineKey(c, "42")))
	_, hasA := after.Line(cart.NewLineKey(a, "42"))
	assert.False(t, hasA, "checked-out line must not come back")
}

func TestGormCartRepository_StaleEditOfRemovedLineConflicts(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	shoe := uuid.New()

	initial := cart.New(customerID)
	_, err := initial.AddItem(shoe, "42", 1, baseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, initial))

	stale, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	require.NoError(t, repo.RemoveLines(ctx, customerID, []cart.LineKey{cart.NewLineKey(shoe, "42")}))

	require.NoError(t, stale.UpdateQuantity(cart.NewLineKey(shoe, "42"), 3))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

	after, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, after.IsEmpty())
}

func TestGormCartRepository_ConcurrentInsertOfSameLineConflicts(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	shoe := uuid.New()

	first, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	second, err := repo.Load(ctx, customerID)
	require.NoError(t, err)

	_, err = first.AddItem(shoe, "42", 1, baseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = second.AddItem(shoe, "42", 2, baseTime)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	stored, err := repo.Load(ctx, customerID)
	require.NoError(t, err)
	line, ok := stored.Line(cart.NewLineKey(shoe, "42"))
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
}
