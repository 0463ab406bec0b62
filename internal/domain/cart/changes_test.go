package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(changes []Change) []ChangeKind {
	out := make([]ChangeKind, len(changes))
	for i, ch := range changes {
		out[i] = ch.Kind
	}
	return out
}

func TestCart_Changes(t *testing.T) {
	customer := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	stored := []Line{
		{Key: NewLineKey(a, "42"), Quantity: 1, AddedAt: now},
		{Key: NewLineKey(b, "42"), Quantity: 2, AddedAt: now},
		{Key: NewLineKey(c, "42"), Quantity: 1, AddedAt: now},
	}

	t.Run("restored cart has nothing to write", func(t *testing.T) {
		crt := Restore(customer, stored, []LineKey{NewLineKey(a, "42")})
		assert.Empty(t, crt.Changes())
		assert.False(t, crt.HasChanges())
	})

	t.Run("only edited lines are written", func(t *testing.T) {
		crt := Restore(customer, stored, nil)
		_, err := crt.ToggleSelection(NewLineKey(c, "42"))
		require.NoError(t, err)

		changes := crt.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, ChangeUpdate, changes[0].Kind)
		assert.Equal(t, NewLineKey(c, "42"), changes[0].Line.Key)
		assert.True(t, changes[0].Selected)
	})

	t.Run("size change is a delete then an insert", func(t *testing.T) {
		crt := Restore(customer, stored, nil)
		_, err := crt.ChangeSize(NewLineKey(a, "42"), "43")
		require.NoError(t, err)

		changes := crt.Changes()
		assert.Equal(t, []ChangeKind{ChangeDelete, ChangeInsert}, kinds(changes))
		assert.Equal(t, NewLineKey(a, "42"), changes[0].Line.Key)
		assert.Equal(t, NewLineKey(a, "43"), changes[1].Line.Key)
	})

	t.Run("merge deletes the source and updates the target", func(t *testing.T) {
		crt := Restore(customer, stored, nil)
		_, err := crt.ChangeSize(NewLineKey(a, "42"), "42")
		require.NoError(t, err)
		assert.Empty(t, crt.Changes())

		_, err = crt.AddItem(a, "43", 1, now)
		require.NoError(t, err)
		crt.MarkPersisted()
		_, err = crt.ChangeSize(NewLineKey(a, "43"), "42")
		require.NoError(t, err)
		assert.Equal(t, []ChangeKind{ChangeDelete, ChangeUpdate}, kinds(crt.Changes()))
	})

	t.Run("clear deletes every stored line", func(t *testing.T) {
		crt := Restore(customer, stored, nil)
		crt.Clear()
		assert.Equal(t, []ChangeKind{ChangeDelete, ChangeDelete, ChangeDelete}, kinds(crt.Changes()))
	})

	t.Run("new cart inserts in line order", func(t *testing.T) {
		crt := New(customer)
		_, _ = crt.AddItem(b, "", 1, now)
		_, _ = crt.AddItem(a, "", 1, now)
		changes := crt.Changes()
		assert.Equal(t, []ChangeKind{ChangeInsert, ChangeInsert}, kinds(changes))
		assert.Equal(t, b, changes[0].Line.Key.ProductID)

		crt.MarkPersisted()
		assert.Empty(t, crt.Changes())
	})
}
