package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestLineKey(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, NewLineKey(id, ""), NewLineKey(id, "default"))
	assert.Equal(t, NewLineKey(id, " 42 "), NewLineKey(id, "42"))

	parsed, err := ParseLineKey(NewLineKey(id, "XL").String())
	require.NoError(t, err)
	assert.Equal(t, NewLineKey(id, "XL"), parsed)

	_, err = ParseLineKey("nope")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = ParseLineKey("nope:42")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCart_AddItem(t *testing.T) {
	c := New(uuid.New())
	p := uuid.New()

	_, err := c.AddItem(p, "42", 1, now)
	require.NoError(t, err)
	line, err := c.AddItem(p, "42", 2, now)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	_, err = c.AddItem(p, "43", 1, now)
	require.NoError(t, err)
	assert.Len(t, c.Lines(), 2)
	assert.Equal(t, 4, c.ItemCount())

	_, err = c.AddItem(p, "42", 0, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	line, err = c.AddItem(p, "42", 500, now)
	require.NoError(t, err)
	assert.Equal(t, MaxLineQuantity, line.Quantity)
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := New(uuid.New())
	p := uuid.New()
	key := NewLineKey(p, "M")
	_, _ = c.AddItem(p, "M", 1, now)
	require.NoError(t, c.SetSelected(key, true))

	require.NoError(t, c.UpdateQuantity(key, 5))
	l, ok := c.Line(key)
	require.True(t, ok)
	assert.Equal(t, 5, l.Quantity)

	assert.ErrorIs(t, c.UpdateQuantity(key, 100), ErrInvalidQuantity)

	require.NoError(t, c.UpdateQuantity(key, 0))
	assert.True(t, c.IsEmpty())
	assert.False(t, c.IsSelected(key))

	assert.ErrorIs(t, c.UpdateQuantity(key, 1), ErrLineNotFound)
}

func TestCart_ChangeSize(t *testing.T) {
	t.Run("collision merges and merged line stays selected", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 2, now)
		_, _ = c.AddItem(p, "L", 1, now)
		require.NoError(t, c.SetSelected(NewLineKey(p, "M"), true))

		merged, err := c.ChangeSize(NewLineKey(p, "M"), "L")
		require.NoError(t, err)

		assert.Equal(t, 3, merged.Quantity)
		assert.Len(t, c.Lines(), 1)
		assert.True(t, c.IsSelected(NewLineKey(p, "L")))
		assert.False(t, c.IsSelected(NewLineKey(p, "M")))
		assert.Equal(t, []LineKey{NewLineKey(p, "L")}, c.SelectedKeys())
	})

	t.Run("collision with an unselected source keeps the target's selection", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 2, now)
		_, _ = c.AddItem(p, "L", 1, now)
		require.NoError(t, c.SetSelected(NewLineKey(p, "L"), true))

		_, err := c.ChangeSize(NewLineKey(p, "M"), "L")
		require.NoError(t, err)
		assert.True(t, c.IsSelected(NewLineKey(p, "L")))
	})

	t.Run("no collision re-keys the selection", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 2, now)
		require.NoError(t, c.SetSelected(NewLineKey(p, "M"), true))

		line, err := c.ChangeSize(NewLineKey(p, "M"), "XL")
		require.NoError(t, err)
		assert.Equal(t, NewLineKey(p, "XL"), line.Key)
		assert.Equal(t, 2, line.Quantity)
		assert.True(t, c.IsSelected(NewLineKey(p, "XL")))
		assert.False(t, c.IsSelected(NewLineKey(p, "M")))
	})

	t.Run("unselected line stays unselected", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 2, now)

		_, err := c.ChangeSize(NewLineKey(p, "M"), "S")
		require.NoError(t, err)
		assert.Empty(t, c.SelectedKeys())
	})

	t.Run("same size is a no-op", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 2, now)

		line, err := c.ChangeSize(NewLineKey(p, "M"), " M ")
		require.NoError(t, err)
		assert.Equal(t, 2, line.Quantity)
		assert.Len(t, c.Lines(), 1)
	})

	t.Run("merge above the line maximum is rejected", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 60, now)
		_, _ = c.AddItem(p, "L", 40, now)
		require.NoError(t, c.SetSelected(NewLineKey(p, "M"), true))

		_, err := c.ChangeSize(NewLineKey(p, "M"), "L")
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		m, ok := c.Line(NewLineKey(p, "M"))
		require.True(t, ok)
		assert.Equal(t, 60, m.Quantity)
		l, ok := c.Line(NewLineKey(p, "L"))
		require.True(t, ok)
		assert.Equal(t, 40, l.Quantity)
		assert.True(t, c.IsSelected(NewLineKey(p, "M")))
	})

	t.Run("merge up to the line maximum sums exactly", func(t *testing.T) {
		c := New(uuid.New())
		p := uuid.New()
		_, _ = c.AddItem(p, "M", 59, now)
		_, _ = c.AddItem(p, "L", 40, now)

		merged, err := c.ChangeSize(NewLineKey(p, "M"), "L")
		require.NoError(t, err)
		assert.Equal(t, MaxLineQuantity, merged.Quantity)
	})

	t.Run("missing line", func(t *testing.T) {
		c := New(uuid.New())
		_, err := c.ChangeSize(NewLineKey(uuid.New(), "M"), "L")
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestCart_Selection(t *testing.T) {
	c := New(uuid.New())
	a, b, d := uuid.New(), uuid.New(), uuid.New()
	_, _ = c.AddItem(a, "42", 2, now)
	_, _ = c.AddItem(b, "L", 1, now)
	_, _ = c.AddItem(d, "", 1, now)

	selected, err := c.ToggleSelection(NewLineKey(a, "42"))
	require.NoError(t, err)
	assert.True(t, selected)
	selected, err = c.ToggleSelection(NewLineKey(b, "L"))
	require.NoError(t, err)
	assert.True(t, selected)

	lines := c.SelectedLines()
	require.Len(t, lines, 2)
	assert.Equal(t, a, lines[0].Key.ProductID)

	removed := c.RemoveSelected()
	assert.Len(t, removed, 2)
	remaining := c.Lines()
	require.Len(t, remaining, 1)
	assert.Equal(t, d, remaining[0].Key.ProductID)
	assert.Empty(t, c.SelectedKeys())

	c.SelectAll()
	assert.True(t, c.IsSelected(NewLineKey(d, "default")))
	c.ClearSelection()
	assert.Empty(t, c.SelectedLines())

	_, err = c.ToggleSelection(NewLineKey(a, "42"))
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestCart_LinesFor(t *testing.T) {
	c := New(uuid.New())
	a, b := uuid.New(), uuid.New()
	_, _ = c.AddItem(a, "42", 2, now)
	_, _ = c.AddItem(b, "L", 1, now)

	lines, err := c.LinesFor([]LineKey{NewLineKey(b, "L"), NewLineKey(b, "L")})
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	_, err = c.LinesFor([]LineKey{NewLineKey(a, "41")})
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRestore(t *testing.T) {
	customer := uuid.New()
	p := uuid.New()
	c := Restore(customer, []Line{
		{Key: LineKey{ProductID: p, Size: ""}, Quantity: 1},
		{Key: LineKey{ProductID: p, Size: "default"}, Quantity: 2},
	}, []LineKey{{ProductID: p}, {ProductID: uuid.New(), Size: "M"}})

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, []LineKey{NewLineKey(p, "")}, c.SelectedKeys())
}
