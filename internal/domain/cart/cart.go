package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// DefaultSize is used for products without size variants
const DefaultSize = "default"

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 99

// Cart errors
var (
	ErrLineNotFound    = shared.NewDomainError("NOT_FOUND", "Item is not in the cart")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 99")
)

// LineKey identifies a cart line by product and size
type LineKey struct {
	ProductID uuid.UUID
	Size      string
}

// NewLineKey normalises the size so "" and "default" address the same line
func NewLineKey(productID uuid.UUID, size string) LineKey {
	size = strings.TrimSpace(size)
	if size == "" {
		size = DefaultSize
	}
	return LineKey{ProductID: productID, Size: size}
}

// String renders the key as "<product>:<size>"
func (k LineKey) String() string {
	return k.ProductID.String() + ":" + k.Size
}

// ParseLineKey parses the String form of a key
func ParseLineKey(s string) (LineKey, error) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return LineKey{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid cart line key")
	}
	id, err := uuid.Parse(s[:idx])
	if err != nil {
		return LineKey{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid cart line key")
	}
	return NewLineKey(id, s[idx+1:]), nil
}

// Line is one product/size entry of the cart
type Line struct {
	Key      LineKey
	Quantity int
	AddedAt  time.Time
}

// Cart holds a customer's pending items and which of them are selected for
// checkout. Lines keep insertion order.
type Cart struct {
	CustomerID uuid.UUID
	lines      []Line
	selected   map[LineKey]bool
	persisted  map[LineKey]lineState
}

// New creates an empty cart for the customer
func New(customerID uuid.UUID) *Cart {
	return &Cart{
		CustomerID: customerID,
		selected:   make(map[LineKey]bool),
	}
}

// Restore rebuilds a cart from stored lines and their selection flags
func Restore(customerID uuid.UUID, lines []Line, selected []LineKey) *Cart {
	c := New(customerID)
	for _, l := range lines {
		l.Key = NewLineKey(l.Key.ProductID, l.Key.Size)
		if i := c.indexOf(l.Key); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	for _, k := range selected {
		k = NewLineKey(k.ProductID, k.Size)
		if c.indexOf(k) >= 0 {
			c.selected[k] = true
		}
	}
	c.MarkPersisted()
	return c
}

// Lines returns a copy of the cart lines
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Line returns the line for key
func (c *Cart) Line(key LineKey) (Line, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount returns the total number of units in the cart
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) indexOf(key LineKey) int {
	key = NewLineKey(key.ProductID, key.Size)
	for i, l := range c.lines {
		if l.Key == key {
			return i
		}
	}
	return -1
}

// AddItem adds quantity units, merging into an existing line of the same key.
// The line quantity is capped at MaxLineQuantity.
func (c *Cart) AddItem(productID uuid.UUID, size string, quantity int, now time.Time) (Line, error) {
	if productID == uuid.Nil {
		return Line{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	key := NewLineKey(productID, size)
	if i := c.indexOf(key); i >= 0 {
		c.lines[i].Quantity = capQuantity(c.lines[i].Quantity + quantity)
		return c.lines[i], nil
	}
	line := Line{Key: key, Quantity: capQuantity(quantity), AddedAt: now}
	c.lines = append(c.lines, line)
	return line, nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (c *Cart) UpdateQuantity(key LineKey, quantity int) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.removeAt(i)
		return nil
	}
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	c.lines[i].Quantity = quantity
	return nil
}

// RemoveItem removes the line and its selection
func (c *Cart) RemoveItem(key LineKey) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	delete(c.selected, c.lines[i].Key)
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
	c.selected = make(map[LineKey]bool)
}

// ChangeSize re-keys a line to another size. When a line with the new size
// already exists the quantities merge into it; a sum above MaxLineQuantity is
// rejected with ErrInvalidQuantity and the cart is left as it was. The
// selection follows the item, so a selected line stays selected after the
// merge.
func (c *Cart) ChangeSize(key LineKey, newSize string) (Line, error) {
	i := c.indexOf(key)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	oldKey := c.lines[i].Key
	newKey := NewLineKey(oldKey.ProductID, newSize)
	if newKey == oldKey {
		return c.lines[i], nil
	}

	wasSelected := c.selected[oldKey]
	if j := c.indexOf(newKey); j >= 0 {
		sum := c.lines[j].Quantity + c.lines[i].Quantity
		if sum > MaxLineQuantity {
			return Line{}, ErrInvalidQuantity
		}
		c.lines[j].Quantity = sum
		merged := c.lines[j]
		c.removeAt(i)
		if wasSelected {
			c.selected[newKey] = true
		}
		return merged, nil
	}

	delete(c.selected, oldKey)
	c.lines[i].Key = newKey
	if wasSelected {
		c.selected[newKey] = true
	}
	return c.lines[i], nil
}

func capQuantity(q int) int {
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}
