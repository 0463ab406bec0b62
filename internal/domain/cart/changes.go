package cart

import "sort"

// ChangeKind is the kind of write a line needs to be persisted
type ChangeKind int

// Change kinds, in the order a repository applies them
const (
	ChangeDelete ChangeKind = iota + 1
	ChangeUpdate
	ChangeInsert
)

// Change is one pending line write. Lines untouched since the cart was
// restored produce no change, so concurrent writers only collide on the
// lines both of them edited.
type Change struct {
	Kind     ChangeKind
	Line     Line
	Selected bool
}

type lineState struct {
	quantity int
	selected bool
}

// Changes lists the writes that bring the stored cart to the current state:
// deletes first, then updates, then inserts in line order
func (c *Cart) Changes() []Change {
	current := make(map[LineKey]bool, len(c.lines))
	var updates, inserts []Change
	for _, l := range c.lines {
		current[l.Key] = true
		selected := c.selected[l.Key]
		prev, ok := c.persisted[l.Key]
		switch {
		case !ok:
			inserts = append(inserts, Change{Kind: ChangeInsert, Line: l, Selected: selected})
		case prev.quantity != l.Quantity || prev.selected != selected:
			updates = append(updates, Change{Kind: ChangeUpdate, Line: l, Selected: selected})
		}
	}

	deletes := make([]Change, 0)
	for key := range c.persisted {
		if !current[key] {
			deletes = append(deletes, Change{Kind: ChangeDelete, Line: Line{Key: key}})
		}
	}
	sort.Slice(deletes, func(i, j int) bool {
		return deletes[i].Line.Key.String() < deletes[j].Line.Key.String()
	})

	changes := append(deletes, updates...)
	return append(changes, inserts...)
}

// HasChanges reports whether the cart differs from its stored state
func (c *Cart) HasChanges() bool {
	return len(c.Changes()) > 0
}

// MarkPersisted records the current state as stored
func (c *Cart) MarkPersisted() {
	c.persisted = make(map[LineKey]lineState, len(c.lines))
	for _, l := range c.lines {
		c.persisted[l.Key] = lineState{quantity: l.Quantity, selected: c.selected[l.Key]}
	}
}
