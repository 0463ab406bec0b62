package cart

// ToggleSelection flips the checkout selection of a line and returns the new state
func (c *Cart) ToggleSelection(key LineKey) (bool, error) {
	i := c.indexOf(key)
	if i < 0 {
		return false, ErrLineNotFound
	}
	k := c.lines[i].Key
	if c.selected[k] {
		delete(c.selected, k)
		return false, nil
	}
	c.selected[k] = true
	return true, nil
}

// SetSelected selects or deselects a line
func (c *Cart) SetSelected(key LineKey, selected bool) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrLineNotFound
	}
	k := c.lines[i].Key
	if selected {
		c.selected[k] = true
	} else {
		delete(c.selected, k)
	}
	return nil
}

// SelectAll selects every line currently in the cart
func (c *Cart) SelectAll() {
	for _, l := range c.lines {
		c.selected[l.Key] = true
	}
}

// ClearSelection deselects every line
func (c *Cart) ClearSelection() {
	c.selected = make(map[LineKey]bool)
}

// IsSelected reports whether the line is selected for checkout
func (c *Cart) IsSelected(key LineKey) bool {
	return c.selected[NewLineKey(key.ProductID, key.Size)]
}

// SelectedKeys returns the selected keys in line order
func (c *Cart) SelectedKeys() []LineKey {
	keys := make([]LineKey, 0, len(c.selected))
	for _, l := range c.lines {
		if c.selected[l.Key] {
			keys = append(keys, l.Key)
		}
	}
	return keys
}

// SelectedLines returns the lines selected for checkout, in line order
func (c *Cart) SelectedLines() []Line {
	lines := make([]Line, 0, len(c.selected))
	for _, l := range c.lines {
		if c.selected[l.Key] {
			lines = append(lines, l)
		}
	}
	return lines
}

// LinesFor returns the lines matching keys. Unknown keys are reported as missing.
func (c *Cart) LinesFor(keys []LineKey) ([]Line, error) {
	lines := make([]Line, 0, len(keys))
	seen := make(map[LineKey]bool, len(keys))
	for _, k := range keys {
		i := c.indexOf(k)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		if seen[c.lines[i].Key] {
			continue
		}
		seen[c.lines[i].Key] = true
		lines = append(lines, c.lines[i])
	}
	return lines, nil
}

// RemoveSelected drops every selected line and returns them
func (c *Cart) RemoveSelected() []Line {
	removed := c.SelectedLines()
	c.RemoveLines(removed)
	return removed
}

// RemoveLines drops the given lines, ignoring ones already gone
func (c *Cart) RemoveLines(lines []Line) {
	for _, l := range lines {
		if i := c.indexOf(l.Key); i >= 0 {
			c.removeAt(i)
		}
	}
}
