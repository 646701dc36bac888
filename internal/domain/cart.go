package domain

import "errors"

// ErrCartLineNotFound is returned when a cart line id does not exist.
var ErrCartLineNotFound = errors.New("cart: line not found")

// CartLine binds a product snapshot to the user's selections and a
// positive quantity. Lines with the same product and identical
// selections never coexist; Cart merges them at mutation time.
type CartLine struct {
	ID         string
	Product    Product
	Selections SelectedOptions
	Quantity   int
}

// UnitPrice is the final per-item price for this line.
func (l CartLine) UnitPrice() int64 {
	return FinalPrice(l.Product, l.Selections)
}

// LineTotal is quantity times the final per-item price.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice() * int64(l.Quantity)
}

// Cart is an ordered sequence of lines. Ordering is insertion order and
// carries no meaning beyond display.
type Cart struct {
	Lines []CartLine
}

// AddLine inserts a new line, or merges it into an existing line with
// the same product and identical selections by summing quantities.
// The id of the surviving line is returned. Non-positive quantities are
// ignored.
func (c *Cart) AddLine(line CartLine) string {
	if line.Quantity <= 0 {
		return ""
	}
	if idx := c.findMatch(line.Product.ID, line.Selections, ""); idx >= 0 {
		c.Lines[idx].Quantity += line.Quantity
		return c.Lines[idx].ID
	}
	c.Lines = append(c.Lines, line)
	return line.ID
}

// UpdateLine replaces the selections and quantity of an existing line.
// Quantity zero removes the line. When the new selections collide with
// a different line for the same product, the two lines merge: the other
// line absorbs the summed quantity and the edited line is removed.
// The id of the surviving line (empty if removed) is returned.
func (c *Cart) UpdateLine(lineID string, selections SelectedOptions, quantity int) (string, error) {
	idx := c.indexOf(lineID)
	if idx < 0 {
		return "", ErrCartLineNotFound
	}
	if quantity <= 0 {
		c.removeAt(idx)
		return "", nil
	}

	if other := c.findMatch(c.Lines[idx].Product.ID, selections, lineID); other >= 0 {
		c.Lines[other].Quantity += quantity
		survivor := c.Lines[other].ID
		c.removeAt(idx)
		return survivor, nil
	}

	c.Lines[idx].Selections = selections.Clone()
	c.Lines[idx].Quantity = quantity
	return lineID, nil
}

// RemoveLine deletes the line with the given id.
func (c *Cart) RemoveLine(lineID string) error {
	idx := c.indexOf(lineID)
	if idx < 0 {
		return ErrCartLineNotFound
	}
	c.removeAt(idx)
	return nil
}

// Clear drops every line. Used when an order is placed.
func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalQuantity sums the quantities of all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice folds the pricing engine over all lines.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.LineTotal()
	}
	return total
}

// Clone deep-copies the cart so callers can hold a stable snapshot.
func (c *Cart) Clone() Cart {
	if len(c.Lines) == 0 {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	for i, line := range c.Lines {
		lines[i] = CartLine{
			ID:         line.ID,
			Product:    line.Product,
			Selections: line.Selections.Clone(),
			Quantity:   line.Quantity,
		}
	}
	return Cart{Lines: lines}
}

func (c *Cart) indexOf(lineID string) int {
	for i, line := range c.Lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) findMatch(productID int64, selections SelectedOptions, excludeLineID string) int {
	for i, line := range c.Lines {
		if excludeLineID != "" && line.ID == excludeLineID {
			continue
		}
		if line.Product.ID == productID && line.Selections.Equal(selections) {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
}
