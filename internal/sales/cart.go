package sales

import (
	"github.com/shopspring/decimal"
)

type cartEntry struct {
	label     string
	packaging string
	quantity  int
	unitPrice decimal.Decimal
}

// Cart stages line items before a record is created. The zero value is an
// empty cart. It is not safe for concurrent use.
type Cart struct {
	order   []string
	entries map[string]*cartEntry
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{entries: make(map[string]*cartEntry)}
}

// Add merges quantity into the product's line. The latest price wins.
func (c *Cart) Add(productID, label, packaging string, quantity int, unitPrice decimal.Decimal) error {
	switch {
	case productID == "":
		return newValidationError(ErrValidation, "product_id", "is required")
	case quantity <= 0:
		return newValidationError(ErrInvalidQuantity, "quantity", ErrInvalidQuantity.Error())
	case unitPrice.IsNegative():
		return newValidationError(ErrInvalidPrice, "unit_price", ErrInvalidPrice.Error())
	}
	if c.entries == nil {
		c.entries = make(map[string]*cartEntry)
	}
	if e, ok := c.entries[productID]; ok {
		e.quantity += quantity
		e.unitPrice = unitPrice
		if label != "" {
			e.label = label
		}
		return nil
	}
	c.order = append(c.order, productID)
	c.entries[productID] = &cartEntry{label: label, packaging: packaging, quantity: quantity, unitPrice: unitPrice}
	return nil
}

// Remove drops a product line.
func (c *Cart) Remove(productID string) {
	if _, ok := c.entries[productID]; !ok {
		return
	}
	delete(c.entries, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Lines returns the staged items in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, 0, len(c.order))
	for _, id := range c.order {
		e := c.entries[id]
		out = append(out, LineItem{
			ProductID:    id,
			ProductLabel: e.label,
			Packaging:    e.packaging,
			Quantity:     e.quantity,
			UnitPrice:    e.unitPrice,
		})
	}
	return out
}

func (c *Cart) Total() decimal.Decimal { return TotalOf(c.Lines()) }

func (c *Cart) IsEmpty() bool { return len(c.order) == 0 }

// Clear discards every line.
func (c *Cart) Clear() {
	c.order = nil
	c.entries = nil
}
