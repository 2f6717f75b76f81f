// Package cart owns the customer's shopping cart: an ordered list of line
// items keyed by product and variant, with stock-clamped quantities and
// derived totals.
package cart

import "strings"

// UniqueVariant is the variant label for a product added without supplements.
const UniqueVariant = "Unique"

// fallbackStock is assumed when a product carries no stock information.
const fallbackStock = 99

// Line is one cart entry: a snapshot of the product taken at add time.
// Prices and stock are not re-synced with the catalog afterwards.
type Line struct {
	Key             string   `json:"key"`
	ProductID       string   `json:"productId"`
	Name            string   `json:"name"`
	UnitPrice       int64    `json:"price"`
	BasePrice       int64    `json:"basePrice"`
	SupplementPrice int64    `json:"suppPrice"`
	Image           string   `json:"image"`
	Variant         string   `json:"size"`
	Quantity        int      `json:"quantity"`
	MaxStock        int      `json:"maxStock"`
	Supplements     []string `json:"supplements"`
}

// Subtotal returns the line's contribution to the cart total.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// VariantLabel derives the cart variant label from the chosen supplements.
func VariantLabel(supplements []string) string {
	if len(supplements) == 0 {
		return UniqueVariant
	}
	return "+ " + strings.Join(supplements, ", ")
}

// LineKey builds the composite identity of a line item.
func LineKey(productID, variant string) string {
	return productID + "-" + variant
}

// AddItem carries the product snapshot for an Add operation.
type AddItem struct {
	ProductID string
	Name      string
	Image     string
	BasePrice int64
	// Stock is the available stock for the chosen variant; <= 0 means unknown.
	Stock    int
	Variant  string
	Quantity int
	// Supplements lists the chosen add-on names, in selection order.
	Supplements []string
	// SupplementPrices maps supplement name to unit price.
	SupplementPrices map[string]int64
}

// Cart is the in-memory ordered collection of line items.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add merges the item into an existing line with the same (product, variant)
// key, clamping the resulting quantity to the line's recorded max stock, or
// appends a new line. Quantities that would exceed stock are silently
// clamped; no error is ever returned.
func (c *Cart) Add(item AddItem) {
	variant := item.Variant
	if variant == "" {
		variant = VariantLabel(item.Supplements)
	}
	key := LineKey(item.ProductID, variant)

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	for i := range c.lines {
		if c.lines[i].Key == key {
			c.lines[i].Quantity = clamp(c.lines[i].Quantity+qty, 1, c.lines[i].MaxStock)
			return
		}
	}

	stock := item.Stock
	if stock <= 0 {
		stock = fallbackStock
	}

	var suppTotal int64
	for _, name := range item.Supplements {
		suppTotal += item.SupplementPrices[name]
	}

	c.lines = append(c.lines, Line{
		Key:             key,
		ProductID:       item.ProductID,
		Name:            item.Name,
		UnitPrice:       item.BasePrice + suppTotal,
		BasePrice:       item.BasePrice,
		SupplementPrice: suppTotal,
		Image:           item.Image,
		Variant:         variant,
		Quantity:        clamp(qty, 1, stock),
		MaxStock:        stock,
		Supplements:     append([]string(nil), item.Supplements...),
	})
}

// UpdateQuantity sets the quantity of the line matching key, clamped into
// [1, maxStock]. Unknown keys are a no-op.
func (c *Cart) UpdateQuantity(key string, quantity int) {
	for i := range c.lines {
		if c.lines[i].Key == key {
			c.lines[i].Quantity = clamp(quantity, 1, c.lines[i].MaxStock)
			return
		}
	}
}

// Remove deletes the line matching key. Unknown keys are a no-op.
func (c *Cart) Remove(key string) {
	for i := range c.lines {
		if c.lines[i].Key == key {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the current line items in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Empty reports whether the cart holds no items.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Total is the derived sum of unit price times quantity over all lines.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount is the derived sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
