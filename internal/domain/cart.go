package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry keeps a snapshot of the product taken when the entry was created,
// so the cart renders without the catalog.
type CartEntry struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
}

func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart holds entries in insertion order. Totals are always folded from the entries.
type Cart struct {
	Items []CartEntry
}

// PersistedCart is the stored representation of a cart.
type PersistedCart struct {
	Items         []CartEntry `json:"items"`
	SchemaVersion string      `json:"schema_version"`
	Timestamp     time.Time   `json:"timestamp"`
}

func NewCart() *Cart {
	return &Cart{Items: []CartEntry{}}
}

func (c *Cart) Index(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Quantity(productID string) int {
	if i := c.Index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Totals returns the item count and amount of the cart.
func (c *Cart) Totals() (int, decimal.Decimal) {
	count := 0
	amount := decimal.Zero
	for _, item := range c.Items {
		count += item.Quantity
		amount = amount.Add(item.Subtotal())
	}
	return count, amount
}

func (c *Cart) Clone() *Cart {
	items := make([]CartEntry, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items}
}
