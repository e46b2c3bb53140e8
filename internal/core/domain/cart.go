// internal/core/domain/cart.go
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a catalog product annotated with the quantity held in the cart.
// Amount is only meaningful for cart line items.
//
// Fields the cart does not interpret are kept in Extra and written back
// unchanged, so catalog metadata survives a load/save round trip.
type Product struct {
	ID     int
	Title  string
	Price  decimal.Decimal
	Image  string
	Amount int
	Extra  map[string]json.RawMessage
}

type productFields struct {
	ID     int             `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

var productKeys = []string{"id", "title", "price", "image", "amount"}

// UnmarshalJSON decodes the known fields and keeps every other key in Extra.
// Price may be a JSON number or a string.
func (p *Product) UnmarshalJSON(data []byte) error {
	var fields productFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var rest map[string]json.RawMessage
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	for _, k := range productKeys {
		delete(rest, k)
	}
	if len(rest) == 0 {
		rest = nil
	}

	*p = Product{
		ID:     fields.ID,
		Title:  fields.Title,
		Price:  fields.Price,
		Image:  fields.Image,
		Amount: fields.Amount,
		Extra:  rest,
	}
	return nil
}

// MarshalJSON writes the known fields over Extra. Price is written as a JSON
// number.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+len(productKeys))
	for k, v := range p.Extra {
		out[k] = v
	}

	title, err := json.Marshal(p.Title)
	if err != nil {
		return nil, err
	}
	image, err := json.Marshal(p.Image)
	if err != nil {
		return nil, err
	}

	out["id"] = json.RawMessage(fmt.Sprint(p.ID))
	out["title"] = title
	out["price"] = json.RawMessage(p.Price.String())
	out["image"] = image
	out["amount"] = json.RawMessage(fmt.Sprint(p.Amount))

	return json.Marshal(out)
}

// Clone returns a copy of p whose Extra map is not shared
func (p Product) Clone() Product {
	if p.Extra != nil {
		extra := make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		p.Extra = extra
	}
	return p
}

// Stock is the quantity currently available from inventory for a product
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Cart is an ordered list of line items, unique by product ID.
// Methods never modify the receiver; they return a new Cart.
type Cart []Product

// Find returns the line item for productID
func (c Cart) Find(productID int) (Product, bool) {
	for _, p := range c {
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}

// Contains reports whether productID is in the cart
func (c Cart) Contains(productID int) bool {
	_, ok := c.Find(productID)
	return ok
}

// Len returns the number of distinct products
func (c Cart) Len() int {
	return len(c)
}

// TotalUnits returns the sum of all line item amounts
func (c Cart) TotalUnits() int {
	total := 0
	for _, p := range c {
		total += p.Amount
	}
	return total
}

// Clone returns a copy that shares no backing array with c
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	for i, p := range c {
		out[i] = p.Clone()
	}
	return out
}

// WithAmount returns a cart where the entry for productID carries amount.
// Other entries and the order are unchanged; an absent productID yields an
// unchanged copy.
func (c Cart) WithAmount(productID, amount int) Cart {
	out := make(Cart, len(c))
	for i, p := range c {
		if p.ID == productID {
			p.Amount = amount
		}
		out[i] = p
	}
	return out
}

// Without returns a cart excluding productID, preserving relative order
func (c Cart) Without(productID int) Cart {
	out := make(Cart, 0, len(c))
	for _, p := range c {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}

// Append returns a cart with p added at the end
func (c Cart) Append(p Product) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, p)
}

// Validate checks the cart invariants: unique IDs and positive amounts
func (c Cart) Validate() error {
	seen := make(map[int]struct{}, len(c))
	for _, p := range c {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Amount <= 0 {
			return fmt.Errorf("product %d: amount must be positive", p.ID)
		}
	}
	return nil
}

// Validate performs basic checks on a stock record
func (s Stock) Validate() error {
	if s.Amount < 0 {
		return fmt.Errorf("stock amount cannot be negative")
	}
	return nil
}
