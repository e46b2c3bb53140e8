// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
)

// StaticInventory answers every lookup from memory with the same stock level
type StaticInventory struct {
	Stock int
}

var _ ports.InventoryClient = (*StaticInventory)(nil)

// GetStock returns the configured stock for any product
func (s *StaticInventory) GetStock(_ context.Context, productID int) (domain.Stock, error) {
	return domain.Stock{ID: productID, Amount: s.Stock}, nil
}

// GetProduct returns generated metadata for productID
func (s *StaticInventory) GetProduct(_ context.Context, productID int) (domain.Product, error) {
	return domain.Product{
		ID:    productID,
		Title: fmt.Sprintf("Benchmark Sneaker %d", productID),
		Price: decimal.NewFromFloat(139.9),
		Image: fmt.Sprintf("https://cdn.example.com/bench/%d.jpg", productID),
	}, nil
}
