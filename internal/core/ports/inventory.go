// internal/core/ports/inventory.go
package ports

import (
	"context"

	"github.com/ammerola/shopcart/internal/core/domain"
)

// InventoryClient defines the port for the remote inventory service.
// Implementations treat network errors, non-2xx statuses and malformed
// bodies alike: all are returned as errors.
type InventoryClient interface {
	GetStock(ctx context.Context, productID int) (domain.Stock, error)
	// GetProduct returns product metadata; Amount is always zero.
	GetProduct(ctx context.Context, productID int) (domain.Product, error)
}
