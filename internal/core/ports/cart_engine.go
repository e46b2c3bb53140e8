// internal/core/ports/cart_engine.go
package ports

import (
	"context"

	"github.com/ammerola/shopcart/internal/core/domain"
)

// CartEngine defines the application service port for the cart.
// This interface is implemented by the engine and its notifying decorator.
type CartEngine interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int) error
	RemoveProduct(ctx context.Context, productID int) error
	UpdateProductAmount(ctx context.Context, update UpdateAmount) error
}

// UpdateAmount holds the parameters for setting a line item quantity
type UpdateAmount struct {
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}
