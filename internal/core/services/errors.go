// internal/core/services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrStockInsufficient is matched by every *StockError
	ErrStockInsufficient = errors.New("requested quantity exceeds available stock")

	// ErrItemNotFound is returned when removing a product that is not in the cart
	ErrItemNotFound = errors.New("product not in cart")
)

// Op names a cart mutation
type Op string

const (
	OpAddProduct    Op = "add_product"
	OpRemoveProduct Op = "remove_product"
	OpUpdateAmount  Op = "update_product_amount"
)

// StockError reports a quantity above what inventory can supply
type StockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %d: requested %d, %d in stock", e.ProductID, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrStockInsufficient) hold for any *StockError
func (e *StockError) Is(target error) bool {
	return target == ErrStockInsufficient
}

// OperationError wraps transport and unexpected faults raised during a mutation
type OperationError struct {
	Op        Op
	ProductID int
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %d: %v", e.Op, e.ProductID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
