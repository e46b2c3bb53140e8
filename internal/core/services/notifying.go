// internal/core/services/notifying.go
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
)

// User-facing failure messages
const (
	MessageStockExceeded = "requested quantity exceeds available stock"
	MessageAddFailed     = "failed to add product"
	MessageRemoveFailed  = "failed to remove product"
	MessageUpdateFailed  = "failed to change product quantity"
)

// NotifyingEngine decorates a CartEngine and turns every failed mutation into
// exactly one user notification. Errors are still returned to the caller.
type NotifyingEngine struct {
	engine   ports.CartEngine
	notifier ports.Notifier
	logger   *slog.Logger
}

// Statically assert that *NotifyingEngine implements the CartEngine interface.
var _ ports.CartEngine = (*NotifyingEngine)(nil)

// NewNotifyingEngine wraps engine with notifier
func NewNotifyingEngine(engine ports.CartEngine, notifier ports.Notifier, logger *slog.Logger) *NotifyingEngine {
	return &NotifyingEngine{
		engine:   engine,
		notifier: notifier,
		logger:   logger.With(slog.String("service", "cart_notifications")),
	}
}

// Cart returns the current cart
func (n *NotifyingEngine) Cart() domain.Cart {
	return n.engine.Cart()
}

// AddProduct adds a product and notifies on failure
func (n *NotifyingEngine) AddProduct(ctx context.Context, productID int) error {
	err := n.engine.AddProduct(ctx, productID)
	if err != nil {
		n.notify(ctx, err, stockOr(err, MessageAddFailed))
	}
	return err
}

// RemoveProduct removes a product and notifies on failure
func (n *NotifyingEngine) RemoveProduct(ctx context.Context, productID int) error {
	err := n.engine.RemoveProduct(ctx, productID)
	if err != nil {
		n.notify(ctx, err, MessageRemoveFailed)
	}
	return err
}

// UpdateProductAmount sets a quantity and notifies on failure
func (n *NotifyingEngine) UpdateProductAmount(ctx context.Context, update ports.UpdateAmount) error {
	err := n.engine.UpdateProductAmount(ctx, update)
	if err != nil {
		n.notify(ctx, err, stockOr(err, MessageUpdateFailed))
	}
	return err
}

func (n *NotifyingEngine) notify(ctx context.Context, err error, message string) {
	n.logger.WarnContext(ctx, "cart operation failed",
		slog.String("message", message),
		slog.String("error", err.Error()))
	n.notifier.Error(message)
}

func stockOr(err error, fallback string) string {
	if errors.Is(err, ErrStockInsufficient) {
		return MessageStockExceeded
	}
	return fallback
}
