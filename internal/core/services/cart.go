// internal/core/services/cart.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
)

// DefaultStorageKey is the key the cart snapshot is stored under
const DefaultStorageKey = "@RocketShoes:cart"

// CartEngine owns the cart state. Every mutation checks stock where required
// and commits by writing the snapshot to the store before swapping it in
// memory. Mutations run one at a time per engine.
type CartEngine struct {
	inventory ports.InventoryClient
	store     ports.SnapshotStore
	key       string
	sessionID string
	logger    *slog.Logger

	// sem serializes mutations; mu guards cart for readers.
	sem  chan struct{}
	mu   sync.RWMutex
	cart domain.Cart
}

// Statically assert that *CartEngine implements the CartEngine interface.
var _ ports.CartEngine = (*CartEngine)(nil)

// EngineOption configures a CartEngine
type EngineOption func(*CartEngine)

// WithStorageKey overrides DefaultStorageKey
func WithStorageKey(key string) EngineOption {
	return func(s *CartEngine) {
		if key != "" {
			s.key = key
		}
	}
}

// WithSessionID sets the id that tags this engine's log records
func WithSessionID(id string) EngineOption {
	return func(s *CartEngine) {
		if id != "" {
			s.sessionID = id
		}
	}
}

// NewCartEngine creates an engine seeded from the snapshot in store.
// A missing, unreadable or invalid snapshot yields an empty cart.
func NewCartEngine(ctx context.Context, inventory ports.InventoryClient, store ports.SnapshotStore,
	logger *slog.Logger, opts ...EngineOption) *CartEngine {

	s := &CartEngine{
		inventory: inventory,
		store:     store,
		key:       DefaultStorageKey,
		sessionID: uuid.NewString(),
		sem:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = logger.With(
		slog.String("service", "cart"),
		slog.String("session_id", s.sessionID),
		slog.String("cart_key", s.key),
	)
	s.cart = s.loadSnapshot(ctx)

	return s
}

func (s *CartEngine) loadSnapshot(ctx context.Context) domain.Cart {
	data, err := s.store.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ports.ErrSnapshotNotFound) {
			s.logger.WarnContext(ctx, "failed to load cart snapshot, starting empty",
				slog.String("error", err.Error()))
		}
		return domain.Cart{}
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.logger.WarnContext(ctx, "malformed cart snapshot, starting empty",
			slog.String("error", err.Error()))
		return domain.Cart{}
	}

	if err := cart.Validate(); err != nil {
		s.logger.WarnContext(ctx, "invalid cart snapshot, starting empty",
			slog.String("error", err.Error()))
		return domain.Cart{}
	}

	s.logger.InfoContext(ctx, "cart snapshot loaded", slog.Int("items", cart.Len()))
	return cart.Clone()
}

// Cart returns a copy of the last committed cart
func (s *CartEngine) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// AddProduct adds one unit of productID, fetching its metadata when it is
// not yet in the cart.
func (s *CartEngine) AddProduct(ctx context.Context, productID int) (err error) {
	if err := s.acquire(ctx); err != nil {
		return &OperationError{Op: OpAddProduct, ProductID: productID, Err: err}
	}
	defer s.release()
	defer s.recoverFault(ctx, OpAddProduct, productID, &err)

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return &OperationError{Op: OpAddProduct, ProductID: productID, Err: fmt.Errorf("get stock: %w", err)}
	}

	current := s.Cart()
	existing, found := current.Find(productID)

	desired := 1
	if found {
		desired = existing.Amount + 1
	}

	if desired > stock.Amount {
		s.logger.InfoContext(ctx, "add rejected, stock exceeded",
			slog.Int("product_id", productID),
			slog.Int("requested", desired),
			slog.Int("available", stock.Amount))
		return &StockError{ProductID: productID, Requested: desired, Available: stock.Amount}
	}

	var updated domain.Cart
	if found {
		updated = current.WithAmount(productID, desired)
	} else {
		product, err := s.inventory.GetProduct(ctx, productID)
		if err != nil {
			return &OperationError{Op: OpAddProduct, ProductID: productID, Err: fmt.Errorf("get product: %w", err)}
		}
		if product.ID != productID {
			return &OperationError{Op: OpAddProduct, ProductID: productID,
				Err: fmt.Errorf("inventory returned product %d", product.ID)}
		}
		product.Amount = 1
		updated = current.Append(product)
	}

	if err := s.commit(ctx, updated); err != nil {
		return &OperationError{Op: OpAddProduct, ProductID: productID, Err: err}
	}

	s.logger.InfoContext(ctx, "product added",
		slog.Int("product_id", productID),
		slog.Int("amount", desired))

	return nil
}

// RemoveProduct drops productID from the cart. No stock check is made.
func (s *CartEngine) RemoveProduct(ctx context.Context, productID int) (err error) {
	if err := s.acquire(ctx); err != nil {
		return &OperationError{Op: OpRemoveProduct, ProductID: productID, Err: err}
	}
	defer s.release()
	defer s.recoverFault(ctx, OpRemoveProduct, productID, &err)

	current := s.Cart()
	if !current.Contains(productID) {
		return fmt.Errorf("%w: %d", ErrItemNotFound, productID)
	}

	if err := s.commit(ctx, current.Without(productID)); err != nil {
		return &OperationError{Op: OpRemoveProduct, ProductID: productID, Err: err}
	}

	s.logger.InfoContext(ctx, "product removed", slog.Int("product_id", productID))
	return nil
}

// UpdateProductAmount sets the quantity of a line item. Amounts of zero or
// less are ignored; removal goes through RemoveProduct. Updating a product
// that is not in the cart commits the unchanged cart.
func (s *CartEngine) UpdateProductAmount(ctx context.Context, update ports.UpdateAmount) (err error) {
	if update.Amount <= 0 {
		return nil
	}

	if err := s.acquire(ctx); err != nil {
		return &OperationError{Op: OpUpdateAmount, ProductID: update.ProductID, Err: err}
	}
	defer s.release()
	defer s.recoverFault(ctx, OpUpdateAmount, update.ProductID, &err)

	stock, err := s.inventory.GetStock(ctx, update.ProductID)
	if err != nil {
		return &OperationError{Op: OpUpdateAmount, ProductID: update.ProductID, Err: fmt.Errorf("get stock: %w", err)}
	}

	if stock.Amount < update.Amount {
		s.logger.InfoContext(ctx, "update rejected, stock exceeded",
			slog.Int("product_id", update.ProductID),
			slog.Int("requested", update.Amount),
			slog.Int("available", stock.Amount))
		return &StockError{ProductID: update.ProductID, Requested: update.Amount, Available: stock.Amount}
	}

	updated := s.Cart().WithAmount(update.ProductID, update.Amount)
	if err := s.commit(ctx, updated); err != nil {
		return &OperationError{Op: OpUpdateAmount, ProductID: update.ProductID, Err: err}
	}

	s.logger.InfoContext(ctx, "product amount updated",
		slog.Int("product_id", update.ProductID),
		slog.Int("amount", update.Amount))

	return nil
}

// commit writes the snapshot and, only if that succeeds, swaps it in memory
func (s *CartEngine) commit(ctx context.Context, updated domain.Cart) error {
	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.store.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	s.mu.Lock()
	s.cart = updated
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "cart committed",
		slog.Int("items", updated.Len()),
		slog.Int("bytes", len(data)))

	return nil
}

func (s *CartEngine) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CartEngine) release() {
	<-s.sem
}

func (s *CartEngine) recoverFault(ctx context.Context, op Op, productID int, errp *error) {
	if r := recover(); r != nil {
		s.logger.ErrorContext(ctx, "recovered from panic during cart mutation",
			slog.String("operation", string(op)),
			slog.Int("product_id", productID),
			slog.Any("panic", r))
		*errp = &OperationError{Op: op, ProductID: productID, Err: fmt.Errorf("panic: %v", r)}
	}
}
