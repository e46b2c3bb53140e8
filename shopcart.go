// Package shopcart keeps a storefront shopping cart in memory, persists it as
// a single snapshot and checks stock with the inventory API before every
// change.
package shopcart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/ammerola/shopcart/internal/adapters/inventory"
	"github.com/ammerola/shopcart/internal/adapters/notifier"
	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
	"github.com/ammerola/shopcart/internal/core/services"
	"github.com/ammerola/shopcart/internal/pkg/config"
	"github.com/ammerola/shopcart/internal/pkg/logger"
)

type (
	// Config configures a Cart; see LoadConfig
	Config = config.Config
	// Product is a cart line item
	Product = domain.Product
	// Items is the ordered cart content
	Items = domain.Cart
	// UpdateAmount is the argument of UpdateProductAmount
	UpdateAmount = ports.UpdateAmount
	// Notifier receives user-facing failure messages
	Notifier = ports.Notifier
	// Store persists the serialized cart
	Store = ports.SnapshotStore
	// InventoryClient answers stock and product lookups
	InventoryClient = ports.InventoryClient
	// StockError reports a quantity above available stock
	StockError = services.StockError
	// OperationError wraps any other failed mutation
	OperationError = services.OperationError
)

var (
	ErrStockInsufficient = services.ErrStockInsufficient
	ErrItemNotFound      = services.ErrItemNotFound
	ErrSnapshotNotFound  = ports.ErrSnapshotNotFound
	ErrClosed            = errors.New("cart is closed")
)

// LoadConfig reads configuration from the environment
func LoadConfig(logger *slog.Logger) (*Config, error) {
	return config.Load(logger)
}

// NewLogger builds the structured logger described by cfg.App. The slog
// default logger is left untouched.
func NewLogger(cfg *Config) *slog.Logger {
	return logger.NewLogger(&logger.LogConfig{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		Output:         "stdout",
		AddSource:      cfg.App.Debug,
		Environment:    cfg.App.Environment,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
	}).Logger
}

// WithRequestID tags log records emitted while serving ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return logger.WithRequestID(ctx, requestID)
}

// NewLogNotifier reports failure messages as warn-level records on l
func NewLogNotifier(l *slog.Logger) Notifier {
	return notifier.NewLogNotifier(l)
}

// NewWriterNotifier prints each failure message as one line on w
func NewWriterNotifier(w io.Writer) Notifier {
	return notifier.NewWriterNotifier(w)
}

// NewMultiNotifier delivers each message to every non-nil notifier, in order
func NewMultiNotifier(notifiers ...Notifier) Notifier {
	return notifier.NewMulti(notifiers...)
}

// DiscardNotifier returns a notifier that drops every message
func DiscardNotifier() Notifier {
	return notifier.Discard{}
}

type options struct {
	logger     *slog.Logger
	notifier   Notifier
	store      Store
	inventory  InventoryClient
	httpClient *http.Client
}

// Option customizes New
type Option func(*options)

// WithLogger sets the logger; the default is built from cfg.App
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier sets where failure messages go; the default logs them
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithStore bypasses backend selection
func WithStore(s Store) Option {
	return func(o *options) { o.store = s }
}

// WithInventoryClient bypasses the HTTP inventory client
func WithInventoryClient(c InventoryClient) Option {
	return func(o *options) { o.inventory = c }
}

// WithHTTPClient sets the HTTP client used for inventory calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Cart is a shopping cart bound to one storage key. It is safe for
// concurrent use; mutations are applied one at a time.
type Cart struct {
	engine    ports.CartEngine
	store     Store
	inventory InventoryClient
	logger    *slog.Logger
	sessionID string

	mu     sync.RWMutex
	closed bool
}

// New builds a cart from cfg and loads the stored snapshot. A missing or
// unreadable snapshot starts an empty cart.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Cart, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = NewLogger(cfg)
	}
	if o.notifier == nil {
		o.notifier = notifier.NewLogNotifier(o.logger)
	}

	if o.store == nil || o.inventory == nil {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if o.inventory == nil {
		var clientOpts []inventory.Option
		if o.httpClient != nil {
			clientOpts = append(clientOpts, inventory.WithHTTPClient(o.httpClient))
		}
		client, err := inventory.NewClient(cfg.Inventory, o.logger, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize inventory client: %w", err)
		}
		o.inventory = client
	}

	if o.store == nil {
		store, err := OpenStore(ctx, cfg, o.logger)
		if err != nil {
			return nil, err
		}
		o.store = store
	}

	sessionID := uuid.NewString()
	engine := services.NewCartEngine(ctx, o.inventory, o.store, o.logger,
		services.WithStorageKey(cfg.Cart.StorageKey),
		services.WithSessionID(sessionID),
	)

	return &Cart{
		engine:    services.NewNotifyingEngine(engine, o.notifier, o.logger),
		store:     o.store,
		inventory: o.inventory,
		logger:    o.logger.With(slog.String("session_id", sessionID)),
		sessionID: sessionID,
	}, nil
}

// SessionID identifies this cart instance in logs
func (c *Cart) SessionID() string {
	return c.sessionID
}

// Items returns a copy of the cart content
func (c *Cart) Items() Items {
	return c.engine.Cart()
}

// AddProduct adds one unit of productID
func (c *Cart) AddProduct(ctx context.Context, productID int) error {
	release, err := c.begin()
	if err != nil {
		return err
	}
	defer release()
	ctx = logger.WithOperation(ctx, string(services.OpAddProduct))
	return c.engine.AddProduct(ctx, productID)
}

// RemoveProduct removes productID from the cart
func (c *Cart) RemoveProduct(ctx context.Context, productID int) error {
	release, err := c.begin()
	if err != nil {
		return err
	}
	defer release()
	ctx = logger.WithOperation(ctx, string(services.OpRemoveProduct))
	return c.engine.RemoveProduct(ctx, productID)
}

// UpdateProductAmount sets the quantity of a line item. Amounts below one
// are ignored.
func (c *Cart) UpdateProductAmount(ctx context.Context, update UpdateAmount) error {
	release, err := c.begin()
	if err != nil {
		return err
	}
	defer release()
	ctx = logger.WithOperation(ctx, string(services.OpUpdateAmount))
	return c.engine.UpdateProductAmount(ctx, update)
}

// Health reports whether the store and the inventory client are usable
func (c *Cart) Health(ctx context.Context) error {
	release, err := c.begin()
	if err != nil {
		return err
	}
	defer release()

	var errs []error
	if err := c.store.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if p, ok := c.inventory.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("inventory: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Close waits for running operations, then releases the store. Later calls
// return ErrClosed.
func (c *Cart) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true

	if err := c.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	c.logger.Info("cart closed")
	return nil
}

// begin holds the read lock until the returned func is called, so Close
// waits for operations already in flight.
func (c *Cart) begin() (func(), error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClosed
	}
	return c.mu.RUnlock, nil
}
