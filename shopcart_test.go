package shopcart_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/shopcart"
	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/pkg/config"
	"github.com/ammerola/shopcart/test/helpers"
	"github.com/ammerola/shopcart/test/mocks"
)

func withStock(amount int) func(*domain.Product) {
	return func(p *domain.Product) { p.Amount = amount }
}

func newTestConfig(t *testing.T, srv *helpers.InventoryServer, backend string) *shopcart.Config {
	t.Helper()

	cfg := helpers.LoadTestConfig()
	cfg.Inventory.BaseURL = srv.URL
	cfg.Cart.Backend = backend
	cfg.File.Dir = t.TempDir()
	return cfg
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := shopcart.New(ctx, nil)
	assert.Error(t, err)

	cfg := helpers.LoadTestConfig()
	cfg.Cart.Backend = "floppy"
	_, err = shopcart.New(ctx, cfg, shopcart.WithLogger(helpers.TestLogger()))
	assert.ErrorContains(t, err, "floppy")
}

func TestCart_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t,
		helpers.CreateTestProduct(1, withStock(2)),
		helpers.CreateTestProduct(2, withStock(5)),
	)
	recorder := &helpers.NotificationRecorder{}

	cart, err := shopcart.New(ctx, newTestConfig(t, srv, config.BackendMemory),
		shopcart.WithLogger(helpers.TestLogger()),
		shopcart.WithNotifier(recorder),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cart.Close() })

	assert.Empty(t, cart.Items())
	assert.NotEmpty(t, cart.SessionID())

	require.NoError(t, cart.AddProduct(ctx, 1))
	require.NoError(t, cart.AddProduct(ctx, 1))
	require.NoError(t, cart.AddProduct(ctx, 2))

	err = cart.AddProduct(ctx, 1)
	assert.ErrorIs(t, err, shopcart.ErrStockInsufficient)

	var stockErr *shopcart.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	require.NoError(t, cart.UpdateProductAmount(ctx, shopcart.UpdateAmount{ProductID: 2, Amount: 4}))
	require.NoError(t, cart.UpdateProductAmount(ctx, shopcart.UpdateAmount{ProductID: 2, Amount: 0}))

	assert.ErrorIs(t, cart.RemoveProduct(ctx, 9), shopcart.ErrItemNotFound)

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Amount)
	assert.Equal(t, 4, items[1].Amount)
	assert.Equal(t, 6, items.TotalUnits())

	assert.Equal(t, []string{
		"requested quantity exceeds available stock",
		"failed to remove product",
	}, recorder.Messages())
}

func TestCart_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t)
	recorder := &helpers.NotificationRecorder{}

	cart, err := shopcart.New(ctx, newTestConfig(t, srv, config.BackendMemory),
		shopcart.WithLogger(helpers.TestLogger()),
		shopcart.WithNotifier(recorder),
	)
	require.NoError(t, err)

	err = cart.AddProduct(ctx, 42)
	var opErr *shopcart.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, 42, opErr.ProductID)
	assert.Equal(t, []string{"failed to add product"}, recorder.Messages())
	assert.Empty(t, cart.Items())
}

func TestCart_FileBackendSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t,
		helpers.CreateTestProduct(1, withStock(3)),
		helpers.CreateTestProduct(2, withStock(3)),
	)
	cfg := newTestConfig(t, srv, config.BackendFile)

	first, err := shopcart.New(ctx, cfg, shopcart.WithLogger(helpers.TestLogger()))
	require.NoError(t, err)
	require.NoError(t, first.AddProduct(ctx, 2))
	require.NoError(t, first.AddProduct(ctx, 1))
	require.NoError(t, first.AddProduct(ctx, 2))
	require.NoError(t, first.Close())

	second, err := shopcart.New(ctx, cfg, shopcart.WithLogger(helpers.TestLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	helpers.RequireCartsEqual(t, first.Items(), second.Items())

	items := second.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 2, items[0].Amount)
	assert.Equal(t, 1, items[1].ID)
}

func TestCart_RedisBackend(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t, helpers.CreateTestProduct(7, withStock(1)))
	tr := helpers.SetupTestRedis(t)

	cfg := newTestConfig(t, srv, config.BackendRedis)
	cfg.Redis.Host = tr.Server.Host()
	cfg.Redis.Port = tr.Server.Port()

	cart, err := shopcart.New(ctx, cfg, shopcart.WithLogger(helpers.TestLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cart.Close() })

	require.NoError(t, cart.AddProduct(ctx, 7))
	require.NoError(t, cart.Health(ctx))

	raw, err := tr.Server.Get("cart:" + cfg.Cart.StorageKey)
	require.NoError(t, err)
	stored := helpers.UnmarshalCart(t, []byte(raw))
	helpers.RequireCartsEqual(t, cart.Items(), stored)
}

func TestCart_CustomCollaborators(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	inv := mocks.NewMockInventoryClient(ctrl)
	store := helpers.NewMemoryStore()
	store.Put("@RocketShoes:cart", helpers.MustMarshalCart(t, helpers.CreateTestCart(1)))

	inv.EXPECT().GetStock(gomock.Any(), 1).Return(domain.Stock{ID: 1, Amount: 2}, nil)

	cfg := helpers.LoadTestConfig()
	cfg.Cart.Backend = "unused"

	cart, err := shopcart.New(ctx, cfg,
		shopcart.WithLogger(helpers.TestLogger()),
		shopcart.WithStore(store),
		shopcart.WithInventoryClient(inv),
	)
	require.NoError(t, err)

	require.NoError(t, cart.AddProduct(ctx, 1))
	assert.Equal(t, 2, cart.Items()[0].Amount)
	assert.Equal(t, 1, store.Saves())
	assert.NoError(t, cart.Health(ctx))
}

func TestCart_HealthReportsStoreFailure(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t)
	cfg := newTestConfig(t, srv, config.BackendFile)

	cart, err := shopcart.New(ctx, cfg, shopcart.WithLogger(helpers.TestLogger()))
	require.NoError(t, err)
	require.NoError(t, cart.Health(ctx))

	cfg2 := newTestConfig(t, srv, config.BackendRedis)
	tr := helpers.SetupTestRedis(t)
	cfg2.Redis.Host = tr.Server.Host()
	cfg2.Redis.Port = tr.Server.Port()

	redisCart, err := shopcart.New(ctx, cfg2, shopcart.WithLogger(helpers.TestLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisCart.Close() })

	tr.Server.Close()
	assert.ErrorContains(t, redisCart.Health(ctx), "store")
}

func TestCart_Close(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t, helpers.CreateTestProduct(1))

	cart, err := shopcart.New(ctx, newTestConfig(t, srv, config.BackendMemory),
		shopcart.WithLogger(helpers.TestLogger()))
	require.NoError(t, err)

	require.NoError(t, cart.Close())
	assert.ErrorIs(t, cart.Close(), shopcart.ErrClosed)
	assert.ErrorIs(t, cart.AddProduct(ctx, 1), shopcart.ErrClosed)
	assert.ErrorIs(t, cart.RemoveProduct(ctx, 1), shopcart.ErrClosed)
	assert.ErrorIs(t, cart.UpdateProductAmount(ctx, shopcart.UpdateAmount{ProductID: 1, Amount: 1}), shopcart.ErrClosed)
	assert.ErrorIs(t, cart.Health(ctx), shopcart.ErrClosed)
	assert.Empty(t, cart.Items())
}

func TestNew_LeavesDefaultLoggerAlone(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t)

	before := slog.Default()
	cart, err := shopcart.New(ctx, newTestConfig(t, srv, config.BackendMemory))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cart.Close() })

	assert.Same(t, before, slog.Default())
}

func TestCart_ExportedNotifiers(t *testing.T) {
	ctx := context.Background()
	srv := helpers.NewInventoryServer(t)
	recorder := &helpers.NotificationRecorder{}
	var buf bytes.Buffer

	cart, err := shopcart.New(ctx, newTestConfig(t, srv, config.BackendMemory),
		shopcart.WithLogger(helpers.TestLogger()),
		shopcart.WithNotifier(shopcart.NewMultiNotifier(
			shopcart.NewWriterNotifier(&buf),
			nil,
			shopcart.DiscardNotifier(),
			shopcart.NewLogNotifier(helpers.TestLogger()),
			recorder,
		)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cart.Close() })

	assert.Error(t, cart.RemoveProduct(ctx, 5))
	assert.Equal(t, "failed to remove product\n", buf.String())
	assert.Equal(t, []string{"failed to remove product"}, recorder.Messages())
}

// slowStore holds Save until release is closed
type slowStore struct {
	*helpers.MemoryStore
	saving  chan struct{}
	release chan struct{}
	closed  atomic.Bool
}

func (s *slowStore) Save(ctx context.Context, key string, data []byte) error {
	close(s.saving)
	<-s.release
	if s.closed.Load() {
		return errors.New("store is closed")
	}
	return s.MemoryStore.Save(ctx, key, data)
}

func (s *slowStore) Close() error {
	s.closed.Store(true)
	return nil
}

func TestCart_CloseWaitsForRunningOperation(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	inv := mocks.NewMockInventoryClient(ctrl)
	store := &slowStore{
		MemoryStore: helpers.NewMemoryStore(),
		saving:      make(chan struct{}),
		release:     make(chan struct{}),
	}

	inv.EXPECT().GetStock(gomock.Any(), 1).Return(domain.Stock{ID: 1, Amount: 2}, nil)
	inv.EXPECT().GetProduct(gomock.Any(), 1).Return(helpers.CreateTestProduct(1, withStock(0)), nil)

	cart, err := shopcart.New(ctx, helpers.LoadTestConfig(),
		shopcart.WithLogger(helpers.TestLogger()),
		shopcart.WithStore(store),
		shopcart.WithInventoryClient(inv),
	)
	require.NoError(t, err)

	addErr := make(chan error, 1)
	go func() { addErr <- cart.AddProduct(ctx, 1) }()
	<-store.saving

	closeErr := make(chan error, 1)
	go func() { closeErr <- cart.Close() }()

	select {
	case <-closeErr:
		t.Fatal("Close returned while AddProduct was still saving")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, store.closed.Load())

	close(store.release)
	require.NoError(t, <-addErr)
	require.NoError(t, <-closeErr)
	assert.True(t, store.closed.Load())
	assert.Equal(t, 1, cart.Items().TotalUnits())
}
