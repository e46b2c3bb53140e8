package inventory_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/shopcart/internal/adapters/inventory"
	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/pkg/config"
	"github.com/ammerola/shopcart/test/helpers"
)

func newClient(t *testing.T, baseURL string, mutate ...func(*config.InventoryConfig)) *inventory.Client {
	t.Helper()

	cfg := helpers.LoadTestConfig().Inventory
	cfg.BaseURL = baseURL
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := inventory.NewClient(cfg, helpers.TestLogger())
	require.NoError(t, err)
	return client
}

func fixedResponse(status int, body string, hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	cfg := helpers.LoadTestConfig().Inventory
	cfg.BaseURL = "/api"

	_, err := inventory.NewClient(cfg, helpers.TestLogger())
	assert.Error(t, err)
}

func TestClient_GetStock(t *testing.T) {
	srv := helpers.NewInventoryServer(t, helpers.CreateTestProduct(1, func(p *domain.Product) {
		p.Amount = 3
	}))
	client := newClient(t, srv.URL)

	stock, err := client.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Stock{ID: 1, Amount: 3}, stock)
	assert.Equal(t, []string{"stock/1"}, srv.Requests())
}

func TestClient_GetProduct(t *testing.T) {
	want := helpers.CreateTestProduct(2, func(p *domain.Product) {
		p.Amount = 5
	})
	srv := helpers.NewInventoryServer(t, want)
	client := newClient(t, srv.URL)

	product, err := client.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, product.ID)
	assert.Equal(t, want.Title, product.Title)
	assert.True(t, want.Price.Equal(product.Price))
	assert.Equal(t, want.Image, product.Image)
	assert.Zero(t, product.Amount)
}

func TestClient_BasePathIsKept(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = w.Write([]byte(`{"id":4,"amount":1}`))
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL+"/api/")

	_, err := client.GetStock(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "/api/stock/4", path.Load())
}

func TestClient_NumericPrice(t *testing.T) {
	srv := httptest.NewServer(fixedResponse(http.StatusOK,
		`{"id":1,"title":"Tênis","price":179.9,"image":"https://cdn.example.com/1.jpg","amount":9}`, nil))
	t.Cleanup(srv.Close)

	product, err := newClient(t, srv.URL).GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("179.9").Equal(product.Price))
	assert.Zero(t, product.Amount)
}

func TestClient_ProductKeepsUnknownFields(t *testing.T) {
	srv := httptest.NewServer(fixedResponse(http.StatusOK,
		`{"id":1,"title":"Tênis","price":179.9,"image":"x.jpg","brand":"Olympikus","sizes":[38,39]}`, nil))
	t.Cleanup(srv.Close)

	product, err := newClient(t, srv.URL).GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.JSONEq(t, `"Olympikus"`, string(product.Extra["brand"]))
	assert.JSONEq(t, `[38,39]`, string(product.Extra["sizes"]))
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "not_found", status: http.StatusNotFound, body: `{}`, wantStatus: http.StatusNotFound},
		{name: "server_error", status: http.StatusInternalServerError, body: `oops`, wantStatus: http.StatusInternalServerError},
		{name: "malformed_body", status: http.StatusOK, body: `{"id":`},
		{name: "negative_stock", status: http.StatusOK, body: `{"id":1,"amount":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(fixedResponse(tt.status, tt.body, nil))
			t.Cleanup(srv.Close)

			_, err := newClient(t, srv.URL).GetStock(context.Background(), 1)
			require.Error(t, err)

			var statusErr *inventory.StatusError
			if tt.wantStatus != 0 {
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(fixedResponse(http.StatusOK, `{}`, nil))
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).GetStock(context.Background(), 1)
	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL, func(c *config.InventoryConfig) {
		c.Timeout = 50 * time.Millisecond
	})

	_, err := client.GetStock(context.Background(), 1)
	assert.Error(t, err)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(fixedResponse(http.StatusServiceUnavailable, ``, &hits))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL, func(c *config.InventoryConfig) {
		c.BreakerMaxFailures = 2
		c.BreakerOpenTimeout = time.Minute
	})
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	for i := 0; i < 2; i++ {
		_, err := client.GetStock(ctx, 1)
		require.Error(t, err)
	}

	_, err := client.GetStock(ctx, 1)
	assert.ErrorIs(t, err, inventory.ErrUnavailable)
	assert.Equal(t, int32(2), hits.Load())
	assert.ErrorIs(t, client.Ping(ctx), inventory.ErrUnavailable)
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(fixedResponse(http.StatusNotFound, ``, &hits))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL, func(c *config.InventoryConfig) {
		c.BreakerMaxFailures = 1
	})

	for i := 0; i < 3; i++ {
		_, err := client.GetProduct(context.Background(), 9)
		require.Error(t, err)
		assert.NotErrorIs(t, err, inventory.ErrUnavailable)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(fixedResponse(http.StatusOK, `{"id":1,"amount":1}`, nil))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL, func(c *config.InventoryConfig) {
		c.RateLimitRequests = 1
		c.RateLimitDuration = time.Hour
	})

	_, err := client.GetStock(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.GetStock(ctx, 1)
	assert.Error(t, err)
}

func TestClient_Tracing(t *testing.T) {
	srv := helpers.NewInventoryServer(t, helpers.CreateTestProduct(1))
	client := newClient(t, srv.URL, func(c *config.InventoryConfig) {
		c.EnableTracing = true
	})

	stock, err := client.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stock.Amount)
}
