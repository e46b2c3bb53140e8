// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
	"github.com/ammerola/shopcart/internal/pkg/config"
	"github.com/ammerola/shopcart/internal/pkg/logger"
)

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	level := "error"
	if testing.Verbose() {
		level = "debug"
	}
	return logger.NewLogger(&logger.LogConfig{
		Level:  level,
		Format: "text",
		Writer: os.Stdout,
	}).Logger
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "shopcart-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Cart: config.CartConfig{
			StorageKey: "@RocketShoes:cart",
			Backend:    config.BackendFile,
		},
		Inventory: config.InventoryConfig{
			BaseURL:            "http://localhost:3333",
			Timeout:            2 * time.Second,
			RateLimitRequests:  100,
			RateLimitDuration:  time.Second,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		File: config.FileConfig{
			Dir: os.TempDir(),
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			PoolSize: 10,
		},
		Postgres: config.PostgresConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "test",
			Password:       "test",
			Name:           "test_cart",
			SSLMode:        "disable",
			Table:          "cart_snapshots",
			MaxConnections: 2,
		},
		S3: config.S3Config{
			Region: "us-east-1",
			Bucket: "cart-test",
			Prefix: "carts/",
		},
	}
}

// CreateTestProduct creates a test product line item
func CreateTestProduct(id int, overrides ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		ID:     id,
		Title:  fmt.Sprintf("Tênis de Caminhada Leve Confortável %d", id),
		Price:  decimal.NewFromFloat(179.9),
		Image:  fmt.Sprintf("https://cdn.example.com/products/%d.jpg", id),
		Amount: 1,
	}

	for _, override := range overrides {
		override(&p)
	}

	return p
}

// CreateTestCart creates a cart with one line item per entry in amounts,
// numbered from 1
func CreateTestCart(amounts ...int) domain.Cart {
	cart := make(domain.Cart, 0, len(amounts))
	for i, amount := range amounts {
		cart = append(cart, CreateTestProduct(i+1, func(p *domain.Product) {
			p.Amount = amount
		}))
	}
	return cart
}

// MustMarshalCart serializes a cart the way the engine stores it
func MustMarshalCart(t *testing.T, cart domain.Cart) []byte {
	t.Helper()

	data, err := json.Marshal(cart)
	require.NoError(t, err)
	return data
}

// UnmarshalCart decodes a stored snapshot
func UnmarshalCart(t *testing.T, data []byte) domain.Cart {
	t.Helper()

	var cart domain.Cart
	require.NoError(t, json.Unmarshal(data, &cart))
	return cart
}

// NotificationRecorder is a Notifier that keeps every message
type NotificationRecorder struct {
	mu       sync.Mutex
	messages []string
}

var _ ports.Notifier = (*NotificationRecorder)(nil)

// Error records message
func (r *NotificationRecorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns the recorded messages in order
func (r *NotificationRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// MemoryStore is an in-memory SnapshotStore
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	SaveErr error
	LoadErr error
	saves   int
}

var _ ports.SnapshotStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load returns the stored bytes or ports.ErrSnapshotNotFound
func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, ports.ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data
func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data[key] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Put seeds key with data without counting as a save
func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
}

// Raw returns the bytes under key
func (m *MemoryStore) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	return data, ok
}

// Saves returns the number of successful Save calls
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Ping always succeeds
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }

// InventoryServer is an httptest server answering stock/{id} and products/{id}
type InventoryServer struct {
	*httptest.Server

	mu       sync.Mutex
	stock    map[int]int
	products map[int]domain.Product
	requests []string
}

// NewInventoryServer starts a fake inventory API seeded with products
func NewInventoryServer(t *testing.T, products ...domain.Product) *InventoryServer {
	t.Helper()

	s := &InventoryServer{
		stock:    make(map[int]int),
		products: make(map[int]domain.Product),
	}
	for _, p := range products {
		meta := p
		meta.Amount = 0
		s.products[p.ID] = meta
		s.stock[p.ID] = p.Amount
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stock/{id}", s.handleStock)
	mux.HandleFunc("GET /products/{id}", s.handleProduct)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// SetStock changes the available amount for id
func (s *InventoryServer) SetStock(id, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[id] = amount
}

// Requests returns the paths served so far
func (s *InventoryServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *InventoryServer) handleStock(w http.ResponseWriter, r *http.Request) {
	id, ok := s.record(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	amount, found := s.stock[id]
	s.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, domain.Stock{ID: id, Amount: amount})
}

func (s *InventoryServer) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.record(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	product, found := s.products[id]
	s.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var body map[string]json.RawMessage
	_ = json.Unmarshal(data, &body)
	delete(body, "amount")
	writeJSON(w, body)
}

func (s *InventoryServer) record(w http.ResponseWriter, r *http.Request) (int, bool) {
	s.mu.Lock()
	s.requests = append(s.requests, strings.TrimPrefix(r.URL.Path, "/"))
	s.mu.Unlock()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// RequireCartsEqual compares carts field by field, using decimal equality for prices
func RequireCartsEqual(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	require.Len(t, actual, len(expected))
	for i := range expected {
		require.Equal(t, expected[i].ID, actual[i].ID, "item %d id", i)
		require.Equal(t, expected[i].Title, actual[i].Title, "item %d title", i)
		require.Equal(t, expected[i].Image, actual[i].Image, "item %d image", i)
		require.Equal(t, expected[i].Amount, actual[i].Amount, "item %d amount", i)
		require.True(t, expected[i].Price.Equal(actual[i].Price),
			"item %d price: expected %s, got %s", i, expected[i].Price, actual[i].Price)
	}
}
