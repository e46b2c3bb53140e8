// internal/adapters/inventory/client.go
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/ammerola/shopcart/internal/core/domain"
	"github.com/ammerola/shopcart/internal/core/ports"
	"github.com/ammerola/shopcart/internal/pkg/config"
)

const maxBodyBytes = 1 << 20

// ErrUnavailable is returned while the circuit breaker rejects calls
var ErrUnavailable = errors.New("inventory service unavailable")

// StatusError is returned for non-2xx responses
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventory %s: unexpected status %d", e.Path, e.StatusCode)
}

// Client talks to the storefront inventory API over HTTP
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// Statically assert that *Client implements the InventoryClient interface.
var _ ports.InventoryClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates an inventory client from configuration
func NewClient(cfg config.InventoryConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse inventory base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("inventory base url %q must be absolute", cfg.BaseURL)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.EnableTracing {
		transport = otelhttp.NewTransport(transport)
	}

	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger.With(slog.String("component", "inventory_client")),
	}

	if cfg.RateLimitRequests > 0 && cfg.RateLimitDuration > 0 {
		every := cfg.RateLimitDuration / time.Duration(cfg.RateLimitRequests)
		c.limiter = rate.NewLimiter(rate.Every(every), cfg.RateLimitRequests)
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "inventory",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetStock fetches the available quantity for productID
func (c *Client) GetStock(ctx context.Context, productID int) (domain.Stock, error) {
	var stock domain.Stock
	if err := c.getJSON(ctx, "stock/"+strconv.Itoa(productID), &stock); err != nil {
		return domain.Stock{}, err
	}
	if err := stock.Validate(); err != nil {
		return domain.Stock{}, fmt.Errorf("invalid stock for product %d: %w", productID, err)
	}
	return stock, nil
}

// GetProduct fetches catalog metadata for productID. Amount is always zero.
func (c *Client) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	var product domain.Product
	if err := c.getJSON(ctx, "products/"+strconv.Itoa(productID), &product); err != nil {
		return domain.Product{}, err
	}
	product.Amount = 0
	return product, nil
}

// Ping reports whether the breaker currently lets calls through
func (c *Client) Ping(context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return ErrUnavailable
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "inventory request failed",
			slog.String("path", path),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	c.logger.DebugContext(ctx, "inventory request completed",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))

	return nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return body, nil
}

// isSuccessful keeps client errors and caller cancellation from tripping the breaker
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	return false
}
