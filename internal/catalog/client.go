package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnexpectedStatus = errors.New("catalog returned unexpected status")

// Source is the read-only backend catalog boundary.
type Source interface {
	FetchProducts(ctx context.Context) (map[string][]domain.Product, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "catalog",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// FetchProducts calls GET /products, a mapping of category key to its ordered products.
func (c *Client) FetchProducts(ctx context.Context) (map[string][]domain.Product, error) {
	body, err := c.get(ctx, "/products")
	if err != nil {
		return nil, err
	}

	var products map[string][]domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}
	for key, list := range products {
		for i := range list {
			if list[i].CategoryKey == "" {
				list[i].CategoryKey = key
			}
		}
	}
	return products, nil
}

// FetchCategories calls GET /categories.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.get(ctx, "/categories")
	if err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories failed: %w", err)
	}
	return categories, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request failed: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s failed: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("GET %s: %w: %d", path, ErrUnexpectedStatus, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s body failed: %w", path, err)
		}
		return body, nil
	})
}
