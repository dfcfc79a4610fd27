package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/diamondcartel/wishlist/internal/catalog"
	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
	"github.com/diamondcartel/wishlist/pkg/httpclient"
)

// Client implements catalog.Catalog against the product service HTTP API,
// protected by a circuit breaker.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
}

// NewClient creates a catalog client for the given product service base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	inner := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(
		inner,
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	return &Client{http: cb, baseURL: baseURL}
}

// NewClientWithHTTP creates a catalog client with a caller-supplied breaker
// client.
func NewClientWithHTTP(baseURL string, http *httpclient.CircuitBreakerClient) *Client {
	return &Client{http: http, baseURL: baseURL}
}

type productEnvelope struct {
	Data catalog.Product `json:"data"`
}

// Lookup fetches a product by ID from the product service.
func (c *Client) Lookup(ctx context.Context, productID string) (*catalog.Product, error) {
	u := c.baseURL + "/api/v1/products/" + url.PathEscape(productID)

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup %s: %w", productID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFound("product", productID)
	default:
		return nil, fmt.Errorf("catalog lookup %s: unexpected status %d", productID, resp.StatusCode)
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	return &envelope.Data, nil
}
