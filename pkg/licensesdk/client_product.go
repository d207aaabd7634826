package licensesdk

import (
	"context"
	"net/http"
)

// ListProducts lists all products.
func (c *Client) ListProducts(ctx context.Context) (Data, error) {
	return c.doAuthData(ctx, http.MethodGet, EndpointProductsList, nil)
}

// GetProduct fetches a product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (Data, error) {
	return c.doAuthData(ctx, http.MethodGet, endpoint(EndpointProductsGet, id), nil)
}
