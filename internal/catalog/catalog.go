package catalog

import "context"

// Product is the read-only catalog view this service needs: display fields,
// the current unit price in cents, and live stock.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
}

// Catalog looks up products in the store catalog. Stock must reflect the
// catalog's current state at call time; implementations must not cache it.
type Catalog interface {
	// Lookup returns the product with the given ID, or apperrors.ErrNotFound.
	Lookup(ctx context.Context, productID string) (*Product, error)
}
