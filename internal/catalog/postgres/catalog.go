package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/diamondcartel/wishlist/internal/catalog"
	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
)

// DBTX is the subset of pgxpool.Pool used by this package. pgxmock pools
// satisfy it as well.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Catalog implements catalog.Catalog by reading the shared products table
// directly. Used by deployments co-located with the catalog database.
type Catalog struct {
	db DBTX
}

// NewCatalog creates a PostgreSQL-backed catalog reader.
func NewCatalog(db DBTX) *Catalog {
	return &Catalog{db: db}
}

// Lookup retrieves price, stock, and display fields for a product.
func (c *Catalog) Lookup(ctx context.Context, productID string) (*catalog.Product, error) {
	query := `
		SELECT id, name, image_url, price, stock
		FROM products
		WHERE id = $1`

	var p catalog.Product
	err := c.db.QueryRow(ctx, query, productID).Scan(
		&p.ID,
		&p.Name,
		&p.ImageURL,
		&p.Price,
		&p.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return &p, nil
}
