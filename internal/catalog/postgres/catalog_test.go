package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
)

var productColumns = []string{"id", "name", "image_url", "price", "stock"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

func TestLookup(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, image_url, price, stock`).
		WithArgs("prod-1").
		WillReturnRows(
			pgxmock.NewRows(productColumns).
				AddRow("prod-1", "Eternity Band", "https://cdn.example.com/prod-1.jpg", int64(89900), 12),
		)

	c := NewCatalog(mock)

	p, err := c.Lookup(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Eternity Band", p.Name)
	assert.Equal(t, int64(89900), p.Price)
	assert.Equal(t, 12, p.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, image_url, price, stock`).
		WithArgs("missing").
		WillReturnError(errors.New("no rows in result set"))

	c := NewCatalog(mock)

	_, err := c.Lookup(context.Background(), "missing")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_NoRowsMapsToNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, image_url, price, stock`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(productColumns))

	c := NewCatalog(mock)

	_, err := c.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
