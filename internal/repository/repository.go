package repository

import (
	"context"

	"github.com/diamondcartel/wishlist/internal/domain"
)

// WishlistRepository defines the persistence operations for wishlists.
type WishlistRepository interface {
	// Get retrieves a wishlist by user ID. Returns apperrors.ErrNotFound if
	// no wishlist exists for the user.
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)

	// SaveIfVersion persists the wishlist only if the stored document still
	// carries expectedVersion (0 means the document must not exist yet). The
	// stored version is bumped on success. Returns false without error when
	// the version check fails.
	SaveIfVersion(ctx context.Context, wishlist *domain.Wishlist, expectedVersion int64) (bool, error)

	// Delete removes the wishlist document. Returns true if a document was
	// deleted, false if none existed.
	Delete(ctx context.Context, userID string) (bool, error)
}
