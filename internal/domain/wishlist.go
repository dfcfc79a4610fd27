package domain

import "time"

// WishlistItem is a single line in a wishlist. Price is the unit price in
// cents, snapshotted when the item is first added and not refreshed when a
// later add merges into the same line.
type WishlistItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Wishlist is the per-user wishlist aggregate. TotalPrice is a derived cache
// in cents and must be recomputed after every mutation. Version is the
// optimistic-locking token used by the repository's conditional save.
type Wishlist struct {
	UserID     string         `json:"user_id"`
	Items      []WishlistItem `json:"items"`
	TotalPrice int64          `json:"total_price"`
	Version    int64          `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RecomputeTotal recalculates TotalPrice from the current items.
func (w *Wishlist) RecomputeTotal() {
	var total int64
	for _, item := range w.Items {
		total += item.Price * int64(item.Quantity)
	}
	w.TotalPrice = total
}

// FindItem returns the index of the item with the given ID, or -1.
func (w *Wishlist) FindItem(itemID string) int {
	for i := range w.Items {
		if w.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// FindItemByProduct returns the index of the item referencing the given
// product, or -1.
func (w *Wishlist) FindItemByProduct(productID string) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// NewWishlist creates an empty wishlist for the given user.
func NewWishlist(userID string) *Wishlist {
	now := time.Now().UTC()
	return &Wishlist{
		UserID:    userID,
		Items:     []WishlistItem{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
