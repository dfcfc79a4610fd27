package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/diamondcartel/wishlist/internal/domain"
	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
)

const keyPrefix = "wishlist:"

// saveIfVersionScript performs a compare-and-swap on the stored document's
// version field. A missing document matches expected version 0. Returns 1 on
// success, 0 when the version check fails.
var saveIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
local expected = tonumber(ARGV[1])
if current == false then
  if expected == 0 then
    redis.call('SET', KEYS[1], ARGV[2])
    return 1
  end
  return 0
end
local doc = cjson.decode(current)
if tonumber(doc['version']) == expected then
  redis.call('SET', KEYS[1], ARGV[2])
  return 1
end
return 0
`)

// WishlistRepository implements repository.WishlistRepository using Redis.
// Each wishlist is stored as a single JSON document keyed by user ID, with
// no expiry: wishlists live until explicitly cleared.
type WishlistRepository struct {
	client *redis.Client
}

// NewWishlistRepository creates a new Redis-backed wishlist repository.
func NewWishlistRepository(client *redis.Client) *WishlistRepository {
	return &WishlistRepository{client: client}
}

// Get retrieves a wishlist by user ID.
func (r *WishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wishlist", userID)
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	var wishlist domain.Wishlist
	if err := json.Unmarshal(data, &wishlist); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}

	return &wishlist, nil
}

// SaveIfVersion persists the wishlist only if the stored document still has
// expectedVersion. On success the in-memory wishlist's version is bumped to
// match what was written.
func (r *WishlistRepository) SaveIfVersion(ctx context.Context, wishlist *domain.Wishlist, expectedVersion int64) (bool, error) {
	key := keyPrefix + wishlist.UserID

	next := *wishlist
	next.Version = expectedVersion + 1

	data, err := json.Marshal(&next)
	if err != nil {
		return false, fmt.Errorf("marshal wishlist: %w", err)
	}

	res, err := saveIfVersionScript.Run(ctx, r.client, []string{key}, expectedVersion, data).Int()
	if err != nil {
		return false, fmt.Errorf("redis cas save wishlist: %w", err)
	}
	if res != 1 {
		return false, nil
	}

	wishlist.Version = next.Version
	return true, nil
}

// Delete removes the wishlist document for the user.
func (r *WishlistRepository) Delete(ctx context.Context, userID string) (bool, error) {
	key := keyPrefix + userID

	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del wishlist: %w", err)
	}

	return n > 0, nil
}
