package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/diamondcartel/wishlist/internal/catalog"
	"github.com/diamondcartel/wishlist/internal/domain"
	"github.com/diamondcartel/wishlist/internal/event"
	"github.com/diamondcartel/wishlist/internal/mailer"
	"github.com/diamondcartel/wishlist/internal/quote"
	"github.com/diamondcartel/wishlist/internal/repository"
	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
)

// Wishlist operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single item.
	MaxQuantityPerItem = 100
	// MaxItemsPerWishlist is the maximum number of distinct items in a wishlist.
	MaxItemsPerWishlist = 100
)

var quoteEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wishlist_quote_emails_total",
		Help: "Total number of quote/wishlist emails sent to the store owner, by outcome",
	},
	[]string{"outcome"},
)

// Config holds the service-level settings for wishlist operations.
type Config struct {
	// OwnerEmail is the fixed recipient for quote/wishlist emails.
	OwnerEmail string
	// FrontendURL is the storefront base URL used for product links in emails.
	FrontendURL string
}

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	repo     repository.WishlistRepository
	catalog  catalog.Catalog
	mailer   mailer.Mailer
	producer *event.Producer
	logger   *slog.Logger
	cfg      Config
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	repo repository.WishlistRepository,
	cat catalog.Catalog,
	m mailer.Mailer,
	producer *event.Producer,
	logger *slog.Logger,
	cfg Config,
) *WishlistService {
	return &WishlistService{
		repo:     repo,
		catalog:  cat,
		mailer:   m,
		producer: producer,
		logger:   logger,
		cfg:      cfg,
	}
}

// GetWishlist retrieves the wishlist for a user. Absence is not exceptional:
// a user with no stored wishlist gets an empty one back.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	wishlist, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewWishlist(userID), nil
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	return wishlist, nil
}

// AddItem adds a product to the user's wishlist, snapshotting the catalog
// price at add time. Adding a product that is already listed merges by
// increasing the quantity; the original price snapshot is kept. The resulting
// quantity is validated against live catalog stock before anything is
// persisted.
func (s *WishlistService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.catalog.Lookup(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	wishlist, err := s.getOrCreateWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	expectedVersion := wishlist.Version

	if idx := wishlist.FindItemByProduct(productID); idx >= 0 {
		newQty := wishlist.Items[idx].Quantity + quantity
		if newQty > product.Stock {
			return nil, apperrors.OutOfStock("requested quantity exceeds available stock")
		}
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		// Price stays the snapshot taken when the item was first added.
		wishlist.Items[idx].Quantity = newQty
	} else {
		if quantity > product.Stock {
			return nil, apperrors.OutOfStock("requested quantity exceeds available stock")
		}
		if len(wishlist.Items) >= MaxItemsPerWishlist {
			return nil, apperrors.InvalidInput(fmt.Sprintf("wishlist must not contain more than %d items", MaxItemsPerWishlist))
		}
		wishlist.Items = append(wishlist.Items, domain.WishlistItem{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	wishlist.RecomputeTotal()
	wishlist.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, wishlist, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("wishlist was modified concurrently, please retry")
	}

	if err := s.producer.PublishWishlistUpdated(ctx, wishlist); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item added to wishlist",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return wishlist, nil
}

// UpdateItemQuantity replaces the quantity of a wishlist item after
// re-checking the referenced product's live stock.
func (s *WishlistService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if itemID == "" {
		return nil, apperrors.InvalidInput("item id is required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	wishlist, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist for update: %w", err)
	}

	expectedVersion := wishlist.Version

	idx := wishlist.FindItem(itemID)
	if idx < 0 {
		return nil, apperrors.NotFound("wishlist item", itemID)
	}

	product, err := s.catalog.Lookup(ctx, wishlist.Items[idx].ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", wishlist.Items[idx].ProductID)
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	if quantity > product.Stock {
		return nil, apperrors.OutOfStock("requested quantity exceeds available stock")
	}

	wishlist.Items[idx].Quantity = quantity
	wishlist.RecomputeTotal()
	wishlist.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, wishlist, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("wishlist was modified concurrently, please retry")
	}

	if err := s.producer.PublishWishlistUpdated(ctx, wishlist); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist item quantity updated",
		slog.String("user_id", userID),
		slog.String("item_id", itemID),
		slog.Int("quantity", quantity),
	)

	return wishlist, nil
}

// RemoveItem removes the item with the given ID from the wishlist. A missing
// wishlist is an error; a missing item is not, and the wishlist comes back
// unchanged.
func (s *WishlistService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Wishlist, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if itemID == "" {
		return nil, apperrors.InvalidInput("item id is required")
	}

	wishlist, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist for remove: %w", err)
	}

	idx := wishlist.FindItem(itemID)
	if idx < 0 {
		return wishlist, nil
	}

	expectedVersion := wishlist.Version

	wishlist.Items = append(wishlist.Items[:idx], wishlist.Items[idx+1:]...)
	wishlist.RecomputeTotal()
	wishlist.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, wishlist, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save wishlist: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("wishlist was modified concurrently, please retry")
	}

	if err := s.producer.PublishWishlistUpdated(ctx, wishlist); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item removed from wishlist",
		slog.String("user_id", userID),
		slog.String("item_id", itemID),
	)

	return wishlist, nil
}

// ClearWishlist deletes the wishlist document. Idempotent: clearing a user
// with no wishlist succeeds and reports existed=false.
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) (existed bool, err error) {
	if userID == "" {
		return false, apperrors.InvalidInput("user id is required")
	}

	existed, err = s.repo.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("delete wishlist: %w", err)
	}

	if existed {
		if err := s.producer.PublishWishlistCleared(ctx, userID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish wishlist.cleared event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}

		s.logger.InfoContext(ctx, "wishlist cleared",
			slog.String("user_id", userID),
		)
	}

	return existed, nil
}

// SendQuote renders the submission into the owner email and delivers it once.
// The submission is caller-supplied and may differ from the stored wishlist;
// nothing is read from or written to the repository.
func (s *WishlistService) SendQuote(ctx context.Context, userID string, sub quote.Submission) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	body, grandTotal, err := quote.ComposeSummaryMessage(sub, s.cfg.FrontendURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("compose quote email: %w", err)
	}

	subject := "New wishlist request from " + userID

	if err := s.mailer.Send(ctx, s.cfg.OwnerEmail, subject, body); err != nil {
		quoteEmailsTotal.WithLabelValues("failure").Inc()
		s.logger.ErrorContext(ctx, "quote email delivery failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return apperrors.DeliveryFailed("Failed to send email")
	}

	quoteEmailsTotal.WithLabelValues("success").Inc()

	if err := s.producer.PublishQuoteSent(ctx, userID, s.cfg.OwnerEmail, grandTotal, len(sub.ItemsDetails)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.quote_sent event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "quote email sent",
		slog.String("user_id", userID),
		slog.Int("item_count", len(sub.ItemsDetails)),
		slog.Int64("grand_total", grandTotal),
	)

	return nil
}

// getOrCreateWishlist retrieves the wishlist for a user, creating an empty
// one if none exists yet.
func (s *WishlistService) getOrCreateWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wishlist, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewWishlist(userID), nil
		}
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return wishlist, nil
}
