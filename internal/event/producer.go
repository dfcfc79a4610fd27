package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diamondcartel/wishlist/internal/domain"
	pkgkafka "github.com/diamondcartel/wishlist/pkg/kafka"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicWishlistUpdated   = "shop.wishlist.updated"
	TopicWishlistCleared   = "shop.wishlist.cleared"
	TopicWishlistQuoteSent = "shop.wishlist.quote_sent"
)

// Aggregate type constant.
const AggregateTypeWishlist = "wishlist"

// Source identifier for events originating from this service.
const SourceWishlistService = "wishlist-service"

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	UserID     string             `json:"user_id"`
	Items      []WishlistItemData `json:"items"`
	ItemCount  int                `json:"item_count"`
	TotalPrice int64              `json:"total_price"`
}

// WishlistItemData is the item payload within wishlist events.
type WishlistItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// WishlistClearedData is the payload for a wishlist.cleared event.
type WishlistClearedData struct {
	UserID string `json:"user_id"`
}

// QuoteSentData is the payload for a wishlist.quote_sent event.
type QuoteSentData struct {
	UserID     string `json:"user_id"`
	Recipient  string `json:"recipient"`
	GrandTotal int64  `json:"grand_total"`
	ItemCount  int    `json:"item_count"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, wishlist *domain.Wishlist) error {
	items := make([]WishlistItemData, len(wishlist.Items))
	for i, item := range wishlist.Items {
		items[i] = WishlistItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := WishlistUpdatedData{
		UserID:     wishlist.UserID,
		Items:      items,
		ItemCount:  len(items),
		TotalPrice: wishlist.TotalPrice,
	}

	event, err := pkgkafka.NewEvent(TopicWishlistUpdated, wishlist.UserID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistUpdated, event); err != nil {
		return fmt.Errorf("publish wishlist.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("user_id", wishlist.UserID),
		slog.Int("item_count", len(items)),
	)

	return nil
}

// PublishWishlistCleared publishes a wishlist.cleared event.
func (p *Producer) PublishWishlistCleared(ctx context.Context, userID string) error {
	data := WishlistClearedData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicWishlistCleared, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistCleared, event); err != nil {
		return fmt.Errorf("publish wishlist.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.cleared event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishQuoteSent publishes a wishlist.quote_sent event.
func (p *Producer) PublishQuoteSent(ctx context.Context, userID, recipient string, grandTotal int64, itemCount int) error {
	data := QuoteSentData{
		UserID:     userID,
		Recipient:  recipient,
		GrandTotal: grandTotal,
		ItemCount:  itemCount,
	}

	event, err := pkgkafka.NewEvent(TopicWishlistQuoteSent, userID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.quote_sent event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistQuoteSent, event); err != nil {
		return fmt.Errorf("publish wishlist.quote_sent event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.quote_sent event",
		slog.String("user_id", userID),
	)

	return nil
}
