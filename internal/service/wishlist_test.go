package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diamondcartel/wishlist/internal/catalog"
	"github.com/diamondcartel/wishlist/internal/domain"
	"github.com/diamondcartel/wishlist/internal/event"
	"github.com/diamondcartel/wishlist/internal/quote"
	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
	pkgkafka "github.com/diamondcartel/wishlist/pkg/kafka"
)

// --- Mock repository ---

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) SaveIfVersion(ctx context.Context, wishlist *domain.Wishlist, expectedVersion int64) (bool, error) {
	args := m.Called(ctx, wishlist, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockWishlistRepository) Delete(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// --- Mock catalog ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Lookup(ctx context.Context, productID string) (*catalog.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// --- Mock mailer ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(repo *mockWishlistRepository, cat *mockCatalog, m *mockMailer) *WishlistService {
	logger := newTestLogger()
	// Kafka producer that fails silently in tests (no real broker).
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	producer := event.NewProducer(kafkaProducer, logger)
	return NewWishlistService(repo, cat, m, producer, logger, Config{
		OwnerEmail:  "owner@example.com",
		FrontendURL: "https://shop.example.com",
	})
}

func wishlistWithItem(userID string) *domain.Wishlist {
	now := time.Now().UTC()
	return &domain.Wishlist{
		UserID: userID,
		Items: []domain.WishlistItem{
			{
				ID:        "item-1",
				ProductID: "prod-1",
				Name:      "Halo Pendant",
				Price:     1000,
				Quantity:  3,
			},
		},
		TotalPrice: 3000,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func pendantProduct(stock int) *catalog.Product {
	return &catalog.Product{
		ID:       "prod-1",
		Name:     "Halo Pendant",
		ImageURL: "https://cdn.example.com/prod-1.jpg",
		Price:    1000,
		Stock:    stock,
	}
}

// --- GetWishlist ---

func TestGetWishlist_AbsenceReturnsEmpty(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("wishlist", "user-1"))

	w, err := svc.GetWishlist(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", w.UserID)
	assert.Empty(t, w.Items)
	assert.Equal(t, int64(0), w.TotalPrice)
	repo.AssertExpectations(t)
}

func TestGetWishlist_MissingUser(t *testing.T) {
	svc := newTestService(new(mockWishlistRepository), new(mockCatalog), new(mockMailer))

	_, err := svc.GetWishlist(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- AddItem ---

func TestAddItem_CreatesWishlistOnFirstAdd(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	cat.On("Lookup", ctx, "prod-1").Return(pendantProduct(5), nil)
	repo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("wishlist", "user-1"))
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("*domain.Wishlist"), int64(0)).Return(true, nil)

	w, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.NotEmpty(t, w.Items[0].ID)
	assert.Equal(t, "prod-1", w.Items[0].ProductID)
	assert.Equal(t, "Halo Pendant", w.Items[0].Name)
	assert.Equal(t, int64(1000), w.Items[0].Price)
	assert.Equal(t, 3, w.Items[0].Quantity)
	assert.Equal(t, int64(3000), w.TotalPrice)
	repo.AssertExpectations(t)
	cat.AssertExpectations(t)
}

func TestAddItem_MergesExistingProductKeepingPriceSnapshot(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	// Catalog price has moved to 1500, but the stored snapshot is 1000.
	product := pendantProduct(10)
	product.Price = 1500
	cat.On("Lookup", ctx, "prod-1").Return(product, nil)
	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("*domain.Wishlist"), int64(1)).Return(true, nil)

	w, err := svc.AddItem(ctx, "user-1", "prod-1", 2)

	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, 5, w.Items[0].Quantity)
	assert.Equal(t, int64(1000), w.Items[0].Price)
	assert.Equal(t, int64(5000), w.TotalPrice)
	repo.AssertExpectations(t)
}

func TestAddItem_CumulativeQuantityExceedsStock(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	// Stored quantity is 3, stock is 5; adding 3 more would exceed stock.
	cat.On("Lookup", ctx, "prod-1").Return(pendantProduct(5), nil)
	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem_NewItemExceedsStock(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	cat.On("Lookup", ctx, "prod-1").Return(pendantProduct(2), nil)
	repo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("wishlist", "user-1"))

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem_ProductNotFound(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	cat.On("Lookup", ctx, "ghost").Return(nil, apperrors.NotFound("product", "ghost"))

	_, err := svc.AddItem(ctx, "user-1", "ghost", 1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := newTestService(new(mockWishlistRepository), new(mockCatalog), new(mockMailer))

	_, err := svc.AddItem(context.Background(), "user-1", "prod-1", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAddItem_ConcurrentModification(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	cat.On("Lookup", ctx, "prod-1").Return(pendantProduct(10), nil)
	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("*domain.Wishlist"), int64(1)).Return(false, nil)

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 1)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// --- UpdateItemQuantity ---

func TestUpdateItemQuantity(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)
	cat.On("Lookup", ctx, "prod-1").Return(pendantProduct(5), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("*domain.Wishlist"), int64(1)).Return(true, nil)

	w, err := svc.UpdateItemQuantity(ctx, "user-1", "item-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 5, w.Items[0].Quantity)
	assert.Equal(t, int64(5000), w.TotalPrice)
	repo.AssertExpectations(t)
}

func TestUpdateItemQuantity_BelowOne(t *testing.T) {
	svc := newTestService(new(mockWishlistRepository), new(mockCatalog), new(mockMailer))

	_, err := svc.UpdateItemQuantity(context.Background(), "user-1", "item-1", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateItemQuantity_ExceedsStock(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)
	cat.On("Lookup", ctx, "prod-1").Return(pendantProduct(4), nil)

	_, err := svc.UpdateItemQuantity(ctx, "user-1", "item-1", 5)

	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateItemQuantity_WishlistNotFound(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("wishlist", "user-1"))

	_, err := svc.UpdateItemQuantity(ctx, "user-1", "item-1", 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateItemQuantity_ItemNotFound(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)

	_, err := svc.UpdateItemQuantity(ctx, "user-1", "ghost-item", 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateItemQuantity_ProductGone(t *testing.T) {
	repo := new(mockWishlistRepository)
	cat := new(mockCatalog)
	svc := newTestService(repo, cat, new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)
	cat.On("Lookup", ctx, "prod-1").Return(nil, apperrors.NotFound("product", "prod-1"))

	_, err := svc.UpdateItemQuantity(ctx, "user-1", "item-1", 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- RemoveItem ---

func TestRemoveItem(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("*domain.Wishlist"), int64(1)).Return(true, nil)

	w, err := svc.RemoveItem(ctx, "user-1", "item-1")

	require.NoError(t, err)
	assert.Empty(t, w.Items)
	assert.Equal(t, int64(0), w.TotalPrice)
	repo.AssertExpectations(t)
}

func TestRemoveItem_MissingItemIsNoOp(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(wishlistWithItem("user-1"), nil)

	w, err := svc.RemoveItem(ctx, "user-1", "ghost-item")

	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, int64(3000), w.TotalPrice)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveItem_MissingWishlist(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("wishlist", "user-1"))

	_, err := svc.RemoveItem(ctx, "user-1", "item-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- ClearWishlist ---

func TestClearWishlist(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Delete", ctx, "user-1").Return(true, nil)

	existed, err := svc.ClearWishlist(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, existed)
}

func TestClearWishlist_AlreadyEmpty(t *testing.T) {
	repo := new(mockWishlistRepository)
	svc := newTestService(repo, new(mockCatalog), new(mockMailer))
	ctx := context.Background()

	repo.On("Delete", ctx, "user-1").Return(false, nil)

	existed, err := svc.ClearWishlist(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, existed)
}

// --- SendQuote ---

func TestSendQuote(t *testing.T) {
	m := new(mockMailer)
	svc := newTestService(new(mockWishlistRepository), new(mockCatalog), m)
	ctx := context.Background()

	m.On("Send", ctx, "owner@example.com", "New wishlist request from user-1", mock.AnythingOfType("string")).Return(nil)

	err := svc.SendQuote(ctx, "user-1", quote.Submission{
		Fields: map[string]string{"full_name": "Jordan Avery"},
		ItemsDetails: []quote.ItemDetail{
			{ID: "prod-1", Name: "Halo Pendant", Price: 1000, Quantity: 2, Total: 2000},
		},
	})

	require.NoError(t, err)
	m.AssertExpectations(t)

	sentBody := m.Calls[0].Arguments.String(3)
	assert.Contains(t, sentBody, "Wishlist Submission")
	assert.Contains(t, sentBody, "Halo Pendant")
}

func TestSendQuote_DeliveryFailure(t *testing.T) {
	m := new(mockMailer)
	svc := newTestService(new(mockWishlistRepository), new(mockCatalog), m)
	ctx := context.Background()

	m.On("Send", ctx, "owner@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(errors.New("smtp timeout"))

	err := svc.SendQuote(ctx, "user-1", quote.Submission{})

	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Failed to send email", appErr.Message)
}

func TestSendQuote_MissingUser(t *testing.T) {
	svc := newTestService(new(mockWishlistRepository), new(mockCatalog), new(mockMailer))

	err := svc.SendQuote(context.Background(), "", quote.Submission{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- Full scenario ---

// fakeRepo is an in-memory repository for scenario tests that need real
// persistence semantics across a sequence of operations.
type fakeRepo struct {
	stored *domain.Wishlist
}

func (f *fakeRepo) snapshot(w *domain.Wishlist) *domain.Wishlist {
	cpy := *w
	cpy.Items = append([]domain.WishlistItem(nil), w.Items...)
	return &cpy
}

func (f *fakeRepo) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	if f.stored == nil || f.stored.UserID != userID {
		return nil, apperrors.NotFound("wishlist", userID)
	}
	return f.snapshot(f.stored), nil
}

func (f *fakeRepo) SaveIfVersion(ctx context.Context, w *domain.Wishlist, expected int64) (bool, error) {
	currentVersion := int64(0)
	if f.stored != nil {
		currentVersion = f.stored.Version
	}
	if currentVersion != expected {
		return false, nil
	}
	w.Version = expected + 1
	f.stored = f.snapshot(w)
	return true, nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID string) (bool, error) {
	existed := f.stored != nil && f.stored.UserID == userID
	if existed {
		f.stored = nil
	}
	return existed, nil
}

// Product with stock 5 and price 10.00: add 3, re-add 3 fails out-of-stock,
// update to 5, remove, clear twice.
func TestWishlistLifecycleScenario(t *testing.T) {
	repo := &fakeRepo{}
	cat := new(mockCatalog)
	logger := newTestLogger()
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	svc := NewWishlistService(repo, cat, new(mockMailer), event.NewProducer(kafkaProducer, logger), logger, Config{
		OwnerEmail:  "owner@example.com",
		FrontendURL: "https://shop.example.com",
	})
	ctx := context.Background()

	product := pendantProduct(5)
	cat.On("Lookup", ctx, "prod-1").Return(product, nil)

	// AddItem(P, 3)
	w, err := svc.AddItem(ctx, "user-1", "prod-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Items[0].Quantity)
	assert.Equal(t, int64(3000), w.TotalPrice)
	itemID := w.Items[0].ID

	// AddItem(P, 3) again exceeds stock 5; state unchanged.
	_, err = svc.AddItem(ctx, "user-1", "prod-1", 3)
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	require.NotNil(t, repo.stored)
	assert.Equal(t, 3, repo.stored.Items[0].Quantity)
	assert.Equal(t, int64(3000), repo.stored.TotalPrice)

	// UpdateItemQuantity to 5.
	w, err = svc.UpdateItemQuantity(ctx, "user-1", itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, w.Items[0].Quantity)
	assert.Equal(t, int64(5000), w.TotalPrice)

	// RemoveItem empties the wishlist.
	w, err = svc.RemoveItem(ctx, "user-1", itemID)
	require.NoError(t, err)
	assert.Empty(t, w.Items)
	assert.Equal(t, int64(0), w.TotalPrice)

	// Clear deletes; a second clear reports already empty.
	existed, err := svc.ClearWishlist(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = svc.ClearWishlist(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, existed)
}
