package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diamondcartel/wishlist/internal/domain"
	"github.com/diamondcartel/wishlist/internal/quote"
	"github.com/diamondcartel/wishlist/internal/service"
	apperrors "github.com/diamondcartel/wishlist/pkg/errors"
	"github.com/diamondcartel/wishlist/pkg/httputil"
	"github.com/diamondcartel/wishlist/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemEntry is one entry in the add-item payload.
type AddItemEntry struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// AddItemRequest is the JSON request body for adding to the wishlist. The
// payload carries a list, but only the first entry is honored; this mirrors
// the behavior clients already depend on.
type AddItemRequest struct {
	WishlistItems []AddItemEntry `json:"wishlist_items" validate:"required,min=1,dive"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// --- Response envelope ---

type wishlistResponse struct {
	Message  string           `json:"message"`
	Wishlist *domain.Wishlist `json:"wishlist,omitempty"`
}

// --- Handlers ---

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.missingUser(w, r, "GetWishlist")
		return
	}

	wishlist, err := h.service.GetWishlist(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message := "Success"
	if wishlist.Version == 0 {
		message = "No wishlist found for the user"
	}

	httputil.WriteJSON(w, http.StatusOK, wishlistResponse{Message: message, Wishlist: wishlist})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.missingUser(w, r, "AddToWishlist")
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	// Only the first entry counts; a missing quantity means 1.
	entry := req.WishlistItems[0]
	quantity := entry.Quantity
	if quantity == 0 {
		quantity = 1
	}

	wishlist, err := h.service.AddItem(r.Context(), userID, entry.ProductID, quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, wishlistResponse{
		Message:  "Item added to wishlist",
		Wishlist: wishlist,
	})
}

// UpdateItemQuantity handles PATCH /api/v1/wishlist/items/{itemID}
func (h *WishlistHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.missingUser(w, r, "UpdateWishlistItem")
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("item id is required"), h.logger)
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wishlist, err := h.service.UpdateItemQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, wishlistResponse{
		Message:  "Item quantity updated successfully",
		Wishlist: wishlist,
	})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{itemID}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.missingUser(w, r, "RemoveItem")
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("item id is required"), h.logger)
		return
	}

	wishlist, err := h.service.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, wishlistResponse{
		Message:  "Item removed successfully",
		Wishlist: wishlist,
	})
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.missingUser(w, r, "ClearWishlist")
		return
	}

	existed, err := h.service.ClearWishlist(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message := "Wishlist cleared successfully"
	if !existed {
		message = "Wishlist is already empty"
	}

	httputil.WriteJSON(w, http.StatusOK, wishlistResponse{Message: message})
}

// SendQuote handles POST /api/v1/wishlist/send
func (h *WishlistHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.missingUser(w, r, "SendWishlist")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	sub, err := submissionFromPayload(raw)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}

	if err := h.service.SendQuote(r.Context(), userID, sub); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message := "Quote Request sent successfully!"
	if sub.HasItems() {
		message = "Wishlist sent successfully!"
	}

	httputil.WriteJSON(w, http.StatusOK, wishlistResponse{Message: message})
}

// --- Helpers ---

// submissionFromPayload splits a quote payload into the items list and the
// open set of form fields. Scalar field values are stringified; nested
// objects and arrays other than items_details are ignored.
func submissionFromPayload(raw map[string]json.RawMessage) (quote.Submission, error) {
	sub := quote.Submission{Fields: make(map[string]string)}

	if itemsRaw, ok := raw["items_details"]; ok {
		if err := json.Unmarshal(itemsRaw, &sub.ItemsDetails); err != nil {
			return quote.Submission{}, fmt.Errorf("invalid items_details: %v", err)
		}
		delete(raw, "items_details")
	}

	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			sub.Fields[key] = s
			continue
		}
		var n float64
		if err := json.Unmarshal(value, &n); err == nil {
			sub.Fields[key] = trimFloat(n)
			continue
		}
		var b bool
		if err := json.Unmarshal(value, &b); err == nil {
			sub.Fields[key] = fmt.Sprintf("%t", b)
		}
	}

	return sub, nil
}

func trimFloat(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

func (h *WishlistHandler) missingUser(w http.ResponseWriter, r *http.Request, op string) {
	httputil.WriteError(w, r, apperrors.InvalidInput("User ID is missing - "+op), h.logger)
}
