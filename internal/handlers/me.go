package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/platform/httpx"
	"github.com/nueve-shop/api/internal/services"
)

const maxWishlistBodySize = 4 * 1024

type addWishlistRequest struct {
	ProductID string `json:"productId"`
}

// MeHandlers exposes the per-user storefront endpoints: wishlist and the
// persistent cart snapshot.
type MeHandlers struct {
	users services.UserService
}

// NewMeHandlers constructs a new MeHandlers instance.
func NewMeHandlers(users services.UserService) *MeHandlers {
	return &MeHandlers{users: users}
}

// Routes registers the wishlist and cart endpoints.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/wishlist", h.listWishlist)
	r.Post("/wishlist", h.addToWishlist)
	r.Delete("/wishlist/{productID}", h.removeFromWishlist)
	r.Get("/cart", h.getCart)
}

func (h *MeHandlers) listWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	items, err := h.users.Wishlist(ctx, identity.UserID)
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}

	payload := make([]wishlistItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, wishlistItemPayload{
			Product: buildProductPayload(item.Product),
			AddedAt: formatTime(item.AddedAt),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, wishlistResponse{Wishlist: payload})
}

func (h *MeHandlers) addToWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxWishlistBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addWishlistRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	if err := h.users.AddToWishlist(ctx, identity.UserID, productID); err != nil {
		writeUserError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "product added to wishlist",
	})
}

func (h *MeHandlers) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	if err := h.users.RemoveFromWishlist(ctx, identity.UserID, productID); err != nil {
		writeUserError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "product removed from wishlist",
	})
}

func (h *MeHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	items, err := h.users.Cart(ctx, identity.UserID)
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}

	payload := make([]cartItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, buildCartItemPayload(item))
	}

	httpx.WriteJSON(w, http.StatusOK, cartResponse{Cart: payload})
}

func writeUserError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrWishlistProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrWishlistItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("wishlist_item_not_found", "product is not on the wishlist", http.StatusNotFound))
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process request", http.StatusInternalServerError))
	}
}

type wishlistResponse struct {
	Wishlist []wishlistItemPayload `json:"wishlist"`
}

type wishlistItemPayload struct {
	Product productPayload `json:"product"`
	AddedAt string         `json:"added_at"`
}

type cartResponse struct {
	Cart []cartItemPayload `json:"cart"`
}

type cartItemPayload struct {
	ID            string         `json:"id"`
	Quantity      int            `json:"quantity"`
	SelectedSize  *string        `json:"selected_size,omitempty"`
	SelectedColor *string        `json:"selected_color,omitempty"`
	Product       productPayload `json:"product"`
	UpdatedAt     string         `json:"updated_at"`
}

func buildCartItemPayload(item domain.CartItem) cartItemPayload {
	return cartItemPayload{
		ID:            item.ID,
		Quantity:      item.Quantity,
		SelectedSize:  item.SelectedSize,
		SelectedColor: item.SelectedColor,
		Product:       buildProductPayload(item.Product),
		UpdatedAt:     formatTime(item.UpdatedAt),
	}
}
