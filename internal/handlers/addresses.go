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

const maxAddressBodySize = 16 * 1024

type upsertAddressRequest struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Pincode      string  `json:"pincode"`
	IsDefault    bool    `json:"isDefault"`
}

// AddressHandlers exposes delivery address management endpoints.
type AddressHandlers struct {
	addresses services.AddressService
}

// NewAddressHandlers constructs a new AddressHandlers instance.
func NewAddressHandlers(addresses services.AddressService) *AddressHandlers {
	return &AddressHandlers{addresses: addresses}
}

// Routes registers the /addresses endpoints.
func (h *AddressHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listAddresses)
	r.Post("/", h.createAddress)
	r.Put("/{addressID}", h.updateAddress)
	r.Delete("/{addressID}", h.deleteAddress)
	r.Patch("/{addressID}/default", h.setDefaultAddress)
}

func (h *AddressHandlers) listAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	addresses, err := h.addresses.List(ctx, identity.UserID)
	if err != nil {
		writeAddressError(ctx, w, err)
		return
	}

	payload := make([]addressPayload, 0, len(addresses))
	for _, address := range addresses {
		payload = append(payload, buildAddressPayload(address))
	}

	httpx.WriteJSON(w, http.StatusOK, addressListResponse{Addresses: payload})
}

func (h *AddressHandlers) createAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	req, ok := decodeAddressRequest(ctx, w, r)
	if !ok {
		return
	}

	address, err := h.addresses.Create(ctx, buildAddressCommand(identity.UserID, "", req))
	if err != nil {
		writeAddressError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, addressResponse{Address: buildAddressPayload(address)})
}

func (h *AddressHandlers) updateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	addressID := strings.TrimSpace(chi.URLParam(r, "addressID"))
	if addressID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "address id is required", http.StatusBadRequest))
		return
	}

	req, ok := decodeAddressRequest(ctx, w, r)
	if !ok {
		return
	}

	address, err := h.addresses.Update(ctx, buildAddressCommand(identity.UserID, addressID, req))
	if err != nil {
		writeAddressError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, addressResponse{Address: buildAddressPayload(address)})
}

func (h *AddressHandlers) deleteAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	addressID := strings.TrimSpace(chi.URLParam(r, "addressID"))
	if addressID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "address id is required", http.StatusBadRequest))
		return
	}

	if err := h.addresses.Delete(ctx, identity.UserID, addressID); err != nil {
		writeAddressError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "address deleted successfully",
	})
}

func (h *AddressHandlers) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	addressID := strings.TrimSpace(chi.URLParam(r, "addressID"))
	if addressID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "address id is required", http.StatusBadRequest))
		return
	}

	address, err := h.addresses.SetDefault(ctx, identity.UserID, addressID)
	if err != nil {
		writeAddressError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, addressResponse{Address: buildAddressPayload(address)})
}

func decodeAddressRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (upsertAddressRequest, bool) {
	var req upsertAddressRequest

	body, err := readLimitedBody(r, maxAddressBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return req, false
	}
	return req, true
}

func buildAddressCommand(userID, addressID string, req upsertAddressRequest) services.UpsertAddressCommand {
	return services.UpsertAddressCommand{
		UserID:       userID,
		AddressID:    addressID,
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		IsDefault:    req.IsDefault,
	}
}

func writeAddressError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAddressNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("address_not_found", "address not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAddressInUse):
		httpx.WriteError(ctx, w, httpx.NewError("address_in_use", "address is referenced by existing orders", http.StatusConflict))
	case errors.Is(err, services.ErrAddressInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process address", http.StatusInternalServerError))
	}
}

type addressListResponse struct {
	Addresses []addressPayload `json:"addresses"`
}

type addressResponse struct {
	Address addressPayload `json:"address"`
}

type addressPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Pincode      string  `json:"pincode"`
	IsDefault    bool    `json:"is_default"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

func buildAddressPayload(address domain.Address) addressPayload {
	return addressPayload{
		ID:           address.ID,
		Name:         address.Name,
		Phone:        address.Phone,
		AddressLine1: address.AddressLine1,
		AddressLine2: address.AddressLine2,
		City:         address.City,
		State:        address.State,
		Pincode:      address.Pincode,
		IsDefault:    address.IsDefault,
		CreatedAt:    formatTime(address.CreatedAt),
		UpdatedAt:    formatTime(address.UpdatedAt),
	}
}
