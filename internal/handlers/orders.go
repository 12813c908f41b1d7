package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/platform/auth"
	"github.com/nueve-shop/api/internal/platform/httpx"
	"github.com/nueve-shop/api/internal/services"
)

const maxOrderBodySize = 64 * 1024

type submitOrderRequest struct {
	AddressID     string             `json:"addressId"`
	PaymentMethod string             `json:"paymentMethod"`
	Items         []orderLineRequest `json:"items"`
	Notes         *string            `json:"notes"`
}

type orderLineRequest struct {
	ProductID     string  `json:"productId"`
	Quantity      int     `json:"quantity"`
	SelectedSize  *string `json:"selectedSize"`
	SelectedColor *string `json:"selectedColor"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderHandlers exposes order placement, history, and cancellation endpoints
// for authenticated users.
type OrderHandlers struct {
	orders    services.OrderService
	sanitizer *bluemonday.Policy
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		orders:    orders,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submitOrder)
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Patch("/{orderID}/cancel", h.cancelOrder)
	r.Patch("/{orderID}/status", h.updateOrderStatus)
}

func (h *OrderHandlers) submitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req submitOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return
	}

	items := make([]services.OrderLineRequest, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, services.OrderLineRequest{
			ProductID:     strings.TrimSpace(line.ProductID),
			Quantity:      line.Quantity,
			SelectedSize:  line.SelectedSize,
			SelectedColor: line.SelectedColor,
		})
	}

	cmd := services.SubmitOrderCommand{
		UserID:        identity.UserID,
		AddressID:     strings.TrimSpace(req.AddressID),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Items:         items,
		Notes:         h.sanitizeNotes(req.Notes),
	}

	order, err := h.orders.Submit(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	query := r.URL.Query()

	filter := services.OrderListFilter{UserID: identity.UserID}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status must be a valid order status", http.StatusBadRequest))
			return
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "page must be an integer", http.StatusBadRequest))
			return
		}
		filter.Page = page
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be an integer", http.StatusBadRequest))
			return
		}
		filter.Limit = limit
	}

	page, err := h.orders.List(ctx, filter)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	orders := make([]orderPayload, 0, len(page.Items))
	for _, order := range page.Items {
		orders = append(orders, buildOrderPayload(order))
	}

	httpx.WriteJSON(w, http.StatusOK, orderListResponse{
		Orders:     orders,
		Pagination: buildPaginationPayload(page.Page, page.Limit, page.Total, page.TotalPages()),
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.Get(ctx, identity.UserID, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	if err := h.orders.Cancel(ctx, identity.UserID, orderID); err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "order cancelled successfully",
	})
}

func (h *OrderHandlers) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req updateOrderStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON body", http.StatusBadRequest))
		return
	}

	status, err := domain.ParseOrderStatus(strings.TrimSpace(req.Status))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "status must be a valid order status", http.StatusBadRequest))
		return
	}

	order, err := h.orders.TransitionStatus(ctx, services.OrderStatusTransitionCommand{
		UserID:       identity.UserID,
		OrderID:      orderID,
		TargetStatus: status,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	cleaned := strings.TrimSpace(h.sanitizer.Sanitize(*notes))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", stockErr.Error(), http.StatusBadRequest).
			WithDetails(map[string]any{
				"product":   stockErr.ProductName,
				"available": stockErr.Available,
			}))
	case errors.Is(err, services.ErrOrderInvalidAddress):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_address", "delivery address not found", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "one or more products are unavailable", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderNotCancellable):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_cancellable", "order cannot be cancelled in its current status", http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process order", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func requireIdentity(ctx context.Context, w http.ResponseWriter) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || strings.TrimSpace(identity.UserID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return auth.Identity{}, false
	}
	return identity, true
}

type orderListResponse struct {
	Orders     []orderPayload    `json:"orders"`
	Pagination paginationPayload `json:"pagination"`
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type paginationPayload struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type orderPayload struct {
	ID             string             `json:"id"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DeliveryCharge decimal.Decimal    `json:"delivery_charge"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	PaymentMethod  string             `json:"payment_method"`
	PaymentStatus  string             `json:"payment_status"`
	OrderStatus    string             `json:"order_status"`
	Notes          *string            `json:"notes,omitempty"`
	Items          []orderItemPayload `json:"items"`
	Address        *addressPayload    `json:"address,omitempty"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at,omitempty"`
}

type orderItemPayload struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductImages []string        `json:"images"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	SelectedSize  *string         `json:"selected_size,omitempty"`
	SelectedColor *string         `json:"selected_color,omitempty"`
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		images := item.ProductImages
		if images == nil {
			images = []string{}
		}
		items = append(items, orderItemPayload{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductImages: images,
			Quantity:      item.Quantity,
			Price:         item.Price,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}

	payload := orderPayload{
		ID:             order.ID,
		Subtotal:       order.Subtotal(),
		DeliveryCharge: order.DeliveryCharge,
		TotalAmount:    order.TotalAmount,
		PaymentMethod:  string(order.PaymentMethod),
		PaymentStatus:  string(order.PaymentStatus),
		OrderStatus:    string(order.Status),
		Notes:          order.Notes,
		Items:          items,
		CreatedAt:      formatTime(order.CreatedAt),
		UpdatedAt:      formatTime(order.UpdatedAt),
	}
	if order.Address != nil {
		address := buildAddressPayload(*order.Address)
		payload.Address = &address
	}
	return payload
}

func buildPaginationPayload(page, limit, total, totalPages int) paginationPayload {
	return paginationPayload{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
