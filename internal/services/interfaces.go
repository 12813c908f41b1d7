package services

import (
	"context"

	domain "github.com/nueve-shop/api/internal/domain"
)

// OrderService orchestrates order submission, retrieval, and cancellation.
type OrderService interface {
	// Submit validates the cart against the live catalog, prices it, reserves
	// stock, and persists the order atomically.
	Submit(ctx context.Context, cmd SubmitOrderCommand) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) (domain.Page[domain.Order], error)
	Get(ctx context.Context, userID, orderID string) (domain.Order, error)
	// Cancel transitions a pending or confirmed order to cancelled and
	// restores its stock, all-or-nothing.
	Cancel(ctx context.Context, userID, orderID string) error
	// TransitionStatus advances the fulfillment state machine.
	TransitionStatus(ctx context.Context, cmd OrderStatusTransitionCommand) (domain.Order, error)
}

// SubmitOrderCommand carries one order submission.
type SubmitOrderCommand struct {
	UserID        string
	AddressID     string
	PaymentMethod string
	Items         []OrderLineRequest
	Notes         *string
}

// OrderLineRequest is a single requested cart line.
type OrderLineRequest struct {
	ProductID     string
	Quantity      int
	SelectedSize  *string
	SelectedColor *string
}

// OrderListFilter narrows and paginates a user's order history.
type OrderListFilter struct {
	UserID string
	Status *domain.OrderStatus
	Page   int
	Limit  int
}

// OrderStatusTransitionCommand advances an order along the fulfillment state
// machine on behalf of external fulfillment events.
type OrderStatusTransitionCommand struct {
	UserID       string
	OrderID      string
	TargetStatus domain.OrderStatus
}

// AddressService maintains delivery addresses and the single-default
// invariant.
type AddressService interface {
	List(ctx context.Context, userID string) ([]domain.Address, error)
	Create(ctx context.Context, cmd UpsertAddressCommand) (domain.Address, error)
	Update(ctx context.Context, cmd UpsertAddressCommand) (domain.Address, error)
	Delete(ctx context.Context, userID, addressID string) error
	SetDefault(ctx context.Context, userID, addressID string) (domain.Address, error)
}

// UpsertAddressCommand carries address creation or update input. AddressID is
// set only for updates.
type UpsertAddressCommand struct {
	UserID       string
	AddressID    string
	Name         string
	Phone        string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        string
	Pincode      string
	IsDefault    bool
}

// CatalogService reads the product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// UserService covers the per-user storefront state: wishlist and the
// persistent cart snapshot.
type UserService interface {
	Wishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	Cart(ctx context.Context, userID string) ([]domain.CartItem, error)
}
