package repositories

import (
	"context"

	domain "github.com/nueve-shop/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation
// used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsInsufficientStock() bool
	IsUnavailable() bool
}

// UnitOfWork groups repository operations into a single transactional
// boundary. Everything executed inside fn commits or rolls back together.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRepository reads catalog entries. Stock mutation goes through
// InventoryRepository only.
type ProductRepository interface {
	// FindActiveByID returns an active product or a not-found error.
	FindActiveByID(ctx context.Context, productID string) (domain.Product, error)
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	Insert(ctx context.Context, product domain.Product) error
}

// InventoryRepository mutates per-product stock counters. Reserve is a
// compare-and-decrement: it fails with an insufficient-stock error instead of
// ever driving the counter negative.
type InventoryRepository interface {
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
	StockQuantity(ctx context.Context, productID string) (int, error)
}

// AddressRepository persists delivery addresses scoped to their owner.
type AddressRepository interface {
	FindByID(ctx context.Context, userID, addressID string) (domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Insert(ctx context.Context, address domain.Address) error
	Update(ctx context.Context, address domain.Address) error
	// Delete fails with a conflict error when the address is referenced by an
	// order; historical orders must keep their delivery target.
	Delete(ctx context.Context, userID, addressID string) error
	// ClearDefaults unsets is_default on every address of the user except the
	// one identified by exceptID (pass "" to clear all).
	ClearDefaults(ctx context.Context, userID, exceptID string) error
	MarkDefault(ctx context.Context, userID, addressID string) error
}

// OrderRepository persists orders together with their line items.
type OrderRepository interface {
	// Insert writes the order row and all item rows. Caller provides ids.
	Insert(ctx context.Context, order domain.Order) error
	// FindByID resolves the order with denormalised address fields and item
	// product name/images. Not-found covers both absence and foreign owners.
	FindByID(ctx context.Context, userID, orderID string) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) (domain.Page[domain.Order], error)
	// UpdateStatus sets order_status. When allowedFrom is given the write only
	// applies while the current status is one of them; a failed guard yields a
	// conflict error so a surrounding transaction can roll back. An absent
	// order yields not-found.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, allowedFrom ...domain.OrderStatus) error
}

// WishlistRepository stores saved products per user.
type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	// Add is idempotent: saving an already-saved product is a no-op.
	Add(ctx context.Context, userID, productID string) error
	// Remove reports whether an entry was actually deleted.
	Remove(ctx context.Context, userID, productID string) (bool, error)
}

// CartRepository reads the persistent cart snapshot kept for cross-device
// prefill. The authoritative cart lives client-side.
type CartRepository interface {
	List(ctx context.Context, userID string) ([]domain.CartItem, error)
}

// HealthRepository reports storage connectivity for readiness probes.
type HealthRepository interface {
	Check(ctx context.Context) error
}
