package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	platform "github.com/nueve-shop/api/internal/platform/postgres"
	"github.com/nueve-shop/api/internal/repositories"
)

// InventoryRepository owns the stock_quantity counter on product rows. No
// other code path writes it.
type InventoryRepository struct {
	db *platform.DB
}

// NewInventoryRepository constructs an InventoryRepository backed by the pool.
func NewInventoryRepository(db *platform.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Reserve decrements stock by quantity in a single conditional UPDATE. The
// WHERE guard makes check and decrement one atomic statement, so two
// concurrent reservations can never jointly oversell a product.
func (r *InventoryRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return repositories.NewInternal("reserve", fmt.Errorf("quantity must be positive, got %d", quantity))
	}

	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = now()
		WHERE id = $2 AND stock_quantity >= $1`,
		quantity, productID)
	if err != nil {
		return repositories.NewInternal("reserve stock", err)
	}

	if tag.RowsAffected() == 0 {
		return repositories.NewInsufficientStock(fmt.Sprintf("product %s", productID))
	}

	return nil
}

// Release increments stock by quantity. Unconditional; callers guarantee a
// release happens at most once per reservation (the order cancellation status
// guard enforces this).
func (r *InventoryRepository) Release(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return repositories.NewInternal("release", fmt.Errorf("quantity must be positive, got %d", quantity))
	}

	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = now()
		WHERE id = $2`,
		quantity, productID)
	if err != nil {
		return repositories.NewInternal("release stock", err)
	}

	if tag.RowsAffected() == 0 {
		return repositories.NewNotFound(fmt.Sprintf("product %s", productID))
	}

	return nil
}

// StockQuantity reads the current counter, used for error details and tests.
func (r *InventoryRepository) StockQuantity(ctx context.Context, productID string) (int, error) {
	var quantity int
	err := r.db.Querier(ctx).QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repositories.NewNotFound(fmt.Sprintf("product %s", productID))
		}
		return 0, repositories.NewInternal("select stock", err)
	}
	return quantity, nil
}
