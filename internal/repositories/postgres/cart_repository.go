package postgres

import (
	"context"

	domain "github.com/nueve-shop/api/internal/domain"
	platform "github.com/nueve-shop/api/internal/platform/postgres"
	"github.com/nueve-shop/api/internal/repositories"
)

// CartRepository reads the persistent cart snapshot used to prefill the
// client-side cart across devices.
type CartRepository struct {
	db *platform.DB
}

// NewCartRepository constructs a CartRepository backed by the pool.
func NewCartRepository(db *platform.DB) *CartRepository {
	return &CartRepository{db: db}
}

// List returns the user's cart lines joined with live product data, most
// recently touched first.
func (r *CartRepository) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT
			ci.id, ci.quantity, ci.selected_size, ci.selected_color, ci.updated_at,
			p.id, p.name, p.price, p.images, p.stock_quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1 AND p.is_active
		ORDER BY ci.updated_at DESC`,
		userID)
	if err != nil {
		return nil, repositories.NewInternal("select cart", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(
			&item.ID, &item.Quantity, &item.SelectedSize, &item.SelectedColor, &item.UpdatedAt,
			&item.Product.ID, &item.Product.Name, &item.Product.Price,
			&item.Product.Images, &item.Product.StockQuantity,
		)
		if err != nil {
			return nil, repositories.NewInternal("scan cart item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewInternal("iterate cart", err)
	}

	return items, nil
}
