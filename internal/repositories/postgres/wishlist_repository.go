package postgres

import (
	"context"

	domain "github.com/nueve-shop/api/internal/domain"
	platform "github.com/nueve-shop/api/internal/platform/postgres"
	"github.com/nueve-shop/api/internal/repositories"
)

// WishlistRepository stores saved products per user.
type WishlistRepository struct {
	db *platform.DB
}

// NewWishlistRepository constructs a WishlistRepository backed by the pool.
func NewWishlistRepository(db *platform.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// List returns the user's saved products, newest first. Inactive products are
// filtered out rather than surfaced as dead entries.
func (r *WishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT
			w.created_at,
			`+productColumns+`
		FROM wishlists w
		JOIN products p ON p.id = w.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE w.user_id = $1 AND p.is_active
		ORDER BY w.created_at DESC`,
		userID)
	if err != nil {
		return nil, repositories.NewInternal("select wishlist", err)
	}
	defer rows.Close()

	var items []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		err := rows.Scan(
			&item.AddedAt,
			&item.Product.ID, &item.Product.Name, &item.Product.Description,
			&item.Product.Price, &item.Product.OriginalPrice,
			&item.Product.CategoryID, &item.Product.CategoryName,
			&item.Product.Sizes, &item.Product.Colors, &item.Product.Images,
			&item.Product.Rating, &item.Product.ReviewCount, &item.Product.IsOnSale,
			&item.Product.StockQuantity, &item.Product.IsActive,
			&item.Product.CreatedAt, &item.Product.UpdatedAt,
		)
		if err != nil {
			return nil, repositories.NewInternal("scan wishlist item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewInternal("iterate wishlist", err)
	}

	return items, nil
}

// Add saves a product; duplicates are silently ignored.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO wishlists (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID)
	if err != nil {
		return wrapWriteError("insert wishlist entry", err)
	}
	return nil
}

// Remove deletes a saved product, reporting whether an entry existed.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx,
		`DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return false, wrapWriteError("delete wishlist entry", err)
	}
	return tag.RowsAffected() > 0, nil
}
