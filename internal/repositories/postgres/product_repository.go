package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domain "github.com/nueve-shop/api/internal/domain"
	platform "github.com/nueve-shop/api/internal/platform/postgres"
	"github.com/nueve-shop/api/internal/repositories"
)

const productColumns = `
	p.id, p.name, p.description, p.price, p.original_price,
	p.category_id, COALESCE(c.slug, ''), p.sizes, p.colors, p.images,
	p.rating, p.review_count, p.is_on_sale, p.stock_quantity, p.is_active,
	p.created_at, p.updated_at`

// ProductRepository reads catalog rows from PostgreSQL.
type ProductRepository struct {
	db *platform.DB
}

// NewProductRepository constructs a ProductRepository backed by the pool.
func NewProductRepository(db *platform.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindActiveByID returns the product when it exists and is active.
func (r *ProductRepository) FindActiveByID(ctx context.Context, productID string) (domain.Product, error) {
	return r.findByID(ctx, productID, true)
}

// FindByID returns the product regardless of its active flag.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	return r.findByID(ctx, productID, false)
}

func (r *ProductRepository) findByID(ctx context.Context, productID string, activeOnly bool) (domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	if activeOnly {
		query += ` AND p.is_active`
	}

	row := r.db.Querier(ctx).QueryRow(ctx, query, productID)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, repositories.NewNotFound(fmt.Sprintf("product %s", productID))
		}
		return domain.Product{}, repositories.NewInternal("select product", err)
	}

	return product, nil
}

// List returns active products matching the filter, with the total count for
// pagination.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error) {
	var page domain.Page[domain.Product]

	conditions := []string{"p.is_active"}
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CategorySlug != "" && filter.CategorySlug != "all" {
		conditions = append(conditions, "c.slug = "+arg(filter.CategorySlug))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "p.price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "p.price <= "+arg(*filter.MaxPrice))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		placeholder := arg(pattern)
		conditions = append(conditions, "(p.name ILIKE "+placeholder+" OR p.description ILIKE "+placeholder+")")
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id ` + where

	q := r.db.Querier(ctx)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&page.Total); err != nil {
		return page, repositories.NewInternal("count products", err)
	}

	listQuery := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id ` + where + `
		ORDER BY ` + productOrderBy(filter.Sort) + `
		LIMIT ` + arg(filter.Pagination.Limit) + ` OFFSET ` + arg(filter.Pagination.Offset())

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return page, repositories.NewInternal("select products", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return page, repositories.NewInternal("scan product", err)
		}
		page.Items = append(page.Items, product)
	}
	if err := rows.Err(); err != nil {
		return page, repositories.NewInternal("iterate products", err)
	}

	page.Page = filter.Pagination.Page
	page.Limit = filter.Pagination.Limit
	return page, nil
}

// ListCategories returns all active categories ordered by name.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM categories
		WHERE is_active
		ORDER BY name`)
	if err != nil {
		return nil, repositories.NewInternal("select categories", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, repositories.NewInternal("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewInternal("iterate categories", err)
	}

	return categories, nil
}

// Insert writes a catalog row. Used by seeding and integration tests; the
// storefront itself never creates products.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO products (
			id, name, description, price, original_price, category_id,
			sizes, colors, images, rating, review_count, is_on_sale,
			stock_quantity, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		product.ID, product.Name, product.Description, product.Price,
		product.OriginalPrice, product.CategoryID,
		jsonStrings(product.Sizes), jsonStrings(product.Colors), jsonStrings(product.Images),
		product.Rating, product.ReviewCount, product.IsOnSale,
		product.StockQuantity, product.IsActive)
	if err != nil {
		return wrapWriteError("insert product", err)
	}
	return nil
}

func productOrderBy(sort domain.ProductSort) string {
	switch sort {
	case domain.ProductSortPriceAsc:
		return "p.price ASC"
	case domain.ProductSortPriceDesc:
		return "p.price DESC"
	case domain.ProductSortNameAsc:
		return "p.name ASC"
	case domain.ProductSortNameDesc:
		return "p.name DESC"
	case domain.ProductSortRatingDesc:
		return "p.rating DESC"
	default:
		return "p.created_at DESC"
	}
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice,
		&p.CategoryID, &p.CategoryName, &p.Sizes, &p.Colors, &p.Images,
		&p.Rating, &p.ReviewCount, &p.IsOnSale, &p.StockQuantity, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// jsonStrings normalises nil slices to empty JSON arrays so jsonb columns
// never hold SQL NULL.
func jsonStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
