package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pagination defines standard page/limit paging inputs for list operations.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the row offset implied by the page and limit values.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page packages offset-paginated list results together with the total row count.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// TotalPages derives the number of pages available for the current limit.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	pages := p.Total / p.Limit
	if p.Total%p.Limit != 0 {
		pages++
	}
	return pages
}

// Category groups products for storefront navigation.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product captures a catalog entry. StockQuantity is mutated only through the
// inventory repository's reserve/release operations.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	CategoryID    *string
	CategoryName  string
	Sizes         []string
	Colors        []string
	Images        []string
	Rating        decimal.Decimal
	ReviewCount   int
	IsOnSale      bool
	StockQuantity int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Address stores a delivery destination owned by a user. At most one address
// per user carries IsDefault after any successful write.
type Address struct {
	ID           string
	UserID       string
	Name         string
	Phone        string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        string
	Pincode      string
	IsDefault    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Order is created atomically with its items and is immutable afterwards
// except for the status fields.
type Order struct {
	ID             string
	UserID         string
	AddressID      string
	TotalAmount    decimal.Decimal
	DeliveryCharge decimal.Decimal
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	Status         OrderStatus
	Notes          *string
	Items          []OrderItem
	Address        *Address
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Subtotal returns the sum of item price snapshots times their quantities.
func (o Order) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// OrderItem is a single product line within an order. Price is the unit price
// at submission time and is never re-read from the live catalog.
type OrderItem struct {
	ID            string
	OrderID       string
	ProductID     string
	ProductName   string
	ProductImages []string
	Quantity      int
	Price         decimal.Decimal
	SelectedSize  *string
	SelectedColor *string
	CreatedAt     time.Time
}

// WishlistItem joins a saved product with its live catalog data.
type WishlistItem struct {
	Product Product
	AddedAt time.Time
}

// CartItem is one line of the persistent cart snapshot, joined with its live
// catalog data for prefill.
type CartItem struct {
	ID            string
	Quantity      int
	SelectedSize  *string
	SelectedColor *string
	Product       Product
	UpdatedAt     time.Time
}

// ProductSort enumerates supported catalog list orderings.
type ProductSort string

const (
	// ProductSortNewest orders by creation time, newest first.
	ProductSortNewest ProductSort = "newest"
	// ProductSortPriceAsc orders by unit price ascending.
	ProductSortPriceAsc ProductSort = "price_asc"
	// ProductSortPriceDesc orders by unit price descending.
	ProductSortPriceDesc ProductSort = "price_desc"
	// ProductSortNameAsc orders alphabetically.
	ProductSortNameAsc ProductSort = "name_asc"
	// ProductSortNameDesc orders reverse-alphabetically.
	ProductSortNameDesc ProductSort = "name_desc"
	// ProductSortRatingDesc orders by review rating, best first.
	ProductSortRatingDesc ProductSort = "rating_desc"
)

// ValidProductSort reports whether the provided sort key is supported.
func ValidProductSort(s ProductSort) bool {
	switch s {
	case ProductSortNewest, ProductSortPriceAsc, ProductSortPriceDesc,
		ProductSortNameAsc, ProductSortNameDesc, ProductSortRatingDesc:
		return true
	}
	return false
}

// ProductFilter narrows catalog listings. Zero valued fields are ignored.
type ProductFilter struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Sort         ProductSort
	Pagination   Pagination
}

// OrderFilter narrows order listings for a single user.
type OrderFilter struct {
	UserID     string
	Status     *OrderStatus
	Pagination Pagination
}
