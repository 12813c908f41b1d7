package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/platform/httpx"
	"github.com/nueve-shop/api/internal/services"
)

// CatalogHandlers exposes the public product catalog endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs a new CatalogHandlers instance.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes registers the public catalog endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/categories/all", h.listCategories)
	r.Get("/products/{productID}", h.getProduct)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := domain.ProductFilter{
		CategorySlug: strings.TrimSpace(query.Get("category")),
		Search:       strings.TrimSpace(query.Get("search")),
		Sort:         domain.ProductSort(strings.TrimSpace(query.Get("sortBy"))),
	}

	if raw := strings.TrimSpace(query.Get("minPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "minPrice must be a number", http.StatusBadRequest))
			return
		}
		filter.MinPrice = &price
	}
	if raw := strings.TrimSpace(query.Get("maxPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "maxPrice must be a number", http.StatusBadRequest))
			return
		}
		filter.MaxPrice = &price
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "page must be an integer", http.StatusBadRequest))
			return
		}
		filter.Pagination.Page = page
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be an integer", http.StatusBadRequest))
			return
		}
		filter.Pagination.Limit = limit
	}

	page, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	products := make([]productPayload, 0, len(page.Items))
	for _, product := range page.Items {
		products = append(products, buildProductPayload(product))
	}

	httpx.WriteJSON(w, http.StatusOK, productListResponse{
		Products:   products,
		Pagination: buildPaginationPayload(page.Page, page.Limit, page.Total, page.TotalPages()),
	})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "product id is required", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, productResponse{Product: buildProductPayload(product)})
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	payload := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		payload = append(payload, categoryPayload{
			ID:          category.ID,
			Name:        category.Name,
			Slug:        category.Slug,
			Description: category.Description,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, categoryListResponse{Categories: payload})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to load catalog", http.StatusInternalServerError))
	}
}

type productListResponse struct {
	Products   []productPayload  `json:"products"`
	Pagination paginationPayload `json:"pagination"`
}

type productResponse struct {
	Product productPayload `json:"product"`
}

type categoryListResponse struct {
	Categories []categoryPayload `json:"categories"`
}

type categoryPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type productPayload struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Category      string           `json:"category,omitempty"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Images        []string         `json:"images"`
	Rating        decimal.Decimal  `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	IsOnSale      bool             `json:"is_on_sale"`
	StockQuantity int              `json:"stock_quantity"`
	InStock       bool             `json:"in_stock"`
	CreatedAt     string           `json:"created_at,omitempty"`
}

func buildProductPayload(product domain.Product) productPayload {
	sizes := product.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	colors := product.Colors
	if colors == nil {
		colors = []string{}
	}
	images := product.Images
	if images == nil {
		images = []string{}
	}
	return productPayload{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Category:      product.CategoryName,
		Sizes:         sizes,
		Colors:        colors,
		Images:        images,
		Rating:        product.Rating,
		ReviewCount:   product.ReviewCount,
		IsOnSale:      product.IsOnSale,
		StockQuantity: product.StockQuantity,
		InStock:       product.StockQuantity > 0,
		CreatedAt:     formatTime(product.CreatedAt),
	}
}
