package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/repositories"
)

var (
	// ErrCatalogInvalidInput signals an invalid catalog query.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogProductNotFound indicates the product is absent or inactive.
	ErrCatalogProductNotFound = errors.New("catalog: product not found")
)

// CatalogServiceDeps bundles collaborators for the catalog service.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
}

type catalogService struct {
	products repositories.ProductRepository
}

// NewCatalogService wires dependencies into a concrete CatalogService.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	return &catalogService{products: deps.Products}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error) {
	if filter.Pagination.Page < 1 {
		filter.Pagination.Page = 1
	}
	if filter.Pagination.Limit < 1 {
		filter.Pagination.Limit = 20
	}
	if filter.Pagination.Limit > 100 {
		filter.Pagination.Limit = 100
	}

	if filter.Sort == "" {
		filter.Sort = domain.ProductSortNewest
	}
	if !domain.ValidProductSort(filter.Sort) {
		return domain.Page[domain.Product]{}, fmt.Errorf("%w: unknown sort %q", ErrCatalogInvalidInput, filter.Sort)
	}

	filter.Search = strings.TrimSpace(filter.Search)

	return s.products.List(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		if isNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrCatalogProductNotFound, productID)
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.products.ListCategories(ctx)
}
