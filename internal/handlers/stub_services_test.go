package handlers

import (
	"context"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/services"
)

type stubOrderService struct {
	submitFunc     func(ctx context.Context, cmd services.SubmitOrderCommand) (domain.Order, error)
	listFunc       func(ctx context.Context, filter services.OrderListFilter) (domain.Page[domain.Order], error)
	getFunc        func(ctx context.Context, userID, orderID string) (domain.Order, error)
	cancelFunc     func(ctx context.Context, userID, orderID string) error
	transitionFunc func(ctx context.Context, cmd services.OrderStatusTransitionCommand) (domain.Order, error)
}

func (s *stubOrderService) Submit(ctx context.Context, cmd services.SubmitOrderCommand) (domain.Order, error) {
	if s.submitFunc != nil {
		return s.submitFunc(ctx, cmd)
	}
	return domain.Order{}, nil
}

func (s *stubOrderService) List(ctx context.Context, filter services.OrderListFilter) (domain.Page[domain.Order], error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, filter)
	}
	return domain.Page[domain.Order]{}, nil
}

func (s *stubOrderService) Get(ctx context.Context, userID, orderID string) (domain.Order, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, userID, orderID)
	}
	return domain.Order{}, nil
}

func (s *stubOrderService) Cancel(ctx context.Context, userID, orderID string) error {
	if s.cancelFunc != nil {
		return s.cancelFunc(ctx, userID, orderID)
	}
	return nil
}

func (s *stubOrderService) TransitionStatus(ctx context.Context, cmd services.OrderStatusTransitionCommand) (domain.Order, error) {
	if s.transitionFunc != nil {
		return s.transitionFunc(ctx, cmd)
	}
	return domain.Order{}, nil
}

type stubAddressService struct {
	listFunc       func(ctx context.Context, userID string) ([]domain.Address, error)
	createFunc     func(ctx context.Context, cmd services.UpsertAddressCommand) (domain.Address, error)
	updateFunc     func(ctx context.Context, cmd services.UpsertAddressCommand) (domain.Address, error)
	deleteFunc     func(ctx context.Context, userID, addressID string) error
	setDefaultFunc func(ctx context.Context, userID, addressID string) (domain.Address, error)
}

func (s *stubAddressService) List(ctx context.Context, userID string) ([]domain.Address, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubAddressService) Create(ctx context.Context, cmd services.UpsertAddressCommand) (domain.Address, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, cmd)
	}
	return domain.Address{}, nil
}

func (s *stubAddressService) Update(ctx context.Context, cmd services.UpsertAddressCommand) (domain.Address, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, cmd)
	}
	return domain.Address{}, nil
}

func (s *stubAddressService) Delete(ctx context.Context, userID, addressID string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, userID, addressID)
	}
	return nil
}

func (s *stubAddressService) SetDefault(ctx context.Context, userID, addressID string) (domain.Address, error) {
	if s.setDefaultFunc != nil {
		return s.setDefaultFunc(ctx, userID, addressID)
	}
	return domain.Address{}, nil
}

type stubCatalogService struct {
	listProductsFunc   func(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error)
	getProductFunc     func(ctx context.Context, productID string) (domain.Product, error)
	listCategoriesFunc func(ctx context.Context) ([]domain.Category, error)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error) {
	if s.listProductsFunc != nil {
		return s.listProductsFunc(ctx, filter)
	}
	return domain.Page[domain.Product]{}, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.getProductFunc != nil {
		return s.getProductFunc(ctx, productID)
	}
	return domain.Product{}, nil
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if s.listCategoriesFunc != nil {
		return s.listCategoriesFunc(ctx)
	}
	return nil, nil
}

type stubUserService struct {
	wishlistFunc func(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	addFunc      func(ctx context.Context, userID, productID string) error
	removeFunc   func(ctx context.Context, userID, productID string) error
	cartFunc     func(ctx context.Context, userID string) ([]domain.CartItem, error)
}

func (s *stubUserService) Wishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	if s.wishlistFunc != nil {
		return s.wishlistFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubUserService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if s.addFunc != nil {
		return s.addFunc(ctx, userID, productID)
	}
	return nil
}

func (s *stubUserService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if s.removeFunc != nil {
		return s.removeFunc(ctx, userID, productID)
	}
	return nil
}

func (s *stubUserService) Cart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if s.cartFunc != nil {
		return s.cartFunc(ctx, userID)
	}
	return nil, nil
}
