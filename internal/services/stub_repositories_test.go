package services

import (
	"context"

	domain "github.com/nueve-shop/api/internal/domain"
)

type stubUnitOfWork struct {
	runFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (s *stubUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.runFunc != nil {
		return s.runFunc(ctx, fn)
	}
	return fn(ctx)
}

type stubOrderRepository struct {
	insertFunc       func(ctx context.Context, order domain.Order) error
	findFunc         func(ctx context.Context, userID, orderID string) (domain.Order, error)
	listFunc         func(ctx context.Context, filter domain.OrderFilter) (domain.Page[domain.Order], error)
	updateStatusFunc func(ctx context.Context, orderID string, status domain.OrderStatus, allowedFrom ...domain.OrderStatus) error
}

func (s *stubOrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFunc != nil {
		return s.insertFunc(ctx, order)
	}
	return nil
}

func (s *stubOrderRepository) FindByID(ctx context.Context, userID, orderID string) (domain.Order, error) {
	if s.findFunc != nil {
		return s.findFunc(ctx, userID, orderID)
	}
	return domain.Order{}, nil
}

func (s *stubOrderRepository) List(ctx context.Context, filter domain.OrderFilter) (domain.Page[domain.Order], error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, filter)
	}
	return domain.Page[domain.Order]{}, nil
}

func (s *stubOrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, allowedFrom ...domain.OrderStatus) error {
	if s.updateStatusFunc != nil {
		return s.updateStatusFunc(ctx, orderID, status, allowedFrom...)
	}
	return nil
}

type stubAddressRepository struct {
	findFunc          func(ctx context.Context, userID, addressID string) (domain.Address, error)
	listFunc          func(ctx context.Context, userID string) ([]domain.Address, error)
	insertFunc        func(ctx context.Context, address domain.Address) error
	updateFunc        func(ctx context.Context, address domain.Address) error
	deleteFunc        func(ctx context.Context, userID, addressID string) error
	clearDefaultsFunc func(ctx context.Context, userID, exceptID string) error
	markDefaultFunc   func(ctx context.Context, userID, addressID string) error
}

func (s *stubAddressRepository) FindByID(ctx context.Context, userID, addressID string) (domain.Address, error) {
	if s.findFunc != nil {
		return s.findFunc(ctx, userID, addressID)
	}
	return domain.Address{}, nil
}

func (s *stubAddressRepository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubAddressRepository) Insert(ctx context.Context, address domain.Address) error {
	if s.insertFunc != nil {
		return s.insertFunc(ctx, address)
	}
	return nil
}

func (s *stubAddressRepository) Update(ctx context.Context, address domain.Address) error {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, address)
	}
	return nil
}

func (s *stubAddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, userID, addressID)
	}
	return nil
}

func (s *stubAddressRepository) ClearDefaults(ctx context.Context, userID, exceptID string) error {
	if s.clearDefaultsFunc != nil {
		return s.clearDefaultsFunc(ctx, userID, exceptID)
	}
	return nil
}

func (s *stubAddressRepository) MarkDefault(ctx context.Context, userID, addressID string) error {
	if s.markDefaultFunc != nil {
		return s.markDefaultFunc(ctx, userID, addressID)
	}
	return nil
}

type stubProductRepository struct {
	findActiveFunc     func(ctx context.Context, productID string) (domain.Product, error)
	findFunc           func(ctx context.Context, productID string) (domain.Product, error)
	listFunc           func(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error)
	listCategoriesFunc func(ctx context.Context) ([]domain.Category, error)
	insertFunc         func(ctx context.Context, product domain.Product) error
}

func (s *stubProductRepository) FindActiveByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findActiveFunc != nil {
		return s.findActiveFunc(ctx, productID)
	}
	return domain.Product{}, nil
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFunc != nil {
		return s.findFunc(ctx, productID)
	}
	return domain.Product{}, nil
}

func (s *stubProductRepository) List(ctx context.Context, filter domain.ProductFilter) (domain.Page[domain.Product], error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, filter)
	}
	return domain.Page[domain.Product]{}, nil
}

func (s *stubProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if s.listCategoriesFunc != nil {
		return s.listCategoriesFunc(ctx)
	}
	return nil, nil
}

func (s *stubProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFunc != nil {
		return s.insertFunc(ctx, product)
	}
	return nil
}

type stubInventoryRepository struct {
	reserveFunc func(ctx context.Context, productID string, quantity int) error
	releaseFunc func(ctx context.Context, productID string, quantity int) error
	stockFunc   func(ctx context.Context, productID string) (int, error)
}

func (s *stubInventoryRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	if s.reserveFunc != nil {
		return s.reserveFunc(ctx, productID, quantity)
	}
	return nil
}

func (s *stubInventoryRepository) Release(ctx context.Context, productID string, quantity int) error {
	if s.releaseFunc != nil {
		return s.releaseFunc(ctx, productID, quantity)
	}
	return nil
}

func (s *stubInventoryRepository) StockQuantity(ctx context.Context, productID string) (int, error) {
	if s.stockFunc != nil {
		return s.stockFunc(ctx, productID)
	}
	return 0, nil
}

type stubWishlistRepository struct {
	listFunc   func(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	addFunc    func(ctx context.Context, userID, productID string) error
	removeFunc func(ctx context.Context, userID, productID string) (bool, error)
}

func (s *stubWishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubWishlistRepository) Add(ctx context.Context, userID, productID string) error {
	if s.addFunc != nil {
		return s.addFunc(ctx, userID, productID)
	}
	return nil
}

func (s *stubWishlistRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	if s.removeFunc != nil {
		return s.removeFunc(ctx, userID, productID)
	}
	return false, nil
}

type stubCartRepository struct {
	listFunc func(ctx context.Context, userID string) ([]domain.CartItem, error)
}

func (s *stubCartRepository) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID)
	}
	return nil, nil
}
