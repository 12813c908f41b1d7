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
	// ErrUserInvalidInput signals the caller provided invalid data.
	ErrUserInvalidInput = errors.New("user: invalid input")
	// ErrWishlistProductNotFound indicates the product is absent or inactive.
	ErrWishlistProductNotFound = errors.New("user: wishlist product not found")
	// ErrWishlistItemNotFound indicates the product is not on the wishlist.
	ErrWishlistItemNotFound = errors.New("user: wishlist item not found")
)

// UserServiceDeps bundles collaborators for the user service.
type UserServiceDeps struct {
	Wishlists repositories.WishlistRepository
	Carts     repositories.CartRepository
	Products  repositories.ProductRepository
}

type userService struct {
	wishlists repositories.WishlistRepository
	carts     repositories.CartRepository
	products  repositories.ProductRepository
}

// NewUserService wires dependencies into a concrete UserService.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Wishlists == nil {
		return nil, errors.New("user service: wishlist repository is required")
	}
	if deps.Carts == nil {
		return nil, errors.New("user service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("user service: product repository is required")
	}
	return &userService{
		wishlists: deps.Wishlists,
		carts:     deps.Carts,
		products:  deps.Products,
	}, nil
}

func (s *userService) Wishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}
	return s.wishlists.List(ctx, userID)
}

// AddToWishlist is idempotent: adding a product already on the wishlist is a
// no-op, not an error.
func (s *userService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: user id and product id are required", ErrUserInvalidInput)
	}

	if _, err := s.products.FindActiveByID(ctx, productID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrWishlistProductNotFound, productID)
		}
		return err
	}

	return s.wishlists.Add(ctx, userID, productID)
}

func (s *userService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: user id and product id are required", ErrUserInvalidInput)
	}

	removed, err := s.wishlists.Remove(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrWishlistItemNotFound, productID)
	}
	return nil
}

func (s *userService) Cart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}
	return s.carts.List(ctx, userID)
}
