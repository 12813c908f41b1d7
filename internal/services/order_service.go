package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/repositories"
)

const (
	orderIDPrefix     = "ord_"
	orderItemIDPrefix = "itm_"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderInvalidAddress indicates the delivery address is absent or owned
	// by another user.
	ErrOrderInvalidAddress = errors.New("order: invalid address")
	// ErrOrderProductNotFound indicates a requested product is absent or inactive.
	ErrOrderProductNotFound = errors.New("order: product not found")
	// ErrOrderInsufficientStock indicates a requested quantity exceeds availability.
	ErrOrderInsufficientStock = errors.New("order: insufficient stock")
	// ErrOrderNotFound indicates the order could not be located for the user.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderNotCancellable indicates an invalid status transition was attempted.
	ErrOrderNotCancellable = errors.New("order: status transition not allowed")
)

// InsufficientStockError carries the product name and remaining quantity so
// callers can render an actionable message.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

// Is matches the ErrOrderInsufficientStock sentinel.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrOrderInsufficientStock
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders     repositories.OrderRepository
	Addresses  repositories.AddressRepository
	Products   repositories.ProductRepository
	Inventory  repositories.InventoryRepository
	UnitOfWork repositories.UnitOfWork
	Shipping   domain.ShippingPolicy
	Clock      func() time.Time
	IDGen      func() string
}

type orderService struct {
	orders     repositories.OrderRepository
	addresses  repositories.AddressRepository
	products   repositories.ProductRepository
	inventory  repositories.InventoryRepository
	unitOfWork repositories.UnitOfWork
	shipping   domain.ShippingPolicy
	clock      func() time.Time
	newID      func() string
}

// NewOrderService wires dependencies into a concrete OrderService.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Addresses == nil {
		return nil, errors.New("order service: address repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Inventory == nil {
		return nil, errors.New("order service: inventory repository is required")
	}
	if deps.UnitOfWork == nil {
		return nil, errors.New("order service: unit of work is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	shipping := deps.Shipping
	if shipping.DeliveryCharge.IsZero() && shipping.FreeShippingThreshold.IsZero() {
		shipping = domain.DefaultShippingPolicy()
	}

	return &orderService{
		orders:     deps.Orders,
		addresses:  deps.Addresses,
		products:   deps.Products,
		inventory:  deps.Inventory,
		unitOfWork: deps.UnitOfWork,
		shipping:   shipping,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// Submit implements the order placement workflow. Steps 1-4 are pure
// validation and pricing; nothing is written until the final unit of work,
// which decrements stock conditionally and inserts the order plus items. The
// whole mutation commits or rolls back together.
func (s *orderService) Submit(ctx context.Context, cmd SubmitOrderCommand) (domain.Order, error) {
	if err := validateSubmitInput(cmd); err != nil {
		return domain.Order{}, err
	}

	paymentMethod, err := domain.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}

	address, err := s.addresses.FindByID(ctx, cmd.UserID, cmd.AddressID)
	if err != nil {
		if isNotFound(err) {
			return domain.Order{}, fmt.Errorf("%w: address %s", ErrOrderInvalidAddress, cmd.AddressID)
		}
		return domain.Order{}, err
	}

	now := s.clock()
	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(cmd.Items))

	for _, line := range cmd.Items {
		product, err := s.products.FindActiveByID(ctx, line.ProductID)
		if err != nil {
			if isNotFound(err) {
				return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderProductNotFound, line.ProductID)
			}
			return domain.Order{}, err
		}

		if product.StockQuantity < line.Quantity {
			return domain.Order{}, &InsufficientStockError{
				ProductName: product.Name,
				Available:   product.StockQuantity,
			}
		}

		// Unit price snapshot at submission time.
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, domain.OrderItem{
			ID:            orderItemIDPrefix + s.newID(),
			ProductID:     product.ID,
			ProductName:   product.Name,
			ProductImages: product.Images,
			Quantity:      line.Quantity,
			Price:         product.Price,
			SelectedSize:  line.SelectedSize,
			SelectedColor: line.SelectedColor,
			CreatedAt:     now,
		})
	}

	deliveryCharge := s.shipping.ChargeFor(subtotal)

	order := domain.Order{
		ID:             orderIDPrefix + s.newID(),
		UserID:         cmd.UserID,
		AddressID:      address.ID,
		TotalAmount:    subtotal.Add(deliveryCharge),
		DeliveryCharge: deliveryCharge,
		PaymentMethod:  paymentMethod,
		PaymentStatus:  domain.PaymentStatusPending,
		Status:         domain.OrderStatusPending,
		Notes:          cmd.Notes,
		Items:          items,
		Address:        &address,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		// Conditional decrements first. The pre-check above can be stale
		// under concurrency; the WHERE-guarded decrement is authoritative.
		for i, item := range order.Items {
			if err := s.inventory.Reserve(txCtx, item.ProductID, item.Quantity); err != nil {
				if isInsufficientStock(err) {
					return s.stockRaceError(txCtx, cmd.Items[i].ProductID, item.ProductName)
				}
				return err
			}
		}
		return s.orders.Insert(txCtx, order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// stockRaceError rebuilds the user-facing insufficient-stock detail after a
// decrement lost the race to concurrent submissions.
func (s *orderService) stockRaceError(ctx context.Context, productID, productName string) error {
	available, err := s.inventory.StockQuantity(ctx, productID)
	if err != nil {
		available = 0
	}
	return &InsufficientStockError{ProductName: productName, Available: available}
}

func (s *orderService) List(ctx context.Context, filter OrderListFilter) (domain.Page[domain.Order], error) {
	if strings.TrimSpace(filter.UserID) == "" {
		return domain.Page[domain.Order]{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	result, err := s.orders.List(ctx, domain.OrderFilter{
		UserID:     filter.UserID,
		Status:     filter.Status,
		Pagination: domain.Pagination{Page: page, Limit: limit},
	})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	return result, nil
}

func (s *orderService) Get(ctx context.Context, userID, orderID string) (domain.Order, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(orderID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user id and order id are required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, userID, orderID)
	if err != nil {
		if isNotFound(err) {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return domain.Order{}, err
	}

	return order, nil
}

// Cancel transitions the order to cancelled and restores every item's stock
// inside one unit of work. The status write is guarded on the cancellable
// statuses, so whichever of two concurrent cancellations commits second rolls
// back before touching stock; stock is restored exactly once.
func (s *orderService) Cancel(ctx context.Context, userID, orderID string) error {
	order, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return err
	}

	if !order.Status.Cancellable() {
		return fmt.Errorf("%w: order is %s", ErrOrderNotCancellable, order.Status)
	}

	return s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		// The pre-check above can be stale; the guarded update is
		// authoritative and fails the losing side before any Release.
		err := s.orders.UpdateStatus(txCtx, order.ID, domain.OrderStatusCancelled, domain.CancellableStatuses()...)
		if err != nil {
			if isConflict(err) {
				return fmt.Errorf("%w: order %s is no longer cancellable", ErrOrderNotCancellable, order.ID)
			}
			return err
		}
		for _, item := range order.Items {
			if err := s.inventory.Release(txCtx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *orderService) TransitionStatus(ctx context.Context, cmd OrderStatusTransitionCommand) (domain.Order, error) {
	order, err := s.Get(ctx, cmd.UserID, cmd.OrderID)
	if err != nil {
		return domain.Order{}, err
	}

	if cmd.TargetStatus == domain.OrderStatusCancelled {
		return domain.Order{}, fmt.Errorf("%w: use Cancel for cancellation", ErrOrderInvalidInput)
	}
	if !order.Status.CanTransitionTo(cmd.TargetStatus) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrOrderNotCancellable, order.Status, cmd.TargetStatus)
	}

	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		// Guard on the status the transition was validated against. A
		// concurrent writer (a cancellation in particular) makes this a
		// zero-row update rather than an overwrite of its result.
		return s.orders.UpdateStatus(txCtx, order.ID, cmd.TargetStatus, order.Status)
	})
	if err != nil {
		if isConflict(err) {
			return domain.Order{}, fmt.Errorf("%w: order %s changed concurrently", ErrOrderNotCancellable, order.ID)
		}
		return domain.Order{}, err
	}

	order.Status = cmd.TargetStatus
	return order, nil
}

func validateSubmitInput(cmd SubmitOrderCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	if strings.TrimSpace(cmd.AddressID) == "" {
		return fmt.Errorf("%w: address id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrOrderInvalidInput)
	}
	for _, line := range cmd.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			return fmt.Errorf("%w: item product id is required", ErrOrderInvalidInput)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for %s must be at least 1", ErrOrderInvalidInput, line.ProductID)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isInsufficientStock(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsInsufficientStock()
}

func isConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
