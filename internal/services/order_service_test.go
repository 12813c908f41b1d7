package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/repositories"
)

func testOrderClock() func() time.Time {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func sequentialIDs(prefix string) func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s%03d", prefix, n)
	}
}

func TestOrderServiceSubmitComputesTotals(t *testing.T) {
	ctx := context.Background()

	product := domain.Product{
		ID:            "prod-1",
		Name:          "Canvas Tote",
		Price:         decimal.NewFromInt(30),
		StockQuantity: 10,
		IsActive:      true,
	}

	var inserted domain.Order
	orders := &stubOrderRepository{
		insertFunc: func(ctx context.Context, order domain.Order) error {
			inserted = order
			return nil
		},
	}
	addresses := &stubAddressRepository{
		findFunc: func(ctx context.Context, userID, addressID string) (domain.Address, error) {
			if userID != "user-1" || addressID != "adr-1" {
				t.Fatalf("unexpected address lookup %s/%s", userID, addressID)
			}
			return domain.Address{ID: "adr-1", UserID: "user-1"}, nil
		},
	}
	products := &stubProductRepository{
		findActiveFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			return product, nil
		},
	}
	var reserved int
	inventory := &stubInventoryRepository{
		reserveFunc: func(ctx context.Context, productID string, quantity int) error {
			reserved += quantity
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  addresses,
		Products:   products,
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
		Clock:      testOrderClock(),
		IDGen:      sequentialIDs("id"),
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	order, err := service.Submit(ctx, SubmitOrderCommand{
		UserID:        "user-1",
		AddressID:     "adr-1",
		PaymentMethod: "cod",
		Items: []OrderLineRequest{
			{ProductID: "prod-1", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.DeliveryCharge.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected delivery charge 50, got %s", order.DeliveryCharge)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected total 110, got %s", order.TotalAmount)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", order.PaymentStatus)
	}
	if reserved != 2 {
		t.Fatalf("expected 2 units reserved, got %d", reserved)
	}
	if len(inserted.Items) != 1 {
		t.Fatalf("expected 1 persisted item, got %d", len(inserted.Items))
	}
	if inserted.Items[0].OrderID != inserted.ID {
		t.Fatalf("item order id %s does not match order %s", inserted.Items[0].OrderID, inserted.ID)
	}
	if !inserted.Items[0].Price.Equal(product.Price) {
		t.Fatalf("expected price snapshot %s, got %s", product.Price, inserted.Items[0].Price)
	}
}

func TestOrderServiceSubmitFreeShippingOverThreshold(t *testing.T) {
	ctx := context.Background()

	products := &stubProductRepository{
		findActiveFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{
				ID:            productID,
				Name:          "Wool Coat",
				Price:         decimal.NewFromInt(250),
				StockQuantity: 5,
				IsActive:      true,
			}, nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     &stubOrderRepository{},
		Addresses:  &stubAddressRepository{findFunc: returnAddress("adr-1", "user-1")},
		Products:   products,
		Inventory:  &stubInventoryRepository{},
		UnitOfWork: &stubUnitOfWork{},
		Clock:      testOrderClock(),
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	order, err := service.Submit(ctx, SubmitOrderCommand{
		UserID:        "user-1",
		AddressID:     "adr-1",
		PaymentMethod: "online",
		Items: []OrderLineRequest{
			{ProductID: "prod-1", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.DeliveryCharge.IsZero() {
		t.Fatalf("expected free shipping, got charge %s", order.DeliveryCharge)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total 500, got %s", order.TotalAmount)
	}
}

func TestOrderServiceSubmitRejectsForeignAddress(t *testing.T) {
	ctx := context.Background()

	addresses := &stubAddressRepository{
		findFunc: func(ctx context.Context, userID, addressID string) (domain.Address, error) {
			return domain.Address{}, repositories.NewNotFound("address not found")
		},
	}
	var reserveCalls int
	inventory := &stubInventoryRepository{
		reserveFunc: func(ctx context.Context, productID string, quantity int) error {
			reserveCalls++
			return nil
		},
	}
	var insertCalls int
	orders := &stubOrderRepository{
		insertFunc: func(ctx context.Context, order domain.Order) error {
			insertCalls++
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  addresses,
		Products:   &stubProductRepository{},
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	_, err = service.Submit(ctx, SubmitOrderCommand{
		UserID:        "user-1",
		AddressID:     "adr-belongs-to-someone-else",
		PaymentMethod: "cod",
		Items:         []OrderLineRequest{{ProductID: "prod-1", Quantity: 1}},
	})
	if !errors.Is(err, ErrOrderInvalidAddress) {
		t.Fatalf("expected ErrOrderInvalidAddress, got %v", err)
	}
	if reserveCalls != 0 {
		t.Fatalf("stock must not be touched, got %d reserve calls", reserveCalls)
	}
	if insertCalls != 0 {
		t.Fatalf("no order must be written, got %d inserts", insertCalls)
	}
}

func TestOrderServiceSubmitInsufficientStockPreCheck(t *testing.T) {
	ctx := context.Background()

	products := &stubProductRepository{
		findActiveFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			return domain.Product{
				ID:            productID,
				Name:          "Limited Sneaker",
				Price:         decimal.NewFromInt(120),
				StockQuantity: 1,
				IsActive:      true,
			}, nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     &stubOrderRepository{},
		Addresses:  &stubAddressRepository{findFunc: returnAddress("adr-1", "user-1")},
		Products:   products,
		Inventory:  &stubInventoryRepository{},
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	_, err = service.Submit(ctx, SubmitOrderCommand{
		UserID:        "user-1",
		AddressID:     "adr-1",
		PaymentMethod: "cod",
		Items:         []OrderLineRequest{{ProductID: "prod-1", Quantity: 3}},
	})

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductName != "Limited Sneaker" || stockErr.Available != 1 {
		t.Fatalf("unexpected detail %+v", stockErr)
	}
	if !errors.Is(err, ErrOrderInsufficientStock) {
		t.Fatalf("expected sentinel match, got %v", err)
	}
}

func TestOrderServiceSubmitInsufficientStockInsideTx(t *testing.T) {
	ctx := context.Background()

	products := &stubProductRepository{
		findActiveFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			// Pre-check sees plenty; the guarded decrement loses the race.
			return domain.Product{
				ID:            productID,
				Name:          "Limited Sneaker",
				Price:         decimal.NewFromInt(120),
				StockQuantity: 5,
				IsActive:      true,
			}, nil
		},
	}
	inventory := &stubInventoryRepository{
		reserveFunc: func(ctx context.Context, productID string, quantity int) error {
			return repositories.NewInsufficientStock("stock below requested quantity")
		},
		stockFunc: func(ctx context.Context, productID string) (int, error) {
			return 1, nil
		},
	}
	var insertCalls int
	orders := &stubOrderRepository{
		insertFunc: func(ctx context.Context, order domain.Order) error {
			insertCalls++
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{findFunc: returnAddress("adr-1", "user-1")},
		Products:   products,
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	_, err = service.Submit(ctx, SubmitOrderCommand{
		UserID:        "user-1",
		AddressID:     "adr-1",
		PaymentMethod: "cod",
		Items:         []OrderLineRequest{{ProductID: "prod-1", Quantity: 2}},
	})

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 1 {
		t.Fatalf("expected remaining stock 1, got %d", stockErr.Available)
	}
	if insertCalls != 0 {
		t.Fatalf("no order must be inserted after failed reservation, got %d", insertCalls)
	}
}

// TestOrderServiceSubmitConcurrentOversell drives N concurrent submissions at
// a product with K units and verifies exactly K succeed and stock never goes
// negative. The stub inventory mimics the conditional decrement.
func TestOrderServiceSubmitConcurrentOversell(t *testing.T) {
	ctx := context.Background()

	const totalStock = 7
	const attempts = 25

	var mu sync.Mutex
	stock := totalStock

	products := &stubProductRepository{
		findActiveFunc: func(ctx context.Context, productID string) (domain.Product, error) {
			mu.Lock()
			defer mu.Unlock()
			return domain.Product{
				ID:            productID,
				Name:          "Drop Item",
				Price:         decimal.NewFromInt(40),
				StockQuantity: stock,
				IsActive:      true,
			}, nil
		},
	}
	inventory := &stubInventoryRepository{
		reserveFunc: func(ctx context.Context, productID string, quantity int) error {
			mu.Lock()
			defer mu.Unlock()
			if stock < quantity {
				return repositories.NewInsufficientStock("stock below requested quantity")
			}
			stock -= quantity
			return nil
		},
		stockFunc: func(ctx context.Context, productID string) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			return stock, nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     &stubOrderRepository{},
		Addresses:  &stubAddressRepository{findFunc: returnAddress("adr-1", "user-1")},
		Products:   products,
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Submit(ctx, SubmitOrderCommand{
				UserID:        "user-1",
				AddressID:     "adr-1",
				PaymentMethod: "cod",
				Items:         []OrderLineRequest{{ProductID: "prod-1", Quantity: 1}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrOrderInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != totalStock {
		t.Fatalf("expected %d successful orders, got %d", totalStock, succeeded)
	}
	if rejected != attempts-totalStock {
		t.Fatalf("expected %d rejections, got %d", attempts-totalStock, rejected)
	}
	if stock != 0 {
		t.Fatalf("expected stock drained to 0, got %d", stock)
	}
}

func TestOrderServiceCancelRestoresStock(t *testing.T) {
	ctx := context.Background()

	order := domain.Order{
		ID:     "ord-1",
		UserID: "user-1",
		Status: domain.OrderStatusConfirmed,
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 1},
		},
	}

	var statusUpdates []domain.OrderStatus
	orders := &stubOrderRepository{
		findFunc: func(ctx context.Context, userID, orderID string) (domain.Order, error) {
			return order, nil
		},
		updateStatusFunc: func(ctx context.Context, orderID string, status domain.OrderStatus, allowedFrom ...domain.OrderStatus) error {
			statusUpdates = append(statusUpdates, status)
			return nil
		},
	}
	released := map[string]int{}
	inventory := &stubInventoryRepository{
		releaseFunc: func(ctx context.Context, productID string, quantity int) error {
			released[productID] += quantity
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	if err := service.Cancel(ctx, "user-1", "ord-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(statusUpdates) != 1 || statusUpdates[0] != domain.OrderStatusCancelled {
		t.Fatalf("expected single cancelled update, got %v", statusUpdates)
	}
	if released["prod-1"] != 2 || released["prod-2"] != 1 {
		t.Fatalf("unexpected releases %v", released)
	}
}

func TestOrderServiceCancelRejectsShippedOrder(t *testing.T) {
	ctx := context.Background()

	orders := &stubOrderRepository{
		findFunc: func(ctx context.Context, userID, orderID string) (domain.Order, error) {
			return domain.Order{ID: orderID, UserID: userID, Status: domain.OrderStatusShipped}, nil
		},
	}
	var releaseCalls int
	inventory := &stubInventoryRepository{
		releaseFunc: func(ctx context.Context, productID string, quantity int) error {
			releaseCalls++
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	err = service.Cancel(ctx, "user-1", "ord-1")
	if !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}
	if releaseCalls != 0 {
		t.Fatalf("stock must not be restored, got %d release calls", releaseCalls)
	}
}

func TestOrderServiceCancelTwiceRestoresOnce(t *testing.T) {
	ctx := context.Background()

	status := domain.OrderStatusPending
	orders := &stubOrderRepository{
		findFunc: func(ctx context.Context, userID, orderID string) (domain.Order, error) {
			return domain.Order{
				ID:     orderID,
				UserID: userID,
				Status: status,
				Items:  []domain.OrderItem{{ProductID: "prod-1", Quantity: 3}},
			}, nil
		},
		updateStatusFunc: func(ctx context.Context, orderID string, next domain.OrderStatus, allowedFrom ...domain.OrderStatus) error {
			for _, from := range allowedFrom {
				if from == status {
					status = next
					return nil
				}
			}
			return repositories.NewConflict(fmt.Sprintf("order %s is %s", orderID, status), nil)
		},
	}
	var released int
	inventory := &stubInventoryRepository{
		releaseFunc: func(ctx context.Context, productID string, quantity int) error {
			released += quantity
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	if err := service.Cancel(ctx, "user-1", "ord-1"); err != nil {
		t.Fatalf("unexpected error on first cancel: %v", err)
	}
	err = service.Cancel(ctx, "user-1", "ord-1")
	if !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected second cancel to fail, got %v", err)
	}
	if released != 3 {
		t.Fatalf("expected stock restored exactly once (3 units), got %d", released)
	}
}

func TestOrderServiceConcurrentCancelRestoresOnce(t *testing.T) {
	ctx := context.Background()

	// Both cancellations read the order before either commits, so both see
	// pending. Only the guarded status write inside the unit of work may
	// decide the winner.
	orders := &stubOrderRepository{
		findFunc: func(ctx context.Context, userID, orderID string) (domain.Order, error) {
			return domain.Order{
				ID:     orderID,
				UserID: userID,
				Status: domain.OrderStatusPending,
				Items:  []domain.OrderItem{{ProductID: "prod-1", Quantity: 3}},
			}, nil
		},
	}

	var mu sync.Mutex
	persisted := domain.OrderStatusPending
	released := 0
	orders.updateStatusFunc = func(ctx context.Context, orderID string, next domain.OrderStatus, allowedFrom ...domain.OrderStatus) error {
		mu.Lock()
		defer mu.Unlock()
		for _, from := range allowedFrom {
			if from == persisted {
				persisted = next
				return nil
			}
		}
		return repositories.NewConflict(fmt.Sprintf("order %s is %s", orderID, persisted), nil)
	}
	inventory := &stubInventoryRepository{
		releaseFunc: func(ctx context.Context, productID string, quantity int) error {
			mu.Lock()
			defer mu.Unlock()
			released += quantity
			return nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  inventory,
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	const attempts = 2
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- service.Cancel(ctx, "user-1", "ord-1")
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrOrderNotCancellable):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected one winner and one rejection, got %d/%d", succeeded, rejected)
	}
	if released != 3 {
		t.Fatalf("expected stock restored exactly once (3 units), got %d", released)
	}
	if persisted != domain.OrderStatusCancelled {
		t.Fatalf("expected order cancelled, got %s", persisted)
	}
}

func TestOrderServiceTransitionStatusLosesToCancellation(t *testing.T) {
	ctx := context.Background()

	// The transition is validated against pending, but a cancellation commits
	// in between. The guarded write must not overwrite the terminal state.
	orders := &stubOrderRepository{
		findFunc: func(ctx context.Context, userID, orderID string) (domain.Order, error) {
			return domain.Order{ID: orderID, UserID: userID, Status: domain.OrderStatusPending}, nil
		},
		updateStatusFunc: func(ctx context.Context, orderID string, next domain.OrderStatus, allowedFrom ...domain.OrderStatus) error {
			persisted := domain.OrderStatusCancelled
			for _, from := range allowedFrom {
				if from == persisted {
					return nil
				}
			}
			return repositories.NewConflict(fmt.Sprintf("order %s is %s", orderID, persisted), nil)
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  &stubInventoryRepository{},
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	_, err = service.TransitionStatus(ctx, OrderStatusTransitionCommand{
		UserID:       "user-1",
		OrderID:      "ord-1",
		TargetStatus: domain.OrderStatusConfirmed,
	})
	if !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}
}

func TestOrderServiceTransitionStatus(t *testing.T) {
	ctx := context.Background()

	orders := &stubOrderRepository{
		findFunc: func(ctx context.Context, userID, orderID string) (domain.Order, error) {
			return domain.Order{ID: orderID, UserID: userID, Status: domain.OrderStatusPending}, nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  &stubInventoryRepository{},
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	order, err := service.TransitionStatus(ctx, OrderStatusTransitionCommand{
		UserID:       "user-1",
		OrderID:      "ord-1",
		TargetStatus: domain.OrderStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", order.Status)
	}

	_, err = service.TransitionStatus(ctx, OrderStatusTransitionCommand{
		UserID:       "user-1",
		OrderID:      "ord-1",
		TargetStatus: domain.OrderStatusDelivered,
	})
	if !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("expected transition rejection, got %v", err)
	}
}

func TestOrderServiceListClampsPagination(t *testing.T) {
	ctx := context.Background()

	var captured domain.OrderFilter
	orders := &stubOrderRepository{
		listFunc: func(ctx context.Context, filter domain.OrderFilter) (domain.Page[domain.Order], error) {
			captured = filter
			return domain.Page[domain.Order]{Page: filter.Pagination.Page, Limit: filter.Pagination.Limit}, nil
		},
	}

	service, err := NewOrderService(OrderServiceDeps{
		Orders:     orders,
		Addresses:  &stubAddressRepository{},
		Products:   &stubProductRepository{},
		Inventory:  &stubInventoryRepository{},
		UnitOfWork: &stubUnitOfWork{},
	})
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}

	_, err = service.List(ctx, OrderListFilter{UserID: "user-1", Page: 0, Limit: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Pagination.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", captured.Pagination.Page)
	}
	if captured.Pagination.Limit != 50 {
		t.Fatalf("expected limit clamped to 50, got %d", captured.Pagination.Limit)
	}
}

func returnAddress(addressID, userID string) func(context.Context, string, string) (domain.Address, error) {
	return func(ctx context.Context, uid, aid string) (domain.Address, error) {
		return domain.Address{ID: addressID, UserID: userID}, nil
	}
}
