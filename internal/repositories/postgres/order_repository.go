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

const orderColumns = `
	o.id, o.user_id, o.address_id, o.total_amount, o.delivery_charge,
	o.payment_method, o.payment_status, o.order_status, o.notes,
	o.created_at, o.updated_at,
	a.name, a.phone, a.address_line1, a.address_line2, a.city, a.state, a.pincode`

// OrderRepository persists orders and their line items.
type OrderRepository struct {
	db *platform.DB
}

// NewOrderRepository constructs an OrderRepository backed by the pool.
func NewOrderRepository(db *platform.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert writes the order row and every item row. Runs inside the caller's
// unit of work so stock decrements and order persistence commit together.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if len(order.Items) == 0 {
		return repositories.NewInternal("insert order", errors.New("order has no items"))
	}

	q := r.db.Querier(ctx)

	_, err := q.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, address_id, total_amount, delivery_charge,
			payment_method, payment_status, order_status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.UserID, order.AddressID, order.TotalAmount, order.DeliveryCharge,
		string(order.PaymentMethod), string(order.PaymentStatus), string(order.Status), order.Notes)
	if err != nil {
		return wrapWriteError("insert order", err)
	}

	for _, item := range order.Items {
		_, err := q.Exec(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, quantity, price,
				selected_size, selected_color
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, order.ID, item.ProductID, item.Quantity, item.Price,
			item.SelectedSize, item.SelectedColor)
		if err != nil {
			return wrapWriteError("insert order item", err)
		}
	}

	return nil
}

// FindByID resolves the order with denormalised address fields and items.
func (r *OrderRepository) FindByID(ctx context.Context, userID, orderID string) (domain.Order, error) {
	q := r.db.Querier(ctx)

	row := q.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN addresses a ON a.id = o.address_id
		WHERE o.id = $1 AND o.user_id = $2`,
		orderID, userID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, repositories.NewNotFound(fmt.Sprintf("order %s", orderID))
		}
		return domain.Order{}, repositories.NewInternal("select order", err)
	}

	items, err := r.itemsByOrder(ctx, []string{order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// List returns the user's orders newest first, each with its items, plus the
// total count for pagination.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) (domain.Page[domain.Order], error) {
	var page domain.Page[domain.Order]

	conditions := []string{"o.user_id = $1"}
	args := []any{filter.UserID}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("o.order_status = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	q := r.db.Querier(ctx)

	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM orders o `+where, args...).Scan(&page.Total); err != nil {
		return page, repositories.NewInternal("count orders", err)
	}

	args = append(args, filter.Pagination.Limit, filter.Pagination.Offset())
	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN addresses a ON a.id = o.address_id `+where+`
		ORDER BY o.created_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...)
	if err != nil {
		return page, repositories.NewInternal("select orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var orderIDs []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return page, repositories.NewInternal("scan order", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return page, repositories.NewInternal("iterate orders", err)
	}

	if len(orderIDs) > 0 {
		items, err := r.itemsByOrder(ctx, orderIDs)
		if err != nil {
			return page, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}

	page.Items = orders
	page.Page = filter.Pagination.Page
	page.Limit = filter.Pagination.Limit
	return page, nil
}

// UpdateStatus transitions order_status. With allowedFrom the UPDATE carries
// the expected current statuses in its WHERE clause, so under READ COMMITTED
// a concurrent writer that commits first makes this one match zero rows
// instead of silently overwriting.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, allowedFrom ...domain.OrderStatus) error {
	q := r.db.Querier(ctx)

	query := `
		UPDATE orders
		SET order_status = $1, updated_at = now()
		WHERE id = $2`
	args := []any{string(status), orderID}
	if len(allowedFrom) > 0 {
		from := make([]string, len(allowedFrom))
		for i, s := range allowedFrom {
			from[i] = string(s)
		}
		query += ` AND order_status = ANY($3)`
		args = append(args, from)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return wrapWriteError("update order status", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = q.QueryRow(ctx, `SELECT order_status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.NewNotFound(fmt.Sprintf("order %s", orderID))
	}
	if err != nil {
		return repositories.NewInternal("select order status", err)
	}
	return repositories.NewConflict(fmt.Sprintf("order %s is %s", orderID, current), nil)
}

func (r *OrderRepository) itemsByOrder(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
			oi.selected_size, oi.selected_color, oi.created_at,
			p.name, p.images
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.created_at`,
		orderIDs)
	if err != nil {
		return nil, repositories.NewInternal("select order items", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&item.SelectedSize, &item.SelectedColor, &item.CreatedAt,
			&item.ProductName, &item.ProductImages,
		)
		if err != nil {
			return nil, repositories.NewInternal("scan order item", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewInternal("iterate order items", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o             domain.Order
		paymentMethod string
		paymentStatus string
		orderStatus   string
		addr          domain.Address
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.AddressID, &o.TotalAmount, &o.DeliveryCharge,
		&paymentMethod, &paymentStatus, &orderStatus, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
		&addr.Name, &addr.Phone, &addr.AddressLine1, &addr.AddressLine2,
		&addr.City, &addr.State, &addr.Pincode,
	)
	if err != nil {
		return domain.Order{}, err
	}

	status, err := domain.ParseOrderStatus(orderStatus)
	if err != nil {
		return domain.Order{}, err
	}

	o.PaymentMethod = domain.PaymentMethod(paymentMethod)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	o.Status = status

	addr.ID = o.AddressID
	addr.UserID = o.UserID
	o.Address = &addr

	return o, nil
}
