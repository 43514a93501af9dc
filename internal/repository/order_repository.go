package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderStatusChanged means the order no longer has the expected status.
	ErrOrderStatusChanged = errors.New("order status changed")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create persists the order and all of its items in one transaction.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	// UpdateStatus sets the status to `to` only while it is still `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	// Delete removes the order and its items in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderSelect = `
	SELECT o.id, o.shipping_address1, o.shipping_address2, o.city, o.postcode, o.country, o.phone,
		o.status, o.total_price, o.user_id, o.date_ordered, u.id, u.name
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id
`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, shipping_address1, shipping_address2, city, postcode, country, phone,
			status, total_price, user_id, date_ordered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		order.ID,
		order.ShippingAddress1,
		order.ShippingAddress2,
		order.City,
		order.Postcode,
		order.Country,
		order.Phone,
		order.Status,
		order.TotalPrice,
		order.UserID,
		order.DateOrdered,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i, item := range order.OrderItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, line_no)
			VALUES ($1, $2, $3, $4, $5)
		`,
			item.ID,
			order.ID,
			item.ProductID,
			item.Quantity,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		item.OrderID = order.ID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its user and items populated
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+`WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves all orders, newest first
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.queryOrders(ctx, orderSelect+`ORDER BY o.date_ordered DESC`)
}

// ListByUser retrieves the orders placed by userID, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return r.queryOrders(ctx, orderSelect+`WHERE o.user_id = $1 ORDER BY o.date_ordered DESC`, userID)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrOrderStatusChanged
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err := requireAffected(result, ErrOrderNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}

	return nil
}

func (r *orderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// TotalSales sums total_price over every order; zero when there are none.
func (r *orderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute total sales: %w", err)
	}
	return total, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// loadItems fetches the items of every order in a single query, with each
// item's product and that product's category populated.
func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		order.OrderItems = []*domain.OrderItem{}
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, ` + productColumns + `, ` + categoryColumns + `
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.line_no
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(ids))
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.OrderItem{}
		var product nullProduct
		var category nullCategory

		dest := []interface{}{&item.ID, &item.OrderID, &item.ProductID, &item.Quantity}
		dest = append(dest, product.dest()...)
		dest = append(dest, category.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if item.Product = product.product(); item.Product != nil {
			item.Product.Category = category.category()
		}

		if order, ok := byID[item.OrderID]; ok {
			order.OrderItems = append(order.OrderItems, item)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var userID uuid.NullUUID
	var userName sql.NullString

	err := row.Scan(
		&order.ID,
		&order.ShippingAddress1,
		&order.ShippingAddress2,
		&order.City,
		&order.Postcode,
		&order.Country,
		&order.Phone,
		&order.Status,
		&order.TotalPrice,
		&order.UserID,
		&order.DateOrdered,
		&userID,
		&userName,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		order.User = &domain.UserSummary{ID: userID.UUID, Name: userName.String}
	}

	return order, nil
}
