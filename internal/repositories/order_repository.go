package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOrderByIdempotencyKey(key string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error) // orders, total count, error
	GetPreparingOrdersByTable(tableID int64) ([]models.Order, error)
	UpdateOrderTotal(executor SQLExecutor, orderID int64, newTotal float64, updatedAt time.Time) error
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error
	// CompleteOrder flips status preparing -> completed and sets the payment
	// method in one compare-and-swap update. Returns false when no preparing
	// row matched.
	CompleteOrder(executor SQLExecutor, orderID int64, paymentMethod string, updatedAt time.Time) (bool, error)
	SumCompletedTotals(employeeID int64, from, to time.Time) (float64, error)
	DeleteOrder(executor SQLExecutor, orderID int64) (int64, error)

	// OrderItem methods
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, status, total, payment_method, service_type,
	                 table_id, employee_id, idempotency_key, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }, o *models.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.Total, &o.PaymentMethod, &o.ServiceType,
		&o.TableID, &o.EmployeeID, &o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt,
	)
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (status, total, payment_method, service_type, table_id, employee_id,
	             idempotency_key, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, order_number`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.Status, order.Total, order.PaymentMethod, order.ServiceType, order.TableID,
		order.EmployeeID, order.IdempotencyKey, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID, &order.OrderNumber)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w: creating order (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := scanOrder(r.db.QueryRow(query, orderID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

// GetOrderForUpdate reads an order with a row lock so a concurrent append or
// validation on the same order serializes behind this transaction.
func (r *orderRepository) GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	err := scanOrder(executor.QueryRow(query, orderID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByIdempotencyKey(key string) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`
	err := scanOrder(r.db.QueryRow(query, key), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by idempotency key: %v", ErrDatabaseError, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.order_number, o.status, o.total, o.payment_method, o.service_type,
            o.table_id, o.employee_id, o.idempotency_key, o.created_at, o.updated_at,
            e.full_name as employee_name,
            rt.name as table_name,
            COUNT(*) OVER() as total_count
        FROM orders o
        LEFT JOIN employees e ON o.employee_id = e.id
        LEFT JOIN restaurant_tables rt ON o.table_id = rt.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("o.employee_id = $%d", argCounter))
		args = append(args, *filters.EmployeeID)
		argCounter++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("o.created_at BETWEEN $%d AND $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var employeeName, tableName sql.NullString

		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.Status, &o.Total, &o.PaymentMethod, &o.ServiceType,
			&o.TableID, &o.EmployeeID, &o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt,
			&employeeName, &tableName,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}

		if employeeName.Valid {
			name := employeeName.String
			o.EmployeeName = &name
		}
		if tableName.Valid {
			name := tableName.String
			o.TableName = &name
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

// GetPreparingOrdersByTable returns the open orders attached to a table,
// oldest first. Used by the floor view to offer resume/validate and to
// re-derive a drifted table status.
func (r *orderRepository) GetPreparingOrdersByTable(tableID int64) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + `
	          FROM orders
	          WHERE table_id = $1 AND status = $2
	          ORDER BY created_at ASC`

	rows, err := r.db.Query(query, tableID, models.OrderStatusPreparing)
	if err != nil {
		return nil, fmt.Errorf("%w: querying preparing orders for table %d: %v", ErrDatabaseError, tableID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("%w: scanning preparing order for table %d: %v", ErrDatabaseError, tableID, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating preparing orders for table %d: %v", ErrDatabaseError, tableID, err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderTotal(executor SQLExecutor, orderID int64, newTotal float64, updatedAt time.Time) error {
	query := `UPDATE orders SET total = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newTotal, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order total for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order total update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newStatus, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) CompleteOrder(executor SQLExecutor, orderID int64, paymentMethod string, updatedAt time.Time) (bool, error) {
	query := `UPDATE orders SET status = $1, payment_method = $2, updated_at = $3
	          WHERE id = $4 AND status = $5`
	result, err := executor.Exec(query, models.OrderStatusCompleted, paymentMethod, updatedAt, orderID, models.OrderStatusPreparing)
	if err != nil {
		return false, fmt.Errorf("%w: completing order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for completing order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) SumCompletedTotals(employeeID int64, from, to time.Time) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(total), 0)
	          FROM orders
	          WHERE employee_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4`
	err := r.db.QueryRow(query, employeeID, models.OrderStatusCompleted, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing completed totals for employee %d: %v", ErrDatabaseError, employeeID, err)
	}
	return total, nil
}

func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID int64) (int64, error) {
	// order_items rows go with it via ON DELETE CASCADE
	query := `DELETE FROM orders WHERE id = $1`
	result, err := executor.Exec(query, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return 0, ErrNotFound
	}
	return rowsAffected, nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	            (order_id, product_id, size_id, product_name, size_name, quantity,
	             unit_price, subtotal, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.OrderID, item.ProductID, item.SizeID, item.ProductName, item.SizeName,
		item.Quantity, item.UnitPrice, item.Subtotal, item.Notes, item.CreatedAt,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, order_id, product_id, size_id, product_name, size_name,
	                 quantity, unit_price, subtotal, notes, created_at
	          FROM order_items
	          WHERE order_id = $1
	          ORDER BY id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.SizeID, &item.ProductName,
			&item.SizeName, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.Notes,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}
