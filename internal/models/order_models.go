package models

import "time"

// Order statuses.
const (
	OrderStatusPreparing = "preparing"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment methods.
const (
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodDigital = "digital"
)

// Service types.
const (
	ServiceTypeDineIn   = "dine_in"
	ServiceTypeTakeaway = "takeaway"
)

// Order represents a persisted order. PaymentMethod stays NULL while the
// order is still preparing and is set only at validation time.
type Order struct {
	ID             int64     `json:"id" db:"id"`
	OrderNumber    int64     `json:"order_number" db:"order_number"`
	Status         string    `json:"status" db:"status"`
	Total          float64   `json:"total" db:"total"`
	PaymentMethod  *string   `json:"payment_method,omitempty" db:"payment_method"`
	ServiceType    string    `json:"service_type" db:"service_type"`
	TableID        *int64    `json:"table_id,omitempty" db:"table_id"`
	EmployeeID     int64     `json:"employee_id" db:"employee_id"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty" db:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	// Joined data, populated by list queries.
	EmployeeName *string          `json:"employee_name,omitempty"`
	TableName    *string          `json:"table_name,omitempty"`
	OrderItems   []OrderItem      `json:"order_items,omitempty"`
	Table        *RestaurantTable `json:"table,omitempty"`
}

// OrderItem is one line of an order. Product name, size name and unit price
// are captured at insert time and never re-derived from the catalog.
type OrderItem struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"order_id" db:"order_id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	SizeID      *int64    `json:"size_id,omitempty" db:"size_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	SizeName    *string   `json:"size_name,omitempty" db:"size_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	Subtotal    float64   `json:"subtotal" db:"subtotal"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	EmployeeID *int64  `form:"employee_id"`
	TableID    *int64  `form:"table_id"`
	Status     *string `form:"status"`
	Date       *string `form:"date"` // Expected format YYYY-MM-DD
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}

// DeletedOrder is the append-only archive row written before an order is
// hard-deleted. ItemsSnapshot holds a JSON copy of the order lines.
type DeletedOrder struct {
	ID            string    `json:"id" db:"id"`
	OrderID       int64     `json:"order_id" db:"order_id"`
	OrderNumber   int64     `json:"order_number" db:"order_number"`
	ItemsSnapshot string    `json:"items_snapshot" db:"items_snapshot"`
	Total         float64   `json:"total" db:"total"`
	Reason        string    `json:"reason" db:"reason"`
	DeletedBy     int64     `json:"deleted_by" db:"deleted_by"`
	DeletedAt     time.Time `json:"deleted_at" db:"deleted_at"`
}
