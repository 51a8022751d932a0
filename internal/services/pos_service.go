package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/pos"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/google/uuid"
)

// Custom Errors
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrTableRequired        = errors.New("dine-in orders require a table")
	ErrTableNotFound        = errors.New("table not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPreparing    = errors.New("order is no longer in preparing status")
	ErrAlreadyValidated     = errors.New("order was already validated with a different payment method")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// --- Data Transfer Objects (DTOs) ---

// PendingValidation describes a confirmed-but-unpaid order. It is handed
// back to the register so the cashier can pick a payment method, or defer.
type PendingValidation struct {
	OrderID     int64              `json:"order_id"`
	OrderNumber int64              `json:"order_number"`
	ServiceType string             `json:"service_type"`
	TableID     *int64             `json:"table_id,omitempty"`
	Items       []models.OrderItem `json:"items"`
	Total       float64            `json:"total"`
	Replayed    bool               `json:"replayed,omitempty"`
}

// ValidatedOrder is the outcome of assigning a payment method: the completed
// order plus everything the ticket needs.
type ValidatedOrder struct {
	Order       *models.Order      `json:"order"`
	Items       []models.OrderItem `json:"items"`
	CashierName string             `json:"cashier_name"`
}

// TableSelection is the floor view's answer when a table is tapped: either
// the table is free (and now bound to the cart), or its open orders are
// offered for resume/validate.
type TableSelection struct {
	Table           *models.RestaurantTable `json:"table"`
	OpenOrders      []models.Order          `json:"open_orders"`
	StatusNormalize bool                    `json:"status_normalized,omitempty"`
}

// --- POSService Interface ---

// POSService drives the order lifecycle: cart to preparing order, preparing
// order to completed-with-payment, and the floor-view table flow. Both the
// register and the floor view share ValidateOrder.
type POSService interface {
	Checkout(employeeID int64, idempotencyKey string) (*PendingValidation, error)
	ValidateOrder(orderID int64, paymentMethod string, employeeID int64) (*ValidatedOrder, error)
	DeferValidation(employeeID int64)
	SelectTable(employeeID, tableID int64) (*TableSelection, error)
	ResumeOrder(employeeID, orderID int64) (*PendingValidation, error)
}

// --- posService Implementation ---

type posService struct {
	orderRepo    repositories.OrderRepository
	tableRepo    repositories.TableRepository
	employeeRepo repositories.EmployeeRepository
	carts        *pos.CartStore
	db           repositories.TxBeginner
	publisher    events.Publisher
}

// NewPOSService creates a new instance of POSService.
func NewPOSService(
	or repositories.OrderRepository,
	tr repositories.TableRepository,
	er repositories.EmployeeRepository,
	carts *pos.CartStore,
	db repositories.TxBeginner,
	publisher events.Publisher,
) POSService {
	return &posService{
		orderRepo:    or,
		tableRepo:    tr,
		employeeRepo: er,
		carts:        carts,
		db:           db,
		publisher:    publisher,
	}
}

// --- Method Implementations ---

// Checkout turns the employee's cart into persisted order rows. Without an
// active order it creates one in preparing status; with one it appends the
// batch and bumps the running total. All writes share one transaction, so a
// failure partway leaves nothing behind.
func (s *posService) Checkout(employeeID int64, idempotencyKey string) (*PendingValidation, error) {
	// A replayed key means this exact submission already went through;
	// return the order it produced instead of writing twice. The lookup
	// has to run before any cart validation: a successful checkout clears
	// the cart, so a genuine retry arrives with an empty one.
	if idempotencyKey != "" {
		existing, err := s.orderRepo.GetOrderByIdempotencyKey(idempotencyKey)
		if err == nil {
			return s.pendingFromOrder(existing, true)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("checking idempotency key: %w", err)
		}
	} else {
		idempotencyKey = uuid.NewString()
	}

	cart := s.carts.Snapshot(employeeID)

	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if cart.ServiceType == models.ServiceTypeDineIn && cart.TableID == nil {
		return nil, ErrTableRequired
	}

	batchItems := make([]models.OrderItem, 0, len(cart.Items))
	var batchTotal float64
	for _, line := range cart.Items {
		subtotal := line.Subtotal()
		batchTotal += subtotal
		batchItems = append(batchItems, models.OrderItem{
			ProductID:   line.ProductID,
			SizeID:      line.SizeID,
			ProductName: line.ProductName,
			SizeName:    line.SizeName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    subtotal,
			Notes:       models.NewNullString(line.Notes),
		})
	}
	batchTotal = round2(batchTotal)

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var order *models.Order
	now := time.Now()

	if cart.ActiveOrderID != nil {
		order, err = s.orderRepo.GetOrderForUpdate(tx, *cart.ActiveOrderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("fetching active order: %w", err)
		}
		if order.Status != models.OrderStatusPreparing {
			return nil, ErrOrderNotPreparing
		}

		for i := range batchItems {
			batchItems[i].OrderID = order.ID
			if _, err := s.orderRepo.CreateOrderItem(tx, &batchItems[i]); err != nil {
				return nil, fmt.Errorf("appending order item: %w", err)
			}
		}

		order.Total = round2(order.Total + batchTotal)
		if err := s.orderRepo.UpdateOrderTotal(tx, order.ID, order.Total, now); err != nil {
			return nil, fmt.Errorf("updating order total: %w", err)
		}

		// Re-assert occupancy; cheap when already occupied and repairs a
		// drifted status.
		if order.TableID != nil {
			if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, models.TableStatusOccupied, now); err != nil {
				return nil, fmt.Errorf("re-asserting table occupancy: %w", err)
			}
		}
	} else {
		order = &models.Order{
			Status:         models.OrderStatusPreparing,
			Total:          batchTotal,
			ServiceType:    cart.ServiceType,
			EmployeeID:     employeeID,
			IdempotencyKey: &idempotencyKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if cart.ServiceType == models.ServiceTypeDineIn {
			order.TableID = cart.TableID
		}

		if _, err := s.orderRepo.CreateOrder(tx, order); err != nil {
			return nil, fmt.Errorf("creating order: %w", err)
		}

		for i := range batchItems {
			batchItems[i].OrderID = order.ID
			if _, err := s.orderRepo.CreateOrderItem(tx, &batchItems[i]); err != nil {
				return nil, fmt.Errorf("creating order item: %w", err)
			}
		}

		if order.TableID != nil {
			if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, models.TableStatusOccupied, now); err != nil {
				return nil, fmt.Errorf("marking table occupied: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	// The batch is persisted; the cart keeps its table and service type and
	// now points at the order so further batches append to it. Items are
	// cleared only after the commit succeeded.
	orderID := order.ID
	s.carts.ClearItems(employeeID)
	s.carts.SetActiveOrder(employeeID, &orderID)

	routingKey := events.OrderCreated
	if cart.ActiveOrderID != nil {
		routingKey = events.OrderUpdated
	}
	if err := s.publisher.Publish(routingKey, order); err != nil {
		utils.LogError(err, "Checkout: failed to publish order event")
	}

	return s.pendingFromOrder(order, false)
}

// ValidateOrder assigns a payment method and completes the order. The status
// flip is a compare-and-swap on preparing, so two cashiers validating the
// same order cannot complete it twice: a replay with the same method is an
// idempotent success, a different method is a conflict.
func (s *posService) ValidateOrder(orderID int64, paymentMethod string, employeeID int64) (*ValidatedOrder, error) {
	if !isValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, paymentMethod)
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order for validation: %w", err)
	}

	switch order.Status {
	case models.OrderStatusPreparing:
		// proceed below
	case models.OrderStatusCompleted:
		if order.PaymentMethod != nil && *order.PaymentMethod == paymentMethod {
			return s.validatedFromOrder(order) // idempotent replay
		}
		return nil, ErrAlreadyValidated
	default:
		return nil, ErrOrderNotPreparing
	}

	now := time.Now()
	swapped, err := s.orderRepo.CompleteOrder(tx, orderID, paymentMethod, now)
	if err != nil {
		return nil, fmt.Errorf("completing order: %w", err)
	}
	if !swapped {
		return nil, ErrAlreadyValidated
	}

	if order.TableID != nil {
		if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, models.TableStatusAvailable, now); err != nil {
			return nil, fmt.Errorf("freeing table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing validation: %w", err)
	}

	order.Status = models.OrderStatusCompleted
	order.PaymentMethod = &paymentMethod
	order.UpdatedAt = now

	// Drop the validating employee's binding to this order, if any.
	if cart := s.carts.Snapshot(employeeID); cart.ActiveOrderID != nil && *cart.ActiveOrderID == orderID {
		s.carts.Reset(employeeID)
	}

	if err := s.publisher.Publish(events.OrderCompleted, order); err != nil {
		utils.LogError(err, "ValidateOrder: failed to publish order event")
	}
	if order.TableID != nil {
		if err := s.publisher.Publish(events.TableUpdated, map[string]interface{}{"table_id": *order.TableID, "status": models.TableStatusAvailable}); err != nil {
			utils.LogError(err, "ValidateOrder: failed to publish table event")
		}
	}

	return s.validatedFromOrder(order)
}

// DeferValidation leaves the order preparing and unpaid but puts the cart
// back to its defaults, dropping the active-order binding. The order can be
// rediscovered later from the floor view.
func (s *posService) DeferValidation(employeeID int64) {
	s.carts.Reset(employeeID)
}

// SelectTable serves the floor view. With no open orders the table is bound
// to the cart for dine-in, repairing a drifted occupied status on the way;
// otherwise the open orders are returned so the cashier can resume or
// validate one.
func (s *posService) SelectTable(employeeID, tableID int64) (*TableSelection, error) {
	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("fetching table: %w", err)
	}

	openOrders, err := s.orderRepo.GetPreparingOrdersByTable(tableID)
	if err != nil {
		return nil, fmt.Errorf("fetching open orders for table: %w", err)
	}

	selection := &TableSelection{Table: table, OpenOrders: openOrders}

	if len(openOrders) == 0 {
		if table.Status == models.TableStatusOccupied {
			// Occupied with no backing preparing order: the status drifted,
			// re-derive it from the live orders.
			tx, err := s.db.BeginTx()
			if err != nil {
				return nil, err
			}
			defer tx.Rollback()

			now := time.Now()
			if err := s.tableRepo.UpdateTableStatus(tx, tableID, models.TableStatusAvailable, now); err != nil {
				return nil, fmt.Errorf("normalizing table status: %w", err)
			}
			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("committing table normalization: %w", err)
			}
			table.Status = models.TableStatusAvailable
			selection.StatusNormalize = true

			if err := s.publisher.Publish(events.TableUpdated, map[string]interface{}{"table_id": tableID, "status": models.TableStatusAvailable}); err != nil {
				utils.LogError(err, "SelectTable: failed to publish table event")
			}
		}
		id := tableID
		s.carts.SetTable(employeeID, &id)
	}

	return selection, nil
}

// ResumeOrder re-hydrates the cart's active-order binding from a preparing
// order discovered on the floor view, so further batches append to it.
func (s *posService) ResumeOrder(employeeID, orderID int64) (*PendingValidation, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order to resume: %w", err)
	}
	if order.Status != models.OrderStatusPreparing {
		return nil, ErrOrderNotPreparing
	}

	id := order.ID
	s.carts.SetActiveOrder(employeeID, &id)
	if order.TableID != nil {
		tableID := *order.TableID
		s.carts.SetTable(employeeID, &tableID)
	}

	return s.pendingFromOrder(order, false)
}

// --- helpers ---

func (s *posService) pendingFromOrder(order *models.Order, replayed bool) (*PendingValidation, error) {
	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching order items: %w", err)
	}
	return &PendingValidation{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ServiceType: order.ServiceType,
		TableID:     order.TableID,
		Items:       items,
		Total:       order.Total,
		Replayed:    replayed,
	}, nil
}

func (s *posService) validatedFromOrder(order *models.Order) (*ValidatedOrder, error) {
	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching order items for ticket: %w", err)
	}

	cashierName := ""
	if employee, err := s.employeeRepo.GetEmployeeByID(order.EmployeeID); err == nil {
		cashierName = employee.FullName
	}

	return &ValidatedOrder{Order: order, Items: items, CashierName: cashierName}, nil
}

func isValidPaymentMethod(method string) bool {
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodDigital:
		return true
	default:
		return false
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
