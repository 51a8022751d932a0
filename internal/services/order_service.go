package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrDeletionReasonRequired = errors.New("a deletion justification is required")
	ErrOrderNotCancellable    = errors.New("only preparing orders can be cancelled")
)

// --- OrderService Interface ---

// OrderService backs the orders dashboard: read-only aggregation plus the
// cancel and admin-delete transitions. Completing an order goes through
// POSService.ValidateOrder so the payment step has exactly one code path.
type OrderService interface {
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	CancelOrder(orderID int64) (*models.Order, error)
	DeleteOrder(orderID int64, reason string, deletedBy int64) error
	GetDeletedOrders(limit int) ([]models.DeletedOrder, error)
}

// --- orderService Implementation ---

type orderService struct {
	orderRepo   repositories.OrderRepository
	tableRepo   repositories.TableRepository
	deletedRepo repositories.DeletedOrderRepository
	db          repositories.TxBeginner
	publisher   events.Publisher
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	tr repositories.TableRepository,
	dr repositories.DeletedOrderRepository,
	db repositories.TxBeginner,
	publisher events.Publisher,
) OrderService {
	return &orderService{
		orderRepo:   or,
		tableRepo:   tr,
		deletedRepo: dr,
		db:          db,
		publisher:   publisher,
	}
}

// --- Method Implementations ---

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.OrderItems = items
	return order, nil
}

// CancelOrder transitions a preparing order to cancelled and frees its table.
func (s *orderService) CancelOrder(orderID int64) (*models.Order, error) {
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
		return nil, fmt.Errorf("fetching order for cancellation: %w", err)
	}
	if order.Status != models.OrderStatusPreparing {
		return nil, ErrOrderNotCancellable
	}

	now := time.Now()
	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, models.OrderStatusCancelled, now); err != nil {
		return nil, fmt.Errorf("cancelling order: %w", err)
	}
	if order.TableID != nil {
		if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, models.TableStatusAvailable, now); err != nil {
			return nil, fmt.Errorf("freeing table on cancel: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cancellation: %w", err)
	}

	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = now

	if err := s.publisher.Publish(events.OrderCancelled, order); err != nil {
		utils.LogError(err, "CancelOrder: failed to publish order event")
	}
	return order, nil
}

// DeleteOrder hard-deletes an order, admin only. The archive row is written
// in the same transaction as the delete, so an archival failure aborts the
// whole operation and the order survives.
func (s *orderService) DeleteOrder(orderID int64, reason string, deletedBy int64) error {
	if utils.IsEmpty(reason) {
		return ErrDeletionReasonRequired
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("fetching order for deletion: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return fmt.Errorf("fetching items for archive snapshot: %w", err)
	}
	snapshot, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling archive snapshot: %w", err)
	}

	archive := &models.DeletedOrder{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		ItemsSnapshot: string(snapshot),
		Total:         order.Total,
		Reason:        reason,
		DeletedBy:     deletedBy,
		DeletedAt:     time.Now(),
	}
	if err := s.deletedRepo.CreateArchive(tx, archive); err != nil {
		return fmt.Errorf("archiving order before delete: %w", err)
	}

	if _, err := s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	// A preparing order still holds its table.
	if order.Status == models.OrderStatusPreparing && order.TableID != nil {
		if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, models.TableStatusAvailable, archive.DeletedAt); err != nil {
			return fmt.Errorf("freeing table on delete: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order deletion: %w", err)
	}

	if err := s.publisher.Publish(events.OrderDeleted, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"deleted_by":   deletedBy,
	}); err != nil {
		utils.LogError(err, "DeleteOrder: failed to publish order event")
	}
	return nil
}

func (s *orderService) GetDeletedOrders(limit int) ([]models.DeletedOrder, error) {
	archives, err := s.deletedRepo.GetArchives(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get deleted order archives: %w", err)
	}
	return archives, nil
}
