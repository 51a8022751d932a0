package services

import (
	"errors"
	"testing"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	service     OrderService
	orderRepo   *fakeOrderRepo
	tableRepo   *fakeTableRepo
	deletedRepo *fakeDeletedOrderRepo
	db          *fakeTxBeginner
}

func newOrderFixture(tables ...models.RestaurantTable) *orderFixture {
	orderRepo := newFakeOrderRepo()
	tableRepo := newFakeTableRepo(tables...)
	deletedRepo := &fakeDeletedOrderRepo{}
	db := &fakeTxBeginner{}
	return &orderFixture{
		service:     NewOrderService(orderRepo, tableRepo, deletedRepo, db, events.NewNopPublisher()),
		orderRepo:   orderRepo,
		tableRepo:   tableRepo,
		deletedRepo: deletedRepo,
		db:          db,
	}
}

func seedDineInOrder(f *orderFixture, tableID int64) *models.Order {
	order := f.orderRepo.put(models.Order{
		Status:      models.OrderStatusPreparing,
		Total:       12.00,
		ServiceType: models.ServiceTypeDineIn,
		TableID:     &tableID,
		EmployeeID:  7,
	})
	f.orderRepo.items[order.ID] = []models.OrderItem{
		{ID: 1, OrderID: order.ID, ProductID: 1, ProductName: "Espresso", Quantity: 2, UnitPrice: 2.50, Subtotal: 5.00},
		{ID: 2, OrderID: order.ID, ProductID: 2, ProductName: "Cheesecake", Quantity: 1, UnitPrice: 7.00, Subtotal: 7.00},
	}
	return order
}

func TestCancelOrderFreesTable(t *testing.T) {
	f := newOrderFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	order := seedDineInOrder(f, 3)

	cancelled, err := f.service.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	stored, err := f.orderRepo.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)

	table, err := f.tableRepo.GetTableByID(3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}

func TestCancelOrderRejectsCompleted(t *testing.T) {
	f := newOrderFixture()
	method := models.PaymentMethodCash
	order := f.orderRepo.put(models.Order{Status: models.OrderStatusCompleted, PaymentMethod: &method, ServiceType: models.ServiceTypeTakeaway, EmployeeID: 7})

	_, err := f.service.CancelOrder(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestCancelOrderNotFound(t *testing.T) {
	f := newOrderFixture()
	_, err := f.service.CancelOrder(999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteOrderRequiresReason(t *testing.T) {
	f := newOrderFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	order := seedDineInOrder(f, 3)

	err := f.service.DeleteOrder(order.ID, "   ", 1)
	assert.ErrorIs(t, err, ErrDeletionReasonRequired)

	_, err = f.orderRepo.GetOrderByID(order.ID)
	assert.NoError(t, err, "the order must survive a rejected delete")
}

func TestDeleteOrderArchivesSnapshot(t *testing.T) {
	f := newOrderFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	order := seedDineInOrder(f, 3)

	err := f.service.DeleteOrder(order.ID, "duplicate entry", 1)
	require.NoError(t, err)

	_, err = f.orderRepo.GetOrderByID(order.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.Len(t, f.deletedRepo.archives, 1)
	archive := f.deletedRepo.archives[0]
	assert.NotEmpty(t, archive.ID)
	assert.Equal(t, order.ID, archive.OrderID)
	assert.Equal(t, order.OrderNumber, archive.OrderNumber)
	assert.Equal(t, 12.00, archive.Total)
	assert.Equal(t, "duplicate entry", archive.Reason)
	assert.Equal(t, int64(1), archive.DeletedBy)
	assert.Contains(t, archive.ItemsSnapshot, "Espresso")
	assert.Contains(t, archive.ItemsSnapshot, "Cheesecake")

	table, err := f.tableRepo.GetTableByID(3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, table.Status, "a preparing order still holds its table")
}

func TestDeleteOrderAbortsWhenArchiveFails(t *testing.T) {
	f := newOrderFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	order := seedDineInOrder(f, 3)
	f.deletedRepo.createErr = errors.New("archive storage unavailable")

	err := f.service.DeleteOrder(order.ID, "duplicate entry", 1)
	require.Error(t, err)

	assert.False(t, f.db.lastTx().committed)
	assert.True(t, f.db.lastTx().rolledBack)
	_, err = f.orderRepo.GetOrderByID(order.ID)
	assert.NoError(t, err, "a failed archive must leave the order in place")

	table, err := f.tableRepo.GetTableByID(3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
}

func TestGetDeletedOrders(t *testing.T) {
	f := newOrderFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	order := seedDineInOrder(f, 3)

	require.NoError(t, f.service.DeleteOrder(order.ID, "test run", 1))

	archives, err := f.service.GetDeletedOrders(10)
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}
