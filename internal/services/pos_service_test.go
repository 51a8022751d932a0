package services

import (
	"testing"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/pos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type posFixture struct {
	service   POSService
	orderRepo *fakeOrderRepo
	tableRepo *fakeTableRepo
	carts     *pos.CartStore
	db        *fakeTxBeginner
}

func newPOSFixture(tables ...models.RestaurantTable) *posFixture {
	orderRepo := newFakeOrderRepo()
	tableRepo := newFakeTableRepo(tables...)
	employeeRepo := newFakeEmployeeRepo(models.Employee{ID: 7, Username: "maria", FullName: "Maria Lopez", Role: models.RoleCashier, Active: true})
	carts := pos.NewCartStore()
	db := &fakeTxBeginner{}

	return &posFixture{
		service:   NewPOSService(orderRepo, tableRepo, employeeRepo, carts, db, events.NewNopPublisher()),
		orderRepo: orderRepo,
		tableRepo: tableRepo,
		carts:     carts,
		db:        db,
	}
}

func espresso(qty int) pos.CartItem {
	return pos.CartItem{ProductID: 1, ProductName: "Espresso", Quantity: qty, UnitPrice: 2.50}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newPOSFixture()

	_, err := f.service.Checkout(7, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.db.txs, "nothing should be written")
}

func TestCheckoutDineInWithoutTable(t *testing.T) {
	f := newPOSFixture()
	require.NoError(t, f.carts.AddItem(7, espresso(1)))
	require.NoError(t, f.carts.SetServiceType(7, models.ServiceTypeDineIn))

	_, err := f.service.Checkout(7, "")
	assert.ErrorIs(t, err, ErrTableRequired)
	assert.Empty(t, f.orderRepo.orders, "no order row may exist after the rejection")
	assert.Empty(t, f.db.txs)
}

func TestCheckoutTakeawayCreatesOrder(t *testing.T) {
	f := newPOSFixture()
	require.NoError(t, f.carts.AddItem(7, espresso(2)))

	pending, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	assert.Nil(t, pending.TableID, "takeaway orders never reference a table")
	assert.InDelta(t, 5.00, pending.Total, 1e-9)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "Espresso", pending.Items[0].ProductName)
	assert.InDelta(t, 5.00, pending.Items[0].Subtotal, 1e-9)

	order, err := f.orderRepo.GetOrderByID(pending.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Nil(t, order.PaymentMethod, "payment method is chosen at validation, not checkout")
	assert.Empty(t, f.tableRepo.statusLog)
	assert.True(t, f.db.lastTx().committed)

	cart := f.carts.Snapshot(7)
	assert.Empty(t, cart.Items, "confirmed items leave the cart")
	require.NotNil(t, cart.ActiveOrderID)
	assert.Equal(t, pending.OrderID, *cart.ActiveOrderID)
}

func TestCheckoutDineInOccupiesTable(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Seats: 4, Status: models.TableStatusAvailable})
	require.NoError(t, f.carts.AddItem(7, espresso(2)))
	require.NoError(t, f.carts.AddItem(7, pos.CartItem{ProductID: 2, ProductName: "Cheesecake", Quantity: 1, UnitPrice: 7.00}))
	tableID := int64(3)
	f.carts.SetTable(7, &tableID)

	pending, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	assert.InDelta(t, 12.00, pending.Total, 1e-9)
	require.NotNil(t, pending.TableID)
	assert.Equal(t, int64(3), *pending.TableID)

	table, err := f.tableRepo.GetTableByID(3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
}

func TestCheckoutAppendsToActiveOrder(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusAvailable})
	tableID := int64(3)
	f.carts.SetTable(7, &tableID)
	require.NoError(t, f.carts.AddItem(7, espresso(2)))

	first, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	require.NoError(t, f.carts.AddItem(7, pos.CartItem{ProductID: 2, ProductName: "Cheesecake", Quantity: 1, UnitPrice: 7.00}))
	second, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID, "second batch appends to the same order")
	assert.InDelta(t, 12.00, second.Total, 1e-9)
	require.Len(t, second.Items, 2)
	assert.Len(t, f.orderRepo.orders, 1, "no second order row may appear")

	order, err := f.orderRepo.GetOrderByID(first.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.InDelta(t, 12.00, order.Total, 1e-9)
}

func TestCheckoutIdempotencyKeyReplay(t *testing.T) {
	f := newPOSFixture()
	require.NoError(t, f.carts.AddItem(7, espresso(2)))

	first, err := f.service.Checkout(7, "submission-1")
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	// The same submission arriving again (cart state notwithstanding) must
	// not produce a second order.
	require.NoError(t, f.carts.AddItem(7, espresso(2)))
	f.carts.SetActiveOrder(7, nil)

	replay, err := f.service.Checkout(7, "submission-1")
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.OrderID, replay.OrderID)
	assert.Len(t, f.orderRepo.orders, 1)
	items, _ := f.orderRepo.GetOrderItemsByOrderID(first.OrderID)
	assert.Len(t, items, 1, "the replay writes no items")
}

func TestCheckoutReplayAfterCartCleared(t *testing.T) {
	f := newPOSFixture()
	require.NoError(t, f.carts.AddItem(7, espresso(2)))

	first, err := f.service.Checkout(7, "submission-1")
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	// Checkout clears the cart, so a network retry of the same submission
	// arrives with an empty one. It must still get the original order back,
	// not an empty-cart rejection.
	replay, err := f.service.Checkout(7, "submission-1")
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.OrderID, replay.OrderID)
	assert.Equal(t, first.Total, replay.Total)
	assert.Len(t, f.orderRepo.orders, 1)
}

func TestCheckoutRejectsAppendToCompletedOrder(t *testing.T) {
	f := newPOSFixture()
	method := models.PaymentMethodCash
	done := f.orderRepo.put(models.Order{ID: 42, Status: models.OrderStatusCompleted, PaymentMethod: &method, ServiceType: models.ServiceTypeTakeaway, EmployeeID: 7})

	require.NoError(t, f.carts.AddItem(7, espresso(1)))
	f.carts.SetActiveOrder(7, &done.ID)

	_, err := f.service.Checkout(7, "")
	assert.ErrorIs(t, err, ErrOrderNotPreparing)
	items, _ := f.orderRepo.GetOrderItemsByOrderID(done.ID)
	assert.Empty(t, items)
}

func TestValidateOrderCompletesAndFreesTable(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusAvailable})
	tableID := int64(3)
	f.carts.SetTable(7, &tableID)
	require.NoError(t, f.carts.AddItem(7, espresso(2)))

	pending, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	validated, err := f.service.ValidateOrder(pending.OrderID, models.PaymentMethodCard, 7)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCompleted, validated.Order.Status)
	require.NotNil(t, validated.Order.PaymentMethod)
	assert.Equal(t, models.PaymentMethodCard, *validated.Order.PaymentMethod)
	assert.Equal(t, "Maria Lopez", validated.CashierName)

	table, err := f.tableRepo.GetTableByID(3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, table.Status)

	cart := f.carts.Snapshot(7)
	assert.Nil(t, cart.ActiveOrderID, "validation resets the cart binding")
	assert.Nil(t, cart.TableID)
	assert.Equal(t, models.ServiceTypeTakeaway, cart.ServiceType)
}

func TestValidateOrderIdempotentReplay(t *testing.T) {
	f := newPOSFixture()
	require.NoError(t, f.carts.AddItem(7, espresso(1)))
	pending, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	_, err = f.service.ValidateOrder(pending.OrderID, models.PaymentMethodCash, 7)
	require.NoError(t, err)

	// Same method again: idempotent success.
	replay, err := f.service.ValidateOrder(pending.OrderID, models.PaymentMethodCash, 7)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, replay.Order.Status)

	// Different method: conflict.
	_, err = f.service.ValidateOrder(pending.OrderID, models.PaymentMethodCard, 7)
	assert.ErrorIs(t, err, ErrAlreadyValidated)

	order, err := f.orderRepo.GetOrderByID(pending.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCash, *order.PaymentMethod, "the first payment method wins")
}

func TestValidateOrderRejectsUnknownMethod(t *testing.T) {
	f := newPOSFixture()
	_, err := f.service.ValidateOrder(1, "cheque", 7)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestValidateOrderNotFound(t *testing.T) {
	f := newPOSFixture()
	_, err := f.service.ValidateOrder(999, models.PaymentMethodCash, 7)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeferValidationResetsCart(t *testing.T) {
	f := newPOSFixture()
	require.NoError(t, f.carts.AddItem(7, espresso(1)))
	pending, err := f.service.Checkout(7, "")
	require.NoError(t, err)

	f.service.DeferValidation(7)

	cart := f.carts.Snapshot(7)
	assert.Nil(t, cart.ActiveOrderID)
	assert.Empty(t, cart.Items)

	// The order itself stays preparing and unpaid.
	order, err := f.orderRepo.GetOrderByID(pending.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Nil(t, order.PaymentMethod)
}

func TestSelectTableFreeBindsCart(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusAvailable})

	selection, err := f.service.SelectTable(7, 3)
	require.NoError(t, err)
	assert.Empty(t, selection.OpenOrders)
	assert.False(t, selection.StatusNormalize)

	cart := f.carts.Snapshot(7)
	require.NotNil(t, cart.TableID)
	assert.Equal(t, int64(3), *cart.TableID)
	assert.Equal(t, models.ServiceTypeDineIn, cart.ServiceType)
}

func TestSelectTableNormalizesDriftedStatus(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})

	selection, err := f.service.SelectTable(7, 3)
	require.NoError(t, err)
	assert.True(t, selection.StatusNormalize)
	assert.Equal(t, models.TableStatusAvailable, selection.Table.Status)

	table, err := f.tableRepo.GetTableByID(3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}

func TestSelectTableWithOpenOrders(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	tableID := int64(3)
	f.orderRepo.put(models.Order{Status: models.OrderStatusPreparing, ServiceType: models.ServiceTypeDineIn, TableID: &tableID, EmployeeID: 7, Total: 12.00})

	selection, err := f.service.SelectTable(7, 3)
	require.NoError(t, err)
	require.Len(t, selection.OpenOrders, 1)
	assert.Equal(t, models.TableStatusOccupied, selection.Table.Status, "a backed occupied status stays put")

	cart := f.carts.Snapshot(7)
	assert.Nil(t, cart.TableID, "the table is not bound while its orders are pending")
}

func TestSelectTableNotFound(t *testing.T) {
	f := newPOSFixture()
	_, err := f.service.SelectTable(7, 99)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestResumeOrder(t *testing.T) {
	f := newPOSFixture(models.RestaurantTable{ID: 3, Name: "T1", Status: models.TableStatusOccupied})
	tableID := int64(3)
	order := f.orderRepo.put(models.Order{Status: models.OrderStatusPreparing, ServiceType: models.ServiceTypeDineIn, TableID: &tableID, EmployeeID: 7, Total: 12.00})

	pending, err := f.service.ResumeOrder(7, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, pending.OrderID)

	cart := f.carts.Snapshot(7)
	require.NotNil(t, cart.ActiveOrderID)
	assert.Equal(t, order.ID, *cart.ActiveOrderID)
	require.NotNil(t, cart.TableID)
	assert.Equal(t, int64(3), *cart.TableID)
}

func TestResumeCompletedOrder(t *testing.T) {
	f := newPOSFixture()
	method := models.PaymentMethodCash
	order := f.orderRepo.put(models.Order{Status: models.OrderStatusCompleted, PaymentMethod: &method, ServiceType: models.ServiceTypeTakeaway, EmployeeID: 7})

	_, err := f.service.ResumeOrder(7, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotPreparing)
}
