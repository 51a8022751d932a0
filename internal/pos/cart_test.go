package pos

import (
	"testing"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCartStore_AddItemMergesMatchingLines(t *testing.T) {
	store := NewCartStore()

	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, ProductName: "Espresso", Quantity: 1, UnitPrice: 2.50}))
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, ProductName: "Espresso", Quantity: 2, UnitPrice: 2.50}))

	cart := store.Snapshot(1)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 7.50, cart.Total())
}

func TestCartStore_AddItemKeepsDistinctSizesApart(t *testing.T) {
	store := NewCartStore()

	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, Quantity: 1, UnitPrice: 2.50}))
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, SizeID: int64Ptr(4), Quantity: 1, UnitPrice: 3.00}))

	cart := store.Snapshot(1)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 5.50, cart.Total())
}

func TestCartStore_AddItemRejectsZeroQuantity(t *testing.T) {
	store := NewCartStore()
	err := store.AddItem(1, CartItem{ProductID: 10, Quantity: 0, UnitPrice: 2.50})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartStore_RemoveAndSetQuantity(t *testing.T) {
	store := NewCartStore()
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, Quantity: 1, UnitPrice: 2.00}))
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 11, Quantity: 1, UnitPrice: 5.00}))

	require.NoError(t, store.SetQuantity(1, 1, 4))
	cart := store.Snapshot(1)
	assert.Equal(t, 22.00, cart.Total())

	require.NoError(t, store.RemoveItem(1, 0))
	cart = store.Snapshot(1)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(11), cart.Items[0].ProductID)

	assert.ErrorIs(t, store.RemoveItem(1, 5), ErrItemIndexOutOfRange)
	assert.ErrorIs(t, store.SetQuantity(1, 0, 0), ErrInvalidQuantity)
}

func TestCartStore_ServiceTypeAndTable(t *testing.T) {
	store := NewCartStore()

	// Selecting a table implies dine-in.
	store.SetTable(1, int64Ptr(7))
	cart := store.Snapshot(1)
	assert.Equal(t, models.ServiceTypeDineIn, cart.ServiceType)
	require.NotNil(t, cart.TableID)
	assert.Equal(t, int64(7), *cart.TableID)

	// Switching to takeaway drops the table.
	require.NoError(t, store.SetServiceType(1, models.ServiceTypeTakeaway))
	cart = store.Snapshot(1)
	assert.Nil(t, cart.TableID)

	assert.ErrorIs(t, store.SetServiceType(1, "delivery"), ErrInvalidServiceType)
}

func TestCartStore_ResetRestoresDefaults(t *testing.T) {
	store := NewCartStore()
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, Quantity: 2, UnitPrice: 3.50}))
	store.SetTable(1, int64Ptr(3))
	store.SetActiveOrder(1, int64Ptr(99))

	store.Reset(1)

	cart := store.Snapshot(1)
	assert.Empty(t, cart.Items)
	assert.Nil(t, cart.TableID)
	assert.Nil(t, cart.ActiveOrderID)
	assert.Equal(t, models.ServiceTypeTakeaway, cart.ServiceType)
}

func TestCartStore_ClearItemsKeepsBindings(t *testing.T) {
	store := NewCartStore()
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, Quantity: 2, UnitPrice: 3.50}))
	store.SetTable(1, int64Ptr(3))
	store.SetActiveOrder(1, int64Ptr(99))

	store.ClearItems(1)

	cart := store.Snapshot(1)
	assert.Empty(t, cart.Items)
	require.NotNil(t, cart.ActiveOrderID)
	assert.Equal(t, int64(99), *cart.ActiveOrderID)
	require.NotNil(t, cart.TableID)
}

func TestCartStore_CartsAreIsolatedPerEmployee(t *testing.T) {
	store := NewCartStore()
	require.NoError(t, store.AddItem(1, CartItem{ProductID: 10, Quantity: 1, UnitPrice: 2.00}))
	require.NoError(t, store.AddItem(2, CartItem{ProductID: 20, Quantity: 1, UnitPrice: 9.00}))

	assert.Equal(t, 2.00, store.Snapshot(1).Total())
	assert.Equal(t, 9.00, store.Snapshot(2).Total())
}
