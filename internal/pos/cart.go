// Package pos holds the in-memory order-in-progress state. One cart exists
// per signed-in employee and is shared by the register and floor views
// through the store's narrow mutation interface.
package pos

import (
	"errors"
	"math"
	"sync"

	"resto_pos_backend/internal/models"
)

var (
	ErrItemIndexOutOfRange = errors.New("cart item index out of range")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidServiceType  = errors.New("invalid service type")
)

// CartItem is one line being assembled. UnitPrice is captured when the item
// is added (product base price plus size modifier) and not re-derived.
type CartItem struct {
	ProductID   int64   `json:"product_id"`
	SizeID      *int64  `json:"size_id,omitempty"`
	ProductName string  `json:"product_name"`
	SizeName    *string `json:"size_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Notes       string  `json:"notes,omitempty"`
}

// Subtotal is unit price times quantity, rounded to cents.
func (i CartItem) Subtotal() float64 {
	return round2(i.UnitPrice * float64(i.Quantity))
}

// Cart is the order-in-progress for one employee. ActiveOrderID is set once
// a first batch has been confirmed, so later batches append to that order.
type Cart struct {
	Items         []CartItem `json:"items"`
	ServiceType   string     `json:"service_type"`
	TableID       *int64     `json:"table_id,omitempty"`
	ActiveOrderID *int64     `json:"active_order_id,omitempty"`
}

// Total sums the line subtotals.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return round2(total)
}

// CartStore owns every employee's cart behind one mutex. Handlers for the
// register and floor views run on separate requests, so all mutation goes
// through here.
type CartStore struct {
	mu    sync.Mutex
	carts map[int64]*Cart
}

// NewCartStore creates an empty store.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[int64]*Cart)}
}

func (s *CartStore) cart(employeeID int64) *Cart {
	c, ok := s.carts[employeeID]
	if !ok {
		c = &Cart{ServiceType: models.ServiceTypeTakeaway}
		s.carts[employeeID] = c
	}
	return c
}

// Snapshot returns a copy of the employee's cart.
func (s *CartStore) Snapshot(employeeID int64) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(employeeID)
	snapshot := *c
	snapshot.Items = make([]CartItem, len(c.Items))
	copy(snapshot.Items, c.Items)
	return snapshot
}

// AddItem appends a line, merging into an existing line when product, size
// and notes all match.
func (s *CartStore) AddItem(employeeID int64, item CartItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(employeeID)
	for i := range c.Items {
		if sameLine(c.Items[i], item) {
			c.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

// RemoveItem drops the line at index.
func (s *CartStore) RemoveItem(employeeID int64, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(employeeID)
	if index < 0 || index >= len(c.Items) {
		return ErrItemIndexOutOfRange
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return nil
}

// SetQuantity replaces the quantity of the line at index.
func (s *CartStore) SetQuantity(employeeID int64, index, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(employeeID)
	if index < 0 || index >= len(c.Items) {
		return ErrItemIndexOutOfRange
	}
	c.Items[index].Quantity = quantity
	return nil
}

// SetServiceType switches between dine-in and takeaway. Switching to
// takeaway drops any table selection.
func (s *CartStore) SetServiceType(employeeID int64, serviceType string) error {
	if serviceType != models.ServiceTypeDineIn && serviceType != models.ServiceTypeTakeaway {
		return ErrInvalidServiceType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(employeeID)
	c.ServiceType = serviceType
	if serviceType == models.ServiceTypeTakeaway {
		c.TableID = nil
	}
	return nil
}

// SetTable binds a table and implies dine-in. A nil tableID clears the
// selection.
func (s *CartStore) SetTable(employeeID int64, tableID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(employeeID)
	c.TableID = tableID
	if tableID != nil {
		c.ServiceType = models.ServiceTypeDineIn
	}
}

// SetActiveOrder binds (or, with nil, discards) the persisted order that
// further batches append to.
func (s *CartStore) SetActiveOrder(employeeID int64, orderID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart(employeeID).ActiveOrderID = orderID
}

// ClearItems empties the item list but keeps the table, service type and
// active-order binding. Used after a batch is confirmed but validation is
// still pending.
func (s *CartStore) ClearItems(employeeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart(employeeID).Items = nil
}

// Reset puts the cart back to its defaults: no items, no table, no active
// order, takeaway service. Used after validation completes or the employee
// defers it.
func (s *CartStore) Reset(employeeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[employeeID] = &Cart{ServiceType: models.ServiceTypeTakeaway}
}

func sameLine(a, b CartItem) bool {
	if a.ProductID != b.ProductID || a.Notes != b.Notes {
		return false
	}
	if (a.SizeID == nil) != (b.SizeID == nil) {
		return false
	}
	return a.SizeID == nil || *a.SizeID == *b.SizeID
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
