package services

import (
	"database/sql"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// In-memory fakes for the repository and transaction interfaces. The fakes
// ignore the SQLExecutor argument; transactional behavior is asserted through
// the recorded fakeTx commit/rollback flags.

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(string, ...interface{}) (sql.Result, error) { return fakeResult{}, nil }
func (t *fakeTx) QueryRow(string, ...interface{}) *sql.Row        { return nil }
func (t *fakeTx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (t *fakeTx) Commit() error                                   { t.committed = true; return nil }
func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxBeginner struct {
	txs      []*fakeTx
	beginErr error
}

func (f *fakeTxBeginner) BeginTx() (repositories.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	return tx, nil
}

func (f *fakeTxBeginner) lastTx() *fakeTx {
	if len(f.txs) == 0 {
		return nil
	}
	return f.txs[len(f.txs)-1]
}

// --- order repository fake ---

type fakeOrderRepo struct {
	orders        map[int64]*models.Order
	items         map[int64][]models.OrderItem
	nextOrderID   int64
	nextItemID    int64
	createItemErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64][]models.OrderItem),
	}
}

func (r *fakeOrderRepo) put(order models.Order) *models.Order {
	if order.ID == 0 {
		r.nextOrderID++
		order.ID = r.nextOrderID
	} else if order.ID > r.nextOrderID {
		r.nextOrderID = order.ID
	}
	if order.OrderNumber == 0 {
		order.OrderNumber = 1000 + order.ID
	}
	stored := order
	r.orders[order.ID] = &stored
	return &stored
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	stored := r.put(*order)
	order.ID = stored.ID
	order.OrderNumber = stored.OrderNumber
	return order.ID, nil
}

func (r *fakeOrderRepo) get(orderID int64) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	return r.get(orderID)
}

func (r *fakeOrderRepo) GetOrderForUpdate(_ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	return r.get(orderID)
}

func (r *fakeOrderRepo) GetOrderByIdempotencyKey(key string) (*models.Order, error) {
	for _, order := range r.orders {
		if order.IdempotencyKey != nil && *order.IdempotencyKey == key {
			copied := *order
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeOrderRepo) GetOrders(models.OrderFilters) ([]models.Order, int, error) {
	orders := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, *order)
	}
	return orders, len(orders), nil
}

func (r *fakeOrderRepo) GetPreparingOrdersByTable(tableID int64) ([]models.Order, error) {
	orders := []models.Order{}
	for _, order := range r.orders {
		if order.Status == models.OrderStatusPreparing && order.TableID != nil && *order.TableID == tableID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdateOrderTotal(_ repositories.SQLExecutor, orderID int64, newTotal float64, updatedAt time.Time) error {
	order, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Total = newTotal
	order.UpdatedAt = updatedAt
	return nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	order, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Status = newStatus
	order.UpdatedAt = updatedAt
	return nil
}

func (r *fakeOrderRepo) CompleteOrder(_ repositories.SQLExecutor, orderID int64, paymentMethod string, updatedAt time.Time) (bool, error) {
	order, ok := r.orders[orderID]
	if !ok || order.Status != models.OrderStatusPreparing {
		return false, nil
	}
	order.Status = models.OrderStatusCompleted
	order.PaymentMethod = &paymentMethod
	order.UpdatedAt = updatedAt
	return true, nil
}

func (r *fakeOrderRepo) SumCompletedTotals(employeeID int64, from, to time.Time) (float64, error) {
	var total float64
	for _, order := range r.orders {
		if order.EmployeeID != employeeID || order.Status != models.OrderStatusCompleted {
			continue
		}
		if order.CreatedAt.Before(from) || !order.CreatedAt.Before(to) {
			continue
		}
		total += order.Total
	}
	return total, nil
}

func (r *fakeOrderRepo) DeleteOrder(_ repositories.SQLExecutor, orderID int64) (int64, error) {
	if _, ok := r.orders[orderID]; !ok {
		return 0, repositories.ErrNotFound
	}
	delete(r.orders, orderID)
	delete(r.items, orderID)
	return 1, nil
}

func (r *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	if r.createItemErr != nil {
		return 0, r.createItemErr
	}
	r.nextItemID++
	item.ID = r.nextItemID
	r.items[item.OrderID] = append(r.items[item.OrderID], *item)
	return item.ID, nil
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, len(r.items[orderID]))
	copy(items, r.items[orderID])
	return items, nil
}

// --- table repository fake ---

type tableStatusChange struct {
	TableID int64
	Status  string
}

type fakeTableRepo struct {
	tables    map[int64]*models.RestaurantTable
	statusLog []tableStatusChange
}

func newFakeTableRepo(tables ...models.RestaurantTable) *fakeTableRepo {
	repo := &fakeTableRepo{tables: make(map[int64]*models.RestaurantTable)}
	for _, table := range tables {
		stored := table
		repo.tables[table.ID] = &stored
	}
	return repo
}

func (r *fakeTableRepo) GetTableByID(tableID int64) (*models.RestaurantTable, error) {
	table, ok := r.tables[tableID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *table
	return &copied, nil
}

func (r *fakeTableRepo) UpdateTableStatus(_ repositories.SQLExecutor, tableID int64, status string, updatedAt time.Time) error {
	table, ok := r.tables[tableID]
	if !ok {
		return repositories.ErrNotFound
	}
	table.Status = status
	table.UpdatedAt = updatedAt
	r.statusLog = append(r.statusLog, tableStatusChange{TableID: tableID, Status: status})
	return nil
}

// --- employee repository fake ---

type fakeEmployeeRepo struct {
	employees map[int64]*models.Employee
}

func newFakeEmployeeRepo(employees ...models.Employee) *fakeEmployeeRepo {
	repo := &fakeEmployeeRepo{employees: make(map[int64]*models.Employee)}
	for _, employee := range employees {
		stored := employee
		repo.employees[employee.ID] = &stored
	}
	return repo
}

func (r *fakeEmployeeRepo) CreateEmployee(_ repositories.SQLExecutor, employee *models.Employee) (int64, error) {
	id := int64(len(r.employees) + 1)
	employee.ID = id
	stored := *employee
	r.employees[id] = &stored
	return id, nil
}

func (r *fakeEmployeeRepo) GetEmployeeByID(employeeID int64) (*models.Employee, error) {
	employee, ok := r.employees[employeeID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *employee
	return &copied, nil
}

func (r *fakeEmployeeRepo) GetEmployeeByUsername(username string) (*models.Employee, error) {
	for _, employee := range r.employees {
		if employee.Username == username {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEmployeeRepo) GetEmployees() ([]models.Employee, error) {
	employees := make([]models.Employee, 0, len(r.employees))
	for _, employee := range r.employees {
		employees = append(employees, *employee)
	}
	return employees, nil
}

func (r *fakeEmployeeRepo) UpdateEmployee(_ repositories.SQLExecutor, employee *models.Employee) error {
	if _, ok := r.employees[employee.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *employee
	r.employees[employee.ID] = &stored
	return nil
}

func (r *fakeEmployeeRepo) DeactivateEmployee(_ repositories.SQLExecutor, employeeID int64) error {
	employee, ok := r.employees[employeeID]
	if !ok {
		return repositories.ErrNotFound
	}
	employee.Active = false
	return nil
}

// --- cash repository fake ---

type fakeCashRepo struct {
	sessions    map[int64]*models.CashRegisterSession
	withdrawals []models.CashWithdrawal
	nextID      int64
}

func newFakeCashRepo() *fakeCashRepo {
	return &fakeCashRepo{sessions: make(map[int64]*models.CashRegisterSession)}
}

func (r *fakeCashRepo) CreateSession(_ repositories.SQLExecutor, session *models.CashRegisterSession) (int64, error) {
	r.nextID++
	session.ID = r.nextID
	stored := *session
	r.sessions[session.ID] = &stored
	return session.ID, nil
}

func (r *fakeCashRepo) GetSessionByID(sessionID int64) (*models.CashRegisterSession, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeCashRepo) GetOpenSessions(employeeID int64, from, to time.Time) ([]models.CashRegisterSession, error) {
	sessions := []models.CashRegisterSession{}
	for _, session := range r.sessions {
		if session.EmployeeID != employeeID || session.Status != models.CashSessionOpen {
			continue
		}
		if session.OpenedAt.Before(from) || !session.OpenedAt.Before(to) {
			continue
		}
		sessions = append(sessions, *session)
	}
	// opened_at ascending, matching the real repository's ordering
	for i := 1; i < len(sessions); i++ {
		for j := i; j > 0 && sessions[j].OpenedAt.Before(sessions[j-1].OpenedAt); j-- {
			sessions[j], sessions[j-1] = sessions[j-1], sessions[j]
		}
	}
	return sessions, nil
}

func (r *fakeCashRepo) CloseSessions(_ repositories.SQLExecutor, sessionIDs []int64, closingAmount float64, closedAt time.Time) error {
	for _, id := range sessionIDs {
		session, ok := r.sessions[id]
		if !ok {
			return repositories.ErrNotFound
		}
		session.Status = models.CashSessionClosed
		session.ClosingAmount = &closingAmount
		session.ClosedAt = &closedAt
	}
	return nil
}

func (r *fakeCashRepo) CreateWithdrawal(_ repositories.SQLExecutor, withdrawal *models.CashWithdrawal) (int64, error) {
	r.nextID++
	withdrawal.ID = r.nextID
	r.withdrawals = append(r.withdrawals, *withdrawal)
	return withdrawal.ID, nil
}

func (r *fakeCashRepo) GetWithdrawalsBySessionIDs(sessionIDs []int64) ([]models.CashWithdrawal, error) {
	withdrawals := []models.CashWithdrawal{}
	for _, withdrawal := range r.withdrawals {
		for _, id := range sessionIDs {
			if withdrawal.SessionID == id {
				withdrawals = append(withdrawals, withdrawal)
				break
			}
		}
	}
	return withdrawals, nil
}

func (r *fakeCashRepo) SumWithdrawals(sessionIDs []int64) (float64, error) {
	withdrawals, _ := r.GetWithdrawalsBySessionIDs(sessionIDs)
	var total float64
	for _, withdrawal := range withdrawals {
		total += withdrawal.Amount
	}
	return total, nil
}

// --- deleted order repository fake ---

type fakeDeletedOrderRepo struct {
	archives  []models.DeletedOrder
	createErr error
}

func (r *fakeDeletedOrderRepo) CreateArchive(_ repositories.SQLExecutor, archive *models.DeletedOrder) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.archives = append(r.archives, *archive)
	return nil
}

func (r *fakeDeletedOrderRepo) GetArchives(int) ([]models.DeletedOrder, error) {
	archives := make([]models.DeletedOrder, len(r.archives))
	copy(archives, r.archives)
	return archives, nil
}

// --- setting repository fake ---

type fakeSettingRepo struct {
	values map[string]string
}

func (r *fakeSettingRepo) GetValue(key string) (string, error) {
	value, ok := r.values[key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return value, nil
}
