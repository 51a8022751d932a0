package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/lib/pq"
)

// CashRepository defines the interface for cash register sessions and
// withdrawals.
type CashRepository interface {
	CreateSession(executor SQLExecutor, session *models.CashRegisterSession) (int64, error)
	GetSessionByID(sessionID int64) (*models.CashRegisterSession, error)
	// GetOpenSessions returns the employee's open sessions whose opened_at
	// falls inside [from, to), ordered by opened_at ascending.
	GetOpenSessions(employeeID int64, from, to time.Time) ([]models.CashRegisterSession, error)
	// CloseSessions marks every given session closed with one shared closing
	// amount and timestamp.
	CloseSessions(executor SQLExecutor, sessionIDs []int64, closingAmount float64, closedAt time.Time) error
	CreateWithdrawal(executor SQLExecutor, withdrawal *models.CashWithdrawal) (int64, error)
	GetWithdrawalsBySessionIDs(sessionIDs []int64) ([]models.CashWithdrawal, error)
	SumWithdrawals(sessionIDs []int64) (float64, error)
}

type cashRepository struct {
	db *sql.DB
}

// NewCashRepository creates a new instance of CashRepository.
func NewCashRepository(db *sql.DB) CashRepository {
	return &cashRepository{db: db}
}

func (r *cashRepository) CreateSession(executor SQLExecutor, session *models.CashRegisterSession) (int64, error) {
	query := `INSERT INTO cash_register_sessions
	            (employee_id, opening_amount, opened_at, status)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now()
	}
	if session.Status == "" {
		session.Status = models.CashSessionOpen
	}

	err := executor.QueryRow(query,
		session.EmployeeID, session.OpeningAmount, session.OpenedAt, session.Status,
	).Scan(&session.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating cash session: %v", ErrDatabaseError, err)
	}
	return session.ID, nil
}

func (r *cashRepository) GetSessionByID(sessionID int64) (*models.CashRegisterSession, error) {
	s := &models.CashRegisterSession{}
	query := `SELECT id, employee_id, opening_amount, opened_at, closing_amount, closed_at, status
	          FROM cash_register_sessions WHERE id = $1`
	err := r.db.QueryRow(query, sessionID).Scan(
		&s.ID, &s.EmployeeID, &s.OpeningAmount, &s.OpenedAt, &s.ClosingAmount, &s.ClosedAt, &s.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting cash session %d: %v", ErrDatabaseError, sessionID, err)
	}
	return s, nil
}

func (r *cashRepository) GetOpenSessions(employeeID int64, from, to time.Time) ([]models.CashRegisterSession, error) {
	sessions := []models.CashRegisterSession{}
	query := `SELECT id, employee_id, opening_amount, opened_at, closing_amount, closed_at, status
	          FROM cash_register_sessions
	          WHERE employee_id = $1 AND status = $2 AND opened_at >= $3 AND opened_at < $4
	          ORDER BY opened_at ASC`

	rows, err := r.db.Query(query, employeeID, models.CashSessionOpen, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying open cash sessions for employee %d: %v", ErrDatabaseError, employeeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.CashRegisterSession
		err := rows.Scan(&s.ID, &s.EmployeeID, &s.OpeningAmount, &s.OpenedAt, &s.ClosingAmount, &s.ClosedAt, &s.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning cash session: %v", ErrDatabaseError, err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating cash session rows: %v", ErrDatabaseError, err)
	}
	return sessions, nil
}

func (r *cashRepository) CloseSessions(executor SQLExecutor, sessionIDs []int64, closingAmount float64, closedAt time.Time) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	query := `UPDATE cash_register_sessions
	          SET status = $1, closing_amount = $2, closed_at = $3
	          WHERE id = ANY($4)`
	result, err := executor.Exec(query, models.CashSessionClosed, closingAmount, closedAt, pq.Array(sessionIDs))
	if err != nil {
		return fmt.Errorf("%w: closing cash sessions: %v", ErrDatabaseError, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for closing cash sessions: %v", ErrDatabaseError, err)
	}
	if rowsAffected != int64(len(sessionIDs)) {
		return fmt.Errorf("%w: expected to close %d sessions, closed %d", ErrDatabaseError, len(sessionIDs), rowsAffected)
	}
	return nil
}

func (r *cashRepository) CreateWithdrawal(executor SQLExecutor, withdrawal *models.CashWithdrawal) (int64, error) {
	query := `INSERT INTO cash_withdrawals
	            (session_id, amount, reason, notes, withdrawn_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if withdrawal.WithdrawnAt.IsZero() {
		withdrawal.WithdrawnAt = time.Now()
	}

	err := executor.QueryRow(query,
		withdrawal.SessionID, withdrawal.Amount, withdrawal.Reason, withdrawal.Notes, withdrawal.WithdrawnAt,
	).Scan(&withdrawal.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating withdrawal for unknown session %d", ErrNotFound, withdrawal.SessionID)
		}
		return 0, fmt.Errorf("%w: creating cash withdrawal: %v", ErrDatabaseError, err)
	}
	return withdrawal.ID, nil
}

func (r *cashRepository) GetWithdrawalsBySessionIDs(sessionIDs []int64) ([]models.CashWithdrawal, error) {
	withdrawals := []models.CashWithdrawal{}
	if len(sessionIDs) == 0 {
		return withdrawals, nil
	}
	query := `SELECT id, session_id, amount, reason, notes, withdrawn_at
	          FROM cash_withdrawals
	          WHERE session_id = ANY($1)
	          ORDER BY withdrawn_at ASC`

	rows, err := r.db.Query(query, pq.Array(sessionIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying cash withdrawals: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.CashWithdrawal
		err := rows.Scan(&w.ID, &w.SessionID, &w.Amount, &w.Reason, &w.Notes, &w.WithdrawnAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning cash withdrawal: %v", ErrDatabaseError, err)
		}
		withdrawals = append(withdrawals, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating cash withdrawal rows: %v", ErrDatabaseError, err)
	}
	return withdrawals, nil
}

func (r *cashRepository) SumWithdrawals(sessionIDs []int64) (float64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM cash_withdrawals WHERE session_id = ANY($1)`
	err := r.db.QueryRow(query, pq.Array(sessionIDs)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing cash withdrawals: %v", ErrDatabaseError, err)
	}
	return total, nil
}
