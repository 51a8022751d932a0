package services

import (
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount          = errors.New("amount cannot be negative")
	ErrWithdrawalReasonMissing = errors.New("withdrawal reason is required")
	ErrSessionNotFound         = errors.New("cash session not found")
	ErrSessionClosed           = errors.New("cash session is already closed")
)

// workdayBoundaryHour is the local hour at which one accounting day rolls
// into the next. Late-night shifts stay in the previous day's books.
const workdayBoundaryHour = 2

// WorkdayWindow returns the [start, end) accounting-day window containing t.
// The window runs 02:00 to 02:00 local time, so 01:59 belongs to the
// previous calendar day's workday.
func WorkdayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), workdayBoundaryHour, 0, 0, 0, t.Location())
	if t.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start, start.AddDate(0, 0, 1)
}

// ComputeExpectedClosing is the reconciliation figure: opening + sales −
// withdrawals. Computed in decimal so repeated float sums cannot drift the
// cents.
func ComputeExpectedClosing(opening, sales, withdrawals float64) float64 {
	expected := decimal.NewFromFloat(opening).
		Add(decimal.NewFromFloat(sales)).
		Sub(decimal.NewFromFloat(withdrawals))
	result, _ := expected.Round(2).Float64()
	return result
}

// --- DTOs ---

// Reconciliation is the cash-close result printed on the Z ticket. The
// difference is surfaced here but never stored.
type Reconciliation struct {
	SessionsClosed   int        `json:"sessions_closed"`
	SessionIDs       []int64    `json:"session_ids,omitempty"`
	FirstOpening     float64    `json:"first_opening"`
	TotalSales       float64    `json:"total_sales"`
	TotalWithdrawals float64    `json:"total_withdrawals"`
	ExpectedClosing  float64    `json:"expected_closing"`
	ActualClosing    float64    `json:"actual_closing"`
	Difference       float64    `json:"difference"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
}

// CreateWithdrawalRequest is the payload for taking cash out of the drawer.
type CreateWithdrawalRequest struct {
	SessionID int64   `json:"session_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Reason    string  `json:"reason" binding:"required"`
	Notes     string  `json:"notes"`
}

// --- CashService Interface ---

// CashService coordinates cash register sessions per employee per workday:
// opening at shift start, withdrawals during the shift, and the blended
// close of every open session at logout.
type CashService interface {
	OpenSession(employeeID int64, openingAmount float64) (*models.CashRegisterSession, error)
	GetCurrentSessions(employeeID int64) (*CurrentCashState, error)
	CreateWithdrawal(req CreateWithdrawalRequest) (*models.CashWithdrawal, error)
	CloseSessions(employeeID int64, actualClosing float64) (*Reconciliation, error)
}

// CurrentCashState is the register's drawer view: the workday's open
// sessions plus the withdrawals taken against them.
type CurrentCashState struct {
	Sessions    []models.CashRegisterSession `json:"sessions"`
	Withdrawals []models.CashWithdrawal      `json:"withdrawals"`
}

// --- cashService Implementation ---

type cashService struct {
	cashRepo  repositories.CashRepository
	orderRepo repositories.OrderRepository
	db        repositories.TxBeginner
	publisher events.Publisher
}

// NewCashService creates a new instance of CashService.
func NewCashService(
	cr repositories.CashRepository,
	or repositories.OrderRepository,
	db repositories.TxBeginner,
	publisher events.Publisher,
) CashService {
	return &cashService{
		cashRepo:  cr,
		orderRepo: or,
		db:        db,
		publisher: publisher,
	}
}

// --- Method Implementations ---

// OpenSession starts a new open session for the employee. Prior open
// sessions are deliberately left alone; close time sweeps them all.
func (s *cashService) OpenSession(employeeID int64, openingAmount float64) (*models.CashRegisterSession, error) {
	if openingAmount < 0 {
		return nil, ErrNegativeAmount
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	session := &models.CashRegisterSession{
		EmployeeID:    employeeID,
		OpeningAmount: openingAmount,
		OpenedAt:      time.Now(),
		Status:        models.CashSessionOpen,
	}
	if _, err := s.cashRepo.CreateSession(tx, session); err != nil {
		return nil, fmt.Errorf("opening cash session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cash session open: %w", err)
	}

	if err := s.publisher.Publish(events.CashSessionOpened, session); err != nil {
		utils.LogError(err, "OpenSession: failed to publish cash event")
	}
	return session, nil
}

// GetCurrentSessions lists the employee's open sessions in the current
// workday window together with their withdrawals. The client opens a new
// session at login when this comes back empty for a cashier.
func (s *cashService) GetCurrentSessions(employeeID int64) (*CurrentCashState, error) {
	from, to := WorkdayWindow(time.Now())
	sessions, err := s.cashRepo.GetOpenSessions(employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching current cash sessions: %w", err)
	}

	withdrawals := []models.CashWithdrawal{}
	if len(sessions) > 0 {
		sessionIDs := make([]int64, 0, len(sessions))
		for _, session := range sessions {
			sessionIDs = append(sessionIDs, session.ID)
		}
		withdrawals, err = s.cashRepo.GetWithdrawalsBySessionIDs(sessionIDs)
		if err != nil {
			return nil, fmt.Errorf("fetching session withdrawals: %w", err)
		}
	}
	return &CurrentCashState{Sessions: sessions, Withdrawals: withdrawals}, nil
}

func (s *cashService) CreateWithdrawal(req CreateWithdrawalRequest) (*models.CashWithdrawal, error) {
	if req.Amount <= 0 {
		return nil, ErrNegativeAmount
	}
	if utils.IsEmpty(req.Reason) {
		return nil, ErrWithdrawalReasonMissing
	}

	session, err := s.cashRepo.GetSessionByID(req.SessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("fetching session for withdrawal: %w", err)
	}
	if session.Status != models.CashSessionOpen {
		return nil, ErrSessionClosed
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	withdrawal := &models.CashWithdrawal{
		SessionID:   req.SessionID,
		Amount:      req.Amount,
		Reason:      req.Reason,
		Notes:       models.NewNullString(req.Notes),
		WithdrawnAt: time.Now(),
	}
	if _, err := s.cashRepo.CreateWithdrawal(tx, withdrawal); err != nil {
		return nil, fmt.Errorf("creating withdrawal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing withdrawal: %w", err)
	}
	return withdrawal, nil
}

// CloseSessions closes every open session for the employee in the current
// workday window in one batch, all with the same closing amount and
// timestamp. With nothing open it mutates no rows and reports zero sessions
// closed, so logout can proceed.
func (s *cashService) CloseSessions(employeeID int64, actualClosing float64) (*Reconciliation, error) {
	if actualClosing < 0 {
		return nil, ErrNegativeAmount
	}

	from, to := WorkdayWindow(time.Now())
	sessions, err := s.cashRepo.GetOpenSessions(employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching open sessions to close: %w", err)
	}
	if len(sessions) == 0 {
		return &Reconciliation{SessionsClosed: 0}, nil
	}

	// GetOpenSessions orders by opened_at ascending, so the first session
	// carries the opening amount that seeds the reconciliation.
	firstOpening := sessions[0].OpeningAmount
	sessionIDs := make([]int64, len(sessions))
	for i, session := range sessions {
		sessionIDs[i] = session.ID
	}

	totalSales, err := s.orderRepo.SumCompletedTotals(employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summing sales for reconciliation: %w", err)
	}
	totalWithdrawals, err := s.cashRepo.SumWithdrawals(sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("summing withdrawals for reconciliation: %w", err)
	}

	expected := ComputeExpectedClosing(firstOpening, totalSales, totalWithdrawals)
	difference, _ := decimal.NewFromFloat(actualClosing).Sub(decimal.NewFromFloat(expected)).Round(2).Float64()

	closedAt := time.Now()

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.cashRepo.CloseSessions(tx, sessionIDs, actualClosing, closedAt); err != nil {
		return nil, fmt.Errorf("closing cash sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cash close: %w", err)
	}

	reconciliation := &Reconciliation{
		SessionsClosed:   len(sessions),
		SessionIDs:       sessionIDs,
		FirstOpening:     firstOpening,
		TotalSales:       totalSales,
		TotalWithdrawals: totalWithdrawals,
		ExpectedClosing:  expected,
		ActualClosing:    actualClosing,
		Difference:       difference,
		ClosedAt:         &closedAt,
	}

	if err := s.publisher.Publish(events.CashSessionClosed, reconciliation); err != nil {
		utils.LogError(err, "CloseSessions: failed to publish cash event")
	}
	return reconciliation, nil
}
