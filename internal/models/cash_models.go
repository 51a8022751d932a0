package models

import "time"

// Cash session statuses.
const (
	CashSessionOpen   = "open"
	CashSessionClosed = "closed"
)

// CashRegisterSession is one "open cash" action by an employee. Several
// sessions may coexist for the same employee within one workday; closing
// acts on all of them at once.
type CashRegisterSession struct {
	ID            int64      `json:"id" db:"id"`
	EmployeeID    int64      `json:"employee_id" db:"employee_id"`
	OpeningAmount float64    `json:"opening_amount" db:"opening_amount"`
	OpenedAt      time.Time  `json:"opened_at" db:"opened_at"`
	ClosingAmount *float64   `json:"closing_amount,omitempty" db:"closing_amount"`
	ClosedAt      *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	Status        string     `json:"status" db:"status"`
}

// CashWithdrawal is an append-only record of cash taken out of the drawer
// during a session.
type CashWithdrawal struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   int64     `json:"session_id" db:"session_id"`
	Amount      float64   `json:"amount" db:"amount" binding:"required,gt=0"`
	Reason      string    `json:"reason" db:"reason" binding:"required"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	WithdrawnAt time.Time `json:"withdrawn_at" db:"withdrawn_at"`
}
