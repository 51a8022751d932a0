package repositories

import (
	"database/sql"
	"fmt"
)

// Tx is a transaction handle usable as an SQLExecutor by repository methods.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxBeginner starts transactions. Services depend on this instead of *sql.DB
// so multi-step write sequences stay atomic and tests can supply fakes.
type TxBeginner interface {
	BeginTx() (Tx, error)
}

type sqlDB struct {
	db *sql.DB
}

// NewTxBeginner wraps a *sql.DB as a TxBeginner.
func NewTxBeginner(db *sql.DB) TxBeginner {
	return &sqlDB{db: db}
}

func (s *sqlDB) BeginTx() (Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	return tx, nil
}
