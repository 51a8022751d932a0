package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// DeletedOrderRepository archives snapshots of hard-deleted orders.
// Rows are append-only; there is no update or delete.
type DeletedOrderRepository interface {
	CreateArchive(executor SQLExecutor, archive *models.DeletedOrder) error
	GetArchives(limit int) ([]models.DeletedOrder, error)
}

type deletedOrderRepository struct {
	db *sql.DB
}

// NewDeletedOrderRepository creates a new instance of DeletedOrderRepository.
func NewDeletedOrderRepository(db *sql.DB) DeletedOrderRepository {
	return &deletedOrderRepository{db: db}
}

func (r *deletedOrderRepository) CreateArchive(executor SQLExecutor, archive *models.DeletedOrder) error {
	query := `INSERT INTO deleted_orders
	            (id, order_id, order_number, items_snapshot, total, reason, deleted_by, deleted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if archive.DeletedAt.IsZero() {
		archive.DeletedAt = time.Now()
	}

	_, err := executor.Exec(query,
		archive.ID, archive.OrderID, archive.OrderNumber, archive.ItemsSnapshot,
		archive.Total, archive.Reason, archive.DeletedBy, archive.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: archiving deleted order %d: %v", ErrDatabaseError, archive.OrderID, err)
	}
	return nil
}

func (r *deletedOrderRepository) GetArchives(limit int) ([]models.DeletedOrder, error) {
	archives := []models.DeletedOrder{}
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, order_id, order_number, items_snapshot, total, reason, deleted_by, deleted_at
	          FROM deleted_orders
	          ORDER BY deleted_at DESC
	          LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying deleted order archives: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.DeletedOrder
		err := rows.Scan(&a.ID, &a.OrderID, &a.OrderNumber, &a.ItemsSnapshot, &a.Total, &a.Reason, &a.DeletedBy, &a.DeletedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning deleted order archive: %v", ErrDatabaseError, err)
		}
		archives = append(archives, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating deleted order archives: %v", ErrDatabaseError, err)
	}
	return archives, nil
}
