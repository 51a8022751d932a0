package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// TableRepository defines the interface for restaurant table operations.
type TableRepository interface {
	GetTableByID(tableID int64) (*models.RestaurantTable, error)
	UpdateTableStatus(executor SQLExecutor, tableID int64, status string, updatedAt time.Time) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) GetTableByID(tableID int64) (*models.RestaurantTable, error) {
	table := &models.RestaurantTable{}
	query := `SELECT id, name, seats, status, created_at, updated_at
	          FROM restaurant_tables WHERE id = $1`
	err := r.db.QueryRow(query, tableID).Scan(
		&table.ID, &table.Name, &table.Seats, &table.Status, &table.CreatedAt, &table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table by ID %d: %v", ErrDatabaseError, tableID, err)
	}
	return table, nil
}

func (r *tableRepository) UpdateTableStatus(executor SQLExecutor, tableID int64, status string, updatedAt time.Time) error {
	query := `UPDATE restaurant_tables SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, updatedAt, tableID)
	if err != nil {
		return fmt.Errorf("%w: updating table status for ID %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table status update ID %d: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
