package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/lib/pq"
)

// EmployeeRepository defines the interface for employee profile operations.
type EmployeeRepository interface {
	CreateEmployee(executor SQLExecutor, employee *models.Employee) (int64, error)
	GetEmployeeByID(employeeID int64) (*models.Employee, error)
	GetEmployeeByUsername(username string) (*models.Employee, error)
	GetEmployees() ([]models.Employee, error)
	UpdateEmployee(executor SQLExecutor, employee *models.Employee) error
	DeactivateEmployee(executor SQLExecutor, employeeID int64) error
}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository.
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) CreateEmployee(executor SQLExecutor, employee *models.Employee) (int64, error) {
	query := `INSERT INTO employees
	            (username, password_hash, full_name, role, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	now := time.Now()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	err := executor.QueryRow(query,
		employee.Username, employee.PasswordHash, employee.FullName, employee.Role,
		employee.Active, employee.CreatedAt, employee.UpdatedAt,
	).Scan(&employee.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w: username %q", ErrDuplicateKey, employee.Username)
		}
		return 0, fmt.Errorf("%w: creating employee: %v", ErrDatabaseError, err)
	}
	return employee.ID, nil
}

func (r *employeeRepository) GetEmployeeByID(employeeID int64) (*models.Employee, error) {
	e := &models.Employee{}
	query := `SELECT id, username, password_hash, full_name, role, active, created_at, updated_at
	          FROM employees WHERE id = $1`
	err := r.db.QueryRow(query, employeeID).Scan(
		&e.ID, &e.Username, &e.PasswordHash, &e.FullName, &e.Role, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting employee by ID %d: %v", ErrDatabaseError, employeeID, err)
	}
	return e, nil
}

func (r *employeeRepository) GetEmployeeByUsername(username string) (*models.Employee, error) {
	e := &models.Employee{}
	query := `SELECT id, username, password_hash, full_name, role, active, created_at, updated_at
	          FROM employees WHERE username = $1`
	err := r.db.QueryRow(query, username).Scan(
		&e.ID, &e.Username, &e.PasswordHash, &e.FullName, &e.Role, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting employee by username %q: %v", ErrDatabaseError, username, err)
	}
	return e, nil
}

func (r *employeeRepository) GetEmployees() ([]models.Employee, error) {
	employees := []models.Employee{}
	query := `SELECT id, username, password_hash, full_name, role, active, created_at, updated_at
	          FROM employees ORDER BY full_name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying employees: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Employee
		err := rows.Scan(&e.ID, &e.Username, &e.PasswordHash, &e.FullName, &e.Role, &e.Active, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning employee: %v", ErrDatabaseError, err)
		}
		employees = append(employees, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating employee rows: %v", ErrDatabaseError, err)
	}
	return employees, nil
}

func (r *employeeRepository) UpdateEmployee(executor SQLExecutor, employee *models.Employee) error {
	query := `UPDATE employees
	          SET username = $1, password_hash = $2, full_name = $3, role = $4, active = $5, updated_at = $6
	          WHERE id = $7`
	employee.UpdatedAt = time.Now()

	result, err := executor.Exec(query,
		employee.Username, employee.PasswordHash, employee.FullName, employee.Role,
		employee.Active, employee.UpdatedAt, employee.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: username %q", ErrDuplicateKey, employee.Username)
		}
		return fmt.Errorf("%w: updating employee ID %d: %v", ErrDatabaseError, employee.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for employee update ID %d: %v", ErrDatabaseError, employee.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *employeeRepository) DeactivateEmployee(executor SQLExecutor, employeeID int64) error {
	query := `UPDATE employees SET active = false, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), employeeID)
	if err != nil {
		return fmt.Errorf("%w: deactivating employee ID %d: %v", ErrDatabaseError, employeeID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deactivating employee ID %d: %v", ErrDatabaseError, employeeID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
