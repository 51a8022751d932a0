package services

import (
	"errors"
	"fmt"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameExists = errors.New("username already exists")
	ErrInvalidRole    = errors.New("invalid role")
)

// --- DTOs ---

// CreateEmployeeRequest is used for creating a new employee profile.
type CreateEmployeeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UpdateEmployeeRequest is used for updating an employee profile. A nil
// password leaves the stored hash untouched.
type UpdateEmployeeRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// --- EmployeeService Interface ---
type EmployeeService interface {
	CreateEmployee(req CreateEmployeeRequest) (*models.Employee, error)
	GetEmployees() ([]models.Employee, error)
	GetEmployeeByID(employeeID int64) (*models.Employee, error)
	UpdateEmployee(employeeID int64, req UpdateEmployeeRequest) (*models.Employee, error)
	DeactivateEmployee(employeeID int64) error
}

// --- employeeService Implementation ---

type employeeService struct {
	employeeRepo repositories.EmployeeRepository
	db           repositories.TxBeginner
}

// NewEmployeeService creates a new instance of EmployeeService.
func NewEmployeeService(er repositories.EmployeeRepository, db repositories.TxBeginner) EmployeeService {
	return &employeeService{employeeRepo: er, db: db}
}

func isValidRole(role string) bool {
	switch role {
	case models.RoleCashier, models.RoleAdmin, models.RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// --- Method Implementations ---

func (s *employeeService) CreateEmployee(req CreateEmployeeRequest) (*models.Employee, error) {
	if !isValidRole(req.Role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}
	if utils.IsEmpty(req.Username) || utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: username and full name are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	employee := &models.Employee{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.employeeRepo.CreateEmployee(tx, employee); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("creating employee: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing employee creation: %w", err)
	}
	return employee, nil
}

func (s *employeeService) GetEmployees() ([]models.Employee, error) {
	employees, err := s.employeeRepo.GetEmployees()
	if err != nil {
		return nil, fmt.Errorf("fetching employees: %w", err)
	}
	return employees, nil
}

func (s *employeeService) GetEmployeeByID(employeeID int64) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetEmployeeByID(employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("fetching employee: %w", err)
	}
	return employee, nil
}

func (s *employeeService) UpdateEmployee(employeeID int64, req UpdateEmployeeRequest) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetEmployeeByID(employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("fetching employee for update: %w", err)
	}

	if req.Username != nil && !utils.IsEmpty(*req.Username) {
		employee.Username = *req.Username
	}
	if req.FullName != nil && !utils.IsEmpty(*req.FullName) {
		employee.FullName = *req.FullName
	}
	if req.Role != nil {
		if !isValidRole(*req.Role) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, *req.Role)
		}
		employee.Role = *req.Role
	}
	if req.Active != nil {
		employee.Active = *req.Active
	}
	if req.Password != nil && !utils.IsEmpty(*req.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		employee.PasswordHash = string(hash)
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.employeeRepo.UpdateEmployee(tx, employee); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("updating employee: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing employee update: %w", err)
	}
	return employee, nil
}

func (s *employeeService) DeactivateEmployee(employeeID int64) error {
	tx, err := s.db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.employeeRepo.DeactivateEmployee(tx, employeeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("deactivating employee: %w", err)
	}
	return tx.Commit()
}
