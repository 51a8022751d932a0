package services

import (
	"errors"
	"fmt"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmployeeInactive   = errors.New("employee account is deactivated")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	Employee     *models.Employee `json:"employee"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(req LoginRequest) (*AuthResponse, error)
	GetProfile(employeeID int64) (*models.Employee, error)
	RefreshToken(employeeID int64) (*AuthResponse, error)
}

// --- authService Implementation ---

type authService struct {
	employeeRepo repositories.EmployeeRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(employeeRepo repositories.EmployeeRepository) AuthService {
	return &authService{employeeRepo: employeeRepo}
}

// Login checks the credentials and issues access and refresh tokens.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	employee, err := s.employeeRepo.GetEmployeeByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetching employee for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !employee.Active {
		return nil, ErrEmployeeInactive
	}

	accessToken, err := utils.GenerateAccessToken(employee.ID, employee.Username, employee.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(employee.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &AuthResponse{
		Employee:     employee,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) GetProfile(employeeID int64) (*models.Employee, error) {
	employee, err := s.employeeRepo.GetEmployeeByID(employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("fetching employee profile: %w", err)
	}
	return employee, nil
}

// RefreshToken mints a fresh access token for an employee identified by a
// valid refresh token.
func (s *authService) RefreshToken(employeeID int64) (*AuthResponse, error) {
	employee, err := s.employeeRepo.GetEmployeeByID(employeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("fetching employee for token refresh: %w", err)
	}
	if !employee.Active {
		return nil, ErrEmployeeInactive
	}

	accessToken, err := utils.GenerateAccessToken(employee.ID, employee.Username, employee.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &AuthResponse{Employee: employee, AccessToken: accessToken}, nil
}
