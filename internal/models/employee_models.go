package models

import "time"

// Roles.
const (
	RoleCashier    = "cashier"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Employee represents a staff member able to sign in to the POS.
type Employee struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RolePermission is one row of the data-driven permission table. A missing
// row for a (role, page) pair means denied.
type RolePermission struct {
	ID               int64     `json:"id" db:"id"`
	Role             string    `json:"role" db:"role" binding:"required"`
	Section          string    `json:"section" db:"section" binding:"required"`
	PageID           string    `json:"page_id" db:"page_id" binding:"required"`
	CanAccess        bool      `json:"can_access" db:"can_access"`
	CanConfirmOrder  bool      `json:"can_confirm_order" db:"can_confirm_order"`
	CanValidateOrder bool      `json:"can_validate_order" db:"can_validate_order"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
