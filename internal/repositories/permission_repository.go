package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// PermissionRepository defines the interface for role permission rows.
type PermissionRepository interface {
	GetPermissionsByRole(role string) ([]models.RolePermission, error)
	GetPermission(role, pageID string) (*models.RolePermission, error)
	UpsertPermission(executor SQLExecutor, permission *models.RolePermission) error
	DeletePermission(executor SQLExecutor, role, pageID string) error
}

type permissionRepository struct {
	db *sql.DB
}

// NewPermissionRepository creates a new instance of PermissionRepository.
func NewPermissionRepository(db *sql.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) GetPermissionsByRole(role string) ([]models.RolePermission, error) {
	permissions := []models.RolePermission{}
	query := `SELECT id, role, section, page_id, can_access, can_confirm_order, can_validate_order, updated_at
	          FROM role_permissions
	          WHERE role = $1
	          ORDER BY section, page_id`

	rows, err := r.db.Query(query, role)
	if err != nil {
		return nil, fmt.Errorf("%w: querying permissions for role %q: %v", ErrDatabaseError, role, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.RolePermission
		err := rows.Scan(&p.ID, &p.Role, &p.Section, &p.PageID, &p.CanAccess, &p.CanConfirmOrder, &p.CanValidateOrder, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning permission row: %v", ErrDatabaseError, err)
		}
		permissions = append(permissions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating permission rows: %v", ErrDatabaseError, err)
	}
	return permissions, nil
}

func (r *permissionRepository) GetPermission(role, pageID string) (*models.RolePermission, error) {
	p := &models.RolePermission{}
	query := `SELECT id, role, section, page_id, can_access, can_confirm_order, can_validate_order, updated_at
	          FROM role_permissions
	          WHERE role = $1 AND page_id = $2`
	err := r.db.QueryRow(query, role, pageID).Scan(
		&p.ID, &p.Role, &p.Section, &p.PageID, &p.CanAccess, &p.CanConfirmOrder, &p.CanValidateOrder, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting permission for role %q page %q: %v", ErrDatabaseError, role, pageID, err)
	}
	return p, nil
}

func (r *permissionRepository) UpsertPermission(executor SQLExecutor, permission *models.RolePermission) error {
	query := `INSERT INTO role_permissions
	            (role, section, page_id, can_access, can_confirm_order, can_validate_order, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (role, page_id)
	          DO UPDATE SET section = EXCLUDED.section,
	                        can_access = EXCLUDED.can_access,
	                        can_confirm_order = EXCLUDED.can_confirm_order,
	                        can_validate_order = EXCLUDED.can_validate_order,
	                        updated_at = EXCLUDED.updated_at
	          RETURNING id, updated_at`
	permission.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		permission.Role, permission.Section, permission.PageID, permission.CanAccess,
		permission.CanConfirmOrder, permission.CanValidateOrder, permission.UpdatedAt,
	).Scan(&permission.ID, &permission.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: upserting permission for role %q page %q: %v", ErrDatabaseError, permission.Role, permission.PageID, err)
	}
	return nil
}

func (r *permissionRepository) DeletePermission(executor SQLExecutor, role, pageID string) error {
	query := `DELETE FROM role_permissions WHERE role = $1 AND page_id = $2`
	result, err := executor.Exec(query, role, pageID)
	if err != nil {
		return fmt.Errorf("%w: deleting permission for role %q page %q: %v", ErrDatabaseError, role, pageID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for permission delete: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
