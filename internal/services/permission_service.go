package services

import (
	"errors"
	"fmt"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"
)

var ErrPermissionDenied = errors.New("permission denied")

// --- PermissionService Interface ---

// PermissionService answers "may this role do that" from the data-driven
// permission table. Absence of a row means denied; super_admin bypasses the
// table entirely. Every change is published on the change feed so signed-in
// clients pick it up live.
type PermissionService interface {
	GetPermissionsForRole(role string) ([]models.RolePermission, error)
	CanAccessPage(role, pageID string) bool
	CanConfirmOrder(role string) bool
	CanValidateOrder(role string) bool
	UpsertPermission(permission *models.RolePermission) error
	DeletePermission(role, pageID string) error
}

// --- permissionService Implementation ---

type permissionService struct {
	permissionRepo repositories.PermissionRepository
	db             repositories.TxBeginner
	publisher      events.Publisher
}

// NewPermissionService creates a new instance of PermissionService.
func NewPermissionService(
	pr repositories.PermissionRepository,
	db repositories.TxBeginner,
	publisher events.Publisher,
) PermissionService {
	return &permissionService{permissionRepo: pr, db: db, publisher: publisher}
}

// --- Method Implementations ---

func (s *permissionService) GetPermissionsForRole(role string) ([]models.RolePermission, error) {
	permissions, err := s.permissionRepo.GetPermissionsByRole(role)
	if err != nil {
		return nil, fmt.Errorf("fetching permissions for role: %w", err)
	}
	return permissions, nil
}

func (s *permissionService) CanAccessPage(role, pageID string) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	permission, err := s.permissionRepo.GetPermission(role, pageID)
	if err != nil {
		// Missing row or lookup failure both read as denied.
		return false
	}
	return permission.CanAccess
}

func (s *permissionService) CanConfirmOrder(role string) bool {
	return s.posFlag(role, func(p *models.RolePermission) bool { return p.CanConfirmOrder })
}

func (s *permissionService) CanValidateOrder(role string) bool {
	return s.posFlag(role, func(p *models.RolePermission) bool { return p.CanValidateOrder })
}

// posFlag reads one of the POS-specific booleans off the role's "pos" page
// row, defaulting to denied when the row is missing.
func (s *permissionService) posFlag(role string, pick func(*models.RolePermission) bool) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	permission, err := s.permissionRepo.GetPermission(role, "pos")
	if err != nil {
		return false
	}
	return pick(permission)
}

func (s *permissionService) UpsertPermission(permission *models.RolePermission) error {
	tx, err := s.db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.permissionRepo.UpsertPermission(tx, permission); err != nil {
		return fmt.Errorf("upserting permission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing permission upsert: %w", err)
	}

	if err := s.publisher.Publish(events.PermissionsUpdated, map[string]string{"role": permission.Role}); err != nil {
		utils.LogError(err, "UpsertPermission: failed to publish permissions event")
	}
	return nil
}

func (s *permissionService) DeletePermission(role, pageID string) error {
	tx, err := s.db.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.permissionRepo.DeletePermission(tx, role, pageID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("deleting permission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing permission delete: %w", err)
	}

	if err := s.publisher.Publish(events.PermissionsUpdated, map[string]string{"role": role}); err != nil {
		utils.LogError(err, "DeletePermission: failed to publish permissions event")
	}
	return nil
}
