package services

import (
	"testing"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePermissionRepo struct {
	rows map[string]*models.RolePermission // key: role + "/" + pageID
}

func newFakePermissionRepo(rows ...models.RolePermission) *fakePermissionRepo {
	repo := &fakePermissionRepo{rows: make(map[string]*models.RolePermission)}
	for _, row := range rows {
		stored := row
		repo.rows[row.Role+"/"+row.PageID] = &stored
	}
	return repo
}

func (r *fakePermissionRepo) GetPermissionsByRole(role string) ([]models.RolePermission, error) {
	permissions := []models.RolePermission{}
	for _, row := range r.rows {
		if row.Role == role {
			permissions = append(permissions, *row)
		}
	}
	return permissions, nil
}

func (r *fakePermissionRepo) GetPermission(role, pageID string) (*models.RolePermission, error) {
	row, ok := r.rows[role+"/"+pageID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakePermissionRepo) UpsertPermission(_ repositories.SQLExecutor, permission *models.RolePermission) error {
	stored := *permission
	r.rows[permission.Role+"/"+permission.PageID] = &stored
	return nil
}

func (r *fakePermissionRepo) DeletePermission(_ repositories.SQLExecutor, role, pageID string) error {
	key := role + "/" + pageID
	if _, ok := r.rows[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.rows, key)
	return nil
}

func newPermissionService(rows ...models.RolePermission) (PermissionService, *fakePermissionRepo) {
	repo := newFakePermissionRepo(rows...)
	return NewPermissionService(repo, &fakeTxBeginner{}, events.NewNopPublisher()), repo
}

func TestCanAccessPageDefaultsToDenied(t *testing.T) {
	service, _ := newPermissionService()

	assert.False(t, service.CanAccessPage(models.RoleCashier, "reports"), "no row means no access")
	assert.False(t, service.CanAccessPage(models.RoleAdmin, "reports"))
}

func TestCanAccessPageFollowsTheTable(t *testing.T) {
	service, _ := newPermissionService(
		models.RolePermission{Role: models.RoleCashier, Section: "pos", PageID: "pos", CanAccess: true},
		models.RolePermission{Role: models.RoleCashier, Section: "back_office", PageID: "reports", CanAccess: false},
	)

	assert.True(t, service.CanAccessPage(models.RoleCashier, "pos"))
	assert.False(t, service.CanAccessPage(models.RoleCashier, "reports"), "an explicit false row denies")
}

func TestSuperAdminBypassesTheTable(t *testing.T) {
	service, _ := newPermissionService()

	assert.True(t, service.CanAccessPage(models.RoleSuperAdmin, "anything"))
	assert.True(t, service.CanConfirmOrder(models.RoleSuperAdmin))
	assert.True(t, service.CanValidateOrder(models.RoleSuperAdmin))
}

func TestPOSFlagsReadTheRegisterRow(t *testing.T) {
	service, _ := newPermissionService(
		models.RolePermission{Role: models.RoleCashier, Section: "pos", PageID: "pos", CanAccess: true, CanConfirmOrder: true, CanValidateOrder: false},
	)

	assert.True(t, service.CanConfirmOrder(models.RoleCashier))
	assert.False(t, service.CanValidateOrder(models.RoleCashier))
	assert.False(t, service.CanConfirmOrder(models.RoleAdmin), "no register row means denied")
}

func TestUpsertPermission(t *testing.T) {
	service, repo := newPermissionService()

	err := service.UpsertPermission(&models.RolePermission{
		Role: models.RoleCashier, Section: "pos", PageID: "pos", CanAccess: true, CanValidateOrder: true,
	})
	require.NoError(t, err)
	assert.True(t, service.CanValidateOrder(models.RoleCashier))

	// Upserting the same (role, page) pair replaces the row.
	err = service.UpsertPermission(&models.RolePermission{
		Role: models.RoleCashier, Section: "pos", PageID: "pos", CanAccess: true, CanValidateOrder: false,
	})
	require.NoError(t, err)
	assert.False(t, service.CanValidateOrder(models.RoleCashier))
	assert.Len(t, repo.rows, 1)
}

func TestDeletePermission(t *testing.T) {
	service, _ := newPermissionService(
		models.RolePermission{Role: models.RoleCashier, Section: "pos", PageID: "pos", CanAccess: true},
	)

	require.NoError(t, service.DeletePermission(models.RoleCashier, "pos"))
	assert.False(t, service.CanAccessPage(models.RoleCashier, "pos"))

	err := service.DeletePermission(models.RoleCashier, "pos")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
