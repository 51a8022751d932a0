package handlers

import (
	"errors"
	"net/http"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PermissionHandler manages the role permission table.
type PermissionHandler struct {
	permissionService services.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(ps services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: ps}
}

// GetPermissionsForRole handles GET /permissions/:role.
func (h *PermissionHandler) GetPermissionsForRole(c *gin.Context) {
	role := c.Param("role")

	permissions, err := h.permissionService.GetPermissionsForRole(role)
	if err != nil {
		utils.LogError(err, "GetPermissionsForRole: Error from permissionService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch permissions.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": permissions})
}

// GetMyPermissions handles GET /permissions/me: the signed-in employee's
// page grants, used by clients to build their navigation.
func (h *PermissionHandler) GetMyPermissions(c *gin.Context) {
	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)

	permissions, err := h.permissionService.GetPermissionsForRole(roleStr)
	if err != nil {
		utils.LogError(err, "GetMyPermissions: Error from permissionService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch permissions.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role": roleStr,
		"data": permissions,
	})
}

// UpsertPermission handles PUT /permissions.
func (h *PermissionHandler) UpsertPermission(c *gin.Context) {
	var permission models.RolePermission
	if err := c.ShouldBindJSON(&permission); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.permissionService.UpsertPermission(&permission); err != nil {
		utils.LogError(err, "UpsertPermission: Error from permissionService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to save permission.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, permission)
}

// DeletePermission handles DELETE /permissions/:role/:pageID.
func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	role := c.Param("role")
	pageID := c.Param("pageID")

	if err := h.permissionService.DeletePermission(role, pageID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Permission not found.", ""))
		} else {
			utils.LogError(err, "DeletePermission: Error from permissionService")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete permission.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
