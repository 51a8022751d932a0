package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BackupHandler triggers on-demand database exports to remote storage.
type BackupHandler struct {
	backupService services.BackupService
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(bs services.BackupService) *BackupHandler {
	return &BackupHandler{backupService: bs}
}

// RunBackup handles POST /backup.
func (h *BackupHandler) RunBackup(c *gin.Context) {
	fileName := fmt.Sprintf("backup_%s.json", time.Now().UTC().Format("20060102_150405"))
	result, err := h.backupService.Run(c.Request.Context(), fileName)
	if err != nil {
		if errors.Is(err, services.ErrBackupNotConfigured) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Backup storage is not configured.", ""))
			return
		}
		utils.LogError(err, "RunBackup: Error from backupService.Run")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Backup failed.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}
