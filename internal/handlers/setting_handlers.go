package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"resto_pos_backend/internal/database"
	"resto_pos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetCompanySettings retrieves all company settings
func GetCompanySettings(c *gin.Context) {
	db := database.GetDB()
	rows, err := db.Query("SELECT id, setting_key, setting_value, description, created_at, updated_at FROM company_settings ORDER BY setting_key")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch company settings: " + err.Error()})
		return
	}
	defer rows.Close()

	settings := []models.CompanySetting{}
	for rows.Next() {
		var s models.CompanySetting
		if err := rows.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan company setting: " + err.Error()})
			return
		}
		settings = append(settings, s)
	}
	c.JSON(http.StatusOK, settings)
}

// GetCompanySettingByKey retrieves a specific company setting by its key
func GetCompanySettingByKey(c *gin.Context) {
	key := c.Param("key")
	db := database.GetDB()
	var s models.CompanySetting
	query := "SELECT id, setting_key, setting_value, description, created_at, updated_at FROM company_settings WHERE setting_key = $1"
	err := db.QueryRow(query, key).Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company setting not found for key: " + key})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch company setting: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// CreateOrUpdateCompanySetting creates a new setting or updates an existing one by key
func CreateOrUpdateCompanySetting(c *gin.Context) {
	var setting models.CompanySetting
	if err := c.ShouldBindJSON(&setting); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if setting.SettingKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Setting key cannot be empty"})
		return
	}

	db := database.GetDB()
	now := time.Now()

	query := `
	    INSERT INTO company_settings (setting_key, setting_value, description, created_at, updated_at)
	    VALUES ($1, $2, $3, $4, $5)
	    ON CONFLICT (setting_key)
	    DO UPDATE SET setting_value = EXCLUDED.setting_value, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
	    RETURNING id, setting_key, setting_value, description, created_at, updated_at`

	err := db.QueryRow(query, setting.SettingKey, setting.SettingValue, setting.Description, now, now).
		Scan(&setting.ID, &setting.SettingKey, &setting.SettingValue, &setting.Description, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create or update company setting: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, setting)
}

// DeleteCompanySettingByKey deletes a company setting by its key
func DeleteCompanySettingByKey(c *gin.Context) {
	key := c.Param("key")
	db := database.GetDB()

	result, err := db.Exec("DELETE FROM company_settings WHERE setting_key = $1", key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete company setting: " + err.Error()})
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company setting not found for key: " + key})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Company setting deleted successfully"})
}
