package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"resto_pos_backend/internal/database"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CreateRestaurantTable handles creation of a new floor-plan table
func CreateRestaurantTable(c *gin.Context) {
	var table models.RestaurantTable
	if err := c.ShouldBindJSON(&table); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if table.Status == "" {
		table.Status = models.TableStatusAvailable
	}
	if table.Seats <= 0 {
		table.Seats = 2
	}

	db := database.GetDB()
	query := `INSERT INTO restaurant_tables (name, seats, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	now := time.Now()
	err := db.QueryRow(query, table.Name, table.Seats, table.Status, now, now).
		Scan(&table.ID, &table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, table)
}

// GetRestaurantTables retrieves all tables for the floor view
func GetRestaurantTables(c *gin.Context) {
	db := database.GetDB()
	rows, err := db.Query("SELECT id, name, seats, status, created_at, updated_at FROM restaurant_tables ORDER BY name")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tables: " + err.Error()})
		return
	}
	defer rows.Close()

	tables := []models.RestaurantTable{}
	for rows.Next() {
		var t models.RestaurantTable
		if err := rows.Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan table: " + err.Error()})
			return
		}
		tables = append(tables, t)
	}
	c.JSON(http.StatusOK, tables)
}

// GetRestaurantTableByID retrieves one table
func GetRestaurantTableByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID format"})
		return
	}

	db := database.GetDB()
	var t models.RestaurantTable
	query := "SELECT id, name, seats, status, created_at, updated_at FROM restaurant_tables WHERE id = $1"
	err = db.QueryRow(query, id).Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch table: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateRestaurantTable updates a table's name and seat count. Status is
// deliberately not updatable here; occupancy is owned by the order flow.
func UpdateRestaurantTable(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID format"})
		return
	}

	var payload struct {
		Name  string `json:"name" binding:"required"`
		Seats int    `json:"seats"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	db := database.GetDB()
	var t models.RestaurantTable
	query := `UPDATE restaurant_tables SET name = $1, seats = $2, updated_at = $3 WHERE id = $4
	          RETURNING id, name, seats, status, created_at, updated_at`
	err = db.QueryRow(query, payload.Name, payload.Seats, time.Now(), id).
		Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update table: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteRestaurantTable deletes a table. Tables referenced by orders keep
// the orders intact (the foreign key nulls out on delete).
func DeleteRestaurantTable(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table ID format"})
		return
	}

	db := database.GetDB()

	var openOrders int
	err = db.QueryRow("SELECT COUNT(*) FROM orders WHERE table_id = $1 AND status = $2", id, models.OrderStatusPreparing).Scan(&openOrders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check open orders: " + err.Error()})
		return
	}
	if openOrders > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Table has open orders and cannot be deleted"})
		return
	}

	result, err := db.Exec("DELETE FROM restaurant_tables WHERE id = $1", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete table: " + err.Error()})
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}
