package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler manages staff accounts.
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(es services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: es}
}

// CreateEmployee handles POST /employees.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	employee, err := h.employeeService.CreateEmployee(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "This username is already taken.", req.Username))
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.LogError(err, "CreateEmployee: Error from employeeService.CreateEmployee")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create employee.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// GetEmployees handles GET /employees.
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	employees, err := h.employeeService.GetEmployees()
	if err != nil {
		utils.LogError(err, "GetEmployees: Error from employeeService.GetEmployees")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch employees.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": employees})
}

// GetEmployeeByID handles GET /employees/:id.
func (h *EmployeeHandler) GetEmployeeByID(c *gin.Context) {
	employeeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid employee ID format.", err.Error()))
		return
	}

	employee, err := h.employeeService.GetEmployeeByID(employeeID)
	if err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", ""))
		} else {
			utils.LogError(err, "GetEmployeeByID: Error from employeeService.GetEmployeeByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch employee.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, employee)
}

// UpdateEmployee handles PUT /employees/:id.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	employeeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid employee ID format.", err.Error()))
		return
	}

	var req services.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	employee, err := h.employeeService.UpdateEmployee(employeeID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", ""))
		case errors.Is(err, services.ErrUsernameExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "This username is already taken.", ""))
		case errors.Is(err, services.ErrInvalidRole):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.LogError(err, "UpdateEmployee: Error from employeeService.UpdateEmployee")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update employee.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeactivateEmployee handles DELETE /employees/:id. Accounts are never hard
// deleted; their orders keep pointing at them.
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	employeeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid employee ID format.", err.Error()))
		return
	}

	if err := h.employeeService.DeactivateEmployee(employeeID); err != nil {
		if errors.Is(err, services.ErrEmployeeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Employee not found.", ""))
		} else {
			utils.LogError(err, "DeactivateEmployee: Error from employeeService.DeactivateEmployee")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to deactivate employee.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}
