package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler serves the back-office orders dashboard.
type OrderHandler struct {
	orderService  services.OrderService
	ticketService services.TicketService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService, ts services.TicketService) *OrderHandler {
	return &OrderHandler{orderService: os, ticketService: ts}
}

// GetOrders handles fetching orders with pagination and filters.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filters := models.OrderFilters{Page: page, PageSize: pageSize}

	if employeeIDStr := c.Query("employee_id"); employeeIDStr != "" {
		id, err := strconv.ParseInt(employeeIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid employee_id format.", err.Error()))
			return
		}
		filters.EmployeeID = &id
	}
	if tableIDStr := c.Query("table_id"); tableIDStr != "" {
		id, err := strconv.ParseInt(tableIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid table_id format.", err.Error()))
			return
		}
		filters.TableID = &id
	}
	if status := c.Query("status"); status != "" {
		if status != models.OrderStatusPreparing && status != models.OrderStatusCompleted && status != models.OrderStatusCancelled {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid status value.", "status: "+status))
			return
		}
		filters.Status = &status
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		utils.LogError(err, "GetOrders: Error from orderService.GetOrders")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch orders.", "Internal error"))
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetOrderByID handles GET /orders/:id, items included.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		} else {
			utils.LogError(err, "GetOrderByID: Error from orderService.GetOrderByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderTicket handles GET /orders/:id/ticket: a reprint of the order's
// receipt.
func (h *OrderHandler) GetOrderTicket(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		} else {
			utils.LogError(err, "GetOrderTicket: Error from orderService.GetOrderByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		}
		return
	}
	if order.Status != models.OrderStatusCompleted {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Only completed orders have a ticket.", order.Status))
		return
	}

	ticket, err := h.ticketService.RenderOrderTicket(&services.ValidatedOrder{Order: order, Items: order.OrderItems})
	if err != nil {
		utils.LogError(err, "GetOrderTicket: Error rendering ticket")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to render ticket.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_html": ticket})
}

// CancelOrder handles POST /orders/:id/cancel.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	order, err := h.orderService.CancelOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		case errors.Is(err, services.ErrOrderNotCancellable):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "CancelOrder: Error from orderService.CancelOrder")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to cancel order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrderRequest carries the mandatory deletion justification.
type DeleteOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DeleteOrder handles DELETE /orders/:id. Admin only; the order is archived
// before it is removed.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req DeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A deletion reason is required.", err.Error()))
		return
	}

	deletedBy, ok := middleware.EmployeeIDFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", ""))
		return
	}

	if err := h.orderService.DeleteOrder(orderID, req.Reason, deletedBy); err != nil {
		switch {
		case errors.Is(err, services.ErrDeletionReasonRequired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		default:
			utils.LogError(err, "DeleteOrder: Error from orderService.DeleteOrder")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetDeletedOrders handles GET /orders/deleted: the archive written on every
// hard delete.
func (h *OrderHandler) GetDeletedOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	archives, err := h.orderService.GetDeletedOrders(limit)
	if err != nil {
		utils.LogError(err, "GetDeletedOrders: Error from orderService.GetDeletedOrders")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch deleted orders.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": archives})
}
