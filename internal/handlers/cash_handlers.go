package handlers

import (
	"errors"
	"net/http"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CashHandler serves the cash register session lifecycle.
type CashHandler struct {
	cashService   services.CashService
	authService   services.AuthService
	ticketService services.TicketService
}

// NewCashHandler creates a new CashHandler.
func NewCashHandler(cs services.CashService, as services.AuthService, ts services.TicketService) *CashHandler {
	return &CashHandler{cashService: cs, authService: as, ticketService: ts}
}

// OpenSessionRequest carries the counted opening amount.
type OpenSessionRequest struct {
	OpeningAmount *float64 `json:"opening_amount" binding:"required"`
}

// OpenSession handles POST /cash/sessions.
func (h *CashHandler) OpenSession(c *gin.Context) {
	employeeID, ok := middleware.EmployeeIDFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", ""))
		return
	}

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	session, err := h.cashService.OpenSession(employeeID, *req.OpeningAmount)
	if err != nil {
		if errors.Is(err, services.ErrNegativeAmount) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "OpenSession: Error from cashService.OpenSession")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to open cash session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetCurrentSessions handles GET /cash/sessions/current: the employee's open
// sessions in the current workday window, with their withdrawals.
func (h *CashHandler) GetCurrentSessions(c *gin.Context) {
	employeeID, ok := middleware.EmployeeIDFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", ""))
		return
	}

	state, err := h.cashService.GetCurrentSessions(employeeID)
	if err != nil {
		utils.LogError(err, "GetCurrentSessions: Error from cashService.GetCurrentSessions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch cash sessions.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, state)
}

// CreateWithdrawal handles POST /cash/withdrawals.
func (h *CashHandler) CreateWithdrawal(c *gin.Context) {
	var req services.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	withdrawal, err := h.cashService.CreateWithdrawal(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNegativeAmount), errors.Is(err, services.ErrWithdrawalReasonMissing):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case errors.Is(err, services.ErrSessionNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cash session not found.", ""))
		case errors.Is(err, services.ErrSessionClosed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "CreateWithdrawal: Error from cashService.CreateWithdrawal")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record withdrawal.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, withdrawal)
}

// CloseSessionsRequest carries the counted drawer amount at close.
type CloseSessionsRequest struct {
	ActualClosing *float64 `json:"actual_closing" binding:"required"`
}

// CloseSessions handles POST /cash/close: every open session of the
// workday is closed in one batch and the reconciliation comes back with its
// printable ticket.
func (h *CashHandler) CloseSessions(c *gin.Context) {
	employeeID, ok := middleware.EmployeeIDFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", ""))
		return
	}

	var req CloseSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	reconciliation, err := h.cashService.CloseSessions(employeeID, *req.ActualClosing)
	if err != nil {
		if errors.Is(err, services.ErrNegativeAmount) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		} else {
			utils.LogError(err, "CloseSessions: Error from cashService.CloseSessions")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to close cash sessions.", "Internal error"))
		}
		return
	}

	ticket := ""
	if reconciliation.SessionsClosed > 0 {
		cashierName := ""
		if employee, err := h.authService.GetProfile(employeeID); err == nil {
			cashierName = employee.FullName
		}
		ticket, err = h.ticketService.RenderReconciliationTicket(reconciliation, cashierName)
		if err != nil {
			utils.LogError(err, "CloseSessions: Error rendering reconciliation ticket")
			ticket = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reconciliation": reconciliation,
		"ticket_html":    ticket,
	})
}
