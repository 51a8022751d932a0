package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/pos"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// POSHandler serves the register and floor views: cart manipulation, order
// confirmation and the two-step payment validation.
type POSHandler struct {
	posService        services.POSService
	permissionService services.PermissionService
	ticketService     services.TicketService
	catalogRepo       repositories.CatalogRepository
	carts             *pos.CartStore
}

// NewPOSHandler creates a new POSHandler.
func NewPOSHandler(
	ps services.POSService,
	perms services.PermissionService,
	ts services.TicketService,
	cr repositories.CatalogRepository,
	carts *pos.CartStore,
) *POSHandler {
	return &POSHandler{
		posService:        ps,
		permissionService: perms,
		ticketService:     ts,
		catalogRepo:       cr,
		carts:             carts,
	}
}

func (h *POSHandler) employeeID(c *gin.Context) (int64, bool) {
	employeeID, ok := middleware.EmployeeIDFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated.", ""))
	}
	return employeeID, ok
}

func (h *POSHandler) role(c *gin.Context) string {
	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)
	return roleStr
}

// GetCart handles GET /pos/cart.
func (h *POSHandler) GetCart(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}
	cart := h.carts.Snapshot(employeeID)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// AddCartItemRequest is the payload for putting a product in the cart. The
// unit price is captured server-side from the catalog, never trusted from
// the client.
type AddCartItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	SizeID    *int64 `json:"size_id"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
	Notes     string `json:"notes"`
}

// AddCartItem handles POST /pos/cart/items.
func (h *POSHandler) AddCartItem(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.catalogRepo.GetProductByID(req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", ""))
		} else {
			utils.LogError(err, "AddCartItem: Error fetching product")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add item.", "Internal error"))
		}
		return
	}
	if !product.Active {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Product is no longer available.", product.Name))
		return
	}

	item := pos.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		UnitPrice:   product.BasePrice,
		Notes:       req.Notes,
	}

	if req.SizeID != nil {
		size, err := h.catalogRepo.GetSizeByID(*req.SizeID)
		if err != nil || size.ProductID != product.ID {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Unknown size for this product.", ""))
			return
		}
		item.SizeID = &size.ID
		item.SizeName = &size.Name
		item.UnitPrice = product.BasePrice + size.PriceModifier
	}

	if err := h.carts.AddItem(employeeID, item); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		return
	}

	cart := h.carts.Snapshot(employeeID)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// RemoveCartItem handles DELETE /pos/cart/items/:index.
func (h *POSHandler) RemoveCartItem(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item index.", err.Error()))
		return
	}

	if err := h.carts.RemoveItem(employeeID, index); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		return
	}

	cart := h.carts.Snapshot(employeeID)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// UpdateCartItemRequest carries the new quantity for a cart line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// UpdateCartItem handles PATCH /pos/cart/items/:index.
func (h *POSHandler) UpdateCartItem(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid item index.", err.Error()))
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.carts.SetQuantity(employeeID, index, req.Quantity); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
		return
	}

	cart := h.carts.Snapshot(employeeID)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// SetServiceTypeRequest switches the cart between dine-in and takeaway.
type SetServiceTypeRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
}

// SetServiceType handles PUT /pos/cart/service-type.
func (h *POSHandler) SetServiceType(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}

	var req SetServiceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.carts.SetServiceType(employeeID, req.ServiceType); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), req.ServiceType))
		return
	}

	cart := h.carts.Snapshot(employeeID)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// ClearCart handles POST /pos/cart/clear, resetting the cart to defaults.
func (h *POSHandler) ClearCart(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}
	h.carts.Reset(employeeID)
	cart := h.carts.Snapshot(employeeID)
	c.JSON(http.StatusOK, gin.H{"cart": cart, "total": cart.Total()})
}

// CheckoutRequest carries the optional client-generated idempotency key.
type CheckoutRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// Checkout handles POST /pos/checkout: the cart becomes (or extends) a
// preparing order.
func (h *POSHandler) Checkout(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}
	if !h.permissionService.CanConfirmOrder(h.role(c)) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Your role may not confirm orders.", ""))
		return
	}

	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	pending, err := h.posService.Checkout(employeeID, req.IdempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrTableRequired):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "The order being extended no longer exists.", ""))
		case errors.Is(err, services.ErrOrderNotPreparing):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "Checkout: Error from posService.Checkout")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to confirm order.", "Internal error"))
		}
		return
	}

	status := http.StatusCreated
	if pending.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, pending)
}

// ValidateOrderRequest carries the chosen payment method.
type ValidateOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// ValidateOrder handles POST /pos/orders/:id/validate: the order is completed
// with the chosen payment method and the printable ticket is returned.
func (h *POSHandler) ValidateOrder(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}
	if !h.permissionService.CanValidateOrder(h.role(c)) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Your role may not validate orders.", ""))
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req ValidateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	validated, err := h.posService.ValidateOrder(orderID, req.PaymentMethod, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPaymentMethod):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), req.PaymentMethod))
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		case errors.Is(err, services.ErrAlreadyValidated), errors.Is(err, services.ErrOrderNotPreparing):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "ValidateOrder: Error from posService.ValidateOrder")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to validate order.", "Internal error"))
		}
		return
	}

	ticket, err := h.ticketService.RenderOrderTicket(validated)
	if err != nil {
		utils.LogError(err, "ValidateOrder: Error rendering ticket")
		ticket = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"order":        validated.Order,
		"items":        validated.Items,
		"cashier_name": validated.CashierName,
		"ticket_html":  ticket,
	})
}

// DeferValidation handles POST /pos/checkout/defer: the order stays
// preparing and unpaid and the register returns to an empty cart.
func (h *POSHandler) DeferValidation(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}
	h.posService.DeferValidation(employeeID)
	c.JSON(http.StatusOK, gin.H{"deferred": true})
}

// SelectTable handles POST /pos/tables/:id/select for the floor view.
func (h *POSHandler) SelectTable(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}

	tableID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid table ID format.", err.Error()))
		return
	}

	selection, err := h.posService.SelectTable(employeeID, tableID)
	if err != nil {
		if errors.Is(err, services.ErrTableNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Table not found.", ""))
		} else {
			utils.LogError(err, "SelectTable: Error from posService.SelectTable")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to select table.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, selection)
}

// ResumeOrder handles POST /pos/orders/:id/resume: a preparing order found on
// the floor view becomes the cart's active order again.
func (h *POSHandler) ResumeOrder(c *gin.Context) {
	employeeID, ok := h.employeeID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	pending, err := h.posService.ResumeOrder(employeeID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", ""))
		case errors.Is(err, services.ErrOrderNotPreparing):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "ResumeOrder: Error from posService.ResumeOrder")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resume order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, pending)
}
