package router

import (
	"resto_pos_backend/internal/handlers"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupPOSRoutes sets up the cash-register routes. Confirm/validate rights
// are checked inside the handlers against the role's register flags, so the
// group itself only requires a valid token.
func SetupPOSRoutes(authenticatedGroup *gin.RouterGroup, posHandler *handlers.POSHandler) {
	posRoutes := authenticatedGroup.Group("/pos")
	{
		posRoutes.GET("/cart", posHandler.GetCart)
		posRoutes.POST("/cart/items", posHandler.AddCartItem)
		posRoutes.PATCH("/cart/items/:index", posHandler.UpdateCartItem)
		posRoutes.DELETE("/cart/items/:index", posHandler.RemoveCartItem)
		posRoutes.PUT("/cart/service-type", posHandler.SetServiceType)
		posRoutes.POST("/cart/clear", posHandler.ClearCart)

		posRoutes.POST("/checkout", posHandler.Checkout)
		posRoutes.POST("/checkout/defer", posHandler.DeferValidation)
		posRoutes.POST("/orders/:id/validate", posHandler.ValidateOrder)
		posRoutes.POST("/orders/:id/resume", posHandler.ResumeOrder)
		posRoutes.POST("/tables/:id/select", posHandler.SelectTable)
	}
}

// SetupOrderRoutes sets up the orders dashboard routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, permissionService services.PermissionService) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.PermissionGate(permissionService, "orders"))
	{
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/deleted", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin), orderHandler.GetDeletedOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.GET("/:id/ticket", orderHandler.GetOrderTicket)
		orderRoutes.POST("/:id/cancel", orderHandler.CancelOrder)
		orderRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin), orderHandler.DeleteOrder)
	}
}

// SetupCashRoutes sets up the cash register session routes.
func SetupCashRoutes(authenticatedGroup *gin.RouterGroup, cashHandler *handlers.CashHandler, permissionService services.PermissionService) {
	cashRoutes := authenticatedGroup.Group("/cash")
	cashRoutes.Use(middleware.PermissionGate(permissionService, "cash"))
	{
		cashRoutes.POST("/sessions", cashHandler.OpenSession)
		cashRoutes.GET("/sessions/current", cashHandler.GetCurrentSessions)
		cashRoutes.POST("/withdrawals", cashHandler.CreateWithdrawal)
		cashRoutes.POST("/close", cashHandler.CloseSessions)
	}
}

// SetupCatalogRoutes sets up the product catalog routes. Reads are open to
// any signed-in employee (the register needs the menu); writes are admin only.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	authenticatedGroup.GET("/products", catalogHandler.GetProducts)
	authenticatedGroup.GET("/products/:id", catalogHandler.GetProductByID)

	catalogWriteRoutes := authenticatedGroup.Group("/products")
	catalogWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		catalogWriteRoutes.POST("", catalogHandler.CreateProduct)
		catalogWriteRoutes.PUT("/:id", catalogHandler.UpdateProduct)
		catalogWriteRoutes.DELETE("/:id", catalogHandler.DeleteProduct)
		catalogWriteRoutes.POST("/:id/sizes", catalogHandler.CreateProductSize)
		catalogWriteRoutes.DELETE("/sizes/:sizeID", catalogHandler.DeleteProductSize)
	}
}

// SetupEmployeeRoutes sets up the employee management routes.
func SetupEmployeeRoutes(authenticatedGroup *gin.RouterGroup, employeeHandler *handlers.EmployeeHandler) {
	employeeRoutes := authenticatedGroup.Group("/employees")
	employeeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		employeeRoutes.POST("", employeeHandler.CreateEmployee)
		employeeRoutes.GET("", employeeHandler.GetEmployees)
		employeeRoutes.GET("/:id", employeeHandler.GetEmployeeByID)
		employeeRoutes.PUT("/:id", employeeHandler.UpdateEmployee)
		employeeRoutes.DELETE("/:id", employeeHandler.DeactivateEmployee)
	}
}

// SetupPermissionRoutes sets up the role permission routes. /me is open to
// any signed-in employee so the client can build its navigation.
func SetupPermissionRoutes(authenticatedGroup *gin.RouterGroup, permissionHandler *handlers.PermissionHandler) {
	authenticatedGroup.GET("/permissions/me", permissionHandler.GetMyPermissions)

	permissionRoutes := authenticatedGroup.Group("/permissions")
	permissionRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		permissionRoutes.GET("/:role", permissionHandler.GetPermissionsForRole)
		permissionRoutes.PUT("", permissionHandler.UpsertPermission)
		permissionRoutes.DELETE("/:role/:pageID", permissionHandler.DeletePermission)
	}
}

// SetupReportRoutes sets up the sales report routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler, permissionService services.PermissionService) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.PermissionGate(permissionService, "reports"))
	{
		reportRoutes.GET("/sales", reportHandler.GetSalesSummary)
		reportRoutes.GET("/top-products", reportHandler.GetTopProducts)
		reportRoutes.GET("/sales/export", reportHandler.ExportSales)
	}
}

// SetupBackupRoutes sets up the on-demand backup route.
func SetupBackupRoutes(authenticatedGroup *gin.RouterGroup, backupHandler *handlers.BackupHandler) {
	backupRoutes := authenticatedGroup.Group("/backups")
	backupRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		backupRoutes.POST("", backupHandler.RunBackup)
	}
}

// SetupTableRoutes sets up the restaurant table routes. Reads are open to
// any signed-in employee (the floor plan needs them); writes are admin only.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup /*, handler *handlers.TableHandler*/) {
	authenticatedGroup.GET("/tables", handlers.GetRestaurantTables)
	authenticatedGroup.GET("/tables/:id", handlers.GetRestaurantTableByID)

	tableWriteRoutes := authenticatedGroup.Group("/tables")
	tableWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		tableWriteRoutes.POST("", handlers.CreateRestaurantTable)
		tableWriteRoutes.PUT("/:id", handlers.UpdateRestaurantTable)
		tableWriteRoutes.DELETE("/:id", handlers.DeleteRestaurantTable)
	}
}

// SetupSettingsRoutes sets up the company settings routes.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup /*, handler *handlers.SettingHandler*/) {
	settingsRoutes := authenticatedGroup.Group("/settings")
	settingsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		settingsRoutes.GET("", handlers.GetCompanySettings)
		settingsRoutes.POST("", handlers.CreateOrUpdateCompanySetting)
		settingsRoutes.GET("/:key", handlers.GetCompanySettingByKey)
		settingsRoutes.DELETE("/:key", handlers.DeleteCompanySettingByKey)
	}
}
