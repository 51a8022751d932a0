package router

import (
	"database/sql"

	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/handlers"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/pos"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, publisher events.Publisher, backupCfg services.BackupConfig) {
	// Initialize Repositories
	employeeRepo := repositories.NewEmployeeRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	cashRepo := repositories.NewCashRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	permissionRepo := repositories.NewPermissionRepository(db)
	deletedOrderRepo := repositories.NewDeletedOrderRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	txBeginner := repositories.NewTxBeginner(db)

	// Carts live in process memory; one open cart per cashier.
	carts := pos.NewCartStore()

	// Initialize Services
	authService := services.NewAuthService(employeeRepo)
	employeeService := services.NewEmployeeService(employeeRepo, txBeginner)
	permissionService := services.NewPermissionService(permissionRepo, txBeginner, publisher)
	posService := services.NewPOSService(orderRepo, tableRepo, employeeRepo, carts, txBeginner, publisher)
	orderService := services.NewOrderService(orderRepo, tableRepo, deletedOrderRepo, txBeginner, publisher)
	cashService := services.NewCashService(cashRepo, orderRepo, txBeginner, publisher)
	ticketService := services.NewTicketService(settingRepo)
	reportService := services.NewReportService(db)
	backupService := services.NewBackupService(db, backupCfg)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	posHandler := handlers.NewPOSHandler(posService, permissionService, ticketService, catalogRepo, carts)
	orderHandler := handlers.NewOrderHandler(orderService, ticketService)
	cashHandler := handlers.NewCashHandler(cashService, authService, ticketService)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, txBeginner)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	permissionHandler := handlers.NewPermissionHandler(permissionService)
	reportHandler := handlers.NewReportHandler(reportService)
	backupHandler := handlers.NewBackupHandler(backupService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)

		SetupPOSRoutes(authenticated, posHandler)
		SetupOrderRoutes(authenticated, orderHandler, permissionService)
		SetupCashRoutes(authenticated, cashHandler, permissionService)
		SetupCatalogRoutes(authenticated, catalogHandler)
		SetupEmployeeRoutes(authenticated, employeeHandler)
		SetupPermissionRoutes(authenticated, permissionHandler)
		SetupReportRoutes(authenticated, reportHandler, permissionService)
		SetupBackupRoutes(authenticated, backupHandler)
		SetupTableRoutes(authenticated)
		SetupSettingsRoutes(authenticated)
	}
}

// SetupPublicAuthRoutes sets up the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
}

// SetupAuthenticatedAuthRoutes sets up the token-bound auth routes.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetProfile)
	group.POST("/refresh-token", authHandler.RefreshToken)
}
