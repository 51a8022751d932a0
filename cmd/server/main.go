package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"resto_pos_backend/internal/database"
	"resto_pos_backend/internal/events"
	"resto_pos_backend/internal/router"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; in production everything comes from the environment.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.SetJWTSecret(utils.Getenv("JWT_SECRET", ""))

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "resto_pos_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "resto_pos_password")
	dbName := utils.Getenv("DB_NAME", "resto_pos_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	// Change feed is optional: without a broker URL every publish is a no-op.
	var publisher events.Publisher
	if rabbitURL := os.Getenv("RABBITMQ_URL"); rabbitURL != "" {
		rabbitPublisher, err := events.NewRabbitPublisher(rabbitURL)
		if err != nil {
			utils.LogError(err, "Failed to connect to RabbitMQ, falling back to no-op publisher")
			publisher = events.NewNopPublisher()
		} else {
			utils.LogInfo("Connected to RabbitMQ change feed")
			publisher = rabbitPublisher
		}
	} else {
		publisher = events.NewNopPublisher()
	}

	backupCfg := services.BackupConfig{
		Endpoint:  os.Getenv("BACKUP_ENDPOINT"),
		Bucket:    os.Getenv("BACKUP_BUCKET"),
		AccessKey: os.Getenv("BACKUP_ACCESS_KEY"),
		SecretKey: os.Getenv("BACKUP_SECRET_KEY"),
	}

	engine := gin.New()
	engine.Use(utils.GinLogger())
	engine.Use(gin.Recovery())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, database.GetDB(), publisher, backupCfg)

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
