package main

import (
	"log"
	"os"

	_ "easset/api/swagger" // swagger docs
	"easset/internal/database"
	"easset/internal/handler"
	"easset/internal/middleware"
	"easset/internal/repository"
	"easset/internal/service"
	"easset/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           eAsset API
// @version         1.0
// @description     Fixed-asset tracking backend: demolish and transfer approval workflows, yearly stocktake campaigns, SAP sync outbox.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	driver := os.Getenv("DB_DRIVER")
	dsn := os.Getenv("DB_DSN")
	if driver == "postgres" && dsn == "" {
		dbHost := envOr("DB_HOST", "localhost")
		dbPort := envOr("DB_PORT", "5432")
		dbUser := envOr("DB_USER", "postgres")
		dbPassword := envOr("DB_PASSWORD", "postgres")
		dbName := envOr("DB_NAME", "easset")
		dbSslMode := envOr("DB_SSLMODE", "disable")
		dsn = "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
	}

	db, err := database.NewConnection(driver, dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connected.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	demolishRepo := repository.NewDemolishRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	stocktakeRepo := repository.NewStocktakeRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, txManager)
	assetService := service.NewAssetService(assetRepo, txManager)
	demolishService := service.NewDemolishService(demolishRepo, assetRepo, outboxRepo, sequenceRepo, auditRepo, txManager, wsHub)
	transferService := service.NewTransferService(transferRepo, assetRepo, outboxRepo, sequenceRepo, auditRepo, txManager, wsHub)
	stocktakeService := service.NewStocktakeService(stocktakeRepo, assetRepo, auditRepo, txManager, wsHub)
	syncService := service.NewSyncService(outboxRepo, auditRepo, txManager)
	reportService := service.NewReportService(demolishRepo, transferRepo, stocktakeRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	assetHandler := handler.NewAssetHandler(assetService)
	demolishHandler := handler.NewDemolishHandler(demolishService)
	transferHandler := handler.NewTransferHandler(transferService)
	stocktakeHandler := handler.NewStocktakeHandler(stocktakeService)
	syncHandler := handler.NewSyncHandler(syncService)
	reportHandler := handler.NewReportHandler(reportService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	assetHandler.RegisterRoutes(router.Group(""))
	demolishHandler.RegisterRoutes(router.Group(""))
	transferHandler.RegisterRoutes(router.Group(""))
	stocktakeHandler.RegisterRoutes(router.Group(""))
	syncHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
