package main

import (
	"log"

	_ "clienthub/api/swagger" // swagger docs
	"clienthub/internal/config"
	"clienthub/internal/database"
	"clienthub/internal/handler"
	"clienthub/internal/middleware"
	"clienthub/internal/payment"
	"clienthub/internal/repository"
	"clienthub/internal/service"
	"clienthub/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           ClientHub API
// @version         1.0
// @description     Workspace-scoped client management and invoicing API with Stripe checkout.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if !cfg.StripeConfigured() {
		log.Println("Stripe is not configured; checkout and webhook endpoints will return 503")
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	middleware.InitAuth([]byte(cfg.JWTSecret))

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	provider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	fileRepo := repository.NewFileRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	intakeRepo := repository.NewIntakeRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	perms := service.NewPermissionService(workspaceRepo)
	auditService := service.NewAuditService(auditRepo, perms)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret))
	workspaceService := service.NewWorkspaceService(workspaceRepo, userRepo, perms, txManager)
	clientService := service.NewClientService(clientRepo, perms, auditService)
	projectService := service.NewProjectService(projectRepo, perms)
	taskService := service.NewTaskService(taskRepo, projectRepo, perms)
	messageService := service.NewMessageService(messageRepo, userRepo, perms, wsHub)
	fileService := service.NewFileService(fileRepo, perms)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, perms, provider, auditService, cfg.AppBaseURL)
	intakeService := service.NewIntakeService(intakeRepo, clientRepo, perms, auditService, txManager)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	clientHandler := handler.NewClientHandler(clientService)
	projectHandler := handler.NewProjectHandler(projectService, taskService)
	taskHandler := handler.NewTaskHandler(taskService)
	messageHandler := handler.NewMessageHandler(messageService)
	fileHandler := handler.NewFileHandler(fileService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	intakeHandler := handler.NewIntakeHandler(intakeService)
	auditHandler := handler.NewAuditHandler(auditService)
	webhookHandler := handler.NewWebhookHandler(provider, invoiceService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "Stripe-Signature"}
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
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	workspaceHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	projectHandler.RegisterRoutes(router.Group(""))
	taskHandler.RegisterRoutes(router.Group(""))
	messageHandler.RegisterRoutes(router.Group(""))
	fileHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	intakeHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	webhookHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
