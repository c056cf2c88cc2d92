package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/services"
	"moneta/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	contactService := services.NewContactService(db)
	savingsPlanService := services.NewSavingsPlanService(db)
	securityService := services.NewSecurityService(db)
	categoryService := services.NewCategoryService(db)
	aggregateService := services.NewAggregateService(db, appConfig.RebuildBatchSize)
	postingService := services.NewPostingService(db, aggregateService)
	reportService := services.NewReportService(db, aggregateService)
	budgetService := services.NewBudgetService(db)
	planningService := services.NewPlanningService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	contactHandler := handlers.NewContactHandler(contactService, auditService)
	savingsPlanHandler := handlers.NewSavingsPlanHandler(savingsPlanService, auditService)
	securityHandler := handlers.NewSecurityHandler(securityService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	postingHandler := handlers.NewPostingHandler(postingService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, planningService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)
	adminHandler := handlers.NewAdminHandler(aggregateService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Contact routes
	contacts := protected.Group("/contacts")
	contacts.POST("", contactHandler.CreateContact)
	contacts.GET("", contactHandler.GetUserContacts)
	contacts.GET("/:id", contactHandler.GetContactByID)
	contacts.PUT("/:id", contactHandler.UpdateContact)
	contacts.DELETE("/:id", contactHandler.DeleteContact)

	contactGroups := protected.Group("/contact-groups")
	contactGroups.POST("", contactHandler.CreateContactGroup)
	contactGroups.GET("", contactHandler.GetUserContactGroups)
	contactGroups.DELETE("/:id", contactHandler.DeleteContactGroup)

	// Savings plan routes
	savingsPlans := protected.Group("/savings-plans")
	savingsPlans.POST("", savingsPlanHandler.CreateSavingsPlan)
	savingsPlans.GET("", savingsPlanHandler.GetUserSavingsPlans)
	savingsPlans.GET("/:id", savingsPlanHandler.GetSavingsPlanByID)
	savingsPlans.PUT("/:id", savingsPlanHandler.UpdateSavingsPlan)
	savingsPlans.DELETE("/:id", savingsPlanHandler.DeleteSavingsPlan)

	// Security routes
	securities := protected.Group("/securities")
	securities.POST("", securityHandler.CreateSecurity)
	securities.GET("", securityHandler.GetUserSecurities)
	securities.GET("/:id", securityHandler.GetSecurityByID)
	securities.PUT("/:id", securityHandler.UpdateSecurity)
	securities.DELETE("/:id", securityHandler.DeleteSecurity)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Posting routes
	postings := protected.Group("/postings")
	postings.POST("", postingHandler.CreatePosting)
	postings.GET("", postingHandler.GetUserPostings)
	postings.GET("/:id", postingHandler.GetPostingByID)
	postings.DELETE("/:id", postingHandler.DeletePosting)

	// Budget routes
	budget := protected.Group("/budget")
	budget.POST("/purposes", budgetHandler.CreatePurpose)
	budget.GET("/purposes", budgetHandler.GetUserPurposes)
	budget.DELETE("/purposes/:id", budgetHandler.DeletePurpose)
	budget.POST("/purposes/:id/rules", budgetHandler.CreateRule)
	budget.GET("/purposes/:id/rules", budgetHandler.GetPurposeRules)
	budget.DELETE("/rules/:id", budgetHandler.DeleteRule)
	budget.PUT("/purposes/:id/override", budgetHandler.SetOverride)
	budget.GET("/purposes/:id/overrides", budgetHandler.GetPurposeOverrides)
	budget.DELETE("/overrides/:id", budgetHandler.DeleteOverride)
	budget.POST("/categories", budgetHandler.CreateBudgetCategory)
	budget.GET("/categories", budgetHandler.GetUserBudgetCategories)
	budget.DELETE("/categories/:id", budgetHandler.DeleteBudgetCategory)
	budget.GET("/planned-values", budgetHandler.GetPlannedValues)

	// Report routes
	reports := protected.Group("/reports")
	reports.GET("/postings", reportHandler.GetPostingReport)

	// Maintenance routes
	admin := protected.Group("/admin")
	admin.POST("/aggregates/rebuild", adminHandler.RebuildAggregates)

	log.Infof("Starting Moneta backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
