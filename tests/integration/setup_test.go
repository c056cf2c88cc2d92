package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/models"
	"moneta/internal/services"
	"moneta/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Account{},
		&models.ContactGroup{},
		&models.Contact{},
		&models.SavingsPlan{},
		&models.Security{},
		&models.Category{},
		&models.Posting{},
		&models.AggregateRecord{},
		&models.BudgetCategory{},
		&models.BudgetPurpose{},
		&models.BudgetRule{},
		&models.BudgetOverride{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	contactService := services.NewContactService(db)
	categoryService := services.NewCategoryService(db)
	aggregateService := services.NewAggregateService(db, 500)
	postingService := services.NewPostingService(db, aggregateService)
	reportService := services.NewReportService(db, aggregateService)
	budgetService := services.NewBudgetService(db)
	planningService := services.NewPlanningService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	contactHandler := handlers.NewContactHandler(contactService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	postingHandler := handlers.NewPostingHandler(postingService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, planningService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)
	adminHandler := handlers.NewAdminHandler(aggregateService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)

	contacts := protected.Group("/contacts")
	contacts.POST("", contactHandler.CreateContact)
	contacts.GET("", contactHandler.GetUserContacts)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)

	postings := protected.Group("/postings")
	postings.POST("", postingHandler.CreatePosting)
	postings.GET("", postingHandler.GetUserPostings)
	postings.GET("/:id", postingHandler.GetPostingByID)
	postings.DELETE("/:id", postingHandler.DeletePosting)

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
	budget.GET("/planned-values", budgetHandler.GetPlannedValues)

	reports := protected.Group("/reports")
	reports.GET("/postings", reportHandler.GetPostingReport)

	admin := protected.Group("/admin")
	admin.POST("/aggregates/rebuild", adminHandler.RebuildAggregates)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAccount creates a bank account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/accounts",
		fmt.Sprintf(`{"name":%q,"currency":"EUR"}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	return account["id"].(string)
}

// createContact creates a contact and returns its ID.
func (app *testApp) createContact(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/contacts",
		fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact failed: %d %s", rec.Code, rec.Body.String())
	}
	contact := parseJSON(t, rec)["contact"].(map[string]interface{})
	return contact["id"].(string)
}

// bookPosting books a bank posting and returns its ID.
func (app *testApp) bookPosting(t *testing.T, token, accountID, date string, amount int64) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/postings",
		fmt.Sprintf(`{"kind":"bank","account_id":%q,"booking_date":%q,"amount":%d}`, accountID, date, amount), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("book posting failed: %d %s", rec.Code, rec.Body.String())
	}
	posting := parseJSON(t, rec)["posting"].(map[string]interface{})
	return posting["id"].(string)
}
