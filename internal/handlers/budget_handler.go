package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/period"
	"moneta/internal/services"
)

// BudgetHandler handles budget purpose, rule, override, budget category and
// planned value requests.
type BudgetHandler struct {
	budgetService   services.BudgetServicer
	planningService services.PlanningServicer
	auditService    services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, planningService services.PlanningServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, planningService: planningService, auditService: auditService}
}

// CreatePurposeRequest represents the request payload for creating a budget purpose
type CreatePurposeRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	SourceType string  `json:"source_type" binding:"required,source_type"`
	SourceID   string  `json:"source_id" binding:"required"`
	CategoryID *string `json:"category_id"`
}

// CreateRuleRequest represents the request payload for creating a budget rule.
type CreateRuleRequest struct {
	Amount       int64   `json:"amount" binding:"required"`
	IntervalType string  `json:"interval_type" binding:"required,interval_type"`
	MonthStep    int     `json:"month_step"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      *string `json:"end_date"`
}

// SetOverrideRequest represents the request payload for setting a period override.
type SetOverrideRequest struct {
	Year   int   `json:"year" binding:"required,gte=1900,lte=2200"`
	Month  int   `json:"month" binding:"required,gte=1,lte=12"`
	Amount int64 `json:"amount"`
}

// CreateBudgetCategoryRequest represents the request payload for creating a budget category.
type CreateBudgetCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// PlannedValuesRequest holds the query parameters of a planned values request.
// Periods are YYYY-MM strings, both ends inclusive.
type PlannedValuesRequest struct {
	From       string   `form:"from" binding:"required"`
	To         string   `form:"to" binding:"required"`
	PurposeIDs []string `form:"purpose_id" binding:"required,min=1"`
}

// CreatePurpose handles the creation of a new budget purpose
func (h *BudgetHandler) CreatePurpose(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePurposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	purpose, err := h.budgetService.CreatePurpose(userID, req.Name, models.BudgetSourceType(req.SourceType), req.SourceID, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET_PURPOSE", "budget_purpose", purpose.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "source_type": req.SourceType})

	c.JSON(http.StatusCreated, gin.H{"purpose": purpose})
}

// GetUserPurposes handles the retrieval of budget purposes for a user
func (h *BudgetHandler) GetUserPurposes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserPurposes(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeletePurpose handles deleting a budget purpose together with its rules
// and overrides.
func (h *BudgetHandler) DeletePurpose(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purposeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeletePurpose(userID, purposeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET_PURPOSE", "budget_purpose", purposeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget purpose deleted"})
}

// CreateRule handles attaching a recurring rule to a purpose.
func (h *BudgetHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purposeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format"))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseDate(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date format"))
			return
		}
		endDate = &parsed
	}

	rule, err := h.budgetService.CreateRule(userID, purposeID, req.Amount,
		models.BudgetIntervalType(req.IntervalType), req.MonthStep, startDate, endDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetPurposeRules returns all rules of a purpose.
func (h *BudgetHandler) GetPurposeRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purposeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.budgetService.GetPurposeRules(userID, purposeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// DeleteRule handles deleting a budget rule.
func (h *BudgetHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteRule(userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget rule deleted"})
}

// SetOverride handles creating or replacing the override for one period.
func (h *BudgetHandler) SetOverride(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purposeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	override, err := h.budgetService.SetOverride(userID, purposeID,
		period.Key{Year: req.Year, Month: req.Month}, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"override": override})
}

// GetPurposeOverrides returns all overrides of a purpose.
func (h *BudgetHandler) GetPurposeOverrides(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purposeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	overrides, err := h.budgetService.GetPurposeOverrides(userID, purposeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

// DeleteOverride handles deleting a period override.
func (h *BudgetHandler) DeleteOverride(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overrideID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteOverride(userID, overrideID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget override deleted"})
}

// CreateBudgetCategory handles the creation of a new budget category.
func (h *BudgetHandler) CreateBudgetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.budgetService.CreateBudgetCategory(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetUserBudgetCategories returns the user's budget categories.
func (h *BudgetHandler) GetUserBudgetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserBudgetCategories(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteBudgetCategory handles deleting a budget category.
func (h *BudgetHandler) DeleteBudgetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudgetCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget category deleted"})
}

// GetPlannedValues evaluates the planning engine over a period range and
// returns planned amounts per purpose per period.
func (h *BudgetHandler) GetPlannedValues(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PlannedValuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	from, err := parsePeriodKey(req.From)
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parsePeriodKey(req.To)
	if err != nil {
		respondWithError(c, err)
		return
	}

	values, err := h.planningService.CalculatePlannedValues(userID, req.PurposeIDs, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planned := make(map[string]map[string]int64, len(req.PurposeIDs))
	for _, purposeID := range req.PurposeIDs {
		perPeriod := make(map[string]int64)
		for p := from; !p.After(to); p = p.AddMonths(1) {
			perPeriod[p.String()] = values.GetPlanned(purposeID, p)
		}
		planned[purposeID] = perPeriod
	}

	c.JSON(http.StatusOK, gin.H{"planned_values": planned})
}

// parsePeriodKey parses a YYYY-MM period string.
func parsePeriodKey(value string) (period.Key, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return period.Key{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid period, expected YYYY-MM")
	}
	return period.Key{Year: t.Year(), Month: int(t.Month())}, nil
}
