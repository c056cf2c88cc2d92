package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// SavingsPlanHandler handles savings plan requests.
type SavingsPlanHandler struct {
	planService  services.SavingsPlanServicer
	auditService services.AuditServicer
}

// NewSavingsPlanHandler creates a new SavingsPlanHandler.
func NewSavingsPlanHandler(planService services.SavingsPlanServicer, auditService services.AuditServicer) *SavingsPlanHandler {
	return &SavingsPlanHandler{planService: planService, auditService: auditService}
}

// CreateSavingsPlanRequest represents the request payload for creating a savings plan
type CreateSavingsPlanRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	Provider   string  `json:"provider" binding:"max=100"`
	ContractNo string  `json:"contract_no" binding:"max=50"`
	StartDate  *string `json:"start_date"`
	CategoryID *string `json:"category_id"`
}

// UpdateSavingsPlanRequest represents the request payload for updating a savings plan.
type UpdateSavingsPlanRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	Provider   string  `json:"provider" binding:"max=100"`
	CategoryID *string `json:"category_id"`
}

// CreateSavingsPlan handles the creation of a new savings plan
func (h *SavingsPlanHandler) CreateSavingsPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingsPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var startDate *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		parsed, parseErr := parseDate(*req.StartDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format"))
			return
		}
		startDate = &parsed
	}

	plan, err := h.planService.CreateSavingsPlan(userID, req.Name, req.Provider, req.ContractNo, startDate, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SAVINGS_PLAN", "savings_plan", plan.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "provider": req.Provider})

	c.JSON(http.StatusCreated, gin.H{"savings_plan": plan})
}

// GetUserSavingsPlans handles the retrieval of savings plans for a user
func (h *SavingsPlanHandler) GetUserSavingsPlans(c *gin.Context) {
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

	result, err := h.planService.GetUserSavingsPlans(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSavingsPlanByID handles the retrieval of a specific savings plan for a user
func (h *SavingsPlanHandler) GetSavingsPlanByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.GetSavingsPlanByID(userID, planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"savings_plan": plan})
}

// UpdateSavingsPlan handles updating a savings plan.
func (h *SavingsPlanHandler) UpdateSavingsPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSavingsPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	plan, err := h.planService.UpdateSavingsPlan(userID, planID, req.Name, req.Provider, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SAVINGS_PLAN", "savings_plan", planID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"savings_plan": plan})
}

// DeleteSavingsPlan handles deleting a savings plan.
func (h *SavingsPlanHandler) DeleteSavingsPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.planService.DeleteSavingsPlan(userID, planID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SAVINGS_PLAN", "savings_plan", planID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Savings plan deleted"})
}
