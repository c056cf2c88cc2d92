package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// SecurityHandler handles security (tradable instrument) requests.
type SecurityHandler struct {
	securityService services.SecurityServicer
	auditService    services.AuditServicer
}

// NewSecurityHandler creates a new SecurityHandler.
func NewSecurityHandler(securityService services.SecurityServicer, auditService services.AuditServicer) *SecurityHandler {
	return &SecurityHandler{securityService: securityService, auditService: auditService}
}

// CreateSecurityRequest represents the request payload for creating a security
type CreateSecurityRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	ISIN       string  `json:"isin" binding:"max=12"`
	WKN        string  `json:"wkn" binding:"max=6"`
	Symbol     string  `json:"symbol" binding:"max=10"`
	CategoryID *string `json:"category_id"`
}

// UpdateSecurityRequest represents the request payload for updating a security.
type UpdateSecurityRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	Symbol     string  `json:"symbol" binding:"max=10"`
	CategoryID *string `json:"category_id"`
}

// CreateSecurity handles the creation of a new security
func (h *SecurityHandler) CreateSecurity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	security, err := h.securityService.CreateSecurity(userID, req.Name, req.ISIN, req.WKN, req.Symbol, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SECURITY", "security", security.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "isin": req.ISIN})

	c.JSON(http.StatusCreated, gin.H{"security": security})
}

// GetUserSecurities handles the retrieval of securities for a user
func (h *SecurityHandler) GetUserSecurities(c *gin.Context) {
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

	result, err := h.securityService.GetUserSecurities(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSecurityByID handles the retrieval of a specific security for a user
func (h *SecurityHandler) GetSecurityByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	securityID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	security, err := h.securityService.GetSecurityByID(userID, securityID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"security": security})
}

// UpdateSecurity handles updating a security.
func (h *SecurityHandler) UpdateSecurity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	securityID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	security, err := h.securityService.UpdateSecurity(userID, securityID, req.Name, req.Symbol, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SECURITY", "security", securityID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"security": security})
}

// DeleteSecurity handles deleting a security.
func (h *SecurityHandler) DeleteSecurity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	securityID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.securityService.DeleteSecurity(userID, securityID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SECURITY", "security", securityID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Security deleted"})
}
