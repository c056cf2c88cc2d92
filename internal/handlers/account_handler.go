package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// AccountHandler handles bank account requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating a bank account
type CreateAccountRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	IBAN        string  `json:"iban" binding:"max=34"`
	BIC         string  `json:"bic" binding:"max=11"`
	Description string  `json:"description" binding:"max=500"`
	Currency    string  `json:"currency" binding:"omitempty,iso4217"`
	CategoryID  *string `json:"category_id"`
}

// UpdateAccountRequest represents the request payload for updating a bank account.
type UpdateAccountRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"max=500"`
	CategoryID  *string `json:"category_id"`
}

// CreateAccount handles the creation of a new bank account
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(
		userID,
		req.Name,
		req.IBAN,
		req.BIC,
		req.Description,
		req.Currency,
		req.CategoryID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "currency": req.Currency})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetUserAccounts handles the retrieval of accounts for a user
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
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

	result, err := h.accountService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account for a user
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount handles updating an account.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(userID, accountID, req.Name, req.Description, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_ACCOUNT", "account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles deleting an account.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ACCOUNT", "account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
