package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// CategoryHandler handles entity category requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Kind        string `json:"kind" binding:"required,posting_kind"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// CreateCategory handles the creation of a new category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name, models.PostingKind(req.Kind), req.Description, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetUserCategories handles the retrieval of categories for a user,
// optionally filtered by posting kind.
func (h *CategoryHandler) GetUserCategories(c *gin.Context) {
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

	var kind *models.PostingKind
	if raw := c.Query("kind"); raw != "" {
		k := models.PostingKind(raw)
		if !k.Valid() {
			respondWithError(c, apperrors.ErrInvalidPostingKind)
			return
		}
		kind = &k
	}

	result, err := h.categoryService.GetUserCategories(userID, kind, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategoryByID handles the retrieval of a specific category for a user
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
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

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating a category. The kind of an existing
// category is fixed; only descriptive fields change.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
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

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, req.Name, req.Description, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
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

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
