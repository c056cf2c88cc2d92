package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// PostingHandler handles posting booking and retrieval requests.
type PostingHandler struct {
	postingService services.PostingServicer
	auditService   services.AuditServicer
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingService services.PostingServicer, auditService services.AuditServicer) *PostingHandler {
	return &PostingHandler{postingService: postingService, auditService: auditService}
}

// CreatePostingRequest represents the request payload for booking a posting.
// Exactly the entity reference matching the kind must be set; valuta_date
// defaults to booking_date when omitted.
type CreatePostingRequest struct {
	Kind                string   `json:"kind" binding:"required,posting_kind"`
	AccountID           *string  `json:"account_id"`
	ContactID           *string  `json:"contact_id"`
	SavingsPlanID       *string  `json:"savings_plan_id"`
	SecurityID          *string  `json:"security_id"`
	BookingDate         string   `json:"booking_date" binding:"required"`
	ValutaDate          *string  `json:"valuta_date"`
	Amount              int64    `json:"amount" binding:"required"`
	Description         string   `json:"description" binding:"max=500"`
	SecurityPostingType *string  `json:"security_posting_type" binding:"omitempty,security_posting_type"`
	Quantity            *float64 `json:"quantity" binding:"omitempty,gt=0"`
}

// CreatePosting books a new posting and updates its month rollups.
func (h *PostingHandler) CreatePosting(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	bookingDate, err := parseDate(req.BookingDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid booking_date format"))
		return
	}

	var valutaDate time.Time
	if req.ValutaDate != nil && *req.ValutaDate != "" {
		valutaDate, err = parseDate(*req.ValutaDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid valuta_date format"))
			return
		}
	}

	input := services.PostingInput{
		Kind:          models.PostingKind(req.Kind),
		AccountID:     req.AccountID,
		ContactID:     req.ContactID,
		SavingsPlanID: req.SavingsPlanID,
		SecurityID:    req.SecurityID,
		BookingDate:   bookingDate,
		ValutaDate:    valutaDate,
		Amount:        req.Amount,
		Description:   req.Description,
		Quantity:      req.Quantity,
	}
	if req.SecurityPostingType != nil {
		t := models.SecurityPostingType(*req.SecurityPostingType)
		input.SecurityPostingType = &t
	}

	posting, err := h.postingService.CreatePosting(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_POSTING", "posting", posting.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"posting": posting})
}

// GetUserPostings returns a paginated, filterable list of the user's postings.
func (h *PostingHandler) GetUserPostings(c *gin.Context) {
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

	var filter services.PostingFilter
	if raw := c.Query("kind"); raw != "" {
		kind := models.PostingKind(raw)
		if !kind.Valid() {
			respondWithError(c, apperrors.ErrInvalidPostingKind)
			return
		}
		filter.Kind = &kind
	}
	if raw := c.Query("entity_id"); raw != "" {
		filter.EntityID = &raw
	}
	if raw := c.Query("from"); raw != "" {
		from, parseErr := parseDate(raw)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from date"))
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, parseErr := parseDate(raw)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to date"))
			return
		}
		filter.ToDate = &to
	}

	result, err := h.postingService.GetUserPostings(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPostingByID returns a single posting.
func (h *PostingHandler) GetPostingByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	postingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	posting, err := h.postingService.GetPostingByID(userID, postingID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posting": posting})
}

// DeletePosting removes a posting and reverses its rollup contribution.
func (h *PostingHandler) DeletePosting(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	postingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.postingService.DeletePosting(userID, postingID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_POSTING", "posting", postingID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Posting deleted"})
}
