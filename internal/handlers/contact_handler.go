package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// ContactHandler handles contact and contact group requests.
type ContactHandler struct {
	contactService services.ContactServicer
	auditService   services.AuditServicer
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService services.ContactServicer, auditService services.AuditServicer) *ContactHandler {
	return &ContactHandler{contactService: contactService, auditService: auditService}
}

// CreateContactRequest represents the request payload for creating a contact
type CreateContactRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	IBAN       string  `json:"iban" binding:"max=34"`
	Note       string  `json:"note" binding:"max=500"`
	GroupID    *string `json:"group_id"`
	CategoryID *string `json:"category_id"`
}

// UpdateContactRequest represents the request payload for updating a contact.
type UpdateContactRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	Note       string  `json:"note" binding:"max=500"`
	GroupID    *string `json:"group_id"`
	CategoryID *string `json:"category_id"`
}

// CreateContactGroupRequest represents the request payload for creating a contact group.
type CreateContactGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateContact handles the creation of a new contact
func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	contact, err := h.contactService.CreateContact(userID, req.Name, req.IBAN, req.Note, req.GroupID, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CONTACT", "contact", contact.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

// GetUserContacts handles the retrieval of contacts for a user
func (h *ContactHandler) GetUserContacts(c *gin.Context) {
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

	result, err := h.contactService.GetUserContacts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetContactByID handles the retrieval of a specific contact for a user
func (h *ContactHandler) GetContactByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	contactID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	contact, err := h.contactService.GetContactByID(userID, contactID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

// UpdateContact handles updating a contact.
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	contactID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	contact, err := h.contactService.UpdateContact(userID, contactID, req.Name, req.Note, req.GroupID, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CONTACT", "contact", contactID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

// DeleteContact handles deleting a contact.
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	contactID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.contactService.DeleteContact(userID, contactID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CONTACT", "contact", contactID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
}

// CreateContactGroup handles the creation of a new contact group.
func (h *ContactHandler) CreateContactGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateContactGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.contactService.CreateContactGroup(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// GetUserContactGroups handles the retrieval of contact groups for a user.
func (h *ContactHandler) GetUserContactGroups(c *gin.Context) {
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

	result, err := h.contactService.GetUserContactGroups(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteContactGroup handles deleting a contact group.
func (h *ContactHandler) DeleteContactGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.contactService.DeleteContactGroup(userID, groupID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact group deleted"})
}
