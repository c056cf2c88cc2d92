package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/logger"
	"moneta/internal/services"
)

// AdminHandler handles maintenance operations on the authenticated user's
// own data.
type AdminHandler struct {
	aggregateService services.AggregateServicer
	auditService     services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(aggregateService services.AggregateServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{aggregateService: aggregateService, auditService: auditService}
}

// RebuildAggregates recomputes all posting rollups for the authenticated
// user from scratch. The rebuild runs synchronously within the request;
// a second request while one is running is rejected with a conflict.
func (h *AdminHandler) RebuildAggregates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	log := logger.Get()
	var processed int64
	err = h.aggregateService.RebuildForUser(c.Request.Context(), userID, func(done, total int64) {
		processed = done
		log.Debugw("rebuild progress", "user_id", userID, "done", done, "total", total)
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REBUILD_AGGREGATES", "aggregate", userID, c.ClientIP(),
		map[string]interface{}{"postings": processed})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Aggregates rebuilt",
		"postings": processed,
	})
}
