package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/period"
	"moneta/internal/services"
)

// ReportHandler handles report queries over the aggregate store.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportRequest holds the query parameters of a report request. The date
// kind defaults to booking and the analysis date to today.
type ReportRequest struct {
	Kind            string `form:"kind" binding:"required,posting_kind"`
	Interval        string `form:"interval" binding:"required,granularity"`
	DateKind        string `form:"date_kind" binding:"omitempty,date_kind"`
	TakePeriods     int    `form:"take_periods" binding:"required,gte=1,lte=120"`
	IncludeCategory bool   `form:"include_category"`
	ComparePrevious bool   `form:"compare_previous"`
	CompareYear     bool   `form:"compare_year"`
	AnalysisDate    string `form:"analysis_date"`
}

// GetPostingReport runs one report over the posting rollups.
func (h *ReportHandler) GetPostingReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	query := services.ReportQuery{
		Kind:            models.PostingKind(req.Kind),
		Interval:        period.Granularity(req.Interval),
		DateKind:        period.DateKindBooking,
		TakePeriods:     req.TakePeriods,
		IncludeCategory: req.IncludeCategory,
		ComparePrevious: req.ComparePrevious,
		CompareYear:     req.CompareYear,
		AnalysisDate:    time.Now().UTC(),
	}
	if req.DateKind != "" {
		query.DateKind = period.DateKind(req.DateKind)
	}
	if req.AnalysisDate != "" {
		analysisDate, parseErr := parseDate(req.AnalysisDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid analysis_date format"))
			return
		}
		query.AnalysisDate = analysisDate
	}

	points, err := h.reportService.Query(userID, query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}
