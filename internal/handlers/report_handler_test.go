package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"moneta/internal/models"
	"moneta/internal/period"
	"moneta/internal/services"
)

type mockReportService struct {
	queryFn func(userID string, q services.ReportQuery) ([]services.ReportPoint, error)
}

func (m *mockReportService) Query(userID string, q services.ReportQuery) ([]services.ReportPoint, error) {
	if m.queryFn != nil {
		return m.queryFn(userID, q)
	}
	return []services.ReportPoint{}, nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	r.Use(injectUserID(testUserID))
	r.GET("/reports/postings", handler.GetPostingReport)
	return r
}

func TestReportHandler_GetPostingReport(t *testing.T) {
	t.Run("returns 200 with report points", func(t *testing.T) {
		var captured services.ReportQuery
		reportSvc := &mockReportService{
			queryFn: func(userID string, q services.ReportQuery) ([]services.ReportPoint, error) {
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				captured = q
				return []services.ReportPoint{
					{GroupKey: "Account:abc", PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 1500},
				}, nil
			},
		}
		handler := NewReportHandler(reportSvc)
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET",
			"/reports/postings?kind=bank&interval=month&take_periods=6&compare_previous=true&analysis_date=2025-06-15", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Kind != models.PostingKindBank {
			t.Errorf("expected bank kind, got %s", captured.Kind)
		}
		if captured.Interval != period.GranularityMonth {
			t.Errorf("expected month interval, got %s", captured.Interval)
		}
		if captured.TakePeriods != 6 {
			t.Errorf("expected 6 periods, got %d", captured.TakePeriods)
		}
		if !captured.ComparePrevious {
			t.Error("expected compare_previous to be set")
		}
		if !captured.AnalysisDate.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected analysis date 2025-06-15, got %v", captured.AnalysisDate)
		}

		result := parseJSON(t, rec)
		points := result["points"].([]interface{})
		if len(points) != 1 {
			t.Fatalf("expected 1 point, got %d", len(points))
		}
	})

	t.Run("date kind defaults to booking", func(t *testing.T) {
		var captured services.ReportQuery
		reportSvc := &mockReportService{
			queryFn: func(_ string, q services.ReportQuery) ([]services.ReportPoint, error) {
				captured = q
				return nil, nil
			},
		}
		handler := NewReportHandler(reportSvc)
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports/postings?kind=bank&interval=year&take_periods=3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.DateKind != period.DateKindBooking {
			t.Errorf("expected booking date kind, got %s", captured.DateKind)
		}
	})

	t.Run("honors explicit valuta date kind", func(t *testing.T) {
		var captured services.ReportQuery
		reportSvc := &mockReportService{
			queryFn: func(_ string, q services.ReportQuery) ([]services.ReportPoint, error) {
				captured = q
				return nil, nil
			},
		}
		handler := NewReportHandler(reportSvc)
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET",
			"/reports/postings?kind=bank&interval=month&take_periods=3&date_kind=valuta", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.DateKind != period.DateKindValuta {
			t.Errorf("expected valuta date kind, got %s", captured.DateKind)
		}
	})

	t.Run("returns 400 on unknown interval", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports/postings?kind=bank&interval=decade&take_periods=3", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on out of range take_periods", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports/postings?kind=bank&interval=month&take_periods=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed analysis date", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET",
			"/reports/postings?kind=bank&interval=month&take_periods=3&analysis_date=June", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
