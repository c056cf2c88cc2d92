package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// reportPoints fetches a monthly bank report anchored at analysisDate and
// returns the points slice.
func (app *testApp) reportPoints(t *testing.T, token, analysisDate string, takePeriods int) []interface{} {
	t.Helper()
	rec := app.request("GET",
		fmt.Sprintf("/api/v1/reports/postings?kind=bank&interval=month&take_periods=%d&analysis_date=%s",
			takePeriods, analysisDate), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("report failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	points, _ := result["points"].([]interface{})
	return points
}

func amountFor(points []interface{}, groupKey, periodPrefix string) (int64, bool) {
	for _, raw := range points {
		p := raw.(map[string]interface{})
		if p["group_key"] != groupKey {
			continue
		}
		if start, _ := p["period_start"].(string); len(start) >= len(periodPrefix) && start[:len(periodPrefix)] == periodPrefix {
			return int64(p["amount"].(float64)), true
		}
	}
	return 0, false
}

func TestPostingFlow_BookAndReport(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "flow@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking")

	// Book salary and groceries across two months.
	app.bookPosting(t, token, accountID, "2025-01-05", 250000)
	app.bookPosting(t, token, accountID, "2025-01-20", -8000)
	app.bookPosting(t, token, accountID, "2025-02-05", 250000)

	points := app.reportPoints(t, token, "2025-02-28", 3)
	groupKey := "Account:" + accountID

	jan, ok := amountFor(points, groupKey, "2025-01")
	if !ok {
		t.Fatal("expected a January point for the account")
	}
	if jan != 242000 {
		t.Errorf("expected January total 242000, got %d", jan)
	}

	feb, ok := amountFor(points, groupKey, "2025-02")
	if !ok {
		t.Fatal("expected a February point for the account")
	}
	if feb != 250000 {
		t.Errorf("expected February total 250000, got %d", feb)
	}
}

func TestPostingFlow_DeleteReversesRollups(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "reversal@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking")

	app.bookPosting(t, token, accountID, "2025-03-01", 10000)
	postingID := app.bookPosting(t, token, accountID, "2025-03-15", 5000)

	rec := app.request("DELETE", "/api/v1/postings/"+postingID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	points := app.reportPoints(t, token, "2025-03-31", 1)
	march, ok := amountFor(points, "Account:"+accountID, "2025-03")
	if !ok {
		t.Fatal("expected a March point for the account")
	}
	if march != 10000 {
		t.Errorf("expected March total 10000 after deletion, got %d", march)
	}
}

func TestPostingFlow_RebuildMatchesIncremental(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "rebuild@test.com", "password123")
	accountID := app.createAccount(t, token, "Checking")

	app.bookPosting(t, token, accountID, "2025-04-01", 12000)
	app.bookPosting(t, token, accountID, "2025-04-20", -3000)
	app.bookPosting(t, token, accountID, "2025-05-10", 7000)

	rec := app.request("POST", "/api/v1/admin/aggregates/rebuild", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("rebuild failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["postings"] != float64(3) {
		t.Errorf("expected 3 postings processed, got %v", result["postings"])
	}

	points := app.reportPoints(t, token, "2025-05-31", 2)
	groupKey := "Account:" + accountID
	if april, _ := amountFor(points, groupKey, "2025-04"); april != 9000 {
		t.Errorf("expected April total 9000 after rebuild, got %d", april)
	}
	if may, _ := amountFor(points, groupKey, "2025-05"); may != 7000 {
		t.Errorf("expected May total 7000 after rebuild, got %d", may)
	}
}

func TestPostingFlow_UsersAreIsolated(t *testing.T) {
	app := setupApp(t)
	tokenA, _, _ := app.registerUser(t, "usera@test.com", "password123")
	tokenB, _, _ := app.registerUser(t, "userb@test.com", "password123")
	accountA := app.createAccount(t, tokenA, "A Checking")

	postingID := app.bookPosting(t, tokenA, accountA, "2025-06-01", 4200)

	// User B cannot read or delete user A's posting.
	rec := app.request("GET", "/api/v1/postings/"+postingID, "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign posting read, got %d", rec.Code)
	}
	rec = app.request("DELETE", "/api/v1/postings/"+postingID, "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign posting delete, got %d", rec.Code)
	}

	// And user B's report contains nothing.
	points := app.reportPoints(t, tokenB, "2025-06-30", 1)
	if len(points) != 0 {
		t.Errorf("expected empty report for user B, got %d points", len(points))
	}
}
