package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuth_RegisterLoginProfile(t *testing.T) {
	app := setupApp(t)

	token, _, userID := app.registerUser(t, "alice@test.com", "password123")
	if userID == "" {
		t.Fatal("expected a user ID from registration")
	}

	// The access token from registration works immediately.
	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching profile, got %d: %s", rec.Code, rec.Body.String())
	}
	profile := parseJSON(t, rec)
	if profile["email"] != "alice@test.com" {
		t.Errorf("expected email alice@test.com, got %v", profile["email"])
	}

	// A fresh login issues a working token pair too.
	loginToken, _ := app.loginUser(t, "alice@test.com", "password123")
	rec = app.request("GET", "/api/v1/profile", "", loginToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with login token, got %d", rec.Code)
	}
}

func TestAuth_WrongPassword(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "bob@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"bob@test.com","password":"wrongpassword"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_RefreshIssuesNewPair(t *testing.T) {
	app := setupApp(t)
	_, refreshToken, _ := app.registerUser(t, "carol@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 refreshing, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)

	// The fresh access token works on protected routes.
	newAccess := result["access_token"].(string)
	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with refreshed access token, got %d", rec.Code)
	}

	// A token that was never issued is rejected.
	rec = app.request("POST", "/api/v1/auth/refresh",
		`{"refresh_token":"not-a-real-token"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged refresh token, got %d", rec.Code)
	}
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/postings", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
