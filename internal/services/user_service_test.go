package services

import (
	"testing"
	"time"

	"moneta/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected non-empty user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected email alice@example.com, got %s", user.Email)
		}
		if user.FirstName != "Alice" {
			t.Errorf("expected first name Alice, got %s", user.FirstName)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("dup@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("dup@example.com", "password456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "password123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Alice@EXAMPLE.COM", "password123", "", "")
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created, err := svc.CreateUser("login@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		user, err := svc.AttemptLogin("login@example.com", "password123")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("wrong@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("wrong@example.com", "nope")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email_reports_invalid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_repeated_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("lockout@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		for i := 0; i < maxFailedLogins; i++ {
			_, err = svc.AttemptLogin("lockout@example.com", "nope")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		// Even the correct password is rejected while locked.
		_, err = svc.AttemptLogin("lockout@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("successful_login_resets_failure_count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created, err := svc.CreateUser("reset@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		for i := 0; i < maxFailedLogins-1; i++ {
			_, _ = svc.AttemptLogin("reset@example.com", "nope")
		}
		_, err = svc.AttemptLogin("reset@example.com", "password123")
		testutil.AssertNoError(t, err)

		fresh, err := svc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)
		if fresh.FailedLoginAttempts != 0 {
			t.Errorf("expected failure count reset, got %d", fresh.FailedLoginAttempts)
		}
		if fresh.LastLoginAt == nil || time.Since(*fresh.LastLoginAt) > time.Minute {
			t.Errorf("expected recent last login timestamp, got %v", fresh.LastLoginAt)
		}
	})

	t.Run("expired_lock_allows_login_again", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created, err := svc.CreateUser("expired@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		past := time.Now().Add(-time.Minute)
		err = db.Model(created).Updates(map[string]interface{}{
			"failed_login_attempts": maxFailedLogins,
			"locked_until":          past,
		}).Error
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("expired@example.com", "password123")
		testutil.AssertNoError(t, err)
	})
}

func TestRefreshTokenHash(t *testing.T) {
	t.Run("store_and_read_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("hash@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		err = svc.StoreRefreshTokenHash(user.ID, "abc123")
		testutil.AssertNoError(t, err)

		hash, err := svc.GetRefreshTokenHash(user.ID)
		testutil.AssertNoError(t, err)
		if hash != "abc123" {
			t.Errorf("expected stored hash abc123, got %s", hash)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetRefreshTokenHash("01890a5d-ac96-774b-bcce-b302099a8099")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
