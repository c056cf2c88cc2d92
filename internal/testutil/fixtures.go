package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a bank account for the user.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Currency: "EUR",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestContact creates a contact for the user.
func CreateTestContact(t *testing.T, db *gorm.DB, userID string) *models.Contact {
	t.Helper()

	contact := &models.Contact{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Contact %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(contact).Error; err != nil {
		t.Fatalf("failed to create test contact: %v", err)
	}
	return contact
}

// CreateTestSavingsPlan creates a savings plan for the user.
func CreateTestSavingsPlan(t *testing.T, db *gorm.DB, userID string) *models.SavingsPlan {
	t.Helper()

	plan := &models.SavingsPlan{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Plan %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test savings plan: %v", err)
	}
	return plan
}

// CreateTestSecurity creates a security for the user.
func CreateTestSecurity(t *testing.T, db *gorm.DB, userID string) *models.Security {
	t.Helper()

	security := &models.Security{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Security %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(security).Error; err != nil {
		t.Fatalf("failed to create test security: %v", err)
	}
	return security
}

// CreateTestCategory creates an entity category of the given kind.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, kind models.PostingKind) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Kind:   kind,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestPosting inserts a bank posting directly, bypassing the booking
// service and its rollup maintenance. Use it for rebuild tests that need
// raw posting history.
func CreateTestPosting(t *testing.T, db *gorm.DB, userID, accountID string, amount int64, bookingDate, valutaDate time.Time) *models.Posting {
	t.Helper()

	posting := &models.Posting{
		UserID:      userID,
		Kind:        models.PostingKindBank,
		AccountID:   &accountID,
		BookingDate: bookingDate,
		ValutaDate:  valutaDate,
		Amount:      amount,
	}
	if err := db.Create(posting).Error; err != nil {
		t.Fatalf("failed to create test posting: %v", err)
	}
	return posting
}

// CreateTestPurpose creates a budget purpose backed by a contact.
func CreateTestPurpose(t *testing.T, db *gorm.DB, userID string) *models.BudgetPurpose {
	t.Helper()

	contact := CreateTestContact(t, db, userID)
	purpose := &models.BudgetPurpose{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Purpose %d", nextID()),
		SourceType: models.BudgetSourceContact,
		SourceID:   contact.ID,
	}
	if err := db.Create(purpose).Error; err != nil {
		t.Fatalf("failed to create test purpose: %v", err)
	}
	return purpose
}

// CreateTestRule creates a budget rule for a purpose.
func CreateTestRule(t *testing.T, db *gorm.DB, userID, purposeID string, amount int64, interval models.BudgetIntervalType, step int, start time.Time, end *time.Time) *models.BudgetRule {
	t.Helper()

	rule := &models.BudgetRule{
		UserID:       userID,
		PurposeID:    purposeID,
		Amount:       amount,
		IntervalType: interval,
		MonthStep:    step,
		StartDate:    start,
		EndDate:      end,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// Date returns a midnight UTC time for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
