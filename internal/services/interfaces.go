package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/period"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AccountServicer defines the contract for bank account management.
type AccountServicer interface {
	CreateAccount(userID, name, iban, bic, description, currency string, categoryID *string) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID, name, description string, categoryID *string) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// ContactServicer defines the contract for contact and contact group management.
type ContactServicer interface {
	CreateContact(userID, name, iban, note string, groupID, categoryID *string) (*models.Contact, error)
	GetUserContacts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Contact], error)
	GetContactByID(userID, contactID string) (*models.Contact, error)
	UpdateContact(userID, contactID, name, note string, groupID, categoryID *string) (*models.Contact, error)
	DeleteContact(userID, contactID string) error
	CreateContactGroup(userID, name string) (*models.ContactGroup, error)
	GetUserContactGroups(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ContactGroup], error)
	DeleteContactGroup(userID, groupID string) error
}

// SavingsPlanServicer defines the contract for savings plan management.
type SavingsPlanServicer interface {
	CreateSavingsPlan(userID, name, provider, contractNo string, startDate *time.Time, categoryID *string) (*models.SavingsPlan, error)
	GetUserSavingsPlans(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsPlan], error)
	GetSavingsPlanByID(userID, planID string) (*models.SavingsPlan, error)
	UpdateSavingsPlan(userID, planID, name, provider string, categoryID *string) (*models.SavingsPlan, error)
	DeleteSavingsPlan(userID, planID string) error
}

// SecurityServicer defines the contract for security management.
type SecurityServicer interface {
	CreateSecurity(userID, name, isin, wkn, symbol string, categoryID *string) (*models.Security, error)
	GetUserSecurities(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Security], error)
	GetSecurityByID(userID, securityID string) (*models.Security, error)
	UpdateSecurity(userID, securityID, name, symbol string, categoryID *string) (*models.Security, error)
	DeleteSecurity(userID, securityID string) error
}

// CategoryServicer defines the contract for entity category management.
type CategoryServicer interface {
	CreateCategory(userID, name string, kind models.PostingKind, description, color string) (*models.Category, error)
	GetUserCategories(userID string, kind *models.PostingKind, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, description, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// PostingInput carries the fields needed to book a new posting. Kind decides
// which entity reference must be set; the booking service rejects inputs
// whose references do not match the kind.
type PostingInput struct {
	Kind                models.PostingKind
	AccountID           *string
	ContactID           *string
	SavingsPlanID       *string
	SecurityID          *string
	BookingDate         time.Time
	ValutaDate          time.Time
	Amount              int64
	Description         string
	SecurityPostingType *models.SecurityPostingType
	Quantity            *float64
}

// PostingFilter holds optional filter parameters for listing postings.
type PostingFilter struct {
	Kind     *models.PostingKind
	EntityID *string
	FromDate *time.Time
	ToDate   *time.Time
}

// PostingServicer defines the contract for the posting booking service.
// Booking a posting and maintaining its month rollups happen in one
// database transaction, so the rollups only ever reflect committed data.
type PostingServicer interface {
	CreatePosting(userID string, input PostingInput) (*models.Posting, error)
	GetUserPostings(userID string, page pagination.PageRequest, filter PostingFilter) (*pagination.PageResponse[models.Posting], error)
	GetPostingByID(userID, postingID string) (*models.Posting, error)
	DeletePosting(userID, postingID string) error
}

// AggregateKey is the full grouping key identifying one aggregate record.
// Entity references not relevant to the kind stay empty.
type AggregateKey struct {
	UserID              string
	Kind                models.PostingKind
	AccountID           string
	ContactID           string
	SavingsPlanID       string
	SecurityID          string
	SecurityPostingType string
	Granularity         period.Granularity
	DateKind            period.DateKind
	PeriodStart         time.Time
}

// RebuildProgress is invoked periodically during a rebuild with the number
// of postings processed so far and the total to process.
type RebuildProgress func(done, total int64)

// AggregateServicer defines the contract for the aggregate record store and
// its maintenance engine.
type AggregateServicer interface {
	// AddDelta atomically adds delta to the record identified by key,
	// inserting the record first when it does not exist yet.
	AddDelta(tx *gorm.DB, key AggregateKey, delta int64) error
	// UpsertForPosting maintains the month-granularity booking and valuta
	// rollups for a newly booked posting. It must run inside the same
	// transaction that persists the posting, and must be invoked at most
	// once per posting.
	UpsertForPosting(tx *gorm.DB, posting *models.Posting) error
	// RebuildForUser drops and recomputes all of a user's aggregate records
	// across every granularity and date kind. Cancellation via ctx takes
	// effect between batches and leaves the store consistent but incomplete.
	RebuildForUser(ctx context.Context, userID string, progress RebuildProgress) error
	// Lookup returns the record for the full grouping key, or nil when no
	// posting has ever contributed to it.
	Lookup(key AggregateKey) (*models.AggregateRecord, error)
	// Scan returns all records for one (kind, granularity, date kind) slice
	// of a user's rollups with period starts in [from, to].
	Scan(userID string, kind models.PostingKind, g period.Granularity, dk period.DateKind, from, to time.Time) ([]models.AggregateRecord, error)
}

// ReportQuery holds the parameters of one report request. AnalysisDate
// anchors the latest period and is always passed in explicitly so results
// are reproducible.
type ReportQuery struct {
	Kind            models.PostingKind
	Interval        period.Granularity
	DateKind        period.DateKind
	TakePeriods     int
	IncludeCategory bool
	ComparePrevious bool
	CompareYear     bool
	AnalysisDate    time.Time
}

// ReportPoint is one (group, period) cell of a report. Comparison amounts
// are nil when no data exists for the compared period.
type ReportPoint struct {
	GroupKey       string    `json:"group_key"`
	ParentGroupKey string    `json:"parent_group_key,omitempty"`
	EntityID       string    `json:"entity_id,omitempty"`
	PeriodStart    time.Time `json:"period_start"`
	Amount         int64     `json:"amount"`
	PreviousAmount *int64    `json:"previous_amount,omitempty"`
	YearAgoAmount  *int64    `json:"year_ago_amount,omitempty"`
}

// ReportServicer defines the contract for the report aggregation and
// comparison service. Query is read-only and side-effect-free.
type ReportServicer interface {
	Query(userID string, q ReportQuery) ([]ReportPoint, error)
}

// PlanningServicer defines the contract for the budget rule evaluation
// engine. CalculatePlannedValues is a pure function of the stored rules and
// overrides belonging to the requested purposes.
type PlanningServicer interface {
	CalculatePlannedValues(userID string, purposeIDs []string, from, to period.Key) (*PlannedValues, error)
}

// BudgetServicer defines the contract for budget purpose, rule, override
// and budget category management.
type BudgetServicer interface {
	CreatePurpose(userID, name string, sourceType models.BudgetSourceType, sourceID string, categoryID *string) (*models.BudgetPurpose, error)
	GetUserPurposes(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetPurpose], error)
	GetPurposeByID(userID, purposeID string) (*models.BudgetPurpose, error)
	DeletePurpose(userID, purposeID string) error

	CreateRule(userID, purposeID string, amount int64, intervalType models.BudgetIntervalType, monthStep int, startDate time.Time, endDate *time.Time) (*models.BudgetRule, error)
	GetPurposeRules(userID, purposeID string) ([]models.BudgetRule, error)
	DeleteRule(userID, ruleID string) error

	SetOverride(userID, purposeID string, p period.Key, amount int64) (*models.BudgetOverride, error)
	GetPurposeOverrides(userID, purposeID string) ([]models.BudgetOverride, error)
	DeleteOverride(userID, overrideID string) error

	CreateBudgetCategory(userID, name string) (*models.BudgetCategory, error)
	GetUserBudgetCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCategory], error)
	DeleteBudgetCategory(userID, categoryID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
