package services

import (
	"testing"
	"time"

	"moneta/internal/models"
	"moneta/internal/period"
	"moneta/internal/testutil"
)

func TestCalculatePlannedValues(t *testing.T) {
	t.Run("monthly_rule_fires_every_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 50, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.January, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 4})
		testutil.AssertNoError(t, err)

		for month := 1; month <= 4; month++ {
			if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: month}); got != 50 {
				t.Errorf("month %d: expected 50, got %d", month, got)
			}
		}
	})

	t.Run("rule_does_not_fire_before_start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 50, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.March, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 4})
		testutil.AssertNoError(t, err)

		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 2}); got != 0 {
			t.Errorf("February precedes the rule start; expected 0, got %d", got)
		}
		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 3}); got != 50 {
			t.Errorf("March is the rule start; expected 50, got %d", got)
		}
	})

	t.Run("rule_stops_after_end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		end := testutil.Date(2026, time.February, 28)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 50, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.January, 1), &end)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 4})
		testutil.AssertNoError(t, err)

		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 2}); got != 50 {
			t.Errorf("February is inside the window; expected 50, got %d", got)
		}
		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 3}); got != 0 {
			t.Errorf("March is past the end date; expected 0, got %d", got)
		}
	})

	t.Run("yearly_rule_recurs_on_start_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 600, models.BudgetIntervalYearly, 0,
			testutil.Date(2026, time.May, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2027, Month: 12})
		testutil.AssertNoError(t, err)

		want := map[period.Key]int64{
			{Year: 2026, Month: 4}:  0,
			{Year: 2026, Month: 5}:  600,
			{Year: 2026, Month: 6}:  0,
			{Year: 2027, Month: 5}:  600,
			{Year: 2027, Month: 11}: 0,
		}
		for p, expected := range want {
			if got := values.GetPlanned(purpose.ID, p); got != expected {
				t.Errorf("%s: expected %d, got %d", p, expected, got)
			}
		}
	})

	t.Run("quarterly_rule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 90, models.BudgetIntervalQuarterly, 0,
			testutil.Date(2026, time.February, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 12})
		testutil.AssertNoError(t, err)

		fires := []int{2, 5, 8, 11}
		for month := 1; month <= 12; month++ {
			expected := int64(0)
			for _, f := range fires {
				if month == f {
					expected = 90
				}
			}
			if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: month}); got != expected {
				t.Errorf("month %d: expected %d, got %d", month, expected, got)
			}
		}
	})

	t.Run("custom_month_step", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 120, models.BudgetIntervalCustomMonths, 5,
			testutil.Date(2026, time.January, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 12})
		testutil.AssertNoError(t, err)

		for month := 1; month <= 12; month++ {
			expected := int64(0)
			if month == 1 || month == 6 || month == 11 {
				expected = 120
			}
			if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: month}); got != expected {
				t.Errorf("month %d: expected %d, got %d", month, expected, got)
			}
		}
	})

	t.Run("overlapping_rules_sum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 50, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.January, 1), nil)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 600, models.BudgetIntervalYearly, 0,
			testutil.Date(2026, time.May, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 12})
		testutil.AssertNoError(t, err)

		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 4}); got != 50 {
			t.Errorf("April: expected 50, got %d", got)
		}
		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 5}); got != 650 {
			t.Errorf("May: expected 650 from both rules, got %d", got)
		}
	})

	t.Run("override_replaces_rule_sum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 350, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.January, 1), nil)

		override := &models.BudgetOverride{
			UserID:    user.ID,
			PurposeID: purpose.ID,
			Year:      2026,
			Month:     2,
			Amount:    500,
		}
		if err := db.Create(override).Error; err != nil {
			t.Fatalf("failed to create override: %v", err)
		}

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 3})
		testutil.AssertNoError(t, err)

		expected := map[int]int64{1: 350, 2: 500, 3: 350}
		for month, amount := range expected {
			if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: month}); got != amount {
				t.Errorf("month %d: expected %d, got %d", month, amount, got)
			}
		}
	})

	t.Run("override_without_rules", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)

		override := &models.BudgetOverride{
			UserID:    user.ID,
			PurposeID: purpose.ID,
			Year:      2026,
			Month:     7,
			Amount:    42,
		}
		if err := db.Create(override).Error; err != nil {
			t.Fatalf("failed to create override: %v", err)
		}

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 6}, period.Key{Year: 2026, Month: 8})
		testutil.AssertNoError(t, err)

		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 7}); got != 42 {
			t.Errorf("expected override amount 42, got %d", got)
		}
		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 6}); got != 0 {
			t.Errorf("expected 0 outside the override, got %d", got)
		}
	})

	t.Run("reversed_range_is_empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)
		purpose := testutil.CreateTestPurpose(t, db, user.ID)
		testutil.CreateTestRule(t, db, user.ID, purpose.ID, 50, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.January, 1), nil)

		values, err := svc.CalculatePlannedValues(user.ID, []string{purpose.ID},
			period.Key{Year: 2026, Month: 6}, period.Key{Year: 2026, Month: 1})
		testutil.AssertNoError(t, err)

		if got := values.GetPlanned(purpose.ID, period.Key{Year: 2026, Month: 3}); got != 0 {
			t.Errorf("reversed range must evaluate nothing, got %d", got)
		}
	})

	t.Run("invalid_period_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CalculatePlannedValues(user.ID, []string{"p"},
			period.Key{Year: 2026, Month: 13}, period.Key{Year: 2026, Month: 14})
		if err == nil {
			t.Error("expected error for out-of-range month")
		}
	})

	t.Run("does_not_leak_across_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanningService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		purpose1 := testutil.CreateTestPurpose(t, db, user1.ID)
		testutil.CreateTestRule(t, db, user2.ID, purpose1.ID, 999, models.BudgetIntervalMonthly, 0,
			testutil.Date(2026, time.January, 1), nil)

		values, err := svc.CalculatePlannedValues(user1.ID, []string{purpose1.ID},
			period.Key{Year: 2026, Month: 1}, period.Key{Year: 2026, Month: 1})
		testutil.AssertNoError(t, err)

		if got := values.GetPlanned(purpose1.ID, period.Key{Year: 2026, Month: 1}); got != 0 {
			t.Errorf("another user's rule must not apply, got %d", got)
		}
	})
}
