package services

import (
	"testing"
	"time"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/period"
	"moneta/internal/testutil"
)

func TestCreatePosting(t *testing.T) {
	t.Run("books_posting_and_month_rollups", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		aggregates := NewAggregateService(db, 0)
		svc := NewPostingService(db, aggregates)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		posting, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			BookingDate: testutil.Date(2026, time.January, 11),
			ValutaDate:  testutil.Date(2026, time.February, 1),
			Amount:      200,
			Description: "rent",
		})
		testutil.AssertNoError(t, err)
		if posting.ID == "" {
			t.Fatal("expected posting to receive an id")
		}

		booking, err := aggregates.Lookup(bankKey(user.ID, account.ID, period.GranularityMonth, period.DateKindBooking, testutil.Date(2026, time.January, 1)))
		testutil.AssertNoError(t, err)
		if booking == nil || booking.Amount != 200 {
			t.Fatalf("expected booking rollup 200 in January, got %+v", booking)
		}

		valuta, err := aggregates.Lookup(bankKey(user.ID, account.ID, period.GranularityMonth, period.DateKindValuta, testutil.Date(2026, time.February, 1)))
		testutil.AssertNoError(t, err)
		if valuta == nil || valuta.Amount != 200 {
			t.Fatalf("expected valuta rollup 200 in February, got %+v", valuta)
		}
	})

	t.Run("valuta_defaults_to_booking_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		aggregates := NewAggregateService(db, 0)
		svc := NewPostingService(db, aggregates)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		posting, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			BookingDate: testutil.Date(2026, time.March, 9),
			Amount:      10,
		})
		testutil.AssertNoError(t, err)
		if !posting.ValutaDate.Equal(posting.BookingDate) {
			t.Errorf("expected valuta date %s, got %s", posting.BookingDate, posting.ValutaDate)
		}
	})

	t.Run("normalizes_dates_to_midnight_utc", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		aggregates := NewAggregateService(db, 0)
		svc := NewPostingService(db, aggregates)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		posting, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			BookingDate: time.Date(2026, time.March, 9, 17, 45, 12, 0, time.UTC),
			Amount:      10,
		})
		testutil.AssertNoError(t, err)
		if !posting.BookingDate.Equal(testutil.Date(2026, time.March, 9)) {
			t.Errorf("expected midnight booking date, got %s", posting.BookingDate)
		}
	})

	t.Run("rejects_missing_reference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			BookingDate: testutil.Date(2026, time.March, 9),
			Amount:      10,
		})
		testutil.AssertAppError(t, err, "INVALID_POSTING_REFERENCE")
	})

	t.Run("rejects_foreign_kind_reference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		contact := testutil.CreateTestContact(t, db, user.ID)

		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			ContactID:   &contact.ID,
			BookingDate: testutil.Date(2026, time.March, 9),
			Amount:      10,
		})
		testutil.AssertAppError(t, err, "INVALID_POSTING_REFERENCE")
	})

	t.Run("rejects_security_fields_on_bank_posting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		qty := 3.5
		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			BookingDate: testutil.Date(2026, time.March, 9),
			Amount:      10,
			Quantity:    &qty,
		})
		testutil.AssertAppError(t, err, "INVALID_POSTING_REFERENCE")
	})

	t.Run("rejects_unowned_entity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		foreignAccount := testutil.CreateTestAccount(t, db, other.ID)

		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &foreignAccount.ID,
			BookingDate: testutil.Date(2026, time.March, 9),
			Amount:      10,
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("rejects_invalid_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKind("crypto"),
			BookingDate: testutil.Date(2026, time.March, 9),
			Amount:      10,
		})
		testutil.AssertAppError(t, err, "INVALID_POSTING_KIND")
	})

	t.Run("books_security_posting_with_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		aggregates := NewAggregateService(db, 0)
		svc := NewPostingService(db, aggregates)
		user := testutil.CreateTestUser(t, db)
		security := testutil.CreateTestSecurity(t, db, user.ID)

		buy := models.SecurityPostingBuy
		qty := 2.0
		day := testutil.Date(2026, time.April, 2)
		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:                models.PostingKindSecurity,
			SecurityID:          &security.ID,
			BookingDate:         day,
			Amount:              -1500,
			SecurityPostingType: &buy,
			Quantity:            &qty,
		})
		testutil.AssertNoError(t, err)

		record, err := aggregates.Lookup(AggregateKey{
			UserID:              user.ID,
			Kind:                models.PostingKindSecurity,
			SecurityID:          security.ID,
			SecurityPostingType: string(buy),
			Granularity:         period.GranularityMonth,
			DateKind:            period.DateKindBooking,
			PeriodStart:         testutil.Date(2026, time.April, 1),
		})
		testutil.AssertNoError(t, err)
		if record == nil || record.Amount != -1500 {
			t.Fatalf("expected security rollup -1500, got %+v", record)
		}
	})
}

func TestDeletePosting(t *testing.T) {
	t.Run("reverses_rollup_contribution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		aggregates := NewAggregateService(db, 0)
		svc := NewPostingService(db, aggregates)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			BookingDate: testutil.Date(2026, time.May, 3),
			Amount:      100,
		})
		testutil.AssertNoError(t, err)
		doomed, err := svc.CreatePosting(user.ID, PostingInput{
			Kind:        models.PostingKindBank,
			AccountID:   &account.ID,
			BookingDate: testutil.Date(2026, time.May, 8),
			Amount:      40,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeletePosting(user.ID, doomed.ID))

		record, err := aggregates.Lookup(bankKey(user.ID, account.ID, period.GranularityMonth, period.DateKindBooking, testutil.Date(2026, time.May, 1)))
		testutil.AssertNoError(t, err)
		if record == nil || record.Amount != 100 {
			t.Fatalf("expected rollup back at 100 after delete, got %+v", record)
		}

		if _, err := svc.GetPostingByID(user.ID, doomed.ID); err == nil {
			t.Error("expected deleted posting to be gone")
		}
	})

	t.Run("rejects_foreign_posting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, other.ID)
		day := testutil.Date(2026, time.May, 3)
		posting := testutil.CreateTestPosting(t, db, other.ID, account.ID, 10, day, day)

		err := svc.DeletePosting(user.ID, posting.ID)
		testutil.AssertAppError(t, err, "POSTING_NOT_FOUND")
	})
}

func TestGetUserPostings(t *testing.T) {
	t.Run("filters_and_orders", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPostingService(db, NewAggregateService(db, 0))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		contact := testutil.CreateTestContact(t, db, user.ID)

		for i := 0; i < 3; i++ {
			day := testutil.Date(2026, time.June, 1+i)
			testutil.CreateTestPosting(t, db, user.ID, account.ID, 10, day, day)
		}
		contactDay := testutil.Date(2026, time.June, 10)
		contactPosting := &models.Posting{
			UserID:      user.ID,
			Kind:        models.PostingKindContact,
			ContactID:   &contact.ID,
			BookingDate: contactDay,
			ValutaDate:  contactDay,
			Amount:      20,
		}
		if err := db.Create(contactPosting).Error; err != nil {
			t.Fatalf("failed to create contact posting: %v", err)
		}

		bank := models.PostingKindBank
		page, err := svc.GetUserPostings(user.ID, pagination.PageRequest{}, PostingFilter{Kind: &bank})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Fatalf("expected 3 bank postings, got %d", page.TotalItems)
		}
		if !page.Data[0].BookingDate.After(page.Data[2].BookingDate) {
			t.Error("expected newest booking date first")
		}

		page, err = svc.GetUserPostings(user.ID, pagination.PageRequest{}, PostingFilter{EntityID: &contact.ID})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 posting for the contact, got %d", page.TotalItems)
		}

		from := testutil.Date(2026, time.June, 2)
		to := testutil.Date(2026, time.June, 3)
		page, err = svc.GetUserPostings(user.ID, pagination.PageRequest{}, PostingFilter{FromDate: &from, ToDate: &to})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 postings in the date range, got %d", page.TotalItems)
		}
	})
}
