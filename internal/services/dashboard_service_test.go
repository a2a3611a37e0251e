package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"finledger/internal/models"
	"finledger/internal/testutil"
)

func setupDashboardTest(t *testing.T) (DashboardServicer, *gorm.DB, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc := NewDashboardService(db, NewAccountService(db))
	user := testutil.CreateTestUser(t, db)
	return svc, db, user.ID
}

func TestConsolidatedBalance(t *testing.T) {
	t.Run("sums_non_card_accounts", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)

		a := testutil.CreateTestCheckingAccountWithBalance(t, db, userID, amount("1000.00"))
		b := testutil.CreateTestCheckingAccountWithBalance(t, db, userID, amount("250.50"))
		testutil.CreateTestCreditCardAccount(t, db, userID, 8, 15)

		testutil.CreateTestTransaction(t, db, userID, a.ID,
			models.TransactionTypeIncome, "100.00", date(2025, time.March, 5))
		testutil.CreateTestTransaction(t, db, userID, b.ID,
			models.TransactionTypeExpense, "50.50", date(2025, time.March, 6))

		result, err := svc.ConsolidatedBalance(userID, date(2025, time.March, 31))
		testutil.AssertNoError(t, err)

		if len(result.Accounts) != 2 {
			t.Fatalf("expected 2 accounts, got %d", len(result.Accounts))
		}
		if !result.Total.Equal(amount("1300.00")) {
			t.Errorf("expected total 1300.00, got %s", result.Total)
		}
	})

	t.Run("inactive_accounts_excluded", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)

		account := testutil.CreateTestCheckingAccountWithBalance(t, db, userID, amount("1000.00"))
		if err := db.Model(account).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate account: %v", err)
		}

		result, err := svc.ConsolidatedBalance(userID, date(2025, time.March, 31))
		testutil.AssertNoError(t, err)

		if len(result.Accounts) != 0 {
			t.Errorf("expected no accounts, got %d", len(result.Accounts))
		}
		if !result.Total.IsZero() {
			t.Errorf("expected zero total, got %s", result.Total)
		}
	})
}

func TestPeriodResult(t *testing.T) {
	seed := func(t *testing.T, db *gorm.DB, userID, accountID string) {
		t.Helper()
		testutil.CreateTestTransaction(t, db, userID, accountID,
			models.TransactionTypeIncome, "3000.00", date(2025, time.March, 1))
		testutil.CreateTestTransaction(t, db, userID, accountID,
			models.TransactionTypeExpense, "400.00", date(2025, time.March, 10))
		testutil.CreateTestTransaction(t, db, userID, accountID,
			models.TransactionTypeExpense, "100.00", date(2025, time.March, 25))
	}

	t.Run("current_month_cuts_at_now", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)
		account := testutil.CreateTestCheckingAccount(t, db, userID)
		seed(t, db, userID, account.ID)

		result, err := svc.PeriodResult(userID, PeriodCurrentMonth, date(2025, time.March, 15))
		testutil.AssertNoError(t, err)

		if !result.TotalIncome.Equal(amount("3000.00")) {
			t.Errorf("expected income 3000.00, got %s", result.TotalIncome)
		}
		if !result.TotalExpense.Equal(amount("400.00")) {
			t.Errorf("expected expense 400.00, got %s", result.TotalExpense)
		}
		if !result.Balance.Equal(amount("2600.00")) {
			t.Errorf("expected balance 2600.00, got %s", result.Balance)
		}
	})

	t.Run("remaining_month_starts_at_now", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)
		account := testutil.CreateTestCheckingAccount(t, db, userID)
		seed(t, db, userID, account.ID)

		result, err := svc.PeriodResult(userID, PeriodRemainingMonth, date(2025, time.March, 15))
		testutil.AssertNoError(t, err)

		if !result.TotalIncome.IsZero() {
			t.Errorf("expected no income after day 15, got %s", result.TotalIncome)
		}
		if !result.TotalExpense.Equal(amount("100.00")) {
			t.Errorf("expected expense 100.00, got %s", result.TotalExpense)
		}
	})

	t.Run("full_month_covers_everything", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)
		account := testutil.CreateTestCheckingAccount(t, db, userID)
		seed(t, db, userID, account.ID)

		result, err := svc.PeriodResult(userID, PeriodFullMonth, date(2025, time.March, 15))
		testutil.AssertNoError(t, err)

		if !result.TotalExpense.Equal(amount("500.00")) {
			t.Errorf("expected expense 500.00, got %s", result.TotalExpense)
		}
	})

	t.Run("transfers_excluded", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)
		txSvc := NewTransactionService(db, NewAccountService(db), NewInvoiceService(db))
		source := testutil.CreateTestCheckingAccountWithBalance(t, db, userID, amount("1000.00"))
		dest := testutil.CreateTestCheckingAccount(t, db, userID)

		_, err := txSvc.Create(userID, CreateTransactionInput{
			AccountID:    source.ID,
			Type:         models.TransactionTypeTransfer,
			Amount:       amount("300.00"),
			Date:         date(2025, time.March, 10),
			TransferToID: &dest.ID,
		})
		testutil.AssertNoError(t, err)

		result, err := svc.PeriodResult(userID, PeriodFullMonth, date(2025, time.March, 15))
		testutil.AssertNoError(t, err)

		if !result.TotalIncome.IsZero() || !result.TotalExpense.IsZero() {
			t.Errorf("transfers leaked into period totals: income %s, expense %s",
				result.TotalIncome, result.TotalExpense)
		}
	})

	t.Run("unknown_window_rejected", func(t *testing.T) {
		svc, _, userID := setupDashboardTest(t)

		_, err := svc.PeriodResult(userID, PeriodWindow("lastQuarter"), date(2025, time.March, 15))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestExpensesByCategory(t *testing.T) {
	svc, db, userID := setupDashboardTest(t)
	account := testutil.CreateTestCheckingAccount(t, db, userID)
	food := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
	rent := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)

	link := func(txID, categoryID string) {
		if err := db.Model(&models.Transaction{}).Where("id = ?", txID).
			Update("category_id", categoryID).Error; err != nil {
			t.Fatalf("failed to link category: %v", err)
		}
	}

	tx1 := testutil.CreateTestTransaction(t, db, userID, account.ID,
		models.TransactionTypeExpense, "120.00", date(2025, time.March, 3))
	link(tx1.ID, food.ID)
	tx2 := testutil.CreateTestTransaction(t, db, userID, account.ID,
		models.TransactionTypeExpense, "80.00", date(2025, time.March, 7))
	link(tx2.ID, food.ID)
	tx3 := testutil.CreateTestTransaction(t, db, userID, account.ID,
		models.TransactionTypeExpense, "900.00", date(2025, time.March, 1))
	link(tx3.ID, rent.ID)
	// Uncategorized expense.
	testutil.CreateTestTransaction(t, db, userID, account.ID,
		models.TransactionTypeExpense, "33.50", date(2025, time.March, 9))

	result, err := svc.ExpensesByCategory(userID, nil, nil, date(2025, time.March, 15))
	testutil.AssertNoError(t, err)

	if len(result.Categories) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(result.Categories))
	}
	if result.Categories[0].CategoryID != rent.ID || !result.Categories[0].Total.Equal(amount("900.00")) {
		t.Errorf("expected rent first with 900.00, got %s with %s",
			result.Categories[0].CategoryName, result.Categories[0].Total)
	}
	if result.Categories[1].CategoryID != food.ID || result.Categories[1].Count != 2 {
		t.Errorf("expected food second with 2 transactions, got %s with %d",
			result.Categories[1].CategoryName, result.Categories[1].Count)
	}
	if result.Categories[2].CategoryName != "Uncategorized" || !result.Categories[2].Total.Equal(amount("33.50")) {
		t.Errorf("expected uncategorized bucket with 33.50, got %s with %s",
			result.Categories[2].CategoryName, result.Categories[2].Total)
	}
}

func TestCashFlow(t *testing.T) {
	t.Run("zero_fills_missing_months", func(t *testing.T) {
		svc, db, userID := setupDashboardTest(t)
		account := testutil.CreateTestCheckingAccount(t, db, userID)

		testutil.CreateTestTransaction(t, db, userID, account.ID,
			models.TransactionTypeIncome, "1000.00", date(2025, time.January, 10))
		testutil.CreateTestTransaction(t, db, userID, account.ID,
			models.TransactionTypeExpense, "400.00", date(2025, time.March, 10))

		result, err := svc.CashFlow(userID, 6, date(2025, time.March, 15))
		testutil.AssertNoError(t, err)

		if len(result.Data) != 6 {
			t.Fatalf("expected exactly 6 months, got %d", len(result.Data))
		}
		if result.Data[0].Month != "2024-10" {
			t.Errorf("expected oldest month 2024-10, got %s", result.Data[0].Month)
		}
		if result.Data[5].Month != "2025-03" {
			t.Errorf("expected newest month 2025-03, got %s", result.Data[5].Month)
		}

		// January has income, February is empty, March has the expense.
		if !result.Data[3].Income.Equal(amount("1000.00")) {
			t.Errorf("expected January income 1000.00, got %s", result.Data[3].Income)
		}
		if !result.Data[4].Income.IsZero() || !result.Data[4].Expense.IsZero() {
			t.Error("expected February zero-filled")
		}
		if !result.Data[5].Net.Equal(amount("-400.00")) {
			t.Errorf("expected March net -400.00, got %s", result.Data[5].Net)
		}
	})

	t.Run("rejects_non_positive_range", func(t *testing.T) {
		svc, _, userID := setupDashboardTest(t)

		_, err := svc.CashFlow(userID, 0, date(2025, time.March, 15))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestSummary(t *testing.T) {
	svc, db, userID := setupDashboardTest(t)
	account := testutil.CreateTestCheckingAccountWithBalance(t, db, userID, amount("100.00"))
	testutil.CreateTestTransaction(t, db, userID, account.ID,
		models.TransactionTypeIncome, "900.00", date(2025, time.March, 5))

	summary, err := svc.Summary(userID, date(2025, time.March, 15))
	testutil.AssertNoError(t, err)

	if summary.ConsolidatedBalance == nil || !summary.ConsolidatedBalance.Total.Equal(amount("1000.00")) {
		t.Error("consolidated balance missing or wrong")
	}
	if summary.CurrentMonth == nil || !summary.CurrentMonth.TotalIncome.Equal(amount("900.00")) {
		t.Error("current month totals missing or wrong")
	}
	if summary.RemainingMonth == nil {
		t.Error("remaining month missing")
	}
}
