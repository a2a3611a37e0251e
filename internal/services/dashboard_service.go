package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finledger/internal/errors"
	"finledger/internal/models"
)

// dashboardService computes aggregated ledger reads. All aggregation runs
// over decimal values in memory rather than SQL SUM so the arithmetic stays
// exact and identical across postgres and the sqlite test database.
type dashboardService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, accountService AccountServicer) DashboardServicer {
	return &dashboardService{db: db, accountService: accountService}
}

// ConsolidatedBalance sums the replayed balances of the user's active
// checking and savings accounts as of the given instant. Credit cards are
// excluded; their outstanding amounts live on the invoice endpoints.
func (s *dashboardService) ConsolidatedBalance(userID string, asOf time.Time) (*ConsolidatedBalance, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	var accounts []models.Account
	if err := s.db.Where("user_id = ? AND is_active = ? AND type <> ?",
		userID, true, models.AccountTypeCreditCard).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ConsolidatedBalance{
		Total:    decimal.Zero,
		Accounts: make([]AccountBalanceEntry, 0, len(accounts)),
	}

	for _, account := range accounts {
		balance, err := s.accountService.CurrentBalance(userID, account.ID, asOf)
		if err != nil {
			return nil, err
		}
		result.Accounts = append(result.Accounts, AccountBalanceEntry{
			AccountID:   account.ID,
			AccountName: account.Name,
			Type:        account.Type,
			Balance:     balance.Balance,
		})
		result.Total = result.Total.Add(balance.Balance)
	}

	return result, nil
}

// periodBounds resolves a reporting window to a [start, end] pair around now.
func periodBounds(window PeriodWindow, now time.Time) (time.Time, time.Time, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	switch window {
	case PeriodCurrentMonth:
		return monthStart, now, nil
	case PeriodRemainingMonth:
		return now, monthEnd, nil
	case PeriodFullMonth:
		return monthStart, monthEnd, nil
	default:
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported period window")
	}
}

// PeriodResult totals income and expense over one reporting window.
// Transfers move money between the user's own accounts and are excluded.
func (s *dashboardService) PeriodResult(userID string, window PeriodWindow, now time.Time) (*PeriodResult, error) {
	if now.IsZero() {
		now = time.Now()
	}
	start, end, err := periodBounds(window, now)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND date >= ? AND date <= ? AND type IN ?",
		userID, start, end,
		[]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &PeriodResult{
		Window:       window,
		Start:        start,
		End:          end,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range transactions {
		if t.Type == models.TransactionTypeIncome {
			result.TotalIncome = result.TotalIncome.Add(t.Amount)
		} else {
			result.TotalExpense = result.TotalExpense.Add(t.Amount)
		}
	}
	result.Balance = result.TotalIncome.Sub(result.TotalExpense)
	return result, nil
}

// ExpensesByCategory groups expenses in [from, to] by category, largest
// total first. With no explicit bounds the window defaults to the current
// calendar month. Expenses without a category land in an "Uncategorized"
// bucket so the breakdown still accounts for every cent.
func (s *dashboardService) ExpensesByCategory(userID string, from, to *time.Time, now time.Time) (*ExpenseBreakdown, error) {
	if now.IsZero() {
		now = time.Now()
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND type = ? AND date >= ? AND date <= ?",
		userID, models.TransactionTypeExpense, start, end).
		Preload("Category").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	buckets := make(map[string]*CategoryExpense)
	for _, t := range transactions {
		key := ""
		name := "Uncategorized"
		if t.CategoryID != nil && t.Category != nil {
			key = *t.CategoryID
			name = t.Category.Name
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &CategoryExpense{CategoryID: key, CategoryName: name, Total: decimal.Zero}
			buckets[key] = bucket
		}
		bucket.Total = bucket.Total.Add(t.Amount)
		bucket.Count++
	}

	categories := make([]CategoryExpense, 0, len(buckets))
	for _, bucket := range buckets {
		categories = append(categories, *bucket)
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Total.Equal(categories[j].Total) {
			return categories[i].Total.GreaterThan(categories[j].Total)
		}
		return categories[i].CategoryName < categories[j].CategoryName
	})

	return &ExpenseBreakdown{Start: start, End: end, Categories: categories}, nil
}

// CashFlow returns exactly monthsBack trailing calendar months ending with
// the current one, oldest first. Months without transactions appear with
// zero values so charts get a continuous series.
func (s *dashboardService) CashFlow(userID string, monthsBack int, now time.Time) (*CashFlowReport, error) {
	if monthsBack < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be at least 1")
	}
	if now.IsZero() {
		now = time.Now()
	}

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := currentMonth.AddDate(0, -(monthsBack - 1), 0)
	end := currentMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND date >= ? AND date <= ? AND type IN ?",
		userID, start, end,
		[]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byMonth := make(map[string]*MonthlyFlow, monthsBack)
	data := make([]MonthlyFlow, monthsBack)
	for i := 0; i < monthsBack; i++ {
		month := start.AddDate(0, i, 0)
		key := fmt.Sprintf("%04d-%02d", month.Year(), int(month.Month()))
		data[i] = MonthlyFlow{Month: key, Income: decimal.Zero, Expense: decimal.Zero, Net: decimal.Zero}
		byMonth[key] = &data[i]
	}

	for _, t := range transactions {
		key := fmt.Sprintf("%04d-%02d", t.Date.Year(), int(t.Date.Month()))
		flow, ok := byMonth[key]
		if !ok {
			continue
		}
		if t.Type == models.TransactionTypeIncome {
			flow.Income = flow.Income.Add(t.Amount)
		} else {
			flow.Expense = flow.Expense.Add(t.Amount)
		}
	}
	for i := range data {
		data[i].Net = data[i].Income.Sub(data[i].Expense)
	}

	return &CashFlowReport{Months: monthsBack, Data: data}, nil
}

// Summary bundles the headline reads the dashboard landing page needs.
func (s *dashboardService) Summary(userID string, now time.Time) (*DashboardSummary, error) {
	if now.IsZero() {
		now = time.Now()
	}

	balance, err := s.ConsolidatedBalance(userID, now)
	if err != nil {
		return nil, err
	}
	currentMonth, err := s.PeriodResult(userID, PeriodCurrentMonth, now)
	if err != nil {
		return nil, err
	}
	remainingMonth, err := s.PeriodResult(userID, PeriodRemainingMonth, now)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		ConsolidatedBalance: balance,
		CurrentMonth:        currentMonth,
		RemainingMonth:      remainingMonth,
	}, nil
}
