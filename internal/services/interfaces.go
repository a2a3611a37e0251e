package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finledger/internal/models"
	"finledger/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CreateAccountInput holds the fields for creating an account of any type.
// Card-only fields must be present exactly when Type is CREDIT_CARD.
type CreateAccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
	Bank           string
	ClosingDay     *int
	DueDay         *int
	CreditLimit    *decimal.Decimal
}

// AccountUpdateFields holds optional fields for updating an account.
type AccountUpdateFields struct {
	Name        *string
	IsActive    *bool
	Bank        *string
	ClosingDay  *int
	DueDay      *int
	CreditLimit *decimal.Decimal
}

// AccountBalance is the point-in-time balance of a single account. For
// credit cards Balance is the outstanding amount owed across OPEN and
// CLOSED invoices rather than a replayed ledger balance.
type AccountBalance struct {
	AccountID      string             `json:"account_id"`
	AccountName    string             `json:"account_name"`
	Type           models.AccountType `json:"type"`
	InitialBalance decimal.Decimal    `json:"initial_balance"`
	Balance        decimal.Decimal    `json:"balance"`
	CreditLimit    *decimal.Decimal   `json:"credit_limit,omitempty"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, input CreateAccountInput) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	CurrentBalance(userID, accountID string, asOf time.Time) (*AccountBalance, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryTree(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, icon, color string, parentID *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// InvoiceDetail is an invoice with its transactions and a total recomputed
// from them, independent of the cached TotalAmount column.
type InvoiceDetail struct {
	models.Invoice
	CalculatedTotal decimal.Decimal `json:"calculated_total"`
}

// InvoiceServicer defines the contract for credit card invoice logic,
// including billing-cycle resolution for dated transactions.
type InvoiceServicer interface {
	// ResolveForDate finds or creates the invoice the given date belongs to
	// on the given card, inside the caller's database transaction.
	ResolveForDate(tx *gorm.DB, account *models.Account, date time.Time) (*models.Invoice, error)
	GetCardInvoices(userID, creditCardID string) ([]models.Invoice, error)
	GetInvoiceByID(userID, invoiceID string) (*InvoiceDetail, error)
	MarkPaid(userID, invoiceID string) (*models.Invoice, error)
	CloseInvoice(userID, invoiceID string) (*models.Invoice, error)
	RecalculateTotal(userID, invoiceID string) (*models.Invoice, error)
}

// CreateTransactionInput is the classified-on-entry creation request. Which
// optional fields are required depends on Type and RecurrenceType; the
// transaction service validates everything before writing anything.
type CreateTransactionInput struct {
	AccountID   string
	CategoryID  *string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Date        time.Time
	Description string

	RecurrenceType models.RecurrenceType

	// Installments
	TotalInstallments *int
	TotalAmount       *decimal.Decimal

	// Recurring
	IntervalNumber *int
	IntervalUnit   *models.IntervalUnit
	IsIndefinite   bool
	Occurrences    *int

	// Transfers
	TransferToID *string

	// Credit card charges
	CreditCardID *string
}

// TransferPair is the linked debit/credit pair produced by a transfer.
type TransferPair struct {
	Debit  *models.Transaction `json:"debit"`
	Credit *models.Transaction `json:"credit"`
}

// CreateTransactionResult holds the outcome of a creation request: exactly
// one of Single, Instances, or Transfer is set, matching the classification.
type CreateTransactionResult struct {
	Single    *models.Transaction  `json:"transaction,omitempty"`
	Instances []models.Transaction `json:"transactions,omitempty"`
	Transfer  *TransferPair        `json:"transfer,omitempty"`
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID *string
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
}

// TransactionUpdateFields holds the editable fields of a transaction. Series
// updates apply the same fields to every instance sharing the series id.
type TransactionUpdateFields struct {
	CategoryID  *string
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
}

// TransactionServicer defines the contract for transaction-related business
// logic: classification, recurrence expansion, and single/series maintenance.
type TransactionServicer interface {
	Create(userID string, input CreateTransactionInput) (*CreateTransactionResult, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetInvoiceTransactions(userID, invoiceID string) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	UpdateSeries(userID, seriesID string, fields TransactionUpdateFields) (int64, error)
	DeleteTransaction(userID, transactionID string) error
	DeleteSeries(userID, seriesID string) (int64, error)
}

// PeriodWindow names the three dashboard reporting windows.
type PeriodWindow string

const (
	PeriodCurrentMonth   PeriodWindow = "currentMonth"
	PeriodRemainingMonth PeriodWindow = "remainingMonth"
	PeriodFullMonth      PeriodWindow = "fullMonth"
)

// AccountBalanceEntry is one account's contribution to the consolidated balance.
type AccountBalanceEntry struct {
	AccountID   string             `json:"account_id"`
	AccountName string             `json:"account_name"`
	Type        models.AccountType `json:"type"`
	Balance     decimal.Decimal    `json:"balance"`
}

// ConsolidatedBalance is the sum of all active non-card account balances.
type ConsolidatedBalance struct {
	Total    decimal.Decimal       `json:"total"`
	Accounts []AccountBalanceEntry `json:"accounts"`
}

// PeriodResult is income vs expense over one reporting window.
type PeriodResult struct {
	Window       PeriodWindow    `json:"window"`
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}

// CategoryExpense is the expense total of one category over a window.
type CategoryExpense struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

// ExpenseBreakdown groups a window's expenses by category, largest first.
type ExpenseBreakdown struct {
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	Categories []CategoryExpense `json:"categories"`
}

// MonthlyFlow is one calendar month's income, expense, and net.
type MonthlyFlow struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CashFlowReport is a trailing monthly series, oldest month first.
type CashFlowReport struct {
	Months int           `json:"months"`
	Data   []MonthlyFlow `json:"data"`
}

// DashboardSummary combines the headline dashboard reads.
type DashboardSummary struct {
	ConsolidatedBalance *ConsolidatedBalance `json:"consolidated_balance"`
	CurrentMonth        *PeriodResult        `json:"current_month"`
	RemainingMonth      *PeriodResult        `json:"remaining_month"`
}

// DashboardServicer defines the contract for aggregated ledger reads.
// Callers pass the reference time so reports are reproducible.
type DashboardServicer interface {
	ConsolidatedBalance(userID string, asOf time.Time) (*ConsolidatedBalance, error)
	PeriodResult(userID string, window PeriodWindow, now time.Time) (*PeriodResult, error)
	ExpensesByCategory(userID string, from, to *time.Time, now time.Time) (*ExpenseBreakdown, error)
	CashFlow(userID string, monthsBack int, now time.Time) (*CashFlowReport, error)
	Summary(userID string, now time.Time) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
