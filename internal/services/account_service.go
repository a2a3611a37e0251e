package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finledger/internal/errors"
	"finledger/internal/models"
	"finledger/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// validDay reports whether a closing or due day is a usable day-of-month.
func validDay(day int) bool {
	return day >= 1 && day <= 31
}

// CreateAccount creates an account of any type. Card cycle fields are
// required for credit cards and rejected for everything else.
func (s *accountService) CreateAccount(userID string, input CreateAccountInput) (*models.Account, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	switch input.Type {
	case models.AccountTypeChecking, models.AccountTypeSavings, models.AccountTypeCreditCard:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported account type")
	}

	if input.Type == models.AccountTypeCreditCard {
		if input.ClosingDay == nil || input.DueDay == nil || input.CreditLimit == nil {
			return nil, apperrors.ErrCardFieldsRequired
		}
		if !validDay(*input.ClosingDay) || !validDay(*input.DueDay) {
			return nil, apperrors.ErrInvalidDayOfMonth
		}
		if input.CreditLimit.Sign() <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit must be greater than zero")
		}
	} else if input.ClosingDay != nil || input.DueDay != nil || input.CreditLimit != nil {
		return nil, apperrors.ErrCardFieldsForbidden
	}

	account := &models.Account{
		UserID:         userID,
		Name:           input.Name,
		Type:           input.Type,
		InitialBalance: input.InitialBalance,
		IsActive:       true,
		Bank:           input.Bank,
		ClosingDay:     input.ClosingDay,
		DueDay:         input.DueDay,
		CreditLimit:    input.CreditLimit,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an existing account. Card cycle fields are only
// applied to credit cards; supplying them for other types is rejected.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	cardFieldsGiven := fields.ClosingDay != nil || fields.DueDay != nil || fields.CreditLimit != nil
	if cardFieldsGiven && !account.IsCreditCard() {
		return nil, apperrors.ErrCardFieldsForbidden
	}

	updates := make(map[string]interface{})

	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if account.IsCreditCard() {
		if fields.Bank != nil {
			updates["bank"] = *fields.Bank
		}
		if fields.ClosingDay != nil {
			if !validDay(*fields.ClosingDay) {
				return nil, apperrors.ErrInvalidDayOfMonth
			}
			updates["closing_day"] = *fields.ClosingDay
		}
		if fields.DueDay != nil {
			if !validDay(*fields.DueDay) {
				return nil, apperrors.ErrInvalidDayOfMonth
			}
			updates["due_day"] = *fields.DueDay
		}
		if fields.CreditLimit != nil {
			if fields.CreditLimit.Sign() <= 0 {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit must be greater than zero")
			}
			updates["credit_limit"] = *fields.CreditLimit
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount soft-deletes an account. Its transactions keep their
// account reference for historical records.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CurrentBalance computes the account's point-in-time balance by replaying
// its transactions dated at or before asOf against the initial balance.
// Credit cards are handled differently: their figure is the outstanding
// amount across OPEN and CLOSED invoices, not a replayed ledger balance.
func (s *accountService) CurrentBalance(userID, accountID string, asOf time.Time) (*AccountBalance, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	result := &AccountBalance{
		AccountID:      account.ID,
		AccountName:    account.Name,
		Type:           account.Type,
		InitialBalance: account.InitialBalance,
		CreditLimit:    account.CreditLimit,
	}

	if account.IsCreditCard() {
		outstanding, err := s.cardOutstanding(account.ID)
		if err != nil {
			return nil, err
		}
		result.Balance = outstanding
		return result, nil
	}

	var transactions []models.Transaction
	if err := s.db.Where("account_id = ? AND date <= ?", account.ID, asOf).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result.Balance = replayBalance(account.InitialBalance, transactions)
	return result, nil
}

// cardOutstanding recomputes a card's outstanding from the transactions
// allocated to its OPEN and CLOSED invoices. The cached invoice totals are
// not consulted: charges allocate continuously, while the cache only
// refreshes on close or explicit recalculation.
func (s *accountService) cardOutstanding(accountID string) (decimal.Decimal, error) {
	var invoiceIDs []string
	if err := s.db.Model(&models.Invoice{}).
		Where("account_id = ? AND status IN ?",
			accountID,
			[]models.InvoiceStatus{models.InvoiceStatusOpen, models.InvoiceStatusClosed}).
		Pluck("id", &invoiceIDs).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(invoiceIDs) == 0 {
		return decimal.Zero, nil
	}

	var transactions []models.Transaction
	if err := s.db.Where("invoice_id IN ?", invoiceIDs).
		Find(&transactions).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(t.Amount)
	}
	return total, nil
}

// replayBalance folds transactions into a starting balance. INCOME adds,
// EXPENSE subtracts; a TRANSFER row already carries its direction: the row
// persisted on the destination account has TransferFromID set and counts as
// a credit, the row on the source account has TransferToID set and counts
// as a debit. Decimal arithmetic keeps the result independent of order.
func replayBalance(initial decimal.Decimal, transactions []models.Transaction) decimal.Decimal {
	balance := initial
	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTypeIncome:
			balance = balance.Add(t.Amount)
		case models.TransactionTypeExpense:
			balance = balance.Sub(t.Amount)
		case models.TransactionTypeTransfer:
			if t.TransferFromID != nil {
				balance = balance.Add(t.Amount)
			} else if t.TransferToID != nil {
				balance = balance.Sub(t.Amount)
			}
		}
	}
	return balance
}
