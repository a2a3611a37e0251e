package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "finledger/internal/errors"
	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/pagination"
	"finledger/internal/uuid"
)

// indefiniteHorizon is how many occurrences an indefinite recurrence
// materializes per request. Indefinite series are approximated by eager
// generation rather than a background process; re-invoking with a later
// start date extends the horizon.
const indefiniteHorizon = 12

// transactionService handles transaction-related business logic: it
// classifies creation requests, expands installment/recurring series, and
// persists each resulting set as a single unit.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	invoiceService InvoiceServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, invoiceService InvoiceServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
		invoiceService: invoiceService,
	}
}

// Create validates and classifies a creation request, then dispatches to the
// transfer, installment, recurring, or simple path. All validation runs
// before anything is written; every path persists its full result set in one
// database transaction so a failure never leaves a partial series behind.
func (s *transactionService) Create(userID string, input CreateTransactionInput) (*CreateTransactionResult, error) {
	if input.AccountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if input.Amount.Sign() <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if input.RecurrenceType == "" {
		input.RecurrenceType = models.RecurrenceTypeSimple
	}

	if _, err := s.accountService.GetAccountByID(userID, input.AccountID); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *input.CategoryID, userID).
			First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	switch {
	case input.Type == models.TransactionTypeTransfer:
		return s.createTransfer(userID, input)
	case input.RecurrenceType == models.RecurrenceTypeInstallment:
		return s.createInstallments(userID, input)
	case input.RecurrenceType == models.RecurrenceTypeRecurring:
		return s.createRecurring(userID, input)
	default:
		return s.createSimple(userID, input)
	}
}

// lookupCard fetches a user's credit card account or fails with NotFound /
// NotCreditCard.
func (s *transactionService) lookupCard(userID, cardID string) (*models.Account, error) {
	var card models.Account
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !card.IsCreditCard() {
		return nil, apperrors.ErrNotCreditCard
	}
	return &card, nil
}

// createSimple persists a single transaction, allocating it to a card
// invoice when a credit card is involved.
func (s *transactionService) createSimple(userID string, input CreateTransactionInput) (*CreateTransactionResult, error) {
	var card *models.Account
	if input.CreditCardID != nil {
		var err error
		card, err = s.lookupCard(userID, *input.CreditCardID)
		if err != nil {
			return nil, err
		}
	}

	transaction := models.Transaction{
		UserID:         userID,
		AccountID:      input.AccountID,
		CategoryID:     input.CategoryID,
		Type:           input.Type,
		Amount:         input.Amount,
		Description:    input.Description,
		Date:           input.Date,
		RecurrenceType: models.RecurrenceTypeSimple,
		CreditCardID:   input.CreditCardID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if card != nil {
			invoice, err := s.invoiceService.ResolveForDate(tx, card, input.Date)
			if err != nil {
				return err
			}
			transaction.InvoiceID = &invoice.ID
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateTransactionResult{Single: &transaction}, nil
}

// createTransfer produces the linked debit/credit pair for a transfer. The
// debit row lives on the source account and points at the destination via
// TransferToID; the credit row mirrors it. Transfers never touch invoices,
// even when either side is a credit card.
func (s *transactionService) createTransfer(userID string, input CreateTransactionInput) (*CreateTransactionResult, error) {
	if input.TransferToID == nil {
		return nil, apperrors.ErrTransferTargetRequired
	}
	if *input.TransferToID == input.AccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}

	if _, err := s.accountService.GetAccountByID(userID, *input.TransferToID); err != nil {
		return nil, err
	}

	debit := models.Transaction{
		UserID:         userID,
		AccountID:      input.AccountID,
		Type:           models.TransactionTypeTransfer,
		Amount:         input.Amount,
		Description:    input.Description,
		Date:           input.Date,
		RecurrenceType: models.RecurrenceTypeSimple,
		TransferToID:   input.TransferToID,
	}
	credit := models.Transaction{
		UserID:         userID,
		AccountID:      *input.TransferToID,
		Type:           models.TransactionTypeTransfer,
		Amount:         input.Amount,
		Description:    input.Description,
		Date:           input.Date,
		RecurrenceType: models.RecurrenceTypeSimple,
		TransferFromID: &input.AccountID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&debit).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Create(&credit).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateTransactionResult{Transfer: &TransferPair{Debit: &debit, Credit: &credit}}, nil
}

// createInstallments expands an installment purchase into one dated instance
// per billing period. Every instance carries the same rounded quotient of
// the total (see money.SplitEven for the rounding policy) and the original
// pre-split total, and all share a generated series id. Card-linked
// instances each resolve their own invoice, so a long plan spans several.
func (s *transactionService) createInstallments(userID string, input CreateTransactionInput) (*CreateTransactionResult, error) {
	if input.TotalInstallments == nil || input.TotalAmount == nil {
		return nil, apperrors.ErrInstallmentFields
	}
	n := *input.TotalInstallments
	if n < 2 {
		return nil, apperrors.ErrInstallmentCount
	}
	if input.TotalAmount.Sign() <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be greater than zero")
	}

	var card *models.Account
	if input.CreditCardID != nil {
		var err error
		card, err = s.lookupCard(userID, *input.CreditCardID)
		if err != nil {
			return nil, err
		}
	}

	per := money.SplitEven(*input.TotalAmount, n)
	seriesID := uuid.New()

	instances := make([]models.Transaction, 0, n)
	for i := 1; i <= n; i++ {
		start, end, total := i, n, n
		instances = append(instances, models.Transaction{
			UserID:            userID,
			AccountID:         input.AccountID,
			CategoryID:        input.CategoryID,
			Type:              input.Type,
			Amount:            per,
			Description:       fmt.Sprintf("%s (%d/%d)", input.Description, i, n),
			Date:              addMonthsClamped(input.Date, i-1),
			RecurrenceType:    models.RecurrenceTypeInstallment,
			SeriesID:          &seriesID,
			InstallmentStart:  &start,
			InstallmentEnd:    &end,
			TotalInstallments: &total,
			TotalAmount:       input.TotalAmount,
			CreditCardID:      input.CreditCardID,
		})
	}

	if err := s.persistSeries(instances, card); err != nil {
		return nil, err
	}
	return &CreateTransactionResult{Instances: instances}, nil
}

// createRecurring expands a recurring template into its occurrence
// sequence. Bounded recurrences need an explicit count; indefinite ones
// materialize indefiniteHorizon occurrences.
func (s *transactionService) createRecurring(userID string, input CreateTransactionInput) (*CreateTransactionResult, error) {
	if input.IntervalNumber == nil || input.IntervalUnit == nil {
		return nil, apperrors.ErrRecurrenceFields
	}
	interval := *input.IntervalNumber
	unit := *input.IntervalUnit
	if interval < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interval number must be at least 1")
	}
	switch unit {
	case models.IntervalUnitDay, models.IntervalUnitWeek, models.IntervalUnitMonth, models.IntervalUnitYear:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported interval unit")
	}
	if !input.IsIndefinite && input.Occurrences == nil {
		return nil, apperrors.ErrOccurrencesRequired
	}

	count := indefiniteHorizon
	if !input.IsIndefinite {
		count = *input.Occurrences
		if count < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "occurrences must be at least 1")
		}
	}

	var card *models.Account
	if input.CreditCardID != nil {
		var err error
		card, err = s.lookupCard(userID, *input.CreditCardID)
		if err != nil {
			return nil, err
		}
	}

	seriesID := uuid.New()

	instances := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		instances = append(instances, models.Transaction{
			UserID:         userID,
			AccountID:      input.AccountID,
			CategoryID:     input.CategoryID,
			Type:           input.Type,
			Amount:         input.Amount,
			Description:    input.Description,
			Date:           stepDate(input.Date, unit, i*interval),
			RecurrenceType: models.RecurrenceTypeRecurring,
			SeriesID:       &seriesID,
			IntervalNumber: input.IntervalNumber,
			IntervalUnit:   input.IntervalUnit,
			IsIndefinite:   input.IsIndefinite,
			Occurrences:    input.Occurrences,
			CreditCardID:   input.CreditCardID,
		})
	}

	if err := s.persistSeries(instances, card); err != nil {
		return nil, err
	}
	return &CreateTransactionResult{Instances: instances}, nil
}

// persistSeries resolves invoices for card-linked instances and writes the
// whole batch inside one database transaction.
func (s *transactionService) persistSeries(instances []models.Transaction, card *models.Account) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range instances {
			if card != nil {
				invoice, err := s.invoiceService.ResolveForDate(tx, card, instances[i].Date)
				if err != nil {
					return err
				}
				instances[i].InvoiceID = &invoice.ID
			}
		}
		if err := tx.Create(&instances).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Preload("Category").
		Preload("Invoice").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	return q
}

// GetInvoiceTransactions lists the transactions allocated to an invoice
// whose card belongs to the user, oldest first.
func (s *transactionService) GetInvoiceTransactions(userID, invoiceID string) ([]models.Transaction, error) {
	var invoice models.Invoice
	err := s.db.
		Joins("JOIN accounts ON accounts.id = invoices.account_id").
		Where("invoices.id = ? AND accounts.user_id = ?", invoiceID, userID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := s.db.Where("invoice_id = ?", invoiceID).
		Order("date ASC").
		Preload("Category").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).
		Preload("Category").
		Preload("Invoice").
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// buildUpdates validates the editable fields and converts them into a column
// map. Shared by single and series updates so both enforce the same rules.
func (s *transactionService) buildUpdates(userID string, fields TransactionUpdateFields) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if fields.Amount != nil {
		if fields.Amount.Sign() <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *fields.CategoryID, userID).
			First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Date != nil {
		updates["date"] = *fields.Date
	}

	return updates, nil
}

// UpdateTransaction updates a single transaction instance.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates, err := s.buildUpdates(userID, fields)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", transaction.ID).First(transaction).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// UpdateSeries applies the given fields to every instance sharing the series
// id and reports how many were affected. An unknown series is NotFound.
func (s *transactionService) UpdateSeries(userID, seriesID string, fields TransactionUpdateFields) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).
		Where("series_id = ? AND user_id = ?", seriesID, userID).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return 0, apperrors.ErrSeriesNotFound
	}

	updates, err := s.buildUpdates(userID, fields)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return count, nil
	}

	res := s.db.Model(&models.Transaction{}).
		Where("series_id = ? AND user_id = ?", seriesID, userID).
		Updates(updates)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteTransaction deletes a single transaction instance.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteSeries deletes every instance sharing the series id and reports how
// many were removed. An unknown series is NotFound.
func (s *transactionService) DeleteSeries(userID, seriesID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).
		Where("series_id = ? AND user_id = ?", seriesID, userID).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return 0, apperrors.ErrSeriesNotFound
	}

	res := s.db.Where("series_id = ? AND user_id = ?", seriesID, userID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}
