package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finledger/internal/errors"
	"finledger/internal/models"
	"finledger/internal/money"
)

// invoiceService handles credit card invoice logic: mapping dated
// transactions onto billing cycles and managing the invoice lifecycle.
type invoiceService struct {
	db *gorm.DB
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB) InvoiceServicer {
	return &invoiceService{db: db}
}

// invoicePeriod maps a transaction date onto the billing month and year for
// a card with the given closing day. A charge made after the closing day
// belongs to the following month's invoice; December rolls into January of
// the next year. A charge exactly on the closing day still makes the
// current invoice.
func invoicePeriod(date time.Time, closingDay int) (month, year int) {
	month = int(date.Month())
	year = date.Year()

	if date.Day() > closingDay {
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return month, year
}

// ResolveForDate finds or creates the invoice for the billing period the
// given date falls into on the given card. Resolution is idempotent: dates
// mapping to the same (account, month, year) always yield the same invoice.
//
// The caller's transaction handle is used so resolution participates in the
// surrounding unit of work; pass nil to run against the service's own handle.
func (s *invoiceService) ResolveForDate(tx *gorm.DB, account *models.Account, date time.Time) (*models.Invoice, error) {
	if tx == nil {
		tx = s.db
	}

	if !account.IsCreditCard() || account.ClosingDay == nil || account.DueDay == nil {
		return nil, apperrors.ErrNotCreditCard
	}
	closingDay := *account.ClosingDay
	dueDay := *account.DueDay

	month, year := invoicePeriod(date, closingDay)

	var invoice models.Invoice
	err := tx.Where("account_id = ? AND month = ? AND year = ?", account.ID, month, year).
		First(&invoice).Error
	if err == nil {
		return &invoice, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	closingDate := dateForDay(year, time.Month(month), closingDay, date.Location())
	dueDate := dateForDay(year, time.Month(month), dueDay, date.Location())
	// A due day before the closing day means payment falls in the month
	// after the cycle closes.
	if dueDay < closingDay {
		dueDate = addMonthsClamped(dueDate, 1)
	}

	invoice = models.Invoice{
		AccountID:   account.ID,
		Month:       month,
		Year:        year,
		ClosingDate: closingDate,
		DueDate:     dueDate,
		Status:      models.InvoiceStatusOpen,
		TotalAmount: decimal.Zero,
	}

	if err := tx.Create(&invoice).Error; err != nil {
		// A concurrent creation for the same period won the insert race.
		// The unique (account_id, month, year) index guarantees the row
		// exists now, so re-fetch instead of failing.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Invoice
			if ferr := tx.Where("account_id = ? AND month = ? AND year = ?", account.ID, month, year).
				First(&existing).Error; ferr != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, ferr)
			}
			return &existing, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &invoice, nil
}

// GetCardInvoices lists all invoices of a credit card, newest period first.
func (s *invoiceService) GetCardInvoices(userID, creditCardID string) ([]models.Invoice, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ? AND type = ?",
		creditCardID, userID, models.AccountTypeCreditCard).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invoices []models.Invoice
	if err := s.db.Where("account_id = ?", creditCardID).
		Order("year DESC, month DESC").
		Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invoices, nil
}

// getOwnedInvoice retrieves an invoice whose card belongs to the user.
func (s *invoiceService) getOwnedInvoice(userID, invoiceID string) (*models.Invoice, error) {
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
	return &invoice, nil
}

// computeTotal sums an invoice's transaction amounts exactly.
func (s *invoiceService) computeTotal(invoiceID string) (decimal.Decimal, error) {
	var transactions []models.Transaction
	if err := s.db.Where("invoice_id = ?", invoiceID).Find(&transactions).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	amounts := make([]decimal.Decimal, len(transactions))
	for i, t := range transactions {
		amounts[i] = t.Amount
	}
	return money.Sum(amounts...), nil
}

// GetInvoiceByID retrieves an invoice with its transactions and a total
// recomputed from them. TotalAmount is only a cache; CalculatedTotal is
// always derived from the current transaction set.
func (s *invoiceService) GetInvoiceByID(userID, invoiceID string) (*InvoiceDetail, error) {
	var invoice models.Invoice
	err := s.db.
		Joins("JOIN accounts ON accounts.id = invoices.account_id").
		Where("invoices.id = ? AND accounts.user_id = ?", invoiceID, userID).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Preload("Transactions.Category").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	amounts := make([]decimal.Decimal, len(invoice.Transactions))
	for i, t := range invoice.Transactions {
		amounts[i] = t.Amount
	}

	return &InvoiceDetail{
		Invoice:         invoice,
		CalculatedTotal: money.Sum(amounts...),
	}, nil
}

// MarkPaid advances an invoice to PAID. Paying an already-paid invoice is a
// state conflict; the status never regresses afterwards.
func (s *invoiceService) MarkPaid(userID, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.getOwnedInvoice(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == models.InvoiceStatusPaid {
		return nil, apperrors.ErrInvoiceAlreadyPaid
	}

	if err := s.db.Model(invoice).Update("status", models.InvoiceStatusPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	invoice.Status = models.InvoiceStatusPaid
	return invoice, nil
}

// CloseInvoice advances an OPEN invoice to CLOSED, caching the recomputed
// total. Closing a CLOSED or PAID invoice is a state conflict.
func (s *invoiceService) CloseInvoice(userID, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.getOwnedInvoice(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusClosed:
		return nil, apperrors.ErrInvoiceAlreadyClosed
	case models.InvoiceStatusPaid:
		return nil, apperrors.ErrInvoicePaidFinal
	}

	total, err := s.computeTotal(invoice.ID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":       models.InvoiceStatusClosed,
		"total_amount": total,
	}
	if err := s.db.Model(invoice).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	invoice.Status = models.InvoiceStatusClosed
	invoice.TotalAmount = total
	return invoice, nil
}

// RecalculateTotal refreshes the cached TotalAmount from the invoice's
// current transactions without touching its status.
func (s *invoiceService) RecalculateTotal(userID, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.getOwnedInvoice(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	total, err := s.computeTotal(invoice.ID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(invoice).Update("total_amount", total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	invoice.TotalAmount = total
	return invoice, nil
}
