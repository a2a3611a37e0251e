package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// RecurrenceType classifies how a transaction was produced.
type RecurrenceType string

const (
	RecurrenceTypeSimple      RecurrenceType = "SIMPLE"
	RecurrenceTypeInstallment RecurrenceType = "INSTALLMENT"
	RecurrenceTypeRecurring   RecurrenceType = "RECURRING"
)

// IntervalUnit is the calendar unit of a recurring transaction's interval.
type IntervalUnit string

const (
	IntervalUnitDay   IntervalUnit = "DAY"
	IntervalUnitWeek  IntervalUnit = "WEEK"
	IntervalUnitMonth IntervalUnit = "MONTH"
	IntervalUnitYear  IntervalUnit = "YEAR"
)

// Transaction represents a single dated ledger entry. Amount is always a
// positive magnitude; the sign of its effect comes from Type and, for
// transfers, from which side of the pair the row represents.
//
// Rows expanded from one installment or recurring request share a SeriesID;
// a series is nothing more than that shared identifier.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID   string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	RecurrenceType RecurrenceType `gorm:"not null;default:'SIMPLE'" json:"recurrence_type"`
	SeriesID       *string        `gorm:"type:uuid;index" json:"series_id,omitempty"`

	// For installments
	InstallmentStart  *int             `json:"installment_start,omitempty"`
	InstallmentEnd    *int             `json:"installment_end,omitempty"`
	TotalInstallments *int             `json:"total_installments,omitempty"`
	TotalAmount       *decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_amount,omitempty"`

	// For recurring transactions
	IntervalNumber *int          `json:"interval_number,omitempty"`
	IntervalUnit   *IntervalUnit `json:"interval_unit,omitempty"`
	IsIndefinite   bool          `gorm:"default:false" json:"is_indefinite"`
	Occurrences    *int          `json:"occurrences,omitempty"`

	// For transfers: the debit row carries TransferToID (destination account),
	// the credit row carries TransferFromID (source account).
	TransferToID   *string `gorm:"type:uuid" json:"transfer_to_id,omitempty"`
	TransferFromID *string `gorm:"type:uuid" json:"transfer_from_id,omitempty"`

	// For credit card charges
	CreditCardID *string `gorm:"type:uuid" json:"credit_card_id,omitempty"`
	InvoiceID    *string `gorm:"type:uuid;index" json:"invoice_id,omitempty"`

	// Relationships
	Account  Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Invoice  *Invoice  `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}
