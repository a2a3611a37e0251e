package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of a credit card invoice.
// Status only ever advances: OPEN -> CLOSED -> PAID.
type InvoiceStatus string

const (
	InvoiceStatusOpen   InvoiceStatus = "OPEN"
	InvoiceStatusClosed InvoiceStatus = "CLOSED"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
)

// Invoice represents one billing cycle of a credit card, identified by
// (account, month, year). The composite unique index is what makes
// concurrent find-or-create safe: a losing inserter re-fetches instead of
// creating a duplicate period.
type Invoice struct {
	Base
	AccountID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_period" json:"account_id"`
	Month       int             `gorm:"not null;uniqueIndex:idx_invoices_period;check:invoice_month_valid,month >= 1 AND month <= 12" json:"month"`
	Year        int             `gorm:"not null;uniqueIndex:idx_invoices_period" json:"year"`
	ClosingDate time.Time       `gorm:"not null" json:"closing_date"`
	DueDate     time.Time       `gorm:"not null" json:"due_date"`
	Status      InvoiceStatus   `gorm:"not null;default:'OPEN'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`

	// Relationships
	Account      Account       `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:InvoiceID" json:"transactions,omitempty"`
}
