package models

import "github.com/shopspring/decimal"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
)

// Account represents a financial account in the system.
//
// ClosingDay, DueDay, and CreditLimit are set if and only if the account
// is a credit card; the account service enforces this on create and update.
type Account struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"not null" json:"name"`
	Type           AccountType     `gorm:"not null" json:"type"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"initial_balance"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`

	// For credit card accounts
	Bank        string           `json:"bank,omitempty"`
	ClosingDay  *int             `json:"closing_day,omitempty"`
	DueDay      *int             `json:"due_day,omitempty"`
	CreditLimit *decimal.Decimal `gorm:"type:decimal(15,2)" json:"credit_limit,omitempty"`

	// Relationships
	Invoices     []Invoice     `gorm:"foreignKey:AccountID" json:"invoices,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

// IsCreditCard reports whether the account is a credit card.
func (a *Account) IsCreditCard() bool {
	return a.Type == AccountTypeCreditCard
}
