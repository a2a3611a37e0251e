// Package errors provides custom error types for the finledger API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	// ErrCardFieldsRequired fires when a credit card account is created
	// without a closing day, due day, or credit limit.
	ErrCardFieldsRequired = &AppError{Code: "CARD_FIELDS_REQUIRED", Message: "Credit card accounts require closing day, due day, and credit limit", StatusCode: http.StatusUnprocessableEntity}
	// ErrCardFieldsForbidden fires when card-only fields are supplied for a
	// checking or savings account.
	ErrCardFieldsForbidden = &AppError{Code: "CARD_FIELDS_FORBIDDEN", Message: "Closing day, due day, and credit limit are only valid for credit card accounts", StatusCode: http.StatusUnprocessableEntity}
	ErrNotCreditCard       = &AppError{Code: "NOT_CREDIT_CARD", Message: "Account is not a credit card", StatusCode: http.StatusUnprocessableEntity}
	ErrInvalidDayOfMonth   = &AppError{Code: "INVALID_DAY_OF_MONTH", Message: "Day of month must be between 1 and 31", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrCategoryCycle       = &AppError{Code: "CATEGORY_CYCLE", Message: "Category parent would create a cycle", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrSeriesNotFound         = &AppError{Code: "SERIES_NOT_FOUND", Message: "Transaction series not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrTransferTargetRequired = &AppError{Code: "TRANSFER_TARGET_REQUIRED", Message: "Transfers require a destination account", StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer    = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", StatusCode: http.StatusBadRequest}
	ErrInstallmentFields      = &AppError{Code: "INSTALLMENT_FIELDS_REQUIRED", Message: "Installment purchases require total installments and total amount", StatusCode: http.StatusBadRequest}
	ErrInstallmentCount       = &AppError{Code: "INSTALLMENT_COUNT_TOO_LOW", Message: "Installment purchases require at least 2 installments", StatusCode: http.StatusBadRequest}
	ErrRecurrenceFields       = &AppError{Code: "RECURRENCE_FIELDS_REQUIRED", Message: "Recurring transactions require an interval number and unit", StatusCode: http.StatusBadRequest}
	ErrOccurrencesRequired    = &AppError{Code: "OCCURRENCES_REQUIRED", Message: "Bounded recurrences require an occurrence count", StatusCode: http.StatusBadRequest}
)

// Invoice errors.
var (
	ErrInvoiceNotFound      = &AppError{Code: "INVOICE_NOT_FOUND", Message: "Invoice not found", StatusCode: http.StatusNotFound}
	ErrInvoiceAlreadyPaid   = &AppError{Code: "INVOICE_ALREADY_PAID", Message: "Invoice is already paid", StatusCode: http.StatusConflict}
	ErrInvoiceAlreadyClosed = &AppError{Code: "INVOICE_ALREADY_CLOSED", Message: "Invoice is already closed", StatusCode: http.StatusConflict}
	ErrInvoicePaidFinal     = &AppError{Code: "INVOICE_PAID_FINAL", Message: "A paid invoice cannot change status", StatusCode: http.StatusConflict}
)
