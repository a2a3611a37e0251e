package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finledger/internal/errors"
	"finledger/internal/models"
	"finledger/internal/pagination"
	"finledger/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a
// transaction. Which optional blocks apply depends on type and recurrence:
// transfers need transfer_to_id, installment purchases need the installment
// block, recurring templates need the recurrence block, and card charges
// reference a credit card account.
type CreateTransactionRequest struct {
	AccountID   string          `json:"account_id" binding:"required"`
	CategoryID  *string         `json:"category_id"`
	Type        string          `json:"type" binding:"required,transaction_type"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        *string         `json:"date"`
	Description string          `json:"description" binding:"max=500"`

	RecurrenceType string `json:"recurrence_type" binding:"omitempty,recurrence_type"`

	// Installments
	TotalInstallments *int             `json:"total_installments" binding:"omitempty,min=2"`
	TotalAmount       *decimal.Decimal `json:"total_amount"`

	// Recurring
	IntervalNumber *int    `json:"interval_number" binding:"omitempty,min=1"`
	IntervalUnit   *string `json:"interval_unit" binding:"omitempty,interval_unit"`
	IsIndefinite   bool    `json:"is_indefinite"`
	Occurrences    *int    `json:"occurrences" binding:"omitempty,min=1"`

	// Transfers
	TransferToID *string `json:"transfer_to_id"`

	// Credit card charges
	CreditCardID *string `json:"credit_card_id"`
}

// UpdateTransactionRequest represents the editable fields of a transaction
// or, on the series endpoint, of every instance in a series.
type UpdateTransactionRequest struct {
	CategoryID  *string          `json:"category_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Date        *string          `json:"date"`
}

// CreateTransaction handles transaction creation for every classification
// @Summary     Create a transaction
// @Description Create a simple, transfer, installment, or recurring transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} services.CreateTransactionResult "Created transaction(s)"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     422 {object} ErrorResponse "Charge against a non-card account"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.CreateTransactionInput{
		AccountID:         req.AccountID,
		CategoryID:        req.CategoryID,
		Type:              models.TransactionType(req.Type),
		Amount:            req.Amount,
		Description:       req.Description,
		RecurrenceType:    models.RecurrenceType(req.RecurrenceType),
		TotalInstallments: req.TotalInstallments,
		TotalAmount:       req.TotalAmount,
		IntervalNumber:    req.IntervalNumber,
		IsIndefinite:      req.IsIndefinite,
		Occurrences:       req.Occurrences,
		TransferToID:      req.TransferToID,
		CreditCardID:      req.CreditCardID,
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.Date = date
	}
	if req.IntervalUnit != nil {
		unit := models.IntervalUnit(*req.IntervalUnit)
		input.IntervalUnit = &unit
	}

	result, err := h.transactionService.Create(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", req.AccountID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount.String()})

	c.JSON(http.StatusCreated, result)
}

// GetUserTransactions handles the filtered transaction listing
// @Summary     Get user transactions
// @Description Get a paginated list of transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       account_id query string false "Filter by account"
// @Param       from       query string false "Start date (inclusive)"
// @Param       to         query string false "End date (inclusive)"
// @Param       type       query string false "Filter by transaction type"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.TransactionFilter
	if accountID := c.Query("account_id"); accountID != "" {
		filter.AccountID = &accountID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseFlexibleTime(raw)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseFlexibleTime(raw)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.ToDate = &to
	}
	if rawType := c.Query("type"); rawType != "" {
		txType := models.TransactionType(rawType)
		filter.Type = &txType
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction handles single transaction retrieval
// @Summary     Get a transaction
// @Description Get a single transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// buildUpdateFields converts an update request into service update fields.
func buildUpdateFields(req UpdateTransactionRequest) (services.TransactionUpdateFields, error) {
	fields := services.TransactionUpdateFields{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseFlexibleTime(*req.Date)
		if err != nil {
			return fields, err
		}
		fields.Date = &date
	}
	return fields, nil
}

// UpdateTransaction handles single transaction updates
// @Summary     Update a transaction
// @Description Update one transaction's editable fields
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields, err := buildUpdateFields(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, c.Param("id"), fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateSeries handles bulk updates across a recurrence series
// @Summary     Update a series
// @Description Apply the same field changes to every instance of a series
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       seriesId path string                   true "Series ID"
// @Param       request  body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} map[string]int64 "Affected instance count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Series not found"
// @Router      /transactions/series/{seriesId} [put]
func (h *TransactionHandler) UpdateSeries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields, err := buildUpdateFields(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	affected, err := h.transactionService.UpdateSeries(userID, c.Param("seriesId"), fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": affected})
}

// DeleteTransaction handles single transaction deletion
// @Summary     Delete a transaction
// @Description Delete one transaction; series siblings are untouched
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// DeleteSeries handles bulk deletion of a recurrence series
// @Summary     Delete a series
// @Description Delete every instance of a series and report how many went
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       seriesId path string true "Series ID"
// @Success     200 {object} map[string]int64 "Deleted instance count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Series not found"
// @Router      /transactions/series/{seriesId} [delete]
func (h *TransactionHandler) DeleteSeries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seriesID := c.Param("seriesId")
	affected, err := h.transactionService.DeleteSeries(userID, seriesID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SERIES", "transaction_series", seriesID, c.ClientIP(),
		map[string]interface{}{"deleted": affected})

	c.JSON(http.StatusOK, gin.H{"deleted": affected})
}
