package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finledger/internal/services"
)

// InvoiceHandler handles credit card invoice requests.
type InvoiceHandler struct {
	invoiceService     services.InvoiceServicer
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService services.InvoiceServicer, transactionService services.TransactionServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:     invoiceService,
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// GetCardInvoices handles the invoice listing for a credit card
// @Summary     Get card invoices
// @Description List a credit card's invoices, newest billing period first
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Credit card account ID"
// @Success     200 {array} models.Invoice "Invoices"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/invoices [get]
func (h *InvoiceHandler) GetCardInvoices(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoices, err := h.invoiceService.GetCardInvoices(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// GetInvoice handles single invoice retrieval with its transactions
// @Summary     Get an invoice
// @Description Get an invoice with its transactions and recomputed total
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {object} services.InvoiceDetail "Invoice with transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Router      /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.invoiceService.GetInvoiceByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": detail})
}

// GetInvoiceTransactions handles the transaction listing of an invoice
// @Summary     Get invoice transactions
// @Description List the transactions allocated to an invoice, oldest first
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {array} models.Transaction "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Router      /invoices/{id}/transactions [get]
func (h *InvoiceHandler) GetInvoiceTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.GetInvoiceTransactions(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// PayInvoice handles marking an invoice as paid
// @Summary     Pay an invoice
// @Description Mark an invoice as paid; paid is a terminal state
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.Invoice "Paid invoice"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     409 {object} ErrorResponse "Already paid"
// @Router      /invoices/{id}/pay [post]
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.MarkPaid(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_INVOICE", "invoice", invoice.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// CloseInvoice handles closing an invoice's billing cycle
// @Summary     Close an invoice
// @Description Close an open invoice, freezing its recomputed total
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.Invoice "Closed invoice"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Failure     409 {object} ErrorResponse "Already closed or paid"
// @Router      /invoices/{id}/close [post]
func (h *InvoiceHandler) CloseInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.CloseInvoice(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CLOSE_INVOICE", "invoice", invoice.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// RecalculateInvoice handles recomputing an invoice's cached total
// @Summary     Recalculate an invoice total
// @Description Recompute the cached total from the invoice's transactions
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Invoice ID"
// @Success     200 {object} models.Invoice "Invoice with refreshed total"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invoice not found"
// @Router      /invoices/{id}/recalculate [post]
func (h *InvoiceHandler) RecalculateInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.RecalculateTotal(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}
