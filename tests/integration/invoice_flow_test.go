package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// chargeCard posts a credit card purchase and returns the created transaction.
func chargeCard(t *testing.T, app *testApp, token, cardID, amount, date string) map[string]interface{} {
	t.Helper()
	rec := app.request("POST", "/api/v1/transactions", fmt.Sprintf(
		`{"account_id":%q,"credit_card_id":%q,"type":"EXPENSE","amount":%q,"date":%q,"description":"Card purchase"}`,
		cardID, cardID, amount, date), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("card charge failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["transaction"].(map[string]interface{})
}

func TestInvoiceFlow_ChargeAllocation(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "card@test.com", "password123")

	cardID := app.createAccount(t, token,
		`{"name":"Visa","type":"CREDIT_CARD","closing_day":8,"due_day":15,"credit_limit":"5000.00"}`)

	// Before the closing day: March invoice. After it: April.
	txMarch := chargeCard(t, app, token, cardID, "250.00", "2025-03-05")
	txApril := chargeCard(t, app, token, cardID, "100.00", "2025-03-09")

	if txMarch["invoice_id"] == nil {
		t.Fatal("expected charge to carry an invoice ID")
	}
	if txMarch["invoice_id"] == txApril["invoice_id"] {
		t.Error("charges on either side of the closing day must land on different invoices")
	}

	rec := app.request("GET", "/api/v1/accounts/"+cardID+"/invoices", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	invoices := parseJSON(t, rec)["invoices"].([]interface{})
	if len(invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(invoices))
	}

	// The card's outstanding balance covers both open invoices.
	rec = app.request("GET", "/api/v1/accounts/"+cardID+"/balance", "", token)
	assertDecimal(t, parseJSON(t, rec)["balance"], "350.00")
}

func TestInvoiceFlow_Lifecycle(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "lifecycle@test.com", "password123")

	cardID := app.createAccount(t, token,
		`{"name":"Mastercard","type":"CREDIT_CARD","closing_day":8,"due_day":15,"credit_limit":"3000.00"}`)

	tx := chargeCard(t, app, token, cardID, "420.00", "2025-03-05")
	invoiceID := tx["invoice_id"].(string)

	// Detail view recomputes the total from the linked transactions.
	rec := app.request("GET", "/api/v1/invoices/"+invoiceID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	detail := parseJSON(t, rec)["invoice"].(map[string]interface{})
	assertDecimal(t, detail["calculated_total"], "420.00")
	if detail["status"] != "OPEN" {
		t.Errorf("expected OPEN invoice, got %v", detail["status"])
	}

	rec = app.request("POST", "/api/v1/invoices/"+invoiceID+"/close", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("close failed: %d %s", rec.Code, rec.Body.String())
	}
	invoice := parseJSON(t, rec)["invoice"].(map[string]interface{})
	if invoice["status"] != "CLOSED" {
		t.Errorf("expected CLOSED, got %v", invoice["status"])
	}

	rec = app.request("POST", "/api/v1/invoices/"+invoiceID+"/pay", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay failed: %d %s", rec.Code, rec.Body.String())
	}
	invoice = parseJSON(t, rec)["invoice"].(map[string]interface{})
	if invoice["status"] != "PAID" {
		t.Errorf("expected PAID, got %v", invoice["status"])
	}

	// Paid is terminal.
	rec = app.request("POST", "/api/v1/invoices/"+invoiceID+"/pay", "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "INVOICE_ALREADY_PAID")

	rec = app.request("POST", "/api/v1/invoices/"+invoiceID+"/close", "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "INVOICE_PAID_FINAL")

	// Paid invoices drop out of the card's outstanding balance.
	rec = app.request("GET", "/api/v1/accounts/"+cardID+"/balance", "", token)
	assertDecimal(t, parseJSON(t, rec)["balance"], "0")
}

func TestInvoiceFlow_ChargeAgainstCheckingRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "notcard@test.com", "password123")

	acct := app.createAccount(t, token,
		`{"name":"Checking","type":"CHECKING","initial_balance":"500.00"}`)

	rec := app.request("POST", "/api/v1/transactions", fmt.Sprintf(
		`{"account_id":%q,"credit_card_id":%q,"type":"EXPENSE","amount":"50.00"}`,
		acct, acct), token)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "NOT_CREDIT_CARD")
}
