package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransferFlow_SuccessfulTransfer(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "xfer@test.com", "password123")

	acctA := app.createAccount(t, token,
		`{"name":"Account A","type":"CHECKING","initial_balance":"200.00"}`)
	acctB := app.createAccount(t, token,
		`{"name":"Account B","type":"SAVINGS","initial_balance":"50.00"}`)

	rec := app.request("POST", "/api/v1/transactions", fmt.Sprintf(
		`{"account_id":%q,"transfer_to_id":%q,"type":"TRANSFER","amount":"75.00","date":"2025-03-10","description":"Rent money"}`,
		acctA, acctB), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	pair := parseJSON(t, rec)["transfer"].(map[string]interface{})
	debit := pair["debit"].(map[string]interface{})
	credit := pair["credit"].(map[string]interface{})

	if debit["account_id"] != acctA {
		t.Errorf("expected debit on account A, got %v", debit["account_id"])
	}
	if credit["account_id"] != acctB {
		t.Errorf("expected credit on account B, got %v", credit["account_id"])
	}
	if debit["transfer_to_id"] != acctB {
		t.Errorf("expected debit linked to account B, got %v", debit["transfer_to_id"])
	}
	if credit["transfer_from_id"] != acctA {
		t.Errorf("expected credit linked to account A, got %v", credit["transfer_from_id"])
	}
	if _, linked := debit["invoice_id"]; linked {
		t.Error("transfer legs must not be allocated to an invoice")
	}

	// A: 200 - 75 = 125, B: 50 + 75 = 125.
	rec = app.request("GET", "/api/v1/accounts/"+acctA+"/balance?as_of=2025-04-01", "", token)
	assertDecimal(t, parseJSON(t, rec)["balance"], "125.00")

	rec = app.request("GET", "/api/v1/accounts/"+acctB+"/balance?as_of=2025-04-01", "", token)
	assertDecimal(t, parseJSON(t, rec)["balance"], "125.00")
}

func TestTransferFlow_SameAccountRejected(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "same@test.com", "password123")

	acct := app.createAccount(t, token,
		`{"name":"Only Account","type":"CHECKING","initial_balance":"100.00"}`)

	rec := app.request("POST", "/api/v1/transactions", fmt.Sprintf(
		`{"account_id":%q,"transfer_to_id":%q,"type":"TRANSFER","amount":"10.00"}`,
		acct, acct), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "SAME_ACCOUNT_TRANSFER")
}

func TestTransferFlow_MissingDestination(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "nodest@test.com", "password123")

	acct := app.createAccount(t, token,
		`{"name":"Source","type":"CHECKING","initial_balance":"100.00"}`)

	rec := app.request("POST", "/api/v1/transactions", fmt.Sprintf(
		`{"account_id":%q,"type":"TRANSFER","amount":"10.00"}`, acct), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "TRANSFER_TARGET_REQUIRED")
}
