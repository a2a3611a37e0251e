package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// seedLedger registers a user and posts a small March ledger: 3000 income on
// the 1st, 400 of expenses by the 10th, and 100 more on the 20th.
func seedLedger(t *testing.T, app *testApp) (token, acctID, foodID string) {
	t.Helper()
	token, _ = app.registerUser(t, "dash@test.com", "password123")

	acctID = app.createAccount(t, token,
		`{"name":"Main","type":"CHECKING","initial_balance":"1000.00"}`)

	rec := app.request("POST", "/api/v1/categories",
		`{"name":"Food","type":"EXPENSE"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	foodID = parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	post := func(body string) {
		t.Helper()
		rec := app.request("POST", "/api/v1/transactions", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed transaction failed: %d %s", rec.Code, rec.Body.String())
		}
	}
	post(fmt.Sprintf(`{"account_id":%q,"type":"INCOME","amount":"3000.00","date":"2025-03-01","description":"Salary"}`, acctID))
	post(fmt.Sprintf(`{"account_id":%q,"category_id":%q,"type":"EXPENSE","amount":"400.00","date":"2025-03-10","description":"Groceries"}`, acctID, foodID))
	post(fmt.Sprintf(`{"account_id":%q,"type":"EXPENSE","amount":"100.00","date":"2025-03-20","description":"Gift"}`, acctID))
	return token, acctID, foodID
}

func TestDashboardFlow_ConsolidatedBalance(t *testing.T) {
	app := setupApp(t)
	token, acctID, _ := seedLedger(t, app)

	rec := app.request("GET", "/api/v1/dashboard/balance?at=2025-03-15", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	// 1000 + 3000 - 400 as of March 15; the gift on the 20th is not in yet.
	assertDecimal(t, result["total"], "3600.00")

	accounts := result["accounts"].([]interface{})
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account entry, got %d", len(accounts))
	}
	entry := accounts[0].(map[string]interface{})
	if entry["account_id"] != acctID {
		t.Errorf("unexpected account in consolidated balance: %v", entry["account_id"])
	}
}

func TestDashboardFlow_PeriodWindows(t *testing.T) {
	app := setupApp(t)
	token, _, _ := seedLedger(t, app)

	rec := app.request("GET", "/api/v1/dashboard/period?window=currentMonth&at=2025-03-15", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	current := parseJSON(t, rec)
	assertDecimal(t, current["total_income"], "3000.00")
	assertDecimal(t, current["total_expense"], "400.00")
	assertDecimal(t, current["balance"], "2600.00")

	rec = app.request("GET", "/api/v1/dashboard/period?window=remainingMonth&at=2025-03-15", "", token)
	remaining := parseJSON(t, rec)
	assertDecimal(t, remaining["total_expense"], "100.00")

	rec = app.request("GET", "/api/v1/dashboard/period?window=fullMonth&at=2025-03-15", "", token)
	full := parseJSON(t, rec)
	assertDecimal(t, full["total_expense"], "500.00")

	rec = app.request("GET", "/api/v1/dashboard/period?window=lastTuesday&at=2025-03-15", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown window, got %d", rec.Code)
	}
}

func TestDashboardFlow_ExpensesByCategory(t *testing.T) {
	app := setupApp(t)
	token, _, foodID := seedLedger(t, app)

	rec := app.request("GET", "/api/v1/dashboard/expenses-by-category?at=2025-03-15", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	categories := parseJSON(t, rec)["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("expected 2 category buckets, got %d", len(categories))
	}
	top := categories[0].(map[string]interface{})
	if top["category_id"] != foodID {
		t.Errorf("expected Food as the largest bucket, got %v", top["category_name"])
	}
	assertDecimal(t, top["total"], "400.00")

	uncat := categories[1].(map[string]interface{})
	if uncat["category_name"] != "Uncategorized" {
		t.Errorf("expected Uncategorized bucket, got %v", uncat["category_name"])
	}
	assertDecimal(t, uncat["total"], "100.00")
}

func TestDashboardFlow_CashFlow(t *testing.T) {
	app := setupApp(t)
	token, _, _ := seedLedger(t, app)

	rec := app.request("GET", "/api/v1/dashboard/cash-flow?months=3&at=2025-03-15", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	data := result["data"].([]interface{})
	if len(data) != 3 {
		t.Fatalf("expected 3 months, got %d", len(data))
	}

	// Oldest first, zero-filled months included.
	january := data[0].(map[string]interface{})
	if january["month"] != "2025-01" {
		t.Errorf("expected 2025-01 first, got %v", january["month"])
	}
	assertDecimal(t, january["income"], "0")

	march := data[2].(map[string]interface{})
	if march["month"] != "2025-03" {
		t.Errorf("expected 2025-03 last, got %v", march["month"])
	}
	assertDecimal(t, march["income"], "3000.00")
	assertDecimal(t, march["expense"], "500.00")
	assertDecimal(t, march["net"], "2500.00")
}

func TestDashboardFlow_Summary(t *testing.T) {
	app := setupApp(t)
	token, _, _ := seedLedger(t, app)

	rec := app.request("GET", "/api/v1/dashboard/summary?at=2025-03-15", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)

	balance := summary["consolidated_balance"].(map[string]interface{})
	assertDecimal(t, balance["total"], "3600.00")

	current := summary["current_month"].(map[string]interface{})
	assertDecimal(t, current["balance"], "2600.00")

	remaining := summary["remaining_month"].(map[string]interface{})
	assertDecimal(t, remaining["total_expense"], "100.00")
}
