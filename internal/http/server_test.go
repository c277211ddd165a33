package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := storage.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewTokenManager("test-secret-0123456789", time.Hour)
	users := services.NewUserService(store, tokens, 10)
	accounts := services.NewAccountService(store)
	categories := services.NewCategoryService(store)
	ledger := services.NewLedgerService(store, nil)
	reports := services.NewReportService(store)

	srv := NewServer(0, users, accounts, categories, ledger, reports, tokens, store.Ping)
	return &testAPI{t: t, handler: srv.Handler()}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) decode(rec *httptest.ResponseRecorder, v any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), v))
}

func (a *testAPI) register(username, email string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", map[string]string{
		"username": username, "email": email, "password": "hunter22",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	a.decode(rec, &resp)
	require.NotEmpty(a.t, resp.Token)
	a.token = resp.Token
}

func (a *testAPI) createAccount(name string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/accounts", map[string]any{
		"name": name, "type": "bank", "balance": json.Number("100.00"),
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	a.decode(rec, &resp)
	return resp.ID
}

func (a *testAPI) createCategory(name string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/categories", map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	a.decode(rec, &resp)
	return resp.ID
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	api.register("alice", "alice@example.com")

	rec := api.do(http.MethodGet, "/auth/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	api.decode(rec, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)

	// Duplicate registration is rejected.
	rec = api.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/accounts", "/categories", "/transactions", "/budgets"} {
		rec := api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	api.token = "garbage"
	rec := api.do(http.MethodGet, "/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccountEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "alice@example.com")

	id := api.createAccount("checking")

	rec := api.do(http.MethodGet, "/accounts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var account struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Balance string `json:"balance"`
	}
	api.decode(rec, &account)
	assert.Equal(t, "checking", account.Name)
	assert.Equal(t, "bank", account.Type)
	assert.Equal(t, "100.00", account.Balance)

	rec = api.do(http.MethodPut, "/accounts/"+id, map[string]any{"name": "savings", "type": "cash"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	api.decode(rec, &account)
	assert.Equal(t, "savings", account.Name)
	assert.Equal(t, "cash", account.Type)

	rec = api.do(http.MethodPatch, "/accounts/"+id+"/balance", map[string]any{"balance": json.Number("250.50")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	api.decode(rec, &account)
	assert.Equal(t, "250.50", account.Balance)

	rec = api.do(http.MethodGet, "/accounts/"+id+"/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		AccountID string `json:"accountId"`
		Balance   string `json:"balance"`
	}
	api.decode(rec, &balance)
	assert.Equal(t, id, balance.AccountID)
	assert.Equal(t, "250.50", balance.Balance)

	rec = api.do(http.MethodDelete, "/accounts/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/accounts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/accounts", map[string]any{"name": "bad", "type": "crypto"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "alice@example.com")

	parentID := api.createCategory("Food")

	rec := api.do(http.MethodPost, "/categories", map[string]string{
		"name": "Groceries", "parentId": parentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []struct {
		Name string `json:"name"`
	}
	api.decode(rec, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "Food", categories[0].Name)

	rec = api.do(http.MethodGet, "/categories/"+parentID+"/subcategories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	api.decode(rec, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "Groceries", categories[0].Name)

	// A parent owned by another user is rejected.
	otherAPI := newTestAPI(t)
	otherAPI.register("bob", "bob@example.com")
	rec = otherAPI.do(http.MethodPost, "/categories", map[string]string{
		"name": "Sneaky", "parentId": parentID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code) // separate store, so simply absent

	rec = api.do(http.MethodPost, "/categories", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionAndBudgetFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "alice@example.com")
	accountID := api.createAccount("checking")
	categoryID := api.createCategory("Groceries")

	today := time.Now().UTC().Format("2006-01-02")
	weekAgo := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	weekAhead := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	rec := api.do(http.MethodPost, "/budgets", map[string]any{
		"categoryId": categoryID,
		"amount":     json.Number("100.00"),
		"startDate":  weekAgo,
		"endDate":    weekAhead,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var budget struct {
		ID string `json:"id"`
	}
	api.decode(rec, &budget)

	post := func(amount string) *httptest.ResponseRecorder {
		return api.do(http.MethodPost, "/transactions", map[string]any{
			"type":       "expense",
			"amount":     json.Number(amount),
			"categoryId": categoryID,
			"accountId":  accountID,
			"date":       today,
		})
	}

	require.Equal(t, http.StatusCreated, post("40.00").Code)
	require.Equal(t, http.StatusCreated, post("40.00").Code)

	rec = api.do(http.MethodGet, "/budgets/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var unread []struct {
		ID             string `json:"id"`
		BudgetID       string `json:"budgetId"`
		CategoryName   string `json:"categoryName"`
		ExceededAmount string `json:"exceededAmount"`
	}
	api.decode(rec, &unread)
	assert.Empty(t, unread)

	// Third posting exceeds the ceiling by 20.00.
	require.Equal(t, http.StatusCreated, post("40.00").Code)

	rec = api.do(http.MethodGet, "/budgets/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	api.decode(rec, &unread)
	require.Len(t, unread, 1)
	assert.Equal(t, budget.ID, unread[0].BudgetID)
	assert.Equal(t, "Groceries", unread[0].CategoryName)
	assert.Equal(t, "20.00", unread[0].ExceededAmount)

	rec = api.do(http.MethodGet, "/transactions/budget-status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []struct {
		CategoryName string `json:"categoryName"`
		Spent        string `json:"spent"`
		Remaining    string `json:"remaining"`
	}
	api.decode(rec, &statuses)
	require.Len(t, statuses, 1)
	assert.Equal(t, "120.00", statuses[0].Spent)
	assert.Equal(t, "-20.00", statuses[0].Remaining)

	path := fmt.Sprintf("/budgets/%s/notifications/%s", budget.ID, unread[0].ID)
	rec = api.do(http.MethodPatch, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Marking again is idempotent.
	rec = api.do(http.MethodPatch, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPatch, fmt.Sprintf("/budgets/%s/notifications/missing", budget.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/budgets/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	api.decode(rec, &unread)
	assert.Empty(t, unread)

	// Listing and filtering.
	rec = api.do(http.MethodGet, "/transactions?type=expense", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []struct {
		Amount string `json:"amount"`
	}
	api.decode(rec, &txs)
	assert.Len(t, txs, 3)

	// Posting dropped the balance from 100.00 by 120.00.
	rec = api.do(http.MethodGet, "/accounts/"+accountID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var account struct {
		Balance string `json:"balance"`
	}
	api.decode(rec, &account)
	assert.Equal(t, "-20.00", account.Balance)

	window := fmt.Sprintf("startDate=%s&endDate=%s", weekAgo, weekAhead)
	rec = api.do(http.MethodGet, "/transactions/summary?"+window, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary []struct {
		Type         string `json:"type"`
		CategoryName string `json:"categoryName"`
		Total        string `json:"total"`
		Count        int64  `json:"count"`
		Average      string `json:"average"`
	}
	api.decode(rec, &summary)
	require.Len(t, summary, 1)
	assert.Equal(t, "expense", summary[0].Type)
	assert.Equal(t, "120.00", summary[0].Total)
	assert.Equal(t, int64(3), summary[0].Count)
	assert.Equal(t, "40.00", summary[0].Average)

	rec = api.do(http.MethodGet, "/transactions/timeline?"+window, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var timeline []struct {
		Date  string `json:"date"`
		Total string `json:"total"`
	}
	api.decode(rec, &timeline)
	require.Len(t, timeline, 1)
	assert.Equal(t, today, timeline[0].Date)
	assert.Equal(t, "120.00", timeline[0].Total)

	rec = api.do(http.MethodGet, "/accounts/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances []struct {
		AccountName string `json:"accountName"`
		Balance     string `json:"balance"`
	}
	api.decode(rec, &balances)
	require.Len(t, balances, 1)
	assert.Equal(t, "-120.00", balances[0].Balance) // derived from transactions only

	rec = api.do(http.MethodGet, "/transactions/summary", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code) // window is required
}
