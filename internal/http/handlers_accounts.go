package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

type accountView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAccountView(a core.Account) accountView {
	return accountView{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt,
	}
}

func toAccountViews(accounts []core.Account) []accountView {
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a))
	}
	return views
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Name    string      `json:"name"`
		Type    string      `json:"type"`
		Balance json.Number `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var cents int64
	if req.Balance != "" {
		cents, err = parseAmountCents(req.Balance)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	account, err := s.accounts.Create(r.Context(), userID, services.CreateAccountInput{
		Name:         req.Name,
		Type:         core.AccountType(req.Type),
		BalanceCents: cents,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountView(account))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	accounts, err := s.accounts.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountViews(accounts))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountView(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Name    *string      `json:"name"`
		Type    *string      `json:"type"`
		Balance *json.Number `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var in services.UpdateAccountInput
	in.Name = req.Name
	if req.Type != nil {
		t := core.AccountType(*req.Type)
		in.Type = &t
	}
	if req.Balance != nil {
		cents, err := parseAmountCents(*req.Balance)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.BalanceCents = &cents
	}

	account, err := s.accounts.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountView(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.accounts.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (s *Server) handleGetAccountBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"accountId": account.ID,
		"balance":   account.Balance.String(),
	})
}

func (s *Server) handleSetAccountBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Balance json.Number `json:"balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cents, err := parseAmountCents(req.Balance)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.accounts.SetBalance(r.Context(), userID, r.PathValue("id"), cents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountView(account))
}

type accountBalanceView struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	Type        string `json:"type"`
	Balance     string `json:"balance"`
}

// handleAccountBalances reports balances derived from the transaction log,
// independent of the stored balance column. Useful for reconciliation.
func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	balances, err := s.reports.AccountBalances(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]accountBalanceView, 0, len(balances))
	for _, b := range balances {
		views = append(views, toAccountBalanceView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func toAccountBalanceView(b core.AccountBalance) accountBalanceView {
	return accountBalanceView{
		AccountID:   b.AccountID,
		AccountName: b.AccountName,
		Type:        string(b.Type),
		Balance:     core.Money{Cents: b.Balance}.String(),
	}
}
