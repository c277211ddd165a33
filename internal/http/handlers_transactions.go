package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type transactionView struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	CategoryID  string    `json:"categoryId"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

func toTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Description: t.Description,
		Date:        t.Date,
	}
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Type        string      `json:"type"`
		Amount      json.Number `json:"amount"`
		Description string      `json:"description"`
		CategoryID  string      `json:"categoryId"`
		AccountID   string      `json:"accountId"`
		Date        string      `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cents, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	tx, err := s.ledger.PostTransaction(r.Context(), userID, services.PostTransactionInput{
		Type:        core.TransactionType(req.Type),
		AmountCents: cents,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionView(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	var filter storage.TransactionFilter
	if v := q.Get("startDate"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.From = from
	}
	if v := q.Get("endDate"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = to
	}
	filter.CategoryID = q.Get("categoryId")
	filter.AccountID = q.Get("accountId")
	if v := q.Get("type"); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			writeError(w, r, core.ErrInvalidTransactionType)
			return
		}
		filter.Type = t
	}

	txs, err := s.ledger.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, toTransactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

type summaryRowView struct {
	Type         string `json:"type"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
	Count        int64  `json:"count"`
	Average      string `json:"average"`
}

func toSummaryViews(rows []core.SummaryRow) []summaryRowView {
	views := make([]summaryRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, summaryRowView{
			Type:         string(row.Type),
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        row.Total.String(),
			Count:        row.Count,
			Average:      row.Average().StringFixed(2),
		})
	}
	return views
}

// handleSummary groups the window's transactions by type and category.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := s.reports.Summary(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryViews(rows))
}

type timelinePointView struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Total string `json:"total"`
}

func toTimelineViews(points []core.TimelinePoint) []timelinePointView {
	views := make([]timelinePointView, 0, len(points))
	for _, p := range points {
		views = append(views, timelinePointView{
			Date:  p.Date.Format("2006-01-02"),
			Type:  string(p.Type),
			Total: p.Total.String(),
		})
	}
	return views
}

// handleTimeline reports daily totals per transaction type in the window.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	points, err := s.reports.Timeline(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimelineViews(points))
}

// handleOverview bundles summary, timeline and derived balances in one call.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	overview, err := s.reports.Overview(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	balances := make([]accountBalanceView, 0, len(overview.Balances))
	for _, b := range overview.Balances {
		balances = append(balances, toAccountBalanceView(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  toSummaryViews(overview.Summary),
		"timeline": toTimelineViews(overview.Timeline),
		"balances": balances,
	})
}
