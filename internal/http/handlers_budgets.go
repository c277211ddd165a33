package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

type notificationView struct {
	ID             string    `json:"id"`
	Message        string    `json:"message"`
	Date           time.Time `json:"date"`
	ExceededAmount string    `json:"exceededAmount"`
	IsRead         bool      `json:"isRead"`
}

func toNotificationView(n core.Notification) notificationView {
	return notificationView{
		ID:             n.ID,
		Message:        n.Message,
		Date:           n.Date,
		ExceededAmount: n.ExceededAmount.String(),
		IsRead:         n.IsRead,
	}
}

type budgetView struct {
	ID            string             `json:"id"`
	CategoryID    string             `json:"categoryId"`
	Amount        string             `json:"amount"`
	StartDate     time.Time          `json:"startDate"`
	EndDate       time.Time          `json:"endDate"`
	Notifications []notificationView `json:"notifications"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func toBudgetView(b core.Budget) budgetView {
	notifications := make([]notificationView, 0, len(b.Notifications))
	for _, n := range b.Notifications {
		notifications = append(notifications, toNotificationView(n))
	}
	return budgetView{
		ID:            b.ID,
		CategoryID:    b.CategoryID,
		Amount:        b.Amount.String(),
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		Notifications: notifications,
		CreatedAt:     b.CreatedAt,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		CategoryID string      `json:"categoryId"`
		Amount     json.Number `json:"amount"`
		StartDate  string      `json:"startDate"`
		EndDate    string      `json:"endDate"`
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
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// A date-only end bound covers the whole closing day.
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	budget, err := s.ledger.CreateBudget(r.Context(), userID, services.CreateBudgetInput{
		CategoryID:  req.CategoryID,
		AmountCents: cents,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetView(budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	budgets, err := s.ledger.ListBudgets(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

type budgetStatusView struct {
	Budget       budgetView `json:"budget"`
	CategoryName string     `json:"categoryName"`
	Spent        string     `json:"spent"`
	Remaining    string     `json:"remaining"`
}

// handleBudgetStatus evaluates every active budget against cumulative spend.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	statuses, err := s.ledger.BudgetStatus(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]budgetStatusView, 0, len(statuses))
	for _, st := range statuses {
		views = append(views, budgetStatusView{
			Budget:       toBudgetView(st.Budget),
			CategoryName: st.CategoryName,
			Spent:        st.Spent.String(),
			Remaining:    core.Money{Cents: st.Remaining}.String(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type unreadNotificationView struct {
	notificationView
	BudgetID     string `json:"budgetId"`
	CategoryName string `json:"categoryName"`
}

func (s *Server) handleUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	notifications, err := s.ledger.UnreadNotifications(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]unreadNotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, unreadNotificationView{
			notificationView: toNotificationView(n.Notification),
			BudgetID:         n.BudgetID,
			CategoryName:     n.CategoryName,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.ledger.MarkNotificationRead(r.Context(), userID, r.PathValue("id"), r.PathValue("notificationId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}
