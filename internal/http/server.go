package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// Server is the HTTP front of the API. Every route below /auth/login and
// /auth/register requires a bearer token.
type Server struct {
	httpServer *http.Server

	users      *services.UserService
	accounts   *services.AccountService
	categories *services.CategoryService
	ledger     *services.LedgerService
	reports    *services.ReportService

	authenticate func(http.HandlerFunc) http.HandlerFunc
	limiter      *rateLimiter
	ready        func(context.Context) error
}

// NewServer wires the route table. ready is polled by the readiness probe;
// typically the database ping.
func NewServer(
	port int,
	users *services.UserService,
	accounts *services.AccountService,
	categories *services.CategoryService,
	ledger *services.LedgerService,
	reports *services.ReportService,
	tokens *auth.TokenManager,
	ready func(context.Context) error,
) *Server {
	s := &Server{
		users:      users,
		accounts:   accounts,
		categories: categories,
		ledger:     ledger,
		reports:    reports,
		limiter:    newRateLimiter(60, time.Minute),
		ready:      ready,
	}
	s.authenticate = auth.Middleware(tokens, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, err)
	})

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withCommon(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/profile", s.authenticate(s.handleProfile))

	mux.HandleFunc("POST /accounts", s.authenticate(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts", s.authenticate(s.handleListAccounts))
	mux.HandleFunc("GET /accounts/balances", s.authenticate(s.handleAccountBalances))
	mux.HandleFunc("GET /accounts/{id}", s.authenticate(s.handleGetAccount))
	mux.HandleFunc("PUT /accounts/{id}", s.authenticate(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /accounts/{id}", s.authenticate(s.handleDeleteAccount))
	mux.HandleFunc("GET /accounts/{id}/balance", s.authenticate(s.handleGetAccountBalance))
	mux.HandleFunc("PATCH /accounts/{id}/balance", s.authenticate(s.handleSetAccountBalance))

	mux.HandleFunc("POST /categories", s.authenticate(s.handleCreateCategory))
	mux.HandleFunc("GET /categories", s.authenticate(s.handleListCategories))
	mux.HandleFunc("GET /categories/{id}/subcategories", s.authenticate(s.handleListSubcategories))

	mux.HandleFunc("POST /transactions", s.authenticate(s.handlePostTransaction))
	mux.HandleFunc("GET /transactions", s.authenticate(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/summary", s.authenticate(s.handleSummary))
	mux.HandleFunc("GET /transactions/timeline", s.authenticate(s.handleTimeline))
	mux.HandleFunc("GET /transactions/overview", s.authenticate(s.handleOverview))
	mux.HandleFunc("GET /transactions/budget-status", s.authenticate(s.handleBudgetStatus))

	mux.HandleFunc("POST /budgets", s.authenticate(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets", s.authenticate(s.handleListBudgets))
	mux.HandleFunc("GET /budgets/notifications", s.authenticate(s.handleUnreadNotifications))
	mux.HandleFunc("PATCH /budgets/{id}/notifications/{notificationId}", s.authenticate(s.handleMarkNotificationRead))
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withCommon applies the outer middleware: request id, security headers,
// per-IP rate limiting on mutations, access logging.
func (s *Server) withCommon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		ip := clientIP(r)
		if r.Method != http.MethodGet && !s.limiter.allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
			return
		}

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		level := slog.LevelDebug
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "HTTP request completed",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldRequestID, requestID,
			log.FieldClientIP, ip,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "not ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimiter is a fixed-window counter per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	resetAt time.Time
	limit   int
	window  time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		counts:  make(map[string]int),
		resetAt: time.Now().Add(window),
		limit:   limit,
		window:  window,
	}
}

func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.After(l.resetAt) {
		l.counts = make(map[string]int)
		l.resetAt = now.Add(l.window)
	}

	l.counts[ip]++
	return l.counts[ip] <= l.limit
}
