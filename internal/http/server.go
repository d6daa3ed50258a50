// Package http exposes the JSON API over net/http.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cantiere/internal/auth"
	"cantiere/internal/blob"
	"cantiere/internal/core"
	"cantiere/internal/log"
	"cantiere/internal/services"
	"cantiere/internal/storage"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// Server wires the HTTP surface: routing, auth, rate limiting and the
// handlers themselves.
type Server struct {
	http.Server
	store          storage.Store
	blobs          blob.Store
	verifier       auth.Verifier
	aggregator     *services.Aggregator
	logger         *log.Logger
	rateLimiter    *rateLimiter
	maxUploadBytes int64
	shutdownOnce   sync.Once
}

// Options collects everything the server depends on.
type Options struct {
	Addr               string
	Store              storage.Store
	Blobs              blob.Store
	Verifier           auth.Verifier
	Aggregator         *services.Aggregator
	Logger             *log.Logger
	RateLimitPerMinute int
	MaxUploadBytes     int64
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:          opts.Store,
		blobs:          opts.Blobs,
		verifier:       opts.Verifier,
		aggregator:     opts.Aggregator,
		logger:         opts.Logger,
		rateLimiter:    newRateLimiter(opts.RateLimitPerMinute),
		maxUploadBytes: opts.MaxUploadBytes,
	}

	handler := log.Middleware(opts.Logger)(
		log.RequestIDMiddleware(requestID)(
			s.withCommon(mux),
		),
	)

	s.Server = http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Receipt images are fetched by opaque key, no session required.
	mux.HandleFunc("GET /image/{filename}", instrument("/image/{filename}", s.handleGetImage))

	authed := func(pattern, route string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, instrument(route, s.withAuth(h)))
	}

	authed("GET /projects", "/projects", s.handleListProjects)
	authed("POST /projects", "/projects", s.handleCreateProject)
	authed("GET /projects/{id}", "/projects/{id}", s.handleGetProject)
	authed("PUT /projects/{id}", "/projects/{id}", s.handleUpdateProject)
	authed("DELETE /projects/{id}", "/projects/{id}", s.handleDeleteProject)

	authed("GET /projects/{id}/budgets", "/projects/{id}/budgets", s.handleListBudgets)
	authed("POST /projects/{id}/budgets", "/projects/{id}/budgets", s.handleCreateBudget)
	authed("GET /projects/{id}/budgets/{budgetId}", "/projects/{id}/budgets/{budgetId}", s.handleGetBudget)
	authed("PUT /projects/{id}/budgets/{budgetId}", "/projects/{id}/budgets/{budgetId}", s.handleUpdateBudget)
	authed("DELETE /projects/{id}/budgets/{budgetId}", "/projects/{id}/budgets/{budgetId}", s.handleDeleteBudget)

	authed("GET /projects/{id}/budgets/{budgetId}/expenses", "/projects/{id}/budgets/{budgetId}/expenses", s.handleListBudgetExpenses)
	authed("POST /projects/{id}/budgets/{budgetId}/expenses", "/projects/{id}/budgets/{budgetId}/expenses", s.handleCreateBudgetExpense)
	authed("POST /projects/{id}/budgets/{budgetId}/expenses/upload", "/projects/{id}/budgets/{budgetId}/expenses/upload", s.handleUploadReceipt)
	authed("PUT /projects/{id}/budgets/{budgetId}/expenses/{expenseId}", "/projects/{id}/budgets/{budgetId}/expenses/{expenseId}", s.handleUpdateBudgetExpense)
	authed("DELETE /projects/{id}/budgets/{budgetId}/expenses/{expenseId}", "/projects/{id}/budgets/{budgetId}/expenses/{expenseId}", s.handleDeleteBudgetExpense)

	authed("GET /projects/{id}/budgets-expenses", "/projects/{id}/budgets-expenses", s.handleAggregateExpenses)

	authed("GET /projects/{id}/expenses", "/projects/{id}/expenses", s.handleListProjectExpenses)
	authed("POST /projects/{id}/expenses", "/projects/{id}/expenses", s.handleCreateProjectExpense)
	authed("PUT /projects/{id}/expenses", "/projects/{id}/expenses", s.handleUpdateProjectExpense)
	authed("DELETE /projects/{id}/expenses", "/projects/{id}/expenses", s.handleDeleteProjectExpense)

	authed("GET /projects/{id}/payments", "/projects/{id}/payments", s.handleListPayments)
	authed("POST /projects/{id}/payments", "/projects/{id}/payments", s.handleCreatePayment)
	authed("PUT /projects/{id}/payments", "/projects/{id}/payments", s.handleUpdatePayment)
	authed("DELETE /projects/{id}/payments", "/projects/{id}/payments", s.handleDeletePayment)

	authed("GET /settings", "/settings", s.handleListSettings)
	authed("POST /settings", "/settings", s.handleCreateSetting)
	authed("PUT /settings/{id}", "/settings/{id}", s.handleUpdateSetting)
	authed("DELETE /settings/{id}", "/settings/{id}", s.handleDeleteSetting)

	return s
}

// Shutdown stops the rate limiter's cleanup goroutine along with the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withCommon adds security headers, rate limiting and request logging.
func (s *Server) withCommon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := log.FromContext(ctx)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only.
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP) {
				logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	})
}

// withAuth rejects requests without a valid bearer token and stashes
// the caller's user ID in the request context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := s.verifier.Verify(r)
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Unauthorized request", "url", r.URL.Path, "error", err)
			respondWithError(w, r, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next(w, r.WithContext(ctx))
	}
}

func userID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

// requestID creates a unique request ID for tracing
func requestID(*http.Request) string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ownedProject loads the project scoped to the caller, writing the 404
// itself when it is missing. The bool reports whether to continue.
func (s *Server) ownedProject(w http.ResponseWriter, r *http.Request, projectID string) (*core.Project, bool) {
	p, err := s.store.Project(r.Context(), projectID, userID(r))
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Project not found", nil)
		return nil, false
	}
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
		return nil, false
	}
	return p, true
}
