package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"paytrack/internal/core"
	"paytrack/internal/log"
	"paytrack/internal/middleware/ratelimit"
	"paytrack/internal/middleware/security"
	"paytrack/internal/middleware/trace"
	"paytrack/internal/services"
	"paytrack/internal/view"
	appweb "paytrack/web"
)

// Ledger is the controller surface the handlers drive.
type Ledger interface {
	Document() *core.Document
	EditTarget() string
	SetIncome(ctx context.Context, value string)
	SetExtraIncome(ctx context.Context, value string)
	AddExpense(ctx context.Context, in services.ExpenseInput) (core.Expense, error)
	EditExpense(ctx context.Context, id string, in services.ExpenseInput) error
	TogglePaid(ctx context.Context, id string, paid bool)
	DeleteExpense(ctx context.Context, id string)
	ClearPaid(ctx context.Context) int
	SelectMonth(ctx context.Context, key string) error
	ShiftMonth(ctx context.Context, delta int) error
	BeginEdit(id string) (core.Expense, error)
	CancelEdit()
}

type Server struct {
	http.Server
	templates *template.Template
	renderer  *view.Renderer
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	headers   *security.Headers

	// mu serializes every handler touching the ledger: the controller is
	// single-owner and each action must finish before the next starts.
	mu     sync.Mutex
	ledger Ledger

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithRateLimiter throttles POST requests per client. The server stops the
// limiter on Shutdown.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, renderer *view.Renderer, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		renderer: renderer,
		ledger:   ledger,
		logger:   logger.WithComponent(log.ComponentHTTP),
		headers:  security.NewHeaders(security.DefaultHeadersConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", s.headers.Middleware(security.StaticAssetMiddleware(3600)(static)))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /{$}", s.wrap(s.handleIndex))
	mux.HandleFunc("GET /api/view", s.wrap(s.handleViewJSON))

	mux.HandleFunc("POST /income", s.wrap(s.handleSetIncome))
	mux.HandleFunc("POST /extra-income", s.wrap(s.handleSetExtraIncome))

	mux.HandleFunc("POST /expenses", s.wrap(s.handleAddExpense))
	mux.HandleFunc("POST /expenses/clear-paid", s.wrap(s.handleClearPaid))
	mux.HandleFunc("POST /expenses/{id}", s.wrap(s.handleEditExpense))
	mux.HandleFunc("GET /expenses/{id}/edit", s.wrap(s.handleBeginEdit))
	mux.HandleFunc("POST /expenses/{id}/paid", s.wrap(s.handleTogglePaid))
	mux.HandleFunc("POST /expenses/{id}/delete", s.wrap(s.handleDeleteExpense))
	mux.HandleFunc("POST /edit/cancel", s.wrap(s.handleCancelEdit))

	mux.HandleFunc("POST /month", s.wrap(s.handleSelectMonth))
	mux.HandleFunc("POST /month/shift", s.wrap(s.handleShiftMonth))

	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap applies security headers and request logging, and holds the ledger
// lock for the duration of the handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next(w, r)
	})
}

// withSecurityHeaders adds security headers, rate limiting and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		r, requestID := trace.Start(w, r)

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := log.WithLogger(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.DebugContext(ctx, "Request started",
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, clientIP).ToSlice()...)

		s.headers.Apply(w, r)

		if r.Method == http.MethodPost && s.limiter != nil && !s.limiter.Allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, clientIP).ToSlice()...)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, clientIP).
				WithHTTPResponse(rw.statusCode, time.Since(start).Milliseconds()).
				ToSlice()...)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
