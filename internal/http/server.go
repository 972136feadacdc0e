package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/metrics"
	"finance/internal/middleware/cors"
	"finance/internal/middleware/ratelimit"
	"finance/internal/middleware/security"
	"finance/internal/middleware/trace"
)

// Version is reported by /api/status.
const Version = "1.0.0"

// TransactionService is what the transaction and summary handlers need.
type TransactionService interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (core.Summary, error)
	Ping(ctx context.Context) error
}

// AuthService answers login requests.
type AuthService interface {
	Login(ctx context.Context, c core.Credentials) (core.LoginResult, error)
}

// Config holds the listener and middleware settings.
// RateLimitPerMinute of 0 disables rate limiting.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	AllowedOrigins     []string
}

type Server struct {
	http.Server
	transactions TransactionService
	auth         AuthService
	logger       *applog.Logger
	metrics      *metrics.Metrics
	limiter      *ratelimit.Limiter
	now          func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. A nil logger or metrics gets a default instance.
func NewServer(cfg Config, tx TransactionService, auth AuthService, logger *applog.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if m == nil {
		m = metrics.New("api")
	}

	s := &Server{
		Server:       http.Server{Addr: cfg.Addr},
		transactions: tx,
		auth:         auth,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		metrics:      m,
		now:          time.Now,
	}
	if cfg.RateLimitPerMinute > 0 {
		limitCfg := ratelimit.DefaultConfig()
		limitCfg.RequestsPerMinute = cfg.RateLimitPerMinute
		s.limiter = ratelimit.NewLimiter(limitCfg)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/summary/chart", s.handleSummaryChart)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", m.Handler())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}
	s.Handler = s.withMiddleware(mux, cors.New(corsCfg))
	return s
}

// withMiddleware wraps the mux, outermost first: request logger, tracing,
// probe detection, security headers, CORS, metrics and rate limiting when
// a limiter is configured.
func (s *Server) withMiddleware(mux http.Handler, c *cors.Middleware) http.Handler {
	detector := security.NewDetector(func(*http.Request) {
		s.metrics.SuspiciousRequests.Inc()
	})
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.logger, detector.ExtractClientIP)

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(h)
	}
	h = s.metrics.Middleware(h)
	h = c.Middleware(h)
	h = headers.Middleware(h)
	h = detector.Middleware(h)
	h = tracer.Middleware(h)
	h = applog.Middleware(s.logger)(h)
	return h
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited.Inc()
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the server
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
