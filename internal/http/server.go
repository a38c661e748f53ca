// Package http exposes the ledger as a JSON REST API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"bluepay/internal/auth"
	"bluepay/internal/cache"
	"bluepay/internal/core"
	"bluepay/internal/ledger"
	applog "bluepay/internal/log"
	"bluepay/internal/middleware/ratelimit"
	"bluepay/internal/middleware/security"
	"bluepay/internal/middleware/trace"
)

// Config carries the server knobs taken from the environment.
type Config struct {
	Addr               string
	SessionSecret      string
	SessionTTL         time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	ledger *ledger.Service
	auth   *auth.Service

	secret     string
	sessionTTL time.Duration
	newToken   func(userID int64, secret string, ttl time.Duration) (string, error)

	limiter  *ratelimit.Limiter
	detector *security.Detector

	// Per-user read caches, invalidated wholesale on any write by the user.
	balanceCache *cache.LRUCache[int64]
	monthCache   *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, ledgerSvc *ledger.Service, authSvc *auth.Service) *Server {
	s := &Server{
		ledger:     ledgerSvc,
		auth:       authSvc,
		secret:     cfg.SessionSecret,
		sessionTTL: cfg.SessionTTL,
		newToken:   auth.GenerateToken,
		detector:   security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		balanceCache: cache.NewLRUCache[int64](1000, 5*time.Minute),
		monthCache:   cache.NewLRUCache[[]core.Transaction](1000, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, nil)
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	// Flags scanner-looking traffic in the logs without blocking it.
	suspicion := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if s.detector.DetectSuspiciousRequest(req) {
				slog.WarnContext(req.Context(), "Suspicious request",
					"method", req.Method,
					"path", req.URL.Path,
					"client_ip", s.detector.ExtractClientIP(req))
			}
			next.ServeHTTP(w, req)
		})
	}

	r := mux.NewRouter()
	r.Use(headers.Middleware, tracer.Middleware, applog.Middleware(logger), suspicion)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	// Credential endpoints are rate limited but unauthenticated.
	public := r.PathPrefix("/api").Subrouter()
	public.Use(limit)
	public.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	public.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	public.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	private := r.PathPrefix("/api").Subrouter()
	private.Use(auth.Middleware(cfg.SessionSecret))
	private.HandleFunc("/user", s.handleCurrentUser).Methods(http.MethodGet)
	private.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)
	private.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	private.HandleFunc("/transactions/export", s.handleExportCSV).Methods(http.MethodGet)

	// Writes additionally go through the rate limiter.
	writes := r.PathPrefix("/api").Subrouter()
	writes.Use(limit, auth.Middleware(cfg.SessionSecret))
	writes.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	writes.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	writes.HandleFunc("/transactions/export", s.handleRequestExport).Methods(http.MethodPost)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the HTTP listener and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func userCacheKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10) + ":"
}

// invalidateUser drops every cached read for the user. Called after any
// write so balances and month listings never go stale.
func (s *Server) invalidateUser(userID int64) {
	prefix := userCacheKey(userID)
	s.balanceCache.DeletePrefix(prefix)
	s.monthCache.DeletePrefix(prefix)
}
