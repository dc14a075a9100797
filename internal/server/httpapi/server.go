// Package httpapi exposes the login, session and sync operations over HTTP
// with a cookie-carried session token.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/server/auth"
	"github.com/dmitrijs2005/shelfsync/internal/server/services"
	"github.com/dmitrijs2005/shelfsync/internal/server/syncer"
)

// AuthService is the login side consumed by the handlers.
type AuthService interface {
	Login(ctx context.Context, username, password, marketplace string) *services.LoginResult
	VerifyOTP(ctx context.Context, sessionID, code string) *services.LoginResult
	TestAccess(ctx context.Context, userID string) (bool, string)
}

// SyncService is the sync side consumed by the handlers.
type SyncService interface {
	Trigger(ctx context.Context, userID string) (syncer.TriggerResult, error)
	Status(ctx context.Context, userID string) syncer.Status
	Reset(userID string) error
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, bool)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tunes the HTTP surface.
type Options struct {
	CookieSecure       bool
	SessionTTL         time.Duration
	LoginRatePerMinute int
	MaxBodyBytes       int64
	ShutdownTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = 24 * time.Hour
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 64 << 10
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	return o
}

type HTTPServer struct {
	address string
	auth    AuthService
	sync    SyncService
	tokens  TokenVerifier
	db      Pinger
	logger  logging.Logger
	opts    Options
	limiter *ipLimiter
}

func NewHTTPServer(addr string, l logging.Logger, as AuthService, ss SyncService, tv TokenVerifier, db Pinger, opts Options) *HTTPServer {
	if l == nil {
		l = logging.Nop()
	}
	opts = opts.withDefaults()
	return &HTTPServer{
		address: addr,
		auth:    as,
		sync:    ss,
		tokens:  tv,
		db:      db,
		logger:  l.With("module", "http_server"),
		opts:    opts,
		limiter: newIPLimiter(opts.LoginRatePerMinute),
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /auth/login", s.rateLimited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /auth/verify-otp", s.rateLimited(http.HandlerFunc(s.handleVerifyOTP)))
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.Handle("GET /auth/test", s.requireSession(http.HandlerFunc(s.handleTestAccess)))

	mux.Handle("POST /sync/trigger", s.requireSession(http.HandlerFunc(s.handleSyncTrigger)))
	mux.Handle("GET /sync/status", s.requireSession(http.HandlerFunc(s.handleSyncStatus)))
	mux.Handle("POST /sync/reset-status", s.requireSession(http.HandlerFunc(s.handleSyncReset)))

	mux.HandleFunc("GET /health", s.handleHealth)

	var h http.Handler = mux
	h = bodyLimit(h, s.opts.MaxBodyBytes)
	h = rescueing(h, s.logger)
	h = logged(h, s.logger)
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
