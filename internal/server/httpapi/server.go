// Package httpapi exposes the auth, notification, and comment endpoints
// over HTTP and mounts the websocket upgrade route.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/avolkov/blogpulse/internal/server/services/notifications"
	"github.com/avolkov/blogpulse/internal/server/services/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SessionService is the slice of the sessions service the gateway needs.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*sessions.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*sessions.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Register(ctx context.Context, email, password, role string) (*sessions.Session, error)
}

// NotificationService is the slice of the notifications service the
// gateway needs.
type NotificationService interface {
	List(ctx context.Context, userID string, page, limit int) (*notifications.Feed, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) (int64, error)
}

// CommentService is the comment producer surface.
type CommentService interface {
	Create(ctx context.Context, blogID, userID, content string) (*models.Comment, error)
}

// AccessVerifier checks a bearer token and returns the subject user id.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Options carries the request-independent knobs of the gateway.
type Options struct {
	Addr string

	// RefreshTokenTTL bounds the refresh cookie lifetime.
	RefreshTokenTTL time.Duration

	// SecureCookies adds the Secure attribute to the refresh cookie.
	SecureCookies bool

	// LoginRatePerMinute caps login attempts per client IP. Zero disables
	// the limiter.
	LoginRatePerMinute int
}

type Server struct {
	echo          *echo.Echo
	addr          string
	sessions      SessionService
	notifications NotificationService
	comments      CommentService
	verifier      AccessVerifier
	wsHandler     http.Handler
	logger        logging.Logger

	refreshTokenTTL time.Duration
	secureCookies   bool
	loginLimiter    *ipRateLimiter
}

func NewServer(opts Options, s SessionService, n NotificationService, c CommentService, v AccessVerifier, ws http.Handler, logger logging.Logger) *Server {
	srv := &Server{
		echo:            echo.New(),
		addr:            opts.Addr,
		sessions:        s,
		notifications:   n,
		comments:        c,
		verifier:        v,
		wsHandler:       ws,
		logger:          logger.With("module", "http_server"),
		refreshTokenTTL: opts.RefreshTokenTTL,
		secureCookies:   opts.SecureCookies,
	}
	if opts.LoginRatePerMinute > 0 {
		srv.loginLimiter = newIPRateLimiter(opts.LoginRatePerMinute)
	}

	srv.echo.HideBanner = true
	srv.echo.HidePort = true
	srv.echo.Use(middleware.Recover())
	srv.routes()

	return srv
}

func (s *Server) routes() {
	e := s.echo

	authGroup := e.Group("/auth")
	authGroup.POST("/login", s.handleLogin, s.loginRateLimit)
	authGroup.POST("/register", s.handleRegister, s.loginRateLimit)
	authGroup.POST("/refresh-token", s.handleRefresh)
	// Logout needs both credentials: the bearer token identifies the
	// caller, the refresh cookie names the session to revoke.
	authGroup.POST("/logout", s.handleLogout, s.requireAccessToken)

	api := e.Group("", s.requireAccessToken)
	api.GET("/notifications", s.handleListNotifications)
	api.PATCH("/notifications/read", s.handleMarkAllRead)
	api.PATCH("/notifications/:notificationId/read", s.handleMarkRead)
	api.POST("/blogs/:blogId/comments", s.handleCreateComment)

	if s.wsHandler != nil {
		e.GET("/ws", echo.WrapHandler(s.wsHandler))
	}
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)
		if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
