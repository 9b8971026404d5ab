package httpapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const userIDContextKey = "userID"

// requireAccessToken authenticates the request from its Authorization
// bearer token and stores the subject user id on the echo context.
func (s *Server) requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Code: "AuthenticationError", Message: "missing token"})
		}

		userID, err := s.verifier.VerifyAccess(token)
		if err != nil {
			return s.writeError(c, err)
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}

// ipRateLimiter keeps one token bucket per client IP. Buckets are never
// evicted; the server is restarted often enough that this is not a concern.
type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	return b.Allow()
}

// loginRateLimit throttles credential endpoints per client IP.
func (s *Server) loginRateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.loginLimiter != nil && !s.loginLimiter.allow(c.RealIP()) {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Code: "TooManyRequests", Message: "too many attempts, try again later"})
		}
		return next(c)
	}
}
