package httpapi

import (
	"net/http"
	"time"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	AccessToken string          `json:"accessToken"`
	User        *models.Profile `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, common.ErrBadRequest)
	}

	session, err := s.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	s.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(http.StatusOK, sessionResponse{AccessToken: session.AccessToken, User: session.User})
}

// handleRefresh mints a new access token against the refresh cookie. The
// cookie itself is left untouched: the same refresh token stays valid for
// its whole lifetime.
func (s *Server) handleRefresh(c echo.Context) error {
	token := refreshTokenFromCookie(c)

	session, err := s.sessions.Refresh(c.Request().Context(), token)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, sessionResponse{AccessToken: session.AccessToken, User: session.User})
}

func (s *Server) handleLogout(c echo.Context) error {
	if token := refreshTokenFromCookie(c); token != "" {
		if err := s.sessions.Logout(c.Request().Context(), token); err != nil {
			return s.writeError(c, err)
		}
	}

	s.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, common.ErrBadRequest)
	}

	session, err := s.sessions.Register(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return s.writeError(c, err)
	}

	s.setRefreshCookie(c, session.RefreshToken)
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func refreshTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(common.RefreshTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.refreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
