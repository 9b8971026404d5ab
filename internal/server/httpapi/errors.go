package httpapi

import (
	"errors"
	"net/http"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps service sentinels to stable status/code pairs. Anything
// unanticipated is logged and surfaces as a bare ServerError.
func (s *Server) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Code: "InvalidCredentials", Message: err.Error()})
	case errors.Is(err, common.ErrAuthentication):
		return c.JSON(http.StatusUnauthorized, errorResponse{Code: "AuthenticationError", Message: err.Error()})
	case errors.Is(err, common.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, errorResponse{Code: "AuthenticationError", Message: "token expired"})
	case errors.Is(err, common.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, errorResponse{Code: "AuthenticationError", Message: "invalid token"})
	case errors.Is(err, common.ErrAuthProviderMismatch):
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "AuthProviderMismatch", Message: err.Error()})
	case errors.Is(err, common.ErrInactiveAccount):
		return c.JSON(http.StatusForbidden, errorResponse{Code: "InactiveAccount", Message: err.Error()})
	case errors.Is(err, common.ErrAuthorization):
		return c.JSON(http.StatusForbidden, errorResponse{Code: "AuthorizationError", Message: err.Error()})
	case errors.Is(err, common.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Code: "NotFound", Message: err.Error()})
	default:
		s.logger.Error(c.Request().Context(), err.Error())
		return c.JSON(http.StatusInternalServerError, errorResponse{Code: "ServerError", Message: "internal server error"})
	}
}
