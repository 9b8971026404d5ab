package httpapi

import (
	"net/http"
	"strconv"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleListNotifications(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	feed, err := s.notifications.List(c.Request().Context(), currentUserID(c), page, limit)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, feed)
}

func (s *Server) handleMarkRead(c echo.Context) error {
	_, err := s.notifications.MarkAsRead(c.Request().Context(), currentUserID(c), c.Param("notificationId"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Notification marked as read"})
}

func (s *Server) handleMarkAllRead(c echo.Context) error {
	updated, err := s.notifications.MarkAsRead(c.Request().Context(), currentUserID(c), "")
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "All notifications marked as read", "updated": updated})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateComment(c echo.Context) error {
	var req createCommentRequest
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return s.writeError(c, common.ErrBadRequest)
	}

	comment, err := s.comments.Create(c.Request().Context(), c.Param("blogId"), currentUserID(c), req.Content)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"id":      comment.ID,
		"blogId":  comment.BlogID,
		"content": comment.Content,
	})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
