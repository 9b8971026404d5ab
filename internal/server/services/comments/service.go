// Package comments implements the comment producer, the first writer that
// feeds the notification fanout.
package comments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/avolkov/blogpulse/internal/server/repositories/repomanager"
	"github.com/avolkov/blogpulse/internal/server/services/notifications"
)

type Service struct {
	db            *sql.DB
	repos         repomanager.RepositoryManager
	notifications *notifications.Service
	logger        logging.Logger
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, n *notifications.Service, logger logging.Logger) *Service {
	return &Service{
		db:            db,
		repos:         repos,
		notifications: n,
		logger:        logger.With("module", "comments"),
	}
}

// Create stores a comment on a blog and notifies the blog's author, unless
// the author is commenting on their own blog.
func (s *Service) Create(ctx context.Context, blogID, userID, content string) (*models.Comment, error) {
	blog, err := s.repos.Blogs(s.db).GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	comment, err := s.repos.Comments(s.db).Create(ctx, &models.Comment{
		BlogID:  blogID,
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	if blog.AuthorID != userID {
		_, err := s.notifications.Create(ctx, notifications.CreateInput{
			RecipientID: blog.AuthorID,
			ActorID:     userID,
			Type:        models.NotificationComment,
			Title:       "New comment",
			Message:     fmt.Sprintf("commented on your blog %q", blog.Title),
			EntityType:  models.EntityBlog,
			EntityID:    blog.ID,
		})
		if err != nil {
			// The comment itself landed; the author just misses the ping.
			s.logger.Warn(ctx, "comment notification failed", "blog_id", blogID)
		}
	}

	return comment, nil
}
