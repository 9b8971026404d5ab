// Package notifications implements the notification fanout: persisting
// notification events, maintaining the per-user unread counter, and pushing
// live updates to the recipient's channel.
package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/logging"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/avolkov/blogpulse/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Publisher pushes an unread-count event to a user's channel. Delivery is
// best-effort: implementations drop the event when the user has no open
// connection.
type Publisher interface {
	Publish(userID string, notificationCount int)
}

// CreateInput describes a new notification event.
type CreateInput struct {
	RecipientID string
	ActorID     string // optional, empty for system notifications
	Type        string
	Title       string
	Message     string
	EntityType  string // optional
	EntityID    string // optional
}

// FeedItem is one row of the notification feed with the referenced entity
// resolved.
type FeedItem struct {
	*models.Notification
	Entity any `json:"entity,omitempty"`
}

// Feed is one page of a user's notification feed.
type Feed struct {
	Page          int         `json:"page"`
	Limit         int         `json:"limit"`
	Total         int64       `json:"total"`
	Notifications []*FeedItem `json:"notifications"`
}

// Service coordinates the three stores involved in a notification: the
// notifications table, the cached unread counter on the user row, and the
// live push channel.
type Service struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	publisher Publisher
	resolvers Resolvers
	logger    logging.Logger
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, publisher Publisher, resolvers Resolvers, logger logging.Logger) *Service {
	return &Service{
		db:        db,
		repos:     repos,
		publisher: publisher,
		resolvers: resolvers,
		logger:    logger.With("module", "notifications"),
	}
}

// Create persists the notification, bumps the recipient's unread counter,
// and pushes the fresh counter value to the recipient's channel.
//
// The notification insert and the counter increment are two separate
// writes, not one transaction: a crash between them leaves the counter
// behind the true unread total. The client resynchronizes on its next
// feed fetch.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID: in.RecipientID,
		ActorID:     in.ActorID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
	}

	n, err := s.repos.Notifications(s.db).Create(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("error creating notification: %w", err)
	}

	usersRepo := s.repos.Users(s.db)
	if err := usersRepo.IncrementNotificationCount(ctx, in.RecipientID); err != nil {
		return nil, fmt.Errorf("error incrementing unread counter: %w", err)
	}

	count, err := usersRepo.GetNotificationCount(ctx, in.RecipientID)
	if err != nil {
		// The notification and counter writes already landed; a failed
		// read-back only skips the push.
		s.logger.Warn(ctx, "unread counter read-back failed", "recipient_id", in.RecipientID)
		return n, nil
	}

	s.publisher.Publish(in.RecipientID, count)
	return n, nil
}

// List returns one page of the user's feed and, as a side effect, resets
// the cached unread counter to zero regardless of how many returned items
// are actually unread.
func (s *Service) List(ctx context.Context, userID string, page, limit int) (*Feed, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	repo := s.repos.Notifications(s.db)

	items, err := repo.ListByRecipient(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	total, err := repo.CountByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting notifications: %w", err)
	}

	feed := &Feed{Page: page, Limit: limit, Total: total, Notifications: make([]*FeedItem, 0, len(items))}
	for _, n := range items {
		item := &FeedItem{Notification: n}
		if n.EntityType != "" && n.EntityID != "" {
			entity, err := s.resolvers.Resolve(ctx, n.EntityType, n.EntityID)
			if err == nil {
				item.Entity = entity
			}
		}
		feed.Notifications = append(feed.Notifications, item)
	}

	if err := s.repos.Users(s.db).ResetNotificationCount(ctx, userID); err != nil {
		return nil, fmt.Errorf("error resetting unread counter: %w", err)
	}

	return feed, nil
}

// MarkAsRead flips one notification (when notificationID is set) or every
// unread notification of the caller. Neither path touches the cached
// unread counter.
func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID string) (int64, error) {
	repo := s.repos.Notifications(s.db)

	if notificationID != "" {
		if _, err := uuid.Parse(notificationID); err != nil {
			return 0, common.ErrBadRequest
		}
		matched, err := repo.MarkRead(ctx, notificationID, userID)
		if err != nil {
			return 0, fmt.Errorf("error marking notification as read: %w", err)
		}
		if matched == 0 {
			return 0, common.ErrorNotFound
		}
		return 1, nil
	}

	updated, err := repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications as read: %w", err)
	}
	return updated, nil
}
