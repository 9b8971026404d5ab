// Package notifications declares the repository contract for notification
// rows. Rows are created by producers and flipped to read by the recipient;
// they are never deleted.
package notifications

import (
	"context"

	"github.com/avolkov/blogpulse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)

	// ListByRecipient returns one page of the recipient's feed, newest
	// first, with the actor profile joined in.
	ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]*models.Notification, error)

	// CountByRecipient returns the total number of rows in the feed,
	// read or not.
	CountByRecipient(ctx context.Context, recipientID string) (int64, error)

	// MarkRead flips one notification owned by recipientID and returns
	// the number of rows matched.
	MarkRead(ctx context.Context, id, recipientID string) (int64, error)

	// MarkAllRead flips every unread notification owned by recipientID.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}
