// Package users declares the repository contract for user rows, including
// the cached unread-notification counter.
package users

import (
	"context"

	"github.com/avolkov/blogpulse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetActiveByEmail looks up an active local-or-social account by email.
	// Deactivated accounts are invisible to this lookup.
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)

	// Unread-counter operations. The counter is mutated with plain
	// read-then-write statements, no optimistic concurrency.
	IncrementNotificationCount(ctx context.Context, id string) error
	ResetNotificationCount(ctx context.Context, id string) error
	GetNotificationCount(ctx context.Context, id string) (int, error)
}
