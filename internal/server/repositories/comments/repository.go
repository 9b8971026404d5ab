// Package comments declares the minimal comment repository used by the
// comment producer and by notification entity resolution.
package comments

import (
	"context"

	"github.com/avolkov/blogpulse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
}
