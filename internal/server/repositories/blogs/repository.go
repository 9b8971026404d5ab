// Package blogs declares the minimal blog repository used by the comment
// producer and by notification entity resolution.
package blogs

import (
	"context"

	"github.com/avolkov/blogpulse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, blog *models.Blog) (*models.Blog, error)
	GetByID(ctx context.Context, id string) (*models.Blog, error)
}
