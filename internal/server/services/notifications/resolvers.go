package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/avolkov/blogpulse/internal/server/repositories/repomanager"
)

// ResolverFunc loads the entity a notification references and returns a
// feed-shaped summary of it.
type ResolverFunc func(ctx context.Context, id string) (any, error)

// Resolvers maps an entity kind to its loader. Each kind carries its own
// lookup; an unknown kind is an error, not a nil entity, so new kinds
// cannot be added without registering a resolver.
type Resolvers map[string]ResolverFunc

func (r Resolvers) Resolve(ctx context.Context, entityType, id string) (any, error) {
	fn, ok := r[entityType]
	if !ok {
		return nil, fmt.Errorf("no resolver for entity type %q", entityType)
	}
	return fn(ctx, id)
}

// Entity summaries embedded in feed items.
type BlogRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type CommentRef struct {
	ID      string `json:"id"`
	BlogID  string `json:"blogId"`
	Content string `json:"content"`
}

// DefaultResolvers wires the built-in entity kinds to their repositories.
func DefaultResolvers(db *sql.DB, repos repomanager.RepositoryManager) Resolvers {
	return Resolvers{
		models.EntityBlog: func(ctx context.Context, id string) (any, error) {
			b, err := repos.Blogs(db).GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return &BlogRef{ID: b.ID, Title: b.Title, Slug: b.Slug}, nil
		},
		models.EntityComment: func(ctx context.Context, id string) (any, error) {
			c, err := repos.Comments(db).GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return &CommentRef{ID: c.ID, BlogID: c.BlogID, Content: c.Content}, nil
		},
		models.EntityUser: func(ctx context.Context, id string) (any, error) {
			u, err := repos.Users(db).GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return u.Profile(), nil
		},
	}
}
