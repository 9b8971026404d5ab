package blogs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/blogpulse/internal/common"
	"github.com/avolkov/blogpulse/internal/dbx"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	if blog.ID == "" {
		blog.ID = uuid.NewString()
	}

	query := `
		INSERT INTO blogs (id, author_id, title, slug)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, blog.ID, blog.AuthorID, blog.Title, blog.Slug).
		Scan(&blog.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return blog, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	query := `
		SELECT id, author_id, title, slug, created_at FROM blogs
		WHERE id = $1
	`
	blog := &models.Blog{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&blog.ID, &blog.AuthorID, &blog.Title, &blog.Slug, &blog.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return blog, nil
}
