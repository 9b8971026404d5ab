package comments

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

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO comments (id, blog_id, user_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, comment.ID, comment.BlogID, comment.UserID, comment.Content).
		Scan(&comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return comment, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `
		SELECT id, blog_id, user_id, content, created_at FROM comments
		WHERE id = $1
	`
	comment := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&comment.ID, &comment.BlogID, &comment.UserID, &comment.Content, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return comment, nil
}
