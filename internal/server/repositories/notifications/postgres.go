package notifications

import (
	"context"
	"fmt"

	"github.com/avolkov/blogpulse/internal/dbx"
	"github.com/avolkov/blogpulse/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, type, title, message, entity_type, entity_id)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, NULLIF($7, ''), NULLIF($8, '')::uuid)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.RecipientID, n.ActorID, n.Type, n.Title, n.Message, n.EntityType, n.EntityID,
	).Scan(&n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]*models.Notification, error) {
	query := `
		SELECT n.id, n.recipient_id, COALESCE(n.actor_id::text, ''), n.type, n.title, n.message,
		       COALESCE(n.entity_type, ''), COALESCE(n.entity_id::text, ''), n.is_read, n.created_at,
		       COALESCE(a.id::text, ''), COALESCE(a.username, ''), COALESCE(a.email, ''), COALESCE(a.role, '')
		FROM notifications n
		LEFT JOIN users a ON a.id = n.actor_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, recipientID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		actor := &models.Profile{}
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.Title, &n.Message,
			&n.EntityType, &n.EntityID, &n.IsRead, &n.CreatedAt,
			&actor.ID, &actor.Username, &actor.Email, &actor.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if actor.ID != "" {
			n.Actor = actor
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByRecipient(ctx context.Context, recipientID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1
	`
	var total int64
	if err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id, recipientID string) (int64, error) {
	query := `
		UPDATE notifications SET is_read = true
		WHERE id = $1 AND recipient_id = $2
	`
	return r.exec(ctx, query, id, recipientID)
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	query := `
		UPDATE notifications SET is_read = true
		WHERE recipient_id = $1 AND is_read = false
	`
	return r.exec(ctx, query, recipientID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
