package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

// Repository handles notification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores a notification.
func (r *Repository) Create(ctx context.Context, n *models.Notification) error {
	meta, err := json.Marshal(n.Meta)
	if err != nil {
		return err
	}
	if n.Meta == nil {
		meta = []byte("{}")
	}
	const q = `INSERT INTO notifications (user_id, type, title, body, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, n.UserID, n.Type, n.Title, n.Body, meta).Scan(&n.ID, &n.CreatedAt)
}

// ListByUser returns the user's latest notifications.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	const q = `SELECT id, user_id, type, title, body, meta, read_at, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		var meta []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &meta, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &n.Meta)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead marks a notification of the user as read.
func (r *Repository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET read_at = COALESCE(read_at, NOW()) WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("notification not found")
	}
	return nil
}
