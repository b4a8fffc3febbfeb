package needs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/database"
)

// Repository handles event need persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a needs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const needColumns = `id, event_id, label, category_id, subcategory_id, tag_id, budget_planned, priority,
	must_have, offers_deadline, locked, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNeed(row rowScanner) (*models.EventNeed, error) {
	var n models.EventNeed
	err := row.Scan(&n.ID, &n.EventID, &n.Label, &n.CategoryID, &n.SubcategoryID, &n.TagID, &n.BudgetPlanned,
		&n.Priority, &n.MustHave, &n.OffersDeadline, &n.Locked, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a need.
func (r *Repository) Create(ctx context.Context, n *models.EventNeed) error {
	const q = `INSERT INTO event_needs (event_id, label, category_id, subcategory_id, tag_id, budget_planned,
			priority, must_have, offers_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, locked, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, n.EventID, n.Label, n.CategoryID, n.SubcategoryID, n.TagID, n.BudgetPlanned,
		string(n.Priority), n.MustHave, n.OffersDeadline).Scan(&n.ID, &n.Locked, &n.CreatedAt, &n.UpdatedAt)
}

// Get returns a need of the event. A need of another event is NotFound.
func (r *Repository) Get(ctx context.Context, eventID, needID uuid.UUID) (*models.EventNeed, error) {
	q := `SELECT ` + needColumns + ` FROM event_needs WHERE id = $1 AND event_id = $2`
	n, err := scanNeed(r.pool.QueryRow(ctx, q, needID, eventID))
	if err != nil {
		return nil, database.Classify(err, "need")
	}
	return n, nil
}

// ListByEvent returns the needs of an event in creation order.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventNeed, error) {
	q := `SELECT ` + needColumns + ` FROM event_needs WHERE event_id = $1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventNeed
	for rows.Next() {
		n, err := scanNeed(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

// Update writes the editable fields of an unlocked need.
func (r *Repository) Update(ctx context.Context, n *models.EventNeed) error {
	const q = `UPDATE event_needs SET label = $3, category_id = $4, subcategory_id = $5, tag_id = $6,
			budget_planned = $7, priority = $8, must_have = $9, offers_deadline = $10, updated_at = NOW()
		WHERE id = $1 AND event_id = $2 AND locked = FALSE
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, n.ID, n.EventID, n.Label, n.CategoryID, n.SubcategoryID, n.TagID,
		n.BudgetPlanned, string(n.Priority), n.MustHave, n.OffersDeadline).Scan(&n.UpdatedAt)
	if err != nil {
		if apperr.Is(database.Classify(err, "need"), apperr.NotFound) {
			return apperr.BadRequestf("need is locked")
		}
		return err
	}
	return nil
}

// Delete removes an unlocked need.
func (r *Repository) Delete(ctx context.Context, eventID, needID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_needs WHERE id = $1 AND event_id = $2 AND locked = FALSE`, needID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.BadRequestf("need is locked")
	}
	return nil
}
