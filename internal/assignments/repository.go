package assignments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/database"
)

// Repository handles assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an assignments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assignmentColumns = `id, event_id, provider_id, provider_group_id, status, source_offer_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (*models.EventProviderAssignment, error) {
	var a models.EventProviderAssignment
	if err := row.Scan(&a.ID, &a.EventID, &a.ProviderID, &a.ProviderGroupID, &a.Status, &a.SourceOfferID,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an assignment.
func (r *Repository) Create(ctx context.Context, a *models.EventProviderAssignment) error {
	const q = `INSERT INTO event_provider_assignments (event_id, provider_id, provider_group_id, status, source_offer_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.EventID, a.ProviderID, a.ProviderGroupID, string(a.Status), a.SourceOfferID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return database.Classify(err, "assignment")
	}
	return nil
}

// GetByID returns an assignment.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventProviderAssignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM event_provider_assignments WHERE id = $1`, id))
	if err != nil {
		return nil, database.Classify(err, "assignment")
	}
	return a, nil
}

// ListByEvent returns an event's assignments, oldest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventProviderAssignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM event_provider_assignments
		WHERE event_id = $1 ORDER BY created_at, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventProviderAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// UpdateStatus moves an assignment from one status to another. A concurrent change is Conflict.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AssignmentStatus) (*models.EventProviderAssignment, error) {
	const q = `UPDATE event_provider_assignments SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + assignmentColumns
	a, err := scanAssignment(r.pool.QueryRow(ctx, q, id, string(from), string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Conflictf("assignment was modified concurrently")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
