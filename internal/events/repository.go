package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/database"
)

// Repository handles event and brief persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, client_id, title, type, date, city, guest_count, budget_planned, currency, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.ClientID, &e.Title, &e.Type, &e.Date, &e.City, &e.GuestCount,
		&e.BudgetPlanned, &e.Currency, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (client_id, title, type, date, city, guest_count, budget_planned, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.ClientID, e.Title, e.Type, e.Date, e.City, e.GuestCount,
		e.BudgetPlanned, e.Currency, string(e.Status)).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, database.Classify(err, "event")
	}
	return e, nil
}

// List returns events of clientID, or every event when clientID is nil.
func (r *Repository) List(ctx context.Context, clientID *uuid.UUID) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE $1::uuid IS NULL OR client_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// UpdateStatus moves the event from one status to the next. A concurrent change yields Conflict.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) error {
	const q = `UPDATE events SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflictf("event status changed concurrently")
	}
	return nil
}

// GetBrief returns the event brief. Fields missing from the brief row, or a missing row,
// fall back to the event's own values.
func (r *Repository) GetBrief(ctx context.Context, eventID uuid.UUID) (models.EventBrief, error) {
	const q = `SELECT e.id, e.type, COALESCE(NULLIF(b.city, ''), e.city),
			COALESCE(b.initial_budget, e.budget_planned), COALESCE(b.guest_count, e.guest_count),
			e.date, COALESCE(b.notes, '')
		FROM events e
		LEFT JOIN event_briefs b ON b.event_id = e.id
		WHERE e.id = $1`
	var b models.EventBrief
	err := r.pool.QueryRow(ctx, q, eventID).
		Scan(&b.EventID, &b.EventType, &b.City, &b.InitialBudget, &b.GuestCount, &b.Date, &b.Notes)
	if err != nil {
		return models.EventBrief{}, database.Classify(err, "event")
	}
	return b, nil
}

// UpsertBrief stores the brief row of an event.
func (r *Repository) UpsertBrief(ctx context.Context, b models.EventBrief) error {
	const q = `INSERT INTO event_briefs (event_id, city, initial_budget, guest_count, notes)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		ON CONFLICT (event_id) DO UPDATE SET city = EXCLUDED.city, initial_budget = EXCLUDED.initial_budget,
			guest_count = EXCLUDED.guest_count, notes = EXCLUDED.notes, updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, b.EventID, b.City, b.InitialBudget, b.GuestCount, b.Notes)
	return err
}
