package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/database"
)

// Repository handles invitation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invitations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invitationColumns = `id, event_id, client_id, provider_id, provider_group_id, need_id, role_hint, message,
	status, proposed_budget, budget_currency, reply_deadline, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row rowScanner) (*models.EventInvitation, error) {
	var i models.EventInvitation
	err := row.Scan(&i.ID, &i.EventID, &i.ClientID, &i.ProviderID, &i.ProviderGroupID, &i.NeedID, &i.RoleHint,
		&i.Message, &i.Status, &i.ProposedBudget, &i.BudgetCurrency, &i.ReplyDeadline, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collect(rows pgx.Rows) ([]models.EventInvitation, error) {
	var list []models.EventInvitation
	for rows.Next() {
		i, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *i)
	}
	return list, rows.Err()
}

// InvitedProviderIDs returns providers already invited for the (event, need) pair.
func (r *Repository) InvitedProviderIDs(ctx context.Context, eventID, needID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT provider_id FROM event_invitations
		WHERE event_id = $1 AND need_id = $2 AND provider_id IS NOT NULL`
	rows, err := r.pool.Query(ctx, q, eventID, needID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BulkCreate inserts one PENDING invitation per provider, copying the template's fields.
// Rows hitting the (event, need, provider) unique index are skipped; only inserted rows are returned.
func (r *Repository) BulkCreate(ctx context.Context, tmpl models.EventInvitation, providerIDs []uuid.UUID) ([]models.EventInvitation, error) {
	if len(providerIDs) == 0 {
		return nil, nil
	}
	const q = `INSERT INTO event_invitations (event_id, client_id, provider_id, need_id, role_hint, message, status,
			proposed_budget, budget_currency, reply_deadline)
		SELECT $1, $2, p.id, $3, $4, $5, 'PENDING', $6, $7, $8
		FROM unnest($9::uuid[]) WITH ORDINALITY AS p(id, ord)
		ORDER BY p.ord
		ON CONFLICT DO NOTHING
		RETURNING ` + invitationColumns
	rows, err := r.pool.Query(ctx, q, tmpl.EventID, tmpl.ClientID, tmpl.NeedID, tmpl.RoleHint, tmpl.Message,
		tmpl.ProposedBudget, tmpl.BudgetCurrency, tmpl.ReplyDeadline, providerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Create inserts a single invitation.
func (r *Repository) Create(ctx context.Context, i *models.EventInvitation) error {
	q := `INSERT INTO event_invitations (event_id, client_id, provider_id, provider_group_id, need_id, role_hint,
			message, status, proposed_budget, budget_currency, reply_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + invitationColumns
	created, err := scanInvitation(r.pool.QueryRow(ctx, q, i.EventID, i.ClientID, i.ProviderID, i.ProviderGroupID,
		i.NeedID, i.RoleHint, i.Message, string(i.Status), i.ProposedBudget, i.BudgetCurrency, i.ReplyDeadline))
	if err != nil {
		return database.Classify(err, "invitation")
	}
	*i = *created
	return nil
}

// GetByID returns an invitation by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventInvitation, error) {
	i, err := scanInvitation(r.pool.QueryRow(ctx, `SELECT `+invitationColumns+` FROM event_invitations WHERE id = $1`, id))
	if err != nil {
		return nil, database.Classify(err, "invitation")
	}
	return i, nil
}

// ListByEvent returns the invitations of an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventInvitation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invitationColumns+` FROM event_invitations
		WHERE event_id = $1 ORDER BY created_at DESC, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListForProvider returns invitations addressed to the provider or one of its groups.
func (r *Repository) ListForProvider(ctx context.Context, providerID uuid.UUID, groupIDs []uuid.UUID) ([]models.EventInvitation, error) {
	if groupIDs == nil {
		groupIDs = []uuid.UUID{}
	}
	rows, err := r.pool.Query(ctx, `SELECT `+invitationColumns+` FROM event_invitations
		WHERE provider_id = $1 OR provider_group_id = ANY($2)
		ORDER BY created_at DESC, id`, providerID, groupIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// UpdateStatus moves an invitation from one status to another. A concurrent change yields Conflict.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.InvitationStatus) error {
	const q = `UPDATE event_invitations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, q, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflictf("invitation is no longer %s", from)
	}
	return nil
}

// ExpireOverdue marks pending invitations past their reply deadline as EXPIRED.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE event_invitations SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'PENDING' AND reply_deadline IS NOT NULL AND reply_deadline < $1`
	tag, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
