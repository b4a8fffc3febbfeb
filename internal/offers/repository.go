package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
	"github.com/eventmarket/backend/pkg/database"
)

// Repository handles offer persistence and the acceptance transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an offers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Offer columns joined with the invitation's need.
const offerSelect = `SELECT o.id, o.event_id, o.invitation_id, o.provider_id, o.need_id, o.total_cost, o.currency,
		o.status, o.version, o.details_json, o.created_at, o.updated_at, i.need_id
	FROM event_offers o
	LEFT JOIN event_invitations i ON i.id = o.invitation_id`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (*models.EventOffer, error) {
	var o models.EventOffer
	err := row.Scan(&o.ID, &o.EventID, &o.InvitationID, &o.ProviderID, &o.NeedID, &o.TotalCost, &o.Currency,
		&o.Status, &o.Version, &o.DetailsJSON, &o.CreatedAt, &o.UpdatedAt, &o.InvitationNeedID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func getOffer(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.EventOffer, error) {
	sql := offerSelect + ` WHERE o.id = $1`
	if forUpdate {
		sql += ` FOR UPDATE OF o`
	}
	o, err := scanOffer(q.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, database.Classify(err, "offer")
	}
	return o, nil
}

// GetOffer returns an offer with its invitation's need.
func (r *Repository) GetOffer(ctx context.Context, id uuid.UUID) (*models.EventOffer, error) {
	return getOffer(ctx, r.pool, id, false)
}

// ListByEvent returns the offers of an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventOffer, error) {
	rows, err := r.pool.Query(ctx, offerSelect+` WHERE o.event_id = $1 ORDER BY o.created_at DESC, o.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *o)
	}
	return list, rows.Err()
}

// Create inserts an offer at version 1.
func (r *Repository) Create(ctx context.Context, o *models.EventOffer) error {
	details := o.DetailsJSON
	if len(details) == 0 {
		details = []byte("{}")
	}
	const q = `INSERT INTO event_offers (event_id, invitation_id, provider_id, need_id, total_cost, currency, status, details_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, o.EventID, o.InvitationID, o.ProviderID, o.NeedID, o.TotalCost, o.Currency,
		string(o.Status), details).Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return database.Classify(err, "offer")
	}
	return nil
}

// Revise writes new cost, details and status if the offer is still at expectedVersion.
func (r *Repository) Revise(ctx context.Context, o *models.EventOffer, expectedVersion int) error {
	details := o.DetailsJSON
	if len(details) == 0 {
		details = []byte("{}")
	}
	const q = `UPDATE event_offers SET total_cost = $3, currency = $4, details_json = $5, status = $6,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, q, o.ID, expectedVersion, o.TotalCost, o.Currency, details, string(o.Status)).
		Scan(&o.Version, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Conflictf("offer was modified concurrently")
	}
	return err
}

// InTx runs fn in one database transaction. Any error rolls everything back.
func (r *Repository) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockNeed(ctx context.Context, needID uuid.UUID) (bool, error) {
	var locked bool
	err := t.tx.QueryRow(ctx, `SELECT locked FROM event_needs WHERE id = $1 FOR UPDATE`, needID).Scan(&locked)
	if err != nil {
		return false, database.Classify(err, "need")
	}
	return locked, nil
}

func (t *pgTx) GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*models.EventOffer, error) {
	return getOffer(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateOfferStatus(ctx context.Context, id uuid.UUID, status models.OfferStatus, expectedVersion int) (int, error) {
	const q = `UPDATE event_offers SET status = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version`
	var version int
	err := t.tx.QueryRow(ctx, q, id, expectedVersion, string(status)).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.Conflictf("offer was modified concurrently")
	}
	return version, err
}

func (t *pgTx) LockSiblingOffers(ctx context.Context, eventID, needID, exceptID uuid.UUID) (int64, error) {
	const q = `UPDATE event_offers o SET status = 'LOCKED', version = o.version + 1, updated_at = NOW()
		WHERE o.event_id = $1 AND o.id <> $3 AND o.status <> 'LOCKED'
		  AND (o.need_id = $2 OR (o.need_id IS NULL AND EXISTS (
			SELECT 1 FROM event_invitations i WHERE i.id = o.invitation_id AND i.need_id = $2)))`
	tag, err := t.tx.Exec(ctx, q, eventID, needID, exceptID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) MarkNeedLocked(ctx context.Context, needID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `UPDATE event_needs SET locked = TRUE, updated_at = NOW() WHERE id = $1 AND locked = FALSE`, needID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflictf("need already locked")
	}
	return nil
}
