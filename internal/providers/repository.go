package providers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/database"
)

// ServiceFilter narrows catalog service offers. Empty fields are ignored.
type ServiceFilter struct {
	CategoryID    string
	SubcategoryID string
	TagID         string
}

// Repository handles provider and service offer persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a providers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a provider profile with its active services.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProviderProfile, error) {
	const q = `SELECT user_id, name, city, events_completed, base_price, created_at
		FROM providers WHERE user_id = $1`
	var p models.ProviderProfile
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&p.UserID, &p.Name, &p.City, &p.EventsCompleted, &p.BasePrice, &p.CreatedAt)
	if err != nil {
		return nil, database.Classify(err, "provider")
	}
	services, err := r.servicesOf(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	p.Services = services[id]
	return &p, nil
}

// ListServiceOffers returns active, public service offers matching the filter.
func (r *Repository) ListServiceOffers(ctx context.Context, f ServiceFilter) ([]models.ServiceOffer, error) {
	const q = `SELECT s.id, s.provider_id, p.name, p.city, s.category_id, s.subcategory_id, s.tags, s.base_price, s.active, s.public
		FROM provider_services s
		JOIN providers p ON p.user_id = s.provider_id
		WHERE s.active AND s.public
		  AND ($1 = '' OR s.category_id = $1)
		  AND ($2 = '' OR s.subcategory_id = $2)
		  AND ($3 = '' OR $3 = ANY(s.tags))
		ORDER BY s.created_at, s.id`
	rows, err := r.pool.Query(ctx, q, f.CategoryID, f.SubcategoryID, f.TagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ServiceOffer
	for rows.Next() {
		var s models.ServiceOffer
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.ProviderName, &s.ProviderCity, &s.CategoryID,
			&s.SubcategoryID, &s.Tags, &s.BasePrice, &s.Active, &s.Public); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListProfilesByCategory returns providers offering a category, each with all their active services.
func (r *Repository) ListProfilesByCategory(ctx context.Context, categoryID string) ([]models.ProviderProfile, error) {
	const q = `SELECT p.user_id, p.name, p.city, p.events_completed, p.base_price, p.created_at
		FROM providers p
		WHERE EXISTS (SELECT 1 FROM provider_services s
			WHERE s.provider_id = p.user_id AND s.active AND s.public AND ($1 = '' OR s.category_id = $1))
		ORDER BY p.created_at, p.user_id`
	rows, err := r.pool.Query(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ProviderProfile
	var ids []uuid.UUID
	for rows.Next() {
		var p models.ProviderProfile
		if err := rows.Scan(&p.UserID, &p.Name, &p.City, &p.EventsCompleted, &p.BasePrice, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
		ids = append(ids, p.UserID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	services, err := r.servicesOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Services = services[list[i].UserID]
	}
	return list, nil
}

func (r *Repository) servicesOf(ctx context.Context, providerIDs []uuid.UUID) (map[uuid.UUID][]models.ServiceOffer, error) {
	const q = `SELECT s.id, s.provider_id, p.name, p.city, s.category_id, s.subcategory_id, s.tags, s.base_price, s.active, s.public
		FROM provider_services s
		JOIN providers p ON p.user_id = s.provider_id
		WHERE s.provider_id = ANY($1) AND s.active
		ORDER BY s.created_at, s.id`
	rows, err := r.pool.Query(ctx, q, providerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID][]models.ServiceOffer, len(providerIDs))
	for rows.Next() {
		var s models.ServiceOffer
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.ProviderName, &s.ProviderCity, &s.CategoryID,
			&s.SubcategoryID, &s.Tags, &s.BasePrice, &s.Active, &s.Public); err != nil {
			return nil, err
		}
		out[s.ProviderID] = append(out[s.ProviderID], s)
	}
	return out, rows.Err()
}

// IsAvailable reports whether the provider has no unavailability on date. A nil date is always available.
func (r *Repository) IsAvailable(ctx context.Context, providerID uuid.UUID, date *time.Time) (bool, error) {
	if date == nil {
		return true, nil
	}
	const q = `SELECT NOT EXISTS (SELECT 1 FROM provider_unavailable_dates WHERE provider_id = $1 AND date = $2::date)`
	var available bool
	err := r.pool.QueryRow(ctx, q, providerID, *date).Scan(&available)
	return available, err
}

// AddUnavailableDate records a date the provider cannot serve. Re-adding a date is a no-op.
func (r *Repository) AddUnavailableDate(ctx context.Context, providerID uuid.UUID, date time.Time) error {
	const q = `INSERT INTO provider_unavailable_dates (provider_id, date) VALUES ($1, $2::date)
		ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, q, providerID, date)
	return err
}

// GroupIDs returns the provider groups the provider belongs to.
func (r *Repository) GroupIDs(ctx context.Context, providerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT group_id FROM provider_group_members WHERE provider_id = $1`, providerID)
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
