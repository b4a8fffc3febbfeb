package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/apperr"
)

type memStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event
	briefs map[uuid.UUID]models.EventBrief
}

func newMemStore() *memStore {
	return &memStore{events: map[uuid.UUID]*models.Event{}, briefs: map[uuid.UUID]models.EventBrief{}}
}

func (m *memStore) Create(_ context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, apperr.NotFoundf("event not found")
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) List(_ context.Context, clientID *uuid.UUID) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.events {
		if clientID == nil || e.ClientID == *clientID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.EventStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[id]
	if e.Status != from {
		return apperr.Conflictf("event status changed concurrently")
	}
	e.Status = to
	return nil
}

func (m *memStore) GetBrief(_ context.Context, eventID uuid.UUID) (models.EventBrief, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[eventID]
	b := models.BriefFromEvent(e)
	if stored, ok := m.briefs[eventID]; ok {
		if stored.City != "" {
			b.City = stored.City
		}
		if stored.InitialBudget != nil {
			b.InitialBudget = stored.InitialBudget
		}
		if stored.GuestCount != nil {
			b.GuestCount = stored.GuestCount
		}
		b.Notes = stored.Notes
	}
	return b, nil
}

func (m *memStore) UpsertBrief(_ context.Context, b models.EventBrief) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.briefs[b.EventID] = b
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateDefaults(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	client := access.Actor{UserID: uuid.New(), Role: models.RoleClient}

	e, err := svc.Create(context.Background(), client, CreateInput{Title: " Wedding ", Type: "Wedding"})
	require.NoError(t, err)
	require.Equal(t, models.EventStatusDraft, e.Status)
	require.Equal(t, "EUR", e.Currency)
	require.Equal(t, "wedding", e.Type)
	require.Equal(t, "Wedding", e.Title)

	_, err = svc.Create(context.Background(), client, CreateInput{Title: " "})
	require.True(t, apperr.Is(err, apperr.BadRequest))

	_, err = svc.Create(context.Background(), access.Actor{UserID: uuid.New(), Role: models.RoleProvider}, CreateInput{Title: "x"})
	require.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestChangeStatusFollowsLifecycle(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	ctx := context.Background()
	client := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	e, err := svc.Create(ctx, client, CreateInput{Title: "Gala"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, client, e.ID, models.EventStatusActive)
	require.True(t, apperr.Is(err, apperr.BadRequest))

	for _, next := range []models.EventStatus{models.EventStatusPlanning, models.EventStatusActive, models.EventStatusCanceled} {
		e, err = svc.ChangeStatus(ctx, client, e.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, e.Status)
	}

	_, err = svc.ChangeStatus(ctx, client, e.ID, models.EventStatusPlanning)
	require.True(t, apperr.Is(err, apperr.BadRequest))

	stranger := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	_, err = svc.ChangeStatus(ctx, stranger, e.ID, models.EventStatusCompleted)
	require.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestBriefFallsBackToEvent(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	ctx := context.Background()
	client := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	e, err := svc.Create(ctx, client, CreateInput{Title: "Gala", City: "Paris", BudgetPlanned: floatPtr(10000)})
	require.NoError(t, err)

	b, err := svc.Brief(ctx, client, e.ID)
	require.NoError(t, err)
	require.Equal(t, "Paris", b.City)
	require.InDelta(t, 10000, *b.InitialBudget, 1e-9)

	b, err = svc.UpdateBrief(ctx, client, e.ID, BriefInput{InitialBudget: floatPtr(12000), Notes: "outdoor"})
	require.NoError(t, err)
	require.Equal(t, "Paris", b.City)
	require.InDelta(t, 12000, *b.InitialBudget, 1e-9)
	require.Equal(t, "outdoor", b.Notes)
}

func TestListScopesToOwner(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	ctx := context.Background()
	a := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	b := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	_, err := svc.Create(ctx, a, CreateInput{Title: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, b, CreateInput{Title: "B"})
	require.NoError(t, err)

	list, err := svc.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 1)

	all, err := svc.List(ctx, access.Actor{UserID: uuid.New(), Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
