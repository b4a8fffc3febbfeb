package offers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/middleware"
	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/internal/notify"
	"github.com/eventmarket/backend/pkg/apperr"
)

// world is an in-memory database. InTx holds mu for the whole transaction and
// restores the snapshot when fn fails, like a serializable rollback.
type world struct {
	mu          sync.Mutex
	event       *models.Event
	needs       map[uuid.UUID]models.EventNeed
	offers      map[uuid.UUID]models.EventOffer
	invitations map[uuid.UUID]models.EventInvitation
	groups      map[uuid.UUID][]uuid.UUID
}

func newWorld(owner uuid.UUID) *world {
	return &world{
		event:       &models.Event{ID: uuid.New(), ClientID: owner, Title: "Gala", Currency: "EUR", Status: models.EventStatusPlanning},
		needs:       map[uuid.UUID]models.EventNeed{},
		offers:      map[uuid.UUID]models.EventOffer{},
		invitations: map[uuid.UUID]models.EventInvitation{},
		groups:      map[uuid.UUID][]uuid.UUID{},
	}
}

func (w *world) addNeed(label string) models.EventNeed {
	n := models.EventNeed{ID: uuid.New(), EventID: w.event.ID, Label: label, CategoryID: "venue"}
	w.needs[n.ID] = n
	return n
}

func (w *world) addOffer(provider uuid.UUID, needID *uuid.UUID, status models.OfferStatus) models.EventOffer {
	o := models.EventOffer{ID: uuid.New(), EventID: w.event.ID, ProviderID: provider, NeedID: needID,
		TotalCost: 1000, Currency: "EUR", Status: status, Version: 1}
	w.offers[o.ID] = o
	return o
}

func (w *world) withInvitationNeed(o models.EventOffer) models.EventOffer {
	if o.InvitationID != nil {
		if inv, ok := w.invitations[*o.InvitationID]; ok {
			o.InvitationNeedID = inv.NeedID
		}
	}
	return o
}

func (w *world) GetOffer(_ context.Context, id uuid.UUID) (*models.EventOffer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	o, ok := w.offers[id]
	if !ok {
		return nil, apperr.NotFoundf("offer not found")
	}
	o = w.withInvitationNeed(o)
	return &o, nil
}

func (w *world) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.EventOffer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []models.EventOffer
	for _, o := range w.offers {
		if o.EventID == eventID {
			out = append(out, w.withInvitationNeed(o))
		}
	}
	return out, nil
}

func (w *world) Create(_ context.Context, o *models.EventOffer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	o.ID = uuid.New()
	o.Version = 1
	w.offers[o.ID] = *o
	return nil
}

func (w *world) Revise(_ context.Context, o *models.EventOffer, expectedVersion int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cur := w.offers[o.ID]
	if cur.Version != expectedVersion {
		return apperr.Conflictf("offer was modified concurrently")
	}
	o.Version = expectedVersion + 1
	w.offers[o.ID] = *o
	return nil
}

func (w *world) InTx(_ context.Context, fn func(Tx) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	needs := make(map[uuid.UUID]models.EventNeed, len(w.needs))
	for k, v := range w.needs {
		needs[k] = v
	}
	offers := make(map[uuid.UUID]models.EventOffer, len(w.offers))
	for k, v := range w.offers {
		offers[k] = v
	}
	if err := fn(worldTx{w}); err != nil {
		w.needs, w.offers = needs, offers
		return err
	}
	return nil
}

type worldTx struct{ w *world }

func (t worldTx) LockNeed(_ context.Context, needID uuid.UUID) (bool, error) {
	n, ok := t.w.needs[needID]
	if !ok {
		return false, apperr.NotFoundf("need not found")
	}
	return n.Locked, nil
}

func (t worldTx) GetOfferForUpdate(_ context.Context, id uuid.UUID) (*models.EventOffer, error) {
	o, ok := t.w.offers[id]
	if !ok {
		return nil, apperr.NotFoundf("offer not found")
	}
	o = t.w.withInvitationNeed(o)
	return &o, nil
}

func (t worldTx) UpdateOfferStatus(_ context.Context, id uuid.UUID, status models.OfferStatus, expectedVersion int) (int, error) {
	o := t.w.offers[id]
	if o.Version != expectedVersion {
		return 0, apperr.Conflictf("offer was modified concurrently")
	}
	o.Status = status
	o.Version++
	t.w.offers[id] = o
	return o.Version, nil
}

func (t worldTx) LockSiblingOffers(_ context.Context, eventID, needID, exceptID uuid.UUID) (int64, error) {
	var n int64
	for id, o := range t.w.offers {
		if id == exceptID || o.EventID != eventID || o.Status == models.OfferLocked {
			continue
		}
		wo := t.w.withInvitationNeed(o)
		resolved := wo.ResolvedNeedID()
		if resolved == nil || *resolved != needID {
			continue
		}
		o.Status = models.OfferLocked
		o.Version++
		t.w.offers[id] = o
		n++
	}
	return n, nil
}

func (t worldTx) MarkNeedLocked(_ context.Context, needID uuid.UUID) error {
	n := t.w.needs[needID]
	if n.Locked {
		return apperr.Conflictf("need already locked")
	}
	n.Locked = true
	t.w.needs[needID] = n
	return nil
}

type worldEvents struct{ w *world }

func (e worldEvents) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if id != e.w.event.ID {
		return nil, apperr.NotFoundf("event not found")
	}
	return e.w.event, nil
}

type worldNeeds struct{ w *world }

func (n worldNeeds) Get(_ context.Context, eventID, needID uuid.UUID) (*models.EventNeed, error) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	need, ok := n.w.needs[needID]
	if !ok || need.EventID != eventID {
		return nil, apperr.NotFoundf("need not found")
	}
	return &need, nil
}

type worldInvitations struct{ w *world }

func (i worldInvitations) GetByID(_ context.Context, id uuid.UUID) (*models.EventInvitation, error) {
	inv, ok := i.w.invitations[id]
	if !ok {
		return nil, apperr.NotFoundf("invitation not found")
	}
	return &inv, nil
}

func (i worldInvitations) GroupIDs(_ context.Context, providerID uuid.UUID) ([]uuid.UUID, error) {
	return i.w.groups[providerID], nil
}

type sink struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (s *sink) Notify(_ context.Context, n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

var _ notify.Notifier = (*sink)(nil)

type fixture struct {
	svc      *Service
	w        *world
	owner    access.Actor
	provider access.Actor
	notes    *sink
}

func setup(t *testing.T) fixture {
	t.Helper()
	owner := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	w := newWorld(owner.UserID)
	notes := &sink{}
	inv := worldInvitations{w}
	svc := NewService(w, worldEvents{w}, worldNeeds{w}, inv, inv, notes, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return fixture{
		svc:      svc,
		w:        w,
		owner:    owner,
		provider: access.Actor{UserID: uuid.New(), Role: models.RoleProvider},
		notes:    notes,
	}
}

func TestAcceptLocksSiblingsAndNeed(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	o1 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)
	o2 := f.w.addOffer(uuid.New(), &need.ID, models.OfferRevised)
	o3 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)
	other := f.w.addOffer(uuid.New(), nil, models.OfferSent)

	got, err := f.svc.Decide(context.Background(), f.owner, o1.ID, models.OfferAccepted)
	require.NoError(t, err)
	require.Equal(t, models.OfferAccepted, got.Status)
	require.Equal(t, 2, got.Version)

	require.True(t, f.w.needs[need.ID].Locked)
	require.Equal(t, models.OfferLocked, f.w.offers[o2.ID].Status)
	require.Equal(t, models.OfferLocked, f.w.offers[o3.ID].Status)
	require.Equal(t, models.OfferSent, f.w.offers[other.ID].Status)

	require.Len(t, f.notes.sent, 1)
	require.Equal(t, o1.ProviderID, f.notes.sent[0].UserID)
	require.Equal(t, models.NotificationOfferDecision, f.notes.sent[0].Type)
}

func TestAcceptCascadesThroughInvitationNeed(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Catering")
	invID := uuid.New()
	f.w.invitations[invID] = models.EventInvitation{ID: invID, EventID: f.w.event.ID, NeedID: &need.ID}
	o1 := f.w.addOffer(uuid.New(), nil, models.OfferSent)
	o1.InvitationID = &invID
	f.w.offers[o1.ID] = o1
	o2 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)

	_, err := f.svc.Decide(context.Background(), f.owner, o1.ID, models.OfferAcceptedByClient)
	require.NoError(t, err)
	require.True(t, f.w.needs[need.ID].Locked)
	require.Equal(t, models.OfferLocked, f.w.offers[o2.ID].Status)
}

func TestConcurrentAcceptsOnOneNeed(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	a := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)
	b := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Decide(context.Background(), f.owner, id, models.OfferAccepted)
		}(i, id)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.Conflict):
			conflicts++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflicts)
	require.True(t, f.w.needs[need.ID].Locked)

	statuses := []models.OfferStatus{f.w.offers[a.ID].Status, f.w.offers[b.ID].Status}
	require.ElementsMatch(t, []models.OfferStatus{models.OfferAccepted, models.OfferLocked}, statuses)
}

func TestAcceptOnLockedNeedIsConflict(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	n := f.w.needs[need.ID]
	n.Locked = true
	f.w.needs[need.ID] = n
	o := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)

	_, err := f.svc.Decide(context.Background(), f.owner, o.ID, models.OfferAccepted)
	require.True(t, apperr.Is(err, apperr.Conflict))
	require.Equal(t, models.OfferSent, f.w.offers[o.ID].Status)
}

func TestDeclineDoesNotCascade(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	o1 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)
	o2 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)

	got, err := f.svc.Decide(context.Background(), f.owner, o1.ID, models.OfferRejectedByClient)
	require.NoError(t, err)
	require.Equal(t, models.OfferRejectedByClient, got.Status)
	require.False(t, f.w.needs[need.ID].Locked)
	require.Equal(t, models.OfferSent, f.w.offers[o2.ID].Status)
}

func TestAcceptWithoutNeedOnlyChangesOffer(t *testing.T) {
	f := setup(t)
	o1 := f.w.addOffer(uuid.New(), nil, models.OfferSent)
	o2 := f.w.addOffer(uuid.New(), nil, models.OfferSent)

	_, err := f.svc.Decide(context.Background(), f.owner, o1.ID, models.OfferAccepted)
	require.NoError(t, err)
	require.Equal(t, models.OfferSent, f.w.offers[o2.ID].Status)
}

func TestDecideRejections(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	sent := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)
	draft := f.w.addOffer(uuid.New(), &need.ID, models.OfferDraft)
	locked := f.w.addOffer(uuid.New(), &need.ID, models.OfferLocked)
	ctx := context.Background()

	_, err := f.svc.Decide(ctx, f.owner, sent.ID, models.OfferWithdrawn)
	require.True(t, apperr.Is(err, apperr.BadRequest))

	stranger := access.Actor{UserID: uuid.New(), Role: models.RoleClient}
	_, err = f.svc.Decide(ctx, stranger, sent.ID, models.OfferAccepted)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	_, err = f.svc.Decide(ctx, f.owner, uuid.New(), models.OfferAccepted)
	require.True(t, apperr.Is(err, apperr.NotFound))

	_, err = f.svc.Decide(ctx, f.owner, draft.ID, models.OfferAccepted)
	require.True(t, apperr.Is(err, apperr.BadRequest))
	require.False(t, f.w.needs[need.ID].Locked, "failed accept must roll back")

	_, err = f.svc.Decide(ctx, f.owner, locked.ID, models.OfferDeclined)
	require.True(t, apperr.Is(err, apperr.Conflict))
}

func TestSetStatus(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	mine := f.w.addOffer(f.provider.UserID, &need.ID, models.OfferSent)
	ctx := context.Background()
	eventID := f.w.event.ID

	_, err := f.svc.SetStatus(ctx, f.owner, eventID, mine.ID, models.OfferLocked)
	require.True(t, apperr.Is(err, apperr.BadRequest))

	_, err = f.svc.SetStatus(ctx, f.owner, eventID, mine.ID, "BOGUS")
	require.True(t, apperr.Is(err, apperr.BadRequest))

	_, err = f.svc.SetStatus(ctx, f.owner, uuid.New(), mine.ID, models.OfferAccepted)
	require.True(t, apperr.Is(err, apperr.NotFound))

	// the client cannot withdraw on the provider's behalf
	_, err = f.svc.SetStatus(ctx, f.owner, eventID, mine.ID, models.OfferWithdrawn)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	got, err := f.svc.SetStatus(ctx, f.provider, eventID, mine.ID, models.OfferWithdrawn)
	require.NoError(t, err)
	require.Equal(t, models.OfferWithdrawn, got.Status)

	_, err = f.svc.SetStatus(ctx, f.provider, eventID, mine.ID, models.OfferSent)
	require.True(t, apperr.Is(err, apperr.BadRequest))
}

func TestSetStatusAcceptRunsCascade(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	o1 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)
	o2 := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)

	_, err := f.svc.SetStatus(context.Background(), f.owner, f.w.event.ID, o1.ID, models.OfferAcceptedByClient)
	require.NoError(t, err)
	require.Equal(t, models.OfferLocked, f.w.offers[o2.ID].Status)
}

func TestCreateOffer(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	invID := uuid.New()
	f.w.invitations[invID] = models.EventInvitation{ID: invID, EventID: f.w.event.ID, NeedID: &need.ID,
		ProviderID: &f.provider.UserID, Status: models.InvitationAccepted}

	o, err := f.svc.Create(context.Background(), f.provider, f.w.event.ID, CreateInput{InvitationID: &invID, TotalCost: 4200})
	require.NoError(t, err)
	require.Equal(t, models.OfferSent, o.Status)
	require.Equal(t, "EUR", o.Currency)
	require.Equal(t, need.ID, *o.ResolvedNeedID())
	require.Len(t, f.notes.sent, 1)
	require.Equal(t, f.owner.UserID, f.notes.sent[0].UserID)
	require.Equal(t, models.NotificationOfferReceived, f.notes.sent[0].Type)

	draft, err := f.svc.Create(context.Background(), f.provider, f.w.event.ID, CreateInput{NeedID: &need.ID, Currency: "usd", Draft: true})
	require.NoError(t, err)
	require.Equal(t, models.OfferDraft, draft.Status)
	require.Equal(t, "USD", draft.Currency)
	require.Len(t, f.notes.sent, 1, "drafts are not announced")
}

func TestCreateOfferRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	need := f.w.addNeed("Venue")
	lockedNeed := f.w.addNeed("Catering")
	ln := f.w.needs[lockedNeed.ID]
	ln.Locked = true
	f.w.needs[lockedNeed.ID] = ln
	closed := f.w.addNeed("Music")
	cn := f.w.needs[closed.ID]
	past := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	cn.OffersDeadline = &past
	f.w.needs[closed.ID] = cn

	_, err := f.svc.Create(ctx, f.owner, f.w.event.ID, CreateInput{NeedID: &need.ID})
	require.True(t, apperr.Is(err, apperr.Forbidden))

	_, err = f.svc.Create(ctx, f.provider, f.w.event.ID, CreateInput{NeedID: &need.ID, TotalCost: -1})
	require.True(t, apperr.Is(err, apperr.BadRequest))

	_, err = f.svc.Create(ctx, f.provider, f.w.event.ID, CreateInput{NeedID: &lockedNeed.ID})
	require.True(t, apperr.Is(err, apperr.BadRequest))

	_, err = f.svc.Create(ctx, f.provider, f.w.event.ID, CreateInput{NeedID: &closed.ID})
	require.True(t, apperr.Is(err, apperr.BadRequest))

	someoneElse := uuid.New()
	invID := uuid.New()
	f.w.invitations[invID] = models.EventInvitation{ID: invID, EventID: f.w.event.ID, NeedID: &need.ID, ProviderID: &someoneElse}
	_, err = f.svc.Create(ctx, f.provider, f.w.event.ID, CreateInput{InvitationID: &invID})
	require.True(t, apperr.Is(err, apperr.Forbidden))

	declined := uuid.New()
	f.w.invitations[declined] = models.EventInvitation{ID: declined, EventID: f.w.event.ID, NeedID: &need.ID,
		ProviderID: &f.provider.UserID, Status: models.InvitationDeclined}
	_, err = f.svc.Create(ctx, f.provider, f.w.event.ID, CreateInput{InvitationID: &declined})
	require.True(t, apperr.Is(err, apperr.BadRequest))
}

func TestCreateOfferViaGroupInvitation(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	group := uuid.New()
	f.w.groups[f.provider.UserID] = []uuid.UUID{group}
	invID := uuid.New()
	f.w.invitations[invID] = models.EventInvitation{ID: invID, EventID: f.w.event.ID, NeedID: &need.ID,
		ProviderGroupID: &group, Status: models.InvitationPending}

	_, err := f.svc.Create(context.Background(), f.provider, f.w.event.ID, CreateInput{InvitationID: &invID, TotalCost: 10})
	require.NoError(t, err)
}

func TestReviseOffer(t *testing.T) {
	f := setup(t)
	need := f.w.addNeed("Venue")
	o := f.w.addOffer(f.provider.UserID, &need.ID, models.OfferSent)
	cost := 900.0

	got, err := f.svc.Revise(context.Background(), f.provider, f.w.event.ID, o.ID, ReviseInput{TotalCost: &cost})
	require.NoError(t, err)
	require.Equal(t, models.OfferRevised, got.Status)
	require.Equal(t, 900.0, got.TotalCost)
	require.Equal(t, 2, got.Version)

	n := f.w.needs[need.ID]
	n.Locked = true
	f.w.needs[need.ID] = n
	_, err = f.svc.Revise(context.Background(), f.provider, f.w.event.ID, o.ID, ReviseInput{TotalCost: &cost})
	require.True(t, apperr.Is(err, apperr.BadRequest))
}

type fakeFiles struct {
	objects map[string][]byte
}

func (f *fakeFiles) AttachmentsBucket() string    { return "attachments" }
func (f *fakeFiles) PresignExpire() time.Duration { return 15 * time.Minute }
func (f *fakeFiles) DeleteObject(_ context.Context, _, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeFiles) GeneratePresignedUploadURL(_ context.Context, bucket, key, _ string, _ time.Duration) (string, error) {
	return "https://s3.test/" + bucket + "/" + key + "?put", nil
}

func (f *fakeFiles) GeneratePresignedDownloadURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://s3.test/" + bucket + "/" + key + "?get", nil
}

func (f *fakeFiles) Upload(_ context.Context, bucket, key, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = b
	return "https://s3.test/" + bucket + "/" + key, nil
}

func (f *fakeFiles) ObjectExists(_ context.Context, _, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func TestAttachmentsRequireStorage(t *testing.T) {
	f := setup(t)
	o := f.w.addOffer(f.provider.UserID, nil, models.OfferSent)
	_, err := f.svc.AttachmentUploadURL(context.Background(), f.provider, f.w.event.ID, o.ID, "quote.pdf", "application/pdf", 10)
	require.True(t, apperr.Is(err, apperr.Unavailable))
}

func TestAttachmentLifecycle(t *testing.T) {
	f := setup(t)
	files := &fakeFiles{objects: map[string][]byte{}}
	f.svc.WithAttachments(files)
	o := f.w.addOffer(f.provider.UserID, nil, models.OfferSent)
	ctx := context.Background()
	eventID := f.w.event.ID

	up, err := f.svc.AttachmentUploadURL(ctx, f.provider, eventID, o.ID, "quote.pdf", "", 1024)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", up.ContentType)
	require.Equal(t, 900, up.ExpiresIn)
	require.True(t, strings.HasPrefix(up.Key, "offers/"+eventID.String()+"/"+o.ID.String()+"/"))

	_, err = f.svc.AttachmentUploadURL(ctx, f.provider, eventID, o.ID, "run.exe", "application/x-msdownload", 10)
	require.True(t, apperr.Is(err, apperr.BadRequest))

	_, err = f.svc.AttachmentUploadURL(ctx, f.owner, eventID, o.ID, "quote.pdf", "", 10)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	att, err := f.svc.UploadAttachment(ctx, f.provider, eventID, o.ID, "menu.png", "image/png", 3, bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	require.Equal(t, []byte("png"), files.objects[att.Key])

	dl, err := f.svc.AttachmentDownloadURL(ctx, f.owner, eventID, o.ID, att.Key)
	require.NoError(t, err)
	require.Contains(t, dl.DownloadURL, att.Key)

	_, err = f.svc.AttachmentDownloadURL(ctx, f.owner, eventID, o.ID, "offers/other/key.png")
	require.True(t, apperr.Is(err, apperr.NotFound))

	require.NoError(t, f.svc.DeleteAttachment(ctx, f.provider, eventID, o.ID, att.Key))
	_, err = f.svc.AttachmentDownloadURL(ctx, f.owner, eventID, o.ID, att.Key)
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDecisionHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := setup(t)
	need := f.w.addNeed("Venue")
	o := f.w.addOffer(uuid.New(), &need.ID, models.OfferSent)

	r := gin.New()
	r.POST("/offers/:id/decision", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, f.owner.UserID)
		c.Set(middleware.ContextUserRole, string(f.owner.Role))
	}, NewHandler(f.svc).Decide)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/offers/"+o.ID.String()+"/decision", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(`{"decision":"SENT"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(`{"decision":"ACCEPTED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ACCEPTED"`)

	w = do(`{"decision":"ACCEPTED"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}
