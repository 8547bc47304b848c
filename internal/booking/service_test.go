package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/field-booking-backend/internal/cancelpolicy"
	"github.com/opencourt/field-booking-backend/internal/coach"
	"github.com/opencourt/field-booking-backend/internal/config"
	"github.com/opencourt/field-booking-backend/internal/court"
	"github.com/opencourt/field-booking-backend/internal/events"
	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/schedule"
)

// Fakes embed the interface and implement only what the lifecycle touches.

type fakeFieldService struct {
	field.Service
	fields   map[string]*field.Field
	managers map[string]bool // userID -> manages everything
}

func (f *fakeFieldService) GetByID(ctx context.Context, id string) (*field.Field, error) {
	fl, ok := f.fields[id]
	if !ok {
		return nil, field.ErrNotFound
	}
	return fl, nil
}

func (f *fakeFieldService) CanManage(ctx context.Context, fieldID, userID string) (bool, error) {
	return f.managers[userID], nil
}

type fakeCourtService struct {
	court.Service
	courts map[string]*court.Court
}

func (f *fakeCourtService) GetByID(ctx context.Context, id string) (*court.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, court.ErrNotFound
	}
	return c, nil
}

type fakeCoachService struct {
	coach.Service
	coaches map[string]*coach.Coach
}

func (f *fakeCoachService) GetByID(ctx context.Context, id string) (*coach.Coach, error) {
	c, ok := f.coaches[id]
	if !ok {
		return nil, coach.ErrNotFound
	}
	return c, nil
}

type reserveCall struct {
	fieldID, courtID, date string
	startMin, endMin       int
	ref                    string
}

type fakeScheduleService struct {
	schedule.Service
	mu         sync.Mutex
	reserves   []reserveCall
	releases   []string
	reserveErr error
}

func (f *fakeScheduleService) Reserve(ctx context.Context, fieldID, courtID, date string, startMin, endMin int, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserves = append(f.reserves, reserveCall{fieldID, courtID, date, startMin, endMin, ref})
	return nil
}

func (f *fakeScheduleService) Release(ctx context.Context, fieldID, courtID, date, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases = append(f.releases, ref)
	return nil
}

type fakeRepo struct {
	mu         sync.Mutex
	bookings   map[string]*Booking
	createErr  error
	elapsedIDs []string

	// staleCopy, while staleReads > 0, is served by GetByID instead of
	// the stored row. Lets a test interleave a second request between
	// another request's read and write.
	staleCopy  *Booking
	staleReads int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*Booking)}
}

func (f *fakeRepo) Create(ctx context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleReads > 0 && f.staleCopy != nil && f.staleCopy.ID == id {
		f.staleReads--
		cp := *f.staleCopy
		return &cp, nil
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(ctx context.Context, b *Booking, fromStatus Status, fromCoachStatus CoachStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != fromStatus || stored.CoachStatus != fromCoachStatus {
		return ErrStateChanged
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeRepo) CompleteElapsed(ctx context.Context, today string, nowMin int) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Booking
	for _, id := range f.elapsedIDs {
		if b, ok := f.bookings[id]; ok {
			b.Status = StatusCompleted
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

type publishedEvent struct {
	key     string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(ctx context.Context, key string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{key: key, payload: payload})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) byKey(key string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.key == key {
			out = append(out, e)
		}
	}
	return out
}

// Fixture: a Saturday-only field with a 1.5x evening peak.

type fixture struct {
	svc       *service
	repo      *fakeRepo
	sched     *fakeScheduleService
	publisher *fakePublisher
	coaches   *fakeCoachService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	testField := &field.Field{
		ID:                 "f1",
		VenueID:            "v1",
		Name:               "Center Field",
		MinSlotsPerBooking: 1,
		MaxSlotsPerBooking: 14,
		BasePrice:          100000,
		OperatingHours: []field.OperatingHours{
			{Weekday: time.Saturday, Start: "08:00", End: "22:00", SlotUnitMinutes: 60},
		},
		PriceRanges: []field.PriceRange{
			{Weekday: time.Saturday, Start: "08:00", End: "17:00", Multiplier: 1.0},
			{Weekday: time.Saturday, Start: "17:00", End: "22:00", Multiplier: 1.5},
		},
	}

	fields := &fakeFieldService{
		fields:   map[string]*field.Field{"f1": testField},
		managers: map[string]bool{"owner-1": true},
	}
	courts := &fakeCourtService{courts: map[string]*court.Court{
		"c1": {ID: "c1", FieldID: "f1", Name: "Court 1"},
		"cx": {ID: "cx", FieldID: "other-field", Name: "Elsewhere"},
	}}
	coaches := &fakeCoachService{coaches: map[string]*coach.Coach{
		"coach-1": {ID: "coach-1", VenueID: "v1", UserID: "coach-user-1", IsActive: true},
		"coach-2": {ID: "coach-2", VenueID: "v2", UserID: "coach-user-2", IsActive: true},
	}}
	repo := newFakeRepo()
	sched := &fakeScheduleService{}
	publisher := &fakePublisher{}

	tiers, err := config.ParseCancellationTiers(config.DefaultCancellationTiers)
	require.NoError(t, err)
	policy := cancelpolicy.New(tiers, false, time.UTC)

	svc := NewService(repo, fields, courts, coaches, sched, policy, publisher, time.UTC, 10).(*service)
	// 2026-03-07 is a Saturday; fixed clock the day before at noon.
	svc.now = func() time.Time { return time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, repo: repo, sched: sched, publisher: publisher, coaches: coaches}
}

const testDate = "2026-03-07"

func (fx *fixture) create(t *testing.T, req CreateRequest) *Booking {
	t.Helper()
	if req.UserID == "" {
		req.UserID = "user-1"
	}
	if req.FieldID == "" {
		req.FieldID = "f1"
	}
	if req.Date == "" {
		req.Date = testDate
	}
	b, err := fx.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return b
}

func TestCreateSnapshotsPrice(t *testing.T) {
	fx := newFixture(t)

	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00", Amenities: []string{" lighting ", "", "shower"}})

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, 2, b.NumSlots)
	assert.Equal(t, []string{"lighting", "shower"}, b.Amenities)
	assert.Equal(t, int64(300000), b.BookingAmount)
	assert.Equal(t, int64(30000), b.PlatformFee)
	assert.Equal(t, int64(330000), b.TotalPrice)
	assert.Equal(t, int64(100000), b.BasePriceUsed)
	assert.Equal(t, 1.5, b.MultiplierApplied)
	assert.NotEmpty(t, b.PriceBreakdown)

	// The schedule claim carries the booking's own id as reference.
	require.Len(t, fx.sched.reserves, 1)
	call := fx.sched.reserves[0]
	assert.Equal(t, b.ID, call.ref)
	assert.Equal(t, 18*60, call.startMin)
	assert.Equal(t, 20*60, call.endMin)

	require.Len(t, fx.publisher.byKey(events.KeyBookingCreated), 1)
}

func TestCreateValidationFailures(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{
			name:    "unknown field",
			req:     CreateRequest{UserID: "u", FieldID: "nope", Date: testDate, Start: "18:00", End: "20:00"},
			wantErr: ErrFieldNotFound,
		},
		{
			name:    "court of another field",
			req:     CreateRequest{UserID: "u", FieldID: "f1", CourtID: "cx", Date: testDate, Start: "18:00", End: "20:00"},
			wantErr: ErrCourtNotFound,
		},
		{
			name:    "coach of another venue",
			req:     CreateRequest{UserID: "u", FieldID: "f1", CoachID: strPtr("coach-2"), Date: testDate, Start: "18:00", End: "20:00"},
			wantErr: ErrCoachNotFound,
		},
		{
			name:    "start in the past",
			req:     CreateRequest{UserID: "u", FieldID: "f1", Date: "2026-02-28", Start: "10:00", End: "11:00"},
			wantErr: ErrStartTimePast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Closed weekday: 2026-03-08 is a Sunday.
	_, err := fx.svc.Create(ctx, CreateRequest{UserID: "u", FieldID: "f1", Date: "2026-03-08", Start: "10:00", End: "11:00"})
	require.Error(t, err)

	// Nothing was ever claimed.
	assert.Empty(t, fx.sched.reserves)
}

func TestCreateConflictPropagates(t *testing.T) {
	fx := newFixture(t)
	fx.sched.reserveErr = schedule.ErrSlotConflict

	_, err := fx.svc.Create(context.Background(), CreateRequest{
		UserID: "u", FieldID: "f1", Date: testDate, Start: "18:00", End: "20:00",
	})
	assert.ErrorIs(t, err, schedule.ErrSlotConflict)
	assert.Empty(t, fx.repo.bookings)
}

func TestCreateReleasesClaimWhenPersistFails(t *testing.T) {
	fx := newFixture(t)
	fx.repo.createErr = errors.New("db down")

	_, err := fx.svc.Create(context.Background(), CreateRequest{
		UserID: "u", FieldID: "f1", Date: testDate, Start: "18:00", End: "20:00",
	})
	require.Error(t, err)

	require.Len(t, fx.sched.reserves, 1)
	require.Len(t, fx.sched.releases, 1)
	assert.Equal(t, fx.sched.reserves[0].ref, fx.sched.releases[0])
}

func TestCancelAsCustomerEarly(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})

	// Fixed clock is 30 hours before the 18:00 start.
	res, err := fx.svc.Cancel(context.Background(), b.ID, CancelRequest{
		ActorID: "user-1",
		Role:    cancelpolicy.RoleCustomer,
	}, false)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, res.Booking.Status)
	assert.Equal(t, 100, res.RefundPercent)
	assert.Equal(t, int64(300000), res.RefundAmount)
	assert.Equal(t, int64(0), res.PenaltyAmount)
	assert.InDelta(t, 30.0, res.HoursUntilStart, 1e-9)

	assert.Equal(t, []string{b.ID}, fx.sched.releases)

	ledger := fx.publisher.byKey(events.KeyLedgerAdjustment)
	require.Len(t, ledger, 1)
	adj := ledger[0].payload.(events.LedgerAdjustment)
	assert.Equal(t, int64(300000), adj.RefundAmount)
	assert.Equal(t, "customer", adj.CancelledBy)
}

func TestCancelAsOwnerLate(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})

	// Move the clock to 3 hours before start.
	fx.svc.now = func() time.Time { return time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC) }

	res, err := fx.svc.Cancel(context.Background(), b.ID, CancelRequest{
		ActorID: "owner-1",
		Role:    cancelpolicy.RoleOwner,
	}, false)
	require.NoError(t, err)

	// Customer is made whole in full; owner pays the gross amount.
	assert.Equal(t, int64(330000), res.RefundAmount)
	assert.Equal(t, 100, res.PenaltyPercent)
	assert.Equal(t, int64(330000), res.PenaltyAmount)
}

func TestCancelAfterStartDenied(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})

	fx.svc.now = func() time.Time { return time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC) }

	_, err := fx.svc.Cancel(context.Background(), b.ID, CancelRequest{
		ActorID: "user-1",
		Role:    cancelpolicy.RoleCustomer,
	}, false)
	require.Error(t, err)
	assert.Empty(t, fx.sched.releases)

	// The booking keeps its state.
	stored, err := fx.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestCancelPermissionChecks(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})
	ctx := context.Background()

	t.Run("stranger cannot cancel as customer", func(t *testing.T) {
		_, err := fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "someone-else", Role: cancelpolicy.RoleCustomer}, false)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("non-manager cannot cancel as owner", func(t *testing.T) {
		_, err := fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "user-1", Role: cancelpolicy.RoleOwner}, false)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("coach role requires an attached coach", func(t *testing.T) {
		_, err := fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "coach-user-1", Role: cancelpolicy.RoleCoach}, false)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestCancelTwiceDenied(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})
	ctx := context.Background()

	_, err := fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "user-1", Role: cancelpolicy.RoleCustomer}, false)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "user-1", Role: cancelpolicy.RoleCustomer}, false)
	require.Error(t, err)

	// Only one release and one ledger adjustment.
	assert.Len(t, fx.sched.releases, 1)
	assert.Len(t, fx.publisher.byKey(events.KeyLedgerAdjustment), 1)
}

func TestCancelRaceEmitsSingleAdjustment(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})
	ctx := context.Background()

	pending, err := fx.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "user-1", Role: cancelpolicy.RoleCustomer}, false)
	require.NoError(t, err)

	// Second request read the row before the first write landed; its
	// eligibility check passes but the conditional write must lose.
	fx.repo.staleCopy = pending
	fx.repo.staleReads = 1

	_, err = fx.svc.Cancel(ctx, b.ID, CancelRequest{ActorID: "user-1", Role: cancelpolicy.RoleCustomer}, false)
	assert.ErrorIs(t, err, ErrStateChanged)

	// Exactly one refund instruction and one release.
	assert.Len(t, fx.publisher.byKey(events.KeyLedgerAdjustment), 1)
	assert.Len(t, fx.publisher.byKey(events.KeyBookingCancelled), 1)
	assert.Len(t, fx.sched.releases, 1)
}

func TestConfirm(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})
	ctx := context.Background()

	t.Run("customer cannot confirm", func(t *testing.T) {
		_, err := fx.svc.Confirm(ctx, b.ID, "user-1", false)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("manager confirms", func(t *testing.T) {
		confirmed, err := fx.svc.Confirm(ctx, b.ID, "owner-1", false)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, confirmed.Status)
	})

	t.Run("confirm is not repeatable", func(t *testing.T) {
		_, err := fx.svc.Confirm(ctx, b.ID, "owner-1", false)
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestRespondCoachAccept(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00", CoachID: strPtr("coach-1")})
	ctx := context.Background()

	require.Equal(t, CoachStatusPending, b.CoachStatus)

	t.Run("only the attached coach may respond", func(t *testing.T) {
		_, err := fx.svc.RespondCoach(ctx, b.ID, "user-1", true, nil)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("accept", func(t *testing.T) {
		updated, err := fx.svc.RespondCoach(ctx, b.ID, "coach-user-1", true, nil)
		require.NoError(t, err)
		assert.Equal(t, CoachStatusAccepted, updated.CoachStatus)
		assert.Equal(t, StatusPending, updated.Status)
	})

	t.Run("no second response", func(t *testing.T) {
		_, err := fx.svc.RespondCoach(ctx, b.ID, "coach-user-1", false, nil)
		assert.ErrorIs(t, err, ErrCoachResponded)
	})
}

func TestRespondCoachDeclineForcesFullRefund(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00", CoachID: strPtr("coach-1")})

	// Even 30 minutes before start, a decline refunds everything.
	fx.svc.now = func() time.Time { return time.Date(2026, 3, 7, 17, 30, 0, 0, time.UTC) }

	reason := "injured"
	updated, err := fx.svc.RespondCoach(context.Background(), b.ID, "coach-user-1", false, &reason)
	require.NoError(t, err)

	assert.Equal(t, CoachStatusDeclined, updated.CoachStatus)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Equal(t, []string{b.ID}, fx.sched.releases)

	ledger := fx.publisher.byKey(events.KeyLedgerAdjustment)
	require.Len(t, ledger, 1)
	adj := ledger[0].payload.(events.LedgerAdjustment)
	assert.Equal(t, int64(330000), adj.RefundAmount)
	assert.Equal(t, int64(0), adj.PenaltyAmount)
	assert.Equal(t, "system", adj.CancelledBy)
}

func TestRespondCoachDeclineAfterCompletion(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00", CoachID: strPtr("coach-1")})
	ctx := context.Background()

	_, err := fx.svc.Confirm(ctx, b.ID, "owner-1", false)
	require.NoError(t, err)

	// Completion sweep ran while the coach never responded.
	fx.repo.bookings[b.ID].Status = StatusCompleted

	_, err = fx.svc.RespondCoach(ctx, b.ID, "coach-user-1", false, nil)
	assert.ErrorIs(t, err, ErrBookingClosed)

	// The terminal state stands; no refund was emitted.
	stored, err := fx.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Empty(t, fx.publisher.byKey(events.KeyLedgerAdjustment))
	assert.Empty(t, fx.sched.releases)
}

func TestRespondCoachWithoutCoach(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})

	_, err := fx.svc.RespondCoach(context.Background(), b.ID, "coach-user-1", true, nil)
	assert.ErrorIs(t, err, ErrNoCoach)
}

func TestCompleteElapsed(t *testing.T) {
	fx := newFixture(t)
	b := fx.create(t, CreateRequest{Start: "18:00", End: "20:00"})
	_, err := fx.svc.Confirm(context.Background(), b.ID, "owner-1", false)
	require.NoError(t, err)

	fx.repo.elapsedIDs = []string{b.ID}

	n, err := fx.svc.CompleteElapsed(context.Background(), time.Date(2026, 3, 7, 21, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, fx.publisher.byKey(events.KeyBookingCompleted), 1)
}

func strPtr(s string) *string { return &s }
