package schedule

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// fakeRepo is an in-memory Repository with the same conditional-update
// semantics as the Postgres implementation.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*Record
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*Record)}
}

func key(fieldID, courtID, date string) string {
	return fieldID + "|" + courtID + "|" + date
}

func cloneRecord(rec *Record) *Record {
	cp := *rec
	cp.Reserved = append([]ReservedRange(nil), rec.Reserved...)
	return &cp
}

func (f *fakeRepo) Get(ctx context.Context, fieldID, courtID, date string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key(fieldID, courtID, date)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (f *fakeRepo) GetOrCreate(ctx context.Context, fieldID, courtID, date string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(fieldID, courtID, date)
	if rec, ok := f.records[k]; ok {
		return cloneRecord(rec), nil
	}
	f.nextID++
	rec := &Record{
		ID:       fmt.Sprintf("rec-%d", f.nextID),
		FieldID:  fieldID,
		CourtID:  courtID,
		Date:     date,
		Reserved: []ReservedRange{},
	}
	f.records[k] = rec
	return cloneRecord(rec), nil
}

func (f *fakeRepo) UpdateConditional(ctx context.Context, rec *Record, expectedVersion int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[key(rec.FieldID, rec.CourtID, rec.Date)]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	cp := cloneRecord(rec)
	cp.ID = stored.ID
	cp.Version = expectedVersion + 1
	f.records[key(rec.FieldID, rec.CourtID, rec.Date)] = cp
	rec.Version = cp.Version
	return true, nil
}

func (f *fakeRepo) DeleteEmptyBefore(ctx context.Context, date string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deleted := 0
	for k, rec := range f.records {
		if rec.Date < date && !rec.IsBlocked && len(rec.Reserved) == 0 {
			delete(f.records, k)
			deleted++
		}
	}
	return deleted, nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, 3, time.UTC)
}

func TestReserveAndConflict(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, "b1"))

	// Overlapping range loses.
	err := svc.Reserve(ctx, "f1", "", "2026-03-01", 11*60, 13*60, "b2")
	assert.ErrorIs(t, err, ErrSlotConflict)

	// Back-to-back range wins.
	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-01", 12*60, 14*60, "b3"))

	// Same range on a different date is independent.
	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-02", 10*60, 12*60, "b4"))

	// Same range on a different court of the same field is independent.
	require.NoError(t, svc.Reserve(ctx, "f1", "c1", "2026-03-01", 10*60, 12*60, "b5"))
}

func TestReserveBlockedDate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.MarkHoliday(ctx, "f1", "", "2026-03-01", "resurfacing"))

	err := svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, "b1")
	assert.ErrorIs(t, err, ErrDateBlocked)

	require.NoError(t, svc.UnmarkHoliday(ctx, "f1", "", "2026-03-01"))
	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, "b1"))
}

func TestMarkHolidayClearsReservations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, "b1"))
	require.NoError(t, svc.MarkHoliday(ctx, "f1", "", "2026-03-01", "maintenance"))

	reserved, blocked, err := svc.Reserved(ctx, "f1", "", "2026-03-01")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Empty(t, reserved)
}

func TestReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, "b1"))

	require.NoError(t, svc.Release(ctx, "f1", "", "2026-03-01", "b1"))
	// Releasing again, or a never-reserved ref, is a no-op.
	require.NoError(t, svc.Release(ctx, "f1", "", "2026-03-01", "b1"))
	require.NoError(t, svc.Release(ctx, "f1", "", "2026-03-01", "never-existed"))
	// Releasing on a key with no record at all is also a no-op.
	require.NoError(t, svc.Release(ctx, "f2", "", "2026-03-01", "b1"))

	// The slot is reusable after release.
	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, "b2"))
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	const contenders = 16

	var mu sync.Mutex
	var winners []string

	var g errgroup.Group
	for i := 0; i < contenders; i++ {
		ref := fmt.Sprintf("b%d", i)
		g.Go(func() error {
			err := svc.Reserve(ctx, "f1", "", "2026-03-01", 10*60, 12*60, ref)
			if err == nil {
				mu.Lock()
				winners = append(winners, ref)
				mu.Unlock()
				return nil
			}
			if err == ErrSlotConflict {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	require.Len(t, winners, 1, "exactly one contender must win the slot")

	reserved, _, err := svc.Reserved(ctx, "f1", "", "2026-03-01")
	require.NoError(t, err)
	require.Len(t, reserved, 1)
	assert.Equal(t, winners[0], reserved[0].BookingRef)
}

func TestConcurrentDisjointRangesAllSucceed(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	// Generous retry budget: disjoint writers only lose versions, not slots.
	svc := NewService(repo, 20, time.UTC)

	const writers = 8

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		start := (8 + i) * 60
		ref := fmt.Sprintf("b%d", i)
		g.Go(func() error {
			return svc.Reserve(ctx, "f1", "", "2026-03-01", start, start+60, ref)
		})
	}
	require.NoError(t, g.Wait())

	reserved, _, err := svc.Reserved(ctx, "f1", "", "2026-03-01")
	require.NoError(t, err)
	assert.Len(t, reserved, writers)
}

func TestCleanupEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	// Past empty record (reserve then release), past blocked record, and a
	// future reservation.
	require.NoError(t, svc.Reserve(ctx, "f1", "", "2026-01-01", 10*60, 11*60, "b1"))
	require.NoError(t, svc.Release(ctx, "f1", "", "2026-01-01", "b1"))
	require.NoError(t, svc.MarkHoliday(ctx, "f1", "", "2026-01-02", "closed"))
	require.NoError(t, svc.Reserve(ctx, "f1", "", "2099-01-01", 10*60, 11*60, "b2"))

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	deleted, err := svc.CleanupEmpty(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	// Blocked record survives cleanup.
	_, blocked, err := svc.Reserved(ctx, "f1", "", "2026-01-02")
	require.NoError(t, err)
	assert.True(t, blocked)
}
