package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"domostay/database"
	reservationRepo "domostay/database/repository/reservation"
	"domostay/models"
)

func newStoreService(t *testing.T) *DefaultBookingService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive for the
	// whole test and serializes transactions, so concurrent commits queue the
	// same way they would against the real store.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return &DefaultBookingService{
		Repo:    reservationRepo.NewGormReservationRepo(db),
		Catalog: NewCatalog(defaultUnits),
	}
}

func centauryStay(phone string, entry, exit time.Time) CreateReservationInput {
	return CreateReservationInput{
		UnitID:       "centaury",
		GuestCount:   2,
		EntryDate:    entry,
		ExitDate:     exit,
		ContactPhone: phone,
	}
}

func TestCreateDuplicateOverlapAdjacent(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, int64(1350000), first.TotalAmount)

	// Same guest submitting the identical stay again is a duplicate, not a
	// generic overlap.
	_, err = svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictDuplicate, conflict.Kind)

	// A different guest intersecting any night is an overlap.
	_, err = svc.CreateReservation(ctx, centauryStay("+573009998877",
		date(2025, 8, 26), date(2025, 8, 29)))
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictOverlap, conflict.Kind)
	assert.Equal(t, "centaury", conflict.UnitID)

	// Exit day is exclusive: checking in on the 27th touches no booked night.
	second, err := svc.CreateReservation(ctx, centauryStay("+573009998877",
		date(2025, 8, 27), date(2025, 8, 29)))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := svc.ListReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateReflectsInAvailability(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)

	report, err := svc.GetAvailability(ctx, AvailabilityQuery{
		Start: date(2025, 8, 24),
		End:   date(2025, 8, 29),
	})
	require.NoError(t, err)

	require.Len(t, report.Days, 5)
	assert.Contains(t, report.Days[0].Occupied, "centaury")
	assert.Contains(t, report.Days[2].Occupied, "centaury")
	assert.Contains(t, report.Days[3].Free, "centaury")
	assert.NotContains(t, report.FullyAvailable, "centaury")
	assert.Contains(t, report.FullyAvailable, "antares")
}

func TestFreeRangeIsImmediatelyBookable(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 20), date(2025, 8, 24)))
	require.NoError(t, err)

	report, err := svc.GetAvailability(ctx, AvailabilityQuery{
		Start:      date(2025, 8, 24),
		End:        date(2025, 8, 27),
		UnitFilter: "centaury",
	})
	require.NoError(t, err)
	require.Contains(t, report.FullyAvailable, "centaury")

	_, err = svc.CreateReservation(ctx, centauryStay("+573009998877",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)
}

func TestValidationFailuresNeverWrite(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	var validation *ValidationError
	cases := []CreateReservationInput{
		{UnitID: "centaury", GuestCount: 3, ContactPhone: "+57300",
			EntryDate: date(2025, 9, 1), ExitDate: date(2025, 9, 3)},
		{UnitID: "centaury", GuestCount: 2, ContactPhone: "+57300",
			EntryDate: date(2025, 9, 3), ExitDate: date(2025, 9, 1)},
		{UnitID: "centaury", GuestCount: 2, ContactPhone: "   ",
			EntryDate: date(2025, 9, 1), ExitDate: date(2025, 9, 3)},
		{UnitID: "centaury", GuestCount: 2, ContactPhone: "+57300",
			EntryDate: date(2025, 9, 1), ExitDate: date(2025, 9, 3),
			Addons: []string{"helicopter"}},
	}
	for _, in := range cases {
		_, err := svc.CreateReservation(ctx, in)
		require.ErrorAs(t, err, &validation)
	}

	all, err := svc.ListReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConcurrentCreatesExactlyOneWinner(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateReservation(ctx, centauryStay(
				fmt.Sprintf("+5730000000%02d", i),
				date(2025, 10, 1), date(2025, 10, 4)))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, ConflictOverlap, conflict.Kind)
	}
	assert.Equal(t, 1, winners)

	all, err := svc.ListReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConcurrentLoadKeepsStoreOverlapFree(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	// Many guests race for a handful of partially colliding windows across
	// two units. Whatever subset wins, no two committed stays for the same
	// unit may share a night.
	var wg sync.WaitGroup
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unit := "centaury"
			if i%2 == 0 {
				unit = "sirius"
			}
			entry := date(2025, 11, 1).AddDate(0, 0, (i%5)*2)
			svc.CreateReservation(ctx, CreateReservationInput{
				UnitID:       unit,
				GuestCount:   2,
				EntryDate:    entry,
				ExitDate:     entry.AddDate(0, 0, 1+i%3),
				ContactPhone: fmt.Sprintf("+5731000000%02d", i),
			})
		}(i)
	}
	wg.Wait()

	all, err := svc.ListReservations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.UnitID != b.UnitID {
				continue
			}
			assert.False(t, a.Overlaps(b.EntryDate, b.ExitDate),
				"reservations %d and %d overlap on %s", a.ID, b.ID, a.UnitID)
		}
	}
}

func TestCancelReservation(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	created, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(ctx, created.ID))

	var notFound *NotFoundError
	err = svc.CancelReservation(ctx, created.ID)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "reservation", notFound.Resource)

	// The freed dates are bookable again.
	_, err = svc.CreateReservation(ctx, centauryStay("+573009998877",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)
}

func TestUpdateReservation(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)
	second, err := svc.CreateReservation(ctx, centauryStay("+573009998877",
		date(2025, 8, 27), date(2025, 8, 30)))
	require.NoError(t, err)

	// Sliding the second stay onto the first is rejected.
	newEntry := date(2025, 8, 26)
	_, err = svc.UpdateReservation(ctx, second.ID, UpdateReservationInput{
		EntryDate: &newEntry,
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictOverlap, conflict.Kind)

	// Non-identity edits never trigger the overlap check.
	notes := "late arrival"
	updated, err := svc.UpdateReservation(ctx, second.ID, UpdateReservationInput{
		SpecialNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.SpecialNotes)
	assert.True(t, updated.EntryDate.Equal(date(2025, 8, 27)))

	// Moving to genuinely free dates works, including shrinking toward the
	// neighbouring stay's boundary.
	exit := date(2025, 8, 26)
	updated, err = svc.UpdateReservation(ctx, first.ID, UpdateReservationInput{
		ExitDate: &exit,
	})
	require.NoError(t, err)
	assert.True(t, updated.ExitDate.Equal(exit))

	var notFound *NotFoundError
	_, err = svc.UpdateReservation(ctx, 9999, UpdateReservationInput{SpecialNotes: &notes})
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateUnitRechecksGuestCapacity(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	created, err := svc.CreateReservation(ctx, CreateReservationInput{
		UnitID: "antares", GuestCount: 6, ContactPhone: "+573001112233",
		EntryDate: date(2025, 8, 24), ExitDate: date(2025, 8, 27),
	})
	require.NoError(t, err)

	// Six guests do not fit a two-guest dome without a surcharge rate.
	target := "centaury"
	_, err = svc.UpdateReservation(ctx, created.ID, UpdateReservationInput{
		UnitID: &target,
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "guestCount", validation.Field)

	unchanged, err := svc.Repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "antares", unchanged.UnitID)

	// Polaris stretches beyond base occupancy, so the same move is allowed.
	target = "polaris"
	updated, err := svc.UpdateReservation(ctx, created.ID, UpdateReservationInput{
		UnitID: &target,
	})
	require.NoError(t, err)
	assert.Equal(t, "polaris", updated.UnitID)
}

func TestCreateInvalidatesIntersectingCacheEntries(t *testing.T) {
	svc := newStoreService(t)
	svc.Cache = NewMemoryAvailabilityCache(time.Minute)
	ctx := context.Background()

	fill := func(q AvailabilityQuery) {
		_, err := svc.GetAvailability(ctx, q)
		require.NoError(t, err)
	}
	intersecting := AvailabilityQuery{Start: date(2025, 8, 20), End: date(2025, 8, 30)}
	disjoint := AvailabilityQuery{Start: date(2025, 9, 10), End: date(2025, 9, 15)}
	otherUnit := AvailabilityQuery{Start: date(2025, 8, 20), End: date(2025, 8, 30), UnitFilter: "antares"}
	fill(intersecting)
	fill(disjoint)
	fill(otherUnit)
	cache := svc.Cache.(*MemoryAvailabilityCache)
	require.Equal(t, 3, cache.Len())

	_, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)

	// Only entries whose range and unit scope intersect the new stay drop.
	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(ctx, intersecting)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, disjoint)
	assert.True(t, ok)
	_, ok = cache.Get(ctx, otherUnit)
	assert.True(t, ok)

	// A rejected commit leaves the cache alone.
	fill(intersecting)
	require.Equal(t, 3, cache.Len())
	_, err = svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 3, cache.Len())
}

func TestReservationStats(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, centauryStay("+573001112233",
		date(2025, 8, 24), date(2025, 8, 27)))
	require.NoError(t, err)
	_, err = svc.CreateReservation(ctx, CreateReservationInput{
		UnitID: "antares", GuestCount: 4, ContactPhone: "+573009998877",
		EntryDate: date(2025, 8, 24), ExitDate: date(2025, 8, 26),
	})
	require.NoError(t, err)

	stats, err := svc.ReservationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.PerUnit["centaury"])
	assert.Equal(t, int64(1), stats.PerUnit["antares"])
}

func TestStoredReservationRoundTrip(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	created, err := svc.CreateReservation(ctx, CreateReservationInput{
		UnitID:       "polaris",
		GuestCount:   4,
		EntryDate:    date(2025, 8, 24),
		ExitDate:     date(2025, 8, 27),
		ContactPhone: "+573001112233",
		ContactEmail: "guest@example.com",
		Addons:       []string{"decoration", "sailboat"},
		SpecialNotes: "anniversary",
	})
	require.NoError(t, err)

	loaded, err := svc.Repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"decoration", "sailboat"}, loaded.AddonList())
	assert.Equal(t, created.TotalAmount, loaded.TotalAmount)
	assert.True(t, loaded.EntryDate.Equal(models.Day(date(2025, 8, 24))))
	assert.Equal(t, "pending", loaded.PaymentMethod)
}
