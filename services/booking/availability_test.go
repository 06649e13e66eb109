package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domostay/models"
)

func reportFor(q AvailabilityQuery, reservations []models.Reservation) *models.PerDayReport {
	q = q.normalize()
	catalog := NewCatalog(defaultUnits)
	return buildPerDayReport(q, filterUnits(catalog.Units(), q), reservations)
}

func TestEmptyRangeYieldsEmptyReport(t *testing.T) {
	day := date(2025, 8, 24)
	report := reportFor(AvailabilityQuery{Start: day, End: day}, nil)
	assert.Empty(t, report.Days)
	assert.Empty(t, report.Units)
	assert.Empty(t, report.FullyAvailable)
}

func TestHalfOpenBoundaries(t *testing.T) {
	reservations := []models.Reservation{{
		UnitID:    "centaury",
		EntryDate: date(2025, 8, 24),
		ExitDate:  date(2025, 8, 27),
	}}
	report := reportFor(AvailabilityQuery{
		Start: date(2025, 8, 23),
		End:   date(2025, 8, 28),
	}, reservations)

	require.Len(t, report.Days, 5)
	free := map[string]bool{}
	for _, day := range report.Days {
		for _, id := range day.Free {
			if id == "centaury" {
				free[day.Date] = true
			}
		}
	}
	// Entry day is occupied, exit day is already free.
	assert.True(t, free["2025-08-23"])
	assert.False(t, free["2025-08-24"])
	assert.False(t, free["2025-08-26"])
	assert.True(t, free["2025-08-27"])
}

func TestYearCrossingRange(t *testing.T) {
	report := reportFor(AvailabilityQuery{
		Start: date(2025, 12, 30),
		End:   date(2026, 1, 2),
	}, nil)

	require.Len(t, report.Days, 3)
	assert.Equal(t, "2025-12-30", report.Days[0].Date)
	assert.Equal(t, "2025-12-31", report.Days[1].Date)
	assert.Equal(t, "2026-01-01", report.Days[2].Date)
	assert.Len(t, report.FullyAvailable, len(defaultUnits))
}

func TestGuestCountFiltersUnits(t *testing.T) {
	// Three guests: centaury and sirius cap at two, polaris stretches with a
	// surcharge, antares hosts six.
	report := reportFor(AvailabilityQuery{
		Start:      date(2025, 9, 1),
		End:        date(2025, 9, 3),
		GuestCount: 3,
	}, nil)

	ids := make([]string, 0, len(report.Units))
	for _, u := range report.Units {
		ids = append(ids, u.UnitID)
	}
	assert.ElementsMatch(t, []string{"antares", "polaris"}, ids)
}

func TestUnitFilter(t *testing.T) {
	report := reportFor(AvailabilityQuery{
		Start:      date(2025, 9, 1),
		End:        date(2025, 9, 3),
		UnitFilter: "sirius",
	}, nil)
	require.Len(t, report.Units, 1)
	assert.Equal(t, "sirius", report.Units[0].UnitID)
}

func TestRankingPrefersFreeDaysThenCapacityMatch(t *testing.T) {
	reservations := []models.Reservation{{
		UnitID:    "antares",
		EntryDate: date(2025, 9, 1),
		ExitDate:  date(2025, 9, 2),
	}}
	report := reportFor(AvailabilityQuery{
		Start:      date(2025, 9, 1),
		End:        date(2025, 9, 4),
		GuestCount: 2,
	}, reservations)

	require.Len(t, report.Units, 4)
	// antares lost a day and sinks to the bottom; the fully free units all
	// sleep exactly two, so they rank in id order.
	assert.Equal(t, "centaury", report.Units[0].UnitID)
	assert.Equal(t, "polaris", report.Units[1].UnitID)
	assert.Equal(t, "sirius", report.Units[2].UnitID)
	assert.Equal(t, "antares", report.Units[3].UnitID)
	assert.False(t, report.Units[3].FullyAvailable)
	assert.NotContains(t, report.FullyAvailable, "antares")
}

func TestQueryValidation(t *testing.T) {
	catalog := NewCatalog(defaultUnits)

	err := AvailabilityQuery{Start: date(2025, 9, 3), End: date(2025, 9, 1)}.
		normalize().validate(catalog)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	err = AvailabilityQuery{Start: date(2025, 1, 1), End: date(2026, 3, 1)}.
		normalize().validate(catalog)
	require.ErrorAs(t, err, &validation)

	err = AvailabilityQuery{
		Start: date(2025, 9, 1), End: date(2025, 9, 3), UnitFilter: "orion",
	}.normalize().validate(catalog)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
